// cmd/gamedash/main.go
package main

import (
	"os"

	"github.com/nhath/gamedash/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
