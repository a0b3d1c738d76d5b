// Package highlight colorizes record JSON for the detail popup.
package highlight

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// DefaultStyle matches the default Nord palette of the dashboard
const DefaultStyle = "nord"

var style = styles.Get(DefaultStyle)

// SetStyle switches the chroma style; unknown names fall back to chroma's default
func SetStyle(name string) {
	style = styles.Get(name)
}

// JSON returns s with 256-color ANSI highlighting.
// The input is returned unchanged if tokenising fails.
func JSON(s string) string {
	return Code("json", s)
}

// Code highlights s with the lexer registered for language
func Code(language, s string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		return s
	}
	lexer = chroma.Coalesce(lexer)

	it, err := lexer.Tokenise(nil, s)
	if err != nil {
		return s
	}

	var b strings.Builder
	if err := formatters.TTY256.Format(&b, style, it); err != nil {
		return s
	}
	return b.String()
}
