package gateway

import (
	"fmt"
	"net/url"
	"strings"
)

// Kind selects one of the record families the dashboard can search
type Kind string

const (
	Tables    Kind = "tables"
	Players   Kind = "players"
	Backpacks Kind = "backpacks"
)

// Kinds lists every kind in tab order
var Kinds = []Kind{Tables, Players, Backpacks}

// ParseKind accepts singular and plural spellings
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "table", "tables":
		return Tables, nil
	case "player", "players":
		return Players, nil
	case "backpack", "backpacks":
		return Backpacks, nil
	default:
		return "", fmt.Errorf("unknown kind %q (want tables, players or backpacks)", s)
	}
}

// Title is the tab label
func (k Kind) Title() string {
	switch k {
	case Tables:
		return "Tables"
	case Players:
		return "Players"
	case Backpacks:
		return "Backpacks"
	default:
		return string(k)
	}
}

// noun is the singular name used in paths and messages
func (k Kind) noun() string {
	switch k {
	case Players:
		return "player"
	case Backpacks:
		return "backpack"
	default:
		return "table"
	}
}

// ServerScoped reports whether entities of this kind are game servers
func (k Kind) ServerScoped() bool {
	return k == Players || k == Backpacks
}

// EntityNoun names what the sidebar lists
func (k Kind) EntityNoun() string {
	if k.ServerScoped() {
		return "server"
	}
	return "table"
}

func (k Kind) entitiesPath() string {
	if k.ServerScoped() {
		return "/servers"
	}
	return "/tables"
}

func (k Kind) columnsPath(key string) string {
	key = url.PathEscape(key)
	if k.ServerScoped() {
		return "/" + k.noun() + "/columns/" + key
	}
	return "/table/" + key + "/columns"
}

func (k Kind) searchPath(key string) string {
	return "/" + k.noun() + "/" + url.PathEscape(key)
}

// columnParam is the query parameter naming the filtered column
func (k Kind) columnParam() string {
	if k.ServerScoped() {
		return "search_column"
	}
	return "column"
}

func (k Kind) entitiesOp() string {
	if k.ServerScoped() {
		return "fetch servers"
	}
	return "fetch tables"
}

func (k Kind) columnsOp() string {
	return "fetch " + k.noun() + " columns"
}

func (k Kind) searchOp() string {
	return "fetch " + k.noun() + " data"
}
