// internal/ui/model_types.go
// Type definitions for the UI layer
package ui

import (
	"context"

	"github.com/nhath/gamedash/internal/gateway"
	"github.com/nhath/gamedash/internal/session"
	"github.com/nhath/gamedash/internal/ui/components/searchview"
)

// AppState represents the overall application state
type AppState string

const (
	StateCheckingSession AppState = "CHECKING_SESSION"
	StateLoggedOut       AppState = "LOGGED_OUT"
	StateDashboard       AppState = "DASHBOARD"
)

// Backend is the part of gateway.Client the application drives
type Backend interface {
	searchview.Gateway
	Login(ctx context.Context, username, password string) (gateway.Token, error)
	Me(ctx context.Context) (session.User, error)
	Logout(ctx context.Context) error
	Session() *session.Session
}

var _ Backend = (*gateway.Client)(nil)
