// internal/ui/commands.go
// Session and entity commands; each returns a tea.Cmd run off the UI loop
package ui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/nhath/gamedash/internal/gateway"
	"github.com/nhath/gamedash/internal/session"
	"github.com/nhath/gamedash/internal/ui/components/searchview"
)

const sessionExpiredMessage = "Your session has expired. Please log in again."

// checkSessionCmd restores a persisted token and validates it with /users/me
func (m Model) checkSessionCmd() tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		sess := backend.Session()
		if err := sess.Restore(); err != nil {
			if errors.Is(err, session.ErrNoToken) {
				return SessionCheckedMsg{}
			}
			return SessionCheckedMsg{Err: err}
		}

		user, err := backend.Me(context.Background())
		if err != nil {
			if errors.Is(err, gateway.ErrUnauthorized) {
				_ = sess.End()
			}
			return SessionCheckedMsg{Restored: true, Err: err}
		}
		sess.SetUser(user)
		return SessionCheckedMsg{User: user, Restored: true}
	}
}

// loginCmd exchanges credentials for a token and loads the user
func (m Model) loginCmd(username, password string) tea.Cmd {
	backend := m.backend
	logger := m.logger
	return func() tea.Msg {
		ctx := context.Background()
		tok, err := backend.Login(ctx, username, password)
		if err != nil {
			logger.Debug("login failed", "username", username, "err", err)
			return LoginResultMsg{Err: err}
		}

		sess := backend.Session()
		if err := sess.Begin(tok.AccessToken); err != nil {
			// the token is still usable for this run
			logger.Warn("persist token", "err", err)
		}

		user, err := backend.Me(ctx)
		if err != nil {
			_ = sess.End()
			return LoginResultMsg{Err: err}
		}
		sess.SetUser(user)
		return LoginResultMsg{User: user}
	}
}

// logoutCmd revokes the token on the backend, then ends the local session
func (m Model) logoutCmd() tea.Cmd {
	backend := m.backend
	logger := m.logger
	return func() tea.Msg {
		if err := backend.Logout(context.Background()); err != nil {
			logger.Debug("revoke token", "err", err)
		}
		return LoggedOutMsg{Err: backend.Session().End()}
	}
}

// forceLogoutCmd ends the local session after the backend rejected the token
func (m Model) forceLogoutCmd() tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		return LoggedOutMsg{Forced: true, Err: backend.Session().End()}
	}
}

// preloadEntitiesCmd fetches the table and server lists concurrently.
// Both server kinds share the /servers list.
func (m Model) preloadEntitiesCmd() tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		var msg EntitiesPreloadedMsg
		g, ctx := errgroup.WithContext(context.Background())
		g.Go(func() error {
			msg.Tables, msg.TablesErr = backend.ListEntities(ctx, gateway.Tables)
			return nil
		})
		g.Go(func() error {
			msg.Servers, msg.ServersErr = backend.ListEntities(ctx, gateway.Players)
			return nil
		})
		_ = g.Wait()
		return msg
	}
}

// fanOut turns a preload result into one EntitiesLoadedMsg per kind
func (msg EntitiesPreloadedMsg) fanOut() []tea.Msg {
	out := make([]tea.Msg, 0, len(gateway.Kinds))
	for _, kind := range gateway.Kinds {
		loaded := searchview.EntitiesLoadedMsg{Kind: kind, Entities: msg.Tables, Err: msg.TablesErr}
		if kind.ServerScoped() {
			loaded.Entities, loaded.Err = msg.Servers, msg.ServersErr
		}
		out = append(out, loaded)
	}
	return out
}

// unauthorized reports whether any of errs is a rejected token
func unauthorized(errs ...error) bool {
	for _, err := range errs {
		if errors.Is(err, gateway.ErrUnauthorized) {
			return true
		}
	}
	return false
}
