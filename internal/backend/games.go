package backend

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/nhath/gamedash/internal/db"
)

// OpenFunc connects to the game database dbName
type OpenFunc func(ctx context.Context, dbName string) (*db.Catalog, error)

// gameRegistry lazily opens game databases and keeps them for reuse.
// Only names accepted by known can be opened. Opening runs outside mu, and
// concurrent gets of one name share a single open.
type gameRegistry struct {
	open   OpenFunc
	known  func(ctx context.Context, dbName string) (bool, error)
	logger *slog.Logger
	group  singleflight.Group

	mu     sync.Mutex
	conns  map[string]*db.Catalog
	closed bool
}

func newGameRegistry(open OpenFunc, known func(context.Context, string) (bool, error), logger *slog.Logger) *gameRegistry {
	return &gameRegistry{
		open:   open,
		known:  known,
		logger: logger,
		conns:  make(map[string]*db.Catalog),
	}
}

func (g *gameRegistry) get(ctx context.Context, dbName string) (*db.Catalog, error) {
	if c, ok := g.cached(dbName); ok {
		return c, nil
	}
	v, err, _ := g.group.Do(dbName, func() (any, error) {
		if c, ok := g.cached(dbName); ok {
			return c, nil
		}
		return g.connect(ctx, dbName)
	})
	if err != nil {
		return nil, err
	}
	return v.(*db.Catalog), nil
}

func (g *gameRegistry) cached(dbName string) (*db.Catalog, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	c, ok := g.conns[dbName]
	return c, ok
}

func (g *gameRegistry) connect(ctx context.Context, dbName string) (*db.Catalog, error) {
	ok, err := g.known(ctx, dbName)
	if err != nil {
		return nil, err
	}
	if !ok || g.open == nil {
		return nil, fmt.Errorf("database %s: %w", dbName, db.ErrNotFound)
	}

	c, err := g.open(ctx, dbName)
	if err != nil {
		g.logger.Error("failed to open game database", "db", dbName, "err", err)
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		_ = c.Close()
		return nil, fmt.Errorf("database %s: registry closed", dbName)
	}
	g.logger.Info("opened game database", "db", dbName)
	g.conns[dbName] = c
	return c, nil
}

// Close closes every open game database
func (g *gameRegistry) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
	for name, c := range g.conns {
		if err := c.Close(); err != nil {
			g.logger.Warn("failed to close game database", "db", name, "err", err)
		}
		delete(g.conns, name)
	}
}

// dbName maps a server id to its game database name
func (s *Server) dbName(id int64) string {
	return fmt.Sprintf("%s%d", s.prefix, id)
}

func (s *Server) knownDatabase(ctx context.Context, dbName string) (bool, error) {
	servers, err := s.login.Servers(ctx, s.serverTable)
	if err != nil {
		return false, err
	}
	for _, srv := range servers {
		if s.dbName(srv.ID) == dbName {
			return true, nil
		}
	}
	return false, nil
}
