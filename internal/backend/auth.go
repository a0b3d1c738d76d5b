package backend

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Principal is the user a token was issued to
type Principal struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type tokenEntry struct {
	principal Principal
	issued    time.Time
}

// tokenRegistry holds issued bearer tokens in memory; a restart logs
// everyone out.
type tokenRegistry struct {
	mu     sync.RWMutex
	tokens map[string]tokenEntry
}

func newTokenRegistry() *tokenRegistry {
	return &tokenRegistry{tokens: make(map[string]tokenEntry)}
}

func (t *tokenRegistry) issue(p Principal) string {
	token := uuid.NewString()
	t.mu.Lock()
	t.tokens[token] = tokenEntry{principal: p, issued: time.Now()}
	t.mu.Unlock()
	return token
}

func (t *tokenRegistry) lookup(token string) (Principal, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.tokens[token]
	return e.principal, ok
}

func (t *tokenRegistry) revoke(token string) {
	t.mu.Lock()
	delete(t.tokens, token)
	t.mu.Unlock()
}

type principalKey struct{}

func principalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		p, ok := s.tokens.lookup(token)
		if !ok {
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeError(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), principalKey{}, p)))
	})
}

func passwordsMatch(stored, given string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}
