package backend

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nhath/gamedash/internal/db"
	"github.com/nhath/gamedash/internal/record"
)

type tableInfo struct {
	Name        string `json:"name"`
	RecordCount int64  `json:"record_count"`
}

type serverInfo struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	DBName string `json:"db_name"`
}

type tablePage struct {
	Data       []record.Record `json:"data"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalPages int             `json:"total_pages"`
}

type gamePage struct {
	Columns     []string        `json:"columns"`
	Data        []record.Record `json:"data"`
	TotalPages  int             `json:"total_pages"`
	CurrentPage int             `json:"current_page"`
	TotalCount  int64           `json:"total_count"`
}

type columnsBody struct {
	Columns []string `json:"columns"`
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid form body")
		return
	}
	username := r.PostForm.Get("username")
	password := r.PostForm.Get("password")
	if username == "" || password == "" {
		writeError(w, http.StatusUnprocessableEntity, "username and password are required")
		return
	}

	user, err := s.login.FindUser(r.Context(), s.userTable, username)
	switch {
	case err != nil && !errors.Is(err, db.ErrNotFound):
		s.fail(w, r, err)
		return
	case err != nil || !passwordsMatch(user.Password, password):
		s.logger.Info("login rejected", "username", username)
		writeError(w, http.StatusBadRequest, "Incorrect username or password")
		return
	}

	token := s.tokens.issue(Principal{ID: user.ID, Username: user.Username})
	s.logger.Info("login", "username", user.Username)
	writeJSON(w, http.StatusOK, map[string]string{
		"access_token": token,
		"token_type":   "bearer",
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.tokens.revoke(bearerToken(r))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFrom(r.Context())
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleTables(w http.ResponseWriter, r *http.Request) {
	tables, err := s.login.Tables(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := []tableInfo{}
	for _, t := range tables {
		if t.RecordCount > 0 {
			out = append(out, tableInfo{Name: t.Name, RecordCount: t.RecordCount})
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTableColumns(w http.ResponseWriter, r *http.Request) {
	names, err := s.login.ColumnNames(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.failLookup(w, r, err, "Table not found")
		return
	}
	writeJSON(w, http.StatusOK, columnsBody{Columns: names})
}

func (s *Server) handleTableData(w http.ResponseWriter, r *http.Request) {
	page, pageSize, ok := pageParams(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	res, err := s.login.Search(r.Context(), chi.URLParam(r, "name"), db.SearchParams{
		Column:            q.Get("column"),
		Term:              q.Get("search_term"),
		Page:              page,
		PageSize:          pageSize,
		Mode:              db.MatchTyped,
		NewestFirst:       true,
		SkipUnknownColumn: true,
	})
	if err != nil {
		s.failLookup(w, r, err, "Table not found")
		return
	}
	s.logger.Debug("table search", "table", chi.URLParam(r, "name"), "column", q.Get("column"),
		"term", q.Get("search_term"), "total", res.Total, "page", res.Page, "returned", len(res.Rows))

	writeJSON(w, http.StatusOK, tablePage{
		Data:       res.Rows,
		Total:      res.Total,
		Page:       res.Page,
		PageSize:   res.PageSize,
		TotalPages: res.TotalPages,
	})
}

func (s *Server) handleServers(w http.ResponseWriter, r *http.Request) {
	servers, err := s.login.Servers(r.Context(), s.serverTable)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]serverInfo, len(servers))
	for i, srv := range servers {
		out[i] = serverInfo{ID: srv.ID, Name: srv.Name, DBName: s.dbName(srv.ID)}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGameColumns(table string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dbName := chi.URLParam(r, "db")
		game, err := s.games.get(r.Context(), dbName)
		if err != nil {
			s.failLookup(w, r, err, "Database "+dbName+" not found")
			return
		}
		names, err := game.ColumnNames(r.Context(), table)
		if err != nil {
			s.failLookup(w, r, err, "Table "+table+" not found")
			return
		}
		writeJSON(w, http.StatusOK, columnsBody{Columns: names})
	}
}

func (s *Server) handleGameSearch(table string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, pageSize, ok := pageParams(w, r)
		if !ok {
			return
		}
		dbName := chi.URLParam(r, "db")
		game, err := s.games.get(r.Context(), dbName)
		if err != nil {
			s.failLookup(w, r, err, "Database "+dbName+" not found")
			return
		}

		q := r.URL.Query()
		res, err := game.Search(r.Context(), table, db.SearchParams{
			Column:   q.Get("search_column"),
			Term:     q.Get("search_term"),
			Page:     page,
			PageSize: pageSize,
			Mode:     db.MatchCast,
		})
		if err != nil {
			s.failLookup(w, r, err, "Table "+table+" not found")
			return
		}

		writeJSON(w, http.StatusOK, gamePage{
			Columns:     res.Columns,
			Data:        res.Rows,
			TotalPages:  res.TotalPages,
			CurrentPage: res.Page,
			TotalCount:  res.Total,
		})
	}
}

// pageParams reads page (>= 1) and page_size (1..100), writing a 422 on
// bad input
func pageParams(w http.ResponseWriter, r *http.Request) (page, pageSize int, ok bool) {
	q := r.URL.Query()
	page, pageSize = 1, DefaultPageSize
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusUnprocessableEntity, "page must be an integer >= 1")
			return 0, 0, false
		}
		page = n
	}
	if v := q.Get("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > db.MaxPageSize {
			writeError(w, http.StatusUnprocessableEntity, "page_size must be an integer between 1 and 100")
			return 0, 0, false
		}
		pageSize = n
	}
	return page, pageSize, true
}

// failLookup maps catalog errors to 404/400 and everything else to 500
func (s *Server) failLookup(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	switch {
	case errors.Is(err, db.ErrNotFound):
		writeError(w, http.StatusNotFound, notFound)
	case errors.Is(err, db.ErrInvalidColumn):
		writeError(w, http.StatusBadRequest, "Invalid column name")
	default:
		s.fail(w, r, err)
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
