// Package gateway is the HTTP client for the dashboard backend.
//
// Every call is a single request with no retry and no caching. Transport
// failures and non-2xx statuses come back as *NetworkError.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nhath/gamedash/internal/record"
	"github.com/nhath/gamedash/internal/search"
	"github.com/nhath/gamedash/internal/session"
)

const opLogin = "log in"

// Entity is a selectable table or game server
type Entity struct {
	ID          int64  `json:"id,omitempty"`
	Name        string `json:"name"`
	DBName      string `json:"db_name,omitempty"`
	RecordCount int64  `json:"record_count,omitempty"`
}

// Key is the identifier sent back to the backend
func (e Entity) Key() string {
	if e.DBName != "" {
		return e.DBName
	}
	return e.Name
}

// Label is the sidebar text
func (e Entity) Label() string {
	if e.DBName == "" && e.RecordCount > 0 {
		return fmt.Sprintf("%s (%d)", e.Name, e.RecordCount)
	}
	return e.Name
}

// Target converts the entity for a search.View
func (e Entity) Target() search.Target {
	return search.Target{Key: e.Key(), Label: e.Label()}
}

// Token is the /token response
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Options configures a Client
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	PageSize   int
	Session    *session.Session
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client talks to the backend on behalf of one session
type Client struct {
	base     *url.URL
	http     *http.Client
	session  *session.Session
	pageSize int
	logger   *slog.Logger
}

// New creates a Client
func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("gateway: base URL is required")
	}
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("gateway: invalid base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("gateway: base URL must be http or https, got %q", opts.BaseURL)
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	sess := opts.Session
	if sess == nil {
		sess = session.New("default", nil)
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = search.DefaultPageSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{
		base:     base,
		http:     hc,
		session:  sess,
		pageSize: pageSize,
		logger:   logger,
	}, nil
}

// Session returns the session the client authenticates with
func (c *Client) Session() *session.Session {
	return c.session
}

// PageSize returns the page size sent with searches
func (c *Client) PageSize() int {
	return c.pageSize
}

// Login exchanges credentials for an access token. The session is not
// modified; callers decide when to Begin it.
func (c *Client) Login(ctx context.Context, username, password string) (Token, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	var tok Token
	err := c.do(ctx, opLogin, http.MethodPost, "/token", nil,
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", &tok)
	if err != nil {
		return Token{}, err
	}
	if tok.AccessToken == "" {
		return Token{}, &NetworkError{Op: opLogin, Err: fmt.Errorf("response carried no access token")}
	}
	return tok, nil
}

// Logout revokes the current token on the backend
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, "log out", http.MethodPost, "/logout", nil, nil, "", nil)
}

// Me returns the user behind the current token
func (c *Client) Me(ctx context.Context) (session.User, error) {
	var u session.User
	err := c.do(ctx, "fetch user data", http.MethodGet, "/users/me", nil, nil, "", &u)
	return u, err
}

// ListEntities returns the tables or servers a kind searches over
func (c *Client) ListEntities(ctx context.Context, kind Kind) ([]Entity, error) {
	var out []Entity
	if err := c.do(ctx, kind.entitiesOp(), http.MethodGet, kind.entitiesPath(), nil, nil, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListColumns returns the searchable columns of an entity
func (c *Client) ListColumns(ctx context.Context, kind Kind, key string) ([]string, error) {
	var body struct {
		Columns []string `json:"columns"`
	}
	if err := c.do(ctx, kind.columnsOp(), http.MethodGet, kind.columnsPath(key), nil, nil, "", &body); err != nil {
		return nil, err
	}
	return body.Columns, nil
}

type pageBody struct {
	Data       []record.Record `json:"data"`
	TotalPages int             `json:"total_pages"`
	Total      *int64          `json:"total"`
	TotalCount *int64          `json:"total_count"`
}

// Search fetches one page of matching records. Empty column or term are
// sent as-is; the backend treats them as no filter.
func (c *Client) Search(ctx context.Context, kind Kind, q search.Query) (search.Page, error) {
	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = c.pageSize
	}
	page := q.Page
	if page < 1 {
		page = 1
	}

	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("search_term", q.Term)
	params.Set(kind.columnParam(), q.Column)
	params.Set("page_size", strconv.Itoa(pageSize))

	var body pageBody
	if err := c.do(ctx, kind.searchOp(), http.MethodGet, kind.searchPath(q.EntityKey), params, nil, "", &body); err != nil {
		return search.Page{}, err
	}

	out := search.Page{Rows: body.Data, TotalPages: body.TotalPages, Total: -1}
	switch {
	case body.Total != nil:
		out.Total = *body.Total
	case body.TotalCount != nil:
		out.Total = *body.TotalCount
	}
	return out, nil
}

// Source binds the client to one kind for a search.View
func (c *Client) Source(kind Kind) search.Source {
	return kindSource{client: c, kind: kind}
}

type kindSource struct {
	client *Client
	kind   Kind
}

func (s kindSource) ListColumns(ctx context.Context, key string) ([]string, error) {
	return s.client.ListColumns(ctx, s.kind, key)
}

func (s kindSource) Search(ctx context.Context, q search.Query) (search.Page, error) {
	return s.client.Search(ctx, s.kind, q)
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body io.Reader, contentType string, out any) error {
	// path segments are already escaped by the Kind helpers
	target := c.base.String() + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return wrapTransport(op, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "op", op, "url", target, "err", err)
		return wrapTransport(op, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("request done", "op", op, "method", method, "url", target,
		"status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &NetworkError{
			Op:     op,
			Status: resp.StatusCode,
			Detail: readDetail(resp.Body),
			Err:    fmt.Errorf("%s", resp.Status),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &NetworkError{Op: op, Status: 0, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// readDetail pulls the "detail" string from an error body, if present.
func readDetail(r io.Reader) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.NewDecoder(io.LimitReader(r, 64<<10)).Decode(&body); err != nil {
		return ""
	}
	var s string
	if err := json.Unmarshal(body.Detail, &s); err == nil {
		return s
	}
	return ""
}
