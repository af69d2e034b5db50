package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/five82/booktracker/internal/credstore"
)

// Fetcher is the set of operations the presentation layer needs.
// It is implemented by *Client and can be faked in tests.
type Fetcher interface {
	Login(ctx context.Context, email, password string) (Session, error)
	Shelves(ctx context.Context) (ShelvesResult, error)
	Shelf(ctx context.Context, id int64) (ShelfDetail, error)
	Book(ctx context.Context, id int64) (BookDetail, error)
	Logout() error
}

// Ensure Client implements Fetcher at compile time.
var _ Fetcher = (*Client)(nil)

// Client talks to the book-shelving HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	store     credstore.Store
	userAgent string
	log       *slog.Logger
}

const (
	// DefaultBaseURL is used when no endpoint is configured.
	DefaultBaseURL   = "http://localhost:3000"
	defaultUserAgent = "booktracker/0.1"
	apiPrefix        = "/api/v1"
)

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua = strings.TrimSpace(ua); ua != "" {
			c.userAgent = ua
		}
	}
}

// NewClient builds a Client for baseURL that reads and writes session
// credentials through store. The default http.Client has no timeout of its
// own; callers bound requests with their context.
func NewClient(baseURL string, store credstore.Store, opts ...Option) (*Client, error) {
	if store == nil {
		return nil, newError(KindInvalidRequest, "", errors.New("credential store is nil"))
	}
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, newError(KindInvalidRequest, "", err)
	}
	c := &Client{
		baseURL:   base,
		http:      &http.Client{},
		store:     store,
		userAgent: defaultUserAgent,
		log:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalised endpoint the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Login creates a session for email/password and persists it. The stored
// credentials are written only after the response decoded successfully.
func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	const op = "login"
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return Session{}, newError(KindInvalidRequest, op, fmt.Errorf("encode body: %w", err))
	}

	var payload sessionPayload
	if err := c.do(ctx, op, http.MethodPost, &url.URL{Path: apiPrefix + "/sessions"}, body, &payload); err != nil {
		return Session{}, err
	}
	session, err := payload.session()
	if err != nil {
		return Session{}, newError(KindDecoding, op, err)
	}

	if err := c.persist(session); err != nil {
		c.log.Error("persist session failed", "error", err)
		return Session{}, fmt.Errorf("%s: %w", op, err)
	}
	c.log.Info("logged in", "user_id", session.UserID)
	return session, nil
}

// Shelves lists the current user's shelves.
func (c *Client) Shelves(ctx context.Context) (ShelvesResult, error) {
	const op = "shelves"
	rel, err := c.authedURL(op, apiPrefix+"/shelves")
	if err != nil {
		return ShelvesResult{}, err
	}
	var payload shelvesPayload
	if err := c.do(ctx, op, http.MethodGet, rel, nil, &payload); err != nil {
		return ShelvesResult{}, err
	}
	result, err := payload.result()
	if err != nil {
		return ShelvesResult{}, newError(KindDecoding, op, err)
	}
	return result, nil
}

// Shelf fetches one shelf and its books.
func (c *Client) Shelf(ctx context.Context, id int64) (ShelfDetail, error) {
	const op = "shelf"
	rel, err := c.authedURL(op, apiPrefix+"/shelves/"+strconv.FormatInt(id, 10))
	if err != nil {
		return ShelfDetail{}, err
	}
	var payload shelfDetailPayload
	if err := c.do(ctx, op, http.MethodGet, rel, nil, &payload); err != nil {
		return ShelfDetail{}, err
	}
	detail, err := payload.detail()
	if err != nil {
		return ShelfDetail{}, newError(KindDecoding, op, err)
	}
	return detail, nil
}

// Book fetches the full record for one book.
func (c *Client) Book(ctx context.Context, id int64) (BookDetail, error) {
	const op = "book"
	rel, err := c.authedURL(op, apiPrefix+"/books/"+strconv.FormatInt(id, 10))
	if err != nil {
		return BookDetail{}, err
	}
	var payload bookPayload
	if err := c.do(ctx, op, http.MethodGet, rel, nil, &payload); err != nil {
		return BookDetail{}, err
	}
	detail, err := payload.detail()
	if err != nil {
		return BookDetail{}, newError(KindDecoding, op, err)
	}
	return detail, nil
}

// Logout removes the stored session. It never touches the network and is
// safe to call when no session exists.
func (c *Client) Logout() error {
	err := errors.Join(
		c.store.Delete(credstore.KeyAPIKey),
		c.store.Delete(credstore.KeyUserID),
	)
	if err != nil {
		c.log.Warn("clear session failed", "error", err)
		return fmt.Errorf("clear session: %w", err)
	}
	c.log.Info("logged out")
	return nil
}

// persist writes both keys. If either write fails the previous contents of
// both keys are put back, so the store holds the old session or the new one
// and never a mix.
func (c *Client) persist(s Session) error {
	prev, err := c.snapshot()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSessionNotSaved, err)
	}
	if err := c.store.Save(credstore.KeyAPIKey, s.APIKey); err != nil {
		return fmt.Errorf("%w: %w", ErrSessionNotSaved, errors.Join(err, c.restore(prev)))
	}
	if err := c.store.Save(credstore.KeyUserID, strconv.FormatInt(s.UserID, 10)); err != nil {
		return fmt.Errorf("%w: %w", ErrSessionNotSaved, errors.Join(err, c.restore(prev)))
	}
	return nil
}

type storedValue struct {
	key   string
	value string
	ok    bool
}

func (c *Client) snapshot() ([]storedValue, error) {
	var out []storedValue
	for _, key := range []string{credstore.KeyAPIKey, credstore.KeyUserID} {
		v, ok, err := c.store.Get(key)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", key, err)
		}
		out = append(out, storedValue{key: key, value: v, ok: ok})
	}
	return out, nil
}

func (c *Client) restore(prev []storedValue) error {
	var errs []error
	for _, sv := range prev {
		var err error
		if sv.ok {
			err = c.store.Save(sv.key, sv.value)
		} else {
			err = c.store.Delete(sv.key)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("restore %s: %w", sv.key, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		c.log.Error("restore previous session failed", "error", err)
		return err
	}
	return nil
}

// authedURL reads the stored credentials and returns path with api_key and
// user_id attached. A missing credential is reported as KindUnauthorized
// before any network traffic.
func (c *Client) authedURL(op, path string) (*url.URL, error) {
	apiKey, ok, err := c.store.Get(credstore.KeyAPIKey)
	if err != nil {
		c.log.Warn("read credentials failed", "op", op, "error", err)
		return nil, newError(KindUnauthorized, op, err)
	}
	if !ok || apiKey == "" {
		return nil, newError(KindUnauthorized, op, errors.New("no stored api key"))
	}
	userID, ok, err := c.store.Get(credstore.KeyUserID)
	if err != nil {
		c.log.Warn("read credentials failed", "op", op, "error", err)
		return nil, newError(KindUnauthorized, op, err)
	}
	if !ok || userID == "" {
		return nil, newError(KindUnauthorized, op, errors.New("no stored user id"))
	}

	values := url.Values{}
	values.Set("api_key", apiKey)
	values.Set("user_id", userID)
	return &url.URL{Path: path, RawQuery: values.Encode()}, nil
}

func (c *Client) do(ctx context.Context, op, method string, rel *url.URL, body []byte, dest any) error {
	reqURL := c.resolve(rel)

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return newError(KindInvalidRequest, op, fmt.Errorf("create request: %w", err))
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-Id", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log := c.log.With("op", op, "request_id", requestID)
	log.Debug("api request", "method", method, "url", redact(reqURL))

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn("api request failed", "error", err)
		return newError(KindInvalidResponse, op, fmt.Errorf("execute request: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		log.Info("api unauthorized")
		return &Error{Kind: KindUnauthorized, Op: op, StatusCode: resp.StatusCode}
	case resp.StatusCode != http.StatusOK:
		log.Warn("api error status", "status", resp.StatusCode)
		return &Error{Kind: KindServer, Op: op, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Warn("read response failed", "error", err)
		return newError(KindInvalidResponse, op, fmt.Errorf("read response: %w", err))
	}
	if err := json.Unmarshal(data, dest); err != nil {
		log.Warn("decode response failed", "error", err)
		return newError(KindDecoding, op, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// resolve joins rel onto the base URL, keeping any path prefix of the base.
func (c *Client) resolve(rel *url.URL) *url.URL {
	u := *c.baseURL
	u.Path = strings.TrimSuffix(c.baseURL.Path, "/") + rel.Path
	u.RawQuery = rel.RawQuery
	return &u
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: unsupported scheme %q", raw, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("base url %q: missing host", raw)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

func redact(u *url.URL) string {
	q := u.Query()
	if q.Has("api_key") {
		q.Set("api_key", "REDACTED")
	}
	cp := *u
	cp.RawQuery = q.Encode()
	return cp.String()
}
