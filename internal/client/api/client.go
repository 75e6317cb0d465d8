package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/todoclient/internal/common"
	"github.com/dmitrijs2005/todoclient/internal/logging"
)

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Session is what the client needs from the session owner: the current bearer
// token, and a way to drop it when the server answers 401.
type Session interface {
	Token() string
	Invalidate(ctx context.Context)
}

// Query holds GET parameters. Empty values are not sent.
type Query map[string]string

func (q Query) encode() string {
	if len(q) == 0 {
		return ""
	}
	keys := make([]string, 0, len(q))
	for k, v := range q {
		if v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	vals := url.Values{}
	for _, k := range keys {
		vals.Set(k, q[k])
	}
	return vals.Encode()
}

type Client struct {
	baseURL     string
	http        Doer
	log         logging.Logger
	logRequests bool

	mu      sync.RWMutex
	session Session
}

type Option func(*Client)

func WithDoer(d Doer) Option {
	return func(c *Client) { c.http = d }
}

// WithTimeout caps each request. Zero means no cap.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http = &http.Client{Timeout: d}
		}
	}
}

func WithLogger(l logging.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithRequestLogging logs every request and response at debug level.
func WithRequestLogging(on bool) Option {
	return func(c *Client) { c.logRequests = on }
}

// New builds a client for baseURL. Endpoint paths are appended to it verbatim.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{},
		log:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With("component", "api")
	return c
}

// BindSession attaches the token source consulted on every request.
func (c *Client) BindSession(s Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = s
}

func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) currentSession() Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

// RequestOption adjusts a request right before it is sent.
type RequestOption func(*http.Request)

// WithHeader sets (or overrides) a request header.
func WithHeader(key, value string) RequestOption {
	return func(r *http.Request) { r.Header.Set(key, value) }
}

// Do sends one request and classifies the reply. On 2xx it returns the
// response; otherwise it returns an *Error. A 401 also invalidates the bound
// session before returning.
func (c *Client) Do(ctx context.Context, method, path string, body any, opts ...RequestOption) (*Response, error) {
	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		rdr = bytes.NewReader(raw)
	}

	reqID := uuid.NewString()
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return nil, newError(KindNetwork, 0, ErrNetwork.Message, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.RequestIDHeaderName, reqID)
	if s := c.currentSession(); s != nil {
		if token := s.Token(); token != "" {
			req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
		}
	}
	for _, opt := range opts {
		opt(req)
	}

	start := time.Now()
	if c.logRequests {
		c.log.Debug(ctx, "api request", "method", method, "path", path, "request_id", reqID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logFailure(ctx, method, path, reqID, 0, start, err)
		return nil, newError(KindNetwork, 0, ErrNetwork.Message, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logFailure(ctx, method, path, reqID, resp.StatusCode, start, err)
		return nil, newError(KindNetwork, resp.StatusCode, ErrNetwork.Message, err)
	}

	r := &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data, RequestID: reqID}
	if c.logRequests {
		c.log.Debug(ctx, "api response",
			"method", method, "path", path, "status", resp.StatusCode,
			"duration", time.Since(start), "request_id", reqID)
	}

	if err := c.classify(ctx, r); err != nil {
		c.logFailure(ctx, method, path, reqID, resp.StatusCode, start, err)
		return nil, err
	}
	return r, nil
}

func (c *Client) classify(ctx context.Context, r *Response) error {
	if r.StatusCode >= 200 && r.StatusCode < 300 {
		return nil
	}

	// only 422 and unclassified statuses take their message from the body
	msg, fields := parseErrorBody(r.Header, r.Body)
	orDefault := func(def string) string {
		if msg != "" {
			return msg
		}
		return def
	}

	switch r.StatusCode {
	case http.StatusUnauthorized:
		if s := c.currentSession(); s != nil {
			s.Invalidate(ctx)
		}
		return &Error{Kind: KindUnauthorized, Status: r.StatusCode, Message: ErrUnauthorized.Message}
	case http.StatusForbidden:
		return &Error{Kind: KindForbidden, Status: r.StatusCode, Message: ErrForbidden.Message}
	case http.StatusNotFound:
		return &Error{Kind: KindNotFound, Status: r.StatusCode, Message: ErrNotFound.Message}
	case http.StatusUnprocessableEntity:
		return &Error{Kind: KindValidation, Status: r.StatusCode, Message: orDefault(ErrValidation.Message), Fields: fields}
	case http.StatusInternalServerError:
		return &Error{Kind: KindServer, Status: r.StatusCode, Message: ErrServer.Message}
	default:
		return &Error{Kind: KindUnknown, Status: r.StatusCode, Message: orDefault(fmt.Sprintf("HTTP %d", r.StatusCode))}
	}
}

func (c *Client) logFailure(ctx context.Context, method, path, reqID string, status int, start time.Time, err error) {
	if !c.logRequests {
		return
	}
	c.log.Debug(ctx, "api error",
		"method", method, "path", path, "status", status,
		"duration", time.Since(start), "request_id", reqID, "error", err)
}

// Get sends a GET with q appended as a query string and decodes into out.
func (c *Client) Get(ctx context.Context, path string, q Query, out any) error {
	if enc := q.encode(); enc != "" {
		path += "?" + enc
	}
	return c.send(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.send(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.send(ctx, http.MethodPut, path, body, out)
}

func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.send(ctx, http.MethodPatch, path, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.send(ctx, http.MethodDelete, path, nil, out)
}

func (c *Client) send(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.Do(ctx, method, path, body)
	if err != nil {
		return err
	}
	return resp.Decode(out)
}
