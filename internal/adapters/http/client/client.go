// Package client dispatches JSON requests to the raffle API: it joins the
// configured base URL with an endpoint, attaches the stored bearer token,
// and normalizes error responses into *APIError.
package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/okian/raffle/internal/adapters/tokenstore"
	"github.com/okian/raffle/pkg/logger"
	"github.com/okian/raffle/pkg/metrics"
)

// DefaultTokenKey is the storage key the bearer token is read from.
const DefaultTokenKey = "access_token"

// Doer executes HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is immutable after New and safe for concurrent use.
type Client struct {
	baseURL  string
	doer     Doer
	tokens   tokenstore.Reader
	tokenKey string
	logger   logger.Logger
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithHTTPClient replaces the transport. No timeout is installed by default.
func WithHTTPClient(d Doer) Option {
	return func(c *Client) {
		if d != nil {
			c.doer = d
		}
	}
}

// WithTokenStore sets the storage the bearer token is read from. Without it
// the client behaves as in a context with no storage and never sends one.
func WithTokenStore(r tokenstore.Reader) Option {
	return func(c *Client) {
		if r != nil {
			c.tokens = r
		}
	}
}

// WithTokenKey overrides DefaultTokenKey.
func WithTokenKey(key string) Option {
	return func(c *Client) {
		if key != "" {
			c.tokenKey = key
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Client for baseURL. The base is used verbatim: endpoints are
// appended without adding or removing slashes.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:  baseURL,
		doer:     &http.Client{},
		tokens:   tokenstore.NewNoop(),
		tokenKey: DefaultTokenKey,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.Named("client")
	}
	return c
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// URL returns the request target for endpoint.
func (c *Client) URL(endpoint string) string { return c.baseURL + endpoint }

// Do dispatches req to endpoint and decodes a 2xx body into T without
// validation. A non-2xx status yields *APIError; transport, storage and
// decode errors are returned unchanged. Every failure is logged once.
func Do[T any](ctx context.Context, c *Client, endpoint string, req Request) (T, error) {
	var zero T
	method := req.method()
	target := c.URL(endpoint)
	label := metricLabel(endpoint)

	fail := func(kind metrics.ErrorKind, err error) (T, error) {
		metrics.RecordClientError(label, kind)
		c.logger.Error(ctx, "api error",
			logger.String("endpoint", endpoint),
			logger.String("method", method),
			logger.String("url", target),
			logger.Error(err),
		)
		return zero, err
	}

	token, err := c.token(ctx)
	if err != nil {
		return fail(metrics.KindStore, err)
	}

	body, err := encodeBody(req.Body)
	if err != nil {
		return fail(metrics.KindEncode, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fail(metrics.KindTransport, err)
	}
	httpReq.Header = buildHeaders(req.Header, token)

	start := time.Now()
	resp, err := c.doer.Do(httpReq)
	if err != nil {
		return fail(metrics.KindTransport, err)
	}
	defer resp.Body.Close()

	data, readErr := io.ReadAll(resp.Body)
	metrics.RecordClientRequest(label, method, resp.StatusCode, float64(time.Since(start).Milliseconds()))

	if !success(resp.StatusCode) {
		if readErr != nil {
			data = nil
		}
		return fail(metrics.KindHTTP, newAPIError(resp.StatusCode, data))
	}
	if readErr != nil {
		return fail(metrics.KindTransport, readErr)
	}

	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return fail(metrics.KindDecode, err)
	}
	return out, nil
}

func (c *Client) token(ctx context.Context) (string, error) {
	name := storeName(c.tokens)
	token, err := c.tokens.Get(ctx, c.tokenKey)
	switch {
	case err != nil:
		metrics.RecordTokenRead(name, "error")
		return "", err
	case token == "":
		metrics.RecordTokenRead(name, "miss")
	default:
		metrics.RecordTokenRead(name, "hit")
	}
	return token, nil
}

func success(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}

// metricLabel drops the query string to bound label cardinality.
func metricLabel(endpoint string) string {
	path, _, _ := strings.Cut(endpoint, "?")
	return path
}

func storeName(r tokenstore.Reader) string {
	if named, ok := r.(interface{ Name() string }); ok {
		return named.Name()
	}
	return "custom"
}
