// Package weaviate implements storage.VectorIndex on the Weaviate Go client.
package weaviate

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/poiesic/docvault/storage"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/fault"
)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:8080"
	DefaultTimeout = 30 * time.Second
)

// Client talks to a Weaviate instance. It is safe for concurrent use.
type Client struct {
	client     *weaviate.Client
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

var _ storage.VectorIndex = (*Client)(nil)

// Option configures a Client.
type Option func(*Client) error

// WithHTTPClient replaces the HTTP client used for all requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return fmt.Errorf("http client cannot be nil")
		}
		c.httpClient = hc
		return nil
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) error {
		if timeout <= 0 {
			return fmt.Errorf("timeout must be positive")
		}
		c.httpClient.Timeout = timeout
		return nil
	}
}

// WithLogger sets a custom logger for the client.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		c.logger = logger
		return nil
	}
}

// New creates a client for the Weaviate server at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid weaviate url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid weaviate url %q: scheme and host are required", baseURL)
	}

	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	c.logger = c.logger.With("component", "weaviate")

	client, err := weaviate.NewClient(weaviate.Config{
		Host:             u.Host,
		Scheme:           u.Scheme,
		ConnectionClient: c.httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("create weaviate client: %w", err)
	}
	c.client = client
	return c, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// statusCode extracts the HTTP status carried by a client error, or 0.
func statusCode(err error) int {
	var clientErr *fault.WeaviateClientError
	if errors.As(err, &clientErr) {
		return clientErr.StatusCode
	}
	return 0
}

// alreadyExists reports a 422 whose message names an existing class or property.
func alreadyExists(err error) bool {
	var clientErr *fault.WeaviateClientError
	if !errors.As(err, &clientErr) {
		return false
	}
	return clientErr.StatusCode == http.StatusUnprocessableEntity && strings.Contains(clientErr.Msg, "already exists")
}

// statusError wraps a failed call as an unexpected status.
func statusError(op string, err error) error {
	if code := statusCode(err); code != 0 {
		return fmt.Errorf("%w: %s: status %d: %w", storage.ErrUnexpectedStatus, op, code, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
