package newapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/denysvitali/nbalance/internal/version"
)

const (
	selfEndpoint = "/api/user/self"
	userHeader   = "New-API-User"

	// DefaultTimeout bounds a whole balance request, body included
	DefaultTimeout = 10 * time.Second
)

// Client is an HTTP client for the NewAPI user endpoint.
// It is safe for concurrent use; all calls share one lazily created http.Client.
type Client struct {
	baseURL string
	userID  string
	token   string
	timeout time.Duration

	mu         sync.Mutex
	httpClient *http.Client
	created    int
}

// Option configures a Client
type Option func(*Client)

// WithTimeout overrides DefaultTimeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewClient creates a new API client. baseURL must not end with a slash.
func NewClient(baseURL, userID, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		userID:  userID,
		token:   token,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// session returns the shared http.Client, creating it on first use or after Close
func (c *Client) session() *http.Client {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.httpClient == nil {
		c.httpClient = &http.Client{
			Transport: http.DefaultTransport.(*http.Transport).Clone(),
		}
		c.created++
	}
	return c.httpClient
}

// Close releases the shared http.Client. It is a no-op when none was created.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.httpClient == nil {
		return
	}
	c.httpClient.CloseIdleConnections()
	c.httpClient = nil
}

// URL returns the full endpoint URL
func (c *Client) URL() string {
	return c.baseURL + selfEndpoint
}

// GetSelf fetches the current user from the /api/user/self endpoint
func (c *Client) GetSelf(ctx context.Context) (*SelfResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(), nil)
	if err != nil {
		return nil, &QueryError{Kind: KindRequest, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	req.Header.Set(userHeader, c.userID)
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "nbalance/"+version.Version)

	resp, err := c.session().Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransportError(fmt.Errorf("failed to read response body: %w", err))
	}

	var self SelfResponse
	if err := json.Unmarshal(body, &self); err != nil {
		return nil, &QueryError{Kind: KindDecode, Err: fmt.Errorf("failed to parse response: %w", err)}
	}

	return &self, nil
}

// classifyTransportError separates deadline failures from other transport errors
func classifyTransportError(err error) error {
	if isTimeout(err) {
		return &TimeoutError{Err: err}
	}
	return &NetworkError{Err: err}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
