// ABOUTME: Client session owning credentials, bearer token, and transport
// ABOUTME: Lazily builds a reusable HTTP client for plain request/response calls

package api

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	// defaultRequestTimeout bounds plain request/response calls.
	defaultRequestTimeout = 30 * time.Second

	// connectTimeout bounds connection establishment for every call,
	// streaming or not.
	connectTimeout = 10 * time.Second
)

// Options configures a Client. The zero value is usable against a
// server that does not require authentication.
type Options struct {
	// Username and Password are the login credentials. They are kept on
	// the client so a later Login() call can reuse them.
	Username string
	Password string

	// Token is an already-issued bearer token. Normally left empty and
	// filled in by Login.
	Token string

	// RequestTimeout bounds plain request/response calls. Defaults to
	// 30 seconds.
	RequestTimeout time.Duration

	// StreamReadTimeout is the maximum silence tolerated between SSE
	// lines before a streaming send gives up. Deliberately long: the
	// backend may think for a while before producing output. Defaults
	// to 5 minutes.
	StreamReadTimeout time.Duration

	// OnStateChange, if set, is invoked synchronously once per distinct
	// connection state transition.
	OnStateChange StateListener

	// Logger receives diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// Client talks to a remote chat backend over HTTP. One Client maps to
// one logical connection to one server. Methods on independent Clients
// are safe to use concurrently; see SendMessage for the one caveat
// within a single Client.
type Client struct {
	serverURL         string
	requestTimeout    time.Duration
	streamReadTimeout time.Duration
	onStateChange     StateListener
	logger            *slog.Logger

	mu       sync.Mutex
	username string
	password string
	token    string
	state    ConnectionState
	httpc    *http.Client
}

// New creates a client for the backend at serverURL. A trailing slash
// on the URL is tolerated. No network traffic happens until the first
// operation.
func New(serverURL string, opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	requestTimeout := opts.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = defaultRequestTimeout
	}
	streamReadTimeout := opts.StreamReadTimeout
	if streamReadTimeout <= 0 {
		streamReadTimeout = defaultStreamReadTimeout
	}

	return &Client{
		serverURL:         strings.TrimRight(serverURL, "/"),
		username:          opts.Username,
		password:          opts.Password,
		token:             opts.Token,
		requestTimeout:    requestTimeout,
		streamReadTimeout: streamReadTimeout,
		onStateChange:     opts.OnStateChange,
		logger:            logger.With("component", "api"),
		state:             StateDisconnected,
	}
}

// apiBase returns the server's API root.
func (c *Client) apiBase() string {
	return c.serverURL + "/api"
}

// Token returns the current bearer token, or "" before login.
func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// SetToken installs an externally obtained bearer token and moves the
// client out of the disconnected state. Prefer Login; this exists for
// callers restoring a persisted token.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
	if token != "" {
		c.setState(StateReconnecting)
	}
}

// ensureClient returns the shared HTTP client for plain
// request/response calls, creating it if missing or previously closed.
func (c *Client) ensureClient() *http.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.httpc == nil {
		c.httpc = &http.Client{
			Timeout: c.requestTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: connectTimeout,
				}).DialContext,
			},
		}
	}
	return c.httpc
}

// authHeaders stamps the standard JSON headers plus the bearer token
// (when held) onto h.
func (c *Client) authHeaders(h http.Header) {
	h.Set("Content-Type", "application/json")
	h.Set("Accept", "application/json")
	if token := c.Token(); token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
}

// Close releases the shared transport and resets the connection state.
// The client remains usable: the next operation recreates the
// transport lazily.
func (c *Client) Close() {
	c.mu.Lock()
	if c.httpc != nil {
		c.httpc.CloseIdleConnections()
		c.httpc = nil
	}
	c.mu.Unlock()
	c.setState(StateDisconnected)
}
