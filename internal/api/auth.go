// ABOUTME: Login, passive connection check, and bearer token helpers
// ABOUTME: Password hash is a fixed MD5-hex wire contract with the backend

package api

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// HashPassword returns the MD5 hex digest of the plaintext password.
// The backend stores MD5 hashes and compares against exactly this
// encoding, so the algorithm is a wire-compatibility constant: changing
// it breaks login against every existing deployment.
func HashPassword(password string) string {
	sum := md5.Sum([]byte(password))
	return hex.EncodeToString(sum[:])
}

// loginRequest is the JSON body sent to POST /api/auth/login.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginData is the data payload of a successful login envelope.
type loginData struct {
	Token         string `json:"token"`
	ChangePwdHint bool   `json:"change_pwd_hint"`
}

// Login authenticates against the backend and stores the issued bearer
// token. Empty arguments fall back to the credentials the client was
// created with; if either is still empty, Login fails with
// ErrEmptyCredentials without touching the network.
//
// On success it returns a human-readable message, which includes a
// hint when the server reports the account still uses the default
// password. Every failure category (bad credentials, HTTP status,
// connect failure, timeout) comes back as an error value and moves the
// state to StateError; nothing is raised.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	c.mu.Lock()
	if username == "" {
		username = c.username
	}
	if password == "" {
		password = c.password
	}
	c.mu.Unlock()

	if username == "" || password == "" {
		c.setState(StateError)
		return "", ErrEmptyCredentials
	}

	c.setState(StateConnecting)

	body := loginRequest{
		Username: username,
		Password: HashPassword(password),
	}
	encoded, err := json.Marshal(body)
	if err != nil {
		c.setState(StateError)
		return "", fmt.Errorf("encoding login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase()+"/auth/login", bytes.NewReader(encoded))
	if err != nil {
		c.setState(StateError)
		return "", fmt.Errorf("creating login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.ensureClient().Do(req)
	if err != nil {
		c.setState(StateError)
		return "", describeTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.setState(StateError)
		return "", &StatusError{Code: resp.StatusCode}
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		c.setState(StateError)
		return "", fmt.Errorf("parsing login response: %w", err)
	}

	if env.Status != "ok" {
		c.setState(StateError)
		msg := env.Message
		if msg == "" {
			msg = "login failed"
		}
		return "", &ServerError{Message: msg}
	}

	var data loginData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		c.setState(StateError)
		return "", fmt.Errorf("parsing login data: %w", err)
	}

	c.mu.Lock()
	c.token = data.Token
	c.username = username
	c.password = password
	c.mu.Unlock()
	c.setState(StateConnected)

	msg := "login successful"
	if data.ChangePwdHint {
		msg += " (consider changing the default password)"
	}
	c.logger.Info("logged in", "username", username)
	return msg, nil
}

// CheckConnection passively validates the held token by listing
// sessions. Without a token it reports false immediately, no network
// call. Any non-200, malformed envelope, or transport failure counts
// as disconnected — never StateError, since this is a health check
// rather than an authentication attempt.
func (c *Client) CheckConnection(ctx context.Context) bool {
	if c.Token() == "" {
		return false
	}

	_, err := c.callEnvelope(ctx, http.MethodGet, "/chat/sessions", nil, nil, "session list unavailable")
	if err != nil {
		c.setState(StateDisconnected)
		return false
	}

	c.setState(StateConnected)
	return true
}

// TokenExpiry reports the expiry time of the held bearer token, when
// the token is a JWT carrying an exp claim. The signature is not
// verified; this is informational only and never gates a request.
func (c *Client) TokenExpiry() (time.Time, bool) {
	token := c.Token()
	if token == "" {
		return time.Time{}, false
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}

	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// describeTransportError converts a transport-level failure into a
// stable, human-readable error. Timeouts and connection failures are
// the expected categories; anything else passes through wrapped.
func describeTransportError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return fmt.Errorf("request timed out: %w", err)
		}
		return fmt.Errorf("connection failed: %w", urlErr.Err)
	}
	return err
}
