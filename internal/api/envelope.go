// ABOUTME: Response envelope decoding shared by all non-streaming endpoints
// ABOUTME: Implements the HTTP-200 + status=="ok" contract with message fallback

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// envelope is the JSON wrapper every non-streaming endpoint returns:
// {"status": "ok"|other, "data": <payload>, "message": <string>}.
type envelope struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// callEnvelope performs one authenticated request against an API path
// and applies the uniform envelope contract: HTTP 200 required, then
// status == "ok" required. On success it returns the raw data payload.
// On failure it returns the most specific error available: the server's
// message, a fallback when the server omits one, the HTTP status, or
// the transport error. It never panics for network or server trouble.
func (c *Client) callEnvelope(ctx context.Context, method, path string, query url.Values, body any, fallback string) (json.RawMessage, error) {
	u := c.apiBase() + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	c.authHeaders(req.Header)

	resp, err := c.ensureClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	if env.Status != "ok" {
		msg := env.Message
		if msg == "" {
			msg = fallback
		}
		return nil, &ServerError{Message: msg}
	}

	return env.Data, nil
}
