// ABOUTME: Remote session lifecycle: create, list, fetch history, delete
// ABOUTME: All four calls share the authenticated GET + envelope contract

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// DefaultPlatformID is the platform used when the caller does not
// specify one.
const DefaultPlatformID = "webchat"

// CreateSession asks the server for a new conversation session and
// returns its opaque identifier. An empty platformID defaults to
// DefaultPlatformID.
func (c *Client) CreateSession(ctx context.Context, platformID string) (string, error) {
	if platformID == "" {
		platformID = DefaultPlatformID
	}
	query := url.Values{"platform_id": {platformID}}

	data, err := c.callEnvelope(ctx, http.MethodGet, "/chat/new_session", query, nil, "failed to create session")
	if err != nil {
		return "", err
	}

	var payload struct {
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return "", fmt.Errorf("parsing session id: %w", err)
	}
	return payload.SessionID, nil
}

// ListSessions returns the server's session summaries in server order,
// as an opaque JSON payload. Pass an empty platformID to list across
// platforms.
func (c *Client) ListSessions(ctx context.Context, platformID string) (json.RawMessage, error) {
	query := url.Values{}
	if platformID != "" {
		query.Set("platform_id", platformID)
	}

	data, err := c.callEnvelope(ctx, http.MethodGet, "/chat/sessions", query, nil, "failed to list sessions")
	if err != nil {
		return nil, err
	}
	return data, nil
}

// GetSessionHistory fetches the opaque history payload for a session.
// The record format is owned by the server and passed through
// untouched.
func (c *Client) GetSessionHistory(ctx context.Context, sessionID string) (json.RawMessage, error) {
	query := url.Values{"session_id": {sessionID}}

	data, err := c.callEnvelope(ctx, http.MethodGet, "/chat/get_session", query, nil, "failed to fetch session history")
	if err != nil {
		return nil, err
	}
	return data, nil
}

// DeleteSession removes a remote session.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	query := url.Values{"session_id": {sessionID}}

	_, err := c.callEnvelope(ctx, http.MethodGet, "/chat/delete_session", query, nil, "failed to delete session")
	return err
}
