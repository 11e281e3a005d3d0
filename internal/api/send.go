// ABOUTME: Streaming message dispatcher: POST /chat/send consumed as SSE
// ABOUTME: One ephemeral HTTP/1.1 connection per send, released on every exit path

package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"
)

const (
	// defaultStreamReadTimeout is the maximum silence between SSE lines
	// before the stream is abandoned. Deliberately long: the backend may
	// think for minutes before its first chunk.
	defaultStreamReadTimeout = 5 * time.Minute

	// streamWriteTimeout bounds the TLS handshake and request write
	// phase of a send.
	streamWriteTimeout = 30 * time.Second

	// streamLineLimit caps a single SSE line. Image events embed
	// payloads far beyond bufio's default 64K.
	streamLineLimit = 4 * 1024 * 1024
)

// SendOptions tunes a single send. The zero value streams with the
// server's default provider and model.
type SendOptions struct {
	// Provider selects the LLM provider for this message.
	Provider string

	// Model selects the model for this message.
	Model string

	// DisableStreaming asks the server for a single final response
	// instead of incremental chunks.
	DisableStreaming bool
}

// sendRequest is the JSON body of POST /api/chat/send.
type sendRequest struct {
	SessionID       string  `json:"session_id"`
	Message         Message `json:"message"`
	EnableStreaming bool    `json:"enable_streaming"`
	Provider        string  `json:"selected_provider,omitempty"`
	Model           string  `json:"selected_model,omitempty"`
}

// SendMessage sends a chat message and returns a channel of parsed
// stream events. The channel is closed when the server emits an "end"
// event, when the stream closes, or when ctx is cancelled; cancelling
// promptly releases the underlying connection and delivers nothing
// further. Every transport or HTTP failure surfaces as exactly one
// EventError event before the channel closes, so a consuming loop
// needs no separate failure path.
//
// Each call owns a dedicated, ephemeral HTTP/1.1 connection:
// keep-alive, HTTP/2, and response compression are all disabled, and
// the server is told to close the connection after the response.
// Pooled or multiplexed transports were observed to buffer the final
// chunk until an unrelated request flushed it; the connection-setup
// cost buys prompt delivery. Do not route sends through the shared
// request/response client.
//
// Concurrent SendMessage calls on one Client are not serialized: each
// opens its own connection and channel, with no ordering between the
// two event sequences.
func (c *Client) SendMessage(ctx context.Context, sessionID string, message Message, opts *SendOptions) <-chan SSEEvent {
	events := make(chan SSEEvent)
	go c.streamSend(ctx, sessionID, message, opts, events)
	return events
}

// newStreamClient builds the single-use client for one send.
// TLSNextProto is set to an empty map to force HTTP/1.1: h2 flow
// control was observed to delay chunk delivery.
func (c *Client) newStreamClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: connectTimeout,
			}).DialContext,
			TLSNextProto:          map[string]func(string, *tls.Conn) http.RoundTripper{},
			ForceAttemptHTTP2:     false,
			DisableKeepAlives:     true,
			DisableCompression:    true,
			TLSHandshakeTimeout:   streamWriteTimeout,
			ResponseHeaderTimeout: c.streamReadTimeout,
		},
	}
}

// streamSend runs one send to completion, emitting events until a
// terminal condition. It owns the events channel and always closes it.
func (c *Client) streamSend(ctx context.Context, sessionID string, message Message, opts *SendOptions, events chan<- SSEEvent) {
	defer close(events)

	if opts == nil {
		opts = &SendOptions{}
	}
	body := sendRequest{
		SessionID:       sessionID,
		Message:         message,
		EnableStreaming: !opts.DisableStreaming,
		Provider:        opts.Provider,
		Model:           opts.Model,
	}
	encoded, err := json.Marshal(body)
	if err != nil {
		emit(ctx, events, errorEvent(fmt.Sprintf("encoding message: %v", err)))
		return
	}

	// reqCtx lets the read watchdog sever a stalled connection without
	// being confused with a caller cancel.
	reqCtx, cancelReq := context.WithCancel(ctx)
	defer cancelReq()

	var timedOut atomic.Bool
	watchdog := time.AfterFunc(c.streamReadTimeout, func() {
		timedOut.Store(true)
		cancelReq()
	})
	defer watchdog.Stop()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.apiBase()+"/chat/send", bytes.NewReader(encoded))
	if err != nil {
		emit(ctx, events, errorEvent(fmt.Sprintf("creating request: %v", err)))
		return
	}
	c.authHeaders(req.Header)
	// Identity encoding and no-cache keep intermediaries from buffering
	// the stream; Close tells the server this connection ends with the
	// response.
	req.Header.Set("Accept-Encoding", "identity")
	req.Header.Set("Cache-Control", "no-cache")
	req.Close = true

	client := c.newStreamClient()
	defer client.CloseIdleConnections()

	resp, err := client.Do(req)
	if err != nil {
		switch {
		case ctx.Err() != nil:
			// Caller cancelled; not an error, nothing to deliver.
		case timedOut.Load():
			emit(ctx, events, errorEvent("request timed out waiting for the server"))
		default:
			emit(ctx, events, errorEvent(describeTransportError(err).Error()))
		}
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		emit(ctx, events, errorEvent(fmt.Sprintf("HTTP %d", resp.StatusCode)))
		return
	}

	scanner := newLineScanner(resp.Body)
	for scanner.Scan() {
		watchdog.Reset(c.streamReadTimeout)

		line := scanner.Text()
		if line == "" {
			continue
		}

		ev, ok := parseSSELine(line)
		if !ok {
			continue
		}

		// The channel send doubles as the cooperative yield between
		// events; a cancelled consumer is detected here and the
		// connection released via the deferred Body.Close.
		if !emit(ctx, events, ev) {
			return
		}

		if ev.Type == EventEnd {
			return
		}
	}

	if err := scanner.Err(); err != nil {
		switch {
		case ctx.Err() != nil:
			// Cancellation mid-stream is expected, not an error.
		case timedOut.Load():
			emit(ctx, events, errorEvent("stream timed out waiting for the server"))
		default:
			emit(ctx, events, errorEvent(fmt.Sprintf("reading stream: %v", err)))
		}
	}
}

// emit delivers one event unless the caller has gone away. Returns
// false when ctx is done, which callers treat as cancellation.
func emit(ctx context.Context, events chan<- SSEEvent, ev SSEEvent) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
