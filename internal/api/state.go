// ABOUTME: Connection state enum and single-listener change notification
// ABOUTME: State transitions fire the listener exactly once per distinct change

package api

// ConnectionState describes the client's current relationship to the server.
type ConnectionState string

const (
	StateDisconnected ConnectionState = "disconnected"
	StateConnecting   ConnectionState = "connecting"
	StateConnected    ConnectionState = "connected"
	StateReconnecting ConnectionState = "reconnecting"
	StateError        ConnectionState = "error"
)

// StateListener receives connection state changes. It is invoked
// synchronously from whichever operation caused the transition, so it
// must not block or call back into the client.
type StateListener func(ConnectionState)

// State returns the current connection state.
func (c *Client) State() ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsConnected reports whether the client currently holds a validated
// connection to the server.
func (c *Client) IsConnected() bool {
	return c.State() == StateConnected
}

// setState records a new connection state and notifies the listener.
// Setting the current state again is a no-op: the listener fires once
// per distinct transition, never for repeats.
func (c *Client) setState(s ConnectionState) {
	c.mu.Lock()
	if c.state == s {
		c.mu.Unlock()
		return
	}
	c.state = s
	listener := c.onStateChange
	c.mu.Unlock()

	if listener != nil {
		listener(s)
	}
}
