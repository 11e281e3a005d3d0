// Package api implements the HTTP client for the remote chat backend.
//
// # Overview
//
// A Client owns one logical connection to one server: the base URL,
// the login credentials, the bearer token issued at login, and the
// connection state observable through a single listener. All
// request/response operations (login, session management, file
// transfer) share a lazily created HTTP client; each streaming send
// owns a dedicated short-lived connection instead.
//
// # Failure contract
//
// Expected failures never panic and never escape as anything but
// values. Request/response operations return errors (or a bare bool
// where the caller only needs success/failure). The streaming
// dispatcher converts every failure category into a single terminal
// "error" event on its channel, so consumers run one loop with no
// separate failure path. No operation retries; retry policy belongs to
// the caller.
//
// # Streaming
//
// SendMessage returns a channel of SSEEvent values parsed from the
// server's text/event-stream response, one per "data: " line:
//
//	events := client.SendTextMessage(ctx, sessionID, "hello", nil)
//	for ev := range events {
//	    switch ev.Type {
//	    case api.EventPlain:
//	        fmt.Print(ev.Data)
//	    case api.EventError:
//	        fmt.Println("failed:", ev.Data)
//	    }
//	}
//
// The channel closes after an "end" event, when the stream closes, or
// when ctx is cancelled. Cancellation releases the connection promptly
// and is not an error.
package api
