// Package archive persists chat transcripts locally in SQLite.
//
// The archive is strictly a client-side convenience: the chat REPL
// appends events as they stream in, and the export command reads them
// back. Nothing in the API client depends on it, and deleting the
// archive file loses nothing the server does not also hold.
package archive
