// ABOUTME: Tests for the SQLite transcript archive
// ABOUTME: Round-trips sessions and events on a temp database

package archive

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestArchive(t *testing.T) *Archive {
	t.Helper()
	a, err := Open(filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestAppend_RoundTrip(t *testing.T) {
	a := openTestArchive(t)
	ctx := context.Background()

	require.NoError(t, a.Append(ctx, "sess-1", "webchat", &Event{Role: "user", Type: "plain", Body: "hello"}))
	require.NoError(t, a.Append(ctx, "sess-1", "webchat", &Event{Role: "assistant", Type: "plain", Body: "hi there"}))

	events, err := a.Events(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, "user", events[0].Role)
	assert.Equal(t, "hello", events[0].Body)
	assert.Equal(t, "assistant", events[1].Role)
	assert.NotEmpty(t, events[0].ID, "missing IDs are filled in")
	assert.False(t, events[0].Timestamp.IsZero())
}

func TestAppend_RequiresSessionID(t *testing.T) {
	a := openTestArchive(t)
	err := a.Append(context.Background(), "", "webchat", &Event{Role: "user", Type: "plain", Body: "x"})
	require.Error(t, err)
}

func TestEvents_ChronologicalOrder(t *testing.T) {
	a := openTestArchive(t)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	require.NoError(t, a.Append(ctx, "s", "webchat", &Event{Role: "user", Type: "plain", Body: "second", Timestamp: base.Add(time.Minute)}))
	require.NoError(t, a.Append(ctx, "s", "webchat", &Event{Role: "user", Type: "plain", Body: "first", Timestamp: base}))

	events, err := a.Events(ctx, "s")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "first", events[0].Body)
	assert.Equal(t, "second", events[1].Body)
}

func TestEvents_UnknownSessionIsEmpty(t *testing.T) {
	a := openTestArchive(t)
	events, err := a.Events(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestSessions_CountsAndOrder(t *testing.T) {
	a := openTestArchive(t)
	ctx := context.Background()

	require.NoError(t, a.Append(ctx, "older", "webchat", &Event{Role: "user", Type: "plain", Body: "1"}))
	require.NoError(t, a.Append(ctx, "newer", "desktop", &Event{Role: "user", Type: "plain", Body: "1"}))
	require.NoError(t, a.Append(ctx, "newer", "desktop", &Event{Role: "assistant", Type: "plain", Body: "2"}))

	sessions, err := a.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	assert.Equal(t, "newer", sessions[0].ID, "most recently updated first")
	assert.Equal(t, 2, sessions[0].EventCount)
	assert.Equal(t, "desktop", sessions[0].PlatformID)
	assert.Equal(t, 1, sessions[1].EventCount)
}

func TestOpen_CreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "nested", "archive.db")
	a, err := Open(path)
	require.NoError(t, err)
	defer a.Close()

	require.NoError(t, a.Append(context.Background(), "s", "webchat", &Event{Role: "user", Type: "plain", Body: "x"}))
}
