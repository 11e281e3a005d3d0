// ABOUTME: Tests for multipart upload and raw downloads
// ABOUTME: Verifies the multipart field contract and MIME inference

package api

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentTypeForFile(t *testing.T) {
	cases := map[string]string{
		"photo.png":   "image/png",
		"photo.JPG":   "image/jpeg",
		"photo.jpeg":  "image/jpeg",
		"clip.wav":    "audio/wav",
		"song.mp3":    "audio/mpeg",
		"data.bin":    "application/octet-stream",
		"no-ext":      "application/octet-stream",
		"weird.xyzzy": "application/octet-stream",
	}
	for name, want := range cases {
		assert.Equal(t, want, contentTypeForFile(name), name)
	}
}

func TestUploadFile_MissingFileNoNetwork(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))

	result, ok := client.UploadFile(context.Background(), filepath.Join(t.TempDir(), "nope.png"))

	assert.False(t, ok)
	assert.Nil(t, result)
	assert.Zero(t, calls.Load(), "missing file must fail before the network")
}

func TestUploadFile_Success(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pic.png")
	require.NoError(t, os.WriteFile(path, []byte("png-bytes"), 0644))

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/chat/post_file", r.URL.Path)
		assert.Equal(t, "Bearer T", r.Header.Get("Authorization"))
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data"),
			"upload must carry the multipart boundary header, not JSON")

		file, header, err := r.FormFile("file")
		require.NoError(t, err, "multipart field must be named 'file'")
		defer file.Close()

		assert.Equal(t, "pic.png", header.Filename)
		assert.Equal(t, "image/png", header.Header.Get("Content-Type"))
		content, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "png-bytes", string(content))

		writeEnvelope(t, w, "ok", map[string]string{
			"attachment_id": "att-1",
			"filename":      "pic.png",
			"type":          "image",
		}, "")
	}))
	client.SetToken("T")

	result, ok := client.UploadFile(context.Background(), path)

	require.True(t, ok)
	assert.Equal(t, "att-1", result.AttachmentID)
	assert.Equal(t, "pic.png", result.Filename)
	assert.Equal(t, "image", result.Type)
}

func TestUploadFile_ServerRejection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pic.png")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(t, w, "error", nil, "too large")
	}))

	result, ok := client.UploadFile(context.Background(), path)

	assert.False(t, ok)
	assert.Nil(t, result, "callers only learn that it failed")
}

func TestDownloadFile_WritesBodyVerbatim(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat/get_file", r.URL.Path)
		assert.Equal(t, "report.pdf", r.URL.Query().Get("filename"))
		w.Write([]byte{0x25, 0x50, 0x44, 0x46, 0x00, 0xff})
	}))

	dest := filepath.Join(t.TempDir(), "out.pdf")
	require.True(t, client.DownloadFile(context.Background(), "report.pdf", dest))

	content, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x25, 0x50, 0x44, 0x46, 0x00, 0xff}, content)
}

func TestGetAttachment_Success(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat/get_attachment", r.URL.Path)
		assert.Equal(t, "att-1", r.URL.Query().Get("attachment_id"))
		w.Write([]byte("attachment-bytes"))
	}))

	dest := filepath.Join(t.TempDir(), "att.bin")
	require.True(t, client.GetAttachment(context.Background(), "att-1", dest))

	content, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "attachment-bytes", string(content))
}

func TestDownloadFile_HTTPErrorIsFalse(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	dest := filepath.Join(t.TempDir(), "out")
	assert.False(t, client.DownloadFile(context.Background(), "missing", dest))
	_, err := os.Stat(dest)
	assert.True(t, os.IsNotExist(err), "nothing should be written on a rejected download")
}
