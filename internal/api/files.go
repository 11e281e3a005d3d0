// ABOUTME: Attachment upload (multipart) and raw file/attachment download
// ABOUTME: Upload failures are logged, not returned; callers get a bool

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// mimeByExt maps known file extensions to the content type sent on
// upload. Unknown extensions fall back to application/octet-stream.
var mimeByExt = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
	".bmp":  "image/bmp",
	".wav":  "audio/wav",
	".mp3":  "audio/mpeg",
	".ogg":  "audio/ogg",
}

// contentTypeForFile returns the upload content type for a filename.
func contentTypeForFile(name string) string {
	if ct, ok := mimeByExt[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// UploadResult is the server's description of a stored attachment.
type UploadResult struct {
	AttachmentID string `json:"attachment_id"`
	Filename     string `json:"filename"`
	Type         string `json:"type"`
}

// UploadFile sends a local file to the server as a multipart attachment
// and returns the server-assigned attachment record. A missing local
// file fails fast with no network call.
//
// Callers only learn success or failure; the underlying cause is
// logged. The request carries the multipart boundary header only, not
// the JSON content type.
func (c *Client) UploadFile(ctx context.Context, path string) (*UploadResult, bool) {
	if _, err := os.Stat(path); err != nil {
		c.logger.Warn("upload skipped, file not found", "path", path)
		return nil, false
	}

	content, err := os.ReadFile(path)
	if err != nil {
		c.logger.Error("upload failed reading file", "path", path, "error", err)
		return nil, false
	}

	filename := filepath.Base(path)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	header.Set("Content-Type", contentTypeForFile(filename))
	part, err := writer.CreatePart(header)
	if err != nil {
		c.logger.Error("upload failed building form", "error", err)
		return nil, false
	}
	if _, err := part.Write(content); err != nil {
		c.logger.Error("upload failed building form", "error", err)
		return nil, false
	}
	if err := writer.Close(); err != nil {
		c.logger.Error("upload failed building form", "error", err)
		return nil, false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase()+"/chat/post_file", &body)
	if err != nil {
		c.logger.Error("upload failed creating request", "error", err)
		return nil, false
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.ensureClient().Do(req)
	if err != nil {
		c.logger.Error("upload failed", "path", path, "error", err)
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("upload rejected", "path", path, "status", resp.StatusCode)
		return nil, false
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		c.logger.Error("upload response malformed", "error", err)
		return nil, false
	}
	if env.Status != "ok" {
		c.logger.Error("upload rejected by server", "message", env.Message)
		return nil, false
	}

	var result UploadResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		c.logger.Error("upload response malformed", "error", err)
		return nil, false
	}

	c.logger.Debug("uploaded file", "path", path, "attachment_id", result.AttachmentID)
	return &result, true
}

// DownloadFile fetches a server file by name and writes its bytes to
// savePath verbatim. Partial writes on failure are possible; the bool
// result is the whole contract.
func (c *Client) DownloadFile(ctx context.Context, filename, savePath string) bool {
	return c.downloadRaw(ctx, "/chat/get_file", url.Values{"filename": {filename}}, savePath)
}

// GetAttachment fetches an uploaded attachment by identifier and
// writes its bytes to savePath.
func (c *Client) GetAttachment(ctx context.Context, attachmentID, savePath string) bool {
	return c.downloadRaw(ctx, "/chat/get_attachment", url.Values{"attachment_id": {attachmentID}}, savePath)
}

// downloadRaw performs an authenticated GET whose body is raw file
// bytes and streams it to savePath.
func (c *Client) downloadRaw(ctx context.Context, path string, query url.Values, savePath string) bool {
	u := c.apiBase() + path + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		c.logger.Error("download failed creating request", "error", err)
		return false
	}
	c.authHeaders(req.Header)

	resp, err := c.ensureClient().Do(req)
	if err != nil {
		c.logger.Error("download failed", "path", path, "error", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("download rejected", "path", path, "status", resp.StatusCode)
		return false
	}

	out, err := os.Create(savePath)
	if err != nil {
		c.logger.Error("download failed opening destination", "save_path", savePath, "error", err)
		return false
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		c.logger.Error("download failed writing", "save_path", savePath, "error", err)
		return false
	}
	return true
}
