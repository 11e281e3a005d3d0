// ABOUTME: Renders an archived session transcript as a standalone HTML page
// ABOUTME: Assistant markdown goes through goldmark; user text is escaped

package export

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/astrdesk/astrdesk/internal/archive"
)

const pageHeader = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>astrdesk transcript %s</title>
<style>
body { font-family: sans-serif; max-width: 48rem; margin: 2rem auto; }
.user { background: #eef; padding: 0.5rem 1rem; border-radius: 8px; margin: 0.5rem 0; }
.assistant { background: #f5f5f5; padding: 0.5rem 1rem; border-radius: 8px; margin: 0.5rem 0; }
.meta { color: #888; font-size: 0.8rem; }
</style>
</head>
<body>
<h1>Session %s</h1>
`

// HTML writes a session transcript as a self-contained HTML document.
// Assistant message bodies are treated as markdown; user text and
// everything else is escaped verbatim.
func HTML(w io.Writer, sessionID string, events []archive.Event) error {
	id := html.EscapeString(sessionID)
	if _, err := fmt.Fprintf(w, pageHeader, id, id); err != nil {
		return err
	}

	for _, e := range events {
		body, err := renderBody(e)
		if err != nil {
			return fmt.Errorf("rendering event %s: %w", e.ID, err)
		}
		role := "assistant"
		if e.Role == "user" {
			role = "user"
		}
		_, err = fmt.Fprintf(w, "<div class=%q><div class=\"meta\">%s · %s</div>\n%s</div>\n",
			role,
			html.EscapeString(e.Role),
			e.Timestamp.Format("2006-01-02 15:04:05"),
			body)
		if err != nil {
			return err
		}
	}

	_, err := io.WriteString(w, "</body>\n</html>\n")
	return err
}

// renderBody converts one event body to HTML.
func renderBody(e archive.Event) (string, error) {
	if e.Role == "assistant" && e.Type == "plain" {
		var buf bytes.Buffer
		if err := goldmark.Convert([]byte(e.Body), &buf); err != nil {
			return "", err
		}
		return buf.String(), nil
	}

	if e.Type != "plain" {
		label := html.EscapeString(strings.TrimSpace(e.Type + " " + e.Body))
		return "<p><em>[" + label + "]</em></p>\n", nil
	}
	return "<p>" + html.EscapeString(e.Body) + "</p>\n", nil
}
