package conversation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"time"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// ExportEntry is one element of the export artifact.
type ExportEntry struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ExportFileName builds the dated artifact name, e.g.
// chat-history-2026-08-29.json.
func ExportFileName(now time.Time) string {
	return fmt.Sprintf("chat-history-%s.json", now.UTC().Format("2006-01-02"))
}

// Entries projects the log into export entries, preserving order. An empty
// log yields an empty (non-nil) slice.
func (c *Controller) Entries() []ExportEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entries := make([]ExportEntry, 0, len(c.messages))
	for _, msg := range c.messages {
		entries = append(entries, ExportEntry{
			Role:      string(msg.Author),
			Content:   msg.Content,
			Timestamp: msg.Timestamp,
		})
	}
	return entries
}

// ExportJSON serializes the full message log. Read-only; an empty log
// produces an empty JSON array, not a failure.
func (c *Controller) ExportJSON() ([]byte, error) {
	return json.MarshalIndent(c.Entries(), "", "  ")
}

// ExportHTML renders the log as a standalone HTML transcript. Assistant
// bodies are Markdown, mirroring what the widget renders client-side; user
// bodies are escaped verbatim.
func (c *Controller) ExportHTML() []byte {
	return RenderHTML(c.Entries())
}

// RenderHTML turns export entries into a standalone HTML transcript. Also
// used by the export command on previously saved JSON artifacts.
func RenderHTML(entries []ExportEntry) []byte {
	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n")
	buf.WriteString("<title>Chat transcript</title>\n")
	buf.WriteString("<style>body{font-family:system-ui,sans-serif;max-width:720px;margin:24px auto;padding:0 16px}" +
		".entry{margin:12px 0;padding:10px 14px;border-radius:10px}" +
		".user{background:#e8e6f0}.assistant{background:#f4f4f6}" +
		".role{font-size:12px;color:#666;margin-bottom:4px}</style>\n</head>\n<body>\n")

	for _, entry := range entries {
		fmt.Fprintf(&buf, "<div class=\"entry %s\">\n", html.EscapeString(entry.Role))
		fmt.Fprintf(&buf, "<div class=\"role\">%s · %s</div>\n",
			html.EscapeString(entry.Role), entry.Timestamp.UTC().Format(time.RFC3339))
		if entry.Role == string(AuthorAssistant) {
			buf.Write(renderMarkdown(entry.Content))
		} else {
			fmt.Fprintf(&buf, "<p>%s</p>", html.EscapeString(entry.Content))
		}
		buf.WriteString("\n</div>\n")
	}

	buf.WriteString("</body>\n</html>\n")
	return buf.Bytes()
}

func renderMarkdown(content string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{
		Flags: mdhtml.CommonFlags | mdhtml.SkipHTML,
	})
	return markdown.ToHTML([]byte(content), p, renderer)
}
