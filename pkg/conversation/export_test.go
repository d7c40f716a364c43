package conversation

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportJSONEmptyLog(t *testing.T) {
	ctrl := New(askFunc(func(ctx context.Context, query string) (string, error) {
		return "", nil
	}), Capabilities{})

	data, err := ctrl.ExportJSON()
	require.NoError(t, err)

	var entries []ExportEntry
	require.NoError(t, json.Unmarshal(data, &entries))
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
	assert.Equal(t, "[]", string(data))
}

func TestExportJSONPreservesOrderAndFields(t *testing.T) {
	replies := []string{"primera respuesta", "segunda respuesta"}
	var i int
	ctrl := New(askFunc(func(ctx context.Context, query string) (string, error) {
		reply := replies[i]
		i++
		return reply, nil
	}), Capabilities{})

	for _, text := range []string{"uno", "dos"} {
		_, err := ctrl.Submit(context.Background(), text)
		require.NoError(t, err)
	}

	data, err := ctrl.ExportJSON()
	require.NoError(t, err)

	var entries []ExportEntry
	require.NoError(t, json.Unmarshal(data, &entries))
	require.Len(t, entries, 4)

	assert.Equal(t, "user", entries[0].Role)
	assert.Equal(t, "uno", entries[0].Content)
	assert.Equal(t, "assistant", entries[1].Role)
	assert.Equal(t, "primera respuesta", entries[1].Content)
	assert.Equal(t, "user", entries[2].Role)
	assert.Equal(t, "dos", entries[2].Content)
	assert.Equal(t, "assistant", entries[3].Role)
	assert.Equal(t, "segunda respuesta", entries[3].Content)

	for _, entry := range entries {
		assert.False(t, entry.Timestamp.IsZero())
	}
}

func TestExportFileName(t *testing.T) {
	now := time.Date(2026, 8, 29, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, "chat-history-2026-08-29.json", ExportFileName(now))
}

func TestRenderHTMLEscapesUserContent(t *testing.T) {
	entries := []ExportEntry{
		{Role: "user", Content: "<script>alert(1)</script>", Timestamp: time.Now()},
	}
	html := string(RenderHTML(entries))
	assert.NotContains(t, html, "<script>alert(1)</script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestRenderHTMLRendersAssistantMarkdown(t *testing.T) {
	entries := []ExportEntry{
		{Role: "assistant", Content: "una **respuesta** con *énfasis*", Timestamp: time.Now()},
	}
	html := string(RenderHTML(entries))
	assert.Contains(t, html, "<strong>respuesta</strong>")
	assert.Contains(t, html, "<em>énfasis</em>")
}

func TestExportHTMLMatchesLog(t *testing.T) {
	ctrl := New(askFunc(func(ctx context.Context, query string) (string, error) {
		return "**negrita**", nil
	}), Capabilities{})
	_, err := ctrl.Submit(context.Background(), "hola")
	require.NoError(t, err)

	html := string(ctrl.ExportHTML())
	assert.Contains(t, html, "hola")
	assert.Contains(t, html, "<strong>negrita</strong>")
}
