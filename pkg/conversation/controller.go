package conversation

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/psiconervio/minichat/pkg/assistant"
	"github.com/psiconervio/minichat/pkg/logger"
)

// User-facing copy. Failure causes are collapsed into FallbackText; the real
// cause only goes to the log.
const (
	FallbackText    = "Lo siento, ha ocurrido un error. Por favor, inténtalo de nuevo."
	ShareDoneText   = "Conversación compartida."
	ShareCopiedText = "Transcripción copiada al portapapeles."
	ShareFailedText = "No se pudo compartir la conversación."
)

var (
	// ErrEmpty rejects a submission whose trimmed text is empty.
	ErrEmpty = errors.New("empty message")
	// ErrBusy rejects a submission while a request is already in flight.
	ErrBusy = errors.New("a request is already pending")
)

// Controller owns the ordered message log and the single pending flag. It
// issues at most one assistant request at a time; a second submission while
// one is in flight is rejected, not queued. Safe for concurrent use.
type Controller struct {
	mu       sync.RWMutex
	messages []Message
	pending  bool

	client assistant.Client
	caps   Capabilities
}

func New(client assistant.Client, caps Capabilities) *Controller {
	return &Controller{client: client, caps: caps}
}

// Submit appends the user message, asks the assistant and appends its reply.
// Any failure (transport, non-2xx status, backend error field) is converted
// into an error-flagged assistant message with the fixed fallback text; the
// returned Message is whichever assistant entry was appended. The only error
// returns are the ErrEmpty / ErrBusy rejections, which leave the log
// untouched.
func (c *Controller) Submit(ctx context.Context, text string) (Message, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Message{}, ErrEmpty
	}

	c.mu.Lock()
	if c.pending {
		c.mu.Unlock()
		return Message{}, ErrBusy
	}
	c.pending = true
	c.messages = append(c.messages, newMessage(AuthorUser, trimmed, false))
	c.mu.Unlock()

	// The flag must never stay stuck, whatever the request does.
	defer func() {
		c.mu.Lock()
		c.pending = false
		c.mu.Unlock()
	}()

	var reply Message
	answer, err := c.client.Ask(ctx, trimmed)
	if err != nil {
		logger.WarnCF("conversation", "Assistant request failed", map[string]interface{}{
			"error": err.Error(),
		})
		reply = newMessage(AuthorAssistant, FallbackText, true)
	} else {
		reply = newMessage(AuthorAssistant, answer, false)
	}

	c.mu.Lock()
	c.messages = append(c.messages, reply)
	c.mu.Unlock()

	return reply, nil
}

// Pending reports whether an assistant request is in flight.
func (c *Controller) Pending() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pending
}

// Clear empties the message log unconditionally. Confirmation prompts are a
// front-end concern.
func (c *Controller) Clear() {
	c.mu.Lock()
	c.messages = nil
	c.mu.Unlock()
}

// Snapshot returns a copy of the message log for rendering.
func (c *Controller) Snapshot() []Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of messages in the log.
func (c *Controller) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.messages)
}

// ShareOrCopy flattens the conversation into a text transcript and hands it
// to the native share facility when one exists and there is something to
// share, falling back to the clipboard otherwise. The outcome is appended to
// the log as an assistant message (error-flagged on failure) and returned.
// Best-effort: capability failures never propagate.
func (c *Controller) ShareOrCopy() Message {
	transcript := c.Transcript()

	shared := false
	failed := false
	if c.caps.Sharer != nil && c.Len() > 0 {
		switch err := c.caps.Sharer.Share("minichat", transcript); {
		case err == nil:
			shared = true
		case errors.Is(err, ErrShareUnsupported):
			// fall through to the clipboard
		default:
			logger.WarnCF("conversation", "Share handoff failed", map[string]interface{}{
				"error": err.Error(),
			})
			failed = true
		}
	}

	var notice Message
	switch {
	case shared:
		notice = newMessage(AuthorAssistant, ShareDoneText, false)
	case failed:
		notice = newMessage(AuthorAssistant, ShareFailedText, true)
	case c.caps.Clipboard == nil:
		notice = newMessage(AuthorAssistant, ShareFailedText, true)
	default:
		if err := c.caps.Clipboard.Write(transcript); err != nil {
			logger.WarnCF("conversation", "Clipboard write failed", map[string]interface{}{
				"error": err.Error(),
			})
			notice = newMessage(AuthorAssistant, ShareFailedText, true)
		} else {
			notice = newMessage(AuthorAssistant, ShareCopiedText, false)
		}
	}

	c.mu.Lock()
	c.messages = append(c.messages, notice)
	c.mu.Unlock()

	return notice
}

// Transcript flattens the log into "<Author>: <content>" lines separated by
// blank lines.
func (c *Controller) Transcript() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	parts := make([]string, 0, len(c.messages))
	for _, msg := range c.messages {
		parts = append(parts, authorLabel(msg.Author)+": "+msg.Content)
	}
	return strings.Join(parts, "\n\n")
}

func authorLabel(author Author) string {
	if author == AuthorUser {
		return "User"
	}
	return "Assistant"
}
