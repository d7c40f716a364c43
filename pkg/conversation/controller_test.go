package conversation

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type askFunc func(ctx context.Context, query string) (string, error)

func (f askFunc) Ask(ctx context.Context, query string) (string, error) {
	return f(ctx, query)
}

type fakeClipboard struct {
	text string
	err  error
}

func (c *fakeClipboard) Write(text string) error {
	c.text = text
	return c.err
}

type fakeSharer struct {
	called bool
	err    error
}

func (s *fakeSharer) Share(title, text string) error {
	s.called = true
	return s.err
}

func TestSubmitRejectsEmptyText(t *testing.T) {
	var calls atomic.Int32
	client := askFunc(func(ctx context.Context, query string) (string, error) {
		calls.Add(1)
		return "reply", nil
	})
	ctrl := New(client, Capabilities{})

	for _, input := range []string{"", "   ", "\n\t "} {
		_, err := ctrl.Submit(context.Background(), input)
		require.ErrorIs(t, err, ErrEmpty)
	}

	assert.Zero(t, ctrl.Len())
	assert.Zero(t, calls.Load())
	assert.False(t, ctrl.Pending())
}

func TestSubmitSuccessAppendsExchange(t *testing.T) {
	client := askFunc(func(ctx context.Context, query string) (string, error) {
		assert.Equal(t, "hola", query)
		return "¡Hola!", nil
	})
	ctrl := New(client, Capabilities{})

	reply, err := ctrl.Submit(context.Background(), "hola")
	require.NoError(t, err)
	assert.Equal(t, "¡Hola!", reply.Content)
	assert.False(t, reply.Error)

	messages := ctrl.Snapshot()
	require.Len(t, messages, 2)
	assert.Equal(t, AuthorUser, messages[0].Author)
	assert.Equal(t, "hola", messages[0].Content)
	assert.False(t, messages[0].Error)
	assert.Equal(t, AuthorAssistant, messages[1].Author)
	assert.Equal(t, "¡Hola!", messages[1].Content)
	assert.False(t, messages[1].Error)
	assert.NotEmpty(t, messages[0].ID)
	assert.NotEqual(t, messages[0].ID, messages[1].ID)
	assert.False(t, ctrl.Pending())
}

func TestSubmitFailureAppendsFallback(t *testing.T) {
	client := askFunc(func(ctx context.Context, query string) (string, error) {
		return "", errors.New("connection reset")
	})
	ctrl := New(client, Capabilities{})

	reply, err := ctrl.Submit(context.Background(), "hola")
	require.NoError(t, err)
	assert.True(t, reply.Error)
	assert.Equal(t, FallbackText, reply.Content)

	messages := ctrl.Snapshot()
	require.Len(t, messages, 2)
	assert.Equal(t, "hola", messages[0].Content)
	assert.Equal(t, FallbackText, messages[1].Content)
	assert.True(t, messages[1].Error)
	assert.False(t, ctrl.Pending())
}

func TestSubmitTrimsInput(t *testing.T) {
	client := askFunc(func(ctx context.Context, query string) (string, error) {
		assert.Equal(t, "hola", query)
		return "ok", nil
	})
	ctrl := New(client, Capabilities{})

	_, err := ctrl.Submit(context.Background(), "  hola  \n")
	require.NoError(t, err)
	assert.Equal(t, "hola", ctrl.Snapshot()[0].Content)
}

func TestSubmitRejectsWhilePending(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	client := askFunc(func(ctx context.Context, query string) (string, error) {
		calls.Add(1)
		close(started)
		<-release
		return "tarde pero seguro", nil
	})
	ctrl := New(client, Capabilities{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := ctrl.Submit(context.Background(), "primera")
		assert.NoError(t, err)
	}()

	<-started
	assert.True(t, ctrl.Pending())

	_, err := ctrl.Submit(context.Background(), "segunda")
	require.ErrorIs(t, err, ErrBusy)

	close(release)
	<-done

	assert.False(t, ctrl.Pending())
	assert.Equal(t, int32(1), calls.Load())

	messages := ctrl.Snapshot()
	require.Len(t, messages, 2)
	assert.Equal(t, "primera", messages[0].Content)
	assert.Equal(t, "tarde pero seguro", messages[1].Content)
}

func TestClearEmptiesLog(t *testing.T) {
	client := askFunc(func(ctx context.Context, query string) (string, error) {
		return "ok", nil
	})
	ctrl := New(client, Capabilities{})

	_, err := ctrl.Submit(context.Background(), "hola")
	require.NoError(t, err)
	require.Equal(t, 2, ctrl.Len())

	ctrl.Clear()
	assert.Zero(t, ctrl.Len())
	assert.Empty(t, ctrl.Snapshot())

	// clearing an already empty log is fine
	ctrl.Clear()
	assert.Zero(t, ctrl.Len())
}

func TestSnapshotIsACopy(t *testing.T) {
	client := askFunc(func(ctx context.Context, query string) (string, error) {
		return "ok", nil
	})
	ctrl := New(client, Capabilities{})
	_, err := ctrl.Submit(context.Background(), "hola")
	require.NoError(t, err)

	snapshot := ctrl.Snapshot()
	snapshot[0].Content = "mutated"

	assert.Equal(t, "hola", ctrl.Snapshot()[0].Content)
}

func TestTranscriptFormat(t *testing.T) {
	client := askFunc(func(ctx context.Context, query string) (string, error) {
		return "¡Hola!", nil
	})
	ctrl := New(client, Capabilities{})
	_, err := ctrl.Submit(context.Background(), "hola")
	require.NoError(t, err)

	assert.Equal(t, "User: hola\n\nAssistant: ¡Hola!", ctrl.Transcript())
}

func TestShareOrCopyUsesNativeShare(t *testing.T) {
	client := askFunc(func(ctx context.Context, query string) (string, error) {
		return "ok", nil
	})
	sharer := &fakeSharer{}
	clip := &fakeClipboard{}
	ctrl := New(client, Capabilities{Clipboard: clip, Sharer: sharer})
	_, err := ctrl.Submit(context.Background(), "hola")
	require.NoError(t, err)

	notice := ctrl.ShareOrCopy()
	assert.True(t, sharer.called)
	assert.Empty(t, clip.text)
	assert.Equal(t, ShareDoneText, notice.Content)
	assert.False(t, notice.Error)
	assert.Equal(t, AuthorAssistant, notice.Author)
	assert.Equal(t, 3, ctrl.Len())
}

func TestShareOrCopyFallsBackToClipboard(t *testing.T) {
	client := askFunc(func(ctx context.Context, query string) (string, error) {
		return "¡Hola!", nil
	})
	sharer := &fakeSharer{err: ErrShareUnsupported}
	clip := &fakeClipboard{}
	ctrl := New(client, Capabilities{Clipboard: clip, Sharer: sharer})
	_, err := ctrl.Submit(context.Background(), "hola")
	require.NoError(t, err)

	notice := ctrl.ShareOrCopy()
	assert.Equal(t, ShareCopiedText, notice.Content)
	assert.False(t, notice.Error)
	assert.Equal(t, "User: hola\n\nAssistant: ¡Hola!", clip.text)
}

func TestShareOrCopySkipsShareWhenEmpty(t *testing.T) {
	client := askFunc(func(ctx context.Context, query string) (string, error) {
		return "ok", nil
	})
	sharer := &fakeSharer{}
	clip := &fakeClipboard{}
	ctrl := New(client, Capabilities{Clipboard: clip, Sharer: sharer})

	notice := ctrl.ShareOrCopy()
	assert.False(t, sharer.called)
	assert.Equal(t, ShareCopiedText, notice.Content)
}

func TestShareOrCopyShareFailure(t *testing.T) {
	client := askFunc(func(ctx context.Context, query string) (string, error) {
		return "ok", nil
	})
	sharer := &fakeSharer{err: errors.New("share service crashed")}
	clip := &fakeClipboard{}
	ctrl := New(client, Capabilities{Clipboard: clip, Sharer: sharer})
	_, err := ctrl.Submit(context.Background(), "hola")
	require.NoError(t, err)

	notice := ctrl.ShareOrCopy()
	assert.True(t, notice.Error)
	assert.Equal(t, ShareFailedText, notice.Content)
	assert.Empty(t, clip.text)
}

func TestShareOrCopyClipboardFailure(t *testing.T) {
	client := askFunc(func(ctx context.Context, query string) (string, error) {
		return "ok", nil
	})
	clip := &fakeClipboard{err: errors.New("no clipboard")}
	ctrl := New(client, Capabilities{Clipboard: clip})
	_, err := ctrl.Submit(context.Background(), "hola")
	require.NoError(t, err)

	notice := ctrl.ShareOrCopy()
	assert.True(t, notice.Error)
	assert.Equal(t, ShareFailedText, notice.Content)
}

func TestShareOrCopyWithoutCapabilities(t *testing.T) {
	client := askFunc(func(ctx context.Context, query string) (string, error) {
		return "ok", nil
	})
	ctrl := New(client, Capabilities{})

	notice := ctrl.ShareOrCopy()
	assert.True(t, notice.Error)
	assert.Equal(t, ShareFailedText, notice.Content)
	assert.Equal(t, 1, ctrl.Len())
}
