package platform

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/psiconervio/minichat/pkg/conversation"
)

const shareTimeout = 15 * time.Second

// CommandSharer hands a transcript to a configured host command (for example
// termux-share on Android hosts) with the text on stdin. An empty command
// means the host has no share facility.
type CommandSharer struct {
	Command string
}

func (s CommandSharer) Share(title, text string) error {
	fields := strings.Fields(s.Command)
	if len(fields) == 0 {
		return conversation.ErrShareUnsupported
	}

	ctx, cancel := context.WithTimeout(context.Background(), shareTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, fields[0], fields[1:]...)
	cmd.Stdin = strings.NewReader(title + "\n\n" + text)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("share command failed: %w (%s)", err, strings.TrimSpace(string(out)))
	}
	return nil
}
