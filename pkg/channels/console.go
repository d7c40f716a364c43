package channels

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ergochat/readline"
	"golang.org/x/term"

	"github.com/psiconervio/minichat/pkg/conversation"
)

const (
	colorRed   = "\x1b[31m"
	colorDim   = "\x1b[2m"
	colorReset = "\x1b[0m"
)

// Console is the interactive terminal front-end over the conversation
// controller. Besides plain messages it understands a few slash commands:
// /export, /share, /clear and /quit.
type Console struct {
	controller *conversation.Controller
	saver      conversation.FileSaver
	prompt     string
	out        io.Writer
	color      bool
}

func NewConsole(controller *conversation.Controller, saver conversation.FileSaver, prompt string) *Console {
	if prompt == "" {
		prompt = "> "
	}
	return &Console{
		controller: controller,
		saver:      saver,
		prompt:     prompt,
		out:        os.Stdout,
		color:      term.IsTerminal(int(os.Stdout.Fd())),
	}
}

func (c *Console) Run(ctx context.Context) error {
	rl, err := readline.NewFromConfig(&readline.Config{
		Prompt: c.prompt,
	})
	if err != nil {
		return fmt.Errorf("initializing readline: %w", err)
	}
	defer rl.Close()

	fmt.Fprintln(c.out, "minichat - escribe un mensaje, o /export, /share, /clear, /quit")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := rl.ReadLine()
		if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		if c.execute(ctx, line) {
			return nil
		}
	}
}

// execute handles one input line; it returns true when the session should
// end.
func (c *Console) execute(ctx context.Context, line string) bool {
	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "":
		return false
	case trimmed == "/quit" || trimmed == "/exit":
		return true
	case trimmed == "/clear":
		c.controller.Clear()
		c.printDim("Conversación borrada.")
		return false
	case trimmed == "/share":
		notice := c.controller.ShareOrCopy()
		c.printMessage(notice)
		return false
	case trimmed == "/export":
		c.export()
		return false
	case strings.HasPrefix(trimmed, "/"):
		c.printDim("Comando desconocido: " + trimmed)
		return false
	}

	reply, err := c.controller.Submit(ctx, trimmed)
	switch {
	case errors.Is(err, conversation.ErrBusy):
		c.printDim("Espera la respuesta anterior.")
		return false
	case err != nil:
		// ErrEmpty cannot happen past the trim above.
		return false
	}
	c.printMessage(reply)
	return false
}

func (c *Console) export() {
	data, err := c.controller.ExportJSON()
	if err != nil {
		c.printDim("No se pudo exportar la conversación.")
		return
	}
	name := conversation.ExportFileName(time.Now())
	if err := c.saver.Save(name, data); err != nil {
		c.printDim("No se pudo guardar " + name + ": " + err.Error())
		return
	}
	c.printDim("Conversación guardada en " + name)
}

func (c *Console) printMessage(msg conversation.Message) {
	if msg.Error && c.color {
		fmt.Fprintln(c.out, colorRed+msg.Content+colorReset)
		return
	}
	fmt.Fprintln(c.out, msg.Content)
}

func (c *Console) printDim(text string) {
	if c.color {
		fmt.Fprintln(c.out, colorDim+text+colorReset)
		return
	}
	fmt.Fprintln(c.out, text)
}
