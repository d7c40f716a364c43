package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/psiconervio/minichat/pkg/assistant"
	"github.com/psiconervio/minichat/pkg/channels"
	"github.com/psiconervio/minichat/pkg/config"
	"github.com/psiconervio/minichat/pkg/conversation"
	"github.com/psiconervio/minichat/pkg/logger"
	"github.com/psiconervio/minichat/pkg/platform"
	"github.com/psiconervio/minichat/pkg/prefs"
)

var version = "dev"

func main() {
	_ = godotenv.Load()
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "minichat",
		Short:         "Self-hosted chat front-end for a remote assistant backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "config file path")

	root.AddCommand(newServeCmd(&configPath))
	root.AddCommand(newChatCmd(&configPath))
	root.AddCommand(newExportCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	logger.Init(cfg.Log.Level)
	return cfg, nil
}

func buildController(cfg *config.Config) *conversation.Controller {
	client := assistant.NewHTTPClient(cfg.Assistant.BaseURL, cfg.AssistantTimeout())
	caps := conversation.Capabilities{
		Clipboard: platform.SystemClipboard{},
		Sharer:    platform.CommandSharer{Command: cfg.Channels.Console.ShareCommand},
	}
	return conversation.New(client, caps)
}

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web chat widget server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			store, err := prefs.Open(cfg.PrefsPath())
			if err != nil {
				return err
			}
			defer store.Close()

			controller := buildController(cfg)
			web := channels.NewWebChat(cfg.Channels.WebChat, controller, store)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := web.Start(ctx); err != nil {
				return err
			}
			<-ctx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return web.Stop(shutdownCtx)
		},
	}
}

func newChatCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Chat with the assistant from the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			controller := buildController(cfg)
			saver := platform.DirSaver{Dir: cfg.ExportDir()}
			console := channels.NewConsole(controller, saver, cfg.Channels.Console.Prompt)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return console.Run(ctx)
		},
	}
}

func newExportCmd() *cobra.Command {
	var format string
	var outPath string

	cmd := &cobra.Command{
		Use:   "export <chat-history.json>",
		Short: "Re-render a saved transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			var entries []conversation.ExportEntry
			if err := json.Unmarshal(data, &entries); err != nil {
				return fmt.Errorf("parsing transcript: %w", err)
			}

			var out []byte
			switch format {
			case "html":
				out = conversation.RenderHTML(entries)
				if outPath == "" {
					outPath = strings.TrimSuffix(args[0], ".json") + ".html"
				}
			case "json":
				if out, err = json.MarshalIndent(entries, "", "  "); err != nil {
					return err
				}
				if outPath == "" {
					outPath = args[0]
				}
			default:
				return fmt.Errorf("unknown format %q (want json or html)", format)
			}

			if err := os.WriteFile(outPath, out, 0644); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), outPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "html", "output format: json or html")
	cmd.Flags().StringVar(&outPath, "out", "", "output file (default: derived from input)")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the minichat version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "minichat "+version)
		},
	}
}
