package main

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-telegram/bot"
	"github.com/reshetovitsme/media-relay-bot/internal/di"
	postRepo "github.com/reshetovitsme/media-relay-bot/internal/modules/post/repository"
	"github.com/reshetovitsme/media-relay-bot/internal/shared/config"
	"github.com/reshetovitsme/media-relay-bot/internal/shared/logging"
	httpServer "github.com/reshetovitsme/media-relay-bot/internal/transport/http"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts config.Options

	rootCmd := &cobra.Command{
		Use:   "media-relay-bot",
		Short: "Telegram bot that relays posts fetched through a user session",
		Long: `media-relay-bot accepts post links in a private chat, fetches the posts
through a privileged user session and sends their media or text back.

Examples:
  media-relay-bot
  media-relay-bot --config config.yaml
  media-relay-bot --env-file .env.local`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.ConfigFile, "config", "c", "", "path to the config file")
	rootCmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", "", "dotenv file loaded before the environment (default .env)")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(cmd.OutOrStdout(), version)
			},
		},
		newLoginCmd(&opts),
	)

	return rootCmd
}

func newLoginCmd(opts *config.Options) *cobra.Command {
	var phone, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authorize the user session and store it in session_path",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*opts)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			reader := bufio.NewReader(cmd.InOrStdin())
			prompt := func(ctx context.Context) (string, error) {
				fmt.Fprint(cmd.OutOrStdout(), "Enter the login code: ")
				code, err := reader.ReadString('\n')
				return strings.TrimSpace(code), err
			}

			session := postRepo.NewMTProto(cfg.APIID, cfg.APIHash, cfg.SessionPath)
			return session.Login(ctx, phone, password, prompt)
		},
	}

	cmd.Flags().StringVar(&phone, "phone", "", "phone number of the user account")
	cmd.Flags().StringVar(&password, "password", "", "two-step verification password, if enabled")
	cmd.MarkFlagRequired("phone")

	return cmd
}

func run(opts config.Options) error {
	cfg, err := config.Load(opts)
	if err != nil {
		return err
	}

	logger, closer, err := logging.Setup(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()
	slog.SetDefault(logger)

	// Setup dependency injection
	injector, err := di.Setup(cfg)
	if err != nil {
		slog.Error("Failed to setup dependency injection", "error", err)
		return err
	}
	defer func() {
		if err := di.Shutdown(injector); err != nil {
			slog.Error("Error during shutdown", "error", err)
		}
	}()

	// Get services from DI container
	session := do.MustInvoke[*postRepo.MTProto](injector)
	server := do.MustInvoke[*httpServer.Server](injector)
	b, err := do.Invoke[*bot.Bot](injector)
	if err != nil {
		slog.Error("Failed to start bot", "error", err)
		return err
	}

	// Graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return session.Run(ctx)
	})
	g.Go(func() error {
		return server.Run(ctx)
	})
	g.Go(func() error {
		b.Start(ctx)
		return nil
	})

	slog.Info("Application started", "version", version, "env", cfg.AppEnv, "http_port", cfg.HTTPPort)
	slog.Info("Press Ctrl+C to stop")

	err = g.Wait()
	slog.Info("Shutting down...")
	if err != nil && !stderrors.Is(err, context.Canceled) {
		slog.Error("Application stopped with error", "error", err)
		return err
	}
	return nil
}
