package di

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	batchService "github.com/reshetovitsme/media-relay-bot/internal/modules/batch/service"
	downloadDomain "github.com/reshetovitsme/media-relay-bot/internal/modules/download/domain"
	downloadService "github.com/reshetovitsme/media-relay-bot/internal/modules/download/service"
	postRepo "github.com/reshetovitsme/media-relay-bot/internal/modules/post/repository"
	relayService "github.com/reshetovitsme/media-relay-bot/internal/modules/relay/service"
	taskService "github.com/reshetovitsme/media-relay-bot/internal/modules/task/service"
	telemetryRepo "github.com/reshetovitsme/media-relay-bot/internal/modules/telemetry/repository"
	telemetryService "github.com/reshetovitsme/media-relay-bot/internal/modules/telemetry/service"
	"github.com/reshetovitsme/media-relay-bot/internal/shared/config"
	httpServer "github.com/reshetovitsme/media-relay-bot/internal/transport/http"
	telegramHandler "github.com/reshetovitsme/media-relay-bot/internal/transport/telegram"
	"github.com/samber/do/v2"
	"github.com/samber/oops"
)

// ServiceBootTime names the process start timestamp.
const ServiceBootTime = "boot-time"

const shutdownTimeout = 30 * time.Second

// Setup initializes the dependency injection container
func Setup(cfg *config.Config) (do.Injector, error) {
	injector := do.New()

	do.ProvideValue(injector, cfg)
	do.ProvideNamedValue(injector, ServiceBootTime, time.Now())

	// Register Task Registry
	do.Provide(injector, func(i do.Injector) (*taskService.Registry, error) {
		return taskService.NewRegistry(context.Background()), nil
	})

	// Register Post Repository (privileged user session)
	do.Provide(injector, func(i do.Injector) (*postRepo.MTProto, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return postRepo.NewMTProto(cfg.APIID, cfg.APIHash, cfg.SessionPath), nil
	})
	do.Provide(injector, func(i do.Injector) (postRepo.Repository, error) {
		return do.MustInvoke[*postRepo.MTProto](i), nil
	})

	// Register Bot API Sender
	do.Provide(injector, func(i do.Injector) (*telegramHandler.Sender, error) {
		return telegramHandler.NewSender(), nil
	})

	// Register Download Service
	do.Provide(injector, func(i do.Injector) (*downloadService.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo := do.MustInvoke[postRepo.Repository](i)
		sender := do.MustInvoke[*telegramHandler.Sender](i)
		return downloadService.New(repo, sender, downloadService.Options{
			DownloadDir: cfg.DownloadDir,
			Policy: downloadDomain.SizePolicy{
				Limit:        cfg.MaxFileSize,
				PremiumLimit: cfg.PremiumMaxFileSize,
			},
			ProgressInterval: cfg.ProgressInterval,
		}), nil
	})

	// Register Batch Service
	do.Provide(injector, func(i do.Injector) (*batchService.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo := do.MustInvoke[postRepo.Repository](i)
		downloads := do.MustInvoke[*downloadService.Service](i)
		sender := do.MustInvoke[*telegramHandler.Sender](i)
		return batchService.New(repo, downloads, sender, cfg.BatchDelay), nil
	})

	// Register Telemetry Service
	do.Provide(injector, func(i do.Injector) (*telemetryService.Service, error) {
		registry := do.MustInvoke[*taskService.Registry](i)
		bootTime := do.MustInvokeNamed[time.Time](i, ServiceBootTime)
		return telemetryService.New(telemetryRepo.NewSystem("."), registry, bootTime), nil
	})

	// Register Relay Service
	do.Provide(injector, func(i do.Injector) (*relayService.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		sender := do.MustInvoke[*telegramHandler.Sender](i)
		return relayService.New(sender, cfg.LogChannelID), nil
	})

	// Register Telegram Handler
	do.Provide(injector, func(i do.Injector) (*telegramHandler.Handler, error) {
		return telegramHandler.New(
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*telegramHandler.Sender](i),
			do.MustInvoke[*taskService.Registry](i),
			do.MustInvoke[*downloadService.Service](i),
			do.MustInvoke[*batchService.Service](i),
			do.MustInvoke[*telemetryService.Service](i),
			do.MustInvoke[*relayService.Service](i),
		), nil
	})

	// Register HTTP Server
	do.Provide(injector, func(i do.Injector) (*httpServer.Server, error) {
		cfg := do.MustInvoke[*config.Config](i)
		telemetry := do.MustInvoke[*telemetryService.Service](i)
		registry := do.MustInvoke[*taskService.Registry](i)
		server := httpServer.New(cfg.HTTPPort, telemetry, registry)
		server.SetLogger(slog.Default())
		return server, nil
	})

	// Register Bot (needs to be initialized after handlers are ready)
	do.Provide(injector, func(i do.Injector) (*bot.Bot, error) {
		cfg := do.MustInvoke[*config.Config](i)
		handler := do.MustInvoke[*telegramHandler.Handler](i)

		opts := []bot.Option{
			bot.WithDefaultHandler(handler.HandleUpdate),
			bot.WithServerURL(cfg.TelegramAPIURL),
			bot.WithErrorsHandler(func(err error) {
				slog.Error("Telegram bot error", "error", err)
			}),
		}

		b, err := bot.New(cfg.TelegramBotToken, opts...)
		if err != nil {
			return nil, oops.With("context", "failed to create telegram bot").Wrap(err)
		}

		// Register bot commands
		handler.RegisterCommands(b)

		// Set bot in sender
		do.MustInvoke[*telegramHandler.Sender](i).SetBot(b)

		return b, nil
	})

	return injector, nil
}

// Shutdown cancels tracked operations and waits for them to clean up
func Shutdown(injector do.Injector) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if registry, err := do.Invoke[*taskService.Registry](injector); err == nil && registry != nil {
		if err := registry.Shutdown(ctx); err != nil {
			return oops.With("context", "waiting for tracked tasks").Wrap(err)
		}
	}

	return nil
}
