package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/reshetovitsme/media-relay-bot/internal/shared/config"
	"github.com/samber/oops"
	slogmulti "github.com/samber/slog-multi"
)

// Setup builds the process logger: human readable text on stdout and in
// the logs file served by /logs, JSON on stderr for errors only.
// The returned closer releases the logs file.
func Setup(cfg *config.Config) (*slog.Logger, io.Closer, error) {
	level := slog.LevelInfo
	if cfg.AppEnv.Verbose() {
		level = slog.LevelDebug
	}

	logFile, err := os.OpenFile(cfg.LogsFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, oops.With("logs_file", cfg.LogsFile).Wrap(err)
	}

	handler := slogmulti.Fanout(
		slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}),
		slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: level}),
		slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}),
	)

	return slog.New(handler), logFile, nil
}
