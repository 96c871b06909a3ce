package logger

import (
	"io"
	"log/slog"
	"os"
)

// Option adjusts how New builds the base handler.
type Option func(*config)

type config struct {
	level  slog.Level
	output io.Writer
}

// WithLevel sets the minimum level. Defaults to Info.
func WithLevel(level slog.Level) Option {
	return func(c *config) { c.level = level }
}

// WithOutput redirects log output. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(c *config) { c.output = w }
}

// New builds a JSON slog logger decorated with the given context
// extractors.
func New(extractors []ContextExtractor, opts ...Option) *slog.Logger {
	cfg := config{level: slog.LevelInfo, output: os.Stdout}
	for _, opt := range opts {
		opt(&cfg)
	}
	base := slog.NewJSONHandler(cfg.output, &slog.HandlerOptions{Level: cfg.level})
	return slog.New(Decorate(base, extractors...))
}

// NewNope returns a logger that discards everything. Used as the default
// when no logger is configured.
func NewNope() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
