// Package logging provides structured logging for feedsync using zerolog.
// Terminals get human-readable console output; everything else (cron jobs,
// CI, containers) gets one JSON object per line.
//
// Library code logs through the context:
//
//	ctx = logging.WithHandle(ctx, "jacka-ram")
//	logging.FromContext(ctx).Warn().Str("sku", sku).Msg("No inventory item for SKU")
//
// and falls back to the default logger, which the CLI replaces once flags
// are parsed.
package logging

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var defaultLogger = NewLoggerFromConfig(EnvConfig())

// Default returns the default global logger.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetDefault replaces the default logger, for this package and for
// zerolog's global log.Logger.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
	log.Logger = logger
}

// Warn starts a warning on the default logger, for code without a context.
func Warn() *zerolog.Event {
	return defaultLogger.Warn()
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
