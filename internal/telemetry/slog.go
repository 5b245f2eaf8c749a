package telemetry

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// SetupLogger installs the process-wide slog default from the logging.format
// and logging.level config values. Everything downstream (request audit lines,
// background goroutine recovery, migration progress) logs through
// slog.Default, so this runs once in main before anything else starts.
func SetupLogger(format, level string) {
	slog.SetDefault(newLogger(os.Stdout, format, level))
	slog.Info("logger initialised", "format", format, "level", parseLevel(level).String())
}

// newLogger builds the handler stack for the given destination. json is the
// production format; anything else falls back to text for local runs. Source
// locations are attached only at debug, where the cost is acceptable.
func newLogger(w io.Writer, format, level string) *slog.Logger {
	lvl := parseLevel(level)
	opts := &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl == slog.LevelDebug,
	}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// parseLevel maps the config string to a slog level, defaulting unknown
// values to info rather than failing startup over a typo.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
