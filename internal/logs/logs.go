package logs

import (
	"io"
	"log/slog"
	"os"
)

// Setup installs the process-wide slog logger: JSON in production, text
// otherwise, at debug level when debug is set.
func Setup(debug, production bool) *slog.Logger {
	return install(os.Stdout, debug, production)
}

func install(w io.Writer, debug, production bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if production {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
