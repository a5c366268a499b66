package logger

import (
	"io"
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
)

var Log *slog.Logger

func init() {
	// usable before Init is called (tests, early config warnings)
	Log = slog.Default()
}

func Init(format string) {
	Log = slog.New(newHandler(format, os.Stdout))
	slog.SetDefault(Log)
}

func newHandler(format string, w io.Writer) slog.Handler {
	if format == "text" {
		// human readable output for local development
		return charmlog.NewWithOptions(w, charmlog.Options{
			Level:           charmlog.DebugLevel,
			ReportTimestamp: true,
			Prefix:          "contact-mail",
		})
	}
	// JSON handler for production-ready logging
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
}
