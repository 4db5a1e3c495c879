package log

import (
	"io"
	"log/slog"

	"github.com/YuminosukeSato/adaboost/pkg/errors"
)

const (
	ErrAttrKey        = "error"
	StacktraceAttrKey = "stacktrace"
)

// SetupLogger configures process-wide logging for command line tools.
// The zerolog provider becomes the default for library code and slog's default
// logger is pointed at the same writer, with cockroachdb stack traces expanded.
func SetupLogger(w io.Writer, level string) error {
	lvl, ok := ParseLevel(level)
	if !ok {
		return errors.NewValidationError("log-level", "must be one of debug, info, warn, error", level)
	}

	SetProvider(NewZerologProvider(w, lvl))

	opts := slog.HandlerOptions{
		Level: slog.Level(lvl),
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.LevelKey:
				return slog.Attr{Key: "level", Value: attr.Value}
			case slog.MessageKey:
				return slog.Attr{Key: "message", Value: attr.Value}
			}
			return attr
		},
	}
	handler := slog.NewJSONHandler(w, &opts)
	slog.SetDefault(slog.New(WrapByErrFmtHandler(handler)))
	return nil
}

// ErrAttr is a wrapper to pass err to slog.
func ErrAttr(err error) slog.Attr {
	return slog.Any(ErrAttrKey, err)
}
