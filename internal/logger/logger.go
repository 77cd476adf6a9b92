package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
)

// EventIDField is the context key and log attribute carrying the request event id.
const EventIDField = "event-id"

var (
	ErrLoggerInvalidLogLevel  = fmt.Errorf("invalid log level")
	ErrLoggerInvalidLogFormat = fmt.Errorf("invalid log format")
)

func NewLogger(logLevel, logFormat string) (*slog.Logger, error) {
	return newLogger(os.Stdout, logLevel, logFormat)
}

func newLogger(w io.Writer, logLevel, logFormat string) (*slog.Logger, error) {
	slogLevel, err := getSlogLevel(logLevel)
	if err != nil {
		return nil, err
	}

	var handler slog.Handler
	switch logFormat {
	case "json":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slogLevel})
	case "text":
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: slogLevel})
	case "tint":
		handler = tint.NewHandler(w, &tint.Options{Level: slogLevel})
	default:
		return nil, errors.Join(ErrLoggerInvalidLogFormat, fmt.Errorf("log format: %s", logFormat))
	}

	return slog.New(&eventIDHandler{Handler: handler}), nil
}

func getSlogLevel(logLevel string) (slog.Level, error) {
	switch logLevel {
	case "INFO":
		return slog.LevelInfo, nil
	case "WARN":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	case "DEBUG":
		return slog.LevelDebug, nil
	}

	return slog.LevelInfo, errors.Join(ErrLoggerInvalidLogLevel, fmt.Errorf("log level: %s", logLevel))
}

// eventIDHandler adds the event id found in the record context to every record.
type eventIDHandler struct {
	slog.Handler
}

func (h *eventIDHandler) Handle(ctx context.Context, r slog.Record) error {
	if ctx != nil {
		//nolint:staticcheck // string key shared with the api middleware
		if eventID, ok := ctx.Value(EventIDField).(string); ok {
			r.AddAttrs(slog.String(EventIDField, eventID))
		}
	}

	return h.Handler.Handle(ctx, r)
}

func (h *eventIDHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &eventIDHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *eventIDHandler) WithGroup(name string) slog.Handler {
	return &eventIDHandler{Handler: h.Handler.WithGroup(name)}
}
