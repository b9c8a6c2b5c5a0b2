package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5/middleware"
)

// LevelCritical marks conditions that need an operator, such as a captured
// payment whose order was not stored.
const LevelCritical = slog.Level(12)

type Handler struct {
	slog.Handler
}

// NewHandler returns a JSON handler writing to stdout.
// A nil opts logs at debug level.
func NewHandler(opts *slog.HandlerOptions) *Handler {
	return NewHandlerWithWriter(os.Stdout, opts)
}

// NewHandlerWithWriter returns a JSON handler writing to w.
func NewHandlerWithWriter(w io.Writer, opts *slog.HandlerOptions) *Handler {
	if opts == nil {
		opts = &slog.HandlerOptions{Level: slog.LevelDebug}
	}

	replace := opts.ReplaceAttr
	o := *opts
	o.ReplaceAttr = func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == slog.LevelKey && len(groups) == 0 {
			if level, ok := a.Value.Any().(slog.Level); ok && level >= LevelCritical {
				a.Value = slog.StringValue("CRITICAL")
			}
		}
		if replace != nil {
			return replace(groups, a)
		}

		return a
	}

	return &Handler{Handler: slog.NewJSONHandler(w, &o)}
}

// Handle adds the chi request id when the record was logged with a request context.
func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		r.AddAttrs(slog.String("request_id", reqID))
	}

	return h.Handler.Handle(ctx, r)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{Handler: h.Handler.WithGroup(name)}
}
