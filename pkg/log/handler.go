package log

import (
	"context"
	"log/slog"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrFmtHandler augments log records that carry error attributes with the
// stack trace closest to the original failure site, so a failed trial or
// refit can be traced without re-running the search.
type ErrFmtHandler struct {
	handler slog.Handler
}

// WrapByErrFmtHandler wraps a slog handler so that records carrying an error
// attribute also emit a stacktrace attribute.
func WrapByErrFmtHandler(handler slog.Handler) slog.Handler {
	return &ErrFmtHandler{
		handler: handler,
	}
}

func (eh *ErrFmtHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return eh.handler.Enabled(ctx, l)
}

// Handle collects a stack trace for every error attribute on the record and
// forwards an augmented copy downstream. The original record is never
// mutated.
func (eh *ErrFmtHandler) Handle(ctx context.Context, r slog.Record) error {
	var traces []string
	r.Attrs(func(attr slog.Attr) bool {
		if attr.Key != ErrAttrKey {
			return true
		}
		if err, ok := attr.Value.Any().(error); ok {
			if trace := innermostStacktrace(err); trace != "" {
				traces = append(traces, trace)
			}
		}
		return true
	})
	if len(traces) == 0 {
		return eh.handler.Handle(ctx, r)
	}

	out := r.Clone()
	out.AddAttrs(slog.String(StacktraceAttrKey, strings.Join(traces, "\n")))
	return eh.handler.Handle(ctx, out)
}

func (eh *ErrFmtHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ErrFmtHandler{handler: eh.handler.WithAttrs(attrs)}
}

func (eh *ErrFmtHandler) WithGroup(g string) slog.Handler {
	return &ErrFmtHandler{handler: eh.handler.WithGroup(g)}
}

// innermostStacktrace walks the unwrap chain and returns the deepest
// recorded stack trace. Wrappers added while an error bubbles up through
// the lifecycle each capture their own stack; the one nearest the cause is
// the one worth printing.
func innermostStacktrace(err error) string {
	var trace string
	for err != nil {
		if details := errors.GetSafeDetails(err).SafeDetails; len(details) > 0 && details[0] != "" {
			trace = details[0]
		}
		err = errors.UnwrapOnce(err)
	}
	return trace
}
