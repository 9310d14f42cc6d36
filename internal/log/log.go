package log

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

var Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Init configures the process logger. Development mode writes the console
// format; otherwise one JSON object per line.
func Init(service string, development bool, level string, extra ...io.Writer) {
	zerolog.TimeFieldFormat = time.RFC3339

	var out io.Writer = os.Stdout
	if development {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
	}
	if len(extra) > 0 {
		out = zerolog.MultiLevelWriter(append([]io.Writer{out}, extra...)...)
	}
	Logger = zerolog.New(out).
		Level(parseLevel(level)).
		With().
		Timestamp().
		Str("service", service).
		Logger()
}

// SetOutput swaps the sink, keeping JSON format. Tests use it to capture events.
func SetOutput(w io.Writer) {
	Logger = zerolog.New(w).With().Timestamp().Logger()
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Ctx returns the logger enriched with the span found in ctx, if any.
func Ctx(ctx context.Context) *zerolog.Logger {
	l := Logger
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		l = l.With().
			Str("trace_id", sc.TraceID().String()).
			Str("span_id", sc.SpanID().String()).
			Logger()
	}
	return &l
}

func write(ev *zerolog.Event, level string, c *fiber.Ctx, action string, err error, fields map[string]any) {
	ev = ev.Str("kind", level).Str("action", action)
	if c != nil {
		ev = ev.Str("ip", c.IP()).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode())
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			ev = ev.Str("req_id", rid)
		}
		if role, ok := c.Locals("role").(string); ok && role != "" {
			ev = ev.Str("role", role)
		}
	}
	if err != nil {
		ev = ev.Err(err)
	}
	if len(fields) > 0 {
		ev = ev.Interface("fields", fields)
	}
	ev.Send()
}

func logger(c *fiber.Ctx) *zerolog.Logger {
	if c == nil {
		return &Logger
	}
	return Ctx(c.UserContext())
}

func Info(c *fiber.Ctx, action string, fields map[string]any) {
	write(logger(c).Info(), "info", c, action, nil, fields)
}

func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	write(logger(c).Info(), "audit", c, action, nil, fields)
}

func Security(c *fiber.Ctx, action string, fields map[string]any) {
	write(logger(c).Warn(), "security", c, action, nil, fields)
}

func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	write(logger(c).Error(), "error", c, action, err, fields)
}

// AuditCtx and WarnCtx are for code below the HTTP layer; the span in ctx
// ties the event to the request that caused it.
func AuditCtx(ctx context.Context, action string, fields map[string]any) {
	write(Ctx(ctx).Info(), "audit", nil, action, nil, fields)
}

func WarnCtx(ctx context.Context, action string, fields map[string]any) {
	write(Ctx(ctx).Warn(), "warn", nil, action, nil, fields)
}
