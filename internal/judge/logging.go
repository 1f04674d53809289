package judge

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const tracerName = "github.com/ahrav/go-gaucho/internal/judge"

// LoggingMiddleware records the lifecycle of each judge call with structured
// logs and an OpenTelemetry span. When redactPrompts is set, prompt text is
// replaced by its length.
func LoggingMiddleware(logger *slog.Logger, provider, model string, redactPrompts bool) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "judge")
	tracer := otel.Tracer(tracerName)

	return func(next Judge) Judge {
		return Func(func(ctx context.Context, prompt Prompt) (string, error) {
			requestID := uuid.New().String()
			ctx, span := tracer.Start(ctx, "judge.invoke")
			defer span.End()
			span.SetAttributes(
				attribute.String("judge.provider", provider),
				attribute.String("judge.model", model),
				attribute.String("judge.operation", string(prompt.Operation)),
				attribute.Int("judge.attachments", len(prompt.Attachments)),
			)

			fields := []any{
				"request_id", requestID,
				"provider", provider,
				"model", model,
				"operation", prompt.Operation,
				"format", prompt.Format,
				"attachments", len(prompt.Attachments),
			}
			if redactPrompts {
				fields = append(fields, "prompt_length", len(prompt.Text))
			} else {
				fields = append(fields, "prompt", prompt.Text)
			}
			logger.DebugContext(ctx, "judge request started", fields...)

			start := time.Now()
			out, err := next.Invoke(ctx, prompt)
			duration := time.Since(start)

			if err != nil {
				errorType := ErrorTypeUnknown
				var provErr *ProviderError
				if errors.As(err, &provErr) {
					errorType = provErr.Type
				}
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				logger.ErrorContext(ctx, "judge request failed",
					"request_id", requestID,
					"operation", prompt.Operation,
					"duration_ms", duration.Milliseconds(),
					"error_type", errorType,
					"error", err,
				)
				return "", err
			}

			logger.InfoContext(ctx, "judge request completed",
				"request_id", requestID,
				"operation", prompt.Operation,
				"duration_ms", duration.Milliseconds(),
				"response_length", len(out),
			)
			return out, nil
		})
	}
}
