package observability

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Telemetry bundles what a service needs to instrument its operations.
type Telemetry struct {
	Service string
	Logger  *slog.Logger
	Metrics OperationMetrics
	Tracer  trace.Tracer
	// Expected reports errors that are a normal outcome of an operation (rejected
	// input, wrong state). They are logged at warn and returned unwrapped.
	Expected func(error) bool
}

// CorrelationID returns the request ID set by the chi middleware, if any.
func CorrelationID(ctx context.Context) slog.Attr {
	return slog.String("request_id", middleware.GetReqID(ctx))
}

// Operation is the body of an instrumented service call.
type Operation[T any] func(ctx context.Context) (T, error)

// Run wraps op with a span, operation metrics, logging and panic recovery.
// Unexpected errors are wrapped with the operation name.
func Run[T any](ctx context.Context, tel Telemetry, operationName, identifier string, op Operation[T]) (result T, err error) {
	logger := tel.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var span trace.Span
	if tel.Tracer != nil {
		ctx, span = tel.Tracer.Start(ctx, tel.Service+"."+operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("identifier", identifier),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	if tel.Metrics != nil {
		tel.Metrics.RecordOperationAttempt(ctx, operationName, tel.Service)
	}

	startTime := time.Now()
	defer func() {
		if tel.Metrics != nil {
			tel.Metrics.RecordOperationDuration(ctx, operationName, tel.Service, time.Since(startTime))
		}
	}()

	logger.InfoContext(ctx, "Operation triggered", CorrelationID(ctx), slog.String("operation", operationName))

	defer func() {
		if r := recover(); r != nil {
			var zero T
			result = zero
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			logger.ErrorContext(ctx, "Critical panic recovered",
				CorrelationID(ctx),
				slog.String("identifier", identifier),
				slog.Any("error", err),
			)
			if tel.Metrics != nil {
				tel.Metrics.RecordOperationFailure(ctx, operationName, tel.Service)
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, "panic")
		}
	}()

	result, err = op(ctx)
	if err != nil {
		if tel.Expected != nil && tel.Expected(err) {
			logger.WarnContext(ctx, "Operation rejected",
				CorrelationID(ctx),
				slog.String("operation", operationName),
				slog.String("identifier", identifier),
				slog.String("reason", err.Error()),
			)
			if tel.Metrics != nil {
				tel.Metrics.RecordOperationSuccess(ctx, operationName, tel.Service)
			}
			return result, err
		}

		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		logger.ErrorContext(ctx, "Operation failed with error",
			CorrelationID(ctx),
			slog.String("operation", operationName),
			slog.String("identifier", identifier),
			slog.Any("error", wrappedErr),
		)
		if tel.Metrics != nil {
			tel.Metrics.RecordOperationFailure(ctx, operationName, tel.Service)
		}
		span.RecordError(wrappedErr)
		span.SetStatus(codes.Error, wrappedErr.Error())
		return result, wrappedErr
	}

	logger.InfoContext(ctx, "Operation completed successfully",
		CorrelationID(ctx),
		slog.String("operation", operationName),
		slog.String("identifier", identifier),
	)
	if tel.Metrics != nil {
		tel.Metrics.RecordOperationSuccess(ctx, operationName, tel.Service)
	}
	return result, nil
}
