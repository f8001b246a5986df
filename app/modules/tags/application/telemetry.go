package tagservice

import (
	"context"

	"github.com/Black-And-White-Club/frolf-club/pkg/observability"
)

func run[T any](s *TagService, ctx context.Context, operationName, identifier string, op observability.Operation[T]) (T, error) {
	return observability.Run(ctx, s.telemetry, operationName, identifier, op)
}
