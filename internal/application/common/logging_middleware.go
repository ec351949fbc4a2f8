package common

import (
	"context"
	"fmt"
	"time"

	"github.com/andrescamacho/empire-go/internal/application/mediator"
)

// LoggingMiddleware puts the logger into the request context and logs every
// request with its duration. Expected domain rejections log at WARN,
// everything else that fails at ERROR.
func LoggingMiddleware(logger Logger) mediator.Middleware {
	return func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
		if logger == nil {
			return next(ctx, request)
		}

		ctx = WithLogger(ctx, logger)
		name := fmt.Sprintf("%T", request)
		start := time.Now()

		response, err := next(ctx, request)

		elapsed := time.Since(start)
		if err == nil {
			logger.Debug("Request handled", "request", name, "duration", elapsed)
			return response, nil
		}

		desc := DescribeError(err)
		if desc.Category == CategoryInternal {
			logger.Error("Request failed", "request", name, "duration", elapsed, "error", err)
		} else {
			logger.Warn("Request rejected", "request", name, "category", desc.Category, "error", err)
		}
		return response, err
	}
}
