package metrics

import (
	"context"
	"reflect"
	"time"

	"github.com/andrescamacho/empire-go/internal/application/mediator"
)

// PrometheusMiddleware times every mediator request and counts its outcome.
// A nil collector (metrics disabled) makes it a pass-through.
func PrometheusMiddleware(collector *CommandMetricsCollector) mediator.Middleware {
	return func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
		if collector == nil {
			return next(ctx, request)
		}

		start := time.Now()
		response, err := next(ctx, request)
		collector.RecordCommandExecution(extractCommandName(request), time.Since(start).Seconds(), err)

		return response, err
	}
}

// extractCommandName returns the bare type name of a request,
// e.g. *commands.StartUpgradeCommand becomes StartUpgradeCommand.
func extractCommandName(request mediator.Request) string {
	if request == nil {
		return "UnknownCommand"
	}
	t := reflect.TypeOf(request)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Name() == "" {
		return t.String()
	}
	return t.Name()
}
