package mediator

import (
	"context"
)

// Request is a command (mutates a village or player) or a query (reads one).
// Handlers are looked up by the request's dynamic type.
type Request interface{}

// Response is whatever the matching handler returns, usually a *XxxResponse struct
type Response interface{}

// RequestHandler handles one request type
type RequestHandler interface {
	Handle(ctx context.Context, request Request) (Response, error)
}

// HandlerFunc is the continuation passed to middleware
type HandlerFunc func(ctx context.Context, request Request) (Response, error)

// Middleware wraps every Send. Registered middleware runs in registration
// order, the first registered being the outermost (logging, then metrics).
type Middleware func(ctx context.Context, request Request, next HandlerFunc) (Response, error)
