package mediator_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/empire-go/internal/application/mediator"
)

type pingCommand struct{ Value string }

type pingHandler struct{}

func (pingHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	return "pong:" + request.(*pingCommand).Value, nil
}

func TestMediator_SendDispatchesByType(t *testing.T) {
	// Arrange
	m := mediator.NewMediator()
	require.NoError(t, mediator.RegisterHandler[*pingCommand](m, pingHandler{}))

	// Act
	resp, err := m.Send(context.Background(), &pingCommand{Value: "x"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "pong:x", resp)
}

func TestMediator_RegistrationErrors(t *testing.T) {
	m := mediator.NewMediator()
	require.NoError(t, mediator.RegisterHandler[*pingCommand](m, pingHandler{}))

	assert.Error(t, mediator.RegisterHandler[*pingCommand](m, pingHandler{}), "duplicate registration")
	assert.Error(t, m.Register(nil, pingHandler{}))

	_, err := m.Send(context.Background(), struct{}{})
	assert.ErrorContains(t, err, "no handler registered")

	_, err = m.Send(context.Background(), nil)
	assert.Error(t, err)
}

func TestMediator_MiddlewareOrder(t *testing.T) {
	// Arrange
	m := mediator.NewMediator()
	require.NoError(t, mediator.RegisterHandler[*pingCommand](m, pingHandler{}))

	var calls []string
	trace := func(name string) mediator.Middleware {
		return func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
			calls = append(calls, name+":before")
			resp, err := next(ctx, request)
			calls = append(calls, name+":after")
			return resp, err
		}
	}
	m.RegisterMiddleware(trace("outer"))
	m.RegisterMiddleware(trace("inner"))

	// Act
	_, err := m.Send(context.Background(), &pingCommand{})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []string{"outer:before", "inner:before", "inner:after", "outer:after"}, calls)
}

func TestMediator_MiddlewareCanShortCircuit(t *testing.T) {
	m := mediator.NewMediator()
	require.NoError(t, mediator.RegisterHandler[*pingCommand](m, pingHandler{}))
	m.RegisterMiddleware(func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
		return nil, fmt.Errorf("blocked")
	})

	_, err := m.Send(context.Background(), &pingCommand{})

	assert.EqualError(t, err, "blocked")
}
