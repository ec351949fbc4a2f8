package helpers

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/andrescamacho/empire-go/internal/application/mediator"
)

// MockMediator is a test double for the Mediator interface.
// Send delegates to the configured function and logs request type names.
type MockMediator struct {
	mu       sync.Mutex
	sendFunc func(ctx context.Context, request mediator.Request) (mediator.Response, error)
	callLog  []string // Track which requests were sent
}

var _ mediator.Mediator = (*MockMediator)(nil)

// NewMockMediator creates a new MockMediator
func NewMockMediator() *MockMediator {
	return &MockMediator{
		callLog: []string{},
	}
}

// Send implements the Mediator interface
func (m *MockMediator) Send(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	m.mu.Lock()
	m.callLog = append(m.callLog, reflect.TypeOf(request).Elem().Name())
	fn := m.sendFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, request)
	}
	return nil, fmt.Errorf("unsupported request type: %T", request)
}

// Register is a no-op for the mock
func (m *MockMediator) Register(requestType reflect.Type, handler mediator.RequestHandler) error {
	return nil
}

// RegisterMiddleware is a no-op for the mock
func (m *MockMediator) RegisterMiddleware(middleware mediator.Middleware) {}

// SetSendFunc sets a custom function for Send calls
func (m *MockMediator) SetSendFunc(fn func(ctx context.Context, request mediator.Request) (mediator.Response, error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendFunc = fn
}

// GetCallLog returns the names of the request types sent so far
func (m *MockMediator) GetCallLog() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.callLog...)
}
