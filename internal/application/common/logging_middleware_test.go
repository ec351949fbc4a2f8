package common_test

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/empire-go/internal/application/common"
	"github.com/andrescamacho/empire-go/internal/application/mediator"
	"github.com/andrescamacho/empire-go/internal/domain/shared"
	"github.com/andrescamacho/empire-go/internal/infrastructure/logging"
)

type noopCommand struct{}

func TestLoggingMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected []string
	}{
		{"success logs at debug", nil, []string{"Request handled", "noopCommand"}},
		{"domain rejection logs at warn", shared.NewValidationError("name", "required"), []string{"WARN", "Request rejected", "VALIDATION"}},
		{"internal failure logs at error", fmt.Errorf("boom"), []string{"ERRO", "Request failed", "boom"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			var buf bytes.Buffer
			logger := logging.NewWriterLogger(&buf, "debug", "text")
			mw := common.LoggingMiddleware(logger)

			var seen common.Logger
			next := func(ctx context.Context, request mediator.Request) (mediator.Response, error) {
				seen = common.LoggerFromContext(ctx)
				return nil, tt.err
			}

			// Act
			_, err := mw(context.Background(), &noopCommand{}, next)

			// Assert
			assert.Equal(t, tt.err, err)
			require.NotNil(t, seen)
			assert.Same(t, logger, seen, "handlers get the request logger from context")
			for _, fragment := range tt.expected {
				assert.Contains(t, buf.String(), fragment)
			}
		})
	}
}

func TestLoggerFromContext_DefaultsToNoOp(t *testing.T) {
	logger := common.LoggerFromContext(context.Background())

	require.NotNil(t, logger)
	assert.NotPanics(t, func() { logger.Info("ignored", "k", "v") })
}
