package messaging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCorrelationIDContext(t *testing.T) {
	t.Run("round trips through the context", func(t *testing.T) {
		ctx := WithCorrelationID(context.Background(), "req-123")
		assert.Equal(t, "req-123", getCorrelationID(ctx))
	})

	t.Run("empty when never set", func(t *testing.T) {
		assert.Empty(t, getCorrelationID(context.Background()))
	})
}
