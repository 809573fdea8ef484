// internal/browser/context_test.go
package browser

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCombineContextCancelsWithOperational(t *testing.T) {
	master := context.Background()
	op, opCancel := context.WithCancel(context.Background())

	combined, cancel := CombineContext(master, op)
	defer cancel()

	require.NoError(t, combined.Err())
	opCancel()

	select {
	case <-combined.Done():
	case <-time.After(time.Second):
		t.Fatal("combined context not canceled after operational cancel")
	}
}

func TestCombineContextCancelsWithMaster(t *testing.T) {
	master, masterCancel := context.WithCancel(context.Background())

	combined, cancel := CombineContext(master, context.Background())
	defer cancel()

	masterCancel()
	select {
	case <-combined.Done():
	case <-time.After(time.Second):
		t.Fatal("combined context not canceled after master cancel")
	}
}

type ctxKey struct{}

func TestDetachKeepsValuesDropsCancellation(t *testing.T) {
	parent, cancel := context.WithCancel(context.WithValue(context.Background(), ctxKey{}, "target"))
	cancel()

	detached := Detach(parent)
	assert.NoError(t, detached.Err())
	assert.Nil(t, detached.Done())
	assert.Equal(t, "target", detached.Value(ctxKey{}))
	_, hasDeadline := detached.Deadline()
	assert.False(t, hasDeadline)
}

func TestSanitizeLabel(t *testing.T) {
	assert.Equal(t, "auth_failed", sanitizeLabel("Auth Failed"))
	assert.Equal(t, "step3", sanitizeLabel("step3"))
	assert.Equal(t, "a_b_c", sanitizeLabel("a/b:c"))
}
