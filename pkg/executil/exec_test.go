package executil

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealExecutor_Output(t *testing.T) {
	exec := &RealExecutor{}
	ctx := context.Background()

	t.Run("successful command", func(t *testing.T) {
		out, err := exec.Output(ctx, "echo", "hello")
		require.NoError(t, err)
		assert.Equal(t, "hello\n", string(out))
	})

	t.Run("command not found", func(t *testing.T) {
		_, err := exec.Output(ctx, "nonexistent-command-12345")
		require.Error(t, err)
	})

	t.Run("failure includes stderr", func(t *testing.T) {
		_, err := exec.Output(ctx, "sh", "-c", "echo boom >&2; exit 1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "boom")
	})

	t.Run("stderr capped in error", func(t *testing.T) {
		long := strings.Repeat("A", 2000)
		_, err := exec.Output(ctx, "sh", "-c", "printf '%s' '"+long+"' >&2; exit 1")
		require.Error(t, err)
		assert.Less(t, len(err.Error()), 600, "error message should carry only a stderr tail")
	})
}

func TestFakeExecutor(t *testing.T) {
	ctx := context.Background()

	t.Run("records calls and returns output", func(t *testing.T) {
		fake := &FakeExecutor{Out: []byte("listing")}

		out, err := fake.Output(ctx, "cc", "-S", "main.c")
		require.NoError(t, err)
		assert.Equal(t, []byte("listing"), out)

		require.Len(t, fake.Calls, 1)
		assert.Equal(t, []string{"cc", "-S", "main.c"}, fake.Calls[0])
	})

	t.Run("returns configured error", func(t *testing.T) {
		wantErr := errors.New("compiler exploded")
		fake := &FakeExecutor{Err: wantErr}

		_, err := fake.Output(ctx, "cc")
		assert.Equal(t, wantErr, err)
		assert.Len(t, fake.Calls, 1, "failed calls are still recorded")
	})
}
