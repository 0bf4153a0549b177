package logging_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/rmarecon/pkg/logging"
)

func TestContextFunctions(t *testing.T) {
	t.Run("WithSide adds side to context logger", func(t *testing.T) {
		tl := logging.NewTestLogger(t)
		ctx := logging.WithLogger(context.Background(), tl.Logger)
		ctx = logging.WithSide(ctx, "gsx")

		logging.FromContext(ctx).Info().Msg("loaded")
		tl.AssertContains(t, `"side":"gsx"`)
	})

	t.Run("WithFile and WithOperation stack", func(t *testing.T) {
		tl := logging.NewTestLogger(t)
		ctx := logging.WithLogger(context.Background(), tl.Logger)
		ctx = logging.WithFile(ctx, "sa.csv")
		ctx = logging.WithOperation(ctx, "extract")

		logging.Ctx(ctx).Info().Msg("done")
		assert.True(t, tl.ContainsAll(`"file":"sa.csv"`, `"operation":"extract"`))
	})

	t.Run("WithRunID is retrievable", func(t *testing.T) {
		ctx := logging.WithRunID(context.Background(), "run-1")
		assert.Equal(t, "run-1", logging.RunID(ctx))
		assert.Equal(t, "", logging.RunID(context.Background()))
	})

	t.Run("WithError ignores nil", func(t *testing.T) {
		ctx := context.Background()
		assert.Equal(t, ctx, logging.WithError(ctx, nil))

		tl := logging.NewTestLogger(t)
		ctx = logging.WithLogger(ctx, tl.Logger)
		ctx = logging.WithError(ctx, errors.New("boom"))
		logging.FromContext(ctx).Warn().Msg("failed")
		tl.AssertContains(t, "boom")
	})

	t.Run("FromContext falls back to default", func(t *testing.T) {
		//nolint:staticcheck // nil context is part of the contract
		assert.Equal(t, logging.Default(), logging.FromContext(nil))
		assert.Equal(t, logging.Default(), logging.FromContext(context.Background()))
	})
}
