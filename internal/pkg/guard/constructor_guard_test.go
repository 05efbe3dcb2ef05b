package guard_test

import (
	"errors"
	"testing"

	"orderlifecycle/internal/pkg/guard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorGuard_Validate(t *testing.T) {
	errNotConstructed := errors.New("command not constructed")

	t.Run("constructed guard passes", func(t *testing.T) {
		g := guard.NewConstructorGuard()

		require.NoError(t, g.Validate(errNotConstructed))
		require.NoError(t, g.Validate(nil))
	})

	t.Run("zero value returns the supplied error", func(t *testing.T) {
		var g guard.ConstructorGuard

		assert.Equal(t, errNotConstructed, g.Validate(errNotConstructed))
	})

	t.Run("zero value falls back to the default error", func(t *testing.T) {
		var g guard.ConstructorGuard

		assert.Equal(t, guard.ErrDefaultConstructorGuard, g.Validate(nil))
	})

	t.Run("embedded in a struct", func(t *testing.T) {
		type command struct {
			notes string
			guard guard.ConstructorGuard
		}

		built := command{notes: "ok", guard: guard.NewConstructorGuard()}
		var zero command

		require.NoError(t, built.guard.Validate(errNotConstructed))
		require.ErrorIs(t, zero.guard.Validate(errNotConstructed), errNotConstructed)
	})
}
