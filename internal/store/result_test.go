package store_test

import (
	"errors"
	"testing"

	"github.com/ar0311/identity-docstore/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult(t *testing.T) {
	t.Parallel()

	describer := store.DefaultErrorDescriber{}

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		res := store.Success()
		assert.True(t, res.Succeeded)
		assert.Empty(t, res.Errors)
		assert.NoError(t, res.Err())
		assert.Equal(t, "Succeeded", res.String())
	})

	t.Run("concurrency failure matches sentinel", func(t *testing.T) {
		t.Parallel()

		res := store.Failed(describer.ConcurrencyFailure())
		assert.False(t, res.Succeeded)
		assert.True(t, res.HasCode(store.CodeConcurrencyFailure))

		err := res.Err()
		require.Error(t, err)
		assert.True(t, errors.Is(err, store.ErrConcurrencyFailure))
		assert.Contains(t, err.Error(), "Optimistic concurrency failure")
		assert.Equal(t, "Failed : ConcurrencyFailure", res.String())
	})

	t.Run("other failures do not match concurrency", func(t *testing.T) {
		t.Parallel()

		res := store.Failed(describer.DuplicateUserName("alice"), describer.DuplicateEmail("a@example.com"))
		err := res.Err()
		require.Error(t, err)
		assert.False(t, errors.Is(err, store.ErrConcurrencyFailure))
		assert.Contains(t, err.Error(), "Username 'alice' is already taken.")

		var failure *store.ResultFailure
		require.True(t, errors.As(err, &failure))
		assert.Len(t, failure.Errors, 2)
	})
}
