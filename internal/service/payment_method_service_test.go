package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"subscription-billing-be/internal/apperror"
)

func TestPaymentMethodSetDefault(t *testing.T) {
	ctx := context.Background()
	factory := newFakeFactory()
	svc := NewPaymentMethodService(factory, nopLogger{})

	user := seedUser(factory)
	first := seedPaymentMethod(factory, user.Id, true)
	second := seedPaymentMethod(factory, user.Id, false)

	require.NoError(t, svc.SetDefault(ctx, user.Id, second.Id))

	defaults := 0
	for _, m := range methodsOf(factory, user.Id) {
		if m.IsDefault {
			defaults++
			require.Equal(t, second.Id, m.Id)
		}
	}
	require.Equal(t, 1, defaults)

	// Setting the same default again keeps the invariant.
	require.NoError(t, svc.SetDefault(ctx, user.Id, second.Id))
	defaults = 0
	for _, m := range methodsOf(factory, user.Id) {
		if m.IsDefault {
			defaults++
		}
	}
	require.Equal(t, 1, defaults)

	// Another user's method is invisible.
	require.ErrorIs(t, svc.SetDefault(ctx, uuid.New(), first.Id), apperror.ErrResourceNotFound)
}

func TestPaymentMethodDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("deleting the default promotes the newest survivor", func(t *testing.T) {
		factory := newFakeFactory()
		svc := NewPaymentMethodService(factory, nopLogger{})
		user := seedUser(factory)

		older := seedPaymentMethod(factory, user.Id, false)
		newest := seedPaymentMethod(factory, user.Id, false)
		def := seedPaymentMethod(factory, user.Id, true)
		_ = older

		require.NoError(t, svc.Delete(ctx, user.Id, def.Id))

		remaining := methodsOf(factory, user.Id)
		require.Len(t, remaining, 2)
		defaults := 0
		for _, m := range remaining {
			if m.IsDefault {
				defaults++
				require.Equal(t, newest.Id, m.Id)
			}
		}
		require.Equal(t, 1, defaults)
	})

	t.Run("deleting a non-default leaves the default alone", func(t *testing.T) {
		factory := newFakeFactory()
		svc := NewPaymentMethodService(factory, nopLogger{})
		user := seedUser(factory)

		def := seedPaymentMethod(factory, user.Id, true)
		other := seedPaymentMethod(factory, user.Id, false)

		require.NoError(t, svc.Delete(ctx, user.Id, other.Id))

		remaining := methodsOf(factory, user.Id)
		require.Len(t, remaining, 1)
		require.Equal(t, def.Id, remaining[0].Id)
		require.True(t, remaining[0].IsDefault)
	})

	t.Run("deleting the last method leaves none", func(t *testing.T) {
		factory := newFakeFactory()
		svc := NewPaymentMethodService(factory, nopLogger{})
		user := seedUser(factory)
		only := seedPaymentMethod(factory, user.Id, true)

		require.NoError(t, svc.Delete(ctx, user.Id, only.Id))
		require.Empty(t, methodsOf(factory, user.Id))
	})
}
