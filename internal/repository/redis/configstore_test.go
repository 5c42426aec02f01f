package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offerpilot/offerpilot/internal/domain"
)

func TestMemoryConfigStoreRoundTrip(t *testing.T) {
	store := NewMemoryConfigStore()
	ctx := context.Background()

	_, err := store.GetWidgetConfig(ctx, "w-1")
	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.ErrCodeNotFound))

	cfg := &domain.WidgetConfig{
		WidgetID:     "w-1",
		BusinessName: "Glow Clinic",
		OfferStyle:   "formula_b",
	}
	require.NoError(t, store.SetWidgetConfig(ctx, cfg))

	got, err := store.GetWidgetConfig(ctx, "w-1")
	require.NoError(t, err)
	assert.Equal(t, "Glow Clinic", got.BusinessName)
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestMemoryConfigStoreCopiesValues(t *testing.T) {
	store := NewMemoryConfigStore()
	ctx := context.Background()

	cfg := &domain.WidgetConfig{WidgetID: "w-2", BusinessName: "A"}
	require.NoError(t, store.SetWidgetConfig(ctx, cfg))

	got, err := store.GetWidgetConfig(ctx, "w-2")
	require.NoError(t, err)
	got.BusinessName = "mutated"

	again, err := store.GetWidgetConfig(ctx, "w-2")
	require.NoError(t, err)
	assert.Equal(t, "A", again.BusinessName)
}
