package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epiverse/bcrat/internal/domain"
)

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache(10, 0)
	ctx := context.Background()

	risk := 1.25
	result := &domain.RiskResult{ID: "mem-1", Success: true, AbsoluteRisk: &risk}

	require.NoError(t, c.Set(ctx, "k1", result))

	got, ok, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.SubjectID("mem-1"), got.ID)
	assert.Equal(t, 1.25, *got.AbsoluteRisk)
}

func TestMemoryCache_Miss(t *testing.T) {
	c := NewMemoryCache(10, 0)

	got, ok, err := c.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(10, 20*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k1", &domain.RiskResult{ID: "mem-1"}))

	_, ok, _ := c.Get(ctx, "k1")
	assert.True(t, ok)

	time.Sleep(50 * time.Millisecond)

	_, ok, _ = c.Get(ctx, "k1")
	assert.False(t, ok, "entry should have expired")
}

func TestMemoryCache_SizeBound(t *testing.T) {
	c := NewMemoryCache(4, 0)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		require.NoError(t, c.Set(ctx, fmt.Sprintf("k%d", i), &domain.RiskResult{}))
	}

	assert.LessOrEqual(t, c.Len(), 4)
}
