package http

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"carteira/internal/core"
)

func TestSnapshotCacheServesWithinTTL(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c := newSnapshotCache(time.Minute)
	c.now = func() time.Time { return now }

	loads := 0
	load := func(context.Context) ([]core.Transaction, error) {
		loads++
		return []core.Transaction{{ID: int64(loads)}}, nil
	}

	rows, err := c.Get(context.Background(), load)
	require.NoError(t, err)
	require.Equal(t, int64(1), rows[0].ID)

	rows, err = c.Get(context.Background(), load)
	require.NoError(t, err)
	require.Equal(t, int64(1), rows[0].ID)
	require.Equal(t, 1, loads)

	now = now.Add(2 * time.Minute)
	rows, err = c.Get(context.Background(), load)
	require.NoError(t, err)
	require.Equal(t, int64(2), rows[0].ID)
	require.Equal(t, 2, loads)
}

func TestSnapshotCacheInvalidate(t *testing.T) {
	c := newSnapshotCache(time.Hour)

	loads := 0
	load := func(context.Context) ([]core.Transaction, error) {
		loads++
		return nil, nil
	}

	_, err := c.Get(context.Background(), load)
	require.NoError(t, err)
	_, err = c.Get(context.Background(), load)
	require.NoError(t, err)
	require.Equal(t, 1, loads)

	c.Invalidate()
	_, err = c.Get(context.Background(), load)
	require.NoError(t, err)
	require.Equal(t, 2, loads)
}

func TestSnapshotCacheServesStaleOnError(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c := newSnapshotCache(time.Minute)
	c.now = func() time.Time { return now }

	_, err := c.Get(context.Background(), func(context.Context) ([]core.Transaction, error) {
		return []core.Transaction{{ID: 1}}, nil
	})
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	rows, err := c.Get(context.Background(), func(context.Context) ([]core.Transaction, error) {
		return nil, errors.New("file locked")
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), rows[0].ID)
}

func TestSnapshotCacheZeroTTLAlwaysLoads(t *testing.T) {
	c := newSnapshotCache(0)

	loads := 0
	load := func(context.Context) ([]core.Transaction, error) {
		loads++
		return nil, nil
	}

	for i := 0; i < 3; i++ {
		_, err := c.Get(context.Background(), load)
		require.NoError(t, err)
	}
	require.Equal(t, 3, loads)
}
