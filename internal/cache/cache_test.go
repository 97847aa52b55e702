package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStoreLookupRoundTrip(t *testing.T) {
	c, err := Open("")
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	entry := Entry{
		Commands: []string{"scoreboard players operation @s obj *= $3 bolt.expr.const"},
		Consts:   []int64{3},
	}
	require.NoError(t, c.Store(ctx, "key1", entry, 100))

	got, ok, err := c.Lookup(ctx, "key1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, entry, got)
}

func TestLookupMiss(t *testing.T) {
	c, err := Open("")
	require.NoError(t, err)
	defer c.Close()

	_, ok, err := c.Lookup(context.Background(), "absent")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStoreOverwritesExistingKey(t *testing.T) {
	c, err := Open("")
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	require.NoError(t, c.Store(ctx, "key1", Entry{Commands: []string{"a"}}, 1))
	require.NoError(t, c.Store(ctx, "key1", Entry{Commands: []string{"b"}, Consts: []int64{5}}, 2))

	got, ok, err := c.Lookup(ctx, "key1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []string{"b"}, got.Commands)
	require.Equal(t, []int64{5}, got.Consts)
}
