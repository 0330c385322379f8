//go:build integration

package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/shopmate/internal/testutil"
)

func TestMigrate_UpDown(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	res, err := Migrate(pc.ConnectionString(), "file://../../migrations", Up)
	require.NoError(t, err)
	assert.Equal(t, uint(2), res.Version)
	assert.True(t, res.Changed)

	res, err = Migrate(pc.ConnectionString(), "file://../../migrations", Up)
	require.NoError(t, err)
	assert.False(t, res.Changed)

	pool, err := NewPool(ctx, pc.ConnectionString(), PoolOptions{MaxConns: 4})
	require.NoError(t, err)
	defer pool.Close()

	var n int
	require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM products`).Scan(&n))
	assert.Equal(t, 0, n)

	res, err = Migrate(pc.ConnectionString(), "file://../../migrations", Down)
	require.NoError(t, err)
	assert.Equal(t, uint(1), res.Version)
}

func TestMigrate_UnknownDirection(t *testing.T) {
	_, err := Migrate("postgres://invalid", "file://../../migrations", Direction("sideways"))
	assert.Error(t, err)
}

func TestNewPool_InvalidURL(t *testing.T) {
	_, err := NewPool(context.Background(), "://not a url", PoolOptions{})
	assert.ErrorContains(t, err, "failed to parse database config")
}
