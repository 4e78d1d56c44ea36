package database

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certifier/internal/platform/config"
)

func TestNewWithoutURL(t *testing.T) {
	pool, err := New(config.DatabaseConfig{}, prometheus.NewRegistry())
	require.NoError(t, err)
	assert.Nil(t, pool)

	assert.ErrorIs(t, pool.Health(context.Background()), ErrNotConfigured)
	assert.NoError(t, pool.Close())
}
