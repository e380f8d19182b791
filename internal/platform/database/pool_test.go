package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithoutURL(t *testing.T) {
	pool, err := New(context.Background(), DefaultConfig(""))
	require.NoError(t, err)
	assert.Nil(t, pool)

	assert.Nil(t, pool.DB())
	assert.NoError(t, pool.Close())
	assert.EqualError(t, pool.Health(context.Background()), "database not configured")
}

func TestNewRejectsMalformedURL(t *testing.T) {
	_, err := New(context.Background(), DefaultConfig("host=localhost port=notaport"))
	assert.Error(t, err)
}
