package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBackend_EmptyLoad(t *testing.T) {
	s, err := NewMemoryBackend().Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, NewState(), s)
}

func TestMemoryBackend_RoundTrip(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()

	require.NoError(t, b.Save(ctx, sampleState(t)))
	assert.Equal(t, 1, b.Saves())

	got, err := b.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleState(t), got)
}

func TestMemoryBackend_FailSaves(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	boom := errors.New("disk full")

	b.FailSaves(boom)
	err := b.Save(ctx, sampleState(t))
	require.Error(t, err)
	assert.True(t, IsPersistenceError(err))
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, b.Bytes())

	b.FailSaves(nil)
	require.NoError(t, b.Save(ctx, sampleState(t)))
	assert.NotEmpty(t, b.Bytes())
}

func TestMemoryBackend_CorruptDataHalts(t *testing.T) {
	b := NewMemoryBackendWith([]byte("not json"))

	_, err := b.Load(context.Background())
	require.Error(t, err)
	assert.True(t, IsPersistenceError(err))
}
