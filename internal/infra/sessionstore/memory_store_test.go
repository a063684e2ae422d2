package sessionstore

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/astroml/internal/domain/generation"
	"github.com/yanqian/astroml/internal/domain/reading"
)

func TestMemoryStoreSaveGetDelete(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	wf := newWorkflow("a")

	require.NoError(t, store.Save(context.Background(), wf))
	got, ok, err := store.Get(context.Background(), "a")
	require.NoError(t, err)
	require.True(t, ok)
	require.Same(t, wf, got)

	require.NoError(t, store.Delete(context.Background(), "a"))
	_, ok, err = store.Get(context.Background(), "a")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryStoreExpiresIdleSessions(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Date(2026, time.October, 15, 8, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(context.Background(), newWorkflow("old")))
	now = now.Add(2 * time.Minute)

	_, ok, err := store.Get(context.Background(), "old")
	require.NoError(t, err)
	require.False(t, ok)
	require.Zero(t, store.Len())
}

func TestMemoryStoreSaveRefreshesAndSweeps(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Date(2026, time.October, 15, 8, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	keep := newWorkflow("keep")
	require.NoError(t, store.Save(context.Background(), keep))
	require.NoError(t, store.Save(context.Background(), newWorkflow("drop")))

	now = now.Add(50 * time.Second)
	require.NoError(t, store.Save(context.Background(), keep))
	now = now.Add(50 * time.Second)
	require.NoError(t, store.Save(context.Background(), newWorkflow("fresh")))

	require.Equal(t, 2, store.Len())
	_, ok, _ := store.Get(context.Background(), "keep")
	require.True(t, ok)
}

func TestMemoryStoreZeroTTLNeverExpires(t *testing.T) {
	store := NewMemoryStore(0)
	now := time.Now()
	store.now = func() time.Time { return now }
	require.NoError(t, store.Save(context.Background(), newWorkflow("a")))
	now = now.Add(24 * time.Hour)
	_, ok, _ := store.Get(context.Background(), "a")
	require.True(t, ok)
}

func newWorkflow(id string) *reading.Workflow {
	return reading.NewWorkflow(id, reading.Config{}, nopGenerator{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type nopGenerator struct{}

func (nopGenerator) Generate(_ context.Context, _ string, fallback string) generation.Result {
	return generation.Result{Text: fallback, Fallback: true}
}
