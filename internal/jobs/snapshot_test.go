package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIndex struct {
	mu    sync.Mutex
	dirty bool
	saves int
	fail  bool
}

func (f *fakeIndex) Dirty() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dirty
}

func (f *fakeIndex) Save(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("disk full")
	}
	f.saves++
	f.dirty = false
	return nil
}

func (f *fakeIndex) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saves
}

func TestSnapshotterSavesDirtyIndex(t *testing.T) {
	ix := &fakeIndex{dirty: true}
	s := NewSnapshotter(ix, time.Second)

	require.NoError(t, s.SaveIfDirty(context.Background()))
	assert.Equal(t, 1, ix.saveCount())
	assert.False(t, ix.Dirty())
}

func TestSnapshotterSkipsCleanIndex(t *testing.T) {
	ix := &fakeIndex{}
	s := NewSnapshotter(ix, time.Second)

	require.NoError(t, s.SaveIfDirty(context.Background()))
	assert.Zero(t, ix.saveCount())
}

func TestSnapshotterPropagatesSaveError(t *testing.T) {
	ix := &fakeIndex{dirty: true, fail: true}
	s := NewSnapshotter(ix, time.Second)

	assert.Error(t, s.SaveIfDirty(context.Background()))
}

func TestSnapshotterPollsUntilStopped(t *testing.T) {
	ix := &fakeIndex{dirty: true}
	s := NewSnapshotter(ix, 10*time.Millisecond)

	go s.Run(context.Background())
	time.Sleep(50 * time.Millisecond)
	s.Stop()

	assert.GreaterOrEqual(t, ix.saveCount(), 1)
}
