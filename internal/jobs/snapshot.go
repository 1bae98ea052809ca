// Package jobs runs background maintenance for the vector index.
package jobs

import (
	"context"
	"log"
	"time"
)

// SnapshotIndex is the persistence surface the snapshot loop drives.
type SnapshotIndex interface {
	Dirty() bool
	Save(ctx context.Context) error
}

// Snapshotter periodically persists the index when it has unsaved
// mutations. A clean index makes a poll a no-op, so short intervals are
// cheap. Save runs inside the index's own critical section, serializing it
// against writers.
type Snapshotter struct {
	index    SnapshotIndex
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

// NewSnapshotter creates a snapshot loop for the given index.
func NewSnapshotter(index SnapshotIndex, interval time.Duration) *Snapshotter {
	return &Snapshotter{
		index:    index,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Run polls until Stop is called or the context ends. Save failures are
// logged and retried on the next tick; the index stays dirty so no
// mutation is silently dropped.
func (s *Snapshotter) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	defer close(s.done)

	log.Printf("snapshotter: polling every %v", s.interval)
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case <-ticker.C:
			if err := s.SaveIfDirty(ctx); err != nil {
				log.Printf("snapshotter: save failed: %v", err)
			}
		}
	}
}

// SaveIfDirty persists the index when it has unsaved mutations.
func (s *Snapshotter) SaveIfDirty(ctx context.Context) error {
	if !s.index.Dirty() {
		return nil
	}
	if err := s.index.Save(ctx); err != nil {
		return err
	}
	log.Println("snapshotter: index saved")
	return nil
}

// Stop ends the loop and waits for the current poll to finish.
func (s *Snapshotter) Stop() {
	close(s.stop)
	<-s.done
}
