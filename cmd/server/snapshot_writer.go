package main

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"gatecraft.ai/internal/persistence/snapshot"
)

type snapshotRecorder interface {
	RecordSnapshot(path string, snap snapshot.SnapshotV1)
}

// snapshotWriter persists snapshots handed out by the world loop and
// records them in the index when one is configured.
type snapshotWriter struct {
	dir    string
	rec    snapshotRecorder
	logger *log.Logger
}

func (s *snapshotWriter) path(tick uint64) string {
	return filepath.Join(s.dir, fmt.Sprintf("%d.snap.zst", tick))
}

func (s *snapshotWriter) write(snap snapshot.SnapshotV1) (string, error) {
	path := s.path(snap.Header.Tick)
	if err := snapshot.WriteSnapshot(path, snap); err != nil {
		return "", err
	}
	if s.rec != nil {
		s.rec.RecordSnapshot(path, snap)
	}
	return path, nil
}

func (s *snapshotWriter) run(ctx context.Context, ch <-chan snapshot.SnapshotV1) {
	for {
		select {
		case <-ctx.Done():
			return
		case snap := <-ch:
			if _, err := s.write(snap); err != nil {
				s.logger.Printf("snapshot write: %v", err)
			}
		}
	}
}

// drain writes whatever the world has queued without blocking.
func (s *snapshotWriter) drain(ch <-chan snapshot.SnapshotV1) {
	for {
		select {
		case snap := <-ch:
			if _, err := s.write(snap); err != nil {
				s.logger.Printf("snapshot write: %v", err)
			}
		default:
			return
		}
	}
}
