package indexdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
)

// Reader runs read-only queries against an index written by SQLiteIndex.
type Reader struct {
	db *sql.DB
}

func OpenReader(path string) (*Reader, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA query_only=ON;"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Reader{db: db}, nil
}

func (r *Reader) Close() error { return r.db.Close() }

type EventRow struct {
	Tick  uint64 `json:"tick"`
	Seq   int    `json:"seq"`
	Type  string `json:"type"`
	Pos   [3]int `json:"pos"`
	Actor string `json:"actor,omitempty"`
	Block string `json:"block,omitempty"`
	Meta  int    `json:"meta"`
	Sound string `json:"sound,omitempty"`
}

// EventsAt lists the events recorded for one cell, oldest first.
func (r *Reader) EventsAt(ctx context.Context, pos [3]int, limit int) ([]EventRow, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT tick,seq,type,x,y,z,COALESCE(actor,''),COALESCE(block,''),meta,COALESCE(sound,'')
		 FROM events WHERE x=? AND y=? AND z=? ORDER BY tick,seq LIMIT ?`,
		pos[0], pos[1], pos[2], limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []EventRow
	for rows.Next() {
		var e EventRow
		var tick int64
		if err := rows.Scan(&tick, &e.Seq, &e.Type, &e.Pos[0], &e.Pos[1], &e.Pos[2], &e.Actor, &e.Block, &e.Meta, &e.Sound); err != nil {
			return nil, err
		}
		e.Tick = uint64(tick)
		out = append(out, e)
	}
	return out, rows.Err()
}

type SnapshotInfo struct {
	Tick   uint64 `json:"tick"`
	Path   string `json:"path"`
	Height int    `json:"height"`
	Chunks int    `json:"chunks"`
	Gates  int    `json:"gates"`
}

// LatestSnapshot returns the most recent recorded snapshot, if any.
func (r *Reader) LatestSnapshot(ctx context.Context) (SnapshotInfo, bool, error) {
	var s SnapshotInfo
	var tick int64
	err := r.db.QueryRowContext(ctx,
		`SELECT tick,path,height,chunks,gates FROM snapshots ORDER BY tick DESC LIMIT 1`,
	).Scan(&tick, &s.Path, &s.Height, &s.Chunks, &s.Gates)
	if errors.Is(err, sql.ErrNoRows) {
		return s, false, nil
	}
	if err != nil {
		return s, false, err
	}
	s.Tick = uint64(tick)
	return s, true, nil
}

// TickDigest returns the state digest recorded for tick.
func (r *Reader) TickDigest(ctx context.Context, tick uint64) (string, bool, error) {
	var d string
	err := r.db.QueryRowContext(ctx, `SELECT digest FROM ticks WHERE tick=?`, int64(tick)).Scan(&d)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("tick %d: %w", tick, err)
	}
	return d, true, nil
}

// Counts returns row counts for the main tables.
func (r *Reader) Counts(ctx context.Context) (map[string]int, error) {
	out := map[string]int{}
	for _, t := range []string{"ticks", "actions", "events", "audits", "snapshots", "catalogs"} {
		var n int
		if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+t).Scan(&n); err != nil {
			return nil, fmt.Errorf("%s: %w", t, err)
		}
		out[t] = n
	}
	return out, nil
}
