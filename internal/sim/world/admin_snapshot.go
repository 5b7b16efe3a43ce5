package world

import (
	"context"
	"errors"
)

var (
	ErrSnapshotUnavailable  = errors.New("admin snapshot not available")
	ErrSnapshotNoSink       = errors.New("snapshot sink not configured")
	ErrSnapshotBackpressure = errors.New("snapshot sink backpressure")
)

// SnapshotReceipt describes a snapshot handed to the sink on request.
type SnapshotReceipt struct {
	Tick   uint64 `json:"tick"`
	Gates  int    `json:"gates"`
	Chunks int    `json:"chunks"`
}

type adminSnapshotReq struct {
	Resp chan adminSnapshotResp
}

type adminSnapshotResp struct {
	Receipt SnapshotReceipt
	Err     error
}

// RequestSnapshot asks the loop goroutine to export the last completed tick
// and waits until the export was queued on the sink or refused.
func (w *World) RequestSnapshot(ctx context.Context) (SnapshotReceipt, error) {
	if w == nil || w.admin == nil {
		return SnapshotReceipt{}, ErrSnapshotUnavailable
	}
	resp := make(chan adminSnapshotResp, 1)

	select {
	case w.admin <- adminSnapshotReq{Resp: resp}:
	case <-ctx.Done():
		return SnapshotReceipt{}, ctx.Err()
	}

	select {
	case r := <-resp:
		return r.Receipt, r.Err
	case <-ctx.Done():
		return SnapshotReceipt{}, ctx.Err()
	}
}

// handleAdminSnapshotRequests answers every pending request with one export.
// Runs on the loop goroutine after a tick completes.
func (w *World) handleAdminSnapshotRequests(reqs []adminSnapshotReq) {
	if w == nil || len(reqs) == 0 {
		return
	}
	var snapTick uint64
	if cur := w.tick.Load(); cur > 0 {
		snapTick = cur - 1
	}

	resp := adminSnapshotResp{Receipt: SnapshotReceipt{Tick: snapTick}}
	if w.snapshotSink == nil {
		resp.Err = ErrSnapshotNoSink
	} else {
		snap := w.ExportSnapshot(snapTick)
		resp.Receipt.Gates = len(snap.Gates)
		resp.Receipt.Chunks = len(snap.Chunks)
		select {
		case w.snapshotSink <- snap:
		default:
			resp.Err = ErrSnapshotBackpressure
			w.logger.Printf("snapshot sink full; dropped admin snapshot tick=%d (%d requests)", snapTick, len(reqs))
		}
	}

	for _, r := range reqs {
		if r.Resp == nil {
			continue
		}
		select {
		case r.Resp <- resp:
		default:
		}
	}
}
