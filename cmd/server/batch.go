package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"gatecraft.ai/internal/persistence/snapshot"
	"gatecraft.ai/internal/protocol"
	"gatecraft.ai/internal/sim/world"
)

// actionBatch is the set of actions scheduled for one tick, in file order.
type actionBatch struct {
	Tick    uint64
	Actions []protocol.Action
}

// readActionBatches reads one JSON action per line. Consecutive lines with
// the same tick form a batch; ticks must not go backwards.
func readActionBatches(r io.Reader, v *protocol.Validator) ([]actionBatch, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	var out []actionBatch
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		act, err := v.DecodeAction(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if n := len(out); n > 0 {
			last := &out[n-1]
			if act.Tick < last.Tick {
				return nil, fmt.Errorf("line %d: tick %d after tick %d", lineNo, act.Tick, last.Tick)
			}
			if act.Tick == last.Tick {
				last.Actions = append(last.Actions, act)
				continue
			}
		}
		out = append(out, actionBatch{Tick: act.Tick, Actions: []protocol.Action{act}})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type batchSummary struct {
	Ticks      int
	Actions    int
	Rejected   int
	LastDigest string
	Snapshot   string
}

// runBatches steps w through every batch, advancing over empty ticks in
// between. Batches scheduled before the world's current tick run on the
// current tick. A final snapshot of the last completed tick is written on
// return.
func runBatches(w *world.World, batches []actionBatch, snapCh <-chan snapshot.SnapshotV1, sw *snapshotWriter) batchSummary {
	var sum batchSummary
	step := func(acts []protocol.Action) {
		_, digest, results := w.StepOnce(acts)
		sum.Ticks++
		sum.Actions += len(acts)
		for _, r := range results {
			if !r.OK {
				sum.Rejected++
			}
		}
		sum.LastDigest = digest
		sw.drain(snapCh)
	}
	for _, b := range batches {
		for w.CurrentTick() < b.Tick {
			step(nil)
		}
		step(b.Actions)
	}

	if cur := w.CurrentTick(); cur > 0 {
		path, err := sw.write(w.ExportSnapshot(cur - 1))
		if err != nil {
			sw.logger.Printf("final snapshot: %v", err)
		} else {
			sum.Snapshot = path
		}
	}
	return sum
}
