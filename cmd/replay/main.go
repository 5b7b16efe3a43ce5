package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	persistlog "gatecraft.ai/internal/persistence/log"
	"gatecraft.ai/internal/persistence/snapshot"
	"gatecraft.ai/internal/sim/catalogs"
	"gatecraft.ai/internal/sim/tuning"
	"gatecraft.ai/internal/sim/world"
)

func main() {
	var (
		snapPath   = flag.String("snapshot", "", "path to .snap.zst")
		eventsDir  = flag.String("events", "", "events dir containing events-*.jsonl.zst (optional)")
		configDir  = flag.String("configs", "./configs", "config directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		fromTick   = flag.Uint64("from_tick", 0, "start verifying from tick (inclusive, optional)")
		toTick     = flag.Uint64("to_tick", 0, "stop at tick (inclusive, optional)")
	)
	flag.Parse()

	if *snapPath == "" {
		fmt.Fprintln(os.Stderr, "missing -snapshot")
		os.Exit(2)
	}

	snap, err := snapshot.ReadSnapshot(*snapPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read snapshot:", err)
		os.Exit(1)
	}

	fmt.Printf("snapshot v%d world=%s tick=%d height=%d boundary_r=%d chunks=%d gates=%d palette=%d\n",
		snap.Header.Version, snap.Header.WorldID, snap.Header.Tick, snap.Height, snap.BoundaryR,
		len(snap.Chunks), len(snap.Gates), len(snap.Palette))

	if *eventsDir == "" {
		return
	}

	cats, err := catalogs.Load(*configDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load catalogs:", err)
		os.Exit(1)
	}
	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintln(os.Stderr, "load tuning:", err)
			os.Exit(1)
		}
		tune = tuning.Defaults()
	}

	w, err := worldFromSnapshot(snap, cats, tune)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	res, err := replay(w, *eventsDir, *fromTick, *toTick)
	if err != nil {
		fmt.Fprintln(os.Stderr, "replay:", err)
		os.Exit(1)
	}
	fmt.Printf("replay ok: checked=%d ticks actions=%d (from snapshot tick=%d) gates=%d\n",
		res.Checked, res.Actions, snap.Header.Tick, w.GateCount())
}

func worldFromSnapshot(snap snapshot.SnapshotV1, cats *catalogs.Catalogs, tune tuning.Tuning) (*world.World, error) {
	facing, err := tune.DefaultGateFacing()
	if err != nil {
		return nil, fmt.Errorf("tuning: %w", err)
	}
	w, err := world.New(world.WorldConfig{
		ID:                 snap.Header.WorldID,
		TickRateHz:         snap.TickRate,
		Height:             snap.Height,
		BoundaryR:          snap.BoundaryR,
		FloorDepth:         snap.FloorDepth,
		FloorBlock:         tune.Floor.Block,
		GateDefaultFacing:  facing,
		GateSound:          tune.Gate.Sound,
		RepairInvalidGates: tune.Snapshot.RepairInvalidGates,
	}, cats)
	if err != nil {
		return nil, fmt.Errorf("world: %w", err)
	}
	if err := w.ImportSnapshot(snap); err != nil {
		return nil, fmt.Errorf("import snapshot: %w", err)
	}
	return w, nil
}

type replayResult struct {
	Checked uint64
	Actions int
}

var errStop = errors.New("stop")

// replay re-applies logged ticks after the snapshot and compares each
// tick's digest and action results with what was recorded.
func replay(w *world.World, eventsDir string, verifyFrom, toTick uint64) (replayResult, error) {
	var res replayResult
	startTick := w.CurrentTick()
	if verifyFrom == 0 {
		verifyFrom = startTick
	}

	files, err := persistlog.ListFiles(eventsDir, "events")
	if err != nil {
		return res, fmt.Errorf("list events: %w", err)
	}
	if len(files) == 0 {
		return res, fmt.Errorf("no events files found in %s", eventsDir)
	}

	err = persistlog.ReadTicks(eventsDir, func(entry world.TickLogEntry) error {
		if entry.Tick < startTick {
			return nil
		}
		if toTick != 0 && entry.Tick > toTick {
			return errStop
		}
		if entry.Tick != w.CurrentTick() {
			return fmt.Errorf("tick mismatch: want=%d got=%d", w.CurrentTick(), entry.Tick)
		}

		tick, gotDigest, results := w.StepOnce(entry.Actions)
		if tick != entry.Tick {
			return fmt.Errorf("internal tick mismatch: stepped=%d entry=%d", tick, entry.Tick)
		}
		res.Actions += len(entry.Actions)
		if tick < verifyFrom {
			return nil
		}
		res.Checked++
		if len(results) != len(entry.Results) {
			return fmt.Errorf("result count mismatch at tick %d: got=%d want=%d", tick, len(results), len(entry.Results))
		}
		for i, r := range results {
			want := entry.Results[i]
			if r.ID != want.ID || r.OK != want.OK || r.Code != want.Code {
				return fmt.Errorf("result mismatch at tick %d action %s: got=%+v want=%+v", tick, want.ID, r, want)
			}
		}
		if gotDigest != entry.Digest {
			return fmt.Errorf("digest mismatch at tick %d: got=%s want=%s", tick, gotDigest, entry.Digest)
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStop) {
		return res, err
	}
	return res, nil
}
