package main

import (
	"io"
	"log"
	"path/filepath"
	"strings"
	"testing"

	persistlog "gatecraft.ai/internal/persistence/log"
	"gatecraft.ai/internal/persistence/snapshot"
	"gatecraft.ai/internal/protocol"
	"gatecraft.ai/internal/sim/catalogs"
	"gatecraft.ai/internal/sim/geom"
	"gatecraft.ai/internal/sim/tuning"
	"gatecraft.ai/internal/sim/world"
)

type tamperLogger struct {
	next world.TickLogger
	tick uint64
}

func (l tamperLogger) WriteTick(e world.TickLogEntry) error {
	if e.Tick == l.tick {
		e.Digest = strings.Repeat("0", 64)
	}
	return l.next.WriteTick(e)
}

// recordRun plays a short gate scenario, snapshotting after tick 1 and
// logging every tick to dir.
func recordRun(t *testing.T, dir string, tamperTick uint64) (*catalogs.Catalogs, snapshot.SnapshotV1) {
	t.Helper()
	cats, err := catalogs.Load(filepath.Join("..", "..", "configs"))
	if err != nil {
		t.Fatalf("catalogs: %v", err)
	}
	tune := tuning.Defaults()
	tune.Height = 16
	w, err := world.New(world.WorldConfig{
		ID:                "replay",
		Height:            tune.Height,
		BoundaryR:         64,
		FloorDepth:        1,
		GateDefaultFacing: geom.North,
	}, cats)
	if err != nil {
		t.Fatalf("world: %v", err)
	}
	w.SetLogger(log.New(io.Discard, "", 0))
	tl := persistlog.NewTickLogger(dir)
	if tamperTick != 0 {
		w.SetTickLogger(tamperLogger{next: tl, tick: tamperTick})
	} else {
		w.SetTickLogger(tl)
	}

	ticks := [][]protocol.Action{
		{{ID: "G1", Type: protocol.ActionPlace, Actor: "A1", Pos: [3]int{0, 1, 0}, Block: "OAK_FENCE_GATE", Facing: "EAST"}},
		{{ID: "W1", Type: protocol.ActionPlace, Actor: "A1", Pos: [3]int{0, 1, 1}, Block: "COBBLESTONE_WALL"}},
		{{ID: "I1", Type: protocol.ActionInteract, Actor: "A2", Pos: [3]int{0, 1, 0}, Facing: "WEST"}},
		{
			{ID: "X1", Type: protocol.ActionBreak, Actor: "A2", Pos: [3]int{5, 1, 5}},
			{ID: "G2", Type: protocol.ActionPlace, Actor: "A2", Pos: [3]int{2, 1, 0}, Block: "SPRUCE_FENCE_GATE"},
		},
		nil,
		{{ID: "B1", Type: protocol.ActionBreak, Actor: "A1", Pos: [3]int{0, 1, 1}}},
	}
	var snap snapshot.SnapshotV1
	for i, acts := range ticks {
		w.StepOnce(acts)
		if i == 1 {
			snap = w.ExportSnapshot(w.CurrentTick() - 1)
		}
	}
	_ = tl.Close()
	return cats, snap
}

func TestReplay_VerifiesDigestsAndResults(t *testing.T) {
	dir := t.TempDir()
	cats, snap := recordRun(t, dir, 0)

	w, err := worldFromSnapshot(snap, cats, tuning.Defaults())
	if err != nil {
		t.Fatalf("world: %v", err)
	}
	if w.CurrentTick() != 2 {
		t.Fatalf("resume tick: got %d", w.CurrentTick())
	}
	res, err := replay(w, filepath.Join(dir, "events"), 0, 0)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if res.Checked != 4 || res.Actions != 4 {
		t.Fatalf("unexpected result %+v", res)
	}
	if w.GateCount() != 2 {
		t.Fatalf("gates: got %d", w.GateCount())
	}
}

func TestReplay_StopsAtToTick(t *testing.T) {
	dir := t.TempDir()
	cats, snap := recordRun(t, dir, 5)

	w, err := worldFromSnapshot(snap, cats, tuning.Defaults())
	if err != nil {
		t.Fatalf("world: %v", err)
	}
	// The tampered tick lies past the window.
	res, err := replay(w, filepath.Join(dir, "events"), 0, 4)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if res.Checked != 3 || w.CurrentTick() != 5 {
		t.Fatalf("unexpected result %+v tick=%d", res, w.CurrentTick())
	}
}

func TestReplay_DetectsDigestMismatch(t *testing.T) {
	dir := t.TempDir()
	cats, snap := recordRun(t, dir, 3)

	w, err := worldFromSnapshot(snap, cats, tuning.Defaults())
	if err != nil {
		t.Fatalf("world: %v", err)
	}
	_, err = replay(w, filepath.Join(dir, "events"), 0, 0)
	if err == nil || !strings.Contains(err.Error(), "digest mismatch at tick 3") {
		t.Fatalf("expected digest mismatch, got %v", err)
	}
}

func TestReplay_DefaultFacingMatters(t *testing.T) {
	dir := t.TempDir()
	cats, snap := recordRun(t, dir, 0)

	// G2 is placed without orientation; a different default changes state.
	tune := tuning.Defaults()
	tune.Gate.DefaultFacing = "EAST"
	w, err := worldFromSnapshot(snap, cats, tune)
	if err != nil {
		t.Fatalf("world: %v", err)
	}
	if _, err := replay(w, filepath.Join(dir, "events"), 0, 0); err == nil {
		t.Fatalf("expected mismatch with a different default facing")
	}
}
