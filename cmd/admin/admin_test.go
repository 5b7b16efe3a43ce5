package main

import (
	"io"
	"log"
	"path/filepath"
	"reflect"
	"testing"

	persistlog "gatecraft.ai/internal/persistence/log"
	"gatecraft.ai/internal/protocol"
	"gatecraft.ai/internal/sim/catalogs"
	simenc "gatecraft.ai/internal/sim/encoding"
	"gatecraft.ai/internal/sim/gate"
	"gatecraft.ai/internal/sim/geom"
	"gatecraft.ai/internal/sim/world"
)

func loadTestCatalogs(t *testing.T) *catalogs.Catalogs {
	t.Helper()
	cats, err := catalogs.Load(filepath.Join("..", "..", "configs"))
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	return cats
}

func newAdminTestWorld(t *testing.T, cats *catalogs.Catalogs) *world.World {
	t.Helper()
	w, err := world.New(world.WorldConfig{
		ID:                "admin",
		Height:            16,
		BoundaryR:         64,
		FloorDepth:        1,
		GateDefaultFacing: geom.North,
	}, cats)
	if err != nil {
		t.Fatalf("world: %v", err)
	}
	w.SetLogger(log.New(io.Discard, "", 0))
	return w
}

func TestRollbackSnapshot_RestoresBlocksAndGateState(t *testing.T) {
	cats := loadTestCatalogs(t)
	ticks := [][]protocol.Action{
		{
			{ID: "W1", Type: protocol.ActionPlace, Actor: "A1", Pos: [3]int{1, 1, 0}, Block: "COBBLESTONE_WALL"},
			{ID: "G1", Type: protocol.ActionPlace, Actor: "A1", Pos: [3]int{0, 1, 0}, Block: "OAK_FENCE_GATE", Facing: "NORTH"},
		},
		{
			{ID: "I1", Type: protocol.ActionInteract, Actor: "A1", Pos: [3]int{0, 1, 0}, Facing: "NORTH"},
		},
		// Rolled back from here on.
		{
			{ID: "I2", Type: protocol.ActionInteract, Actor: "A2", Pos: [3]int{0, 1, 0}, Facing: "EAST"},
		},
		{
			{ID: "B1", Type: protocol.ActionBreak, Actor: "A2", Pos: [3]int{1, 1, 0}},
			{ID: "G2", Type: protocol.ActionPlace, Actor: "A2", Pos: [3]int{3, 1, 3}, Block: "SPRUCE_FENCE_GATE", Facing: "WEST"},
		},
		{
			{ID: "B2", Type: protocol.ActionBreak, Actor: "A2", Pos: [3]int{0, 1, 0}},
		},
	}
	const sinceTick = 2

	dir := t.TempDir()
	full := newAdminTestWorld(t, cats)
	al := persistlog.NewAuditLogger(dir)
	full.SetAuditLogger(al)
	for _, acts := range ticks {
		full.StepOnce(acts)
	}
	_ = al.Close()
	snap := full.ExportSnapshot(full.CurrentTick() - 1)

	ref := newAdminTestWorld(t, cats)
	for _, acts := range ticks[:sinceTick] {
		ref.StepOnce(acts)
	}
	want := ref.ExportSnapshot(ref.CurrentTick() - 1)

	entries, err := readAudit(dir, snap.Header.Tick, [3]int{-8, 0, -8}, [3]int{8, 8, 8})
	if err != nil {
		t.Fatalf("read audit: %v", err)
	}
	res := rollbackSnapshot(&snap, entries, sinceTick, paletteGates(snap.Palette, cats))
	if res.Applied != 3 || res.Skipped != 0 || res.GatesRestored != 1 || res.GatesUnknown != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
	if !reflect.DeepEqual(snap.Chunks, want.Chunks) {
		t.Fatalf("chunks differ from reference after rollback")
	}
	if !reflect.DeepEqual(snap.Gates, want.Gates) {
		t.Fatalf("gates: got %+v want %+v", snap.Gates, want.Gates)
	}

	// The result loads cleanly.
	back := newAdminTestWorld(t, cats)
	if err := back.ImportSnapshot(snap); err != nil {
		t.Fatalf("import: %v", err)
	}
	st, ok := back.GateAt(geom.V(0, 1, 0))
	if !ok || !st.Open || st.Facing != geom.North || !st.InWall {
		t.Fatalf("unexpected restored gate %v ok=%t", st, ok)
	}
}

func TestRollbackSnapshot_UnknownGateState(t *testing.T) {
	cats := loadTestCatalogs(t)
	w := newAdminTestWorld(t, cats)
	w.StepOnce([]protocol.Action{{ID: "G1", Type: protocol.ActionPlace, Actor: "A1", Pos: [3]int{0, 1, 0}, Block: "OAK_FENCE_GATE"}})
	snap := w.ExportSnapshot(0)
	gateID := cats.Blocks.Index["OAK_FENCE_GATE"]

	// Only the break is on record, so the old gate metadata is unknown.
	entries := []world.AuditEntry{{Tick: 5, Actor: "A1", Action: "SET_BLOCK", Pos: [3]int{0, 1, 0}, From: gateID, To: 0}}
	snap.Gates = nil
	res := rollbackSnapshot(&snap, entries, 5, paletteGates(snap.Palette, cats))
	if res.Applied != 1 || res.GatesUnknown != 1 || len(snap.Gates) != 0 {
		t.Fatalf("unexpected result %+v gates=%v", res, snap.Gates)
	}

	// Outside any exported chunk.
	entries = []world.AuditEntry{{Tick: 5, Action: "SET_BLOCK", Pos: [3]int{500, 1, 0}, From: 1}}
	if res := rollbackSnapshot(&snap, entries, 0, paletteGates(snap.Palette, cats)); res.Skipped != 1 || res.Applied != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestDecodeMetaArg(t *testing.T) {
	s, err := decodeMetaArg("0x0b")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if s.Facing != geom.East || s.Open || !s.InWall {
		t.Fatalf("unexpected state %v", s)
	}
	if s, err := decodeMetaArg("6"); err != nil || s.Facing != geom.North || !s.Open {
		t.Fatalf("decode 6: %v err=%v", s, err)
	}
	for _, bad := range []string{"16", "-1", "gate"} {
		if _, err := decodeMetaArg(bad); err == nil {
			t.Fatalf("%s: expected error", bad)
		}
	}
}

func TestInspectGates_ReportsInvalidAndMissingState(t *testing.T) {
	cats := loadTestCatalogs(t)
	w := newAdminTestWorld(t, cats)
	w.StepOnce([]protocol.Action{
		{ID: "G1", Type: protocol.ActionPlace, Actor: "A1", Pos: [3]int{0, 1, 0}, Block: "OAK_FENCE_GATE", Facing: "SOUTH"},
		{ID: "G2", Type: protocol.ActionPlace, Actor: "A1", Pos: [3]int{2, 1, 0}, Block: "OAK_FENCE_GATE"},
		{ID: "G3", Type: protocol.ActionPlace, Actor: "A1", Pos: [3]int{-4, 1, 0}, Block: "SPRUCE_FENCE_GATE"},
	})
	snap := w.ExportSnapshot(0)
	if len(snap.Gates) != 3 {
		t.Fatalf("expected 3 gates, got %d", len(snap.Gates))
	}
	// Sorted by position: -4, 0, 2.
	snap.Gates[1].Meta = 99
	snap.Gates = snap.Gates[:2]

	rows, orphans := inspectGates(snap, paletteGates(snap.Palette, cats))
	if len(rows) != 2 || rows[0].Block != "SPRUCE_FENCE_GATE" || rows[0].Error != "" {
		t.Fatalf("unexpected rows %+v", rows)
	}
	if rows[1].Error == "" || rows[1].Meta != 99 {
		t.Fatalf("invalid meta not reported: %+v", rows[1])
	}
	if len(orphans) != 1 || orphans[0] != [3]int{2, 1, 0} {
		t.Fatalf("unexpected orphans %v", orphans)
	}
	if blockNameAt(snap, [3]int{0, 0, 0}) != "STONE" || blockNameAt(snap, [3]int{0, 40, 0}) != "" {
		t.Fatalf("blockNameAt mismatch")
	}
}

func TestStateJSON_MatchesCodec(t *testing.T) {
	for _, s := range gate.AllStates() {
		j := stateJSON(s)
		back, err := gate.DecodeMeta(j.Meta)
		if err != nil || back != s || j.Facing != s.Facing.String() {
			t.Fatalf("state %v -> %+v", s, j)
		}
	}
}

func TestParseAABB(t *testing.T) {
	min, max, err := parseAABB("5,1,-2:-3,4,7")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if min != [3]int{-3, 1, -2} || max != [3]int{5, 4, 7} {
		t.Fatalf("got %v %v", min, max)
	}
	if _, _, err := parseAABB("1,2,3"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestDumpChunk_RoundTripsBlocks(t *testing.T) {
	cats := loadTestCatalogs(t)
	w := newAdminTestWorld(t, cats)
	w.StepOnce([]protocol.Action{{ID: "G1", Type: protocol.ActionPlace, Actor: "A1", Pos: [3]int{-1, 1, -1}, Block: "OAK_FENCE_GATE"}})
	snap := w.ExportSnapshot(0)

	d, ok := dumpChunk(snap, -1, -1, true)
	if !ok {
		t.Fatalf("chunk -1,-1 missing")
	}
	var src []uint16
	for _, ch := range snap.Chunks {
		if ch.CX == -1 && ch.CZ == -1 {
			src = ch.Blocks
		}
	}
	blocks, err := simenc.DecodeRLE(d.RLE, len(src))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(blocks, src) {
		t.Fatalf("decoded blocks differ")
	}
	// Floor layer and the gate layer; everything above is air.
	if len(d.Layers) != 2 || d.Layers[0].Y != 0 || d.Layers[1].Y != 1 {
		t.Fatalf("unexpected layers %+v", d.Layers)
	}
	if len(d.Layers[1].Runs) != 2 || d.Layers[1].Runs[1].ID != cats.Blocks.Index["OAK_FENCE_GATE"] {
		t.Fatalf("unexpected gate layer %+v", d.Layers[1].Runs)
	}
	if _, ok := dumpChunk(snap, 40, 40, false); ok {
		t.Fatalf("expected missing chunk")
	}
}
