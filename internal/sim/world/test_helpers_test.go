package world

import (
	"testing"

	"gatecraft.ai/internal/protocol"
	"gatecraft.ai/internal/sim/catalogs"
	"gatecraft.ai/internal/sim/geom"
)

type memLogger struct {
	ticks  []TickLogEntry
	audits []AuditEntry
}

func (m *memLogger) WriteTick(e TickLogEntry) error {
	m.ticks = append(m.ticks, e)
	return nil
}

func (m *memLogger) WriteAudit(e AuditEntry) error {
	m.audits = append(m.audits, e)
	return nil
}

func (m *memLogger) last() TickLogEntry {
	if len(m.ticks) == 0 {
		return TickLogEntry{}
	}
	return m.ticks[len(m.ticks)-1]
}

func testConfig() WorldConfig {
	return WorldConfig{
		ID:                "test",
		TickRateHz:        20,
		Height:            16,
		BoundaryR:         64,
		FloorDepth:        1,
		FloorBlock:        "STONE",
		GateDefaultFacing: geom.North,
		GateSound:         "DOOR",
	}
}

func newTestWorld(t *testing.T, cfg WorldConfig) (*World, *memLogger) {
	t.Helper()
	cats, err := catalogs.Load("../../../configs")
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	w, err := New(cfg, cats)
	if err != nil {
		t.Fatalf("new world: %v", err)
	}
	l := &memLogger{}
	w.SetTickLogger(l)
	w.SetAuditLogger(l)
	return w, l
}

func placeAct(id string, pos geom.Vec3i, block, facing string) protocol.Action {
	return protocol.Action{ID: id, Type: protocol.ActionPlace, Actor: "A1", Pos: pos.ToArray(), Block: block, Facing: facing}
}

func interactAct(id string, pos geom.Vec3i, facing string) protocol.Action {
	return protocol.Action{ID: id, Type: protocol.ActionInteract, Actor: "A1", Pos: pos.ToArray(), Facing: facing}
}

func breakAct(id string, pos geom.Vec3i) protocol.Action {
	return protocol.Action{ID: id, Type: protocol.ActionBreak, Actor: "A1", Pos: pos.ToArray()}
}

// mustStep runs one tick and fails the test if any action was rejected.
func mustStep(t *testing.T, w *World, acts ...protocol.Action) {
	t.Helper()
	_, _, res := w.StepOnce(acts)
	for _, r := range res {
		if !r.OK {
			t.Fatalf("action %s rejected: %s %s", r.ID, r.Code, r.Message)
		}
	}
}

func countEvents(e TickLogEntry, typ string) int {
	n := 0
	for _, ev := range e.Events {
		if ev.Type == typ {
			n++
		}
	}
	return n
}
