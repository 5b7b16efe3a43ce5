package main

import (
	"flag"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	persistlog "gatecraft.ai/internal/persistence/log"
	"gatecraft.ai/internal/persistence/snapshot"
	"gatecraft.ai/internal/sim/catalogs"
	"gatecraft.ai/internal/sim/world"
	"gatecraft.ai/internal/sim/world/terrain/store"
)

func rollbackCmd(args []string) {
	fs := flag.NewFlagSet("rollback", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	configDir := fs.String("configs", "./configs", "config directory (block categories)")
	worldID := fs.String("world", "", "world id")
	snapPath := fs.String("snapshot", "", "snapshot path to rollback from (optional; defaults to latest)")
	aabb := fs.String("aabb", "", "AABB filter: x1,y1,z1:x2,y2,z2 (required)")
	sinceTick := fs.Uint64("since_tick", 0, "rollback changes since tick (inclusive)")
	toTick := fs.Uint64("to_tick", 0, "rollback changes up to tick (inclusive, optional; defaults to snapshot tick)")
	outPath := fs.String("out", "", "output snapshot path (optional)")
	_ = fs.Parse(args)

	if strings.TrimSpace(*worldID) == "" {
		fail(2, "missing -world")
	}
	if strings.TrimSpace(*aabb) == "" {
		fail(2, "missing -aabb")
	}
	cats, err := catalogs.Load(*configDir)
	if err != nil {
		fail(1, "load catalogs:", err)
	}

	worldDir := filepath.Join(*dataDir, "worlds", *worldID)
	snapshotToLoad := strings.TrimSpace(*snapPath)
	if snapshotToLoad == "" {
		snapshotToLoad = latestSnapshot(worldDir)
	}
	if snapshotToLoad == "" {
		fail(2, "no snapshot found; provide -snapshot or run server until it writes one")
	}
	snap, err := snapshot.ReadSnapshot(snapshotToLoad)
	if err != nil {
		fail(1, "read snapshot:", err)
	}

	min, max, err := parseAABB(*aabb)
	if err != nil {
		fail(2, "bad -aabb:", err)
	}
	endTick := *toTick
	if endTick == 0 || endTick > snap.Header.Tick {
		endTick = snap.Header.Tick
	}

	entries, err := readAudit(worldDir, endTick, min, max)
	if err != nil {
		fail(1, "read audit:", err)
	}
	res := rollbackSnapshot(&snap, entries, *sinceTick, paletteGates(snap.Palette, cats))
	if res.Cells == 0 {
		fmt.Println("no matching audit entries; nothing to rollback")
		return
	}

	if strings.TrimSpace(*outPath) == "" {
		*outPath = filepath.Join(worldDir, "snapshots", fmt.Sprintf("%d.rollback.snap.zst", snap.Header.Tick))
	}
	if err := snapshot.WriteSnapshot(*outPath, snap); err != nil {
		fail(1, "write snapshot:", err)
	}

	fmt.Printf("rollback ok: snapshot=%s tick=%d aabb=%s since=%d to=%d cells=%d applied=%d skipped=%d gates_restored=%d gates_unknown=%d out=%s\n",
		filepath.Base(snapshotToLoad), snap.Header.Tick, *aabb, *sinceTick, endTick, res.Cells,
		res.Applied, res.Skipped, res.GatesRestored, res.GatesUnknown, *outPath)
	if res.GatesUnknown > 0 {
		fmt.Println("note: gates without recorded state load only with snapshot.repair_invalid_gates=true")
	}
}

// readAudit returns block and gate audits inside the box up to toTick, in
// the order they were written.
func readAudit(worldDir string, toTick uint64, min, max [3]int) ([]world.AuditEntry, error) {
	var out []world.AuditEntry
	err := persistlog.ReadAudits(filepath.Join(worldDir, "audit"), func(e world.AuditEntry) error {
		if e.Action != "SET_BLOCK" && e.Action != "GATE_UPDATE" {
			return nil
		}
		if e.Tick > toTick || !withinAABB(e.Pos, min, max) {
			return nil
		}
		out = append(out, e)
		return nil
	})
	return out, err
}

// paletteGates reports which palette ids of a snapshot name gate blocks.
func paletteGates(palette []string, cats *catalogs.Catalogs) func(uint16) bool {
	gates := map[uint16]bool{}
	for i, name := range palette {
		if def, ok := cats.Blocks.Defs[name]; ok && def.Category == catalogs.CategoryGate {
			gates[uint16(i)] = true
		}
	}
	return func(id uint16) bool { return gates[id] }
}

type rollbackResult struct {
	Cells         int
	Applied       int
	Skipped       int
	GatesRestored int
	GatesUnknown  int
}

// rollbackSnapshot undoes the block changes recorded at or after sinceTick
// and restores the gate metadata each touched cell had before that tick.
// entries must be in write order; entries before sinceTick are only used to
// recover earlier gate metadata.
func rollbackSnapshot(snap *snapshot.SnapshotV1, entries []world.AuditEntry, sinceTick uint64, isGate func(uint16) bool) rollbackResult {
	var res rollbackResult
	if snap == nil {
		return res
	}
	chunks := map[[2]int]*snapshot.ChunkV1{}
	for i := range snap.Chunks {
		ch := &snap.Chunks[i]
		chunks[[2]int{ch.CX, ch.CZ}] = ch
	}
	cell := func(p [3]int) (*snapshot.ChunkV1, int) {
		ch := chunks[[2]int{store.FloorDiv(p[0], store.ChunkSize), store.FloorDiv(p[2], store.ChunkSize)}]
		if ch == nil || p[1] < 0 || p[1] >= ch.Height {
			return nil, 0
		}
		i := store.Mod(p[0], store.ChunkSize) + store.Mod(p[2], store.ChunkSize)*store.ChunkSize + p[1]*store.ChunkSize*store.ChunkSize
		if i >= len(ch.Blocks) {
			return nil, 0
		}
		return ch, i
	}

	before := map[[3]int]int{} // gate meta as of sinceTick
	touched := map[[3]int]bool{}
	var window []world.AuditEntry
	for _, e := range entries {
		if e.Tick < sinceTick {
			if e.Action == "GATE_UPDATE" {
				if m, ok := detailInt(e.Details, "meta"); ok {
					before[e.Pos] = m
				}
			}
			continue
		}
		window = append(window, e)
		if e.Action != "GATE_UPDATE" || touched[e.Pos] {
			continue
		}
		touched[e.Pos] = true
		if _, ok := before[e.Pos]; !ok {
			if m, ok := detailInt(e.Details, "prev_meta"); ok {
				before[e.Pos] = m
			}
		}
	}

	// Newest first.
	for i := len(window) - 1; i >= 0; i-- {
		e := window[i]
		if e.Action != "SET_BLOCK" {
			continue
		}
		touched[e.Pos] = true
		ch, idx := cell(e.Pos)
		if ch == nil {
			res.Skipped++
			continue
		}
		ch.Blocks[idx] = e.From
		res.Applied++
	}

	res.Cells = len(touched)
	gates := map[[3]int]int{}
	for _, g := range snap.Gates {
		gates[g.Pos] = g.Meta
	}
	for p := range touched {
		delete(gates, p)
		ch, idx := cell(p)
		if ch == nil || !isGate(ch.Blocks[idx]) {
			continue
		}
		if m, ok := before[p]; ok {
			gates[p] = m
			res.GatesRestored++
		} else {
			res.GatesUnknown++
		}
	}
	out := make([]snapshot.GateV1, 0, len(gates))
	for p, m := range gates {
		out = append(out, snapshot.GateV1{Pos: p, Meta: m})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Pos, out[j].Pos
		if a[0] != b[0] {
			return a[0] < b[0]
		}
		if a[1] != b[1] {
			return a[1] < b[1]
		}
		return a[2] < b[2]
	})
	snap.Gates = out
	return res
}

// detailInt reads an integer audit detail. Values decoded from JSON arrive
// as float64.
func detailInt(d map[string]any, key string) (int, bool) {
	switch v := d[key].(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	}
	return 0, false
}
