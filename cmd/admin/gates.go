package main

import (
	"flag"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gatecraft.ai/internal/persistence/snapshot"
	"gatecraft.ai/internal/sim/catalogs"
	"gatecraft.ai/internal/sim/gate"
	"gatecraft.ai/internal/sim/geom"
	"gatecraft.ai/internal/sim/world/terrain/store"
)

type gateStateJSON struct {
	Meta   int    `json:"meta"`
	Facing string `json:"facing"`
	Open   bool   `json:"open"`
	InWall bool   `json:"in_wall"`
}

func stateJSON(s gate.State) gateStateJSON {
	return gateStateJSON{
		Meta:   int(gate.EncodeMeta(s)),
		Facing: s.Facing.String(),
		Open:   s.Open,
		InWall: s.InWall,
	}
}

func metaCmd(args []string) {
	if len(args) == 0 {
		fail(2, "usage: admin meta decode VALUE | meta encode -facing F [-open] [-in_wall] | meta all")
	}
	switch args[0] {
	case "decode":
		if len(args) < 2 {
			fail(2, "missing VALUE")
		}
		for _, raw := range args[1:] {
			s, err := decodeMetaArg(raw)
			if err != nil {
				fail(1, err)
			}
			printJSON(stateJSON(s))
		}
	case "encode":
		fs := flag.NewFlagSet("meta encode", flag.ExitOnError)
		facing := fs.String("facing", "NORTH", "gate facing (NORTH/EAST/SOUTH/WEST)")
		open := fs.Bool("open", false, "gate open")
		inWall := fs.Bool("in_wall", false, "gate lowered between walls")
		_ = fs.Parse(args[1:])
		f, err := geom.ParseFacing(*facing)
		if err != nil {
			fail(2, "bad -facing:", err)
		}
		printJSON(stateJSON(gate.State{Facing: f, Open: *open, InWall: *inWall}))
	case "all":
		for _, s := range gate.AllStates() {
			printJSON(stateJSON(s))
		}
	default:
		fail(2, "unknown meta command:", args[0])
	}
}

// decodeMetaArg accepts decimal, 0x-hex or 0b-binary meta values.
func decodeMetaArg(raw string) (gate.State, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 0, 64)
	if err != nil {
		return gate.State{}, fmt.Errorf("bad meta %q: %w", raw, err)
	}
	return gate.DecodeMeta(int(v))
}

func blockCmd(args []string) {
	fs := flag.NewFlagSet("block", flag.ExitOnError)
	configDir := fs.String("configs", "./configs", "config directory")
	_ = fs.Parse(args)

	cats, err := catalogs.Load(*configDir)
	if err != nil {
		fail(1, "load catalogs:", err)
	}
	names := fs.Args()
	if len(names) == 0 {
		names = cats.Blocks.Palette
	}
	for _, name := range names {
		name = strings.ToUpper(strings.TrimSpace(name))
		def, ok := cats.Blocks.Defs[name]
		if !ok {
			fail(1, "unknown block:", name)
		}
		printJSON(struct {
			PaletteID uint16 `json:"palette_id"`
			catalogs.BlockDef
		}{cats.Blocks.Index[name], def})
	}
}

type gateRow struct {
	Pos   [3]int `json:"pos"`
	Block string `json:"block"`
	gateStateJSON
	Error string `json:"error,omitempty"`
}

func inspectCmd(args []string) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	worldID := fs.String("world", "", "world id (uses its latest snapshot)")
	snapPath := fs.String("snapshot", "", "snapshot path")
	configDir := fs.String("configs", "./configs", "config directory")
	_ = fs.Parse(args)

	path := strings.TrimSpace(*snapPath)
	if path == "" {
		if strings.TrimSpace(*worldID) == "" {
			fail(2, "missing -world or -snapshot")
		}
		path = latestSnapshot(filepath.Join(*dataDir, "worlds", *worldID))
		if path == "" {
			fail(2, "no snapshot found")
		}
	}
	snap, err := snapshot.ReadSnapshot(path)
	if err != nil {
		fail(1, "read snapshot:", err)
	}
	cats, err := catalogs.Load(*configDir)
	if err != nil {
		fail(1, "load catalogs:", err)
	}

	rows, orphans := inspectGates(snap, paletteGates(snap.Palette, cats))
	printJSON(struct {
		Tick    uint64 `json:"tick"`
		WorldID string `json:"world_id"`
		Chunks  int    `json:"chunks"`
		Gates   int    `json:"gates"`
		Orphans int    `json:"gate_blocks_without_state"`
	}{snap.Header.Tick, snap.Header.WorldID, len(snap.Chunks), len(snap.Gates), len(orphans)})
	for _, r := range rows {
		printJSON(r)
	}
	for _, p := range orphans {
		printJSON(gateRow{Pos: p, Block: blockNameAt(snap, p), Error: "missing gate state"})
	}
}

// inspectGates decodes every persisted gate and lists gate cells that have
// no persisted state.
func inspectGates(snap snapshot.SnapshotV1, isGate func(uint16) bool) (rows []gateRow, orphans [][3]int) {
	seen := map[[3]int]bool{}
	for _, g := range snap.Gates {
		seen[g.Pos] = true
		r := gateRow{Pos: g.Pos, Block: blockNameAt(snap, g.Pos)}
		s, err := gate.DecodeMeta(g.Meta)
		if err != nil {
			r.Meta = g.Meta
			r.Error = err.Error()
		} else {
			r.gateStateJSON = stateJSON(s)
		}
		rows = append(rows, r)
	}
	const area = store.ChunkSize * store.ChunkSize
	for _, ch := range snap.Chunks {
		for i, b := range ch.Blocks {
			if !isGate(b) {
				continue
			}
			r := i % area
			p := [3]int{ch.CX*store.ChunkSize + r%store.ChunkSize, i / area, ch.CZ*store.ChunkSize + r/store.ChunkSize}
			if !seen[p] {
				orphans = append(orphans, p)
			}
		}
	}
	sort.Slice(orphans, func(i, j int) bool {
		return geom.Less(geom.FromArray(orphans[i]), geom.FromArray(orphans[j]))
	})
	return rows, orphans
}

func blockNameAt(snap snapshot.SnapshotV1, p [3]int) string {
	cx, cz := store.FloorDiv(p[0], store.ChunkSize), store.FloorDiv(p[2], store.ChunkSize)
	for _, ch := range snap.Chunks {
		if ch.CX != cx || ch.CZ != cz {
			continue
		}
		if p[1] < 0 || p[1] >= ch.Height {
			return ""
		}
		i := store.Mod(p[0], store.ChunkSize) + store.Mod(p[2], store.ChunkSize)*store.ChunkSize + p[1]*store.ChunkSize*store.ChunkSize
		if i >= len(ch.Blocks) || int(ch.Blocks[i]) >= len(snap.Palette) {
			return ""
		}
		return snap.Palette[ch.Blocks[i]]
	}
	return ""
}
