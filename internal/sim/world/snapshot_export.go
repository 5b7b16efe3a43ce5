package world

import (
	"gatecraft.ai/internal/persistence/snapshot"
	"gatecraft.ai/internal/sim/gate"
	"gatecraft.ai/internal/sim/world/terrain/store"
)

func (w *World) ExportSnapshot(nowTick uint64) snapshot.SnapshotV1 {
	// Snapshot must be called from the world loop goroutine.
	keys := w.chunks.LoadedChunkKeys()
	chunks := store.ExportLoadedChunks(w.chunks.Chunks, keys)

	gates := make([]snapshot.GateV1, 0, len(w.gates))
	for _, p := range w.sortedGatePositions() {
		gates = append(gates, snapshot.GateV1{
			Pos:  p.ToArray(),
			Meta: int(gate.EncodeMeta(w.gates[p])),
		})
	}

	palette := make([]string, len(w.catalogs.Blocks.Palette))
	copy(palette, w.catalogs.Blocks.Palette)

	return snapshot.SnapshotV1{
		Header: snapshot.Header{
			Version: snapshot.Version,
			WorldID: w.cfg.ID,
			Tick:    nowTick,
		},
		TickRate:      w.cfg.TickRateHz,
		Height:        w.cfg.Height,
		BoundaryR:     w.cfg.BoundaryR,
		FloorDepth:    w.cfg.FloorDepth,
		Palette:       palette,
		PaletteDigest: w.catalogs.Blocks.PaletteDigest,
		Chunks:        chunks,
		Gates:         gates,
	}
}
