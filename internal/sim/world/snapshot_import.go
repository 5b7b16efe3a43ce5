package world

import (
	"fmt"

	"gatecraft.ai/internal/persistence/snapshot"
	"gatecraft.ai/internal/sim/catalogs"
	"gatecraft.ai/internal/sim/gate"
	"gatecraft.ai/internal/sim/geom"
	"gatecraft.ai/internal/sim/world/terrain/store"
)

// storeQuery answers gate.BlockQuery against a chunk store that is not yet
// installed in the world.
type storeQuery struct {
	blocks *catalogs.BlockCatalog
	chunks *store.ChunkStore
}

func (q storeQuery) CategoryAt(pos geom.Vec3i) catalogs.Category {
	id, _ := q.chunks.PeekBlock(pos.X, pos.Y, pos.Z)
	return q.blocks.CategoryOf(id)
}

// ImportSnapshot replaces the world state with s. The world is left
// untouched when an error is returned.
//
// Gate metadata that fails to decode, or is missing for a gate cell, is an
// error unless RepairInvalidGates is set; then it is logged and replaced by
// a closed gate with the default facing. Metadata for cells that no longer
// hold a gate is dropped. The in-wall flag of every decoded gate is
// recomputed from the imported chunks.
func (w *World) ImportSnapshot(s snapshot.SnapshotV1) error {
	if s.Header.Version != snapshot.Version {
		return fmt.Errorf("unsupported snapshot version %d", s.Header.Version)
	}
	if s.Height != w.cfg.Height {
		return fmt.Errorf("snapshot height %d does not match world height %d", s.Height, w.cfg.Height)
	}

	remap, err := w.paletteRemap(s.Palette)
	if err != nil {
		return err
	}
	chunks := s.Chunks
	if remap != nil {
		chunks = make([]snapshot.ChunkV1, len(s.Chunks))
		for i, ch := range s.Chunks {
			blocks := make([]uint16, len(ch.Blocks))
			for j, b := range ch.Blocks {
				if int(b) >= len(remap) {
					return fmt.Errorf("snapshot chunk %d,%d: block id %d outside palette", ch.CX, ch.CZ, b)
				}
				blocks[j] = remap[b]
			}
			ch.Blocks = blocks
			chunks[i] = ch
		}
	}

	gen := w.chunks.Gen
	gen.BoundaryR = s.BoundaryR
	gen.FloorDepth = s.FloorDepth
	cs, err := store.ImportChunks(gen, chunks)
	if err != nil {
		return err
	}

	q := storeQuery{blocks: &w.catalogs.Blocks, chunks: cs}
	gates := map[geom.Vec3i]gate.State{}
	for _, g := range s.Gates {
		pos := geom.FromArray(g.Pos)
		if q.CategoryAt(pos) != catalogs.CategoryGate {
			w.logger.Printf("snapshot: dropping gate state at %v: cell holds no gate", pos)
			continue
		}
		if _, dup := gates[pos]; dup {
			return fmt.Errorf("snapshot gate duplicated: %v", pos)
		}
		st, err := gate.DecodeMeta(g.Meta)
		if err != nil {
			if !w.cfg.RepairInvalidGates {
				return fmt.Errorf("snapshot gate at %v: %w", pos, err)
			}
			st = w.repairGate(q, pos, err)
		} else if inWall := gate.InWall(q, pos, st.Facing); inWall != st.InWall {
			w.logger.Printf("snapshot: corrected gate at %v: in_wall %t -> %t", pos, st.InWall, inWall)
			st.InWall = inWall
		}
		gates[pos] = st
	}
	for _, k := range cs.LoadedChunkKeys() {
		ch := cs.Chunks[k]
		for i, b := range ch.Blocks {
			if w.catalogs.Blocks.CategoryOf(b) != catalogs.CategoryGate {
				continue
			}
			pos := chunkCellPos(ch, i)
			if _, ok := gates[pos]; ok {
				continue
			}
			err := fmt.Errorf("missing gate state: %w", gate.ErrInvalidPersistedState)
			if !w.cfg.RepairInvalidGates {
				return fmt.Errorf("snapshot gate at %v: %w", pos, err)
			}
			gates[pos] = w.repairGate(q, pos, err)
		}
	}

	w.cfg.BoundaryR = s.BoundaryR
	w.cfg.FloorDepth = s.FloorDepth
	if s.TickRate > 0 {
		w.cfg.TickRateHz = s.TickRate
	}
	w.chunks = cs
	w.gates = gates
	w.neighborQueue = w.neighborQueue[:0]
	w.tick.Store(s.Header.Tick + 1)
	return nil
}

func (w *World) repairGate(q gate.BlockQuery, pos geom.Vec3i, cause error) gate.State {
	st := w.defaultGate(q, pos)
	w.logger.Printf("snapshot: repaired gate at %v (%v): now %s", pos, cause, st)
	return st
}

// paletteRemap maps snapshot palette ids onto the loaded catalog. A nil map
// means the palettes are identical.
func (w *World) paletteRemap(palette []string) ([]uint16, error) {
	cur := w.catalogs.Blocks.Palette
	if len(palette) == 0 {
		return nil, nil
	}
	same := len(palette) == len(cur)
	out := make([]uint16, len(palette))
	for i, name := range palette {
		id, ok := w.catalogs.Blocks.Index[name]
		if !ok {
			return nil, fmt.Errorf("snapshot palette block %q not in catalog", name)
		}
		out[i] = id
		if int(id) != i {
			same = false
		}
	}
	if same {
		return nil, nil
	}
	return out, nil
}

func chunkCellPos(ch *store.Chunk, i int) geom.Vec3i {
	const area = store.ChunkSize * store.ChunkSize
	y := i / area
	r := i % area
	return geom.V(ch.CX*store.ChunkSize+r%store.ChunkSize, y, ch.CZ*store.ChunkSize+r/store.ChunkSize)
}
