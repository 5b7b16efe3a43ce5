package store

import "sort"

func (s *ChunkStore) InBounds(x, y, z int) bool {
	if y < 0 || y >= s.Gen.Height {
		return false
	}
	if s.Gen.BoundaryR > 0 {
		if x < -s.Gen.BoundaryR || x > s.Gen.BoundaryR || z < -s.Gen.BoundaryR || z > s.Gen.BoundaryR {
			return false
		}
	}
	return true
}

func (s *ChunkStore) LoadedChunkKeys() []ChunkKey {
	keys := make([]ChunkKey, 0, len(s.Chunks))
	for k := range s.Chunks {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].CX != keys[j].CX {
			return keys[i].CX < keys[j].CX
		}
		return keys[i].CZ < keys[j].CZ
	})
	return keys
}

// GetBlock returns the block id at a cell. Out-of-bounds cells read as air.
func (s *ChunkStore) GetBlock(x, y, z int) uint16 {
	if !s.InBounds(x, y, z) {
		return s.Gen.Air
	}
	ch := s.GetOrGenChunk(FloorDiv(x, ChunkSize), FloorDiv(z, ChunkSize))
	return ch.Get(Mod(x, ChunkSize), y, Mod(z, ChunkSize))
}

// PeekBlock is GetBlock without generating missing chunks.
func (s *ChunkStore) PeekBlock(x, y, z int) (uint16, bool) {
	if !s.InBounds(x, y, z) {
		return s.Gen.Air, false
	}
	ch, ok := s.Chunks[ChunkKey{CX: FloorDiv(x, ChunkSize), CZ: FloorDiv(z, ChunkSize)}]
	if !ok {
		return s.Gen.Air, false
	}
	return ch.Get(Mod(x, ChunkSize), y, Mod(z, ChunkSize)), true
}

// SetBlock stores a block id and reports whether the cell was writable.
func (s *ChunkStore) SetBlock(x, y, z int, b uint16) bool {
	if !s.InBounds(x, y, z) {
		return false
	}
	ch := s.GetOrGenChunk(FloorDiv(x, ChunkSize), FloorDiv(z, ChunkSize))
	ch.Set(Mod(x, ChunkSize), y, Mod(z, ChunkSize), b)
	return true
}

func (s *ChunkStore) GetOrGenChunk(cx, cz int) *Chunk {
	k := ChunkKey{CX: cx, CZ: cz}
	if ch, ok := s.Chunks[k]; ok {
		return ch
	}
	ch := &Chunk{
		CX:     cx,
		CZ:     cz,
		Height: s.Gen.Height,
		Blocks: make([]uint16, ChunkSize*ChunkSize*s.Gen.Height),
	}
	s.GenerateChunk(ch)
	ch.dirty = true
	_ = ch.Digest()
	s.Chunks[k] = ch
	return ch
}
