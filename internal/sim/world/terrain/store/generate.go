package store

func (s *ChunkStore) GenerateChunk(ch *Chunk) {
	if s.Gen.FloorDepth <= 0 {
		return
	}
	for y := 0; y < s.Gen.FloorDepth && y < ch.Height; y++ {
		for z := 0; z < ChunkSize; z++ {
			for x := 0; x < ChunkSize; x++ {
				ch.Blocks[ch.index(x, y, z)] = s.Gen.Floor
			}
		}
	}
}
