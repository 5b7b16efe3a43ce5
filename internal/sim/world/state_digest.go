package world

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"sort"

	"gatecraft.ai/internal/sim/gate"
	"gatecraft.ai/internal/sim/geom"
)

// StateDigest hashes everything that affects future ticks: the tick, every
// loaded chunk and every gate's metadata.
func (w *World) StateDigest() string {
	return w.stateDigest(w.tick.Load())
}

func (w *World) stateDigest(nowTick uint64) string {
	h := sha256.New()
	var tmp [8]byte

	binary.LittleEndian.PutUint64(tmp[:], nowTick)
	h.Write(tmp[:])
	h.Write([]byte(w.catalogs.Blocks.PaletteDigest))

	for _, k := range w.chunks.LoadedChunkKeys() {
		ch := w.chunks.Chunks[k]
		binary.LittleEndian.PutUint64(tmp[:], uint64(int64(k.CX)))
		h.Write(tmp[:])
		binary.LittleEndian.PutUint64(tmp[:], uint64(int64(k.CZ)))
		h.Write(tmp[:])
		d := ch.Digest()
		h.Write(d[:])
	}

	for _, p := range w.sortedGatePositions() {
		for _, v := range [3]int{p.X, p.Y, p.Z} {
			binary.LittleEndian.PutUint64(tmp[:], uint64(int64(v)))
			h.Write(tmp[:])
		}
		h.Write([]byte{gate.EncodeMeta(w.gates[p])})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (w *World) sortedGatePositions() []geom.Vec3i {
	out := make([]geom.Vec3i, 0, len(w.gates))
	for p := range w.gates {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return geom.Less(out[i], out[j]) })
	return out
}
