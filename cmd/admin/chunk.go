package main

import (
	"flag"
	"path/filepath"
	"strings"

	"gatecraft.ai/internal/persistence/snapshot"
	simenc "gatecraft.ai/internal/sim/encoding"
	"gatecraft.ai/internal/sim/world/terrain/store"
)

type chunkDump struct {
	CX      int      `json:"cx"`
	CZ      int      `json:"cz"`
	Height  int      `json:"height"`
	Palette []string `json:"palette"`
	RLE     string   `json:"rle"`
	Layers  []layer  `json:"layers,omitempty"`
}

type layer struct {
	Y    int           `json:"y"`
	Runs []simenc.Run `json:"runs"`
}

func chunkCmd(args []string) {
	fs := flag.NewFlagSet("chunk", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	worldID := fs.String("world", "", "world id (uses its latest snapshot)")
	snapPath := fs.String("snapshot", "", "snapshot path")
	cx := fs.Int("cx", 0, "chunk x")
	cz := fs.Int("cz", 0, "chunk z")
	layers := fs.Bool("layers", false, "also print per-layer runs of non-empty layers")
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
	d, ok := dumpChunk(snap, *cx, *cz, *layers)
	if !ok {
		fail(1, "chunk not in snapshot:", *cx, *cz)
	}
	printJSON(d)
}

// dumpChunk encodes one snapshot chunk. Layers that are entirely air
// (palette id 0) are left out of the per-layer view.
func dumpChunk(snap snapshot.SnapshotV1, cx, cz int, withLayers bool) (chunkDump, bool) {
	for _, ch := range snap.Chunks {
		if ch.CX != cx || ch.CZ != cz {
			continue
		}
		d := chunkDump{CX: cx, CZ: cz, Height: ch.Height, Palette: snap.Palette, RLE: simenc.EncodeRLE(ch.Blocks)}
		if !withLayers {
			return d, true
		}
		const area = store.ChunkSize * store.ChunkSize
		for y := 0; y < ch.Height && (y+1)*area <= len(ch.Blocks); y++ {
			runs := simenc.Runs(ch.Blocks[y*area : (y+1)*area])
			if len(runs) == 1 && runs[0].ID == 0 {
				continue
			}
			d.Layers = append(d.Layers, layer{Y: y, Runs: runs})
		}
		return d, true
	}
	return chunkDump{}, false
}
