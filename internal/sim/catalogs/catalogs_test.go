package catalogs

import (
	"path/filepath"
	"testing"
)

func TestLoad_RepoConfig(t *testing.T) {
	c, err := Load(filepath.Join("..", "..", "..", "configs"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Blocks.Palette[0] != "AIR" || c.Blocks.Index["AIR"] != 0 {
		t.Fatalf("AIR must be palette id 0")
	}
	gate, ok := c.Blocks.Defs["OAK_FENCE_GATE"]
	if !ok {
		t.Fatalf("missing OAK_FENCE_GATE")
	}
	if gate.Category != CategoryGate || gate.Solid {
		t.Fatalf("unexpected gate def: %+v", gate)
	}
	if gate.Hardness != 2.0 || gate.Tool != "AXE" || gate.FuelTicks != 300 || gate.FlameEncouragement != 5 || gate.Flammability != 20 {
		t.Fatalf("unexpected gate burn/break info: %+v", gate)
	}
	if len(c.Blocks.IDsInCategory(CategoryWall)) != 2 {
		t.Fatalf("expected 2 wall blocks")
	}
	if c.Blocks.PaletteDigest == "" || c.Blocks.DefsDigest == "" {
		t.Fatalf("missing digests")
	}
}

func TestFromDefs_Validation(t *testing.T) {
	if _, err := FromDefs([]BlockDef{{ID: "STONE"}}); err == nil {
		t.Fatalf("expected missing AIR error")
	}
	if _, err := FromDefs([]BlockDef{{ID: "AIR", Category: CategoryAir}, {ID: "X", Category: "LAVA"}}); err == nil {
		t.Fatalf("expected unknown category error")
	}
	if _, err := FromDefs([]BlockDef{{ID: "AIR", Category: CategoryAir}, {ID: "AIR", Category: CategoryAir}}); err == nil {
		t.Fatalf("expected duplicate id error")
	}

	c, err := FromDefs([]BlockDef{{ID: "AIR", Category: CategoryAir}, {ID: "STONE"}})
	if err != nil {
		t.Fatalf("FromDefs: %v", err)
	}
	if got := c.Blocks.CategoryOf(c.Blocks.Index["STONE"]); got != CategorySolid {
		t.Fatalf("default category: got %s", got)
	}
	if got := c.Blocks.CategoryOf(999); got != CategoryAir {
		t.Fatalf("unknown id category: got %s", got)
	}
}
