package catalogs

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// MaxBlockID bounds the block palette so ids stay clear of the meta nibble
// when a cell is shown as a packed id<<4|meta word.
const MaxBlockID = 0x0FFF

type Category string

const (
	CategoryAir   Category = "AIR"
	CategorySolid Category = "SOLID"
	CategoryWall  Category = "WALL"
	CategoryGate  Category = "GATE"
	CategoryPlant Category = "PLANT"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryAir, CategorySolid, CategoryWall, CategoryGate, CategoryPlant:
		return true
	}
	return false
}

type Catalogs struct {
	Blocks BlockCatalog
}

type BlockCatalog struct {
	Palette       []string
	Index         map[string]uint16
	Defs          map[string]BlockDef
	PaletteDigest string
	DefsDigest    string
}

type BlockDef struct {
	ID        string   `json:"id"`
	Category  Category `json:"category"`
	Solid     bool     `json:"solid"`
	Breakable bool     `json:"breakable"`

	Hardness float64 `json:"hardness,omitempty"`
	Tool     string  `json:"tool,omitempty"` // "AXE","PICKAXE","SHOVEL"

	// Burn behaviour. Zero values mean the block is not flammable.
	FuelTicks          int `json:"fuel_ticks,omitempty"`
	FlameEncouragement int `json:"flame_encouragement,omitempty"`
	Flammability       int `json:"flammability,omitempty"`
}

func Load(configDir string) (*Catalogs, error) {
	var c Catalogs
	if err := loadBlocks(filepath.Join(configDir, "blocks.json"), &c.Blocks); err != nil {
		return nil, err
	}
	return &c, nil
}

// FromDefs builds catalogs directly from block definitions.
func FromDefs(defs []BlockDef) (*Catalogs, error) {
	raw, err := json.Marshal(defs)
	if err != nil {
		return nil, err
	}
	var c Catalogs
	if err := parseBlocks(raw, &c.Blocks); err != nil {
		return nil, err
	}
	return &c, nil
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func loadBlocks(path string, out *BlockCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return parseBlocks(raw, out)
}

func parseBlocks(raw []byte, out *BlockCatalog) error {
	out.DefsDigest = sha256Hex(raw)

	var defs []BlockDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("blocks.json: %w", err)
	}
	out.Defs = map[string]BlockDef{}
	for _, d := range defs {
		d.ID = strings.TrimSpace(d.ID)
		if d.ID == "" {
			return fmt.Errorf("blocks.json: empty id")
		}
		if _, dup := out.Defs[d.ID]; dup {
			return fmt.Errorf("blocks.json: duplicate id %s", d.ID)
		}
		if d.Category == "" {
			d.Category = CategorySolid
		}
		if !d.Category.Valid() {
			return fmt.Errorf("blocks.json: %s: unknown category %q", d.ID, d.Category)
		}
		out.Defs[d.ID] = d
	}

	ids := make([]string, 0, len(out.Defs))
	for id := range out.Defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	// Ensure AIR exists and is palette id 0.
	if air, ok := out.Defs["AIR"]; !ok {
		return fmt.Errorf("blocks.json: missing AIR")
	} else if air.Category != CategoryAir {
		return fmt.Errorf("blocks.json: AIR must have category AIR")
	}
	ids = append([]string{"AIR"}, filterOut(ids, "AIR")...)
	if len(ids)-1 > MaxBlockID {
		return fmt.Errorf("blocks.json: %d blocks exceed palette limit %d", len(ids), MaxBlockID+1)
	}

	out.Palette = ids
	out.Index = make(map[string]uint16, len(ids))
	for i, id := range ids {
		out.Index[id] = uint16(i)
	}
	palJSON, _ := json.Marshal(ids)
	out.PaletteDigest = sha256Hex(palJSON)
	return nil
}

func filterOut(ids []string, drop string) []string {
	out := ids[:0:0]
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}

// Lookup returns the definition for a palette index.
func (c *BlockCatalog) Lookup(id uint16) (BlockDef, bool) {
	if int(id) >= len(c.Palette) {
		return BlockDef{}, false
	}
	d, ok := c.Defs[c.Palette[id]]
	return d, ok
}

// CategoryOf returns the category for a palette index; unknown ids are AIR.
func (c *BlockCatalog) CategoryOf(id uint16) Category {
	d, ok := c.Lookup(id)
	if !ok {
		return CategoryAir
	}
	return d.Category
}

// IDsInCategory lists palette indices of the given category in palette order.
func (c *BlockCatalog) IDsInCategory(cat Category) []uint16 {
	var out []uint16
	for i, name := range c.Palette {
		if c.Defs[name].Category == cat {
			out = append(out, uint16(i))
		}
	}
	return out
}
