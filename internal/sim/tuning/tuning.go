package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"gatecraft.ai/internal/sim/geom"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version" json:"protocol_version"`

	TickRateHz         int `yaml:"tick_rate_hz" json:"tick_rate_hz"`
	Height             int `yaml:"height" json:"height"`
	BoundaryR          int `yaml:"boundary_r" json:"boundary_r"`
	SnapshotEveryTicks int `yaml:"snapshot_every_ticks" json:"snapshot_every_ticks"`

	Floor    Floor    `yaml:"floor" json:"floor"`
	Gate     Gate     `yaml:"gate" json:"gate"`
	Snapshot Snapshot `yaml:"snapshot" json:"snapshot"`
}

// Floor is the flat ground generated for fresh chunks.
type Floor struct {
	Depth int    `yaml:"depth" json:"depth"`
	Block string `yaml:"block" json:"block"`
}

type Gate struct {
	// Facing used when a gate is placed without a known actor.
	DefaultFacing string `yaml:"default_facing" json:"default_facing"`
	Sound         string `yaml:"sound" json:"sound"`
}

type Snapshot struct {
	// When true, gates whose persisted state fails to decode are replaced
	// by a default closed gate on import instead of aborting the load.
	RepairInvalidGates bool `yaml:"repair_invalid_gates" json:"repair_invalid_gates"`
}

func Defaults() Tuning {
	return Tuning{
		ProtocolVersion:    "1.0",
		TickRateHz:         20,
		Height:             64,
		BoundaryR:          256,
		SnapshotEveryTicks: 200,
		Floor: Floor{
			Depth: 1,
			Block: "STONE",
		},
		Gate: Gate{
			DefaultFacing: "NORTH",
			Sound:         "DOOR",
		},
	}
}

func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	if t.TickRateHz <= 0 {
		return fmt.Errorf("tick_rate_hz must be > 0")
	}
	if t.Height <= 0 || t.Height > 4096 {
		return fmt.Errorf("height out of range: %d", t.Height)
	}
	if t.BoundaryR < 0 {
		return fmt.Errorf("boundary_r must be >= 0")
	}
	if t.SnapshotEveryTicks < 0 {
		return fmt.Errorf("snapshot_every_ticks must be >= 0")
	}
	if t.Floor.Depth < 0 || t.Floor.Depth > t.Height {
		return fmt.Errorf("floor.depth out of range: %d", t.Floor.Depth)
	}
	if _, err := t.DefaultGateFacing(); err != nil {
		return fmt.Errorf("gate.default_facing: %w", err)
	}
	if t.Gate.Sound == "" {
		return fmt.Errorf("gate.sound is required")
	}
	return nil
}

func (t Tuning) DefaultGateFacing() (geom.Facing, error) {
	if t.Gate.DefaultFacing == "" {
		return geom.North, nil
	}
	return geom.ParseFacing(t.Gate.DefaultFacing)
}
