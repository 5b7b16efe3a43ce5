package world

import (
	"fmt"
	"io"
	"log"
	"sync/atomic"

	"gatecraft.ai/internal/persistence/snapshot"
	"gatecraft.ai/internal/protocol"
	"gatecraft.ai/internal/sim/catalogs"
	"gatecraft.ai/internal/sim/gate"
	"gatecraft.ai/internal/sim/geom"
	"gatecraft.ai/internal/sim/world/terrain/store"
)

type WorldConfig struct {
	ID         string
	TickRateHz int
	Height     int
	BoundaryR  int

	// Cells with y < FloorDepth are generated as FloorBlock.
	FloorDepth int
	FloorBlock string

	// Operational parameters. These are included in snapshots for replay/resume.
	SnapshotEveryTicks int

	GateDefaultFacing geom.Facing
	GateSound         string

	// RepairInvalidGates makes snapshot import replace gate state that
	// fails to decode with a closed gate instead of aborting.
	RepairInvalidGates bool
}

func (c *WorldConfig) applyDefaults() {
	if c.ID == "" {
		c.ID = "world_1"
	}
	if c.TickRateHz <= 0 {
		c.TickRateHz = 20
	}
	if c.Height <= 0 {
		c.Height = 64
	}
	if c.FloorBlock == "" {
		c.FloorBlock = "STONE"
	}
	if c.GateSound == "" {
		c.GateSound = string(gate.SoundDoor)
	}
}

type TickLogger interface {
	WriteTick(entry TickLogEntry) error
}

type AuditLogger interface {
	WriteAudit(entry AuditEntry) error
}

type ActionEnvelope struct {
	Act protocol.Action
	// Resp, if set, receives the action result once its tick has run.
	Resp chan protocol.ActionResult
}

type World struct {
	cfg      WorldConfig
	catalogs *catalogs.Catalogs
	logger   *log.Logger

	tick atomic.Uint64

	chunks *store.ChunkStore
	gates  map[geom.Vec3i]gate.State
	air    uint16

	inbox chan ActionEnvelope
	admin chan adminSnapshotReq
	stop  chan struct{}

	tickLogger   TickLogger
	auditLogger  AuditLogger
	snapshotSink chan<- snapshot.SnapshotV1

	// Loop goroutine scratch state, reset every tick.
	events        []Event
	neighborQueue []geom.Vec3i

	metrics atomic.Value
}

func New(cfg WorldConfig, cats *catalogs.Catalogs) (*World, error) {
	if cats == nil {
		return nil, fmt.Errorf("world: nil catalogs")
	}
	cfg.applyDefaults()
	if !cfg.GateDefaultFacing.Valid() {
		return nil, fmt.Errorf("world: invalid default gate facing %d", cfg.GateDefaultFacing)
	}
	b := func(id string) (uint16, error) {
		v, ok := cats.Blocks.Index[id]
		if !ok {
			return 0, fmt.Errorf("missing block id in palette: %s", id)
		}
		return v, nil
	}
	air, err := b("AIR")
	if err != nil {
		return nil, err
	}
	floor, err := b(cfg.FloorBlock)
	if err != nil {
		if cfg.FloorDepth > 0 {
			return nil, err
		}
		floor = air
	}

	gen := store.WorldGen{
		Height:     cfg.Height,
		BoundaryR:  cfg.BoundaryR,
		FloorDepth: cfg.FloorDepth,
		Air:        air,
		Floor:      floor,
	}
	w := &World{
		cfg:      cfg,
		catalogs: cats,
		logger:   log.New(io.Discard, "", 0),
		chunks:   store.NewChunkStore(gen),
		gates:    map[geom.Vec3i]gate.State{},
		air:      air,
		inbox:    make(chan ActionEnvelope, 1024),
		admin:    make(chan adminSnapshotReq, 16),
		stop:     make(chan struct{}),
	}
	return w, nil
}

func (w *World) SetLogger(l *log.Logger) {
	if l == nil {
		l = log.New(io.Discard, "", 0)
	}
	w.logger = l
}

func (w *World) SetTickLogger(l TickLogger)   { w.tickLogger = l }
func (w *World) SetAuditLogger(l AuditLogger) { w.auditLogger = l }

// SetSnapshotSink sets the channel periodic and admin snapshots are sent to.
// Sends never block the world loop; a full sink drops the snapshot.
func (w *World) SetSnapshotSink(ch chan<- snapshot.SnapshotV1) { w.snapshotSink = ch }

func (w *World) ID() string {
	if w == nil {
		return ""
	}
	return w.cfg.ID
}

func (w *World) TickRateHz() int {
	if w == nil {
		return 0
	}
	return w.cfg.TickRateHz
}

func (w *World) Config() WorldConfig { return w.cfg }

func (w *World) Catalogs() *catalogs.Catalogs { return w.catalogs }

// CurrentTick is the tick the next step will execute.
func (w *World) CurrentTick() uint64 { return w.tick.Load() }
