// Package gate implements the fence gate block: its packed metadata, its
// collision shape, wall-adjacency tracking and open/close interaction.
//
// All operations are pure with respect to the world. Anything that must
// become visible (a changed cell, a sound) is returned as an Effect for the
// caller to apply.
package gate

import (
	"fmt"

	"gatecraft.ai/internal/sim/catalogs"
	"gatecraft.ai/internal/sim/geom"
)

// State is the logical state of one gate cell.
type State struct {
	Facing geom.Facing
	Open   bool
	// InWall caches whether a wall block sits left or right of the gate.
	InWall bool
}

// Valid reports whether s can be persisted without losing its facing.
func (s State) Valid() bool { return s.Facing.Valid() }

func (s State) String() string {
	return fmt.Sprintf("gate{facing=%s open=%t in_wall=%t}", s.Facing, s.Open, s.InWall)
}

// Actor is the entity placing or using a gate. A nil *Actor means no actor
// is known (e.g. placement by a structure generator).
type Actor struct {
	ID     string
	Facing geom.Facing
}

func (a *Actor) id() string {
	if a == nil {
		return ""
	}
	return a.ID
}

// BlockQuery answers what kind of block occupies a cell. Cells outside the
// loaded world should report catalogs.CategoryAir.
type BlockQuery interface {
	CategoryAt(pos geom.Vec3i) catalogs.Category
}

type EffectKind uint8

const (
	// EffectUpdateBlock asks the world to persist and broadcast new gate
	// metadata for Pos.
	EffectUpdateBlock EffectKind = iota + 1
	// EffectPlaySound asks the world to emit Sound at Pos.
	EffectPlaySound
)

func (k EffectKind) String() string {
	switch k {
	case EffectUpdateBlock:
		return "UPDATE_BLOCK"
	case EffectPlaySound:
		return "PLAY_SOUND"
	}
	return fmt.Sprintf("EffectKind(%d)", uint8(k))
}

type Sound string

const SoundDoor Sound = "DOOR"

type Effect struct {
	Kind  EffectKind
	Pos   geom.Vec3i
	Actor string

	// EffectUpdateBlock
	State State
	Meta  uint8

	// EffectPlaySound
	Sound Sound
}

func updateBlock(pos geom.Vec3i, actor string, s State) Effect {
	return Effect{Kind: EffectUpdateBlock, Pos: pos, Actor: actor, State: s, Meta: EncodeMeta(s)}
}
