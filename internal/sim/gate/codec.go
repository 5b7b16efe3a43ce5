package gate

import (
	"errors"
	"fmt"

	"gatecraft.ai/internal/sim/geom"
)

// Persisted layout: [in_wall:1][open:1][bearing:2], low bits first.
const (
	FacingMask uint8 = 0x03
	FlagOpen   uint8 = 0x04
	FlagInWall uint8 = 0x08
	StateMask  uint8 = 0x0F
)

// ErrInvalidPersistedState marks metadata that does not decode to a gate
// state. Callers decide whether to repair or abort.
var ErrInvalidPersistedState = errors.New("invalid persisted gate state")

// EncodeMeta packs s. s must be Valid; an invalid facing would wrap to a
// different bearing.
func EncodeMeta(s State) uint8 {
	m := s.Facing.Bearing() & FacingMask
	if s.Open {
		m |= FlagOpen
	}
	if s.InWall {
		m |= FlagInWall
	}
	return m
}

// DecodeMeta takes the raw stored value rather than a uint8 so that values
// wider than the 4-bit domain are rejected instead of truncated.
func DecodeMeta(v int) (State, error) {
	if v < 0 || v > int(StateMask) {
		return State{}, fmt.Errorf("%w: meta %d outside 0..%d", ErrInvalidPersistedState, v, StateMask)
	}
	m := uint8(v)
	f, err := geom.FacingFromBearing(m & FacingMask)
	if err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrInvalidPersistedState, err)
	}
	return State{
		Facing: f,
		Open:   m&FlagOpen != 0,
		InWall: m&FlagInWall != 0,
	}, nil
}

// AllStates enumerates every valid state, in meta order.
func AllStates() []State {
	out := make([]State, 0, int(StateMask)+1)
	for m := 0; m <= int(StateMask); m++ {
		s, _ := DecodeMeta(m)
		out = append(out, s)
	}
	return out
}
