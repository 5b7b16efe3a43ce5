package geom

import (
	"fmt"
	"math"
	"strings"
)

// Facing is one of the four horizontal cardinal directions.
// Values are ordered clockwise when viewed from above.
type Facing uint8

const (
	North Facing = iota
	East
	South
	West
)

// Facings lists every horizontal facing in clockwise order.
func Facings() []Facing { return []Facing{North, East, South, West} }

func (f Facing) Valid() bool { return f <= West }

func (f Facing) Opposite() Facing { return (f + 2) & 3 }

// RotateRight turns the facing 90 degrees clockwise.
func (f Facing) RotateRight() Facing { return (f + 1) & 3 }

// RotateLeft turns the facing 90 degrees counter-clockwise.
func (f Facing) RotateLeft() Facing { return (f + 3) & 3 }

// Axis returns the horizontal axis the facing points along.
func (f Facing) Axis() Axis {
	if f == East || f == West {
		return AxisX
	}
	return AxisZ
}

// Offset is the unit step towards the facing. Z grows to the south.
func (f Facing) Offset() Vec3i {
	switch f & 3 {
	case North:
		return Vec3i{Z: -1}
	case East:
		return Vec3i{X: 1}
	case South:
		return Vec3i{Z: 1}
	default:
		return Vec3i{X: -1}
	}
}

func (f Facing) String() string {
	switch f {
	case North:
		return "NORTH"
	case East:
		return "EAST"
	case South:
		return "SOUTH"
	case West:
		return "WEST"
	default:
		return fmt.Sprintf("Facing(%d)", uint8(f))
	}
}

func ParseFacing(s string) (Facing, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "NORTH", "N", "-Z":
		return North, nil
	case "EAST", "E", "+X":
		return East, nil
	case "SOUTH", "S", "+Z":
		return South, nil
	case "WEST", "W", "-X":
		return West, nil
	}
	return North, fmt.Errorf("unknown facing %q", s)
}

// Legacy bearing index used by persisted block metadata.
var bearingOf = [4]uint8{
	North: 2,
	East:  3,
	South: 0,
	West:  1,
}

var facingOfBearing = [4]Facing{South, West, North, East}

// Bearing returns the legacy 0..3 index (south=0, west=1, north=2, east=3).
// Facings that are not Valid wrap onto the low two bits; callers that
// persist a bearing check Valid first.
func (f Facing) Bearing() uint8 { return bearingOf[f&3] }

func FacingFromBearing(b uint8) (Facing, error) {
	if b > 3 {
		return North, fmt.Errorf("bearing out of range: %d", b)
	}
	return facingOfBearing[b], nil
}

// FacingFromYaw maps a yaw in degrees (0=south, 90=west, 180=north,
// 270=east) to the nearest horizontal facing.
func FacingFromYaw(yaw float64) Facing {
	if math.IsNaN(yaw) || math.IsInf(yaw, 0) {
		return South
	}
	q := int(math.Floor(yaw/90+0.5)) % 4
	if q < 0 {
		q += 4
	}
	return facingOfBearing[q]
}
