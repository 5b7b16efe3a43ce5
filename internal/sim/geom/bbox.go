package geom

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

type Axis uint8

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "X"
	case AxisY:
		return "Y"
	case AxisZ:
		return "Z"
	}
	return fmt.Sprintf("Axis(%d)", uint8(a))
}

// Perpendicular returns the other horizontal axis. AxisY maps to itself.
func (a Axis) Perpendicular() Axis {
	switch a {
	case AxisX:
		return AxisZ
	case AxisZ:
		return AxisX
	}
	return a
}

// BBox is an axis-aligned box. Block shapes are expressed in block-local
// coordinates where the unit cell is [0,1]^3.
type BBox struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// Box builds a BBox from two corners in any order.
func Box(x0, y0, z0, x1, y1, z1 float64) BBox {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	if z0 > z1 {
		z0, z1 = z1, z0
	}
	return BBox{Min: mgl64.Vec3{x0, y0, z0}, Max: mgl64.Vec3{x1, y1, z1}}
}

func FullCube() BBox { return Box(0, 0, 0, 1, 1, 1) }

// ExtendUp grows the top face by d.
func (b BBox) ExtendUp(d float64) BBox {
	b.Max[1] += d
	return b
}

// Squash shrinks the box along axis a to the given thickness, keeping it
// centred on the same midpoint.
func (b BBox) Squash(a Axis, thickness float64) BBox {
	mid := (b.Min[a] + b.Max[a]) / 2
	b.Min[a] = mid - thickness/2
	b.Max[a] = mid + thickness/2
	return b
}

func (b BBox) Translate(v mgl64.Vec3) BBox {
	return BBox{Min: b.Min.Add(v), Max: b.Max.Add(v)}
}

// TranslateCell moves a block-local box to the world cell p.
func (b BBox) TranslateCell(p Vec3i) BBox {
	return b.Translate(mgl64.Vec3{float64(p.X), float64(p.Y), float64(p.Z)})
}

func (b BBox) Extent(a Axis) float64 { return b.Max[a] - b.Min[a] }

func (b BBox) Empty() bool {
	return b.Extent(AxisX) <= 0 || b.Extent(AxisY) <= 0 || b.Extent(AxisZ) <= 0
}

func (b BBox) ApproxEqual(o BBox) bool {
	return b.Min.ApproxEqual(o.Min) && b.Max.ApproxEqual(o.Max)
}

func (b BBox) String() string {
	return fmt.Sprintf("[%g,%g,%g]-[%g,%g,%g]", b.Min[0], b.Min[1], b.Min[2], b.Max[0], b.Max[1], b.Max[2])
}
