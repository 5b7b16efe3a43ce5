package geom

type Vec3i struct {
	X int
	Y int
	Z int
}

func V(x, y, z int) Vec3i { return Vec3i{X: x, Y: y, Z: z} }

func (v Vec3i) ToArray() [3]int { return [3]int{v.X, v.Y, v.Z} }

func FromArray(a [3]int) Vec3i { return Vec3i{X: a[0], Y: a[1], Z: a[2]} }

func (v Vec3i) Add(o Vec3i) Vec3i { return Vec3i{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z} }

// Side returns the horizontally adjacent cell towards f.
func (v Vec3i) Side(f Facing) Vec3i { return v.Add(f.Offset()) }

// Neighbors returns the six face-adjacent cells in a fixed order
// (-X, +X, -Y, +Y, -Z, +Z).
func (v Vec3i) Neighbors() [6]Vec3i {
	return [6]Vec3i{
		{X: v.X - 1, Y: v.Y, Z: v.Z},
		{X: v.X + 1, Y: v.Y, Z: v.Z},
		{X: v.X, Y: v.Y - 1, Z: v.Z},
		{X: v.X, Y: v.Y + 1, Z: v.Z},
		{X: v.X, Y: v.Y, Z: v.Z - 1},
		{X: v.X, Y: v.Y, Z: v.Z + 1},
	}
}

func Less(a, b Vec3i) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.Z < b.Z
}
