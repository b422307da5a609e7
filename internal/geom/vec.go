package geom

import "math"

// Vec3 is a 3D position or direction in world units. The simulation moves
// on the XZ plane; Y is carried through for the wire format.
type Vec3 struct {
	X, Y, Z float64
}

var Zero = Vec3{}

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

func (v Vec3) Scale(f float64) Vec3 {
	return Vec3{v.X * f, v.Y * f, v.Z * f}
}

func (v Vec3) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

func (v Vec3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// Directions are the eight movement unit vectors. The enumeration order
// (southwest, south, southeast, east, northeast, north, northwest, west)
// is load-bearing: direction selection breaks distance ties by taking the
// first minimum in this order.
var Directions = [8]Vec3{
	{X: -1, Z: -1}, // southwest
	{X: 0, Z: -1},  // south
	{X: 1, Z: -1},  // southeast
	{X: 1, Z: 0},   // east
	{X: 1, Z: 1},   // northeast
	{X: 0, Z: 1},   // north
	{X: -1, Z: 1},  // northwest
	{X: -1, Z: 0},  // west
}

// ClosestDirection returns the direction whose single-tile step from `from`
// lands nearest to `to` by Euclidean distance. Ties go to the earlier
// enumeration entry.
func ClosestDirection(from, to Vec3, tileSize float64) Vec3 {
	best := Zero
	shortest := math.MaxFloat64
	for _, dir := range Directions {
		next := from.Add(dir.Scale(tileSize))
		if d := next.Sub(to).Length(); d < shortest {
			shortest = d
			best = dir
		}
	}
	return best
}

// NearestDirection maps an arbitrary (possibly unnormalized) intent vector
// to the closest of the eight movement directions. A zero intent stays zero.
func NearestDirection(intent Vec3) Vec3 {
	if intent.IsZero() {
		return Zero
	}
	l := intent.Length()
	unit := Vec3{X: intent.X / l, Z: intent.Z / l}
	best := Zero
	shortest := math.MaxFloat64
	for _, dir := range Directions {
		dl := dir.Length()
		norm := Vec3{X: dir.X / dl, Z: dir.Z / dl}
		if d := norm.Sub(unit).Length(); d < shortest {
			shortest = d
			best = dir
		}
	}
	return best
}

// AdjacentOrDiagonal reports whether two tile-quantized positions are within
// one tile of each other on both axes (and not the same tile).
func AdjacentOrDiagonal(a, b Vec3, tileSize float64) bool {
	dx := math.Abs(a.X - b.X)
	dz := math.Abs(a.Z - b.Z)
	if dx == 0 && dz == 0 {
		return false
	}
	return dx <= tileSize && dz <= tileSize
}
