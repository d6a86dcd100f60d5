// Package geom holds the axis-aligned geometry shared by placement and movement.
// Coordinates are canvas units with the origin at the top-left corner.
package geom

// Point is a canvas position (top-left corner of an entity).
type Point struct {
	X int32
	Y int32
}

// Add returns p offset by (dx, dy).
func (p Point) Add(dx, dy int32) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	X int32
	Y int32
	W int32
	H int32
}

// RectAt builds a square of the given side anchored at p.
func RectAt(p Point, size int32) Rect {
	return Rect{X: p.X, Y: p.Y, W: size, H: size}
}

func (r Rect) Right() int32  { return r.X + r.W }
func (r Rect) Bottom() int32 { return r.Y + r.H }
func (r Rect) Origin() Point { return Point{X: r.X, Y: r.Y} }

// Within reports whether r lies entirely inside bounds (edges may touch).
func (r Rect) Within(bounds Rect) bool {
	return r.X >= bounds.X && r.Y >= bounds.Y &&
		r.Right() <= bounds.Right() && r.Bottom() <= bounds.Bottom()
}

// Overlaps reports whether a and b share a positive-area intersection.
// Rectangles that only touch along an edge or a corner do not overlap.
func Overlaps(a, b Rect) bool {
	return a.X < b.Right() &&
		a.Right() > b.X &&
		a.Y < b.Bottom() &&
		a.Bottom() > b.Y
}

// SnapToGrid centres a cell-sized footprint on p and floors it to the grid.
func SnapToGrid(p Point, cell int32) Point {
	if cell <= 0 {
		return p
	}
	half := cell / 2
	return Point{
		X: floorDiv(p.X-half, cell) * cell,
		Y: floorDiv(p.Y-half, cell) * cell,
	}
}

func floorDiv(v, d int32) int32 {
	q := v / d
	if (v%d != 0) && ((v < 0) != (d < 0)) {
		q--
	}
	return q
}
