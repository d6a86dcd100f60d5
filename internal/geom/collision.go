package geom

// Obstacle is a rectangle an actor may not enter.
// Crossable marks the impassable zone (the river) that a crossing region
// disables locally; every other obstacle blocks unconditionally.
type Obstacle struct {
	Rect      Rect
	Crossable bool
}

// IsBlocked reports whether r overlaps any obstacle. A Crossable obstacle is
// ignored while r also overlaps the crossing region.
func IsBlocked(r Rect, obstacles []Obstacle, crossing *Rect) bool {
	onCrossing := crossing != nil && Overlaps(r, *crossing)
	for _, o := range obstacles {
		if o.Crossable && onCrossing {
			continue
		}
		if Overlaps(r, o.Rect) {
			return true
		}
	}
	return false
}
