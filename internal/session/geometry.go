package session

// Point is a pointer or window position in terminal cells. Coordinates may be
// negative: windows can be dragged off screen.
type Point struct {
	X int
	Y int
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Size is a window size in terminal cells.
type Size struct {
	Width  int
	Height int
}

// Geometry is the window's placement.
type Geometry struct {
	Position Point
	Size     Size
}

// Contains reports whether p falls inside the window, borders included.
func (g Geometry) Contains(p Point) bool {
	return p.X >= g.Position.X && p.X < g.Position.X+g.Size.Width &&
		p.Y >= g.Position.Y && p.Y < g.Position.Y+g.Size.Height
}

// BottomRight returns the last cell covered by the window.
func (g Geometry) BottomRight() Point {
	return Point{X: g.Position.X + g.Size.Width - 1, Y: g.Position.Y + g.Size.Height - 1}
}

type gestureKind int

const (
	gestureNone gestureKind = iota
	gestureDrag
	gestureResize
)

// gesture is an in-progress drag or resize with the offset captured at its start.
type gesture struct {
	kind   gestureKind
	offset Point
}

func (g gesture) active() bool {
	return g.kind != gestureNone
}

// dragTo places the window so the pointer keeps its grab offset.
func dragTo(pointer, offset Point) Point {
	return pointer.Sub(offset)
}

// resizeTo sizes the window to follow the pointer, floored at minimum.
func resizeTo(pointer, position, offset Point, minimum Size) Size {
	return Size{
		Width:  max(minimum.Width, pointer.X-position.X-offset.X),
		Height: max(minimum.Height, pointer.Y-position.Y-offset.Y),
	}
}

// resizeOffset is captured when a resize starts so the grabbed corner does
// not jump to the pointer.
func resizeOffset(pointer Point, g Geometry) Point {
	return Point{
		X: pointer.X - g.Position.X - g.Size.Width,
		Y: pointer.Y - g.Position.Y - g.Size.Height,
	}
}
