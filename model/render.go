package model

// Renderer receives draw requests. Colors, canvas sizing and pixels are up to
// the implementation.
type Renderer interface {
	// Clear starts a new frame on a square canvas of the given size.
	Clear(size int)
	DrawCell(c CellView)
	// DrawCursor highlights the cell generation is currently on.
	DrawCursor(p Position, x, y, w, h float64)
	DrawFinish(p Position, x, y, w, h float64)
	DrawPlayer(p Position, x, y, size float64)
}

// CellView is the state of a single cell as it should be drawn.
type CellView struct {
	Row, Col      int
	X, Y          float64
	Width, Height float64
	Walls         [4]bool
	Visited       bool
	Explored      bool
}

type Floor int

const (
	FloorFog Floor = iota
	FloorUnvisited
	FloorOpen
)

// Floor follows the fog of war: unexplored cells hide everything.
func (c CellView) Floor() Floor {
	switch {
	case !c.Explored:
		return FloorFog
	case c.Visited:
		return FloorOpen
	default:
		return FloorUnvisited
	}
}
