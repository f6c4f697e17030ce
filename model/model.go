package model

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownDirection = errors.New("unknown direction")

// Direction indexes Cell.Walls: top, right, bottom, left.
type Direction int

const (
	Up Direction = iota
	Right
	Down
	Left
)

var Directions = [4]Direction{Up, Right, Down, Left}

var deltas = [4][2]int{{-1, 0}, {0, 1}, {1, 0}, {0, -1}}

func (d Direction) Opposite() Direction {
	return (d + 2) % 4
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Right:
		return "right"
	case Down:
		return "down"
	case Left:
		return "left"
	default:
		return fmt.Sprintf("n/a:%d", int(d))
	}
}

func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up":
		return Up, nil
	case "right":
		return Right, nil
	case "down":
		return Down, nil
	case "left":
		return Left, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDirection, s)
}

type Position struct {
	Row, Col int
}

func (p Position) Step(d Direction) Position {
	return Position{Row: p.Row + deltas[d][0], Col: p.Col + deltas[d][1]}
}

type Cell struct {
	Row, Col int
	// Walls[d] is true while the wall facing d is standing.
	Walls    [4]bool
	Visited  bool
	Explored bool
}

func (c *Cell) Position() Position {
	return Position{Row: c.Row, Col: c.Col}
}

func (c *Cell) HasWall(d Direction) bool {
	return c.Walls[d]
}

// Grid is a fixed size arena of cells stored row by row.
type Grid struct {
	Rows, Cols int
	cells      []Cell
}

func NewGrid(rows, cols int) *Grid {
	g := &Grid{Rows: rows, Cols: cols, cells: make([]Cell, rows*cols)}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			g.cells[r*cols+c] = Cell{
				Row:   r,
				Col:   c,
				Walls: [4]bool{true, true, true, true},
			}
		}
	}
	return g
}

func (g *Grid) InBound(p Position) bool {
	return p.Row >= 0 && p.Row < g.Rows && p.Col >= 0 && p.Col < g.Cols
}

// At returns nil for positions outside the grid.
func (g *Grid) At(p Position) *Cell {
	if !g.InBound(p) {
		return nil
	}
	return &g.cells[p.Row*g.Cols+p.Col]
}

// UnvisitedNeighbors lists in-bound, not yet visited neighbours of p in
// top, right, bottom, left order.
func (g *Grid) UnvisitedNeighbors(p Position) []Position {
	neighbors := make([]Position, 0, 4)
	for _, d := range Directions {
		n := g.At(p.Step(d))
		if n != nil && !n.Visited {
			neighbors = append(neighbors, n.Position())
		}
	}
	return neighbors
}

// RemoveWallPair opens the boundary between two orthogonally adjacent cells on
// both sides. Non adjacent positions are ignored.
func (g *Grid) RemoveWallPair(a, b Position) {
	ca, cb := g.At(a), g.At(b)
	if ca == nil || cb == nil {
		return
	}
	for _, d := range Directions {
		if a.Step(d) == b {
			ca.Walls[d] = false
			cb.Walls[d.Opposite()] = false
			return
		}
	}
}

// Open reports whether a player standing on p may step towards d.
func (g *Grid) Open(p Position, d Direction) bool {
	c := g.At(p)
	if c == nil || g.At(p.Step(d)) == nil {
		return false
	}
	return !c.Walls[d]
}

// Explore marks every cell within Chebyshev distance radius of p as explored.
func (g *Grid) Explore(p Position, radius int) {
	for dr := -radius; dr <= radius; dr++ {
		for dc := -radius; dc <= radius; dc++ {
			if c := g.At(Position{Row: p.Row + dr, Col: p.Col + dc}); c != nil {
				c.Explored = true
			}
		}
	}
}

func (g *Grid) String() string {
	var b strings.Builder
	b.WriteString("+" + strings.Repeat("---+", g.Cols) + "\n")
	for r := 0; r < g.Rows; r++ {
		b.WriteString("|")
		for c := 0; c < g.Cols; c++ {
			if g.cells[r*g.Cols+c].Walls[Right] {
				b.WriteString("   |")
			} else {
				b.WriteString("    ")
			}
		}
		b.WriteString("\n+")
		for c := 0; c < g.Cols; c++ {
			if g.cells[r*g.Cols+c].Walls[Down] {
				b.WriteString("---+")
			} else {
				b.WriteString("   +")
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}
