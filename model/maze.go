package model

import (
	"math/rand"
)

// Maze generates a perfect maze over its grid with an iterative randomized
// depth-first search, one step at a time.
type Maze struct {
	Size int
	Grid *Grid

	current  Position
	hasCur   bool
	stack    []Position
	complete bool
	finish   Position
	rnd      *rand.Rand
}

// NewMaze builds the grid, visits the top-left cell and picks a provisional
// finish position. rnd must not be shared with other goroutines.
func NewMaze(d Dimensions, rnd *rand.Rand) *Maze {
	m := &Maze{
		Size: d.Size,
		Grid: NewGrid(d.Rows, d.Columns),
		rnd:  rnd,
	}
	m.setup()
	return m
}

func (m *Maze) setup() {
	m.current = Position{}
	m.hasCur = true
	m.Grid.At(m.current).Visited = true
	m.stack = m.stack[:0]
	m.GenerateRandomFinishPosition()
}

func (m *Maze) Rows() int    { return m.Grid.Rows }
func (m *Maze) Columns() int { return m.Grid.Cols }

func (m *Maze) Complete() bool { return m.complete }

func (m *Maze) Finish() Position { return m.finish }

// Cursor returns the cell generation is currently standing on.
func (m *Maze) Cursor() (Position, bool) {
	return m.current, m.hasCur
}

func (m *Maze) isCorner(p Position) bool {
	lastRow, lastCol := m.Grid.Rows-1, m.Grid.Cols-1
	return (p.Row == 0 || p.Row == lastRow) && (p.Col == 0 || p.Col == lastCol)
}

// GenerateRandomFinishPosition samples uniformly until the position is not one
// of the four corners. Grids without a non corner cell keep the last sample.
func (m *Maze) GenerateRandomFinishPosition() {
	if m.Grid.Rows <= 2 && m.Grid.Cols <= 2 {
		// every cell is a corner
		m.finish = Position{Row: m.Grid.Rows - 1, Col: m.Grid.Cols - 1}
		return
	}
	for {
		m.finish = Position{Row: m.rnd.Intn(m.Grid.Rows), Col: m.rnd.Intn(m.Grid.Cols)}
		if !m.isCorner(m.finish) {
			return
		}
	}
}

// Step advances generation by one depth-first step and reports whether more
// steps are needed.
func (m *Maze) Step() bool {
	if m.complete {
		return false
	}
	if m.hasCur {
		neighbors := m.Grid.UnvisitedNeighbors(m.current)
		if len(neighbors) > 0 {
			next := neighbors[m.rnd.Intn(len(neighbors))]
			m.Grid.At(next).Visited = true
			m.stack = append(m.stack, m.current)
			m.Grid.RemoveWallPair(m.current, next)
			m.current = next
		} else if len(m.stack) > 0 {
			m.current = m.stack[len(m.stack)-1]
			m.stack = m.stack[:len(m.stack)-1]
		} else {
			m.hasCur = false
		}
	}
	if !m.hasCur && len(m.stack) == 0 {
		if m.finish == (Position{}) {
			m.GenerateRandomFinishPosition()
		}
		m.complete = true
		return false
	}
	return true
}

// Generate runs Step until the maze is complete and returns the number of steps taken.
func (m *Maze) Generate() int {
	steps := 0
	for {
		steps++
		if !m.Step() {
			return steps
		}
	}
}

// Draw issues a full redraw of the grid followed by the cursor while
// generating, or the finish marker once complete and explored.
func (m *Maze) Draw(r Renderer) {
	r.Clear(m.Size)
	cw, ch := m.cellSize()
	for i := range m.Grid.cells {
		c := &m.Grid.cells[i]
		r.DrawCell(CellView{
			Row:      c.Row,
			Col:      c.Col,
			X:        float64(c.Col) * cw,
			Y:        float64(c.Row) * ch,
			Width:    cw,
			Height:   ch,
			Walls:    c.Walls,
			Visited:  c.Visited,
			Explored: c.Explored,
		})
	}
	if !m.complete {
		if m.hasCur {
			r.DrawCursor(m.current, float64(m.current.Col)*cw+1, float64(m.current.Row)*ch+1, cw-3, ch-3)
		}
		return
	}
	if m.Grid.At(m.finish).Explored {
		r.DrawFinish(m.finish, float64(m.finish.Col)*cw+2, float64(m.finish.Row)*ch+2, cw-4, ch-4)
	}
}

func (m *Maze) cellSize() (float64, float64) {
	return float64(m.Size) / float64(m.Grid.Cols), float64(m.Size) / float64(m.Grid.Rows)
}

func (m *Maze) String() string {
	return m.Grid.String()
}
