package model

const (
	exploreRadius = 1
	playerInset   = 5
)

type Player struct {
	Name string
	Pos  Position

	maze *Maze
	won  bool
}

type MoveResult struct {
	Moved bool
	// Won is set only by the move that first reaches the finish.
	Won bool
}

// NewPlayer places a player on the top-left cell and reveals its surroundings.
func NewPlayer(name string, m *Maze) *Player {
	p := &Player{Name: name, maze: m}
	m.Grid.Explore(p.Pos, exploreRadius)
	return p
}

func (p *Player) Won() bool { return p.won }

// Move steps one cell towards d unless the grid edge or a wall is in the way.
func (p *Player) Move(d Direction) MoveResult {
	if !p.maze.Grid.Open(p.Pos, d) {
		return MoveResult{}
	}
	p.Pos = p.Pos.Step(d)
	p.maze.Grid.Explore(p.Pos, exploreRadius)

	res := MoveResult{Moved: true}
	if !p.won && p.Pos == p.maze.Finish() {
		p.won = true
		res.Won = true
	}
	return res
}

// Offset is the top-left drawing corner and side length of the player sprite.
func (p *Player) Offset() (x, y, size float64) {
	cw, ch := p.maze.cellSize()
	size = cw
	if ch < size {
		size = ch
	}
	return float64(p.Pos.Col)*cw + playerInset, float64(p.Pos.Row)*ch + playerInset, size - 2*playerInset
}

func (p *Player) Draw(r Renderer) {
	x, y, size := p.Offset()
	r.DrawPlayer(p.Pos, x, y, size)
}
