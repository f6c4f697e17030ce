package model

// Cell flag bits used by Frame.Cells.
const (
	FlagWallUp = 1 << iota
	FlagWallRight
	FlagWallDown
	FlagWallLeft
	FlagVisited
	FlagExplored
)

type Marker struct {
	Row int     `json:"row"`
	Col int     `json:"col"`
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
	W   float64 `json:"w"`
	H   float64 `json:"h"`
}

// Frame is a compact snapshot of one full redraw, built by drawing into it.
type Frame struct {
	Size    int     `json:"size"`
	Rows    int     `json:"rows"`
	Columns int     `json:"columns"`
	Cells   []uint8 `json:"cells"`
	Cursor  *Marker `json:"cursor,omitempty"`
	Finish  *Marker `json:"finish,omitempty"`
	Player  *Marker `json:"player,omitempty"`
}

func NewFrame(rows, columns int) *Frame {
	return &Frame{Rows: rows, Columns: columns, Cells: make([]uint8, rows*columns)}
}

func (f *Frame) Clear(size int) {
	f.Size = size
	for i := range f.Cells {
		f.Cells[i] = 0
	}
	f.Cursor, f.Finish, f.Player = nil, nil, nil
}

func (f *Frame) DrawCell(c CellView) {
	var flags uint8
	for _, d := range Directions {
		if c.Walls[d] {
			flags |= 1 << uint(d)
		}
	}
	if c.Visited {
		flags |= FlagVisited
	}
	if c.Explored {
		flags |= FlagExplored
	}
	f.Cells[c.Row*f.Columns+c.Col] = flags
}

func (f *Frame) DrawCursor(p Position, x, y, w, h float64) {
	f.Cursor = &Marker{Row: p.Row, Col: p.Col, X: x, Y: y, W: w, H: h}
}

func (f *Frame) DrawFinish(p Position, x, y, w, h float64) {
	f.Finish = &Marker{Row: p.Row, Col: p.Col, X: x, Y: y, W: w, H: h}
}

func (f *Frame) DrawPlayer(p Position, x, y, size float64) {
	f.Player = &Marker{Row: p.Row, Col: p.Col, X: x, Y: y, W: size, H: size}
}

// Flags returns the flag bits of the cell at p.
func (f *Frame) Flags(p Position) uint8 {
	return f.Cells[p.Row*f.Columns+p.Col]
}

type ServerMessage struct {
	Setup *Setup `json:"setup,omitempty"`
	Frame *Frame `json:"frame,omitempty"`
	State string `json:"state,omitempty"`
	Won   bool   `json:"won,omitempty"`
	Error string `json:"error,omitempty"`
}

// Setup is sent once a browser joins, to fill the maze form.
type Setup struct {
	SessionID string     `json:"sessionId"`
	Defaults  Dimensions `json:"defaults"`
	Min       Dimensions `json:"min"`
	Max       Dimensions `json:"max"`
}

func NewSetup(sessionID string, defaults Dimensions) Setup {
	return Setup{
		SessionID: sessionID,
		Defaults:  defaults,
		Min:       Dimensions{Size: MinSize, Rows: MinRows, Columns: MinColumns},
		Max:       Dimensions{Size: MaxSize, Rows: MaxRows, Columns: MaxColumns},
	}
}
