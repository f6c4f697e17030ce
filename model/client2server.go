package model

const (
	CommandStart   = "start"
	CommandMove    = "move"
	CommandAbandon = "abandon"
)

// ClientMessage carries one command from the browser. Dimension fields hold
// raw form input and are validated on arrival.
type ClientMessage struct {
	Command   string `json:"command"`
	Size      string `json:"size,omitempty"`
	Rows      string `json:"rows,omitempty"`
	Columns   string `json:"columns,omitempty"`
	Direction string `json:"direction,omitempty"`
}

func (cm ClientMessage) Dimensions() Dimensions {
	return ParseDimensions(cm.Size, cm.Rows, cm.Columns)
}
