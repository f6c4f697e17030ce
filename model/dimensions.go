package model

import (
	"strconv"
	"strings"
	"unicode"
)

const (
	MinSize, MaxSize, DefaultSize          = 300, 800, 400
	MinRows, MaxRows, DefaultRows          = 5, 50, 10
	MinColumns, MaxColumns, DefaultColumns = 5, 50, 10
)

// Dimensions of a maze: the canvas side in pixels and the grid shape.
type Dimensions struct {
	Size    int `json:"size"`
	Rows    int `json:"rows"`
	Columns int `json:"columns"`
}

var DefaultDimensions = Dimensions{Size: DefaultSize, Rows: DefaultRows, Columns: DefaultColumns}

// ParseDimensions validates raw user input. Each field falls back to its
// default on its own.
func ParseDimensions(size, rows, columns string) Dimensions {
	return Dimensions{
		Size:    ValidateInput(size, MinSize, MaxSize, DefaultSize),
		Rows:    ValidateInput(rows, MinRows, MaxRows, DefaultRows),
		Columns: ValidateInput(columns, MinColumns, MaxColumns, DefaultColumns),
	}
}

// Validated replaces out of range fields with their defaults.
func (d Dimensions) Validated() Dimensions {
	return Dimensions{
		Size:    validateInt(d.Size, MinSize, MaxSize, DefaultSize),
		Rows:    validateInt(d.Rows, MinRows, MaxRows, DefaultRows),
		Columns: validateInt(d.Columns, MinColumns, MaxColumns, DefaultColumns),
	}
}

// ValidateInput parses the leading integer of value, ignoring any trailing
// text. Non numeric or out of range input yields def.
func ValidateInput(value string, min, max, def int) int {
	n, ok := leadingInt(value)
	if !ok {
		return def
	}
	return validateInt(n, min, max, def)
}

func validateInt(n, min, max, def int) int {
	if n < min || n > max {
		return def
	}
	return n
}

// leadingInt reads the integer at the start of s the way a browser form value
// is read: leading space, an optional sign, a 0x prefix switching to hex, and
// any trailing garbage ignored.
func leadingInt(s string) (int, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	sign := ""
	if s != "" && (s[0] == '+' || s[0] == '-') {
		sign, s = s[:1], s[1:]
	}
	base, isDigit := 10, func(c byte) bool { return c >= '0' && c <= '9' }
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base, s = 16, s[2:]
		isDigit = func(c byte) bool {
			return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
		}
	}
	end := 0
	for end < len(s) && isDigit(s[end]) {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.ParseInt(sign+s[:end], base, 0)
	if err != nil {
		return 0, false
	}
	return int(n), true
}
