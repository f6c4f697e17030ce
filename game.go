package main

import (
	"fmt"
	"image/color"
	"math"

	"github.com/golang/freetype/truetype"
	"github.com/hajimehoshi/ebiten"
	"github.com/hajimehoshi/ebiten/ebitenutil"
	"github.com/hajimehoshi/ebiten/inpututil"
	"github.com/hajimehoshi/ebiten/text"
	log "github.com/sirupsen/logrus"
	"github.com/tanema/gween"
	"github.com/zucenko/fogmaze/config"
	"github.com/zucenko/fogmaze/model"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	panelHeight    = 60
	swipeThreshold = 20
	winMessage     = "Congratulations! You solved the maze!"
	instructions   = "Arrows or swipe to move, Enter for a new maze, Esc to give up"
)

// StrokeSource represents a input device to provide strokes.
type StrokeSource interface {
	Position() (int, int)
	IsJustReleased() bool
}

// MouseStrokeSource is a StrokeSource implementation of mouse.
type MouseStrokeSource struct{}

func (m *MouseStrokeSource) Position() (int, int) {
	return ebiten.CursorPosition()
}

func (m *MouseStrokeSource) IsJustReleased() bool {
	return inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft)
}

// TouchStrokeSource is a StrokeSource implementation of touch.
type TouchStrokeSource struct {
	ID int
}

func (t *TouchStrokeSource) Position() (int, int) {
	return ebiten.TouchPosition(t.ID)
}

func (t *TouchStrokeSource) IsJustReleased() bool {
	return inpututil.IsTouchJustReleased(t.ID)
}

// Stroke tracks one drag; a long enough drag becomes a move.
type Stroke struct {
	source StrokeSource

	initX, initY       int
	currentX, currentY int

	released bool
}

func NewStroke(source StrokeSource) *Stroke {
	cx, cy := source.Position()
	return &Stroke{
		source:   source,
		initX:    cx,
		initY:    cy,
		currentX: cx,
		currentY: cy,
	}
}

func (s *Stroke) Update() {
	if s.released {
		return
	}
	if s.source.IsJustReleased() {
		s.released = true
		return
	}
	s.currentX, s.currentY = s.source.Position()
}

func (s *Stroke) PositionDiff() (int, int) {
	return s.currentX - s.initX, s.currentY - s.initY
}

// Direction reports the dominant axis of the drag once it is long enough.
func (s *Stroke) Direction() (model.Direction, bool) {
	dx, dy := s.PositionDiff()
	if math.Abs(float64(dx)) < swipeThreshold && math.Abs(float64(dy)) < swipeThreshold {
		return 0, false
	}
	if math.Abs(float64(dx)) > math.Abs(float64(dy)) {
		if dx > 0 {
			return model.Right, true
		}
		return model.Left, true
	}
	if dy > 0 {
		return model.Down, true
	}
	return model.Up, true
}

var keyDirections = map[ebiten.Key]model.Direction{
	ebiten.KeyUp:    model.Up,
	ebiten.KeyDown:  model.Down,
	ebiten.KeyLeft:  model.Left,
	ebiten.KeyRight: model.Right,
}

type Game struct {
	Session    *model.Session
	Dimensions model.Dimensions
	Tweens     map[*gween.Tween]Action

	strokes   map[*Stroke]struct{}
	slide     *Slide
	won       bool
	requested bool
	face      font.Face
}

func NewGame(cfg config.Config) (*Game, error) {
	tt, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	const dpi = 72
	g := &Game{
		Dimensions: cfg.Maze,
		Tweens:     make(map[*gween.Tween]Action),
		strokes:    map[*Stroke]struct{}{},
		face: truetype.NewFace(tt, &truetype.Options{
			Size:    13,
			DPI:     dpi,
			Hinting: font.HintingFull,
		}),
	}
	g.Session = model.NewSession(cfg.Rand().Next(), log.WithField("driver", "desktop"))
	g.Session.OnWin = func() { g.won = true }
	return g, nil
}

func (g *Game) newMaze() {
	g.requested = true
	if g.Session.Start(g.Dimensions) {
		g.won = false
		g.slide = nil
		g.Tweens = make(map[*gween.Tween]Action)
	}
}

func (g *Game) move(d model.Direction) {
	p := g.Session.Player
	if p == nil {
		return
	}
	fromX, fromY, _ := p.Offset()
	if g.Session.Move(d).Moved {
		toX, toY, _ := p.Offset()
		g.startSlide(fromX, fromY, toX, toY)
	}
}

func (g *Game) handleInput() {
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) || inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.newMaze()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.Session.Abandon()
	}
	for key, d := range keyDirections {
		if inpututil.IsKeyJustPressed(key) {
			g.move(d)
		}
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.strokes[NewStroke(&MouseStrokeSource{})] = struct{}{}
	}
	for _, id := range inpututil.JustPressedTouchIDs() {
		g.strokes[NewStroke(&TouchStrokeSource{id})] = struct{}{}
	}
	for s := range g.strokes {
		s.Update()
		if d, ok := s.Direction(); ok {
			g.move(d)
			s.released = true
		}
		if s.released {
			delete(g.strokes, s)
		}
	}
}

func (g *Game) update(screen *ebiten.Image) error {
	g.updateTweens(1.0 / 60)
	g.handleInput()
	g.Session.Tick()

	if ebiten.IsDrawingSkipped() {
		return nil
	}

	r := &screenRenderer{screen: screen, slide: g.slide}
	g.Session.Draw(r)
	g.drawPanel(screen)
	return nil
}

func (g *Game) drawPanel(screen *ebiten.Image) {
	top := g.Dimensions.Size
	ebitenutil.DrawRect(screen, 0, float64(top), float64(g.Dimensions.Size), panelHeight, color.RGBA{70, 70, 70, 255})
	switch {
	case g.won:
		text.Draw(screen, winMessage, g.face, 10, top+24, color.RGBA{255, 215, 0, 255})
	case g.requested:
		text.Draw(screen, instructions, g.face, 10, top+24, color.White)
	default:
		text.Draw(screen, "Press Enter to generate a maze", g.face, 10, top+24, color.White)
	}
	ebitenutil.DebugPrintAt(screen, g.Session.State().Name(), 10, top+36)
}

func main() {
	cfg := config.Load()
	cfg.Apply()

	g, err := NewGame(cfg)
	if err != nil {
		log.Fatal(err)
	}
	width, height := cfg.Maze.Size, cfg.Maze.Size+panelHeight
	if err := ebiten.Run(g.update, width, height, 1, "Fog Maze"); err != nil {
		log.Fatal(err)
	}
}
