package main

import (
	"image/color"

	"github.com/hajimehoshi/ebiten"
	"github.com/hajimehoshi/ebiten/ebitenutil"
	"github.com/zucenko/fogmaze/model"
)

var (
	colorFog       color.Color = color.Black
	colorWall      color.Color = color.White
	colorFloor     color.Color = color.Black
	colorUnvisited color.Color = color.RGBA{169, 169, 169, 255}
	colorCursor    color.Color = color.RGBA{0, 128, 0, 255}
	colorFinish    color.Color = color.RGBA{255, 215, 0, 255}
	colorBorder    color.Color = color.RGBA{255, 0, 0, 255}
	colorPlayer    color.Color = color.RGBA{255, 0, 0, 255}
)

// screenRenderer draws a session onto an ebiten screen.
type screenRenderer struct {
	screen *ebiten.Image
	slide  *Slide
}

func (r *screenRenderer) Clear(size int) {
	ebitenutil.DrawRect(r.screen, 0, 0, float64(size), float64(size), colorFog)
}

func (r *screenRenderer) DrawCell(c model.CellView) {
	if c.Floor() == model.FloorFog {
		ebitenutil.DrawRect(r.screen, c.X, c.Y, c.Width, c.Height, colorFog)
		return
	}
	x2, y2 := c.X+c.Width, c.Y+c.Height
	if c.Walls[model.Up] {
		ebitenutil.DrawLine(r.screen, c.X, c.Y, x2, c.Y, colorWall)
	}
	if c.Walls[model.Right] {
		ebitenutil.DrawLine(r.screen, x2, c.Y, x2, y2, colorWall)
	}
	if c.Walls[model.Down] {
		ebitenutil.DrawLine(r.screen, c.X, y2, x2, y2, colorWall)
	}
	if c.Walls[model.Left] {
		ebitenutil.DrawLine(r.screen, c.X, c.Y, c.X, y2, colorWall)
	}
	floor := colorFloor
	if c.Floor() == model.FloorUnvisited {
		floor = colorUnvisited
	}
	ebitenutil.DrawRect(r.screen, c.X+1, c.Y+1, c.Width-2, c.Height-2, floor)
}

func (r *screenRenderer) DrawCursor(_ model.Position, x, y, w, h float64) {
	ebitenutil.DrawRect(r.screen, x, y, w, h, colorCursor)
}

func (r *screenRenderer) DrawFinish(_ model.Position, x, y, w, h float64) {
	const border = 3
	ebitenutil.DrawRect(r.screen, x, y, w, h, colorBorder)
	ebitenutil.DrawRect(r.screen, x+border, y+border, w-2*border, h-2*border, colorFinish)
}

func (r *screenRenderer) DrawPlayer(_ model.Position, x, y, size float64) {
	if r.slide != nil {
		x, y = r.slide.Position()
	}
	ebitenutil.DrawRect(r.screen, x, y, size, size, colorPlayer)
}
