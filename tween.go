package main

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

const slideDuration = 0.12

type Action struct {
	onChange func(float32)
	onFinish []func()
}

func (a *Action) addOnFinish(f func()) {
	if a.onFinish == nil {
		a.onFinish = make([]func(), 0)
	}
	a.onFinish = append(a.onFinish, f)
}

// Slide is the on-screen position of the player sprite while it travels
// between two cells.
type Slide struct {
	fromX, fromY float64
	toX, toY     float64
	progress     float64
}

func (s *Slide) Position() (float64, float64) {
	return s.fromX + (s.toX-s.fromX)*s.progress, s.fromY + (s.toY-s.fromY)*s.progress
}

func (g *Game) startSlide(fromX, fromY, toX, toY float64) {
	if g.slide != nil {
		// continue from wherever the previous slide got to
		fromX, fromY = g.slide.Position()
	}
	slide := &Slide{fromX: fromX, fromY: fromY, toX: toX, toY: toY}
	g.slide = slide

	t := gween.New(0, 1, slideDuration, ease.OutQuad)
	action := Action{onChange: func(v float32) { slide.progress = float64(v) }}
	action.addOnFinish(func() {
		if g.slide == slide {
			g.slide = nil
		}
	})
	g.Tweens[t] = action
}

func (g *Game) updateTweens(dt float32) {
	for t, a := range g.Tweens {
		curr, finished := t.Update(dt)
		if a.onChange != nil {
			a.onChange(curr)
		}
		if finished {
			for _, onFinish := range a.onFinish {
				onFinish()
			}
			delete(g.Tweens, t)
		}
	}
}
