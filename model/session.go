package model

import (
	"math/rand"

	log "github.com/sirupsen/logrus"
)

type SessionState int

const (
	SS_IDLE SessionState = iota
	SS_GENERATING
	SS_PLAY
	SS_WON
)

func (s SessionState) Name() string {
	switch s {
	case SS_IDLE:
		return "IDLE"
	case SS_GENERATING:
		return "GENERATING"
	case SS_PLAY:
		return "PLAY"
	case SS_WON:
		return "WON"
	default:
		return "N/A"
	}
}

// Session holds the current maze and player of one game. It is not safe for
// concurrent use; callers drive it from a single loop.
type Session struct {
	Maze   *Maze
	Player *Player
	// OnWin is called once per game, when the player reaches the finish.
	OnWin func()

	inProgress bool
	won        bool
	rnd        *rand.Rand
	log        *log.Entry
}

func NewSession(rnd *rand.Rand, logger *log.Entry) *Session {
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	return &Session{rnd: rnd, log: logger}
}

func (s *Session) InProgress() bool { return s.inProgress }

func (s *Session) State() SessionState {
	switch {
	case s.won:
		return SS_WON
	case s.Maze == nil || !s.inProgress:
		return SS_IDLE
	case !s.Maze.Complete():
		return SS_GENERATING
	default:
		return SS_PLAY
	}
}

// Start replaces the current maze with a new one. It is ignored while a game
// is in progress.
func (s *Session) Start(d Dimensions) bool {
	if s.inProgress {
		s.log.Debug("Session.Start ignored, game in progress")
		return false
	}
	d = d.Validated()
	s.Maze = NewMaze(d, s.rnd)
	s.Player = nil
	s.won = false
	s.inProgress = true
	s.log.WithFields(log.Fields{
		"size":      d.Size,
		"rows":      d.Rows,
		"columns":   d.Columns,
		"finishRow": s.Maze.Finish().Row,
		"finishCol": s.Maze.Finish().Col,
	}).Info("maze generation started")
	return true
}

// Abandon ends the current game so that a new one may be started.
func (s *Session) Abandon() {
	if s.inProgress {
		s.log.Info("game abandoned")
	}
	s.inProgress = false
}

// Tick performs one generation step and reports whether the maze changed.
// The player is created by the tick that completes generation.
func (s *Session) Tick() bool {
	if !s.inProgress || s.Maze == nil || s.Maze.Complete() {
		return false
	}
	s.Maze.Step()
	if s.Maze.Complete() {
		s.Player = NewPlayer("Hero", s.Maze)
		s.log.WithFields(log.Fields{
			"finishRow": s.Maze.Finish().Row,
			"finishCol": s.Maze.Finish().Col,
		}).Info("maze generation complete")
	}
	return true
}

// Move applies a directional intent. Intents are dropped unless a generated
// maze and a player exist and the game is still running.
func (s *Session) Move(d Direction) MoveResult {
	if !s.inProgress || s.Maze == nil || s.Player == nil || !s.Maze.Complete() {
		return MoveResult{}
	}
	res := s.Player.Move(d)
	if res.Won {
		s.won = true
		s.inProgress = false
		s.log.WithFields(log.Fields{
			"row": s.Player.Pos.Row,
			"col": s.Player.Pos.Col,
		}).Info("maze solved")
		if s.OnWin != nil {
			s.OnWin()
		}
	}
	return res
}

// Draw issues a full redraw: grid, cursor or finish, then the player.
func (s *Session) Draw(r Renderer) {
	if s.Maze == nil {
		return
	}
	s.Maze.Draw(r)
	if s.Player != nil {
		s.Player.Draw(r)
	}
}

// Frame renders the session into a wire snapshot.
func (s *Session) Frame() *Frame {
	if s.Maze == nil {
		return nil
	}
	f := NewFrame(s.Maze.Rows(), s.Maze.Columns())
	s.Draw(f)
	return f
}
