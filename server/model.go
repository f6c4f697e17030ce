package server

import (
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/zucenko/fogmaze/config"
	"github.com/zucenko/fogmaze/model"
)

type GameServer struct {
	GameSessions     map[uuid.UUID]*GameSession
	GameRequests     chan GameRequest
	Closed           chan uuid.UUID
	Upgrader         *websocket.Upgrader
	Defaults         model.Dimensions
	FrameInterval    time.Duration
	HandshakeTimeout time.Duration
	// MaxSessions caps concurrent sessions; zero means no cap.
	MaxSessions      int

	rand *config.Rand
}

type GameSessionState int

const (
	GS_NEW GameSessionState = iota
	GS_PLAY
	GS_ERR
	GS_OVER
)

// GameSession drives one model.Session for one browser. Only Loop touches
// Session once the session is running.
type GameSession struct {
	Id                    uuid.UUID
	State                 GameSessionState
	Session               *model.Session
	PlayerSession         *PlayerSession
	Defaults              model.Dimensions
	Errors                chan error
	Events                chan model.ClientMessage
	PlayerConnectRequests chan PlayerConnectRequest

	frameInterval time.Duration
	lastState     string
	closed        chan<- uuid.UUID
}

type PlayerSessionState int

const (
	PS_NEW PlayerSessionState = iota + 1
	PS_PLAY
	PS_OVER
	PS_ERR
)

type PlayerSession struct {
	// written by the socket goroutines, read with sync/atomic
	DebugInMessages  int64
	DebugOutMessages int64
	DebugPings       int64
	DebugLastMessage int64 // unix nanos
	DebugLastPing    int64 // unix nanos

	State       PlayerSessionState
	Id          uuid.UUID
	GameSession *GameSession
	Conn        *websocket.Conn
	GameOver    chan struct{}

	MessagesToSend chan model.ServerMessage
	done           chan struct{}
}
