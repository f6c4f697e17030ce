package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
)

var (
	ErrUnknownCommand   = errors.New("unknown command")
	errHandshakeTimeout = errors.New("handshake timed out")
)

type ResponseCode int

const (
	GAME_READY ResponseCode = iota
	GAME_UNAVAILABLE
)

func (h ResponseCode) ToHttp() int {
	if h == GAME_READY {
		return http.StatusOK
	}
	return http.StatusServiceUnavailable
}

func (gss GameSessionState) Name() string {
	switch gss {
	case GS_NEW:
		return "GS_NEW"
	case GS_PLAY:
		return "GS_PLAY"
	case GS_ERR:
		return "GS_ERR"
	case GS_OVER:
		return "GS_OVER"
	default:
		return fmt.Sprintf("n/a:%d", gss)
	}
}

func (ps PlayerSessionState) Name() string {
	switch ps {
	case PS_NEW:
		return "NEW"
	case PS_PLAY:
		return "PLAY"
	case PS_OVER:
		return "OVER"
	case PS_ERR:
		return "ERR"
	default:
		return "N/A"
	}
}

type GameContextAwaiting struct {
	ResponseCode ResponseCode
	GameSession  *GameSession
}

type GameRequest struct {
	GameContextAwaiting chan GameContextAwaiting
}

type PlayerConnectRequest struct {
	Con      *websocket.Conn
	GameOver chan struct{}
}
