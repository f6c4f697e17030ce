package server

import (
	"errors"
	"io/ioutil"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zucenko/fogmaze/config"
	"github.com/zucenko/fogmaze/model"
)

func init() {
	log.SetOutput(ioutil.Discard)
}

func newTestGameSession(seed int64) *GameSession {
	session := model.NewSession(rand.New(rand.NewSource(seed)), nil)
	return NewGameSession(uuid.New(), session, model.DefaultDimensions, time.Millisecond, nil)
}

func startMessage(size, rows, columns string) model.ClientMessage {
	return model.ClientMessage{Command: model.CommandStart, Size: size, Rows: rows, Columns: columns}
}

func pathToFinish(m *model.Maze, start model.Position) []model.Direction {
	type step struct {
		from model.Position
		dir  model.Direction
	}
	prev := map[model.Position]step{}
	seen := map[model.Position]bool{start: true}
	queue := []model.Position{start}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		for _, d := range model.Directions {
			n := p.Step(d)
			if m.Grid.Open(p, d) && !seen[n] {
				seen[n] = true
				prev[n] = step{from: p, dir: d}
				queue = append(queue, n)
			}
		}
	}
	var path []model.Direction
	for p := m.Finish(); p != start; p = prev[p].from {
		path = append([]model.Direction{prev[p].dir}, path...)
	}
	return path
}

func TestTurnStart(t *testing.T) {
	gs := newTestGameSession(1)
	assert.Nil(t, gs.Tick())

	mes := gs.Turn(startMessage("500", "6", "abc"))
	require.NotNil(t, mes)
	require.NotNil(t, mes.Frame)
	assert.Equal(t, 500, mes.Frame.Size)
	assert.Equal(t, 6, mes.Frame.Rows)
	assert.Equal(t, model.DefaultColumns, mes.Frame.Columns)
	assert.Equal(t, "GENERATING", mes.State)

	assert.Nil(t, gs.Turn(startMessage("400", "5", "5")), "second start is ignored")
	assert.Equal(t, 6, gs.Session.Maze.Rows())
}

func TestTurnPlayToWin(t *testing.T) {
	gs := newTestGameSession(2)
	gs.Turn(startMessage("400", "7", "9"))

	frames := 0
	for mes := gs.Tick(); mes != nil; mes = gs.Tick() {
		frames++
	}
	assert.Equal(t, 2*7*9-1, frames)
	require.NotNil(t, gs.Session.Player)

	path := pathToFinish(gs.Session.Maze, gs.Session.Player.Pos)
	require.NotEmpty(t, path)
	var last *model.ServerMessage
	for _, d := range path {
		last = gs.Turn(model.ClientMessage{Command: model.CommandMove, Direction: d.String()})
		require.NotNil(t, last)
	}
	assert.True(t, last.Won)
	assert.Equal(t, "WON", last.State)
	require.NotNil(t, last.Frame.Finish)
	assert.Equal(t, gs.Session.Maze.Finish().Row, last.Frame.Finish.Row)

	for _, d := range model.Directions {
		assert.Nil(t, gs.Turn(model.ClientMessage{Command: model.CommandMove, Direction: d.String()}))
	}
}

func TestTurnMoveBlocked(t *testing.T) {
	gs := newTestGameSession(3)
	assert.Nil(t, gs.Turn(model.ClientMessage{Command: model.CommandMove, Direction: "up"}))

	gs.Turn(startMessage("", "", ""))
	for gs.Tick() != nil {
	}
	assert.Nil(t, gs.Turn(model.ClientMessage{Command: model.CommandMove, Direction: "up"}))
	assert.Nil(t, gs.Turn(model.ClientMessage{Command: model.CommandMove, Direction: "left"}))
}

func TestTurnErrors(t *testing.T) {
	gs := newTestGameSession(4)
	mes := gs.Turn(model.ClientMessage{Command: model.CommandMove, Direction: "north"})
	require.NotNil(t, mes)
	assert.Contains(t, mes.Error, "unknown direction")

	mes = gs.Turn(model.ClientMessage{Command: "fly"})
	require.NotNil(t, mes)
	assert.Contains(t, mes.Error, ErrUnknownCommand.Error())
}

func TestTurnAbandon(t *testing.T) {
	gs := newTestGameSession(5)
	gs.Turn(startMessage("", "", ""))
	gs.Tick()
	mes := gs.Turn(model.ClientMessage{Command: model.CommandAbandon})
	require.NotNil(t, mes)
	assert.Equal(t, "IDLE", mes.State)
	assert.Nil(t, gs.Tick())
	assert.NotNil(t, gs.Turn(startMessage("", "5", "5")))
}

func TestSendDropsFramesWhenFull(t *testing.T) {
	gs := newTestGameSession(6)
	gs.send(model.ServerMessage{State: "x"})

	gs.PlayerSession = &PlayerSession{MessagesToSend: make(chan model.ServerMessage, 1)}
	gs.send(model.ServerMessage{State: "GENERATING", Frame: &model.Frame{Size: 1}})
	gs.send(model.ServerMessage{State: "GENERATING", Frame: &model.Frame{Size: 2}})
	assert.Len(t, gs.PlayerSession.MessagesToSend, 1)
	assert.Equal(t, 1, (<-gs.PlayerSession.MessagesToSend).Frame.Size)
}

func readUntil(t *testing.T, conn *websocket.Conn, done func(model.ServerMessage) bool) model.ServerMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var mes model.ServerMessage
		require.NoError(t, conn.ReadJSON(&mes))
		if done(mes) {
			return mes
		}
	}
}

func TestWebsocketSession(t *testing.T) {
	cfg := config.FromLookup(func(key string) (string, bool) {
		if key == "MAZE_SEED" {
			return "99", true
		}
		return "", false
	})
	gameServer := NewGameServer(cfg)
	gameServer.FrameInterval = time.Millisecond
	go gameServer.Loop()

	srv := httptest.NewServer(gameServer.HandleHttpCall())
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	setup := readUntil(t, conn, func(m model.ServerMessage) bool { return m.Setup != nil })
	assert.Equal(t, model.DefaultDimensions, setup.Setup.Defaults)
	assert.Equal(t, model.MinRows, setup.Setup.Min.Rows)
	assert.Equal(t, model.MaxSize, setup.Setup.Max.Size)
	_, err = uuid.Parse(setup.Setup.SessionID)
	assert.NoError(t, err)
	assert.Equal(t, "IDLE", setup.State)

	require.NoError(t, conn.WriteJSON(startMessage("300", "5", "5")))
	playing := readUntil(t, conn, func(m model.ServerMessage) bool {
		return m.Frame != nil && m.Frame.Player != nil
	})
	assert.Equal(t, "PLAY", playing.State)
	assert.Len(t, playing.Frame.Cells, 25)
	assert.Nil(t, playing.Frame.Cursor)

	require.NoError(t, conn.WriteJSON(model.ClientMessage{Command: model.CommandMove, Direction: "sideways"}))
	failed := readUntil(t, conn, func(m model.ServerMessage) bool { return m.Error != "" })
	assert.Contains(t, failed.Error, "unknown direction")
}

func TestResponseCodeToHttp(t *testing.T) {
	assert.Equal(t, http.StatusOK, GAME_READY.ToHttp())
	assert.Equal(t, http.StatusServiceUnavailable, GAME_UNAVAILABLE.ToHttp())
}

func TestEndState(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		state       GameSessionState
		playerState PlayerSessionState
	}{
		{"normal close", &websocket.CloseError{Code: websocket.CloseNormalClosure}, GS_OVER, PS_OVER},
		{"going away", &websocket.CloseError{Code: websocket.CloseGoingAway}, GS_OVER, PS_OVER},
		{"abnormal close", &websocket.CloseError{Code: websocket.CloseAbnormalClosure}, GS_ERR, PS_ERR},
		{"handshake timeout", errHandshakeTimeout, GS_ERR, PS_ERR},
		{"write failure", errors.New("broken pipe"), GS_ERR, PS_ERR},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gs := newTestGameSession(7)
			gs.PlayerSession = &PlayerSession{State: PS_PLAY}
			gs.end(tt.err)
			assert.Equal(t, tt.state, gs.State)
			assert.Equal(t, tt.playerState, gs.PlayerSession.State)
		})
	}
}

func TestFields(t *testing.T) {
	gs := newTestGameSession(8)
	assert.Equal(t, log.Fields{"state": "GS_NEW"}, gs.Fields())

	ps := &PlayerSession{State: PS_PLAY}
	gs.PlayerSession = ps
	atomic.AddInt64(&ps.DebugInMessages, 3)
	atomic.AddInt64(&ps.DebugOutMessages, 5)
	atomic.StoreInt64(&ps.DebugLastMessage, time.Unix(10, 0).UnixNano())
	gs.end(&websocket.CloseError{Code: websocket.CloseNormalClosure})

	fields := gs.Fields()
	assert.Equal(t, "GS_OVER", fields["state"])
	assert.Equal(t, "OVER", fields["playerState"])
	assert.Equal(t, int64(3), fields["in"])
	assert.Equal(t, int64(5), fields["out"])
	assert.Equal(t, int64(0), fields["pings"])
	assert.Equal(t, time.Unix(10, 0), fields["lastMessage"])
	assert.NotContains(t, fields, "lastPing")
}

func TestLateSessionIsClosed(t *testing.T) {
	gameServer := &GameServer{
		GameRequests:     make(chan GameRequest),
		Upgrader:         &websocket.Upgrader{},
		HandshakeTimeout: 20 * time.Millisecond,
	}
	rec := httptest.NewRecorder()
	handled := make(chan struct{})
	go func() {
		gameServer.HandleHttpCall()(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		close(handled)
	}()

	req := <-gameServer.GameRequests
	<-handled
	assert.Equal(t, http.StatusRequestTimeout, rec.Code)

	closed := make(chan uuid.UUID, 1)
	session := model.NewSession(rand.New(rand.NewSource(9)), nil)
	gs := NewGameSession(uuid.New(), session, model.DefaultDimensions, time.Millisecond, closed)
	go gs.Loop()
	req.GameContextAwaiting <- GameContextAwaiting{ResponseCode: GAME_READY, GameSession: gs}

	select {
	case id := <-closed:
		assert.Equal(t, gs.Id, id)
		assert.Equal(t, GS_ERR, gs.State)
	case <-time.After(2 * time.Second):
		t.Fatal("session handed out after the timeout was never closed")
	}
}

func TestSessionCap(t *testing.T) {
	gameServer := NewGameServer(config.FromLookup(func(string) (string, bool) { return "", false }))
	gameServer.MaxSessions = 1
	go gameServer.Loop()

	srv := httptest.NewServer(gameServer.HandleHttpCall())
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	readUntil(t, conn, func(m model.ServerMessage) bool { return m.Setup != nil })

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	assert.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	conn.Close()

	assert.Eventually(t, func() bool {
		again, _, err := websocket.DefaultDialer.Dial(url, nil)
		if err != nil {
			return false
		}
		again.Close()
		return true
	}, 2*time.Second, 10*time.Millisecond, "slot freed after the browser leaves")
}
