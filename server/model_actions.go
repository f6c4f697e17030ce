package server

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"github.com/zucenko/fogmaze/config"
	"github.com/zucenko/fogmaze/model"
)

// One generation step per frame.
const (
	defaultFrameInterval    = time.Second / 60
	defaultHandshakeTimeout = 200 * time.Millisecond
)

func NewGameServer(cfg config.Config) *GameServer {
	return &GameServer{
		GameSessions:     make(map[uuid.UUID]*GameSession),
		GameRequests:     make(chan GameRequest),
		Closed:           make(chan uuid.UUID),
		Upgrader:         &websocket.Upgrader{},
		Defaults:         cfg.Maze,
		FrameInterval:    defaultFrameInterval,
		HandshakeTimeout: defaultHandshakeTimeout,
		MaxSessions:      cfg.MaxSessions,
		rand:             cfg.Rand(),
	}
}

func (s *GameServer) HandleHttpCall() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("HandleHttpCall - connection received")
		timeout := s.HandshakeTimeout

		gcas := make(chan GameContextAwaiting, 1)
		select {
		case s.GameRequests <- GameRequest{GameContextAwaiting: gcas}:
		case <-time.After(timeout):
			log.Warn("GameRequests TIMEOUTED")
			w.WriteHeader(http.StatusRequestTimeout)
			return
		}

		var gca GameContextAwaiting
		select {
		case gca = <-gcas:
			if gca.ResponseCode != GAME_READY {
				w.WriteHeader(gca.ResponseCode.ToHttp())
				return
			}
		case <-time.After(timeout):
			log.Warn("HandleHttpCall GameContextAwaiting <- TIMEOUTED")
			// the loop may still answer; that session has nobody to serve
			go abandonWhenReady(gcas)
			w.WriteHeader(http.StatusRequestTimeout)
			return
		}
		gs := gca.GameSession

		con, err := s.Upgrader.Upgrade(w, r, nil)
		if err != nil {
			// the upgrader has already replied
			log.Warnf("HandleHttpCall websocket upgrade err %v", err)
			gs.Errors <- fmt.Errorf("websocket upgrade: %w", err)
			return
		}
		defer con.Close()

		gameOver := make(chan struct{})
		select {
		case gs.PlayerConnectRequests <- PlayerConnectRequest{Con: con, GameOver: gameOver}:
		case <-time.After(timeout):
			log.Warn("HandleHttpCall PlayerConnectRequests TIMEOUTED")
			gs.Errors <- errHandshakeTimeout
			return
		}

		<-gameOver
		log.WithField("session", gs.Id).Debug("HandleHttpCall game over")
	}
}

// abandonWhenReady ends a session whose handler gave up waiting for it.
func abandonWhenReady(gcas <-chan GameContextAwaiting) {
	gca := <-gcas
	if gca.GameSession != nil {
		gca.GameSession.Errors <- errHandshakeTimeout
	}
}

func (s *GameServer) Loop() {
	log.Info("GameServer.Loop starting")
	for {
		select {
		case gameReq := <-s.GameRequests:
			if s.MaxSessions > 0 && len(s.GameSessions) >= s.MaxSessions {
				log.WithField("sessions", len(s.GameSessions)).Warn("GameServer.Loop session cap reached")
				gameReq.GameContextAwaiting <- GameContextAwaiting{ResponseCode: GAME_UNAVAILABLE}
				continue
			}
			gs := s.newGameSession()
			s.GameSessions[gs.Id] = gs
			go gs.Loop()
			log.WithFields(log.Fields{
				"session":  gs.Id,
				"sessions": len(s.GameSessions),
			}).Info("GameSession created")
			gameReq.GameContextAwaiting <- GameContextAwaiting{
				ResponseCode: GAME_READY,
				GameSession:  gs,
			}
		case id := <-s.Closed:
			fields := log.Fields{"session": id}
			if gs, ok := s.GameSessions[id]; ok {
				for k, v := range gs.Fields() {
					fields[k] = v
				}
				delete(s.GameSessions, id)
			}
			fields["sessions"] = len(s.GameSessions)
			log.WithFields(fields).Info("GameSession removed")
		}
	}
}

func (s *GameServer) newGameSession() *GameSession {
	id := uuid.New()
	session := model.NewSession(s.rand.Next(), log.WithField("session", id.String()))
	return NewGameSession(id, session, s.Defaults, s.FrameInterval, s.Closed)
}

func NewGameSession(
	id uuid.UUID,
	session *model.Session,
	defaults model.Dimensions,
	frameInterval time.Duration,
	closed chan<- uuid.UUID,
) *GameSession {
	return &GameSession{
		Id:                    id,
		State:                 GS_NEW,
		Session:               session,
		Defaults:              defaults,
		Errors:                make(chan error, 1),
		Events:                make(chan model.ClientMessage, 16),
		PlayerConnectRequests: make(chan PlayerConnectRequest),
		frameInterval:         frameInterval,
		closed:                closed,
	}
}

// Loop owns the session: commands, frame ticks and teardown all happen here,
// one at a time.
func (gs *GameSession) Loop() {
	logger := log.WithField("session", gs.Id)
	logger.Info("GameSession.Loop start")
	ticker := time.NewTicker(gs.frameInterval)
	defer ticker.Stop()
	defer gs.close()

	for {
		select {
		case pcr := <-gs.PlayerConnectRequests:
			logger.Info("GameSession.Loop PlayerConnectRequests")
			gs.addPlayer(pcr.Con, pcr.GameOver)
			gs.State = GS_PLAY
			gs.PlayerSession.State = PS_PLAY
			gs.send(gs.PlayerSession.MakeGameSetupMessage())
		case err := <-gs.Errors:
			logger.WithError(err).Info("GameSession.Loop closing")
			gs.end(err)
			return
		case cm := <-gs.Events:
			if mes := gs.Turn(cm); mes != nil {
				gs.send(*mes)
			}
		case <-ticker.C:
			if mes := gs.Tick(); mes != nil {
				gs.send(*mes)
			}
		}
	}
}

// end records how the session finished: a close frame from the browser is a
// normal game over, anything else an error.
func (gs *GameSession) end(err error) {
	state, playerState := GS_ERR, PS_ERR
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		state, playerState = GS_OVER, PS_OVER
	}
	gs.State = state
	if gs.PlayerSession != nil {
		gs.PlayerSession.State = playerState
	}
}

// Fields describes the session for the log line written when it is removed.
// It is read after Loop has returned.
func (gs *GameSession) Fields() log.Fields {
	fields := log.Fields{"state": gs.State.Name()}
	ps := gs.PlayerSession
	if ps == nil {
		return fields
	}
	fields["playerState"] = ps.State.Name()
	fields["in"] = atomic.LoadInt64(&ps.DebugInMessages)
	fields["out"] = atomic.LoadInt64(&ps.DebugOutMessages)
	fields["pings"] = atomic.LoadInt64(&ps.DebugPings)
	if last := atomic.LoadInt64(&ps.DebugLastMessage); last != 0 {
		fields["lastMessage"] = time.Unix(0, last)
	}
	if last := atomic.LoadInt64(&ps.DebugLastPing); last != 0 {
		fields["lastPing"] = time.Unix(0, last)
	}
	return fields
}

func (gs *GameSession) close() {
	gs.Session.Abandon()
	if ps := gs.PlayerSession; ps != nil {
		close(ps.done)
		close(ps.GameOver)
	}
	if gs.closed != nil {
		gs.closed <- gs.Id
	}
}

// Turn applies one client command and returns the message to answer with, if any.
func (gs *GameSession) Turn(cm model.ClientMessage) *model.ServerMessage {
	switch cm.Command {
	case model.CommandStart:
		if !gs.Session.Start(cm.Dimensions()) {
			return nil
		}
		return gs.frameMessage()
	case model.CommandMove:
		d, err := model.ParseDirection(cm.Direction)
		if err != nil {
			return &model.ServerMessage{Error: err.Error()}
		}
		res := gs.Session.Move(d)
		if !res.Moved {
			return nil
		}
		mes := gs.frameMessage()
		mes.Won = res.Won
		return mes
	case model.CommandAbandon:
		gs.Session.Abandon()
		return &model.ServerMessage{State: gs.Session.State().Name()}
	default:
		return &model.ServerMessage{Error: fmt.Errorf("%w: %q", ErrUnknownCommand, cm.Command).Error()}
	}
}

// Tick advances generation by one step and returns the redrawn frame.
func (gs *GameSession) Tick() *model.ServerMessage {
	if !gs.Session.Tick() {
		return nil
	}
	return gs.frameMessage()
}

func (gs *GameSession) frameMessage() *model.ServerMessage {
	return &model.ServerMessage{
		Frame: gs.Session.Frame(),
		State: gs.Session.State().Name(),
	}
}

// send queues a message for the writer. Plain frames are dropped when the
// writer lags; setup, errors, wins and state changes wait for room.
func (gs *GameSession) send(mes model.ServerMessage) {
	ps := gs.PlayerSession
	if ps == nil {
		return
	}
	critical := mes.Setup != nil || mes.Won || mes.Error != "" ||
		(mes.State != "" && mes.State != gs.lastState)
	if mes.State != "" {
		gs.lastState = mes.State
	}
	if critical {
		select {
		case ps.MessagesToSend <- mes:
		case <-time.After(time.Second):
			log.WithField("session", gs.Id).Warn("GameSession.send TIMEOUTED")
		}
		return
	}
	select {
	case ps.MessagesToSend <- mes:
	default:
		log.WithField("session", gs.Id).Debug("dropping frame, MessagesToSend FULL")
	}
}

func (gs *GameSession) addPlayer(conn *websocket.Conn, gameOver chan struct{}) {
	ps := &PlayerSession{
		State:          PS_NEW,
		Id:             gs.Id,
		GameSession:    gs,
		Conn:           conn,
		GameOver:       gameOver,
		MessagesToSend: make(chan model.ServerMessage, 64),
		done:           make(chan struct{}),
	}
	conn.SetPingHandler(
		func(message string) error {
			err := conn.WriteControl(websocket.PongMessage, []byte(message), time.Now().Add(time.Second))
			atomic.StoreInt64(&ps.DebugLastPing, time.Now().UnixNano())
			atomic.AddInt64(&ps.DebugPings, 1)
			if err == websocket.ErrCloseSent {
				return nil
			} else if e, ok := err.(net.Error); ok && e.Timeout() {
				return nil
			}
			return err
		})
	// start processing input from the browser
	go ps.LoopChannelRead()
	// start sending from server
	go ps.LoopChannelWrite()
	gs.PlayerSession = ps
}

func (ps *PlayerSession) fail(err error) {
	select {
	case ps.GameSession.Errors <- err:
	default:
	}
}

func (ps *PlayerSession) LoopChannelRead() {
	logger := log.WithField("session", ps.Id)
	logger.Debug("LoopChannelRead STARTED")
loop:
	for {
		_, r, err := ps.Conn.NextReader()
		if err != nil {
			logger.Debugf("LoopChannelRead err reading message from Conn %v", err)
			ps.fail(err)
			break loop
		}
		cm := model.ClientMessage{}
		if err := json.NewDecoder(r).Decode(&cm); err != nil {
			logger.Warnf("LoopChannelRead cant decode %v", err)
			ps.fail(fmt.Errorf("cant decode: %w", err))
			break loop
		}
		atomic.StoreInt64(&ps.DebugLastMessage, time.Now().UnixNano())
		atomic.AddInt64(&ps.DebugInMessages, 1)

		select {
		case ps.GameSession.Events <- cm:
		case <-ps.done:
			break loop
		default:
			logger.Warn("Dropping command read from socket, GameSession.Events FULL")
		}
	}
	logger.Debug("LoopChannelRead ENDED")
}

func (ps *PlayerSession) MakeGameSetupMessage() model.ServerMessage {
	setup := model.NewSetup(ps.Id.String(), ps.GameSession.Defaults)
	return model.ServerMessage{
		Setup: &setup,
		State: ps.GameSession.Session.State().Name(),
	}
}

// LoopChannelWrite only consumes, so a full buffer never blocks it.
func (ps *PlayerSession) LoopChannelWrite() {
	logger := log.WithField("session", ps.Id)
	logger.Debug("PlayerSession.LoopChannelWrite STARTED")
loop:
	for {
		select {
		case <-ps.done:
			break loop
		case mes := <-ps.MessagesToSend:
			if err := ps.write(mes); err != nil {
				logger.Warnf("PlayerSession.LoopChannelWrite %v", err)
				ps.fail(err)
				break loop
			}
			atomic.AddInt64(&ps.DebugOutMessages, 1)
		}
	}
	logger.Debug("LoopChannelWrite ENDED")
}

func (ps *PlayerSession) write(mes model.ServerMessage) error {
	w, err := ps.Conn.NextWriter(websocket.TextMessage)
	if err != nil {
		return fmt.Errorf("cant get writer: %w", err)
	}
	if err := json.NewEncoder(w).Encode(mes); err != nil {
		return fmt.Errorf("cant encode: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("cant flush: %w", err)
	}
	return nil
}
