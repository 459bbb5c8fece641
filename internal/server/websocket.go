// Package server exposes the match engine over WebSocket and serves the
// Prometheus metrics endpoint.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/openmars/mars-server-go/internal/config"
	"github.com/openmars/mars-server-go/internal/game"
	"github.com/openmars/mars-server-go/internal/game/dealer"
	"github.com/openmars/mars-server-go/internal/game/inputs"
	"github.com/openmars/mars-server-go/internal/game/resources"
)

// Message is the WebSocket envelope, both directions. Data carries the
// type-specific payload.
type Message struct {
	Type      string          `json:"type"`
	GameID    string          `json:"game_id,omitempty"`
	PlayerID  string          `json:"player_id,omitempty"`
	RequestID string          `json:"request_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// Client message types.
const (
	MsgCreateGame  = "create_game"
	MsgJoinGame    = "join_game"
	MsgSubmitInput = "submit_input"
	MsgSubmitAct   = "submit_action"
	MsgGetView     = "get_view"
)

// Server message types.
const (
	MsgGameState = "game_state"
	MsgError     = "error"
)

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Client is one WebSocket connection bound to a player in a game.
type Client struct {
	conn     *websocket.Conn
	send     chan []byte
	playerID string
	gameID   string
}

// Server hosts WebSocket clients over the match engine.
type Server struct {
	cfg     config.ServerConfig
	engine  *game.Engine
	metrics *Metrics
	logger  *zap.Logger

	mu      sync.RWMutex
	clients map[*Client]bool

	upgrader websocket.Upgrader
}

// NewServer creates the WebSocket server and hooks it into engine
// notifications so every state change is pushed to the affected clients.
func NewServer(cfg config.ServerConfig, engine *game.Engine, metrics *Metrics, logger *zap.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		engine:  engine,
		metrics: metrics,
		logger:  logger,
		clients: make(map[*Client]bool),
	}
	s.upgrader = websocket.Upgrader{CheckOrigin: s.checkOrigin}
	engine.SetNotificationHandler(s.HandleNotification)
	return s
}

func (s *Server) checkOrigin(r *http.Request) bool {
	if len(s.cfg.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	for _, allowed := range s.cfg.AllowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}

// Routes returns the HTTP mux with the WebSocket and health endpoints.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{conn: conn, send: make(chan []byte, 256)}
	s.mu.Lock()
	s.clients[client] = true
	s.mu.Unlock()
	s.metrics.ConnectedClients.Inc()

	go s.writePump(client)
	go s.readPump(client)
}

func (s *Server) dropClient(client *Client) {
	s.mu.Lock()
	if s.clients[client] {
		delete(s.clients, client)
		close(client.send)
		s.metrics.ConnectedClients.Dec()
	}
	s.mu.Unlock()
}

func (s *Server) readPump(client *Client) {
	defer func() {
		s.dropClient(client)
		client.conn.Close()
	}()

	client.conn.SetReadDeadline(time.Now().Add(s.cfg.PongTimeout))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(s.cfg.PongTimeout))
	})

	for {
		_, raw, err := client.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			s.sendError(client, "BAD_MESSAGE", err)
			continue
		}
		s.handleMessage(client, msg)
	}
}

func (s *Server) writePump(client *Client) {
	ticker := time.NewTicker(s.cfg.PongTimeout * 9 / 10)
	defer func() {
		ticker.Stop()
		client.conn.Close()
	}()

	for {
		select {
		case raw, ok := <-client.send:
			client.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if !ok {
				client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
				return
			}
		case <-ticker.C:
			client.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) handleMessage(client *Client, msg Message) {
	switch msg.Type {
	case MsgCreateGame:
		var setup game.GameSetup
		if err := json.Unmarshal(msg.Data, &setup); err != nil {
			s.sendError(client, "BAD_MESSAGE", err)
			return
		}
		if err := s.engine.CreateGame(setup); err != nil {
			s.sendError(client, errorCode(err), err)
			return
		}
		s.metrics.GamesCreated.Inc()
		s.metrics.ActiveGames.Set(float64(s.engine.GameCount()))
		client.gameID = setup.GameID
		client.playerID = msg.PlayerID
		s.sendView(client)

	case MsgJoinGame:
		client.gameID = msg.GameID
		client.playerID = msg.PlayerID
		s.sendView(client)

	case MsgSubmitAct:
		var action game.PlayerAction
		if err := json.Unmarshal(msg.Data, &action); err != nil {
			s.sendError(client, "BAD_MESSAGE", err)
			return
		}
		if _, err := s.engine.SubmitAction(msg.GameID, msg.PlayerID, action); err != nil {
			s.metrics.Actions.WithLabelValues(string(action.Type), "rejected").Inc()
			s.sendError(client, errorCode(err), err)
			return
		}
		s.metrics.Actions.WithLabelValues(string(action.Type), "ok").Inc()

	case MsgSubmitInput:
		var response inputs.Response
		if err := json.Unmarshal(msg.Data, &response); err != nil {
			s.sendError(client, "BAD_MESSAGE", err)
			return
		}
		if _, err := s.engine.SubmitInputResponse(msg.GameID, msg.RequestID, &response); err != nil {
			s.metrics.InputResponses.WithLabelValues("rejected").Inc()
			s.sendError(client, errorCode(err), err)
			return
		}
		s.metrics.InputResponses.WithLabelValues("ok").Inc()

	case MsgGetView:
		s.sendView(client)

	default:
		s.sendError(client, "BAD_MESSAGE", errors.New("unknown message type "+msg.Type))
	}
}

// HandleNotification pushes fresh per-player views to every client watching
// the affected game. Runs on the engine's notification goroutine; exported so
// a persistence hook can chain onto it.
func (s *Server) HandleNotification(n game.GameNotification) {
	s.mu.RLock()
	var watching []*Client
	for client := range s.clients {
		if client.gameID == n.GameID {
			watching = append(watching, client)
		}
	}
	s.mu.RUnlock()

	for _, client := range watching {
		s.sendView(client)
	}
}

func (s *Server) sendView(client *Client) {
	if client.gameID == "" {
		return
	}
	view, err := s.engine.GameView(client.gameID, client.playerID)
	if err != nil {
		s.sendError(client, errorCode(err), err)
		return
	}
	s.sendMessage(client, MsgGameState, client.gameID, view)
}

func (s *Server) sendError(client *Client, code string, err error) {
	s.metrics.Errors.WithLabelValues(code).Inc()
	s.sendMessage(client, MsgError, client.gameID, errorPayload{Code: code, Message: err.Error()})
}

func (s *Server) sendMessage(client *Client, msgType, gameID string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("failed to encode payload", zap.String("type", msgType), zap.Error(err))
		return
	}
	raw, err := json.Marshal(Message{Type: msgType, GameID: gameID, Data: data})
	if err != nil {
		s.logger.Error("failed to encode message", zap.String("type", msgType), zap.Error(err))
		return
	}
	select {
	case client.send <- raw:
	default:
		// Slow consumer; drop the message rather than block the engine.
		s.logger.Warn("client send buffer full", zap.String("player_id", client.playerID))
	}
}

// errorCode maps engine errors onto the wire-level error taxonomy.
func errorCode(err error) string {
	switch {
	case errors.Is(err, game.ErrGameNotFound):
		return "GAME_NOT_FOUND"
	case errors.Is(err, game.ErrIllegalAction):
		return "ILLEGAL_ACTION"
	case errors.Is(err, resources.ErrInsufficientResources):
		return "INSUFFICIENT_RESOURCES"
	case errors.Is(err, inputs.ErrIllegalSelection):
		return "ILLEGAL_SELECTION"
	case errors.Is(err, dealer.ErrDeckExhausted):
		return "DECK_EXHAUSTED"
	case errors.Is(err, game.ErrInvariantViolation):
		return "INVARIANT_VIOLATION"
	default:
		return "INTERNAL"
	}
}
