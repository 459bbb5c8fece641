package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/openmars/mars-server-go/internal/config"
	"github.com/openmars/mars-server-go/internal/game"
	"github.com/openmars/mars-server-go/internal/game/cards"
	"github.com/openmars/mars-server-go/internal/game/dealer"
	"github.com/openmars/mars-server-go/internal/game/inputs"
	"github.com/openmars/mars-server-go/internal/game/resources"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	engine := game.NewEngine(zap.NewNop(), cards.NewRegistry().Resolve)
	cfg := config.ServerConfig{
		WriteTimeout: time.Second,
		PongTimeout:  time.Minute,
	}
	return NewServer(cfg, engine, NewMetrics(), zap.NewNop())
}

func recvMessage(t *testing.T, client *Client) Message {
	t.Helper()
	select {
	case raw := <-client.send:
		var msg Message
		require.NoError(t, json.Unmarshal(raw, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message sent to client")
		return Message{}
	}
}

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestErrorCodeMapping(t *testing.T) {
	cases := map[string]error{
		"GAME_NOT_FOUND":         game.ErrGameNotFound,
		"ILLEGAL_ACTION":         fmt.Errorf("wrapped: %w", game.ErrIllegalAction),
		"INSUFFICIENT_RESOURCES": resources.ErrInsufficientResources,
		"ILLEGAL_SELECTION":      inputs.ErrIllegalSelection,
		"DECK_EXHAUSTED":         dealer.ErrDeckExhausted,
		"INVARIANT_VIOLATION":    game.ErrInvariantViolation,
		"INTERNAL":               errors.New("boom"),
	}
	for want, err := range cases {
		assert.Equal(t, want, errorCode(err))
	}
}

func TestHandleCreateGameSendsState(t *testing.T) {
	s := newTestServer(t)
	client := &Client{send: make(chan []byte, 16)}

	setup := game.GameSetup{
		GameID: "m1",
		Seed:   5,
		Players: []game.PlayerSetup{
			{ID: "p1", Name: "Alice", Corporation: "Beginner Corporation"},
			{ID: "p2", Name: "Bob", Corporation: "Beginner Corporation"},
		},
		Deck: cards.StandardDeck(),
	}
	s.handleMessage(client, Message{Type: MsgCreateGame, PlayerID: "p1", Data: mustJSON(t, setup)})

	msg := recvMessage(t, client)
	require.Equal(t, MsgGameState, msg.Type)
	assert.Equal(t, "m1", msg.GameID)

	var view game.GameView
	require.NoError(t, json.Unmarshal(msg.Data, &view))
	assert.Equal(t, "RESEARCH", view.Phase)
	require.NotNil(t, view.PendingInput, "p1 sees their own research draft")
	assert.Equal(t, "p1", view.PendingInput.PlayerID)
}

func TestHandleUnknownGameView(t *testing.T) {
	s := newTestServer(t)
	client := &Client{send: make(chan []byte, 16)}

	s.handleMessage(client, Message{Type: MsgJoinGame, GameID: "ghost", PlayerID: "p1"})

	msg := recvMessage(t, client)
	require.Equal(t, MsgError, msg.Type)
	var payload errorPayload
	require.NoError(t, json.Unmarshal(msg.Data, &payload))
	assert.Equal(t, "GAME_NOT_FOUND", payload.Code)
}

func TestHandleMalformedPayload(t *testing.T) {
	s := newTestServer(t)
	client := &Client{send: make(chan []byte, 16)}

	s.handleMessage(client, Message{Type: MsgSubmitAct, GameID: "m1", Data: json.RawMessage(`{"type": 42}`)})

	msg := recvMessage(t, client)
	require.Equal(t, MsgError, msg.Type)
	var payload errorPayload
	require.NoError(t, json.Unmarshal(msg.Data, &payload))
	assert.Equal(t, "BAD_MESSAGE", payload.Code)
}

func TestHandleActionOutOfTurn(t *testing.T) {
	s := newTestServer(t)
	client := &Client{send: make(chan []byte, 16)}

	setup := game.GameSetup{
		GameID:  "m1",
		Seed:    5,
		Players: []game.PlayerSetup{{ID: "p1", Name: "Alice", Corporation: "Beginner Corporation"}},
		Deck:    cards.StandardDeck(),
	}
	s.handleMessage(client, Message{Type: MsgCreateGame, PlayerID: "p1", Data: mustJSON(t, setup)})
	recvMessage(t, client)

	// The research draft is still outstanding, so actions are rejected.
	action := game.PlayerAction{Type: game.ActionPass}
	s.handleMessage(client, Message{Type: MsgSubmitAct, GameID: "m1", PlayerID: "p1", Data: mustJSON(t, action)})

	msg := recvMessage(t, client)
	require.Equal(t, MsgError, msg.Type)
	var payload errorPayload
	require.NoError(t, json.Unmarshal(msg.Data, &payload))
	assert.Equal(t, "ILLEGAL_ACTION", payload.Code)
}
