package server

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tecu23/match-server/internal/auth"
	"github.com/tecu23/match-server/pkg/events"
	"github.com/tecu23/match-server/pkg/game"
	"github.com/tecu23/match-server/pkg/messages"
)

// InboundHubMessage are the messages that the hub receives
type InboundHubMessage struct {
	Conn    *Connection             // who sent it
	Message messages.InboundMessage // parsed envelope, payload still raw
}

// Hub keeps track of all active connections and groups them into rooms,
// one room per session, so state changes reach every participant. All
// routing decisions run on the hub goroutine; the game registry does its
// own locking.
type Hub struct {
	mu          sync.RWMutex
	connections map[uuid.UUID]*Connection
	rooms       map[uuid.UUID]map[uuid.UUID]*Connection // session id -> members

	register   chan *Connection
	unregister chan *Connection
	inbound    chan InboundHubMessage
	done       chan struct{}

	registry *game.Registry
	turns    *game.TurnController
	tokens   *auth.TokenIssuer // nil when logins are disabled

	publisher *events.Publisher
	logger    *zap.Logger
}

// NewHub creates a new hub over the given registry and turn controller.
func NewHub(
	registry *game.Registry,
	turns *game.TurnController,
	tokens *auth.TokenIssuer,
	publisher *events.Publisher,
	logger *zap.Logger,
) *Hub {
	return &Hub{
		connections: make(map[uuid.UUID]*Connection),
		rooms:       make(map[uuid.UUID]map[uuid.UUID]*Connection),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		inbound:     make(chan InboundHubMessage),
		done:        make(chan struct{}),
		registry:    registry,
		turns:       turns,
		tokens:      tokens,
		publisher:   publisher,
		logger:      logger,
	}
}

// Run is the main execution of the hub
func (h *Hub) Run() {
	for {
		select {
		case conn := <-h.register:
			h.registerConnection(conn)

		case conn := <-h.unregister:
			h.unregisterConnection(conn)

		case msg := <-h.inbound:
			h.handleInbound(msg)

		case <-h.done:
			return
		}
	}
}

func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// Shutdown stops the hub loop and closes every websocket, which unwinds
// the read and write pumps.
func (h *Hub) Shutdown() {
	close(h.done)

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, conn := range h.connections {
		conn.ws.Close()
	}
}

func (h *Hub) registerConnection(conn *Connection) {
	h.mu.Lock()
	h.connections[conn.ID] = conn
	total := len(h.connections)
	h.mu.Unlock()

	h.logger.Info("connection registered",
		zap.String("connection_id", conn.ID.String()),
		zap.Int("total", total))

	conn.SendJSON(messages.OutboundMessage{
		Event: "CONNECTED",
		Payload: messages.ConnectedPayload{
			ConnectionId: conn.ID.String(),
		},
	})
}

func (h *Hub) unregisterConnection(conn *Connection) {
	h.mu.Lock()
	if _, ok := h.connections[conn.ID]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.connections, conn.ID)
	close(conn.send)
	h.mu.Unlock()

	sessionID, inSession := h.registry.SessionFor(conn.ID)
	if inSession {
		h.leaveRoom(sessionID, conn)
	}

	// A seated player vanishing mid-game forfeits; the registry decides.
	h.registry.Disconnect(conn.ID)

	if inSession {
		if _, ok := h.registry.GetState(sessionID); ok {
			h.broadcastState(sessionID)
		} else {
			h.dropRoom(sessionID)
		}
	}

	h.logger.Info("connection unregistered",
		zap.String("connection_id", conn.ID.String()))
}

// handleInbound decodes and routes a message from a client.
func (h *Hub) handleInbound(msg InboundHubMessage) {
	switch msg.Message.Type {
	case "JOIN_GAME":
		var payload messages.JoinGamePayload
		if err := json.Unmarshal(msg.Message.Payload, &payload); err != nil {
			h.sendError(msg.Conn, "Invalid JOIN_GAME payload")
			return
		}
		h.handleJoin(msg.Conn, payload)

	case "MAKE_MOVE":
		var payload messages.MakeMovePayload
		if err := json.Unmarshal(msg.Message.Payload, &payload); err != nil {
			h.sendError(msg.Conn, "Invalid MAKE_MOVE payload")
			return
		}
		h.handleMove(msg.Conn, payload)

	case "CHAT":
		var payload messages.ChatPayload
		if err := json.Unmarshal(msg.Message.Payload, &payload); err != nil {
			h.sendError(msg.Conn, "Invalid CHAT payload")
			return
		}
		h.handleChat(msg.Conn, payload)

	default:
		h.sendError(msg.Conn, "Unknown message type")
	}
}

func (h *Hub) handleJoin(conn *Connection, payload messages.JoinGamePayload) {
	accountID := ""
	if payload.Token != "" {
		if h.tokens == nil {
			h.sendError(conn, "Logins are disabled")
			return
		}
		id, _, err := h.tokens.Verify(payload.Token)
		if err != nil {
			h.sendError(conn, "Invalid token")
			return
		}
		accountID = id
	}

	sessionID, role := h.registry.Join(conn.ID, payload.SessionID, accountID)
	h.joinRoom(sessionID, conn)

	conn.SendJSON(messages.OutboundMessage{
		Event: "JOINED",
		Payload: messages.JoinedPayload{
			SessionID: sessionID.String(),
			Role:      string(role),
		},
	})

	h.broadcastState(sessionID)
}

func (h *Hub) handleMove(conn *Connection, payload messages.MakeMovePayload) {
	sessionID, ok := h.registry.SessionFor(conn.ID)
	if !ok {
		h.sendError(conn, "Not in a game")
		return
	}

	if err := h.turns.SubmitMove(context.Background(), sessionID, conn.ID, payload.Move); err != nil {
		h.sendError(conn, err.Error())
		return
	}

	h.broadcastState(sessionID)
}

func (h *Hub) handleChat(conn *Connection, payload messages.ChatPayload) {
	sessionID, ok := h.registry.SessionFor(conn.ID)
	if !ok {
		h.sendError(conn, "Not in a game")
		return
	}
	if payload.Message == "" {
		return
	}

	h.broadcast(sessionID, messages.OutboundMessage{
		Event: "CHAT_MESSAGE",
		Payload: messages.ChatMessagePayload{
			Sender:  conn.ID.String(),
			Message: payload.Message,
		},
	})
}

func (h *Hub) joinRoom(sessionID uuid.UUID, conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[sessionID]
	if !ok {
		room = make(map[uuid.UUID]*Connection)
		h.rooms[sessionID] = room
	}
	room[conn.ID] = conn
}

func (h *Hub) leaveRoom(sessionID uuid.UUID, conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if room, ok := h.rooms[sessionID]; ok {
		delete(room, conn.ID)
		if len(room) == 0 {
			delete(h.rooms, sessionID)
		}
	}
}

func (h *Hub) dropRoom(sessionID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.rooms, sessionID)
}

// broadcastState pushes the current session snapshot to the whole room.
func (h *Hub) broadcastState(sessionID uuid.UUID) {
	state, ok := h.registry.GetState(sessionID)
	if !ok {
		return
	}
	h.broadcast(sessionID, messages.OutboundMessage{
		Event:   "GAME_STATE",
		Payload: state,
	})
}

func (h *Hub) broadcast(sessionID uuid.UUID, msg messages.OutboundMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("error marshaling broadcast", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, conn := range h.rooms[sessionID] {
		conn.enqueue(data)
	}
}

func (h *Hub) sendError(conn *Connection, msg string) {
	conn.SendJSON(messages.OutboundMessage{
		Event: "ERROR",
		Payload: messages.ErrorPayload{
			Message: msg,
		},
	})
}
