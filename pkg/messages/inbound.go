package messages

import "encoding/json"

// InboundMessage is the generic wrapper for messages coming from the client.
// The "type" field tells us the action; "payload" is the data we parse further.
type InboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// JoinGamePayload represents the payload for joining (or creating) a game.
// SessionID is optional: without it the server matchmakes into an open
// lobby or creates a fresh session. Token is an optional login token that
// ties the connection's seat to a persisted account.
type JoinGamePayload struct {
	SessionID string `json:"session_id,omitempty"`
	Token     string `json:"token,omitempty"`
}

// MakeMovePayload represents the payload for making a move during a game
type MakeMovePayload struct {
	Move string `json:"move"`
}

// ChatPayload represents a free-text chat message, broadcast to the
// session without touching game state.
type ChatPayload struct {
	Message string `json:"message"`
}
