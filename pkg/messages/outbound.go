package messages

// OutboundMessage is how we wrap responses before sending
// them to the client
type OutboundMessage struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

type ConnectedPayload struct {
	ConnectionId string `json:"connection_id"`
}

// JoinedPayload tells a connection which session it landed in and which
// role it holds there.
type JoinedPayload struct {
	SessionID string `json:"session_id"`
	Role      string `json:"role"` // "white", "black" or "spectator"
}

// PlayersPayload lists the connection ids occupying each seat; an empty
// string marks a vacant seat.
type PlayersPayload struct {
	White string `json:"white,omitempty"`
	Black string `json:"black,omitempty"`
}

// OutcomePayload records the terminal result of a session.
type OutcomePayload struct {
	Winner string `json:"winner"` // "white", "black" or "draw"
	Reason string `json:"reason"`
}

// GameStatePayload is the full session snapshot broadcast after every
// state-changing event.
type GameStatePayload struct {
	SessionID   string          `json:"session_id"`
	BoardFEN    string          `json:"board_fen"`
	CurrentTurn string          `json:"current_turn"`
	Moves       []string        `json:"moves"`
	WhiteTime   int64           `json:"white_time"`
	BlackTime   int64           `json:"black_time"`
	Players     PlayersPayload  `json:"players"`
	Spectators  int             `json:"spectators"`
	IsCheckmate bool            `json:"is_checkmate"`
	IsDraw      bool            `json:"is_draw"`
	GameOver    bool            `json:"game_over"`
	Outcome     *OutcomePayload `json:"outcome,omitempty"`
}

type GameOverPayload struct {
	Winner string `json:"winner"`
	Reason string `json:"reason"`
}

// ChatMessagePayload relays a chat line to everyone in the session.
type ChatMessagePayload struct {
	Sender  string `json:"sender"`
	Message string `json:"message"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
