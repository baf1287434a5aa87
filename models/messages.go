package models

import (
	"encoding/json"
	"time"
)

// OpCode tags every message on the real-time channel.
type OpCode int

const (
	OpState OpCode = 1 // server -> client: full match state
	OpMove  OpCode = 2 // client -> server: {"position": n}
)

// Envelope is the frame exchanged over the socket in both directions.
type Envelope struct {
	OpCode OpCode          `json:"op_code"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// MovePayload is the body of an OpMove message. Position is a pointer so a
// missing field is told apart from cell 0.
type MovePayload struct {
	Position *int `json:"position"`
}

// MatchMessage is an inbound client message buffered until the next tick.
type MatchMessage struct {
	UserID     string
	OpCode     OpCode
	Data       []byte
	ReceivedAt time.Time
}
