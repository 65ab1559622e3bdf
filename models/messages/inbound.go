package messages

import (
	"encoding/json"
	"fmt"
)

// GameSettings is the Skribble settings block carried by settings and start messages.
type GameSettings struct {
	TimeSlot   int    `json:"timeSlot"`
	Rounds     int    `json:"noOfRounds"`
	Difficulty string `json:"difficulty"`
}

// Inbound is the self-describing envelope every transport decodes into.
type Inbound struct {
	Type         string        `json:"type"`
	EventFrom    string        `json:"EventFrom,omitempty"`
	RoomID       string        `json:"roomId,omitempty"`
	UserID       string        `json:"userId,omitempty"`
	Username     string        `json:"username,omitempty"`
	Avatar       string        `json:"avatar,omitempty"`
	VotedPlayer  string        `json:"votedPlayer,omitempty"`
	Chat         string        `json:"chat,omitempty"`
	Message      string        `json:"message,omitempty"`
	To           string        `json:"to,omitempty"`
	GameMode     string        `json:"gameMode,omitempty"`
	GameSettings *GameSettings `json:"gameSettings,omitempty"`

	// Payload is the full decoded object, kept for verbatim relays.
	Payload map[string]any `json:"-"`
}

// Decode parses a raw JSON envelope.
func Decode(data []byte) (Inbound, error) {
	var msg Inbound
	if err := json.Unmarshal(data, &msg); err != nil {
		return Inbound{}, fmt.Errorf("error decoding envelope: %w", err)
	}
	if err := json.Unmarshal(data, &msg.Payload); err != nil {
		return Inbound{}, fmt.Errorf("error decoding envelope payload: %w", err)
	}
	if msg.Type == "" {
		return Inbound{}, fmt.Errorf("envelope without type")
	}
	return msg, nil
}

// FromEvent builds an envelope from a named event and its first argument, the
// shape socket.io clients send. The event name wins over any type field.
func FromEvent(event string, arg any) (Inbound, error) {
	var data []byte
	switch v := arg.(type) {
	case nil:
		data = []byte("{}")
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return Inbound{}, fmt.Errorf("error encoding %s payload: %w", event, err)
		}
		data = encoded
	}

	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return Inbound{}, fmt.Errorf("error decoding %s payload: %w", event, err)
	}
	if payload == nil {
		payload = map[string]any{}
	}
	payload["type"] = event

	normalized, err := json.Marshal(payload)
	if err != nil {
		return Inbound{}, fmt.Errorf("error encoding %s payload: %w", event, err)
	}
	return Decode(normalized)
}
