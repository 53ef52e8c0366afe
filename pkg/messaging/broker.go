package messaging

import (
	"context"
	"encoding/json"
)

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// Publisher defines the interface for publishing typed messages
type Publisher interface {
	Publish(ctx context.Context, eventType string, payload interface{}) error
}

// Message is the envelope every event travels in.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// RawMessage is a Message whose payload has not been decoded yet.
type RawMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Decode parses an envelope received from a broker subscription.
func Decode(data []byte) (RawMessage, error) {
	var msg RawMessage
	err := json.Unmarshal(data, &msg)
	return msg, err
}
