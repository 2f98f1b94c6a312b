// Package hub fans dimmer status and camera previews out to dashboard
// websocket clients.
package hub

import "encoding/json"

// MessageType indicates the websocket message format
type MessageType int

const (
	// JSONMessage is a JSON-encoded message
	JSONMessage MessageType = iota
	// BinaryMessage is raw binary data (JPEG previews)
	BinaryMessage
)

// Message is one broadcast payload
type Message struct {
	Type MessageType
	Data []byte
}

// NewJSONMessage wraps already-encoded JSON
func NewJSONMessage(data []byte) Message {
	return Message{Type: JSONMessage, Data: data}
}

// NewBinaryMessage wraps binary data
func NewBinaryMessage(data []byte) Message {
	return Message{Type: BinaryMessage, Data: data}
}

// Envelope is the JSON shape every text message uses
type Envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Encode marshals an envelope of the given type
func Encode(kind string, data any) (Message, error) {
	b, err := json.Marshal(Envelope{Type: kind, Data: data})
	if err != nil {
		return Message{}, err
	}
	return NewJSONMessage(b), nil
}
