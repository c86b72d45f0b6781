package queue

import "encoding/json"

// Message is the audit payload fanned out to downstream queue consumers.
type Message struct {
	Action     string `json:"action"`
	ActorEmail string `json:"actorEmail"`
	ActorRole  string `json:"actorRole"`
	TargetID   string `json:"targetId,omitempty"`
	OccurredAt string `json:"occurredAt"`
	Version    int    `json:"version"`
}

// EncodeMessage returns the JSON representation of a message.
func EncodeMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeMessage parses a JSON payload into a Message.
func DecodeMessage(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}
