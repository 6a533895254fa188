package ws

import "encoding/json"

// client → server
type Inbound struct {
	Type  string `json:"type"`
	Topic string `json:"topic,omitempty"`
}

// server → client
type Outbound struct {
	Type  string `json:"type"`
	Topic string `json:"topic,omitempty"`
	Data  any    `json:"data,omitempty"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func encode(o Outbound) []byte {
	b, err := json.Marshal(o)
	if err != nil {
		b, _ = json.Marshal(Outbound{Type: MsgError, Data: ErrorPayload{Message: "encode failed"}})
	}
	return b
}
