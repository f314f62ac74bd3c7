package protocol

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Envelope is one inbound frame, parsed far enough to route. The payload
// stays raw until a handler claims the message and decodes it.
type Envelope struct {
	Type string
	raw  json.RawMessage
}

// Decode parses a raw text frame into an Envelope. A frame without a
// usable "type" discriminator is malformed.
func Decode(data []byte) (*Envelope, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("parse frame: %w", err)
	}
	if strings.TrimSpace(head.Type) == "" {
		return nil, fmt.Errorf("frame missing type discriminator")
	}
	return &Envelope{Type: head.Type, raw: data}, nil
}

// As unmarshals the full payload into v.
func (e *Envelope) As(v any) error {
	if err := json.Unmarshal(e.raw, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Type, err)
	}
	return nil
}

// Raw returns the undecoded frame, for logging.
func (e *Envelope) Raw() []byte { return e.raw }
