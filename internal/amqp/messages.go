package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ChangeMessage announces that one entity changed. Document is the entity's
// codec JSON and is carried verbatim; it is absent for deletions.
type ChangeMessage struct {
	Entity     string          `json:"entity"`
	ID         string          `json:"id"`
	ModifiedAt time.Time       `json:"modifiedAt"`
	Deleted    bool            `json:"deleted,omitempty"`
	Document   json.RawMessage `json:"document,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
}

// ErrInvalidMessage is returned for messages that can never be processed.
var ErrInvalidMessage = errors.New("invalid change message")

// NewChangeMessage creates an upsert message for an encoded entity
func NewChangeMessage(entity, id string, modifiedAt time.Time, document []byte) *ChangeMessage {
	return &ChangeMessage{
		Entity:     entity,
		ID:         id,
		ModifiedAt: modifiedAt,
		Document:   json.RawMessage(document),
		Timestamp:  time.Now(),
	}
}

// NewDeleteMessage creates a deletion message
func NewDeleteMessage(entity, id string, modifiedAt time.Time) *ChangeMessage {
	return &ChangeMessage{
		Entity:     entity,
		ID:         id,
		ModifiedAt: modifiedAt,
		Deleted:    true,
		Timestamp:  time.Now(),
	}
}

// Validate checks the envelope, not the document
func (m *ChangeMessage) Validate() error {
	switch {
	case m.Entity == "":
		return fmt.Errorf("%w: missing entity", ErrInvalidMessage)
	case m.ID == "":
		return fmt.Errorf("%w: missing id", ErrInvalidMessage)
	case m.ModifiedAt.IsZero():
		return fmt.Errorf("%w: missing modifiedAt", ErrInvalidMessage)
	case !m.Deleted && len(m.Document) == 0:
		return fmt.Errorf("%w: %s %s has no document", ErrInvalidMessage, m.Entity, m.ID)
	}
	return nil
}

// ToJSON converts the message to JSON bytes
func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeMessageFromJSON parses and validates a message
func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
