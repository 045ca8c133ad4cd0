package broadcaster

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/goevery/votechess/internal/ierr"
)

type MessageType string

const (
	MessageTypeVote    MessageType = "VOTE"
	MessageTypeCommand MessageType = "COMMAND"
	MessageTypeResult  MessageType = "RESULT"
)

// Known reports whether t is one of the types any component acts on. Other
// values still travel across the hub untouched.
func (t MessageType) Known() bool {
	switch t {
	case MessageTypeVote, MessageTypeCommand, MessageTypeResult:
		return true
	default:
		return false
	}
}

const SubtypeSingleVote = "SINGLE"

// Message is the envelope every participant speaks, on the hub and on the wire.
type Message struct {
	MessageType    MessageType `json:"message_type"`
	MessageSubtype string      `json:"message_subtype"`
	Value          string      `json:"value"`
}

func NewVote(value string) Message {
	return Message{
		MessageType:    MessageTypeVote,
		MessageSubtype: SubtypeSingleVote,
		Value:          value,
	}
}

func NewCommand(subtype string, value string) Message {
	return Message{
		MessageType:    MessageTypeCommand,
		MessageSubtype: subtype,
		Value:          value,
	}
}

func NewResult(subtype string, value string) Message {
	return Message{
		MessageType:    MessageTypeResult,
		MessageSubtype: subtype,
		Value:          value,
	}
}

// Encode returns the canonical serialization of m.
func (m Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

func (m Message) String() string {
	return fmt.Sprintf("%s/%s=%q", m.MessageType, m.MessageSubtype, m.Value)
}

type wireMessage struct {
	MessageType    *string `json:"message_type"`
	MessageSubtype *string `json:"message_subtype"`
	Value          *string `json:"value"`
}

// DecodeMessage parses a wire frame. All three fields must be present and no
// other field is accepted.
func DecodeMessage(data []byte) (Message, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()

	var wire wireMessage
	if err := decoder.Decode(&wire); err != nil {
		return Message{}, ierr.New(ierr.ErrorCodeInvalidArgument, fmt.Errorf("invalid message: %w", err))
	}

	if decoder.More() {
		return Message{}, ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("invalid message: trailing data"))
	}

	switch {
	case wire.MessageType == nil:
		return Message{}, ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("missing field message_type"))
	case wire.MessageSubtype == nil:
		return Message{}, ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("missing field message_subtype"))
	case wire.Value == nil:
		return Message{}, ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("missing field value"))
	}

	return Message{
		MessageType:    MessageType(*wire.MessageType),
		MessageSubtype: *wire.MessageSubtype,
		Value:          *wire.Value,
	}, nil
}
