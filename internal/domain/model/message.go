package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType defines message types exchanged with the peer process
type MessageType string

const (
	// MessageTypeRequest carries a RequestEvent to the peer
	MessageTypeRequest MessageType = "request"
	// MessageTypeResponse carries a ResponseEvent from the peer
	MessageTypeResponse MessageType = "response"
	// MessageTypePing keeps the channel alive
	MessageTypePing MessageType = "ping"
	// MessageTypePong is a response to ping
	MessageTypePong MessageType = "pong"
	// MessageTypeError indicates a channel-level error message
	MessageTypeError MessageType = "error"
)

// ProtocolVersion is the current channel protocol version
const ProtocolVersion = "1.0.0"

// Message represents the base structure for all channel messages
type Message struct {
	// Type is the message type
	Type MessageType `json:"type"`
	// Version is the protocol version
	Version string `json:"version"`
	// Timestamp is when the message was created (in milliseconds since epoch)
	Timestamp int64 `json:"timestamp"`
	// Payload contains the actual message data
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewMessage creates a new message with specified type and payload
func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	var payloadJSON json.RawMessage
	var err error

	if payload != nil {
		payloadJSON, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to convert payload to JSON: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Version:   ProtocolVersion,
		Timestamp: time.Now().UnixMilli(),
		Payload:   payloadJSON,
	}, nil
}

// ParsePayload parses message payload into the provided struct
func (m *Message) ParsePayload(v interface{}) error {
	if m.Payload == nil {
		return nil
	}
	return json.Unmarshal(m.Payload, v)
}

// NewRequestMessage wraps a RequestEvent in a channel message
func NewRequestMessage(event *RequestEvent) (*Message, error) {
	return NewMessage(MessageTypeRequest, event)
}

// NewResponseMessage wraps a ResponseEvent in a channel message
func NewResponseMessage(event *ResponseEvent) (*Message, error) {
	return NewMessage(MessageTypeResponse, event)
}

// ParseRequestPayload parses the payload as a RequestEvent
func (m *Message) ParseRequestPayload() (*RequestEvent, error) {
	var event RequestEvent
	if err := m.ParsePayload(&event); err != nil {
		return nil, err
	}
	return &event, nil
}

// ParseResponsePayload parses the payload as a ResponseEvent
func (m *Message) ParseResponsePayload() (*ResponseEvent, error) {
	var event ResponseEvent
	if err := m.ParsePayload(&event); err != nil {
		return nil, err
	}
	return &event, nil
}

// ErrorPayload is for channel-level error messages
type ErrorPayload struct {
	// Code is the error code
	Code string `json:"code"`
	// Message contains the error details
	Message string `json:"message"`
}
