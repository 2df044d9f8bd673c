package ipc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/invopop/jsonschema"
)

// idPattern bounds the envelope's message ID the same way the teacher
// bounds cron job IDs and skill names: no path separators, no whitespace,
// nothing that could be interpreted as a shell or filesystem special
// character downstream. Only Message.ID is checked against it here;
// payload ID fields (job IDs, memory IDs, skill names) are not.
var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Message is the envelope every IPC frame carries. SessionID and AgentID
// are host-injected context, set on the reply envelope from the
// connection's handshake (Conn.SessionID / Conn.AgentID) — never accepted
// from the sandbox. DecodeStrict, the only path a request frame can take
// into the server, rejects a request that tries to set either field.
type Message struct {
	ID        string          `json:"id"`
	SessionID string          `json:"sessionId,omitempty"`
	AgentID   string          `json:"agentId,omitempty"`
	Action    Action          `json:"action"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Error     *ErrorPayload   `json:"error,omitempty"`
}

// ErrorPayload is the {kind, message} shape internal/apperr.Error
// marshals to — the sandbox never sees a Go stack trace or an internal
// file path, only a kind and a human-readable message.
type ErrorPayload struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

const (
	maxIDLen      = 128
	maxPayloadLen = MaxFrameBytes - 1024 // leave room for envelope overhead
)

// DecodeStrict decodes a length-prefixed inbound request frame's body
// into a Message, rejecting unknown top-level fields, NUL bytes anywhere
// in the raw frame, oversized or malformed ID fields, and — per the
// context-injection rule — a sandbox attempt to set sessionId or agentId
// itself. Those two fields are handshake context the server attaches to
// conn.SessionID/conn.AgentID after accepting the connection; a payload
// that tries to set them is forged or buggy, never legitimate. This is
// the sole enforcement point for request frames — every other validator
// in this package is a helper DecodeStrict calls, not an alternative path
// a handler could bypass.
func DecodeStrict(raw []byte) (*Message, error) {
	msg, err := decodeEnvelope(raw)
	if err != nil {
		return nil, err
	}
	if msg.SessionID != "" {
		return nil, fmt.Errorf("ipc: sessionId is injected by the host and may not be set by the sandbox")
	}
	if msg.AgentID != "" {
		return nil, fmt.Errorf("ipc: agentId is injected by the host and may not be set by the sandbox")
	}
	if msg.Action == "" {
		return nil, fmt.Errorf("ipc: action is required")
	}
	return msg, nil
}

// DecodeResponse decodes a length-prefixed reply frame's body into a
// Message. Unlike DecodeStrict it allows sessionId/agentId, since those
// are the host's own reply context, not sandbox-supplied input — used by
// the sandbox-side client reading the host's response, and by tests that
// read a Server's reply off the wire.
func DecodeResponse(raw []byte) (*Message, error) {
	return decodeEnvelope(raw)
}

func decodeEnvelope(raw []byte) (*Message, error) {
	if bytes.IndexByte(raw, 0) != -1 {
		return nil, fmt.Errorf("ipc: frame contains a NUL byte")
	}
	if len(raw) > maxPayloadLen {
		return nil, fmt.Errorf("ipc: frame of %d bytes exceeds max %d", len(raw), maxPayloadLen)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	var msg Message
	if err := dec.Decode(&msg); err != nil {
		return nil, fmt.Errorf("ipc: decode message: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("ipc: trailing data after message")
	}
	if err := validateID("id", msg.ID); err != nil {
		return nil, err
	}
	return &msg, nil
}

func validateID(field, v string) error {
	if v == "" {
		return fmt.Errorf("ipc: %s is required", field)
	}
	if len(v) > maxIDLen {
		return fmt.Errorf("ipc: %s exceeds max length %d", field, maxIDLen)
	}
	if !idPattern.MatchString(v) {
		return fmt.Errorf("ipc: %s %q does not match %s", field, v, idPattern.String())
	}
	return nil
}

// DecodePayload strictly decodes msg.Payload into dst, rejecting unknown
// fields the same way DecodeStrict does for the envelope. Handlers call
// this instead of json.Unmarshal directly.
func DecodePayload(msg *Message, dst any) error {
	if len(msg.Payload) == 0 {
		return fmt.Errorf("ipc: action %s requires a payload", msg.Action)
	}
	dec := json.NewDecoder(bytes.NewReader(msg.Payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("ipc: decode payload for %s: %w", msg.Action, err)
	}
	return nil
}

// ValidateFreeText rejects NUL bytes and enforces a length bound on a
// free-text field (message bodies, search queries) that otherwise has no
// structural constraint.
func ValidateFreeText(field, v string, maxLen int) error {
	if strings.IndexByte(v, 0) != -1 {
		return fmt.Errorf("ipc: %s contains a NUL byte", field)
	}
	if len(v) > maxLen {
		return fmt.Errorf("ipc: %s exceeds max length %d", field, maxLen)
	}
	return nil
}

// SchemaFor generates the introspection schema document for a payload
// type. No IPC action in this package serves it to the sandbox. This is
// documentation, not enforcement — DecodePayload's DisallowUnknownFields
// is the actual gate.
func SchemaFor(v any) *jsonschema.Schema {
	r := &jsonschema.Reflector{DoNotReference: true}
	return r.Reflect(v)
}
