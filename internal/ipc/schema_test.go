package ipc

import "testing"

func validMessage() []byte {
	return []byte(`{"id":"req-1","action":"memory.search","payload":{"query":"hello","limit":5}}`)
}

func TestDecodeStrictAccepts(t *testing.T) {
	msg, err := DecodeStrict(validMessage())
	if err != nil {
		t.Fatalf("DecodeStrict: %v", err)
	}
	if msg.Action != ActionMemorySearch {
		t.Fatalf("Action = %q, want %q", msg.Action, ActionMemorySearch)
	}
}

func TestDecodeStrictRejectsUnknownField(t *testing.T) {
	raw := []byte(`{"id":"req-1","action":"memory.search","bogus":true}`)
	if _, err := DecodeStrict(raw); err == nil {
		t.Fatal("expected an error for an unknown top-level field")
	}
}

func TestDecodeStrictRejectsNulByte(t *testing.T) {
	raw := append([]byte(`{"id":"req-1","action":"memory.search"}`), 0x00)
	if _, err := DecodeStrict(raw); err == nil {
		t.Fatal("expected an error for a NUL byte in the frame")
	}
}

func TestDecodeStrictRejectsBadID(t *testing.T) {
	raw := []byte(`{"id":"has a space","action":"memory.search"}`)
	if _, err := DecodeStrict(raw); err == nil {
		t.Fatal("expected an error for an ID containing whitespace")
	}
}

func TestDecodeStrictRejectsMissingAction(t *testing.T) {
	raw := []byte(`{"id":"req-1"}`)
	if _, err := DecodeStrict(raw); err == nil {
		t.Fatal("expected an error for a missing action")
	}
}

func TestDecodeStrictRejectsClientSetSessionID(t *testing.T) {
	raw := []byte(`{"id":"req-1","sessionId":"3fa85f64-5717-4562-b3fc-2c963f66afa6","action":"memory.search"}`)
	if _, err := DecodeStrict(raw); err == nil {
		t.Fatal("expected an error for a sandbox-supplied sessionId")
	}
}

func TestDecodeStrictRejectsClientSetAgentID(t *testing.T) {
	raw := []byte(`{"id":"req-1","agentId":"agent-1","action":"memory.search"}`)
	if _, err := DecodeStrict(raw); err == nil {
		t.Fatal("expected an error for a sandbox-supplied agentId")
	}
}

func TestDecodeResponseAllowsHostSetSessionAndAgentID(t *testing.T) {
	raw := []byte(`{"id":"req-1","sessionId":"session-a","agentId":"agent-1"}`)
	msg, err := DecodeResponse(raw)
	if err != nil {
		t.Fatalf("DecodeResponse: %v", err)
	}
	if msg.SessionID != "session-a" || msg.AgentID != "agent-1" {
		t.Fatalf("decoded message = %+v", msg)
	}
}

func TestDecodeStrictRejectsTrailingData(t *testing.T) {
	raw := []byte(`{"id":"req-1","action":"memory.search"}{"extra":true}`)
	if _, err := DecodeStrict(raw); err == nil {
		t.Fatal("expected an error for trailing data after the message")
	}
}

func TestDecodePayloadStrict(t *testing.T) {
	msg, err := DecodeStrict(validMessage())
	if err != nil {
		t.Fatalf("DecodeStrict: %v", err)
	}
	var req MemorySearchPayload
	if err := DecodePayload(msg, &req); err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	if req.Query != "hello" || req.Limit != 5 {
		t.Fatalf("decoded payload = %+v", req)
	}
}

func TestDecodePayloadRejectsUnknownField(t *testing.T) {
	msg := &Message{Action: ActionMemorySearch, Payload: []byte(`{"query":"hi","bogus":1}`)}
	var req MemorySearchPayload
	if err := DecodePayload(msg, &req); err == nil {
		t.Fatal("expected an error for an unknown payload field")
	}
}

func TestValidateFreeTextRejectsNul(t *testing.T) {
	if err := ValidateFreeText("content", "abc\x00def", 100); err == nil {
		t.Fatal("expected an error for embedded NUL byte")
	}
}

func TestValidateFreeTextRejectsOverLength(t *testing.T) {
	if err := ValidateFreeText("content", "abcdef", 3); err == nil {
		t.Fatal("expected an error for over-length content")
	}
}

func TestActionIsSensitive(t *testing.T) {
	if !ActionMemoryWrite.IsSensitive() {
		t.Fatal("memory.write should be sensitive")
	}
	if ActionMemorySearch.IsSensitive() {
		t.Fatal("memory.search should not be sensitive")
	}
}
