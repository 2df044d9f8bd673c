package ipc

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/nextlevelbuilder/goclaw/internal/apperr"
	"github.com/nextlevelbuilder/goclaw/internal/taint"
)

type recordingAudit struct {
	records []AuditRecord
}

func (r *recordingAudit) Record(ctx context.Context, sessionID, agentID string, action Action, argsSummary string, status string, durationMs int64, taintTag string) {
	r.records = append(r.records, AuditRecord{SessionID: sessionID, Action: action, ArgsSummary: argsSummary, Status: status})
}

func sendAndRead(t *testing.T, s *Server, sessionID string, in []byte) Message {
	t.Helper()
	var reqBuf, respBuf bytes.Buffer
	if err := WriteFrame(&reqBuf, in); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- s.Serve(context.Background(), sessionID, "agent-1", &reqBuf, &respBuf)
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after EOF")
	}

	fr := NewFrameReader(&respBuf)
	raw, err := fr.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame response: %v", err)
	}
	msg, err := DecodeResponse(raw)
	if err != nil {
		t.Fatalf("DecodeResponse response: %v", err)
	}
	return *msg
}

func TestServerDispatchesRegisteredHandler(t *testing.T) {
	trackers := taint.NewRegistry(0.4)
	audit := &recordingAudit{}
	s := NewServer(trackers, audit, nil)
	s.Register(ActionMemorySearch, func(ctx context.Context, conn *Conn, msg *Message) (any, error) {
		return map[string]string{"ok": "yes"}, nil
	})

	req := []byte(`{"id":"req-1","action":"memory.search","payload":{"query":"x","limit":1}}`)
	resp := sendAndRead(t, s, "session-a", req)
	if resp.Error != nil {
		t.Fatalf("unexpected error response: %+v", resp.Error)
	}
	if len(audit.records) != 1 || audit.records[0].Status != "ok" {
		t.Fatalf("expected one ok audit record, got %+v", audit.records)
	}
}

func TestServerRejectsUnknownAction(t *testing.T) {
	trackers := taint.NewRegistry(0.4)
	s := NewServer(trackers, nil, nil)

	req := []byte(`{"id":"req-1","action":"nope.nope"}`)
	resp := sendAndRead(t, s, "session-a", req)
	if resp.Error == nil || resp.Error.Kind != string(apperr.KindValidation) {
		t.Fatalf("expected a validation error, got %+v", resp.Error)
	}
}

func TestServerDeniesSensitiveActionWhenBudgetExhausted(t *testing.T) {
	trackers := taint.NewRegistry(0.1)
	trackers.Get("session-a").Record("web_fetch:evil", taint.TrustExternal, 1000)

	called := false
	s := NewServer(trackers, nil, nil)
	s.Register(ActionMemoryWrite, func(ctx context.Context, conn *Conn, msg *Message) (any, error) {
		called = true
		return struct{}{}, nil
	})

	req := []byte(`{"id":"req-1","action":"memory.write","payload":{"content":"hi","trust":"user"}}`)
	resp := sendAndRead(t, s, "session-a", req)
	if resp.Error == nil || resp.Error.Kind != "policy" {
		t.Fatalf("expected a policy error, got %+v", resp.Error)
	}
	if called {
		t.Fatal("handler must not run once the taint budget is exhausted")
	}
}
