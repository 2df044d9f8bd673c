package ipc

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// AuditRecord is one append-only audit log line, written in the format
// the router and any offline review tooling reads back. Per spec, the
// audit log is append-only from the host: the sandbox never gets a write
// path to it, only the read-only audit.query IPC action (handlers_audit.go).
type AuditRecord struct {
	Timestamp   time.Time `json:"ts"`
	SessionID   string    `json:"sessionId"`
	AgentID     string    `json:"agentId"`
	Action      Action    `json:"action"`
	ArgsSummary string    `json:"argsSummary"`
	Status      string    `json:"status"`
	DurationMs  int64     `json:"durationMs"`
	TaintTag    string    `json:"taintTag,omitempty"`
}

// FileAuditSink appends newline-delimited JSON audit records to a file,
// grounded on the teacher's internal/store/file package's append-only
// JSON-lines session log convention. There is deliberately no Delete or
// Truncate method on this type — every write goes through Record, called
// only from the host side of server.go's dispatch loop.
type FileAuditSink struct {
	mu   sync.Mutex
	f    *os.File
	path string
}

func NewFileAuditSink(path string) (*FileAuditSink, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("ipc: open audit log: %w", err)
	}
	return &FileAuditSink{f: f, path: path}, nil
}

func (s *FileAuditSink) Record(ctx context.Context, sessionID, agentID string, action Action, argsSummary string, status string, durationMs int64, taintTag string) {
	rec := AuditRecord{
		Timestamp:   time.Now(),
		SessionID:   sessionID,
		AgentID:     agentID,
		Action:      action,
		ArgsSummary: argsSummary,
		Status:      status,
		DurationMs:  durationMs,
		TaintTag:    taintTag,
	}
	line, err := json.Marshal(rec)
	if err != nil {
		return
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = s.f.Write(line)
}

// Query reads back audit records for sessionID, most recent first, for
// the read-only audit.query IPC action. It opens the log read-only each
// call rather than keeping a second handle on s.f, since the write handle
// is append-only and unseekable in practice under concurrent writers.
func (s *FileAuditSink) Query(sessionID string, limit int) ([]AuditRecord, error) {
	s.mu.Lock()
	path := s.path
	s.mu.Unlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ipc: open audit log for query: %w", err)
	}
	defer f.Close()

	var all []AuditRecord
	dec := json.NewDecoder(f)
	for dec.More() {
		var rec AuditRecord
		if err := dec.Decode(&rec); err != nil {
			break
		}
		if rec.SessionID == sessionID {
			all = append(all, rec)
		}
	}

	if limit <= 0 || limit > len(all) {
		limit = len(all)
	}
	out := make([]AuditRecord, limit)
	for i := 0; i < limit; i++ {
		out[i] = all[len(all)-1-i]
	}
	return out, nil
}

func (s *FileAuditSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.f.Close()
}
