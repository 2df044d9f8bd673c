package sqlite

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/nextlevelbuilder/goclaw/internal/ipc"
)

// MemoryStore persists memory records in the shared sqlite file, keyed by
// session. It satisfies ipc.MemoryBackend directly: handlers_memory.go's
// RegisterMemoryHandlers takes this as its backend with no adapter.
type MemoryStore struct {
	db *DB
}

func NewMemoryStore(db *DB) *MemoryStore { return &MemoryStore{db: db} }

func newID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

func (s *MemoryStore) Search(ctx context.Context, sessionID, query string, limit int) ([]ipc.MemoryRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, content FROM memory_records WHERE session_id = ? AND content LIKE ? ORDER BY created_at DESC LIMIT ?`,
		sessionID, "%"+query+"%", limit)
	if err != nil {
		return nil, err
	}
	return scanMemoryRows(rows)
}

func (s *MemoryStore) Query(ctx context.Context, sessionID string, tags []string, limit int) ([]ipc.MemoryRecord, error) {
	if len(tags) == 0 {
		return s.List(ctx, sessionID, limit)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, content FROM memory_records WHERE session_id = ? AND tags LIKE ? ORDER BY created_at DESC LIMIT ?`,
		sessionID, "%"+strings.Join(tags, ",")+"%", limit)
	if err != nil {
		return nil, err
	}
	return scanMemoryRows(rows)
}

func (s *MemoryStore) Get(ctx context.Context, sessionID, id string) (ipc.MemoryRecord, error) {
	return s.Read(ctx, sessionID, id)
}

func (s *MemoryStore) Read(ctx context.Context, sessionID, id string) (ipc.MemoryRecord, error) {
	var rec ipc.MemoryRecord
	err := s.db.QueryRowContext(ctx,
		`SELECT id, content FROM memory_records WHERE session_id = ? AND id = ?`, sessionID, id).
		Scan(&rec.ID, &rec.Content)
	return rec, err
}

func (s *MemoryStore) List(ctx context.Context, sessionID string, limit int) ([]ipc.MemoryRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, content FROM memory_records WHERE session_id = ? ORDER BY created_at DESC LIMIT ?`,
		sessionID, limit)
	if err != nil {
		return nil, err
	}
	return scanMemoryRows(rows)
}

func (s *MemoryStore) Write(ctx context.Context, sessionID, content string) (ipc.MemoryRecord, error) {
	rec := ipc.MemoryRecord{ID: newID(), Content: content}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO memory_records (id, session_id, content, tags, created_at) VALUES (?, ?, ?, '', ?)`,
		rec.ID, sessionID, content, time.Now())
	return rec, err
}

func (s *MemoryStore) Delete(ctx context.Context, sessionID, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM memory_records WHERE session_id = ? AND id = ?`, sessionID, id)
	return err
}

func scanMemoryRows(rows interface {
	Close() error
	Next() bool
	Scan(...any) error
	Err() error
}) ([]ipc.MemoryRecord, error) {
	defer rows.Close()
	var out []ipc.MemoryRecord
	for rows.Next() {
		var rec ipc.MemoryRecord
		if err := rows.Scan(&rec.ID, &rec.Content); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

var _ ipc.MemoryBackend = (*MemoryStore)(nil)
