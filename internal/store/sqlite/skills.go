package sqlite

import (
	"context"
	"database/sql"

	"github.com/nextlevelbuilder/goclaw/internal/apperr"
	"github.com/nextlevelbuilder/goclaw/internal/ipc"
)

// SkillStore persists the self-authored skill library: named text bodies
// an agent can list, read, and propose additions to. Proposals land with
// accepted = false until a human flips it out of band (no IPC action
// exposes acceptance — that is deliberately not sandbox-reachable).
type SkillStore struct {
	db *DB
}

func NewSkillStore(db *DB) *SkillStore { return &SkillStore{db: db} }

func (s *SkillStore) List(ctx context.Context, agentID string) (ipc.SkillsListResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, description FROM skills WHERE agent_id = ? AND accepted = 1`, agentID)
	if err != nil {
		return ipc.SkillsListResult{}, err
	}
	defer rows.Close()

	out := ipc.SkillsListResult{}
	for rows.Next() {
		var sk ipc.SkillSummary
		if err := rows.Scan(&sk.Name, &sk.Description); err != nil {
			return ipc.SkillsListResult{}, err
		}
		out.Skills = append(out.Skills, sk)
	}
	return out, rows.Err()
}

func (s *SkillStore) Get(ctx context.Context, agentID, name string) (ipc.SkillDetail, error) {
	var d ipc.SkillDetail
	d.Name = name
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM skills WHERE agent_id = ? AND name = ? AND accepted = 1`, agentID, name).Scan(&d.Body)
	if err == sql.ErrNoRows {
		return d, apperr.Validation("skill %q not found", name)
	}
	return d, err
}

func (s *SkillStore) Propose(ctx context.Context, agentID, name, body string) (ipc.SkillsProposeResult, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO skills (agent_id, name, body, accepted, created_at) VALUES (?, ?, ?, 0, CURRENT_TIMESTAMP)
		ON CONFLICT (agent_id, name) DO UPDATE SET body = excluded.body, accepted = 0, created_at = CURRENT_TIMESTAMP`,
		agentID, name, body)
	if err != nil {
		return ipc.SkillsProposeResult{}, err
	}
	return ipc.SkillsProposeResult{Accepted: false, Reason: "staged for human review"}, nil
}

var _ ipc.SkillsBackend = (*SkillStore)(nil)
