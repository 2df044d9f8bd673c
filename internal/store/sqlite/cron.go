package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/nextlevelbuilder/goclaw/internal/ipc"
	"github.com/nextlevelbuilder/goclaw/internal/scheduler"
)

// CronStore persists scheduled jobs (recurring and one-off) and their run
// history. It satisfies both scheduler.CronStore (the CronRunner's
// cross-agent read path) and ipc.SchedulerBackend (the sandbox-facing,
// single-agent create/list/delete surface), so one value can back both
// RegisterSchedulerHandlers and NewCronRunner; no binary under cmd/ wires it.
type CronStore struct {
	db *DB
}

func NewCronStore(db *DB) *CronStore { return &CronStore{db: db} }

func (s *CronStore) Create(ctx context.Context, agentID string, job scheduler.CronJob) (string, error) {
	job.ID = newID()
	var runAt any
	if !job.RunAt.IsZero() {
		runAt = job.RunAt
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cron_jobs (id, agent_id, name, expression, run_at, message, delivery_mode, delivery_channel, delivery_target, enabled, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?)`,
		job.ID, agentID, job.Name, job.Expression, runAt, job.Message,
		string(job.Delivery.Mode), job.Delivery.Channel, job.Delivery.Target, time.Now())
	return job.ID, err
}

func (s *CronStore) List(ctx context.Context, agentID string) ([]scheduler.CronJob, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, expression, run_at, message, delivery_mode, delivery_channel, delivery_target, enabled, created_at, last_run_at
		FROM cron_jobs WHERE agent_id = ?`, agentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []scheduler.CronJob
	for rows.Next() {
		j, err := scanCronJob(rows, agentID)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

func (s *CronStore) Delete(ctx context.Context, agentID, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM cron_jobs WHERE agent_id = ? AND id = ?`, agentID, id)
	return err
}

// ListEnabled satisfies scheduler.CronStore: every enabled job across every
// agent, since a standalone build still only ever has the one agent this
// store was opened for, but CronRunner doesn't assume that.
func (s *CronStore) ListEnabled(ctx context.Context) ([]*scheduler.CronJob, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, expression, run_at, message, delivery_mode, delivery_channel, delivery_target, enabled, created_at, last_run_at, agent_id
		FROM cron_jobs WHERE enabled = 1`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*scheduler.CronJob
	for rows.Next() {
		var j scheduler.CronJob
		var runAt, lastRunAt sql.NullTime
		if err := rows.Scan(&j.ID, &j.Name, &j.Expression, &runAt, &j.Message,
			(*string)(&j.Delivery.Mode), &j.Delivery.Channel, &j.Delivery.Target, &j.Enabled, &j.CreatedAt, &lastRunAt, &j.AgentID); err != nil {
			return nil, err
		}
		j.RunAt = runAt.Time
		j.LastRunAt = lastRunAt.Time
		out = append(out, &j)
	}
	return out, rows.Err()
}

func (s *CronStore) RecordRun(ctx context.Context, jobID string, firedAt time.Time, result scheduler.CronJobResult) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cron_runs (job_id, fired_at, content, input_tokens, output_tokens, err) VALUES (?, ?, ?, ?, ?, ?)`,
		jobID, firedAt, result.Content, result.InputTokens, result.OutputTokens, result.Err)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `UPDATE cron_jobs SET last_run_at = ? WHERE id = ?`, firedAt, jobID)
	return err
}

func scanCronJob(rows *sql.Rows, agentID string) (scheduler.CronJob, error) {
	var j scheduler.CronJob
	var runAt, lastRunAt sql.NullTime
	if err := rows.Scan(&j.ID, &j.Name, &j.Expression, &runAt, &j.Message,
		(*string)(&j.Delivery.Mode), &j.Delivery.Channel, &j.Delivery.Target, &j.Enabled, &j.CreatedAt, &lastRunAt); err != nil {
		return j, err
	}
	j.AgentID = agentID
	j.RunAt = runAt.Time
	j.LastRunAt = lastRunAt.Time
	return j, nil
}

var _ scheduler.CronStore = (*CronStore)(nil)
var _ ipc.SchedulerBackend = (*CronStore)(nil)
