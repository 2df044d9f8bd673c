package ipc

import (
	"context"
	"time"

	"github.com/nextlevelbuilder/goclaw/internal/apperr"
	"github.com/nextlevelbuilder/goclaw/internal/scheduler"
	"github.com/nextlevelbuilder/goclaw/internal/taint"
)

type SchedulerCreatePayload struct {
	Name       string `json:"name"`
	Expression string `json:"expression"`
	Message    string `json:"message"`
	Channel    string `json:"channel,omitempty"`
	Target     string `json:"target,omitempty"`
}

type SchedulerCreateResult struct {
	ID string `json:"id"`
}

type SchedulerListResult struct {
	Jobs []SchedulerJobSummary `json:"jobs"`
}

type SchedulerJobSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Expression string `json:"expression"`
	Enabled    bool   `json:"enabled"`
}

type SchedulerDeletePayload struct {
	ID string `json:"id"`
}

type SchedulerRunAtPayload struct {
	Name    string    `json:"name"`
	RunAt   time.Time `json:"runAt"`
	Message string    `json:"message"`
	Channel string    `json:"channel,omitempty"`
	Target  string    `json:"target,omitempty"`
}

type SchedulerRunAtResult struct {
	ID string `json:"id"`
}

// SchedulerBackend persists cron jobs for one agent. It is distinct from
// scheduler.CronStore (which the CronRunner reads across all agents) —
// this is the narrower, session-scoped surface the sandbox is allowed to
// mutate directly.
type SchedulerBackend interface {
	Create(ctx context.Context, agentID string, job scheduler.CronJob) (string, error)
	List(ctx context.Context, agentID string) ([]scheduler.CronJob, error)
	Delete(ctx context.Context, agentID, id string) error
}

func RegisterSchedulerHandlers(s *Server, backend SchedulerBackend, agentIDOf func(sessionID string) string, trackers *taint.Registry) {
	s.Register(ActionSchedulerCreate, func(ctx context.Context, conn *Conn, msg *Message) (any, error) {
		var req SchedulerCreatePayload
		if err := DecodePayload(msg, &req); err != nil {
			return nil, err
		}
		if err := ValidateFreeText("message", req.Message, 8<<10); err != nil {
			return nil, err
		}
		job := scheduler.CronJob{
			AgentID:    agentIDOf(conn.SessionID),
			Name:       req.Name,
			Expression: req.Expression,
			Message:    req.Message,
			Enabled:    true,
			CreatedAt:  time.Now(),
		}
		if req.Channel != "" {
			job.Delivery = scheduler.Delivery{Mode: scheduler.DeliverChannel, Channel: req.Channel, Target: req.Target}
		}
		id, err := backend.Create(ctx, job.AgentID, job)
		if err != nil {
			return nil, err
		}
		trackers.Get(conn.SessionID).Record("scheduler.create:"+req.Expression, taint.TrustUser, 1)
		return SchedulerCreateResult{ID: id}, nil
	})

	s.Register(ActionSchedulerRunAt, func(ctx context.Context, conn *Conn, msg *Message) (any, error) {
		var req SchedulerRunAtPayload
		if err := DecodePayload(msg, &req); err != nil {
			return nil, err
		}
		if err := ValidateFreeText("message", req.Message, 8<<10); err != nil {
			return nil, err
		}
		if req.RunAt.IsZero() {
			return nil, apperr.Validation("runAt is required and must be non-zero")
		}
		job := scheduler.CronJob{
			AgentID:   agentIDOf(conn.SessionID),
			Name:      req.Name,
			RunAt:     req.RunAt,
			Message:   req.Message,
			Enabled:   true,
			CreatedAt: time.Now(),
		}
		if req.Channel != "" {
			job.Delivery = scheduler.Delivery{Mode: scheduler.DeliverChannel, Channel: req.Channel, Target: req.Target}
		}
		id, err := backend.Create(ctx, job.AgentID, job)
		if err != nil {
			return nil, err
		}
		trackers.Get(conn.SessionID).Record("scheduler.run_at:"+req.RunAt.Format(time.RFC3339), taint.TrustUser, 1)
		return SchedulerRunAtResult{ID: id}, nil
	})

	s.Register(ActionSchedulerList, func(ctx context.Context, conn *Conn, msg *Message) (any, error) {
		jobs, err := backend.List(ctx, agentIDOf(conn.SessionID))
		if err != nil {
			return nil, err
		}
		out := SchedulerListResult{Jobs: make([]SchedulerJobSummary, 0, len(jobs))}
		for _, j := range jobs {
			out.Jobs = append(out.Jobs, SchedulerJobSummary{ID: j.ID, Name: j.Name, Expression: j.Expression, Enabled: j.Enabled})
		}
		return out, nil
	})

	s.Register(ActionSchedulerDelete, func(ctx context.Context, conn *Conn, msg *Message) (any, error) {
		var req SchedulerDeletePayload
		if err := DecodePayload(msg, &req); err != nil {
			return nil, err
		}
		if err := backend.Delete(ctx, agentIDOf(conn.SessionID), req.ID); err != nil {
			return nil, err
		}
		trackers.Get(conn.SessionID).Record("scheduler.delete:"+req.ID, taint.TrustUser, 1)
		return struct{}{}, nil
	})
}
