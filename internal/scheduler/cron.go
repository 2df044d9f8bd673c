package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/adhocore/gronx"

	"github.com/nextlevelbuilder/goclaw/internal/sessions"
)

// CronStore persists CronJob definitions and records fire history.
type CronStore interface {
	ListEnabled(ctx context.Context) ([]*CronJob, error)
	RecordRun(ctx context.Context, jobID string, firedAt time.Time, result CronJobResult) error
}

// DeliveryPublisher sends a fired job's result to its resolved Delivery
// target. internal/bus.MessageBus implements the channel-publishing half
// of this.
type DeliveryPublisher interface {
	PublishDelivery(ctx context.Context, d Delivery, content string) error
}

// CronRunner ticks once a minute, evaluates every enabled CronJob's
// expression against the current minute, and fires matches through the
// scheduler's LaneCron lane.
//
// Duplicate firing (the same job matching the same minute twice — e.g.
// because the tick loop woke up slightly early and then again on the
// boundary) is suppressed with a minute-key dedup set keyed
// "{jobID}:{YYYY-MM-DDTHH:MM}", not by checking whether the delivery
// target already has the message: the module's own dedup primitive
// (internal/router's (provider, messageId) TTL set in dedup.go) is a
// "have I seen this key before" set, and a minute key is
// the natural analogue for a job firing rather than an inbound message
// arriving.
type CronRunner struct {
	store       CronStore
	sched       *Scheduler
	publisher   DeliveryPublisher
	lastChannel LastChannelLookup
	retry       RetryConfig
	log         *slog.Logger

	mu   sync.Mutex
	seen map[string]struct{} // minute-key dedup set; each tick drops earlier minutes' keys
}

func NewCronRunner(store CronStore, sched *Scheduler, publisher DeliveryPublisher, lastChannel LastChannelLookup, retry RetryConfig, log *slog.Logger) *CronRunner {
	if log == nil {
		log = slog.Default()
	}
	return &CronRunner{store: store, sched: sched, publisher: publisher, lastChannel: lastChannel, retry: retry, log: log, seen: make(map[string]struct{})}
}

// Run blocks, ticking once a minute, until ctx is cancelled.
func (r *CronRunner) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	r.tick(ctx, time.Now())
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			r.tick(ctx, now)
		}
	}
}

func (r *CronRunner) tick(ctx context.Context, now time.Time) {
	jobs, err := r.store.ListEnabled(ctx)
	if err != nil {
		r.log.Error("cron: list enabled jobs", "err", err)
		return
	}

	minuteKey := now.Format("2006-01-02T15:04")
	r.mu.Lock()
	// Drop keys from earlier minutes only, so a second tick within the same
	// minute still sees the jobs the first one fired.
	for k := range r.seen {
		if k[len(k)-len(minuteKey):] != minuteKey {
			delete(r.seen, k)
		}
	}
	r.mu.Unlock()

	for _, job := range jobs {
		if !job.Enabled {
			continue
		}

		var due bool
		if job.Expression == "" {
			// One-off job: fires once, at or after RunAt, and never again.
			// RecordRun sets LastRunAt but leaves the job enabled (the
			// sqlite store's ListEnabled keeps returning it), so LastRunAt
			// is what stops a second firing.
			due = !job.RunAt.IsZero() && !now.Before(job.RunAt) && job.LastRunAt.IsZero()
		} else {
			var err error
			due, err = gronx.IsDue(job.Expression, now)
			if err != nil {
				r.log.Warn("cron: bad expression", "job", job.ID, "expr", job.Expression, "err", err)
				continue
			}
		}
		if !due {
			continue
		}

		key := job.ID + ":" + minuteKey
		r.mu.Lock()
		_, dup := r.seen[key]
		r.seen[key] = struct{}{}
		r.mu.Unlock()
		if dup {
			continue
		}

		go r.fire(ctx, job, now)
	}
}

func (r *CronRunner) fire(ctx context.Context, job *CronJob, firedAt time.Time) {
	sessionKey := sessions.BuildCronSessionKey(job.AgentID, job.ID, fmt.Sprintf("%d", firedAt.Unix()))

	var outcome Outcome
	attempt := 0
	for {
		attempt++
		outCh := r.sched.Schedule(ctx, LaneCron, RunRequest{
			SessionKey: sessionKey,
			Message:    job.Message,
			Channel:    "cron",
			RunID:      "cron:" + job.ID,
		})
		outcome = <-outCh
		if outcome.Err == nil || attempt > r.retry.MaxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(r.retry.Backoff(attempt)):
		}
	}

	result := CronJobResult{
		Content:      outcome.Result.Content,
		InputTokens:  outcome.Result.PromptTokens,
		OutputTokens: outcome.Result.OutputTokens,
	}
	if outcome.Err != nil {
		result.Err = outcome.Err.Error()
		r.log.Error("cron: job failed", "job", job.ID, "err", outcome.Err)
	} else if job.Delivery.Mode == DeliverChannel {
		// Delivery target is resolved from the job's own persisted config,
		// never from anything the model said during the run; ResolveDelivery
		// only expands the "last used channel" sentinel, it never lets the
		// run itself pick a destination.
		delivery, err := ResolveDelivery(job.Delivery, job.AgentID, r.lastChannel)
		if err != nil {
			r.log.Error("cron: resolve delivery", "job", job.ID, "err", err)
		} else if err := r.publisher.PublishDelivery(ctx, delivery, outcome.Result.Content); err != nil {
			r.log.Error("cron: delivery failed", "job", job.ID, "err", err)
		}
	}

	if err := r.store.RecordRun(ctx, job.ID, firedAt, result); err != nil {
		r.log.Error("cron: record run", "job", job.ID, "err", err)
	}
}
