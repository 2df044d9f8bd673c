package scheduler

import "time"

// Lane labels where a scheduled run came from. The Scheduler orders and
// isolates runs by session key only: runs of different lanes on the same
// session share one queue and wait for each other.
type Lane string

const (
	LaneMain     Lane = "main"
	LaneCron     Lane = "cron"
	LaneSubagent Lane = "subagent"
)

// RunRequest is handed to the agent runner for a single turn.
type RunRequest struct {
	SessionKey string
	Message    string
	Channel    string
	ChatID     string
	UserID     string
	RunID      string
	Stream     bool
}

// RunResult is what the agent runner produced for a RunRequest.
type RunResult struct {
	Content      string
	PromptTokens int
	OutputTokens int
}

// Outcome is delivered on the channel returned by Scheduler.Schedule.
type Outcome struct {
	Result RunResult
	Err    error
}

// DeliveryMode names where a scheduled job's output should be sent.
type DeliveryMode string

const (
	DeliverNone    DeliveryMode = "none"    // discard; e.g. a maintenance job with no user-facing output
	DeliverChannel DeliveryMode = "channel" // send to a channel+target resolved below
)

// LastUsedTarget is the Delivery.Target sentinel meaning "resolve to
// whatever channel/chat this agent last exchanged a message on," rather
// than a fixed chat ID pinned at job-creation time. ResolveDelivery turns
// this into a concrete Channel/Target pair at fire time.
const LastUsedTarget = "last"

// Delivery describes where to send a fired job's result. It is always
// resolved from the job's own persisted config at fire time — never from
// anything the agent emits during the run, so a prompt-injected agent
// cannot redirect delivery to an attacker-controlled destination. Target
// may be the literal chat/peer ID, or the LastUsedTarget sentinel, which
// ResolveDelivery expands just before publishing.
type Delivery struct {
	Mode    DeliveryMode
	Channel string
	Target  string // chat ID / peer ID within Channel, or LastUsedTarget
}

// CronJob is a persisted scheduled job. A job is either recurring
// (Expression set, RunAt zero) or one-off (RunAt set, Expression empty) —
// never both; CronRunner.tick fires a RunAt-only job once, at or after
// RunAt, and skips it afterwards because LastRunAt is set. The job stays
// Enabled.
type CronJob struct {
	ID         string
	AgentID    string
	Name       string
	Expression string    // five-field cron expression; empty for a one-off job
	RunAt      time.Time // fire time for a one-off job; zero for a recurring job
	Message    string
	Delivery   Delivery
	Enabled    bool
	CreatedAt  time.Time
	LastRunAt  time.Time
}

// CronJobResult is what a fired CronJob produced, for audit/history display.
type CronJobResult struct {
	Content      string
	InputTokens  int
	OutputTokens int
	Err          string
}
