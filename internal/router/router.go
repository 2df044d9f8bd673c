// Package router implements the host-side request pipeline: inbound scan,
// canary mint, context/workspace prep, sandbox spawn, outbound scan, and
// persistence, for one inbound user message per spec.md §4.6. It is
// grounded on the teacher's internal/gateway/server.go connection lifecycle
// (build once, serve many) and internal/channels/manager.go's multi-channel
// fan-in, generalized from a multi-tenant WebSocket gateway down to a
// single-agent personal router.
package router

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/nextlevelbuilder/goclaw/internal/apperr"
	"github.com/nextlevelbuilder/goclaw/internal/providers"
	"github.com/nextlevelbuilder/goclaw/internal/sandbox"
	"github.com/nextlevelbuilder/goclaw/internal/store"
)

// Inbound is one inbound user message, already normalized by a channel
// adapter (internal/channels.Channel.HandleMessage).
type Inbound struct {
	Provider  string // channel name, e.g. "telegram"
	MessageID string // platform message ID, for deduplication
	SessionKey string
	SenderID  string
	UserID    string
	Content   string
	Media     []string
}

// Outbound is the router's result for one turn.
type Outbound struct {
	Content   string
	Redacted  bool
	Blocked   bool
	BlockKind string // apperr.Kind string, when Blocked
}

// WorkspacePreparer creates/refreshes the on-disk workspace directory for a
// session (ephemeral or persistent) and copies the current skill set into
// it, before every sandbox spawn — per spec.md §4.6 step 4.
type WorkspacePreparer interface {
	Prepare(ctx context.Context, sessionKey string) (workspaceDir string, err error)
}

// agentTurnPayload is the stdin contract with internal/runner, matching
// spec.md §4.5's documented input shape.
type agentTurnPayload struct {
	Message   string               `json:"message"`
	History   []providers.Message  `json:"history"`
	TaintState json.RawMessage     `json:"taintState,omitempty"`
}

// Router drives one turn through the full host-side pipeline.
type Router struct {
	sandbox    sandbox.Manager
	sandboxCfg sandbox.Config
	agentBin   string

	sessions  store.SessionStore
	workspace WorkspacePreparer

	dedup       *Dedup
	adminIDs    AdminIDsFunc
	spawnTimeout time.Duration

	log *slog.Logger
}

// Config configures a new Router.
type Config struct {
	Sandbox      sandbox.Manager
	SandboxCfg   sandbox.Config
	AgentBinary  string
	Sessions     store.SessionStore
	Workspace    WorkspacePreparer
	DedupTTL     time.Duration
	AdminIDs     AdminIDsFunc
	SpawnTimeout time.Duration
	Log          *slog.Logger
}

// New builds a Router from cfg, applying the teacher's usual "zero-value
// config gets sane defaults" pattern (internal/agent.NewLoop does the same
// for MaxIterations/ContextWindow).
func New(cfg Config) *Router {
	if cfg.DedupTTL <= 0 {
		cfg.DedupTTL = 5 * time.Minute
	}
	if cfg.SpawnTimeout <= 0 {
		cfg.SpawnTimeout = 60 * time.Second
	}
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	return &Router{
		sandbox:      cfg.Sandbox,
		sandboxCfg:   cfg.SandboxCfg,
		agentBin:     cfg.AgentBinary,
		sessions:     cfg.Sessions,
		workspace:    cfg.Workspace,
		dedup:        NewDedup(cfg.DedupTTL),
		adminIDs:     cfg.AdminIDs,
		spawnTimeout: cfg.SpawnTimeout,
		log:          log,
	}
}

// Handle runs one inbound message through the full pipeline.
func (r *Router) Handle(ctx context.Context, in Inbound) (Outbound, error) {
	if r.dedup.Seen(in.Provider, in.MessageID) {
		r.log.Debug("duplicate delivery suppressed", "provider", in.Provider, "message_id", in.MessageID)
		return Outbound{}, nil
	}

	workspaceDir, err := r.workspace.Prepare(ctx, in.SessionKey)
	if err != nil {
		return Outbound{}, apperr.Fatal(err, "workspace prep failed")
	}

	if gate := CheckBootstrapGate(workspaceDir, in.SenderID, r.adminIDs); !gate.Allowed {
		r.log.Info("bootstrap gate denied sender", "sender", in.SenderID, "session", in.SessionKey)
		return Outbound{Content: gate.Reason, Blocked: true, BlockKind: "policy"}, nil
	}

	verdict := ScanInbound(in.Content)
	if verdict == VerdictBlock {
		r.log.Warn("inbound message blocked by scan", "session", in.SessionKey)
		return Outbound{Blocked: true, BlockKind: "validation"}, nil
	}

	canary, err := MintCanary()
	if err != nil {
		return Outbound{}, apperr.Fatal(err, "canary mint failed")
	}

	r.sessions.GetOrCreate(in.SessionKey)
	history := r.sessions.GetHistory(in.SessionKey)

	spawnCtx, cancel := context.WithTimeout(ctx, r.spawnTimeout)
	defer cancel()

	inst, err := r.sandbox.GetOrCreate(spawnCtx, in.SessionKey, r.sandboxCfg, r.agentBin, []string{"--workspace", workspaceDir})
	if err != nil {
		return Outbound{}, apperr.Provider(err, "sandbox spawn failed")
	}

	content, err := r.runTurn(spawnCtx, inst, in.Content, history)
	if err != nil {
		return Outbound{}, apperr.Provider(err, "agent turn failed")
	}

	outVerdict := ScanOutbound(content, canary)
	if outVerdict.CanaryLeaked {
		r.log.Error("canary leak detected, session compromised", "session", in.SessionKey)
		r.sessions.AddMessage(in.SessionKey, providers.Message{Role: "user", Content: in.Content})
		r.sessions.AddMessage(in.SessionKey, providers.Message{Role: "assistant", Content: outVerdict.Redacted})
		r.sessions.Save(in.SessionKey)
		return Outbound{Content: outVerdict.Redacted, Redacted: true}, nil
	}

	r.sessions.AddMessage(in.SessionKey, providers.Message{Role: "user", Content: in.Content})
	r.sessions.AddMessage(in.SessionKey, providers.Message{Role: "assistant", Content: content})
	if err := r.sessions.Save(in.SessionKey); err != nil {
		r.log.Warn("session save failed", "session", in.SessionKey, "error", err)
	}

	return Outbound{Content: content}, nil
}

// runTurn writes the turn payload to the sandbox instance's stdin, closes
// it to signal end of input, and collects the full stdout. Spec.md §5
// allows "one agent process per request" as the baseline concurrency model
// (a streaming/parallel-pool refinement is allowed but not required here).
//
// This is the single-shot form: it waits for the whole response instead of
// forwarding text deltas as they arrive. internal/runner writes only the
// final response text, unframed, so this collects raw bytes and treats
// them as the final content.
func (r *Router) runTurn(ctx context.Context, inst sandbox.Instance, message string, history []providers.Message) (string, error) {
	payload, err := json.Marshal(agentTurnPayload{Message: message, History: history})
	if err != nil {
		return "", err
	}

	stdin := inst.Stdin()
	if _, err := stdin.Write(payload); err != nil {
		return "", fmt.Errorf("write turn payload: %w", err)
	}
	if err := stdin.Close(); err != nil {
		return "", fmt.Errorf("close stdin: %w", err)
	}

	out, err := io.ReadAll(inst.Stdout())
	if err != nil {
		return "", fmt.Errorf("read agent output: %w", err)
	}
	return string(out), nil
}
