// Package runner is the process that runs inside the sandbox boundary: it
// reads one turn payload from stdin, drives it through internal/agent.Loop,
// and writes the final response to stdout. It is the internal/runner half
// of the host/sandbox split documented in internal/router.runTurn's
// comment and spec.md §4.5 — router owns the host side (spawn, write,
// read), this package owns what runs on the other end of that pipe.
//
// Grounded on the teacher's cmd/agent_chat_standalone.go, which wires the
// same Provider/Registry/Loop trio for a one-shot CLI invocation; this
// package is that wiring made reusable by cmd/agentrun, reading its single
// turn from stdin instead of os.Args.
package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/nextlevelbuilder/goclaw/internal/agent"
	"github.com/nextlevelbuilder/goclaw/internal/bus"
	"github.com/nextlevelbuilder/goclaw/internal/providers"
	"github.com/nextlevelbuilder/goclaw/internal/sessions"
	"github.com/nextlevelbuilder/goclaw/internal/skills"
	"github.com/nextlevelbuilder/goclaw/internal/store"
	"github.com/nextlevelbuilder/goclaw/internal/store/file"
	"github.com/nextlevelbuilder/goclaw/internal/tools"
)

// sessionStoreSetter and messageBusSetter match the optional setter methods
// internal/tools' sessions_*.go tools expose (SessionsListTool,
// SessionStatusTool, SessionsHistoryTool, SessionsSendTool) — Run wires
// them in after building the ephemeral session store and event bus, since
// cmd/agentrun constructs the tool registry before either exists.
type sessionStoreSetter interface {
	SetSessionStore(store.SessionStore)
}

type messageBusSetter interface {
	SetMessageBus(*bus.MessageBus)
}

// turnPayload mirrors internal/router's agentTurnPayload exactly — the two
// packages sit on opposite ends of the same pipe and must agree on the
// wire shape byte for byte.
type turnPayload struct {
	Message    string              `json:"message"`
	History    []providers.Message `json:"history"`
	TaintState json.RawMessage     `json:"taintState,omitempty"`
}

// Config wires everything a single turn needs. cmd/agentrun builds one of
// these from flags/env before calling Run; the fields that would vary
// per-agent in managed mode (owner IDs, skills, tool policy) are supplied
// here rather than hardcoded so the same runner binary serves any agent
// config the host hands it.
type Config struct {
	AgentID       string
	Provider      providers.Provider
	Model         string
	ContextWindow int
	MaxIterations int
	Workspace     string
	SessionKey    string
	Channel       string
	ChatID        string
	PeerKind      string
	SenderID      string
	OwnerIDs      []string
	HasMemory     bool
	ThinkingLevel string

	Tools        *tools.Registry
	ToolPolicy   *tools.PolicyEngine
	SkillsLoader *skills.Loader
}

// Run reads exactly one turnPayload from in, runs it through a fresh
// agent.Loop seeded from cfg, and writes the response content to out.
// Matches internal/router.runTurn: one JSON write, stdin close, one
// blocking read of the full response — no framing.
func Run(ctx context.Context, cfg Config, in io.Reader, out io.Writer) error {
	raw, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("runner: read stdin: %w", err)
	}

	var payload turnPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("runner: decode turn payload: %w", err)
	}

	mgr := sessions.NewManager("") // ephemeral: no on-disk storage, seeded below
	sessionStore := file.NewFileSessionStore(mgr)
	sessionStore.GetOrCreate(cfg.SessionKey)
	for _, msg := range payload.History {
		sessionStore.AddMessage(cfg.SessionKey, msg)
	}

	msgBus := bus.NewMessageBus(16)
	if cfg.Tools != nil {
		for _, name := range cfg.Tools.List() {
			tool, _ := cfg.Tools.Get(name)
			if s, ok := tool.(sessionStoreSetter); ok {
				s.SetSessionStore(sessionStore)
			}
			if b, ok := tool.(messageBusSetter); ok {
				b.SetMessageBus(msgBus)
			}
		}
	}

	loop := agent.NewLoop(agent.LoopConfig{
		ID:            cfg.AgentID,
		Provider:      cfg.Provider,
		Model:         cfg.Model,
		ContextWindow: cfg.ContextWindow,
		MaxIterations: cfg.MaxIterations,
		Workspace:     cfg.Workspace,
		Bus:           msgBus,
		Sessions:      sessionStore,
		Tools:         cfg.Tools,
		ToolPolicy:    cfg.ToolPolicy,
		OwnerIDs:      cfg.OwnerIDs,
		SkillsLoader:  cfg.SkillsLoader,
		HasMemory:     cfg.HasMemory,
		ThinkingLevel: cfg.ThinkingLevel,
		// Sandboxed by construction: this process only exists inside a
		// sandbox.Instance, so the system prompt should always say so.
		SandboxEnabled:         true,
		SandboxContainerDir:    cfg.Workspace,
		SandboxWorkspaceAccess: "rw",
	})

	result, err := loop.Run(ctx, agent.RunRequest{
		SessionKey: cfg.SessionKey,
		Message:    payload.Message,
		Channel:    cfg.Channel,
		ChatID:     cfg.ChatID,
		PeerKind:   cfg.PeerKind,
		SenderID:   cfg.SenderID,
		RunID:      cfg.SessionKey,
	})
	if err != nil {
		return fmt.Errorf("runner: agent turn: %w", err)
	}

	if _, err := io.WriteString(out, result.Content); err != nil {
		return fmt.Errorf("runner: write response: %w", err)
	}
	return nil
}
