// Package config loads and resolves the host process's configuration:
// provider credentials are never read from this file (env/secrets store
// only — see internal/secrets), everything else — agent defaults, channel
// bindings, the taint/security profile, sandbox parameters, scheduler
// retry policy — lives in a single YAML document under ~/.ax/config.yaml.
package config

import (
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nextlevelbuilder/goclaw/internal/sandbox"
	"github.com/nextlevelbuilder/goclaw/internal/scheduler"
)

// FlexibleStringSlice accepts both a YAML sequence of strings and of bare
// scalars (numbers get stringified) — channel allowlists are frequently
// hand-edited and numeric chat IDs are easy to leave unquoted.
type FlexibleStringSlice []string

func (f *FlexibleStringSlice) UnmarshalYAML(node *yaml.Node) error {
	var ss []string
	if err := node.Decode(&ss); err == nil {
		*f = ss
		return nil
	}
	var raw []yaml.Node
	if err := node.Decode(&raw); err != nil {
		return err
	}
	result := make([]string, 0, len(raw))
	for _, n := range raw {
		result = append(result, n.Value)
	}
	*f = result
	return nil
}

// Config is the root configuration for the host process.
type Config struct {
	Agents    AgentsConfig    `yaml:"agents"`
	Channels  ChannelsConfig  `yaml:"channels"`
	Providers ProvidersConfig `yaml:"providers"`
	LocalAPI  LocalAPIConfig  `yaml:"local_api"`
	Tools     ToolsConfig     `yaml:"tools"`
	Sessions  SessionsConfig  `yaml:"sessions"`
	Security  SecurityConfig  `yaml:"security"`
	Proxy     ProxyConfig     `yaml:"proxy"`
	Database  DatabaseConfig  `yaml:"database,omitempty"`
	Cron      CronConfig      `yaml:"cron,omitempty"`
	Telemetry TelemetryConfig `yaml:"telemetry,omitempty"`
	Tailscale TailscaleConfig `yaml:"tailscale,omitempty"`
	Bindings  []AgentBinding  `yaml:"bindings,omitempty"`
	mu        sync.RWMutex
}

// SecurityConfig governs the taint-tracking/budget gate and the bootstrap
// admin gate described in the platform's §4.2 and §4.6.
type SecurityConfig struct {
	// AdminIDs are channel-qualified sender IDs ("telegram:386246614")
	// allowed to interact before SOUL.md exists (bootstrap gate).
	AdminIDs FlexibleStringSlice `yaml:"admin_ids,omitempty"`
	// TaintThreshold is the default tainted/total token ratio above which
	// a session's sensitive-action budget is considered exhausted.
	TaintThreshold float64 `yaml:"taint_threshold,omitempty"` // default 0.4
	// InjectionAction controls what the inbound/outbound scanner does on
	// a detected prompt-injection or canary-leak match: "log", "warn"
	// (default), "block".
	InjectionAction string `yaml:"injection_action,omitempty"`
	// CanaryEnabled toggles canary-token minting for injection-leak detection.
	CanaryEnabled *bool `yaml:"canary_enabled,omitempty"` // default true
}

func (s SecurityConfig) CanaryOn() bool { return s.CanaryEnabled == nil || *s.CanaryEnabled }

// ProxyConfig configures the host-side credential-injecting proxy and the
// sandbox-side TCP→UDS bridge (§4.3).
type ProxyConfig struct {
	// SocketPath is the Unix domain socket the proxy listens on, bind-mounted
	// read/write into the sandbox. Default: ~/.ax/run/proxy.sock.
	SocketPath string `yaml:"socket_path,omitempty"`
	// BridgeListenAddr is the loopback TCP address the in-sandbox bridge
	// binds to so SDKs that can't dial a unix socket still work.
	BridgeListenAddr string `yaml:"bridge_listen_addr,omitempty"` // default "127.0.0.1:8089"
	// OAuthRefreshMargin, in seconds, before expiry, triggers an eager
	// token refresh. Default 300 (5 minutes).
	OAuthRefreshMarginSec int `yaml:"oauth_refresh_margin_sec,omitempty"`
}

// TailscaleConfig configures the optional Tailscale tsnet listener.
// Requires building with -tags tsnet. Auth key from env only (never persisted).
type TailscaleConfig struct {
	Hostname  string `yaml:"hostname"`
	StateDir  string `yaml:"state_dir,omitempty"`
	AuthKey   string `yaml:"-"` // from env AX_TSNET_AUTH_KEY only
	Ephemeral bool   `yaml:"ephemeral,omitempty"`
	EnableTLS bool   `yaml:"enable_tls,omitempty"`
}

// DatabaseConfig configures the embedded SQLite store and, optionally, a
// managed Postgres audit sink.
type DatabaseConfig struct {
	SQLitePath  string `yaml:"sqlite_path,omitempty"` // default ~/.ax/ax.db
	PostgresDSN string `yaml:"-"`                     // from env AX_POSTGRES_DSN only; audit sink only, never session state
}

// HasAuditSink reports whether a managed Postgres audit sink is configured.
func (c *Config) HasAuditSink() bool { return c.Database.PostgresDSN != "" }

// AgentBinding maps a channel/peer pattern to a specific agent.
type AgentBinding struct {
	AgentID string       `yaml:"agent_id"`
	Match   BindingMatch `yaml:"match"`
}

// BindingMatch specifies what messages this binding applies to.
type BindingMatch struct {
	Channel   string       `yaml:"channel"`
	AccountID string       `yaml:"account_id,omitempty"`
	Peer      *BindingPeer `yaml:"peer,omitempty"`
	GuildID   string       `yaml:"guild_id,omitempty"`
}

// BindingPeer specifies a specific chat target.
type BindingPeer struct {
	Kind string `yaml:"kind"` // "direct" or "group"
	ID   string `yaml:"id"`
}

// AgentsConfig contains agent defaults and per-agent overrides.
type AgentsConfig struct {
	Defaults AgentDefaults        `yaml:"defaults"`
	List     map[string]AgentSpec `yaml:"list,omitempty"`
}

// AgentDefaults are default settings for all agents.
type AgentDefaults struct {
	Workspace           string                `yaml:"workspace"`
	RestrictToWorkspace bool                  `yaml:"restrict_to_workspace"`
	Provider            string                `yaml:"provider"`
	Model               string                `yaml:"model"`
	MaxTokens           int                   `yaml:"max_tokens"`
	Temperature         float64               `yaml:"temperature"`
	MaxToolIterations   int                   `yaml:"max_tool_iterations"`
	ContextWindow       int                   `yaml:"context_window"`
	AgentType           string                `yaml:"agent_type,omitempty"`
	Subagents           *SubagentsConfig      `yaml:"subagents,omitempty"`
	Sandbox             *SandboxConfig        `yaml:"sandbox,omitempty"`
	Memory              *MemoryConfig         `yaml:"memory,omitempty"`
	Compaction          *CompactionConfig     `yaml:"compaction,omitempty"`
	ContextPruning      *ContextPruningConfig `yaml:"context_pruning,omitempty"`
	Heartbeat           *HeartbeatConfig      `yaml:"heartbeat,omitempty"`

	BootstrapMaxChars      int `yaml:"bootstrap_max_chars,omitempty"`
	BootstrapTotalMaxChars int `yaml:"bootstrap_total_max_chars,omitempty"`
}

// CompactionConfig configures session compaction behaviour.
type CompactionConfig struct {
	ReserveTokensFloor int                `yaml:"reserve_tokens_floor,omitempty"`
	MaxHistoryShare    float64            `yaml:"max_history_share,omitempty"`
	MinMessages        int                `yaml:"min_messages,omitempty"`
	KeepLastMessages   int                `yaml:"keep_last_messages,omitempty"`
	MemoryFlush        *MemoryFlushConfig `yaml:"memory_flush,omitempty"`
}

// MemoryFlushConfig configures the pre-compaction memory flush.
type MemoryFlushConfig struct {
	Enabled             *bool  `yaml:"enabled,omitempty"`
	SoftThresholdTokens int    `yaml:"soft_threshold_tokens,omitempty"`
	Prompt              string `yaml:"prompt,omitempty"`
	SystemPrompt        string `yaml:"system_prompt,omitempty"`
}

// ContextPruningConfig configures in-memory context pruning of old tool results.
type ContextPruningConfig struct {
	Mode                 string                   `yaml:"mode,omitempty"`
	KeepLastAssistants   int                      `yaml:"keep_last_assistants,omitempty"`
	SoftTrimRatio        float64                  `yaml:"soft_trim_ratio,omitempty"`
	HardClearRatio       float64                  `yaml:"hard_clear_ratio,omitempty"`
	MinPrunableToolChars int                      `yaml:"min_prunable_tool_chars,omitempty"`
	SoftTrim             *ContextPruningSoftTrim  `yaml:"soft_trim,omitempty"`
	HardClear            *ContextPruningHardClear `yaml:"hard_clear,omitempty"`
}

type ContextPruningSoftTrim struct {
	MaxChars  int `yaml:"max_chars,omitempty"`
	HeadChars int `yaml:"head_chars,omitempty"`
	TailChars int `yaml:"tail_chars,omitempty"`
}

type ContextPruningHardClear struct {
	Enabled     *bool  `yaml:"enabled,omitempty"`
	Placeholder string `yaml:"placeholder,omitempty"`
}

// HeartbeatConfig configures periodic agent heartbeats.
type HeartbeatConfig struct {
	Every       string             `yaml:"every,omitempty"`
	ActiveHours *ActiveHoursConfig `yaml:"active_hours,omitempty"`
	Model       string             `yaml:"model,omitempty"`
	Session     string             `yaml:"session,omitempty"`
	Target      string             `yaml:"target,omitempty"`
	To          string             `yaml:"to,omitempty"`
	Prompt      string             `yaml:"prompt,omitempty"`
	AckMaxChars int                `yaml:"ack_max_chars,omitempty"`
}

// ActiveHoursConfig restricts heartbeats to a time window.
type ActiveHoursConfig struct {
	Start    string `yaml:"start,omitempty"`
	End      string `yaml:"end,omitempty"`
	Timezone string `yaml:"timezone,omitempty"`
}

// MemoryConfig configures the agent memory system.
type MemoryConfig struct {
	Enabled           *bool   `yaml:"enabled,omitempty"`
	EmbeddingProvider string  `yaml:"embedding_provider,omitempty"`
	EmbeddingModel    string  `yaml:"embedding_model,omitempty"`
	EmbeddingAPIBase  string  `yaml:"embedding_api_base,omitempty"`
	MaxResults        int     `yaml:"max_results,omitempty"`
	MaxChunkLen       int     `yaml:"max_chunk_len,omitempty"`
	VectorWeight      float64 `yaml:"vector_weight,omitempty"`
	TextWeight        float64 `yaml:"text_weight,omitempty"`
	MinScore          float64 `yaml:"min_score,omitempty"`
}

// SandboxConfig configures the agent-process sandbox launcher (§4.5/§4.6).
type SandboxConfig struct {
	Backend         string            `yaml:"backend,omitempty"` // "subprocess" (default), "seatbelt", "nsjail", "docker"
	Mode            string            `yaml:"mode,omitempty"`    // "off" (default), "non-main", "all"
	Image           string            `yaml:"image,omitempty"`
	WorkspaceAccess string            `yaml:"workspace_access,omitempty"` // "none", "ro", "rw" (default)
	Scope           string            `yaml:"scope,omitempty"`            // "session" (default), "agent", "shared"
	MemoryMB        int               `yaml:"memory_mb,omitempty"`
	CPUs            float64           `yaml:"cpus,omitempty"`
	TimeoutSec      int               `yaml:"timeout_sec,omitempty"`
	NetworkEnabled  bool              `yaml:"network_enabled,omitempty"`
	ReadOnlyRoot    *bool             `yaml:"read_only_root,omitempty"`
	Env             map[string]string `yaml:"env,omitempty"`
	User            string            `yaml:"user,omitempty"`
	TmpfsSizeMB     int               `yaml:"tmpfs_size_mb,omitempty"`
	MaxOutputBytes  int               `yaml:"max_output_bytes,omitempty"`
}

// ToSandboxConfig converts config.SandboxConfig → sandbox.Config with defaults applied.
func (sc *SandboxConfig) ToSandboxConfig() sandbox.Config {
	cfg := sandbox.DefaultConfig()
	if sc == nil {
		return cfg
	}

	if sc.Backend != "" {
		cfg.Backend = sc.Backend
	}
	switch sc.Mode {
	case "all":
		cfg.Mode = sandbox.ModeAll
	case "non-main":
		cfg.Mode = sandbox.ModeNonMain
	case "off", "":
		cfg.Mode = sandbox.ModeOff
	}
	if sc.Image != "" {
		cfg.Image = sc.Image
	}
	switch sc.WorkspaceAccess {
	case "none":
		cfg.WorkspaceAccess = sandbox.AccessNone
	case "ro":
		cfg.WorkspaceAccess = sandbox.AccessRO
	case "rw":
		cfg.WorkspaceAccess = sandbox.AccessRW
	}
	switch sc.Scope {
	case "agent":
		cfg.Scope = sandbox.ScopeAgent
	case "shared":
		cfg.Scope = sandbox.ScopeShared
	case "session":
		cfg.Scope = sandbox.ScopeSession
	}
	if sc.MemoryMB > 0 {
		cfg.MemoryMB = sc.MemoryMB
	}
	if sc.CPUs > 0 {
		cfg.CPUs = sc.CPUs
	}
	if sc.TimeoutSec > 0 {
		cfg.TimeoutSec = sc.TimeoutSec
	}
	cfg.NetworkEnabled = sc.NetworkEnabled
	if sc.ReadOnlyRoot != nil {
		cfg.ReadOnlyRoot = *sc.ReadOnlyRoot
	}
	if sc.User != "" {
		cfg.User = sc.User
	}
	if sc.TmpfsSizeMB > 0 {
		cfg.TmpfsSizeMB = sc.TmpfsSizeMB
	}
	if sc.MaxOutputBytes > 0 {
		cfg.MaxOutputBytes = sc.MaxOutputBytes
	}
	if len(sc.Env) > 0 {
		cfg.Env = sc.Env
	}
	return cfg
}

// TelemetryConfig configures OpenTelemetry tracing export.
type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled,omitempty"`
	Endpoint    string `yaml:"endpoint,omitempty"`
	Protocol    string `yaml:"protocol,omitempty"` // "grpc" (default) or "http"
	ServiceName string `yaml:"service_name,omitempty"`
	Insecure    bool   `yaml:"insecure,omitempty"`
}

// CronConfig configures the scheduler's retry policy.
type CronConfig struct {
	MaxRetries     int    `yaml:"max_retries,omitempty"`
	RetryBaseDelay string `yaml:"retry_base_delay,omitempty"`
	RetryMaxDelay  string `yaml:"retry_max_delay,omitempty"`
}

// ToRetryConfig converts CronConfig to scheduler.RetryConfig with defaults applied.
func (cc CronConfig) ToRetryConfig() scheduler.RetryConfig {
	cfg := scheduler.DefaultRetryConfig()
	if cc.MaxRetries > 0 {
		cfg.MaxRetries = cc.MaxRetries
	}
	if d, err := time.ParseDuration(cc.RetryBaseDelay); err == nil && d > 0 {
		cfg.BaseDelay = d
	}
	if d, err := time.ParseDuration(cc.RetryMaxDelay); err == nil && d > 0 {
		cfg.MaxDelay = d
	}
	return cfg
}

// SubagentsConfig configures the subagent/delegation system.
type SubagentsConfig struct {
	MaxConcurrent       int    `yaml:"max_concurrent,omitempty"`
	MaxSpawnDepth       int    `yaml:"max_spawn_depth,omitempty"`
	MaxChildrenPerAgent int    `yaml:"max_children_per_agent,omitempty"`
	ArchiveAfterMinutes int    `yaml:"archive_after_minutes,omitempty"`
	MaxDelegationLoad   string `yaml:"max_delegation_load,omitempty"`
	QualityGates        string `yaml:"quality_gates,omitempty"`
}

// AgentSpec is a per-agent override of AgentDefaults.
type AgentSpec struct {
	DisplayName       string         `yaml:"display_name,omitempty"`
	Default           bool           `yaml:"default,omitempty"`
	Provider          string         `yaml:"provider,omitempty"`
	Model             string         `yaml:"model,omitempty"`
	MaxTokens         int            `yaml:"max_tokens,omitempty"`
	Temperature       float64        `yaml:"temperature,omitempty"`
	MaxToolIterations int            `yaml:"max_tool_iterations,omitempty"`
	ContextWindow     int            `yaml:"context_window,omitempty"`
	Workspace         string         `yaml:"workspace,omitempty"`
	Sandbox           *SandboxConfig `yaml:"sandbox,omitempty"`
	AgentType         string         `yaml:"agent_type,omitempty"`
}

// ReplaceFrom atomically replaces c's contents with other's, preserving
// c's mutex. Used by config-reload (fsnotify) to swap in a freshly parsed
// config without invalidating pointers callers already hold to c.
func (c *Config) ReplaceFrom(other *Config) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Agents = other.Agents
	c.Channels = other.Channels
	c.Providers = other.Providers
	c.LocalAPI = other.LocalAPI
	c.Tools = other.Tools
	c.Sessions = other.Sessions
	c.Security = other.Security
	c.Proxy = other.Proxy
	c.Database = other.Database
	c.Cron = other.Cron
	c.Telemetry = other.Telemetry
	c.Tailscale = other.Tailscale
	c.Bindings = other.Bindings
}

// RLock / RUnlock expose the config mutex for callers that need to read
// several fields atomically (e.g. ResolveAgent).
func (c *Config) RLock()   { c.mu.RLock() }
func (c *Config) RUnlock() { c.mu.RUnlock() }
