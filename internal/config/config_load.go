package config

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultAgentID is used when no agent in Agents.List is marked default.
const DefaultAgentID = "default"

// NormalizeAgentID lowercases and trims an agent ID so lookups in
// Agents.List are case-insensitive regardless of how a binding or cron
// job spelled it.
func NormalizeAgentID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Agents: AgentsConfig{
			Defaults: AgentDefaults{
				Workspace:           "~/.ax/workspace",
				RestrictToWorkspace: true,
				Provider:            "anthropic",
				Model:               "claude-sonnet-4-5-20250929",
				MaxTokens:           8192,
				Temperature:         0.7,
				MaxToolIterations:   20,
				ContextWindow:       200000,
				Subagents: &SubagentsConfig{
					MaxConcurrent: 20,
					MaxSpawnDepth: 1,
				},
			},
		},
		Channels: ChannelsConfig{
			Telegram: TelegramConfig{
				StreamMode:    "none",
				ReactionLevel: "full",
			},
		},
		LocalAPI: LocalAPIConfig{
			Host:            "127.0.0.1",
			Port:            8790,
			MaxMessageChars: 32000,
			RateLimitRPM:    20,
		},
		Tools: ToolsConfig{
			Web: WebToolsConfig{
				DuckDuckGo: DuckDuckGoConfig{Enabled: true, MaxResults: 5},
			},
			Browser: BrowserToolConfig{
				Enabled:  true,
				Headless: true,
			},
			ExecApproval: ExecApprovalCfg{
				Security: "full",
				Ask:      "off",
			},
		},
		Sessions: SessionsConfig{
			Storage: "~/.ax/sessions",
		},
		Security: SecurityConfig{
			TaintThreshold:  0.4,
			InjectionAction: "warn",
		},
		Proxy: ProxyConfig{
			SocketPath:            "~/.ax/run/proxy.sock",
			BridgeListenAddr:      "127.0.0.1:8089",
			OAuthRefreshMarginSec: 300,
		},
	}
}

// Load reads config from a YAML file, then overlays env vars.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			cfg.applyContextPruningDefaults()
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	cfg.applyContextPruningDefaults()
	return cfg, nil
}

// applyEnvOverrides overlays env vars onto the config. Every provider API
// key and channel token is env-only by design (yaml:"-" above) — config
// files checked into a workspace or synced to a backup never carry
// secrets.
func (c *Config) applyEnvOverrides() {
	envStr := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	envStr("AX_ANTHROPIC_API_KEY", &c.Providers.Anthropic.APIKey)
	envStr("AX_ANTHROPIC_BASE_URL", &c.Providers.Anthropic.APIBase)
	envStr("AX_OPENAI_API_KEY", &c.Providers.OpenAI.APIKey)
	envStr("AX_OPENROUTER_API_KEY", &c.Providers.OpenRouter.APIKey)
	envStr("AX_GROQ_API_KEY", &c.Providers.Groq.APIKey)
	envStr("AX_DEEPSEEK_API_KEY", &c.Providers.DeepSeek.APIKey)
	envStr("AX_GEMINI_API_KEY", &c.Providers.Gemini.APIKey)
	envStr("AX_MISTRAL_API_KEY", &c.Providers.Mistral.APIKey)
	envStr("AX_XAI_API_KEY", &c.Providers.XAI.APIKey)
	envStr("AX_MINIMAX_API_KEY", &c.Providers.MiniMax.APIKey)
	envStr("AX_COHERE_API_KEY", &c.Providers.Cohere.APIKey)
	envStr("AX_PERPLEXITY_API_KEY", &c.Providers.Perplexity.APIKey)
	envStr("AX_LOCAL_API_TOKEN", &c.LocalAPI.Token)
	envStr("AX_TELEGRAM_TOKEN", &c.Channels.Telegram.Token)
	envStr("AX_DISCORD_TOKEN", &c.Channels.Discord.Token)
	envStr("AX_BRAVE_API_KEY", &c.Tools.Web.Brave.APIKey)

	if c.Channels.Telegram.Token != "" {
		c.Channels.Telegram.Enabled = true
	}
	if c.Channels.Discord.Token != "" {
		c.Channels.Discord.Enabled = true
	}

	envStr("AX_PROVIDER", &c.Agents.Defaults.Provider)
	envStr("AX_MODEL", &c.Agents.Defaults.Model)
	envStr("AX_WORKSPACE", &c.Agents.Defaults.Workspace)
	envStr("AX_SESSIONS_STORAGE", &c.Sessions.Storage)

	envStr("AX_HOST", &c.LocalAPI.Host)
	if v := os.Getenv("AX_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			c.LocalAPI.Port = port
		}
	}

	envStr("AX_SQLITE_PATH", &c.Database.SQLitePath)
	envStr("AX_POSTGRES_DSN", &c.Database.PostgresDSN)

	envStr("AX_TELEMETRY_ENDPOINT", &c.Telemetry.Endpoint)
	envStr("AX_TELEMETRY_PROTOCOL", &c.Telemetry.Protocol)
	envStr("AX_TELEMETRY_SERVICE_NAME", &c.Telemetry.ServiceName)
	if v := os.Getenv("AX_TELEMETRY_ENABLED"); v != "" {
		c.Telemetry.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("AX_TELEMETRY_INSECURE"); v != "" {
		c.Telemetry.Insecure = v == "true" || v == "1"
	}

	if v := os.Getenv("AX_ADMIN_IDS"); v != "" {
		c.Security.AdminIDs = strings.Split(v, ",")
	}

	envStr("AX_TSNET_HOSTNAME", &c.Tailscale.Hostname)
	envStr("AX_TSNET_AUTH_KEY", &c.Tailscale.AuthKey)
	envStr("AX_TSNET_DIR", &c.Tailscale.StateDir)

	ensureSandbox := func() {
		if c.Agents.Defaults.Sandbox == nil {
			c.Agents.Defaults.Sandbox = &SandboxConfig{}
		}
	}
	if v := os.Getenv("AX_SANDBOX_MODE"); v != "" {
		ensureSandbox()
		c.Agents.Defaults.Sandbox.Mode = v
	}
	if v := os.Getenv("AX_SANDBOX_BACKEND"); v != "" {
		ensureSandbox()
		c.Agents.Defaults.Sandbox.Backend = v
	}
	if v := os.Getenv("AX_SANDBOX_IMAGE"); v != "" {
		ensureSandbox()
		c.Agents.Defaults.Sandbox.Image = v
	}
	if v := os.Getenv("AX_SANDBOX_WORKSPACE_ACCESS"); v != "" {
		ensureSandbox()
		c.Agents.Defaults.Sandbox.WorkspaceAccess = v
	}
	if v := os.Getenv("AX_SANDBOX_SCOPE"); v != "" {
		ensureSandbox()
		c.Agents.Defaults.Sandbox.Scope = v
	}
	if v := os.Getenv("AX_SANDBOX_NETWORK"); v != "" {
		ensureSandbox()
		c.Agents.Defaults.Sandbox.NetworkEnabled = v == "true" || v == "1"
	}
}

// applyContextPruningDefaults auto-enables context pruning when the
// Anthropic provider is configured.
func (c *Config) applyContextPruningDefaults() {
	if c.Providers.Anthropic.APIKey == "" {
		return
	}

	defaults := &c.Agents.Defaults
	if defaults.ContextPruning == nil {
		defaults.ContextPruning = &ContextPruningConfig{Mode: "cache-ttl"}
	} else if defaults.ContextPruning.Mode == "" {
		defaults.ContextPruning.Mode = "cache-ttl"
	}
}

// Save writes the config to a YAML file.
func Save(path string, cfg *Config) error {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// Hash returns a SHA-256 hash of the config for optimistic concurrency
// (config-reload via fsnotify uses this to skip a no-op reparse).
func (c *Config) Hash() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	data, _ := yaml.Marshal(c)
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:8])
}

// WorkspacePath returns the expanded workspace path.
func (c *Config) WorkspacePath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return ExpandHome(c.Agents.Defaults.Workspace)
}

// ResolveAgent returns the effective config for a given agent ID, merging
// defaults with per-agent overrides.
func (c *Config) ResolveAgent(agentID string) AgentDefaults {
	c.mu.RLock()
	defer c.mu.RUnlock()

	d := c.Agents.Defaults
	if spec, ok := c.Agents.List[agentID]; ok {
		if spec.Provider != "" {
			d.Provider = spec.Provider
		}
		if spec.Model != "" {
			d.Model = spec.Model
		}
		if spec.MaxTokens > 0 {
			d.MaxTokens = spec.MaxTokens
		}
		if spec.Temperature > 0 {
			d.Temperature = spec.Temperature
		}
		if spec.MaxToolIterations > 0 {
			d.MaxToolIterations = spec.MaxToolIterations
		}
		if spec.ContextWindow > 0 {
			d.ContextWindow = spec.ContextWindow
		}
		if spec.Workspace != "" {
			d.Workspace = spec.Workspace
		}
		if spec.Sandbox != nil {
			d.Sandbox = spec.Sandbox
		}
		if spec.AgentType != "" {
			d.AgentType = spec.AgentType
		}
	}
	return d
}

// ResolveDefaultAgentID returns the ID of the agent marked as default, or
// DefaultAgentID if none is explicitly marked.
func (c *Config) ResolveDefaultAgentID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for id, spec := range c.Agents.List {
		if spec.Default {
			return id
		}
	}
	return DefaultAgentID
}

// ResolveDisplayName returns the display name for an agent.
func (c *Config) ResolveDisplayName(agentID string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if spec, ok := c.Agents.List[agentID]; ok && spec.DisplayName != "" {
		return spec.DisplayName
	}
	return "ax"
}

// ApplyEnvOverrides re-applies environment variable overrides onto the
// config. Call after modifying config in place (e.g. config.apply) to
// restore runtime secrets that never round-trip through the file.
func (c *Config) ApplyEnvOverrides() {
	c.applyEnvOverrides()
	c.applyContextPruningDefaults()
}

// ExpandHome replaces a leading ~ with the user home directory.
func ExpandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	home, _ := os.UserHomeDir()
	if len(path) > 1 && path[1] == '/' {
		return home + path[1:]
	}
	return home
}
