package config

// ChannelsConfig contains per-channel configuration. Feishu/WhatsApp/Zalo/
// Slack adapters are not carried into this build (no channel package
// implements them here — see DESIGN.md); Telegram and Discord remain as
// concrete, wired external collaborators alongside the local chat API.
type ChannelsConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Discord  DiscordConfig  `yaml:"discord"`
}

type TelegramConfig struct {
	Enabled        bool                `yaml:"enabled"`
	Token          string              `yaml:"-"` // from env AX_TELEGRAM_TOKEN only
	Proxy          string              `yaml:"proxy,omitempty"`
	AllowFrom      FlexibleStringSlice `yaml:"allow_from"`
	DMPolicy       string              `yaml:"dm_policy,omitempty"`
	GroupPolicy    string              `yaml:"group_policy,omitempty"`
	RequireMention *bool               `yaml:"require_mention,omitempty"`
	HistoryLimit   int                 `yaml:"history_limit,omitempty"`
	StreamMode     string              `yaml:"stream_mode,omitempty"`
	ReactionLevel  string              `yaml:"reaction_level,omitempty"`
	MediaMaxBytes  int64               `yaml:"media_max_bytes,omitempty"`
	LinkPreview    *bool               `yaml:"link_preview,omitempty"`
}

type DiscordConfig struct {
	Enabled        bool                `yaml:"enabled"`
	Token          string              `yaml:"-"` // from env AX_DISCORD_TOKEN only
	AllowFrom      FlexibleStringSlice `yaml:"allow_from"`
	DMPolicy       string              `yaml:"dm_policy,omitempty"`
	GroupPolicy    string              `yaml:"group_policy,omitempty"`
	RequireMention *bool               `yaml:"require_mention,omitempty"`
	HistoryLimit   int                 `yaml:"history_limit,omitempty"`
}

// ProvidersConfig maps vendor name to its base-URL config. API keys are
// never read from this file — see internal/secrets; the proxy injects
// them from its own keyed store, keyed by these same vendor names.
type ProvidersConfig struct {
	Anthropic  ProviderConfig `yaml:"anthropic"`
	OpenAI     ProviderConfig `yaml:"openai"`
	OpenRouter ProviderConfig `yaml:"openrouter"`
	Groq       ProviderConfig `yaml:"groq"`
	Gemini     ProviderConfig `yaml:"gemini"`
	DeepSeek   ProviderConfig `yaml:"deepseek"`
	Mistral    ProviderConfig `yaml:"mistral"`
	XAI        ProviderConfig `yaml:"xai"`
	MiniMax    ProviderConfig `yaml:"minimax"`
	Cohere     ProviderConfig `yaml:"cohere"`
	Perplexity ProviderConfig `yaml:"perplexity"`
}

type ProviderConfig struct {
	APIKey  string `yaml:"-"` // from env / internal/secrets only
	APIBase string `yaml:"api_base,omitempty"`
}

// HasAnyProvider returns true if at least one provider has an API key configured.
func (c *Config) HasAnyProvider() bool {
	p := c.Providers
	return p.Anthropic.APIKey != "" ||
		p.OpenAI.APIKey != "" ||
		p.OpenRouter.APIKey != "" ||
		p.Groq.APIKey != "" ||
		p.Gemini.APIKey != "" ||
		p.DeepSeek.APIKey != "" ||
		p.Mistral.APIKey != "" ||
		p.XAI.APIKey != "" ||
		p.MiniMax.APIKey != "" ||
		p.Cohere.APIKey != "" ||
		p.Perplexity.APIKey != ""
}

// LocalAPIConfig controls the host's local OpenAI-compatible chat HTTP API
// and the IPC server's listen settings.
type LocalAPIConfig struct {
	Host              string   `yaml:"host"`
	Port              int      `yaml:"port"`
	Token             string   `yaml:"-"` // bearer token, from env AX_LOCAL_API_TOKEN only
	AllowedOrigins    []string `yaml:"allowed_origins,omitempty"`
	MaxMessageChars   int      `yaml:"max_message_chars,omitempty"`
	RateLimitRPM      int      `yaml:"rate_limit_rpm,omitempty"`
	InboundDebounceMs int      `yaml:"inbound_debounce_ms,omitempty"`
}

// ToolsConfig controls tool availability, policy, and web search.
type ToolsConfig struct {
	Profile          string                     `yaml:"profile,omitempty"`
	Allow            []string                   `yaml:"allow,omitempty"`
	Deny             []string                   `yaml:"deny,omitempty"`
	AlsoAllow        []string                   `yaml:"also_allow,omitempty"`
	ByProvider       map[string]*ToolPolicySpec `yaml:"by_provider,omitempty"`
	ExecApproval     ExecApprovalCfg            `yaml:"exec_approval,omitempty"`
	Web              WebToolsConfig             `yaml:"web"`
	Browser          BrowserToolConfig          `yaml:"browser"`
	RateLimitPerHour int                        `yaml:"rate_limit_per_hour,omitempty"`
	ScrubCredentials *bool                      `yaml:"scrub_credentials,omitempty"`
}

// ExecApprovalCfg configures command execution approval.
type ExecApprovalCfg struct {
	Security  string   `yaml:"security,omitempty"` // "deny", "allowlist", "full" (default "full")
	Ask       string   `yaml:"ask,omitempty"`       // "off", "on-miss", "always" (default "off")
	Allowlist []string `yaml:"allowlist,omitempty"`
}

// BrowserToolConfig controls the browser automation tool (go-rod).
type BrowserToolConfig struct {
	Enabled  bool `yaml:"enabled"`
	Headless bool `yaml:"headless,omitempty"`
}

// ToolPolicySpec defines a tool policy at any level (global, per-agent, per-provider).
type ToolPolicySpec struct {
	Profile    string                     `yaml:"profile,omitempty"`
	Allow      []string                   `yaml:"allow,omitempty"`
	Deny       []string                   `yaml:"deny,omitempty"`
	AlsoAllow  []string                   `yaml:"also_allow,omitempty"`
	ByProvider map[string]*ToolPolicySpec `yaml:"by_provider,omitempty"`
	Vision     *VisionConfig              `yaml:"vision,omitempty"`
	ImageGen   *ImageGenConfig            `yaml:"image_gen,omitempty"`
}

// VisionConfig configures the provider and model for vision tools (read_image).
type VisionConfig struct {
	Provider string `yaml:"provider,omitempty"`
	Model    string `yaml:"model,omitempty"`
}

// ImageGenConfig configures the provider and model for image generation (create_image).
type ImageGenConfig struct {
	Provider string `yaml:"provider,omitempty"`
	Model    string `yaml:"model,omitempty"`
	Size     string `yaml:"size,omitempty"`
	Quality  string `yaml:"quality,omitempty"`
}

type WebToolsConfig struct {
	Brave      BraveConfig      `yaml:"brave"`
	DuckDuckGo DuckDuckGoConfig `yaml:"duckduckgo"`
}

type BraveConfig struct {
	Enabled    bool   `yaml:"enabled"`
	APIKey     string `yaml:"-"` // from env AX_BRAVE_API_KEY only
	MaxResults int    `yaml:"max_results"`
}

type DuckDuckGoConfig struct {
	Enabled    bool `yaml:"enabled"`
	MaxResults int  `yaml:"max_results"`
}

// SessionsConfig controls session-key scoping.
type SessionsConfig struct {
	Storage string `yaml:"storage"`
	Scope   string `yaml:"scope,omitempty"`
	DmScope string `yaml:"dm_scope,omitempty"`
	MainKey string `yaml:"main_key,omitempty"`
}
