// Package secrets holds the credentials the host process needs and the
// sandboxed agent process must never see: vendor API keys, channel bot
// tokens, the local API bearer token, the Postgres audit DSN, and the
// Tailscale auth key. Every field internal/config marks `yaml:"-"` is
// sourced here, never from the config file on disk — a workspace backup
// of the config file must never be able to leak a credential.
//
// Grounded on internal/providers's constructor-injected-apiKey pattern
// (NewAnthropicProvider(apiKey string, ...)) generalized into a single
// lookup surface the credential proxy and provider factory both read
// from, instead of each vendor client reading os.Getenv directly.
package secrets

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// Name identifies one secret slot. Closed set, not a free-form string
// map key, so a typo in a lookup fails at compile time rather than
// silently returning an empty credential.
type Name string

const (
	Anthropic  Name = "anthropic"
	OpenAI     Name = "openai"
	OpenRouter Name = "openrouter"
	Groq       Name = "groq"
	Gemini     Name = "gemini"
	DeepSeek   Name = "deepseek"
	Mistral    Name = "mistral"
	XAI        Name = "xai"
	MiniMax    Name = "minimax"
	Cohere     Name = "cohere"
	Perplexity Name = "perplexity"

	TelegramToken Name = "telegram_token"
	DiscordToken  Name = "discord_token"

	LocalAPIToken    Name = "local_api_token"
	BraveAPIKey      Name = "brave_api_key"
	PostgresDSN      Name = "postgres_dsn"
	TailscaleAuthKey Name = "tailscale_auth_key"
)

// envVar maps each Name to the env var internal/config.applyEnvOverrides
// already reads from, so the two stay in lockstep: adding a secret here
// without the matching config env mapping (or vice versa) is a bug.
var envVar = map[Name]string{
	Anthropic:        "AX_ANTHROPIC_API_KEY",
	OpenAI:           "AX_OPENAI_API_KEY",
	OpenRouter:       "AX_OPENROUTER_API_KEY",
	Groq:             "AX_GROQ_API_KEY",
	Gemini:           "AX_GEMINI_API_KEY",
	DeepSeek:         "AX_DEEPSEEK_API_KEY",
	Mistral:          "AX_MISTRAL_API_KEY",
	XAI:              "AX_XAI_API_KEY",
	MiniMax:          "AX_MINIMAX_API_KEY",
	Cohere:           "AX_COHERE_API_KEY",
	Perplexity:       "AX_PERPLEXITY_API_KEY",
	TelegramToken:    "AX_TELEGRAM_TOKEN",
	DiscordToken:     "AX_DISCORD_TOKEN",
	LocalAPIToken:    "AX_LOCAL_API_TOKEN",
	BraveAPIKey:      "AX_BRAVE_API_KEY",
	PostgresDSN:      "AX_POSTGRES_DSN",
	TailscaleAuthKey: "AX_TSNET_AUTH_KEY",
}

// Store is an in-memory, process-local secret cache loaded once from the
// environment (and optionally a .env file via LoadDotenv) at startup.
// It is never serialized and never handed to the sandboxed agent process
// — internal/proxy is the only package that reads from it.
type Store struct {
	mu     sync.RWMutex
	values map[Name]string
}

// NewStore loads every known secret from its mapped environment variable.
func NewStore() *Store {
	s := &Store{values: make(map[Name]string, len(envVar))}
	for name, key := range envVar {
		if v := os.Getenv(key); v != "" {
			s.values[name] = v
		}
	}
	return s
}

// Get returns the secret for name, or "" if unset.
func (s *Store) Get(name Name) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[name]
}

// Has reports whether name has a non-empty value.
func (s *Store) Has(name Name) bool {
	return s.Get(name) != ""
}

// Set overwrites a secret in memory only; it does not persist the value
// (SaveDotenv does that separately).
func (s *Store) Set(name Name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[name] = value
}

// EnvVar returns the environment variable name a Name is sourced from,
// for diagnostics (telling the operator which env var to set) without
// ever printing the secret value itself.
func EnvVar(name Name) (string, error) {
	v, ok := envVar[name]
	if !ok {
		return "", fmt.Errorf("secrets: unknown secret name %q", name)
	}
	return v, nil
}

// redactedPreview returns a short, safe-to-log stand-in for a secret
// value: the first 4 and last 4 characters with the middle masked, or
// "(unset)" if empty. Used by diagnostics output, never by the audit
// sink (which never sees secret values at all).
func redactedPreview(v string) string {
	if v == "" {
		return "(unset)"
	}
	if len(v) <= 8 {
		return strings.Repeat("*", len(v))
	}
	return v[:4] + strings.Repeat("*", len(v)-8) + v[len(v)-4:]
}

// Describe renders a redacted summary of every known secret's
// presence/absence, suitable for a status display.
func (s *Store) Describe() map[Name]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[Name]string, len(envVar))
	for name := range envVar {
		out[name] = redactedPreview(s.values[name])
	}
	return out
}
