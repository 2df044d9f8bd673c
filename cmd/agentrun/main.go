// Command agentrun is the binary internal/sandbox launches inside the
// sandbox boundary for one agent session: it reads a single turn payload
// from stdin (see internal/runner), runs it through internal/agent.Loop,
// and writes the response to stdout.
//
// Grounded on the teacher's cmd/agent_chat_standalone.go entry point,
// trimmed to the one piece of wiring a sandboxed process needs: a
// bridge-routed provider (never a raw API key) and the tool set the
// session's host-side config allows.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/nextlevelbuilder/goclaw/internal/providers"
	"github.com/nextlevelbuilder/goclaw/internal/proxy"
	"github.com/nextlevelbuilder/goclaw/internal/runner"
	"github.com/nextlevelbuilder/goclaw/internal/skills"
	"github.com/nextlevelbuilder/goclaw/internal/tools"
)

func main() {
	workspace := flag.String("workspace", "", "workspace directory mounted into this sandbox")
	flag.Parse()

	if err := run(*workspace); err != nil {
		fmt.Fprintln(os.Stderr, "agentrun:", err)
		os.Exit(1)
	}
}

func run(workspace string) error {
	providerName := envOr("AX_PROVIDER", "anthropic")
	model := envOr("AX_MODEL", "")

	registry := providers.NewRegistry()
	registry.Register(providers.NewAnthropicProvider())
	registry.Register(providers.NewOpenAIProvider("openai", "", bridgeBase("openai"), ""))
	registry.Register(providers.NewOpenAIProvider("openrouter", "", bridgeBase("openrouter"), ""))
	registry.Register(providers.NewOpenAIProvider("groq", "", bridgeBase("groq"), ""))
	registry.Register(providers.NewOpenAIProvider("deepseek", "", bridgeBase("deepseek"), ""))

	provider, err := registry.Get(providerName)
	if err != nil {
		return fmt.Errorf("unknown provider %q: %w", providerName, err)
	}
	if model == "" {
		model = provider.DefaultModel()
	}

	toolRegistry := buildToolRegistry(workspace, registry)

	var skillsLoader *skills.Loader
	if workspace != "" {
		skillsLoader = skills.NewLoader(workspace, "", "")
	}

	cfg := runner.Config{
		AgentID:       envOr("AX_AGENT_ID", "default"),
		Provider:      provider,
		Model:         model,
		ContextWindow: envInt("AX_CONTEXT_WINDOW", 0),
		MaxIterations: envInt("AX_MAX_ITERATIONS", 0),
		Workspace:     workspace,
		SessionKey:    envOr("AX_SESSION_KEY", "standalone"),
		Channel:       envOr("AX_CHANNEL", "cli"),
		ChatID:        envOr("AX_CHAT_ID", "standalone"),
		PeerKind:      envOr("AX_PEER_KIND", "direct"),
		SenderID:      envOr("AX_SENDER_ID", ""),
		OwnerIDs:      splitNonEmpty(os.Getenv("AX_OWNER_IDS")),
		HasMemory:     os.Getenv("AX_HAS_MEMORY") == "true",
		ThinkingLevel: envOr("AX_THINKING_LEVEL", "off"),
		Tools:         toolRegistry,
		SkillsLoader:  skillsLoader,
	}

	return runner.Run(context.Background(), cfg, os.Stdin, os.Stdout)
}

// buildToolRegistry wires every tool with a working constructor, restricted
// to the sandbox's own workspace — this process never sees a path outside
// it regardless of what the OS-level sandbox backend additionally enforces.
func buildToolRegistry(workspace string, providerReg *providers.Registry) *tools.Registry {
	reg := tools.NewRegistry()
	reg.Register(tools.NewReadFileTool(workspace, true))
	reg.Register(tools.NewExecTool(workspace, true))
	reg.Register(tools.NewWebFetchTool(tools.WebFetchConfig{}))
	reg.Register(tools.NewWebSearchTool(tools.WebSearchConfig{
		BraveAPIKey:  os.Getenv("AX_BRAVE_API_KEY"),
		BraveEnabled: os.Getenv("AX_BRAVE_API_KEY") != "",
		DDGEnabled:   true,
	}))
	reg.Register(tools.NewSessionsListTool())
	reg.Register(tools.NewSessionStatusTool())
	reg.Register(tools.NewSessionsHistoryTool())
	reg.Register(tools.NewSessionsSendTool())
	reg.Register(tools.NewCreateImageTool(providerReg))
	reg.Register(tools.NewReadImageTool(providerReg))
	reg.SetRateLimiter(tools.NewToolRateLimiter(envInt("AX_TOOL_RATE_LIMIT_PER_HOUR", 0)))
	reg.SetScrubbing(true)
	return reg
}

// bridgeBase points an OpenAI-shaped provider at the host's credential
// proxy instead of the real vendor host. The provider still sends its own
// (empty) Authorization header; proxy.Host strips and replaces it before
// forwarding, so no key needs to exist inside the sandbox. See
// internal/proxy.DefaultRoutes for the matching route table.
func bridgeBase(vendorPrefix string) string {
	return "http://" + proxy.DefaultBridgeAddr + "/" + vendorPrefix
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
