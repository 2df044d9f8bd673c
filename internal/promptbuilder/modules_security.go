package promptbuilder

// securityBoundariesModule states the host/sandbox trust split so the model
// never attempts to act as if it held privileges it doesn't. Required —
// always included.
func securityBoundariesModule() Module {
	return Module{
		Name:          "security-boundaries",
		Required:      true,
		ShouldInclude: func(ctx Context) bool { return true },
		Render: func(ctx Context) []string {
			return []string{
				"## Security Boundaries",
				"You run inside an untrusted sandbox process. Credentials for model and " +
					"vendor APIs are never available to you directly; all outbound calls go " +
					"through a credential-injecting proxy you cannot bypass.",
				"Sensitive actions (memory writes, scheduling, delegation, outbound audit " +
					"notes) are gated by the host against this session's taint budget. A " +
					"denial is final for this turn — do not retry the same action.",
			}
		},
		RenderMinimal: func(ctx Context) []string {
			return []string{
				"## Security Boundaries",
				"You run sandboxed; sensitive actions are gated by the host.",
			}
		},
	}
}
