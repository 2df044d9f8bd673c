package promptbuilder

// replyGateModule tells the agent that channel adapters apply their own
// shouldRespond gate upstream (group-chat addressing rules, rate limits) —
// so a turn reaching the model has already cleared that gate and the agent
// should not re-litigate whether to respond, only how.
func replyGateModule() Module {
	return Module{
		Name:     "reply-gate",
		Priority: 50,
		Optional: true,
		ShouldInclude: func(ctx Context) bool {
			return !ctx.Bootstrapping && ctx.Channel != ""
		},
		Render: func(ctx Context) []string {
			return []string{
				"## Reply Gate",
				"The channel adapter has already decided this message should be answered. " +
					"Respond normally; do not ask whether you should reply.",
			}
		},
	}
}
