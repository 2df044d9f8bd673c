package promptbuilder

// skillsModule inlines available-skill summaries, matching the teacher's
// hybrid inline/search-mode approach in internal/agent/loop_history.go's
// resolveSkillsSummary, but as a droppable prompt-builder module instead of
// a pre-computed string spliced into the old monolithic prompt.
func skillsModule() Module {
	return Module{
		Name:     "skills",
		Priority: 20,
		Optional: true,
		ShouldInclude: func(ctx Context) bool {
			return !ctx.Bootstrapping && len(ctx.Skills) > 0
		},
		Render: func(ctx Context) []string {
			lines := []string{"## Available Skills"}
			lines = append(lines, ctx.Skills...)
			return lines
		},
		RenderMinimal: func(ctx Context) []string {
			return []string{
				"## Available Skills",
				"Skill descriptions omitted for space; use skill_search to look one up.",
			}
		},
	}
}
