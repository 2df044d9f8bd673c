package promptbuilder

import "strings"

// ModuleResult is the per-module accounting carried in BuildResult.Metadata.
type ModuleResult struct {
	Name      string
	Tokens    int
	Minimal   bool
	Dropped   bool
	DropCause string
}

// Metadata describes how a build arrived at its output, for audit and
// testing. BuildTimeMillis is filled in by the caller (Build itself never
// reads the clock, keeping it deterministic and testable without faking
// time).
type Metadata struct {
	Included        []ModuleResult
	TotalTokens     int
	BuildTimeMillis int64
}

// BuildResult is the output of a single Build call.
type BuildResult struct {
	Prompt   string
	Metadata Metadata
}

// Builder assembles a system prompt from a fixed, ordered set of modules.
type Builder struct {
	required []Module
	optional []Module
}

// New returns a Builder with the spec's standard module set: the three
// required modules plus every optional module, in ascending priority order.
func New() *Builder {
	required := []Module{
		identityModule(),
		injectionDefenseModule(),
		securityBoundariesModule(),
	}
	optional := []Module{
		contextModule(),
		skillsModule(),
		runtimeModule(),
		heartbeatModule(),
		replyGateModule(),
	}
	return &Builder{required: required, optional: optional}
}

// Build assembles the system prompt for ctx. Given an identical Context it
// always produces identical output — no module reads wall-clock time or
// randomness; Context.Time is a caller-supplied, already-formatted string.
func (b *Builder) Build(ctx Context) BuildResult {
	budget := ctx.Budget()
	var sections []string
	var results []ModuleResult

	for _, m := range b.required {
		if !m.ShouldInclude(ctx) {
			continue
		}
		lines := m.Render(ctx)
		if len(lines) == 0 {
			continue
		}
		tokens := estimateTokens(lines)
		budget -= tokens
		sections = append(sections, joinLines(lines))
		results = append(results, ModuleResult{Name: m.Name, Tokens: tokens})
	}

	for _, m := range b.optional {
		if !m.ShouldInclude(ctx) {
			continue
		}

		lines := m.Render(ctx)
		tokens := estimateTokens(lines)
		minimal := false

		if len(lines) == 0 {
			continue
		}

		if tokens > budget && m.RenderMinimal != nil {
			minimalLines := m.RenderMinimal(ctx)
			minimalTokens := estimateTokens(minimalLines)
			if minimalTokens <= budget {
				lines = minimalLines
				tokens = minimalTokens
				minimal = true
			}
		}

		if tokens > budget {
			results = append(results, ModuleResult{Name: m.Name, Dropped: true, DropCause: "over budget"})
			continue
		}

		budget -= tokens
		sections = append(sections, joinLines(lines))
		results = append(results, ModuleResult{Name: m.Name, Tokens: tokens, Minimal: minimal})
	}

	total := 0
	for _, r := range results {
		total += r.Tokens
	}

	return BuildResult{
		Prompt: strings.Join(sections, "\n\n"),
		Metadata: Metadata{
			Included:    results,
			TotalTokens: total,
		},
	}
}
