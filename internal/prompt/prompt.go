// Package prompt turns deterministic pipeline reports into LLM prompts.
// The model never sees raw CI/CD configuration, only structure and findings
// already extracted upstream.
package prompt

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Matza-labs/atlas-ai/internal/report"
)

// SystemPrompt declares the assistant's role and its non-negotiable rules.
const SystemPrompt = `You are PipelineAtlas AI — an expert CI/CD architecture advisor.

You will receive a JSON summary of a deterministic CI/CD analysis including:
- Pipeline structure (nodes and edges)
- Complexity and fragility scores
- Rule engine findings with severity levels

Your job is to:
1. Provide an executive summary of the pipeline health
2. Generate a modernization roadmap with specific, actionable steps
3. Rank improvements by impact (highest first)
4. Reference specific node names and findings from the data

Rules:
- NEVER invent CI/CD structure that isn't in the data
- ALWAYS reference specific node names and rule IDs from the data
- Keep recommendations practical and specific
- Use markdown formatting for readability
`

// BuildAnalysisPrompt renders the full report as a sectioned user prompt.
// Missing fields degrade to placeholders; the output is deterministic for
// identical input.
func BuildAnalysisPrompt(r report.Report) string {
	sections := []string{
		fmt.Sprintf("## Pipeline: %s", orDefault(r.Meta.Name, "Unknown")),
		fmt.Sprintf("Platform: %s", orDefault(r.Meta.Platform, "unknown")),
		fmt.Sprintf("Generated: %s", orDefault(r.Meta.GeneratedAt, "unknown")),
	}

	sections = append(sections,
		"\n## Scores",
		fmt.Sprintf("- Complexity: %s/100", formatScore(r.Scores.Complexity)),
		fmt.Sprintf("- Fragility: %s/100", formatScore(r.Scores.Fragility)),
	)

	sections = append(sections,
		"\n## Structure",
		fmt.Sprintf("- Nodes: %d", r.Structure.TotalNodes),
		fmt.Sprintf("- Edges: %d", r.Structure.TotalEdges),
	)
	for _, nodeType := range sortedKeys(r.Structure.NodesByType) {
		sections = append(sections, fmt.Sprintf("  - %s: %d", nodeType, r.Structure.NodesByType[nodeType]))
	}

	if len(r.Findings) > 0 {
		sections = append(sections, fmt.Sprintf("\n## Findings (%d total)", len(r.Findings)))
		for _, f := range r.Findings {
			sections = append(sections, fmt.Sprintf("- [%s] %s: %s",
				strings.ToUpper(orDefault(f.Severity, "info")),
				orDefault(f.RuleID, "?"),
				f.Message,
			))
		}
	}

	sections = append(sections,
		"\n---",
		"Based on the analysis above, provide:",
		"1. Executive Summary (2-3 sentences)",
		"2. Modernization Roadmap (3-5 prioritized improvements)",
		"3. Risk Assessment (what could break if left unaddressed)",
	)

	return strings.Join(sections, "\n")
}

// BuildExecutiveSummaryPrompt renders a compact prompt for a standalone
// summary without the full structure dump.
func BuildExecutiveSummaryPrompt(r report.Report) string {
	return fmt.Sprintf(
		"Generate a concise 2-3 sentence executive summary for '%s'.\n"+
			"Complexity: %s/100, Fragility: %s/100, Findings: %d.\n"+
			"Focus on the overall health and the single most impactful improvement.",
		orDefault(r.Meta.Name, "Unknown Pipeline"),
		formatScore(r.Scores.Complexity),
		formatScore(r.Scores.Fragility),
		len(r.Findings),
	)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func formatScore(s *float64) string {
	if s == nil {
		return "N/A"
	}
	return strconv.FormatFloat(*s, 'f', -1, 64)
}

// sortedKeys keeps the per-type breakdown stable across runs; map iteration
// order would otherwise leak into the prompt.
func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
