package report

import (
	"encoding/json"
	"fmt"
)

// Report is the deterministic pipeline analysis produced upstream. It is
// read-only input: fields are accessed but never mutated or persisted.
type Report struct {
	Meta      Meta      `json:"meta"`
	Scores    Scores    `json:"scores"`
	Structure Structure `json:"structure"`
	Findings  []Finding `json:"findings"`
}

// Meta identifies the analyzed pipeline.
type Meta struct {
	Name        string `json:"name"`
	Platform    string `json:"platform"`
	GeneratedAt string `json:"generated_at"`
}

// Scores holds the 0-100 health scores. Pointers distinguish a missing
// score from a genuine zero.
type Scores struct {
	Complexity *float64 `json:"complexity_score"`
	Fragility  *float64 `json:"fragility_score"`
}

// Structure summarizes the pipeline graph.
type Structure struct {
	TotalNodes  int            `json:"total_nodes"`
	TotalEdges  int            `json:"total_edges"`
	NodesByType map[string]int `json:"nodes_by_type"`
}

// Finding is a single rule engine result.
type Finding struct {
	RuleID   string `json:"rule_id"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// Decode parses a JSON document into a Report. Missing fields are left at
// their zero values; prompt building substitutes placeholders for them.
func Decode(data []byte) (Report, error) {
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return Report{}, fmt.Errorf("failed to parse report JSON: %w", err)
	}
	return r, nil
}
