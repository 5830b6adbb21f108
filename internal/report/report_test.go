package report

import (
	"testing"
)

func TestDecode(t *testing.T) {
	data := []byte(`{
		"meta": {"name": "Deploy", "platform": "gitlab_ci", "generated_at": "2026-03-01T00:00:00Z"},
		"scores": {"complexity_score": 41.5, "fragility_score": 12},
		"structure": {"total_nodes": 4, "total_edges": 3, "nodes_by_type": {"job": 2, "step": 2}},
		"findings": [{"rule_id": "no-cache", "severity": "low", "message": "No dependency caching"}]
	}`)

	r, err := Decode(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Meta.Name != "Deploy" {
		t.Errorf("expected name 'Deploy', got %q", r.Meta.Name)
	}
	if r.Scores.Complexity == nil || *r.Scores.Complexity != 41.5 {
		t.Errorf("expected complexity 41.5, got %v", r.Scores.Complexity)
	}
	if r.Structure.TotalNodes != 4 {
		t.Errorf("expected 4 nodes, got %d", r.Structure.TotalNodes)
	}
	if len(r.Findings) != 1 || r.Findings[0].RuleID != "no-cache" {
		t.Errorf("unexpected findings: %+v", r.Findings)
	}
}

func TestDecodeMissingSections(t *testing.T) {
	r, err := Decode([]byte(`{}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Scores.Complexity != nil || r.Scores.Fragility != nil {
		t.Error("expected nil scores for empty document")
	}
	if r.Findings != nil {
		t.Error("expected nil findings for empty document")
	}

	// A JSON null is still a syntactically valid document.
	if _, err := Decode([]byte(`null`)); err != nil {
		t.Errorf("unexpected error for null document: %v", err)
	}
}

func TestDecodeRejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "this is not json"},
		{"wrong shape", `[1, 2, 3]`},
		{"truncated", `{"meta": {"name":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode([]byte(tt.data)); err == nil {
				t.Error("expected decode error, got nil")
			}
		})
	}
}
