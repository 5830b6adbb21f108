// Package advisor orchestrates prompt building and LLM calls to turn a
// deterministic pipeline report into modernization guidance.
package advisor

import (
	"context"
	"log/slog"

	"github.com/Matza-labs/atlas-ai/internal/llm"
	"github.com/Matza-labs/atlas-ai/internal/prompt"
	"github.com/Matza-labs/atlas-ai/internal/report"
)

// Result is the outcome of a full modernization analysis. Field order
// matches the JSON object printed in one-shot mode.
type Result struct {
	Model            string `json:"model"`
	TokensUsed       int    `json:"tokens_used"`
	Roadmap          string `json:"roadmap"`
	ExecutiveSummary string `json:"executive_summary"`
}

// Advisor owns the LLM client for its lifetime and exposes the analysis
// operations. Each call is stateless relative to prior calls.
type Advisor struct {
	gen llm.Generator
	log *slog.Logger
}

// New builds an Advisor on top of a generation backend.
func New(gen llm.Generator, log *slog.Logger) *Advisor {
	return &Advisor{gen: gen, log: log}
}

// Analyze runs the full analysis: one generation call for the roadmap and a
// second for the executive summary. Tokens are summed across both calls and
// the model identifier is taken from the first response. Backend errors
// propagate unchanged.
func (a *Advisor) Analyze(ctx context.Context, r report.Report) (Result, error) {
	roadmapResp, err := a.gen.Generate(ctx, prompt.SystemPrompt, prompt.BuildAnalysisPrompt(r))
	if err != nil {
		return Result{}, err
	}

	summaryResp, err := a.gen.Generate(ctx, prompt.SystemPrompt, prompt.BuildExecutiveSummaryPrompt(r))
	if err != nil {
		return Result{}, err
	}

	totalTokens := roadmapResp.TokensUsed + summaryResp.TokensUsed
	a.log.Info("modernization analysis complete",
		"tokens_used", totalTokens,
		"model", roadmapResp.Model)

	return Result{
		Model:            roadmapResp.Model,
		TokensUsed:       totalTokens,
		Roadmap:          roadmapResp.Content,
		ExecutiveSummary: summaryResp.Content,
	}, nil
}

// GenerateRoadmap returns only the roadmap text, skipping the second
// network round trip.
func (a *Advisor) GenerateRoadmap(ctx context.Context, r report.Report) (string, error) {
	resp, err := a.gen.Generate(ctx, prompt.SystemPrompt, prompt.BuildAnalysisPrompt(r))
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// GenerateSummary returns only the executive summary text.
func (a *Advisor) GenerateSummary(ctx context.Context, r report.Report) (string, error) {
	resp, err := a.gen.Generate(ctx, prompt.SystemPrompt, prompt.BuildExecutiveSummaryPrompt(r))
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// Close releases the underlying LLM client.
func (a *Advisor) Close() error {
	return a.gen.Close()
}
