// Command atlas-ai turns deterministic pipeline reports into LLM-generated
// modernization advice. It reads one report from stdin, or consumes reports
// from a Redis stream, depending on the selected mode.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Matza-labs/atlas-ai/internal/advisor"
	"github.com/Matza-labs/atlas-ai/internal/app"
	"github.com/Matza-labs/atlas-ai/internal/config"
	"github.com/Matza-labs/atlas-ai/internal/httputil"
	"github.com/Matza-labs/atlas-ai/internal/report"
	"github.com/Matza-labs/atlas-ai/internal/stream"
)

var (
	modeFlag string
	infoFlag bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "atlas-ai",
		Short: "AI modernization advisor for CI/CD pipeline reports",
		Long: `atlas-ai formats a pre-computed pipeline analysis report into prompts,
sends them to an LLM backend, and returns a modernization roadmap and an
executive summary.

Modes:
  stdin   read one JSON report from standard input, print the result (default)
  stream  consume reports from the atlas.reports.ready Redis stream`,
		SilenceUsage: true,
		RunE:         run,
	}
	cmd.CompletionOptions.DisableDefaultCmd = true

	cmd.Flags().StringVar(&modeFlag, "mode", "", "operation mode: stdin or stream (default from ATLAS_AI_MODE)")
	cmd.Flags().BoolVar(&infoFlag, "info", false, "print the resolved configuration and exit")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	deps, err := app.Build()
	if err != nil {
		return err
	}
	if modeFlag != "" {
		deps.Config.Mode = modeFlag
		if err := deps.Config.Validate(); err != nil {
			return err
		}
	}

	if infoFlag {
		printInfo(cmd.OutOrStdout(), deps.Config)
		return nil
	}

	switch deps.Config.Mode {
	case config.ModeStream:
		return runStream(cmd.Context(), deps)
	default:
		return runStdin(cmd.Context(), deps, os.Stdin, cmd.OutOrStdout())
	}
}

// printInfo writes the resolved configuration. No LLM client is built and
// no network call is made.
func printInfo(w io.Writer, cfg config.Config) {
	title := color.New(color.FgCyan, color.Bold)
	title.Fprintln(w, "PipelineAtlas AI Modernization Advisor")
	fmt.Fprintf(w, "  Provider: %s\n", cfg.Provider)
	fmt.Fprintf(w, "  Model:    %s\n", cfg.Model)
	fmt.Fprintf(w, "  Base URL: %s\n", cfg.BaseURL)
	fmt.Fprintf(w, "  Mode:     %s\n", cfg.Mode)
}

// analyzer is the slice of the Advisor the stdin runner needs; tests
// substitute an advisor built on a mock generator.
type analyzer interface {
	Analyze(ctx context.Context, r report.Report) (advisor.Result, error)
	Close() error
}

// runStdin reads one report from in, analyzes it, and pretty-prints the
// result to out. Logs and the progress spinner go to stderr so out stays a
// clean data channel.
func runStdin(ctx context.Context, deps app.Deps, in io.Reader, out io.Writer) error {
	adv, err := app.BuildAdvisor(deps)
	if err != nil {
		return err
	}
	defer adv.Close()
	return analyzeStdin(ctx, adv, in, out)
}

func analyzeStdin(ctx context.Context, adv analyzer, in io.Reader, out io.Writer) error {
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("failed to read stdin: %w", err)
	}
	r, err := report.Decode(data)
	if err != nil {
		return err
	}

	stop := startSpinner(" Analyzing pipeline report...")
	result, err := adv.Analyze(ctx, r)
	stop()
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// runStream consumes reports from the Redis stream until interrupted, with
// a health endpoint alongside. Returns nil after a clean interrupt.
func runStream(ctx context.Context, deps app.Deps) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	adv, err := app.BuildAdvisor(deps)
	if err != nil {
		return err
	}
	defer adv.Close()

	consumer, err := stream.New(deps.Config.RedisURL, adv.Analyze, deps.Log)
	if err != nil {
		return err
	}
	defer consumer.Close()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return consumer.Run(ctx)
	})
	g.Go(func() error {
		return httputil.ServeHealth(ctx, deps.Log, deps.Config.Port)
	})
	return g.Wait()
}

// startSpinner shows progress on stderr while the LLM calls run, but only
// when stderr is a terminal. Returns the stop function.
func startSpinner(suffix string) func() {
	if !isTerminal(os.Stderr) {
		return func() {}
	}
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = suffix
	s.Start()
	return s.Stop
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
