package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/stratagem-ai/stratagem/pkg/adapter"
	"github.com/stratagem-ai/stratagem/pkg/artifact"
	"github.com/stratagem-ai/stratagem/pkg/config"
	"github.com/stratagem-ai/stratagem/pkg/llm"
	"github.com/stratagem-ai/stratagem/pkg/pipeline"
)

var (
	adapterFlag string
	modelFlag   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "stratagem",
		Short: "Staged LLM pipelines for strategy analyses, concepts, and requirement documents",
		Long: `Stratagem chains dependent LLM calls into staged pipelines: framework
	analyses (3C, 4P, PEST), product concept generation and refinement,
	and requirement document generation and refinement. Each stage's
	validated output feeds the next stage's prompt.`,
	}

	rootCmd.PersistentFlags().StringVar(&adapterFlag, "adapter", "", "adapter to use (anthropic, openai, google, deepseek, mock)")
	rootCmd.PersistentFlags().StringVar(&modelFlag, "model", "", "model to use")

	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(conceptCmd())
	rootCmd.AddCommand(refineConceptCmd())
	rootCmd.AddCommand(prdCmd())
	rootCmd.AddCommand(refinePrdCmd())
	rootCmd.AddCommand(renderCmd())
	rootCmd.AddCommand(modelsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func analyzeCmd() *cobra.Command {
	var framework string
	var fields []string
	var out string

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run a framework analysis pipeline",
		Long: `Runs the three-stage analysis pipeline (initial analysis, deep
	analysis, final recommendations) for the chosen framework.

	Input fields depend on the framework:
	  3c:   company, customer, competitor
	  4p:   product, price, place, promotion
	  pest: political, economic, social, technological`,
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, ok := pipeline.TypeForFramework(framework)
			if !ok {
				return fmt.Errorf("unknown framework %q (want 3c, 4p, or pest)", framework)
			}

			in := pipeline.Input{Fields: parseKeyValues(fields)}
			fw, _ := pipeline.FrameworkFor(typ)
			for _, dim := range fw.Dimensions {
				if strings.TrimSpace(in.Field(dim.Key)) == "" {
					return fmt.Errorf("missing --field %s=... for framework %s", dim.Key, framework)
				}
			}

			return runPipeline(cmd.Context(), typ, in, out)
		},
	}

	cmd.Flags().StringVar(&framework, "framework", "3c", "analysis framework: 3c, 4p, or pest")
	cmd.Flags().StringArrayVar(&fields, "field", nil, "input field as key=value (repeatable)")
	cmd.Flags().StringVar(&out, "out", "", "write artifact JSON and markdown to this path prefix")
	return cmd
}

func conceptCmd() *cobra.Command {
	var from []string
	var out string

	cmd := &cobra.Command{
		Use:   "concept",
		Short: "Generate product concepts from saved analyses",
		Long: `Runs the concept-generation pipeline (summarize, correlate,
	propose) over one or more saved analysis artifacts.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(from) == 0 {
				return fmt.Errorf("at least one --from analysis artifact is required")
			}

			var sb strings.Builder
			for _, path := range from {
				a, err := artifact.Load(path)
				if err != nil {
					return err
				}
				sb.WriteString(artifact.Markdown(a))
				sb.WriteString("\n")
			}

			in := pipeline.Input{Fields: map[string]string{"analyses": sb.String()}}
			return runPipeline(cmd.Context(), pipeline.ConceptGeneration, in, out)
		},
	}

	cmd.Flags().StringArrayVar(&from, "from", nil, "analysis artifact JSON file (repeatable)")
	cmd.Flags().StringVar(&out, "out", "", "write artifact JSON and markdown to this path prefix")
	return cmd
}

func refineConceptCmd() *cobra.Command {
	return refinementCmd(
		"refine-concept",
		"Refine an existing concept under constraints",
		pipeline.ConceptRefinement,
	)
}

func prdCmd() *cobra.Command {
	return refinementCmd(
		"prd",
		"Generate a requirement document from a concept",
		pipeline.RequirementGeneration,
	)
}

func refinePrdCmd() *cobra.Command {
	return refinementCmd(
		"refine-prd",
		"Refine an existing requirement document under constraints",
		pipeline.RequirementRefinement,
	)
}

// refinementCmd builds the shared command shape for the single-stage
// pipelines that take a prior artifact plus constraints.
func refinementCmd(use, short string, typ pipeline.Type) *cobra.Command {
	var artifactPath string
	var constraints []string
	var out string

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			prior, err := artifact.Load(artifactPath)
			if err != nil {
				return err
			}

			in := pipeline.Input{
				PriorArtifact: prior,
				Constraints:   parseKeyValues(constraints),
			}
			return runPipeline(cmd.Context(), typ, in, out)
		},
	}

	cmd.Flags().StringVar(&artifactPath, "artifact", "", "prior artifact JSON file")
	cmd.Flags().StringArrayVar(&constraints, "constraint", nil, "constraint as key=value (repeatable)")
	cmd.Flags().StringVar(&out, "out", "", "write artifact JSON and markdown to this path prefix")
	_ = cmd.MarkFlagRequired("artifact")
	return cmd
}

func renderCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "render [artifact.json]",
		Short: "Render a saved artifact as markdown or HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := artifact.Load(args[0])
			if err != nil {
				return err
			}

			switch format {
			case "markdown":
				fmt.Print(artifact.Markdown(a))
			case "html":
				html, err := artifact.HTML(a)
				if err != nil {
					return err
				}
				fmt.Print(html)
			default:
				return fmt.Errorf("unknown format %q (want markdown or html)", format)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "markdown", "output format: markdown or html")
	return cmd
}

func modelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List configured adapters and their models",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			adapters, err := createAdapters(cfg)
			if err != nil {
				return err
			}

			names := make([]string, 0, len(adapters))
			for name := range adapters {
				names = append(names, name)
			}
			sort.Strings(names)

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ADAPTER\tMODEL")
			for _, name := range names {
				for _, model := range adapters[name].Models() {
					fmt.Fprintf(w, "%s\t%s\n", name, model)
				}
			}
			return w.Flush()
		},
	}
}

// runPipeline wires config, adapter, and runner, executes the pipeline
// with a progress poller attached, and writes or prints the artifact.
func runPipeline(ctx context.Context, typ pipeline.Type, in pipeline.Input, out string) error {
	client, err := selectClient()
	if err != nil {
		return err
	}

	runner := pipeline.NewRunner(client)
	exec, err := runner.NewExecution(typ)
	if err != nil {
		return err
	}

	done := make(chan struct{})
	go watchProgress(exec, done)

	a, err := runner.Execute(ctx, exec, in)
	close(done)
	if err != nil {
		var stageErr *pipeline.StageError
		if errors.As(err, &stageErr) {
			fmt.Fprintf(os.Stderr, "pipeline failed at stage %s (%s): %v\n", stageErr.StageID, stageErr.Title, stageErr.Err)
			fmt.Fprintf(os.Stderr, "completed stages: %d\n", len(stageErr.Completed))
		}
		return err
	}

	if out != "" {
		if err := a.Save(out + ".json"); err != nil {
			return err
		}
		if err := os.WriteFile(out+".md", []byte(artifact.Markdown(a)), 0644); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "artifact written to %s.json and %s.md\n", out, out)
		return nil
	}

	fmt.Print(artifact.Markdown(a))
	return nil
}

// watchProgress polls the execution snapshot and prints each stage's
// status transitions until the run finishes.
func watchProgress(exec *pipeline.Execution, done <-chan struct{}) {
	last := make(map[string]pipeline.Status)
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	report := func() {
		for _, run := range exec.Snapshot() {
			if last[run.StageID] == run.Status {
				continue
			}
			last[run.StageID] = run.Status
			if run.Status == pipeline.StatusWaiting {
				continue
			}
			fmt.Fprintf(os.Stderr, "[%s] %s (%s)\n", run.Status, run.Title, run.StageID)
		}
	}

	for {
		select {
		case <-done:
			report()
			return
		case <-ticker.C:
			report()
		}
	}
}

func selectClient() (*llm.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	adapters, err := createAdapters(cfg)
	if err != nil {
		return nil, err
	}

	name := adapterFlag
	if name == "" {
		name = cfg.DefaultAdapter
	}
	a, ok := adapters[name]
	if !ok {
		return nil, fmt.Errorf("adapter %q not available (no API key configured?)", name)
	}

	model := modelFlag
	if model == "" && name == cfg.DefaultAdapter {
		model = cfg.DefaultModel
	}

	return llm.NewClient(a, model)
}

func createAdapters(cfg *config.Config) (map[string]adapter.Adapter, error) {
	adapters := map[string]adapter.Adapter{
		"mock": adapter.NewMockAdapter(),
	}

	if cfg.HasAdapter("anthropic") {
		a, err := adapter.NewAnthropicAdapter(cfg.AnthropicAPIKey)
		if err != nil {
			return nil, err
		}
		adapters[a.Name()] = a
	}
	if cfg.HasAdapter("openai") {
		a, err := adapter.NewOpenAIAdapter(cfg.OpenAIAPIKey)
		if err != nil {
			return nil, err
		}
		adapters[a.Name()] = a
	}
	if cfg.HasAdapter("google") {
		a, err := adapter.NewGoogleAdapter(cfg.GoogleAPIKey)
		if err != nil {
			return nil, err
		}
		adapters[a.Name()] = a
	}
	if cfg.HasAdapter("deepseek") {
		a, err := adapter.NewDeepSeekAdapter(cfg.DeepSeekAPIKey)
		if err != nil {
			return nil, err
		}
		adapters[a.Name()] = a
	}

	return adapters, nil
}

func parseKeyValues(pairs []string) map[string]string {
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found {
			continue
		}
		out[strings.TrimSpace(key)] = value
	}
	return out
}
