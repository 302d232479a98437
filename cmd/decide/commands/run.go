package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/benvon/smart-decide/internal/config"
	"github.com/benvon/smart-decide/internal/decision"
	"github.com/benvon/smart-decide/internal/logger"
	"github.com/benvon/smart-decide/internal/models"
	"github.com/benvon/smart-decide/internal/services/ai"
	"github.com/benvon/smart-decide/internal/services/recommend"
	"github.com/benvon/smart-decide/internal/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type runOptions struct {
	file   string
	enrich bool
	now    string
	scores bool
	debug  bool
}

// NewRunCmd creates the run command
func NewRunCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Recommend the next task for a request file",
		Long: "Prints the recommendation as JSON. With --enrich and OPENAI_API_KEY set, the explanation " +
			"may be rewritten; the selected task never changes.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecide(cmd, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Request file, YAML or JSON; - for stdin (required)")
	cmd.Flags().BoolVar(&opts.enrich, "enrich", false, "Rewrite the explanation with the configured provider")
	cmd.Flags().StringVar(&opts.now, "now", "", "Evaluate deadlines at this RFC3339 instant instead of the current time")
	cmd.Flags().BoolVar(&opts.scores, "scores", false, "Print the ranking with per-term scores before the recommendation")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Log provider requests and responses to stderr")
	return cmd
}

func runDecide(cmd *cobra.Command, opts *runOptions) error {
	req, err := loadRequest(opts.file, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if err := validation.ValidateDecisionContext(&req); err != nil {
		printValidationError(cmd.ErrOrStderr(), err)
		return fmt.Errorf("request is invalid")
	}

	var engineOpts []decision.Option
	if opts.now != "" {
		now, err := time.Parse(time.RFC3339, opts.now)
		if err != nil {
			return fmt.Errorf("--now must be RFC3339: %w", err)
		}
		engineOpts = append(engineOpts, decision.WithClock(func() time.Time { return now }))
	}
	engine := decision.NewEngine(engineOpts...)

	var serviceOpts []recommend.Option
	if opts.enrich {
		log, enricher, err := newEnricher(opts.debug)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync(log) }()
		serviceOpts = append(serviceOpts, recommend.WithLogger(log), recommend.WithEnricher(enricher))
	}
	svc := recommend.NewService(engine, serviceOpts...)

	out := cmd.OutOrStdout()
	if opts.scores {
		if err := printScores(out, engine.Rank(req)); err != nil {
			return err
		}
	}

	rec, err := svc.Recommend(cmd.Context(), req)
	if err != nil {
		return err
	}
	return printRecommendation(out, rec)
}

func newEnricher(debug bool) (*zap.Logger, *ai.Enricher, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(logger.Options{Console: true, Debug: debug || cfg.ServerDebugMode})
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	enricher := ai.NewEnricherFromConfig(ai.EnrichmentConfig{
		Provider:  cfg.AIProvider,
		APIKey:    cfg.OpenAIKey,
		Model:     cfg.AIModel,
		BaseURL:   cfg.AIBaseURL,
		Timeout:   cfg.AITimeout,
		DebugMode: debug || cfg.ServerDebugMode,
	}, log)
	return log, enricher, nil
}

func printScores(w io.Writer, ranked []decision.ScoredTask) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tTITLE\tSCORE\tIMPACT\tEFFORT\tANXIETY\tDEADLINE\tTIME")
	for i, s := range ranked {
		b := s.Breakdown
		fmt.Fprintf(tw, "%d\t%s\t%.3f\t%.2f\t-%.3f\t-%.2f\t+%.2f\t-%.2f\n",
			i+1, s.Task.Title, s.Score, b.Impact, b.EffortPenalty, b.AnxietyPenalty, b.DeadlineBonus, b.TimePenalty)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w)
	return err
}

func printRecommendation(w io.Writer, rec models.Recommendation) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rec)
}
