package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/parley-dev/parley/internal/config"
)

// NewQuestionsCmd creates the questions command
func NewQuestionsCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "questions",
		Short: "Generate and print a question pool",
		Long: `Questions runs the configured generation strategy once and prints the
resulting pool, without starting a session. Useful for reviewing a question
bank or previewing what the thinker strategy synthesizes for a topic.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printQuestions(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "parley.yaml", "Path to the configuration file")

	return cmd
}

func printQuestions(cmd *cobra.Command, configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	think, err := newThinker(cfg)
	if err != nil {
		return err
	}

	pool, err := newStrategy(cfg, think).Generate(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for i, q := range pool {
		fmt.Fprintf(out, "%d. %s\n", i+1, q.Question)
		if q.ReferenceAnswer != "" {
			fmt.Fprintf(out, "   reference: %s\n", q.ReferenceAnswer)
		}
		for _, hint := range q.ScoringHints {
			fmt.Fprintf(out, "   hint: %s\n", hint)
		}
	}
	return nil
}
