// Package cli implements the parley command tree.
package cli

import (
	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewRootCmd creates the root parley command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parley",
		Short: "Automated multi-turn interview sessions",
		Long: `Parley runs automated, multi-turn interview sessions: it asks questions,
collects answers, fans out rubric evaluations and multi-perspective
commentary, and ends the session when the question pool or the time budget
runs out.

Available subcommands:
  run         Run an interview session on stdin/stdout
  questions   Generate and print a question pool

Examples:
  parley run --config parley.yaml
  parley questions --config parley.yaml`,
	}

	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewQuestionsCmd())

	return cmd
}

// newLogger builds the process logger; verbose switches to development
// encoding with debug levels enabled
func newLogger(verbose bool) (logr.Logger, error) {
	var (
		zlog *zap.Logger
		err  error
	)
	if verbose {
		zlog, err = zap.NewDevelopment()
	} else {
		zlog, err = zap.NewProduction()
	}
	if err != nil {
		return logr.Logger{}, err
	}
	return zapr.NewLogger(zlog), nil
}
