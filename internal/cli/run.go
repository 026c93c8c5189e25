package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/parley-dev/parley/internal/config"
	"github.com/parley-dev/parley/internal/metrics"
	"github.com/parley-dev/parley/pkg/interview/analyzers"
	"github.com/parley-dev/parley/pkg/interview/bus"
	"github.com/parley-dev/parley/pkg/interview/channel"
	"github.com/parley-dev/parley/pkg/interview/events"
	"github.com/parley-dev/parley/pkg/interview/memory"
	"github.com/parley-dev/parley/pkg/interview/questions"
	"github.com/parley-dev/parley/pkg/interview/session"
	"github.com/parley-dev/parley/pkg/interview/thinker"
	"github.com/parley-dev/parley/pkg/interview/tree"
)

const shutdownTimeout = 10 * time.Second

// NewRunCmd creates the run command
func NewRunCmd() *cobra.Command {
	var (
		configPath string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run an interview session on stdin/stdout",
		Long: `Run starts one interview session. Questions and analysis results are
written to stdout as JSON lines; candidate answers are read from stdin,
one per line. The session ends when the question pool is exhausted, the
time budget runs out, or the process receives SIGINT/SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd.Context(), configPath, verbose)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "parley.yaml", "Path to the configuration file")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	return cmd
}

func runSession(ctx context.Context, configPath string, verbose bool) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := newLogger(verbose)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	busMetrics := metrics.NewBus(reg)
	analyzerMetrics := metrics.NewAnalyzers(reg)
	if cfg.Metrics.Enabled {
		serveMetrics(log, reg, cfg.Metrics.Addr)
	}

	store, err := newStore(cfg)
	if err != nil {
		return err
	}

	think, err := newThinker(cfg)
	if err != nil {
		return err
	}

	broker := bus.NewBroker(log, bus.WithMetrics(busMetrics))
	manager := questions.NewManager(log, broker, store, newStrategy(cfg, think))

	sctx := &session.SessionContext{
		SessionID: uuid.NewString(),
		Broker:    broker,
		Questions: manager,
		Memory:    store,
		Abilities: session.Abilities{
			Evaluations:  cfg.Session.Evaluations,
			Perspectives: cfg.Session.Perspectives,
		},
		MaxTime: cfg.Session.MaxTime,
	}

	conversation := tree.New(cfg.Session.Tree.MaxDepth, cfg.Session.Tree.MaxBreadth)
	chooser := tree.NewDirectionChooser(cfg.Session.Tree.DepthWeight, cfg.Session.Tree.BreadthWeight)

	evalRegistry := analyzers.NewRegistry()
	perspRegistry := analyzers.NewRegistry()
	seedAnalyzers := func(context.Context) error {
		if err := evalRegistry.Register(analyzers.NewRubricAnalyzer(think, store)); err != nil {
			return err
		}
		for _, persona := range cfg.Analyzers.Personas {
			if err := perspRegistry.Register(analyzers.NewPersonaAnalyzer(think, store, persona)); err != nil {
				return err
			}
		}
		return nil
	}

	deps := session.Deps{
		Context:       sctx,
		Processor:     session.NewAnswerProcessor(log, sctx, conversation, chooser),
		Timer:         session.NewTimeManager(log, broker, cfg.Session.MaxTime, cfg.Session.TickInterval),
		Channel:       channel.NewWriterChannel(os.Stdout),
		RoleBuilder:   newRoleBuilder(cfg, think, store),
		SeedAnalyzers: seedAnalyzers,
	}
	if cfg.Session.Evaluations {
		deps.Evaluations = analyzers.NewEvaluationCoordinator(log, broker, evalRegistry, analyzerMetrics)
	}
	if cfg.Session.Perspectives {
		deps.Perspectives = analyzers.NewPerspectiveCoordinator(log, broker, perspRegistry, analyzerMetrics)
	}

	lifecycle := session.NewLifecycle(log, deps)
	if err := lifecycle.Initialize(ctx); err != nil {
		return err
	}

	go readAnswers(log, broker, sctx.SessionID, os.Stdin, lifecycle.Done())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-lifecycle.Done():
	case sig := <-sigChan:
		log.Info("shutdown signal received", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return lifecycle.Shutdown(shutdownCtx)
}

// newThinker seeds the provider registry with every supported provider and
// resolves the configured one by name
func newThinker(cfg *config.Config) (thinker.Thinker, error) {
	modelCfg := thinker.ModelConfig{
		Model:       cfg.Thinker.Model,
		MaxTokens:   cfg.Thinker.MaxTokens,
		Temperature: cfg.Thinker.Temperature,
	}

	registry := thinker.NewRegistry()
	for _, name := range []string{"anthropic", "openai"} {
		provider, err := thinker.New(name, cfg.Thinker.APIKey, modelCfg)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(provider); err != nil {
			return nil, err
		}
	}
	return registry.Get(cfg.Thinker.Provider)
}

func newStore(cfg *config.Config) (memory.Store, error) {
	switch cfg.Storage.Backend {
	case "sqlite":
		return memory.NewSQLiteStore(cfg.Storage.Path)
	default:
		return memory.NewInMemoryStore(), nil
	}
}

func newStrategy(cfg *config.Config, think thinker.Thinker) questions.Strategy {
	if cfg.Questions.Strategy == "thinker" {
		return questions.NewThinkerStrategy(think, cfg.Questions.Topic, cfg.Questions.Count)
	}
	return questions.NewBankStrategy(bankQuestions(cfg), cfg.Questions.Count)
}

func bankQuestions(cfg *config.Config) []events.QuestionAndAnswer {
	bank := make([]events.QuestionAndAnswer, 0, len(cfg.Questions.Bank))
	for _, q := range cfg.Questions.Bank {
		bank = append(bank, events.QuestionAndAnswer{
			Question:        q.Question,
			ReferenceAnswer: q.ReferenceAnswer,
			ScoringHints:    q.ScoringHints,
		})
	}
	return bank
}

func newRoleBuilder(cfg *config.Config, think thinker.Thinker, store memory.Store) session.RoleBuilder {
	if cfg.Session.Role == "" {
		return session.NoopRoleBuilder{}
	}
	return session.NewThinkerRoleBuilder(think, store, cfg.Session.Role)
}

// readAnswers publishes each stdin line as an inbound transport message
func readAnswers(log logr.Logger, broker *bus.Broker, sessionID string, r io.Reader, done <-chan struct{}) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		select {
		case <-done:
			return
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		broker.Publish(events.MessageReceivedEvent{
			Base:       events.NewBase(""),
			SessionID:  sessionID,
			RawPayload: line,
		})
	}
	if err := scanner.Err(); err != nil {
		log.Error(err, "stdin read failed")
	}
}

func serveMetrics(log logr.Logger, reg *prometheus.Registry, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	go func() {
		log.Info("metrics endpoint listening", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Error(err, "metrics endpoint failed")
		}
	}()
}
