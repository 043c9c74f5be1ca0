package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"DocAnalystAI/app"
	"DocAnalystAI/app/agent"
	"DocAnalystAI/app/configs"
	"DocAnalystAI/app/knowledge"
	"DocAnalystAI/app/report"
	"DocAnalystAI/app/runtime"
	"DocAnalystAI/app/storage"
	"DocAnalystAI/app/utils"
)

// annotationNoModel marks commands that never call the model and so run without a credential.
const annotationNoModel = "no-model"

const (
	exitOK          = 0
	exitFailure     = 1
	exitInterrupted = 130
)

type session struct {
	envFile   string
	profile   string
	noPreview bool
	limit     int
	runID     string

	cfg     *configs.Config
	audit   *runtime.AuditLogger
	closeFn func() error
}

func main() {
	os.Exit(execute(os.Args[1:]))
}

func execute(args []string) int {
	slog.SetDefault(app.NewConsoleLogger())
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := &session{}
	root := newRootCmd(s)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if s.closeFn != nil {
		defer s.closeFn()
	}
	return exitCode(ctx, err)
}

func exitCode(ctx context.Context, err error) int {
	var cerr *configs.ConfigurationError
	switch {
	case err == nil:
		return exitOK
	case ctx.Err() != nil || errors.Is(err, context.Canceled):
		slog.Warn("⚠️ Execution interrupted by the user")
		return exitInterrupted
	case errors.As(err, &cerr):
		slog.Log(ctx, app.LevelCritical, "❌ Configuration error", "field", cerr.Field, "error", cerr.Err)
		return exitFailure
	default:
		slog.Log(ctx, app.LevelCritical, "❌ Unexpected error", "error", fmt.Sprintf("%+v", err))
		return exitFailure
	}
}

func newRootCmd(s *session) *cobra.Command {
	root := &cobra.Command{
		Use:           "docanalyst",
		Short:         "Index company documents and produce an AI analysis report",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, noModel := cmd.Annotations[annotationNoModel]
			return s.setup(noModel)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.runAnalysis(cmd.Context(), cmd.OutOrStdout())
		},
	}
	root.PersistentFlags().StringVar(&s.envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	root.PersistentFlags().StringVar(&s.profile, "profile", "", "YAML profile overriding questions, table and retries")
	root.PersistentFlags().BoolVar(&s.noPreview, "no-preview", false, "skip the executive preview after the report")

	root.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Run the full analysis pipeline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.runAnalysis(cmd.Context(), cmd.OutOrStdout())
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "index",
		Short: "Index the knowledge directory without asking questions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.runIndex(cmd.Context(), cmd.OutOrStdout())
		},
	})

	historyCmd := &cobra.Command{
		Use:   "history",
		Short:       "List recent runs, or the answers of one run",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationNoModel: ""},
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.showHistory(cmd.Context(), cmd.OutOrStdout())
		},
	}
	historyCmd.Flags().IntVar(&s.limit, "limit", 10, "number of runs to list")
	historyCmd.Flags().StringVar(&s.runID, "run", "", "show the answers recorded for this run ID")
	root.AddCommand(historyCmd)

	return root
}

func (s *session) setup(noModel bool) error {
	cfg, err := configs.Load(configs.LoadOptions{
		EnvFile:        s.envFile,
		ProfilePath:    s.profile,
		SkipCredential: noModel,
	})
	if err != nil {
		return err
	}

	s.audit = runtime.NewAuditLogger(200)
	logger, closer, err := app.NewLogger(cfg.Output, s.audit)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	s.cfg = cfg
	s.closeFn = closer.Close

	slog.Info(fmt.Sprintf("🚀 Starting %s", cfg.Agent.Name), "config", cfg)
	return nil
}

func (s *session) runIndex(ctx context.Context, w io.Writer) error {
	cfg := s.cfg
	if err := configs.Validate(cfg); err != nil {
		return err
	}
	printKnowledgeTree(w, cfg.Knowledge.Dir)

	model, err := getModel(ctx, cfg)
	if err != nil {
		return err
	}
	defer model.Close()

	vectors, err := getVectors(cfg)
	if err != nil {
		return fmt.Errorf("open vector store: %w", err)
	}
	defer vectors.Close()

	store := getKnowledgeStore(model, vectors, cfg)
	rep, err := knowledge.NewIndexer(store, cfg.Knowledge.Pattern).Index(ctx, cfg.Knowledge.Dir)
	if err != nil {
		return err
	}
	for _, d := range rep.Documents {
		fmt.Fprintf(w, "%-8s %s\n", d.Status, d.Name)
	}
	return nil
}

func (s *session) runAnalysis(ctx context.Context, w io.Writer) error {
	cfg := s.cfg
	if err := configs.Validate(cfg); err != nil {
		return err
	}
	printKnowledgeTree(w, cfg.Knowledge.Dir)

	model, err := getModel(ctx, cfg)
	if err != nil {
		return err
	}
	defer model.Close()

	vectors, err := getVectors(cfg)
	if err != nil {
		return fmt.Errorf("open vector store: %w", err)
	}
	defer vectors.Close()

	store := getKnowledgeStore(model, vectors, cfg)
	ag := agent.New(model, store, cfg)
	slog.Info("🧑‍💼 Agent configured", "agent", ag.Name(), "max_results", cfg.Knowledge.MaxResults)

	notifiers := getNotifiers(cfg)
	defer notifiers.CloseAll()

	opts := []runtime.Option{
		runtime.WithAudit(s.audit),
		runtime.WithNotifiers(notifiers),
		runtime.WithPreview(w),
	}
	if s.noPreview {
		opts = append(opts, runtime.WithPreview(nil))
	}
	if db := getHistory(cfg); db != nil {
		defer db.Close()
		opts = append(opts, runtime.WithHistory(db))
	}
	if p := getPublisher(cfg); p != nil {
		opts = append(opts, runtime.WithPublisher(p))
	}

	rt := runtime.NewRuntime(
		cfg,
		cfg.LLM.Model,
		knowledge.NewIndexer(store, cfg.Knowledge.Pattern),
		agent.WithRetry(ag, agent.PolicyFromConfig(cfg.Agent.Retry)),
		report.NewGenerator(cfg.Output.ReportsDir),
		opts...,
	)

	out, err := rt.Run(ctx)
	if err != nil {
		return err
	}

	slog.Info("✅ Process finished",
		"answered", fmt.Sprintf("%d/%d", out.Summary.Succeeded(), out.Summary.Total()),
		"report", out.ReportPath,
	)
	return nil
}

func (s *session) showHistory(ctx context.Context, w io.Writer) error {
	db, err := storage.NewSQLiteStorage(s.cfg.Output.HistoryDB)
	if err != nil {
		return err
	}
	defer db.Close()

	if s.runID != "" {
		results, err := db.GetResultsByRunID(ctx, s.runID)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Fprintf(w, "No results recorded for run %s.\n", s.runID)
			return nil
		}
		for _, r := range results {
			fmt.Fprintf(w, "%d. [%s] %s\n%s\n\n", r.Number, r.Status, r.Question, r.Answer)
		}
		return nil
	}

	runs, err := db.ListRuns(ctx, s.limit)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, storage.RunListToString(runs))
	return nil
}

func printKnowledgeTree(w io.Writer, dir string) {
	tree, err := utils.BuildTree(dir, nil, nil)
	if err != nil {
		slog.Warn("⚠️ Could not list knowledge directory", "error", err)
		return
	}
	fmt.Fprintln(w, tree)
}
