package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"DocAnalystAI/app/analysis"
	"DocAnalystAI/app/clients"
	"DocAnalystAI/app/configs"
	"DocAnalystAI/app/knowledge"
	"DocAnalystAI/app/report"
	"DocAnalystAI/app/storage"
)

const answersLogFile = "answers.log"

type Indexer interface {
	Index(ctx context.Context, dir string) (knowledge.IndexReport, error)
}

type ReportGenerator interface {
	Generate(summary *analysis.Summary, meta report.Metadata) (string, error)
}

// Outcome is what a finished run produced.
type Outcome struct {
	Index      knowledge.IndexReport
	Summary    *analysis.Summary
	ReportPath string
	ReportURL  string
	Preview    string
}

type Runtime struct {
	cfg       *configs.Config
	model     string
	indexer   Indexer
	asker     analysis.Asker
	reports   ReportGenerator
	history   storage.Interface
	publisher report.Publisher
	notifiers *clients.Registry
	audit     *AuditLogger
	preview   io.Writer
}

type Option func(*Runtime)

func WithHistory(db storage.Interface) Option {
	return func(r *Runtime) { r.history = db }
}

func WithPublisher(p report.Publisher) Option {
	return func(r *Runtime) { r.publisher = p }
}

func WithNotifiers(reg *clients.Registry) Option {
	return func(r *Runtime) { r.notifiers = reg }
}

func WithAudit(a *AuditLogger) Option {
	return func(r *Runtime) { r.audit = a }
}

// WithPreview sets where the executive preview is printed. A nil writer disables the preview.
func WithPreview(w io.Writer) Option {
	return func(r *Runtime) { r.preview = w }
}

func NewRuntime(cfg *configs.Config, modelName string, indexer Indexer, asker analysis.Asker, reports ReportGenerator, opts ...Option) *Runtime {
	r := &Runtime{
		cfg:     cfg,
		model:   modelName,
		indexer: indexer,
		asker:   asker,
		reports: reports,
		preview: os.Stdout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// IndexKnowledge validates the configuration and indexes the knowledge directory.
func (r *Runtime) IndexKnowledge(ctx context.Context) (knowledge.IndexReport, error) {
	if err := configs.Validate(r.cfg); err != nil {
		return knowledge.IndexReport{}, err
	}
	slog.Info("✅ Configuration validated", "config", r.cfg)
	return r.indexer.Index(ctx, r.cfg.Knowledge.Dir)
}

// Run executes the whole pipeline: validate, index, analyse, report, then the optional steps. Only
// the preconditions, indexing, the analysis loop and the report write can fail the run.
func (r *Runtime) Run(ctx context.Context) (*Outcome, error) {
	out, err := r.run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		var cerr *configs.ConfigurationError
		if !errors.As(err, &cerr) {
			r.notifyFailure(ctx, out, err)
		}
	}
	return out, err
}

func (r *Runtime) run(ctx context.Context) (*Outcome, error) {
	out := &Outcome{}

	idx, err := r.IndexKnowledge(ctx)
	out.Index = idx
	if err != nil {
		return out, err
	}

	if err = os.MkdirAll(r.cfg.Output.LogsDir, os.ModePerm); err != nil {
		return out, fmt.Errorf("create logs directory: %w", err)
	}
	transcript := filepath.Join(r.cfg.Output.LogsDir, answersLogFile)

	runner := analysis.NewRunner(analysis.OnResult(func(runID string, res analysis.QuestionResult) {
		AppendAnswerLog(transcript, runID, res)
	}))
	slog.Info(fmt.Sprintf("🧠 Starting analysis with %d question(s)", len(r.cfg.Questions)), "agent", r.cfg.Agent.Name, "model", r.model)

	summary, err := runner.Run(ctx, r.asker, r.cfg.Questions)
	out.Summary = summary
	if err != nil {
		return out, err
	}

	out.ReportPath, err = r.reports.Generate(summary, report.Metadata{
		Model:     r.model,
		Agent:     r.cfg.Agent.Name,
		SourceDir: r.cfg.Knowledge.Dir,
		Documents: idx.Names(),
	})
	if err != nil {
		return out, err
	}

	r.saveHistory(ctx, out)
	r.publish(ctx, out)
	r.notifySuccess(ctx, out)

	if err = r.runPreview(ctx, out); err != nil {
		return out, err
	}
	return out, nil
}

func (r *Runtime) saveHistory(ctx context.Context, out *Outcome) {
	if r.history == nil {
		return
	}
	s := out.Summary
	err := r.history.SaveRun(ctx, storage.Run{
		ID:         s.ID,
		StartedAt:  s.StartedAt,
		Model:      r.model,
		Agent:      r.cfg.Agent.Name,
		Source:     r.cfg.Knowledge.Dir,
		Total:      s.Total(),
		Succeeded:  s.Succeeded(),
		ReportPath: out.ReportPath,
	})
	if err != nil {
		slog.Warn("⚠️ Run not recorded in history", "error", err)
		return
	}
	for _, res := range s.Results {
		if err = r.history.SaveResult(ctx, storage.Result{
			RunID:    s.ID,
			Number:   res.Number,
			Question: res.Question,
			Answer:   res.Answer,
			Status:   string(res.Status),
			Duration: res.Duration,
		}); err != nil {
			slog.Warn("⚠️ Result not recorded in history", "number", res.Number, "error", err)
		}
	}
}

func (r *Runtime) publish(ctx context.Context, out *Outcome) {
	if r.publisher == nil {
		return
	}
	url, err := r.publisher.Publish(ctx, out.ReportPath)
	if err != nil {
		slog.Warn("⚠️ Report not published", "error", err)
		return
	}
	out.ReportURL = url
}

func (r *Runtime) notifySuccess(ctx context.Context, out *Outcome) {
	if r.notifiers == nil {
		return
	}
	s := out.Summary
	n := clients.Notification{
		RunID:      s.ID,
		Agent:      r.cfg.Agent.Name,
		Model:      r.model,
		Total:      s.Total(),
		Succeeded:  s.Succeeded(),
		ReportPath: out.ReportPath,
		ReportURL:  out.ReportURL,
	}
	for _, res := range s.Results {
		if !res.Succeeded() {
			n.Failed = append(n.Failed, fmt.Sprintf("%d. %s", res.Number, res.Question))
		}
	}
	r.notifiers.Notify(ctx, n)
}

func (r *Runtime) notifyFailure(ctx context.Context, out *Outcome, runErr error) {
	if r.notifiers == nil {
		return
	}
	n := clients.Notification{Agent: r.cfg.Agent.Name, Model: r.model, Err: runErr.Error()}
	if out != nil && out.Summary != nil {
		n.RunID = out.Summary.ID
	}
	if r.audit != nil {
		n.RecentLogs = r.audit.Last(10, "WARN", "ERROR")
	}
	r.notifiers.Notify(ctx, n)
}

// runPreview asks one more question and prints the answer. Its failure leaves the written report
// untouched and only cancellation is reported back.
func (r *Runtime) runPreview(ctx context.Context, out *Outcome) error {
	if r.preview == nil || r.cfg.Agent.PreviewQuestion == "" {
		return nil
	}

	slog.Info("📊 Report preview")
	answer, err := r.asker.Ask(ctx, r.cfg.Agent.PreviewQuestion)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		slog.Warn("⚠️ Preview unavailable", "error", err)
		return nil
	}

	out.Preview = answer
	fmt.Fprintf(r.preview, "\n%s\n\n", answer)
	return nil
}
