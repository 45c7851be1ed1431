package judge

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/ricesearch/bugeval/internal/bus"
	"github.com/ricesearch/bugeval/internal/dataset"
	"github.com/ricesearch/bugeval/internal/pkg/errors"
	"github.com/ricesearch/bugeval/internal/pkg/logger"
)

// Skip reasons reported by the runner.
const (
	SkipListed    = "skip_list"
	SkipMalformed = "malformed_judgement"
	SkipLLMError  = "judge_error"
)

// Recorder receives judge run metrics.
type Recorder interface {
	RecordJudgeRequest(d time.Duration, err error)
	RecordSkip(reason string)
}

// Inputs are the per-report materials a judge run reads.
type Inputs struct {
	Reports     []dataset.BugReportEntry
	GroundTruth map[string][]string
	CodeDiffs   map[string]json.RawMessage
	SourceCode  map[string]json.RawMessage
}

// IndexCodeDiffs maps filename to code diff. The first entry for a filename wins.
func IndexCodeDiffs(entries []dataset.CodeDiffEntry) map[string]json.RawMessage {
	m := make(map[string]json.RawMessage, len(entries))
	for _, e := range entries {
		if _, ok := m[e.Filename]; !ok {
			m[e.Filename] = e.CodeDiff
		}
	}
	return m
}

// IndexSourceCode maps filename to stack-trace methods. The first entry for a filename wins.
func IndexSourceCode(entries []dataset.SourceCodeEntry) map[string]json.RawMessage {
	m := make(map[string]json.RawMessage, len(entries))
	for _, e := range entries {
		if _, ok := m[e.Filename]; !ok {
			m[e.Filename] = e.SourceCode
		}
	}
	return m
}

// RunnerConfig holds judge run settings.
type RunnerConfig struct {
	RequestsPerMinute int           // 0 = unlimited
	Timeout           time.Duration // per request, 0 = none
	Skip              dataset.SkipList
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the runner's logger.
func WithLogger(log *logger.Logger) Option {
	return func(r *Runner) { r.log = log }
}

// WithMetrics sets the runner's metrics recorder.
func WithMetrics(m Recorder) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithBus publishes a judgement event for every judged report.
func WithBus(b bus.Bus, correlationID string) Option {
	return func(r *Runner) {
		r.bus = b
		r.correlationID = correlationID
	}
}

// Runner judges bug reports one at a time, checkpointing after each.
type Runner struct {
	client        Client
	limiter       *rate.Limiter
	timeout       time.Duration
	skip          dataset.SkipList
	log           *logger.Logger
	metrics       Recorder
	bus           bus.Bus
	correlationID string
}

// NewRunner creates a judge runner.
func NewRunner(client Client, cfg RunnerConfig, opts ...Option) *Runner {
	limit := rate.Inf
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.RequestsPerMinute))
	}

	r := &Runner{
		client:  client,
		limiter: rate.NewLimiter(limit, 1),
		timeout: cfg.Timeout,
		skip:    cfg.Skip,
		log:     logger.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunSummary describes one judge run.
type RunSummary struct {
	Judged  int   // newly judged in this run
	Resumed int   // already present in the output
	Skipped int   // on a skip list
	Failed  int   // LLM error or unparseable reply
	Tally   Tally // over the newly judged reports
}

// Run judges every report in in.Reports, in order, and writes the record
// list to outputPath after each one. Reports already present in outputPath
// are not judged again. Per-report failures are logged and skipped; only an
// unreadable output file, a failed write or cancellation stop the run.
func (r *Runner) Run(ctx context.Context, in Inputs, outputPath string) (RunSummary, error) {
	var summary RunSummary

	output, err := loadExisting(outputPath)
	if err != nil {
		return summary, err
	}
	processed := make(map[string]bool, len(output))
	for _, rec := range output {
		processed[rec.Filename] = true
	}

	for _, report := range in.Reports {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		log := r.log.WithReport(report.Filename)

		if processed[report.Filename] {
			summary.Resumed++
			continue
		}
		if list, ok := r.skip.Contains(report.Filename); ok {
			log.Info("Skipping bug report", "reason", SkipListed, "list", list)
			r.recordSkip(SkipListed)
			summary.Skipped++
			continue
		}

		rec, judgement, err := r.judge(ctx, log, report, in)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return summary, ctxErr
			}
			summary.Failed++
			continue
		}

		output = append(output, rec)
		processed[report.Filename] = true
		summary.Judged++
		summary.Tally = summary.Tally.Add(judgement)

		if err := dataset.WriteJSON(outputPath, output); err != nil {
			return summary, err
		}
		log.Debug("Progress saved", "output", outputPath, "records", len(output))

		r.publish(ctx, log, report.Filename, judgement)
	}

	return summary, nil
}

func (r *Runner) judge(ctx context.Context, log *logger.Logger, report dataset.BugReportEntry, in Inputs) (dataset.JudgementRecord, Judgement, error) {
	codeDiff := in.CodeDiffs[report.Filename]
	if len(codeDiff) == 0 {
		codeDiff = json.RawMessage("{}")
	}
	sourceCode := in.SourceCode[report.Filename]
	if len(sourceCode) == 0 {
		sourceCode = json.RawMessage("{}")
	}

	prompt, err := RenderPrompt(PromptInput{
		BugReport:   dataset.Text(report.BugReport),
		GroundTruth: in.GroundTruth[report.Filename],
		CodeDiff:    dataset.Text(codeDiff),
		SourceCode:  dataset.Text(sourceCode),
	})
	if err != nil {
		log.WithError(err).Error("Failed to render judge prompt")
		return dataset.JudgementRecord{}, Judgement{}, err
	}

	reply, err := r.generate(ctx, prompt)
	if err != nil {
		log.WithError(err).Warn("Judge request failed", "reason", SkipLLMError)
		r.recordSkip(SkipLLMError)
		return dataset.JudgementRecord{}, Judgement{}, err
	}

	judgement, raw, err := ParseResponse(reply)
	if err != nil {
		log.WithError(err).Warn("Failed to parse judgement", "reason", SkipMalformed)
		r.recordSkip(SkipMalformed)
		return dataset.JudgementRecord{}, Judgement{}, err
	}

	return dataset.JudgementRecord{
		Filename:     report.Filename,
		CodeDiff:     codeDiff,
		LLMJudgement: raw,
	}, judgement, nil
}

func (r *Runner) generate(ctx context.Context, prompt string) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", err
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	reply, err := r.client.GenerateJSON(ctx, prompt)
	if r.metrics != nil {
		r.metrics.RecordJudgeRequest(time.Since(start), err)
	}
	if err != nil && ctx.Err() == context.DeadlineExceeded {
		return "", errors.Wrap(errors.CodeTimeout, "judge request timed out", err)
	}
	return reply, err
}

func (r *Runner) recordSkip(reason string) {
	if r.metrics != nil {
		r.metrics.RecordSkip(reason)
	}
}

func (r *Runner) publish(ctx context.Context, log *logger.Logger, filename string, j Judgement) {
	if r.bus == nil {
		return
	}
	payload := bus.JudgementRecorded{
		Filename:         filename,
		RootCause:        j.RootCause.Level.String(),
		FixSuggestion:    j.FixSuggestion.String(),
		ProblemLocation:  j.ProblemLocation.Level.String(),
		WrongInformation: j.WrongInformation.String(),
	}
	event := bus.NewEvent(bus.TypeJudgementRecorded, "judge", r.correlationID, payload, filename)
	if err := r.bus.Publish(ctx, bus.TopicJudgementRecorded, event); err != nil {
		log.WithError(err).Warn("Failed to publish judgement event")
	}
}

// loadExisting reads a previous run's output. A missing file is an empty run.
func loadExisting(path string) ([]dataset.JudgementRecord, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	records, rejected, err := dataset.LoadRecords[dataset.JudgementRecord](path)
	if err != nil {
		return nil, err
	}
	if len(rejected) > 0 {
		return nil, errors.MalformedError("existing judge output has invalid records", rejected[0].Err).
			WithDetail("output", path)
	}
	return records, nil
}
