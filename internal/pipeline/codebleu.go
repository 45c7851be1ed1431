package pipeline

import (
	"context"
	stderrors "errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ricesearch/bugeval/internal/bus"
	"github.com/ricesearch/bugeval/internal/dataset"
	"github.com/ricesearch/bugeval/internal/matching"
	"github.com/ricesearch/bugeval/internal/pkg/errors"
	"github.com/ricesearch/bugeval/internal/pkg/logger"
	"github.com/ricesearch/bugeval/internal/similarity"
	"github.com/ricesearch/bugeval/internal/source"
)

// Resolver finds a ground-truth method body at a commit.
type Resolver interface {
	Resolve(ctx context.Context, commit, groundTruth string) (source.Reference, error)
}

// Recorder receives run metrics.
type Recorder interface {
	RecordReport(project string)
	RecordScore(codebleu float64)
	RecordSkip(reason string)
}

// Project is one repository's inputs to a run.
type Project struct {
	Name        string
	Entries     []dataset.FixEntry
	GroundTruth map[string][]string
	Resolver    Resolver
}

// Config holds run settings.
type Config struct {
	Workers int // reports scored concurrently, < 1 means 1
	Skip    dataset.SkipList
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

// WithBus publishes score and skip events.
func WithBus(b bus.Bus, correlationID string) Option {
	return func(r *Runner) {
		r.bus = b
		r.correlationID = correlationID
	}
}

// Runner scores generated fixes against ground-truth method bodies.
type Runner struct {
	scorer        *similarity.Scorer
	commits       *source.CommitIndex
	workers       int
	skip          dataset.SkipList
	log           *logger.Logger
	metrics       Recorder
	bus           bus.Bus
	correlationID string
}

// NewRunner creates a runner.
func NewRunner(scorer *similarity.Scorer, commits *source.CommitIndex, cfg Config, opts ...Option) *Runner {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	r := &Runner{
		scorer:  scorer,
		commits: commits,
		workers: workers,
		skip:    cfg.Skip,
		log:     logger.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ReportResult is the outcome of scoring one report.
type ReportResult struct {
	Filename string
	Records  []dataset.ScoreRecord
	Skips    []Skip
}

// RunSummary describes a finished run.
type RunSummary struct {
	Reports int
	Records []dataset.ScoreRecord
	Skips   map[SkipReason]int
	// MeanCodeBLEU is the mean composite score over Records, 0 when empty.
	MeanCodeBLEU float64
}

// Run scores every report of every project and writes the combined record
// list to outputPath, rewriting it after each report. Reports are scored in
// parallel but records keep input order. Per-report problems are skips;
// only a failed write or cancellation ends the run early.
func (r *Runner) Run(ctx context.Context, projects []Project, outputPath string) (RunSummary, error) {
	summary := RunSummary{Skips: make(map[SkipReason]int)}

	for _, p := range projects {
		log := r.log.WithProject(p.Name)
		log.Info("Scoring project", "reports", len(p.Entries))

		cp := &checkpoint{path: outputPath, records: summary.Records}
		if err := r.runProject(ctx, p, cp); err != nil {
			return summary, err
		}

		summary.Records = cp.records
		summary.Reports += len(cp.results)
		for _, res := range cp.results {
			for _, s := range res.Skips {
				summary.Skips[s.Reason]++
			}
		}
	}

	if summary.Records == nil {
		// Every report was skipped or there were none: still leave an empty list behind.
		if err := dataset.WriteJSON(outputPath, []dataset.ScoreRecord{}); err != nil {
			return summary, err
		}
	}

	if n := len(summary.Records); n > 0 {
		var total float64
		for _, rec := range summary.Records {
			total += rec.CodeBLEU.CodeBLEU
		}
		summary.MeanCodeBLEU = total / float64(n)
		r.log.Info("Average CodeBLEU score", "mean", summary.MeanCodeBLEU, "pairs", n, "output", outputPath)
	} else {
		r.log.Warn("No CodeBLEU scores computed", "output", outputPath)
	}

	return summary, nil
}

func (r *Runner) runProject(ctx context.Context, p Project, cp *checkpoint) error {
	cp.results = make([]*ReportResult, len(p.Entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i, entry := range p.Entries {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := r.ScoreReport(gctx, p.Name, entry, p.GroundTruth[entry.Filename], p.Resolver)
			if err := gctx.Err(); err != nil {
				return err
			}
			return cp.complete(i, &res)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// checkpoint appends finished reports to the output in input order and
// rewrites the output file whenever the finished prefix grows.
type checkpoint struct {
	mu      sync.Mutex
	path    string
	records []dataset.ScoreRecord
	results []*ReportResult
	next    int
}

func (c *checkpoint) complete(i int, res *ReportResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.results[i] = res
	grew := false
	for c.next < len(c.results) && c.results[c.next] != nil {
		c.records = append(c.records, c.results[c.next].Records...)
		c.next++
		grew = true
	}
	if !grew {
		return nil
	}

	out := c.records
	if out == nil {
		out = []dataset.ScoreRecord{}
	}
	return dataset.WriteJSON(c.path, out)
}

// ScoreReport scores one report. gt is the report's ground-truth method list.
// It never fails: every problem becomes a Skip in the result.
func (r *Runner) ScoreReport(ctx context.Context, project string, entry dataset.FixEntry, gt []string, resolver Resolver) ReportResult {
	res := ReportResult{Filename: entry.Filename}
	log := r.log.WithProject(project).WithReport(entry.Filename)

	if r.metrics != nil {
		r.metrics.RecordReport(project)
	}

	skipReport := func(reason SkipReason, detail string) ReportResult {
		r.skipped(ctx, log, project, &res, Skip{Filename: entry.Filename, Reason: reason, Detail: detail})
		return res
	}

	if list, ok := r.skip.Contains(entry.Filename); ok {
		return skipReport(SkipListed, list)
	}

	fixCode, err := entry.FixCode()
	if err != nil {
		return skipReport(SkipNoFixCode, err.Error())
	}

	if len(gt) == 0 {
		return skipReport(SkipNoGroundTruth, "")
	}

	commit, ok := r.commits.Lookup(source.IssueID(entry.Filename))
	if !ok {
		return skipReport(SkipNoCommit, source.IssueID(entry.Filename))
	}

	pairs, unmatched := matching.MatchAll(fixCode.Keys(), gt)
	for _, c := range unmatched {
		if near, sim := matching.Nearest(c, gt); near != "" {
			log.Debug("Candidate has no ground-truth match", "candidate", c, "nearest", near, "similarity", sim)
		}
	}
	if len(pairs) == 0 {
		return skipReport(SkipNoMatch, "")
	}

	log.Info("Processing report", "commit", commit, "matched", len(pairs))

	for _, pair := range pairs {
		if ctx.Err() != nil {
			return res
		}
		rec, skip, ok := r.scorePair(ctx, resolver, entry, commit, fixCode, pair)
		if !ok {
			r.skipped(ctx, log, project, &res, skip)
			continue
		}
		res.Records = append(res.Records, rec)
		r.scored(ctx, log, project, rec)
	}

	return res
}

func (r *Runner) scorePair(ctx context.Context, resolver Resolver, entry dataset.FixEntry, commit string, fixCode dataset.FixCode, pair matching.Pair) (dataset.ScoreRecord, Skip, bool) {
	skip := Skip{Filename: entry.Filename, Candidate: pair.Candidate}

	candidate, ok := fixCode.Code(pair.Candidate)
	if !ok {
		skip.Reason = SkipCandidateCode
		return dataset.ScoreRecord{}, skip, false
	}

	ref, err := resolver.Resolve(ctx, commit, pair.GroundTruth)
	if err != nil {
		skip.Detail = err.Error()
		switch {
		case stderrors.Is(err, source.ErrFileNotFound):
			skip.Reason = SkipFileNotFound
		case stderrors.Is(err, source.ErrMethodNotFound):
			skip.Reason = SkipMethodNotFound
		case errors.IsValidation(err):
			skip.Reason = SkipFileNotFound
		default:
			skip.Reason = SkipSourceError
		}
		return dataset.ScoreRecord{}, skip, false
	}

	score, err := r.scorer.ScorePair(candidate, ref.Body)
	if err != nil {
		skip.Reason = SkipScoreFailed
		skip.Detail = err.Error()
		return dataset.ScoreRecord{}, skip, false
	}

	return dataset.ScoreRecord{
		Filename:          entry.Filename,
		CreationTime:      entry.CreationTime,
		Commit:            commit,
		CandidateKey:      pair.Candidate,
		GroundTruthMethod: pair.GroundTruth,
		FilePath:          ref.Path,
		CodeBLEU:          score,
	}, Skip{}, true
}

func (r *Runner) scored(ctx context.Context, log *logger.Logger, project string, rec dataset.ScoreRecord) {
	log.Debug("Scored candidate", "candidate", rec.CandidateKey, "ground_truth", rec.GroundTruthMethod, "codebleu", rec.CodeBLEU.CodeBLEU)
	if r.metrics != nil {
		r.metrics.RecordScore(rec.CodeBLEU.CodeBLEU)
	}
	r.publish(ctx, log, bus.TopicScoreRecorded, bus.NewEvent(bus.TypeScoreRecorded, "codebleu", r.correlationID,
		bus.ScoreRecorded{
			Project:     project,
			Filename:    rec.Filename,
			Candidate:   rec.CandidateKey,
			GroundTruth: rec.GroundTruthMethod,
			CodeBLEU:    rec.CodeBLEU.CodeBLEU,
		}, rec.Filename, rec.CandidateKey))
}

func (r *Runner) skipped(ctx context.Context, log *logger.Logger, project string, res *ReportResult, s Skip) {
	res.Skips = append(res.Skips, s)

	attrs := []any{"reason", s.Reason.String()}
	if s.Candidate != "" {
		attrs = append(attrs, "candidate", s.Candidate)
	}
	if s.Detail != "" {
		attrs = append(attrs, "detail", s.Detail)
	}
	if s.Reason == SkipListed {
		log.Info("Skipping bug report", attrs...)
	} else {
		log.Warn("Skipped", attrs...)
	}

	if r.metrics != nil {
		r.metrics.RecordSkip(s.Reason.String())
	}
	r.publish(ctx, log, bus.TopicReportSkipped, bus.NewEvent(bus.TypeReportSkipped, "codebleu", r.correlationID,
		bus.ReportSkipped{
			Project:   project,
			Filename:  s.Filename,
			Candidate: s.Candidate,
			Reason:    s.Reason.String(),
			Detail:    s.Detail,
		}, s.Filename, s.Candidate, s.Reason.String()))
}

func (r *Runner) publish(ctx context.Context, log *logger.Logger, topic string, event bus.Event) {
	if r.bus == nil {
		return
	}
	if err := r.bus.Publish(ctx, topic, event); err != nil {
		log.WithError(err).Warn("Failed to publish event", "topic", topic)
	}
}
