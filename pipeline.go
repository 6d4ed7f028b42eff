package scholar

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Report summarises one pipeline run.
type Report struct {
	RunID          string
	User           string
	Outcome        Outcome
	Action         Action
	Publications   int
	TotalCitations int
	FetchDuration  time.Duration
	Duration       time.Duration
}

// Recorder receives every finished run, err is non-nil for fatal runs.
type Recorder interface {
	ObserveRun(report Report, err error)
}

type nopRecorder struct{}

func (nopRecorder) ObserveRun(Report, error) {}

// Pipeline runs fetch, block detection, extraction and persistence once.
type Pipeline struct {
	user      string
	fetcher   *Fetcher
	extractor *Extractor
	store     *Store
	recorder  Recorder
	logger    *zap.Logger
}

func NewPipeline(user string, fetcher *Fetcher, extractor *Extractor, store *Store, logger *zap.Logger) *Pipeline {
	if user == "" {
		user = DefaultUser
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if extractor == nil {
		extractor = NewExtractor(nil, nil)
	}
	return &Pipeline{
		user:      user,
		fetcher:   fetcher,
		extractor: extractor,
		store:     store,
		recorder:  nopRecorder{},
		logger:    logger,
	}
}

func (p *Pipeline) SetRecorder(r Recorder) {
	if r == nil {
		r = nopRecorder{}
	}
	p.recorder = r
}

// Run executes the pipeline. Blocked and layout-changed pages are not errors:
// they resolve to keeping the old snapshot or writing the empty fallback.
// Only transport, parse and disk failures are returned.
func (p *Pipeline) Run(ctx context.Context) (report Report, err error) {
	start := time.Now()
	report = Report{RunID: uuid.NewString(), User: p.user}
	log := p.logger.With(zap.String("run_id", report.RunID), zap.String("user", p.user))
	defer func() {
		report.Duration = time.Since(start)
		p.recorder.ObserveRun(report, err)
	}()

	log.Info("Fetching Google Scholar page", zap.String("url", ProfileURL(p.fetcher.baseURL, p.user)))
	body, err := p.fetcher.Fetch(ctx, p.user)
	report.FetchDuration = time.Since(start)
	if err != nil {
		log.Error("Fetch failed", zap.Error(err))
		return report, err
	}

	result, err := p.extractor.Extract(body)
	if err != nil {
		return report, err
	}
	report.Outcome = result.Outcome

	switch result.Outcome {
	case OutcomeBlocked:
		log.Warn("Google Scholar blocked the request, using fallback data", zap.Error(result.Reason))
	case OutcomeSchemaMismatch:
		log.Warn("Metrics table not found or unreadable, Scholar may have changed layout", zap.Error(result.Reason))
	case OutcomeSuccess:
		report.Publications = len(result.Snapshot.Publications)
		report.TotalCitations = result.Snapshot.Metrics.TotalCitations
		log.Debug("Extracted profile",
			zap.Int("publications", report.Publications),
			zap.Int("total_citations", report.TotalCitations),
			zap.Int("chart_years", len(result.Snapshot.Metrics.CitationsPerYear)))
	}

	report.Action, err = p.store.Persist(result)
	if err != nil {
		log.Error("Persist failed", zap.String("path", p.store.Path()), zap.Error(err))
		return report, err
	}
	if report.Action == ActionWriteSnapshot {
		log.Info("Saved snapshot",
			zap.String("path", p.store.Path()),
			zap.Int("publications", report.Publications))
	}
	return report, nil
}
