package fusion

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/inforoute-cli/internal/adapter"
	"github.com/sells-group/inforoute-cli/internal/model"
)

// Collector fetches the raw record batch of one source.
type Collector interface {
	Collect(ctx context.Context) ([]model.RawRecord, error)
}

// Source binds a collector to the adapter that maps its records.
type Source struct {
	Adapter   adapter.Adapter
	Collector Collector
}

// Recorder receives the outcome of every completed run.
type Recorder interface {
	ObserveRun(stats []SourceStats, features int, elapsed time.Duration)
}

// EngineOptions configures an Engine. Zero values are usable.
type EngineOptions struct {
	SourceTimeout time.Duration // per-source fetch deadline; 0 disables
	MaxParallel   int           // concurrent fetches; 0 means one per source
	DocID         string        // copied into metadata.doc_id
	Now           func() time.Time
	Recorder      Recorder
}

// RunResult is the output of one engine run.
type RunResult struct {
	Collection *model.FeatureCollection
	Stats      []SourceStats
}

// Engine fetches every source concurrently, then fuses the batches.
type Engine struct {
	sources []Source
	opts    EngineOptions
}

// NewEngine creates an engine over sources, fused in the given order.
func NewEngine(sources []Source, opts EngineOptions) *Engine {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Engine{sources: sources, opts: opts}
}

// Run fetches all sources, waits until every fetch has settled, and fuses
// the batches. A failed source contributes an empty batch and never cancels
// the others. If ctx ends before fusion starts, Run returns its error and no
// collection.
func (e *Engine) Run(ctx context.Context) (*RunResult, error) {
	runID := uuid.NewString()
	log := zap.L().With(zap.String("component", "fusion.engine"), zap.String("run_id", runID))
	start := time.Now()

	log.Info("fetching sources", zap.Int("count", len(e.sources)))

	batches := make([]Batch, len(e.sources))

	var g errgroup.Group
	if e.opts.MaxParallel > 0 {
		g.SetLimit(e.opts.MaxParallel)
	}
	for i, src := range e.sources {
		g.Go(func() error {
			batches[i] = e.collect(ctx, src, log)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "fusion: run aborted before fusion")
	}

	fused := Fuse(batches)
	md := Report(fused.Features, fused.Stats, e.opts.Now(), ReportOptions{
		RunID: runID,
		DocID: e.opts.DocID,
	})

	elapsed := time.Since(start)
	if e.opts.Recorder != nil {
		e.opts.Recorder.ObserveRun(fused.Stats, len(fused.Features), elapsed)
	}

	log.Info("run complete",
		zap.Int("features", md.TotalFeatures),
		zap.Any("sources", md.Sources),
		zap.Any("geometry_types", md.GeometryTypes),
		zap.Duration("elapsed", elapsed),
	)

	return &RunResult{
		Collection: &model.FeatureCollection{Features: fused.Features, Metadata: md},
		Stats:      fused.Stats,
	}, nil
}

func (e *Engine) collect(ctx context.Context, src Source, log *zap.Logger) Batch {
	b := Batch{Adapter: src.Adapter}
	sLog := log.With(zap.String("source", src.Adapter.Key()))

	if src.Collector == nil {
		sLog.Warn("source has no collector, contributing nothing")
		return b
	}

	fctx := ctx
	if e.opts.SourceTimeout > 0 {
		var cancel context.CancelFunc
		fctx, cancel = context.WithTimeout(ctx, e.opts.SourceTimeout)
		defer cancel()
	}

	start := time.Now()
	records, err := src.Collector.Collect(fctx)
	if err != nil {
		sLog.Error("fetch failed, source contributes nothing",
			zap.Error(err),
			zap.Duration("elapsed", time.Since(start)),
		)
		b.Err = eris.Wrapf(err, "fusion: fetch %s", src.Adapter.Key())
		return b
	}

	sLog.Info("fetched", zap.Int("records", len(records)), zap.Duration("elapsed", time.Since(start)))
	b.Records = records
	return b
}
