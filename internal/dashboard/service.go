// internal/dashboard/service.go
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/redis/go-redis/v9"

	"recruitment-analytics/internal/aggregate"
	commonerrors "recruitment-analytics/internal/common/errors"
	"recruitment-analytics/internal/common/logger"
	"recruitment-analytics/internal/common/metrics"
	"recruitment-analytics/internal/common/observability"
	"recruitment-analytics/internal/dataset"
	"recruitment-analytics/internal/export"
	"recruitment-analytics/internal/filter"
)

// ErrNoDataset is returned before the first successful load.
var ErrNoDataset = errors.New("no dataset loaded")

// AuditRecorder logs loads and exports. Implementations must treat failures
// as non-fatal; the service only logs them.
type AuditRecorder interface {
	RecordLoad(ctx context.Context, ds *dataset.Dataset) error
	RecordExport(ctx context.Context, datasetVersion string, rows int) error
}

// Options carry the aggregation knobs that are configuration rather than
// data: which statuses count as closed and how wide a trend bucket is.
type Options struct {
	ClosedStatuses []string
	TrendBucket    aggregate.Granularity
	CacheTTL       time.Duration
}

// Service runs the load → filter → aggregate pipeline and caches rendered
// snapshots. The pipeline itself is synchronous: one interaction, one run.
type Service struct {
	holder *Holder
	loader *dataset.Loader
	path   string
	cache  *redis.Client // nil disables the snapshot cache
	audit  AuditRecorder // nil disables audit logging
	obs    *observability.Observability
	opts   Options
	closed func(dataset.Record) bool
	logger logger.Logger
}

// NewService wires the pipeline. cache and audit may be nil.
func NewService(loader *dataset.Loader, path string, cache *redis.Client, audit AuditRecorder, obs *observability.Observability, opts Options, log logger.Logger) *Service {
	if opts.TrendBucket == "" {
		opts.TrendBucket = aggregate.ByMonth
	}
	if opts.CacheTTL == 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	return &Service{
		holder: &Holder{},
		loader: loader,
		path:   path,
		cache:  cache,
		audit:  audit,
		obs:    obs,
		opts:   opts,
		closed: aggregate.ClosedPredicate(opts.ClosedStatuses),
		logger: log.WithFields(map[string]interface{}{"component": "dashboard"}),
	}
}

// Load runs the loader against the configured path and installs the result.
// On failure the previously loaded dataset stays in place.
func (s *Service) Load(ctx context.Context) (*dataset.Dataset, error) {
	ds, err := s.loader.Load(s.path)
	if err != nil {
		metrics.DatasetLoads.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.DatasetLoads.WithLabelValues("success").Inc()
	metrics.DatasetRows.Set(float64(ds.Len()))
	s.holder.Swap(ds)

	if s.audit != nil {
		if err := s.audit.RecordLoad(ctx, ds); err != nil {
			s.logger.Warn("audit load record failed", map[string]interface{}{
				"version": ds.Version,
				"error":   err.Error(),
			})
		}
	}

	return ds, nil
}

// Dataset returns the current dataset, or ErrNoDataset before the first load.
func (s *Service) Dataset() (*dataset.Dataset, error) {
	ds := s.holder.Current()
	if ds == nil {
		return nil, ErrNoDataset
	}
	return ds, nil
}

// Render produces the aggregate snapshot for a selection, serving from the
// cache when possible. Cache failures degrade to recomputation, never to a
// request failure.
func (s *Service) Render(ctx context.Context, sel filter.Selection) (*Snapshot, error) {
	ds, err := s.Dataset()
	if err != nil {
		return nil, err
	}

	cacheKey := "dash:" + ds.Version + ":" + sel.Hash()
	if s.cache != nil {
		if val, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var snap Snapshot
			if err := json.Unmarshal([]byte(val), &snap); err == nil {
				metrics.SnapshotCacheHits.Inc()
				if s.obs != nil {
					s.obs.RecordRender(ctx, "cache")
				}
				return &snap, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			cacheErr := commonerrors.NewCacheUnavailableError(err)
			s.logger.Warn("snapshot cache read failed", map[string]interface{}{
				"key":   cacheKey,
				"error": cacheErr.Error(),
			})
		}
		metrics.SnapshotCacheMisses.Inc()
	}

	start := time.Now()
	rows := filter.Apply(ds.Records, sel)
	snap := buildSnapshot(ds, sel, rows, s.closed, s.opts.TrendBucket)
	elapsed := time.Since(start)

	metrics.RenderDuration.Observe(elapsed.Seconds())
	if s.obs != nil {
		s.obs.RecordRender(ctx, "compute")
		s.obs.RecordRenderDuration(ctx, elapsed, "compute")
	}

	if s.cache != nil {
		if data, err := json.Marshal(snap); err == nil {
			s.cache.Set(ctx, cacheKey, data, s.opts.CacheTTL)
		}
	}

	return snap, nil
}

// Records returns the filtered subset, preserving original row order.
func (s *Service) Records(sel filter.Selection) ([]dataset.Record, error) {
	ds, err := s.Dataset()
	if err != nil {
		return nil, err
	}
	return filter.Apply(ds.Records, sel), nil
}

// Dimensions returns distinct values per filterable dimension, in first-seen
// order, for filter controls.
func (s *Service) Dimensions() (map[dataset.Dimension][]string, error) {
	ds, err := s.Dataset()
	if err != nil {
		return nil, err
	}
	out := make(map[dataset.Dimension][]string, len(dataset.Dimensions))
	for _, dim := range dataset.Dimensions {
		out[dim] = filter.Values(ds.Records, dim)
	}
	return out, nil
}

// Export writes the filtered subset as CSV and returns the row count.
func (s *Service) Export(ctx context.Context, w io.Writer, sel filter.Selection) (int, error) {
	ds, err := s.Dataset()
	if err != nil {
		return 0, err
	}

	rows := filter.Apply(ds.Records, sel)
	if err := export.Write(w, ds, rows); err != nil {
		return 0, err
	}

	metrics.Exports.Inc()
	if s.audit != nil {
		if err := s.audit.RecordExport(ctx, ds.Version, len(rows)); err != nil {
			s.logger.Warn("audit export record failed", map[string]interface{}{
				"version": ds.Version,
				"error":   err.Error(),
			})
		}
	}

	return len(rows), nil
}
