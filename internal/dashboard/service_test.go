// internal/dashboard/service_test.go
package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recruitment-analytics/internal/aggregate"
	"recruitment-analytics/internal/common/logger"
	"recruitment-analytics/internal/dataset"
	"recruitment-analytics/internal/filter"
)

const fixtureCSV = `Requisition ID,Broad Status,Business Unit,Department,Location,Gender,Req Date,Current TAT,Total Nos of Profiles Shared,Interviewed
R-001,Closed,Tech,Engineering,Pune,Female,05-Jan-24,40,10,4
R-002,In Progress,Tech,QA,Mumbai,Male,10-Jan-24,20,6,2
R-003,Joined,Sales,Field Sales,Delhi,Male,15-Mar-24,,4,1
R-004,Open,Sales,Inside Sales,Pune,Female,20-Mar-24,30,,
`

type auditSpy struct {
	loads   int
	exports int
	err     error
}

func (a *auditSpy) RecordLoad(ctx context.Context, ds *dataset.Dataset) error {
	a.loads++
	return a.err
}

func (a *auditSpy) RecordExport(ctx context.Context, datasetVersion string, rows int) error {
	a.exports++
	return a.err
}

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "recruitment.csv")
	require.NoError(t, os.WriteFile(path, []byte(fixtureCSV), 0o644))
	return path
}

func newTestService(t *testing.T, path string, cache *redis.Client, audit AuditRecorder) *Service {
	t.Helper()
	log := logger.NewTestLogger(t)
	loader := dataset.NewLoader(dataset.DefaultSchema(), "", log)
	return NewService(loader, path, cache, audit, nil, Options{
		ClosedStatuses: []string{"closed", "joined"},
	}, log)
}

func TestServiceBeforeFirstLoad(t *testing.T) {
	svc := newTestService(t, writeFixture(t), nil, nil)

	_, err := svc.Dataset()
	assert.ErrorIs(t, err, ErrNoDataset)

	_, err = svc.Render(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoDataset)

	_, err = svc.Records(nil)
	assert.ErrorIs(t, err, ErrNoDataset)
}

func TestServiceLoad(t *testing.T) {
	audit := &auditSpy{}
	svc := newTestService(t, writeFixture(t), nil, audit)

	ds, err := svc.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, ds.Len())
	assert.Equal(t, 1, audit.loads)

	current, err := svc.Dataset()
	require.NoError(t, err)
	assert.Equal(t, ds.Version, current.Version)
}

func TestServiceLoadFailureKeepsCurrentDataset(t *testing.T) {
	path := writeFixture(t)
	svc := newTestService(t, path, nil, nil)

	first, err := svc.Load(context.Background())
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))
	_, err = svc.Load(context.Background())
	require.Error(t, err)

	current, err := svc.Dataset()
	require.NoError(t, err)
	assert.Equal(t, first.Version, current.Version)
}

func TestServiceLoadAuditFailureIsNonFatal(t *testing.T) {
	audit := &auditSpy{err: errors.New("db down")}
	svc := newTestService(t, writeFixture(t), nil, audit)

	_, err := svc.Load(context.Background())
	assert.NoError(t, err)
}

func TestRenderSnapshot(t *testing.T) {
	svc := newTestService(t, writeFixture(t), nil, nil)
	_, err := svc.Load(context.Background())
	require.NoError(t, err)

	snap, err := svc.Render(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, 4, snap.RowCount)
	assert.Equal(t, 4, snap.KPIs.TotalRequisitions)
	assert.Equal(t, 2, snap.KPIs.ClosedPositions, "Closed and Joined both count as closed")

	require.True(t, snap.KPIs.AvgCurrentTAT.Valid)
	assert.Equal(t, 30.0, snap.KPIs.AvgCurrentTAT.Value, "missing TAT rows are excluded from the mean")

	require.True(t, snap.KPIs.TotalProfilesShared.Valid)
	assert.Equal(t, 20.0, snap.KPIs.TotalProfilesShared.Value)

	require.Len(t, snap.StatusDistribution, 4)
	assert.Equal(t, aggregate.GroupCount{Value: "Tech", Label: "Tech", Count: 2}, snap.BusinessUnits[0])

	require.Len(t, snap.Trend.Buckets, 3, "trend spans Jan through Mar with Feb zero-filled")
	assert.Equal(t, "Jan-2024", snap.Trend.Buckets[0].Label)
	assert.Equal(t, 0, snap.Trend.Buckets[1].Count)
	assert.Equal(t, 2, snap.Trend.Buckets[2].Count)
}

func TestRenderFilteredSnapshot(t *testing.T) {
	svc := newTestService(t, writeFixture(t), nil, nil)
	_, err := svc.Load(context.Background())
	require.NoError(t, err)

	sel := filter.Selection{dataset.DimBusinessUnit: {"Sales"}}
	snap, err := svc.Render(context.Background(), sel)
	require.NoError(t, err)

	assert.Equal(t, 2, snap.RowCount)
	assert.Equal(t, 1, snap.KPIs.ClosedPositions)
}

func TestRenderEmptySubset(t *testing.T) {
	svc := newTestService(t, writeFixture(t), nil, nil)
	_, err := svc.Load(context.Background())
	require.NoError(t, err)

	sel := filter.Selection{dataset.DimLocation: {"Chennai"}}
	snap, err := svc.Render(context.Background(), sel)
	require.NoError(t, err)

	assert.Zero(t, snap.RowCount)
	assert.Zero(t, snap.KPIs.ClosedPositions)
	assert.False(t, snap.KPIs.AvgCurrentTAT.Valid, "empty subset yields no data, not zero")
	assert.Empty(t, snap.Trend.Buckets)
	assert.Nil(t, snap.TATHistogram)
	assert.False(t, snap.JoiningTAT.Valid)
}

func TestRenderCacheRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	svc := newTestService(t, writeFixture(t), client, nil)
	ds, err := svc.Load(context.Background())
	require.NoError(t, err)

	first, err := svc.Render(context.Background(), nil)
	require.NoError(t, err)

	key := "dash:" + ds.Version + ":all"
	require.True(t, mr.Exists(key), "computed snapshot is written through")

	second, err := svc.Render(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, first.GeneratedAt.Unix(), second.GeneratedAt.Unix())
	assert.Equal(t, first.RowCount, second.RowCount)
}

func TestRenderCacheKeyedByVersion(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	path := writeFixture(t)
	svc := newTestService(t, path, client, nil)

	ds1, err := svc.Load(context.Background())
	require.NoError(t, err)
	_, err = svc.Render(context.Background(), nil)
	require.NoError(t, err)

	ds2, err := svc.Load(context.Background())
	require.NoError(t, err)
	require.NotEqual(t, ds1.Version, ds2.Version)

	snap, err := svc.Render(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, ds2.Version, snap.DatasetVersion, "a reload never serves snapshots of the old version")
}

func TestRenderCacheHit(t *testing.T) {
	client, mock := redismock.NewClientMock()
	svc := newTestService(t, writeFixture(t), client, nil)
	ds, err := svc.Load(context.Background())
	require.NoError(t, err)

	cached := &Snapshot{
		DatasetVersion: ds.Version,
		GeneratedAt:    time.Now().UTC(),
		RowCount:       99,
	}
	data, err := json.Marshal(cached)
	require.NoError(t, err)

	mock.ExpectGet("dash:" + ds.Version + ":all").SetVal(string(data))

	snap, err := svc.Render(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 99, snap.RowCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRenderDegradesWhenCacheErrors(t *testing.T) {
	client, mock := redismock.NewClientMock()
	svc := newTestService(t, writeFixture(t), client, nil)
	ds, err := svc.Load(context.Background())
	require.NoError(t, err)

	key := "dash:" + ds.Version + ":all"
	mock.ExpectGet(key).SetErr(errors.New("connection refused"))
	mock.Regexp().ExpectSet(key, `.*`, 5*time.Minute).SetErr(errors.New("connection refused"))

	snap, err := svc.Render(context.Background(), nil)
	require.NoError(t, err, "cache failure degrades to recomputation")
	assert.Equal(t, 4, snap.RowCount)
}

func TestServiceDimensions(t *testing.T) {
	svc := newTestService(t, writeFixture(t), nil, nil)
	_, err := svc.Load(context.Background())
	require.NoError(t, err)

	dims, err := svc.Dimensions()
	require.NoError(t, err)
	assert.Equal(t, []string{"Tech", "Sales"}, dims[dataset.DimBusinessUnit])
	assert.Equal(t, []string{"Pune", "Mumbai", "Delhi"}, dims[dataset.DimLocation])
	assert.Empty(t, dims[dataset.DimCandidateSource])
}

func TestServiceExport(t *testing.T) {
	audit := &auditSpy{}
	svc := newTestService(t, writeFixture(t), nil, audit)
	_, err := svc.Load(context.Background())
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := svc.Export(context.Background(), &buf, filter.Selection{dataset.DimBusinessUnit: {"Tech"}})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, audit.exports)
	assert.Contains(t, buf.String(), "R-001")
	assert.NotContains(t, buf.String(), "R-003")
}

func TestHolderSwap(t *testing.T) {
	h := &Holder{}
	assert.Nil(t, h.Current())

	first := &dataset.Dataset{Version: "v1"}
	h.Swap(first)
	assert.Equal(t, "v1", h.Current().Version)

	h.Swap(&dataset.Dataset{Version: "v2"})
	assert.Equal(t, "v2", h.Current().Version)
}
