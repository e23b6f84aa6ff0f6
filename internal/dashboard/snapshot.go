// internal/dashboard/snapshot.go

// Package dashboard renders aggregate snapshots of the current dataset and
// owns the dataset's lifecycle across reloads.
package dashboard

import (
	"time"

	"recruitment-analytics/internal/aggregate"
	"recruitment-analytics/internal/dataset"
	"recruitment-analytics/internal/filter"
)

// KPIs are the headline metrics of the dashboard.
type KPIs struct {
	TotalRequisitions   int            `json:"totalRequisitions"`
	ClosedPositions     int            `json:"closedPositions"`
	AvgCurrentTAT       aggregate.Stat `json:"avgCurrentTat"`
	TotalProfilesShared aggregate.Stat `json:"totalProfilesShared"`
	TotalInterviewed    aggregate.Stat `json:"totalInterviewed"`
}

// Snapshot is the full aggregate result for one filter selection. It is
// ephemeral: recomputed per render, owned by the rendering pass, and cached
// only under a key that includes the dataset version.
type Snapshot struct {
	DatasetVersion string           `json:"datasetVersion"`
	GeneratedAt    time.Time        `json:"generatedAt"`
	Filters        filter.Selection `json:"filters,omitempty"`
	RowCount       int              `json:"rowCount"`

	KPIs KPIs `json:"kpis"`

	StatusDistribution []aggregate.GroupCount `json:"statusDistribution"`
	BusinessUnits      []aggregate.GroupCount `json:"businessUnits"`
	Locations          []aggregate.GroupCount `json:"locations"`
	Departments        []aggregate.GroupCount `json:"departments"`
	GenderDistribution []aggregate.GroupCount `json:"genderDistribution"`
	CandidateSources   []aggregate.GroupCount `json:"candidateSources"`
	RequisitionTypes   []aggregate.GroupCount `json:"requisitionTypes"`

	Trend        aggregate.Series         `json:"trend"`
	TATHistogram []aggregate.HistogramBin `json:"tatHistogram"`
	JoiningTAT   aggregate.BoxSummary     `json:"joiningTat"`
}

// Chart shape knobs carried over from the original dashboard layout.
const (
	topDimensionGroups = 10
	topSourceGroups    = 8
	tatHistogramBins   = 30
)

// buildSnapshot runs the pure aggregation pipeline over an already-filtered
// subset. Defined for the empty subset: counts are zero and means carry the
// no-data marker.
func buildSnapshot(ds *dataset.Dataset, sel filter.Selection, rows []dataset.Record, closed func(dataset.Record) bool, bucket aggregate.Granularity) *Snapshot {
	return &Snapshot{
		DatasetVersion: ds.Version,
		GeneratedAt:    time.Now().UTC(),
		Filters:        sel,
		RowCount:       aggregate.Count(rows),

		KPIs: KPIs{
			TotalRequisitions:   aggregate.Count(rows),
			ClosedPositions:     aggregate.CountWhere(rows, closed),
			AvgCurrentTAT:       aggregate.Mean(rows, dataset.FieldCurrentTAT),
			TotalProfilesShared: aggregate.Sum(rows, dataset.FieldProfilesShared),
			TotalInterviewed:    aggregate.Sum(rows, dataset.FieldInterviewed),
		},

		StatusDistribution: aggregate.GroupBy(rows, dataset.DimStatus),
		BusinessUnits:      aggregate.TopN(aggregate.GroupBy(rows, dataset.DimBusinessUnit), topDimensionGroups),
		Locations:          aggregate.TopN(aggregate.GroupBy(rows, dataset.DimLocation), topDimensionGroups),
		Departments:        aggregate.TopN(aggregate.GroupBy(rows, dataset.DimDepartment), topDimensionGroups),
		GenderDistribution: aggregate.GroupBy(rows, dataset.DimGender),
		CandidateSources:   aggregate.TopN(aggregate.GroupBy(rows, dataset.DimCandidateSource), topSourceGroups),
		RequisitionTypes:   aggregate.GroupBy(rows, dataset.DimRequisitionType),

		Trend:        aggregate.TimeSeries(rows, dataset.FieldReqDate, bucket),
		TATHistogram: aggregate.Histogram(rows, dataset.FieldCurrentTAT, tatHistogramBins),
		JoiningTAT:   aggregate.BoxStats(rows, dataset.FieldJoiningTAT),
	}
}
