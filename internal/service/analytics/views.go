package analytics

import (
	"context"
	"fmt"
	"time"

	"of-tracker/internal/storage"
)

const historicalSampleLimit = 10

type DateRangeSummary struct {
	Start   *time.Time `json:"start"`
	End     *time.Time `json:"end"`
	Applied bool       `json:"applied"`
}

type FiltersSummary struct {
	Status     string `json:"status"`
	Family     string `json:"family"`
	Client     string `json:"client"`
	Historical bool   `json:"historical"`
}

type OverviewSummary struct {
	TotalRecords   int              `json:"total_records"`
	DateRange      DateRangeSummary `json:"date_range"`
	FiltersApplied FiltersSummary   `json:"filters_applied"`
}

type OverviewResponse struct {
	KPIs               OverviewKPIs           `json:"kpis"`
	StatusDistribution StatusDistribution     `json:"status_distribution"`
	FamilyBreakdown    map[string]FamilyStats `json:"family_breakdown"`
	RecentActivity     []ActivityItem         `json:"recent_activity"`
	Alerts             []Alert                `json:"alerts"`
	DataSummary        OverviewSummary        `json:"data_summary"`
}

// Overview: общие KPI. С архивом обе таблицы фильтруются по дате запуска,
// без архива открытые заказы фильтруются по сроку запуска.
func (e *Engine) Overview(ctx context.Context, q Query) (OverviewResponse, error) {
	const op = "service.analytics.Overview"

	policy := PolicyDeadline
	if q.IncludeHistorical {
		policy = PolicyLaunch
	}

	data, err := e.load(ctx, policy, q)
	if err != nil {
		return OverviewResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	orders := data.active
	if q.IncludeHistorical {
		orders = data.merged(MergeOptions{})
	}

	return OverviewResponse{
		KPIs:               CalculateOverviewKPIs(orders),
		StatusDistribution: NewStatusDistribution(orders),
		FamilyBreakdown:    FamilyBreakdown(orders),
		RecentActivity:     RecentActivity(orders),
		Alerts:             ExtractAlerts(orders),
		DataSummary: OverviewSummary{
			TotalRecords: len(orders),
			DateRange: DateRangeSummary{
				Start:   q.Range.From,
				End:     q.Range.To,
				Applied: !q.SkipDate,
			},
			FiltersApplied: FiltersSummary{
				Status:     q.Status,
				Family:     q.Family,
				Client:     q.Client,
				Historical: q.IncludeHistorical,
			},
		},
	}, nil
}

type HistoricalDistribution struct {
	Counts      map[CompletionStatus]int     `json:"counts"`
	Percentages map[CompletionStatus]float64 `json:"percentages"`
	Total       int                          `json:"total"`
	Note        string                       `json:"note"`
}

type StatusBreakdown struct {
	Active     StatusDistribution      `json:"active_distribution"`
	Historical *HistoricalDistribution `json:"historical_distribution,omitempty"`
}

type StatusTransitions struct {
	TransitionsAvailable bool               `json:"transitions_available"`
	Note                 string             `json:"note"`
	CurrentStatusSummary StatusDistribution `json:"current_status_summary"`
}

type StatusTrendsResult struct {
	ActiveTrends map[string]map[StatusCode]int `json:"active_trends"`
}

type SourceSummary struct {
	ActiveRecords     int  `json:"active_records"`
	HistoricalRecords int  `json:"historical_records"`
	IncludeHistorical bool `json:"include_historical"`
	ApplyDateRange    bool `json:"apply_date_range"`
}

type StatusAnalysisResponse struct {
	DynamicStatuses   DynamicStatuses    `json:"dynamic_statuses"`
	StatusAnalysis    StatusBreakdown    `json:"status_analysis"`
	StatusTransitions StatusTransitions  `json:"status_transitions"`
	StatusTrends      StatusTrendsResult `json:"status_trends"`
	DataSummary       SourceSummary      `json:"data_summary"`
}

func (e *Engine) StatusAnalysis(ctx context.Context, q Query) (StatusAnalysisResponse, error) {
	const op = "service.analytics.StatusAnalysis"

	statuses, err := DiscoverStatuses(ctx, e.source, q.IncludeHistorical)
	if err != nil {
		return StatusAnalysisResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	data, err := e.load(ctx, PolicyDeadline, q)
	if err != nil {
		return StatusAnalysisResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	historical := []Order{}
	if q.IncludeHistorical {
		historical = data.historical
	}

	current := NewStatusDistribution(data.active)

	res := StatusAnalysisResponse{
		DynamicStatuses: statuses,
		StatusAnalysis:  StatusBreakdown{Active: current},
		StatusTransitions: StatusTransitions{
			TransitionsAvailable: false,
			Note:                 "status transition tracking requires status change history",
			CurrentStatusSummary: current,
		},
		StatusTrends: StatusTrendsResult{ActiveTrends: StatusTrends(data.active)},
		DataSummary: SourceSummary{
			ActiveRecords:     len(data.active),
			HistoricalRecords: len(historical),
			IncludeHistorical: q.IncludeHistorical,
			ApplyDateRange:    !q.SkipDate,
		},
	}

	// всё, что в архиве, завершено
	if len(historical) > 0 {
		res.StatusAnalysis.Historical = &HistoricalDistribution{
			Counts:      map[CompletionStatus]int{Completed: len(historical)},
			Percentages: map[CompletionStatus]float64{Completed: 100},
			Total:       len(historical),
			Note:        "all historical records are considered completed",
		}
	}

	return res, nil
}

type PerformanceSummary struct {
	CurrentPeriodRecords int  `json:"current_period_records"`
	HistoricalRecords    int  `json:"historical_records"`
	IncludeHistorical    bool `json:"include_historical"`
	ApplyDateRange       bool `json:"apply_date_range"`
}

type PerformanceResponse struct {
	UnitTimeAnalysis   UnitTimeAnalysisResult   `json:"unit_time_analysis"`
	AdvancementMetrics AdvancementMetricsResult `json:"advancement_metrics"`
	EfficiencyTrends   EfficiencyTrendsResult   `json:"efficiency_trends"`
	FamilyPerformance  FamilyPerformanceResult  `json:"family_performance"`
	DataSummary        PerformanceSummary       `json:"data_summary"`
}

// PerformanceAnalytics всегда сравнивает с архивом за тот же период закрытия.
func (e *Engine) PerformanceAnalytics(ctx context.Context, q Query) (PerformanceResponse, error) {
	const op = "service.analytics.PerformanceAnalytics"

	data, err := e.load(ctx, PolicyDeadline, q)
	if err != nil {
		return PerformanceResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	return PerformanceResponse{
		UnitTimeAnalysis:   UnitTimeAnalysis(data.active, data.historical),
		AdvancementMetrics: AdvancementMetrics(data.active, data.historical),
		EfficiencyTrends:   EfficiencyTrends(data.merged(MergeOptions{Unsorted: true})),
		FamilyPerformance:  FamilyPerformance(data.active, data.historical),
		DataSummary: PerformanceSummary{
			CurrentPeriodRecords: len(data.active),
			HistoricalRecords:    len(data.historical),
			IncludeHistorical:    q.IncludeHistorical,
			ApplyDateRange:       !q.SkipDate,
		},
	}, nil
}

type ComparisonSummary struct {
	ActiveRecords     int  `json:"active_records"`
	HistoricalRecords int  `json:"historical_records"`
	TotalRecords      int  `json:"total_records"`
	ApplyDateRange    bool `json:"apply_date_range"`
}

type SourceComparisonResponse struct {
	ActiveMetrics     TableMetricsResult  `json:"active_metrics"`
	HistoricalMetrics TableMetricsResult  `json:"historical_metrics"`
	DataQuality       DataQuality         `json:"data_quality"`
	TableInsights     TableInsightsResult `json:"table_insights"`
	ComparisonSummary ComparisonSummary   `json:"comparison_summary"`
}

func (e *Engine) SourceComparison(ctx context.Context, q Query) (SourceComparisonResponse, error) {
	const op = "service.analytics.SourceComparison"

	data, err := e.load(ctx, PolicyDeadline, q)
	if err != nil {
		return SourceComparisonResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	return SourceComparisonResponse{
		ActiveMetrics:     TableMetrics(data.active, string(storage.TableActive)),
		HistoricalMetrics: TableMetrics(data.historical, string(storage.TableHistorical)),
		DataQuality:       QualityIndicators(data.merged(MergeOptions{Unsorted: true})),
		TableInsights:     TableInsights(data.active, data.historical),
		ComparisonSummary: ComparisonSummary{
			ActiveRecords:     len(data.active),
			HistoricalRecords: len(data.historical),
			TotalRecords:      len(data.active) + len(data.historical),
			ApplyDateRange:    !q.SkipDate,
		},
	}, nil
}

type HistoricalAnalysisResponse struct {
	HasData                  bool                              `json:"has_data"`
	Message                  string                            `json:"message,omitempty"`
	Metrics                  HistoricalMetrics                 `json:"metrics"`
	CurrentFamilyAnalysis    map[string]FamilyPerformanceStats `json:"current_family_analysis"`
	HistoricalFamilyAnalysis map[string]FamilyPerformanceStats `json:"historical_family_analysis"`
	TopCurrentPerformers     []PerformerItem                   `json:"top_current_performers"`
	HistoricalSample         []Order                           `json:"historical_sample"`
}

func (e *Engine) HistoricalAnalysis(ctx context.Context, q Query) (HistoricalAnalysisResponse, error) {
	const op = "service.analytics.HistoricalAnalysis"

	data, err := e.load(ctx, PolicyDeadline, q)
	if err != nil {
		return HistoricalAnalysisResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	sample := data.historical
	if len(sample) > historicalSampleLimit {
		sample = sample[:historicalSampleLimit]
	}

	families := FamilyPerformance(data.active, data.historical)

	res := HistoricalAnalysisResponse{
		HasData:                  len(data.active) > 0 || len(data.historical) > 0,
		Metrics:                  CalculateHistoricalMetrics(data.active, data.historical),
		CurrentFamilyAnalysis:    families.Current,
		HistoricalFamilyAnalysis: families.Historical,
		TopCurrentPerformers:     TopPerformers(data.active, historicalSampleLimit),
		HistoricalSample:         sample,
	}
	if !res.HasData {
		res.Message = "no data available for historical analysis"
	}

	return res, nil
}

func (e *Engine) DynamicStatuses(ctx context.Context, includeHistorical bool) (DynamicStatuses, error) {
	const op = "service.analytics.DynamicStatuses"

	res, err := DiscoverStatuses(ctx, e.source, includeHistorical)
	if err != nil {
		return DynamicStatuses{}, fmt.Errorf("%s: %w", op, err)
	}

	return res, nil
}
