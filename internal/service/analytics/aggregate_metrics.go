package analytics

import (
	"fmt"
	"sort"
	"time"
)

const recentActivityLimit = 10

type OverviewKPIs struct {
	TotalOrders           int     `json:"total_orders"`
	ActiveOrders          int     `json:"active_orders"`
	HistoricalOrders      int     `json:"historical_orders"`
	CompletedOrders       int     `json:"completed_orders"`
	CompletionRate        float64 `json:"completion_rate"`
	TotalQuantityDemanded int     `json:"total_quantity_demanded"`
	TotalQuantityProduced int     `json:"total_quantity_produced"`
	ProductionRate        float64 `json:"production_rate"`
	AvgAdvancement        float64 `json:"avg_advancement"`
	AvgUnitTime           float64 `json:"avg_unit_time"`
	TotalTimeSpent        float64 `json:"total_time_spent"`
	AlertsCount           int     `json:"alerts_count"`
	AlertRate             float64 `json:"alert_rate"`
}

func CalculateOverviewKPIs(orders []Order) OverviewKPIs {
	k := OverviewKPIs{TotalOrders: len(orders)}

	for _, o := range orders {
		switch o.DataSource {
		case SourceActive:
			k.ActiveOrders++
		case SourceHistorical:
			k.HistoricalOrders++
		}
		if o.CompletionStatus == Completed {
			k.CompletedOrders++
		}
		if o.TimeAlert {
			k.AlertsCount++
		}

		k.TotalQuantityDemanded += o.QuantityRequested
		k.TotalQuantityProduced += o.QuantityProduced
		k.TotalTimeSpent += o.TimeSpent
	}

	k.CompletionRate = round3(percent(k.CompletedOrders, k.TotalOrders))
	k.ProductionRate = round3(percent(k.TotalQuantityProduced, k.TotalQuantityDemanded))
	k.AvgAdvancement = round3(mean(pluck(orders, byProductionProgress)) * 100)
	k.AvgUnitTime = round3(mean(pluck(orders, byUnitTime)))
	k.TotalTimeSpent = round3(k.TotalTimeSpent)
	k.AlertRate = round3(percent(k.AlertsCount, k.TotalOrders))

	return k
}

type ActivityItem struct {
	OrderNumber        string     `json:"order_number"`
	ProductCode        string     `json:"product_code"`
	Status             StatusCode `json:"status"`
	LaunchDeadline     *time.Time `json:"launch_deadline"`
	ProductionProgress float64    `json:"production_progress"`
}

// RecentActivity: десять заказов с самым поздним сроком запуска.
func RecentActivity(orders []Order) []ActivityItem {
	sorted := make([]Order, len(orders))
	copy(sorted, orders)
	sortByDeadlineDesc(sorted)

	if len(sorted) > recentActivityLimit {
		sorted = sorted[:recentActivityLimit]
	}

	items := make([]ActivityItem, 0, len(sorted))
	for _, o := range sorted {
		items = append(items, ActivityItem{
			OrderNumber:        o.OrderNumber,
			ProductCode:        o.ProductCode,
			Status:             o.Status,
			LaunchDeadline:     o.LaunchDeadline,
			ProductionProgress: o.ProductionProgress,
		})
	}

	return items
}

type AdvancementBuckets struct {
	UpTo25  int `json:"0-25%"`
	UpTo50  int `json:"25-50%"`
	UpTo75  int `json:"50-75%"`
	Above75 int `json:"75-100%"`
}

type CurrentAdvancement struct {
	AvgProductionAdvancement float64            `json:"avg_production_advancement"`
	AvgTimeAdvancement       float64            `json:"avg_time_advancement"`
	Distribution             AdvancementBuckets `json:"production_advancement_distribution"`
}

type HistoricalAdvancement struct {
	CompletionRate float64 `json:"completion_rate"`
	TotalCompleted int     `json:"total_completed"`
	AvgUnitTime    float64 `json:"avg_unit_time"`
}

type AdvancementMetricsResult struct {
	Current    CurrentAdvancement    `json:"current_metrics"`
	Historical HistoricalAdvancement `json:"historical_metrics"`
}

func AdvancementMetrics(current, historical []Order) AdvancementMetricsResult {
	var res AdvancementMetricsResult

	for _, o := range current {
		switch p := o.ProductionProgress; {
		case p <= 0.25:
			res.Current.Distribution.UpTo25++
		case p <= 0.5:
			res.Current.Distribution.UpTo50++
		case p <= 0.75:
			res.Current.Distribution.UpTo75++
		default:
			res.Current.Distribution.Above75++
		}
	}

	res.Current.AvgProductionAdvancement = round3(mean(pluck(current, byProductionProgress)) * 100)
	res.Current.AvgTimeAdvancement = round3(mean(pluck(current, byTimeProgress)) * 100)

	if len(historical) > 0 {
		res.Historical = HistoricalAdvancement{
			CompletionRate: 100,
			TotalCompleted: len(historical),
			AvgUnitTime:    round3(mean(pluck(historical, byUnitTime))),
		}
	}

	return res
}

type UnitTimeComparison struct {
	Difference       float64 `json:"difference"`
	PercentageChange float64 `json:"percentage_change"`
}

type UnitTimeAnalysisResult struct {
	CurrentAvgUnitTime    float64             `json:"current_avg_unit_time"`
	HistoricalAvgUnitTime float64             `json:"historical_avg_unit_time"`
	Comparison            *UnitTimeComparison `json:"comparison,omitempty"`
}

// UnitTimeAnalysis сравнивает среднее базовое время открытых заказов с архивным.
// Сравнение есть, только когда обе стороны положительны.
func UnitTimeAnalysis(current, historical []Order) UnitTimeAnalysisResult {
	cur := mean(pluck(current, byUnitTime))
	hist := mean(pluck(historical, byUnitTime))

	res := UnitTimeAnalysisResult{
		CurrentAvgUnitTime:    round3(cur),
		HistoricalAvgUnitTime: round3(hist),
	}

	if cur > 0 && hist > 0 {
		res.Comparison = &UnitTimeComparison{
			Difference:       round3(cur - hist),
			PercentageChange: round3(SafeDiv(cur-hist, hist) * 100),
		}
	}

	return res
}

type FamilyPerformanceStats struct {
	Count                 int     `json:"count"`
	AvgProductionProgress float64 `json:"avg_production_progress"`
	AvgTimeProgress       float64 `json:"avg_time_progress"`
	AvgHistoricalUnitTime float64 `json:"avg_historical_unit_time"`
}

type FamilyPerformanceResult struct {
	Current    map[string]FamilyPerformanceStats `json:"current_family_performance"`
	Historical map[string]FamilyPerformanceStats `json:"historical_family_performance"`
}

func FamilyPerformance(current, historical []Order) FamilyPerformanceResult {
	return FamilyPerformanceResult{
		Current:    familyPerformance(current),
		Historical: familyPerformance(historical),
	}
}

func familyPerformance(orders []Order) map[string]FamilyPerformanceStats {
	res := map[string]FamilyPerformanceStats{}

	for family, group := range groupByFamily(orders) {
		res[family] = FamilyPerformanceStats{
			Count:                 len(group),
			AvgProductionProgress: round3(mean(pluck(group, byProductionProgress))),
			AvgTimeProgress:       round3(mean(pluck(group, byTimeProgress))),
			AvgHistoricalUnitTime: round3(mean(pluck(group, byUnitTime))),
		}
	}

	return res
}

type DateSpan struct {
	Earliest string `json:"earliest"`
	Latest   string `json:"latest"`
	SpanDays int    `json:"span_days"`
}

type Completeness struct {
	CompleteRecords        int     `json:"complete_records"`
	CompletenessPercentage float64 `json:"completeness_percentage"`
}

type TableMetricsResult struct {
	TableName          string                  `json:"table_name"`
	RecordCount        int                     `json:"record_count"`
	DateRange          *DateSpan               `json:"date_range,omitempty"`
	StatusDistribution map[StatusCode]int      `json:"status_distribution"`
	FamilyDistribution map[string]int          `json:"family_distribution"`
	DataCompleteness   map[string]Completeness `json:"data_completeness"`
}

var completenessColumns = []string{"PRODUIT", "QUANTITE_DEMANDEE", "CUMUL_ENTREES", "DUREE_PREVUE"}

// TableMetrics: сводка по одной таблице: диапазон сроков, распределения, заполненность.
func TableMetrics(orders []Order, table string) TableMetricsResult {
	res := TableMetricsResult{
		TableName:          table,
		RecordCount:        len(orders),
		StatusDistribution: map[StatusCode]int{},
		FamilyDistribution: map[string]int{},
		DataCompleteness:   map[string]Completeness{},
	}

	if len(orders) == 0 {
		return res
	}

	var earliest, latest *time.Time
	missing := map[string]int{}

	for _, o := range orders {
		res.StatusDistribution[o.Status]++
		res.FamilyDistribution[o.Category]++

		for _, col := range o.MissingFields {
			missing[col]++
		}

		if d := o.LaunchDeadline; d != nil {
			if earliest == nil || d.Before(*earliest) {
				earliest = d
			}
			if latest == nil || d.After(*latest) {
				latest = d
			}
		}
	}

	if earliest != nil {
		res.DateRange = &DateSpan{
			Earliest: earliest.Format("2006-01-02"),
			Latest:   latest.Format("2006-01-02"),
			SpanDays: int(latest.Sub(*earliest).Hours() / 24),
		}
	}

	for _, col := range completenessColumns {
		complete := len(orders) - missing[col]
		res.DataCompleteness[col] = Completeness{
			CompleteRecords:        complete,
			CompletenessPercentage: round3(percent(complete, len(orders))),
		}
	}

	return res
}

type Insight struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type TableInsightsResult struct {
	Active     []Insight `json:"active_insights"`
	Historical []Insight `json:"historical_insights"`
	CrossTable []Insight `json:"cross_table_insights"`
}

func TableInsights(active, historical []Order) TableInsightsResult {
	res := TableInsightsResult{
		Active:     []Insight{},
		Historical: []Insight{},
		CrossTable: []Insight{},
	}

	if len(active) > 0 {
		res.Active = append(res.Active, Insight{
			Type:    "status_insight",
			Message: fmt.Sprintf("active table contains %d production orders", len(active)),
		})

		code, n := mostCommonStatus(active)
		res.Active = append(res.Active, Insight{
			Type:    "status_distribution",
			Message: fmt.Sprintf("most common active status: %s (%d orders)", code, n),
		})
	}

	if len(historical) > 0 {
		res.Historical = append(res.Historical,
			Insight{
				Type:    "completion_insight",
				Message: fmt.Sprintf("historical table contains %d completed orders", len(historical)),
			},
			Insight{
				Type:    "performance_insight",
				Message: fmt.Sprintf("average historical unit time: %.2f hours", mean(pluck(historical, byUnitTime))),
			},
		)
	}

	if len(active) > 0 && len(historical) > 0 {
		total := len(active) + len(historical)
		res.CrossTable = append(res.CrossTable, Insight{
			Type: "completion_rate",
			Message: fmt.Sprintf("overall completion rate: %.1f%% (%d completed out of %d total orders)",
				percent(len(historical), total), len(historical), total),
		})
	}

	return res
}

// mostCommonStatus при равенстве берёт меньший код, чтобы ответ был стабильным.
func mostCommonStatus(orders []Order) (StatusCode, int) {
	counts := map[StatusCode]int{}
	for _, o := range orders {
		counts[o.Status]++
	}

	var (
		best  StatusCode
		count int
	)
	for code, n := range counts {
		if n > count || (n == count && code < best) {
			best, count = code, n
		}
	}

	return best, count
}

// StatusTrends: количество открытых заказов по дню срока и статусу.
func StatusTrends(orders []Order) map[string]map[StatusCode]int {
	trends := map[string]map[StatusCode]int{}

	for _, o := range orders {
		if o.LaunchDeadline == nil {
			continue
		}

		day := o.LaunchDeadline.Format("2006-01-02")
		if trends[day] == nil {
			trends[day] = map[StatusCode]int{}
		}
		trends[day][o.Status]++
	}

	return trends
}

type AvgAdvancement struct {
	Production float64 `json:"production"`
	Time       float64 `json:"time"`
}

type OrderStatisticsResult struct {
	Total          int            `json:"total"`
	ByStatus       map[string]int `json:"by_status"`
	AvgAdvancement AvgAdvancement `json:"avg_advancement"`
	AlertsCount    int            `json:"alerts_count"`
}

// OrderStatistics: короткая сводка по открытым заказам: C/T/A всегда присутствуют.
func OrderStatistics(orders []Order) OrderStatisticsResult {
	res := OrderStatisticsResult{
		Total: len(orders),
		ByStatus: map[string]int{
			string(StatusInProgress): 0,
			string(StatusTerminated): 0,
			string(StatusStopped):    0,
		},
	}

	for _, o := range orders {
		if _, tracked := res.ByStatus[string(o.Status)]; tracked {
			res.ByStatus[string(o.Status)]++
		}
		if o.TimeAlert {
			res.AlertsCount++
		}
	}

	res.AvgAdvancement = AvgAdvancement{
		Production: roundTo(mean(pluck(orders, byProductionProgress))*100, 1),
		Time:       roundTo(mean(pluck(orders, byTimeProgress))*100, 1),
	}

	return res
}

type HistoricalMetrics struct {
	TotalCurrentOrders       int     `json:"total_current_orders"`
	TotalHistoricalOrders    int     `json:"total_historical_orders"`
	OrdersWithHistoricalData int     `json:"orders_with_historical_data"`
	AvgHistoricalUnitTime    float64 `json:"avg_historical_unit_time"`
	HistoricalCompletionRate float64 `json:"historical_completion_rate"`
	CurrentAvgAdvancement    float64 `json:"current_avg_advancement"`
	HistoricalAvgAdvancement float64 `json:"historical_avg_advancement"`
}

// CalculateHistoricalMetrics сравнивает открытые заказы с архивом.
// Архив считается выполненным на 100%, независимо от полей строки.
func CalculateHistoricalMetrics(current, historical []Order) HistoricalMetrics {
	m := HistoricalMetrics{
		TotalCurrentOrders:    len(current),
		TotalHistoricalOrders: len(historical),
		AvgHistoricalUnitTime: round3(mean(pluck(current, byUnitTime))),
		CurrentAvgAdvancement: round3(mean(pluck(current, byProductionProgress)) * 100),
	}

	for _, o := range current {
		if o.HistoricalUnitTime > 0 {
			m.OrdersWithHistoricalData++
		}
	}

	if len(historical) > 0 {
		m.HistoricalCompletionRate = 100
		m.HistoricalAvgAdvancement = 100
	}

	return m
}

type PerformerItem struct {
	OrderNumber        string  `json:"order_number"`
	ProductCode        string  `json:"product_code"`
	Designation        string  `json:"designation"`
	Category           string  `json:"category"`
	ProductionProgress float64 `json:"production_progress"`
}

// TopPerformers: заказы с наибольшим продвижением производства.
func TopPerformers(orders []Order, limit int) []PerformerItem {
	sorted := make([]Order, len(orders))
	copy(sorted, orders)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ProductionProgress > sorted[j].ProductionProgress
	})

	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	items := make([]PerformerItem, 0, len(sorted))
	for _, o := range sorted {
		items = append(items, PerformerItem{
			OrderNumber:        o.OrderNumber,
			ProductCode:        o.ProductCode,
			Designation:        o.Designation,
			Category:           o.Category,
			ProductionProgress: round3(o.ProductionProgress),
		})
	}

	return items
}
