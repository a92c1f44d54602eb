package analytics

import "fmt"

const lowAdvancementThreshold = 0.30

type StatusDistribution struct {
	Counts      map[StatusCode]int     `json:"counts"`
	Percentages map[StatusCode]float64 `json:"percentages"`
	Total       int                    `json:"total"`
}

// NewStatusDistribution считает по тем кодам, что реально встретились.
// Знаменатель всегда len(orders).
func NewStatusDistribution(orders []Order) StatusDistribution {
	d := StatusDistribution{
		Counts:      map[StatusCode]int{},
		Percentages: map[StatusCode]float64{},
		Total:       len(orders),
	}

	for _, o := range orders {
		d.Counts[o.Status]++
	}

	for code, n := range d.Counts {
		d.Percentages[code] = percent(n, d.Total)
	}

	return d
}

type FamilyStats struct {
	Count                 int     `json:"count"`
	AvgProductionProgress float64 `json:"avg_production_progress"`
	AvgHistoricalUnitTime float64 `json:"avg_historical_unit_time"`
}

// FamilyBreakdown группирует по категории. Значения округлены до 3 знаков.
func FamilyBreakdown(orders []Order) map[string]FamilyStats {
	res := map[string]FamilyStats{}

	for family, group := range groupByFamily(orders) {
		res[family] = FamilyStats{
			Count:                 len(group),
			AvgProductionProgress: round3(mean(pluck(group, byProductionProgress))),
			AvgHistoricalUnitTime: round3(mean(pluck(group, byUnitTime))),
		}
	}

	return res
}

type Alert struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Count    int    `json:"count"`
	Message  string `json:"message"`
}

// ExtractAlerts возвращает по одной записи на сработавшее правило.
// Правила без совпадений в список не попадают.
func ExtractAlerts(orders []Order) []Alert {
	var overrun, low int
	for _, o := range orders {
		if o.TimeAlert {
			overrun++
		}
		if o.ProductionProgress < lowAdvancementThreshold {
			low++
		}
	}

	alerts := []Alert{}
	if overrun > 0 {
		alerts = append(alerts, Alert{
			Type:     "time_overrun",
			Severity: "warning",
			Count:    overrun,
			Message:  fmt.Sprintf("%d orders exceed planned time", overrun),
		})
	}
	if low > 0 {
		alerts = append(alerts, Alert{
			Type:     "low_advancement",
			Severity: "info",
			Count:    low,
			Message:  fmt.Sprintf("%d orders with low advancement (<30%%)", low),
		})
	}

	return alerts
}

type EfficiencyBuckets struct {
	Below50     int `json:"below_50%"`
	From50To80  int `json:"50-80%"`
	From80To100 int `json:"80-100%"`
	Above100    int `json:"above_100%"`
}

type CurrentEfficiency struct {
	Samples       int               `json:"samples"`
	AvgEfficiency float64           `json:"avg_efficiency"`
	Distribution  EfficiencyBuckets `json:"efficiency_distribution"`
}

type HistoricalEfficiency struct {
	Records        int     `json:"records"`
	CompletionRate float64 `json:"completion_rate"`
	Note           string  `json:"note"`
}

type EfficiencyTrendsResult struct {
	Current    CurrentEfficiency     `json:"current_efficiency"`
	Historical *HistoricalEfficiency `json:"historical_efficiency,omitempty"`
}

// EfficiencyTrends раскладывает открытые заказы с потраченным временем по корзинам.
// Архив не раскладывается: он учитывается одной записью как завершённый целиком.
func EfficiencyTrends(orders []Order) EfficiencyTrendsResult {
	var (
		res        EfficiencyTrendsResult
		ratios     []float64
		historical int
	)

	for _, o := range orders {
		if o.DataSource == SourceHistorical {
			historical++
			continue
		}
		if o.TimeProgress <= 0 {
			continue
		}

		ratio := o.ProductionProgress / o.TimeProgress
		ratios = append(ratios, ratio)

		switch {
		case ratio < 0.5:
			res.Current.Distribution.Below50++
		case ratio < 0.8:
			res.Current.Distribution.From50To80++
		case ratio <= 1.0:
			res.Current.Distribution.From80To100++
		default:
			res.Current.Distribution.Above100++
		}
	}

	res.Current.Samples = len(ratios)
	res.Current.AvgEfficiency = round3(mean(ratios))

	if historical > 0 {
		res.Historical = &HistoricalEfficiency{
			Records:        historical,
			CompletionRate: 100,
			Note:           "all historical records are completed orders",
		}
	}

	return res
}

type MissingStat struct {
	MissingCount      int     `json:"missing_count"`
	MissingPercentage float64 `json:"missing_percentage"`
}

type SourceQuality struct {
	TotalRecords        int                    `json:"total_records"`
	MissingData         map[string]MissingStat `json:"missing_data"`
	OverProductionCount int                    `json:"over_production_count"`
	TimeOverrunCount    int                    `json:"time_overrun_count"`
}

type DataQuality struct {
	Active     SourceQuality `json:"active_quality"`
	Historical SourceQuality `json:"historical_quality"`
}

// QualityIndicators: показатели качества данных по каждому источнику.
// Перерасход времени здесь считается по сырым полям, без условия planned > 0.
func QualityIndicators(orders []Order) DataQuality {
	active, historical := splitBySource(orders)

	return DataQuality{
		Active:     sourceQuality(active),
		Historical: sourceQuality(historical),
	}
}

func sourceQuality(orders []Order) SourceQuality {
	q := SourceQuality{
		TotalRecords: len(orders),
		MissingData:  map[string]MissingStat{},
	}

	missing := map[string]int{}
	for _, o := range orders {
		if o.overProduced() {
			q.OverProductionCount++
		}
		if o.timeOverrun() {
			q.TimeOverrunCount++
		}
		for _, col := range o.MissingFields {
			missing[col]++
		}
	}

	for col, n := range missing {
		q.MissingData[col] = MissingStat{
			MissingCount:      n,
			MissingPercentage: round3(percent(n, q.TotalRecords)),
		}
	}

	return q
}

func groupByFamily(orders []Order) map[string][]Order {
	groups := map[string][]Order{}
	for _, o := range orders {
		groups[o.Category] = append(groups[o.Category], o)
	}

	return groups
}

func splitBySource(orders []Order) (active, historical []Order) {
	for _, o := range orders {
		if o.DataSource == SourceHistorical {
			historical = append(historical, o)
		} else {
			active = append(active, o)
		}
	}

	return active, historical
}

func byProductionProgress(o Order) float64 { return o.ProductionProgress }
func byTimeProgress(o Order) float64       { return o.TimeProgress }
func byUnitTime(o Order) float64           { return o.HistoricalUnitTime }

func pluck(orders []Order, field func(Order) float64) []float64 {
	values := make([]float64, 0, len(orders))
	for _, o := range orders {
		values = append(values, field(o))
	}

	return values
}
