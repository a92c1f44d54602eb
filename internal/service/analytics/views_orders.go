package analytics

import (
	"context"
	"fmt"
	"time"
)

const recentlyCompletedDays = 7

type OrdersResponse struct {
	Orders       []Order        `json:"orders"`
	Count        int            `json:"count"`
	SourceCounts map[Source]int `json:"source_counts"`
	Policy       string         `json:"policy"`
}

// Orders: нормализованный список. Политику дат вызывающий выбирает сам.
func (e *Engine) Orders(ctx context.Context, policy DatePolicy, q Query, opts MergeOptions) (OrdersResponse, error) {
	const op = "service.analytics.Orders"

	if err := policy.Validate(); err != nil {
		return OrdersResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	data, err := e.load(ctx, policy, q)
	if err != nil {
		return OrdersResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	orders := data.active
	if q.IncludeHistorical {
		orders = data.merged(opts)
	} else if !opts.Unsorted {
		sortByDeadlineDesc(orders)
	}
	orders = limit(orders, q.Limit)

	return OrdersResponse{
		Orders:       orders,
		Count:        len(orders),
		SourceCounts: countBySource(orders),
		Policy:       policy.String(),
	}, nil
}

type CurrentKPIs struct {
	TotalActive  int     `json:"total_active"`
	InProgress   int     `json:"in_progress"`
	OverdueCount int     `json:"overdue_count"`
	AvgProgress  float64 `json:"avg_progress"`
}

type CurrentOrdersResponse struct {
	Orders []Order     `json:"orders"`
	Count  int         `json:"count"`
	KPIs   CurrentKPIs `json:"kpis"`
}

// CurrentOrders: открытые заказы по сроку запуска. Просрочен тот, чей срок раньше сегодняшнего дня.
func (e *Engine) CurrentOrders(ctx context.Context, q Query) (CurrentOrdersResponse, error) {
	const op = "service.analytics.CurrentOrders"

	data, err := e.load(ctx, PolicyDeadline, q)
	if err != nil {
		return CurrentOrdersResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	today := e.today()
	kpis := CurrentKPIs{TotalActive: len(data.active)}

	for _, o := range data.active {
		if o.Status == StatusInProgress {
			kpis.InProgress++
		}
		if o.LaunchDeadline != nil && truncateDay(*o.LaunchDeadline).Before(today) {
			kpis.OverdueCount++
		}
	}
	kpis.AvgProgress = roundTo(quantityProgress(data.active), 2)

	return CurrentOrdersResponse{
		Orders: data.active,
		Count:  len(data.active),
		KPIs:   kpis,
	}, nil
}

type HistoryKPIs struct {
	TotalCompleted    int     `json:"total_completed"`
	CompletionRate    float64 `json:"completion_rate"`
	AvgCompletionTime float64 `json:"avg_completion_time"`
	RecentlyCompleted int     `json:"recently_completed"`
}

type HistoryOrdersResponse struct {
	Orders []Order     `json:"orders"`
	Count  int         `json:"count"`
	KPIs   HistoryKPIs `json:"kpis"`
}

// HistoryOrders: архив, диапазон по дате закрытия. Время выполнения в днях от LANCE_LE до закрытия.
func (e *Engine) HistoryOrders(ctx context.Context, q Query) (HistoryOrdersResponse, error) {
	const op = "service.analytics.HistoryOrders"

	data, err := e.load(ctx, PolicyDeadline, q)
	if err != nil {
		return HistoryOrdersResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	orders := data.historical
	if q.Status != "" {
		orders, err = FilterOrders(orders, PolicyDeadline, Query{Status: q.Status, SkipDate: true})
		if err != nil {
			return HistoryOrdersResponse{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	since := e.today().AddDate(0, 0, -recentlyCompletedDays)
	kpis := HistoryKPIs{
		TotalCompleted: len(orders),
		CompletionRate: 100,
	}

	var durations []float64
	for _, o := range orders {
		if o.ClosureDate == nil {
			continue
		}

		closed := truncateDay(*o.ClosureDate)
		if !closed.Before(since) {
			kpis.RecentlyCompleted++
		}
		if o.LaunchActualDate != nil {
			days := closed.Sub(truncateDay(*o.LaunchActualDate)).Hours() / 24
			durations = append(durations, days)
		}
	}
	kpis.AvgCompletionTime = roundTo(mean(durations), 1)

	return HistoryOrdersResponse{
		Orders: orders,
		Count:  len(orders),
		KPIs:   kpis,
	}, nil
}

type CombinedKPIs struct {
	TotalOrders            int     `json:"total_orders"`
	ActiveVsCompletedRatio string  `json:"active_vs_completed_ratio"`
	OverallPerformance     float64 `json:"overall_performance"`
	ActiveCount            int     `json:"active_count"`
	CompletedCount         int     `json:"completed_count"`
}

type CombinedOrdersResponse struct {
	Orders []Order      `json:"orders"`
	Count  int          `json:"count"`
	KPIs   CombinedKPIs `json:"kpis"`
}

// CombinedOrders: обе таблицы на одной оси дат запуска.
func (e *Engine) CombinedOrders(ctx context.Context, q Query) (CombinedOrdersResponse, error) {
	const op = "service.analytics.CombinedOrders"

	data, err := e.load(ctx, PolicyLaunch, q)
	if err != nil {
		return CombinedOrdersResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	orders := limit(data.merged(MergeOptions{}), q.Limit)
	counts := countBySource(orders)

	return CombinedOrdersResponse{
		Orders: orders,
		Count:  len(orders),
		KPIs: CombinedKPIs{
			TotalOrders:            len(orders),
			ActiveVsCompletedRatio: fmt.Sprintf("%d:%d", counts[SourceActive], counts[SourceHistorical]),
			OverallPerformance:     roundTo(quantityProgress(orders), 2),
			ActiveCount:            counts[SourceActive],
			CompletedCount:         counts[SourceHistorical],
		},
	}, nil
}

// Statistics: сводка по всем открытым заказам без фильтров.
func (e *Engine) Statistics(ctx context.Context) (OrderStatisticsResult, error) {
	const op = "service.analytics.Statistics"

	data, err := e.load(ctx, PolicyDeadline, Query{})
	if err != nil {
		return OrderStatisticsResult{}, fmt.Errorf("%s: %w", op, err)
	}

	return OrderStatistics(data.active), nil
}

type AlertsResponse struct {
	Alerts        []Alert   `json:"alerts"`
	CheckedOrders int       `json:"checked_orders"`
	GeneratedAt   time.Time `json:"generated_at"`
}

// CurrentAlerts проверяет правила по всем открытым заказам.
func (e *Engine) CurrentAlerts(ctx context.Context) (AlertsResponse, error) {
	const op = "service.analytics.CurrentAlerts"

	data, err := e.load(ctx, PolicyDeadline, Query{})
	if err != nil {
		return AlertsResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	return AlertsResponse{
		Alerts:        ExtractAlerts(data.active),
		CheckedOrders: len(data.active),
		GeneratedAt:   e.now(),
	}, nil
}

// quantityProgress: средний % выпуска по строкам с ненулевым заказанным количеством.
func quantityProgress(orders []Order) float64 {
	var values []float64
	for _, o := range orders {
		if o.QuantityRequested > 0 {
			values = append(values, float64(o.QuantityProduced)/float64(o.QuantityRequested)*100)
		}
	}

	return mean(values)
}

func countBySource(orders []Order) map[Source]int {
	counts := map[Source]int{SourceActive: 0, SourceHistorical: 0}
	for _, o := range orders {
		counts[o.DataSource]++
	}

	return counts
}

func limit(orders []Order, n int) []Order {
	if n > 0 && len(orders) > n {
		return orders[:n]
	}

	return orders
}
