package analytics

import "sort"

type MergeOptions struct {
	// Unsorted оставляет порядок источников как есть (для экспорта).
	Unsorted bool
}

// Merge склеивает открытые и архивные заказы. Дубликаты номеров между
// источниками не убираются: один заказ может быть и там, и там.
// Результат никогда не nil.
func Merge(active, historical []Order, opts MergeOptions) []Order {
	merged := make([]Order, 0, len(active)+len(historical))
	merged = append(merged, active...)
	merged = append(merged, historical...)

	if !opts.Unsorted {
		sortByDeadlineDesc(merged)
	}

	return merged
}

// sortByDeadlineDesc: свежие сроки сверху, без срока в конце.
func sortByDeadlineDesc(orders []Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		a, b := orders[i].LaunchDeadline, orders[j].LaunchDeadline
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
}
