package analytics

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
	"of-tracker/internal/storage"
)

// StatusCode: открытый набор кодов статуса. Неизвестные коды проходят как есть.
type StatusCode string

const (
	StatusInProgress StatusCode = "C"
	StatusTerminated StatusCode = "T"
	StatusStopped    StatusCode = "A"
	StatusPlanned    StatusCode = "P"
	StatusSuspended  StatusCode = "S"
	StatusFinished   StatusCode = "F"
	StatusCancelled  StatusCode = "X"
)

var statusLabels = map[StatusCode]string{
	StatusInProgress: "In progress",
	StatusTerminated: "Terminated",
	StatusStopped:    "Stopped",
	StatusPlanned:    "Planned",
	StatusSuspended:  "Suspended",
	StatusFinished:   "Finished",
	StatusCancelled:  "Cancelled",
}

// Label возвращает подпись для кода, для незнакомых кодов: "Status <code>".
func (s StatusCode) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}

	return fmt.Sprintf("Status %s", string(s))
}

func (s StatusCode) closesOrder() bool {
	return s == StatusTerminated || s == StatusStopped
}

type DynamicStatuses struct {
	ActiveStatuses     []StatusCode          `json:"active_statuses"`
	HistoricalStatuses []StatusCode          `json:"historical_statuses"`
	AllStatuses        []StatusCode          `json:"all_statuses"`
	Descriptions       map[StatusCode]string `json:"status_descriptions"`
}

// StatusLister: часть слоя запросов, нужная для поиска статусов.
type StatusLister interface {
	DistinctStatuses(ctx context.Context, table storage.Table) ([]string, error)
}

// DiscoverStatuses опрашивает каждую таблицу отдельно и объединяет найденные коды.
func DiscoverStatuses(ctx context.Context, src StatusLister, includeHistorical bool) (DynamicStatuses, error) {
	const op = "service.analytics.DiscoverStatuses"

	var active, historical []string

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		active, err = src.DistinctStatuses(gctx, storage.TableActive)
		return err
	})

	if includeHistorical {
		g.Go(func() error {
			var err error
			historical, err = src.DistinctStatuses(gctx, storage.TableHistorical)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return DynamicStatuses{}, fmt.Errorf("%s: ошибка получения статусов: %w", op, err)
	}

	res := DynamicStatuses{
		ActiveStatuses:     toCodes(active),
		HistoricalStatuses: toCodes(historical),
		AllStatuses:        []StatusCode{},
		Descriptions:       map[StatusCode]string{},
	}

	for _, list := range [][]StatusCode{res.ActiveStatuses, res.HistoricalStatuses} {
		for _, code := range list {
			if _, seen := res.Descriptions[code]; seen {
				continue
			}
			res.Descriptions[code] = code.Label()
			res.AllStatuses = append(res.AllStatuses, code)
		}
	}

	sort.Slice(res.AllStatuses, func(i, j int) bool { return res.AllStatuses[i] < res.AllStatuses[j] })

	return res, nil
}

// toCodes обрезает пробелы так же, как нормализатор, и убирает повторы вроде "C" и "C ".
func toCodes(values []string) []StatusCode {
	codes := make([]StatusCode, 0, len(values))
	seen := make(map[StatusCode]struct{}, len(values))
	for _, v := range values {
		code := StatusCode(strings.TrimSpace(v))
		if code == "" {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}

	return codes
}
