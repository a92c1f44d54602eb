package analytics

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"of-tracker/internal/storage"
)

// OrderSource: слой запросов к двум таблицам заказов.
type OrderSource interface {
	ActiveOrders(ctx context.Context, filter storage.OrderFilter) ([]storage.RawOrder, error)
	HistoricalOrders(ctx context.Context, filter storage.OrderFilter) ([]storage.RawOrder, error)
	DistinctStatuses(ctx context.Context, table storage.Table) ([]string, error)
}

// Engine собирает представления дашборда. Состояния между вызовами не хранит.
type Engine struct {
	source OrderSource
	now    func() time.Time
}

type Option func(*Engine)

// WithClock подменяет текущее время (просрочка, "за последние 7 дней").
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func NewEngine(source OrderSource, opts ...Option) *Engine {
	e := &Engine{
		source: source,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

type dataset struct {
	active     []Order
	historical []Order
}

func (d dataset) merged(opts MergeOptions) []Order {
	return Merge(d.active, d.historical, opts)
}

// load читает обе таблицы параллельно. Открытые заказы фильтруются в SQL по колонке
// политики. Архив читается целиком: базовое время считается по всему архиву,
// а диапазон к нему применяется уже в памяти.
// Фильтры статуса и алерта относятся только к открытым заказам.
func (e *Engine) load(ctx context.Context, policy DatePolicy, q Query) (dataset, error) {
	col, err := policy.Column(SourceActive)
	if err != nil {
		return dataset{}, err
	}

	var activeRaw, historicalRaw []storage.RawOrder

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		activeRaw, err = e.source.ActiveOrders(gctx, q.storageFilter(col))
		if err != nil {
			return fmt.Errorf("active orders: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		var err error
		historicalRaw, err = e.source.HistoricalOrders(gctx, storage.OrderFilter{})
		if err != nil {
			return fmt.Errorf("historical orders: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return dataset{}, err
	}

	allHistorical := NormalizeAllHistorical(historicalRaw)
	baseline := BuildBaseline(allHistorical)

	active, err := FilterOrders(NormalizeAllActive(activeRaw, baseline), policy, q)
	if err != nil {
		return dataset{}, err
	}

	hq := q
	hq.Status = ""
	hq.Alert = nil

	historical, err := FilterOrders(allHistorical, policy, hq)
	if err != nil {
		return dataset{}, err
	}

	return dataset{active: active, historical: historical}, nil
}

func (e *Engine) today() time.Time {
	return truncateDay(e.now())
}
