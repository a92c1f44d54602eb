package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"of-tracker/internal/service/analytics"
)

const checkTimeout = 30 * time.Second

type AlertSource interface {
	CurrentAlerts(ctx context.Context) (analytics.AlertsResponse, error)
}

// Monitor по расписанию проверяет открытые заказы и пишет сработавшие алерты в лог.
type Monitor struct {
	cron    *cron.Cron
	log     *slog.Logger
	source  AlertSource
	baseCtx context.Context
}

// New принимает расписание cron с секундами, например "0 0 8 * * *".
func New(baseCtx context.Context, log *slog.Logger, source AlertSource, schedule string) (*Monitor, error) {
	const op = "service.monitor.New"

	if baseCtx == nil {
		baseCtx = context.Background()
	}

	m := &Monitor{
		cron:    cron.New(cron.WithSeconds()),
		log:     log.With(slog.String("component", "alert_monitor")),
		source:  source,
		baseCtx: baseCtx,
	}

	if _, err := m.cron.AddFunc(schedule, func() { m.Check(m.baseCtx) }); err != nil {
		return nil, fmt.Errorf("%s: invalid schedule %q: %w", op, schedule, err)
	}

	return m, nil
}

// Check выполняет одну проверку. Ошибка слоя запросов только логируется, следующая попытка будет по расписанию.
func (m *Monitor) Check(ctx context.Context) []analytics.Alert {
	const op = "service.monitor.Check"

	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	res, err := m.source.CurrentAlerts(ctx)
	if err != nil {
		m.log.Error("не удалось проверить алерты", slog.String("op", op), slog.String("error", err.Error()))
		return nil
	}

	if len(res.Alerts) == 0 {
		m.log.Info("алертов нет", slog.Int("checked_orders", res.CheckedOrders))
		return res.Alerts
	}

	for _, a := range res.Alerts {
		level := slog.LevelInfo
		if a.Severity == "warning" {
			level = slog.LevelWarn
		}

		m.log.Log(ctx, level, a.Message,
			slog.String("type", a.Type),
			slog.String("severity", a.Severity),
			slog.Int("count", a.Count),
			slog.Int("checked_orders", res.CheckedOrders),
		)
	}

	return res.Alerts
}

func (m *Monitor) Start() {
	m.log.Info("alert monitor started")
	m.cron.Start()
}

func (m *Monitor) Stop() {
	ctx := m.cron.Stop()
	<-ctx.Done()
	m.log.Info("alert monitor stopped")
}
