package get

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"of-tracker/http-server/query"
	"of-tracker/internal/service/analytics"
)

const timeout = 10 * time.Second

type Dashboard interface {
	Overview(ctx context.Context, q analytics.Query) (analytics.OverviewResponse, error)
	StatusAnalysis(ctx context.Context, q analytics.Query) (analytics.StatusAnalysisResponse, error)
	PerformanceAnalytics(ctx context.Context, q analytics.Query) (analytics.PerformanceResponse, error)
	SourceComparison(ctx context.Context, q analytics.Query) (analytics.SourceComparisonResponse, error)
	HistoricalAnalysis(ctx context.Context, q analytics.Query) (analytics.HistoricalAnalysisResponse, error)
	DynamicStatuses(ctx context.Context, includeHistorical bool) (analytics.DynamicStatuses, error)
}

func Overview(log *slog.Logger, d Dashboard) http.HandlerFunc {
	return view(log, "handler.dashboard.Overview", func(ctx context.Context, q analytics.Query) (any, error) {
		return d.Overview(ctx, q)
	})
}

func StatusAnalysis(log *slog.Logger, d Dashboard) http.HandlerFunc {
	return view(log, "handler.dashboard.StatusAnalysis", func(ctx context.Context, q analytics.Query) (any, error) {
		return d.StatusAnalysis(ctx, q)
	})
}

func PerformanceAnalytics(log *slog.Logger, d Dashboard) http.HandlerFunc {
	return view(log, "handler.dashboard.PerformanceAnalytics", func(ctx context.Context, q analytics.Query) (any, error) {
		return d.PerformanceAnalytics(ctx, q)
	})
}

func SourceComparison(log *slog.Logger, d Dashboard) http.HandlerFunc {
	return view(log, "handler.dashboard.SourceComparison", func(ctx context.Context, q analytics.Query) (any, error) {
		return d.SourceComparison(ctx, q)
	})
}

func HistoricalAnalysis(log *slog.Logger, d Dashboard) http.HandlerFunc {
	return view(log, "handler.dashboard.HistoricalAnalysis", func(ctx context.Context, q analytics.Query) (any, error) {
		return d.HistoricalAnalysis(ctx, q)
	})
}

// DynamicStatuses читает только include_historical, остальные фильтры не нужны.
func DynamicStatuses(log *slog.Logger, d Dashboard) http.HandlerFunc {
	return view(log, "handler.dashboard.DynamicStatuses", func(ctx context.Context, q analytics.Query) (any, error) {
		return d.DynamicStatuses(ctx, q.IncludeHistorical)
	})
}

func view(log *slog.Logger, op string, fetch func(ctx context.Context, q analytics.Query) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		q, err := query.Parse(r)
		if err != nil {
			log.Error("неверные параметры запроса", slog.String("error", err.Error()))
			query.RespondError(w, r, http.StatusBadRequest, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		res, err := fetch(ctx, q)
		if err != nil {
			code := query.Code(err)
			log.Error("не удалось построить аналитику", slog.String("error", err.Error()), slog.Int("code", code))
			query.RespondError(w, r, code, err.Error())
			return
		}

		render.JSON(w, r, res)
	}
}
