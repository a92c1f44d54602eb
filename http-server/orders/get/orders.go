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

type OrderLister interface {
	Orders(ctx context.Context, policy analytics.DatePolicy, q analytics.Query, opts analytics.MergeOptions) (analytics.OrdersResponse, error)
}

type OrderViews interface {
	CurrentOrders(ctx context.Context, q analytics.Query) (analytics.CurrentOrdersResponse, error)
	HistoryOrders(ctx context.Context, q analytics.Query) (analytics.HistoryOrdersResponse, error)
	CombinedOrders(ctx context.Context, q analytics.Query) (analytics.CombinedOrdersResponse, error)
	Statistics(ctx context.Context) (analytics.OrderStatisticsResult, error)
}

// Orders отдаёт общий список. При заданном диапазоне параметр policy обязателен.
func Orders(log *slog.Logger, lister OrderLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.orders.Orders"

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

		policy, err := query.Policy(r, q)
		if err != nil {
			log.Error("не выбрана политика дат", slog.String("error", err.Error()))
			query.RespondError(w, r, http.StatusBadRequest, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		res, err := lister.Orders(ctx, policy, q, analytics.MergeOptions{})
		if err != nil {
			code := query.Code(err)
			log.Error("не удалось получить заказы", slog.String("error", err.Error()), slog.Int("code", code))
			query.RespondError(w, r, code, err.Error())
			return
		}

		render.JSON(w, r, res)
	}
}

func Current(log *slog.Logger, views OrderViews) http.HandlerFunc {
	return view(log, "handler.orders.Current", func(ctx context.Context, q analytics.Query) (any, error) {
		return views.CurrentOrders(ctx, q)
	})
}

func History(log *slog.Logger, views OrderViews) http.HandlerFunc {
	return view(log, "handler.orders.History", func(ctx context.Context, q analytics.Query) (any, error) {
		return views.HistoryOrders(ctx, q)
	})
}

func Combined(log *slog.Logger, views OrderViews) http.HandlerFunc {
	return view(log, "handler.orders.Combined", func(ctx context.Context, q analytics.Query) (any, error) {
		return views.CombinedOrders(ctx, q)
	})
}

// Statistics считает по всем открытым заказам, фильтры игнорируются.
func Statistics(log *slog.Logger, views OrderViews) http.HandlerFunc {
	return view(log, "handler.orders.Statistics", func(ctx context.Context, _ analytics.Query) (any, error) {
		return views.Statistics(ctx)
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
			log.Error("не удалось получить заказы", slog.String("error", err.Error()), slog.Int("code", code))
			query.RespondError(w, r, code, err.Error())
			return
		}

		render.JSON(w, r, res)
	}
}
