package get

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"of-tracker/http-server/query"
	"of-tracker/internal/service/analytics"
)

type AlertSource interface {
	CurrentAlerts(ctx context.Context) (analytics.AlertsResponse, error)
}

func Alerts(log *slog.Logger, src AlertSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.orders.Alerts"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		res, err := src.CurrentAlerts(ctx)
		if err != nil {
			log.Error("не удалось проверить алерты", slog.String("error", err.Error()))
			query.RespondError(w, r, http.StatusServiceUnavailable, err.Error())
			return
		}

		render.JSON(w, r, res)
	}
}
