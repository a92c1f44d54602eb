package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Response struct {
	Status   string    `json:"status"`
	Database string    `json:"database"`
	Error    string    `json:"error,omitempty"`
	Time     time.Time `json:"time"`
}

// Health проверяет соединение с базой. Недоступная база даёт 503.
func Health(log *slog.Logger, db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.health.Health"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			log.Error("база недоступна", slog.String("error", err.Error()))
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, Response{Status: "unhealthy", Database: "disconnected", Error: err.Error(), Time: time.Now()})
			return
		}

		render.JSON(w, r, Response{Status: "healthy", Database: "connected", Time: time.Now()})
	}
}
