package generate_excel

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"of-tracker/http-server/query"
	"of-tracker/internal/service/analytics"
	"of-tracker/internal/service/export"
)

const contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ExcelGenerator interface {
	GenerateExcel(ctx context.Context, table export.Table, policy analytics.DatePolicy, q analytics.Query) ([]byte, error)
}

// GenerateOrdersExcel выгружает table=active|historical|all с теми же фильтрами, что /api/orders.
func GenerateOrdersExcel(log *slog.Logger, gen ExcelGenerator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.export.GenerateOrdersExcel"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		table, err := export.ParseTable(r.URL.Query().Get("table"))
		if err != nil {
			log.Error("неизвестная таблица", slog.String("error", err.Error()))
			query.RespondError(w, r, http.StatusBadRequest, err.Error())
			return
		}

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

		// на Excel времени побольше
		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		excelBytes, err := gen.GenerateExcel(ctx, table, policy, q)
		if err != nil {
			code := query.Code(err)
			log.Error("failed to generate excel", slog.String("error", err.Error()), slog.Int("code", code))
			query.RespondError(w, r, code, err.Error())
			return
		}

		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Disposition", "attachment; filename="+export.FileName(table, time.Now()))
		if _, err := w.Write(excelBytes); err != nil {
			log.Error("не удалось отдать файл", slog.String("error", err.Error()))
		}
	}
}
