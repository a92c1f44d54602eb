package query

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/render"
	"of-tracker/internal/service/analytics"
	"of-tracker/internal/service/export"
)

const dateLayout = "2006-01-02"

var ErrInvalidParam = errors.New("invalid query parameter")

type ErrorResponse struct {
	Error  string `json:"error"`
	Status string `json:"status"`
}

// RespondError пишет JSON {"error": ...} с нужным кодом.
func RespondError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	render.Status(r, code)
	render.JSON(w, r, ErrorResponse{Error: msg, Status: strconv.Itoa(code)})
}

// Code переводит ошибку сервиса в HTTP-код: неверные параметры дают 400,
// всё остальное считается отказом слоя запросов.
func Code(err error) int {
	switch {
	case errors.Is(err, ErrInvalidParam),
		errors.Is(err, analytics.ErrDatePolicyRequired),
		errors.Is(err, analytics.ErrUnknownDatePolicy),
		errors.Is(err, export.ErrUnknownTable):
		return http.StatusBadRequest
	default:
		return http.StatusServiceUnavailable
	}
}

// Parse разбирает общие фильтры дашборда:
// from, to, status, family, client, alert, include_historical, apply_date_range, limit.
func Parse(r *http.Request) (analytics.Query, error) {
	v := r.URL.Query()

	var (
		q   analytics.Query
		err error
	)

	if q.Range.From, err = parseDate(v.Get("from")); err != nil {
		return q, fmt.Errorf("from: %w", err)
	}
	if q.Range.To, err = parseDate(v.Get("to")); err != nil {
		return q, fmt.Errorf("to: %w", err)
	}
	if q.Range.From != nil && q.Range.To != nil && q.Range.From.After(*q.Range.To) {
		return q, fmt.Errorf("from is after to: %w", ErrInvalidParam)
	}

	q.Status = strings.TrimSpace(v.Get("status"))
	q.Family = strings.TrimSpace(v.Get("family"))
	q.Client = strings.TrimSpace(v.Get("client"))

	if s := v.Get("alert"); s != "" {
		alert, err := strconv.ParseBool(s)
		if err != nil {
			return q, fmt.Errorf("alert: %w", ErrInvalidParam)
		}
		q.Alert = &alert
	}

	if q.IncludeHistorical, err = parseBool(v.Get("include_historical"), false); err != nil {
		return q, fmt.Errorf("include_historical: %w", err)
	}

	applyDateRange, err := parseBool(v.Get("apply_date_range"), true)
	if err != nil {
		return q, fmt.Errorf("apply_date_range: %w", err)
	}
	q.SkipDate = !applyDateRange

	if s := v.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return q, fmt.Errorf("limit: %w", ErrInvalidParam)
		}
		q.Limit = n
	}

	return q, nil
}

// Policy читает параметр policy. Если его нет, а диапазон дат задан, это ошибка:
// политику нельзя подставлять молча. Без диапазона политика ни на что не влияет.
func Policy(r *http.Request, q analytics.Query) (analytics.DatePolicy, error) {
	s := r.URL.Query().Get("policy")
	if s == "" && (!q.Range.IsSet() || q.SkipDate) {
		return analytics.PolicyLaunch, nil
	}

	return analytics.ParseDatePolicy(s)
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}

	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", s, ErrInvalidParam)
	}

	return &t, nil
}

func parseBool(s string, def bool) (bool, error) {
	if s == "" {
		return def, nil
	}

	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("%q: %w", s, ErrInvalidParam)
	}

	return b, nil
}
