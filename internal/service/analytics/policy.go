package analytics

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"of-tracker/internal/storage"
)

var (
	ErrDatePolicyRequired = errors.New("date policy is required")
	ErrUnknownDatePolicy  = errors.New("unknown date policy")
)

// DatePolicy выбирает, по какой дате фильтруется диапазон.
// Нулевое значение не является политикой: её надо выбрать явно.
type DatePolicy int

const (
	// PolicyDeadline: открытые по LANCEMENT_AU_PLUS_TARD, архив по DATE_CLOTURE.
	PolicyDeadline DatePolicy = iota + 1
	// PolicyLaunch: обе таблицы по LANCE_LE, одна временная ось для общего списка.
	PolicyLaunch
)

func ParseDatePolicy(s string) (DatePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return 0, ErrDatePolicyRequired
	case "deadline":
		return PolicyDeadline, nil
	case "launch":
		return PolicyLaunch, nil
	default:
		return 0, fmt.Errorf("%q: %w", s, ErrUnknownDatePolicy)
	}
}

func (p DatePolicy) String() string {
	switch p {
	case PolicyDeadline:
		return "deadline"
	case PolicyLaunch:
		return "launch"
	default:
		return fmt.Sprintf("DatePolicy(%d)", int(p))
	}
}

func (p DatePolicy) Validate() error {
	switch p {
	case PolicyDeadline, PolicyLaunch:
		return nil
	case 0:
		return ErrDatePolicyRequired
	default:
		return fmt.Errorf("%d: %w", int(p), ErrUnknownDatePolicy)
	}
}

// Column: колонка слоя запросов для фильтра по источнику.
func (p DatePolicy) Column(src Source) (storage.DateColumn, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}

	if p == PolicyLaunch {
		return storage.ColumnLaunch, nil
	}

	if src == SourceHistorical {
		return storage.ColumnClosure, nil
	}

	return storage.ColumnDeadline, nil
}

// DateOf: поле заказа, которое участвует в фильтре по диапазону.
func (p DatePolicy) DateOf(o Order) *time.Time {
	switch p {
	case PolicyLaunch:
		return o.LaunchActualDate
	case PolicyDeadline:
		if o.DataSource == SourceHistorical {
			return o.ClosureDate
		}
		return o.LaunchDeadline
	default:
		return nil
	}
}

// Range: диапазон дат с включёнными границами.
type Range struct {
	From *time.Time
	To   *time.Time
}

func (r Range) IsSet() bool {
	return r.From != nil || r.To != nil
}

func (r Range) contains(t *time.Time) bool {
	if !r.IsSet() {
		return true
	}
	if t == nil {
		return false
	}

	day := truncateDay(*t)
	if r.From != nil && day.Before(truncateDay(*r.From)) {
		return false
	}
	if r.To != nil && day.After(truncateDay(*r.To)) {
		return false
	}

	return true
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Query: фильтры одного запроса дашборда.
type Query struct {
	Range    Range
	Status   string
	Family   string
	Client   string
	Alert    *bool
	Limit    int
	SkipDate bool

	IncludeHistorical bool
}

// dateRange учитывает apply_date_range=false.
func (q Query) dateRange() Range {
	if q.SkipDate {
		return Range{}
	}

	return q.Range
}

func (q Query) storageFilter(col storage.DateColumn) storage.OrderFilter {
	r := q.dateRange()

	f := storage.OrderFilter{
		From:     r.From,
		To:       r.To,
		Status:   q.Status,
		Category: q.Family,
		Client:   q.Client,
	}
	if r.IsSet() {
		f.DateColumn = col
	}

	return f
}

// FilterOrders применяет диапазон дат по политике и остальные фильтры в памяти.
func FilterOrders(orders []Order, policy DatePolicy, q Query) ([]Order, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	r := q.dateRange()
	res := make([]Order, 0, len(orders))

	for _, o := range orders {
		if !r.contains(policy.DateOf(o)) {
			continue
		}
		if q.Status != "" && string(o.Status) != q.Status {
			continue
		}
		if q.Family != "" && o.Category != q.Family {
			continue
		}
		if q.Client != "" && o.Client != q.Client {
			continue
		}
		if q.Alert != nil && o.TimeAlert != *q.Alert {
			continue
		}

		res = append(res, o)
	}

	return res, nil
}
