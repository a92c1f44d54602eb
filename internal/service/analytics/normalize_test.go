package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"of-tracker/internal/storage"
)

func sp(s string) *string    { return &s }
func fp(f float64) *float64 { return &f }

func rawActive(num string, requested, produced, planned, spent float64) storage.RawOrder {
	return storage.RawOrder{
		OrderNumber:       num,
		ProductCode:       sp("P-100"),
		Designation:       sp("Carter moteur"),
		Status:            sp("C"),
		LaunchDeadline:    sp("2025-03-10"),
		LaunchActualDate:  sp("2025-03-01"),
		QuantityRequested: fp(requested),
		QuantityProduced:  fp(produced),
		PlannedDuration:   fp(planned),
		TimeSpent:         fp(spent),
		Category:          sp("Usinage"),
		Client:            sp("Client A"),
	}
}

func TestNormalizeActive_ScenarioA(t *testing.T) {
	o := NormalizeActive(rawActive("F0001", 100, 50, 10, 10), nil)

	assert.Equal(t, 0.5, o.ProductionProgress)
	assert.Equal(t, 1.0, o.TimeProgress)
	assert.False(t, o.TimeAlert, "10 не больше 10")
	assert.Equal(t, 0.5, o.Efficiency)
	assert.Equal(t, SourceActive, o.DataSource)
	assert.Equal(t, InProgress, o.CompletionStatus)
	assert.Nil(t, o.ClosureDate)
}

func TestNormalizeActive_ScenarioB(t *testing.T) {
	o := NormalizeActive(rawActive("F0001", 100, 50, 10, 12), nil)

	assert.True(t, o.TimeAlert)
	assert.InDelta(t, 1.2, o.TimeProgress, 1e-9)
	assert.InDelta(t, 0.417, o.Efficiency, 0.001)
}

func TestNormalizeActive_ZeroDenominators(t *testing.T) {
	row := rawActive("F0002", 0, 5, 0, 3)
	row.QuantityRequested = nil

	o := NormalizeActive(row, nil)

	assert.Equal(t, 0.0, o.ProductionProgress)
	assert.Equal(t, 0.0, o.TimeProgress)
	assert.Equal(t, 1.0, o.Efficiency, "без затраченного времени заказ идёт в темпе")
	assert.False(t, o.TimeAlert, "нет плана: нет алерта")
	assert.Contains(t, o.MissingFields, "QUANTITE_DEMANDEE")
}

func TestNormalizeActive_ProgressAlwaysFinite(t *testing.T) {
	cases := []storage.RawOrder{
		rawActive("F1", 0, 0, 0, 0),
		rawActive("F2", 0, 10, 0, 10),
		rawActive("F3", 1, 1e308, 1, 1e308),
		{OrderNumber: "F4"},
		rawActive("F5", -10, -5, -1, -3),
		rawActive("F6", math.Inf(1), 3, math.NaN(), 1),
	}

	for _, row := range cases {
		o := NormalizeActive(row, nil)

		for _, v := range []float64{o.ProductionProgress, o.TimeProgress, o.Efficiency} {
			assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), "%s: %v", row.OrderNumber, v)
			assert.GreaterOrEqual(t, v, 0.0, row.OrderNumber)
		}
		if o.TimeProgress == 0 {
			assert.Equal(t, 1.0, o.Efficiency, row.OrderNumber)
		}
	}
}

func TestNormalizeActive_Defaults(t *testing.T) {
	o := NormalizeActive(storage.RawOrder{OrderNumber: "F0003"}, nil)

	assert.Equal(t, storage.CategoryUndefined, o.Category)
	assert.Equal(t, storage.ClientUndefined, o.Client)
	assert.Nil(t, o.WeekNumber)
	assert.Equal(t, 0, o.QuantityRequested)
	assert.Contains(t, o.MissingFields, "CATEGORIE")
	assert.Contains(t, o.MissingFields, "CLIENT")
	assert.NotContains(t, o.MissingFields, "DATE_CLOTURE")
}

func TestNormalizeActive_BlankCategoryUsesSentinel(t *testing.T) {
	row := rawActive("F0004", 10, 1, 1, 1)
	row.Category = sp("   ")

	o := NormalizeActive(row, nil)

	assert.Equal(t, storage.CategoryUndefined, o.Category)
}

func TestNormalizeActive_CompletionStatus(t *testing.T) {
	for code, want := range map[string]CompletionStatus{
		"T": Completed,
		"A": Completed,
		"C": InProgress,
		"Z": InProgress,
	} {
		row := rawActive("F0005", 10, 1, 1, 1)
		row.Status = sp(code)

		o := NormalizeActive(row, nil)
		assert.Equal(t, want, o.CompletionStatus, code)
		assert.Equal(t, StatusCode(code), o.Status)
	}
}

func TestNormalizeActive_WeekNumber(t *testing.T) {
	row := rawActive("F0006", 10, 1, 1, 1)
	row.LaunchDeadline = sp("2025-01-01 08:30:00")

	o := NormalizeActive(row, nil)
	require.NotNil(t, o.WeekNumber)
	assert.Equal(t, 1, *o.WeekNumber)

	row.LaunchDeadline = sp("2024-12-30T00:00:00Z")
	o = NormalizeActive(row, nil)
	require.NotNil(t, o.WeekNumber)
	assert.Equal(t, 1, *o.WeekNumber, "ISO неделя 2025-W01")

	row.LaunchDeadline = sp("31/12/2024")
	o = NormalizeActive(row, nil)
	assert.Nil(t, o.WeekNumber)
	assert.Nil(t, o.LaunchDeadline)
	assert.Equal(t, "F0006", o.OrderNumber, "строка не теряется из-за кривой даты")
}

func TestNormalizeActive_QuantitiesRounded(t *testing.T) {
	o := NormalizeActive(rawActive("F0007", 99.6, 49.4, 1, 1), nil)

	assert.Equal(t, 100, o.QuantityRequested)
	assert.Equal(t, 49, o.QuantityProduced)
}

func TestNormalizeActive_BaselineJoin(t *testing.T) {
	baseline := Baseline{
		{Product: "P-100", Category: "Usinage"}: 0.25,
	}

	o := NormalizeActive(rawActive("F0008", 10, 1, 1, 1), baseline)
	assert.Equal(t, 0.25, o.HistoricalUnitTime)

	row := rawActive("F0009", 10, 1, 1, 1)
	row.Category = sp("Soudure")
	o = NormalizeActive(row, baseline)
	assert.Equal(t, 0.0, o.HistoricalUnitTime, "нет пары в архиве: 0")
}

func TestNormalizeActive_IgnoresClosureDate(t *testing.T) {
	row := rawActive("F0010", 10, 1, 1, 1)
	row.ClosureDate = sp("2025-01-01")

	o := NormalizeActive(row, nil)
	assert.Nil(t, o.ClosureDate)
}

func TestNormalizeHistorical_AlwaysCompleted(t *testing.T) {
	row := rawActive("F0900", 100, 100, 10, 15)
	row.Status = sp("C")
	row.ClosureDate = sp("2024-12-02")

	o := NormalizeHistorical(row)

	assert.Equal(t, SourceHistorical, o.DataSource)
	assert.Equal(t, Completed, o.CompletionStatus, "архив завершён всегда")
	assert.False(t, o.TimeAlert, "в архиве алертов по времени нет")
	assert.InDelta(t, 0.15, o.HistoricalUnitTime, 1e-9)
	require.NotNil(t, o.ClosureDate)
	assert.Equal(t, "2024-12-02", o.ClosureDate.Format("2006-01-02"))
}

func TestNormalizeHistorical_MissingClosure(t *testing.T) {
	o := NormalizeHistorical(rawActive("F0901", 10, 0, 1, 1))

	assert.Contains(t, o.MissingFields, "DATE_CLOTURE")
	assert.Equal(t, 0.0, o.HistoricalUnitTime)
}

func TestNormalizeAll_EmptyInput(t *testing.T) {
	assert.NotNil(t, NormalizeAllActive(nil, nil))
	assert.NotNil(t, NormalizeAllHistorical(nil))
	assert.Empty(t, NormalizeAllHistorical(nil))
}
