package analytics

import (
	"math"
	"strings"
	"time"

	"of-tracker/internal/storage"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
}

// NormalizeActive приводит строку открытого заказа к Order и подтягивает базовое время из архива.
func NormalizeActive(row storage.RawOrder, baseline Baseline) Order {
	o := normalizeCommon(row, SourceActive)

	o.TimeAlert = o.PlannedDuration > 0 && o.TimeSpent > o.PlannedDuration
	o.HistoricalUnitTime = baseline.UnitTime(o.ProductCode, o.Category)
	// закрытая дата у открытых заказов не бывает
	o.ClosureDate = nil

	if o.Status.closesOrder() {
		o.CompletionStatus = Completed
	} else {
		o.CompletionStatus = InProgress
	}

	return o
}

// NormalizeHistorical приводит архивную строку к Order.
// Всё, что лежит в архиве, считается завершённым и без алерта по времени.
func NormalizeHistorical(row storage.RawOrder) Order {
	o := normalizeCommon(row, SourceHistorical)

	o.TimeAlert = false
	o.CompletionStatus = Completed
	o.HistoricalUnitTime = SafeDiv(o.TimeSpent, float64(o.QuantityProduced))

	return o
}

func NormalizeAllActive(rows []storage.RawOrder, baseline Baseline) []Order {
	orders := make([]Order, 0, len(rows))
	for _, r := range rows {
		orders = append(orders, NormalizeActive(r, baseline))
	}

	return orders
}

func NormalizeAllHistorical(rows []storage.RawOrder) []Order {
	orders := make([]Order, 0, len(rows))
	for _, r := range rows {
		orders = append(orders, NormalizeHistorical(r))
	}

	return orders
}

func normalizeCommon(row storage.RawOrder, src Source) Order {
	o := Order{
		OrderNumber: row.OrderNumber,
		ProductCode: str(row.ProductCode),
		Designation: str(row.Designation),
		Category:    orDefault(row.Category, storage.CategoryUndefined),
		Client:      orDefault(row.Client, storage.ClientUndefined),
		Affair:      str(row.Affair),
		Status:      StatusCode(strings.TrimSpace(str(row.Status))),
		DataSource:  src,

		QuantityRequested: quantity(row.QuantityRequested),
		QuantityProduced:  quantity(row.QuantityProduced),
		PlannedDuration:   clampNonNegative(row.PlannedDuration),
		TimeSpent:         clampNonNegative(row.TimeSpent),

		LaunchDeadline:            parseDate(row.LaunchDeadline),
		LaunchActualDate:          parseDate(row.LaunchActualDate),
		AvailabilityRequestedDate: parseDate(row.AvailabilityRequestedDate),
		ClosureDate:               parseDate(row.ClosureDate),

		MissingFields: missingFields(row, src),
	}

	o.ProductionProgress = SafeDiv(float64(o.QuantityProduced), float64(o.QuantityRequested))
	o.TimeProgress = SafeDiv(o.TimeSpent, o.PlannedDuration)
	o.Efficiency = Efficiency(o.ProductionProgress, o.TimeProgress)

	if o.LaunchDeadline != nil {
		_, week := o.LaunchDeadline.ISOWeek()
		o.WeekNumber = &week
	}

	return o
}

// maxQuantity: предел, который точно представим и во float64, и в int.
const maxQuantity = 1 << 53

func quantity(v *float64) int {
	q := math.Round(clampNonNegative(v))
	if q > maxQuantity {
		q = maxQuantity
	}

	return int(q)
}

func parseDate(v *string) *time.Time {
	if v == nil {
		return nil
	}

	s := strings.TrimSpace(*v)
	if s == "" {
		return nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}

	return nil
}

func missingFields(row storage.RawOrder, src Source) []string {
	columns := []struct {
		name   string
		absent bool
	}{
		{"PRODUIT", row.ProductCode == nil},
		{"DESIGNATION", row.Designation == nil},
		{"STATUT", row.Status == nil},
		{"LANCEMENT_AU_PLUS_TARD", row.LaunchDeadline == nil},
		{"LANCE_LE", row.LaunchActualDate == nil},
		{"DISPO_DEMANDEE", row.AvailabilityRequestedDate == nil},
		{"QUANTITE_DEMANDEE", row.QuantityRequested == nil},
		{"CUMUL_ENTREES", row.QuantityProduced == nil},
		{"DUREE_PREVUE", row.PlannedDuration == nil},
		{"CUMUL_TEMPS_PASSES", row.TimeSpent == nil},
		{"AFFAIRE", row.Affair == nil},
		{"CATEGORIE", row.Category == nil},
		{"CLIENT", row.Client == nil},
	}

	var missing []string
	for _, c := range columns {
		if c.absent {
			missing = append(missing, c.name)
		}
	}

	if src == SourceHistorical && row.ClosureDate == nil {
		missing = append(missing, "DATE_CLOTURE")
	}

	return missing
}

func str(v *string) string {
	if v == nil {
		return ""
	}

	return strings.TrimSpace(*v)
}

func orDefault(v *string, def string) string {
	if s := str(v); s != "" {
		return s
	}

	return def
}
