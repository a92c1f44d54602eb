package storage

import "time"

// Значения, которыми ERP заполняет пустые категорию и клиента.
const (
	CategoryUndefined = "Non définie"
	ClientUndefined   = "Non défini"
)

// DateColumn: колонка, по которой фильтруется диапазон дат.
type DateColumn string

const (
	ColumnDeadline DateColumn = "LANCEMENT_AU_PLUS_TARD"
	ColumnLaunch   DateColumn = "LANCE_LE"
	ColumnClosure  DateColumn = "DATE_CLOTURE"
)

// Table: логический источник заказов.
type Table string

const (
	TableActive     Table = "ACTIVE_ORDERS"
	TableHistorical Table = "HISTORICAL_ORDERS"
)

// RawOrder: строка как её отдаёт слой запросов, без нормализации.
type RawOrder struct {
	OrderNumber               string   `json:"order_number"`
	ProductCode               *string  `json:"product_code"`
	Designation               *string  `json:"designation"`
	Status                    *string  `json:"status"`
	LaunchDeadline            *string  `json:"launch_deadline"`
	LaunchActualDate          *string  `json:"launch_actual_date"`
	AvailabilityRequestedDate *string  `json:"availability_requested_date"`
	ClosureDate               *string  `json:"closure_date"`
	QuantityRequested         *float64 `json:"quantity_requested"`
	QuantityProduced          *float64 `json:"quantity_produced"`
	PlannedDuration           *float64 `json:"planned_duration"`
	TimeSpent                 *float64 `json:"time_spent"`
	Affair                    *string  `json:"affair"`
	Category                  *string  `json:"category"`
	Client                    *string  `json:"client"`
}

type OrderFilter struct {
	DateColumn DateColumn
	From       *time.Time
	To         *time.Time
	Status     string
	Category   string
	Client     string
}
