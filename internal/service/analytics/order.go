package analytics

import "time"

type Source string

const (
	SourceActive     Source = "ACTIVE"
	SourceHistorical Source = "HISTORICAL"
)

type CompletionStatus string

const (
	Completed  CompletionStatus = "COMPLETED"
	InProgress CompletionStatus = "IN_PROGRESS"
)

// Order: нормализованный заказ, общий для обоих источников.
// Строится заново на каждый запрос.
type Order struct {
	OrderNumber string `json:"order_number"`
	ProductCode string `json:"product_code"`
	Designation string `json:"designation"`
	Category    string `json:"category"`
	Client      string `json:"client"`
	Affair      string `json:"affair"`

	QuantityRequested int     `json:"quantity_requested"`
	QuantityProduced  int     `json:"quantity_produced"`
	PlannedDuration   float64 `json:"planned_duration"`
	TimeSpent         float64 `json:"time_spent"`

	LaunchDeadline            *time.Time `json:"launch_deadline"`
	LaunchActualDate          *time.Time `json:"launch_actual_date"`
	AvailabilityRequestedDate *time.Time `json:"availability_requested_date"`
	ClosureDate               *time.Time `json:"closure_date"`

	Status StatusCode `json:"status"`

	ProductionProgress float64          `json:"production_progress"`
	TimeProgress       float64          `json:"time_progress"`
	TimeAlert          bool             `json:"time_alert"`
	Efficiency         float64          `json:"efficiency"`
	HistoricalUnitTime float64          `json:"historical_unit_time"`
	CompletionStatus   CompletionStatus `json:"completion_status"`
	DataSource         Source           `json:"data_source"`
	WeekNumber         *int             `json:"week_number"`

	// колонки, которых не было в исходной строке
	MissingFields []string `json:"missing_fields,omitempty"`
}

func (o Order) overProduced() bool {
	return o.QuantityProduced > o.QuantityRequested
}

func (o Order) timeOverrun() bool {
	return o.TimeSpent > o.PlannedDuration
}
