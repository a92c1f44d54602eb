package export

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"of-tracker/internal/service/analytics"
)

const sheet = "Orders"

var ErrUnknownTable = errors.New("unknown export table")

// Table: что выгружать: открытые, архив или всё вместе.
type Table string

const (
	TableActive     Table = "active"
	TableHistorical Table = "historical"
	TableAll        Table = "all"
)

func ParseTable(s string) (Table, error) {
	switch t := Table(strings.ToLower(strings.TrimSpace(s))); t {
	case "":
		return TableAll, nil
	case TableActive, TableHistorical, TableAll:
		return t, nil
	default:
		return "", fmt.Errorf("%q: %w", s, ErrUnknownTable)
	}
}

type OrderLister interface {
	Orders(ctx context.Context, policy analytics.DatePolicy, q analytics.Query, opts analytics.MergeOptions) (analytics.OrdersResponse, error)
}

type Service struct {
	orders OrderLister
}

func NewService(orders OrderLister) *Service {
	return &Service{orders: orders}
}

var headers = []string{
	"Order", "Product", "Designation", "Category", "Client", "Affair", "Status",
	"Deadline", "Launched", "Availability", "Closed",
	"Qty requested", "Qty produced", "Planned, h", "Spent, h",
	"Production %", "Time %", "Efficiency", "Hist. unit time, h",
	"Time alert", "Completion", "Source", "Week",
}

// GenerateExcel выгружает заказы в порядке источников, без сортировки.
func (s *Service) GenerateExcel(ctx context.Context, table Table, policy analytics.DatePolicy, q analytics.Query) ([]byte, error) {
	const op = "service.export.GenerateExcel"

	q.IncludeHistorical = table != TableActive

	// лимит применяется после отбора по источнику, иначе открытые заказы вытеснят архив
	limit := q.Limit
	q.Limit = 0

	res, err := s.orders.Orders(ctx, policy, q, analytics.MergeOptions{Unsorted: true})
	if err != nil {
		return nil, fmt.Errorf("%s: fetch orders: %w", op, err)
	}

	orders := res.Orders
	if table == TableHistorical {
		orders = onlySource(orders, analytics.SourceHistorical)
	}
	if limit > 0 && len(orders) > limit {
		orders = orders[:limit]
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"E0E0E0"}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 2}},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: header style: %w", op, err)
	}

	alertStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "C00000", Bold: true},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: alert style: %w", op, err)
	}

	for i, name := range headers {
		f.SetCellValue(sheet, cellName(i+1, 1), name)
	}
	f.SetCellStyle(sheet, "A1", cellName(len(headers), 1), headerStyle)

	for i, o := range orders {
		row := i + 2

		values := []interface{}{
			o.OrderNumber, o.ProductCode, o.Designation, o.Category, o.Client, o.Affair, string(o.Status),
			formatDate(o.LaunchDeadline), formatDate(o.LaunchActualDate), formatDate(o.AvailabilityRequestedDate), formatDate(o.ClosureDate),
			o.QuantityRequested, o.QuantityProduced, o.PlannedDuration, o.TimeSpent,
			o.ProductionProgress * 100, o.TimeProgress * 100, o.Efficiency, o.HistoricalUnitTime,
			yesNo(o.TimeAlert), string(o.CompletionStatus), string(o.DataSource), week(o.WeekNumber),
		}

		if err := f.SetSheetRow(sheet, cellName(1, row), &values); err != nil {
			return nil, fmt.Errorf("%s: row %d: %w", op, row, err)
		}

		if o.TimeAlert {
			f.SetCellStyle(sheet, cellName(1, row), cellName(1, row), alertStyle)
		}
	}

	f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
	f.SetColWidth(sheet, "A", "G", 15)
	f.SetColWidth(sheet, "H", "K", 12)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("%s: write workbook: %w", op, err)
	}

	return buf.Bytes(), nil
}

// FileName: имя файла выгрузки с меткой времени.
func FileName(table Table, now time.Time) string {
	return fmt.Sprintf("orders_%s_%s.xlsx", table, now.Format("2006-01-02_150405"))
}

func onlySource(orders []analytics.Order, src analytics.Source) []analytics.Order {
	res := make([]analytics.Order, 0, len(orders))
	for _, o := range orders {
		if o.DataSource == src {
			res = append(res, o)
		}
	}

	return res
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}

	return t.Format("2006-01-02")
}

func week(w *int) interface{} {
	if w == nil {
		return ""
	}

	return *w
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}

	return "no"
}
