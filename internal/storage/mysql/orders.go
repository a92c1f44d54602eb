package mysql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"of-tracker/internal/storage"
)

var ErrUnsupportedDateColumn = errors.New("date column is not supported by table")

const orderColumns = `NUMERO_OFDA, PRODUIT, DESIGNATION, STATUT, LANCEMENT_AU_PLUS_TARD, LANCE_LE,
		DISPO_DEMANDEE, %s AS DATE_CLOTURE, QUANTITE_DEMANDEE, CUMUL_ENTREES, DUREE_PREVUE,
		CUMUL_TEMPS_PASSES, AFFAIRE, CATEGORIE, CLIENT`

// ActiveOrders: открытые заказы. DATE_CLOTURE у них всегда NULL.
func (s *Storage) ActiveOrders(ctx context.Context, filter storage.OrderFilter) ([]storage.RawOrder, error) {
	const op = "storage.mysql.ActiveOrders"

	if filter.DateColumn == storage.ColumnClosure {
		return nil, fmt.Errorf("%s: %s: %w", op, filter.DateColumn, ErrUnsupportedDateColumn)
	}

	stmt, args, err := buildOrdersQuery(s.activeTable, "NULL", s.orderPrefix, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	orders, err := s.queryOrders(ctx, stmt, args)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка получения активных заказов: %w", op, err)
	}

	return orders, nil
}

// HistoricalOrders: архив закрытых заказов.
func (s *Storage) HistoricalOrders(ctx context.Context, filter storage.OrderFilter) ([]storage.RawOrder, error) {
	const op = "storage.mysql.HistoricalOrders"

	stmt, args, err := buildOrdersQuery(s.historicalTable, "DATE_CLOTURE", s.orderPrefix, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	orders, err := s.queryOrders(ctx, stmt, args)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка получения архивных заказов: %w", op, err)
	}

	return orders, nil
}

// DistinctStatuses возвращает коды статусов, реально встречающиеся в таблице.
func (s *Storage) DistinctStatuses(ctx context.Context, table storage.Table) ([]string, error) {
	const op = "storage.mysql.DistinctStatuses"

	name, err := s.tableName(table)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	stmt := fmt.Sprintf(`SELECT DISTINCT STATUT FROM %s WHERE NUMERO_OFDA LIKE ? AND STATUT IS NOT NULL ORDER BY STATUT`, name)

	rows, err := s.db.QueryContext(ctx, stmt, s.orderPrefix+"%")
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка получения статусов: %w", op, err)
	}
	defer rows.Close()

	statuses := []string{}
	for rows.Next() {
		var status string
		if err := rows.Scan(&status); err != nil {
			return nil, fmt.Errorf("%s: ошибка сканирования статуса: %w", op, err)
		}
		statuses = append(statuses, status)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: ошибка сканирования строк: %w", op, err)
	}

	return statuses, nil
}

func (s *Storage) tableName(table storage.Table) (string, error) {
	switch table {
	case storage.TableActive:
		return s.activeTable, nil
	case storage.TableHistorical:
		return s.historicalTable, nil
	default:
		return "", fmt.Errorf("unknown table %q", table)
	}
}

func buildOrdersQuery(table, closureExpr, prefix string, filter storage.OrderFilter) (string, []interface{}, error) {
	var b strings.Builder
	args := []interface{}{prefix + "%"}

	fmt.Fprintf(&b, "SELECT "+orderColumns+" FROM %s WHERE NUMERO_OFDA LIKE ?", closureExpr, table)

	if filter.From != nil || filter.To != nil {
		switch filter.DateColumn {
		case storage.ColumnDeadline, storage.ColumnLaunch, storage.ColumnClosure:
		default:
			return "", nil, fmt.Errorf("%q: %w", filter.DateColumn, ErrUnsupportedDateColumn)
		}

		if filter.From != nil {
			fmt.Fprintf(&b, " AND %s >= ?", filter.DateColumn)
			args = append(args, filter.From.Format("2006-01-02"))
		}
		// верхняя граница включает весь день: DATETIME с временем на дату to тоже проходит
		if filter.To != nil {
			fmt.Fprintf(&b, " AND %s < ?", filter.DateColumn)
			args = append(args, filter.To.AddDate(0, 0, 1).Format("2006-01-02"))
		}
	}

	if filter.Status != "" {
		b.WriteString(" AND STATUT = ?")
		args = append(args, filter.Status)
	}

	// Пустые категория и клиент сравниваются с тем же значением, что подставит нормализатор.
	if filter.Category != "" {
		b.WriteString(" AND COALESCE(CATEGORIE, ?) = ?")
		args = append(args, storage.CategoryUndefined, filter.Category)
	}
	if filter.Client != "" {
		b.WriteString(" AND COALESCE(CLIENT, ?) = ?")
		args = append(args, storage.ClientUndefined, filter.Client)
	}

	b.WriteString(" ORDER BY LANCEMENT_AU_PLUS_TARD DESC")

	return b.String(), args, nil
}

func (s *Storage) queryOrders(ctx context.Context, stmt string, args []interface{}) ([]storage.RawOrder, error) {
	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []storage.RawOrder{}
	for rows.Next() {
		var o storage.RawOrder

		err := rows.Scan(
			&o.OrderNumber,
			&o.ProductCode,
			&o.Designation,
			&o.Status,
			&o.LaunchDeadline,
			&o.LaunchActualDate,
			&o.AvailabilityRequestedDate,
			&o.ClosureDate,
			&o.QuantityRequested,
			&o.QuantityProduced,
			&o.PlannedDuration,
			&o.TimeSpent,
			&o.Affair,
			&o.Category,
			&o.Client,
		)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки: %w", err)
		}

		orders = append(orders, o)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка сканирования строк: %w", err)
	}

	return orders, nil
}
