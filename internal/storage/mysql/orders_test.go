package mysql

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"of-tracker/internal/config"
	"of-tracker/internal/storage"
)

var rawColumns = []string{
	"NUMERO_OFDA", "PRODUIT", "DESIGNATION", "STATUT", "LANCEMENT_AU_PLUS_TARD", "LANCE_LE",
	"DISPO_DEMANDEE", "DATE_CLOTURE", "QUANTITE_DEMANDEE", "CUMUL_ENTREES", "DUREE_PREVUE",
	"CUMUL_TEMPS_PASSES", "AFFAIRE", "CATEGORIE", "CLIENT",
}

func newMockStorage(t *testing.T) (*Storage, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := newStorage(db, config.Sources{
		ActiveTable:     "OF_DA",
		HistoricalTable: "HISTO_OF_DA",
		OrderPrefix:     "F",
	})

	return s, mock
}

func date(s string) *time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return &t
}

func activeRow(num string, category, client driver.Value) []driver.Value {
	return []driver.Value{
		num, "P-100", "Carter moteur", "C", "2025-03-10", "2025-03-01",
		"2025-03-20", nil, 100.0, 50.0, 10.0, 12.0, "AFF-1", category, client,
	}
}

func TestStorage_ActiveOrders_NoFilter(t *testing.T) {
	s, mock := newMockStorage(t)

	rows := sqlmock.NewRows(rawColumns).
		AddRow(activeRow("F0001", "Usinage", "Client A")...).
		AddRow(activeRow("F0002", nil, nil)...)

	mock.ExpectQuery(regexp.QuoteMeta("NULL AS DATE_CLOTURE")).
		WithArgs("F%").
		WillReturnRows(rows)

	orders, err := s.ActiveOrders(context.Background(), storage.OrderFilter{})
	require.NoError(t, err)
	require.Len(t, orders, 2)

	assert.Equal(t, "F0001", orders[0].OrderNumber)
	require.NotNil(t, orders[0].Category)
	assert.Equal(t, "Usinage", *orders[0].Category)
	assert.Nil(t, orders[0].ClosureDate)
	require.NotNil(t, orders[0].TimeSpent)
	assert.Equal(t, 12.0, *orders[0].TimeSpent)

	assert.Nil(t, orders[1].Category, "NULL категория не должна превращаться в пустую строку")
	assert.Nil(t, orders[1].Client)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_ActiveOrders_DeadlineRangeAndFilters(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		"FROM OF_DA WHERE NUMERO_OFDA LIKE ? AND LANCEMENT_AU_PLUS_TARD >= ? AND LANCEMENT_AU_PLUS_TARD < ? " +
			"AND STATUT = ? AND COALESCE(CATEGORIE, ?) = ? AND COALESCE(CLIENT, ?) = ? ORDER BY LANCEMENT_AU_PLUS_TARD DESC")).
		WithArgs("F%", "2025-01-01", "2025-02-01", "C",
			storage.CategoryUndefined, "Usinage", storage.ClientUndefined, "Client A").
		WillReturnRows(sqlmock.NewRows(rawColumns))

	orders, err := s.ActiveOrders(context.Background(), storage.OrderFilter{
		DateColumn: storage.ColumnDeadline,
		From:       date("2025-01-01"),
		To:         date("2025-01-31"),
		Status:     "C",
		Category:   "Usinage",
		Client:     "Client A",
	})
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.NotNil(t, orders, "пустой результат должен быть пустым срезом")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_ActiveOrders_UpperBoundCoversWholeDay(t *testing.T) {
	s, mock := newMockStorage(t)

	rows := sqlmock.NewRows(rawColumns).AddRow(
		"F0042", "P-100", "Carter moteur", "C", "2025-03-20", "2025-03-10 14:00:00",
		"2025-03-25", nil, 10.0, 5.0, 2.0, 1.0, "AFF-4", "Usinage", "Client A",
	)

	mock.ExpectQuery(regexp.QuoteMeta("AND LANCE_LE >= ? AND LANCE_LE < ?")).
		WithArgs("F%", "2025-03-01", "2025-03-11").
		WillReturnRows(rows)

	orders, err := s.ActiveOrders(context.Background(), storage.OrderFilter{
		DateColumn: storage.ColumnLaunch,
		From:       date("2025-03-01"),
		To:         date("2025-03-10"),
	})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "2025-03-10 14:00:00", *orders[0].LaunchActualDate)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_ActiveOrders_RejectsClosureColumn(t *testing.T) {
	s, mock := newMockStorage(t)

	_, err := s.ActiveOrders(context.Background(), storage.OrderFilter{
		DateColumn: storage.ColumnClosure,
		From:       date("2025-01-01"),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedDateColumn))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_ActiveOrders_RejectsUnknownColumn(t *testing.T) {
	s, _ := newMockStorage(t)

	_, err := s.ActiveOrders(context.Background(), storage.OrderFilter{
		DateColumn: "1=1; DROP TABLE OF_DA; --",
		To:         date("2025-01-01"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedDateColumn)
}

func TestStorage_HistoricalOrders_ClosureRange(t *testing.T) {
	s, mock := newMockStorage(t)

	rows := sqlmock.NewRows(rawColumns).AddRow(
		"F0900", "P-100", "Carter moteur", "T", "2024-11-10", "2024-11-01",
		"2024-11-20", "2024-12-02", 100.0, 100.0, 10.0, 9.0, "AFF-9", "Usinage", "Client A",
	)

	mock.ExpectQuery(regexp.QuoteMeta(
		"DATE_CLOTURE AS DATE_CLOTURE")).
		WillReturnRows(rows)

	// второй запрос: тот же builder, другая колонка
	mock.ExpectQuery(regexp.QuoteMeta("FROM HISTO_OF_DA WHERE NUMERO_OFDA LIKE ? AND DATE_CLOTURE >= ?")).
		WithArgs("F%", "2024-12-01").
		WillReturnRows(sqlmock.NewRows(rawColumns))

	orders, err := s.HistoricalOrders(context.Background(), storage.OrderFilter{})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.NotNil(t, orders[0].ClosureDate)
	assert.Equal(t, "2024-12-02", *orders[0].ClosureDate)

	_, err = s.HistoricalOrders(context.Background(), storage.OrderFilter{
		DateColumn: storage.ColumnClosure,
		From:       date("2024-12-01"),
	})
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_HistoricalOrders_QueryError(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectQuery("HISTO_OF_DA").WillReturnError(errors.New("connection refused"))

	_, err := s.HistoricalOrders(context.Background(), storage.OrderFilter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage.mysql.HistoricalOrders")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestStorage_DistinctStatuses(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT STATUT FROM HISTO_OF_DA")).
		WithArgs("F%").
		WillReturnRows(sqlmock.NewRows([]string{"STATUT"}).AddRow("A").AddRow("T"))

	statuses, err := s.DistinctStatuses(context.Background(), storage.TableHistorical)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "T"}, statuses)

	_, err = s.DistinctStatuses(context.Background(), storage.Table("OTHER"))
	require.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_Ping(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	s := newStorage(db, config.Sources{})

	mock.ExpectPing()
	require.NoError(t, s.Ping(context.Background()))

	mock.ExpectPing().WillReturnError(errors.New("down"))
	err = s.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage.mysql.Ping")
}
