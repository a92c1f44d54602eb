package mysql

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"of-tracker/internal/config"
)

type Storage struct {
	db              *sql.DB
	activeTable     string
	historicalTable string
	orderPrefix     string
}

func New(cfg config.Config) (*Storage, error) {
	const op = "storage.mysql.New"

	db, err := sql.Open("mysql", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return newStorage(db, cfg.Sources), nil
}

func newStorage(db *sql.DB, src config.Sources) *Storage {
	return &Storage{
		db:              db,
		activeTable:     src.ActiveTable,
		historicalTable: src.HistoricalTable,
		orderPrefix:     src.OrderPrefix,
	}
}

func (s *Storage) Ping(ctx context.Context) error {
	const op = "storage.mysql.Ping"

	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}
