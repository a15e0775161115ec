package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rl1809/stock-service/internal/core/domain"
)

type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) FindBySKU(ctx context.Context, skuID string) (*domain.StockRecord, error) {
	var rec domain.StockRecord
	err := m.db.QueryRowContext(ctx, `
		SELECT id, sku_id, quantity, version, created_at, modified_at
		FROM stock WHERE sku_id = ?`, skuID,
	).Scan(&rec.ID, &rec.SKUID, &rec.Quantity, &rec.Version, &rec.CreatedAt, &rec.ModifiedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query stock: %w", err)
	}

	return &rec, nil
}

func (m *MySQLAdapter) Insert(ctx context.Context, rec *domain.StockRecord) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO stock (id, sku_id, quantity, version, created_at, modified_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.SKUID, rec.Quantity, rec.Version, rec.CreatedAt, rec.ModifiedAt,
	)
	if err != nil {
		return fmt.Errorf("insert stock: %w", err)
	}

	return nil
}

func (m *MySQLAdapter) Save(ctx context.Context, rec *domain.StockRecord, expectedVersion int) error {
	result, err := m.db.ExecContext(ctx, `
		UPDATE stock
		SET quantity = ?, version = version + 1, modified_at = ?
		WHERE sku_id = ? AND version = ?`,
		rec.Quantity, rec.ModifiedAt, rec.SKUID, expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrVersionConflict
	}

	rec.Version = expectedVersion + 1
	return nil
}

func (m *MySQLAdapter) Delete(ctx context.Context, rec *domain.StockRecord) error {
	result, err := m.db.ExecContext(ctx, `DELETE FROM stock WHERE sku_id = ?`, rec.SKUID)
	if err != nil {
		return fmt.Errorf("delete stock: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrStockNotFound
	}

	return nil
}
