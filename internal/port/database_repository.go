package port

import (
	"context"

	"github.com/rl1809/stock-service/internal/core/domain"
)

type DatabaseRepository interface {
	// FindBySKU retrieves the stock record for a SKU, nil if absent.
	FindBySKU(ctx context.Context, skuID string) (*domain.StockRecord, error)

	// Insert persists a brand-new stock record at version 0.
	Insert(ctx context.Context, record *domain.StockRecord) error

	// Save commits a record only if its stored version still equals
	// expectedVersion, returning domain.ErrVersionConflict otherwise.
	// On success the stored version is incremented.
	Save(ctx context.Context, record *domain.StockRecord, expectedVersion int) error

	// Delete removes the stock record for a SKU.
	Delete(ctx context.Context, record *domain.StockRecord) error
}
