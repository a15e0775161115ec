package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rl1809/stock-service/internal/core/domain"
	"github.com/rl1809/stock-service/internal/port"
)

const (
	defaultCacheTTL         = 5 * time.Minute
	defaultMaxCacheAttempts = 3
)

// StockService keeps the per-SKU quantity consistent across the durable store
// and the cache. The durable store is the linearization point: every mutation
// commits there first under an optimistic version check, and only then touches
// the cache. Cache failures never roll back or fail a committed write; they
// are retried and, past the budget, handed to the drift publisher.
type StockService struct {
	db     port.DatabaseRepository
	cache  port.CacheRepository
	events port.EventPublisher
	retry  RetryPolicy
	logger *zap.Logger

	cacheTTL time.Duration
}

type Option func(*StockService)

func WithCacheTTL(ttl time.Duration) Option {
	return func(s *StockService) { s.cacheTTL = ttl }
}

func WithMaxCacheAttempts(n int) Option {
	return func(s *StockService) { s.retry.MaxAttempts = n }
}

func NewStockService(db port.DatabaseRepository, cache port.CacheRepository, events port.EventPublisher, logger *zap.Logger, opts ...Option) *StockService {
	s := &StockService{
		db:       db,
		cache:    cache,
		events:   events,
		retry:    NewRetryPolicy(defaultMaxCacheAttempts, logger),
		logger:   logger,
		cacheTTL: defaultCacheTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IncreaseStock adds quantity to a SKU, creating a zero record on first
// touch. After the durable commit the cache entry, if primed, is set to the
// committed quantity; an unprimed entry is left for the read path.
func (s *StockService) IncreaseStock(ctx context.Context, skuID string, quantity int) (*domain.StockRecord, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	rec, err := s.loadOrCreate(ctx, skuID)
	if err != nil {
		return nil, err
	}

	rec.Quantity += quantity
	rec.ModifiedAt = time.Now()
	if err := s.db.Save(ctx, rec, rec.Version); err != nil {
		return nil, fmt.Errorf("increase stock %s: %w", skuID, err)
	}

	target := rec.Quantity
	ok := s.retry.Run(ctx, "increase", func(ctx context.Context) (bool, error) {
		_, err := s.cache.SetIfExists(ctx, skuID, target)
		if err != nil {
			return false, err
		}
		// An absent key is not a failure: the cache was never primed and the
		// next read will populate it from the durable store.
		return true, nil
	})
	if !ok {
		s.reportDrift(ctx, skuID, target)
	}

	return rec, nil
}

// DecreaseStock removes quantity from a SKU. The durable store enforces the
// non-negative rule before any write; the cache script re-checks it locally
// because the two stores may disagree inside the staleness window.
func (s *StockService) DecreaseStock(ctx context.Context, skuID string, quantity int) (*domain.StockRecord, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	rec, err := s.loadOrCreate(ctx, skuID)
	if err != nil {
		return nil, err
	}

	if rec.Quantity < quantity {
		return nil, fmt.Errorf("decrease stock %s by %d: %w", skuID, quantity, domain.ErrInsufficientStock)
	}

	rec.Quantity -= quantity
	rec.ModifiedAt = time.Now()
	if err := s.db.Save(ctx, rec, rec.Version); err != nil {
		return nil, fmt.Errorf("decrease stock %s: %w", skuID, err)
	}

	committed := rec.Quantity
	ok := s.retry.Run(ctx, "decrease", func(ctx context.Context) (bool, error) {
		cached, ok, err := s.cache.DecrementIfEnough(ctx, skuID, quantity)
		if err != nil || !ok {
			return false, err
		}
		if cached != committed {
			s.logger.Warn("cache quantity diverged from durable quantity",
				zap.String("sku_id", skuID),
				zap.Int("cached", cached),
				zap.Int("committed", committed),
			)
		}
		return true, nil
	})
	if !ok {
		s.reportDrift(ctx, skuID, committed)
	}

	return rec, nil
}

// UpdateStock replaces an existing record. The cache overwrite here is a
// single best-effort conditional set: not retried, not escalated.
func (s *StockService) UpdateStock(ctx context.Context, rec *domain.StockRecord) (*domain.StockRecord, error) {
	current, err := s.db.FindBySKU(ctx, rec.SKUID)
	if err != nil {
		return nil, fmt.Errorf("update stock %s: %w", rec.SKUID, err)
	}
	if current == nil {
		return nil, fmt.Errorf("update stock %s: %w", rec.SKUID, domain.ErrStockNotFound)
	}

	current.Quantity = rec.Quantity
	current.ModifiedAt = time.Now()
	if err := s.db.Save(ctx, current, current.Version); err != nil {
		return nil, fmt.Errorf("update stock %s: %w", rec.SKUID, err)
	}

	if ok, err := s.cache.SetIfExists(ctx, current.SKUID, current.Quantity); err != nil || !ok {
		s.logger.Warn("cache overwrite skipped on update",
			zap.String("sku_id", current.SKUID),
			zap.Error(err),
		)
	}

	return current, nil
}

// DeleteStock removes the record and evicts the cache entry. Eviction failure
// is tolerated: the entry expires via TTL regardless.
func (s *StockService) DeleteStock(ctx context.Context, skuID string) (*domain.StockRecord, error) {
	rec, err := s.db.FindBySKU(ctx, skuID)
	if err != nil {
		return nil, fmt.Errorf("delete stock %s: %w", skuID, err)
	}
	if rec == nil {
		return nil, fmt.Errorf("delete stock %s: %w", skuID, domain.ErrStockNotFound)
	}

	if err := s.db.Delete(ctx, rec); err != nil {
		return nil, fmt.Errorf("delete stock %s: %w", skuID, err)
	}

	if err := s.cache.Evict(ctx, skuID); err != nil {
		s.logger.Warn("cache eviction failed", zap.String("sku_id", skuID), zap.Error(err))
	}

	return rec, nil
}

// GetStockBySKU answers from the cache when it can; on a miss it reads the
// durable store (lazily creating a zero record) and primes the cache with the
// configured TTL.
func (s *StockService) GetStockBySKU(ctx context.Context, skuID string) (*domain.StockRecord, error) {
	quantity, hit, err := s.cache.GetQuantity(ctx, skuID)
	if err != nil {
		s.logger.Warn("cache read failed", zap.String("sku_id", skuID), zap.Error(err))
	}
	if hit {
		return &domain.StockRecord{SKUID: skuID, Quantity: quantity}, nil
	}

	rec, err := s.loadOrCreate(ctx, skuID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetQuantity(ctx, skuID, rec.Quantity, s.cacheTTL); err != nil {
		s.logger.Warn("cache populate failed", zap.String("sku_id", skuID), zap.Error(err))
	}

	return rec, nil
}

// CreateStock persists a new record directly. The cache stays cold until the
// first read.
func (s *StockService) CreateStock(ctx context.Context, rec *domain.StockRecord) (*domain.StockRecord, error) {
	now := time.Now()
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	rec.Version = 0
	rec.CreatedAt = now
	rec.ModifiedAt = now

	if err := s.db.Insert(ctx, rec); err != nil {
		return nil, fmt.Errorf("create stock %s: %w", rec.SKUID, err)
	}

	return rec, nil
}

func (s *StockService) loadOrCreate(ctx context.Context, skuID string) (*domain.StockRecord, error) {
	rec, err := s.db.FindBySKU(ctx, skuID)
	if err != nil {
		return nil, fmt.Errorf("load stock %s: %w", skuID, err)
	}
	if rec != nil {
		return rec, nil
	}

	now := time.Now()
	rec = &domain.StockRecord{
		ID:         uuid.New().String(),
		SKUID:      skuID,
		Quantity:   0,
		Version:    0,
		CreatedAt:  now,
		ModifiedAt: now,
	}
	if err := s.db.Insert(ctx, rec); err != nil {
		return nil, fmt.Errorf("create zero stock %s: %w", skuID, err)
	}

	return rec, nil
}

func (s *StockService) reportDrift(ctx context.Context, skuID string, quantity int) {
	s.logger.Error("cache retry budget exhausted, emitting drift event",
		zap.String("sku_id", skuID),
		zap.Int("quantity", quantity),
	)
	if err := s.events.PublishCacheDrift(ctx, skuID, quantity); err != nil {
		s.logger.Error("drift event publish failed",
			zap.String("sku_id", skuID),
			zap.Error(err),
		)
	}
}
