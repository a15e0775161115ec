package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rl1809/stock-service/internal/core/domain"
	"github.com/rl1809/stock-service/internal/core/service"
)

// In-memory ports backing a real StockService for handler tests.
type stubDB struct {
	mu      sync.Mutex
	records map[string]domain.StockRecord
}

func (s *stubDB) FindBySKU(ctx context.Context, skuID string) (*domain.StockRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[skuID]
	if !ok {
		return nil, nil
	}
	copied := rec
	return &copied, nil
}

func (s *stubDB) Insert(ctx context.Context, rec *domain.StockRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.SKUID] = *rec
	return nil
}

func (s *stubDB) Save(ctx context.Context, rec *domain.StockRecord, expectedVersion int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.records[rec.SKUID]
	if !ok || current.Version != expectedVersion {
		return domain.ErrVersionConflict
	}
	rec.Version = expectedVersion + 1
	s.records[rec.SKUID] = *rec
	return nil
}

func (s *stubDB) Delete(ctx context.Context, rec *domain.StockRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, rec.SKUID)
	return nil
}

type stubCache struct {
	mu      sync.Mutex
	entries map[string]int
}

func (s *stubCache) GetQuantity(ctx context.Context, skuID string) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	quantity, ok := s.entries[skuID]
	return quantity, ok, nil
}

func (s *stubCache) SetQuantity(ctx context.Context, skuID string, quantity int, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[skuID] = quantity
	return nil
}

func (s *stubCache) Evict(ctx context.Context, skuID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, skuID)
	return nil
}

func (s *stubCache) DecrementIfEnough(ctx context.Context, skuID string, amount int) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.entries[skuID]
	if !ok || current < amount {
		return 0, false, nil
	}
	s.entries[skuID] = current - amount
	return current - amount, true, nil
}

func (s *stubCache) SetIfExists(ctx context.Context, skuID string, quantity int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[skuID]; !ok {
		return false, nil
	}
	s.entries[skuID] = quantity
	return true, nil
}

type stubPublisher struct{}

func (stubPublisher) PublishCacheDrift(ctx context.Context, skuID string, quantity int) error {
	return nil
}

func setupServer(t *testing.T) *httptest.Server {
	t.Helper()

	svc := service.NewStockService(
		&stubDB{records: make(map[string]domain.StockRecord)},
		&stubCache{entries: make(map[string]int)},
		stubPublisher{},
		zap.NewNop(),
	)

	mux := http.NewServeMux()
	NewHTTPHandler(svc).Register(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestCreateAndGetStock(t *testing.T) {
	srv := setupServer(t)

	resp := postJSON(t, srv.URL+"/api/stocks", `{"sku_id":"sku-1","quantity":10}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err := http.Get(srv.URL + "/api/stocks/sku-1")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var got StockResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "sku-1", got.SKUID)
	assert.Equal(t, 10, got.Quantity)
}

func TestAdjustStock(t *testing.T) {
	srv := setupServer(t)

	postJSON(t, srv.URL+"/api/stocks", `{"sku_id":"sku-1","quantity":10}`)

	resp := postJSON(t, srv.URL+"/api/stocks/sku-1/decrease", `{"quantity":3}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var got StockResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, 7, got.Quantity)

	resp = postJSON(t, srv.URL+"/api/stocks/sku-1/increase", `{"quantity":5}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, 12, got.Quantity)
}

func TestErrorStatusMapping(t *testing.T) {
	srv := setupServer(t)

	// Insufficient stock -> 409
	postJSON(t, srv.URL+"/api/stocks", `{"sku_id":"sku-1","quantity":2}`)
	resp := postJSON(t, srv.URL+"/api/stocks/sku-1/decrease", `{"quantity":5}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Invalid quantity -> 400
	resp = postJSON(t, srv.URL+"/api/stocks/sku-1/decrease", `{"quantity":0}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Update of a missing SKU -> 404
	req, err := http.NewRequest(http.MethodPut, srv.URL+"/api/stocks/ghost", strings.NewReader(`{"quantity":5}`))
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteStock(t *testing.T) {
	srv := setupServer(t)

	postJSON(t, srv.URL+"/api/stocks", `{"sku_id":"sku-1","quantity":2}`)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/stocks/sku-1", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestHealthCheck(t *testing.T) {
	srv := setupServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
