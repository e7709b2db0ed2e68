// Package datahub memoizes the two warehouse datasets. Every view
// reads through it; the warehouse is only queried when a dataset's TTL
// has lapsed on every layer.
package datahub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/opensight-finance/kestrel/internal/domain"
	"github.com/opensight-finance/kestrel/internal/metrics"
	"github.com/opensight-finance/kestrel/internal/warehouse"
)

// Cache keys carry the producing query's identity.
const (
	customersKey    = "dataset:" + warehouse.CustomersTable
	transactionsKey = "dataset:" + warehouse.TransactionsTable
)

// envelope is the shared-cache shape: rows plus the warehouse load
// time, so a replica adopting the blob inherits its age instead of
// restarting the TTL clock.
type envelope struct {
	LoadedAt time.Time       `json:"loadedAt"`
	Rows     json.RawMessage `json:"rows"`
}

// Service hands out the cached datasets. Returned slices are shared;
// callers must treat them as read-only and copy before sorting.
type Service struct {
	warehouse domain.Warehouse
	cache     domain.Cache
	ttl       time.Duration

	// Each dataset has its own mutex so concurrent expiry coalesces
	// into one warehouse query per dataset.
	custMu     sync.Mutex
	customers  []domain.Customer
	custLoaded time.Time

	txMu         sync.Mutex
	transactions []domain.Transaction
	txLoaded     time.Time
}

// NewService creates the dataset service. A non-positive ttl falls back
// to one hour.
func NewService(w domain.Warehouse, c domain.Cache, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Service{
		warehouse: w,
		cache:     c,
		ttl:       ttl,
	}
}

// Customers returns the customers_segmented dataset, re-querying the
// warehouse when the cached copy is older than the TTL.
func (s *Service) Customers(ctx context.Context) ([]domain.Customer, error) {
	s.custMu.Lock()
	defer s.custMu.Unlock()

	if s.customers != nil && time.Since(s.custLoaded) < s.ttl {
		metrics.CacheRequestsTotal.WithLabelValues("local", "hit").Inc()
		return s.customers, nil
	}
	metrics.CacheRequestsTotal.WithLabelValues("local", "miss").Inc()

	// Shared cache: another replica may have loaded recently.
	if rows, loadedAt, ok := s.fromShared(ctx, customersKey); ok {
		var customers []domain.Customer
		if err := json.Unmarshal(rows, &customers); err == nil {
			s.customers, s.custLoaded = customers, loadedAt
			return customers, nil
		}
	}

	customers, err := s.warehouse.Customers(ctx)
	if err != nil {
		metrics.DatasetRefreshTotal.WithLabelValues("customers", "error").Inc()
		return nil, fmt.Errorf("refresh customers dataset: %w", err)
	}
	metrics.DatasetRefreshTotal.WithLabelValues("customers", "ok").Inc()

	now := time.Now()
	s.toShared(ctx, customersKey, customers, now)
	s.customers, s.custLoaded = customers, now
	return customers, nil
}

// Transactions returns the transactions_with_fraud_score dataset under
// the same TTL discipline as Customers.
func (s *Service) Transactions(ctx context.Context) ([]domain.Transaction, error) {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if s.transactions != nil && time.Since(s.txLoaded) < s.ttl {
		metrics.CacheRequestsTotal.WithLabelValues("local", "hit").Inc()
		return s.transactions, nil
	}
	metrics.CacheRequestsTotal.WithLabelValues("local", "miss").Inc()

	if rows, loadedAt, ok := s.fromShared(ctx, transactionsKey); ok {
		var transactions []domain.Transaction
		if err := json.Unmarshal(rows, &transactions); err == nil {
			s.transactions, s.txLoaded = transactions, loadedAt
			return transactions, nil
		}
	}

	transactions, err := s.warehouse.Transactions(ctx)
	if err != nil {
		metrics.DatasetRefreshTotal.WithLabelValues("transactions", "error").Inc()
		return nil, fmt.Errorf("refresh transactions dataset: %w", err)
	}
	metrics.DatasetRefreshTotal.WithLabelValues("transactions", "ok").Inc()

	now := time.Now()
	s.toShared(ctx, transactionsKey, transactions, now)
	s.transactions, s.txLoaded = transactions, now
	return transactions, nil
}

// fromShared reads an envelope from the byte cache. A blob older than
// the TTL is ignored even if the cache still holds it.
func (s *Service) fromShared(ctx context.Context, key string) (json.RawMessage, time.Time, bool) {
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		slog.Warn("shared cache read failed", "key", key, "error", err)
		return nil, time.Time{}, false
	}
	if data == nil {
		metrics.CacheRequestsTotal.WithLabelValues("shared", "miss").Inc()
		return nil, time.Time{}, false
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		slog.Warn("shared cache entry malformed", "key", key, "error", err)
		return nil, time.Time{}, false
	}
	if time.Since(env.LoadedAt) >= s.ttl {
		metrics.CacheRequestsTotal.WithLabelValues("shared", "miss").Inc()
		return nil, time.Time{}, false
	}

	metrics.CacheRequestsTotal.WithLabelValues("shared", "hit").Inc()
	return env.Rows, env.LoadedAt, true
}

func (s *Service) toShared(ctx context.Context, key string, rows interface{}, loadedAt time.Time) {
	raw, err := json.Marshal(rows)
	if err != nil {
		slog.Warn("dataset not cacheable", "key", key, "error", err)
		return
	}
	data, err := json.Marshal(envelope{LoadedAt: loadedAt, Rows: raw})
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		slog.Warn("shared cache write failed", "key", key, "error", err)
	}
}

// Warm loads both datasets concurrently. Called once at startup so the
// first dashboard render does not pay for two warehouse queries.
func (s *Service) Warm(ctx context.Context) error {
	var wg sync.WaitGroup
	errs := make(chan error, 2)

	wg.Add(2)
	go func() {
		defer wg.Done()
		if _, err := s.Customers(ctx); err != nil {
			errs <- err
		}
	}()
	go func() {
		defer wg.Done()
		if _, err := s.Transactions(ctx); err != nil {
			errs <- err
		}
	}()

	wg.Wait()
	close(errs)
	return <-errs
}

// Ping checks the warehouse and the cache backing the datasets.
func (s *Service) Ping(ctx context.Context) error {
	if err := s.warehouse.Ping(ctx); err != nil {
		return fmt.Errorf("warehouse: %w", err)
	}
	if err := s.cache.Ping(ctx); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	return nil
}
