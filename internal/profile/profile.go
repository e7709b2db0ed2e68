// Package profile assembles the customer detail view: identity,
// segment context, and the customer's most recent activity.
package profile

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/opensight-finance/kestrel/internal/analytics"
	"github.com/opensight-finance/kestrel/internal/domain"
)

const (
	maxIDLength = 64
	recentLimit = 10
)

// Service looks up customer profiles against the cached datasets.
type Service struct {
	data domain.DatasetSource
}

func NewService(data domain.DatasetSource) *Service {
	return &Service{data: data}
}

// Get returns the profile for one customer ID. A malformed ID fails
// with domain.ErrInvalidInput; an ID that matches no customer fails
// with domain.ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (*domain.CustomerProfile, error) {
	id = strings.TrimSpace(id)
	if !validID(id) {
		return nil, fmt.Errorf("%w: customer ID must be 1-%d characters of letters, digits, underscore or hyphen",
			domain.ErrInvalidInput, maxIDLength)
	}

	customers, err := s.data.Customers(ctx)
	if err != nil {
		return nil, err
	}

	var found *domain.Customer
	for i := range customers {
		if customers[i].ID == id {
			found = &customers[i]
			break
		}
	}
	if found == nil {
		return nil, fmt.Errorf("%w: customer %s", domain.ErrNotFound, id)
	}

	transactions, err := s.data.Transactions(ctx)
	if err != nil {
		return nil, err
	}

	means, size := analytics.SegmentMeans(customers, found.Segment)

	return &domain.CustomerProfile{
		Customer:           *found,
		SegmentSize:        size,
		SegmentMeans:       means,
		RecentTransactions: recentFor(transactions, id, recentLimit),
	}, nil
}

func validID(id string) bool {
	if id == "" || len(id) > maxIDLength {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_' || r == '-':
		default:
			return false
		}
	}
	return true
}

// recentFor picks the customer's transactions newest first. The shared
// dataset slice stays untouched; sorting happens on the copy.
func recentFor(transactions []domain.Transaction, customerID string, limit int) []domain.Transaction {
	mine := make([]domain.Transaction, 0, limit)
	for _, tx := range transactions {
		if tx.CustomerID == customerID {
			mine = append(mine, tx)
		}
	}

	sort.Slice(mine, func(i, j int) bool {
		if !mine[i].Date.Equal(mine[j].Date) {
			return mine[i].Date.After(mine[j].Date)
		}
		return mine[i].ID < mine[j].ID
	})

	if len(mine) > limit {
		mine = mine[:limit]
	}
	return mine
}
