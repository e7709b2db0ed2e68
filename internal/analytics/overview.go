// Package analytics computes the dashboard aggregates over the cached
// datasets. Every function is pure and leaves its inputs unmodified.
package analytics

import (
	"sort"
	"time"

	"github.com/opensight-finance/kestrel/internal/domain"
)

// HistogramBuckets is the fixed resolution of the score distribution.
const HistogramBuckets = 10

// DefaultTopLimit is how many top-scoring transactions the overview
// carries.
const DefaultTopLimit = 10

// Filter narrows the overview. Zero values mean "no restriction".
type Filter struct {
	// From and To are inclusive date bounds, given as midnight UTC of
	// the first and last day. A transaction on the To day itself still
	// matches.
	From *time.Time
	To   *time.Time

	// Segments restricts customers to these segment IDs, and
	// transactions to customers in them.
	Segments []int

	// Screen is an optional per-transaction predicate compiled from an
	// analyst expression. An evaluation error aborts the whole
	// computation.
	Screen func(domain.Transaction) (bool, error)
}

func (f Filter) dateMatch(ts time.Time) bool {
	if f.From != nil && ts.Before(*f.From) {
		return false
	}
	if f.To != nil && !ts.Before(f.To.AddDate(0, 0, 1)) {
		return false
	}
	return true
}

// Overview is the aggregate fraud picture for the filtered datasets.
type Overview struct {
	TotalTransactions int     `json:"totalTransactions"`
	TotalCustomers    int     `json:"totalCustomers"`
	FlaggedCount      int     `json:"flaggedCount"`
	FlaggedRate       float64 `json:"flaggedRate"`
	MeanScore         float64 `json:"meanScore"`

	Histogram []HistogramBucket `json:"histogram"`
	Segments  []SegmentProfile  `json:"segments"`

	// TopFraudCategory is the merchant category most associated with
	// flagged transactions; nil when nothing is flagged.
	TopFraudCategory *CategoryCount `json:"topFraudCategory,omitempty"`

	// TopTransactions holds the highest-scoring flagged rows. When no
	// row is flagged it falls back to the highest-scoring rows overall
	// and TopIsFallback is set so the UI can say so.
	TopTransactions []domain.Transaction `json:"topTransactions"`
	TopIsFallback   bool                 `json:"topIsFallback"`
}

// HistogramBucket is one bar of the score distribution.
type HistogramBucket struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Count int     `json:"count"`
}

// CategoryCount pairs a merchant category with its flagged-row count.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Compute builds the overview for the given datasets and filter.
func Compute(customers []domain.Customer, transactions []domain.Transaction, f Filter) (*Overview, error) {
	filteredCustomers := filterCustomers(customers, f)
	filteredTx, err := filterTransactions(customers, transactions, f)
	if err != nil {
		return nil, err
	}

	o := &Overview{
		TotalTransactions: len(filteredTx),
		TotalCustomers:    len(filteredCustomers),
		Histogram:         scoreHistogram(filteredTx),
		Segments:          SegmentProfiles(filteredCustomers),
	}

	var scoreSum float64
	categoryCounts := make(map[string]int)
	for _, tx := range filteredTx {
		scoreSum += tx.FraudScore
		if tx.IsFraudulent {
			o.FlaggedCount++
			categoryCounts[tx.MerchantCategory]++
		}
	}

	if len(filteredTx) > 0 {
		o.FlaggedRate = float64(o.FlaggedCount) / float64(len(filteredTx))
		o.MeanScore = scoreSum / float64(len(filteredTx))
	}

	o.TopFraudCategory = modalCategory(categoryCounts)
	o.TopTransactions, o.TopIsFallback = topByScore(filteredTx, DefaultTopLimit)
	return o, nil
}

// Top returns the highest-scoring flagged transactions under the
// filter, falling back to the highest-scoring overall when nothing is
// flagged.
func Top(customers []domain.Customer, transactions []domain.Transaction, f Filter, limit int) ([]domain.Transaction, bool, error) {
	if limit <= 0 {
		limit = DefaultTopLimit
	}
	filteredTx, err := filterTransactions(customers, transactions, f)
	if err != nil {
		return nil, false, err
	}
	top, fallback := topByScore(filteredTx, limit)
	return top, fallback, nil
}

func filterCustomers(customers []domain.Customer, f Filter) []domain.Customer {
	if len(f.Segments) == 0 {
		return customers
	}
	allowed := make(map[int]bool, len(f.Segments))
	for _, s := range f.Segments {
		allowed[s] = true
	}

	out := make([]domain.Customer, 0, len(customers))
	for _, c := range customers {
		if allowed[c.Segment] {
			out = append(out, c)
		}
	}
	return out
}

func filterTransactions(customers []domain.Customer, transactions []domain.Transaction, f Filter) ([]domain.Transaction, error) {
	// The segment filter reaches transactions through their customer.
	var allowedIDs map[string]bool
	if len(f.Segments) > 0 {
		allowedIDs = make(map[string]bool)
		for _, c := range filterCustomers(customers, f) {
			allowedIDs[c.ID] = true
		}
	}

	out := make([]domain.Transaction, 0, len(transactions))
	for _, tx := range transactions {
		if !f.dateMatch(tx.Date) {
			continue
		}
		if allowedIDs != nil && !allowedIDs[tx.CustomerID] {
			continue
		}
		if f.Screen != nil {
			ok, err := f.Screen(tx)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		}
		out = append(out, tx)
	}
	return out, nil
}

// scoreHistogram buckets scores into ten equal bins over [0, 1]; 1.0
// lands in the last bin.
func scoreHistogram(transactions []domain.Transaction) []HistogramBucket {
	buckets := make([]HistogramBucket, HistogramBuckets)
	for i := range buckets {
		buckets[i].Low = float64(i) / HistogramBuckets
		buckets[i].High = float64(i+1) / HistogramBuckets
	}

	for _, tx := range transactions {
		idx := int(tx.FraudScore * HistogramBuckets)
		if idx < 0 {
			idx = 0
		}
		if idx >= HistogramBuckets {
			idx = HistogramBuckets - 1
		}
		buckets[idx].Count++
	}
	return buckets
}

// modalCategory picks the most frequent category; ties break toward
// the lexicographically smaller name so results are stable.
func modalCategory(counts map[string]int) *CategoryCount {
	var best *CategoryCount
	for category, count := range counts {
		switch {
		case best == nil,
			count > best.Count,
			count == best.Count && category < best.Category:
			best = &CategoryCount{Category: category, Count: count}
		}
	}
	return best
}

func topByScore(transactions []domain.Transaction, limit int) ([]domain.Transaction, bool) {
	flagged := make([]domain.Transaction, 0, len(transactions))
	for _, tx := range transactions {
		if tx.IsFraudulent {
			flagged = append(flagged, tx)
		}
	}

	fallback := false
	pool := flagged
	if len(flagged) == 0 {
		// Nothing flagged in this slice of the data: show the highest
		// scores overall so the view is never empty.
		fallback = len(transactions) > 0
		pool = transactions
	}

	sorted := append([]domain.Transaction(nil), pool...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].FraudScore != sorted[j].FraudScore {
			return sorted[i].FraudScore > sorted[j].FraudScore
		}
		return sorted[i].ID < sorted[j].ID
	})

	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted, fallback
}
