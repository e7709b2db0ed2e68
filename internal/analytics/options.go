package analytics

import (
	"sort"

	"github.com/opensight-finance/kestrel/internal/domain"
)

// Caps on the larger option lists. Professions, categories and
// locations have long tails in real data; the scoring form only needs
// the common values.
const (
	maxProfessions        = 20
	maxMerchantCategories = 15
	maxLocations          = 15
)

// Options holds the value lists the scoring form is populated from,
// derived from the loaded datasets.
type Options struct {
	Professions        []string `json:"professions"`
	MaritalStatuses    []string `json:"maritalStatuses"`
	TransactionTypes   []string `json:"transactionTypes"`
	MerchantCategories []string `json:"merchantCategories"`
	Locations          []string `json:"locations"`
	DeviceInfos        []string `json:"deviceInfos"`
}

// BuildOptions collects the form choices from the datasets. High-
// cardinality fields keep only their most frequent values; the rest
// are listed in full, alphabetically.
func BuildOptions(customers []domain.Customer, transactions []domain.Transaction) Options {
	professions := make([]string, 0, len(customers))
	marital := make([]string, 0, len(customers))
	for _, c := range customers {
		professions = append(professions, c.Profession)
		marital = append(marital, c.MaritalStatus)
	}

	types := make([]string, 0, len(transactions))
	categories := make([]string, 0, len(transactions))
	locations := make([]string, 0, len(transactions))
	devices := make([]string, 0, len(transactions))
	for _, tx := range transactions {
		types = append(types, tx.Type)
		categories = append(categories, tx.MerchantCategory)
		locations = append(locations, tx.Location)
		devices = append(devices, tx.DeviceInfo)
	}

	return Options{
		Professions:        topValues(professions, maxProfessions),
		MaritalStatuses:    distinctSorted(marital),
		TransactionTypes:   distinctSorted(types),
		MerchantCategories: topValues(categories, maxMerchantCategories),
		Locations:          topValues(locations, maxLocations),
		DeviceInfos:        distinctSorted(devices),
	}
}

// topValues keeps the n most frequent non-empty values, most frequent
// first and ties alphabetical.
func topValues(values []string, n int) []string {
	counts := make(map[string]int)
	for _, v := range values {
		if v == "" {
			continue
		}
		counts[v]++
	}

	out := make([]string, 0, len(counts))
	for v := range counts {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if counts[out[i]] != counts[out[j]] {
			return counts[out[i]] > counts[out[j]]
		}
		return out[i] < out[j]
	})

	if len(out) > n {
		out = out[:n]
	}
	return out
}

// distinctSorted returns the unique non-empty values in alphabetical
// order.
func distinctSorted(values []string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
