package analytics

import (
	"sort"

	"github.com/opensight-finance/kestrel/internal/domain"
)

// SegmentProfile summarizes one customer segment: its size and the
// mean of every numeric attribute across its members.
type SegmentProfile struct {
	Segment   int                `json:"segment"`
	Customers int                `json:"customers"`
	Means     map[string]float64 `json:"means"`
}

// SegmentProfiles groups customers by segment and averages their
// numeric attributes, ordered by ascending segment ID.
func SegmentProfiles(customers []domain.Customer) []SegmentProfile {
	type accumulator struct {
		size   int
		sums   map[string]float64
		counts map[string]int
	}

	groups := make(map[int]*accumulator)
	for _, c := range customers {
		acc := groups[c.Segment]
		if acc == nil {
			acc = &accumulator{
				sums:   make(map[string]float64),
				counts: make(map[string]int),
			}
			groups[c.Segment] = acc
		}
		acc.size++
		for name, value := range c.NumericAttributes() {
			acc.sums[name] += value
			acc.counts[name]++
		}
	}

	profiles := make([]SegmentProfile, 0, len(groups))
	for segment, acc := range groups {
		means := make(map[string]float64, len(acc.sums))
		for name, sum := range acc.sums {
			means[name] = sum / float64(acc.counts[name])
		}
		profiles = append(profiles, SegmentProfile{
			Segment:   segment,
			Customers: acc.size,
			Means:     means,
		})
	}

	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].Segment < profiles[j].Segment
	})
	return profiles
}

// SegmentMeans returns the attribute means and size of a single
// segment. Size zero means the segment has no members.
func SegmentMeans(customers []domain.Customer, segment int) (map[string]float64, int) {
	for _, p := range SegmentProfiles(customers) {
		if p.Segment == segment {
			return p.Means, p.Customers
		}
	}
	return map[string]float64{}, 0
}
