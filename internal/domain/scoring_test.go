package domain

import (
	"strings"
	"testing"
)

func TestTierFor(t *testing.T) {
	cases := []struct {
		probability float64
		want        RiskTier
	}{
		{0.0, RiskLow},
		{0.39999, RiskLow},
		{0.4, RiskMedium},
		{0.79999, RiskMedium},
		{0.8, RiskHigh},
		{1.0, RiskHigh},
	}

	for _, tc := range cases {
		if got := TierFor(tc.probability); got != tc.want {
			t.Errorf("TierFor(%v) = %s, want %s", tc.probability, got, tc.want)
		}
	}
}

func TestMissingFeaturesErrorNamesFeatures(t *testing.T) {
	err := &MissingFeaturesError{Names: []string{"amount", "channel"}}
	msg := err.Error()

	if !strings.Contains(msg, "amount, channel") {
		t.Errorf("Expected message to list the missing features, got %q", msg)
	}
}
