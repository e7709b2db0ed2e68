package domain

import (
	"fmt"
	"strings"
)

// ScoreRequest is a hypothetical transaction submitted to the
// simulator. It is a structured record: every field the model may
// consume is named here rather than passed as loose maps.
type ScoreRequest struct {
	// Customer attributes
	Age           int     `json:"age"`
	Income        float64 `json:"income"`
	Balance       float64 `json:"balance"`
	Profession    string  `json:"profession"`
	MaritalStatus string  `json:"maritalStatus"`

	// Transaction attributes
	Amount           float64 `json:"amount"`
	Hour             int     `json:"transactionHour"`
	DayOfWeek        int     `json:"transactionDayOfWeek"`
	Type             string  `json:"transactionType"`
	MerchantCategory string  `json:"merchantCategory"`
	Location         string  `json:"location"`
	DeviceInfo       string  `json:"deviceInfo"`
}

// ScoreResult is the simulator's answer for one request.
type ScoreResult struct {
	RequestID   string   `json:"requestId"`
	Probability float64  `json:"probability"`
	RiskTier    RiskTier `json:"riskTier"`

	// Warnings carries non-fatal encoding notes, e.g. category values
	// the encoders never saw during training.
	Warnings []string `json:"warnings"`
}

// RiskTier buckets a fraud probability for display.
type RiskTier string

const (
	RiskLow    RiskTier = "low"
	RiskMedium RiskTier = "medium"
	RiskHigh   RiskTier = "high"
)

// Tier thresholds. Probabilities at or above HighRiskThreshold are
// high; at or above MediumRiskThreshold are medium; everything below
// is low.
const (
	HighRiskThreshold   = 0.8
	MediumRiskThreshold = 0.4
)

// TierFor maps a fraud probability to its risk tier.
func TierFor(p float64) RiskTier {
	switch {
	case p >= HighRiskThreshold:
		return RiskHigh
	case p >= MediumRiskThreshold:
		return RiskMedium
	default:
		return RiskLow
	}
}

// MissingFeaturesError reports features the classifier expects that the
// assembled scoring record does not contain. It aborts the request: a
// partial feature vector must never reach the model.
type MissingFeaturesError struct {
	Names []string
}

func (e *MissingFeaturesError) Error() string {
	return fmt.Sprintf("scoring record is missing expected features: %s", strings.Join(e.Names, ", "))
}
