// Package scoring turns analyst-supplied transaction details into a
// fraud probability using the exported model artifacts.
package scoring

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/opensight-finance/kestrel/internal/artifacts"
	"github.com/opensight-finance/kestrel/internal/domain"
	"github.com/opensight-finance/kestrel/internal/metrics"
)

// incomeEpsilon keeps the spend ratio finite for customers with no
// reported income.
const incomeEpsilon = 1e-6

// The simulator form does not collect these model inputs, so requests
// carry fixed stand-ins. They pass through the encoders like any other
// value.
const (
	placeholderAccountType = "Unknown"
	placeholderSegment     = 0
)

// Service scores requests against a loaded artifact bundle.
type Service struct {
	bundle *artifacts.Bundle
}

func NewService(bundle *artifacts.Bundle) *Service {
	return &Service{bundle: bundle}
}

// Score assembles the model's feature vector from one request and
// returns the fraud probability with its risk tier. Unseen categorical
// values are tolerated and reported as warnings; a feature the model
// expects but the record cannot supply aborts the request with
// *domain.MissingFeaturesError.
func (s *Service) Score(req domain.ScoreRequest) (*domain.ScoreResult, error) {
	record, warnings := s.buildRecord(req)

	vector, missing := s.vectorize(record)
	if len(missing) > 0 {
		return nil, &domain.MissingFeaturesError{Names: missing}
	}

	probability, err := s.bundle.Classifier.PredictProba(vector)
	if err != nil {
		return nil, fmt.Errorf("classify record: %w", err)
	}

	tier := domain.TierFor(probability)
	metrics.ScoresTotal.WithLabelValues(string(tier)).Inc()

	return &domain.ScoreResult{
		RequestID:   uuid.New().String(),
		Probability: probability,
		RiskTier:    tier,
		Warnings:    warnings,
	}, nil
}

// buildRecord derives the numeric record the model consumes: raw
// numerics, the engineered spend ratio, and every categorical column
// replaced in place by its learned code. Customer encoders run first,
// then transaction encoders.
func (s *Service) buildRecord(req domain.ScoreRequest) (map[string]float64, []string) {
	record := map[string]float64{
		"age":                     float64(req.Age),
		"income":                  req.Income,
		"balance":                 req.Balance,
		"amount":                  req.Amount,
		"amount_per_income":       req.Amount / (req.Income + incomeEpsilon),
		"transaction_hour":        float64(req.Hour),
		"transaction_day_of_week": float64(req.DayOfWeek),
		"customer_segment":        float64(placeholderSegment),
	}

	raw := map[string]string{
		"profession":        req.Profession,
		"marital_status":    req.MaritalStatus,
		"account_type":      placeholderAccountType,
		"transaction_type":  req.Type,
		"merchant_category": req.MerchantCategory,
		"location":          req.Location,
		"device_info":       req.DeviceInfo,
	}

	warnings := encodeInto(s.bundle.CustomerEncoders, raw, record, nil)
	warnings = encodeInto(s.bundle.FraudEncoders, raw, record, warnings)
	return record, warnings
}

// encodeInto writes each encoder column's code into the record. A
// column the request has no value for gets the unseen sentinel
// silently; a value outside the training vocabulary gets the sentinel
// plus a warning.
func encodeInto(set artifacts.EncoderSet, raw map[string]string, record map[string]float64, warnings []string) []string {
	for _, column := range set.Columns() {
		value, present := raw[column]
		if !present {
			record[column] = artifacts.UnseenCode
			continue
		}

		code, known := set[column].Code(value)
		if !known {
			warnings = append(warnings, fmt.Sprintf(
				"value %q for %s was not seen in training; encoded as %d",
				value, column, artifacts.UnseenCode))
			metrics.ScoreWarningsTotal.Inc()
			slog.Warn("unseen categorical value", "column", column, "value", value)
		}
		record[column] = float64(code)
	}
	return warnings
}

// vectorize orders the record into the exact feature list the model
// was trained on, reporting any expected feature the record lacks.
func (s *Service) vectorize(record map[string]float64) ([]float64, []string) {
	features := s.bundle.Features
	vector := make([]float64, 0, len(features))
	var missing []string

	for _, name := range features {
		value, ok := record[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		vector = append(vector, value)
	}

	if len(missing) > 0 {
		return nil, missing
	}
	return vector, nil
}
