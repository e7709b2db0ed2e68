package domain

import (
	"time"
)

// Transaction is one row of the transactions_with_fraud_score warehouse
// table: a historical transaction with its precomputed fraud score.
type Transaction struct {
	// Core identifiers
	ID         string `json:"transactionId"`
	CustomerID string `json:"customerId"`
	AccountID  string `json:"accountId"`

	// When the transaction happened. Rows whose timestamp cannot be
	// parsed are dropped at scan time.
	Date time.Time `json:"date"`

	// Transaction details
	Amount           float64 `json:"amount"`
	Type             string  `json:"type"`
	MerchantCategory string  `json:"merchantCategory"`
	Location         string  `json:"location"`
	DeviceInfo       string  `json:"deviceInfo"`

	// Model outputs computed upstream
	FraudScore   float64 `json:"fraudScore"`
	IsFraudulent bool    `json:"isFraudulent"`
}

// Hour returns the transaction's hour of day, used by screen
// expressions.
func (t Transaction) Hour() int {
	return t.Date.Hour()
}
