package domain

// Customer is one row of the customers_segmented warehouse table.
type Customer struct {
	// Core identifiers. IDs are normalized to strings at scan time so
	// integer-keyed and string-keyed warehouse exports behave the same.
	ID      string `json:"customerId"`
	Segment int    `json:"segment"`

	// Demographics
	Age           int     `json:"age"`
	Income        float64 `json:"income"`
	MaritalStatus string  `json:"maritalStatus"`
	Profession    string  `json:"profession"`

	// Account aggregates
	AvgBalance           float64 `json:"avgBalance"`
	NumAccounts          int     `json:"numAccounts"`
	TotalSpent           float64 `json:"totalSpent"`
	AvgTransactionAmount float64 `json:"avgTransactionAmount"`
	NumTransactions      int     `json:"numTransactions"`

	// Fraud aggregates
	TotalFraudScore           float64 `json:"totalFraudScore"`
	NumFraudulentTransactions int     `json:"numFraudulentTransactions"`
	NumProductsHeld           int     `json:"numProductsHeld"`

	// Optional *_encoded columns some warehouse exports carry.
	Encoded map[string]float64 `json:"encoded,omitempty"`
}

// SegmentAttributeNames lists the numeric customer attributes averaged
// per segment, in display order. Encoded columns, when present, are
// appended after these.
var SegmentAttributeNames = []string{
	"age",
	"income",
	"avg_balance",
	"num_accounts",
	"total_spent",
	"avg_transaction_amount",
	"num_transactions",
	"total_fraud_score",
	"num_fraudulent_transactions",
	"num_products_held",
}

// NumericAttributes returns the customer's numeric columns keyed by
// their warehouse names, including any optional encoded columns.
func (c Customer) NumericAttributes() map[string]float64 {
	m := map[string]float64{
		"age":                         float64(c.Age),
		"income":                      c.Income,
		"avg_balance":                 c.AvgBalance,
		"num_accounts":                float64(c.NumAccounts),
		"total_spent":                 c.TotalSpent,
		"avg_transaction_amount":      c.AvgTransactionAmount,
		"num_transactions":            float64(c.NumTransactions),
		"total_fraud_score":           c.TotalFraudScore,
		"num_fraudulent_transactions": float64(c.NumFraudulentTransactions),
		"num_products_held":           float64(c.NumProductsHeld),
	}
	for k, v := range c.Encoded {
		m[k] = v
	}
	return m
}

// CustomerProfile is the profile view: one customer, their segment's
// averages, and their most recent transactions.
type CustomerProfile struct {
	Customer           Customer           `json:"customer"`
	SegmentSize        int                `json:"segmentSize"`
	SegmentMeans       map[string]float64 `json:"segmentMeans"`
	RecentTransactions []Transaction      `json:"recentTransactions"`
}
