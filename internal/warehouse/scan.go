package warehouse

import (
	"database/sql"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/opensight-finance/kestrel/internal/domain"
)

// scanRecords reads every row into name-keyed records. The fixed
// queries are SELECT *, so column order and the optional columns vary
// between warehouse exports.
func scanRecords(rows *sql.Rows) ([]map[string]interface{}, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var records []map[string]interface{}
	for rows.Next() {
		values := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		rec := make(map[string]interface{}, len(cols))
		for i, c := range cols {
			rec[c] = values[i]
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func buildCustomer(rec map[string]interface{}) domain.Customer {
	c := domain.Customer{
		ID:                        asString(rec["customer_id"]),
		Segment:                   asInt(rec["customer_segment"]),
		Age:                       asInt(rec["age"]),
		Income:                    asFloat(rec["income"]),
		MaritalStatus:             asString(rec["marital_status"]),
		Profession:                asString(rec["profession"]),
		AvgBalance:                asFloat(rec["avg_balance"]),
		NumAccounts:               asInt(rec["num_accounts"]),
		TotalSpent:                asFloat(rec["total_spent"]),
		AvgTransactionAmount:      asFloat(rec["avg_transaction_amount"]),
		NumTransactions:           asInt(rec["num_transactions"]),
		TotalFraudScore:           asFloat(rec["total_fraud_score"]),
		NumFraudulentTransactions: asInt(rec["num_fraudulent_transactions"]),
		NumProductsHeld:           asInt(rec["num_products_held"]),
	}

	// Some exports carry model-ready *_encoded columns alongside the
	// raw ones; keep them for the segment mean tables.
	for col, v := range rec {
		if strings.HasSuffix(col, "_encoded") {
			if c.Encoded == nil {
				c.Encoded = make(map[string]float64)
			}
			c.Encoded[col] = asFloat(v)
		}
	}
	return c
}

// buildTransaction returns ok=false when the row's timestamp cannot be
// parsed; such rows are dropped by the caller.
func buildTransaction(rec map[string]interface{}) (domain.Transaction, bool) {
	date, ok := asTime(rec["transaction_date"])
	if !ok {
		return domain.Transaction{}, false
	}

	return domain.Transaction{
		ID:               asString(rec["transaction_id"]),
		CustomerID:       asString(rec["customer_id"]),
		AccountID:        asString(rec["account_id"]),
		Date:             date,
		Amount:           asFloat(rec["amount"]),
		Type:             asString(rec["transaction_type"]),
		MerchantCategory: asString(rec["merchant_category"]),
		Location:         asString(rec["location"]),
		DeviceInfo:       asString(rec["device_info"]),
		FraudScore:       asFloat(rec["fraud_score"]),
		IsFraudulent:     asBool(rec["is_fraudulent"]),
	}, true
}

// asString normalizes any scanned value to a string. Integer-valued
// numbers render without a decimal point so numeric and string customer
// IDs compare equal across tables.
func asString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		return ""
	}
}

func asFloat(v interface{}) float64 {
	switch t := v.(type) {
	case int64:
		return float64(t)
	case float64:
		return t
	case []byte:
		f, _ := strconv.ParseFloat(string(t), 64)
		return f
	case string:
		f, _ := strconv.ParseFloat(t, 64)
		return f
	case bool:
		if t {
			return 1
		}
		return 0
	default:
		return 0
	}
}

func asInt(v interface{}) int {
	return int(asFloat(v))
}

func asBool(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case int64:
		return t != 0
	case float64:
		return t != 0
	case []byte:
		return parseBoolString(string(t))
	case string:
		return parseBoolString(t)
	default:
		return false
	}
}

func parseBoolString(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "1", "yes":
		return true
	default:
		return false
	}
}

// timeLayouts are the timestamp shapes warehouse exports use.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func asTime(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case []byte:
		return parseTimeString(string(t))
	case string:
		return parseTimeString(t)
	case int64:
		return time.Unix(t, 0).UTC(), true
	case float64:
		return time.Unix(int64(t), 0).UTC(), true
	default:
		return time.Time{}, false
	}
}

func parseTimeString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
