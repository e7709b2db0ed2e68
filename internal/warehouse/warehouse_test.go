package warehouse

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/opensight-finance/kestrel/internal/domain"
)

// newSandbox creates a seeded sqlite sandbox and a warehouse client
// over it.
func newSandbox(t *testing.T) (*SQLWarehouse, *sql.DB) {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "kestrel-test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()
	t.Cleanup(func() { os.Remove(tmpPath) })

	db, err := OpenSandbox(tmpPath)
	if err != nil {
		t.Fatalf("failed to open sandbox: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	w, err := New(domain.WarehouseConfig{Driver: "sqlite", SQLitePath: tmpPath}, nil)
	if err != nil {
		t.Fatalf("failed to create warehouse: %v", err)
	}
	t.Cleanup(func() { w.Close() })

	return w, db
}

func insertCustomer(t *testing.T, db *sql.DB, id string, segment int, age int, income float64) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO customers_segmented (
		customer_id, customer_segment, age, income, marital_status, profession,
		avg_balance, num_accounts, total_spent, avg_transaction_amount,
		num_transactions, total_fraud_score, num_fraudulent_transactions, num_products_held
	) VALUES (?, ?, ?, ?, 'married', 'engineer', 2500.0, 2, 18000.0, 120.5, 150, 3.2, 1, 4)`,
		id, segment, age, income)
	if err != nil {
		t.Fatalf("failed to insert customer: %v", err)
	}
}

func insertTransaction(t *testing.T, db *sql.DB, id, customerID, date string, amount, score float64, fraudulent bool) {
	t.Helper()
	f := 0
	if fraudulent {
		f = 1
	}
	_, err := db.Exec(`INSERT INTO transactions_with_fraud_score (
		transaction_id, customer_id, account_id, transaction_date, amount,
		transaction_type, merchant_category, location, device_info, fraud_score, is_fraudulent
	) VALUES (?, ?, 'acc-001', ?, ?, 'payment', 'electronics', 'Sao Paulo', 'mobile-app', ?, ?)`,
		id, customerID, date, amount, score, f)
	if err != nil {
		t.Fatalf("failed to insert transaction: %v", err)
	}
}

func TestSQLiteWarehouse(t *testing.T) {
	w, db := newSandbox(t)
	ctx := context.Background()

	insertCustomer(t, db, "42", 0, 35, 5000.0)
	insertCustomer(t, db, "cust-7", 1, 52, 9000.0)

	insertTransaction(t, db, "tx-1", "42", "2024-03-01 10:15:00", 250.0, 0.92, true)
	insertTransaction(t, db, "tx-2", "cust-7", "2024-03-02", 80.0, 0.10, false)
	insertTransaction(t, db, "tx-3", "42", "not-a-date", 999.0, 0.99, true)

	t.Run("Ping", func(t *testing.T) {
		if err := w.Ping(ctx); err != nil {
			t.Errorf("Ping failed: %v", err)
		}
	})

	t.Run("Customers", func(t *testing.T) {
		customers, err := w.Customers(ctx)
		if err != nil {
			t.Fatalf("Customers failed: %v", err)
		}

		if len(customers) != 2 {
			t.Fatalf("expected 2 customers, got %d", len(customers))
		}

		byID := map[string]domain.Customer{}
		for _, c := range customers {
			byID[c.ID] = c
		}

		c, ok := byID["42"]
		if !ok {
			t.Fatalf("customer 42 not found in %v", customers)
		}
		if c.Age != 35 || c.Income != 5000.0 || c.Segment != 0 {
			t.Errorf("unexpected customer fields: %+v", c)
		}
		if c.Profession != "engineer" || c.MaritalStatus != "married" {
			t.Errorf("unexpected categorical fields: %+v", c)
		}

		if _, ok := byID["cust-7"]; !ok {
			t.Error("string-keyed customer missing")
		}
	})

	t.Run("TransactionsDropUnparseableDates", func(t *testing.T) {
		transactions, err := w.Transactions(ctx)
		if err != nil {
			t.Fatalf("Transactions failed: %v", err)
		}

		// tx-3 has a garbage date and must be dropped
		if len(transactions) != 2 {
			t.Fatalf("expected 2 transactions, got %d", len(transactions))
		}
		for _, tx := range transactions {
			if tx.ID == "tx-3" {
				t.Error("transaction with unparseable date was not dropped")
			}
		}
	})

	t.Run("TransactionFields", func(t *testing.T) {
		transactions, err := w.Transactions(ctx)
		if err != nil {
			t.Fatalf("Transactions failed: %v", err)
		}

		var tx1 domain.Transaction
		for _, tx := range transactions {
			if tx.ID == "tx-1" {
				tx1 = tx
			}
		}

		if tx1.CustomerID != "42" {
			t.Errorf("expected customer 42, got %q", tx1.CustomerID)
		}
		if !tx1.IsFraudulent || tx1.FraudScore != 0.92 {
			t.Errorf("unexpected fraud fields: %+v", tx1)
		}
		if tx1.Date.Year() != 2024 || tx1.Date.Hour() != 10 {
			t.Errorf("unexpected date: %v", tx1.Date)
		}
		if tx1.MerchantCategory != "electronics" || tx1.Location != "Sao Paulo" {
			t.Errorf("unexpected categorical fields: %+v", tx1)
		}
	})
}

func TestQualifiedTable(t *testing.T) {
	cases := []struct {
		name string
		cfg  domain.WarehouseConfig
		want string
	}{
		{
			"ProjectAndDataset",
			domain.WarehouseConfig{Driver: "postgres", Project: "insight-prod", Dataset: "retail"},
			"insight-prod.retail.customers_segmented",
		},
		{
			"DatasetOnly",
			domain.WarehouseConfig{Driver: "postgres", Dataset: "retail"},
			"retail.customers_segmented",
		},
		{
			"Unqualified",
			domain.WarehouseConfig{Driver: "postgres"},
			"customers_segmented",
		},
		{
			"SQLiteIgnoresQualifiers",
			domain.WarehouseConfig{Driver: "sqlite", Project: "insight-prod", Dataset: "retail"},
			"customers_segmented",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := QualifiedTable(tc.cfg, CustomersTable)
			if got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestNewRejectsUnsupportedDriver(t *testing.T) {
	_, err := New(domain.WarehouseConfig{Driver: "bigtable"}, nil)
	if err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestPostgresRequiresCredentials(t *testing.T) {
	_, err := New(domain.WarehouseConfig{Driver: "postgres"}, nil)
	if err == nil {
		t.Fatal("expected error when neither key nor ambient user is configured")
	}
}
