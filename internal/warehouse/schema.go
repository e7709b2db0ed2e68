package warehouse

// Sandbox schema for the two analytics tables. Mirrors the shape the
// upstream pipeline materializes in the cloud warehouse; only cmd/seed
// and tests create these tables.

const schemaCustomers = `
CREATE TABLE IF NOT EXISTS customers_segmented (
    customer_id TEXT PRIMARY KEY,
    customer_segment INTEGER NOT NULL,
    age INTEGER NOT NULL,
    income REAL NOT NULL,
    marital_status TEXT NOT NULL,
    profession TEXT NOT NULL,
    avg_balance REAL NOT NULL,
    num_accounts INTEGER NOT NULL,
    total_spent REAL NOT NULL,
    avg_transaction_amount REAL NOT NULL,
    num_transactions INTEGER NOT NULL,
    total_fraud_score REAL NOT NULL,
    num_fraudulent_transactions INTEGER NOT NULL,
    num_products_held INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_customers_segment ON customers_segmented(customer_segment);
`

const schemaTransactions = `
CREATE TABLE IF NOT EXISTS transactions_with_fraud_score (
    transaction_id TEXT PRIMARY KEY,
    customer_id TEXT NOT NULL,
    account_id TEXT NOT NULL,
    transaction_date TIMESTAMP NOT NULL,
    amount REAL NOT NULL,
    transaction_type TEXT NOT NULL,
    merchant_category TEXT NOT NULL,
    location TEXT NOT NULL,
    device_info TEXT NOT NULL,
    fraud_score REAL NOT NULL,
    is_fraudulent INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_transactions_customer ON transactions_with_fraud_score(customer_id);
CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions_with_fraud_score(transaction_date);
`

// SandboxSchemas returns all schema definitions in creation order.
func SandboxSchemas() []string {
	return []string{
		schemaCustomers,
		schemaTransactions,
	}
}
