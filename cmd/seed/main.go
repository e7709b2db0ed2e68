// Seed tool for generating a local sandbox warehouse.
//
// Usage:
//   go run cmd/seed/main.go -db ./kestrel.db -customers 500 -transactions 5000
//
// This tool:
//   1. Creates the customers_segmented and transactions_with_fraud_score tables
//   2. Fills them with synthetic rows (deterministic for a fixed -seed)
//   3. Backfills the per-customer aggregates from the generated transactions
//   4. Exports a model bundle into -models whose encoder vocabularies match
//      the generated rows, so scoring a seeded row never trips the
//      unseen-value warning
package main

import (
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/opensight-finance/kestrel/internal/artifacts"
	"github.com/opensight-finance/kestrel/internal/warehouse"
)

const numSegments = 4

var (
	professions        = []string{"Engineer", "Teacher", "Doctor", "Lawyer", "Artist", "Nurse"}
	maritalStatuses    = []string{"Single", "Married", "Divorced"}
	transactionTypes   = []string{"purchase", "withdrawal", "payment", "transfer", "deposit"}
	merchantCategories = []string{"Grocery", "Electronics", "Travel", "Restaurants", "Entertainment", "Utilities", "Clothing", "Healthcare"}
	locations          = []string{"Berlin", "Madrid", "London", "Paris", "Rome", "Amsterdam"}
	deviceInfos        = []string{"Web", "iOS App", "Android App", "ATM", "POS Terminal"}

	// account_type exists only in the encoder export; the generated
	// tables have no account column and the scorer sends Unknown.
	accountTypes = []string{"Checking", "Savings", "Unknown"}
)

// modelColumns is the exported model table: the column order the
// classifier scores in, plus each column's weight and scaler
// parameters. Weights are sized for raw inputs so mid-range requests
// land in the medium tier.
var modelColumns = []struct {
	name   string
	weight float64
	mean   float64
	scale  float64
}{
	{"age", -0.004, 40, 15},
	{"income", -0.000004, 70000, 35000},
	{"balance", -0.000008, 20000, 15000},
	{"amount", 0.0005, 900, 1200},
	{"amount_per_income", 2.2, 0.05, 0.08},
	{"transaction_hour", 0.02, 12, 6.5},
	{"transaction_day_of_week", 0.01, 3, 2},
	{"customer_segment", 0.05, 1.5, 1.1},
	{"profession", 0.02, 2.5, 1.7},
	{"marital_status", 0.03, 1, 0.8},
	{"account_type", 0.04, 1, 0.8},
	{"transaction_type", 0.08, 2, 1.4},
	{"merchant_category", 0.02, 3.5, 2.3},
	{"location", 0.03, 2.5, 1.7},
	{"device_info", 0.05, 2, 1.4},
}

const classifierIntercept = -1.6

// segmentCentroids are the numSegments cluster centers over
// (age, income, avg_balance, num_accounts, num_products_held).
var segmentCentroids = [][]float64{
	{28, 32000, 4200, 1.2, 1.8},
	{36, 58000, 14500, 1.9, 2.6},
	{47, 84000, 27800, 2.4, 3.9},
	{58, 112000, 41200, 3.1, 4.7},
}

// anchor is the newest transaction date. A fixed anchor keeps the whole
// dataset reproducible for a given -seed.
var anchor = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

type customer struct {
	id          string
	segment     int
	age         int
	income      float64
	marital     string
	profession  string
	avgBalance  float64
	numAccounts int
	numProducts int

	// aggregates backfilled from the generated transactions
	totalSpent int64 // cents, summed exactly
	sumScore   float64
	numTx      int
	numFraud   int
}

func main() {
	dbPath := flag.String("db", "./kestrel.db", "Path to the sqlite sandbox database")
	numCustomers := flag.Int("customers", 500, "Number of customers to generate")
	numTransactions := flag.Int("transactions", 5000, "Number of transactions to generate")
	seed := flag.Int64("seed", 42, "Random seed (same seed, same data)")
	fraudRate := flag.Float64("fraud-rate", 0.05, "Fraction of transactions flagged as fraud (0.0-1.0)")
	modelsDir := flag.String("models", "./models", "Directory to write the model bundle into")
	flag.Parse()

	if *numCustomers < 1 {
		fmt.Println("ERROR: -customers must be at least 1")
		os.Exit(1)
	}
	if *numTransactions < 0 {
		fmt.Println("ERROR: -transactions must not be negative")
		os.Exit(1)
	}
	if *fraudRate < 0 || *fraudRate > 1 {
		fmt.Println("ERROR: -fraud-rate must be between 0.0 and 1.0")
		os.Exit(1)
	}

	fmt.Println("╔═══════════════════════════════════════════════╗")
	fmt.Println("║        KESTREL SEED - Sandbox Warehouse       ║")
	fmt.Println("╚═══════════════════════════════════════════════╝")
	fmt.Printf("\nDatabase:     %s\n", *dbPath)
	fmt.Printf("Models:       %s\n", *modelsDir)
	fmt.Printf("Customers:    %d\n", *numCustomers)
	fmt.Printf("Transactions: %d\n", *numTransactions)
	fmt.Printf("Fraud Rate:   %.2f\n", *fraudRate)
	fmt.Printf("Seed:         %d\n", *seed)
	fmt.Println()

	db, err := warehouse.OpenSandbox(*dbPath)
	if err != nil {
		fmt.Printf("ERROR: Failed to open sandbox database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// Reseeding replaces the previous dataset.
	if _, err := db.Exec("DELETE FROM transactions_with_fraud_score"); err != nil {
		fmt.Printf("ERROR: Failed to clear transactions: %v\n", err)
		os.Exit(1)
	}
	if _, err := db.Exec("DELETE FROM customers_segmented"); err != nil {
		fmt.Printf("ERROR: Failed to clear customers: %v\n", err)
		os.Exit(1)
	}

	r := rand.New(rand.NewSource(*seed))

	customers := generateCustomers(r, *numCustomers)

	start := time.Now()
	flagged, err := insertData(db, r, customers, *numTransactions, *fraudRate)
	if err != nil {
		fmt.Printf("ERROR: Failed to seed database: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Seeded %d customers across %d segments\n", len(customers), numSegments)
	if *numTransactions > 0 {
		fmt.Printf("✓ Seeded %d transactions (%d flagged, %.2f%%)\n",
			*numTransactions, flagged, 100*float64(flagged)/float64(*numTransactions))
		fmt.Printf("  Dates span %s to %s\n",
			anchor.AddDate(0, 0, -180).Format("2006-01-02"), anchor.Format("2006-01-02"))
	}

	if err := writeModelArtifacts(*modelsDir); err != nil {
		fmt.Printf("ERROR: Failed to write model bundle: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✓ Wrote model bundle to %s\n", *modelsDir)

	fmt.Printf("✓ Done in %v\n", time.Since(start).Round(time.Millisecond))
	fmt.Println("\nStart the dashboard against this sandbox:")
	fmt.Printf("  KESTREL_WAREHOUSE_PATH=%s KESTREL_MODELS_DIR=%s go run cmd/kestrel/main.go\n", *dbPath, *modelsDir)
	fmt.Println()
}

func generateCustomers(r *rand.Rand, n int) []*customer {
	customers := make([]*customer, n)
	for i := range customers {
		customers[i] = &customer{
			id:          strconv.Itoa(1001 + i),
			segment:     r.Intn(numSegments),
			age:         18 + r.Intn(62),
			income:      round2(18000 + r.Float64()*120000),
			marital:     pick(r, maritalStatuses),
			profession:  pick(r, professions),
			avgBalance:  round2(100 + r.Float64()*50000),
			numAccounts: 1 + r.Intn(4),
			numProducts: 1 + r.Intn(6),
		}
	}
	return customers
}

// insertData writes transactions first, accumulating per-customer
// aggregates, then writes the customers with those aggregates filled in.
// Everything runs in one sqlite transaction.
func insertData(db *sql.DB, r *rand.Rand, customers []*customer, numTransactions int, fraudRate float64) (int, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	insertTx, err := tx.Prepare(`INSERT INTO transactions_with_fraud_score
		(transaction_id, customer_id, account_id, transaction_date, amount,
		 transaction_type, merchant_category, location, device_info, fraud_score, is_fraudulent)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer insertTx.Close()

	flagged := 0
	for i := 0; i < numTransactions; i++ {
		owner := customers[r.Intn(len(customers))]

		date := anchor.Add(-time.Duration(r.Intn(180*24*60)) * time.Minute)
		txType := pick(r, transactionTypes)
		amount := round2(amountFor(r, txType))

		isFraud := r.Float64() < fraudRate
		var score float64
		if isFraud {
			score = 0.62 + r.Float64()*0.38
			flagged++
		} else {
			score = r.Float64() * 0.6
		}

		owner.totalSpent += int64(amount * 100)
		owner.sumScore += score
		owner.numTx++
		if isFraud {
			owner.numFraud++
		}

		_, err := insertTx.Exec(
			fmt.Sprintf("tx-%06d", i+1),
			owner.id,
			owner.id+"-acc",
			date.Format(time.RFC3339),
			amount,
			txType,
			pick(r, merchantCategories),
			pick(r, locations),
			pick(r, deviceInfos),
			score,
			boolToInt(isFraud),
		)
		if err != nil {
			return 0, fmt.Errorf("insert transaction %d: %w", i+1, err)
		}
	}

	insertCust, err := tx.Prepare(`INSERT INTO customers_segmented
		(customer_id, customer_segment, age, income, marital_status, profession,
		 avg_balance, num_accounts, total_spent, avg_transaction_amount,
		 num_transactions, total_fraud_score, num_fraudulent_transactions, num_products_held)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer insertCust.Close()

	for _, c := range customers {
		totalSpent := float64(c.totalSpent) / 100
		avgAmount := 0.0
		if c.numTx > 0 {
			avgAmount = round2(totalSpent / float64(c.numTx))
		}
		_, err := insertCust.Exec(
			c.id,
			c.segment,
			c.age,
			c.income,
			c.marital,
			c.profession,
			c.avgBalance,
			c.numAccounts,
			totalSpent,
			avgAmount,
			c.numTx,
			c.sumScore,
			c.numFraud,
			c.numProducts,
		)
		if err != nil {
			return 0, fmt.Errorf("insert customer %s: %w", c.id, err)
		}
	}

	return flagged, tx.Commit()
}

// writeModelArtifacts exports the six-artifact bundle the dashboard
// loads at startup. Encoder class lists are written sorted, matching
// the training exporter's output order.
func writeModelArtifacts(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create models dir: %w", err)
	}

	features := make([]string, len(modelColumns))
	weights := make([]float64, len(modelColumns))
	mean := make([]float64, len(modelColumns))
	scale := make([]float64, len(modelColumns))
	for i, c := range modelColumns {
		features[i] = c.name
		weights[i] = c.weight
		mean[i] = c.mean
		scale[i] = c.scale
	}

	files := map[string]interface{}{
		artifacts.ClassifierFile: &artifacts.Classifier{
			Weights:   weights,
			Intercept: classifierIntercept,
			Classes:   []int{0, 1},
			Version:   "sandbox-1",
		},
		artifacts.SegmentationFile: &artifacts.KMeans{
			Centroids: segmentCentroids,
			Features:  []string{"age", "income", "avg_balance", "num_accounts", "num_products_held"},
		},
		artifacts.ScalerFile: &artifacts.Scaler{
			Mean:     mean,
			Scale:    scale,
			Features: features,
		},
		artifacts.CustomerEncodersFile: artifacts.EncoderSet{
			"profession":     artifacts.NewLabelEncoder(sortedCopy(professions)),
			"marital_status": artifacts.NewLabelEncoder(sortedCopy(maritalStatuses)),
			"account_type":   artifacts.NewLabelEncoder(sortedCopy(accountTypes)),
		},
		artifacts.FraudEncodersFile: artifacts.EncoderSet{
			"transaction_type":  artifacts.NewLabelEncoder(sortedCopy(transactionTypes)),
			"merchant_category": artifacts.NewLabelEncoder(sortedCopy(merchantCategories)),
			"location":          artifacts.NewLabelEncoder(sortedCopy(locations)),
			"device_info":       artifacts.NewLabelEncoder(sortedCopy(deviceInfos)),
		},
		artifacts.FeaturesFile: features,
	}

	for name, v := range files {
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("encode %s: %w", name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), append(data, '\n'), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return nil
}

func sortedCopy(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	sort.Strings(out)
	return out
}

// amountFor draws an amount in a band typical for the transaction type.
func amountFor(r *rand.Rand, txType string) float64 {
	switch txType {
	case "purchase":
		return 5 + r.Float64()*495
	case "withdrawal":
		return 20 + r.Float64()*980
	case "payment":
		return 10 + r.Float64()*1990
	case "transfer":
		return 50 + r.Float64()*4950
	default: // deposit
		return 100 + r.Float64()*7900
	}
}

func pick(r *rand.Rand, values []string) string {
	return values[r.Intn(len(values))]
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
