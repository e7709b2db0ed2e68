//go:build integration
// +build integration

// Package integration provides end-to-end tests for the Kestrel fraud
// analytics dashboard.
//
// These tests verify the COMPLETE serving pipeline:
//
//	sqlite sandbox → warehouse queries → dataset cache → aggregates → HTTP API
//
// Run with: go test -tags=integration -v ./tests/integration/...
//
// Unlike unit tests, nothing here is stubbed: the suite seeds a real
// sqlite database, writes a real model artifact directory, boots every
// component the server binary boots, and talks to the API over HTTP.
//
// UNDERSTANDING THE DOMAIN:
//
// 1. WAREHOUSE: Two precomputed tables. customers_segmented holds one
//    row per customer with a cluster assignment; transactions_with_fraud_score
//    holds one row per transaction with a model score and a fraud flag.
//
// 2. OVERVIEW: Aggregates over those tables - totals, flagged rate,
//    a 10-bucket score histogram, per-segment attribute means, and the
//    top-scored transactions.
//
// 3. SCORING: POST /api/v1/score runs the exported logistic model over
//    a hypothetical transaction. The fixture model has zero weights, so
//    every probability is exactly 0.5 (the medium tier).
//
// 4. PROFILE: GET /api/v1/customers/{id} returns one customer, their
//    segment's means, and their 10 most recent transactions.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/opensight-finance/kestrel/internal/api"
	"github.com/opensight-finance/kestrel/internal/artifacts"
	"github.com/opensight-finance/kestrel/internal/cache"
	"github.com/opensight-finance/kestrel/internal/datahub"
	"github.com/opensight-finance/kestrel/internal/domain"
	"github.com/opensight-finance/kestrel/internal/filter"
	"github.com/opensight-finance/kestrel/internal/profile"
	"github.com/opensight-finance/kestrel/internal/scoring"
	"github.com/opensight-finance/kestrel/internal/warehouse"
)

// ============================================================================
// API Response Types (matching Kestrel's API contract)
// ============================================================================

type overviewResponse struct {
	TotalTransactions int               `json:"totalTransactions"`
	TotalCustomers    int               `json:"totalCustomers"`
	FlaggedCount      int               `json:"flaggedCount"`
	FlaggedRate       float64           `json:"flaggedRate"`
	MeanScore         float64           `json:"meanScore"`
	Histogram         []histogramBucket `json:"histogram"`
	Segments          []segmentProfile  `json:"segments"`
	TopFraudCategory  *categoryCount    `json:"topFraudCategory"`
	TopTransactions   []transactionRow  `json:"topTransactions"`
	TopIsFallback     bool              `json:"topIsFallback"`
}

type histogramBucket struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Count int     `json:"count"`
}

type segmentProfile struct {
	Segment   int                `json:"segment"`
	Customers int                `json:"customers"`
	Means     map[string]float64 `json:"means"`
}

type categoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

type transactionRow struct {
	ID               string  `json:"transactionId"`
	CustomerID       string  `json:"customerId"`
	Amount           float64 `json:"amount"`
	MerchantCategory string  `json:"merchantCategory"`
	FraudScore       float64 `json:"fraudScore"`
	IsFraudulent     bool    `json:"isFraudulent"`
}

type scoreResponse struct {
	RequestID   string   `json:"requestId"`
	Probability float64  `json:"probability"`
	RiskTier    string   `json:"riskTier"`
	Warnings    []string `json:"warnings"`
}

type profileResponse struct {
	Customer struct {
		ID      string  `json:"customerId"`
		Segment int     `json:"segment"`
		Income  float64 `json:"income"`
	} `json:"customer"`
	SegmentSize        int                `json:"segmentSize"`
	SegmentMeans       map[string]float64 `json:"segmentMeans"`
	RecentTransactions []transactionRow   `json:"recentTransactions"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// ============================================================================
// Test Environment Setup
// ============================================================================

var featureList = []string{
	"age", "income", "balance", "amount", "amount_per_income",
	"transaction_hour", "transaction_day_of_week", "customer_segment",
	"profession", "marital_status", "account_type",
	"transaction_type", "merchant_category", "location", "device_info",
}

// writeArtifacts produces the six model files the server loads at boot.
// Zero weights pin every probability at exactly 0.5.
func writeArtifacts(t *testing.T, dir string) {
	t.Helper()

	write := func(name string, v interface{}) {
		t.Helper()
		data, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("Failed to marshal artifact %s: %v", name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
			t.Fatalf("Failed to write artifact %s: %v", name, err)
		}
	}

	zeros := make([]float64, len(featureList))
	ones := make([]float64, len(featureList))
	for i := range ones {
		ones[i] = 1
	}

	write(artifacts.ClassifierFile, map[string]interface{}{
		"weights":   zeros,
		"intercept": 0.0,
		"classes":   []int{0, 1},
	})
	write(artifacts.SegmentationFile, map[string]interface{}{
		"centroids": [][]float64{{0, 0}, {1, 1}},
	})
	write(artifacts.ScalerFile, map[string]interface{}{
		"mean":  zeros,
		"scale": ones,
	})
	write(artifacts.CustomerEncodersFile, map[string][]string{
		"profession":     {"Engineer", "Teacher", "Doctor"},
		"marital_status": {"Single", "Married", "Divorced"},
		"account_type":   {"Checking", "Savings", "Unknown"},
	})
	write(artifacts.FraudEncodersFile, map[string][]string{
		"transaction_type":  {"purchase", "withdrawal", "payment"},
		"merchant_category": {"Grocery", "Electronics", "Travel"},
		"location":          {"Berlin", "Madrid", "London"},
		"device_info":       {"Web", "iOS App", "Android App"},
	})
	write(artifacts.FeaturesFile, featureList)
}

// seedSandbox creates the two warehouse tables and fills them with a
// fixed dataset. One transaction row carries a broken timestamp on
// purpose; the loader must drop it.
func seedSandbox(t *testing.T, dbPath string) {
	t.Helper()

	db, err := warehouse.OpenSandbox(dbPath)
	if err != nil {
		t.Fatalf("Failed to open sandbox: %v", err)
	}
	defer db.Close()

	customers := [][]interface{}{
		// id, segment, age, income, marital, profession
		{"1001", 0, 34, 50000.0, "Single", "Engineer"},
		{"1002", 0, 41, 60000.0, "Married", "Teacher"},
		{"1003", 1, 52, 150000.0, "Single", "Doctor"},
		{"1004", 1, 47, 90000.0, "Divorced", "Doctor"},
	}
	for _, c := range customers {
		_, err := db.Exec(`INSERT INTO customers_segmented
			(customer_id, customer_segment, age, income, marital_status, profession,
			 avg_balance, num_accounts, total_spent, avg_transaction_amount,
			 num_transactions, total_fraud_score, num_fraudulent_transactions, num_products_held)
			VALUES (?, ?, ?, ?, ?, ?, 1000, 1, 0, 0, 0, 0, 0, 1)`,
			c...)
		if err != nil {
			t.Fatalf("Failed to seed customer %v: %v", c[0], err)
		}
	}

	transactions := [][]interface{}{
		// id, customer, date, amount, type, category, location, device, score, fraud
		{"tx-1", "1001", "2024-03-01T10:00:00Z", 120.0, "purchase", "Grocery", "Berlin", "Web", 0.91, 1},
		{"tx-2", "1002", "2024-03-02T11:30:00Z", 40.0, "payment", "Electronics", "Madrid", "iOS App", 0.20, 0},
		{"tx-3", "1003", "2024-03-03T09:15:00Z", 900.0, "withdrawal", "Travel", "London", "Web", 0.55, 0},
		{"tx-4", "1001", "2024-03-05T16:45:00Z", 15.0, "purchase", "Grocery", "Berlin", "Android App", 0.05, 0},
		{"tx-bad", "1002", "not-a-timestamp", 77.0, "payment", "Grocery", "Berlin", "Web", 0.30, 0},
	}
	for _, tx := range transactions {
		_, err := db.Exec(`INSERT INTO transactions_with_fraud_score
			(transaction_id, customer_id, account_id, transaction_date, amount,
			 transaction_type, merchant_category, location, device_info, fraud_score, is_fraudulent)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			tx[0], tx[1], tx[0].(string)+"-acc", tx[2], tx[3], tx[4], tx[5], tx[6], tx[7], tx[8], tx[9])
		if err != nil {
			t.Fatalf("Failed to seed transaction %v: %v", tx[0], err)
		}
	}
}

// startStack boots every component the server binary boots and exposes
// the router over a real HTTP listener.
func startStack(t *testing.T) *httptest.Server {
	t.Helper()

	dir := t.TempDir()
	modelsDir := filepath.Join(dir, "models")
	if err := os.MkdirAll(modelsDir, 0755); err != nil {
		t.Fatalf("Failed to create models dir: %v", err)
	}
	writeArtifacts(t, modelsDir)

	dbPath := filepath.Join(dir, "kestrel.db")
	seedSandbox(t, dbPath)

	bundle, err := artifacts.Load(modelsDir)
	if err != nil {
		t.Fatalf("Failed to load artifacts: %v", err)
	}

	wh, err := warehouse.New(domain.WarehouseConfig{Driver: "sqlite", SQLitePath: dbPath}, nil)
	if err != nil {
		t.Fatalf("Failed to open warehouse: %v", err)
	}
	t.Cleanup(func() { wh.Close() })

	c, err := cache.New(domain.CacheConfig{Type: "memory", LocalMaxSize: 16, LocalTTL: time.Hour})
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}
	t.Cleanup(func() { c.Close() })

	hub := datahub.NewService(wh, c, time.Hour)
	if err := hub.Warm(context.Background()); err != nil {
		t.Fatalf("Failed to warm datasets: %v", err)
	}

	screens, err := filter.NewCompiler()
	if err != nil {
		t.Fatalf("Failed to create screen compiler: %v", err)
	}

	srv := api.NewServer(
		domain.ServerConfig{Host: "127.0.0.1", Port: 0},
		hub,
		scoring.NewService(bundle),
		profile.NewService(hub),
		screens,
		"integration-test",
	)

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, ts *httptest.Server, path string, v interface{}) int {
	t.Helper()

	resp, err := http.Get(ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	defer resp.Body.Close()

	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("Failed to decode GET %s response: %v", path, err)
		}
	}
	return resp.StatusCode
}

func postJSON(t *testing.T, ts *httptest.Server, path string, body interface{}, v interface{}) int {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Failed to marshal request: %v", err)
	}

	resp, err := http.Post(ts.URL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("POST %s failed: %v", path, err)
	}
	defer resp.Body.Close()

	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("Failed to decode POST %s response: %v", path, err)
		}
	}
	return resp.StatusCode
}

// ============================================================================
// SCENARIO 1: Overview Aggregates (Full Pipeline)
// ============================================================================

func TestOverview_FullPipeline(t *testing.T) {
	/*
	   SCENARIO: Boot the whole stack over a seeded sandbox and request
	   the unfiltered overview.

	   SEEDED DATA: 4 customers in 2 segments; 5 transaction rows, one
	   with an unparseable timestamp.

	   EXPECTED BEHAVIOR:
	   - The broken row is dropped at load: 4 transactions, not 5
	   - 1 of 4 is flagged → flaggedRate 0.25
	   - meanScore = (0.91+0.20+0.55+0.05)/4 = 0.4275
	   - Histogram has 10 buckets whose counts sum to 4
	   - Both segments appear, ordered by segment ID
	   - Top transaction is tx-1 (highest score, actually flagged)
	*/
	ts := startStack(t)

	var ov overviewResponse
	status := getJSON(t, ts, "/api/v1/overview", &ov)
	if status != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", status)
	}

	if ov.TotalTransactions != 4 {
		t.Errorf("Expected 4 transactions (bad timestamp dropped), got %d", ov.TotalTransactions)
	}
	if ov.TotalCustomers != 4 {
		t.Errorf("Expected 4 customers, got %d", ov.TotalCustomers)
	}
	if ov.FlaggedCount != 1 {
		t.Errorf("Expected 1 flagged transaction, got %d", ov.FlaggedCount)
	}
	if math.Abs(ov.FlaggedRate-0.25) > 1e-9 {
		t.Errorf("Expected flagged rate 0.25, got %f", ov.FlaggedRate)
	}
	if math.Abs(ov.MeanScore-0.4275) > 1e-9 {
		t.Errorf("Expected mean score 0.4275, got %f", ov.MeanScore)
	}

	if len(ov.Histogram) != 10 {
		t.Fatalf("Expected 10 histogram buckets, got %d", len(ov.Histogram))
	}
	total := 0
	for _, b := range ov.Histogram {
		total += b.Count
	}
	if total != 4 {
		t.Errorf("Expected histogram counts to sum to 4, got %d", total)
	}
	if ov.Histogram[9].Count != 1 {
		t.Errorf("Expected score 0.91 in the last bucket, got count %d", ov.Histogram[9].Count)
	}

	if len(ov.Segments) != 2 {
		t.Fatalf("Expected 2 segments, got %d", len(ov.Segments))
	}
	if ov.Segments[0].Segment != 0 || ov.Segments[1].Segment != 1 {
		t.Errorf("Expected segments ordered 0,1, got %d,%d", ov.Segments[0].Segment, ov.Segments[1].Segment)
	}
	if math.Abs(ov.Segments[1].Means["income"]-120000) > 1e-9 {
		t.Errorf("Expected segment 1 mean income 120000, got %f", ov.Segments[1].Means["income"])
	}

	if ov.TopFraudCategory == nil || ov.TopFraudCategory.Category != "Grocery" {
		t.Errorf("Expected top fraud category Grocery, got %+v", ov.TopFraudCategory)
	}
	if len(ov.TopTransactions) == 0 || ov.TopTransactions[0].ID != "tx-1" {
		t.Fatalf("Expected tx-1 as top transaction, got %+v", ov.TopTransactions)
	}
	if ov.TopIsFallback {
		t.Error("Expected real flagged transactions, not the fallback list")
	}

	t.Logf("✓ Overview: %d tx, %d flagged, mean=%.4f", ov.TotalTransactions, ov.FlaggedCount, ov.MeanScore)
}

// ============================================================================
// SCENARIO 2: Overview Filters
// ============================================================================

func TestOverview_Filters(t *testing.T) {
	/*
	   SCENARIO: The same overview narrowed by date range, by segment,
	   and by a screen expression.

	   EXPECTED BEHAVIOR:
	   - from/to are both inclusive calendar dates
	   - A segment filter keeps only transactions owned by customers in
	     those segments
	   - A screen expression drops rows where it evaluates false
	*/
	ts := startStack(t)

	t.Run("DateRangeInclusive", func(t *testing.T) {
		var ov overviewResponse
		status := getJSON(t, ts, "/api/v1/overview?from=2024-03-02&to=2024-03-03", &ov)
		if status != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", status)
		}
		// tx-2 (Mar 2) and tx-3 (Mar 3); both endpoints count.
		if ov.TotalTransactions != 2 {
			t.Errorf("Expected 2 transactions in range, got %d", ov.TotalTransactions)
		}
	})

	t.Run("SegmentFilter", func(t *testing.T) {
		var ov overviewResponse
		status := getJSON(t, ts, "/api/v1/overview?segments=0", &ov)
		if status != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", status)
		}
		// Customers 1001 and 1002 own tx-1, tx-2, tx-4.
		if ov.TotalTransactions != 3 {
			t.Errorf("Expected 3 transactions for segment 0, got %d", ov.TotalTransactions)
		}
		if ov.TotalCustomers != 2 {
			t.Errorf("Expected 2 customers for segment 0, got %d", ov.TotalCustomers)
		}
	})

	t.Run("ScreenExpression", func(t *testing.T) {
		q := url.Values{}
		q.Set("screen", `merchant_category == "Grocery" && amount > 100.0`)

		var ov overviewResponse
		status := getJSON(t, ts, "/api/v1/overview?"+q.Encode(), &ov)
		if status != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", status)
		}
		// Only tx-1 is Grocery above 100.
		if ov.TotalTransactions != 1 {
			t.Errorf("Expected 1 screened transaction, got %d", ov.TotalTransactions)
		}
	})

	t.Run("BadScreenRejected", func(t *testing.T) {
		q := url.Values{}
		q.Set("screen", "amount >")

		var er errorResponse
		status := getJSON(t, ts, "/api/v1/overview?"+q.Encode(), &er)
		if status != http.StatusBadRequest {
			t.Errorf("Expected 400 for a broken screen, got %d", status)
		}
		if er.Error == "" {
			t.Error("Expected an error message in the response body")
		}
	})

	t.Logf("✓ Filters behave: inclusive dates, segment ownership, screens")
}

// ============================================================================
// SCENARIO 3: Scoring a Hypothetical Transaction
// ============================================================================

func TestScore_EndToEnd(t *testing.T) {
	/*
	   SCENARIO: Score requests against the loaded artifact bundle.

	   EXPECTED BEHAVIOR:
	   - Known categorical values → probability exactly 0.5 (zero-weight
	     fixture model), medium tier, no warnings
	   - A profession the encoders never saw → still scores, but the
	     response carries a warning naming the value
	   - Missing model features cannot happen via the public request
	     shape, so the API-level failure modes are validation 400s
	*/
	ts := startStack(t)

	req := map[string]interface{}{
		"age":                  34,
		"income":               50000,
		"balance":              20000,
		"amount":               250,
		"transactionHour":      15,
		"transactionDayOfWeek": 2,
		"profession":           "Engineer",
		"maritalStatus":        "Single",
		"transactionType":      "purchase",
		"merchantCategory":     "Grocery",
		"location":             "Berlin",
		"deviceInfo":           "Web",
	}

	t.Run("KnownValues", func(t *testing.T) {
		var sr scoreResponse
		status := postJSON(t, ts, "/api/v1/score", req, &sr)
		if status != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", status)
		}
		if math.Abs(sr.Probability-0.5) > 1e-12 {
			t.Errorf("Expected probability 0.5 from zero-weight model, got %f", sr.Probability)
		}
		if sr.RiskTier != "medium" {
			t.Errorf("Expected medium tier at 0.5, got %s", sr.RiskTier)
		}
		if len(sr.Warnings) != 0 {
			t.Errorf("Expected no warnings for known values, got %v", sr.Warnings)
		}
		if sr.RequestID == "" {
			t.Error("Expected a request ID")
		}
	})

	t.Run("UnseenValueWarns", func(t *testing.T) {
		unseen := map[string]interface{}{}
		for k, v := range req {
			unseen[k] = v
		}
		unseen["profession"] = "Astronaut"

		var sr scoreResponse
		status := postJSON(t, ts, "/api/v1/score", unseen, &sr)
		if status != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", status)
		}
		if len(sr.Warnings) != 1 {
			t.Fatalf("Expected 1 warning for unseen profession, got %v", sr.Warnings)
		}
	})

	t.Run("InvalidAmountRejected", func(t *testing.T) {
		bad := map[string]interface{}{}
		for k, v := range req {
			bad[k] = v
		}
		bad["amount"] = -10

		var er errorResponse
		status := postJSON(t, ts, "/api/v1/score", bad, &er)
		if status != http.StatusBadRequest {
			t.Errorf("Expected 400 for negative amount, got %d", status)
		}
	})

	t.Logf("✓ Scoring pipeline: deterministic probabilities, unseen-value warnings")
}

// ============================================================================
// SCENARIO 4: Customer Profile
// ============================================================================

func TestCustomerProfile_EndToEnd(t *testing.T) {
	/*
	   SCENARIO: Look up a seeded customer and two failure modes.

	   EXPECTED BEHAVIOR:
	   - Customer 1001 is in segment 0 (2 customers, mean income 55000)
	     and owns tx-1 and tx-4; newest (tx-4) comes first
	   - An unknown but well-formed ID → 404
	   - A malformed ID → 400, distinct from not-found
	*/
	ts := startStack(t)

	t.Run("Found", func(t *testing.T) {
		var pr profileResponse
		status := getJSON(t, ts, "/api/v1/customers/1001", &pr)
		if status != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", status)
		}
		if pr.Customer.ID != "1001" {
			t.Errorf("Expected customer 1001, got %s", pr.Customer.ID)
		}
		if pr.SegmentSize != 2 {
			t.Errorf("Expected segment size 2, got %d", pr.SegmentSize)
		}
		if math.Abs(pr.SegmentMeans["income"]-55000) > 1e-9 {
			t.Errorf("Expected segment mean income 55000, got %f", pr.SegmentMeans["income"])
		}
		if len(pr.RecentTransactions) != 2 {
			t.Fatalf("Expected 2 recent transactions, got %d", len(pr.RecentTransactions))
		}
		if pr.RecentTransactions[0].ID != "tx-4" {
			t.Errorf("Expected newest transaction tx-4 first, got %s", pr.RecentTransactions[0].ID)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		var er errorResponse
		status := getJSON(t, ts, "/api/v1/customers/9999", &er)
		if status != http.StatusNotFound {
			t.Errorf("Expected 404 for unknown customer, got %d", status)
		}
	})

	t.Run("MalformedID", func(t *testing.T) {
		var er errorResponse
		status := getJSON(t, ts, "/api/v1/customers/bad%3Bid", &er)
		if status != http.StatusBadRequest {
			t.Errorf("Expected 400 for malformed ID, got %d", status)
		}
	})

	t.Logf("✓ Profile lookup: found, not-found and invalid-input all distinct")
}

// ============================================================================
// SCENARIO 5: Operational Endpoints
// ============================================================================

func TestOperationalEndpoints(t *testing.T) {
	/*
	   SCENARIO: The endpoints operators point monitors and scrapers at.

	   EXPECTED BEHAVIOR:
	   - /health reports healthy while the warehouse answers pings
	   - /metrics serves the Prometheus registry
	   - / serves the dashboard page as HTML
	*/
	ts := startStack(t)

	var health map[string]string
	if status := getJSON(t, ts, "/health", &health); status != http.StatusOK {
		t.Errorf("Expected 200 from /health, got %d", status)
	}
	if health["status"] != "healthy" {
		t.Errorf("Expected healthy status, got %s", health["status"])
	}

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200 from /metrics, got %d", resp.StatusCode)
	}

	page, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET / failed: %v", err)
	}
	page.Body.Close()
	if ct := page.Header.Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Expected HTML content type for the dashboard, got %s", ct)
	}

	t.Logf("✓ Operational endpoints: health, metrics, dashboard page")
}
