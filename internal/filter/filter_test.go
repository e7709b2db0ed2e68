package filter

import (
	"errors"
	"testing"
	"time"

	"github.com/opensight-finance/kestrel/internal/domain"
)

func testTx() domain.Transaction {
	return domain.Transaction{
		ID:               "t1",
		CustomerID:       "42",
		Date:             time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC),
		Amount:           250.0,
		Type:             "purchase",
		MerchantCategory: "Electronics",
		Location:         "Berlin",
		DeviceInfo:       "Web",
		FraudScore:       0.85,
		IsFraudulent:     true,
	}
}

func mustCompile(t *testing.T, expression string) *Screen {
	t.Helper()
	c, err := NewCompiler()
	if err != nil {
		t.Fatalf("failed to create compiler: %v", err)
	}
	screen, err := c.Compile(expression)
	if err != nil {
		t.Fatalf("failed to compile %q: %v", expression, err)
	}
	return screen
}

func TestCompileAndMatch(t *testing.T) {
	cases := []struct {
		name       string
		expression string
		want       bool
	}{
		{"AmountAndCategory", `amount > 100.0 && merchant_category == "Electronics"`, true},
		{"AmountTooLow", `amount > 1000.0`, false},
		{"FraudFlag", `is_fraudulent`, true},
		{"ScoreBand", `fraud_score >= 0.8 && fraud_score < 0.9`, true},
		{"BusinessHours", `hour >= 9 && hour <= 17`, true},
		{"TxMapAccess", `tx.amount > 100.0`, true},
		{"CustomerMatch", `customer_id == "42" || location == "Madrid"`, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			screen := mustCompile(t, tc.expression)
			got, err := screen.Match(testTx())
			if err != nil {
				t.Fatalf("Match failed: %v", err)
			}
			if got != tc.want {
				t.Errorf("Expected %v for %q, got %v", tc.want, tc.expression, got)
			}
		})
	}
}

func TestCompileRejectsBadExpressions(t *testing.T) {
	c, err := NewCompiler()
	if err != nil {
		t.Fatalf("failed to create compiler: %v", err)
	}

	cases := []struct {
		name       string
		expression string
	}{
		{"Syntax", "amount >"},
		{"UnknownVariable", "velocity > 3"},
		{"NonBoolResult", "amount + 1.0"},
		{"Gibberish", "this is not valid CEL !!!"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := c.Compile(tc.expression); !errors.Is(err, domain.ErrInvalidInput) {
				t.Errorf("Expected ErrInvalidInput for %q, got %v", tc.expression, err)
			}
		})
	}
}

func TestMatchEvaluationErrorIsInvalidInput(t *testing.T) {
	screen := mustCompile(t, `tx.no_such_field == "x"`)

	if _, err := screen.Match(testTx()); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for runtime evaluation error, got %v", err)
	}
}

func TestPredicateNilScreen(t *testing.T) {
	var screen *Screen
	if screen.Predicate() != nil {
		t.Error("Nil screen should yield a nil predicate")
	}

	compiled := mustCompile(t, "amount > 0.0")
	pred := compiled.Predicate()
	if pred == nil {
		t.Fatal("Compiled screen should yield a predicate")
	}
	ok, err := pred(testTx())
	if err != nil || !ok {
		t.Errorf("Expected predicate to match, got ok=%v err=%v", ok, err)
	}
}
