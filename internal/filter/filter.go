// Package filter compiles analyst screen expressions into boolean
// predicates over transactions, backed by CEL.
package filter

import (
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"

	"github.com/opensight-finance/kestrel/internal/domain"
)

// Compiler holds the CEL environment screens compile against. One
// compiler serves all requests; compiled screens are request-scoped.
type Compiler struct {
	env *cel.Env
}

// NewCompiler declares the transaction fields a screen may reference.
func NewCompiler() (*Compiler, error) {
	env, err := cel.NewEnv(
		cel.Variable("tx", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("amount", cel.DoubleType),
		cel.Variable("fraud_score", cel.DoubleType),
		cel.Variable("is_fraudulent", cel.BoolType),
		cel.Variable("transaction_type", cel.StringType),
		cel.Variable("merchant_category", cel.StringType),
		cel.Variable("location", cel.StringType),
		cel.Variable("device_info", cel.StringType),
		cel.Variable("customer_id", cel.StringType),
		cel.Variable("hour", cel.IntType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	return &Compiler{env: env}, nil
}

// Compile turns one screen expression into a predicate. Expressions
// come from request parameters, so every compilation failure maps to
// domain.ErrInvalidInput.
func (c *Compiler) Compile(expression string) (*Screen, error) {
	ast, issues := c.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("%w: screen does not compile: %v", domain.ErrInvalidInput, issues.Err())
	}

	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("%w: screen must return bool, got %s", domain.ErrInvalidInput, ast.OutputType())
	}

	program, err := c.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("%w: screen program: %v", domain.ErrInvalidInput, err)
	}

	return &Screen{program: program}, nil
}

// Screen is one compiled boolean filter over transactions.
type Screen struct {
	program cel.Program
}

// Match evaluates the screen against a single transaction. Runtime
// evaluation errors are the expression author's to fix, so they also
// map to domain.ErrInvalidInput.
func (s *Screen) Match(tx domain.Transaction) (bool, error) {
	out, _, err := s.program.Eval(activation(tx))
	if err != nil {
		return false, fmt.Errorf("%w: screen evaluation: %v", domain.ErrInvalidInput, err)
	}

	b, ok := out.(types.Bool)
	if !ok {
		return false, fmt.Errorf("%w: screen must return bool", domain.ErrInvalidInput)
	}
	return bool(b), nil
}

// Predicate adapts the screen to the analytics filter. A nil screen
// yields a nil predicate, meaning no screening.
func (s *Screen) Predicate() func(domain.Transaction) (bool, error) {
	if s == nil {
		return nil
	}
	return s.Match
}

func activation(tx domain.Transaction) map[string]any {
	return map[string]any{
		"tx": map[string]any{
			"id":                tx.ID,
			"customer_id":       tx.CustomerID,
			"account_id":        tx.AccountID,
			"amount":            tx.Amount,
			"type":              tx.Type,
			"merchant_category": tx.MerchantCategory,
			"location":          tx.Location,
			"device_info":       tx.DeviceInfo,
			"fraud_score":       tx.FraudScore,
			"is_fraudulent":     tx.IsFraudulent,
		},
		"amount":            tx.Amount,
		"fraud_score":       tx.FraudScore,
		"is_fraudulent":     tx.IsFraudulent,
		"transaction_type":  tx.Type,
		"merchant_category": tx.MerchantCategory,
		"location":          tx.Location,
		"device_info":       tx.DeviceInfo,
		"customer_id":       tx.CustomerID,
		"hour":              tx.Hour(),
	}
}
