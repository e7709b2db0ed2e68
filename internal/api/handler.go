package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/opensight-finance/kestrel/internal/analytics"
	"github.com/opensight-finance/kestrel/internal/domain"
	"github.com/opensight-finance/kestrel/internal/filter"
	"github.com/opensight-finance/kestrel/internal/profile"
	"github.com/opensight-finance/kestrel/internal/scoring"
)

// maxTopLimit caps the limit query parameter on the top-transactions
// endpoint.
const maxTopLimit = 100

// DataSource is what the handlers need from the dataset layer: the two
// cached datasets plus a reachability check.
type DataSource interface {
	domain.DatasetSource
	Ping(ctx context.Context) error
}

// Handler holds dependencies for API handlers.
type Handler struct {
	data     DataSource
	scorer   *scoring.Service
	profiles *profile.Service
	screens  *filter.Compiler
	version  string
	started  time.Time
}

// NewHandler creates a new API handler.
func NewHandler(data DataSource, scorer *scoring.Service, profiles *profile.Service, screens *filter.Compiler, version string) *Handler {
	return &Handler{
		data:     data,
		scorer:   scorer,
		profiles: profiles,
		screens:  screens,
		version:  version,
		started:  time.Now(),
	}
}

// Overview handles GET /api/v1/overview.
func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	f, err := h.parseFilter(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	customers, transactions, err := h.datasets(ctx)
	if err != nil {
		h.writeError(w, err)
		return
	}

	overview, err := analytics.Compute(customers, transactions, f)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, overview)
}

// TopTransactions handles GET /api/v1/transactions/top.
func (h *Handler) TopTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	f, err := h.parseFilter(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	limit := analytics.DefaultTopLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit < 1 || limit > maxTopLimit {
			h.writeError(w, fmt.Errorf("%w: limit must be an integer between 1 and %d", domain.ErrInvalidInput, maxTopLimit))
			return
		}
	}

	customers, transactions, err := h.datasets(ctx)
	if err != nil {
		h.writeError(w, err)
		return
	}

	top, fallback, err := analytics.Top(customers, transactions, f, limit)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": top,
		"count":        len(top),
		"fallback":     fallback,
	})
}

// SimulatorOptions handles GET /api/v1/simulator/options.
func (h *Handler) SimulatorOptions(w http.ResponseWriter, r *http.Request) {
	customers, transactions, err := h.datasets(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, analytics.BuildOptions(customers, transactions))
}

// ScoreTransaction handles POST /api/v1/score.
func (h *Handler) ScoreTransaction(w http.ResponseWriter, r *http.Request) {
	var req domain.ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	// Range checks; the dashboard form enforces the same bounds
	// client-side, but the API accepts raw JSON too.
	if req.Amount < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "amount must not be negative",
		})
		return
	}
	if req.Age < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "age must not be negative",
		})
		return
	}
	if req.Income < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "income must not be negative",
		})
		return
	}
	if req.Balance < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "balance must not be negative",
		})
		return
	}
	if req.Hour < 0 || req.Hour > 23 {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "transactionHour must be between 0 and 23",
		})
		return
	}
	if req.DayOfWeek < 0 || req.DayOfWeek > 6 {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "transactionDayOfWeek must be between 0 and 6",
		})
		return
	}

	result, err := h.scorer.Score(req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// GetCustomer handles GET /api/v1/customers/{id}.
func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, p)
}

// Health returns liveness: the process is up.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": h.version,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
	})
}

// Ready returns whether the server can serve traffic: the model bundle
// is loaded and the warehouse answers a ping.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.scorer == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"ready": "false",
			"error": "model bundle not loaded",
		})
		return
	}

	if h.data != nil {
		if err := h.data.Ping(r.Context()); err != nil {
			slog.Warn("readiness check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"ready": "false",
				"error": "warehouse unreachable",
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"ready": "true",
	})
}

// Dashboard serves the embedded single-page UI.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(dashboardHTML))
}

func (h *Handler) datasets(ctx context.Context) ([]domain.Customer, []domain.Transaction, error) {
	customers, err := h.data.Customers(ctx)
	if err != nil {
		return nil, nil, err
	}
	transactions, err := h.data.Transactions(ctx)
	if err != nil {
		return nil, nil, err
	}
	return customers, transactions, nil
}

// parseFilter reads the shared filter query parameters: from, to
// (YYYY-MM-DD, inclusive), segments (comma-separated IDs), and screen
// (a CEL expression over transaction fields).
func (h *Handler) parseFilter(r *http.Request) (analytics.Filter, error) {
	var f analytics.Filter
	q := r.URL.Query()

	if v := q.Get("from"); v != "" {
		ts, err := time.ParseInLocation("2006-01-02", v, time.UTC)
		if err != nil {
			return f, fmt.Errorf("%w: from must be a YYYY-MM-DD date", domain.ErrInvalidInput)
		}
		f.From = &ts
	}
	if v := q.Get("to"); v != "" {
		ts, err := time.ParseInLocation("2006-01-02", v, time.UTC)
		if err != nil {
			return f, fmt.Errorf("%w: to must be a YYYY-MM-DD date", domain.ErrInvalidInput)
		}
		f.To = &ts
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return f, fmt.Errorf("%w: from is after to", domain.ErrInvalidInput)
	}

	if v := q.Get("segments"); v != "" {
		for _, part := range strings.Split(v, ",") {
			segment, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return f, fmt.Errorf("%w: segments must be comma-separated integers", domain.ErrInvalidInput)
			}
			f.Segments = append(f.Segments, segment)
		}
	}

	if v := q.Get("screen"); v != "" {
		screen, err := h.screens.Compile(v)
		if err != nil {
			return f, err
		}
		f.Screen = screen.Predicate()
	}

	return f, nil
}

// writeError maps the error taxonomy onto HTTP statuses: invalid input
// 400, unknown records 404, an incomplete scoring record 422,
// everything else 500.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var missing *domain.MissingFeaturesError
	switch {
	case errors.As(err, &missing):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": missing.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	default:
		slog.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
