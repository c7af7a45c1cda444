package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Simplici0/voiceai-site/internal/report"
	"github.com/Simplici0/voiceai-site/internal/roi"
)

const maxLabelLength = 120

var errEstimateNotFound = errors.New("estimate not found")

type estimate struct {
	ID          string
	CreatedAt   string
	Label       string
	Input       roi.Input
	Assumptions roi.Assumptions
	Result      roi.Result
}

type estimateViewData struct {
	calculatorViewData
	ID        string
	Label     string
	CreatedAt string
	Query     string
}

type estimateListItem struct {
	ID                 string
	CreatedAt          string
	Label              string
	CurrencySymbol     string
	NetMonthlyRecovery float64
}

type estimatesViewData struct {
	baseViewData
	Query     string
	Estimates []estimateListItem
}

func (s *server) handleEstimateCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	view, err := s.calculatorView(r, roi.InputFromValues(r.PostForm))
	if err != nil {
		http.Error(w, "failed to load roi assumptions", http.StatusInternalServerError)
		return
	}
	if !view.Result.Finite() {
		view.ErrorMessage = "These inputs are too large to calculate. Try smaller numbers."
		s.renderTemplate(w, http.StatusUnprocessableEntity, "roi.html", view)
		return
	}

	e := estimate{
		ID:          s.newID(),
		Label:       truncate(strings.TrimSpace(r.PostFormValue("label")), maxLabelLength),
		Input:       view.Input,
		Assumptions: view.Assumptions,
		Result:      view.Result,
	}
	if err := s.insertEstimate(r.Context(), e); err != nil {
		log.Printf("[estimate.create] %v", err)
		http.Error(w, "failed to save estimate", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/roi/estimates/"+e.ID, http.StatusSeeOther)
}

// handleEstimateShow renders the stored snapshot. Figures are never
// recalculated, so later assumption changes do not alter saved estimates.
func (s *server) handleEstimateShow(w http.ResponseWriter, r *http.Request) {
	e, ok := s.loadEstimate(w, r)
	if !ok {
		return
	}

	s.renderTemplate(w, http.StatusOK, "estimate.html", estimateViewData{
		calculatorViewData: calculatorViewData{
			baseViewData: baseView(r),
			Input:        e.Input,
			Assumptions:  e.Assumptions,
			Result:       e.Result,
			Summary:      roi.Summarize(e.Result, e.Assumptions),
		},
		ID:        e.ID,
		Label:     e.Label,
		CreatedAt: e.CreatedAt,
		Query:     e.Input.Values().Encode(),
	})
}

func (s *server) handleEstimateReport(w http.ResponseWriter, r *http.Request) {
	e, ok := s.loadEstimate(w, r)
	if !ok {
		return
	}

	writeReport(w, report.Estimate{
		Title:       e.Label,
		Result:      e.Result,
		Assumptions: e.Assumptions,
		GeneratedAt: s.now(),
	})
}

// loadEstimate resolves the {id} URL param, writing the error response
// itself when the estimate cannot be served.
func (s *server) loadEstimate(w http.ResponseWriter, r *http.Request) (estimate, bool) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		http.Error(w, "invalid estimate id", http.StatusBadRequest)
		return estimate{}, false
	}

	e, err := s.getEstimate(r.Context(), id)
	if errors.Is(err, errEstimateNotFound) {
		http.NotFound(w, r)
		return estimate{}, false
	}
	if err != nil {
		log.Printf("[estimate.load] %v", err)
		http.Error(w, "failed to load estimate", http.StatusInternalServerError)
		return estimate{}, false
	}
	return e, true
}

func (s *server) handleAdminEstimates(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	estimates, err := s.listEstimates(r.Context(), query)
	if err != nil {
		log.Printf("[estimate.list] %v", err)
		http.Error(w, "failed to load estimates", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, http.StatusOK, "admin_estimates.html", estimatesViewData{
		baseViewData: baseView(r),
		Query:        query,
		Estimates:    estimates,
	})
}

func (s *server) insertEstimate(ctx context.Context, e estimate) error {
	inputsJSON, err := json.Marshal(e.Input)
	if err != nil {
		return fmt.Errorf("encode estimate inputs: %w", err)
	}
	assumptionsJSON, err := json.Marshal(e.Assumptions)
	if err != nil {
		return fmt.Errorf("encode estimate assumptions: %w", err)
	}
	resultJSON, err := json.Marshal(e.Result)
	if err != nil {
		return fmt.Errorf("encode estimate result: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO estimates (id, created_at, label, inputs_json, assumptions_json, result_json)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.ID, s.now().UTC().Format(sqliteTimeLayout), e.Label, string(inputsJSON), string(assumptionsJSON), string(resultJSON))
	if err != nil {
		return fmt.Errorf("insert estimate: %w", err)
	}
	return nil
}

func (s *server) getEstimate(ctx context.Context, id string) (estimate, error) {
	e := estimate{ID: id}
	var inputsJSON, assumptionsJSON, resultJSON string
	err := s.db.QueryRowContext(ctx, `
		SELECT strftime('%Y-%m-%d %H:%M', created_at), COALESCE(label, ''), inputs_json, assumptions_json, result_json
		FROM estimates
		WHERE id = ?
	`, id).Scan(&e.CreatedAt, &e.Label, &inputsJSON, &assumptionsJSON, &resultJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return estimate{}, errEstimateNotFound
		}
		return estimate{}, fmt.Errorf("query estimate %s: %w", id, err)
	}

	if err := json.Unmarshal([]byte(inputsJSON), &e.Input); err != nil {
		return estimate{}, fmt.Errorf("decode estimate inputs: %w", err)
	}
	if err := json.Unmarshal([]byte(assumptionsJSON), &e.Assumptions); err != nil {
		return estimate{}, fmt.Errorf("decode estimate assumptions: %w", err)
	}
	if err := json.Unmarshal([]byte(resultJSON), &e.Result); err != nil {
		return estimate{}, fmt.Errorf("decode estimate result: %w", err)
	}
	return e, nil
}

func (s *server) listEstimates(ctx context.Context, query string) ([]estimateListItem, error) {
	search := "%" + query + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, strftime('%Y-%m-%d %H:%M', created_at), COALESCE(label, ''), assumptions_json, result_json
		FROM estimates
		WHERE (? = '' OR COALESCE(label, '') LIKE ?)
		ORDER BY datetime(created_at) DESC, id DESC
	`, query, search)
	if err != nil {
		return nil, fmt.Errorf("query estimates: %w", err)
	}
	defer rows.Close()

	estimates := make([]estimateListItem, 0)
	for rows.Next() {
		var item estimateListItem
		var assumptionsJSON, resultJSON string
		if err := rows.Scan(&item.ID, &item.CreatedAt, &item.Label, &assumptionsJSON, &resultJSON); err != nil {
			return nil, fmt.Errorf("scan estimate: %w", err)
		}
		item.CurrencySymbol = extractCurrencySymbol(assumptionsJSON)
		item.NetMonthlyRecovery = extractNetMonthlyRecovery(resultJSON)
		estimates = append(estimates, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate estimates: %w", err)
	}

	return estimates, nil
}

// extractNetMonthlyRecovery reads the displayed (floored) net monthly recovery
// from a stored result, returning 0 for unreadable snapshots.
func extractNetMonthlyRecovery(resultJSON string) float64 {
	var result roi.Result
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return 0
	}
	return result.NetRecovery.Displayed().Monthly
}

func extractCurrencySymbol(assumptionsJSON string) string {
	var a roi.Assumptions
	if err := json.Unmarshal([]byte(assumptionsJSON), &a); err != nil || a.CurrencySymbol == "" {
		return roi.DefaultCurrencySymbol
	}
	return a.CurrencySymbol
}

func truncate(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes])
}
