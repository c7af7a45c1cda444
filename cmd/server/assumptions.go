package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Simplici0/voiceai-site/internal/roi"
)

type assumptionsViewData struct {
	baseViewData
	Assumptions roi.Assumptions
}

func (s *server) handleAdminAssumptionsForm(w http.ResponseWriter, r *http.Request) {
	assumptions, err := s.getAssumptions(r.Context())
	if err != nil {
		http.Error(w, "failed to load roi assumptions", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, http.StatusOK, "admin_assumptions.html", assumptionsViewData{
		baseViewData: baseView(r),
		Assumptions:  assumptions,
	})
}

func (s *server) handleAdminAssumptionsSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	assumptions, validationErr := parseAssumptionsForm(r)
	if validationErr != nil {
		view := assumptionsViewData{baseViewData: baseView(r), Assumptions: assumptions}
		view.ErrorMessage = validationErr.Error()
		s.renderTemplate(w, http.StatusBadRequest, "admin_assumptions.html", view)
		return
	}

	if err := s.updateAssumptions(r.Context(), assumptions); err != nil {
		http.Error(w, "failed to save roi assumptions", http.StatusInternalServerError)
		return
	}

	view := assumptionsViewData{baseViewData: baseView(r), Assumptions: assumptions}
	view.SuccessMessage = "Assumptions saved."
	s.renderTemplate(w, http.StatusOK, "admin_assumptions.html", view)
}

func parseAssumptionsForm(r *http.Request) (roi.Assumptions, error) {
	assumptions := roi.Assumptions{CurrencySymbol: strings.TrimSpace(r.FormValue("currency_symbol"))}

	var err error
	if assumptions.CostPerMinute, err = parseNonNegativeFloat(r.FormValue("cost_per_minute"), "cost_per_minute"); err != nil {
		return assumptions, err
	}
	if assumptions.MonthlySoftwareFee, err = parseNonNegativeFloat(r.FormValue("monthly_software_fee"), "monthly_software_fee"); err != nil {
		return assumptions, err
	}
	if assumptions.RevenueGrowthPercent, err = parsePercent(r.FormValue("revenue_growth_percent"), "revenue_growth_percent"); err != nil {
		return assumptions, err
	}
	if assumptions.CurrencySymbol == "" || utf8.RuneCountInString(assumptions.CurrencySymbol) > 3 {
		return assumptions, fmt.Errorf("currency_symbol must be 1 to 3 characters")
	}

	return assumptions, nil
}

func parseNonNegativeFloat(raw, field string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be numeric", field)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("%s must be a finite number", field)
	}
	if value < 0 {
		return 0, fmt.Errorf("%s must be greater than or equal to 0", field)
	}
	return value, nil
}

func parsePercent(raw, field string) (float64, error) {
	value, err := parseNonNegativeFloat(raw, field)
	if err != nil {
		return 0, err
	}
	if value > 100 {
		return 0, fmt.Errorf("%s must be between 0 and 100", field)
	}
	return value, nil
}

// getAssumptions reads the pricing singleton, falling back to the canonical
// defaults when the row has not been seeded yet.
func (s *server) getAssumptions(ctx context.Context) (roi.Assumptions, error) {
	var a roi.Assumptions
	err := s.db.QueryRowContext(ctx, `
		SELECT cost_per_minute, monthly_software_fee, revenue_growth_percent, currency_symbol
		FROM roi_assumptions
		WHERE id = 1
	`).Scan(
		&a.CostPerMinute,
		&a.MonthlySoftwareFee,
		&a.RevenueGrowthPercent,
		&a.CurrencySymbol,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return roi.DefaultAssumptions(), nil
		}
		return roi.Assumptions{}, fmt.Errorf("query roi_assumptions: %w", err)
	}
	return a, nil
}

func (s *server) updateAssumptions(ctx context.Context, a roi.Assumptions) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO roi_assumptions (
			id,
			cost_per_minute,
			monthly_software_fee,
			revenue_growth_percent,
			currency_symbol
		) VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			cost_per_minute = excluded.cost_per_minute,
			monthly_software_fee = excluded.monthly_software_fee,
			revenue_growth_percent = excluded.revenue_growth_percent,
			currency_symbol = excluded.currency_symbol,
			updated_at = CURRENT_TIMESTAMP
	`,
		a.CostPerMinute,
		a.MonthlySoftwareFee,
		a.RevenueGrowthPercent,
		a.CurrencySymbol,
	)
	if err != nil {
		return fmt.Errorf("upsert roi_assumptions: %w", err)
	}
	return nil
}
