package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const (
	sqliteTimeLayout   = "2006-01-02 15:04:05"
	defaultLeadSource  = "contact-form-slider"
	maxLeadFieldLength = 200
)

type lead struct {
	ID             int64
	SubmittedAt    string
	Name           string
	Email          string
	CompanyWebsite string
	Services       string
	PhoneNumber    string
	Source         string
	EstimateID     string
}

type leadsViewData struct {
	baseViewData
	Query string
	Leads []lead
}

// handleContactSubmit stores the inquiry as submitted. Fields are trimmed but
// not validated; an empty form still records a lead.
func (s *server) handleContactSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	l := leadFromForm(r)
	if l.EstimateID != "" {
		exists, err := s.estimateExists(r.Context(), l.EstimateID)
		if err != nil {
			log.Printf("[lead.create] %v", err)
			http.Error(w, "failed to save inquiry", http.StatusInternalServerError)
			return
		}
		if !exists {
			l.EstimateID = ""
		}
	}

	if err := s.insertLead(r.Context(), l); err != nil {
		log.Printf("[lead.create] %v", err)
		http.Error(w, "failed to save inquiry", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/voice-ai?contact=sent#contact", http.StatusSeeOther)
}

func leadFromForm(r *http.Request) lead {
	field := func(name string) string {
		return truncate(strings.TrimSpace(r.PostFormValue(name)), maxLeadFieldLength)
	}

	l := lead{
		Name:           field("name"),
		Email:          field("email"),
		CompanyWebsite: normalizeWebsite(field("companyWebsite")),
		Services:       field("services"),
		PhoneNumber:    field("phoneNumber"),
		Source:         field("source"),
	}
	if l.Source == "" {
		l.Source = defaultLeadSource
	}
	if id := field("estimateId"); id != "" {
		if _, err := uuid.Parse(id); err == nil {
			l.EstimateID = id
		}
	}
	return l
}

func normalizeWebsite(raw string) string {
	if raw == "" {
		return ""
	}
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return raw
	}
	return "https://" + raw
}

func (s *server) handleAdminLeads(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	leads, err := s.listLeads(r.Context(), query)
	if err != nil {
		log.Printf("[lead.list] %v", err)
		http.Error(w, "failed to load leads", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, http.StatusOK, "admin_leads.html", leadsViewData{
		baseViewData: baseView(r),
		Query:        query,
		Leads:        leads,
	})
}

var leadsCSVHeader = []string{"submitted_at", "name", "email", "company_website", "services", "phone_number", "source", "estimate_id"}

func (s *server) handleAdminLeadsCSV(w http.ResponseWriter, r *http.Request) {
	leads, err := s.listLeads(r.Context(), strings.TrimSpace(r.URL.Query().Get("q")))
	if err != nil {
		log.Printf("[lead.export] %v", err)
		http.Error(w, "failed to load leads", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="leads.csv"`)

	writer := csv.NewWriter(w)
	if err := writer.Write(leadsCSVHeader); err != nil {
		log.Printf("[lead.export] write header: %v", err)
		return
	}
	for _, l := range leads {
		record := []string{l.SubmittedAt, l.Name, l.Email, l.CompanyWebsite, l.Services, l.PhoneNumber, l.Source, l.EstimateID}
		if err := writer.Write(record); err != nil {
			log.Printf("[lead.export] write row %d: %v", l.ID, err)
			return
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Printf("[lead.export] flush: %v", err)
	}
}

func (s *server) insertLead(ctx context.Context, l lead) error {
	var estimateID any
	if l.EstimateID != "" {
		estimateID = l.EstimateID
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO leads (submitted_at, name, email, company_website, services, phone_number, source, estimate_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, s.now().UTC().Format(sqliteTimeLayout), l.Name, l.Email, l.CompanyWebsite, l.Services, l.PhoneNumber, l.Source, estimateID)
	if err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}
	return nil
}

func (s *server) estimateExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM estimates WHERE id = ?)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("check estimate %s: %w", id, err)
	}
	return exists, nil
}

func (s *server) listLeads(ctx context.Context, query string) ([]lead, error) {
	search := "%" + query + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, strftime('%Y-%m-%d %H:%M', submitted_at), name, email, company_website, services, phone_number, source, COALESCE(estimate_id, '')
		FROM leads
		WHERE (? = '' OR name LIKE ? OR email LIKE ? OR company_website LIKE ? OR phone_number LIKE ?)
		ORDER BY datetime(submitted_at) DESC, id DESC
	`, query, search, search, search, search)
	if err != nil {
		return nil, fmt.Errorf("query leads: %w", err)
	}
	defer rows.Close()

	leads := make([]lead, 0)
	for rows.Next() {
		var l lead
		if err := rows.Scan(&l.ID, &l.SubmittedAt, &l.Name, &l.Email, &l.CompanyWebsite, &l.Services, &l.PhoneNumber, &l.Source, &l.EstimateID); err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		leads = append(leads, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leads: %w", err)
	}

	return leads, nil
}
