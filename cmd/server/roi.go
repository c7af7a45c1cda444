package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/Simplici0/voiceai-site/internal/report"
	"github.com/Simplici0/voiceai-site/internal/roi"
)

const (
	maxAPIBodyBytes    = 16 << 10
	errResultNotFinite = "inputs are too large to calculate"
)

type roiAPIResponse struct {
	Input       roi.Input       `json:"input"`
	Assumptions roi.Assumptions `json:"assumptions"`
	Result      roi.Result      `json:"result"`
	Summary     roi.Summary     `json:"summary"`
}

func (s *server) calculatorView(r *http.Request, in roi.Input) (calculatorViewData, error) {
	assumptions, err := s.getAssumptions(r.Context())
	if err != nil {
		log.Printf("[roi.view] %v", err)
		return calculatorViewData{}, err
	}

	// The public form never exposes call duration; it always resolves to the default.
	in.CallDurationMinutes = ""

	result := roi.Estimate(in, assumptions)
	return calculatorViewData{
		baseViewData: baseView(r),
		Input:        in,
		Assumptions:  assumptions,
		Result:       result,
		Summary:      roi.Summarize(result, assumptions),
	}, nil
}

func (s *server) handleROIPage(w http.ResponseWriter, r *http.Request) {
	view, err := s.calculatorView(r, roi.InputFromValues(r.URL.Query()))
	if err != nil {
		http.Error(w, "failed to load roi assumptions", http.StatusInternalServerError)
		return
	}
	s.renderTemplate(w, http.StatusOK, "roi.html", view)
}

// handleROIAPI accepts the raw field values as a query string, a form body
// or a JSON object of strings or numbers, and recomputes the full result.
func (s *server) handleROIAPI(w http.ResponseWriter, r *http.Request) {
	in, err := decodeROIInput(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	assumptions, err := s.getAssumptions(r.Context())
	if err != nil {
		log.Printf("[roi.api] %v", err)
		http.Error(w, "failed to load roi assumptions", http.StatusInternalServerError)
		return
	}

	calc := roi.NewCalculator(assumptions)
	for _, field := range roi.Fields {
		if err := calc.Set(field, in.Get(field)); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	result := calc.Result()
	if !result.Finite() {
		http.Error(w, errResultNotFinite, http.StatusUnprocessableEntity)
		return
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(roiAPIResponse{
		Input:       calc.Input(),
		Assumptions: assumptions,
		Result:      result,
		Summary:     roi.Summarize(result, assumptions),
	}); err != nil {
		log.Printf("[roi.api] encode response: %v", err)
		http.Error(w, "failed to encode roi result", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("[roi.api] write response: %v", err)
	}
}

func decodeROIInput(r *http.Request) (roi.Input, error) {
	if r.Method == http.MethodGet {
		return roi.InputFromValues(r.URL.Query()), nil
	}

	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := r.ParseForm(); err != nil {
			return roi.Input{}, fmt.Errorf("invalid form")
		}
		return roi.InputFromValues(r.Form), nil
	}

	var raw map[string]json.RawMessage
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxAPIBodyBytes))
	if err := decoder.Decode(&raw); err != nil {
		return roi.Input{}, fmt.Errorf("invalid request body")
	}

	calc := roi.NewCalculator(roi.Assumptions{})
	for key, value := range raw {
		text, ok := rawFieldText(value)
		if !ok {
			return roi.Input{}, fmt.Errorf("%s must be a string or a number", key)
		}
		// Unknown keys are ignored so clients can send their whole form.
		_ = calc.Set(key, text)
	}
	return calc.Input(), nil
}

// rawFieldText turns a JSON string, number or null into the raw text the
// calculator expects. Null unmarshals into an empty string.
func rawFieldText(value json.RawMessage) (string, bool) {
	var text string
	if err := json.Unmarshal(value, &text); err == nil {
		return text, true
	}

	var number json.Number
	if err := json.Unmarshal(value, &number); err == nil {
		return number.String(), true
	}
	return "", false
}

func (s *server) handleROIReport(w http.ResponseWriter, r *http.Request) {
	view, err := s.calculatorView(r, roi.InputFromValues(r.URL.Query()))
	if err != nil {
		http.Error(w, "failed to load roi assumptions", http.StatusInternalServerError)
		return
	}

	writeReport(w, report.Estimate{
		Result:      view.Result,
		Assumptions: view.Assumptions,
		GeneratedAt: s.now(),
	})
}

func writeReport(w http.ResponseWriter, e report.Estimate) {
	buf, err := report.Render(e)
	if err != nil {
		log.Printf("[roi.report] %v", err)
		http.Error(w, "failed to render report", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="roi-report.pdf"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = buf.WriteTo(w)
}
