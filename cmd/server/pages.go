package main

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/Simplici0/voiceai-site/internal/roi"
)

type plan struct {
	Name     string
	Price    string
	Features []string
}

type faqEntry struct {
	Question string
	Answer   string
}

type serviceOption struct {
	Value string
	Label string
}

var plans = []plan{
	{
		Name:     "Starter",
		Price:    "$150/mo + $0.35/min",
		Features: []string{"One voice agent", "Business-hours and after-hours answering", "Calendar booking"},
	},
	{
		Name:     "Growth",
		Price:    "$400/mo + $0.30/min",
		Features: []string{"Up to three agents", "CRM integration", "Weekly call reviews"},
	},
	{
		Name:     "Custom",
		Price:    "Let's talk",
		Features: []string{"Custom AI workflows", "Dedicated engineer", "On-premise telephony"},
	},
}

var faq = []faqEntry{
	{"How long does setup take?", "Most agents are live within two weeks of the discovery call."},
	{"Will callers know they are talking to an AI?", "The agent introduces itself and can hand the call to a person at any time."},
	{"What happens to calls the agent cannot handle?", "They are forwarded to your team or turned into a callback task with a transcript."},
	{"How is usage billed?", "You pay a flat monthly software fee plus the minutes the agent spends on calls."},
}

var serviceOptions = []serviceOption{
	{Value: "consulting", Label: "Consulting"},
	{Value: "voice-agents", Label: "Voice Agents"},
	{Value: "custom-ai", Label: "Developing custom AI solution"},
}

type homeViewData struct {
	baseViewData
	Plans []plan
	FAQ   []faqEntry
}

type calculatorViewData struct {
	baseViewData
	Input       roi.Input
	Assumptions roi.Assumptions
	Result      roi.Result
	Summary     roi.Summary
}

type voiceAIViewData struct {
	calculatorViewData
	Plans       []plan
	FAQ         []faqEntry
	Services    []serviceOption
	ContactSent bool
}

func (s *server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.renderTemplate(w, http.StatusOK, "home.html", homeViewData{
		baseViewData: baseView(r),
		Plans:        plans,
		FAQ:          faq,
	})
}

func (s *server) handleVoiceAI(w http.ResponseWriter, r *http.Request) {
	calc, err := s.calculatorView(r, roi.InputFromValues(r.URL.Query()))
	if err != nil {
		http.Error(w, "failed to load roi assumptions", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, http.StatusOK, "voice_ai.html", voiceAIViewData{
		calculatorViewData: calc,
		Plans:              plans,
		FAQ:                faq,
		Services:           serviceOptions,
		ContactSent:        r.URL.Query().Get("contact") == "sent",
	})
}

func (s *server) handleTheme(w http.ResponseWriter, r *http.Request) {
	mode := themeLight
	if r.URL.Query().Get("mode") == themeDark {
		mode = themeDark
	}

	http.SetCookie(w, &http.Cookie{
		Name:     themeCookieName,
		Value:    mode,
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		SameSite: http.SameSiteLaxMode,
	})

	target := localReferer(r)
	if target == "" {
		target = "/"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// localReferer returns the path of the referring page when it is on this host.
func localReferer(r *http.Request) string {
	ref, err := url.Parse(r.Referer())
	if err != nil || ref.Path == "" || !strings.HasPrefix(ref.Path, "/") {
		return ""
	}
	if ref.Host != "" && ref.Host != r.Host {
		return ""
	}
	return ref.RequestURI()
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}
