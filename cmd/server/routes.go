package main

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Simplici0/voiceai-site/internal/ratelimit"
	"github.com/Simplici0/voiceai-site/web"
)

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	static, err := fs.Sub(web.FS, "static")
	if err != nil {
		panic(err)
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	r.Get("/", s.handleHome)
	r.Get("/voice-ai", s.handleVoiceAI)
	r.Get("/theme", s.handleTheme)
	r.Get("/healthz", s.handleHealth)

	r.Get("/roi", s.handleROIPage)
	r.Get("/roi/report.pdf", s.handleROIReport)
	r.Post("/roi/estimates", s.handleEstimateCreate)
	r.Get("/roi/estimates/{id}", s.handleEstimateShow)
	r.Get("/roi/estimates/{id}/report.pdf", s.handleEstimateReport)

	r.Group(func(r chi.Router) {
		r.Use(ratelimit.Middleware(s.apiLimiter))
		r.Get("/api/roi", s.handleROIAPI)
		r.Post("/api/roi", s.handleROIAPI)
	})
	r.With(ratelimit.Middleware(s.limiter)).Post("/contact", s.handleContactSubmit)

	r.Get("/login", s.handleLoginForm)
	r.Post("/login", s.handleLoginSubmit)
	r.Post("/logout", s.handleLogout)

	r.Route("/admin", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/admin/leads", http.StatusSeeOther)
		})
		r.Get("/assumptions", s.handleAdminAssumptionsForm)
		r.Post("/assumptions", s.handleAdminAssumptionsSubmit)
		r.Get("/leads", s.handleAdminLeads)
		r.Get("/leads.csv", s.handleAdminLeadsCSV)
		r.Get("/estimates", s.handleAdminEstimates)
	})

	return r
}
