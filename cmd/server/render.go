package main

import (
	"bytes"
	"html/template"
	"log"
	"net/http"

	"github.com/Simplici0/voiceai-site/internal/roi"
	"github.com/Simplici0/voiceai-site/web"
)

const (
	themeCookieName = "theme"
	themeLight      = "light"
	themeDark       = "dark"
)

var templateFuncs = template.FuncMap{
	"number":   roi.FormatNumber,
	"currency": roi.FormatCurrency,
}

type baseViewData struct {
	Theme          string
	ErrorMessage   string
	SuccessMessage string
}

func baseView(r *http.Request) baseViewData {
	return baseViewData{Theme: themeFromRequest(r)}
}

func themeFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(themeCookieName)
	if err != nil || cookie.Value != themeDark {
		return themeLight
	}
	return themeDark
}

func (s *server) renderTemplate(w http.ResponseWriter, status int, page string, data any) {
	templates, err := template.New("layout.html").Funcs(templateFuncs).ParseFS(web.FS,
		"templates/layout.html",
		"templates/partials.html",
		"templates/admin_nav.html",
		"templates/"+page,
	)
	if err != nil {
		log.Printf("[render] parse %s: %v", page, err)
		http.Error(w, "failed to parse template", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		log.Printf("[render] execute %s: %v", page, err)
		http.Error(w, "failed to render template", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
