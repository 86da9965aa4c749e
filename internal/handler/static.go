package handler

import (
	"embed"
	"net/http"

	"github.com/go-chi/chi/v5"
)

//go:embed static/index.html
var staticFS embed.FS

// RegisterUI serves the wizard single-page app at the root.
func RegisterUI(r chi.Router) {
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		data, err := staticFS.ReadFile("static/index.html")
		if err != nil {
			http.Error(w, "wizard UI unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(data)
	})
}
