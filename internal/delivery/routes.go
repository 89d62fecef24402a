package delivery

import (
	"net/http"
	"time"

	"github.com/Vovarama1992/go-utils/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

// RegisterRoutes; artifactDir пустой, если аудио лежит в S3
func RegisterRoutes(r chi.Router, h *TranslateHandler, artifactDir string) {
	r.With(httputil.RecoverMiddleware).Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	r.Route("/v1", func(pr chi.Router) {
		pr.Use(httputil.RecoverMiddleware)

		pr.Get("/targets", h.Targets)
		pr.With(httprate.LimitByIP(10, time.Minute)).Post("/translate", h.Translate)
	})

	if artifactDir != "" {
		fs := http.StripPrefix("/artifacts/", http.FileServer(http.Dir(artifactDir)))
		r.With(httputil.RecoverMiddleware).Get("/artifacts/*", fs.ServeHTTP)
	}
}
