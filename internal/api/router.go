package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the HTTP router. metrics may be nil.
func NewRouter(ctrl Controller, bus EventBus, metrics http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(corsMiddleware)
	r.Use(middleware.CleanPath)

	h := &Handlers{ctrl: ctrl, events: bus}

	r.Get("/api", h.getState)
	r.Get("/api/", h.getState)
	r.Get("/api/info", h.getInfo)

	r.Get("/api/controls", h.getControls)
	r.Get("/api/controls/{name}", h.getControl)
	r.Patch("/api/controls/{name}", h.setControl)

	r.Get("/api/formats", h.getFormats)
	r.Get("/api/frame-sizes", h.getFrameSizes)
	r.Get("/api/format", h.getFormat)
	r.Put("/api/format", h.setFormat)
	r.Get("/api/selection/{target}", h.getSelection)

	r.Post("/api/stream/{cmd}", h.streamCmd)
	r.Get("/api/registers/{addr}", h.readRegister)

	r.Get("/api/subscribe", h.sseEvents)

	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}
	return r
}

// corsMiddleware allows browser clients on the local network.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
