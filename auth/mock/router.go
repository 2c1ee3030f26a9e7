package mock

import (
	"github.com/go-chi/chi/v5"
	"net/http"
)

// Handler returns the service routes mounted under /api.
func (s *Service) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/token/", s.login)
		r.Post("/auth/token/refresh/", s.refresh)
		r.Post("/auth/logout/", s.logout)
		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)
			r.Get("/auth/me/", s.me)
			r.Post("/chat/ask/", s.ask)
			r.Get("/chat/history/{threadID}/", s.history)
			r.Get("/chat/threads/", s.listThreads)
			r.HandleFunc("/protected", s.protected)
		})
	})
	return r
}
