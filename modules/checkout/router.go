package checkout

import (
	"github.com/go-chi/chi/v5"
)

// Router mounts the checkout session API.
//
//	POST   /sessions                       start a checkout
//	GET    /sessions/{sessionID}           current state
//	POST   /sessions/{sessionID}/gateway   select a payment gateway
//	POST   /sessions/{sessionID}/discount  apply a discount code
//	DELETE /sessions/{sessionID}/discount  remove the applied code
//	POST   /sessions/{sessionID}/terms     accept or revoke terms
//	POST   /sessions/{sessionID}/submit    create the payment session
func Router(svc *Service) chi.Router {
	h := &handlers{svc: svc}

	r := chi.NewRouter()
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.createSession)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", h.getState)
			r.Post("/gateway", h.selectGateway)
			r.Post("/discount", h.applyDiscount)
			r.Delete("/discount", h.removeDiscount)
			r.Post("/terms", h.setTerms)
			r.Post("/submit", h.submit)
		})
	})
	return r
}
