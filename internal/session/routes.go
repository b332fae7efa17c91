package session

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const requestTimeout = 10 * time.Second

// Mount registers the session routes on r. The event stream is long lived and
// stays outside the request timeout.
func (c *Controller) Mount(r chi.Router) {
	r.Route("/session", func(r chi.Router) {
		r.Delete("/", c.HandleEndSession)

		r.Group(func(r chi.Router) {
			r.Use(c.WithSession)
			r.Get("/events", c.HandleEvents)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Timeout(requestTimeout))
				r.Get("/", c.HandleGetState)
				r.Get("/stashpoints", c.HandleListStashpoints)
				r.Patch("/cart", c.HandleUpdateCart)
				r.Put("/selection", c.HandleSelectStashpoint)
				r.Delete("/selection", c.HandleClearSelection)
				r.Post("/purchase", c.HandlePurchase)
			})
		})
	})
}
