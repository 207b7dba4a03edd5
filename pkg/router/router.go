package router

import (
	"fmt"
	"net/http"

	"github.com/citizenwallet/custody/internal/auth"
	"github.com/citizenwallet/custody/internal/transfer"
	"github.com/citizenwallet/custody/internal/version"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const maxBodySize = 1 << 20 // 1MB

type Router struct {
	apiKey   string
	transfer *transfer.Service
}

func NewServer(apiKey string, transfer *transfer.Service) *Router {
	return &Router{
		apiKey,
		transfer,
	}
}

// Handler builds the routes and middleware
func (r *Router) Handler() http.Handler {
	cr := chi.NewRouter()

	a := auth.New(r.apiKey)

	// configure middleware
	cr.Use(middleware.RequestID)
	cr.Use(RequestIDHeaderMiddleware)
	cr.Use(middleware.Logger)
	cr.Use(middleware.Recoverer)

	// configure custom middleware
	cr.Use(OptionsMiddleware)
	cr.Use(HealthMiddleware)
	cr.Use(RequestSizeLimitMiddleware(maxBodySize))
	cr.Use(a.AuthMiddleware)

	// instantiate handlers
	v := version.NewService()
	tr := transfer.NewHandlers(r.transfer)

	// configure routes
	cr.Get("/version", v.Current)

	cr.Post("/transfer-nft", tr.Transfer)

	cr.Route("/tokens/{token_id}", func(cr chi.Router) {
		cr.Get("/custody", tr.Custody)
	})

	cr.Route("/transfers", func(cr chi.Router) {
		cr.Get("/{token_id}", tr.Receipts)
	})

	return cr
}

// Start starts the server on port, it only returns on error
func (r *Router) Start(port int) error {
	return http.ListenAndServe(fmt.Sprintf(":%v", port), r.Handler())
}
