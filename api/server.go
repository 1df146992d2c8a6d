package api

import (
	"net/http"

	"cardex/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server bundles the service layer behind the HTTP surface
type Server struct {
	users      service.UserService
	cards      service.CardService
	inventory  service.InventoryService
	matching   service.MatchingService
	requests   service.TradeRequestService
	sessions   service.TradeSessionService
	collection service.CollectionService
}

// NewServer creates a new API server
func NewServer(
	users service.UserService,
	cards service.CardService,
	inventory service.InventoryService,
	matching service.MatchingService,
	requests service.TradeRequestService,
	sessions service.TradeSessionService,
	collection service.CollectionService,
) *Server {
	return &Server{
		users:      users,
		cards:      cards,
		inventory:  inventory,
		matching:   matching,
		requests:   requests,
		sessions:   sessions,
		collection: collection,
	}
}

// Router builds the chi router with all routes and middleware
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(Identity(s.users))

		r.Get("/users", s.handleListUsers)
		r.Get("/users/{userID}/holdings", s.handleGetHoldings)
		r.Get("/users/{userID}/history", s.handleGetHistory)
		r.Get("/users/{userID}/completion", s.handleGetCompletion)
		r.Get("/users/{userID}/potential", s.handleGetPotential)
		r.Get("/users/{userID}/offers", s.handleGetOffers)
		r.Get("/users/{userID}/pins", s.handleGetPins)

		r.Post("/cards", s.handleCreateCard)
		r.Get("/cards", s.handleListCards)
		r.Get("/cards/{cardID}", s.handleGetCard)

		r.Post("/inventory/adjust", s.handleAdjustInventory)

		r.Post("/trades/requests", s.handleCreateRequest)
		r.Delete("/trades/requests", s.handleWithdrawRequest)
		r.Get("/trades/requests", s.handleListRequests)
		r.Post("/trades/requests/{requestID}/decide", s.handleDecideRequest)

		r.Get("/trades/sessions", s.handleListSessions)
		r.Get("/trades/sessions/{sessionID}", s.handleGetSession)
		r.Post("/trades/sessions/{sessionID}/confirm", s.handleConfirmSession)

		r.Put("/offers/{cardID}", s.handleAddOffer)
		r.Delete("/offers/{cardID}", s.handleRemoveOffer)

		r.Put("/pins/{cardID}", s.handlePinCard)
		r.Delete("/pins/{cardID}", s.handleUnpinCard)
	})

	return r
}
