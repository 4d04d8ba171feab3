package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/ghumakkad/trip-share-api/internal/platform/auth"
	"github.com/ghumakkad/trip-share-api/internal/ports/out/userrepo"
)

// NewRouter wires routes and middleware around the Server.
//
// This is intentionally a thin adapter: handlers decode, delegate to the
// application services, and encode. All business rules live below.
func NewRouter(s *Server, tokens *auth.TokenManager, users userrepo.Repository, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if log != nil {
		r.Use(RequestLogger(log))
	}

	// Health endpoint for infra checks.
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/signup", s.handleSignUp)
		r.Post("/auth/signin", s.handleSignIn)

		r.Group(func(r chi.Router) {
			r.Use(RequireAuth(tokens))

			r.Get("/users/me", s.handleMe)
			r.Get("/places/search", s.handleSearchPlaces)
			r.Post("/chatbot", s.handleChatbot)
			r.Post("/payments/order", s.handleCreateOrder)

			r.Route("/trips", func(r chi.Router) {
				r.Post("/", s.handleCreateTrip)
				r.Get("/", s.handleListOpenTrips)
				r.Get("/my-trips", s.handleListMyTrips)
				r.Get("/my-bookings", s.handleListMyBookings)

				r.Route("/{tripID}", func(r chi.Router) {
					r.Post("/join", s.handleJoinTrip)
					r.Post("/cancel", s.handleCancelTrip)
					r.Post("/cancel-booking", s.handleCancelBooking)
					r.Post("/bookings/{bookingID}/accept", s.handleAcceptBooking)
					r.Post("/bookings/{bookingID}/reject", s.handleRejectBooking)
				})
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(RequireAdmin(users))
				r.Get("/users", s.handleAdminListUsers)
				r.Get("/trips", s.handleAdminListTrips)
				r.Get("/bookings", s.handleAdminListBookings)
			})
		})
	})

	return r
}
