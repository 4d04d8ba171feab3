package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/ghumakkad/trip-share-api/internal/app/payments"
	"github.com/ghumakkad/trip-share-api/internal/app/trips"
	"github.com/ghumakkad/trip-share-api/internal/app/users"
	"github.com/ghumakkad/trip-share-api/internal/domain"
	"github.com/ghumakkad/trip-share-api/internal/ports/out/assistant"
)

// Server holds the application services the HTTP handlers delegate to.
// Payments and Assistant are optional; their endpoints answer 502 when the
// backing provider is not configured.
type Server struct {
	Users    *users.Service
	Trips    *trips.Service
	Payments *payments.Service
	Chat     assistant.Provider

	// ChatTimeout bounds assistant calls.
	ChatTimeout time.Duration
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if !decode(w, r, &req) {
		return
	}
	sess, err := s.Users.SignUp(r.Context(), users.SignUpInput{Email: string(req.Email), Password: req.Password})
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionFromApp(sess))
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if !decode(w, r, &req) {
		return
	}
	sess, err := s.Users.SignIn(r.Context(), users.SignInInput{Email: string(req.Email), Password: req.Password})
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionFromApp(sess))
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	row, err := s.Users.Profile(r.Context(), actor.UserID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userFromRow(row))
}

func (s *Server) handleCreateTrip(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	var req createTripRequest
	if !decode(w, r, &req) {
		return
	}
	v, err := s.Trips.CreateTrip(r.Context(), actor.UserID, trips.CreateTripInput{
		Title:          req.Title,
		Origin:         req.From,
		Destination:    req.To,
		StartDate:      req.StartDate.Time,
		EndDate:        req.EndDate.Time,
		TotalSeats:     req.Seats,
		PricePerPerson: req.PricePerPerson,
		TransportMode:  domain.TransportMode(req.ModeOfTransport),
		ImageURL:       req.ImageURL,
		ContactPhone:   req.PhoneNo,
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tripFromView(v))
}

func (s *Server) handleListOpenTrips(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	vs, err := s.Trips.ListOpenTrips(r.Context(), actor.UserID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tripsFromViews(vs))
}

func (s *Server) handleListMyTrips(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	vs, err := s.Trips.ListMyTrips(r.Context(), actor.UserID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tripsFromViews(vs))
}

func (s *Server) handleListMyBookings(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	rows, err := s.Trips.ListMyBookings(r.Context(), actor.UserID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	out := make([]myBookingDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, myBookingFromRow(row))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleJoinTrip(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	var req joinTripRequest
	if !decode(w, r, &req) {
		return
	}
	v, err := s.Trips.JoinTrip(r.Context(), actor.UserID, tripID(r), req.SeatsBooked)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tripFromView(v))
}

func (s *Server) handleCancelTrip(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	v, err := s.Trips.CancelTrip(r.Context(), actor.UserID, tripID(r))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tripFromView(v))
}

func (s *Server) handleCancelBooking(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	v, err := s.Trips.CancelBooking(r.Context(), actor.UserID, tripID(r))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tripFromView(v))
}

func (s *Server) handleAcceptBooking(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	v, err := s.Trips.AcceptBooking(r.Context(), actor.UserID, tripID(r), bookingID(r))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tripFromView(v))
}

func (s *Server) handleRejectBooking(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	v, err := s.Trips.RejectBooking(r.Context(), actor.UserID, tripID(r), bookingID(r))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tripFromView(v))
}

func (s *Server) handleSearchPlaces(w http.ResponseWriter, r *http.Request) {
	results, err := s.Trips.SearchPlaces(r.Context(), r.URL.Query().Get("city"))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, placesFromResults(results))
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	if s.Payments == nil {
		writeError(w, r, http.StatusBadGateway, "EXTERNAL_SERVICE_FAILURE", "payments are not configured", nil)
		return
	}
	actor, _ := ActorFromContext(r.Context())
	var req createOrderRequest
	if !decode(w, r, &req) {
		return
	}
	order, err := s.Payments.CreateOrder(r.Context(), actor.UserID, domain.TripID(req.TripID), req.Seats)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, orderDTO{
		OrderID:  order.OrderID,
		Amount:   order.AmountMinorUnits,
		Currency: order.Currency,
		TripID:   string(order.TripID),
		Seats:    order.Seats,
	})
}

func (s *Server) handleChatbot(w http.ResponseWriter, r *http.Request) {
	if s.Chat == nil {
		writeError(w, r, http.StatusBadGateway, "EXTERNAL_SERVICE_FAILURE", "assistant is not configured", nil)
		return
	}
	var req chatbotRequest
	if !decode(w, r, &req) {
		return
	}
	timeout := s.ChatTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()
	reply, err := s.Chat.Reply(ctx, req.Message)
	if err != nil {
		writeError(w, r, http.StatusBadGateway, "EXTERNAL_SERVICE_FAILURE", "assistant request failed", nil)
		return
	}
	writeJSON(w, http.StatusOK, chatbotResponse{Reply: reply})
}

func (s *Server) handleAdminListUsers(w http.ResponseWriter, r *http.Request) {
	rows, err := s.Users.ListUsers(r.Context())
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	out := make([]userDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, userFromRow(row))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAdminListTrips(w http.ResponseWriter, r *http.Request) {
	vs, err := s.Trips.ListAllTrips(r.Context())
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tripsFromViews(vs))
}

func (s *Server) handleAdminListBookings(w http.ResponseWriter, r *http.Request) {
	filter := domain.BookingStatus(r.URL.Query().Get("status"))
	switch filter {
	case "", domain.BookingStatusPending, domain.BookingStatusAccepted, domain.BookingStatusRejected:
	default:
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid status",
			map[string]any{"status": "must be pending, accepted, or rejected"})
		return
	}
	rows, err := s.Trips.ListAllBookings(r.Context(), filter)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	out := make([]adminBookingDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, adminBookingFromRow(row))
	}
	writeJSON(w, http.StatusOK, out)
}

func sessionFromApp(sess users.Session) sessionResponse {
	return sessionResponse{Token: sess.Token, UserID: string(sess.UserID), Email: openapi_types.Email(sess.Email)}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "MALFORMED_BODY", "request body is not valid JSON", nil)
		return false
	}
	return true
}

func tripID(r *http.Request) domain.TripID {
	return domain.TripID(chi.URLParam(r, "tripID"))
}

func bookingID(r *http.Request) domain.BookingID {
	return domain.BookingID(chi.URLParam(r, "bookingID"))
}
