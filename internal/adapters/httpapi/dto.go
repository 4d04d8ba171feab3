package httpapi

import (
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/ghumakkad/trip-share-api/internal/app/trips"
	"github.com/ghumakkad/trip-share-api/internal/app/users"
	"github.com/ghumakkad/trip-share-api/internal/domain"
	"github.com/ghumakkad/trip-share-api/internal/ports/out/places"
)

// Request bodies.

type signUpRequest struct {
	Email    openapi_types.Email `json:"email"`
	Password string              `json:"password"`
}

type signInRequest struct {
	Email    openapi_types.Email `json:"email"`
	Password string              `json:"password"`
}

type createTripRequest struct {
	Title           string             `json:"title"`
	From            string             `json:"from"`
	To              string             `json:"to"`
	StartDate       openapi_types.Date `json:"startDate"`
	EndDate         openapi_types.Date `json:"endDate"`
	Seats           int                `json:"seats"`
	PricePerPerson  float64            `json:"pricePerPerson"`
	ModeOfTransport string             `json:"modeOfTransport"`
	ImageURL        string             `json:"imageUrl"`
	PhoneNo         string             `json:"phoneNo"`
}

type joinTripRequest struct {
	SeatsBooked int `json:"seatsBooked"`
}

type createOrderRequest struct {
	TripID string `json:"tripId"`
	Seats  int    `json:"seats"`
}

type chatbotRequest struct {
	Message string `json:"message"`
}

// Response bodies.

type sessionResponse struct {
	Token  string              `json:"token"`
	UserID string              `json:"userId"`
	Email  openapi_types.Email `json:"email"`
}

type userSummaryDTO struct {
	ID    string              `json:"id"`
	Email openapi_types.Email `json:"email"`
}

type bookingDTO struct {
	ID          string         `json:"id"`
	User        userSummaryDTO `json:"user"`
	SeatsBooked int            `json:"seatsBooked"`
	Status      string         `json:"status"`
}

type forecastEntryDTO struct {
	Date        openapi_types.Date `json:"date"`
	TempC       float64            `json:"tempC"`
	Description string             `json:"description"`
	Icon        string             `json:"icon"`
}

type tripDTO struct {
	ID              string             `json:"id"`
	Title           string             `json:"title"`
	From            string             `json:"from"`
	To              string             `json:"to"`
	StartDate       openapi_types.Date `json:"startDate"`
	EndDate         openapi_types.Date `json:"endDate"`
	TotalSeats      int                `json:"totalSeats"`
	AvailableSeats  int                `json:"availableSeats"`
	PricePerPerson  float64            `json:"pricePerPerson"`
	ModeOfTransport string             `json:"modeOfTransport"`
	ImageURL        string             `json:"imageUrl,omitempty"`
	PhoneNo         string             `json:"phoneNo,omitempty"`
	Status          string             `json:"status"`
	Creator         userSummaryDTO     `json:"creator"`
	Bookings        []bookingDTO       `json:"bookings"`
	Forecast        []forecastEntryDTO `json:"forecast,omitempty"`
}

type myBookingDTO struct {
	BookingID       string             `json:"bookingId"`
	TripID          string             `json:"tripId"`
	Title           string             `json:"title"`
	From            string             `json:"from"`
	To              string             `json:"to"`
	StartDate       openapi_types.Date `json:"startDate"`
	EndDate         openapi_types.Date `json:"endDate"`
	ModeOfTransport string             `json:"modeOfTransport"`
	ImageURL        string             `json:"imageUrl,omitempty"`
	PricePerPerson  float64            `json:"pricePerPerson"`
	CreatorEmail    string             `json:"creatorEmail"`
	AvailableSeats  int                `json:"availableSeats"`
	SeatsBooked     int                `json:"seatsBooked"`
	DaysLeft        int                `json:"daysLeft"`
	Status          string             `json:"status"`
	IsUpcoming      bool               `json:"isUpcoming"`
	IsPast          bool               `json:"isPast"`
	IsCancelled     bool               `json:"isCancelled"`
}

type adminBookingDTO struct {
	TripTitle      string             `json:"tripTitle"`
	From           string             `json:"from"`
	To             string             `json:"to"`
	StartDate      openapi_types.Date `json:"startDate"`
	EndDate        openapi_types.Date `json:"endDate"`
	TripStatus     string             `json:"tripStatus"`
	BookedBy       string             `json:"bookedBy"`
	SeatsBooked    int                `json:"seatsBooked"`
	BookingStatus  string             `json:"bookingStatus"`
	CreatorEmail   string             `json:"creatorEmail"`
	PricePerPerson float64            `json:"pricePerPerson"`
}

type userDTO struct {
	ID        string              `json:"id"`
	Email     openapi_types.Email `json:"email"`
	IsAdmin   bool                `json:"isAdmin"`
	CreatedAt string              `json:"createdAt"`
}

type placeDTO struct {
	Name     string  `json:"name"`
	Address  string  `json:"address"`
	Rating   float32 `json:"rating"`
	ImageURL string  `json:"imageUrl,omitempty"`
}

type orderDTO struct {
	OrderID  string `json:"orderId"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	TripID   string `json:"tripId"`
	Seats    int    `json:"seats"`
}

type chatbotResponse struct {
	Reply string `json:"reply"`
}

// Mapping helpers.

func tripFromView(v trips.TripView) tripDTO {
	out := tripDTO{
		ID:              string(v.ID),
		Title:           v.Title,
		From:            v.Origin,
		To:              v.Destination,
		StartDate:       openapi_types.Date{Time: v.StartDate},
		EndDate:         openapi_types.Date{Time: v.EndDate},
		TotalSeats:      v.TotalSeats,
		AvailableSeats:  v.AvailableSeats,
		PricePerPerson:  v.PricePerPerson,
		ModeOfTransport: string(v.TransportMode),
		ImageURL:        v.ImageURL,
		PhoneNo:         v.ContactPhone,
		Status:          string(v.Status),
		Creator:         userSummaryFromDomain(v.Creator),
		Bookings:        make([]bookingDTO, 0, len(v.Bookings)),
	}
	for _, b := range v.Bookings {
		out.Bookings = append(out.Bookings, bookingDTO{
			ID:          string(b.ID),
			User:        userSummaryFromDomain(b.User),
			SeatsBooked: b.SeatsBooked,
			Status:      string(b.Status),
		})
	}
	for _, f := range v.Forecast {
		out.Forecast = append(out.Forecast, forecastEntryDTO{
			Date:        openapi_types.Date{Time: f.Date},
			TempC:       f.TempC,
			Description: f.Description,
			Icon:        f.Icon,
		})
	}
	return out
}

func tripsFromViews(vs []trips.TripView) []tripDTO {
	out := make([]tripDTO, 0, len(vs))
	for _, v := range vs {
		out = append(out, tripFromView(v))
	}
	return out
}

func myBookingFromRow(r trips.MyBookingRow) myBookingDTO {
	return myBookingDTO{
		BookingID:       string(r.BookingID),
		TripID:          string(r.TripID),
		Title:           r.Title,
		From:            r.Origin,
		To:              r.Destination,
		StartDate:       openapi_types.Date{Time: r.StartDate},
		EndDate:         openapi_types.Date{Time: r.EndDate},
		ModeOfTransport: string(r.TransportMode),
		ImageURL:        r.ImageURL,
		PricePerPerson:  r.PricePerPerson,
		CreatorEmail:    r.CreatorEmail,
		AvailableSeats:  r.AvailableSeats,
		SeatsBooked:     r.SeatsBooked,
		DaysLeft:        r.DaysLeft,
		Status:          string(r.Status),
		IsUpcoming:      r.IsUpcoming,
		IsPast:          r.IsPast,
		IsCancelled:     r.IsCancelled,
	}
}

func adminBookingFromRow(r trips.AdminBookingRow) adminBookingDTO {
	return adminBookingDTO{
		TripTitle:      r.TripTitle,
		From:           r.Origin,
		To:             r.Destination,
		StartDate:      openapi_types.Date{Time: r.StartDate},
		EndDate:        openapi_types.Date{Time: r.EndDate},
		TripStatus:     string(r.TripStatus),
		BookedBy:       r.BookedBy,
		SeatsBooked:    r.SeatsBooked,
		BookingStatus:  string(r.BookingStatus),
		CreatorEmail:   r.CreatorEmail,
		PricePerPerson: r.PricePerPerson,
	}
}

func userFromRow(r users.UserRow) userDTO {
	return userDTO{
		ID:        string(r.ID),
		Email:     openapi_types.Email(r.Email),
		IsAdmin:   r.IsAdmin,
		CreatedAt: r.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func userSummaryFromDomain(u domain.UserSummary) userSummaryDTO {
	return userSummaryDTO{ID: string(u.ID), Email: openapi_types.Email(u.Email)}
}

func placesFromResults(ps []places.Place) []placeDTO {
	out := make([]placeDTO, 0, len(ps))
	for _, p := range ps {
		out = append(out, placeDTO{Name: p.Name, Address: p.Address, Rating: p.Rating, ImageURL: p.ImageURL})
	}
	return out
}
