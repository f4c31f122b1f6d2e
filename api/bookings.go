package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Domenick1991/skybooker/internal/apperror"
	"github.com/Domenick1991/skybooker/internal/domain"
	"github.com/Domenick1991/skybooker/internal/service/booking"
)

const missingBookingFields = "Missing required fields: flightId, passengers, contactInfo, travelClass, departureDate"

type BookingHandler struct {
	service booking.BookingUseCase
	auth    gin.HandlerFunc
}

type passportRequest struct {
	Number     string `json:"number"`
	ExpiryDate string `json:"expiryDate" binding:"omitempty,datetime=2006-01-02,future_date"`
	Country    string `json:"country"`
}

type passengerRequest struct {
	Type            string          `json:"type" binding:"required,oneof=ADULT CHILD INFANT"`
	Title           string          `json:"title"`
	FirstName       string          `json:"firstName" binding:"required"`
	LastName        string          `json:"lastName" binding:"required"`
	DateOfBirth     string          `json:"dateOfBirth" binding:"required,datetime=2006-01-02,past_date"`
	Passport        passportRequest `json:"passport"`
	SpecialRequests []string        `json:"specialRequests"`
}

type contactRequest struct {
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone"`
}

type createBookingRequest struct {
	FlightID              string             `json:"flightId" binding:"required"`
	Passengers            []passengerRequest `json:"passengers" binding:"required,dive"`
	ContactInfo           *contactRequest    `json:"contactInfo" binding:"required"`
	TravelClass           string             `json:"travelClass" binding:"required,oneof=ECONOMY BUSINESS FIRST economy business first"`
	DepartureDate         string             `json:"departureDate" binding:"required,datetime=2006-01-02"`
	ReturnFlightID        string             `json:"returnFlightId"`
	ReturnDate            string             `json:"returnDate" binding:"omitempty,datetime=2006-01-02"`
	PaymentMethod         string             `json:"paymentMethod" binding:"omitempty,oneof=WALLET CREDIT_CARD"`
	BusinessJustification string             `json:"businessJustification"`
}

type createOrderRequest struct {
	FlightOffer           json.RawMessage    `json:"flightOffer" binding:"required"`
	Passengers            []passengerRequest `json:"passengers" binding:"required,dive"`
	ContactInfo           *contactRequest    `json:"contactInfo" binding:"required"`
	PaymentMethod         string             `json:"paymentMethod" binding:"omitempty,oneof=WALLET CREDIT_CARD"`
	BusinessJustification string             `json:"businessJustification"`
}

type paymentRequest struct {
	TransactionID string `json:"transactionId" binding:"required"`
}

type bookingCreatedResponse struct {
	BookingID        string       `json:"bookingId"`
	Status           string       `json:"status"`
	ConfirmationCode string       `json:"confirmationCode"`
	TotalPrice       domain.Money `json:"totalPrice"`
	Currency         string       `json:"currency"`
	ExpiresAt        time.Time    `json:"expiresAt"`
}

type scheduleSummary struct {
	DepartureTime time.Time `json:"departureTime"`
	ArrivalTime   time.Time `json:"arrivalTime"`
}

type seatSummary struct {
	Class  domain.CabinClass `json:"class"`
	Number string            `json:"number,omitempty"`
}

type legSummary struct {
	FlightNumber string          `json:"flightNumber"`
	Route        string          `json:"route"`
	Schedule     scheduleSummary `json:"schedule"`
	Seat         seatSummary     `json:"seat"`
}

type flightsSummary struct {
	Outbound legSummary  `json:"outbound"`
	Return   *legSummary `json:"return,omitempty"`
}

type bookingSummary struct {
	BookingID          string                   `json:"bookingId"`
	Status             domain.BookingStatus     `json:"status"`
	FlightDetails      flightsSummary           `json:"flightDetails"`
	Passengers         []domain.PassengerDetail `json:"passengers"`
	ContactInfo        domain.ContactInfo       `json:"contactInfo"`
	Pricing            domain.PriceQuote        `json:"pricing"`
	Payment            domain.Payment           `json:"payment"`
	ConfirmationCode   string                   `json:"confirmationCode"`
	ExternalBookingRef string                   `json:"externalBookingRef,omitempty"`
	ExpiresAt          time.Time                `json:"expiresAt"`
	CreatedAt          time.Time                `json:"createdAt"`
}

func NewBookingHandler(service booking.BookingUseCase, auth gin.HandlerFunc) *BookingHandler {
	registerValidators()
	return &BookingHandler{service: service, auth: auth}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/book", h.auth, h.create)
	router.POST("/create-order", h.auth, h.createOrder)
	router.GET("/bookings/:id", h.auth, h.get)
	router.POST("/bookings/:id/cancel", h.auth, h.cancel)
	router.POST("/bookings/:id/payment", h.auth, h.pay)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, missingBookingFields)
		return
	}
	input, err := req.input(principalFrom(c))
	if err != nil {
		respondError(c, err, codeBookingError, "Unable to create booking")
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), input)
	if err != nil {
		respondError(c, err, codeBookingError, "Unable to create booking")
		return
	}
	respond(c, http.StatusCreated, newBookingCreatedResponse(b))
}

func (h *BookingHandler) createOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "Missing required fields: flightOffer, passengers, contactInfo")
		return
	}
	passengers, err := toPassengers(req.Passengers)
	if err != nil {
		respondError(c, err, codeBookingError, "Unable to create booking")
		return
	}

	p := principalFrom(c)
	b, err := h.service.CreateProviderOrder(c.Request.Context(), booking.ProviderOrderInput{
		UserID:                p.UserID,
		CompanyID:             p.CompanyID,
		Offer:                 req.FlightOffer,
		Passengers:            passengers,
		ContactInfo:           domain.ContactInfo{Email: req.ContactInfo.Email, Phone: req.ContactInfo.Phone},
		PaymentMethod:         domain.PaymentMethod(req.PaymentMethod),
		BusinessJustification: req.BusinessJustification,
	})
	if err != nil {
		respondError(c, err, codeBookingError, "Unable to create booking")
		return
	}
	respond(c, http.StatusCreated, newBookingCreatedResponse(b))
}

func (h *BookingHandler) get(c *gin.Context) {
	b, err := h.service.GetBooking(c.Request.Context(), principalFrom(c).UserID, c.Param("id"))
	if err != nil {
		respondError(c, err, codeBookingError, "Unable to retrieve booking")
		return
	}
	respond(c, http.StatusOK, newBookingSummary(b))
}

func (h *BookingHandler) cancel(c *gin.Context) {
	b, err := h.service.CancelBooking(c.Request.Context(), principalFrom(c).UserID, c.Param("id"))
	if err != nil {
		respondError(c, err, codeBookingError, "Unable to cancel booking")
		return
	}
	respond(c, http.StatusOK, newBookingSummary(b))
}

func (h *BookingHandler) pay(c *gin.Context) {
	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "Missing required fields: transactionId")
		return
	}
	b, err := h.service.ConfirmPayment(c.Request.Context(), principalFrom(c).UserID, c.Param("id"), req.TransactionID)
	if err != nil {
		respondError(c, err, codeBookingError, "Unable to confirm payment")
		return
	}
	respond(c, http.StatusOK, newBookingSummary(b))
}

func (r createBookingRequest) input(p Principal) (booking.CreateBookingInput, error) {
	cabin, err := domain.ParseCabinClass(r.TravelClass)
	if err != nil {
		return booking.CreateBookingInput{}, apperror.Validation(err.Error())
	}
	departure, err := parseDate(r.DepartureDate)
	if err != nil {
		return booking.CreateBookingInput{}, apperror.Validation("departureDate must be a date in YYYY-MM-DD format")
	}
	passengers, err := toPassengers(r.Passengers)
	if err != nil {
		return booking.CreateBookingInput{}, err
	}

	selection := domain.FlightSelection{
		Outbound: &domain.FlightSegmentSelection{FlightID: r.FlightID, CabinClass: cabin, Date: departure},
	}
	// A return leg needs both the flight and its date.
	if r.ReturnFlightID != "" && r.ReturnDate != "" {
		ret, err := parseDate(r.ReturnDate)
		if err != nil {
			return booking.CreateBookingInput{}, apperror.Validation("returnDate must be a date in YYYY-MM-DD format")
		}
		selection.Return = &domain.FlightSegmentSelection{FlightID: r.ReturnFlightID, CabinClass: cabin, Date: ret}
	}

	return booking.CreateBookingInput{
		UserID:                p.UserID,
		CompanyID:             p.CompanyID,
		Selection:             selection,
		Passengers:            passengers,
		ContactInfo:           domain.ContactInfo{Email: r.ContactInfo.Email, Phone: r.ContactInfo.Phone},
		PaymentMethod:         domain.PaymentMethod(r.PaymentMethod),
		BusinessJustification: r.BusinessJustification,
	}, nil
}

func toPassengers(reqs []passengerRequest) ([]domain.PassengerDetail, error) {
	out := make([]domain.PassengerDetail, 0, len(reqs))
	for _, r := range reqs {
		dob, err := parseDate(r.DateOfBirth)
		if err != nil {
			return nil, apperror.Validation("dateOfBirth must be a date in YYYY-MM-DD format")
		}
		var expiry time.Time
		if r.Passport.ExpiryDate != "" {
			if expiry, err = parseDate(r.Passport.ExpiryDate); err != nil {
				return nil, apperror.Validation("passport expiryDate must be a date in YYYY-MM-DD format")
			}
		}
		out = append(out, domain.PassengerDetail{
			Type:        domain.PassengerType(r.Type),
			Title:       r.Title,
			FirstName:   r.FirstName,
			LastName:    r.LastName,
			DateOfBirth: dob,
			Passport: domain.Passport{
				Number:     r.Passport.Number,
				ExpiryDate: expiry,
				Country:    r.Passport.Country,
			},
			SpecialRequests: r.SpecialRequests,
		})
	}
	return out, nil
}

func newBookingCreatedResponse(b *domain.Booking) bookingCreatedResponse {
	return bookingCreatedResponse{
		BookingID:        b.BookingID,
		Status:           string(b.Status),
		ConfirmationCode: b.ConfirmationCode,
		TotalPrice:       b.Pricing.TotalPrice,
		Currency:         b.Pricing.Currency,
		ExpiresAt:        b.ExpiresAt,
	}
}

func newLegSummary(s domain.FlightSnapshot) legSummary {
	return legSummary{
		FlightNumber: s.FlightNumber,
		Route:        s.Route.String(),
		Schedule:     scheduleSummary{DepartureTime: s.Schedule.DepartureTime, ArrivalTime: s.Schedule.ArrivalTime},
		Seat:         seatSummary{Class: s.SeatClass, Number: s.SeatNumber},
	}
}

func newBookingSummary(b *domain.Booking) bookingSummary {
	flights := flightsSummary{Outbound: newLegSummary(b.FlightDetails.Outbound)}
	if b.FlightDetails.Return != nil {
		ret := newLegSummary(*b.FlightDetails.Return)
		flights.Return = &ret
	}
	return bookingSummary{
		BookingID:          b.BookingID,
		Status:             b.Status,
		FlightDetails:      flights,
		Passengers:         b.Passengers,
		ContactInfo:        b.ContactInfo,
		Pricing:            b.Pricing,
		Payment:            b.Payment,
		ConfirmationCode:   b.ConfirmationCode,
		ExternalBookingRef: b.ExternalBookingRef,
		ExpiresAt:          b.ExpiresAt,
		CreatedAt:          b.CreatedAt,
	}
}
