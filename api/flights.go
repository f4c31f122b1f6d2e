package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Domenick1991/skybooker/internal/apperror"
	"github.com/Domenick1991/skybooker/internal/domain"
	"github.com/Domenick1991/skybooker/internal/service/flights"
)

type FlightHandler struct {
	service flights.FlightUseCase
	auth    gin.HandlerFunc
}

type searchRequest struct {
	Origin        string `json:"origin" binding:"required,iata"`
	Destination   string `json:"destination" binding:"required,iata,nefield=Origin"`
	DepartureDate string `json:"departureDate" binding:"required,datetime=2006-01-02,future_date"`
	ReturnDate    string `json:"returnDate" binding:"omitempty,datetime=2006-01-02,future_date"`
	Adults        *int   `json:"adults" binding:"omitempty,min=1,max=9"`
	Children      int    `json:"children" binding:"min=0,max=9"`
	Infants       int    `json:"infants" binding:"min=0,max=5"`
	Class         string `json:"class" binding:"omitempty,oneof=ECONOMY BUSINESS FIRST"`
	CurrencyCode  string `json:"currencyCode" binding:"omitempty,len=3"`
}

type priceRequest struct {
	FlightOffer json.RawMessage `json:"flightOffer"`
}

func NewFlightHandler(service flights.FlightUseCase, auth gin.HandlerFunc) *FlightHandler {
	registerValidators()
	return &FlightHandler{service: service, auth: auth}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.POST("/search", h.search)
	router.POST("/flight-price", h.auth, h.price)
}

func (h *FlightHandler) search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "Missing required fields: origin, destination, departureDate")
		return
	}

	criteria, err := req.criteria()
	if err != nil {
		respondError(c, err, codeInvalidRequest, "invalid search request")
		return
	}

	result, err := h.service.Search(c.Request.Context(), flights.SearchInput{
		UserID:   principalFrom(c).UserID,
		Criteria: criteria,
	})
	if err != nil {
		respondError(c, err, codeInternal, "Failed to fetch flight offers please try again after some time or contact support team")
		return
	}
	respond(c, http.StatusOK, result)
}

func (r searchRequest) criteria() (domain.SearchCriteria, error) {
	departure, err := parseDate(r.DepartureDate)
	if err != nil {
		return domain.SearchCriteria{}, apperror.Validation("departureDate must be a date in YYYY-MM-DD format")
	}
	ret, err := parseOptionalDate(r.ReturnDate)
	if err != nil {
		return domain.SearchCriteria{}, apperror.Validation("returnDate must be a date in YYYY-MM-DD format")
	}

	origin, destination := strings.ToUpper(r.Origin), strings.ToUpper(r.Destination)
	if origin == destination {
		return domain.SearchCriteria{}, apperror.Validation("Origin and destination must be different")
	}

	adults := 1
	if r.Adults != nil {
		adults = *r.Adults
	}
	cabin := domain.CabinEconomy
	if r.Class != "" {
		cabin = domain.CabinClass(r.Class)
	}
	currency := "INR"
	if r.CurrencyCode != "" {
		currency = strings.ToUpper(r.CurrencyCode)
	}

	return domain.SearchCriteria{
		Origin:        origin,
		Destination:   destination,
		DepartureDate: departure,
		ReturnDate:    ret,
		Passengers:    domain.PassengerCounts{Adults: adults, Children: r.Children, Infants: r.Infants},
		CabinClass:    cabin,
		CurrencyCode:  currency,
	}, nil
}

// price accepts either {"flightOffer": {...}} or the bare offer.
func (h *FlightHandler) price(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil || len(body) == 0 {
		abortWithError(c, http.StatusBadRequest, codeInvalidRequest, "No data provided")
		return
	}
	var req priceRequest
	if err := json.Unmarshal(body, &req); err != nil {
		abortWithError(c, http.StatusBadRequest, codeInvalidRequest, "malformed request body")
		return
	}
	offer := req.FlightOffer
	if len(offer) == 0 {
		offer = body
	}

	result, err := h.service.ConfirmPrice(c.Request.Context(), offer)
	if err != nil {
		respondError(c, err, codeInternal, "Failed to fetch flight offer prices please try again after some time or contact support team")
		return
	}
	respond(c, http.StatusOK, result.Raw)
}
