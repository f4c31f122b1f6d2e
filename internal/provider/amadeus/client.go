package amadeus

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Domenick1991/skybooker/internal/apperror"
	"github.com/Domenick1991/skybooker/internal/domain"
)

const (
	searchPath = "/v2/shopping/flight-offers"
	pricePath  = "/v1/shopping/flight-offers/pricing"
	orderPath  = "/v1/booking/flight-orders"
)

// TokenSource is satisfied by *Session.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	Refresh(ctx context.Context) (string, error)
}

type Client struct {
	baseURL       string
	http          *http.Client
	session       TokenSource
	searchTimeout time.Duration
	callTimeout   time.Duration
	maxResults    int
	log           *zap.Logger
}

type ClientOption func(*Client)

func WithTimeouts(search, call time.Duration) ClientOption {
	return func(c *Client) {
		c.searchTimeout = search
		c.callTimeout = call
	}
}

func WithMaxResults(n int) ClientOption {
	return func(c *Client) {
		c.maxResults = n
	}
}

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.http = hc
	}
}

func NewClient(baseURL string, session TokenSource, log *zap.Logger, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		http:          http.DefaultClient,
		session:       session,
		searchTimeout: 30 * time.Second,
		callTimeout:   10 * time.Second,
		maxResults:    10,
		log:           log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type SearchParams struct {
	Origin        string
	Destination   string
	DepartureDate time.Time
	ReturnDate    *time.Time
	Adults        int
	Children      int
	Infants       int
	TravelClass   domain.CabinClass
	CurrencyCode  string
}

type SearchResult struct {
	Offers   []Offer
	Carriers map[string]string
}

// Warning is a non-fatal provider remark, e.g. a price change.
type Warning struct {
	Status int    `json:"status"`
	Code   int    `json:"code"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

type PricingResult struct {
	Offers   []Offer
	Warnings []Warning
	Raw      json.RawMessage
}

type Order struct {
	ID                string             `json:"id"`
	Type              string             `json:"type"`
	AssociatedRecords []AssociatedRecord `json:"associatedRecords"`
	Raw               json.RawMessage    `json:"-"`
}

type AssociatedRecord struct {
	Reference        string `json:"reference"`
	OriginSystemCode string `json:"originSystemCode"`
	FlightOfferID    string `json:"flightOfferId"`
}

// StatusError carries a non-2xx provider response.
type StatusError struct {
	Status int
	Errors []Warning
}

func (e *StatusError) Error() string {
	if len(e.Errors) > 0 {
		return fmt.Sprintf("provider status %d: %s %s", e.Status, e.Errors[0].Title, e.Errors[0].Detail)
	}
	return fmt.Sprintf("provider status %d", e.Status)
}

func (c *Client) SearchOffers(ctx context.Context, p SearchParams) (*SearchResult, error) {
	q := url.Values{}
	q.Set("originLocationCode", p.Origin)
	q.Set("destinationLocationCode", p.Destination)
	q.Set("departureDate", p.DepartureDate.Format(time.DateOnly))
	if p.ReturnDate != nil {
		q.Set("returnDate", p.ReturnDate.Format(time.DateOnly))
	}
	q.Set("adults", strconv.Itoa(p.Adults))
	if p.Children > 0 {
		q.Set("children", strconv.Itoa(p.Children))
	}
	if p.Infants > 0 {
		q.Set("infants", strconv.Itoa(p.Infants))
	}
	if p.TravelClass != "" {
		q.Set("travelClass", string(p.TravelClass))
	}
	if p.CurrencyCode != "" {
		q.Set("currencyCode", p.CurrencyCode)
	}
	q.Set("max", strconv.Itoa(c.maxResults))

	var resp struct {
		Data         []json.RawMessage `json:"data"`
		Dictionaries struct {
			Carriers map[string]string `json:"carriers"`
		} `json:"dictionaries"`
	}
	if err := c.do(ctx, c.searchTimeout, http.MethodGet, searchPath, q, nil, &resp); err != nil {
		return nil, err
	}

	offers, err := parseOffers(resp.Data)
	if err != nil {
		return nil, err
	}
	c.log.Debug("provider search completed",
		zap.String("origin", p.Origin),
		zap.String("destination", p.Destination),
		zap.Int("offers", len(offers)))
	return &SearchResult{Offers: offers, Carriers: resp.Dictionaries.Carriers}, nil
}

// PriceOffer confirms the current price of a previously searched offer.
func (c *Client) PriceOffer(ctx context.Context, offer json.RawMessage) (*PricingResult, error) {
	body := map[string]any{
		"data": map[string]any{
			"type":         "flight-offers-pricing",
			"flightOffers": []json.RawMessage{offer},
		},
	}
	var raw json.RawMessage
	if err := c.do(ctx, c.callTimeout, http.MethodPost, pricePath, nil, body, &raw); err != nil {
		return nil, err
	}

	var resp struct {
		Data struct {
			FlightOffers []json.RawMessage `json:"flightOffers"`
		} `json:"data"`
		Warnings []Warning `json:"warnings"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, apperror.New(apperror.ErrUpstream, "decode pricing response", err)
	}
	offers, err := parseOffers(resp.Data.FlightOffers)
	if err != nil {
		return nil, err
	}
	return &PricingResult{Offers: offers, Warnings: resp.Warnings, Raw: raw}, nil
}

func (c *Client) CreateOrder(ctx context.Context, offer json.RawMessage, travelers []Traveler) (*Order, error) {
	if len(travelers) == 0 {
		return nil, apperror.Validation("passenger details are required to create a flight order")
	}
	body := map[string]any{
		"data": map[string]any{
			"type":         "flight-order",
			"flightOffers": []json.RawMessage{offer},
			"travelers":    travelers,
		},
	}
	var resp struct {
		Data json.RawMessage `json:"data"`
	}
	if err := c.do(ctx, c.callTimeout, http.MethodPost, orderPath, nil, body, &resp); err != nil {
		return nil, err
	}
	var order Order
	if err := json.Unmarshal(resp.Data, &order); err != nil {
		return nil, apperror.New(apperror.ErrUpstream, "decode order response", err)
	}
	order.Raw = resp.Data
	return &order, nil
}

// GetOffer fetches one offer by id. A missing offer is ErrFlightNotFound.
func (c *Client) GetOffer(ctx context.Context, offerID string) (*Offer, error) {
	var resp struct {
		Data json.RawMessage `json:"data"`
	}
	err := c.do(ctx, c.callTimeout, http.MethodGet, searchPath+"/"+url.PathEscape(offerID), nil, nil, &resp)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Status == http.StatusNotFound {
			return nil, apperror.New(apperror.ErrFlightNotFound, fmt.Sprintf("flight offer %s not found", offerID), nil)
		}
		return nil, err
	}
	offer, err := ParseOffer(resp.Data)
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

func parseOffers(raw []json.RawMessage) ([]Offer, error) {
	offers := make([]Offer, 0, len(raw))
	for _, r := range raw {
		o, err := ParseOffer(r)
		if err != nil {
			return nil, apperror.New(apperror.ErrUpstream, "decode provider offer", err)
		}
		offers = append(offers, o)
	}
	return offers, nil
}

// do performs one authorized call. A 401 forces a single token refresh and retry.
func (c *Client) do(ctx context.Context, timeout time.Duration, method, path string, query url.Values, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("encode %s request: %w", path, err)
		}
	}

	token, err := c.session.Token(ctx)
	if err != nil {
		return err
	}

	status, data, err := c.send(ctx, method, path, query, payload, token)
	if err == nil && status == http.StatusUnauthorized {
		if token, err = c.session.Refresh(ctx); err != nil {
			return err
		}
		status, data, err = c.send(ctx, method, path, query, payload, token)
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return apperror.New(apperror.ErrUpstream, fmt.Sprintf("provider call %s timed out", path), err)
		}
		return apperror.New(apperror.ErrUpstream, fmt.Sprintf("provider call %s failed", path), err)
	}

	if status < 200 || status > 299 {
		se := &StatusError{Status: status}
		var errBody struct {
			Errors []Warning `json:"errors"`
		}
		if json.Unmarshal(data, &errBody) == nil {
			se.Errors = errBody.Errors
		}
		c.log.Warn("provider returned error status",
			zap.String("path", path),
			zap.Int("status", status),
			zap.Error(se))
		e := apperror.New(apperror.ErrUpstream, se.Error(), se)
		e.Retryable = status >= 500 || status == http.StatusTooManyRequests
		return e
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return apperror.New(apperror.ErrUpstream, fmt.Sprintf("decode %s response", path), err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, payload []byte, token string) (int, []byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, data, nil
}
