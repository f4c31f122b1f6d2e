package domain

import "time"

// SearchCriteria is what a user asked the provider for.
type SearchCriteria struct {
	Origin        string          `json:"origin"`
	Destination   string          `json:"destination"`
	DepartureDate time.Time       `json:"departureDate"`
	ReturnDate    *time.Time      `json:"returnDate,omitempty"`
	Passengers    PassengerCounts `json:"passengers"`
	CabinClass    CabinClass      `json:"class"`
	CurrencyCode  string          `json:"currencyCode,omitempty"`
}

// SearchRecord is one row of search history.
type SearchRecord struct {
	SearchID      string         `json:"searchId"`
	UserID        string         `json:"userId"`
	Criteria      SearchCriteria `json:"searchCriteria"`
	ResultCount   int            `json:"resultCount"`
	ExecutionTime time.Duration  `json:"executionTime"`
	CreatedAt     time.Time      `json:"createdAt"`
}
