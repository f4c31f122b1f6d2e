package domain

import (
	"fmt"
	"time"
)

type PassengerType string

const (
	PassengerAdult  PassengerType = "ADULT"
	PassengerChild  PassengerType = "CHILD"
	PassengerInfant PassengerType = "INFANT"
)

// MaxPassengers is the carrier limit per booking.
const MaxPassengers = 9

type Passport struct {
	Number     string    `json:"number"`
	ExpiryDate time.Time `json:"expiryDate"`
	Country    string    `json:"country"`
}

type PassengerDetail struct {
	Type            PassengerType `json:"type"`
	Title           string        `json:"title"`
	FirstName       string        `json:"firstName"`
	LastName        string        `json:"lastName"`
	DateOfBirth     time.Time     `json:"dateOfBirth"`
	Passport        Passport      `json:"passport"`
	SpecialRequests []string      `json:"specialRequests,omitempty"`
}

type PassengerCounts struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
	Infants  int `json:"infants"`
}

func (c PassengerCounts) Total() int {
	return c.Adults + c.Children + c.Infants
}

func (c PassengerCounts) Validate() error {
	switch {
	case c.Adults < 1:
		return fmt.Errorf("at least one adult required, got %d", c.Adults)
	case c.Children < 0 || c.Infants < 0:
		return fmt.Errorf("passenger counts must not be negative")
	case c.Total() > MaxPassengers:
		return fmt.Errorf("at most %d passengers per booking, got %d", MaxPassengers, c.Total())
	}
	return nil
}

// CountPassengers derives per-type counts from a passenger list. Unknown types are ignored.
func CountPassengers(passengers []PassengerDetail) PassengerCounts {
	var c PassengerCounts
	for _, p := range passengers {
		switch p.Type {
		case PassengerAdult:
			c.Adults++
		case PassengerChild:
			c.Children++
		case PassengerInfant:
			c.Infants++
		}
	}
	return c
}

type ContactInfo struct {
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}
