package amadeus

import (
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/skybooker/internal/domain"
)

type Traveler struct {
	ID          string     `json:"id"`
	DateOfBirth string     `json:"dateOfBirth"`
	Name        Name       `json:"name"`
	Gender      string     `json:"gender,omitempty"`
	Contact     *Contact   `json:"contact,omitempty"`
	Documents   []Document `json:"documents,omitempty"`
}

type Name struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type Contact struct {
	EmailAddress string  `json:"emailAddress"`
	Phones       []Phone `json:"phones,omitempty"`
}

type Phone struct {
	DeviceType string `json:"deviceType"`
	Number     string `json:"number"`
}

type Document struct {
	DocumentType    string `json:"documentType"`
	Number          string `json:"number"`
	ExpiryDate      string `json:"expiryDate"`
	IssuanceCountry string `json:"issuanceCountry"`
	Nationality     string `json:"nationality"`
	Holder          bool   `json:"holder"`
}

// TravelersFromPassengers builds order travelers; the first passenger carries the contact.
func TravelersFromPassengers(passengers []domain.PassengerDetail, contact domain.ContactInfo) []Traveler {
	travelers := make([]Traveler, 0, len(passengers))
	for i, p := range passengers {
		t := Traveler{
			ID:          strconv.Itoa(i + 1),
			DateOfBirth: p.DateOfBirth.Format(time.DateOnly),
			Name:        Name{FirstName: strings.ToUpper(p.FirstName), LastName: strings.ToUpper(p.LastName)},
			Gender:      genderFromTitle(p.Title),
		}
		if i == 0 {
			t.Contact = &Contact{EmailAddress: contact.Email}
			if contact.Phone != "" {
				t.Contact.Phones = []Phone{{DeviceType: "MOBILE", Number: contact.Phone}}
			}
		}
		if p.Passport.Number != "" {
			t.Documents = []Document{{
				DocumentType:    "PASSPORT",
				Number:          p.Passport.Number,
				ExpiryDate:      p.Passport.ExpiryDate.Format(time.DateOnly),
				IssuanceCountry: p.Passport.Country,
				Nationality:     p.Passport.Country,
				Holder:          true,
			}}
		}
		travelers = append(travelers, t)
	}
	return travelers
}

func genderFromTitle(title string) string {
	switch strings.ToUpper(strings.TrimSuffix(title, ".")) {
	case "MR", "MSTR":
		return "MALE"
	case "MRS", "MS", "MISS":
		return "FEMALE"
	}
	return ""
}
