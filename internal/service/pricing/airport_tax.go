package pricing

import (
	"strings"

	"github.com/Domenick1991/skybooker/internal/domain"
)

var defaultSurcharge = domain.FromMajor(200)

var airportSurcharges = map[string]domain.Money{
	"BLR": domain.FromMajor(200),
	"DEL": domain.FromMajor(300),
	"BOM": domain.FromMajor(250),
	"MAA": domain.FromMajor(180),
}

// AirportSurcharge returns the fixed surcharge for an IATA code.
func AirportSurcharge(code string) domain.Money {
	if s, ok := airportSurcharges[strings.ToUpper(code)]; ok {
		return s
	}
	return defaultSurcharge
}
