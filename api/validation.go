package api

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const dateLayout = time.DateOnly

var registerOnce sync.Once

// registerValidators adds the request rules used by the binding tags below.
func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("iata", validIATA)
		_ = v.RegisterValidation("future_date", func(fl validator.FieldLevel) bool {
			d, ok := parseDateField(fl)
			return ok && !d.Before(today())
		})
		_ = v.RegisterValidation("past_date", func(fl validator.FieldLevel) bool {
			d, ok := parseDateField(fl)
			return ok && !d.After(today())
		})
	})
}

// validIATA accepts three letters in either case; handlers upper-case the code afterwards.
func validIATA(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
			return false
		}
	}
	return true
}

// parseDateField reads a YYYY-MM-DD string field.
func parseDateField(fl validator.FieldLevel) (time.Time, bool) {
	s := fl.Field().String()
	if s == "" {
		return time.Time{}, false
	}
	d, err := time.Parse(dateLayout, s)
	return d, err == nil
}

func today() time.Time {
	return time.Now().UTC().Truncate(24 * time.Hour)
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

func parseOptionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := parseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
