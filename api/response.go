package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/Domenick1991/skybooker/internal/apperror"
)

const (
	codeInternal       = "INTERNAL_ERROR"
	codeMissingFields  = "MISSING_REQUIRED_FIELDS"
	codeInvalidRequest = "VALIDATION_ERROR"
	codeBookingError   = "BOOKING_ERROR"
)

type envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
}

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, envelope{Success: true, Data: data})
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, envelope{Error: &errorBody{Code: code, Message: message}})
}

// respondError maps classified errors to their status and code. Anything else is
// reported as fallbackCode with a generic message; the cause only goes to the log.
func respondError(c *gin.Context, err error, fallbackCode, fallbackMessage string) {
	_ = c.Error(err)

	if appErr, ok := apperror.As(err); ok {
		c.AbortWithStatusJSON(apperror.HTTPStatus(appErr.Kind), envelope{Error: &errorBody{
			Code:      appErr.Code,
			Message:   appErr.Message,
			Retryable: appErr.Retryable,
		}})
		return
	}
	abortWithError(c, http.StatusInternalServerError, fallbackCode, fallbackMessage)
}

// respondBindError reports a request that failed decoding or binding rules.
// A missing required field gets its own code.
func respondBindError(c *gin.Context, err error, missingMessage string) {
	_ = c.Error(err)

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		abortWithError(c, http.StatusBadRequest, codeInvalidRequest, "malformed request body")
		return
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			abortWithError(c, http.StatusBadRequest, codeMissingFields, missingMessage)
			return
		}
		msgs = append(msgs, fieldMessage(fe))
	}
	abortWithError(c, http.StatusBadRequest, codeInvalidRequest, "Validation error: "+strings.Join(msgs, ", "))
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "iata":
		return field + " must be a valid 3-letter IATA code"
	case "future_date":
		return field + " must be in the future"
	case "past_date":
		return field + " must be in the past"
	case "datetime":
		return field + " must be a date in YYYY-MM-DD format"
	case "email":
		return field + " must be a valid email address"
	case "oneof":
		return field + " must be one of " + fe.Param()
	case "min", "max":
		return field + " must be " + fe.Tag() + " " + fe.Param()
	default:
		return field + " is invalid"
	}
}
