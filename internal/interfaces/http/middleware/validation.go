package middleware

import (
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/sewline/backend/internal/application/pnl"
	"github.com/sewline/backend/internal/domain/order"
	"github.com/sewline/backend/internal/interfaces/http/dto"
)

// RequestIDKey is the context key for request ID
const RequestIDKey = "X-Request-ID"

// SetupValidator registers the JSON tag name resolver and the domain
// validation tags on gin's binding validator.
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	// Error messages name fields as they appear on the wire
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})

	// granularity validates reporting granularity values
	_ = v.RegisterValidation("granularity", func(fl validator.FieldLevel) bool {
		_, err := pnl.ParseGranularity(fl.Field().String())
		return err == nil
	})

	// incoterm validates shipping terms values
	_ = v.RegisterValidation("incoterm", func(fl validator.FieldLevel) bool {
		return order.ShippingTerms(strings.ToUpper(fl.Field().String())).IsValid()
	})
}

// FormatValidationErrors converts validator errors into the standard
// per-field error response.
func FormatValidationErrors(err error, requestID string) dto.Response {
	var details []dto.ValidationDetail

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrors {
			details = append(details, dto.ValidationDetail{
				Field:   e.Field(),
				Message: validationMessage(e),
			})
		}
	}

	return dto.NewValidationErrorResponse("Request validation failed", requestID, details)
}

// HandleValidationError writes a 400 with per-field details.
func HandleValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, FormatValidationErrors(err, requestIDFrom(c)))
}

func requestIDFrom(c *gin.Context) string {
	if id := c.GetString(RequestIDKey); id != "" {
		return id
	}
	return c.GetHeader(RequestIDKey)
}

// fixedValidationMessages covers tags whose message needs no parameter.
var fixedValidationMessages = map[string]string{
	"required":    "This field is required",
	"uuid":        "Invalid UUID format",
	"numeric":     "Must be numeric",
	"granularity": "Must be one of: MONTHLY QUARTERLY ANNUAL",
	"incoterm":    "Must be one of: FOB CIF DDP EXW",
}

func validationMessage(e validator.FieldError) string {
	if msg, ok := fixedValidationMessages[e.Tag()]; ok {
		return msg
	}

	switch e.Tag() {
	case "min":
		return boundMessage("Must be at least ", e)
	case "max":
		return boundMessage("Must be at most ", e)
	case "len":
		return "Must be exactly " + e.Param() + " characters"
	case "oneof":
		return "Must be one of: " + e.Param()
	case "gte":
		return "Must be greater than or equal to " + e.Param()
	case "lte":
		return "Must be less than or equal to " + e.Param()
	case "gt":
		return "Must be greater than " + e.Param()
	case "lt":
		return "Must be less than " + e.Param()
	default:
		return "Invalid value"
	}
}

// boundMessage appends "characters" for string fields so length limits
// read naturally.
func boundMessage(prefix string, e validator.FieldError) string {
	if e.Type().Kind() == reflect.String {
		return prefix + e.Param() + " characters"
	}
	return prefix + e.Param()
}
