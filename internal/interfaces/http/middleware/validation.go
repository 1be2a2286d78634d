package middleware

import (
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/worldref/backend/internal/domain/referral"
	"github.com/worldref/backend/internal/interfaces/http/dto"
)

// RequestIDKey is the context key for request ID
const RequestIDKey = "X-Request-ID"

// SetupValidator wires the domain rules into gin's binding validator
// and switches error field names to their JSON tags.
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

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

	// Referral codes follow the domain rule: letters and numbers, at
	// most 64 characters. Empty passes so the rule composes with
	// omitempty on optional fields.
	_ = v.RegisterValidation("referralcode", func(fl validator.FieldLevel) bool {
		code := fl.Field().String()
		if code == "" {
			return true
		}
		return referral.ValidateReferralCode(code) == nil
	})
}

// FormatValidationErrors flattens a validator error into the response
// envelope, one detail per failed field.
func FormatValidationErrors(err error, requestID string) dto.Response {
	var details []dto.ValidationDetail
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range verrs {
			details = append(details, dto.ValidationDetail{
				Field:   e.Field(),
				Message: getValidationMessage(e),
			})
		}
	}
	return dto.NewValidationErrorResponse("Request validation failed", requestID, details)
}

// HandleValidationError responds 400 with the formatted field errors.
func HandleValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, FormatValidationErrors(err, requestIDFromContext(c)))
}

func requestIDFromContext(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	if id := c.GetString(RequestIDKey); id != "" {
		return id
	}
	return c.GetHeader(RequestIDKey)
}

var validationMessages = map[string]string{
	"required":     "This field is required",
	"email":        "Invalid email format",
	"uuid":         "Invalid UUID format",
	"url":          "Invalid URL format",
	"numeric":      "Must be numeric",
	"alphanum":     "Must be alphanumeric",
	"alpha":        "Must contain only letters",
	"referralcode": "Referral code can only contain letters and numbers",
}

func getValidationMessage(e validator.FieldError) string {
	if msg, ok := validationMessages[e.Tag()]; ok {
		return msg
	}

	param := e.Param()
	switch e.Tag() {
	case "min":
		if e.Type().Kind() == reflect.String {
			return "Must be at least " + param + " characters"
		}
		return "Must be at least " + param
	case "max":
		if e.Type().Kind() == reflect.String {
			return "Must be at most " + param + " characters"
		}
		return "Must be at most " + param
	case "len":
		return "Must be exactly " + param + " characters"
	case "oneof":
		return "Must be one of: " + param
	case "gte":
		return "Must be greater than or equal to " + param
	case "lte":
		return "Must be less than or equal to " + param
	case "gt":
		return "Must be greater than " + param
	case "lt":
		return "Must be less than " + param
	}
	return "Invalid value"
}
