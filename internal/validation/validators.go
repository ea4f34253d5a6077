package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/benvon/fake-api/internal/database"
	"github.com/go-playground/validator/v10"
	"github.com/ulule/limiter/v3"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	if err := Validate.RegisterValidation("ratelimit_rate", validateRatelimitRate); err != nil {
		panic(fmt.Sprintf("failed to register ratelimit_rate validator: %v", err))
	}
}

// GenerateKeyRequest is the body of POST /api/generate-key. Name is optional.
type GenerateKeyRequest struct {
	Name string `json:"name" validate:"max=100"`
}

// Normalize sanitizes the name in place and validates the result.
func (r *GenerateKeyRequest) Normalize() error {
	r.Name = SanitizeText(r.Name)
	if err := Validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Field() == "Name" {
			return fmt.Errorf("name must be at most %s characters", verrs[0].Param())
		}
		return fmt.Errorf("validation failed")
	}
	return nil
}

// ListParams bounds admin pagination
type ListParams struct {
	Limit  int `validate:"min=1,max=500"`
	Offset int `validate:"min=0"`
}

// validateRatelimitRate accepts rates in limiter's "<count>-<period>" format
func validateRatelimitRate(fl validator.FieldLevel) bool {
	_, err := limiter.NewRateFromFormatted(fl.Field().String())
	return err == nil
}

// ValidateRate checks a rate such as "10-S" or "600-M"
func ValidateRate(rate string) error {
	if err := Validate.Var(strings.TrimSpace(rate), "required,ratelimit_rate"); err != nil {
		return fmt.Errorf("invalid rate %q (expected <count>-<S|M|H|D>, e.g. 10-S)", rate)
	}
	return nil
}

// ValidateOrigins checks a comma-separated list of http(s) origins
func ValidateOrigins(raw string) error {
	origins := database.AllowedOriginsSlice(raw)
	if len(origins) == 0 {
		return fmt.Errorf("at least one origin is required")
	}
	for _, o := range origins {
		if o == "*" {
			continue
		}
		if err := Validate.Var(o, "http_url"); err != nil {
			return fmt.Errorf("invalid origin %q", o)
		}
	}
	return nil
}

// SanitizeText trims whitespace and removes control characters except newline and tab
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}
