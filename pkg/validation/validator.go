package validation

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is a singleton validator instance
var validate = validator.New(validator.WithRequiredStructEnabled())

// ErrInvalidQuery marks a malformed query parameter
var ErrInvalidQuery = errors.New("invalid query parameter")

// Struct validates v against its `validate` tags and returns the first
// failure in a user-facing form.
func Struct(v any) error {
	if v == nil {
		return errors.New("request cannot be nil")
	}
	return formatValidationError(validate.Struct(v))
}

// TopologyQuery holds the raw query parameters of the topology API
type TopologyQuery struct {
	Site       string `validate:"omitempty,number,max=18"`
	DeviceType string `validate:"omitempty,max=100"`
	Limit      string `validate:"omitempty,number"`
}

// ParsedTopologyQuery is a TopologyQuery after validation
type ParsedTopologyQuery struct {
	SiteID     *int64
	DeviceType string
	// Limit is zero when the parameter was absent. Values too large for an
	// int saturate to math.MaxInt; callers clamp to their own cap.
	Limit int
}

// ParseTopologyQuery validates q. Every failure wraps ErrInvalidQuery.
func ParseTopologyQuery(q TopologyQuery) (ParsedTopologyQuery, error) {
	var out ParsedTopologyQuery
	if err := Struct(&q); err != nil {
		return out, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}

	out.DeviceType = q.DeviceType
	if q.Site != "" {
		id, err := strconv.ParseInt(q.Site, 10, 64)
		if err != nil {
			return out, fmt.Errorf("%w: site: %v", ErrInvalidQuery, err)
		}
		out.SiteID = &id
	}
	if q.Limit != "" {
		n, err := strconv.Atoi(q.Limit)
		if errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(q.Limit, "-") {
			n, err = math.MaxInt, nil
		}
		if err != nil {
			return out, fmt.Errorf("%w: limit: %v", ErrInvalidQuery, err)
		}
		if n <= 0 {
			return out, fmt.Errorf("%w: limit: must be positive, got %d", ErrInvalidQuery, n)
		}
		out.Limit = n
	}
	return out, nil
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	// Return the first validation error in a user-friendly format
	for _, e := range validationErrs {
		field := e.Field()
		param := e.Param()

		switch e.Tag() {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "min":
			return fmt.Errorf("%s: must be at least %s", field, param)
		case "max":
			return fmt.Errorf("%s: must not exceed %s", field, param)
		case "number", "numeric":
			return fmt.Errorf("%s: must be a number", field)
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, e.Tag())
		}
	}

	return err
}
