package apiutil

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/codr1/courtbook/internal/availability"
)

func ParseNonNegativeInt64Field(raw string, field string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, FieldError{Field: field, Reason: "is required"}
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value < 0 {
		return 0, FieldError{Field: field, Reason: "must be 0 or greater"}
	}
	return value, nil
}

func ParsePositiveInt64Field(raw string, field string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, FieldError{Field: field, Reason: "is required"}
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value <= 0 {
		return 0, FieldError{Field: field, Reason: "must be greater than 0"}
	}
	return value, nil
}

// PathID parses a positive ID from a ServeMux path wildcard.
func PathID(r *http.Request, name string) (int64, error) {
	return ParsePositiveInt64Field(r.PathValue(name), name)
}

// OptionalQueryID returns 0 when the query parameter is absent.
func OptionalQueryID(r *http.Request, key string) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, nil
	}
	return ParsePositiveInt64Field(raw, key)
}

// ParseDateField parses a required YYYY-MM-DD value.
func ParseDateField(raw string, field string) (availability.Date, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return availability.Date{}, FieldError{Field: field, Reason: "is required"}
	}
	date, err := availability.ParseDate(raw)
	if err != nil {
		return availability.Date{}, FieldError{Field: field, Reason: fmt.Sprintf("must be YYYY-MM-DD, got %q", raw)}
	}
	return date, nil
}
