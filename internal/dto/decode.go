package dto

import (
	"encoding/json"
	"regexp"
	"time"

	apperrors "stasher/internal/errors"
)

var currencyCodePattern = regexp.MustCompile(`^[A-Z]{3}$`)

// detailCollector accumulates field problems for one payload.
type detailCollector struct {
	prefix  string
	details []apperrors.ValidationDetail
}

func (c *detailCollector) add(field, message string) {
	c.details = append(c.details, apperrors.ValidationDetail{
		Field:   c.prefix + field,
		Message: message,
	})
}

func (c *detailCollector) requireString(field string, v *string) string {
	if v == nil || *v == "" {
		c.add(field, "is required")
		return ""
	}
	return *v
}

func (c *detailCollector) requireNumber(field string, v *float64) float64 {
	if v == nil {
		c.add(field, "is required")
		return 0
	}
	return *v
}

func (c *detailCollector) requireCurrency(field string, v *string) string {
	code := c.requireString(field, v)
	if code != "" && !currencyCodePattern.MatchString(code) {
		c.add(field, "must be a 3 letter ISO 4217 code")
	}
	return code
}

func (c *detailCollector) requireDate(field string, v *string, loc *time.Location) time.Time {
	s := c.requireString(field, v)
	if s == "" {
		return time.Time{}
	}
	t, err := ParseDate(s, loc)
	if err != nil {
		c.add(field, "must be a calendar date (YYYY-MM-DD)")
	}
	return t
}

func (c *detailCollector) err(payload string) error {
	if len(c.details) == 0 {
		return nil
	}
	return apperrors.NewValidationError("invalid "+payload+" payload", c.details...)
}

func unmarshalPayload(payload string, body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return apperrors.NewValidationError("invalid "+payload+" payload", apperrors.ValidationDetail{
			Field:   "body",
			Message: "must be valid JSON of the expected shape: " + err.Error(),
		})
	}
	return nil
}
