package notify

import (
	"fmt"
	"net/mail"
	"strconv"
	"strings"
)

// requiredFields are checked in exactly this order; validation stops at the
// first missing one.
var requiredFields = []string{
	"to",
	"customer_name",
	"customer_email",
	"order_ref",
	"order_date",
	"order_items",
	"order_total",
}

// stringField renders a raw payload value as a string. Numbers are accepted
// for fields like order_total and stringified without an exponent.
func stringField(raw map[string]any, key string) string {
	v, ok := raw[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if t {
			return "1"
		}
		return ""
	default:
		return fmt.Sprint(t)
	}
}

// fieldEmpty mirrors the intake contract: a field is empty when absent,
// blank after trimming, or the literal "0".
func fieldEmpty(raw map[string]any, key string) bool {
	s := strings.TrimSpace(stringField(raw, key))
	return s == "" || s == "0"
}

func validEmail(addr string) bool {
	parsed, err := mail.ParseAddress(addr)
	if err != nil {
		return false
	}
	// reject display-name forms like `Bob <bob@example.com>`
	return parsed.Address == addr
}

// validate enforces the required field set and email syntax. The destination
// address is checked before the customer email.
func validate(raw map[string]any) error {
	for _, field := range requiredFields {
		if fieldEmpty(raw, field) {
			return &MissingFieldError{Field: field}
		}
	}

	if !validEmail(stringField(raw, "to")) {
		return ErrInvalidCustomerEmail
	}
	if !validEmail(stringField(raw, "customer_email")) {
		return ErrInvalidOrderEmail
	}

	return nil
}
