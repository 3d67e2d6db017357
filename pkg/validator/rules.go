package validator

import (
	"fmt"
	"net/mail"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/currency"
)

// decimalRegex accepts plain decimal notation only: no sign, exponent, or hex.
var decimalRegex = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

// RequiredString validates that a string is not empty after trimming whitespace.
func RequiredString(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return strings.TrimSpace(value) != ""
		},
		Error: ValidationError{Field: field, Message: "is required"},
	}
}

// RequiredSlice validates that a slice has at least one element.
func RequiredSlice[T any](field string, value []T) Rule {
	return Rule{
		Check: func() bool {
			return len(value) > 0
		},
		Error: ValidationError{Field: field, Message: "must not be empty"},
	}
}

// PositiveInt validates that value is greater than zero.
func PositiveInt(field string, value int) Rule {
	return Rule{
		Check: func() bool {
			return value > 0
		},
		Error: ValidationError{Field: field, Message: "must be positive"},
	}
}

// PositiveDecimal validates a price-like string such as "20.00".
// Empty, signed, exponent, and non-numeric forms are rejected, as is zero.
func PositiveDecimal(field, value string) Rule {
	return Rule{
		Check: func() bool {
			v := strings.TrimSpace(value)
			if !decimalRegex.MatchString(v) {
				return false
			}
			f, err := strconv.ParseFloat(v, 64)
			return err == nil && f > 0
		},
		Error: ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be a positive number, got %q", value),
		},
	}
}

// ValidEmail validates that a string is a single bare email address.
func ValidEmail(field, value string) Rule {
	return Rule{
		Check: func() bool {
			addr, err := mail.ParseAddress(value)
			if err != nil || addr.Address != strings.TrimSpace(value) {
				return false
			}
			local, domain, ok := strings.Cut(addr.Address, "@")
			if !ok || local == "" {
				return false
			}
			if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
				return false
			}
			return !strings.Contains(domain, "..")
		},
		Error: ValidationError{Field: field, Message: "must be a valid email address"},
	}
}

// ValidURL validates an absolute http or https URL.
func ValidURL(field, value string) Rule {
	return Rule{
		Check: func() bool {
			u, err := url.ParseRequestURI(strings.TrimSpace(value))
			if err != nil {
				return false
			}
			return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
		},
		Error: ValidationError{Field: field, Message: "must be a valid URL"},
	}
}

// ValidCurrencyCode validates an ISO 4217 currency code.
func ValidCurrencyCode(field, value string) Rule {
	return Rule{
		Check: func() bool {
			if len(value) != 3 {
				return false
			}
			_, err := currency.ParseISO(value)
			return err == nil
		},
		Error: ValidationError{Field: field, Message: "must be a valid ISO 4217 currency code"},
	}
}
