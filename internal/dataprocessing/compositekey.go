package dataprocessing

import (
	"fmt"
	"regexp"
	"strings"

	"tidycli/pkg/contracts/domain"
)

// KeySeparator joins the status token and the month-year token of a column name
const KeySeparator = "_"

var statusTokens = map[string]domain.DisabilityStatus{
	"Disability":   domain.StatusWithDisability,
	"NoDisability": domain.StatusNoDisability,
}

var monthAbbreviations = map[string]string{
	"jan": "Jan", "feb": "Feb", "mar": "Mar", "apr": "Apr",
	"may": "May", "jun": "Jun", "jul": "Jul", "aug": "Aug",
	"sep": "Sep", "oct": "Oct", "nov": "Nov", "dec": "Dec",
}

var (
	leadingAlphaRe = regexp.MustCompile(`^[A-Za-z]+`)
	yearTailRe     = regexp.MustCompile(`^\.?(\d{4})$`)
)

// Reason classifies why a composite key or a cell was rejected
type Reason string

const (
	ReasonSplit  Reason = "split"
	ReasonStatus Reason = "status"
	ReasonMonth  Reason = "month"
	ReasonYear   Reason = "year"
	ReasonValue  Reason = "value"
)

// CompositeKey is a parsed value column name such as Disability_Aug2025
type CompositeKey struct {
	Raw    string
	Status domain.DisabilityStatus
	Month  string
	Year   string
}

// KeyError describes a column name that does not follow the
// <status>_<Mon><YYYY> grammar
type KeyError struct {
	Key    string
	Reason Reason
	Detail string
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("composite key %q: %s: %s", e.Key, e.Reason, e.Detail)
}

// HasSeparator reports whether a column name matches the composite-key
// pattern at all, i.e. whether it carries the separator
func HasSeparator(raw string) bool {
	return strings.Contains(raw, KeySeparator)
}

// ParseCompositeKey parses a column name into its status, month and year.
// The month token must be a three-letter calendar month, optionally followed
// by a period; it is returned in canonical form ("aug" becomes "Aug").
func ParseCompositeKey(raw string) (CompositeKey, error) {
	parts := strings.Split(raw, KeySeparator)
	if len(parts) != 2 {
		return CompositeKey{}, &KeyError{
			Key:    raw,
			Reason: ReasonSplit,
			Detail: fmt.Sprintf("expected 2 parts separated by %q, got %d", KeySeparator, len(parts)),
		}
	}

	statusToken, monthYear := parts[0], parts[1]

	status, ok := statusTokens[statusToken]
	if !ok {
		return CompositeKey{}, &KeyError{
			Key:    raw,
			Reason: ReasonStatus,
			Detail: fmt.Sprintf("unknown disability status token %q", statusToken),
		}
	}

	alpha := leadingAlphaRe.FindString(monthYear)
	if alpha == "" {
		return CompositeKey{}, &KeyError{Key: raw, Reason: ReasonMonth, Detail: fmt.Sprintf("no month abbreviation in %q", monthYear)}
	}
	month, ok := monthAbbreviations[strings.ToLower(alpha)]
	if !ok || len(alpha) != 3 {
		return CompositeKey{}, &KeyError{Key: raw, Reason: ReasonMonth, Detail: fmt.Sprintf("%q is not a three-letter month abbreviation", alpha)}
	}

	m := yearTailRe.FindStringSubmatch(monthYear[len(alpha):])
	if m == nil {
		return CompositeKey{}, &KeyError{Key: raw, Reason: ReasonYear, Detail: fmt.Sprintf("no four-digit year after %q in %q", alpha, monthYear)}
	}

	return CompositeKey{
		Raw:    raw,
		Status: status,
		Month:  month,
		Year:   m[1],
	}, nil
}
