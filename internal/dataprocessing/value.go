package dataprocessing

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	plainNumberRe = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)
	thousandsRe   = regexp.MustCompile(`^[+-]?\d{1,3}(,\d{3})+(\.\d+)?$`)
)

// ParseValue coerces a raw cell into a float. A blank cell returns ok=false
// and no error; it is dropped, not zeroed. Thousands separators and a single
// trailing percent sign are accepted; NaN, Inf, hex floats and text such as
// "N/A" are rejected.
func ParseValue(raw string) (value float64, ok bool, err error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false, nil
	}

	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	if strings.Contains(s, ",") {
		if !thousandsRe.MatchString(s) {
			return 0, false, fmt.Errorf("%q is not a number", raw)
		}
		s = strings.ReplaceAll(s, ",", "")
	}

	if !plainNumberRe.MatchString(s) {
		return 0, false, fmt.Errorf("%q is not a number", raw)
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, fmt.Errorf("%q is out of range: %w", raw, err)
	}
	return v, true, nil
}

