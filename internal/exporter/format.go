package exporter

import (
	"strconv"
)

// formatValue renders an observation value as a plain decimal: no exponent,
// no thousands separators, fewest digits that round-trip
func formatValue(f float64) string {
	if f == 0 {
		f = 0 // drop the sign of -0
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatInt formats an int for CSV output
func formatInt(i int) string {
	return strconv.Itoa(i)
}
