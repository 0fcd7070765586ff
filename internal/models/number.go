// internal/models/number.go
package models

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// FormatNumber renders a JSON number the way a JavaScript client would
// stringify it, so 1.50 becomes "1.5", 1e3 becomes "1000" and -0 becomes "0".
// Magnitudes at or above 1e21 or below 1e-6 use exponent form ("1e+21",
// "1.5e-7").
func FormatNumber(n json.Number) (string, error) {
	f, err := strconv.ParseFloat(string(n), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return "", err
	}

	switch {
	case math.IsInf(f, 1):
		return "Infinity", nil
	case math.IsInf(f, -1):
		return "-Infinity", nil
	case f == 0:
		return "0", nil
	}

	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		return jsExponent(strconv.FormatFloat(f, 'e', -1, 64)), nil
	}
	return strconv.FormatFloat(f, 'f', -1, 64), nil
}

// jsExponent rewrites Go's "1.5e-07" as "1.5e-7".
func jsExponent(s string) string {
	mantissa, exp, ok := strings.Cut(s, "e")
	if !ok {
		return s
	}
	sign := exp[:1]
	digits := strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mantissa + "e" + sign + digits
}
