package catalog

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	integralDecimalRegex = regexp.MustCompile(`^\d+\.0+$`)
	scientificRegex      = regexp.MustCompile(`^\d+(\.\d+)?[eE]\+?\d+$`)
)

// NormalizeCode trims a barcode or internal code and undoes the float
// rendering spreadsheets apply to numeric cells ("111.0", "7.891234567890E+12").
func NormalizeCode(raw string) string {
	code := strings.TrimSpace(raw)

	switch {
	case integralDecimalRegex.MatchString(code):
		code, _, _ = strings.Cut(code, ".")
	case scientificRegex.MatchString(code):
		if expanded, ok := expandScientific(code); ok {
			code = expanded
		}
	}

	return code
}

// expandScientific rewrites "7.891234567890E+12" as its integer digits. It
// refuses renderings that dropped digits ("7.89E+12"); padding them with
// zeros would produce a different, possibly existing, code.
func expandScientific(code string) (string, bool) {
	mantissa, exp, _ := strings.Cut(strings.ToUpper(code), "E")
	e, err := strconv.Atoi(strings.TrimPrefix(exp, "+"))
	if err != nil {
		return "", false
	}

	intPart, frac, _ := strings.Cut(mantissa, ".")
	if len(frac) < e {
		return "", false
	}
	if strings.Trim(frac[e:], "0") != "" {
		return "", false
	}

	digits := strings.TrimLeft(intPart+frac[:e], "0")
	if digits == "" {
		digits = "0"
	}
	return digits, true
}

// ParseQuantity reads a quantity cell. Decimal commas are accepted and the
// fraction is dropped; anything unparseable counts as zero.
func ParseQuantity(raw string) int {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return clampQuantity(int64(n))
	}

	f, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0
	}
	return int(f)
}

// clampQuantity zeroes quantities the quantity column (32-bit) cannot hold.
func clampQuantity(n int64) int {
	if n > math.MaxInt32 || n < math.MinInt32 {
		return 0
	}
	return int(n)
}
