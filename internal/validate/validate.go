package validate

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reID    = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	reExt   = regexp.MustCompile(`[^a-zA-Z0-9]`)
)

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 100 {
		return "", false
	}
	return strings.ToLower(s), reEmail.MatchString(s)
}

// ID validates a simple resource identifier (user/product/order ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 60 {
		return "", false
	}
	return s, true
}

func Password(s string) bool {
	return len(s) >= 8 && len(s) <= 72 // bcrypt input cap
}

// PositiveNumber coerces a price/quantity field. Values arrive as strings
// from multipart forms and as strings or numbers from JSON clients; either
// way they must parse to a finite number > 0.
func PositiveNumber(s string) (float64, bool) {
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsInf(n, 0) || math.IsNaN(n) || n <= 0 {
		return 0, false
	}
	return n, true
}

// NonNegativeNumber is PositiveNumber but admitting zero (minimum order).
func NonNegativeNumber(s string) (float64, bool) {
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsInf(n, 0) || math.IsNaN(n) || n < 0 {
		return 0, false
	}
	return n, true
}

// PriceFilter implements the lenient-parsing policy for listing filters:
// a non-numeric or empty min/max price is treated as absent, never as an
// error. Callers apply the bound only when ok is true.
func PriceFilter(s string) (float64, bool) {
	if strings.TrimSpace(s) == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsInf(n, 0) || math.IsNaN(n) {
		return 0, false
	}
	return n, true
}

// ImageExt sanitizes a file extension to alphanumerics, defaulting to jpg.
func ImageExt(filename string) string {
	i := strings.LastIndexByte(filename, '.')
	if i < 0 {
		return "jpg"
	}
	ext := reExt.ReplaceAllString(filename[i+1:], "")
	if ext == "" {
		return "jpg"
	}
	return ext
}
