package domain

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// ParsePriceCents reads a decimal price such as "12.99" or "4.5" and returns it
// in cents, rounded half away from zero. Exponents, hex floats, NaN and
// infinities are rejected.
func ParsePriceCents(raw string) (int64, error) {
	s := strings.TrimSpace(raw)
	if !isDecimal(s) {
		return 0, fmt.Errorf("not a decimal number: %q", raw)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	cents := math.Round(f * 100)
	if math.IsInf(cents, 0) || math.Abs(cents) > math.MaxInt64/2 {
		return 0, fmt.Errorf("price out of range: %q", raw)
	}
	return int64(cents), nil
}

func isDecimal(s string) bool {
	if s == "" {
		return false
	}
	if s[0] == '+' || s[0] == '-' {
		s = s[1:]
	}
	digits, dots := 0, 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.':
			dots++
		default:
			return false
		}
	}
	return digits > 0 && dots <= 1
}

// AveragePrice returns the arithmetic mean of the dish prices rounded half
// away from zero to two decimal places, or 0 for an empty list. The prices are
// summed exactly, so only the mean is rounded.
func AveragePrice(dishes []Dish) (float64, error) {
	if len(dishes) == 0 {
		return 0, nil
	}
	total := new(big.Rat)
	for _, d := range dishes {
		r, err := parseExact(d.Price)
		if err != nil {
			return 0, ParseError{ID: d.ID, Value: d.Price, Err: err}
		}
		total.Add(total, r)
	}
	mean := total.Quo(total, big.NewRat(int64(len(dishes)), 1))
	cents := roundCents(mean)
	if !cents.IsInt64() {
		return 0, fmt.Errorf("average price out of range")
	}
	return float64(cents.Int64()) / 100, nil
}

// parseExact reads a decimal string into an exact rational.
func parseExact(raw string) (*big.Rat, error) {
	s := strings.TrimSpace(raw)
	if !isDecimal(s) {
		return nil, fmt.Errorf("not a decimal number: %q", raw)
	}
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimLeft(s, "+-")
	whole, frac, _ := strings.Cut(s, ".")
	num, ok := new(big.Int).SetString("0"+whole+frac, 10)
	if !ok {
		return nil, fmt.Errorf("not a decimal number: %q", raw)
	}
	if neg {
		num.Neg(num)
	}
	den := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(len(frac))), nil)
	return new(big.Rat).SetFrac(num, den), nil
}

func roundCents(r *big.Rat) *big.Int {
	scaled := new(big.Rat).Mul(r, big.NewRat(100, 1))
	num, den := scaled.Num(), scaled.Denom()
	// floor((2|n| + d) / 2d) rounds |n|/d half up
	q := new(big.Int).Abs(num)
	q.Mul(q, big.NewInt(2)).Add(q, den)
	q.Quo(q, new(big.Int).Mul(den, big.NewInt(2)))
	if num.Sign() < 0 {
		q.Neg(q)
	}
	return q
}

// fractionDigits counts the digits after the decimal point of a trimmed
// decimal string.
func fractionDigits(s string) int {
	_, frac, _ := strings.Cut(strings.TrimSpace(s), ".")
	return len(frac)
}

// FormatPrice renders an amount with exactly two decimals.
func FormatPrice(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}
