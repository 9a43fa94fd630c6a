package core

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// moneyPlaces is the minor-unit precision of INR (paise).
const moneyPlaces = 2

const (
	// maxAmountInput caps the length of a numeric string before it is parsed.
	maxAmountInput = 64
	// maxExponent bounds the decimal exponent of a parsed value. Rounding a value
	// outside it rescales through a 10^n big.Int.
	maxExponent = 32
)

var (
	hundred = decimal.NewFromInt(100)
	// maxAmount is the first value NUMERIC(15,2) cannot store.
	maxAmount = decimal.New(1, 13)
)

// ParseAmount coerces a loosely typed form value into a decimal.
// nil, blank, "null", NaN, infinities and anything that does not parse as a
// number become zero, as does a value whose exponent is beyond ±32.
// Indian digit grouping ("1,00,000") and a leading rupee sign are accepted.
func ParseAmount(v any) decimal.Decimal {
	return bounded(parseAmount(v))
}

func parseAmount(v any) decimal.Decimal {
	switch t := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return t
	case *decimal.Decimal:
		if t == nil {
			return decimal.Zero
		}
		return *t
	case string:
		return parseAmountString(t)
	case json.Number:
		return parseAmountString(t.String())
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return decimal.Zero
		}
		return decimal.NewFromFloat(t)
	case float32:
		if f := float64(t); math.IsNaN(f) || math.IsInf(f, 0) {
			return decimal.Zero
		}
		return decimal.NewFromFloat32(t)
	case int:
		return decimal.NewFromInt(int64(t))
	case int64:
		return decimal.NewFromInt(t)
	case int32:
		return decimal.NewFromInt32(t)
	default:
		return decimal.Zero
	}
}

func parseAmountString(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "₹")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if len(s) > maxAmountInput {
		return decimal.Zero
	}
	if s == "" || strings.EqualFold(s, "null") || strings.EqualFold(s, "undefined") {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func bounded(d decimal.Decimal) decimal.Decimal {
	if e := d.Exponent(); e > maxExponent || e < -maxExponent {
		return decimal.Zero
	}
	return d
}

// hasPlaces reports whether d needs no more than places decimal places.
func hasPlaces(d decimal.Decimal, places int32) bool {
	if d.Exponent() >= -places {
		return true
	}
	if d.Exponent() < -maxExponent {
		return false
	}
	return d.Truncate(places).Equal(d)
}

// amountProblem says why d cannot be stored as a NUMERIC(15,2) amount, or "".
func amountProblem(d decimal.Decimal) string {
	switch {
	case d.IsNegative():
		return "must not be negative"
	case d.Exponent() > maxExponent:
		return "must be less than 10000000000000"
	case !hasPlaces(d, moneyPlaces):
		return "must have at most 2 decimal places"
	case d.GreaterThanOrEqual(maxAmount):
		return "must be less than 10000000000000"
	}
	return ""
}

// RoundMoney rounds to paise, half away from zero.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(moneyPlaces)
}
