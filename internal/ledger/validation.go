package ledger

import (
	"errors"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// MaxPageSize caps how many entries a single listing may return.
	MaxPageSize = 100

	DefaultPage     = 1
	DefaultPageSize = 10

	// amountScale is the number of fractional digits money is stored with.
	amountScale = 2

	// maxIntegerDigits is what a NUMERIC(15,2) column leaves left of the point.
	maxIntegerDigits = 13
)

// parseAmount validates the raw amount text in the order callers rely on:
// numeric first, then positive, then precision and range.
func parseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, validationError("amount must be a number")
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, validationError("amount must be a number")
	}
	if !amount.IsPositive() {
		return decimal.Zero, validationError("amount must be greater than 0")
	}
	// Exponents may be as large as int32 allows, so precision and range are
	// judged from the digits alone. Rescaling such a value is unbounded work.
	coef, exp := normalize(amount)
	if exp < -amountScale {
		return decimal.Zero, validationError("amount must have at most 2 decimal places")
	}
	if int64(len(coef.String()))+exp > maxIntegerDigits {
		return decimal.Zero, validationError("amount exceeds the maximum allowed")
	}
	return decimal.NewFromBigInt(coef, int32(exp)), nil
}

// normalize strips trailing zeros from the coefficient of d, moving them
// into the exponent.
func normalize(d decimal.Decimal) (*big.Int, int64) {
	digits := d.Coefficient().String()
	trimmed := strings.TrimRight(digits, "0")
	coef, _ := new(big.Int).SetString(trimmed, 10)
	return coef, int64(d.Exponent()) + int64(len(digits)-len(trimmed))
}

// parsePositiveInt parses raw as an integer >= 1, falling back to def when
// raw is empty.
func parsePositiveInt(raw string, def int) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if errors.Is(err, strconv.ErrRange) && n > 0 {
		// too large for int but still a positive integer
		return math.MaxInt, true
	}
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// parsePagination validates page and limit, in that order.
func parsePagination(rawPage, rawLimit string) (page, limit int, err error) {
	page, ok := parsePositiveInt(rawPage, DefaultPage)
	if !ok {
		return 0, 0, validationError("page must be a positive integer")
	}
	limit, ok = parsePositiveInt(rawLimit, DefaultPageSize)
	if !ok {
		return 0, 0, validationError("limit must be a positive integer")
	}
	if limit > MaxPageSize {
		return 0, 0, validationError("limit cannot exceed 100")
	}
	return page, limit, nil
}
