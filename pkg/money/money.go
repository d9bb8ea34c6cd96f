package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Amounts are stored as int64 minor units; the engine assumes two-decimal currencies.
const minorExp = 2

func FromMinor(minor int64) decimal.Decimal { return decimal.New(minor, -minorExp) }

// ToMinor converts a major-unit amount, rejecting sub-cent precision.
func ToMinor(d decimal.Decimal) (int64, error) {
	shifted := d.Shift(minorExp)
	if !shifted.Equal(shifted.Truncate(0)) {
		return 0, fmt.Errorf("amount %s has more than %d decimal places", d.String(), minorExp)
	}
	return shifted.IntPart(), nil
}

// Format renders minor units with the currency code, e.g. "IDR 1200.00".
func Format(minor int64, currency string) string {
	return fmt.Sprintf("%s %s", currency, FromMinor(minor).StringFixed(minorExp))
}

// ApplyRate multiplies an amount by a rate, rounding half away from zero to whole minor units.
func ApplyRate(minor int64, rate decimal.Decimal) int64 {
	return decimal.NewFromInt(minor).Mul(rate).Round(0).IntPart()
}

// Split divides total into n shares truncated to whole minor units; the last
// share absorbs the remainder so the shares always sum to total.
func Split(total int64, n int) []int64 {
	if n < 1 {
		return nil
	}
	share := decimal.NewFromInt(total).Div(decimal.NewFromInt(int64(n))).Truncate(0).IntPart()
	out := make([]int64, n)
	for i := 0; i < n-1; i++ {
		out[i] = share
	}
	out[n-1] = total - share*int64(n-1)
	return out
}
