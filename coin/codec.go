package coin

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned when a decimal amount cannot be converted
// into Mist: not a number, negative, or too large for a u64.
type AmountError string

func (e AmountError) Error() string {
	return string(e)
}

const ErrInvalidAmount AmountError = "invalid amount"

var maxMist = decimal.NewFromBigInt(new(big.Int).SetUint64(^uint64(0)), 0)

// ToMist converts a decimal SUI string into Mist, truncating toward zero
// beyond nine fractional digits. The conversion is exact decimal arithmetic;
// float64 is never involved, so transaction amounts cannot be silently
// under- or over-funded by binary rounding.
func ToMist(s string) (Mist, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return DecimalToMist(d)
}

// DecimalToMist converts an already-parsed decimal SUI value into Mist.
func DecimalToMist(d decimal.Decimal) (Mist, error) {
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: negative value %s", ErrInvalidAmount, d)
	}
	shifted := d.Shift(9).Truncate(0)
	if shifted.Cmp(maxMist) > 0 {
		return 0, fmt.Errorf("%w: %s SUI exceeds the u64 range", ErrInvalidAmount, d)
	}
	bi := shifted.BigInt()
	if !bi.IsUint64() {
		return 0, fmt.Errorf("%w: %s SUI exceeds the u64 range", ErrInvalidAmount, d)
	}
	return Mist(bi.Uint64()), nil
}

// ToSUI returns the display value of m in SUI. The result is for rendering
// only and must not be fed back into ToMist for the same logical amount.
func ToSUI(m Mist) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(m)), -9)
}
