package token

import (
	"errors"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// Decimals is the fixed-point exponent of MindCoin amounts.
const Decimals = 18

var (
	ErrInvalidAmount     = errors.New("amount is not a number")
	ErrNonPositiveAmount = errors.New("amount must be greater than zero")
	ErrTooManyDecimals   = errors.New("amount has more than 18 decimal places")
	ErrAmountTooLarge    = errors.New("amount does not fit in uint256")
)

var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// FormatUnits renders a smallest-unit integer as a decimal string. There is
// always at least one fractional digit: 1e18 formats as "1.0".
func FormatUnits(v *big.Int) string {
	if v == nil {
		return "0.0"
	}
	s := decimal.NewFromBigInt(v, -Decimals).String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// ParseUnits converts a positive human decimal into smallest units.
// Exponent notation is not accepted.
func ParseUnits(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if strings.ContainsAny(s, "eE") {
		return nil, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, ErrInvalidAmount
	}
	if d.Sign() <= 0 {
		return nil, ErrNonPositiveAmount
	}
	scaled := d.Shift(Decimals)
	if !scaled.IsInteger() {
		return nil, ErrTooManyDecimals
	}
	v := scaled.BigInt()
	if v.Cmp(maxUint256) > 0 {
		return nil, ErrAmountTooLarge
	}
	return v, nil
}
