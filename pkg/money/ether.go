package money

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// EtherDecimals is the number of base-unit (wei) digits in one ether.
const EtherDecimals = 18

var (
	ErrInvalidAmount  = errors.New("amount is not a base-10 integer")
	ErrNegativeAmount = errors.New("amount is negative")
)

// ParseBaseUnits parses an integer amount in base units (e.g. wei) as sent by indexers.
// Negative amounts are rejected.
func ParseBaseUnits(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrInvalidAmount
	}

	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if v.Sign() < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNegativeAmount, s)
	}
	return v, nil
}

// ToEther converts wei to ether without losing precision.
func ToEther(wei *big.Int) decimal.Decimal {
	if wei == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(wei, -EtherDecimals)
}

// FormatEther renders wei as an ether amount for display: "500000000000000000" -> "0.5",
// "1000000000000000000" -> "1.0". Integral amounts keep one fractional digit.
func FormatEther(wei *big.Int) string {
	s := ToEther(wei).String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
