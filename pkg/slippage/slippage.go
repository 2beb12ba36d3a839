// Package slippage computes slippage-adjusted minimum output amounts.
package slippage

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"cosmossdk.io/math"
)

// Denominator is the number of basis points in 100%.
const Denominator = 10_000

// ErrSlippageOutOfRange is returned when slippage exceeds Denominator.
var ErrSlippageOutOfRange = errors.New("slippage out of range: must be 0-10000 bps")

var (
	bigDenominator = big.NewInt(Denominator)

	// MaxUint256 is returned for an undefined amount. A minimum output of
	// 2^256-1 can never be met, so a swap built from it reverts instead of
	// accepting any output.
	MaxUint256 = math.NewUintFromBigInt(new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1)))
)

// MinOut returns amount - floor(amount*slippageBps/10000).
//
// The zero value of math.Uint is treated as an undefined amount and yields
// MaxUint256.
func MinOut(amount math.Uint, slippageBps uint64) (math.Uint, error) {
	if slippageBps > Denominator {
		return math.Uint{}, fmt.Errorf("%w: got %d", ErrSlippageOutOfRange, slippageBps)
	}
	if amount.IsNil() {
		return MaxUint256, nil
	}
	return math.NewUintFromBigInt(minOut(amount.BigInt(), slippageBps)), nil
}

// MinOutBig is MinOut for callers holding ABI-decoded integers. A nil amount
// is undefined and yields MaxUint256.
func MinOutBig(amount *big.Int, slippageBps uint64) (*big.Int, error) {
	if slippageBps > Denominator {
		return nil, fmt.Errorf("%w: got %d", ErrSlippageOutOfRange, slippageBps)
	}
	if amount == nil {
		return MaxUint256.BigInt(), nil
	}
	if amount.Sign() < 0 {
		return nil, fmt.Errorf("amount must be non-negative: %s", amount)
	}
	return minOut(amount, slippageBps), nil
}

// minOut splits amount into q*10000 + r so the product never grows past
// amount: floor(amount*s/10000) == q*s + floor(r*s/10000) for s <= 10000.
func minOut(amount *big.Int, slippageBps uint64) *big.Int {
	s := new(big.Int).SetUint64(slippageBps)

	q, r := new(big.Int).QuoRem(amount, bigDenominator, new(big.Int))
	cut := new(big.Int).Mul(q, s)
	cut.Add(cut, new(big.Int).Quo(r.Mul(r, s), bigDenominator))

	return new(big.Int).Sub(amount, cut)
}

// ParseAmount parses a base-10 or 0x-prefixed hexadecimal unsigned amount of
// at most 256 bits. Leading zeros are decimal. An empty string is the
// undefined amount.
func ParseAmount(s string) (math.Uint, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.Uint{}, nil
	}

	digits, base := s, 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		digits, base = s[2:], 16
	}
	if digits == "" || strings.IndexFunc(digits, func(r rune) bool { return !isDigit(r, base) }) >= 0 {
		return math.Uint{}, fmt.Errorf("invalid amount %q", s)
	}

	i, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return math.Uint{}, fmt.Errorf("invalid amount %q", s)
	}
	if i.BitLen() > 256 {
		return math.Uint{}, fmt.Errorf("invalid amount %q: exceeds 256 bits", s)
	}
	return math.NewUintFromBigInt(i), nil
}

func isDigit(r rune, base int) bool {
	switch {
	case r >= '0' && r <= '9':
		return true
	case base == 16:
		return (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
	default:
		return false
	}
}

// ParseBps parses a slippage in basis points and checks its range.
func ParseBps(s string) (uint64, error) {
	bps, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid slippage %q: %w", s, err)
	}
	if bps > Denominator {
		return 0, fmt.Errorf("%w: got %d", ErrSlippageOutOfRange, bps)
	}
	return bps, nil
}

// FormatPercent renders basis points as a percentage, e.g. 50 -> "0.50%".
func FormatPercent(bps uint64) string {
	return fmt.Sprintf("%d.%02d%%", bps/100, bps%100)
}
