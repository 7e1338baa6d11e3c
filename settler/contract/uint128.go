package contract

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"

	"github.com/shopspring/decimal"
)

// maxUint128 is 2^128 - 1
var maxUint128 = decimal.NewFromBigInt(
	new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1)),
	0,
)

// Uint128 is an unsigned 128 bit token amount. It is serialized as a decimal string,
// the same way the chain encodes amounts in messages and query responses.
//
// The zero value is a valid amount of 0.
type Uint128 struct {
	value decimal.Decimal
}

// NewUint128 creates a Uint128 from a uint64
func NewUint128(v uint64) Uint128 {
	return Uint128{value: decimal.NewFromBigInt(new(big.Int).SetUint64(v), 0)}
}

// ZeroUint128 returns an amount of 0
func ZeroUint128() Uint128 {
	return Uint128{value: decimal.Zero}
}

// ParseUint128 parses a base 10 integer string into a Uint128.
// Negative values, fractions and values above 2^128-1 are rejected.
func ParseUint128(s string) (Uint128, error) {
	if s == "" {
		return Uint128{}, fmt.Errorf("empty amount")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Uint128{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return fromDecimal(d)
}

// MustParseUint128 is ParseUint128 for constants; it panics on invalid input.
func MustParseUint128(s string) Uint128 {
	u, err := ParseUint128(s)
	if err != nil {
		panic(err)
	}
	return u
}

func fromDecimal(d decimal.Decimal) (Uint128, error) {
	if !d.IsInteger() {
		return Uint128{}, fmt.Errorf("amount %s is not an integer", d.String())
	}
	if d.IsNegative() {
		return Uint128{}, fmt.Errorf("amount %s is negative", d.String())
	}
	if d.GreaterThan(maxUint128) {
		return Uint128{}, fmt.Errorf("amount %s overflows uint128", d.String())
	}
	return Uint128{value: d}, nil
}

func (u Uint128) String() string {
	return u.value.String()
}

// BigInt returns the amount as a big.Int
func (u Uint128) BigInt() *big.Int {
	return u.value.BigInt()
}

func (u Uint128) IsZero() bool {
	return u.value.IsZero()
}

func (u Uint128) Cmp(other Uint128) int {
	return u.value.Cmp(other.value)
}

func (u Uint128) Equal(other Uint128) bool {
	return u.value.Equal(other.value)
}

func (u Uint128) LessThan(other Uint128) bool {
	return u.value.LessThan(other.value)
}

func (u Uint128) GreaterThan(other Uint128) bool {
	return u.value.GreaterThan(other.value)
}

// CheckedAdd returns u + other or an error if the sum overflows
func (u Uint128) CheckedAdd(other Uint128) (Uint128, error) {
	sum, err := fromDecimal(u.value.Add(other.value))
	if err != nil {
		return Uint128{}, fmt.Errorf("cannot add %s to %s: %w", other, u, err)
	}
	return sum, nil
}

// CheckedSub returns u - other or an error if the result would be negative
func (u Uint128) CheckedSub(other Uint128) (Uint128, error) {
	if u.LessThan(other) {
		return Uint128{}, fmt.Errorf("cannot subtract %s from %s: underflow", other, u)
	}
	return Uint128{value: u.value.Sub(other.value)}, nil
}

// MulRatio returns floor(u * numerator / denominator).
// The product is computed exactly before the division so no precision is lost.
func (u Uint128) MulRatio(numerator, denominator uint64) (Uint128, error) {
	if denominator == 0 {
		return Uint128{}, fmt.Errorf("ratio denominator is zero")
	}
	num := decimal.NewFromBigInt(new(big.Int).SetUint64(numerator), 0)
	den := decimal.NewFromBigInt(new(big.Int).SetUint64(denominator), 0)
	quotient, _ := u.value.Mul(num).QuoRem(den, 0)
	return fromDecimal(quotient)
}

// Half returns floor(u / 2)
func (u Uint128) Half() Uint128 {
	// ratio 1/2 never grows the amount, so the error path is unreachable
	half, _ := u.MulRatio(1, 2)
	return half
}

func (u Uint128) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.value.String())
}

func (u *Uint128) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// some endpoints return bare numbers
		var n json.Number
		if errNum := json.Unmarshal(data, &n); errNum != nil {
			return fmt.Errorf("amount must be a string: %w", err)
		}
		s = n.String()
	}
	parsed, err := ParseUint128(s)
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// Uint128Ptr is a helper for optional amounts
func Uint128Ptr(u Uint128) *Uint128 {
	return &u
}

// Uint64 returns the amount as uint64, failing when it does not fit
func (u Uint128) Uint64() (uint64, error) {
	return strconv.ParseUint(u.value.String(), 10, 64)
}
