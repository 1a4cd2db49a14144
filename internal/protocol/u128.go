package protocol

import (
	"fmt"
	"math/big"
)

// U128 is a 128-bit unsigned integer as used by the wire protocol for
// secrets and challenge moduli. It is carried on the wire as a bare
// (unquoted) decimal JSON number, never as a string, matching the
// source protocol's u128 encoding.
type U128 struct {
	v *big.Int
}

// NewU128 wraps a non-negative big.Int as a U128. The caller retains
// ownership of v; NewU128 does not copy it.
func NewU128(v *big.Int) U128 {
	return U128{v: v}
}

// U128FromUint64 builds a U128 from a plain uint64 secret or modulus.
func U128FromUint64(v uint64) U128 {
	return U128{v: new(big.Int).SetUint64(v)}
}

// Int returns the underlying big.Int, never nil.
func (u U128) Int() *big.Int {
	if u.v == nil {
		return new(big.Int)
	}
	return u.v
}

// String renders the value in base 10 with no sign, no leading zeros
// (except the single digit "0") and no whitespace, per the challenge law.
func (u U128) String() string {
	return u.Int().String()
}

func (u U128) MarshalJSON() ([]byte, error) {
	return []byte(u.String()), nil
}

func (u *U128) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return fmt.Errorf("protocol: invalid u128 literal %q", s)
	}
	if n.Sign() < 0 {
		return fmt.Errorf("protocol: u128 literal %q must be non-negative", s)
	}
	u.v = n
	return nil
}
