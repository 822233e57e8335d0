package privkey

import (
	"fmt"
	"math/big"
	"strings"
)

// DefaultPrimeWidth is the fixed byte width used when serializing the
// secret prime for transport. 256 bytes holds the prime factors of keys
// up to 4096 bits.
const DefaultPrimeWidth = 256

// A MinimalKey is the smallest set of numbers that still determines a
// full private key: the two public parameters and one secret prime, plus
// the totient convention the source key's d followed. Its shape is a
// contract between Deconstruct and Reconstruct, not an external
// standard.
type MinimalKey struct {
	N  *big.Int // public modulus
	E  *big.Int // public exponent
	P  *big.Int // one secret prime factor of N
	By Totient  // convention under which d is regenerated
}

// EncodeText renders the set in the line format the exchange tools
// speak: a lowercase hex modulus, a decimal exponent, and a lowercase
// hex prime. The p1 line keeps its traditional leading space.
func (mk *MinimalKey) EncodeText() ([]byte, error) {
	if mk.N == nil || mk.E == nil || mk.P == nil {
		return nil, &EncodeError{Detail: "minimal set is missing a field"}
	}
	return []byte(fmt.Sprintf("mod=%x\nexp=%d\n p1=%x\n", mk.N, mk.E, mk.P)), nil
}

// DecodeText parses the mod=, exp= and p1= lines written by EncodeText.
// Lines are trimmed before matching, so the leading space on the p1 line
// is accepted but not required, and unrecognized lines are skipped. The
// convention is not part of the format; decoded sets default to Euler,
// which is what the classic tools assume.
func DecodeText(data []byte) (*MinimalKey, error) {
	mk := &MinimalKey{By: Euler}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "mod="):
			v, ok := parseTextInt(line[4:], 16)
			if !ok {
				return nil, &DecodeError{Kind: Integer, Detail: "mod= value is not a hexadecimal integer"}
			}
			mk.N = v
		case strings.HasPrefix(line, "exp="):
			v, ok := parseTextInt(line[4:], 10)
			if !ok {
				return nil, &DecodeError{Kind: Integer, Detail: "exp= value is not a decimal integer"}
			}
			mk.E = v
		case strings.HasPrefix(line, "p1="):
			v, ok := parseTextInt(line[3:], 16)
			if !ok {
				return nil, &DecodeError{Kind: Integer, Detail: "p1= value is not a hexadecimal integer"}
			}
			mk.P = v
		}
	}
	if mk.N == nil {
		return nil, &DecodeError{Kind: Schema, Detail: "missing mod= line"}
	}
	if mk.E == nil {
		return nil, &DecodeError{Kind: Schema, Detail: "missing exp= line"}
	}
	if mk.P == nil {
		return nil, &DecodeError{Kind: Schema, Detail: "missing p1= line"}
	}
	return mk, nil
}

// PrimeBytes serializes the secret prime as a fixed-width big-endian
// string, left padded with zeros, ready for a masking transport. The
// inverse is big.Int.SetBytes on the receiving side.
func (mk *MinimalKey) PrimeBytes(width int) ([]byte, error) {
	if mk.P == nil {
		return nil, &EncodeError{Detail: "minimal set is missing a field"}
	}
	if width <= 0 || mk.P.BitLen() > width*8 {
		return nil, &EncodeError{Detail: "prime does not fit the requested width"}
	}
	out := make([]byte, width)
	mk.P.FillBytes(out)
	return out, nil
}

// parseTextInt parses a non-negative integer in the given base.
func parseTextInt(s string, base int) (*big.Int, bool) {
	v, ok := new(big.Int).SetString(s, base)
	if !ok || v.Sign() < 0 {
		return nil, false
	}
	return v, true
}
