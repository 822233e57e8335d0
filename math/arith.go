// Package math implements the exact arbitrary-precision arithmetic the key
// pipelines are built on. Every function is pure: operands are never
// modified and results are freshly allocated, so callers may share values
// between concurrent pipeline runs without locking.
package math

import (
	"math/big"
)

var bigOne = big.NewInt(1)

// An ArithmeticError reports an operation with no exact result, such as a
// modular inverse that does not exist. It deliberately carries no operand
// values: the operands are usually key material.
type ArithmeticError struct {
	Op string
}

func (e *ArithmeticError) Error() string {
	return "math: " + e.Op
}

// DivExact returns n/p when p divides n exactly. The flag is false when
// there is a remainder or p is not positive; the quotient is nil then.
func DivExact(n, p *big.Int) (*big.Int, bool) {
	if p.Sign() <= 0 {
		return nil, false
	}
	q, r := new(big.Int).QuoRem(n, p, new(big.Int))
	if r.Sign() != 0 {
		return nil, false
	}
	return q, true
}

// Inverse returns k⁻¹ mod m, computed by the extended Euclidean algorithm
// underneath big.Int. If k and m share a factor no inverse exists and an
// *ArithmeticError is returned; a modulus of one or less gets the same
// treatment, since its ring has no useful inverses.
func Inverse(k, m *big.Int) (*big.Int, error) {
	if m.Cmp(bigOne) <= 0 {
		return nil, &ArithmeticError{Op: "no inverse modulo one or less"}
	}
	inv := new(big.Int).ModInverse(k, m)
	if inv == nil {
		return nil, &ArithmeticError{Op: "no modular inverse, operands share a factor"}
	}
	return inv, nil
}

// LCM returns the least common multiple of a and b, or zero if either is
// zero.
func LCM(a, b *big.Int) *big.Int {
	if a.Sign() == 0 || b.Sign() == 0 {
		return new(big.Int)
	}
	g := new(big.Int).GCD(nil, nil, a, b)
	l := new(big.Int).Quo(a, g)
	return l.Mul(l, b)
}

// EulerTotient returns φ(pq) = (p-1)(q-1) for distinct primes p and q.
func EulerTotient(p, q *big.Int) *big.Int {
	pm1 := new(big.Int).Sub(p, bigOne)
	qm1 := new(big.Int).Sub(q, bigOne)
	return pm1.Mul(pm1, qm1)
}

// Carmichael returns λ(pq) = lcm(p-1, q-1) for distinct primes p and q.
func Carmichael(p, q *big.Int) *big.Int {
	pm1 := new(big.Int).Sub(p, bigOne)
	qm1 := new(big.Int).Sub(q, bigOne)
	return LCM(pm1, qm1)
}

// CongruentModN reports whether a ≡ b (mod N), that is, whether N divides
// (a - b). Only zero is divisible by a zero modulus, so that case is plain
// equality.
func CongruentModN(a, b, N *big.Int) bool {
	if N.Sign() == 0 {
		return a.Cmp(b) == 0
	}
	aModN := new(big.Int).Mod(a, N)
	bModN := new(big.Int).Mod(b, N)

	return aModN.Cmp(bModN) == 0
}
