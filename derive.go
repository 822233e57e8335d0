package privkey

import (
	"fmt"
	"math/big"

	"github.com/rcauth-eu/tales-from-the-crypto/math"
)

// Totient selects the modulus under which the private exponent is
// computed. The classic tools and old OpenSSL use the Euler totient;
// FIPS 186-5 era generators use the Carmichael function. The two produce
// different d values for the same key pair, so reconstruction has to
// know which one the original key followed.
type Totient int

const (
	Euler      Totient = iota // d = e⁻¹ mod (p-1)(q-1)
	Carmichael                // d = e⁻¹ mod lcm(p-1, q-1)
)

func (t Totient) String() string {
	switch t {
	case Euler:
		return "euler"
	case Carmichael:
		return "carmichael"
	default:
		return fmt.Sprintf("Totient(%d)", int(t))
	}
}

// Derive builds the full private key determined by the minimal set mk.
// The second prime is recovered by exact division of the modulus and d
// by inverting e under the set's totient convention; the CRT values
// follow from d and the primes. The primes land in the conventional
// order, larger first, whichever one the set carried. The result is
// validated before it is returned; a set whose numbers cannot form a
// consistent key produces an error and no key.
func Derive(mk *MinimalKey) (*PrivateKey, error) {
	if mk.N == nil || mk.E == nil || mk.P == nil {
		return nil, &EncodeError{Detail: "minimal set is missing a field"}
	}
	q, ok := math.DivExact(mk.N, mk.P)
	if !ok {
		return nil, &ConsistencyError{Detail: "prime does not divide the modulus"}
	}
	if q.Cmp(bigOne) <= 0 {
		return nil, &ConsistencyError{Detail: "modulus is not a proper multiple of the prime"}
	}
	p := new(big.Int).Set(mk.P)
	if p.Cmp(q) < 0 {
		p, q = q, p
	}

	var tot *big.Int
	switch mk.By {
	case Euler:
		tot = math.EulerTotient(p, q)
	case Carmichael:
		tot = math.Carmichael(p, q)
	default:
		return nil, fmt.Errorf("unrecognized totient convention: %v", mk.By)
	}
	d, err := math.Inverse(mk.E, tot)
	if err != nil {
		return nil, err
	}
	qinv, err := math.Inverse(q, p)
	if err != nil {
		return nil, err
	}
	pm1 := new(big.Int).Sub(p, bigOne)
	qm1 := new(big.Int).Sub(q, bigOne)

	k := &PrivateKey{
		Version: 0,
		N:       new(big.Int).Set(mk.N),
		E:       new(big.Int).Set(mk.E),
		D:       d,
		P:       p,
		Q:       q,
		Dp:      new(big.Int).Mod(d, pm1),
		Dq:      new(big.Int).Mod(d, qm1),
		Qinv:    qinv,
	}
	if err := k.Validate(); err != nil {
		return nil, err
	}
	return k, nil
}
