package privkey

import (
	"crypto/rsa"
	"fmt"
	"math/big"

	"github.com/rcauth-eu/tales-from-the-crypto/math"
)

var (
	bigZero = big.NewInt(0)
	bigOne  = big.NewInt(1)
)

// A PrivateKey holds the nine numbers of a two-prime PKCS#1 RSA private
// key. It is a read-only snapshot: the pipelines never mutate one after
// construction, so a decoded key may be shared freely.
//
// P conventionally holds the larger prime, which is the order the
// standard tools emit. Decoding preserves whatever order the input had;
// reconstruction restores the convention.
type PrivateKey struct {
	Version int
	N       *big.Int // modulus, the product of the two primes
	E       *big.Int // public exponent
	D       *big.Int // private exponent
	P       *big.Int // first prime factor
	Q       *big.Int // second prime factor
	Dp      *big.Int // d mod (p-1)
	Dq      *big.Int // d mod (q-1)
	Qinv    *big.Int // q⁻¹ mod p
}

// A PublicKey holds the shareable half of a key.
type PublicKey struct {
	N *big.Int // modulus
	E *big.Int // public exponent
}

// Public returns a copy of the key's public half.
func (k *PrivateKey) Public() *PublicKey {
	return &PublicKey{
		N: new(big.Int).Set(k.N),
		E: new(big.Int).Set(k.E),
	}
}

// Validate checks that the key's numbers satisfy the relations that
// define the PKCS#1 fields, from the prime product up to the CRT
// congruences. Primality itself is not checked; the key's provenance is
// trusted for that. The first violated relation is reported as a
// *ConsistencyError.
func (k *PrivateKey) Validate() error {
	fields := []struct {
		name string
		v    *big.Int
	}{
		{"modulus", k.N},
		{"public exponent", k.E},
		{"private exponent", k.D},
		{"first prime", k.P},
		{"second prime", k.Q},
		{"first CRT exponent", k.Dp},
		{"second CRT exponent", k.Dq},
		{"CRT coefficient", k.Qinv},
	}
	for _, f := range fields {
		if f.v == nil || f.v.Cmp(bigZero) <= 0 {
			return &ConsistencyError{Detail: f.name + " is missing or not positive"}
		}
	}
	// a unit in a prime slot would zero the totients below
	if k.P.Cmp(bigOne) <= 0 || k.Q.Cmp(bigOne) <= 0 {
		return &ConsistencyError{Detail: "prime factor is less than two"}
	}
	if k.Version != 0 {
		return &ConsistencyError{Detail: "version is not 0"}
	}
	if pq := new(big.Int).Mul(k.P, k.Q); pq.Cmp(k.N) != 0 {
		return &ConsistencyError{Detail: "prime product does not equal the modulus"}
	}
	// d e ≡ 1 (mod λ(n)); λ divides the Euler totient as well, so a d
	// computed under either convention passes
	de := new(big.Int).Mul(k.D, k.E)
	if !math.CongruentModN(de, bigOne, math.Carmichael(k.P, k.Q)) {
		return &ConsistencyError{Detail: "public and private exponents are not inverses"}
	}
	pm1 := new(big.Int).Sub(k.P, bigOne)
	if dp := new(big.Int).Mod(k.D, pm1); dp.Cmp(k.Dp) != 0 {
		return &ConsistencyError{Detail: "first CRT exponent does not equal d mod p-1"}
	}
	qm1 := new(big.Int).Sub(k.Q, bigOne)
	if dq := new(big.Int).Mod(k.D, qm1); dq.Cmp(k.Dq) != 0 {
		return &ConsistencyError{Detail: "second CRT exponent does not equal d mod q-1"}
	}
	if k.Qinv.Cmp(k.P) >= 0 {
		return &ConsistencyError{Detail: "CRT coefficient is not reduced modulo p"}
	}
	qq := new(big.Int).Mul(k.Qinv, k.Q)
	if !math.CongruentModN(qq, bigOne, k.P) {
		return &ConsistencyError{Detail: "CRT coefficient is not the inverse of q modulo p"}
	}
	return nil
}

// FromRSA deep-copies a stdlib two-prime key into the package model,
// recomputing the CRT values from d and the primes so the result is
// canonical regardless of what the source had cached.
func FromRSA(priv *rsa.PrivateKey) (*PrivateKey, error) {
	if len(priv.Primes) != 2 {
		return nil, &ConsistencyError{Detail: "key does not have exactly two prime factors"}
	}
	p := new(big.Int).Set(priv.Primes[0])
	q := new(big.Int).Set(priv.Primes[1])
	d := new(big.Int).Set(priv.D)
	qinv, err := math.Inverse(q, p)
	if err != nil {
		return nil, err
	}
	pm1 := new(big.Int).Sub(p, bigOne)
	qm1 := new(big.Int).Sub(q, bigOne)
	return &PrivateKey{
		Version: 0,
		N:       new(big.Int).Set(priv.N),
		E:       big.NewInt(int64(priv.E)),
		D:       d,
		P:       p,
		Q:       q,
		Dp:      new(big.Int).Mod(d, pm1),
		Dq:      new(big.Int).Mod(d, qm1),
		Qinv:    qinv,
	}, nil
}

// RSA converts the key back to the stdlib type, precomputing the CRT
// values so the result is immediately usable for signing. Every field is
// copied; nothing aliases the receiver.
func (k *PrivateKey) RSA() (*rsa.PrivateKey, error) {
	if !k.E.IsInt64() || k.E.Int64() != int64(int(k.E.Int64())) {
		return nil, fmt.Errorf("public exponent does not fit the stdlib int type")
	}
	priv := &rsa.PrivateKey{
		PublicKey: rsa.PublicKey{
			N: new(big.Int).Set(k.N),
			E: int(k.E.Int64()),
		},
		D: new(big.Int).Set(k.D),
		Primes: []*big.Int{
			new(big.Int).Set(k.P),
			new(big.Int).Set(k.Q),
		},
	}
	priv.Precompute()
	return priv, nil
}

// Equal reports whether two keys hold identical numbers.
func (k *PrivateKey) Equal(other *PrivateKey) bool {
	if other == nil {
		return false
	}
	return k.Version == other.Version &&
		bigIntEqual(k.N, other.N) &&
		bigIntEqual(k.E, other.E) &&
		bigIntEqual(k.D, other.D) &&
		bigIntEqual(k.P, other.P) &&
		bigIntEqual(k.Q, other.Q) &&
		bigIntEqual(k.Dp, other.Dp) &&
		bigIntEqual(k.Dq, other.Dq) &&
		bigIntEqual(k.Qinv, other.Qinv)
}

// Equal reports whether two public keys hold identical numbers.
func (pub *PublicKey) Equal(other *PublicKey) bool {
	if other == nil {
		return false
	}
	return bigIntEqual(pub.N, other.N) && bigIntEqual(pub.E, other.E)
}

func bigIntEqual(a, b *big.Int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Cmp(b) == 0
}
