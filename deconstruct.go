package privkey

import (
	"math/big"

	"github.com/rcauth-eu/tales-from-the-crypto/math"
)

// Deconstruct reduces an encoded private key to its minimal
// reconstruction set: decode, validate, minimize. The full key with its
// derived secret fields does not outlive the call.
func Deconstruct(data []byte) (*MinimalKey, error) {
	k, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return Minimize(k)
}

// Minimize validates k and extracts its minimal set. The key's first
// prime is the one kept, whichever of the two that is. Every field of
// the result is a copy, so the set shares nothing with the source key.
func Minimize(k *PrivateKey) (*MinimalKey, error) {
	if err := k.Validate(); err != nil {
		return nil, err
	}
	by, err := detectTotient(k)
	if err != nil {
		return nil, err
	}
	return &MinimalKey{
		N:  new(big.Int).Set(k.N),
		E:  new(big.Int).Set(k.E),
		P:  new(big.Int).Set(k.P),
		By: by,
	}, nil
}

// detectTotient finds the convention under which the key's d was
// computed, so reconstruction regenerates the same d. When the two
// conventions happen to coincide for this key the Euler form is
// reported; deriving under either gives the same result then. A d that
// is canonical under neither convention cannot be reproduced from the
// minimal set, so the key is rejected rather than quietly reencoded as
// something else.
func detectTotient(k *PrivateKey) (Totient, error) {
	if d, err := math.Inverse(k.E, math.EulerTotient(k.P, k.Q)); err == nil && d.Cmp(k.D) == 0 {
		return Euler, nil
	}
	if d, err := math.Inverse(k.E, math.Carmichael(k.P, k.Q)); err == nil && d.Cmp(k.D) == 0 {
		return Carmichael, nil
	}
	return 0, &ConsistencyError{Detail: "private exponent is canonical under neither totient convention"}
}
