package privkey

import (
	"bytes"
	"crypto/rsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rcauth-eu/tales-from-the-crypto/math"
	"github.com/rcauth-eu/tales-from-the-crypto/xorpad"
)

// buildWithTotient rebuilds key with d computed under the given
// convention, so detection has a known right answer
func buildWithTotient(key *rsa.PrivateKey, by Totient) *PrivateKey {
	p := new(big.Int).Set(key.Primes[0])
	q := new(big.Int).Set(key.Primes[1])
	var tot *big.Int
	switch by {
	case Euler:
		tot = math.EulerTotient(p, q)
	case Carmichael:
		tot = math.Carmichael(p, q)
	}
	d := new(big.Int).ModInverse(big.NewInt(int64(key.E)), tot)
	pm1 := new(big.Int).Sub(p, bigOne)
	qm1 := new(big.Int).Sub(q, bigOne)
	return &PrivateKey{
		Version: 0,
		N:       new(big.Int).Set(key.N),
		E:       big.NewInt(int64(key.E)),
		D:       d,
		P:       p,
		Q:       q,
		Dp:      new(big.Int).Mod(d, pm1),
		Dq:      new(big.Int).Mod(d, qm1),
		Qinv:    new(big.Int).ModInverse(q, p),
	}
}

var _ = Describe("Pipelines", func() {

	key := conventionalKey(testKeyLength)

	Context("Deconstructing", func() {
		It("Keeps only the public parameters and the first prime", func() {
			mk, err := Deconstruct(referencePEM(key))
			Expect(err).To(BeNil(), fmt.Sprintf("failed to deconstruct: %s", err))
			Expect(mk.N.Cmp(key.N)).To(Equal(0), "modulus must match")
			Expect(mk.E.Int64()).To(Equal(int64(key.E)), "exponent must match")
			Expect(mk.P.Cmp(key.Primes[0])).To(Equal(0), "the key's first prime is the one kept")
		})

		It("Accepts raw DER as well as the envelope", func() {
			mk, err := Deconstruct(referenceDER(key))
			Expect(err).To(BeNil(), fmt.Sprintf("failed to deconstruct raw DER: %s", err))
			Expect(mk.N.Cmp(key.N)).To(Equal(0), "modulus must match")
		})

		It("Detects a convention that reproduces d", func() {
			mk, err := Deconstruct(referencePEM(key))
			Expect(err).To(BeNil(), fmt.Sprintf("failed to deconstruct: %s", err))
			full, err := Derive(mk)
			Expect(err).To(BeNil(), fmt.Sprintf("failed to derive: %s", err))
			Expect(full.D.Cmp(key.D)).To(Equal(0), "the detected convention must reproduce d")
		})

		It("Produces a text form under half the size of the key", func() {
			ref := referencePEM(key)
			mk, _ := Deconstruct(ref)
			text, err := mk.EncodeText()
			Expect(err).To(BeNil(), fmt.Sprintf("failed to encode text form: %s", err))
			Expect(len(text) < len(ref)/2).To(BeTrue(),
				fmt.Sprintf("minimal set is %d bytes against a %d byte key", len(text), len(ref)))
		})
	})

	Context("Reconstructing", func() {
		It("Rebuilds the reference PEM byte for byte", func() {
			ref := referencePEM(key)
			mk, err := Deconstruct(ref)
			Expect(err).To(BeNil(), fmt.Sprintf("failed to deconstruct: %s", err))
			out, err := Reconstruct(mk)
			Expect(err).To(BeNil(), fmt.Sprintf("failed to reconstruct: %s", err))
			Expect(out).To(Equal(ref), "reconstructed PEM must be byte-identical to the reference")
		})

		It("Rebuilds the reference DER byte for byte", func() {
			der := referenceDER(key)
			mk, err := Deconstruct(der)
			Expect(err).To(BeNil(), fmt.Sprintf("failed to deconstruct: %s", err))
			out, err := ReconstructDER(mk)
			Expect(err).To(BeNil(), fmt.Sprintf("failed to reconstruct: %s", err))
			Expect(out).To(Equal(der), "reconstructed DER must be byte-identical to the reference")
		})

		It("Rebuilds the same bytes from the smaller prime", func() {
			ref := referencePEM(key)
			mk, _ := Deconstruct(ref)
			swapped := &MinimalKey{N: mk.N, E: mk.E, P: new(big.Int).Set(key.Primes[1]), By: mk.By}
			out, err := Reconstruct(swapped)
			Expect(err).To(BeNil(), fmt.Sprintf("failed to reconstruct from the smaller prime: %s", err))
			Expect(out).To(Equal(ref), "either prime must rebuild the conventional encoding")
		})

		It("Reproduces every derived field exactly", func() {
			want, _ := FromRSA(key)
			mk, err := Minimize(want)
			Expect(err).To(BeNil(), fmt.Sprintf("failed to minimize: %s", err))
			got, err := Derive(mk)
			Expect(err).To(BeNil(), fmt.Sprintf("failed to derive: %s", err))
			Expect(got.Equal(want)).To(BeTrue(), "derivation must reproduce q, d, dP, dQ and qInv")
		})
	})

	Context("Totient conventions", func() {
		for _, by := range []Totient{Euler, Carmichael} {
			by := by
			When(fmt.Sprintf("The source key's d follows the %s convention", by), func() {
				It("Regenerates the key from its minimal set", func() {
					k := buildWithTotient(key, by)
					mk, err := Minimize(k)
					Expect(err).To(BeNil(), fmt.Sprintf("failed to minimize: %s", err))
					got, err := Derive(mk)
					Expect(err).To(BeNil(), fmt.Sprintf("failed to derive: %s", err))
					Expect(got.Equal(k)).To(BeTrue(), fmt.Sprintf("the %s-form key must come back identical", by))
				})
			})
		}

		It("Rejects a private exponent canonical under neither convention", func() {
			k, _ := FromRSA(key)
			// congruent to d mod lambda, so it validates, but reduced under
			// neither totient, so no minimal set can reproduce it
			phi := math.EulerTotient(k.P, k.Q)
			k.D = new(big.Int).Add(k.D, phi)
			Expect(k.Validate()).To(Succeed(), "the shifted exponent still validates")
			_, err := Minimize(k)
			expectConsistency(err)
		})
	})

	Context("Failing loudly", func() {
		It("Refuses a prime that does not divide the modulus", func() {
			mk, _ := Deconstruct(referencePEM(key))
			bad := &MinimalKey{N: mk.N, E: mk.E, P: new(big.Int).Add(mk.P, big.NewInt(2)), By: mk.By}
			_, err := Reconstruct(bad)
			expectConsistency(err)
		})

		It("Refuses an exponent that shares a factor with the totient", func() {
			mk, _ := Deconstruct(referencePEM(key))
			// p-1 and q-1 are even, so e = 2 has no inverse
			bad := &MinimalKey{N: mk.N, E: big.NewInt(2), P: mk.P, By: mk.By}
			_, err := Reconstruct(bad)
			var aerr *math.ArithmeticError
			Expect(errors.As(err, &aerr)).To(BeTrue(), fmt.Sprintf("want an ArithmeticError, got %v", err))
		})

		It("Refuses a unit prime in a decoded key", func() {
			// n=7 e=5 d=3 with the factor pair {1, 7}: every integer is
			// positive and the prime product holds
			der := wrapSeq(
				tlv(tagInteger, 0x00),
				tlv(tagInteger, 0x07), tlv(tagInteger, 0x05), tlv(tagInteger, 0x03),
				tlv(tagInteger, 0x01), tlv(tagInteger, 0x07),
				tlv(tagInteger, 0x01), tlv(tagInteger, 0x01), tlv(tagInteger, 0x01),
			)
			_, err := Deconstruct(der)
			expectConsistency(err)
		})

		It("Refuses a minimal set missing a field", func() {
			out, err := Reconstruct(&MinimalKey{})
			expectEncodeError(err)
			Expect(out).To(BeNil())
		})

		It("Returns no bytes on failure", func() {
			mk, _ := Deconstruct(referencePEM(key))
			bad := &MinimalKey{N: mk.N, E: mk.E, P: new(big.Int).Add(mk.P, big.NewInt(2)), By: mk.By}
			out, err := Reconstruct(bad)
			Expect(err).NotTo(BeNil())
			Expect(out).To(BeNil(), "a failed reconstruction must not emit partial output")
		})
	})

	Context("Text exchange format", func() {
		It("Writes the classic three lines", func() {
			mk, _ := Deconstruct(referencePEM(key))
			text, err := mk.EncodeText()
			Expect(err).To(BeNil(), fmt.Sprintf("failed to encode: %s", err))
			s := string(text)
			Expect(strings.HasPrefix(s, "mod=")).To(BeTrue(), "first line must carry the modulus")
			Expect(s).To(ContainSubstring("\nexp="))
			Expect(s).To(ContainSubstring("\n p1="), "the p1 line keeps its classic leading space")
			Expect(strings.HasSuffix(s, "\n")).To(BeTrue())
		})

		It("Round-trips through the text form", func() {
			mk, _ := Deconstruct(referencePEM(key))
			text, _ := mk.EncodeText()
			got, err := DecodeText(text)
			Expect(err).To(BeNil(), fmt.Sprintf("failed to decode text form: %s", err))
			Expect(got.N.Cmp(mk.N)).To(Equal(0), "modulus must survive the text form")
			Expect(got.E.Cmp(mk.E)).To(Equal(0), "exponent must survive the text form")
			Expect(got.P.Cmp(mk.P)).To(Equal(0), "prime must survive the text form")
			Expect(got.By).To(Equal(Euler), "the text form carries no convention and defaults to Euler")
		})

		It("Accepts a p1 line without the leading space and ignores strangers", func() {
			got, err := DecodeText([]byte("note=hello\nmod=ff\nexp=17\np1=13\n"))
			Expect(err).To(BeNil(), fmt.Sprintf("failed to decode: %s", err))
			Expect(got.N.Int64()).To(Equal(int64(0xff)))
			Expect(got.E.Int64()).To(Equal(int64(17)))
			Expect(got.P.Int64()).To(Equal(int64(0x13)))
		})

		It("Refuses a missing line", func() {
			_, err := DecodeText([]byte("mod=ff\nexp=17\n"))
			expectDecodeKind(err, Schema)
		})

		It("Refuses a value that does not parse", func() {
			_, err := DecodeText([]byte("mod=pqr\nexp=17\n p1=13\n"))
			expectDecodeKind(err, Integer)
		})

		It("Refuses to write a half-built set", func() {
			half := &MinimalKey{N: big.NewInt(0xff), E: big.NewInt(17)}
			_, err := half.EncodeText()
			expectEncodeError(err)
		})
	})

	Context("Fixed-width prime serialization", func() {
		It("Left-pads to the requested width", func() {
			mk, _ := Deconstruct(referencePEM(key))
			out, err := mk.PrimeBytes(DefaultPrimeWidth)
			Expect(err).To(BeNil(), fmt.Sprintf("failed to serialize the prime: %s", err))
			Expect(len(out)).To(Equal(DefaultPrimeWidth))
			Expect(new(big.Int).SetBytes(out).Cmp(mk.P)).To(Equal(0), "the padded form must read back as the prime")
		})

		It("Refuses a width the prime does not fit", func() {
			mk, _ := Deconstruct(referencePEM(key))
			_, err := mk.PrimeBytes(16)
			expectEncodeError(err)
		})

		It("Masks and unmasks the prime against a fixed stream", func() {
			mk, _ := Deconstruct(referencePEM(key))
			secret, err := mk.PrimeBytes(DefaultPrimeWidth)
			Expect(err).To(BeNil(), fmt.Sprintf("failed to serialize the prime: %s", err))

			stream := make([]byte, DefaultPrimeWidth)
			for i := range stream {
				stream[i] = byte(i * 7)
			}
			masked, err := xorpad.Mask(secret, xorpad.Pad{Data: stream})
			Expect(err).To(BeNil(), fmt.Sprintf("failed to mask: %s", err))
			Expect(bytes.Equal(masked, secret)).To(BeFalse(), "the masked prime must not equal the plain prime")

			recovered, err := xorpad.Unmask(masked, xorpad.Pad{Data: stream})
			Expect(err).To(BeNil(), fmt.Sprintf("failed to unmask: %s", err))
			Expect(new(big.Int).SetBytes(recovered).Cmp(mk.P)).To(Equal(0), "the recovered value must equal the prime")
		})
	})
})
