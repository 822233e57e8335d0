/*
Package privkey deconstructs RSA private keys into a minimal set of
numbers and reconstructs byte-identical keys from that set.

# Overview

An unencrypted PKCS#1 private key stores nine integers, but most of them
are redundant: the modulus n, the public exponent e and one prime factor
p already determine everything else. The second prime is n/p and the
private exponent is the inverse of e under the key pair's totient; the
three CRT helper values follow from d and the primes. This package
exploits that redundancy in both directions.

Deconstruct reduces an encoded key to the minimal set:

	mk, err := privkey.Deconstruct(pemBytes)
	if err != nil {
		return err
	}

Reconstruct runs the other way and regenerates the full encoding:

	out, err := privkey.Reconstruct(mk)
	if err != nil {
		return err
	}

For a key whose primes are in the conventional larger-first order, out
is byte for byte the encoding that was deconstructed, envelope included.
That exactness is the point: the minimal set can stand in for the full
key in transit or at rest, and nobody downstream can tell the rebuilt
key from the original file.

# Totient conventions

Two generations of tooling disagree about the private exponent. Classic
generators compute d as the inverse of e modulo (p-1)(q-1), the Euler
totient; newer ones follow FIPS 186-5 and use lcm(p-1, q-1), the
Carmichael function. Both d values work, but they differ, so rebuilding
the exact original requires knowing which convention it followed.
Deconstruct detects the convention from the key itself and records it in
the minimal set; Derive honors it. A private exponent canonical under
neither convention is rejected outright, because no minimal set could
reproduce it.

# Transporting the secret prime

Within the minimal set only the prime is secret; n and e are public by
definition. PrimeBytes serializes the prime at a fixed width so it can
be handed to the xorpad package, which masks it against pre-shared pads
of random data for transport over an untrusted channel. EncodeText
writes the classic three-line exchange format the surrounding tooling
reads and writes.

# Strictness

The codec is deliberately strict. Envelope labels must match and every
length must use its shortest form; integer bodies must be minimal and
non-negative. Malformed input is refused with a *DecodeError that
says which layer gave up and where. Keys whose numbers do not fit
together are refused with a *ConsistencyError naming the violated
relation. Error text never contains key material.

# Sources

	[1] https://datatracker.ietf.org/doc/html/rfc8017
	[2] https://datatracker.ietf.org/doc/html/rfc7468
*/
package privkey

// TODO: runnable Example functions for the two pipelines
