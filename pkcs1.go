package privkey

import (
	"bytes"
	"fmt"
	"math/big"
)

// DER body of OID 1.2.840.113549.1.1.1 (rsaEncryption), the algorithm
// identifier SubjectPublicKeyInfo carries for RSA keys.
var oidRSAEncryption = []byte{0x2a, 0x86, 0x48, 0x86, 0xf7, 0x0d, 0x01, 0x01, 0x01}

// Decode parses an unencrypted two-prime RSA private key from data,
// which may be an RSA PRIVATE KEY envelope or raw DER. The result is a
// structural decode only; pipelines call Validate before trusting the
// numbers.
//
// TODO: accept the PKCS#8 private key wrapping some tools emit.
func Decode(data []byte) (*PrivateKey, error) {
	der := data
	if IsEnvelope(data) {
		var label string
		var err error
		der, label, err = StripEnvelope(data)
		if err != nil {
			return nil, err
		}
		if label != TypePrivateKey {
			return nil, &DecodeError{Kind: Envelope,
				Detail: fmt.Sprintf("unexpected label %q, want %q", label, TypePrivateKey)}
		}
	}
	return parsePrivateKey(der)
}

// DecodePublic parses an RSA public key, accepting both the bare PKCS#1
// form and the SubjectPublicKeyInfo wrapping, enveloped or raw DER.
func DecodePublic(data []byte) (*PublicKey, error) {
	der := data
	if IsEnvelope(data) {
		var label string
		var err error
		der, label, err = StripEnvelope(data)
		if err != nil {
			return nil, err
		}
		if label != TypePublicKey && label != TypePublicKeyInfo {
			return nil, &DecodeError{Kind: Envelope,
				Detail: fmt.Sprintf("unexpected label %q, want a public key label", label)}
		}
	}
	return parsePublicKey(der)
}

// parsePrivateKey walks the nine-integer PKCS#1 private key sequence.
func parsePrivateKey(der []byte) (*PrivateKey, error) {
	outer := newDERReader(der)
	seq, err := outer.readSequence()
	if err != nil {
		return nil, err
	}
	if err := outer.end(); err != nil {
		return nil, err
	}
	version, err := seq.readInteger()
	if err != nil {
		return nil, err
	}
	if version.Cmp(bigOne) == 0 {
		return nil, &DecodeError{Kind: Schema, Detail: "multi-prime (version 1) keys are not supported"}
	}
	if version.Sign() != 0 {
		return nil, &DecodeError{Kind: Schema, Detail: "unrecognized key version"}
	}
	k := &PrivateKey{Version: 0}
	for _, field := range []**big.Int{&k.N, &k.E, &k.D, &k.P, &k.Q, &k.Dp, &k.Dq, &k.Qinv} {
		if seq.empty() {
			return nil, &DecodeError{Kind: Schema, Offset: seq.offset(), Detail: "too few fields in key sequence"}
		}
		if *field, err = seq.readInteger(); err != nil {
			return nil, err
		}
	}
	if !seq.empty() {
		return nil, &DecodeError{Kind: Schema, Offset: seq.offset(), Detail: "more than nine fields in key sequence"}
	}
	return k, nil
}

// parsePublicKey tells the two public key schemas apart by the tag of
// the outer sequence's first element: a nested SEQUENCE means an
// algorithm identifier, so SubjectPublicKeyInfo.
func parsePublicKey(der []byte) (*PublicKey, error) {
	outer := newDERReader(der)
	seq, err := outer.readSequence()
	if err != nil {
		return nil, err
	}
	if err := outer.end(); err != nil {
		return nil, err
	}
	if seq.peekTag() == tagSequence {
		return parsePublicKeyInfo(seq)
	}
	return parseBarePublicKey(seq)
}

// parseBarePublicKey reads the two-integer PKCS#1 public key body.
func parseBarePublicKey(seq *derReader) (*PublicKey, error) {
	pub := &PublicKey{}
	var err error
	for _, field := range []**big.Int{&pub.N, &pub.E} {
		if seq.empty() {
			return nil, &DecodeError{Kind: Schema, Offset: seq.offset(), Detail: "too few fields in public key sequence"}
		}
		if *field, err = seq.readInteger(); err != nil {
			return nil, err
		}
	}
	if !seq.empty() {
		return nil, &DecodeError{Kind: Schema, Offset: seq.offset(), Detail: "more than two fields in public key sequence"}
	}
	return pub, nil
}

// parsePublicKeyInfo unwraps a SubjectPublicKeyInfo body: an algorithm
// identifier naming rsaEncryption with NULL parameters, then a BIT
// STRING holding the nested PKCS#1 encoding.
func parsePublicKeyInfo(seq *derReader) (*PublicKey, error) {
	alg, err := seq.readSequence()
	if err != nil {
		return nil, err
	}
	oid, err := alg.readObjectID()
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(oid, oidRSAEncryption) {
		return nil, &DecodeError{Kind: Schema, Detail: "algorithm is not rsaEncryption"}
	}
	if err := alg.readNull(); err != nil {
		return nil, err
	}
	if !alg.empty() {
		return nil, &DecodeError{Kind: Schema, Offset: alg.offset(), Detail: "trailing fields in algorithm identifier"}
	}
	wrapped, err := seq.readBitString()
	if err != nil {
		return nil, err
	}
	if !seq.empty() {
		return nil, &DecodeError{Kind: Schema, Offset: seq.offset(), Detail: "trailing fields after subject public key"}
	}
	// offsets inside the bit string restart at zero
	inner := newDERReader(wrapped)
	pubSeq, err := inner.readSequence()
	if err != nil {
		return nil, err
	}
	if err := inner.end(); err != nil {
		return nil, err
	}
	return parseBarePublicKey(pubSeq)
}

// EncodeDER renders the key as a PKCS#1 structure with minimal integer
// and length encodings. Nothing is written on error.
func (k *PrivateKey) EncodeDER() ([]byte, error) {
	if k.Version != 0 {
		return nil, &EncodeError{Detail: "unsupported key version"}
	}
	var body []byte
	var err error
	for _, v := range []*big.Int{bigZero, k.N, k.E, k.D, k.P, k.Q, k.Dp, k.Dq, k.Qinv} {
		if body, err = appendInteger(body, v); err != nil {
			return nil, err
		}
	}
	return appendSequence(nil, body), nil
}

// EncodePEM renders the key as DER wrapped in the RSA PRIVATE KEY
// envelope.
func (k *PrivateKey) EncodePEM() ([]byte, error) {
	der, err := k.EncodeDER()
	if err != nil {
		return nil, err
	}
	return WrapEnvelope(TypePrivateKey, der), nil
}

// EncodeDER renders the public key in the bare PKCS#1 form.
func (pub *PublicKey) EncodeDER() ([]byte, error) {
	var body []byte
	var err error
	for _, v := range []*big.Int{pub.N, pub.E} {
		if body, err = appendInteger(body, v); err != nil {
			return nil, err
		}
	}
	return appendSequence(nil, body), nil
}

// EncodePEM renders the public key as DER wrapped in the RSA PUBLIC KEY
// envelope.
func (pub *PublicKey) EncodePEM() ([]byte, error) {
	der, err := pub.EncodeDER()
	if err != nil {
		return nil, err
	}
	return WrapEnvelope(TypePublicKey, der), nil
}
