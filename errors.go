package privkey

import (
	"fmt"
)

// DecodeKind classifies where in the layered decoding an input was
// rejected, from the outer textual envelope down to individual integer
// fields.
type DecodeKind int

const (
	// Envelope faults concern the textual wrapping: header and footer
	// lines, their labels, or the base64 body.
	Envelope DecodeKind = iota
	// Framing faults are tag and length structure problems, such as a
	// length that claims more bytes than remain.
	Framing
	// Length faults are length encodings that are valid framing but not
	// the shortest form, which the codec refuses.
	Length
	// Schema faults are well-formed elements whose type, order, or count
	// does not fit the key layout.
	Schema
	// Integer faults are integer bodies that are empty, negative, or
	// padded with superfluous leading zeros.
	Integer
)

func (k DecodeKind) String() string {
	switch k {
	case Envelope:
		return "envelope"
	case Framing:
		return "framing"
	case Length:
		return "length"
	case Schema:
		return "schema"
	case Integer:
		return "integer"
	default:
		return fmt.Sprintf("DecodeKind(%d)", int(k))
	}
}

// A DecodeError reports input bytes the codec refuses to accept. Offset
// is the absolute byte position at which decoding stopped, when one is
// meaningful; envelope and text faults are line oriented and leave it
// zero. The Detail never includes input bytes, which may be key material.
type DecodeError struct {
	Kind   DecodeKind
	Offset int
	Detail string
}

func (e *DecodeError) Error() string {
	if e.Offset > 0 {
		return fmt.Sprintf("privkey: %s fault at byte %d: %s", e.Kind, e.Offset, e.Detail)
	}
	return fmt.Sprintf("privkey: %s fault: %s", e.Kind, e.Detail)
}

// An EncodeError reports an in-memory value that cannot be rendered in
// the wire format, such as a missing or negative integer field. Nothing
// is written when one occurs.
type EncodeError struct {
	Detail string
}

func (e *EncodeError) Error() string {
	return "privkey: cannot encode: " + e.Detail
}

// A ConsistencyError reports key material whose numbers do not fit
// together, such as a prime that does not divide the modulus. The Detail
// names the violated relation but never the values involved.
type ConsistencyError struct {
	Detail string
}

func (e *ConsistencyError) Error() string {
	return "privkey: inconsistent key: " + e.Detail
}
