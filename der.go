package privkey

import (
	"fmt"
	"math/big"
)

// Tags for the subset of DER the key schemas use.
const (
	tagInteger   = 0x02
	tagBitString = 0x03
	tagNull      = 0x05
	tagObjectID  = 0x06
	tagSequence  = 0x30
)

// maxLengthOctets bounds the long-form length encodings the reader
// accepts. Three octets already describes structures of 16 MiB, far
// beyond any key.
const maxLengthOctets = 3

// A derReader consumes one window of DER bytes. Sub-readers returned for
// nested structures keep reporting offsets against the original input.
type derReader struct {
	data []byte
	pos  int
	base int
}

func newDERReader(data []byte) *derReader {
	return &derReader{data: data}
}

// offset is the absolute position of the next unread byte.
func (r *derReader) offset() int {
	return r.base + r.pos
}

func (r *derReader) empty() bool {
	return r.pos >= len(r.data)
}

// peekTag returns the next tag byte without consuming it, or -1 at the
// end of the window.
func (r *derReader) peekTag() int {
	if r.empty() {
		return -1
	}
	return int(r.data[r.pos])
}

// readHeader consumes a tag byte and a strictly encoded length, leaving
// the reader at the start of the value. Only the shortest valid length
// form is accepted.
func (r *derReader) readHeader() (tag, length int, err error) {
	start := r.offset()
	if len(r.data)-r.pos < 2 {
		return 0, 0, &DecodeError{Kind: Framing, Offset: start, Detail: "truncated tag and length"}
	}
	tag = int(r.data[r.pos])
	first := int(r.data[r.pos+1])
	r.pos += 2
	switch {
	case first < 0x80:
		length = first
	case first == 0x80:
		return 0, 0, &DecodeError{Kind: Length, Offset: start + 1, Detail: "indefinite length"}
	default:
		octets := first & 0x7f
		if octets > maxLengthOctets {
			return 0, 0, &DecodeError{Kind: Length, Offset: start + 1, Detail: "length of length too large"}
		}
		if len(r.data)-r.pos < octets {
			return 0, 0, &DecodeError{Kind: Framing, Offset: start + 1, Detail: "truncated length"}
		}
		if r.data[r.pos] == 0 {
			return 0, 0, &DecodeError{Kind: Length, Offset: start + 1, Detail: "length has a leading zero octet"}
		}
		for i := 0; i < octets; i++ {
			length = length<<8 | int(r.data[r.pos])
			r.pos++
		}
		if length < 0x80 {
			return 0, 0, &DecodeError{Kind: Length, Offset: start + 1, Detail: "long form used for a short length"}
		}
	}
	if length > len(r.data)-r.pos {
		return 0, 0, &DecodeError{Kind: Framing, Offset: start, Detail: "length exceeds enclosing structure"}
	}
	return tag, length, nil
}

// expect consumes one element, checks its tag, and returns the value
// bytes together with their absolute offset.
func (r *derReader) expect(tag int) ([]byte, int, error) {
	start := r.offset()
	gotTag, length, err := r.readHeader()
	if err != nil {
		return nil, 0, err
	}
	if gotTag != tag {
		return nil, 0, &DecodeError{Kind: Schema, Offset: start,
			Detail: fmt.Sprintf("expected tag 0x%02x, found 0x%02x", tag, gotTag)}
	}
	valueStart := r.offset()
	body := r.data[r.pos : r.pos+length]
	r.pos += length
	return body, valueStart, nil
}

// readSequence descends into a SEQUENCE, returning a reader over its
// body.
func (r *derReader) readSequence() (*derReader, error) {
	body, start, err := r.expect(tagSequence)
	if err != nil {
		return nil, err
	}
	return &derReader{data: body, base: start}, nil
}

// readInteger reads one INTEGER as a non-negative value in its minimal
// encoding. The body must be non-empty and unsigned; a single leading
// zero byte is allowed only when the next byte would otherwise read as
// a sign.
func (r *derReader) readInteger() (*big.Int, error) {
	body, start, err := r.expect(tagInteger)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, &DecodeError{Kind: Integer, Offset: start, Detail: "empty integer"}
	}
	if body[0]&0x80 != 0 {
		return nil, &DecodeError{Kind: Integer, Offset: start, Detail: "negative integer"}
	}
	if len(body) > 1 && body[0] == 0 && body[1]&0x80 == 0 {
		return nil, &DecodeError{Kind: Integer, Offset: start, Detail: "superfluous leading zero"}
	}
	return new(big.Int).SetBytes(body), nil
}

// readNull consumes a NULL element.
func (r *derReader) readNull() error {
	body, start, err := r.expect(tagNull)
	if err != nil {
		return err
	}
	if len(body) != 0 {
		return &DecodeError{Kind: Schema, Offset: start, Detail: "NULL with content"}
	}
	return nil
}

// readObjectID returns the raw body of an OBJECT IDENTIFIER, which
// callers compare against known encodings.
func (r *derReader) readObjectID() ([]byte, error) {
	body, start, err := r.expect(tagObjectID)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, &DecodeError{Kind: Schema, Offset: start, Detail: "empty object identifier"}
	}
	return body, nil
}

// readBitString reads a BIT STRING holding a whole number of bytes,
// which is how SubjectPublicKeyInfo carries a nested encoding, and
// returns the content after the pad count byte.
func (r *derReader) readBitString() ([]byte, error) {
	body, start, err := r.expect(tagBitString)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, &DecodeError{Kind: Schema, Offset: start, Detail: "empty bit string"}
	}
	if body[0] != 0 {
		return nil, &DecodeError{Kind: Schema, Offset: start, Detail: "bit string with padding bits"}
	}
	return body[1:], nil
}

// end asserts the window was fully consumed.
func (r *derReader) end() error {
	if !r.empty() {
		return &DecodeError{Kind: Framing, Offset: r.offset(), Detail: "trailing bytes"}
	}
	return nil
}

// appendLength appends the shortest valid encoding of a value length.
func appendLength(dst []byte, n int) []byte {
	if n < 0x80 {
		return append(dst, byte(n))
	}
	octets := 0
	for v := n; v > 0; v >>= 8 {
		octets++
	}
	dst = append(dst, byte(0x80|octets))
	for i := octets - 1; i >= 0; i-- {
		dst = append(dst, byte(n>>(8*i)))
	}
	return dst
}

// appendHeader appends a tag and length pair.
func appendHeader(dst []byte, tag, n int) []byte {
	dst = append(dst, byte(tag))
	return appendLength(dst, n)
}

// appendInteger appends a full INTEGER element holding v. The body is
// the minimal big-endian form, with one zero byte prepended when the top
// bit is set so the value cannot read back as negative.
func appendInteger(dst []byte, v *big.Int) ([]byte, error) {
	if v == nil {
		return nil, &EncodeError{Detail: "missing integer field"}
	}
	if v.Sign() < 0 {
		return nil, &EncodeError{Detail: "negative integer field"}
	}
	body := v.Bytes()
	if len(body) == 0 {
		// zero is one explicit zero byte
		body = []byte{0}
	}
	pad := 0
	if body[0]&0x80 != 0 {
		pad = 1
	}
	dst = appendHeader(dst, tagInteger, len(body)+pad)
	if pad == 1 {
		dst = append(dst, 0)
	}
	return append(dst, body...), nil
}

// appendSequence wraps an already encoded body in a SEQUENCE header.
func appendSequence(dst, body []byte) []byte {
	dst = appendHeader(dst, tagSequence, len(body))
	return append(dst, body...)
}
