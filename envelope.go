package privkey

import (
	"bytes"
	"encoding/base64"
)

// Envelope labels for the key encodings the codec understands.
const (
	TypePrivateKey    = "RSA PRIVATE KEY" // PKCS#1 private key
	TypePublicKey     = "RSA PUBLIC KEY"  // PKCS#1 public key
	TypePublicKeyInfo = "PUBLIC KEY"      // SubjectPublicKeyInfo
)

const (
	envHeader  = "-----BEGIN "
	envFooter  = "-----END "
	envTrailer = "-----"

	// envLineWidth is the column at which the base64 body wraps. Every
	// writer this codec has to match byte for byte wraps at 64.
	envLineWidth = 64
)

// IsEnvelope reports whether data starts like a textual envelope rather
// than raw binary content.
func IsEnvelope(data []byte) bool {
	return bytes.HasPrefix(data, []byte(envHeader))
}

// StripEnvelope undoes WrapEnvelope: it checks the header and footer
// lines and decodes the base64 body, returning the binary content along
// with the envelope label. Lines must end in a bare newline; newlines in
// the body are ignored but any other byte outside the base64 alphabet is
// an error.
func StripEnvelope(data []byte) ([]byte, string, error) {
	if !IsEnvelope(data) {
		return nil, "", &DecodeError{Kind: Envelope, Detail: "missing BEGIN header"}
	}
	rest := data[len(envHeader):]
	nl := bytes.IndexByte(rest, '\n')
	if nl < 0 {
		return nil, "", &DecodeError{Kind: Envelope, Detail: "unterminated header line"}
	}
	label, ok := bytes.CutSuffix(rest[:nl], []byte(envTrailer))
	if !ok {
		return nil, "", &DecodeError{Kind: Envelope, Detail: "malformed header line"}
	}
	if !validLabel(label) {
		return nil, "", &DecodeError{Kind: Envelope, Detail: "label contains characters outside A-Z and space"}
	}

	// the index of the header line's newline in data
	headerEnd := len(envHeader) + nl
	foot := bytes.LastIndex(data, []byte("\n"+envFooter))
	if foot <= headerEnd {
		return nil, "", &DecodeError{Kind: Envelope, Detail: "missing END footer"}
	}
	body := data[headerEnd+1 : foot]

	footer := data[foot+1:]
	if n := len(footer); n > 0 && footer[n-1] == '\n' {
		footer = footer[:n-1]
	}
	endLabel, ok := bytes.CutSuffix(footer[len(envFooter):], []byte(envTrailer))
	if !ok {
		return nil, "", &DecodeError{Kind: Envelope, Detail: "malformed footer line"}
	}
	if !bytes.Equal(label, endLabel) {
		return nil, "", &DecodeError{Kind: Envelope, Detail: "mismatched BEGIN and END labels"}
	}

	b64 := make([]byte, 0, len(body))
	for _, c := range body {
		switch {
		case c == '\n':
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9',
			c == '+', c == '/', c == '=':
			b64 = append(b64, c)
		default:
			return nil, "", &DecodeError{Kind: Envelope, Detail: "body contains a byte outside the base64 alphabet"}
		}
	}
	der := make([]byte, base64.StdEncoding.DecodedLen(len(b64)))
	n, err := base64.StdEncoding.Decode(der, b64)
	if err != nil {
		return nil, "", &DecodeError{Kind: Envelope, Detail: "body is not valid base64"}
	}
	return der[:n], string(label), nil
}

// WrapEnvelope renders binary content as a textual envelope under the
// given label, wrapping the base64 body at the conventional column.
func WrapEnvelope(label string, content []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString(envHeader)
	buf.WriteString(label)
	buf.WriteString(envTrailer)
	buf.WriteByte('\n')
	body := base64.StdEncoding.EncodeToString(content)
	for len(body) > 0 {
		width := envLineWidth
		if len(body) < width {
			width = len(body)
		}
		buf.WriteString(body[:width])
		buf.WriteByte('\n')
		body = body[width:]
	}
	buf.WriteString(envFooter)
	buf.WriteString(label)
	buf.WriteString(envTrailer)
	buf.WriteByte('\n')
	return buf.Bytes()
}

// validLabel reports whether a label sticks to the uppercase-and-space
// alphabet of the classic key envelopes.
func validLabel(label []byte) bool {
	if len(label) == 0 {
		return false
	}
	for _, c := range label {
		if (c < 'A' || c > 'Z') && c != ' ' {
			return false
		}
	}
	return true
}
