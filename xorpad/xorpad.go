// Package xorpad masks fixed-width secrets against pads of pre-shared
// random data, so a secret can cross an untrusted channel as an opaque
// blob. Each pad contributes a window of bytes starting at its own
// offset; the secret is XORed with every window. Whoever holds the same
// pads and offsets reverses the mask, anyone else sees noise. One pad is
// enough, but two pads delivered over different routes mean no single
// courier can unmask the secret.
package xorpad

import (
	"bytes"
	"fmt"
)

// A Pad is one stream of random bytes plus the offset at which its
// masking window starts. Offsets let one long pad serve many exchanges,
// a fresh window each time.
type Pad struct {
	Data   []byte
	Offset int
}

// Mask combines secret with the window of every pad and returns the
// result as a fresh buffer; the inputs are left untouched. It refuses an
// empty pad set and windows that fall outside their pad. Pads carrying
// identical data are refused too, since they would cancel out and leak
// the secret.
func Mask(secret []byte, pads ...Pad) ([]byte, error) {
	if err := checkPads(len(secret), pads); err != nil {
		return nil, err
	}
	out := make([]byte, len(secret))
	copy(out, secret)
	for _, p := range pads {
		window := p.Data[p.Offset : p.Offset+len(secret)]
		for i := range out {
			out[i] ^= window[i]
		}
	}
	return out, nil
}

// Unmask reverses Mask given the same pads. XOR is an involution, so the
// two operations are identical; the name marks which half of an exchange
// is being performed.
func Unmask(blob []byte, pads ...Pad) ([]byte, error) {
	return Mask(blob, pads...)
}

// Zero overwrites b with zero bytes. It is a best-effort wipe for pad
// and secret buffers the caller owns; Go makes no promise about copies
// the runtime may have made elsewhere.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

func checkPads(n int, pads []Pad) error {
	if len(pads) == 0 {
		return fmt.Errorf("xorpad: at least one pad is required")
	}
	for i, p := range pads {
		if p.Offset < 0 || p.Offset+n > len(p.Data) {
			return fmt.Errorf("xorpad: pad %d cannot cover %d bytes at offset %d", i+1, n, p.Offset)
		}
	}
	for i := 0; i < len(pads); i++ {
		for j := i + 1; j < len(pads); j++ {
			if bytes.Equal(pads[i].Data, pads[j].Data) {
				return fmt.Errorf("xorpad: pads %d and %d contain the same data", i+1, j+1)
			}
		}
	}
	return nil
}
