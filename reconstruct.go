package privkey

// Reconstruct regenerates the full private key determined by the
// minimal set and renders it as an RSA PRIVATE KEY envelope. A source
// key that carried its primes in the conventional larger-first order
// comes back byte for byte identical to its original encoding. The
// output is all or nothing; on error no bytes are returned.
func Reconstruct(mk *MinimalKey) ([]byte, error) {
	k, err := Derive(mk)
	if err != nil {
		return nil, err
	}
	return k.EncodePEM()
}

// ReconstructDER is Reconstruct without the envelope.
func ReconstructDER(mk *MinimalKey) ([]byte, error) {
	k, err := Derive(mk)
	if err != nil {
		return nil, err
	}
	return k.EncodeDER()
}
