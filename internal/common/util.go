package common

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
)

// MakeRandHexString reads size random bytes from r and returns them hex
// encoded, so the result is 2*size characters long. A nil r means crypto/rand.
//
// A short read or a reader error is reported as ErrEntropyFailure; there is
// no fallback source.
func MakeRandHexString(r io.Reader, size int) (string, error) {
	if r == nil {
		r = rand.Reader
	}

	b := make([]byte, size)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", fmt.Errorf("%w: %v", ErrEntropyFailure, err)
	}

	return hex.EncodeToString(b), nil
}

// WipeByteArray overwrites the contents of the provided byte slice with zeros.
// Use it for passwords read from the terminal once they are no longer needed.
//
// If the slice is nil, the function does nothing.
func WipeByteArray(b []byte) {
	if b == nil {
		return
	}
	for i := range b {
		b[i] = 0
	}
}
