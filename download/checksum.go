package download

import (
	"encoding/hex"
	"fmt"
	"hash"
)

// digest folds every downloaded byte into a hash so the result can be
// checked against an expected hex sum before the rename.
type digest struct {
	h    hash.Hash
	want string
}

func newDigest(h hash.Hash, want string) *digest {
	return &digest{h: h, want: want}
}

func (d *digest) Write(p []byte) (int, error) {
	return d.h.Write(p)
}

// Verify reports whether the accumulated sum matches the expected one.
// A nil digest always verifies.
func (d *digest) Verify() error {
	if d == nil {
		return nil
	}

	got := hex.EncodeToString(d.h.Sum(nil))
	if got == d.want {
		return nil
	}

	return &Error{
		Err:    ErrChecksumMismatch,
		Detail: fmt.Sprintf("want %s, have %s", d.want, got),
	}
}
