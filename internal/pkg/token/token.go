package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	appErr "github.com/xxxsen/draftshare/internal/pkg/errors"
)

// DefaultLength is the number of random bytes behind a share token.
const DefaultLength = 32

var reader io.Reader = rand.Reader

// Generate returns byteLength random bytes encoded as unpadded base64url, so the
// result only contains [A-Za-z0-9-_]. A failing random source is reported as
// ErrRandomness; there is no weaker fallback.
func Generate(byteLength int) (string, error) {
	if byteLength <= 0 {
		byteLength = DefaultLength
	}
	buf := make([]byte, byteLength)
	if _, err := io.ReadFull(reader, buf); err != nil {
		return "", fmt.Errorf("%w: %v", appErr.ErrRandomness, err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Valid reports whether s is non-empty and made only of the token alphabet.
func Valid(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}
