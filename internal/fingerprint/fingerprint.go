// Package fingerprint computes the stable content identity of chart assets.
//
// A fingerprint is the uppercase hex MD5 of the chart file's bytes. MD5 is
// an identity key here, not a security boundary: the game ecosystem already
// identifies charts this way, and setlist files reference songs by the same
// digest.
package fingerprint

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

// Size is the length of a fingerprint string: 32 hex characters.
const Size = md5.Size * 2

// File streams the file at path through MD5 and returns the uppercase hex
// digest.
func File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open chart for fingerprinting: %w", err)
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("fingerprint %s: %w", path, err)
	}
	return strings.ToUpper(hex.EncodeToString(h.Sum(nil))), nil
}

// Valid reports whether s looks like a fingerprint: 32 uppercase hex digits.
func Valid(s string) bool {
	if len(s) != Size {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'A' || c > 'F') {
			return false
		}
	}
	return true
}
