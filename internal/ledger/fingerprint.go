package ledger

import (
	"crypto/md5" //nolint:gosec // content identity, not security
	"encoding/hex"
	"io"
)

// Fingerprint returns the MD5 hex digest of data.
func Fingerprint(data []byte) string {
	sum := md5.Sum(data) //nolint:gosec
	return hex.EncodeToString(sum[:])
}

// FingerprintReader streams r through MD5 and returns the hex digest and the
// number of bytes read.
func FingerprintReader(r io.Reader) (string, int64, error) {
	h := md5.New() //nolint:gosec
	n, err := io.Copy(h, r)
	if err != nil {
		return "", n, err
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}
