package utils

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// MD5Hash generates MD5 hash of input string
func MD5Hash(input string) string {
	hash := md5.Sum([]byte(input))
	return hex.EncodeToString(hash[:])
}

// NormalizedHash hashes text after lowercasing and trimming it, so that
// cosmetic differences map to the same key.
func NormalizedHash(text string) string {
	return MD5Hash(strings.ToLower(strings.TrimSpace(text)))
}
