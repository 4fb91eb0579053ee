// Package auth implements the authentication core: password hashing, the
// signed-token codec, and the gate that authorizes protected requests.
package auth

import (
	"crypto/sha256"
	"encoding/base64"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is the work factor for new hashes. Existing hashes keep the
// cost they were created with.
const bcryptCost = 12

// prehash digests the raw password with SHA-256 and base64-encodes the
// result. bcrypt only reads the first 72 bytes of its input; the 44-byte
// digest keeps arbitrarily long passwords inside that ceiling without
// losing entropy.
func prehash(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])
	return out
}

// HashPassword returns the bcrypt hash of the prehashed password.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword(prehash(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// CheckPassword reports whether password matches the stored hash. Malformed
// stored hashes fail closed: any bcrypt error yields false.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), prehash(password)) == nil
}
