package auth

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// Password hashing parameters. The salt is random per password; the iterated
// derivation keeps brute-forcing expensive. Hashing happens here, before the
// write — the database stores the encoded digest as an opaque string and
// never hashes anything itself.
const (
	saltLength = 16
	iterations = 100_000
	keyLength  = 64

	hashScheme = "pbkdf2-sha512"
)

// HashPassword derives a salted digest from the plaintext password and
// returns it in the self-describing form
// "pbkdf2-sha512$<iterations>$<salt-hex>$<digest-hex>". A failure to draw
// random bytes is returned to the caller; the plaintext is never stored.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	digest := pbkdf2.Key([]byte(password), salt, iterations, keyLength, sha512.New)

	return fmt.Sprintf("%s$%d$%s$%s",
		hashScheme,
		iterations,
		hex.EncodeToString(salt),
		hex.EncodeToString(digest),
	), nil
}

// VerifyPassword recomputes the digest with the salt and iteration count
// stored in encoded and compares in constant time. A malformed stored hash is
// an error, not a mismatch.
func VerifyPassword(password, encoded string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 4 || parts[0] != hashScheme {
		return false, fmt.Errorf("malformed password hash")
	}

	iters, err := strconv.Atoi(parts[1])
	if err != nil || iters <= 0 {
		return false, fmt.Errorf("malformed password hash: bad iteration count")
	}

	salt, err := hex.DecodeString(parts[2])
	if err != nil {
		return false, fmt.Errorf("malformed password hash: bad salt encoding")
	}

	stored, err := hex.DecodeString(parts[3])
	if err != nil {
		return false, fmt.Errorf("malformed password hash: bad digest encoding")
	}

	digest := pbkdf2.Key([]byte(password), salt, iters, len(stored), sha512.New)

	return subtle.ConstantTimeCompare(digest, stored) == 1, nil
}
