package encryption

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltSize   = 16
	keySize    = 64
	iterations = 100000
)

var ErrInvalidHash = errors.New("invalid stored password format")

// GeneratePassword returns a salted PBKDF2-SHA512 hash of pass in the
// form "salt:hash", both hex encoded.
func GeneratePassword(pass string) (string, error) {
	saltBytes := make([]byte, saltSize)
	if _, err := rand.Read(saltBytes); err != nil {
		return "", err
	}
	hashBytes := pbkdf2.Key([]byte(pass), saltBytes, iterations, keySize, sha512.New)
	return fmt.Sprintf("%s:%s", hex.EncodeToString(saltBytes), hex.EncodeToString(hashBytes)), nil
}

// ValidatePassword verifies providedPassword against a hash produced by
// GeneratePassword.
func ValidatePassword(storedPassword, providedPassword string) (bool, error) {
	salt, storedHash, ok := strings.Cut(storedPassword, ":")
	if !ok {
		return false, ErrInvalidHash
	}

	saltBytes, err := hex.DecodeString(salt)
	if err != nil {
		return false, fmt.Errorf("decode salt: %w", err)
	}
	storedHashBytes, err := hex.DecodeString(storedHash)
	if err != nil {
		return false, fmt.Errorf("decode hash: %w", err)
	}

	hashBytes := pbkdf2.Key([]byte(providedPassword), saltBytes, iterations, len(storedHashBytes), sha512.New)

	// Timing-safe comparison
	return subtle.ConstantTimeCompare(hashBytes, storedHashBytes) == 1, nil
}
