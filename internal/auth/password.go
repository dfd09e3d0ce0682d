package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/scrypt"
)

// scrypt parameters. Records are stored as "<hex key>.<hex salt>" and the hex
// salt string itself is the KDF salt, so existing records stay verifiable.
const (
	scryptN      = 16384
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 64
	saltLen      = 16
)

var ErrMalformedHash = errors.New("malformed password hash")

// HashPassword derives a randomly salted scrypt key for password.
func HashPassword(password string) (string, error) {
	raw := make([]byte, saltLen)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}
	salt := hex.EncodeToString(raw)

	key, err := scrypt.Key([]byte(password), []byte(salt), scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return "", fmt.Errorf("deriving key: %w", err)
	}

	return hex.EncodeToString(key) + "." + salt, nil
}

// VerifyPassword recomputes the key with the stored salt and compares in
// constant time.
func VerifyPassword(password, record string) (bool, error) {
	keyHex, salt, ok := strings.Cut(record, ".")
	if !ok || keyHex == "" || salt == "" {
		return false, ErrMalformedHash
	}

	stored, err := hex.DecodeString(keyHex)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrMalformedHash, err)
	}

	candidate, err := scrypt.Key([]byte(password), []byte(salt), scryptN, scryptR, scryptP, len(stored))
	if err != nil {
		return false, fmt.Errorf("deriving key: %w", err)
	}

	return subtle.ConstantTimeCompare(stored, candidate) == 1, nil
}
