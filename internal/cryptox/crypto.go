// Package cryptox derives and checks credential verifiers for the local user
// directory. Passwords are never stored; only a random salt and an
// argon2id-derived verifier are persisted.
package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"

	"github.com/dmitrijs2005/jobkeeper/internal/common"
	"golang.org/x/crypto/argon2"
)

// SaltSize is the length of freshly generated credential salts.
const SaltSize = 32

// argon2id parameters.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
)

// DeriveKey stretches password with salt using argon2id.
func DeriveKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

// MakeVerifier hashes a derived key into the value stored in the directory.
func MakeVerifier(key []byte) []byte {
	hash := sha256.Sum256(key)
	return hash[:]
}

// NewCredential generates a random salt and the matching verifier for
// password.
func NewCredential(password []byte) (salt []byte, verifier []byte) {
	salt = common.GenerateRandByteArray(SaltSize)
	key := DeriveKey(password, salt)
	defer common.WipeByteArray(key)
	return salt, MakeVerifier(key)
}

// CheckCredential reports whether password matches the stored salt and
// verifier. The comparison is constant-time.
func CheckCredential(password []byte, salt []byte, verifier []byte) bool {
	if len(salt) == 0 || len(verifier) == 0 {
		return false
	}
	key := DeriveKey(password, salt)
	defer common.WipeByteArray(key)
	return subtle.ConstantTimeCompare(MakeVerifier(key), verifier) == 1
}

// CheckPlaintext compares a candidate against a legacy plaintext secret in
// constant time.
func CheckPlaintext(candidate []byte, stored string) bool {
	if stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare(candidate, []byte(stored)) == 1
}
