// Package cryptox holds the symmetric primitives used to keep credentials
// encrypted at rest: an argon2id key derivation and AES-256-GCM sealing.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/json"
	"errors"

	"github.com/dmitrijs2005/holyculture/internal/common"
	"golang.org/x/crypto/argon2"
)

// KeySize is the AES-256 key length produced by DeriveKey.
const KeySize = 32

var ErrInvalidKey = errors.New("invalid key size")

// DeriveKey stretches a device secret into a KeySize key with argon2id.
func DeriveKey(secret []byte, salt []byte) []byte {
	return argon2.IDKey(secret, salt, 1, 64*1024, 4, KeySize)
}

// MakeVerifier returns a digest of key that can be stored next to the data to
// detect a wrong key before attempting decryption.
func MakeVerifier(key []byte) []byte {
	hash := sha256.Sum256(key)
	return hash[:]
}

// Seal encrypts plaintext with AES-GCM under key. additionalData is
// authenticated but not encrypted; the same value must be passed to Open.
// A fresh random nonce is returned alongside the ciphertext.
func Seal(plaintext, key, additionalData []byte) (ciphertext, nonce []byte, err error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, nil, err
	}
	nonce = common.GenerateRandByteArray(aead.NonceSize())
	return aead.Seal(nil, nonce, plaintext, additionalData), nonce, nil
}

// Open reverses Seal. It fails if key, nonce or additionalData differ from
// the ones used for sealing.
func Open(ciphertext, nonce, key, additionalData []byte) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	return aead.Open(nil, nonce, ciphertext, additionalData)
}

// SealJSON marshals v to JSON and seals it.
func SealJSON(v any, key, additionalData []byte) (ciphertext, nonce []byte, err error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return nil, nil, err
	}
	defer common.WipeByteArray(plaintext)
	return Seal(plaintext, key, additionalData)
}

// OpenJSON opens ciphertext and unmarshals the JSON plaintext into v.
func OpenJSON(ciphertext, nonce, key, additionalData []byte, v any) error {
	plaintext, err := Open(ciphertext, nonce, key, additionalData)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(plaintext)
	return json.Unmarshal(plaintext, v)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
