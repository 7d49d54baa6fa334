// Copyright (c) 2025 fpxbs7777

package config

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	encryptedPrefix = "enc:"

	keySize          = 32
	saltSize         = 16
	pbkdf2Iterations = 100000
)

var ErrDecryptionFailed = errors.New("decryption failed")

// IsEncrypted reports whether the value was produced by Encrypt.
func IsEncrypted(v string) bool {
	return strings.HasPrefix(v, encryptedPrefix)
}

func newGCM(masterKey string, salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key([]byte(masterKey), salt, pbkdf2Iterations, keySize, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("could not create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("could not create gcm: %w", err)
	}
	return gcm, nil
}

// Encrypt seals the plaintext with AES-256-GCM under a key derived from the
// master key. The result is "enc:" followed by base64 of salt, nonce and
// ciphertext.
func Encrypt(masterKey, plaintext string) (string, error) {
	if masterKey == "" {
		return "", fmt.Errorf("master key cannot be empty")
	}
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("could not generate salt: %w", err)
	}
	gcm, err := newGCM(masterKey, salt)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("could not generate nonce: %w", err)
	}
	sealed := gcm.Seal(nil, nonce, []byte(plaintext), nil)

	buf := make([]byte, 0, len(salt)+len(nonce)+len(sealed))
	buf = append(buf, salt...)
	buf = append(buf, nonce...)
	buf = append(buf, sealed...)
	return encryptedPrefix + base64.StdEncoding.EncodeToString(buf), nil
}

// Decrypt opens a value produced by Encrypt.
func Decrypt(masterKey, value string) (string, error) {
	if !IsEncrypted(value) {
		return "", fmt.Errorf("value is not encrypted")
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, encryptedPrefix))
	if err != nil {
		return "", fmt.Errorf("could not base64-decode encrypted value: %w", err)
	}
	if len(data) < saltSize {
		return "", ErrDecryptionFailed
	}
	gcm, err := newGCM(masterKey, data[:saltSize])
	if err != nil {
		return "", err
	}
	data = data[saltSize:]
	if len(data) < gcm.NonceSize()+gcm.Overhead() {
		return "", ErrDecryptionFailed
	}
	nonce, sealed := data[:gcm.NonceSize()], data[gcm.NonceSize():]
	plain, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	return string(plain), nil
}
