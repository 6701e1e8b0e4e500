/**
 * @description
 * This file implements the shareable-id codec. A shareable id is an encrypted
 * derivative of an aggregation-provider account id that is safe to embed in
 * links: recipients of a transfer are identified by it without the raw account
 * id ever leaving the backend.
 *
 * @dependencies
 * - crypto/aes, crypto/cipher: AES-GCM authenticated encryption.
 * - golang.org/x/crypto/pbkdf2: key derivation from the configured secret.
 */
package domain

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

// shareableIDSalt fixes the pbkdf2 salt so the same configured secret always
// derives the same key across restarts.
var shareableIDSalt = []byte("horizon.shareable-id.v1")

// ShareableIDCodec encrypts and decrypts account ids with a key derived from
// a process-wide secret.
type ShareableIDCodec struct {
	key []byte
}

// NewShareableIDCodec derives the AES key from the given secret.
func NewShareableIDCodec(secret string) (*ShareableIDCodec, error) {
	if secret == "" {
		return nil, errors.New("shareable-id secret must not be empty")
	}
	key := pbkdf2.Key([]byte(secret), shareableIDSalt, 4096, 32, sha256.New)
	return &ShareableIDCodec{key: key}, nil
}

// Encrypt returns a hex-encoded, link-safe ciphertext of the account id.
func (c *ShareableIDCodec) Encrypt(accountID string) (string, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	// The nonce is prepended so Decrypt can recover it.
	ciphertext := gcm.Seal(nonce, nonce, []byte(accountID), nil)
	return hex.EncodeToString(ciphertext), nil
}

// Decrypt recovers the account id from a shareable id. It fails when the
// ciphertext was produced under a different secret or has been tampered with.
func (c *ShareableIDCodec) Decrypt(shareableID string) (string, error) {
	ciphertext, err := hex.DecodeString(shareableID)
	if err != nil {
		return "", errors.New("shareable id is not valid hex")
	}
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return "", errors.New("shareable id is too short")
	}
	nonce, sealed := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", errors.New("shareable id could not be decrypted")
	}
	return string(plaintext), nil
}
