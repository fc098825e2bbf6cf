package storage

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/argon2"
)

const (
	// encryptionMagicHeader is prepended to encrypted snapshots for
	// identification.
	encryptionMagicHeader = "DWINSENC"

	// Argon2id parameters (RFC 9106 recommendations)
	argon2Time    = 1
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4
	argon2KeyLen  = 32 // 256 bits for AES-256

	saltLength = 32
)

// deriveKey derives an AES-256 key from a password using Argon2id.
func deriveKey(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)
}

// encryptSnapshot encrypts a snapshot with AES-256-GCM under a key derived
// from the password. Output layout: magic header, salt, nonce, ciphertext
// with auth tag.
func encryptSnapshot(plaintext []byte, password string) ([]byte, error) {
	if password == "" {
		return nil, fmt.Errorf("encryption password required")
	}

	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	block, err := aes.NewCipher(deriveKey(password, salt))
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext := gcm.Seal(nil, nonce, plaintext, nil)

	result := make([]byte, 0, len(encryptionMagicHeader)+len(salt)+len(nonce)+len(ciphertext))
	result = append(result, encryptionMagicHeader...)
	result = append(result, salt...)
	result = append(result, nonce...)
	result = append(result, ciphertext...)
	return result, nil
}

// decryptSnapshot reverses encryptSnapshot. A wrong password or corrupted
// payload fails GCM authentication and returns an error.
func decryptSnapshot(encrypted []byte, password string) ([]byte, error) {
	if password == "" {
		return nil, fmt.Errorf("encryption password required")
	}
	if !bytes.HasPrefix(encrypted, []byte(encryptionMagicHeader)) {
		return nil, fmt.Errorf("not an encrypted snapshot")
	}
	encrypted = encrypted[len(encryptionMagicHeader):]

	// Minimum: salt + 12-byte GCM nonce + 16-byte auth tag.
	if len(encrypted) < saltLength+12+16 {
		return nil, fmt.Errorf("encrypted snapshot too short")
	}

	salt := encrypted[:saltLength]
	encrypted = encrypted[saltLength:]

	block, err := aes.NewCipher(deriveKey(password, salt))
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	nonceSize := gcm.NonceSize()
	nonce := encrypted[:nonceSize]
	ciphertext := encrypted[nonceSize:]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("decryption failed (wrong password or corrupted data): %w", err)
	}
	return plaintext, nil
}
