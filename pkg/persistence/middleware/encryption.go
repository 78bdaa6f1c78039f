package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/leadwizard/pkg/domain"
	"github.com/aretw0/leadwizard/pkg/ports"
)

// envelopePrefix marks an encrypted answer value in the session record.
const envelopePrefix = "enc:v1:"

// ErrDecrypt is returned when a stored answer cannot be decrypted with any configured key.
var ErrDecrypt = errors.New("answer decryption failed")

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	// This enables zero-downtime key rotation.
	FallbackKeys [][]byte
}

// ParseKey decodes a base64 AES-256 key.
func ParseKey(encoded string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return nil, fmt.Errorf("encryption key is not valid base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption key must be 32 bytes (AES-256), got %d", len(key))
	}
	return key, nil
}

type encryptionMiddleware struct {
	next   ports.SessionStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that encrypts saved answers using AES-GCM.
// The current_node field stays readable so sessions can be inspected.
func NewEncryptionMiddleware(config EncryptionConfig) Middleware {
	if len(config.ActiveKey) != 32 {
		panic("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.SessionStore) ports.SessionStore {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}
}

func (m *encryptionMiddleware) SetField(ctx context.Context, sessionID, field, value string) error {
	if _, ok := domain.AnswerKeyFromField(field); !ok {
		return m.next.SetField(ctx, sessionID, field, value)
	}

	ciphertext, err := encrypt([]byte(value), m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt answer: %w", err)
	}
	return m.next.SetField(ctx, sessionID, field, envelopePrefix+base64.StdEncoding.EncodeToString(ciphertext))
}

func (m *encryptionMiddleware) GetField(ctx context.Context, sessionID, field string) (string, bool, error) {
	value, found, err := m.next.GetField(ctx, sessionID, field)
	if err != nil || !found {
		return value, found, err
	}
	if _, ok := domain.AnswerKeyFromField(field); !ok {
		return value, found, nil
	}
	plain, err := m.open(value)
	if err != nil {
		return "", false, err
	}
	return plain, true, nil
}

func (m *encryptionMiddleware) GetAllAnswers(ctx context.Context, sessionID string) (map[string]string, error) {
	answers, err := m.next.GetAllAnswers(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(answers))
	for key, value := range answers {
		plain, err := m.open(value)
		if err != nil {
			return nil, fmt.Errorf("answer %q: %w", key, err)
		}
		out[key] = plain
	}
	return out, nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, sessionID string) error {
	return deleteSession(ctx, m.next, sessionID)
}

// open decrypts an envelope. Plain values are rejected: once encryption is
// configured every answer is expected to be encrypted.
func (m *encryptionMiddleware) open(value string) (string, error) {
	encoded, ok := strings.CutPrefix(value, envelopePrefix)
	if !ok {
		return "", fmt.Errorf("%w: value is missing encrypted data envelope", ErrDecrypt)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: failed to decode ciphertext base64: %w", ErrDecrypt, err)
	}

	// Try Active, then Fallback
	plainText, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDecrypt, err)
	}
	return string(plainText), nil
}

// Helpers

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	// Try active key first
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}

	// Try fallbacks in order
	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}

	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce := ciphertext[:gcm.NonceSize()]
	ciphertextBytes := ciphertext[gcm.NonceSize():]

	return gcm.Open(nil, nonce, ciphertextBytes, nil)
}
