// Package envelope implements hybrid envelope encryption for arbitrary
// payloads.
//
// Every Seal generates a fresh 256-bit data key and encrypts the payload with
// XChaCha20-Poly1305. The data key is then wrapped with RSA-OAEP (SHA-256 for
// both the hash and MGF1) under the recipient's public key. Only the small data
// key goes through RSA; the payload size is unbounded.
//
// On the wire a Message is a JSON object with two standard base64 fields:
//
//	{"encrypted_key": "...", "encrypted_data": "..."}
//
// where encrypted_data is the 24-byte nonce followed by the AEAD ciphertext.
package envelope

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// Message is a sealed payload and its wrapped data key.
type Message struct {
	// WrappedKey is the data key encrypted under the recipient's RSA public key.
	WrappedKey []byte

	// Ciphertext is nonce || AEAD(payload) under the data key.
	Ciphertext []byte
}

type wireMessage struct {
	EncryptedKey  *string `json:"encrypted_key"`
	EncryptedData *string `json:"encrypted_data"`
}

// Encrypt seals plaintext for pub and returns the JSON wire encoding.
func Encrypt(plaintext []byte, pub *rsa.PublicKey) ([]byte, error) {
	msg, err := Seal(plaintext, pub)
	if err != nil {
		return nil, err
	}

	return msg.Marshal()
}

// Decrypt parses a JSON envelope and opens it with priv. Any failure is a
// *DecryptError.
func Decrypt(data []byte, priv *rsa.PrivateKey) ([]byte, error) {
	msg, err := Unmarshal(data)
	if err != nil {
		return nil, err
	}

	return Open(msg, priv)
}

// Seal encrypts plaintext under a freshly generated data key and wraps that
// key for pub. Data keys are never reused between calls.
func Seal(plaintext []byte, pub *rsa.PublicKey) (*Message, error) {
	if pub == nil {
		return nil, errors.New("nil public key")
	}

	dataKey := make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(dataKey); err != nil {
		return nil, fmt.Errorf("generating data key: %w", err)
	}
	defer clear(dataKey)

	aead, err := chacha20poly1305.NewX(dataKey)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}

	ciphertext := aead.Seal(nonce, nonce, plaintext, nil)

	wrapped, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, pub, dataKey, nil)
	if err != nil {
		return nil, fmt.Errorf("wrapping data key: %w", err)
	}

	return &Message{
		WrappedKey: wrapped,
		Ciphertext: ciphertext,
	}, nil
}

// Open unwraps the data key with priv and authenticates and decrypts the
// ciphertext.
func Open(msg *Message, priv *rsa.PrivateKey) ([]byte, error) {
	if msg == nil {
		return nil, &DecryptError{Stage: StageParse, Err: errors.New("nil message")}
	}
	if priv == nil {
		return nil, &DecryptError{Stage: StageUnwrap, Err: errors.New("nil private key")}
	}

	dataKey, err := rsa.DecryptOAEP(sha256.New(), nil, priv, msg.WrappedKey, nil)
	if err != nil {
		return nil, &DecryptError{Stage: StageUnwrap, Err: err}
	}
	defer clear(dataKey)

	aead, err := chacha20poly1305.NewX(dataKey)
	if err != nil {
		return nil, &DecryptError{Stage: StageUnwrap, Err: err}
	}

	if len(msg.Ciphertext) < aead.NonceSize()+aead.Overhead() {
		return nil, &DecryptError{Stage: StageOpen, Err: errors.New("ciphertext too short")}
	}

	nonce, sealed := msg.Ciphertext[:aead.NonceSize()], msg.Ciphertext[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, &DecryptError{Stage: StageOpen, Err: err}
	}

	return plaintext, nil
}

// Marshal encodes m as the JSON wire format.
func (m *Message) Marshal() ([]byte, error) {
	key := base64.StdEncoding.EncodeToString(m.WrappedKey)
	data := base64.StdEncoding.EncodeToString(m.Ciphertext)

	return json.Marshal(wireMessage{
		EncryptedKey:  &key,
		EncryptedData: &data,
	})
}

// Unmarshal decodes the JSON wire format. Both fields are required and
// unknown fields are rejected.
func Unmarshal(data []byte) (*Message, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var wire wireMessage
	if err := dec.Decode(&wire); err != nil {
		return nil, &DecryptError{Stage: StageParse, Err: err}
	}
	if dec.More() {
		return nil, &DecryptError{Stage: StageParse, Err: errors.New("trailing data after envelope")}
	}
	if wire.EncryptedKey == nil || wire.EncryptedData == nil {
		return nil, &DecryptError{Stage: StageParse, Err: errors.New("missing envelope field")}
	}

	wrapped, err := base64.StdEncoding.Strict().DecodeString(*wire.EncryptedKey)
	if err != nil {
		return nil, &DecryptError{Stage: StageDecode, Err: fmt.Errorf("encrypted_key: %w", err)}
	}

	ciphertext, err := base64.StdEncoding.Strict().DecodeString(*wire.EncryptedData)
	if err != nil {
		return nil, &DecryptError{Stage: StageDecode, Err: fmt.Errorf("encrypted_data: %w", err)}
	}

	return &Message{
		WrappedKey: wrapped,
		Ciphertext: ciphertext,
	}, nil
}
