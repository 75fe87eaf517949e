// Package keys manages the RSA key pair that protects the secure history.
//
// The pair is generated once per deployment and persisted as two PEM files:
// an unencrypted PKCS#1 private key and a PKIX public key. EnsureKeyPair only
// generates when both files are absent; it never overwrites existing key
// material.
package keys

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultBits is the RSA modulus size used for new key pairs.
	DefaultBits = 2048

	privateKeyPerm = 0o600
	publicKeyPerm  = 0o644
	keyDirPerm     = 0o700

	pemTypeRSAPrivate = "RSA PRIVATE KEY"
	pemTypePrivate    = "PRIVATE KEY"
	pemTypePublic     = "PUBLIC KEY"
	pemTypeRSAPublic  = "RSA PUBLIC KEY"
)

// KeyPair holds a loaded private key and the public key read alongside it.
type KeyPair struct {
	Private *rsa.PrivateKey
	Public  *rsa.PublicKey
}

// EnsureKeyPair generates and persists a new key pair when neither privPath
// nor pubPath exists. If either file is present nothing is done. It reports
// whether a new pair was generated.
func EnsureKeyPair(privPath, pubPath string) (bool, error) {
	privExists, err := exists(privPath)
	if err != nil {
		return false, &KeyGenError{Path: privPath, Err: err}
	}
	pubExists, err := exists(pubPath)
	if err != nil {
		return false, &KeyGenError{Path: pubPath, Err: err}
	}
	if privExists || pubExists {
		return false, nil
	}

	priv, err := rsa.GenerateKey(rand.Reader, DefaultBits)
	if err != nil {
		return false, &KeyGenError{Err: err}
	}

	if err := writePrivateKey(privPath, priv); err != nil {
		return false, &KeyGenError{Path: privPath, Err: err}
	}
	if err := writePublicKey(pubPath, &priv.PublicKey); err != nil {
		// A lone private key would block every later bootstrap.
		_ = os.Remove(privPath)
		return false, &KeyGenError{Path: pubPath, Err: err}
	}

	return true, nil
}

// LoadKeyPair reads both PEM files. The pair is not checked for consistency;
// call Verify for that.
func LoadKeyPair(privPath, pubPath string) (*KeyPair, error) {
	priv, err := LoadPrivateKey(privPath)
	if err != nil {
		return nil, err
	}

	pub, err := LoadPublicKey(pubPath)
	if err != nil {
		return nil, err
	}

	return &KeyPair{Private: priv, Public: pub}, nil
}

// LoadPrivateKey parses a PKCS#1 or PKCS#8 RSA private key from a PEM file.
func LoadPrivateKey(path string) (*rsa.PrivateKey, error) {
	block, err := readPEM(path)
	if err != nil {
		return nil, err
	}

	switch block.Type {
	case pemTypeRSAPrivate:
		priv, err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if err != nil {
			return nil, &KeyLoadError{Path: path, Err: err}
		}
		return priv, nil

	case pemTypePrivate:
		key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, &KeyLoadError{Path: path, Err: err}
		}
		priv, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, &KeyLoadError{Path: path, Err: fmt.Errorf("unsupported private key type %T", key)}
		}
		return priv, nil

	default:
		return nil, &KeyLoadError{Path: path, Err: fmt.Errorf("unexpected PEM block %q", block.Type)}
	}
}

// LoadPublicKey parses a PKIX or PKCS#1 RSA public key from a PEM file.
func LoadPublicKey(path string) (*rsa.PublicKey, error) {
	block, err := readPEM(path)
	if err != nil {
		return nil, err
	}

	switch block.Type {
	case pemTypePublic:
		key, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			return nil, &KeyLoadError{Path: path, Err: err}
		}
		pub, ok := key.(*rsa.PublicKey)
		if !ok {
			return nil, &KeyLoadError{Path: path, Err: fmt.Errorf("unsupported public key type %T", key)}
		}
		return pub, nil

	case pemTypeRSAPublic:
		pub, err := x509.ParsePKCS1PublicKey(block.Bytes)
		if err != nil {
			return nil, &KeyLoadError{Path: path, Err: err}
		}
		return pub, nil

	default:
		return nil, &KeyLoadError{Path: path, Err: fmt.Errorf("unexpected PEM block %q", block.Type)}
	}
}

// Verify returns ErrKeyMismatch when the public key is not the public half of
// the private key.
func (kp *KeyPair) Verify() error {
	if kp.Private == nil || kp.Public == nil {
		return errors.New("incomplete key pair")
	}

	if !kp.Private.PublicKey.Equal(kp.Public) {
		return ErrKeyMismatch
	}

	return nil
}

// Fingerprint is the hex SHA-256 of the PKIX encoding of the public key.
func (kp *KeyPair) Fingerprint() (string, error) {
	der, err := x509.MarshalPKIXPublicKey(kp.Public)
	if err != nil {
		return "", fmt.Errorf("marshaling public key: %w", err)
	}

	sum := sha256.Sum256(der)
	return hex.EncodeToString(sum[:]), nil
}

func readPEM(path string) (*pem.Block, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &KeyLoadError{Path: path, Err: err}
	}

	block, _ := pem.Decode(data)
	if block == nil {
		return nil, &KeyLoadError{Path: path, Err: errors.New("no PEM data found")}
	}

	return block, nil
}

func writePrivateKey(path string, priv *rsa.PrivateKey) error {
	block := &pem.Block{
		Type:  pemTypeRSAPrivate,
		Bytes: x509.MarshalPKCS1PrivateKey(priv),
	}
	return writePEM(path, block, privateKeyPerm)
}

func writePublicKey(path string, pub *rsa.PublicKey) error {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return fmt.Errorf("marshaling public key: %w", err)
	}

	block := &pem.Block{
		Type:  pemTypePublic,
		Bytes: der,
	}
	return writePEM(path, block, publicKeyPerm)
}

func writePEM(path string, block *pem.Block, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), keyDirPerm); err != nil {
		return fmt.Errorf("failed to create key directory: %w", err)
	}

	// O_EXCL so a file that appeared since the existence check is never clobbered.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return fmt.Errorf("failed to create key file: %w", err)
	}

	if err := pem.Encode(f, block); err != nil {
		f.Close()
		return fmt.Errorf("failed to write key file: %w", err)
	}

	return f.Close()
}

func exists(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}
