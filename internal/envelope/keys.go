package envelope

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
)

// KeyProvider supplies the asymmetric key material the envelope operates
// on. Injected at construction so tests can supply ephemeral keypairs
// instead of reaching for process-wide globals.
type KeyProvider interface {
	// SenderKey signs outbound ciphertexts.
	SenderKey() *rsa.PrivateKey
	// ReceiverKey decrypts inbound ciphertexts.
	ReceiverKey() *rsa.PrivateKey
}

// StaticKeys is a KeyProvider over two in-memory keypairs.
type StaticKeys struct {
	Sender   *rsa.PrivateKey
	Receiver *rsa.PrivateKey
}

func (k StaticKeys) SenderKey() *rsa.PrivateKey   { return k.Sender }
func (k StaticKeys) ReceiverKey() *rsa.PrivateKey { return k.Receiver }

// LoadKeys reads the sender and receiver private keys from PEM files.
func LoadKeys(senderPath, receiverPath string) (StaticKeys, error) {
	sender, err := loadPrivateKeyPEM(senderPath)
	if err != nil {
		return StaticKeys{}, fmt.Errorf("loading sender key: %w", err)
	}
	receiver, err := loadPrivateKeyPEM(receiverPath)
	if err != nil {
		return StaticKeys{}, fmt.Errorf("loading receiver key: %w", err)
	}
	return StaticKeys{Sender: sender, Receiver: receiver}, nil
}

// GenerateKeys creates fresh 2048-bit sender and receiver keypairs.
// Meant for development runs without provisioned key files; anything
// signed with these dies with the process.
func GenerateKeys() (StaticKeys, error) {
	sender, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return StaticKeys{}, fmt.Errorf("generating sender key: %w", err)
	}
	receiver, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return StaticKeys{}, fmt.Errorf("generating receiver key: %w", err)
	}
	return StaticKeys{Sender: sender, Receiver: receiver}, nil
}

// loadPrivateKeyPEM parses an RSA private key from a PEM file, accepting
// PKCS#8 or PKCS#1 encodings.
func loadPrivateKeyPEM(path string) (*rsa.PrivateKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, fmt.Errorf("%s: no PEM block found", path)
	}

	if key, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("%s: not an RSA private key", path)
		}
		return rsaKey, nil
	}

	return x509.ParsePKCS1PrivateKey(block.Bytes)
}
