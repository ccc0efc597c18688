// Package envelope protects sensitive scalars (nominal amounts, card
// numbers) crossing the trust boundary between the web tier and the
// settlement tier. Payloads are encrypted under the receiver's public key
// and the ciphertext is signed under the sender's private key, so the web
// tier can neither read nor forge amounts it did not legitimately compute.
package envelope

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	apperrors "tibib/internal/errors"
)

// Envelope performs encrypt-and-sign / decrypt-and-verify over a fixed
// set of keys. Pure over its key material; safe for concurrent use.
type Envelope struct {
	keys KeyProvider
}

// New creates an Envelope over the given key provider.
func New(keys KeyProvider) *Envelope {
	return &Envelope{keys: keys}
}

// EncryptAndSign encrypts plaintext with RSA-OAEP (SHA-256 for both the
// digest and the mask generation function) under the receiver's public
// key, then signs the ciphertext with RSA-PSS (SHA-256, max-length salt)
// under the sender's private key. Both outputs are base64 for transport.
func (e *Envelope) EncryptAndSign(plaintext string) (ciphertextB64, signatureB64 string, err error) {
	receiverPub := &e.keys.ReceiverKey().PublicKey

	ciphertext, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, receiverPub, []byte(plaintext), nil)
	if err != nil {
		return "", "", fmt.Errorf("encrypting payload: %w", err)
	}

	digest := sha256.Sum256(ciphertext)
	// PSSSaltLengthAuto yields the largest salt the key allows when signing.
	signature, err := rsa.SignPSS(rand.Reader, e.keys.SenderKey(), crypto.SHA256, digest[:], &rsa.PSSOptions{
		SaltLength: rsa.PSSSaltLengthAuto,
	})
	if err != nil {
		return "", "", fmt.Errorf("signing payload: %w", err)
	}

	return base64.StdEncoding.EncodeToString(ciphertext),
		base64.StdEncoding.EncodeToString(signature), nil
}

// DecryptAndVerify checks the signature against the ciphertext under the
// sender's public key before decrypting. A failed verification returns
// ErrSignatureInvalid rather than nothing, so callers can never mistake a
// tampered payload for an empty-but-valid one.
func (e *Envelope) DecryptAndVerify(ciphertextB64, signatureB64 string) ([]byte, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(ciphertextB64)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrSignatureInvalid, fmt.Errorf("decoding ciphertext: %w", err))
	}
	signature, err := base64.StdEncoding.DecodeString(signatureB64)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrSignatureInvalid, fmt.Errorf("decoding signature: %w", err))
	}

	senderPub := &e.keys.SenderKey().PublicKey
	digest := sha256.Sum256(ciphertext)
	if err := rsa.VerifyPSS(senderPub, crypto.SHA256, digest[:], signature, &rsa.PSSOptions{
		SaltLength: rsa.PSSSaltLengthAuto,
	}); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrSignatureInvalid, err)
	}

	plaintext, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, e.keys.ReceiverKey(), ciphertext, nil)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrSignatureInvalid, fmt.Errorf("decrypting payload: %w", err))
	}
	return plaintext, nil
}
