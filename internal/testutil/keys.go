package testutil

import (
	"crypto/rand"
	"crypto/rsa"
	"sync"
	"testing"

	"tibib/internal/envelope"
)

var (
	keysOnce sync.Once
	keys     envelope.StaticKeys
	keysErr  error
)

// TestEnvelope returns an Envelope over a process-wide ephemeral keypair.
// Key generation is done once; RSA keygen per test would dominate the
// suite's runtime.
func TestEnvelope(t *testing.T) *envelope.Envelope {
	t.Helper()

	keysOnce.Do(func() {
		var sender, receiver *rsa.PrivateKey
		sender, keysErr = rsa.GenerateKey(rand.Reader, 2048)
		if keysErr != nil {
			return
		}
		receiver, keysErr = rsa.GenerateKey(rand.Reader, 2048)
		if keysErr != nil {
			return
		}
		keys = envelope.StaticKeys{Sender: sender, Receiver: receiver}
	})
	if keysErr != nil {
		t.Fatalf("failed to generate test keys: %v", keysErr)
	}

	return envelope.New(keys)
}
