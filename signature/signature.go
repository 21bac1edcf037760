// Package signature provides HMAC-SHA256 verification for inbound webhooks.
//
// The hook ID is itself a secret-bearing URL token, so most senders need no
// signature at all. Senders that want defense in depth can additionally sign
// the request body with the hook ID as the shared secret and put the result
// in X-Hookbridge-Signature / X-Hookbridge-Timestamp headers; the upstream
// listener verifies it with this package before handing the payload to the
// bridge.
package signature

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Sign generates the HMAC-SHA256 signature for the given payload.
// The content to sign is "{timestamp}.{payload}".
// Returns a versioned signature in the format "v1=<hex>".
func Sign(payload []byte, secret string, timestamp int64) string {
	content := fmt.Sprintf("%d.%s", timestamp, payload)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(content))
	return "v1=" + hex.EncodeToString(mac.Sum(nil))
}

// Verify checks whether the given signature matches the expected HMAC-SHA256
// signature for the payload, secret, and timestamp. The comparison is
// constant-time.
func Verify(payload []byte, secret string, timestamp int64, sig string) bool {
	expected := Sign(payload, secret, timestamp)
	return hmac.Equal([]byte(expected), []byte(sig))
}

// GenerateSecret creates a cryptographically random signing secret for
// callers that want a secret independent of the hook ID.
// Format: "whsec_" + 32 bytes hex = 70 characters total.
func GenerateSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic("hookbridge: failed to generate random secret: " + err.Error())
	}
	return "whsec_" + hex.EncodeToString(b)
}
