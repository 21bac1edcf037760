package signature_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"testing"

	"github.com/xraph/hookbridge/signature"
)

func TestSignKnownVector(t *testing.T) {
	payload := []byte(`{"alert":"fired"}`)
	secret := "6de0b756-4437-4c27-a2ea-850ba1b967e9"
	timestamp := int64(1700000000)

	got := signature.Sign(payload, secret, timestamp)

	// Compute expected HMAC-SHA256 independently.
	content := fmt.Sprintf("%d.%s", timestamp, payload)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(content))
	expected := "v1=" + hex.EncodeToString(mac.Sum(nil))

	if got != expected {
		t.Errorf("Sign() = %q, want %q", got, expected)
	}
}

func TestSignVerifyRoundTrip(t *testing.T) {
	payload := []byte(`{"text":"hi"}`)
	secret := "hook-id-as-secret"
	timestamp := int64(1700000001)

	sig := signature.Sign(payload, secret, timestamp)
	if !signature.Verify(payload, secret, timestamp, sig) {
		t.Error("Verify() returned false for valid signature")
	}
}

func TestVerifyTamperedPayload(t *testing.T) {
	payload := []byte(`{"original":true}`)
	secret := "tamper-secret"
	timestamp := int64(1700000002)

	sig := signature.Sign(payload, secret, timestamp)

	if signature.Verify([]byte(`{"original":false}`), secret, timestamp, sig) {
		t.Error("Verify() returned true for tampered payload")
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	payload := []byte(`{"data":"value"}`)
	timestamp := int64(1700000003)

	sig := signature.Sign(payload, "correct", timestamp)

	if signature.Verify(payload, "wrong", timestamp, sig) {
		t.Error("Verify() returned true for wrong secret")
	}
}

func TestVerifyWrongTimestamp(t *testing.T) {
	payload := []byte(`{"data":"value"}`)
	secret := "ts-secret"
	timestamp := int64(1700000004)

	sig := signature.Sign(payload, secret, timestamp)

	if signature.Verify(payload, secret, timestamp+1, sig) {
		t.Error("Verify() returned true for wrong timestamp")
	}
}

func TestGenerateSecretFormat(t *testing.T) {
	secret := signature.GenerateSecret()

	if !strings.HasPrefix(secret, "whsec_") {
		t.Errorf("expected prefix 'whsec_', got %q", secret)
	}

	// whsec_ (6) + 64 hex chars (32 bytes) = 70 total
	if len(secret) != 70 {
		t.Errorf("expected length 70, got %d for %q", len(secret), secret)
	}
}

func TestGenerateSecretUniqueness(t *testing.T) {
	if signature.GenerateSecret() == signature.GenerateSecret() {
		t.Error("two consecutive GenerateSecret() calls returned the same value")
	}
}
