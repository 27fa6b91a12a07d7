package alert

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// SignatureHeader carries the HMAC-SHA256 of the request body.
const SignatureHeader = "X-MicroScan-Signature"

// Sign returns the signature header value for payload: "sha256=<hex>".
func Sign(payload, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature validates a signature header against the payload.
// Receivers of advisory webhooks use it to authenticate deliveries.
func VerifySignature(payload []byte, signature string, secret []byte) error {
	hexSig, ok := strings.CutPrefix(signature, "sha256=")
	if !ok {
		return fmt.Errorf("invalid signature format")
	}
	sig, err := hex.DecodeString(hexSig)
	if err != nil {
		return fmt.Errorf("decode signature: %w", err)
	}

	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	if !hmac.Equal(sig, mac.Sum(nil)) {
		return fmt.Errorf("signature mismatch")
	}
	return nil
}
