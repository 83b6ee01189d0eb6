package donation

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Verifier checks webhook signatures: hex(HMAC-SHA256(secret, body)) where
// body is the compact JSON serialization the sender signed.
//
// A Verifier without a secret is disabled and accepts everything. Requests
// without a signature are accepted as well; senders that never sign must not
// be locked out.
type Verifier struct {
	secret []byte
}

// NewVerifier returns a verifier for secret. An empty secret disables it.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Enabled reports whether a secret is configured.
func (v *Verifier) Enabled() bool {
	return v != nil && len(v.secret) > 0
}

// Verify reports whether signature matches raw. Malformed hex or JSON
// counts as a mismatch.
func (v *Verifier) Verify(raw []byte, signature string) bool {
	if !v.Enabled() || signature == "" {
		return true
	}
	got, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	want, err := v.digest(raw)
	if err != nil {
		return false
	}
	return hmac.Equal(got, want)
}

// Sign returns the hex signature a sender would attach to raw.
func (v *Verifier) Sign(raw []byte) (string, error) {
	if !v.Enabled() {
		return "", fmt.Errorf("verifier has no secret")
	}
	sum, err := v.digest(raw)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(sum), nil
}

func (v *Verifier) digest(raw []byte) ([]byte, error) {
	var canonical bytes.Buffer
	if err := json.Compact(&canonical, raw); err != nil {
		return nil, fmt.Errorf("canonicalize payload: %w", err)
	}
	mac := hmac.New(sha256.New, v.secret)
	_, _ = mac.Write(canonical.Bytes())
	return mac.Sum(nil), nil
}
