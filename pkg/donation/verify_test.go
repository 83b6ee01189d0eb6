package donation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "bagibagi-webhook-token"

func TestVerifier_RoundTrip(t *testing.T) {
	v := NewVerifier(testSecret)
	body := []byte(`{"transaction_id":"bagibagi-1","name":"Siti","amount":20000}`)

	sig, err := v.Sign(body)
	require.NoError(t, err)
	assert.Len(t, sig, 64)
	assert.True(t, v.Verify(body, sig))
}

func TestVerifier_SignsCompactForm(t *testing.T) {
	v := NewVerifier(testSecret)
	compact := []byte(`{"name":"Siti","amount":20000}`)
	pretty := []byte("{\n  \"name\": \"Siti\",\n  \"amount\": 20000\n}")

	sig, err := v.Sign(compact)
	require.NoError(t, err)
	assert.True(t, v.Verify(pretty, sig))
}

func TestVerifier_PayloadByteFlipFails(t *testing.T) {
	v := NewVerifier(testSecret)
	body := []byte(`{"name":"Siti","amount":20000}`)
	sig, err := v.Sign(body)
	require.NoError(t, err)

	for i := range body {
		flipped := append([]byte(nil), body...)
		flipped[i] ^= 0x01
		assert.False(t, v.Verify(flipped, sig), "flip at %d verified", i)
	}
}

func TestVerifier_SignatureByteFlipFails(t *testing.T) {
	v := NewVerifier(testSecret)
	body := []byte(`{"name":"Siti","amount":20000}`)
	sig, err := v.Sign(body)
	require.NoError(t, err)

	for i := range sig {
		flipped := []byte(sig)
		flipped[i] ^= 0x01
		assert.False(t, v.Verify(body, string(flipped)), "flip at %d verified", i)
	}
}

func TestVerifier_Rejects(t *testing.T) {
	v := NewVerifier(testSecret)
	body := []byte(`{"name":"Siti","amount":20000}`)
	sig, err := v.Sign(body)
	require.NoError(t, err)

	assert.False(t, v.Verify(body, "not-hex"), "malformed hex")
	assert.False(t, v.Verify(body, sig[:32]), "truncated")
	assert.False(t, v.Verify(body, sig+"00"), "extended")
	assert.False(t, NewVerifier("other-secret").Verify(body, sig), "wrong secret")
	assert.False(t, v.Verify([]byte(`{broken`), sig), "malformed body")
}

func TestVerifier_Skips(t *testing.T) {
	body := []byte(`{"name":"Siti","amount":20000}`)

	disabled := NewVerifier("")
	assert.False(t, disabled.Enabled())
	assert.True(t, disabled.Verify(body, "deadbeef"))
	assert.True(t, disabled.Verify(body, "not-hex"))

	var nilVerifier *Verifier
	assert.False(t, nilVerifier.Enabled())
	assert.True(t, nilVerifier.Verify(body, "deadbeef"))

	enabled := NewVerifier(testSecret)
	assert.True(t, enabled.Enabled())
	assert.True(t, enabled.Verify(body, ""), "missing signature is skipped")
}

func TestVerifier_SignWithoutSecret(t *testing.T) {
	_, err := NewVerifier("").Sign([]byte(`{}`))
	assert.Error(t, err)
}
