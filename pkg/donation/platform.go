// Package donation turns third-party donation webhooks into canonical events.
//
// Payloads from each platform are decoded into a fixed set of variants
// (SaweriaPayload, BagiBagiPayload). Detect picks the variant, Verifier checks
// the sender's HMAC where the platform signs its requests, and Normalize maps
// the variant onto Event.
package donation

import "strings"

// Platform identifies the service a webhook came from.
type Platform string

const (
	PlatformUnknown  Platform = ""
	PlatformSaweria  Platform = "saweria"
	PlatformBagiBagi Platform = "bagibagi"
)

// BagiBagiSignatureHeader carries the hex HMAC-SHA256 of the request body.
const BagiBagiSignatureHeader = "X-Bagibagi-Signature"

const bagiBagiTransactionPrefix = "bagibagi-"

var platforms = []Platform{PlatformSaweria, PlatformBagiBagi}

// DisplayName returns the human readable platform name used in responses.
func (p Platform) DisplayName() string {
	switch p {
	case PlatformSaweria:
		return "Saweria"
	case PlatformBagiBagi:
		return "BagiBagi"
	default:
		return "unknown"
	}
}

// Known reports whether p is one of the supported platforms.
func (p Platform) Known() bool {
	for _, known := range platforms {
		if p == known {
			return true
		}
	}
	return false
}

// SignatureHeader returns the header carrying the request signature, or ""
// when the platform does not sign its webhooks.
func (p Platform) SignatureHeader() string {
	if p == PlatformBagiBagi {
		return BagiBagiSignatureHeader
	}
	return ""
}

// SupportsSignature reports whether the platform signs its webhooks.
func (p Platform) SupportsSignature() bool {
	return p.SignatureHeader() != ""
}

// Platforms returns every supported platform.
func Platforms() []Platform {
	out := make([]Platform, len(platforms))
	copy(out, platforms)
	return out
}

// SupportedPlatforms renders the supported platforms for error messages,
// e.g. "Saweria, BagiBagi".
func SupportedPlatforms() string {
	names := make([]string, 0, len(platforms))
	for _, p := range platforms {
		names = append(names, p.DisplayName())
	}
	return strings.Join(names, ", ")
}
