package donation

import (
	"net/http"
	"strings"
)

// Detect classifies a payload. Rules are checked in priority order because
// a BagiBagi payload may also carry Saweria-looking fields:
//
//  1. transaction_id starts with "bagibagi-", or the BagiBagi signature
//     header is set: BagiBagi.
//  2. donator_name is set and amount_raw is present (zero and null count):
//     Saweria.
//  3. anything else: PlatformUnknown.
func Detect(p Payload, headers http.Header) Platform {
	if id, ok := p.stringField("transaction_id"); ok && strings.HasPrefix(id, bagiBagiTransactionPrefix) {
		return PlatformBagiBagi
	}
	if headers.Get(BagiBagiSignatureHeader) != "" {
		return PlatformBagiBagi
	}
	if p.has("donator_name") && p.present("amount_raw") {
		return PlatformSaweria
	}
	return PlatformUnknown
}
