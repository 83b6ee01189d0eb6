package donation

import "strings"

// Event maps the Saweria variant onto the canonical event.
func (s SaweriaPayload) Event() (*Event, bool) {
	return buildEvent(s.DonatorName, s.AmountRaw, s.Message)
}

// Event maps the BagiBagi variant onto the canonical event.
func (b BagiBagiPayload) Event() (*Event, bool) {
	return buildEvent(b.Name, b.Amount, b.Message)
}

// Normalize maps a payload of an already detected platform onto an Event.
// It returns false when the donor name is missing. The amount is copied
// verbatim and left for Event.Validate to judge.
func Normalize(p Payload, platform Platform) (*Event, bool) {
	switch platform {
	case PlatformSaweria:
		return ParseSaweria(p).Event()
	case PlatformBagiBagi:
		return ParseBagiBagi(p).Event()
	default:
		return nil, false
	}
}

func buildEvent(name *string, amount any, message string) (*Event, bool) {
	if name == nil {
		return nil, false
	}
	num, _ := amountNumber(amount)
	return &Event{
		Donator: strings.TrimSpace(*name),
		Amount:  num,
		Message: message,
	}, true
}
