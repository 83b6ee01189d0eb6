package donation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Payload is a decoded webhook body. Numbers are kept as json.Number so that
// amounts pass through untouched.
type Payload map[string]any

// DecodePayload parses a webhook body. A valid JSON document that is not an
// object decodes to an empty Payload, which no platform matches.
func DecodePayload(raw []byte) (Payload, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("decode payload: trailing data after JSON value")
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return Payload{}, nil
	}
	return Payload(obj), nil
}

// has reports whether key is present with a non-null value.
func (p Payload) has(key string) bool {
	v, ok := p[key]
	return ok && v != nil
}

// present reports whether key is present at all, null included.
func (p Payload) present(key string) bool {
	_, ok := p[key]
	return ok
}

func (p Payload) stringField(key string) (string, bool) {
	s, ok := p[key].(string)
	return s, ok
}

// SaweriaPayload is the subset of a Saweria webhook this service reads.
type SaweriaPayload struct {
	DonatorName *string
	AmountRaw   any
	Message     string
}

// BagiBagiPayload is the subset of a BagiBagi webhook this service reads.
type BagiBagiPayload struct {
	TransactionID string
	Name          *string
	Amount        any
	Message       string
}

// ParseSaweria extracts the Saweria variant from p.
func ParseSaweria(p Payload) SaweriaPayload {
	out := SaweriaPayload{
		AmountRaw: p["amount_raw"],
		Message:   messageField(p),
	}
	if name, ok := p.stringField("donator_name"); ok {
		out.DonatorName = &name
	}
	return out
}

// ParseBagiBagi extracts the BagiBagi variant from p.
func ParseBagiBagi(p Payload) BagiBagiPayload {
	out := BagiBagiPayload{
		Amount:  p["amount"],
		Message: messageField(p),
	}
	out.TransactionID, _ = p.stringField("transaction_id")
	if name, ok := p.stringField("name"); ok {
		out.Name = &name
	}
	return out
}

func messageField(p Payload) string {
	msg, _ := p.stringField("message")
	return msg
}

// amountNumber returns v as a JSON number. Numeric strings are accepted the
// same way the backing store accepts them for score increments.
func amountNumber(v any) (json.Number, bool) {
	switch n := v.(type) {
	case json.Number:
		return n, true
	case float64:
		return json.Number(fmt.Sprint(n)), true
	case string:
		dec := json.NewDecoder(strings.NewReader(strings.TrimSpace(n)))
		dec.UseNumber()
		var parsed any
		if err := dec.Decode(&parsed); err != nil {
			return "", false
		}
		num, ok := parsed.(json.Number)
		if !ok || dec.More() {
			return "", false
		}
		return num, true
	default:
		return "", false
	}
}
