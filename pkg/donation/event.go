package donation

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrMissingDonator is returned when the donor name is empty after trimming.
	ErrMissingDonator = errors.New("missing donator")

	// ErrInvalidAmount is returned for absent, zero, negative or non-numeric amounts.
	ErrInvalidAmount = errors.New("invalid amount")
)

// Event is the canonical donation record shared by the queue and the
// leaderboard. Donator keeps its original case; consumers fold it if needed.
type Event struct {
	Donator string      `json:"donator"`
	Amount  json.Number `json:"amount"`
	Message string      `json:"message"`
}

// Validate checks the invariants every stored event satisfies.
func (e *Event) Validate() error {
	if e == nil || strings.TrimSpace(e.Donator) == "" {
		return ErrMissingDonator
	}
	v, err := e.Score()
	if err != nil {
		return err
	}
	if v <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Score returns the amount as a float for sorted-set increments.
func (e *Event) Score() (float64, error) {
	if e.Amount == "" {
		return 0, ErrInvalidAmount
	}
	v, err := strconv.ParseFloat(string(e.Amount), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrInvalidAmount
	}
	return v, nil
}
