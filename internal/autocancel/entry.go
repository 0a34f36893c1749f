package autocancel

import (
	"encoding/json"
	"fmt"
	"time"
)

// Entry is the durable record of a PENDING order awaiting automatic cancellation.
// FirstSeen is set once and never moves.
type Entry struct {
	OrderID   string    `json:"orderId"`
	Identity  string    `json:"identity"`
	Token     string    `json:"token"`
	FirstSeen time.Time `json:"firstSeen"`
	DueAt     time.Time `json:"dueAt"`
	Attempts  int       `json:"attempts"`
}

func (e Entry) encode() (string, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("encode auto-cancel entry: %w", err)
	}
	return string(payload), nil
}

func decodeEntry(raw string) (Entry, error) {
	var e Entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return Entry{}, fmt.Errorf("decode auto-cancel entry: %w", err)
	}
	if e.OrderID == "" {
		return Entry{}, fmt.Errorf("decode auto-cancel entry: missing order id")
	}
	return e, nil
}
