// Package timesync turns a local wall-clock reading into the payload the
// device's /set-time endpoint expects.
package timesync

import (
	"fmt"
	"time"
)

// Payload is what the device needs to set its clock: seconds since the
// Unix epoch and the operator's zone as minutes east of UTC.
type Payload struct {
	Epoch     int64
	TZMinutes int
}

// Compute builds the payload for t. A zone five hours behind UTC yields
// TZMinutes == -300.
func Compute(t time.Time) Payload {
	_, offset := t.Zone()
	return Payload{
		Epoch:     t.Unix(),
		TZMinutes: offset / 60,
	}
}

// Now is Compute(time.Now()).
func Now() Payload {
	return Compute(time.Now())
}

// String renders the payload for logs.
func (p Payload) String() string {
	sign := "+"
	m := p.TZMinutes
	if m < 0 {
		sign = "-"
		m = -m
	}
	return fmt.Sprintf("%d (UTC%s%02d:%02d)", p.Epoch, sign, m/60, m%60)
}
