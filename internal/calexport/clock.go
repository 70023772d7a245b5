package calexport

import "time"

// Clock supplies the DTSTAMP of exported events.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always reports the same instant, which makes exports
// byte-for-byte reproducible.
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }
