package types

import (
	"math"
	"time"
)

// TimeFromEpoch converts fractional epoch seconds to a UTC time with
// microsecond precision, the resolution postgres keeps for timestamptz.
func TimeFromEpoch(seconds float64) time.Time {
	whole, frac := math.Modf(seconds)
	micros := math.Round(frac * 1e6)
	return time.Unix(int64(whole), int64(micros)*int64(time.Microsecond)).UTC()
}

// EpochFromTime converts t to fractional epoch seconds.
func EpochFromTime(t time.Time) float64 {
	return float64(t.Unix()) + float64(t.Nanosecond()/int(time.Microsecond))/1e6
}
