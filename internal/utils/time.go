package utils

import (
	"time"
)

// Clock returns the current time. Services take one so tests can pin "now".
type Clock func() time.Time

// SystemClock is the production Clock. Times are kept in UTC to the second,
// which is what the database stores.
func SystemClock() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

// FixedClock returns a Clock that always reports t.
func FixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

// UnixTimeToTime converts a Unix timestamp to a UTC time.Time.
func UnixTimeToTime(unixTime int64) time.Time {
	return time.Unix(unixTime, 0).UTC()
}
