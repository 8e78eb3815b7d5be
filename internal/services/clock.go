package services

import "time"

const dateLayout = "2006-01-02"

// Clock supplies the current instant. Production uses time.Now; tests pin it.
type Clock func() time.Time

// FixedClock returns a Clock that always reports t.
func FixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

// ISODate formats t as the UTC calendar date used for daily log keys.
func ISODate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

// ParseISODate validates a YYYY-MM-DD string.
func ParseISODate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}
