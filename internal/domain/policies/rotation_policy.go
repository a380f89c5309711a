package policies

import "time"

const DefaultRotationInterval = 10 * time.Minute

// RotationDue reports whether a pool last rotated at lastRotationAt must
// rotate at now.
func RotationDue(lastRotationAt, now time.Time, interval time.Duration) bool {
	if interval <= 0 {
		interval = DefaultRotationInterval
	}

	return now.Sub(lastRotationAt) >= interval
}

// ForcedRotationTime is the lastRotationAt value that makes any access at or
// after now take the rotation branch.
func ForcedRotationTime(now time.Time, interval time.Duration) time.Time {
	if interval <= 0 {
		interval = DefaultRotationInterval
	}

	return now.Add(-interval)
}

// NextRotationAt is the earliest time an access will rotate the pool.
func NextRotationAt(lastRotationAt time.Time, interval time.Duration) time.Time {
	if interval <= 0 {
		interval = DefaultRotationInterval
	}

	return lastRotationAt.Add(interval)
}
