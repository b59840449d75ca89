package storage

import "time"

// SavePolicy decides whether a change is written to storage.
// changes counts the changes seen so far, lastSaved is the count at the last
// save and lastSaveTime its time (zero before the first save).
type SavePolicy interface {
	ShouldSave(changes int64, lastSaved int64, lastSaveTime time.Time) bool
}

// PolicyFunc is a function that implements SavePolicy
type PolicyFunc func(changes int64, lastSaved int64, lastSaveTime time.Time) bool

func (f PolicyFunc) ShouldSave(changes int64, lastSaved int64, lastSaveTime time.Time) bool {
	return f(changes, lastSaved, lastSaveTime)
}

// Always saves every change
func Always() SavePolicy {
	return PolicyFunc(func(int64, int64, time.Time) bool {
		return true
	})
}

// EveryNChanges saves once n changes have accumulated
func EveryNChanges(n int64) SavePolicy {
	if n <= 0 {
		n = 1
	}
	return PolicyFunc(func(changes int64, lastSaved int64, _ time.Time) bool {
		return changes-lastSaved >= n
	})
}

// Interval saves a change when at least d has passed since the last save
func Interval(d time.Duration) SavePolicy {
	return PolicyFunc(func(_ int64, _ int64, lastSaveTime time.Time) bool {
		return time.Since(lastSaveTime) >= d
	})
}

// Combined saves when ANY of the policies says so
func Combined(policies ...SavePolicy) SavePolicy {
	return PolicyFunc(func(changes int64, lastSaved int64, lastSaveTime time.Time) bool {
		for _, policy := range policies {
			if policy.ShouldSave(changes, lastSaved, lastSaveTime) {
				return true
			}
		}
		return false
	})
}
