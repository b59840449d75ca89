package storage

import "fmt"

// Kind classifies storage failures. Kinds are errors themselves, so
// errors.Is(err, storage.KindAccess) matches any access failure.
type Kind string

const (
	// KindAccess means the backend could not be reached or refused the
	// operation
	KindAccess Kind = "access"
	// KindSerialize means the state could not be encoded
	KindSerialize Kind = "serialize"
	// KindDeserialize means the saved data could not be decoded
	KindDeserialize Kind = "deserialize"
)

func (k Kind) Error() string {
	return "storage: " + string(k) + " failed"
}

// Error describes a failed Save or Load
type Error struct {
	Kind  Kind
	Area  Area
	Key   string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("storage: %s %s/%s", e.Kind, e.Area, e.Key)
	}
	return fmt.Sprintf("storage: %s %s/%s: %v", e.Kind, e.Area, e.Key, e.Cause)
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches the error's Kind
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}
