package domain

import "github.com/google/uuid"

const canonicalIDLength = 36

// ID identifies a persisted hookup. The zero value is an unassigned ID,
// carried by hookups that have not been added to a repository yet.
type ID struct {
	value string
}

// ParseID validates value as a canonical RFC 4122 UUID of any version.
// Surrounding whitespace is not tolerated.
func ParseID(value string) (ID, error) {
	if len(value) != canonicalIDLength {
		return ID{}, ErrInvalidID
	}
	parsed, err := uuid.Parse(value)
	if err != nil {
		return ID{}, ErrInvalidID
	}
	return ID{value: parsed.String()}, nil
}

// NewID returns a fresh random ID.
func NewID() ID {
	return ID{value: uuid.NewString()}
}

// IsAssigned reports whether the ID refers to a persisted hookup.
func (id ID) IsAssigned() bool {
	return id.value != ""
}

func (id ID) String() string {
	return id.value
}
