package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidConsumptionType = errors.New("invalid_consumption_type")
	ErrInvalidConsumptionUnit = errors.New("invalid_consumption_unit")
	ErrInvalidID              = errors.New("invalid_id")
	ErrNotFound               = errors.New("not_found")
	ErrNameConflict           = errors.New("name_conflict")
	ErrEndpointConflict       = errors.New("endpoint_conflict")
)

// NameConflict reports that name is already used by another hookup.
func NameConflict(name string) error {
	return fmt.Errorf("%w: name %s already exists", ErrNameConflict, name)
}

// EndpointConflict reports that endpoint is already used by another hookup.
func EndpointConflict(endpoint string) error {
	return fmt.Errorf("%w: endpoint %s already exists", ErrEndpointConflict, endpoint)
}

// IsConflict reports whether err is a name or endpoint conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrNameConflict) || errors.Is(err, ErrEndpointConflict)
}
