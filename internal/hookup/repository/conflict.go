package repository

import (
	"strings"

	hookupdomain "github.com/smallbiznis/hookup/internal/hookup/domain"
	"github.com/smallbiznis/hookup/pkg/db"
)

// conflictFromError maps a store unique violation onto the field that fired.
// It returns nil when err is not a name or endpoint violation.
func conflictFromError(err error, h *hookupdomain.Hookup) error {
	key, ok := db.UniqueViolation(err)
	if !ok {
		return nil
	}

	key = strings.ToLower(key)
	switch {
	case key == endpointUniqueIndex || strings.HasSuffix(key, "endpoint"):
		return hookupdomain.EndpointConflict(h.Endpoint)
	case key == nameUniqueIndex || strings.HasSuffix(key, "name"):
		return hookupdomain.NameConflict(h.Name)
	default:
		return nil
	}
}
