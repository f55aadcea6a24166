package logic

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/ayushhkrr/PromptVerse/models"
)

// authorize is the single policy gate invoked by every mutating operation.
// It checks a required role (exact match, no admin bypass) and, when owner
// is set, that the caller is that owner. The access-control middleware has
// already established who the caller is; this decides whether they may.
func authorize(caller *models.User, owner uuid.UUID, required models.Role) error {
	if caller == nil {
		return ErrUnauthorized
	}
	if required != "" && caller.Role != required {
		return fmt.Errorf("%w: requires %s role", ErrForbidden, required)
	}
	if owner != uuid.Nil && caller.ID != owner {
		return fmt.Errorf("%w: caller does not own this resource", ErrForbidden)
	}
	return nil
}
