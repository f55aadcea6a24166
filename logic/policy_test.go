package logic

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/ayushhkrr/PromptVerse/models"
)

func TestAuthorize(t *testing.T) {
	owner := uuid.New()

	t.Run("nil caller", func(t *testing.T) {
		assert.ErrorIs(t, authorize(nil, uuid.Nil, ""), ErrUnauthorized)
	})

	t.Run("role mismatch", func(t *testing.T) {
		err := authorize(buyer(), uuid.Nil, models.RoleSeller)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("admin does not bypass role checks", func(t *testing.T) {
		err := authorize(admin(), uuid.Nil, models.RoleSeller)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("ownership mismatch", func(t *testing.T) {
		err := authorize(seller(), owner, "")
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("owner passes", func(t *testing.T) {
		caller := seller()
		assert.NoError(t, authorize(caller, caller.ID, models.RoleSeller))
	})

	t.Run("no constraints", func(t *testing.T) {
		assert.NoError(t, authorize(buyer(), uuid.Nil, ""))
	})
}
