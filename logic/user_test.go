package logic

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"

	"github.com/ayushhkrr/PromptVerse/auth"
	"github.com/ayushhkrr/PromptVerse/config"
	"github.com/ayushhkrr/PromptVerse/models"
)

const testSecret = "unit-test-secret"

func newTestUserLogic(users UserStore, audits AuditRecorder) *UserLogic {
	cfg := &config.Config{}
	cfg.Auth.Secret = testSecret
	cfg.Auth.ExpHour = 1
	return NewUserLogic(users, audits, cfg, &oauth2.Config{})
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestRegister(t *testing.T) {
	store := newFakeUserStore()
	audits := &fakeAuditRecorder{}
	l := newTestUserLogic(store, audits)

	user, token, err := l.Register(context.Background(), RegisterInput{
		FullName: "Ada Lovelace",
		Username: "Ada",
		Email:    "Ada@Example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	assert.Equal(t, models.RoleBuyer, user.Role)
	assert.Equal(t, models.StatusActive, user.Status)
	assert.Equal(t, "ada", user.Username)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("correct-horse")))

	claims, err := auth.ParseValidate(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.Sub)
	assert.Equal(t, string(models.RoleBuyer), claims.Role)

	require.Len(t, audits.entries, 1)
	assert.Equal(t, "USER_REGISTERED", audits.entries[0].Action)
}

func TestRegisterValidation(t *testing.T) {
	l := newTestUserLogic(newFakeUserStore(), nil)

	cases := []struct {
		name string
		in   RegisterInput
	}{
		{"short full name", RegisterInput{FullName: "Al", Username: "al", Email: "al@x.com", Password: "longenough"}},
		{"username with space", RegisterInput{FullName: "Alan Turing", Username: "alan turing", Email: "al@x.com", Password: "longenough"}},
		{"bad email", RegisterInput{FullName: "Alan Turing", Username: "alan", Email: "not-an-email", Password: "longenough"}},
		{"short password", RegisterInput{FullName: "Alan Turing", Username: "alan", Email: "al@x.com", Password: "short"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := l.Register(context.Background(), tc.in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestRegisterDuplicate(t *testing.T) {
	store := newFakeUserStore()
	store.add(models.User{Username: "taken", Email: "taken@x.com", Status: models.StatusActive})
	l := newTestUserLogic(store, nil)

	_, _, err := l.Register(context.Background(), RegisterInput{
		FullName: "Grace Hopper", Username: "taken", Email: "new@x.com", Password: "longenough",
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, _, err = l.Register(context.Background(), RegisterInput{
		FullName: "Grace Hopper", Username: "fresh", Email: "taken@x.com", Password: "longenough",
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestLogin(t *testing.T) {
	store := newFakeUserStore()
	store.add(models.User{
		Username:     "grace",
		Email:        "grace@x.com",
		PasswordHash: mustHash(t, "hunter2hunter2"),
		Role:         models.RoleSeller,
		Status:       models.StatusActive,
	})
	l := newTestUserLogic(store, &fakeAuditRecorder{})

	t.Run("by username", func(t *testing.T) {
		user, token, err := l.Login(context.Background(), "grace", "hunter2hunter2")
		require.NoError(t, err)
		assert.Equal(t, "grace", user.Username)
		assert.NotEmpty(t, token)
	})

	t.Run("by email", func(t *testing.T) {
		_, _, err := l.Login(context.Background(), "grace@x.com", "hunter2hunter2")
		require.NoError(t, err)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := l.Login(context.Background(), "grace", "wrong-password")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("unknown login", func(t *testing.T) {
		_, _, err := l.Login(context.Background(), "nobody", "hunter2hunter2")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestLoginBannedUser(t *testing.T) {
	store := newFakeUserStore()
	store.add(models.User{
		Username:     "banned",
		Email:        "banned@x.com",
		PasswordHash: mustHash(t, "hunter2hunter2"),
		Status:       models.StatusBanned,
	})
	l := newTestUserLogic(store, nil)

	_, _, err := l.Login(context.Background(), "banned", "hunter2hunter2")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestBecomeSeller(t *testing.T) {
	store := newFakeUserStore()
	buyer := store.add(models.User{Username: "buyer", Email: "b@x.com", Role: models.RoleBuyer, Status: models.StatusActive})
	l := newTestUserLogic(store, &fakeAuditRecorder{})

	promoted, err := l.BecomeSeller(context.Background(), buyer)
	require.NoError(t, err)
	assert.Equal(t, models.RoleSeller, promoted.Role)

	// Second promotion is rejected.
	_, err = l.BecomeSeller(context.Background(), promoted)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateProfile(t *testing.T) {
	store := newFakeUserStore()
	owner := store.add(models.User{Username: "owner", Email: "o@x.com", FullName: "Owner Person", Status: models.StatusActive})
	other := store.add(models.User{Username: "other", Email: "x@x.com", FullName: "Other Person", Status: models.StatusActive})
	l := newTestUserLogic(store, &fakeAuditRecorder{})

	t.Run("not the owner", func(t *testing.T) {
		name := "New Name"
		_, err := l.UpdateProfile(context.Background(), other, owner.ID, UpdateProfileInput{FullName: &name})
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("password is rehashed", func(t *testing.T) {
		pw := "brand-new-password"
		updated, err := l.UpdateProfile(context.Background(), owner, owner.ID, UpdateProfileInput{Password: &pw})
		require.NoError(t, err)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte(pw)))
	})

	t.Run("short password rejected", func(t *testing.T) {
		pw := "short"
		_, err := l.UpdateProfile(context.Background(), owner, owner.ID, UpdateProfileInput{Password: &pw})
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestDeleteAccount(t *testing.T) {
	store := newFakeUserStore()
	owner := store.add(models.User{Username: "owner", Email: "o@x.com", Status: models.StatusActive})
	other := store.add(models.User{Username: "other", Email: "x@x.com", Status: models.StatusActive})
	l := newTestUserLogic(store, &fakeAuditRecorder{})

	err := l.Delete(context.Background(), other, owner.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, l.Delete(context.Background(), owner, owner.ID))
	_, err = l.Get(context.Background(), owner.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
