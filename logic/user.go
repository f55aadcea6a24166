package logic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"github.com/ayushhkrr/PromptVerse/auth"
	"github.com/ayushhkrr/PromptVerse/config"
	"github.com/ayushhkrr/PromptVerse/models"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// UserStore is the persistence contract the user logic depends on.
// *dao.UserDAO satisfies it.
type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	ByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ByLogin(ctx context.Context, login string) (*models.User, error)
	ByEmail(ctx context.Context, email string) (*models.User, error)
	ByUsername(ctx context.Context, username string) (*models.User, error)
	ByGoogleID(ctx context.Context, sub string) (*models.User, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) (*models.User, error)
	SetStatus(ctx context.Context, id uuid.UUID, status models.Status) error
	SetRole(ctx context.Context, id uuid.UUID, role models.Role) error
	DeleteWithPrompts(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, page, limit int) ([]models.User, int64, error)
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status models.Status) (int64, error)
	CountActiveByRole(ctx context.Context, role models.Role) (int64, error)
}

// UserLogic handles identity and profile business logic.
type UserLogic struct {
	users       UserStore
	audits      AuditRecorder
	jwtSecret   string
	jwtTTL      time.Duration
	oauth       *oauth2.Config
	userInfoURL string
}

func NewUserLogic(users UserStore, audits AuditRecorder, cfg *config.Config, oauth *oauth2.Config) *UserLogic {
	return &UserLogic{
		users:       users,
		audits:      audits,
		jwtSecret:   cfg.Auth.Secret,
		jwtTTL:      time.Duration(cfg.Auth.ExpHour) * time.Hour,
		oauth:       oauth,
		userInfoURL: googleUserInfoURL,
	}
}

type RegisterInput struct {
	FullName string `json:"full_name" binding:"required"`
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func validateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("%w: username is required", ErrValidation)
	}
	if strings.ContainsAny(username, " \t\n") {
		return fmt.Errorf("%w: username must not contain spaces", ErrValidation)
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters long", ErrValidation)
	}
	return nil
}

// Register creates a new buyer account and issues an access token.
func (l *UserLogic) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	if len(strings.TrimSpace(in.FullName)) < 4 {
		return nil, "", fmt.Errorf("%w: full name must be at least 4 characters long", ErrValidation)
	}
	username := strings.ToLower(strings.TrimSpace(in.Username))
	if err := validateUsername(username); err != nil {
		return nil, "", err
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if !strings.Contains(email, "@") {
		return nil, "", fmt.Errorf("%w: enter a valid email", ErrValidation)
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, "", err
	}

	if _, err := l.users.ByUsername(ctx, username); err == nil {
		return nil, "", fmt.Errorf("%w: user already exists", ErrValidation)
	} else if !errorsIsNotFound(err) {
		return nil, "", err
	}
	if _, err := l.users.ByEmail(ctx, email); err == nil {
		return nil, "", fmt.Errorf("%w: user already exists", ErrValidation)
	} else if !errorsIsNotFound(err) {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}
	user := &models.User{
		FullName:     strings.TrimSpace(in.FullName),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleBuyer,
		Status:       models.StatusActive,
	}
	if err := l.users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, _, err := auth.CreateAccessToken(l.jwtSecret, user.ID.String(), string(user.Role), l.jwtTTL)
	if err != nil {
		return nil, "", err
	}
	audit(ctx, l.audits, user.ID, "USER_REGISTERED", nil)
	return user, token, nil
}

// Login authenticates by username or email. Only active accounts may log in.
func (l *UserLogic) Login(ctx context.Context, login, password string) (*models.User, string, error) {
	if login == "" || password == "" {
		return nil, "", fmt.Errorf("%w: login and password are required", ErrValidation)
	}
	user, err := l.users.ByLogin(ctx, strings.ToLower(strings.TrimSpace(login)))
	if err != nil {
		if errorsIsNotFound(err) {
			return nil, "", fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
		}
		return nil, "", err
	}
	if user.Status != models.StatusActive {
		return nil, "", fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}

	token, _, err := auth.CreateAccessToken(l.jwtSecret, user.ID.String(), string(user.Role), l.jwtTTL)
	if err != nil {
		return nil, "", err
	}
	audit(ctx, l.audits, user.ID, "USER_LOGGED_IN", nil)
	return user, token, nil
}

func (l *UserLogic) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := l.users.ByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return user, nil
}

type UpdateProfileInput struct {
	FullName *string `json:"full_name"`
	Username *string `json:"username"`
	Password *string `json:"password"`
}

// UpdateProfile applies a self-service edit to the caller's own account.
func (l *UserLogic) UpdateProfile(ctx context.Context, caller *models.User, target uuid.UUID, in UpdateProfileInput) (*models.User, error) {
	if _, err := l.users.ByID(ctx, target); err != nil {
		return nil, mapNotFound(err)
	}
	if err := authorize(caller, target, ""); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if in.FullName != nil {
		if len(strings.TrimSpace(*in.FullName)) < 4 {
			return nil, fmt.Errorf("%w: full name must be at least 4 characters long", ErrValidation)
		}
		fields["full_name"] = strings.TrimSpace(*in.FullName)
	}
	if in.Username != nil {
		username := strings.ToLower(strings.TrimSpace(*in.Username))
		if err := validateUsername(username); err != nil {
			return nil, err
		}
		fields["username"] = username
	}
	if in.Password != nil {
		if err := validatePassword(*in.Password); err != nil {
			return nil, err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		fields["password_hash"] = string(hash)
	}
	if len(fields) == 0 {
		return l.users.ByID(ctx, target)
	}

	user, err := l.users.UpdateFields(ctx, target, fields)
	if err != nil {
		return nil, err
	}
	audit(ctx, l.audits, caller.ID, "USER_UPDATED", nil)
	return user, nil
}

// Delete removes the caller's own account and cascades to the listings they
// own. Historical orders referencing those listings survive.
func (l *UserLogic) Delete(ctx context.Context, caller *models.User, target uuid.UUID) error {
	if _, err := l.users.ByID(ctx, target); err != nil {
		return mapNotFound(err)
	}
	if err := authorize(caller, target, ""); err != nil {
		return err
	}
	if err := l.users.DeleteWithPrompts(ctx, target); err != nil {
		return err
	}
	audit(ctx, l.audits, caller.ID, "USER_DELETED", map[string]any{"deleted": target})
	return nil
}

// BecomeSeller promotes a buyer account so it may create listings.
func (l *UserLogic) BecomeSeller(ctx context.Context, caller *models.User) (*models.User, error) {
	if err := authorize(caller, caller.ID, models.RoleBuyer); err != nil {
		return nil, fmt.Errorf("%w: already a seller or admin", ErrValidation)
	}
	if err := l.users.SetRole(ctx, caller.ID, models.RoleSeller); err != nil {
		return nil, err
	}
	audit(ctx, l.audits, caller.ID, "USER_ROLE_UPDATED", map[string]any{"role": models.RoleSeller})
	return l.users.ByID(ctx, caller.ID)
}

// GoogleAuthURL builds the consent-page redirect for the OAuth login flow.
func (l *UserLogic) GoogleAuthURL(state string) string {
	return l.oauth.AuthCodeURL(state)
}

type googleUserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// LoginWithGoogle exchanges the OAuth callback code, resolves or creates the
// matching account, and issues the same access token password login does.
func (l *UserLogic) LoginWithGoogle(ctx context.Context, code string) (*models.User, string, error) {
	tok, err := l.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, "", fmt.Errorf("%w: oauth code exchange: %v", ErrUpstream, err)
	}

	resp, err := l.oauth.Client(ctx, tok).Get(l.userInfoURL)
	if err != nil {
		return nil, "", fmt.Errorf("%w: fetch userinfo: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("%w: read userinfo: %v", ErrUpstream, err)
	}
	var info googleUserInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, "", fmt.Errorf("%w: parse userinfo: %v", ErrUpstream, err)
	}
	if info.ID == "" {
		return nil, "", fmt.Errorf("%w: no subject id from provider", ErrUpstream)
	}

	user, err := l.users.ByGoogleID(ctx, info.ID)
	if errorsIsNotFound(err) {
		user, err = l.linkOrCreateGoogleUser(ctx, info)
	}
	if err != nil {
		return nil, "", err
	}
	if user.Status != models.StatusActive {
		return nil, "", fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}

	token, _, err := auth.CreateAccessToken(l.jwtSecret, user.ID.String(), string(user.Role), l.jwtTTL)
	if err != nil {
		return nil, "", err
	}
	audit(ctx, l.audits, user.ID, "USER_LOGGED_IN", map[string]any{"provider": "google"})
	return user, token, nil
}

func (l *UserLogic) linkOrCreateGoogleUser(ctx context.Context, info googleUserInfo) (*models.User, error) {
	email := strings.ToLower(info.Email)
	if email != "" {
		existing, err := l.users.ByEmail(ctx, email)
		if err != nil && !errorsIsNotFound(err) {
			return nil, err
		}
		if existing != nil && err == nil {
			if existing.GoogleID == "" && existing.PasswordHash != "" {
				// Password account with the same address; do not auto-link.
				return nil, fmt.Errorf("%w: an account with this email already exists, sign in with your password", ErrValidation)
			}
			return existing, nil
		}
	}

	username, err := l.uniqueUsername(ctx, email, info.ID)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		FullName: info.Name,
		Username: username,
		Email:    email,
		GoogleID: info.ID,
		Role:     models.RoleBuyer,
		Status:   models.StatusActive,
	}
	if err := l.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// uniqueUsername derives a handle from the email local part, suffixing a
// counter until it is free.
func (l *UserLogic) uniqueUsername(ctx context.Context, email, sub string) (string, error) {
	base := "user" + sub
	if at := strings.Index(email, "@"); at > 0 {
		cleaned := strings.Map(func(r rune) rune {
			if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
				return r
			}
			return -1
		}, strings.ToLower(email[:at]))
		if cleaned != "" {
			base = cleaned
		}
	}
	candidate := base
	for i := 1; ; i++ {
		_, err := l.users.ByUsername(ctx, candidate)
		if errorsIsNotFound(err) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		candidate = fmt.Sprintf("%s%d", base, i)
	}
}

func errorsIsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
