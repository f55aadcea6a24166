package logic

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ayushhkrr/PromptVerse/config"
	"github.com/ayushhkrr/PromptVerse/models"
	"github.com/ayushhkrr/PromptVerse/pkg"
)

// SessionCreator opens hosted payment sessions. *pkg.PaymentClient
// satisfies it.
type SessionCreator interface {
	CreateCheckoutSession(ctx context.Context, in pkg.CreateCheckoutSessionInput) (*pkg.CheckoutSession, error)
}

// CheckoutLogic starts purchases. It never writes local state: entitlement
// is granted only by the fulfillment handler once payment is confirmed.
type CheckoutLogic struct {
	prompts    PromptStore
	sessions   SessionCreator
	successURL string
	cancelURL  string
}

func NewCheckoutLogic(prompts PromptStore, sessions SessionCreator, cfg *config.Config) *CheckoutLogic {
	return &CheckoutLogic{
		prompts:    prompts,
		sessions:   sessions,
		successURL: cfg.Payment.SuccessURL,
		cancelURL:  cfg.Payment.CancelURL,
	}
}

// CreateSession validates the purchase and opens a provider-hosted checkout
// session carrying the buyer and listing ids as opaque metadata. Returns the
// redirect URL the buyer must visit to pay.
func (l *CheckoutLogic) CreateSession(ctx context.Context, caller *models.User, promptID uuid.UUID) (string, error) {
	prompt, err := l.prompts.ByID(ctx, promptID)
	if err != nil {
		return "", mapNotFound(err)
	}
	// Unapproved listings are not purchasable and read as missing.
	if prompt.Status != models.ModerationApproved {
		return "", fmt.Errorf("%w: prompt not found or not approved", ErrNotFound)
	}
	if caller.ID == prompt.OwnerID {
		return "", fmt.Errorf("%w: sellers cannot purchase their own prompt", ErrForbidden)
	}
	if err := authorize(caller, uuid.Nil, models.RoleBuyer); err != nil {
		return "", fmt.Errorf("%w: only buyers can purchase prompts", ErrForbidden)
	}
	if prompt.Price <= 0 {
		return "", fmt.Errorf("%w: price must be positive", ErrValidation)
	}

	session, err := l.sessions.CreateCheckoutSession(ctx, pkg.CreateCheckoutSessionInput{
		Name:       prompt.Title,
		Amount:     prompt.Price,
		Currency:   "usd",
		ImageURL:   prompt.ThumbnailURL,
		SuccessURL: l.successURL + "?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  l.cancelURL,
		Metadata: map[string]string{
			"user_id":   caller.ID.String(),
			"prompt_id": prompt.ID.String(),
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: payment provider: %v", ErrUpstream, err)
	}
	return session.URL, nil
}
