package logic

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ayushhkrr/PromptVerse/models"
	"github.com/ayushhkrr/PromptVerse/pkg"
)

// OrderStore is the persistence contract for the purchase ledger.
// *dao.OrderDAO satisfies it.
type OrderStore interface {
	Create(ctx context.Context, o *models.Order) error
	ExistsBySession(ctx context.Context, sessionID string) (bool, error)
	ListByBuyer(ctx context.Context, buyer uuid.UUID) ([]models.Order, error)
	Count(ctx context.Context) (int64, error)
	Revenue(ctx context.Context) (int64, error)
}

// OrderLogic records confirmed purchases and serves purchase history.
type OrderLogic struct {
	orders  OrderStore
	prompts PromptStore
	audits  AuditRecorder
	pub     EventPublisher // nil when no exchange is configured
}

func NewOrderLogic(orders OrderStore, prompts PromptStore, audits AuditRecorder, pub EventPublisher) *OrderLogic {
	return &OrderLogic{orders: orders, prompts: prompts, audits: audits, pub: pub}
}

// Fulfill durably records a paid checkout session: exactly one order per
// session id, plus an atomic bump of the listing's purchase counter. The
// order row is the source of truth; the counter is best-effort
// denormalization. Callers ack the provider regardless of the return value —
// an error here is logged, never retried by us.
func (l *OrderLogic) Fulfill(ctx context.Context, session *pkg.CheckoutSession) error {
	buyerID, err := uuid.Parse(session.Metadata["user_id"])
	if err != nil {
		log.Printf("fulfill: session %s has bad user_id metadata: %v", session.ID, err)
		return nil
	}
	promptID, err := uuid.Parse(session.Metadata["prompt_id"])
	if err != nil {
		log.Printf("fulfill: session %s has bad prompt_id metadata: %v", session.ID, err)
		return nil
	}

	exists, err := l.orders.ExistsBySession(ctx, session.ID)
	if err != nil {
		return err
	}
	if exists {
		// Provider redelivery; the sale is already on the ledger.
		log.Printf("fulfill: session %s already fulfilled", session.ID)
		return nil
	}

	prompt, err := l.prompts.ByID(ctx, promptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Dangling reference; never crash the handler over it.
			log.Printf("fulfill: session %s references missing prompt %s", session.ID, promptID)
			return nil
		}
		return err
	}

	order := &models.Order{
		BuyerID:   buyerID,
		PromptID:  promptID,
		Price:     prompt.Price,
		SessionID: session.ID,
	}
	if err := l.orders.Create(ctx, order); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the race with a concurrent redelivery; the unique
			// session index kept the ledger correct.
			return nil
		}
		return err
	}

	if err := l.prompts.IncrementPurchaseCount(ctx, promptID); err != nil {
		log.Printf("fulfill: increment purchase count for %s: %v", promptID, err)
	}

	if l.pub != nil {
		evt := map[string]any{
			"order_id":  order.ID,
			"buyer_id":  buyerID,
			"prompt_id": promptID,
			"price":     order.Price,
		}
		if err := l.pub.PublishJSON(ctx, "order.fulfilled", evt); err != nil {
			log.Printf("fulfill: publish order.fulfilled: %v", err)
		}
	}

	audit(ctx, l.audits, buyerID, "ORDER_PLACED", map[string]any{
		"order_id":  order.ID,
		"prompt_id": promptID,
		"price":     order.Price,
	})
	return nil
}

// Purchase is one ledger entry joined to its still-existing listing.
type Purchase struct {
	Order  models.Order  `json:"order"`
	Prompt models.Prompt `json:"prompt"`
}

// Purchases returns the caller's orders joined to their prompts. Orders
// whose prompt was since deleted are silently excluded.
func (l *OrderLogic) Purchases(ctx context.Context, caller *models.User) ([]Purchase, error) {
	orders, err := l.orders.ListByBuyer(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return []Purchase{}, nil
	}

	ids := make([]uuid.UUID, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.PromptID)
	}
	prompts, err := l.prompts.ByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.Prompt, len(prompts))
	for _, p := range prompts {
		byID[p.ID] = p
	}

	purchases := make([]Purchase, 0, len(orders))
	for _, o := range orders {
		p, ok := byID[o.PromptID]
		if !ok {
			continue
		}
		purchases = append(purchases, Purchase{Order: o, Prompt: p})
	}
	return purchases, nil
}
