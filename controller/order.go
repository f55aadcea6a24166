package controller

import (
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ayushhkrr/PromptVerse/logic"
	"github.com/ayushhkrr/PromptVerse/pkg"
)

// signatureTolerance bounds how stale a webhook timestamp may be.
const signatureTolerance = 5 * time.Minute

// OrderController handles checkout, the payment provider callback, and
// purchase history.
type OrderController struct {
	checkout      *logic.CheckoutLogic
	orders        *logic.OrderLogic
	webhookSecret string
}

func NewOrderController(checkout *logic.CheckoutLogic, orders *logic.OrderLogic, webhookSecret string) *OrderController {
	return &OrderController{checkout: checkout, orders: orders, webhookSecret: webhookSecret}
}

// Checkout handles POST /api/v1/orders/checkout/:id. It opens a hosted
// payment session and returns the redirect URL; no local state changes until
// the provider confirms payment through the webhook.
func (c *OrderController) Checkout(ctx *gin.Context) {
	caller, ok := currentUser(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	promptID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid prompt id"})
		return
	}
	url, err := c.checkout.CreateSession(ctx, caller, promptID)
	if err != nil {
		respondErr(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"url": url})
}

// Webhook handles POST /api/v1/orders/webhook, the asynchronous fulfillment
// callback. The signature is verified over the exact raw body before any
// JSON parsing. A bad signature is the only condition reported as an error;
// everything after verification is acknowledged so the provider does not
// retry forever, with failures only logged.
func (c *OrderController) Webhook(ctx *gin.Context) {
	payload, err := io.ReadAll(ctx.Request.Body)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "could not read body"})
		return
	}

	sig := ctx.GetHeader(pkg.SignatureHeader)
	if err := pkg.VerifyWebhookSignature(payload, sig, c.webhookSecret, signatureTolerance, time.Now()); err != nil {
		log.Printf("webhook: signature verification failed: %v", err)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
		return
	}

	event, err := pkg.ParseWebhookEvent(payload)
	if err != nil {
		log.Printf("webhook: parse event: %v", err)
		ctx.JSON(http.StatusOK, gin.H{"received": true})
		return
	}
	if event.Type != pkg.EventCheckoutCompleted {
		log.Printf("webhook: unhandled event type %s", event.Type)
		ctx.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	session, err := event.Session()
	if err != nil {
		log.Printf("webhook: parse session: %v", err)
		ctx.JSON(http.StatusOK, gin.H{"received": true})
		return
	}
	if session.PaymentStatus != pkg.PaymentStatusPaid {
		log.Printf("webhook: session %s completed but payment status is %s", session.ID, session.PaymentStatus)
		ctx.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	if err := c.orders.Fulfill(ctx, session); err != nil {
		log.Printf("webhook: fulfill session %s: %v", session.ID, err)
	}
	ctx.JSON(http.StatusOK, gin.H{"received": true})
}

// MyPurchases handles GET /api/v1/orders/prompts.
func (c *OrderController) MyPurchases(ctx *gin.Context) {
	caller, ok := currentUser(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	purchases, err := c.orders.Purchases(ctx, caller)
	if err != nil {
		respondErr(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"purchases": purchases})
}
