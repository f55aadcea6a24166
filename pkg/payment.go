package pkg

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const paymentAPIBaseURL = "https://api.stripe.com/v1"

// SignatureHeader carries the provider's webhook signature.
const SignatureHeader = "Stripe-Signature"

// EventCheckoutCompleted is the only event type fulfillment reacts to.
const EventCheckoutCompleted = "checkout.session.completed"

// PaymentStatusPaid is the session payment status that triggers fulfillment.
const PaymentStatusPaid = "paid"

var ErrInvalidSignature = errors.New("invalid webhook signature")

// PaymentClient talks to the payment provider's REST API. Requests use Basic
// Auth with the secret key as username, per the provider's scheme.
type PaymentClient struct {
	client    *http.Client
	secretKey string
	baseURL   string
}

func NewPaymentClient(secretKey string) *PaymentClient {
	return &PaymentClient{
		client:    &http.Client{Timeout: 15 * time.Second},
		secretKey: secretKey,
		baseURL:   paymentAPIBaseURL,
	}
}

// CheckoutSession is the provider-hosted payment attempt. Metadata carries
// the buyer and listing correlation across the async callback.
type CheckoutSession struct {
	ID            string            `json:"id"`
	URL           string            `json:"url"`
	PaymentStatus string            `json:"payment_status"`
	Metadata      map[string]string `json:"metadata"`
}

type CreateCheckoutSessionInput struct {
	Name       string
	Amount     int64 // cents
	Currency   string
	ImageURL   string
	SuccessURL string
	CancelURL  string
	Metadata   map[string]string
}

// CreateCheckoutSession opens a hosted card-payment session and returns it,
// including the redirect URL the buyer must visit.
func (c *PaymentClient) CreateCheckoutSession(ctx context.Context, in CreateCheckoutSessionInput) (*CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("payment_method_types[0]", "card")
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", in.Currency)
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(in.Amount, 10))
	form.Set("line_items[0][price_data][product_data][name]", in.Name)
	if in.ImageURL != "" {
		form.Set("line_items[0][price_data][product_data][images][0]", in.ImageURL)
	}
	form.Set("success_url", in.SuccessURL)
	form.Set("cancel_url", in.CancelURL)
	for k, v := range in.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.secretKey, "")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("create checkout session failed: %s (%d)", string(body), resp.StatusCode)
	}

	var session CheckoutSession
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("parse checkout session: %w", err)
	}
	return &session, nil
}

// WebhookEvent is the envelope of an inbound provider callback.
type WebhookEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// ParseWebhookEvent decodes an event envelope. Callers must verify the
// signature over the raw payload first.
func ParseWebhookEvent(payload []byte) (*WebhookEvent, error) {
	var ev WebhookEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

// Session extracts the checkout session carried by the event.
func (e *WebhookEvent) Session() (*CheckoutSession, error) {
	var s CheckoutSession
	if err := json.Unmarshal(e.Data.Object, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// VerifyWebhookSignature checks the provider signature header against the
// exact raw request body. The header has the form
// "t=<unix>,v1=<hex hmac-sha256 of '<t>.<body>'>"; multiple v1 entries may be
// present after a secret rotation and any match passes. The timestamp must be
// within tolerance of now to bound replay.
func VerifyWebhookSignature(payload []byte, header, secret string, tolerance time.Duration, now time.Time) error {
	var ts string
	var sigs [][]byte
	for _, part := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			ts = v
		case "v1":
			sig, err := hex.DecodeString(v)
			if err != nil {
				continue
			}
			sigs = append(sigs, sig)
		}
	}
	if ts == "" || len(sigs) == 0 {
		return ErrInvalidSignature
	}

	unix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return ErrInvalidSignature
	}
	at := time.Unix(unix, 0)
	if at.Before(now.Add(-tolerance)) || at.After(now.Add(tolerance)) {
		return ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := mac.Sum(nil)
	for _, sig := range sigs {
		if hmac.Equal(sig, expected) {
			return nil
		}
	}
	return ErrInvalidSignature
}
