package pkg

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signPayload(secret string, payload []byte, at time.Time) string {
	ts := fmt.Sprintf("%d", at.Unix())
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(payload)
	return fmt.Sprintf("t=%s,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func TestVerifyWebhookSignature(t *testing.T) {
	secret := "whsec_test"
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)
	now := time.Now()
	tolerance := 5 * time.Minute

	t.Run("valid", func(t *testing.T) {
		header := signPayload(secret, payload, now)
		assert.NoError(t, VerifyWebhookSignature(payload, header, secret, tolerance, now))
	})

	t.Run("tampered body", func(t *testing.T) {
		header := signPayload(secret, payload, now)
		err := VerifyWebhookSignature([]byte(`{"id":"evt_2"}`), header, secret, tolerance, now)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("wrong secret", func(t *testing.T) {
		header := signPayload("whsec_other", payload, now)
		err := VerifyWebhookSignature(payload, header, secret, tolerance, now)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("stale timestamp", func(t *testing.T) {
		header := signPayload(secret, payload, now.Add(-6*time.Minute))
		err := VerifyWebhookSignature(payload, header, secret, tolerance, now)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("future timestamp", func(t *testing.T) {
		header := signPayload(secret, payload, now.Add(6*time.Minute))
		err := VerifyWebhookSignature(payload, header, secret, tolerance, now)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("malformed header", func(t *testing.T) {
		assert.ErrorIs(t, VerifyWebhookSignature(payload, "", secret, tolerance, now), ErrInvalidSignature)
		assert.ErrorIs(t, VerifyWebhookSignature(payload, "garbage", secret, tolerance, now), ErrInvalidSignature)
		assert.ErrorIs(t, VerifyWebhookSignature(payload, "t=123", secret, tolerance, now), ErrInvalidSignature)
		assert.ErrorIs(t, VerifyWebhookSignature(payload, "v1=zz", secret, tolerance, now), ErrInvalidSignature)
	})

	t.Run("any matching v1 after rotation", func(t *testing.T) {
		ts := fmt.Sprintf("%d", now.Unix())
		mac := hmac.New(sha256.New, []byte(secret))
		fmt.Fprintf(mac, "%s.%s", ts, payload)
		good := hex.EncodeToString(mac.Sum(nil))
		stale := hex.EncodeToString(make([]byte, 32))
		header := fmt.Sprintf("t=%s,v1=%s,v1=%s", ts, stale, good)
		assert.NoError(t, VerifyWebhookSignature(payload, header, secret, tolerance, now))
	})
}

func TestParseWebhookEvent(t *testing.T) {
	payload := []byte(`{
		"id": "evt_1",
		"type": "checkout.session.completed",
		"data": {"object": {
			"id": "cs_test_1",
			"payment_status": "paid",
			"metadata": {"user_id": "u1", "prompt_id": "p1"}
		}}
	}`)

	event, err := ParseWebhookEvent(payload)
	require.NoError(t, err)
	assert.Equal(t, EventCheckoutCompleted, event.Type)

	session, err := event.Session()
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", session.ID)
	assert.Equal(t, PaymentStatusPaid, session.PaymentStatus)
	assert.Equal(t, "u1", session.Metadata["user_id"])
	assert.Equal(t, "p1", session.Metadata["prompt_id"])

	_, err = ParseWebhookEvent([]byte("not json"))
	assert.Error(t, err)
}

func TestCreateCheckoutSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/checkout/sessions", r.URL.Path)
		user, _, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "sk_test_key", user)

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "payment", r.PostForm.Get("mode"))
		assert.Equal(t, "usd", r.PostForm.Get("line_items[0][price_data][currency]"))
		assert.Equal(t, "499", r.PostForm.Get("line_items[0][price_data][unit_amount]"))
		assert.Equal(t, "Blog outline", r.PostForm.Get("line_items[0][price_data][product_data][name]"))
		assert.Equal(t, "u1", r.PostForm.Get("metadata[user_id]"))

		fmt.Fprint(w, `{"id":"cs_test_1","url":"https://pay.example.com/cs_test_1"}`)
	}))
	defer srv.Close()

	c := NewPaymentClient("sk_test_key")
	c.baseURL = srv.URL

	session, err := c.CreateCheckoutSession(context.Background(), CreateCheckoutSessionInput{
		Name:       "Blog outline",
		Amount:     499,
		Currency:   "usd",
		SuccessURL: "https://shop/success",
		CancelURL:  "https://shop/cancel",
		Metadata:   map[string]string{"user_id": "u1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", session.ID)
	assert.Equal(t, "https://pay.example.com/cs_test_1", session.URL)
}

func TestCreateCheckoutSessionAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		fmt.Fprint(w, `{"error":{"message":"no such price"}}`)
	}))
	defer srv.Close()

	c := NewPaymentClient("sk_test_key")
	c.baseURL = srv.URL

	_, err := c.CreateCheckoutSession(context.Background(), CreateCheckoutSessionInput{Currency: "usd"})
	assert.Error(t, err)
}
