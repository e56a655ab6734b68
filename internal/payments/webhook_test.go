package payments_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"alcyxob/gym-portal/internal/payments"
)

const checkoutPayload = `{
  "id": "evt_1",
  "object": "event",
  "type": "checkout.session.completed",
  "data": {
    "object": {
      "id": "cs_test_1",
      "object": "checkout.session",
      "customer_details": {"email": "ana@example.com"},
      "line_items": {
        "object": "list",
        "data": [
          {"id": "li_1", "price": {"id": "price_1", "product": "prod_pt_pack_4"}},
          {"id": "li_2", "price": {"id": "price_2", "product": "prod_premium_monthly"}}
        ]
      }
    }
  }
}`

// sign builds a Stripe-Signature header value for payload.
func sign(payload []byte, secret string, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(fmt.Sprintf("%d.%s", ts.Unix(), payload)))
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func TestVerifier(t *testing.T) {
	payload := []byte(checkoutPayload)
	secret := "whsec_test"

	tests := []struct {
		name     string
		verifier *payments.Verifier
		header   string
		wantErr  error
	}{
		{name: "valid signature", verifier: payments.NewVerifier(secret, false), header: sign(payload, secret, time.Now())},
		{name: "wrong secret", verifier: payments.NewVerifier(secret, false), header: sign(payload, "other", time.Now()), wantErr: payments.ErrInvalidSignature},
		{name: "missing header", verifier: payments.NewVerifier(secret, false), header: "", wantErr: payments.ErrInvalidSignature},
		{name: "stale timestamp", verifier: payments.NewVerifier(secret, false), header: sign(payload, secret, time.Now().Add(-time.Hour)), wantErr: payments.ErrInvalidSignature},
		{name: "no secret rejects", verifier: payments.NewVerifier("", false), header: "", wantErr: payments.ErrUnsignedRejected},
		{name: "no secret, unsigned allowed", verifier: payments.NewVerifier("", true), header: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.verifier.Verify(payload, tt.header)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestParseEvent(t *testing.T) {
	t.Run("checkout completed", func(t *testing.T) {
		ev, err := payments.ParseEvent([]byte(checkoutPayload))
		if err != nil {
			t.Fatalf("ParseEvent() error = %v", err)
		}
		if !ev.Completed() || ev.Email != "ana@example.com" {
			t.Errorf("unexpected event %+v", ev)
		}
		want := []string{"prod_pt_pack_4", "prod_premium_monthly"}
		if !reflect.DeepEqual(ev.ProductIDs, want) {
			t.Errorf("ProductIDs = %v, want %v", ev.ProductIDs, want)
		}
	})

	t.Run("other event type", func(t *testing.T) {
		ev, err := payments.ParseEvent([]byte(`{"id":"evt_2","type":"invoice.paid","data":{"object":{}}}`))
		if err != nil {
			t.Fatalf("ParseEvent() error = %v", err)
		}
		if ev.Completed() {
			t.Errorf("invoice.paid must not count as completed checkout")
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := payments.ParseEvent([]byte(`not json`)); !errors.Is(err, payments.ErrMalformedEvent) {
			t.Errorf("expected ErrMalformedEvent, got %v", err)
		}
	})
}
