// Package payment wraps the Omise payment gateway.  Charges carry the
// booking id in their metadata so webhook events can be correlated
// back to bookings without a separate mapping table.
package payment

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/omise/omise-go"
	"github.com/omise/omise-go/operations"
)

// Gateway is a thin wrapper over the Omise client.
type Gateway struct {
	client *omise.Client
}

// New builds a Gateway from the public/secret key pair.
func New(publicKey, secretKey string) (*Gateway, error) {
	c, err := omise.NewClient(publicKey, secretKey)
	if err != nil {
		return nil, fmt.Errorf("omise client: %w", err)
	}
	return &Gateway{client: c}, nil
}

// ChargeResult is what the checkout endpoint needs back: the charge
// id to store on the booking, the gateway status, and the authorize
// URI the customer is redirected to for offsite payment methods.
type ChargeResult struct {
	ChargeID     string
	Status       string
	AuthorizeURI string
}

// ChargeBooking creates a charge for a booking.  Exactly one of
// cardToken or sourceID must be set; amounts are integer cents (the
// gateway's smallest-unit convention matches ours).  A fresh UUID
// rides along in the metadata so a retried request is identifiable on
// the gateway dashboard.
func (g *Gateway) ChargeBooking(bookingID uint64, amountCents uint32, currency, cardToken, sourceID string) (*ChargeResult, error) {
	if cardToken == "" && sourceID == "" {
		return nil, fmt.Errorf("card token or source id required")
	}
	ch := &omise.Charge{}
	req := &operations.CreateCharge{
		Amount:   int64(amountCents),
		Currency: currency,
		Card:     cardToken,
		Source:   sourceID,
		Metadata: map[string]interface{}{
			"booking_id":  strconv.FormatUint(bookingID, 10),
			"attempt_ref": uuid.NewString(),
		},
	}
	if err := g.client.Do(ch, req); err != nil {
		return nil, fmt.Errorf("create charge: %w", err)
	}
	return &ChargeResult{
		ChargeID:     ch.ID,
		Status:       string(ch.Status),
		AuthorizeURI: ch.AuthorizeURI,
	}, nil
}

// WebhookCharge re-retrieves an event from the gateway by id and, for
// charge completion events, extracts the charge.  Re-retrieving means
// the webhook payload itself is never trusted: a forged request with
// a made-up event id fails the authenticated lookup.  The returned
// charge is nil for event keys we do not process.
func (g *Gateway) WebhookCharge(eventID string) (*omise.Charge, error) {
	ev := &omise.Event{}
	if err := g.client.Do(ev, &operations.RetrieveEvent{EventID: eventID}); err != nil {
		return nil, fmt.Errorf("retrieve event: %w", err)
	}
	if ev.Key != "charge.complete" && ev.Key != "charge.create" {
		return nil, nil
	}
	// ev.Data is a decoded interface{}; round-trip through JSON to get
	// a typed charge.
	raw, err := json.Marshal(ev.Data)
	if err != nil {
		return nil, fmt.Errorf("marshal event data: %w", err)
	}
	var ch omise.Charge
	if err := json.Unmarshal(raw, &ch); err != nil {
		return nil, fmt.Errorf("unmarshal charge: %w", err)
	}
	return &ch, nil
}

// BookingIDFromCharge pulls the booking id out of charge metadata.
func BookingIDFromCharge(ch *omise.Charge) (uint64, bool) {
	raw, _ := ch.Metadata["booking_id"].(string)
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
