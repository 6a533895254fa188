package paypal

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrMissingTipMetadata = errors.New("custom_id does not name a tipped user and a tipper")

// Event is the envelope of a webhook delivery.
type Event struct {
	ID         string  `json:"id"`
	EventType  string  `json:"event_type"`
	CreateTime string  `json:"create_time"`
	Resource   Capture `json:"resource"`
}

// Capture is the resource of a PAYMENT.CAPTURE.* event.
type Capture struct {
	ID                string            `json:"id"`
	Status            string            `json:"status"`
	Amount            Money             `json:"amount"`
	CustomID          string            `json:"custom_id"`
	SupplementaryData SupplementaryData `json:"supplementary_data"`
}

type Money struct {
	Value        string `json:"value"`
	CurrencyCode string `json:"currency_code"`
}

type SupplementaryData struct {
	RelatedIDs struct {
		OrderID string `json:"order_id"`
	} `json:"related_ids"`
}

// TipMetadata is the JSON the checkout stores in custom_id.
type TipMetadata struct {
	Tipped   string `json:"tipped"`
	Tipper   string `json:"tipper"`
	Referrer string `json:"referrer"`
}

func ParseEvent(body []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(body, &e); err != nil {
		return nil, fmt.Errorf("decode webhook event: %w", err)
	}
	if e.EventType == "" {
		return nil, errors.New("webhook event has no event_type")
	}
	return &e, nil
}

func (e *Event) IsCaptureCompleted() bool {
	return e.EventType == EventCaptureCompleted
}

// OrderID is the checkout order the capture belongs to, or the capture id
// itself when PayPal did not include the relation.
func (c *Capture) OrderID() string {
	if id := c.SupplementaryData.RelatedIDs.OrderID; id != "" {
		return id
	}
	return c.ID
}

func (c *Capture) TipMetadata() (TipMetadata, error) {
	var m TipMetadata
	if strings.TrimSpace(c.CustomID) == "" {
		return m, ErrMissingTipMetadata
	}
	if err := json.Unmarshal([]byte(c.CustomID), &m); err != nil {
		return m, fmt.Errorf("%w: %v", ErrMissingTipMetadata, err)
	}
	m.Tipped = strings.TrimSpace(m.Tipped)
	m.Tipper = strings.TrimSpace(m.Tipper)
	m.Referrer = strings.TrimSpace(m.Referrer)
	if m.Tipped == "" || m.Tipper == "" {
		return m, ErrMissingTipMetadata
	}
	return m, nil
}
