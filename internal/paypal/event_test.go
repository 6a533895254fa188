package paypal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

const captureEvent = `{
	"id": "WH-1",
	"event_type": "PAYMENT.CAPTURE.COMPLETED",
	"resource": {
		"id": "CAP-9",
		"status": "COMPLETED",
		"amount": {"value": "12.50", "currency_code": "USD"},
		"custom_id": "{\"tipped\":\"alice\",\"tipper\":\"bob\",\"referrer\":\"carol\"}",
		"supplementary_data": {"related_ids": {"order_id": "ORDER-7"}}
	}
}`

func TestParseCaptureEvent(t *testing.T) {
	e, err := ParseEvent([]byte(captureEvent))
	require.NoError(t, err)
	require.True(t, e.IsCaptureCompleted())
	require.Equal(t, "ORDER-7", e.Resource.OrderID())
	require.Equal(t, "12.50", e.Resource.Amount.Value)

	m, err := e.Resource.TipMetadata()
	require.NoError(t, err)
	require.Equal(t, TipMetadata{Tipped: "alice", Tipper: "bob", Referrer: "carol"}, m)
}

func TestOrderIDFallsBackToCapture(t *testing.T) {
	c := Capture{ID: "CAP-1"}
	require.Equal(t, "CAP-1", c.OrderID())
}

func TestTipMetadataRequiresBothUsers(t *testing.T) {
	cases := []string{
		"",
		"not json",
		`{"tipped":"alice"}`,
		`{"tipper":"bob","tipped":"  "}`,
	}
	for _, custom := range cases {
		c := Capture{CustomID: custom}
		_, err := c.TipMetadata()
		require.True(t, errors.Is(err, ErrMissingTipMetadata), "custom_id %q", custom)
	}
}

func TestParseEventRejectsGarbage(t *testing.T) {
	_, err := ParseEvent([]byte(`{"id":"x"}`))
	require.Error(t, err)
	_, err = ParseEvent([]byte(`{`))
	require.Error(t, err)
}
