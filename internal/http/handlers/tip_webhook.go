package handlers

import (
	"errors"
	"io"
	"net/http"

	"membership_webapp/internal/logger"
	"membership_webapp/internal/metrics"
	"membership_webapp/internal/paypal"
	"membership_webapp/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const maxWebhookBody = 1 << 20

// TipWebhook settles PAYMENT.CAPTURE.COMPLETED deliveries and acknowledges
// every other event untouched.
func (h *Handler) TipWebhook(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.WithContext(ctx)

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		metrics.WebhookEvents.WithLabelValues("bad_request").Inc()
		respondError(c, http.StatusBadRequest, "could not read body")
		return
	}

	if h.Webhook != nil {
		if err := h.Webhook.Verify(ctx, c.Request.Header, body); err != nil {
			if errors.Is(err, paypal.ErrSignatureInvalid) {
				metrics.WebhookEvents.WithLabelValues("unverified").Inc()
				log.Warn("webhook signature rejected", "error", err)
				respondError(c, http.StatusUnauthorized, "invalid webhook signature")
				return
			}
			metrics.WebhookEvents.WithLabelValues("error").Inc()
			log.Error("webhook verification unavailable", "error", err)
			respondError(c, http.StatusInternalServerError, "could not verify webhook")
			return
		}
	}

	event, err := paypal.ParseEvent(body)
	if err != nil {
		metrics.WebhookEvents.WithLabelValues("bad_request").Inc()
		respondError(c, http.StatusBadRequest, "invalid webhook payload")
		return
	}

	if !event.IsCaptureCompleted() {
		metrics.WebhookEvents.WithLabelValues("ignored").Inc()
		c.JSON(http.StatusOK, gin.H{"success": true, "ignored": true, "event_type": event.EventType})
		return
	}

	meta, err := event.Resource.TipMetadata()
	if err != nil {
		metrics.WebhookEvents.WithLabelValues("bad_request").Inc()
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	amount, err := decimal.NewFromString(event.Resource.Amount.Value)
	if err != nil {
		metrics.WebhookEvents.WithLabelValues("bad_request").Inc()
		respondError(c, http.StatusBadRequest, "invalid amount")
		return
	}

	st, err := h.Tips.Settle(ctx, service.TipRequest{
		OrderID:          event.Resource.OrderID(),
		CaptureID:        event.Resource.ID,
		Amount:           amount,
		Currency:         event.Resource.Amount.CurrencyCode,
		TippedUsername:   meta.Tipped,
		TipperUsername:   meta.Tipper,
		ReferrerUsername: meta.Referrer,
	})
	if err != nil {
		metrics.WebhookEvents.WithLabelValues("failed").Inc()
		respondServiceError(c, err, "failed to process tip")
		return
	}

	if st.Duplicate {
		metrics.WebhookEvents.WithLabelValues("duplicate").Inc()
		c.JSON(http.StatusOK, gin.H{"success": true, "duplicate": true})
		return
	}

	metrics.WebhookEvents.WithLabelValues("settled").Inc()
	c.JSON(http.StatusOK, gin.H{
		"success":             true,
		"tip_id":              st.Tip.ID,
		"tickets_generated":   st.Tip.TicketsGenerated,
		"tickets_issued":      st.TicketsIssued,
		"draw_date":           st.DrawDate,
		"referrer_commission": st.Tip.ReferrerCommission,
	})
}
