package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stockdeck/marketplace-system/internal/api/metrics"
	"github.com/stockdeck/marketplace-system/internal/core/domain"
	"github.com/stockdeck/marketplace-system/internal/core/ports"
)

// Webhook delivery headers, as set by the provider's delivery service.
const (
	headerMessageID = "svix-id"
	headerTimestamp = "svix-timestamp"
	headerSignature = "svix-signature"
)

// PayloadVerifier authenticates a raw webhook delivery.
type PayloadVerifier interface {
	Verify(messageID, timestamp, signature string, body []byte) error
}

// WebhookHandler handles identity-provider event deliveries.
type WebhookHandler struct {
	verifier PayloadVerifier
	sync     ports.SyncService
}

func NewWebhookHandler(verifier PayloadVerifier, sync ports.SyncService) *WebhookHandler {
	return &WebhookHandler{verifier: verifier, sync: sync}
}

// Receive handles POST /api/webhooks/provider.
//
// Any non-2xx response makes the provider retry the delivery, so only
// verification failures and real processing errors are allowed to fail;
// soft conditions are acknowledged inside the sync service.
//
// @Summary      Receive an identity-provider event
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        svix-id         header    string  true  "Delivery message id"
// @Param        svix-timestamp  header    string  true  "Delivery unix timestamp"
// @Param        svix-signature  header    string  true  "HMAC-SHA256 signature"
// @Success      200  {object}  statusResponse
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /api/webhooks/provider [post]
func (h *WebhookHandler) Receive(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable body")
	}

	msgID := c.Request().Header.Get(headerMessageID)
	if err := h.verifier.Verify(
		msgID,
		c.Request().Header.Get(headerTimestamp),
		c.Request().Header.Get(headerSignature),
		body,
	); err != nil {
		metrics.WebhookRejectedTotal.WithLabelValues("signature").Inc()
		return err
	}

	event, err := domain.DecodeEvent(body)
	if err != nil {
		metrics.WebhookRejectedTotal.WithLabelValues("payload").Inc()
		return err
	}
	event.MessageID = msgID

	if err := h.sync.Process(c.Request().Context(), event); err != nil {
		metrics.WebhookEventsTotal.WithLabelValues(event.RawKind, "error").Inc()
		return err
	}
	metrics.WebhookEventsTotal.WithLabelValues(event.RawKind, "processed").Inc()

	return c.JSON(http.StatusOK, statusResponse{Status: "success"})
}
