package api

import (
	"io"
	"log"
	"net/http"

	"alcyxob/gym-portal/internal/payments"
	"alcyxob/gym-portal/internal/service"

	"github.com/gin-gonic/gin"
)

// maxWebhookBody caps the payload read from the payment provider.
const maxWebhookBody = 64 << 10

type WebhookHandler struct {
	verifier      *payments.Verifier
	ledgerService service.LedgerService
}

func NewWebhookHandler(verifier *payments.Verifier, ledgerService service.LedgerService) *WebhookHandler {
	return &WebhookHandler{verifier: verifier, ledgerService: ledgerService}
}

// PaymentWebhook godoc
// @Summary Payment provider webhook
// @Description Applies completed checkouts to the buyer's subscription and PT balance. Other event types are ignored.
// @Tags Webhooks
// @Accept json
// @Produce json
// @Param Stripe-Signature header string false "Provider signature"
// @Success 200 {object} service.LedgerResult
// @Failure 400 {object} gin.H "Bad signature or payload"
// @Failure 404 {object} gin.H "No account for the customer email"
// @Router /webhooks/payments [post]
func (h *WebhookHandler) PaymentWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Could not read request body")
		return
	}

	// 1. Signature
	if err := h.verifier.Verify(payload, c.GetHeader(payments.SignatureHeader)); err != nil {
		log.Printf("WARN: Rejected payment webhook: %v", err)
		respondError(c, err)
		return
	}

	// 2. Decode
	event, err := payments.ParseEvent(payload)
	if err != nil {
		respondError(c, err)
		return
	}
	if !event.Completed() {
		c.JSON(http.StatusOK, gin.H{"message": "ignored"})
		return
	}

	// 3. Apply
	result, err := h.ledgerService.OnPaymentCompleted(c.Request.Context(), event.Email, event.ProductIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	log.Printf("INFO: Payment event %s applied", event.ID)
	c.JSON(http.StatusOK, result)
}
