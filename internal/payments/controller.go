package payments

import (
	"errors"
	"net/http"

	"github.com/JasonDebnath001/QuickTix-server/internal/shared/apperr"
	"github.com/JasonDebnath001/QuickTix-server/internal/shared/utils/response"
	"github.com/JasonDebnath001/QuickTix-server/pkg/logger"

	"github.com/gin-gonic/gin"
)

// maxWebhookBody caps the payload read from the provider.
const maxWebhookBody = 64 << 10

type Controller interface {
	Webhook(c *gin.Context)
}

type controller struct {
	reconciler *Reconciler
	log        *logger.Logger
}

func NewController(reconciler *Reconciler, log *logger.Logger) Controller {
	if log == nil {
		log = logger.GetDefault()
	}
	return &controller{reconciler: reconciler, log: log.WithComponent("payments")}
}

func (ctrl *controller) Webhook(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody)
	payload, err := c.GetRawData()
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Unable to read request body", nil, err.Error())
		return
	}

	err = ctrl.reconciler.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, apperr.ErrAuthenticationFailure) {
			response.RespondJSON(c, "error", http.StatusBadRequest, "Webhook signature verification failed", nil, err.Error())
			return
		}
		ctrl.log.LogHTTPError(c, err, http.StatusInternalServerError)
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Webhook processing failed", nil, nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Webhook received", gin.H{"received": true}, nil)
}
