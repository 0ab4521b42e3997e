package payments

import "github.com/gin-gonic/gin"

func SetupPaymentRoutes(router *gin.RouterGroup, controller Controller) {
	payments := router.Group("/payments")
	{
		payments.POST("/webhook", controller.Webhook) // POST /api/v1/payments/webhook - Provider callback, signature checked
	}
}
