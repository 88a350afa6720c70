// FILE: internal/controller/webhook_controller.go
package controller

import (
	"subscription-billing-be/internal/dto"
	"subscription-billing-be/internal/pkg/logger"
	"subscription-billing-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IWebhookController interface {
	RegisterRoutes(r fiber.Router)
	Notification(ctx *fiber.Ctx) error
}

type webhookController struct {
	service service.IWebhookService
	log     logger.ILogger
}

func NewWebhookController(service service.IWebhookService, log logger.ILogger) IWebhookController {
	return &webhookController{service: service, log: log}
}

func (c *webhookController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/webhook")
	h.Post("/pg/notification", c.Notification)
}

// Notification acknowledges with 200 even when reconciliation fails
// internally; the provider re-delivers on anything else and a poisoned
// notification would hammer us forever. Only an unparseable body is rejected.
func (c *webhookController) Notification(ctx *fiber.Ctx) error {
	var req dto.WebhookRequest
	if err := ctx.BodyParser(&req); err != nil {
		c.log.Warn("WebhookController", "unparseable webhook body", map[string]interface{}{
			"error": err.Error(),
		})
		return ctx.SendStatus(fiber.StatusBadRequest)
	}
	if req.ImpUid == "" || req.MerchantUid == "" {
		c.log.Warn("WebhookController", "webhook body missing identifiers", map[string]interface{}{
			"imp_uid":      req.ImpUid,
			"merchant_uid": req.MerchantUid,
		})
		return ctx.SendStatus(fiber.StatusOK)
	}

	if err := c.service.HandleNotification(ctx.Context(), &req); err != nil {
		c.log.Error("WebhookController", "webhook reconciliation failed", map[string]interface{}{
			"imp_uid":      req.ImpUid,
			"merchant_uid": req.MerchantUid,
			"error":        err.Error(),
		})
	}
	return ctx.SendStatus(fiber.StatusOK)
}
