// FILE: internal/controller/billing_key_controller.go
package controller

import (
	"subscription-billing-be/internal/dto"
	"subscription-billing-be/internal/pkg/serverutils"
	"subscription-billing-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IBillingKeyController interface {
	RegisterRoutes(r fiber.Router)
	RequestBillingKey(ctx *fiber.Ctx) error
	ApproveBillingKey(ctx *fiber.Ctx) error
}

type billingKeyController struct {
	service service.IBillingKeyService
}

func NewBillingKeyController(service service.IBillingKeyService) IBillingKeyController {
	return &billingKeyController{service: service}
}

func (c *billingKeyController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/billing-key")
	h.Post("/", serverutils.JwtMiddleware, c.RequestBillingKey)
	h.Post("/approve", serverutils.JwtMiddleware, c.ApproveBillingKey)
}

func (c *billingKeyController) RequestBillingKey(ctx *fiber.Ctx) error {
	var req dto.IssueBillingKeyRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.RequestBillingKey(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Billing key requested", res))
}

func (c *billingKeyController) ApproveBillingKey(ctx *fiber.Ctx) error {
	var req dto.ApproveBillingKeyRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.ApproveBillingKey(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Billing key approved", res))
}
