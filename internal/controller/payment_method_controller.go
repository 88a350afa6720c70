// FILE: internal/controller/payment_method_controller.go
package controller

import (
	"subscription-billing-be/internal/pkg/serverutils"
	"subscription-billing-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IPaymentMethodController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	SetDefault(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type paymentMethodController struct {
	service service.IPaymentMethodService
}

func NewPaymentMethodController(service service.IPaymentMethodService) IPaymentMethodController {
	return &paymentMethodController{service: service}
}

func (c *paymentMethodController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/payment-methods")
	h.Get("/", serverutils.JwtMiddleware, c.List)
	h.Put("/:id/default", serverutils.JwtMiddleware, c.SetDefault)
	h.Delete("/:id", serverutils.JwtMiddleware, c.Delete)
}

func (c *paymentMethodController) List(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.ListByUser(ctx.Context(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Payment methods", res))
}

func (c *paymentMethodController) SetDefault(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}
	methodId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payment method id")
	}

	if err := c.service.SetDefault(ctx.Context(), userId, methodId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Default payment method updated", nil))
}

func (c *paymentMethodController) Delete(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}
	methodId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payment method id")
	}

	if err := c.service.Delete(ctx.Context(), userId, methodId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Payment method removed", nil))
}
