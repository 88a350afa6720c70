// FILE: internal/controller/subscription_controller.go
package controller

import (
	"subscription-billing-be/internal/dto"
	"subscription-billing-be/internal/pkg/serverutils"
	"subscription-billing-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ISubscriptionController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Cancel(ctx *fiber.Ctx) error
	UpdateAutoRenew(ctx *fiber.Ctx) error
	Get(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	ListPayments(ctx *fiber.Ctx) error
	ListProducts(ctx *fiber.Ctx) error
}

type subscriptionController struct {
	service service.ISubscriptionService
}

func NewSubscriptionController(service service.ISubscriptionService) ISubscriptionController {
	return &subscriptionController{service: service}
}

func (c *subscriptionController) RegisterRoutes(r fiber.Router) {
	r.Get("/products", c.ListProducts)

	h := r.Group("/subscriptions")
	h.Post("/", serverutils.JwtMiddleware, c.Create)
	h.Post("/cancel", serverutils.JwtMiddleware, c.Cancel)
	h.Get("/", serverutils.JwtMiddleware, c.List)
	h.Get("/:id", serverutils.JwtMiddleware, c.Get)
	h.Get("/:id/payments", serverutils.JwtMiddleware, c.ListPayments)
	h.Put("/:id/auto-renew", serverutils.JwtMiddleware, c.UpdateAutoRenew)
}

func (c *subscriptionController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateSubscriptionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.CreateSubscription(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Subscription created", res))
}

func (c *subscriptionController) Cancel(ctx *fiber.Ctx) error {
	var req dto.CancelSubscriptionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	cancelled, err := c.service.CancelSubscription(ctx.Context(), req.SubscriptionId, req.Reason)
	if err != nil {
		return err
	}

	message := "Subscription cancelled"
	if !cancelled {
		message = "Subscription was already cancelled"
	}
	return ctx.JSON(serverutils.SuccessResponse(message, dto.CancelSubscriptionResponse{
		SubscriptionId: req.SubscriptionId,
		Cancelled:      cancelled,
	}))
}

func (c *subscriptionController) UpdateAutoRenew(ctx *fiber.Ctx) error {
	subscriptionId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid subscription id")
	}

	var body struct {
		AutoRenew *bool `json:"auto_renew"`
	}
	if err := ctx.BodyParser(&body); err != nil || body.AutoRenew == nil {
		return fiber.NewError(fiber.StatusBadRequest, "auto_renew is required")
	}

	res, err := c.service.UpdateAutoRenew(ctx.Context(), subscriptionId, *body.AutoRenew)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Auto-renew updated", res))
}

func (c *subscriptionController) Get(ctx *fiber.Ctx) error {
	subscriptionId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid subscription id")
	}

	res, err := c.service.GetSubscription(ctx.Context(), subscriptionId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Subscription", res))
}

func (c *subscriptionController) List(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.ListByUser(ctx.Context(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Subscriptions", res))
}

func (c *subscriptionController) ListPayments(ctx *fiber.Ctx) error {
	subscriptionId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid subscription id")
	}

	res, err := c.service.ListPayments(ctx.Context(), subscriptionId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Payment history", res))
}

func (c *subscriptionController) ListProducts(ctx *fiber.Ctx) error {
	res, err := c.service.ListProducts(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Products", res))
}

func currentUserId(ctx *fiber.Ctx) (uuid.UUID, error) {
	userIdStr, ok := ctx.Locals("user_id").(string)
	if !ok {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "missing user identity")
	}
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "invalid user identity")
	}
	return userId, nil
}
