package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"subscription-billing-be/internal/apperror"
)

// ErrorHandlerMiddleware maps billing errors onto HTTP statuses so controllers
// can simply return errors from services.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		status := fiber.StatusInternalServerError
		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = fiber.StatusBadRequest
		case errors.Is(err, apperror.ErrResourceNotFound),
			errors.Is(err, apperror.ErrBillingKeyRequestNotFound):
			status = fiber.StatusNotFound
		case errors.Is(err, apperror.ErrDuplicateActiveSubscription):
			status = fiber.StatusConflict
		case errors.Is(err, apperror.ErrBillingKeyApprovalFailed),
			errors.Is(err, apperror.ErrNoPaymentMethodAvailable):
			status = fiber.StatusUnprocessableEntity
		case errors.Is(err, apperror.ErrProviderUnavailable):
			status = fiber.StatusBadGateway
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			status = fiberErr.Code
		}

		return ctx.Status(status).JSON(ErrorResponse(status, err.Error()))
	}
}
