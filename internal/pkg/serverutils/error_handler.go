package serverutils

import (
	"errors"

	"sparke-core-be/internal/pkg/apperror"
	"sparke-core-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware maps apperror kinds to HTTP statuses and shapes the
// error envelope. 5xx causes are logged with full detail but callers only
// ever see a generic message.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		if appErr, ok := apperror.As(err); ok {
			status := statusForKind(appErr.Kind)
			if status >= 500 {
				log.Error("Http", "Request failed", map[string]interface{}{
					"path":   ctx.Path(),
					"method": ctx.Method(),
					"kind":   string(appErr.Kind),
					"error":  appErr.Error(),
				})
				return ctx.Status(status).JSON(ErrorResponse(string(appErr.Kind), "A required service is unavailable"))
			}
			return ctx.Status(status).JSON(ErrorResponse(string(appErr.Kind), appErr.Message))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse("", fiberErr.Message))
		}

		log.Error("Http", "Unhandled error", map[string]interface{}{
			"path":   ctx.Path(),
			"method": ctx.Method(),
			"error":  err.Error(),
		})
		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse("INTERNAL", "Internal server error"))
	}
}

func statusForKind(kind apperror.Kind) int {
	switch kind {
	case apperror.KindNotFound:
		return fiber.StatusNotFound
	case apperror.KindBadRequest:
		return fiber.StatusBadRequest
	case apperror.KindConflict:
		return fiber.StatusConflict
	case apperror.KindUnauthorized:
		return fiber.StatusUnauthorized
	case apperror.KindUnavailable:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}
