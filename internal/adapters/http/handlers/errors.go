package handlers

import (
	"errors"

	"topcoop-lending/internal/core/domain"
	"topcoop-lending/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// domainError maps a domain error to the matching HTTP response. Unknown
// errors surface as 500 with the given fallback message.
func domainError(c *fiber.Ctx, err error, fallback string) error {
	var derr *domain.Error
	if !errors.As(err, &derr) {
		return response.InternalServerError(c, fallback)
	}

	switch derr.Kind {
	case domain.KindUnauthorized:
		return response.Forbidden(c, "You don't have permission to perform this action")
	case domain.KindNotFound:
		return response.NotFound(c, derr.Message)
	case domain.KindInvalidState, domain.KindConflict:
		return response.Conflict(c, derr.Message)
	case domain.KindPreconditionFailed:
		return response.UnprocessableEntity(c, derr.Message)
	case domain.KindInvalidInput:
		return response.BadRequest(c, derr.Message)
	default:
		// data integrity faults included: report, never swallow
		return response.InternalServerError(c, derr.Message)
	}
}
