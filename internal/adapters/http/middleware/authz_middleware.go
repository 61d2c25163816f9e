package middleware

import (
	"strconv"

	"topcoop-lending/internal/core/authz"
	"topcoop-lending/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const capabilityKey = "capability"

// TargetSource extracts the optional target user id from a request. A nil
// result means no explicit target was supplied and the operation falls back
// to the caller's own resources.
type TargetSource func(c *fiber.Ctx) (*uint, error)

// TargetFromQuery reads the target user id from the "user_id" query
// parameter. Used by collection reads and request creation.
func TargetFromQuery(c *fiber.Ctx) (*uint, error) {
	raw := c.Query("user_id")
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid user_id")
	}
	target := uint(id)
	return &target, nil
}

// TargetFromParam reads the target user id from the ":id" path parameter.
// Used by single-user operations, where the addressed user IS the target.
func TargetFromParam(c *fiber.Ctx) (*uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	target := uint(id)
	return &target, nil
}

// Authorize builds middleware that resolves the operation's target, checks
// the permission table, and stores the resulting capability in the request
// context for the handler.
func Authorize(resource authz.Resource, action authz.Action, source TargetSource) fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, role, ok := CallerFromCtx(c)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}

		target, err := source(c)
		if err != nil {
			return err
		}

		cap, err := authz.Authorize(resource, action, role, callerID, authz.Resolve(callerID, target))
		if err != nil {
			return response.Forbidden(c, "You don't have permission to perform this action")
		}

		c.Locals(capabilityKey, cap)
		return c.Next()
	}
}

// AuthorizeList is Authorize for collection reads: with no explicit target,
// a caller allowed to list everything gets the unrestricted scope.
func AuthorizeList(resource authz.Resource, source TargetSource) fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, role, ok := CallerFromCtx(c)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}

		target, err := source(c)
		if err != nil {
			return err
		}

		cap, err := authz.Authorize(resource, authz.ActionList, role, callerID,
			authz.ResolveList(resource, role, callerID, target))
		if err != nil {
			return response.Forbidden(c, "You don't have permission to perform this action")
		}

		c.Locals(capabilityKey, cap)
		return c.Next()
	}
}

// AuthorizeAction guards the privileged lifecycle transitions (approve,
// decline, pay) with a role-only check.
func AuthorizeAction(resource authz.Resource, action authz.Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, role, ok := CallerFromCtx(c)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}

		cap, err := authz.AuthorizeAction(resource, action, role, callerID)
		if err != nil {
			return response.Forbidden(c, "You don't have permission to perform this action")
		}

		c.Locals(capabilityKey, cap)
		return c.Next()
	}
}

// CapabilityFromCtx reads the capability stored by the authorization
// middleware. Handlers behind Authorize always have one.
func CapabilityFromCtx(c *fiber.Ctx) (authz.Capability, bool) {
	cap, ok := c.Locals(capabilityKey).(authz.Capability)
	return cap, ok
}
