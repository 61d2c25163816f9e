package handlers

import (
	"strconv"

	"topcoop-lending/internal/adapters/http/middleware"
	"topcoop-lending/internal/core/services"
	"topcoop-lending/internal/pkg/pagination"
	"topcoop-lending/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// RequestHandler handles loan request endpoints
type RequestHandler struct {
	requestService *services.RequestService
}

// NewRequestHandler creates a new request handler
func NewRequestHandler(requestService *services.RequestService) *RequestHandler {
	return &RequestHandler{
		requestService: requestService,
	}
}

// CreateRequestBody represents create request body
type CreateRequestBody struct {
	AmountRequested float64 `json:"amount_requested"`
	AmountRepayable float64 `json:"amount_repayable"`
	Tenure          int     `json:"tenure"`
}

// CreateRequest handles opening a new loan request
// @Summary Create loan request
// @Description Open a new loan request. The target user must be loanable; admins may create on behalf of another user via the user_id query parameter.
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param user_id query int false "Create on behalf of this user (admin only)"
// @Param body body CreateRequestBody true "Request data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /requests [post]
func (h *RequestHandler) CreateRequest(c *fiber.Ctx) error {
	cap, ok := middleware.CapabilityFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req CreateRequestBody
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	// Validate required fields
	if req.AmountRequested <= 0 {
		return response.BadRequest(c, "Amount requested must be greater than zero")
	}
	if req.AmountRepayable <= 0 {
		return response.BadRequest(c, "Amount repayable must be greater than zero")
	}
	if req.Tenure <= 0 {
		return response.BadRequest(c, "Tenure must be at least one month")
	}

	input := &services.CreateRequestInput{
		AmountRequested: req.AmountRequested,
		AmountRepayable: req.AmountRepayable,
		Tenure:          req.Tenure,
	}

	request, err := h.requestService.Create(c.Context(), cap, input)
	if err != nil {
		return domainError(c, err, "Failed to create request")
	}

	return response.Created(c, "Request created successfully", fiber.Map{
		"request": request,
	})
}

// ListRequests handles listing loan requests
// @Summary List loan requests
// @Description Get a paginated list of loan requests. Admins see everything; regular users see their own.
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Param status query string false "Filter by status (pending, approved, declined)"
// @Param user_id query int false "Restrict to one user's requests (admin only)"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /requests [get]
func (h *RequestHandler) ListRequests(c *fiber.Ctx) error {
	cap, ok := middleware.CapabilityFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)
	input := &services.ListRequestsInput{
		Page:   params.Page,
		Limit:  params.Limit,
		Status: c.Query("status"),
	}

	result, err := h.requestService.List(c.Context(), cap, input)
	if err != nil {
		return domainError(c, err, "Failed to list requests")
	}

	return response.Success(c, "Requests retrieved successfully", result)
}

// GetRequest handles getting a loan request by ID
// @Summary Get loan request by ID
// @Description Get a loan request. Regular users can only read their own.
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /requests/{id} [get]
func (h *RequestHandler) GetRequest(c *fiber.Ctx) error {
	cap, ok := middleware.CapabilityFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid request ID")
	}

	request, err := h.requestService.GetByID(c.Context(), cap, uint(id))
	if err != nil {
		return domainError(c, err, "Failed to get request")
	}

	return response.Success(c, "Request retrieved successfully", fiber.Map{
		"request": request,
	})
}

// UpdateRequestBody represents update request body
type UpdateRequestBody struct {
	AmountRequested *float64 `json:"amount_requested"`
	AmountRepayable *float64 `json:"amount_repayable"`
	Tenure          *int     `json:"tenure"`
}

// UpdateRequest handles updating a loan request
// @Summary Update loan request
// @Description Update a loan request's amounts and tenure. Status cannot be changed here; use approve/decline.
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Param body body UpdateRequestBody true "Update data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /requests/{id} [put]
func (h *RequestHandler) UpdateRequest(c *fiber.Ctx) error {
	cap, ok := middleware.CapabilityFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid request ID")
	}

	var req UpdateRequestBody
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	input := &services.UpdateRequestInput{
		AmountRequested: req.AmountRequested,
		AmountRepayable: req.AmountRepayable,
		Tenure:          req.Tenure,
	}

	request, err := h.requestService.Edit(c.Context(), cap, uint(id), input)
	if err != nil {
		return domainError(c, err, "Failed to update request")
	}

	return response.Success(c, "Request updated successfully", fiber.Map{
		"request": request,
	})
}

// DeleteRequest handles deleting a loan request
// @Summary Delete loan request
// @Description Delete a loan request. A request with a linked loan cannot be deleted.
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /requests/{id} [delete]
func (h *RequestHandler) DeleteRequest(c *fiber.Ctx) error {
	cap, ok := middleware.CapabilityFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid request ID")
	}

	if err := h.requestService.Delete(c.Context(), cap, uint(id)); err != nil {
		return domainError(c, err, "Failed to delete request")
	}

	return response.Success(c, "Request deleted successfully", nil)
}

// ApproveRequest handles approving a loan request (Admin only)
// @Summary Approve loan request
// @Description Approve a pending loan request and spawn its loan, due tenure months from now
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /requests/{id}/approve [put]
func (h *RequestHandler) ApproveRequest(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid request ID")
	}

	request, loan, err := h.requestService.Approve(c.Context(), uint(id))
	if err != nil {
		return domainError(c, err, "Failed to approve request")
	}

	return response.Success(c, "Request approved successfully", fiber.Map{
		"request": request,
		"loan":    loan,
	})
}

// DeclineRequest handles declining a loan request (Admin only)
// @Summary Decline loan request
// @Description Decline a pending loan request and let the owner apply again
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /requests/{id}/decline [put]
func (h *RequestHandler) DeclineRequest(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid request ID")
	}

	request, err := h.requestService.Decline(c.Context(), uint(id))
	if err != nil {
		return domainError(c, err, "Failed to decline request")
	}

	return response.Success(c, "Request declined successfully", fiber.Map{
		"request": request,
	})
}
