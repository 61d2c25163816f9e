package handlers

import (
	"strconv"
	"time"

	"topcoop-lending/internal/adapters/http/middleware"
	"topcoop-lending/internal/core/services"
	"topcoop-lending/internal/pkg/pagination"
	"topcoop-lending/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// LoanHandler handles loan endpoints
type LoanHandler struct {
	loanService *services.LoanService
}

// NewLoanHandler creates a new loan handler
func NewLoanHandler(loanService *services.LoanService) *LoanHandler {
	return &LoanHandler{
		loanService: loanService,
	}
}

// ListLoans handles listing loans
// @Summary List loans
// @Description Get a paginated list of loans. Admins see everything; regular users see loans spawned from their own requests.
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Param has_paid query bool false "Filter by repayment status"
// @Param user_id query int false "Restrict to one user's loans (admin only)"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /loans [get]
func (h *LoanHandler) ListLoans(c *fiber.Ctx) error {
	cap, ok := middleware.CapabilityFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)
	input := &services.ListLoansInput{
		Page:  params.Page,
		Limit: params.Limit,
	}
	if raw := c.Query("has_paid"); raw != "" {
		hasPaid, err := strconv.ParseBool(raw)
		if err != nil {
			return response.BadRequest(c, "Invalid has_paid filter")
		}
		input.HasPaid = &hasPaid
	}

	result, err := h.loanService.List(c.Context(), cap, input)
	if err != nil {
		return domainError(c, err, "Failed to list loans")
	}

	return response.Success(c, "Loans retrieved successfully", result)
}

// GetLoan handles getting a loan by ID
// @Summary Get loan by ID
// @Description Get a loan. Regular users can only read loans spawned from their own requests.
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /loans/{id} [get]
func (h *LoanHandler) GetLoan(c *fiber.Ctx) error {
	cap, ok := middleware.CapabilityFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid loan ID")
	}

	loan, err := h.loanService.GetByID(c.Context(), cap, uint(id))
	if err != nil {
		return domainError(c, err, "Failed to get loan")
	}

	return response.Success(c, "Loan retrieved successfully", fiber.Map{
		"loan": loan,
	})
}

// UpdateLoanBody represents update loan body
type UpdateLoanBody struct {
	AmountPaid *float64   `json:"amount_paid"`
	DueDate    *time.Time `json:"due_date"`
}

// UpdateLoan handles updating a loan (Admin only)
// @Summary Update loan
// @Description Update a loan's repayment fields (Admin only)
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Param body body UpdateLoanBody true "Update data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /loans/{id} [put]
func (h *LoanHandler) UpdateLoan(c *fiber.Ctx) error {
	cap, ok := middleware.CapabilityFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid loan ID")
	}

	var req UpdateLoanBody
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	input := &services.UpdateLoanInput{
		AmountPaid: req.AmountPaid,
		DueDate:    req.DueDate,
	}

	loan, err := h.loanService.Edit(c.Context(), cap, uint(id), input)
	if err != nil {
		return domainError(c, err, "Failed to update loan")
	}

	return response.Success(c, "Loan updated successfully", fiber.Map{
		"loan": loan,
	})
}

// DeleteLoan handles deleting a loan (Admin only)
// @Summary Delete loan
// @Description Delete a loan (Admin only)
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /loans/{id} [delete]
func (h *LoanHandler) DeleteLoan(c *fiber.Ctx) error {
	cap, ok := middleware.CapabilityFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid loan ID")
	}

	if err := h.loanService.Delete(c.Context(), cap, uint(id)); err != nil {
		return domainError(c, err, "Failed to delete loan")
	}

	return response.Success(c, "Loan deleted successfully", nil)
}

// PayLoan handles settling a loan
// @Summary Pay loan
// @Description Settle a loan for its full repayable amount and reopen the owner's loanable gate
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /loans/{id}/pay [put]
func (h *LoanHandler) PayLoan(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid loan ID")
	}

	loan, err := h.loanService.Pay(c.Context(), uint(id))
	if err != nil {
		return domainError(c, err, "Failed to pay loan")
	}

	return response.Success(c, "Loan paid successfully", fiber.Map{
		"loan": loan,
	})
}
