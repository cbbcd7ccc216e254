package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/staffdesk/personnel-directory/internal/api/metrics"
	"github.com/staffdesk/personnel-directory/internal/core/domain"
	"github.com/staffdesk/personnel-directory/internal/core/ports"
)

// AccountHandler serves the account directory and the dashboard.
type AccountHandler struct {
	service ports.AccountService
}

func NewAccountHandler(service ports.AccountService) *AccountHandler {
	return &AccountHandler{service: service}
}

// List handles GET /api/users.
//
// @Summary      List accounts
// @Description  Password hashes are never returned. Salary is hidden from non-admin callers when redaction is enabled.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.PublicProfile
// @Failure      401  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /api/users [get]
func (h *AccountHandler) List(c echo.Context) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}

	users, err := h.service.ListAccounts(c.Request().Context(), caller)
	if err != nil {
		return err
	}
	if users == nil {
		users = []domain.PublicProfile{}
	}
	return c.JSON(http.StatusOK, users)
}

// Delete handles DELETE /api/users/:id. Unknown ids are reported as deleted.
//
// @Summary      Delete an account
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Account id"
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /api/users/{id} [delete]
func (h *AccountHandler) Delete(c echo.Context) error {
	if err := h.service.DeleteAccount(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}

	metrics.AccountsDeletedTotal.Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "User deleted successfully"})
}

// Dashboard handles GET /api/dashboard.
//
// @Summary      Account counts by role
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.DashboardSummary
// @Failure      401  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /api/dashboard [get]
func (h *AccountHandler) Dashboard(c echo.Context) error {
	summary, err := h.service.DashboardSummary(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}
