package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stockdeck/marketplace-system/internal/core/ports"
)

// AccountHandler exposes the pull-based provider reconciliation endpoints
// and the provider-session user lookup.
type AccountHandler struct {
	accounts ports.AccountService
	auth     ports.AuthService
	users    ports.UserRepository
}

func NewAccountHandler(accounts ports.AccountService, auth ports.AuthService, users ports.UserRepository) *AccountHandler {
	return &AccountHandler{accounts: accounts, auth: auth, users: users}
}

// UserStatus reports where an account exists and reconciles provider state.
//
// @Summary      Check account status across store and provider
// @Tags         webhooks
// @Produce      json
// @Param        email  query     string  true  "Account email"
// @Success      200    {object}  ports.UserStatusResult
// @Failure      400    {object}  errorResponse
// @Router       /api/webhooks/user-status [get]
func (h *AccountHandler) UserStatus(c echo.Context) error {
	email := c.QueryParam("email")
	if email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email is required")
	}

	result, err := h.accounts.UserStatus(c.Request().Context(), email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// SendMagicLink asks the provider to email a sign-in link.
//
// @Summary      Send a magic sign-in link
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        body  body      magicLinkRequest  true  "Email and redirect URL"
// @Success      200   {object}  statusResponse
// @Failure      400   {object}  errorResponse
// @Router       /api/webhooks/send-magic-link [post]
func (h *AccountHandler) SendMagicLink(c echo.Context) error {
	var req magicLinkRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	if err := h.accounts.SendMagicLink(c.Request().Context(), req.Email, req.RedirectURL); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statusResponse{Status: "ok", Message: "magic link sent"})
}

// SessionMe returns the profile of the provider-session user.
//
// @Summary      Current provider-session user
// @Tags         session
// @Produce      json
// @Success      200  {object}  ports.UserProfile
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/session/me [get]
func (h *AccountHandler) SessionMe(c echo.Context) error {
	externalID, err := ctxExternalID(c)
	if err != nil {
		return err
	}

	user, err := h.users.FindByExternalID(c.Request().Context(), externalID)
	if err != nil {
		return err
	}
	profile, err := h.auth.Profile(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}
