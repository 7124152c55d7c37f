package httpserver

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/marketplace/internal/logging"
	authmw "github.com/Skotchmaster/marketplace/internal/middleware/auth"
	"github.com/Skotchmaster/marketplace/internal/service"
	"github.com/Skotchmaster/marketplace/internal/transport"
)

type AuthHTTP struct {
	Svc          *service.AuthService
	SecureCookie bool
}

func (h *AuthHTTP) accessCookie(value string, exp time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     authmw.CookieName,
		Value:    value,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()

	var req transport.CredentialsRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(ctx, "register_error", "invalid body", err)
	}

	user, err := h.Svc.Register(ctx, req.Username, req.Password)
	if err != nil {
		return fail(ctx, "register_error", err)
	}
	return c.JSON(http.StatusCreated, user)
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req transport.CredentialsRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(ctx, "login_error", "invalid body", err)
	}

	user, err := h.Svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		return fail(ctx, "login_error", err)
	}
	res, err := h.Svc.IssueToken(user)
	if err != nil {
		return fail(ctx, "login_error", err)
	}

	c.SetCookie(h.accessCookie(res.AccessToken, res.AccessExp))
	return c.JSON(http.StatusOK, transport.LoginResponse{
		AccessToken: res.AccessToken,
		ExpiresAt:   res.AccessExp.Unix(),
		IsAdmin:     res.IsAdmin,
	})
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ck := h.accessCookie("", time.Unix(0, 0))
	ck.MaxAge = -1
	c.SetCookie(ck)
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()
	userID, _ := authmw.UserID(c)

	user, err := h.Svc.User(ctx, userID)
	if err != nil {
		return fail(ctx, "me_error", err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHTTP) UpdateUsername(c echo.Context) error {
	ctx := c.Request().Context()
	userID, _ := authmw.UserID(c)

	var req transport.UpdateUsernameRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(ctx, "update_username_error", "invalid body", err)
	}
	if err := h.Svc.UpdateUsername(ctx, userID, req.Username); err != nil {
		return fail(ctx, "update_username_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHTTP) UpdatePassword(c echo.Context) error {
	ctx := c.Request().Context()
	userID, _ := authmw.UserID(c)

	var req transport.UpdatePasswordRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(ctx, "update_password_error", "invalid body", err)
	}
	if err := h.Svc.UpdatePassword(ctx, userID, req.CurrentPassword, req.NewPassword); err != nil {
		return fail(ctx, "update_password_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHTTP) DeleteAccount(c echo.Context) error {
	ctx := c.Request().Context()
	userID, _ := authmw.UserID(c)

	if err := h.Svc.DeleteAccount(ctx, userID); err != nil {
		return fail(ctx, "delete_account_error", err)
	}
	logging.FromContext(ctx).Info("delete_account_success", "user_id", userID)
	return h.Logout(c)
}
