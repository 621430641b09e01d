package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sims-api/internal/identity"
	"github.com/noah-isme/sims-api/internal/middleware"
	"github.com/noah-isme/sims-api/internal/models"
	"github.com/noah-isme/sims-api/internal/service"
	apperrors "github.com/noah-isme/sims-api/pkg/errors"
	"github.com/noah-isme/sims-api/pkg/response"
)

// AuthHandler exposes the authentication surface for the three audiences.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs the auth handler.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Register mounts the auth routes. Login and the out-of-band password flows
// are public; logout and change-password require an access bearer, refresh a
// refresh bearer.
func (h *AuthHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/staff/login", h.login(identity.UserTypeStaff))
	rg.POST("/student/login", h.login(identity.UserTypeStudent))
	rg.POST("/guardian/login", h.login(identity.UserTypeGuardian))

	rg.GET("/refresh_token", middleware.RequireRefresh(h.auth), h.handleRefresh)
	rg.POST("/logout", middleware.RequireAuth(h.auth), h.handleLogout)
	rg.PUT("/change-password", middleware.RequireAuth(h.auth), h.handleChangePassword)

	rg.PUT("/forgot-password", h.handleForgotPassword)
	rg.PUT("/request-password-reset", h.handleRequestReset)
	rg.PUT("/reset-password", h.handleResetPassword)
}

func (h *AuthHandler) login(userType identity.UserType) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, bindError(err))
			return
		}
		pair, err := h.auth.Login(c.Request.Context(), userType, req)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, pair, nil)
	}
}

func (h *AuthHandler) handleRefresh(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		response.Error(c, apperrors.ErrRefreshRequired)
		return
	}
	pair, err := h.auth.Refresh(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pair, nil)
}

func (h *AuthHandler) handleLogout(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		response.Error(c, apperrors.ErrAccessRequired)
		return
	}
	if err := h.auth.Logout(c.Request.Context(), claims); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *AuthHandler) handleChangePassword(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		response.Error(c, apperrors.ErrAccessRequired)
		return
	}
	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	if err := h.auth.ChangePassword(c.Request.Context(), claims, req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

type audiencedEmailRequest struct {
	UserType string `json:"user_type" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
}

type audiencedResetRequest struct {
	UserType    string `json:"user_type" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

func (h *AuthHandler) handleForgotPassword(c *gin.Context) {
	var req audiencedEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	userType, err := parseUserType(req.UserType)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.auth.ForgotPassword(c.Request.Context(), userType, models.ForgotPasswordRequest{Email: req.Email}); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *AuthHandler) handleRequestReset(c *gin.Context) {
	var req audiencedEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	userType, err := parseUserType(req.UserType)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.auth.RequestPasswordReset(c.Request.Context(), userType, models.ResetRequest{Email: req.Email}); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *AuthHandler) handleResetPassword(c *gin.Context) {
	var req audiencedResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	userType, err := parseUserType(req.UserType)
	if err != nil {
		response.Error(c, err)
		return
	}
	payload := models.ResetPasswordRequest{Email: req.Email, Token: req.Token, NewPassword: req.NewPassword}
	if err := h.auth.ResetPassword(c.Request.Context(), userType, payload); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func parseUserType(raw string) (identity.UserType, error) {
	switch identity.UserType(raw) {
	case identity.UserTypeStaff, identity.UserTypeStudent, identity.UserTypeGuardian:
		return identity.UserType(raw), nil
	}
	return "", apperrors.Validation(apperrors.KindInvalidCode, "user_type", raw, "user type must be staff, student or guardian")
}
