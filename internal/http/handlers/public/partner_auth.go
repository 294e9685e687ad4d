package public

import (
	"errors"
	"strings"

	"github.com/yash9025/WriteOffGenie-sub000/internal/http/response"
	"github.com/yash9025/WriteOffGenie-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

// PartnerLoginRequest 伙伴登录请求
type PartnerLoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// PartnerChangePasswordRequest 伙伴修改密码请求
type PartnerChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// PartnerLogin 合作伙伴登录
func (h *Handler) PartnerLogin(c *gin.Context) {
	var req PartnerLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	partner, token, expiresAt, err := h.PartnerAuthService.Login(strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			respondError(c, response.CodeUnauthorized, "error.login_failed", nil)
		case errors.Is(err, service.ErrPartnerDisabled):
			respondError(c, response.CodeForbidden, "error.partner_disabled", nil)
		default:
			respondError(c, response.CodeInternal, "error.internal", err)
		}
		return
	}

	requestLog(c).Infow("partner_login", "partner_id", partner.ID, "role", partner.Role)
	response.Success(c, gin.H{
		"token":      token,
		"expires_at": expiresAt,
		"partner":    partner,
	})
}

// GetMyProfile 获取当前伙伴资料
func (h *Handler) GetMyProfile(c *gin.Context) {
	pid, ok := getPartnerID(c)
	if !ok {
		return
	}
	partner, err := h.PartnerService.GetPartner(pid)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPartnerNotFound):
			respondError(c, response.CodeNotFound, "error.partner_not_found", nil)
		default:
			respondError(c, response.CodeInternal, "error.fetch_failed", err)
		}
		return
	}
	response.Success(c, partner)
}

// ChangeMyPassword 修改当前伙伴密码
func (h *Handler) ChangeMyPassword(c *gin.Context) {
	pid, ok := getPartnerID(c)
	if !ok {
		return
	}
	var req PartnerChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.PartnerAuthService.ChangePassword(pid, req.OldPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrPartnerNotFound):
			respondError(c, response.CodeNotFound, "error.partner_not_found", nil)
		case errors.Is(err, service.ErrInvalidPassword):
			respondError(c, response.CodeBadRequest, "error.password_invalid", nil)
		default:
			respondError(c, response.CodeInternal, "error.save_failed", err)
		}
		return
	}
	response.Success(c, gin.H{"ok": true})
}
