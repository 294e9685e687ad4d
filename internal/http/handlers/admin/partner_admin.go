package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/yash9025/WriteOffGenie-sub000/internal/http/response"
	"github.com/yash9025/WriteOffGenie-sub000/internal/repository"
	"github.com/yash9025/WriteOffGenie-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateAgentRequest 管理端创建 Agent 请求
type CreateAgentRequest struct {
	Email           string `json:"email" binding:"required"`
	Password        string `json:"password" binding:"required,min=8"`
	DisplayName     string `json:"display_name"`
	CommissionRate  string `json:"commission_rate"`
	PlatformInvited bool   `json:"platform_invited"`
}

// PartnerStatusRequest 伙伴状态更新请求
type PartnerStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// CreateAgent 管理端创建 Agent
func (h *Handler) CreateAgent(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	var req CreateAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	agent, err := h.PartnerService.CreateAgent(service.CreateAgentInput{
		Email:           req.Email,
		Password:        req.Password,
		DisplayName:     strings.TrimSpace(req.DisplayName),
		CommissionRate:  strings.TrimSpace(req.CommissionRate),
		PlatformInvited: req.PlatformInvited,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPartnerEmailTaken):
			respondError(c, response.CodeBadRequest, "error.partner_email_taken", nil)
		case errors.Is(err, service.ErrPartnerRateOutOfBounds):
			respondError(c, response.CodeBadRequest, "error.partner_rate_out_of_bounds", nil)
		default:
			respondError(c, response.CodeInternal, "error.save_failed", err)
		}
		return
	}
	requestLog(c).Infow("agent_created", "admin_id", adminID, "agent_id", agent.ID, "platform_invited", agent.PlatformInvited)
	response.Success(c, agent)
}

// ListPartners 管理端伙伴列表
func (h *Handler) ListPartners(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)
	referrerID, _ := strconv.ParseUint(strings.TrimSpace(c.Query("referrer_id")), 10, 64)

	rows, total, err := h.PartnerService.ListPartners(repository.PartnerListFilter{
		Page:       page,
		PageSize:   pageSize,
		Role:       strings.TrimSpace(c.Query("role")),
		Status:     strings.TrimSpace(c.Query("status")),
		ReferrerID: uint(referrerID),
		Keyword:    strings.TrimSpace(c.Query("keyword")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}

// GetPartner 管理端伙伴详情
func (h *Handler) GetPartner(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	partner, err := h.PartnerService.GetPartner(uint(id))
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

// GetPartnerDashboard 管理端查看伙伴仪表盘（与伙伴端同一份聚合）
func (h *Handler) GetPartnerDashboard(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	dashboard, err := h.PartnerService.GetDashboard(uint(id))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPartnerNotFound):
			respondError(c, response.CodeNotFound, "error.partner_not_found", nil)
		default:
			respondError(c, response.CodeInternal, "error.fetch_failed", err)
		}
		return
	}
	response.Success(c, dashboard)
}

// UpdatePartnerStatus 管理端更新伙伴状态
func (h *Handler) UpdatePartnerStatus(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	var req PartnerStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	partner, err := h.PartnerService.UpdateStatus(uint(id), strings.TrimSpace(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPartnerNotFound):
			respondError(c, response.CodeNotFound, "error.partner_not_found", nil)
		case errors.Is(err, service.ErrPartnerStatusInvalid):
			respondError(c, response.CodeBadRequest, "error.partner_status_invalid", nil)
		default:
			respondError(c, response.CodeInternal, "error.save_failed", err)
		}
		return
	}
	requestLog(c).Infow("partner_status_updated", "admin_id", adminID, "partner_id", partner.ID, "status", partner.Status)
	response.Success(c, partner)
}
