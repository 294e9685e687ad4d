package public

import (
	"errors"
	"strconv"
	"strings"

	"github.com/yash9025/WriteOffGenie-sub000/internal/http/response"
	"github.com/yash9025/WriteOffGenie-sub000/internal/repository"
	"github.com/yash9025/WriteOffGenie-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

// InviteCPARequest Agent 邀请 CPA 请求
type InviteCPARequest struct {
	Email          string `json:"email" binding:"required"`
	Password       string `json:"password" binding:"required,min=8"`
	DisplayName    string `json:"display_name"`
	CommissionRate string `json:"commission_rate"`
}

// GetMyDashboard 获取当前伙伴仪表盘
func (h *Handler) GetMyDashboard(c *gin.Context) {
	pid, ok := getPartnerID(c)
	if !ok {
		return
	}
	dashboard, err := h.PartnerService.GetDashboard(pid)
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

// ListMyTransactions 查询当前伙伴的佣金流水
func (h *Handler) ListMyTransactions(c *gin.Context) {
	pid, ok := getPartnerID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	rows, total, err := h.LedgerService.ListTransactions(repository.LedgerTransactionListFilter{
		Page:      page,
		PageSize:  pageSize,
		PartnerID: pid,
		PlanID:    strings.TrimSpace(c.Query("plan_id")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}

// ListMyReferrals 查询当前 Agent 名下的 CPA 列表
func (h *Handler) ListMyReferrals(c *gin.Context) {
	pid, ok := getPartnerID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	rows, total, err := h.PartnerService.ListReferrals(pid, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}

// ListMyClients 查询当前 CPA 名下的客户列表
func (h *Handler) ListMyClients(c *gin.Context) {
	pid, ok := getPartnerID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	rows, total, err := h.PartnerService.ListClients(pid, page, pageSize)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPartnerNotFound):
			respondError(c, response.CodeNotFound, "error.partner_not_found", nil)
		default:
			respondError(c, response.CodeInternal, "error.fetch_failed", err)
		}
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}

// InviteCPA Agent 邀请 CPA 入驻
func (h *Handler) InviteCPA(c *gin.Context) {
	pid, ok := getPartnerID(c)
	if !ok {
		return
	}
	var req InviteCPARequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	cpa, err := h.PartnerService.InviteCPA(pid, service.InviteCPAInput{
		Email:          req.Email,
		Password:       req.Password,
		DisplayName:    strings.TrimSpace(req.DisplayName),
		CommissionRate: strings.TrimSpace(req.CommissionRate),
	})
	if err != nil {
		respondInviteCPAError(c, err)
		return
	}
	requestLog(c).Infow("cpa_invited", "agent_id", pid, "cpa_id", cpa.ID)
	response.Success(c, cpa)
}
