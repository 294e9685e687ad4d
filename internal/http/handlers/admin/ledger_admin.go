package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/yash9025/WriteOffGenie-sub000/internal/http/response"
	"github.com/yash9025/WriteOffGenie-sub000/internal/models"
	"github.com/yash9025/WriteOffGenie-sub000/internal/repository"
	"github.com/yash9025/WriteOffGenie-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

// RevenueEventReplayRequest 订阅事件同步重放请求
type RevenueEventReplayRequest struct {
	EventID  string `json:"event_id" binding:"required"`
	ClientID string `json:"client_id" binding:"required"`
	PlanID   string `json:"plan_id" binding:"required"`
	Status   string `json:"status" binding:"required"`
}

// ListLedgerTransactions 管理端账本流水列表
func (h *Handler) ListLedgerTransactions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)
	cpaID, _ := strconv.ParseUint(strings.TrimSpace(c.Query("cpa_id")), 10, 64)
	agentID, _ := strconv.ParseUint(strings.TrimSpace(c.Query("agent_id")), 10, 64)
	clientID, _ := strconv.ParseUint(strings.TrimSpace(c.Query("client_id")), 10, 64)

	rows, total, err := h.LedgerService.ListTransactions(repository.LedgerTransactionListFilter{
		Page:     page,
		PageSize: pageSize,
		CPAID:    uint(cpaID),
		AgentID:  uint(agentID),
		ClientID: uint(clientID),
		PlanID:   strings.TrimSpace(c.Query("plan_id")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}

// GetLedgerTransactionByEvent 按事件ID查询账本流水
func (h *Handler) GetLedgerTransactionByEvent(c *gin.Context) {
	eventID := strings.TrimSpace(c.Param("event_id"))
	if eventID == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	txn, err := h.LedgerService.GetByEventID(eventID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "error.not_found", nil)
		default:
			respondError(c, response.CodeInternal, "error.fetch_failed", err)
		}
		return
	}
	response.Success(c, txn)
}

// ReplayRevenueEvent 同步重放订阅事件
// 绕过队列直接走入账路径，幂等保证使重复重放只读不写。
func (h *Handler) ReplayRevenueEvent(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	var req RevenueEventReplayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	txn, credited, err := h.LedgerService.CreditRevenueEvent(service.RevenueEventInput{
		EventID:          req.EventID,
		ClientExternalID: req.ClientID,
		PlanID:           req.PlanID,
		Status:           req.Status,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEventInvalid):
			respondError(c, response.CodeBadRequest, "error.event_invalid", nil)
		default:
			respondError(c, response.CodeInternal, "error.save_failed", err)
		}
		return
	}
	requestLog(c).Infow("revenue_event_replayed", "admin_id", adminID, "event_id", req.EventID, "credited", credited)
	response.Success(c, buildReplayPayload(txn, credited))
}

// buildReplayPayload 构造重放结果响应，重放已入账事件时 credited=false
func buildReplayPayload(txn *models.LedgerTransaction, credited bool) gin.H {
	if txn == nil {
		return gin.H{"credited": false}
	}
	return gin.H{
		"credited":         credited,
		"event_id":         txn.EventID,
		"cpa_commission":   txn.CPAEarnings,
		"agent_commission": txn.AgentEarnings,
		"transaction":      txn,
	}
}
