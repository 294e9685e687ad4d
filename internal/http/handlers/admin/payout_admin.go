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

// PayoutReviewRequest 提现审核请求
type PayoutReviewRequest struct {
	Decision       string `json:"decision" binding:"required"`
	TransactionRef string `json:"transaction_ref"`
	RejectReason   string `json:"reject_reason"`
}

// ListPayouts 管理端提现审核列表
func (h *Handler) ListPayouts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)
	partnerID, _ := strconv.ParseUint(strings.TrimSpace(c.Query("partner_id")), 10, 64)

	rows, total, err := h.PayoutService.ListPayouts(repository.PayoutListFilter{
		Page:        page,
		PageSize:    pageSize,
		PartnerID:   uint(partnerID),
		Status:      strings.TrimSpace(c.Query("status")),
		ReferenceID: strings.TrimSpace(c.Query("reference_id")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}

// GetPayout 管理端提现详情
func (h *Handler) GetPayout(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	payout, err := h.PayoutService.GetPayout(uint(id), 0)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPayoutNotFound):
			respondError(c, response.CodeNotFound, "error.payout_not_found", nil)
		default:
			respondError(c, response.CodeInternal, "error.fetch_failed", err)
		}
		return
	}
	response.Success(c, payout)
}

// ReviewPayout 提现结算审核
// decision 取值 approve / reject / mark_paid，状态机校验在服务层事务内完成。
func (h *Handler) ReviewPayout(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	var req PayoutReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	payout, err := h.PayoutService.Review(adminID, uint(id), service.PayoutReviewInput{
		Decision:       strings.TrimSpace(req.Decision),
		TransactionRef: strings.TrimSpace(req.TransactionRef),
		RejectReason:   strings.TrimSpace(req.RejectReason),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPayoutNotFound):
			respondError(c, response.CodeNotFound, "error.payout_not_found", nil)
		case errors.Is(err, service.ErrPayoutDecisionInvalid):
			respondError(c, response.CodeBadRequest, "error.payout_decision_invalid", nil)
		case errors.Is(err, service.ErrPayoutTransactionRefRequired):
			respondError(c, response.CodeBadRequest, "error.payout_transaction_ref_required", nil)
		case errors.Is(err, service.ErrPayoutRejectReasonRequired):
			respondError(c, response.CodeBadRequest, "error.payout_reject_reason_required", nil)
		case errors.Is(err, service.ErrPayoutStatusInvalid):
			respondError(c, response.CodeBadRequest, "error.payout_status_invalid", nil)
		default:
			respondError(c, response.CodeInternal, "error.save_failed", err)
		}
		return
	}
	requestLog(c).Infow("payout_reviewed",
		"admin_id", adminID,
		"payout_id", payout.ID,
		"decision", req.Decision,
		"status", payout.Status,
	)
	response.Success(c, payout)
}
