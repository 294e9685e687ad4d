package public

import (
	"errors"
	"strconv"
	"strings"

	"github.com/yash9025/WriteOffGenie-sub000/internal/http/response"
	"github.com/yash9025/WriteOffGenie-sub000/internal/repository"
	"github.com/yash9025/WriteOffGenie-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// PayoutApplyRequest 提现申请请求
type PayoutApplyRequest struct {
	Amount        string `json:"amount" binding:"required"`
	BankAccountID uint   `json:"bank_account_id" binding:"required"`
}

// ApplyPayout 提交提现申请
func (h *Handler) ApplyPayout(c *gin.Context) {
	pid, ok := getPartnerID(c)
	if !ok {
		return
	}
	var req PayoutApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.payout_amount_invalid", nil)
		return
	}

	payout, err := h.PayoutService.RequestWithdraw(pid, service.PayoutRequestInput{
		Amount:        amount,
		BankAccountID: req.BankAccountID,
	})
	if err != nil {
		respondPayoutRequestError(c, err)
		return
	}
	requestLog(c).Infow("payout_requested",
		"partner_id", pid,
		"payout_id", payout.ID,
		"reference_id", payout.ReferenceID,
		"amount", payout.Amount.String(),
	)
	response.Success(c, payout)
}

// ListMyPayouts 查询当前伙伴的提现记录
func (h *Handler) ListMyPayouts(c *gin.Context) {
	pid, ok := getPartnerID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	rows, total, err := h.PayoutService.ListPayouts(repository.PayoutListFilter{
		Page:      page,
		PageSize:  pageSize,
		PartnerID: pid,
		Status:    strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}

// GetMyPayout 查询当前伙伴的单笔提现
func (h *Handler) GetMyPayout(c *gin.Context) {
	pid, ok := getPartnerID(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	payout, err := h.PayoutService.GetPayout(uint(id), pid)
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
