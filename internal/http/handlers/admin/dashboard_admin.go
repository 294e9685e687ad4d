package admin

import (
	"github.com/yash9025/WriteOffGenie-sub000/internal/constants"
	"github.com/yash9025/WriteOffGenie-sub000/internal/http/response"
	"github.com/yash9025/WriteOffGenie-sub000/internal/models"
	"github.com/yash9025/WriteOffGenie-sub000/internal/repository"

	"github.com/gin-gonic/gin"
)

// GetPlatformOverview 获取平台营收总览
// 平台留存 = Σ(套餐价 − CPA 佣金 − Agent 佣金)，直接由账本聚合得出。
func (h *Handler) GetPlatformOverview(c *gin.Context) {
	platformEarnings, err := h.LedgerService.PlatformEarnings()
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}

	_, agentCount, err := h.PartnerService.ListPartners(repository.PartnerListFilter{
		Page: 1, PageSize: 1, Role: constants.PartnerRoleAgent,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	_, cpaCount, err := h.PartnerService.ListPartners(repository.PartnerListFilter{
		Page: 1, PageSize: 1, Role: constants.PartnerRoleCPA,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	_, pendingPayouts, err := h.PayoutService.ListPayouts(repository.PayoutListFilter{
		Page: 1, PageSize: 1, Status: constants.PayoutStatusPending,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}

	response.Success(c, gin.H{
		"platform_earnings": models.NewMoneyFromDecimal(platformEarnings),
		"agent_count":       agentCount,
		"cpa_count":         cpaCount,
		"pending_payouts":   pendingPayouts,
	})
}
