package public

import (
	"errors"

	"github.com/yash9025/WriteOffGenie-sub000/internal/http/response"
	"github.com/yash9025/WriteOffGenie-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.key, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

var payoutRequestErrorRules = []mappedHandlerError{
	{target: service.ErrPartnerNotFound, code: response.CodeNotFound, key: "error.partner_not_found"},
	{target: service.ErrPartnerDisabled, code: response.CodeBadRequest, key: "error.partner_disabled"},
	{target: service.ErrPayoutAmountInvalid, code: response.CodeBadRequest, key: "error.payout_amount_invalid"},
	{target: service.ErrPayoutBelowMinimum, code: response.CodeBadRequest, key: "error.payout_below_minimum"},
	{target: service.ErrPayoutInsufficientBalance, code: response.CodeBadRequest, key: "error.payout_insufficient_balance"},
	{target: service.ErrBankAccountNotFound, code: response.CodeBadRequest, key: "error.bank_account_not_found"},
}

var inviteCPAErrorRules = []mappedHandlerError{
	{target: service.ErrPartnerNotFound, code: response.CodeNotFound, key: "error.partner_not_found"},
	{target: service.ErrPartnerDisabled, code: response.CodeBadRequest, key: "error.partner_disabled"},
	{target: service.ErrPartnerRoleInvalid, code: response.CodeForbidden, key: "error.partner_role_invalid"},
	{target: service.ErrPartnerEmailTaken, code: response.CodeBadRequest, key: "error.partner_email_taken"},
	{target: service.ErrPartnerRateOutOfBounds, code: response.CodeBadRequest, key: "error.partner_rate_out_of_bounds"},
}

func respondPayoutRequestError(c *gin.Context, err error) {
	respondWithMappedError(c, err, payoutRequestErrorRules, response.CodeInternal, "error.save_failed")
}

func respondInviteCPAError(c *gin.Context, err error) {
	respondWithMappedError(c, err, inviteCPAErrorRules, response.CodeInternal, "error.save_failed")
}
