package service

import "errors"

// 业务错误定义（handler 层统一映射为响应码与多语言文案）
var (
	ErrNotFound           = errors.New("记录不存在")
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	ErrInvalidPassword    = errors.New("原密码错误")

	ErrPartnerNotFound        = errors.New("合作伙伴不存在")
	ErrPartnerDisabled        = errors.New("合作伙伴已停用")
	ErrPartnerEmailTaken      = errors.New("邮箱已被占用")
	ErrPartnerRoleInvalid     = errors.New("合作伙伴角色无效")
	ErrPartnerStatusInvalid   = errors.New("合作伙伴状态无效")
	ErrPartnerRateOutOfBounds = errors.New("分成比例超出允许范围")
	ErrReferralCodeInvalid    = errors.New("推荐码生成失败")

	ErrBankAccountNotFound = errors.New("银行账户不存在")

	ErrPayoutNotFound               = errors.New("提现申请不存在")
	ErrPayoutAmountInvalid          = errors.New("提现金额无效")
	ErrPayoutBelowMinimum           = errors.New("提现金额低于最低限额")
	ErrPayoutInsufficientBalance    = errors.New("余额不足")
	ErrPayoutStatusInvalid          = errors.New("提现状态不允许该操作")
	ErrPayoutDecisionInvalid        = errors.New("审核动作无效")
	ErrPayoutTransactionRefRequired = errors.New("结算转账参考号不能为空")
	ErrPayoutRejectReasonRequired   = errors.New("拒绝原因不能为空")

	ErrEventInvalid   = errors.New("订阅事件无效")
	ErrClientNotFound = errors.New("客户不存在")
)
