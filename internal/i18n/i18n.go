package i18n

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// LocaleEN 英文
	LocaleEN = "en-US"
	// LocaleZH 简体中文
	LocaleZH = "zh-CN"

	defaultLocale = LocaleEN
	localeQuery   = "lang"
	localeHeader  = "Accept-Language"
)

var messages = map[string]map[string]string{
	LocaleEN: {
		"error.bad_request":                     "invalid request",
		"error.unauthorized":                    "authentication required",
		"error.forbidden":                       "permission denied",
		"error.not_found":                       "resource not found",
		"error.internal":                        "internal error",
		"error.save_failed":                     "save failed",
		"error.fetch_failed":                    "fetch failed",
		"error.login_failed":                    "invalid username or password",
		"error.login_too_many":                  "too many login attempts, try again later",
		"error.password_invalid":                "incorrect current password",
		"error.rate_limit_unavailable":          "rate limiter unavailable",
		"error.jwt_secret_missing":              "server auth misconfigured",
		"error.auth_header_missing":             "authorization header missing",
		"error.auth_header_invalid":             "authorization header invalid",
		"error.token_invalid":                   "invalid or expired token",
		"error.user_id_invalid":                 "invalid user identity",
		"error.user_id_type_invalid":            "invalid user identity type",
		"error.admin_id_invalid":                "invalid admin identity",
		"error.admin_id_type_invalid":           "invalid admin identity type",
		"error.partner_id_invalid":              "invalid partner identity",
		"error.partner_id_type_invalid":         "invalid partner identity type",
		"error.partner_not_found":               "partner not found",
		"error.partner_disabled":                "partner account disabled",
		"error.partner_email_taken":             "email already registered",
		"error.partner_role_invalid":            "operation not allowed for this role",
		"error.partner_status_invalid":          "invalid partner status",
		"error.partner_rate_out_of_bounds":      "commission rate out of allowed bounds",
		"error.referral_code_invalid":           "invalid referral code",
		"error.bank_account_not_found":          "bank account not found",
		"error.payout_not_found":                "payout not found",
		"error.payout_amount_invalid":           "invalid payout amount",
		"error.payout_below_minimum":            "amount below the minimum withdrawal",
		"error.payout_insufficient_balance":     "insufficient wallet balance",
		"error.payout_status_invalid":           "payout already processed",
		"error.payout_transaction_ref_required": "settlement transaction reference required",
		"error.payout_reject_reason_required":   "rejection reason required",
		"error.payout_decision_invalid":         "unknown settlement decision",
		"error.event_invalid":                   "invalid revenue event",
		"error.client_not_found":                "client not found",
		"error.webhook_secret_missing":          "webhook secret not configured",
		"error.webhook_signature_invalid":       "invalid webhook signature",
	},
	LocaleZH: {
		"error.bad_request":                     "请求参数无效",
		"error.unauthorized":                    "请先登录",
		"error.forbidden":                       "没有操作权限",
		"error.not_found":                       "资源不存在",
		"error.internal":                        "服务内部错误",
		"error.save_failed":                     "保存失败",
		"error.fetch_failed":                    "查询失败",
		"error.login_failed":                    "用户名或密码错误",
		"error.login_too_many":                  "登录尝试过于频繁，请稍后再试",
		"error.password_invalid":                "当前密码不正确",
		"error.rate_limit_unavailable":          "限流服务不可用",
		"error.jwt_secret_missing":              "服务端鉴权配置缺失",
		"error.auth_header_missing":             "缺少认证请求头",
		"error.auth_header_invalid":             "认证请求头格式错误",
		"error.token_invalid":                   "token 无效或已过期",
		"error.user_id_invalid":                 "用户身份无效",
		"error.user_id_type_invalid":            "用户身份类型无效",
		"error.admin_id_invalid":                "管理员身份无效",
		"error.admin_id_type_invalid":           "管理员身份类型无效",
		"error.partner_id_invalid":              "合作伙伴身份无效",
		"error.partner_id_type_invalid":         "合作伙伴身份类型无效",
		"error.partner_not_found":               "合作伙伴不存在",
		"error.partner_disabled":                "合作伙伴账号已停用",
		"error.partner_email_taken":             "邮箱已被注册",
		"error.partner_role_invalid":            "当前角色不允许该操作",
		"error.partner_status_invalid":          "合作伙伴状态无效",
		"error.partner_rate_out_of_bounds":      "佣金比例超出允许范围",
		"error.referral_code_invalid":           "推荐码无效",
		"error.bank_account_not_found":          "银行账户不存在",
		"error.payout_not_found":                "提现申请不存在",
		"error.payout_amount_invalid":           "提现金额无效",
		"error.payout_below_minimum":            "提现金额低于最低限额",
		"error.payout_insufficient_balance":     "钱包余额不足",
		"error.payout_status_invalid":           "提现申请已被处理",
		"error.payout_transaction_ref_required": "缺少结算转账参考号",
		"error.payout_reject_reason_required":   "缺少拒绝原因",
		"error.payout_decision_invalid":         "未知的结算操作",
		"error.event_invalid":                   "订阅事件无效",
		"error.client_not_found":                "客户不存在",
		"error.webhook_secret_missing":          "Webhook 密钥未配置",
		"error.webhook_signature_invalid":       "Webhook 签名无效",
	},
}

// T 按 locale 翻译消息 key，未命中时回退默认语言，再回退 key 本身
func T(locale, key string) string {
	if catalog, ok := messages[normalizeLocale(locale)]; ok {
		if msg, ok := catalog[key]; ok {
			return msg
		}
	}
	if msg, ok := messages[defaultLocale][key]; ok {
		return msg
	}
	return key
}

// ResolveLocale 从请求解析语言偏好
func ResolveLocale(c *gin.Context) string {
	if c == nil {
		return defaultLocale
	}
	if lang := strings.TrimSpace(c.Query(localeQuery)); lang != "" {
		return normalizeLocale(lang)
	}
	header := strings.TrimSpace(c.GetHeader(localeHeader))
	if header == "" {
		return defaultLocale
	}
	first := header
	if idx := strings.IndexAny(header, ",;"); idx >= 0 {
		first = header[:idx]
	}
	return normalizeLocale(first)
}

func normalizeLocale(locale string) string {
	normalized := strings.TrimSpace(locale)
	switch {
	case strings.HasPrefix(strings.ToLower(normalized), "zh"):
		return LocaleZH
	case strings.HasPrefix(strings.ToLower(normalized), "en"):
		return LocaleEN
	}
	return defaultLocale
}
