package constants

// 合作伙伴角色常量
const (
	PartnerRoleAgent = "agent"
	PartnerRoleCPA   = "cpa"
)

// 合作伙伴状态常量
const (
	PartnerStatusActive   = "active"
	PartnerStatusInactive = "inactive"
)

// 账本流水类型常量
const (
	LedgerTxnTypeCommission = "commission"
)

// 账本流水状态常量（completed 为终态，创建后不可变更）
const (
	LedgerTxnStatusCompleted = "completed"
)

// 订阅事件状态常量
const (
	RevenueEventStatusActive = "active"
)

// 提现申请状态常量
const (
	PayoutStatusPending  = "pending"
	PayoutStatusApproved = "approved"
	PayoutStatusPaid     = "paid"
	PayoutStatusRejected = "rejected"
)

// 提现审核动作常量
const (
	PayoutDecisionApprove  = "approve"
	PayoutDecisionReject   = "reject"
	PayoutDecisionMarkPaid = "mark_paid"
)

// 异步任务类型常量
const (
	TaskRevenueEventCredit = "revenue_event:credit"
	TaskPayoutNotify       = "payout:notify"
)

// 队列名称常量
const (
	QueueDefault = "default"
)
