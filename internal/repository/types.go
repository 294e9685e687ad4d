package repository

import "time"

// PartnerListFilter 查询合作伙伴列表的过滤条件
type PartnerListFilter struct {
	Page       int
	PageSize   int
	Role       string
	Status     string
	ReferrerID uint
	Keyword    string
}

// LedgerTransactionListFilter 查询账本流水的过滤条件
type LedgerTransactionListFilter struct {
	Page        int
	PageSize    int
	PartnerID   uint // 命中 CPA 或 Agent 任意一侧
	CPAID       uint
	AgentID     uint
	ClientID    uint
	PlanID      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// PayoutListFilter 查询提现申请的过滤条件
type PayoutListFilter struct {
	Page        int
	PageSize    int
	PartnerID   uint
	Status      string
	ReferenceID string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}
