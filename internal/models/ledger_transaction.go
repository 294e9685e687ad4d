package models

import (
	"time"
)

// LedgerTransaction 佣金账本流水（追加写、不可变）
// event_id 直接采用订阅事件自身的标识并加唯一索引：同一事件的重复投递
// 只能命中 insert-if-absent 的幂等守卫，绝不会产生第二条流水。
type LedgerTransaction struct {
	ID            uint      `gorm:"primarykey" json:"id"`                                        // 主键
	EventID       string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"event_id"`       // 来源事件ID（幂等键）
	Type          string    `gorm:"type:varchar(20);not null;default:'commission'" json:"type"`  // 流水类型
	PlanID        string    `gorm:"type:varchar(64);not null" json:"plan_id"`                    // 套餐标识
	PlanAmount    Money     `gorm:"type:decimal(20,2);not null;default:0" json:"plan_amount"`    // 套餐支付金额
	CPAID         uint      `gorm:"not null;index" json:"cpa_id"`                                // 入账 CPA
	CPAEarnings   Money     `gorm:"type:decimal(20,2);not null;default:0" json:"cpa_earnings"`   // CPA 佣金
	AgentID       *uint     `gorm:"index" json:"agent_id,omitempty"`                             // 入账 Agent（可空）
	AgentEarnings Money     `gorm:"type:decimal(20,2);not null;default:0" json:"agent_earnings"` // Agent 佣金
	ClientID      uint      `gorm:"not null;index" json:"client_id"`                             // 付费客户
	Status        string    `gorm:"type:varchar(20);not null" json:"status"`                     // 状态（completed，终态）
	CreatedAt     time.Time `gorm:"index" json:"created_at"`                                     // 创建时间

	CPA   Partner  `gorm:"foreignKey:CPAID" json:"cpa,omitempty"`     // CPA 信息
	Agent *Partner `gorm:"foreignKey:AgentID" json:"agent,omitempty"` // Agent 信息
}

// TableName 指定表名
func (LedgerTransaction) TableName() string {
	return "ledger_transactions"
}
