package models

import (
	"time"

	"gorm.io/gorm"
)

// Partner 合作伙伴账户（Agent / CPA）
// 钱包余额只允许由账本写入服务（入账）与提现服务（扣减/回补）变更。
type Partner struct {
	ID              uint           `gorm:"primarykey" json:"id"`                                         // 主键
	Email           string         `gorm:"uniqueIndex;not null" json:"email"`                            // 邮箱
	PasswordHash    string         `gorm:"not null" json:"-"`                                            // 密码哈希（不返回给前端）
	DisplayName     string         `gorm:"default:''" json:"display_name"`                               // 名称
	Role            string         `gorm:"type:varchar(10);not null;index" json:"role"`                  // 角色（agent/cpa）
	ReferralCode    string         `gorm:"type:varchar(32);not null;uniqueIndex" json:"code"`            // 推荐码
	ReferrerID      *uint          `gorm:"index" json:"referrer_id,omitempty"`                           // 邀请方（CPA 指向其 Agent，空为平台直邀）
	CommissionRate  Money          `gorm:"type:decimal(10,2);not null;default:0" json:"rate"`            // 分成比例（百分比；CPA 按套餐价、Agent 按净利）
	MaintenanceCost Money          `gorm:"type:decimal(20,2);not null;default:0" json:"-"`               // 每活跃用户维护成本（仅 Agent）
	PlatformInvited bool           `gorm:"not null;default:false" json:"platform_invited"`               // 是否平台直邀（固定 Agent 比例）
	Balance         Money          `gorm:"type:decimal(20,2);not null;default:0" json:"balance"`         // 钱包余额
	TotalEarnings   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_earnings"`  // 累计佣金
	TotalRevenue    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_revenue"`   // 累计归因营收
	TotalWithdrawn  Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_withdrawn"` // 累计提现
	ReferralCount   int64          `gorm:"not null;default:0" json:"referral_count"`                     // 推荐数
	Status          string         `gorm:"type:varchar(20);not null;index" json:"status"`                // 状态（active/inactive）
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`                                      // 创建时间
	UpdatedAt       time.Time      `gorm:"index" json:"updated_at"`                                      // 更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                                               // 软删除时间

	Referrer     *Partner      `gorm:"foreignKey:ReferrerID" json:"referrer,omitempty"`     // 邀请方
	BankAccounts []BankAccount `gorm:"foreignKey:PartnerID" json:"bank_accounts,omitempty"` // 银行账户
}

// TableName 指定表名
func (Partner) TableName() string {
	return "partners"
}
