package models

import (
	"time"

	"gorm.io/gorm"
)

// Payout 提现申请
// 银行账户信息在申请时快照进本记录，后续编辑银行账户不影响在途申请。
type Payout struct {
	ID             uint           `gorm:"primarykey" json:"id"`                               // 主键
	PartnerID      uint           `gorm:"not null;index" json:"partner_id"`                   // 合作伙伴ID
	Amount         Money          `gorm:"type:decimal(20,2);not null" json:"amount"`          // 申请金额
	Status         string         `gorm:"type:varchar(20);not null;index" json:"status"`      // 状态（pending/approved/paid/rejected）
	ReferenceID    string         `gorm:"type:varchar(32);uniqueIndex" json:"reference_id"`   // 短参考号（由自身ID派生）
	BankHolderName string         `gorm:"type:varchar(120);not null" json:"bank_holder_name"` // 银行户名快照
	BankName       string         `gorm:"type:varchar(120);not null" json:"bank_name"`        // 银行名称快照
	BankAccountNo  string         `gorm:"type:varchar(64);not null" json:"bank_account_no"`   // 银行账号快照
	BankIFSC       string         `gorm:"type:varchar(32)" json:"bank_ifsc"`                  // 联行号快照
	TransactionRef string         `gorm:"type:varchar(128)" json:"transaction_ref"`           // 结算转账参考号（UTR）
	RejectReason   string         `gorm:"type:varchar(255)" json:"reject_reason"`             // 拒绝原因
	ProcessedBy    *uint          `gorm:"index" json:"processed_by,omitempty"`                // 处理人（管理员ID）
	ProcessedAt    *time.Time     `json:"processed_at,omitempty"`                             // 处理时间
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                            // 申请时间
	UpdatedAt      time.Time      `json:"updated_at"`                                         // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                     // 软删除时间

	Partner Partner `gorm:"foreignKey:PartnerID" json:"partner,omitempty"` // 合作伙伴
}

// TableName 指定表名
func (Payout) TableName() string {
	return "payouts"
}
