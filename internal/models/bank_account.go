package models

import (
	"time"

	"gorm.io/gorm"
)

// BankAccount 合作伙伴收款银行账户
type BankAccount struct {
	ID            uint           `gorm:"primarykey" json:"id"`                            // 主键
	PartnerID     uint           `gorm:"not null;index" json:"partner_id"`                // 合作伙伴ID
	HolderName    string         `gorm:"type:varchar(120);not null" json:"holder_name"`   // 户名
	BankName      string         `gorm:"type:varchar(120);not null" json:"bank_name"`     // 银行名称
	AccountNumber string         `gorm:"type:varchar(64);not null" json:"account_number"` // 账号
	IFSC          string         `gorm:"type:varchar(32)" json:"ifsc"`                    // 联行号
	CreatedAt     time.Time      `json:"created_at"`                                      // 创建时间
	UpdatedAt     time.Time      `json:"updated_at"`                                      // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                  // 软删除时间
}

// TableName 指定表名
func (BankAccount) TableName() string {
	return "bank_accounts"
}
