package models

import (
	"time"

	"gorm.io/gorm"
)

// Client 付费客户（订阅用户）
type Client struct {
	ID           uint           `gorm:"primarykey" json:"id"`                                     // 主键
	ExternalID   string         `gorm:"type:varchar(64);not null;uniqueIndex" json:"external_id"` // 上游用户标识
	Email        string         `gorm:"index" json:"email"`                                       // 邮箱
	ReferralCode string         `gorm:"type:varchar(32);index" json:"referral_code"`              // 注册时使用的推荐码
	Subscribed   bool           `gorm:"not null;default:false" json:"subscribed"`                 // 是否存在活跃订阅
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`                                  // 创建时间
	UpdatedAt    time.Time      `json:"updated_at"`                                               // 更新时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                                           // 软删除时间
}

// TableName 指定表名
func (Client) TableName() string {
	return "clients"
}
