package repository

import (
	"errors"
	"strings"

	"github.com/yash9025/WriteOffGenie-sub000/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ClientRepository 客户数据访问接口
type ClientRepository interface {
	GetByExternalID(externalID string) (*models.Client, error)
	GetByExternalIDForUpdate(externalID string) (*models.Client, error)
	Create(client *models.Client) error
	Update(client *models.Client) error
	ListByReferralCode(code string, page, pageSize int) ([]models.Client, int64, error)
	CountSubscribedByReferralCode(code string) (int64, error)
	WithTx(tx *gorm.DB) *GormClientRepository
}

// GormClientRepository GORM 客户仓储实现
type GormClientRepository struct {
	db *gorm.DB
}

// NewClientRepository 创建客户仓储
func NewClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

// WithTx 绑定事务
func (r *GormClientRepository) WithTx(tx *gorm.DB) *GormClientRepository {
	if tx == nil {
		return r
	}
	return &GormClientRepository{db: tx}
}

// GetByExternalID 按外部ID获取客户
func (r *GormClientRepository) GetByExternalID(externalID string) (*models.Client, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, nil
	}
	var client models.Client
	if err := r.db.Where("external_id = ?", externalID).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &client, nil
}

// GetByExternalIDForUpdate 按外部ID加锁获取客户
func (r *GormClientRepository) GetByExternalIDForUpdate(externalID string) (*models.Client, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, nil
	}
	var client models.Client
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("external_id = ?", externalID).
		First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &client, nil
}

// Create 创建客户
func (r *GormClientRepository) Create(client *models.Client) error {
	return r.db.Create(client).Error
}

// Update 更新客户
func (r *GormClientRepository) Update(client *models.Client) error {
	return r.db.Save(client).Error
}

// ListByReferralCode 分页查询某推荐码名下的客户
func (r *GormClientRepository) ListByReferralCode(code string, page, pageSize int) ([]models.Client, int64, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return []models.Client{}, 0, nil
	}
	query := r.db.Model(&models.Client{}).Where("referral_code = ?", code)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, page, pageSize)

	var clients []models.Client
	if err := query.Order("id desc").Find(&clients).Error; err != nil {
		return nil, 0, err
	}
	return clients, total, nil
}

// CountSubscribedByReferralCode 统计某推荐码名下的已订阅客户数
func (r *GormClientRepository) CountSubscribedByReferralCode(code string) (int64, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return 0, nil
	}
	var count int64
	if err := r.db.Model(&models.Client{}).
		Where("referral_code = ? AND subscribed = ?", code, true).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
