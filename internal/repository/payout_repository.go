package repository

import (
	"errors"
	"strings"

	"github.com/yash9025/WriteOffGenie-sub000/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PayoutRepository 提现数据访问接口
type PayoutRepository interface {
	Create(payout *models.Payout) error
	Update(payout *models.Payout) error
	GetByID(id uint) (*models.Payout, error)
	GetByIDForUpdate(id uint) (*models.Payout, error)
	GetByReferenceID(referenceID string) (*models.Payout, error)
	List(filter PayoutListFilter) ([]models.Payout, int64, error)
	SumAmountByPartnerAndStatuses(partnerID uint, statuses []string) (decimal.Decimal, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormPayoutRepository
}

// GormPayoutRepository GORM 提现仓储实现
type GormPayoutRepository struct {
	db *gorm.DB
}

// NewPayoutRepository 创建提现仓储
func NewPayoutRepository(db *gorm.DB) *GormPayoutRepository {
	return &GormPayoutRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPayoutRepository) WithTx(tx *gorm.DB) *GormPayoutRepository {
	if tx == nil {
		return r
	}
	return &GormPayoutRepository{db: tx}
}

// Transaction 在事务中执行
func (r *GormPayoutRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// Create 创建提现申请
func (r *GormPayoutRepository) Create(payout *models.Payout) error {
	return r.db.Create(payout).Error
}

// Update 更新提现申请
func (r *GormPayoutRepository) Update(payout *models.Payout) error {
	return r.db.Save(payout).Error
}

// GetByID 按ID获取提现申请
func (r *GormPayoutRepository) GetByID(id uint) (*models.Payout, error) {
	if id == 0 {
		return nil, nil
	}
	var payout models.Payout
	if err := r.db.First(&payout, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payout, nil
}

// GetByIDForUpdate 按ID加锁获取提现申请
func (r *GormPayoutRepository) GetByIDForUpdate(id uint) (*models.Payout, error) {
	if id == 0 {
		return nil, nil
	}
	var payout models.Payout
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&payout, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payout, nil
}

// GetByReferenceID 按提现单号获取提现申请
func (r *GormPayoutRepository) GetByReferenceID(referenceID string) (*models.Payout, error) {
	referenceID = strings.TrimSpace(referenceID)
	if referenceID == "" {
		return nil, nil
	}
	var payout models.Payout
	if err := r.db.Where("reference_id = ?", referenceID).First(&payout).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payout, nil
}

// List 分页查询提现申请
func (r *GormPayoutRepository) List(filter PayoutListFilter) ([]models.Payout, int64, error) {
	query := r.db.Model(&models.Payout{})
	if filter.PartnerID != 0 {
		query = query.Where("partner_id = ?", filter.PartnerID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ReferenceID != "" {
		query = query.Where("reference_id LIKE ?", "%"+filter.ReferenceID+"%")
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var payouts []models.Payout
	if err := query.Order("id desc").Find(&payouts).Error; err != nil {
		return nil, 0, err
	}
	return payouts, total, nil
}

// SumAmountByPartnerAndStatuses 汇总合作伙伴指定状态下的提现金额
func (r *GormPayoutRepository) SumAmountByPartnerAndStatuses(partnerID uint, statuses []string) (decimal.Decimal, error) {
	if partnerID == 0 || len(statuses) == 0 {
		return decimal.Zero, nil
	}
	var row struct {
		Total decimal.Decimal
	}
	if err := r.db.Model(&models.Payout{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("partner_id = ? AND status IN ?", partnerID, statuses).
		Scan(&row).Error; err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}
