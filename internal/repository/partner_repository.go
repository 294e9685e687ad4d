package repository

import (
	"errors"
	"strings"

	"github.com/yash9025/WriteOffGenie-sub000/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PartnerRepository 合作伙伴数据访问接口
type PartnerRepository interface {
	GetByID(id uint) (*models.Partner, error)
	GetByIDForUpdate(id uint) (*models.Partner, error)
	GetByEmail(email string) (*models.Partner, error)
	GetByReferralCode(code string) (*models.Partner, error)
	Create(partner *models.Partner) error
	Update(partner *models.Partner) error
	UpdateStatus(id uint, status string) error
	List(filter PartnerListFilter) ([]models.Partner, int64, error)
	CountByReferrer(referrerID uint) (int64, error)
	CreateBankAccount(account *models.BankAccount) error
	UpdateBankAccount(account *models.BankAccount) error
	DeleteBankAccount(partnerID, id uint) error
	GetBankAccountByID(partnerID, id uint) (*models.BankAccount, error)
	ListBankAccounts(partnerID uint) ([]models.BankAccount, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormPartnerRepository
}

// GormPartnerRepository GORM 合作伙伴仓储实现
type GormPartnerRepository struct {
	db *gorm.DB
}

// NewPartnerRepository 创建合作伙伴仓储
func NewPartnerRepository(db *gorm.DB) *GormPartnerRepository {
	return &GormPartnerRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPartnerRepository) WithTx(tx *gorm.DB) *GormPartnerRepository {
	if tx == nil {
		return r
	}
	return &GormPartnerRepository{db: tx}
}

// Transaction 在事务中执行
func (r *GormPartnerRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// GetByID 按ID获取合作伙伴
func (r *GormPartnerRepository) GetByID(id uint) (*models.Partner, error) {
	if id == 0 {
		return nil, nil
	}
	var partner models.Partner
	if err := r.db.First(&partner, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &partner, nil
}

// GetByIDForUpdate 按ID加锁获取合作伙伴
func (r *GormPartnerRepository) GetByIDForUpdate(id uint) (*models.Partner, error) {
	if id == 0 {
		return nil, nil
	}
	var partner models.Partner
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&partner, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &partner, nil
}

// GetByEmail 按邮箱获取合作伙伴
func (r *GormPartnerRepository) GetByEmail(email string) (*models.Partner, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, nil
	}
	var partner models.Partner
	if err := r.db.Where("email = ?", email).First(&partner).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &partner, nil
}

// GetByReferralCode 按推荐码获取合作伙伴
func (r *GormPartnerRepository) GetByReferralCode(code string) (*models.Partner, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	var partner models.Partner
	if err := r.db.Where("referral_code = ?", code).First(&partner).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &partner, nil
}

// Create 创建合作伙伴
func (r *GormPartnerRepository) Create(partner *models.Partner) error {
	return r.db.Create(partner).Error
}

// Update 更新合作伙伴
func (r *GormPartnerRepository) Update(partner *models.Partner) error {
	return r.db.Save(partner).Error
}

// UpdateStatus 更新合作伙伴状态
func (r *GormPartnerRepository) UpdateStatus(id uint, status string) error {
	return r.db.Model(&models.Partner{}).Where("id = ?", id).Update("status", status).Error
}

// List 分页查询合作伙伴
func (r *GormPartnerRepository) List(filter PartnerListFilter) ([]models.Partner, int64, error) {
	query := r.db.Model(&models.Partner{})
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ReferrerID != 0 {
		query = query.Where("referrer_id = ?", filter.ReferrerID)
	}
	if filter.Keyword != "" {
		like := "%" + filter.Keyword + "%"
		query = query.Where("(email LIKE ? OR display_name LIKE ? OR referral_code LIKE ?)", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var partners []models.Partner
	if err := query.Order("id desc").Find(&partners).Error; err != nil {
		return nil, 0, err
	}
	return partners, total, nil
}

// CountByReferrer 统计某邀请方名下的合作伙伴数量
func (r *GormPartnerRepository) CountByReferrer(referrerID uint) (int64, error) {
	if referrerID == 0 {
		return 0, nil
	}
	var count int64
	if err := r.db.Model(&models.Partner{}).Where("referrer_id = ?", referrerID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CreateBankAccount 创建银行账户
func (r *GormPartnerRepository) CreateBankAccount(account *models.BankAccount) error {
	return r.db.Create(account).Error
}

// UpdateBankAccount 更新银行账户
func (r *GormPartnerRepository) UpdateBankAccount(account *models.BankAccount) error {
	return r.db.Save(account).Error
}

// DeleteBankAccount 删除银行账户
func (r *GormPartnerRepository) DeleteBankAccount(partnerID, id uint) error {
	if partnerID == 0 || id == 0 {
		return nil
	}
	return r.db.Where("partner_id = ? AND id = ?", partnerID, id).Delete(&models.BankAccount{}).Error
}

// GetBankAccountByID 按ID获取银行账户（校验归属）
func (r *GormPartnerRepository) GetBankAccountByID(partnerID, id uint) (*models.BankAccount, error) {
	if partnerID == 0 || id == 0 {
		return nil, nil
	}
	var account models.BankAccount
	if err := r.db.Where("partner_id = ? AND id = ?", partnerID, id).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// ListBankAccounts 查询合作伙伴的银行账户列表
func (r *GormPartnerRepository) ListBankAccounts(partnerID uint) ([]models.BankAccount, error) {
	if partnerID == 0 {
		return []models.BankAccount{}, nil
	}
	var accounts []models.BankAccount
	if err := r.db.Where("partner_id = ?", partnerID).Order("id desc").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}
