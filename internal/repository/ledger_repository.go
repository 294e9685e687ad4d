package repository

import (
	"errors"
	"strings"

	"github.com/yash9025/WriteOffGenie-sub000/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerPartnerStats 账本维度的合作伙伴聚合结果
type LedgerPartnerStats struct {
	TotalEarnings decimal.Decimal
	TotalRevenue  decimal.Decimal
	TxnCount      int64
}

// LedgerRepository 佣金账本数据访问接口
type LedgerRepository interface {
	GetByEventID(eventID string) (*models.LedgerTransaction, error)
	GetByEventIDForUpdate(eventID string) (*models.LedgerTransaction, error)
	Create(txn *models.LedgerTransaction) error
	List(filter LedgerTransactionListFilter) ([]models.LedgerTransaction, int64, error)
	SumStatsForCPA(cpaID uint) (*LedgerPartnerStats, error)
	SumStatsForAgent(agentID uint) (*LedgerPartnerStats, error)
	SumPlatformEarnings() (decimal.Decimal, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormLedgerRepository
}

// GormLedgerRepository GORM 佣金账本仓储实现
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository 创建佣金账本仓储
func NewLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// WithTx 绑定事务
func (r *GormLedgerRepository) WithTx(tx *gorm.DB) *GormLedgerRepository {
	if tx == nil {
		return r
	}
	return &GormLedgerRepository{db: tx}
}

// Transaction 在事务中执行
func (r *GormLedgerRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// GetByEventID 按事件ID获取账本流水（幂等检查）
func (r *GormLedgerRepository) GetByEventID(eventID string) (*models.LedgerTransaction, error) {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return nil, nil
	}
	var txn models.LedgerTransaction
	if err := r.db.Where("event_id = ?", eventID).First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

// GetByEventIDForUpdate 按事件ID加锁获取账本流水
func (r *GormLedgerRepository) GetByEventIDForUpdate(eventID string) (*models.LedgerTransaction, error) {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return nil, nil
	}
	var txn models.LedgerTransaction
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("event_id = ?", eventID).
		First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

// Create 创建账本流水
func (r *GormLedgerRepository) Create(txn *models.LedgerTransaction) error {
	return r.db.Create(txn).Error
}

// List 分页查询账本流水
func (r *GormLedgerRepository) List(filter LedgerTransactionListFilter) ([]models.LedgerTransaction, int64, error) {
	query := r.db.Model(&models.LedgerTransaction{})
	if filter.PartnerID != 0 {
		query = query.Where("(cpa_id = ? OR agent_id = ?)", filter.PartnerID, filter.PartnerID)
	}
	if filter.CPAID != 0 {
		query = query.Where("cpa_id = ?", filter.CPAID)
	}
	if filter.AgentID != 0 {
		query = query.Where("agent_id = ?", filter.AgentID)
	}
	if filter.ClientID != 0 {
		query = query.Where("client_id = ?", filter.ClientID)
	}
	if filter.PlanID != "" {
		query = query.Where("plan_id = ?", filter.PlanID)
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

	var txns []models.LedgerTransaction
	if err := query.Order("id desc").Find(&txns).Error; err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}

type ledgerSumRow struct {
	Earnings decimal.Decimal
	Revenue  decimal.Decimal
	Count    int64
}

// SumStatsForCPA 汇总 CPA 维度的佣金与归因营收
func (r *GormLedgerRepository) SumStatsForCPA(cpaID uint) (*LedgerPartnerStats, error) {
	if cpaID == 0 {
		return &LedgerPartnerStats{}, nil
	}
	var row ledgerSumRow
	if err := r.db.Model(&models.LedgerTransaction{}).
		Select("COALESCE(SUM(cpa_earnings), 0) AS earnings, COALESCE(SUM(plan_amount), 0) AS revenue, COUNT(*) AS count").
		Where("cpa_id = ?", cpaID).
		Scan(&row).Error; err != nil {
		return nil, err
	}
	return &LedgerPartnerStats{TotalEarnings: row.Earnings, TotalRevenue: row.Revenue, TxnCount: row.Count}, nil
}

// SumStatsForAgent 汇总 Agent 维度的佣金与归因营收
func (r *GormLedgerRepository) SumStatsForAgent(agentID uint) (*LedgerPartnerStats, error) {
	if agentID == 0 {
		return &LedgerPartnerStats{}, nil
	}
	var row ledgerSumRow
	if err := r.db.Model(&models.LedgerTransaction{}).
		Select("COALESCE(SUM(agent_earnings), 0) AS earnings, COALESCE(SUM(plan_amount), 0) AS revenue, COUNT(*) AS count").
		Where("agent_id = ?", agentID).
		Scan(&row).Error; err != nil {
		return nil, err
	}
	return &LedgerPartnerStats{TotalEarnings: row.Earnings, TotalRevenue: row.Revenue, TxnCount: row.Count}, nil
}

// SumPlatformEarnings 汇总平台留存（套餐总价减去两级分成）
func (r *GormLedgerRepository) SumPlatformEarnings() (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	if err := r.db.Model(&models.LedgerTransaction{}).
		Select("COALESCE(SUM(plan_amount - cpa_earnings - agent_earnings), 0) AS total").
		Scan(&row).Error; err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}
