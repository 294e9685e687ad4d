package service

import (
	"strings"

	"github.com/yash9025/WriteOffGenie-sub000/internal/constants"
	"github.com/yash9025/WriteOffGenie-sub000/internal/logger"
	"github.com/yash9025/WriteOffGenie-sub000/internal/models"
	"github.com/yash9025/WriteOffGenie-sub000/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LedgerService 佣金账本服务
// 负责把上游订阅事件转换成恰好一条账本流水并同步入账钱包余额。
type LedgerService struct {
	ledgerRepo  repository.LedgerRepository
	partnerRepo repository.PartnerRepository
	clientRepo  repository.ClientRepository
	calculator  *CommissionCalculator
	planCatalog *PlanCatalog
}

// NewLedgerService 创建佣金账本服务
func NewLedgerService(
	ledgerRepo repository.LedgerRepository,
	partnerRepo repository.PartnerRepository,
	clientRepo repository.ClientRepository,
	calculator *CommissionCalculator,
	planCatalog *PlanCatalog,
) *LedgerService {
	return &LedgerService{
		ledgerRepo:  ledgerRepo,
		partnerRepo: partnerRepo,
		clientRepo:  clientRepo,
		calculator:  calculator,
		planCatalog: planCatalog,
	}
}

// RevenueEventInput 上游订阅事件输入
type RevenueEventInput struct {
	EventID          string
	ClientExternalID string
	PlanID           string
	Status           string
}

// CreditRevenueEvent 处理订阅事件入账
// 返回账本流水与本次是否产生入账：重复投递返回既有流水且 credited=false，
// 事件不满足入账条件时返回 (nil, false, nil) 表示跳过。
// 幂等性依赖 event_id 唯一索引：事务内复核加创建冲突回读，重复投递绝不产生第二条流水。
func (s *LedgerService) CreditRevenueEvent(input RevenueEventInput) (*models.LedgerTransaction, bool, error) {
	eventID := strings.TrimSpace(input.EventID)
	if eventID == "" {
		return nil, false, ErrEventInvalid
	}
	if strings.TrimSpace(input.Status) != constants.RevenueEventStatusActive {
		logger.Infow("revenue_event_skipped", "event_id", eventID, "reason", "status_not_active", "status", input.Status)
		return nil, false, nil
	}
	price := s.planCatalog.PriceFor(input.PlanID)
	if price.LessThanOrEqual(decimal.Zero) {
		logger.Infow("revenue_event_skipped", "event_id", eventID, "reason", "unknown_plan", "plan_id", input.PlanID)
		return nil, false, nil
	}

	// 幂等快速路径：已入账的事件返回既有流水，不视为新入账
	existing, err := s.ledgerRepo.GetByEventID(eventID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	client, err := s.clientRepo.GetByExternalID(input.ClientExternalID)
	if err != nil {
		return nil, false, err
	}
	if client == nil || strings.TrimSpace(client.ReferralCode) == "" {
		logger.Infow("revenue_event_skipped", "event_id", eventID, "reason", "client_not_attributed", "client_external_id", input.ClientExternalID)
		return nil, false, nil
	}

	cpa, err := s.partnerRepo.GetByReferralCode(client.ReferralCode)
	if err != nil {
		return nil, false, err
	}
	if cpa == nil || cpa.Role != constants.PartnerRoleCPA {
		logger.Infow("revenue_event_skipped", "event_id", eventID, "reason", "referral_code_unbound", "referral_code", client.ReferralCode)
		return nil, false, nil
	}

	var agent *models.Partner
	if cpa.ReferrerID != nil && *cpa.ReferrerID > 0 {
		candidate, err := s.partnerRepo.GetByID(*cpa.ReferrerID)
		if err != nil {
			return nil, false, err
		}
		if candidate != nil && candidate.Role == constants.PartnerRoleAgent {
			agent = candidate
		}
	}

	agentRate := decimal.Zero
	maintenanceCost := decimal.Zero
	if agent != nil {
		agentRate = agent.CommissionRate.Decimal
		maintenanceCost = agent.MaintenanceCost.Decimal
	}
	split := s.calculator.Split(price, cpa.CommissionRate.Decimal, agentRate, maintenanceCost)

	var created *models.LedgerTransaction
	var credited bool
	err = s.ledgerRepo.Transaction(func(tx *gorm.DB) error {
		ledgerTx := s.ledgerRepo.WithTx(tx)
		partnerTx := s.partnerRepo.WithTx(tx)
		clientTx := s.clientRepo.WithTx(tx)

		// 事务内复核幂等键，拦截并发重复投递（credited 保持 false）
		dup, err := ledgerTx.GetByEventIDForUpdate(eventID)
		if err != nil {
			return err
		}
		if dup != nil {
			created = dup
			return nil
		}

		txn := &models.LedgerTransaction{
			EventID:     eventID,
			Type:        constants.LedgerTxnTypeCommission,
			PlanID:      strings.TrimSpace(input.PlanID),
			PlanAmount:  models.NewMoneyFromDecimal(split.PlanAmount),
			CPAID:       cpa.ID,
			CPAEarnings: models.NewMoneyFromDecimal(split.CPAShare),
			ClientID:    client.ID,
			Status:      constants.LedgerTxnStatusCompleted,
		}
		if agent != nil {
			agentID := agent.ID
			txn.AgentID = &agentID
			txn.AgentEarnings = models.NewMoneyFromDecimal(split.AgentShare)
		}
		if err := ledgerTx.Create(txn); err != nil {
			// 并发下唯一索引冲突视同重复事件，回读既有流水
			if isUniqueViolation(err) {
				dup, derr := ledgerTx.GetByEventID(eventID)
				if derr != nil {
					return derr
				}
				if dup != nil {
					created = dup
					return nil
				}
			}
			return err
		}

		if err := s.creditPartnerTx(partnerTx, cpa.ID, split.CPAShare, split.PlanAmount); err != nil {
			return err
		}
		if agent != nil {
			if err := s.creditPartnerTx(partnerTx, agent.ID, split.AgentShare, split.PlanAmount); err != nil {
				return err
			}
		}

		if !client.Subscribed {
			client.Subscribed = true
			if err := clientTx.Update(client); err != nil {
				return err
			}
		}

		created = txn
		credited = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if credited {
		logger.Infow("revenue_event_credited",
			"event_id", eventID,
			"ledger_txn_id", created.ID,
			"cpa_id", created.CPAID,
			"cpa_earnings", created.CPAEarnings.String(),
			"agent_earnings", created.AgentEarnings.String(),
		)
	}
	return created, credited, nil
}

// creditPartnerTx 在事务内锁定合作伙伴并累加余额与统计
func (s *LedgerService) creditPartnerTx(partnerTx *repository.GormPartnerRepository, partnerID uint, earnings, revenue decimal.Decimal) error {
	locked, err := partnerTx.GetByIDForUpdate(partnerID)
	if err != nil {
		return err
	}
	if locked == nil {
		return ErrPartnerNotFound
	}
	locked.Balance = models.NewMoneyFromDecimal(locked.Balance.Decimal.Add(earnings))
	locked.TotalEarnings = models.NewMoneyFromDecimal(locked.TotalEarnings.Decimal.Add(earnings))
	locked.TotalRevenue = models.NewMoneyFromDecimal(locked.TotalRevenue.Decimal.Add(revenue))
	return partnerTx.Update(locked)
}

// ListTransactions 查询账本流水
func (s *LedgerService) ListTransactions(filter repository.LedgerTransactionListFilter) ([]models.LedgerTransaction, int64, error) {
	return s.ledgerRepo.List(filter)
}

// GetByEventID 按事件ID查询账本流水
func (s *LedgerService) GetByEventID(eventID string) (*models.LedgerTransaction, error) {
	txn, err := s.ledgerRepo.GetByEventID(eventID)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, ErrNotFound
	}
	return txn, nil
}

// PlatformEarnings 查询平台留存汇总
func (s *LedgerService) PlatformEarnings() (decimal.Decimal, error) {
	return s.ledgerRepo.SumPlatformEarnings()
}
