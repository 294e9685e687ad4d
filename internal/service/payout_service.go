package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/yash9025/WriteOffGenie-sub000/internal/config"
	"github.com/yash9025/WriteOffGenie-sub000/internal/constants"
	"github.com/yash9025/WriteOffGenie-sub000/internal/logger"
	"github.com/yash9025/WriteOffGenie-sub000/internal/models"
	"github.com/yash9025/WriteOffGenie-sub000/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PayoutNotifier 提现状态变更通知接口（由异步队列实现，可为空）
type PayoutNotifier interface {
	EnqueuePayoutNotify(payoutID uint) error
}

// PayoutService 提现服务
// 申请即预留：余额在申请事务内扣减，拒绝时在同一事务内原额回补。
type PayoutService struct {
	payoutRepo  repository.PayoutRepository
	partnerRepo repository.PartnerRepository
	cfg         PayoutPolicy
	notifier    PayoutNotifier
}

// PayoutPolicy 提现策略（按角色区分最低限额）
type PayoutPolicy struct {
	MinWithdrawAgent decimal.Decimal
	MinWithdrawCPA   decimal.Decimal
}

// NewPayoutPolicy 从配置构建提现策略，非法金额按 0 处理
func NewPayoutPolicy(cfg config.PayoutConfig) PayoutPolicy {
	return PayoutPolicy{
		MinWithdrawAgent: models.NewMoneyFromString(cfg.MinWithdrawAgent).Decimal,
		MinWithdrawCPA:   models.NewMoneyFromString(cfg.MinWithdrawCPA).Decimal,
	}
}

// NewPayoutService 创建提现服务
func NewPayoutService(
	payoutRepo repository.PayoutRepository,
	partnerRepo repository.PartnerRepository,
	policy PayoutPolicy,
	notifier PayoutNotifier,
) *PayoutService {
	return &PayoutService{
		payoutRepo:  payoutRepo,
		partnerRepo: partnerRepo,
		cfg:         policy,
		notifier:    notifier,
	}
}

// PayoutRequestInput 提现申请输入
type PayoutRequestInput struct {
	Amount        decimal.Decimal
	BankAccountID uint
}

// PayoutReviewInput 提现审核输入
type PayoutReviewInput struct {
	Decision       string
	TransactionRef string
	RejectReason   string
}

// RequestWithdraw 合作伙伴提交提现申请
// 余额校验、扣减与申请落库在同一事务内完成，杜绝并发双花。
func (s *PayoutService) RequestWithdraw(partnerID uint, input PayoutRequestInput) (*models.Payout, error) {
	if partnerID == 0 {
		return nil, ErrPartnerNotFound
	}
	amount := input.Amount.Round(2)
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrPayoutAmountInvalid
	}

	var createdID uint
	err := s.payoutRepo.Transaction(func(tx *gorm.DB) error {
		payoutTx := s.payoutRepo.WithTx(tx)
		partnerTx := s.partnerRepo.WithTx(tx)

		partner, err := partnerTx.GetByIDForUpdate(partnerID)
		if err != nil {
			return err
		}
		if partner == nil {
			return ErrPartnerNotFound
		}
		if partner.Status != constants.PartnerStatusActive {
			return ErrPartnerDisabled
		}
		if amount.LessThan(s.minWithdrawFor(partner.Role)) {
			return ErrPayoutBelowMinimum
		}
		if partner.Balance.Decimal.LessThan(amount) {
			return ErrPayoutInsufficientBalance
		}

		account, err := partnerTx.GetBankAccountByID(partnerID, input.BankAccountID)
		if err != nil {
			return err
		}
		if account == nil {
			return ErrBankAccountNotFound
		}

		partner.Balance = models.NewMoneyFromDecimal(partner.Balance.Decimal.Sub(amount))
		if err := partnerTx.Update(partner); err != nil {
			return err
		}

		payout := &models.Payout{
			PartnerID:      partnerID,
			Amount:         models.NewMoneyFromDecimal(amount),
			Status:         constants.PayoutStatusPending,
			BankHolderName: account.HolderName,
			BankName:       account.BankName,
			BankAccountNo:  account.AccountNumber,
			BankIFSC:       account.IFSC,
		}
		if err := payoutTx.Create(payout); err != nil {
			return err
		}
		payout.ReferenceID = buildPayoutReference(payout.ID)
		if err := payoutTx.Update(payout); err != nil {
			return err
		}
		createdID = payout.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyAsync(createdID)
	return s.payoutRepo.GetByID(createdID)
}

// Review 管理端审核提现申请
// approve 未带转账参考号时进入 approved 等待打款；带参考号视作已打款直达 paid。
// reject 仅允许 pending 状态，回补余额与状态变更在同一事务内完成。
func (s *PayoutService) Review(adminID, payoutID uint, input PayoutReviewInput) (*models.Payout, error) {
	if payoutID == 0 {
		return nil, ErrPayoutNotFound
	}
	decision := strings.ToLower(strings.TrimSpace(input.Decision))
	transactionRef := strings.TrimSpace(input.TransactionRef)
	rejectReason := strings.TrimSpace(input.RejectReason)
	switch decision {
	case constants.PayoutDecisionApprove, constants.PayoutDecisionReject, constants.PayoutDecisionMarkPaid:
	default:
		return nil, ErrPayoutDecisionInvalid
	}
	if decision == constants.PayoutDecisionMarkPaid && transactionRef == "" {
		return nil, ErrPayoutTransactionRefRequired
	}
	if decision == constants.PayoutDecisionReject && rejectReason == "" {
		return nil, ErrPayoutRejectReasonRequired
	}

	err := s.payoutRepo.Transaction(func(tx *gorm.DB) error {
		payoutTx := s.payoutRepo.WithTx(tx)
		partnerTx := s.partnerRepo.WithTx(tx)

		payout, err := payoutTx.GetByIDForUpdate(payoutID)
		if err != nil {
			return err
		}
		if payout == nil {
			return ErrPayoutNotFound
		}

		now := time.Now()
		switch decision {
		case constants.PayoutDecisionApprove:
			if payout.Status != constants.PayoutStatusPending {
				return ErrPayoutStatusInvalid
			}
			if transactionRef != "" {
				payout.Status = constants.PayoutStatusPaid
				payout.TransactionRef = transactionRef
				if err := s.settlePartnerTx(partnerTx, payout.PartnerID, payout.Amount.Decimal); err != nil {
					return err
				}
			} else {
				payout.Status = constants.PayoutStatusApproved
			}
		case constants.PayoutDecisionMarkPaid:
			if payout.Status != constants.PayoutStatusPending && payout.Status != constants.PayoutStatusApproved {
				return ErrPayoutStatusInvalid
			}
			payout.Status = constants.PayoutStatusPaid
			payout.TransactionRef = transactionRef
			if err := s.settlePartnerTx(partnerTx, payout.PartnerID, payout.Amount.Decimal); err != nil {
				return err
			}
		case constants.PayoutDecisionReject:
			// approved 之后视作资金已进入打款通道，不再允许拒绝
			if payout.Status != constants.PayoutStatusPending {
				return ErrPayoutStatusInvalid
			}
			payout.Status = constants.PayoutStatusRejected
			payout.RejectReason = rejectReason
			partner, err := partnerTx.GetByIDForUpdate(payout.PartnerID)
			if err != nil {
				return err
			}
			if partner == nil {
				return ErrPartnerNotFound
			}
			partner.Balance = models.NewMoneyFromDecimal(partner.Balance.Decimal.Add(payout.Amount.Decimal))
			if err := partnerTx.Update(partner); err != nil {
				return err
			}
		}

		payout.ProcessedBy = &adminID
		payout.ProcessedAt = &now
		return payoutTx.Update(payout)
	})
	if err != nil {
		return nil, err
	}

	s.notifyAsync(payoutID)
	return s.payoutRepo.GetByID(payoutID)
}

// GetPayout 查询提现申请（可选校验归属）
func (s *PayoutService) GetPayout(payoutID, partnerID uint) (*models.Payout, error) {
	payout, err := s.payoutRepo.GetByID(payoutID)
	if err != nil {
		return nil, err
	}
	if payout == nil {
		return nil, ErrPayoutNotFound
	}
	if partnerID != 0 && payout.PartnerID != partnerID {
		return nil, ErrPayoutNotFound
	}
	return payout, nil
}

// ListPayouts 分页查询提现申请
func (s *PayoutService) ListPayouts(filter repository.PayoutListFilter) ([]models.Payout, int64, error) {
	return s.payoutRepo.List(filter)
}

// settlePartnerTx 打款完成后累加累计提现
func (s *PayoutService) settlePartnerTx(partnerTx *repository.GormPartnerRepository, partnerID uint, amount decimal.Decimal) error {
	partner, err := partnerTx.GetByIDForUpdate(partnerID)
	if err != nil {
		return err
	}
	if partner == nil {
		return ErrPartnerNotFound
	}
	partner.TotalWithdrawn = models.NewMoneyFromDecimal(partner.TotalWithdrawn.Decimal.Add(amount))
	return partnerTx.Update(partner)
}

func (s *PayoutService) minWithdrawFor(role string) decimal.Decimal {
	if role == constants.PartnerRoleAgent {
		return s.cfg.MinWithdrawAgent.Round(2)
	}
	return s.cfg.MinWithdrawCPA.Round(2)
}

func (s *PayoutService) notifyAsync(payoutID uint) {
	if s.notifier == nil || payoutID == 0 {
		return
	}
	if err := s.notifier.EnqueuePayoutNotify(payoutID); err != nil {
		logger.Warnw("payout_notify_enqueue_failed", "payout_id", payoutID, "error", err)
	}
}

func buildPayoutReference(id uint) string {
	return fmt.Sprintf("PO%08d", id)
}
