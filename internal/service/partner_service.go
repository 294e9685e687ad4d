package service

import (
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/yash9025/WriteOffGenie-sub000/internal/config"
	"github.com/yash9025/WriteOffGenie-sub000/internal/constants"
	"github.com/yash9025/WriteOffGenie-sub000/internal/models"
	"github.com/yash9025/WriteOffGenie-sub000/internal/repository"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

const referralCodeLength = 8

// PartnerService 合作伙伴服务
type PartnerService struct {
	partnerRepo repository.PartnerRepository
	ledgerRepo  repository.LedgerRepository
	payoutRepo  repository.PayoutRepository
	clientRepo  repository.ClientRepository
	cfg         *config.Config
}

// NewPartnerService 创建合作伙伴服务
func NewPartnerService(
	partnerRepo repository.PartnerRepository,
	ledgerRepo repository.LedgerRepository,
	payoutRepo repository.PayoutRepository,
	clientRepo repository.ClientRepository,
	cfg *config.Config,
) *PartnerService {
	return &PartnerService{
		partnerRepo: partnerRepo,
		ledgerRepo:  ledgerRepo,
		payoutRepo:  payoutRepo,
		clientRepo:  clientRepo,
		cfg:         cfg,
	}
}

// CreateAgentInput 管理端创建 Agent 输入
type CreateAgentInput struct {
	Email           string
	Password        string
	DisplayName     string
	CommissionRate  string
	PlatformInvited bool
}

// InviteCPAInput Agent 邀请 CPA 输入
type InviteCPAInput struct {
	Email          string
	Password       string
	DisplayName    string
	CommissionRate string
}

// PartnerDashboard 合作伙伴仪表盘数据
// 金额项以账本聚合为准，伙伴表上的冗余统计列仅用于列表展示。
type PartnerDashboard struct {
	Role            string       `json:"role"`
	ReferralCode    string       `json:"referral_code"`
	Balance         models.Money `json:"balance"`
	TotalEarnings   models.Money `json:"total_earnings"`
	TotalRevenue    models.Money `json:"total_revenue"`
	TotalWithdrawn  models.Money `json:"total_withdrawn"`
	PendingPayouts  models.Money `json:"pending_payouts"`
	TxnCount        int64        `json:"txn_count"`
	ReferralCount   int64        `json:"referral_count"`
	SubscribedCount int64        `json:"subscribed_count"`
}

// BankAccountInput 银行账户输入
type BankAccountInput struct {
	HolderName    string
	BankName      string
	AccountNumber string
	IFSC          string
}

// CreateAgent 管理端创建 Agent
// 平台直邀的 Agent 使用固定分成比例，不接受自定义值。
func (s *PartnerService) CreateAgent(input CreateAgentInput) (*models.Partner, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" || strings.TrimSpace(input.Password) == "" {
		return nil, ErrInvalidCredentials
	}
	existing, err := s.partnerRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrPartnerEmailTaken
	}

	rate := models.NewMoneyFromString(s.cfg.Commission.DefaultAgentRate).Decimal
	if input.PlatformInvited {
		rate = models.NewMoneyFromString(s.cfg.Commission.PlatformInvitedAgentRate).Decimal
	} else if strings.TrimSpace(input.CommissionRate) != "" {
		parsed, err := decimal.NewFromString(strings.TrimSpace(input.CommissionRate))
		if err != nil || parsed.LessThan(decimal.Zero) || parsed.GreaterThan(commissionHundred) {
			return nil, ErrPartnerRateOutOfBounds
		}
		rate = parsed.Round(2)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	partner := &models.Partner{
		Email:           email,
		PasswordHash:    string(hash),
		DisplayName:     strings.TrimSpace(input.DisplayName),
		Role:            constants.PartnerRoleAgent,
		CommissionRate:  models.NewMoneyFromDecimal(rate),
		MaintenanceCost: models.NewMoneyFromString(s.cfg.Commission.MaintenanceCostPerUser),
		PlatformInvited: input.PlatformInvited,
		Status:          constants.PartnerStatusActive,
	}
	return s.createWithReferralCode(partner)
}

// InviteCPA Agent 邀请 CPA
// CPA 分成比例必须落在配置允许的区间内，缺省取默认比例。
func (s *PartnerService) InviteCPA(agentID uint, input InviteCPAInput) (*models.Partner, error) {
	agent, err := s.partnerRepo.GetByID(agentID)
	if err != nil {
		return nil, err
	}
	if agent == nil || agent.Role != constants.PartnerRoleAgent {
		return nil, ErrPartnerNotFound
	}
	if agent.Status != constants.PartnerStatusActive {
		return nil, ErrPartnerDisabled
	}

	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" || strings.TrimSpace(input.Password) == "" {
		return nil, ErrInvalidCredentials
	}
	existing, err := s.partnerRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrPartnerEmailTaken
	}

	rate := models.NewMoneyFromString(s.cfg.Commission.DefaultCPARate).Decimal
	if strings.TrimSpace(input.CommissionRate) != "" {
		parsed, err := decimal.NewFromString(strings.TrimSpace(input.CommissionRate))
		if err != nil {
			return nil, ErrPartnerRateOutOfBounds
		}
		rate = parsed.Round(2)
	}
	rateMin := models.NewMoneyFromString(s.cfg.Commission.CPARateMin).Decimal
	rateMax := models.NewMoneyFromString(s.cfg.Commission.CPARateMax).Decimal
	if rate.LessThan(rateMin) || rate.GreaterThan(rateMax) {
		return nil, ErrPartnerRateOutOfBounds
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	referrerID := agent.ID
	partner := &models.Partner{
		Email:          email,
		PasswordHash:   string(hash),
		DisplayName:    strings.TrimSpace(input.DisplayName),
		Role:           constants.PartnerRoleCPA,
		ReferrerID:     &referrerID,
		CommissionRate: models.NewMoneyFromDecimal(rate),
		Status:         constants.PartnerStatusActive,
	}
	created, err := s.createWithReferralCode(partner)
	if err != nil {
		return nil, err
	}

	agent.ReferralCount++
	if err := s.partnerRepo.Update(agent); err != nil {
		return nil, err
	}
	return created, nil
}

// createWithReferralCode 生成唯一推荐码后落库，冲突时重试
func (s *PartnerService) createWithReferralCode(partner *models.Partner) (*models.Partner, error) {
	const maxRetry = 8
	for i := 0; i < maxRetry; i++ {
		code, err := generateReferralCode()
		if err != nil {
			return nil, err
		}
		partner.ReferralCode = code
		if err := s.partnerRepo.Create(partner); err != nil {
			if isUniqueViolation(err) {
				partner.ID = 0
				continue
			}
			return nil, err
		}
		return partner, nil
	}
	return nil, ErrReferralCodeInvalid
}

// GetPartner 查询合作伙伴
func (s *PartnerService) GetPartner(id uint) (*models.Partner, error) {
	partner, err := s.partnerRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if partner == nil {
		return nil, ErrPartnerNotFound
	}
	return partner, nil
}

// ListPartners 分页查询合作伙伴
func (s *PartnerService) ListPartners(filter repository.PartnerListFilter) ([]models.Partner, int64, error) {
	return s.partnerRepo.List(filter)
}

// UpdateStatus 更新合作伙伴状态
func (s *PartnerService) UpdateStatus(id uint, status string) (*models.Partner, error) {
	status = strings.TrimSpace(status)
	if status != constants.PartnerStatusActive && status != constants.PartnerStatusInactive {
		return nil, ErrPartnerStatusInvalid
	}
	partner, err := s.partnerRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if partner == nil {
		return nil, ErrPartnerNotFound
	}
	if partner.Status == status {
		return partner, nil
	}
	if err := s.partnerRepo.UpdateStatus(id, status); err != nil {
		return nil, err
	}
	return s.partnerRepo.GetByID(id)
}

// GetDashboard 查询合作伙伴仪表盘数据
func (s *PartnerService) GetDashboard(partnerID uint) (*PartnerDashboard, error) {
	partner, err := s.partnerRepo.GetByID(partnerID)
	if err != nil {
		return nil, err
	}
	if partner == nil {
		return nil, ErrPartnerNotFound
	}

	var stats *repository.LedgerPartnerStats
	if partner.Role == constants.PartnerRoleAgent {
		stats, err = s.ledgerRepo.SumStatsForAgent(partnerID)
	} else {
		stats, err = s.ledgerRepo.SumStatsForCPA(partnerID)
	}
	if err != nil {
		return nil, err
	}

	pending, err := s.payoutRepo.SumAmountByPartnerAndStatuses(partnerID, []string{
		constants.PayoutStatusPending,
		constants.PayoutStatusApproved,
	})
	if err != nil {
		return nil, err
	}
	paid, err := s.payoutRepo.SumAmountByPartnerAndStatuses(partnerID, []string{
		constants.PayoutStatusPaid,
	})
	if err != nil {
		return nil, err
	}

	referralCount := partner.ReferralCount
	if partner.Role == constants.PartnerRoleAgent {
		count, err := s.partnerRepo.CountByReferrer(partnerID)
		if err != nil {
			return nil, err
		}
		referralCount = count
	}
	subscribedCount := int64(0)
	if partner.Role == constants.PartnerRoleCPA {
		subscribedCount, err = s.clientRepo.CountSubscribedByReferralCode(partner.ReferralCode)
		if err != nil {
			return nil, err
		}
	}

	return &PartnerDashboard{
		Role:            partner.Role,
		ReferralCode:    partner.ReferralCode,
		Balance:         partner.Balance,
		TotalEarnings:   models.NewMoneyFromDecimal(stats.TotalEarnings),
		TotalRevenue:    models.NewMoneyFromDecimal(stats.TotalRevenue),
		TotalWithdrawn:  models.NewMoneyFromDecimal(paid),
		PendingPayouts:  models.NewMoneyFromDecimal(pending),
		TxnCount:        stats.TxnCount,
		ReferralCount:   referralCount,
		SubscribedCount: subscribedCount,
	}, nil
}

// ListReferrals 查询 Agent 名下的 CPA 列表
func (s *PartnerService) ListReferrals(agentID uint, page, pageSize int) ([]models.Partner, int64, error) {
	return s.partnerRepo.List(repository.PartnerListFilter{
		Page:       page,
		PageSize:   pageSize,
		ReferrerID: agentID,
		Role:       constants.PartnerRoleCPA,
	})
}

// ListClients 查询 CPA 名下的客户列表
func (s *PartnerService) ListClients(partnerID uint, page, pageSize int) ([]models.Client, int64, error) {
	partner, err := s.partnerRepo.GetByID(partnerID)
	if err != nil {
		return nil, 0, err
	}
	if partner == nil {
		return nil, 0, ErrPartnerNotFound
	}
	return s.clientRepo.ListByReferralCode(partner.ReferralCode, page, pageSize)
}

// CreateBankAccount 新增银行账户
func (s *PartnerService) CreateBankAccount(partnerID uint, input BankAccountInput) (*models.BankAccount, error) {
	holder := strings.TrimSpace(input.HolderName)
	bankName := strings.TrimSpace(input.BankName)
	accountNo := strings.TrimSpace(input.AccountNumber)
	if holder == "" || bankName == "" || accountNo == "" {
		return nil, ErrBankAccountNotFound
	}
	partner, err := s.partnerRepo.GetByID(partnerID)
	if err != nil {
		return nil, err
	}
	if partner == nil {
		return nil, ErrPartnerNotFound
	}
	account := &models.BankAccount{
		PartnerID:     partnerID,
		HolderName:    holder,
		BankName:      bankName,
		AccountNumber: accountNo,
		IFSC:          strings.TrimSpace(input.IFSC),
	}
	if err := s.partnerRepo.CreateBankAccount(account); err != nil {
		return nil, err
	}
	return account, nil
}

// UpdateBankAccount 更新银行账户
func (s *PartnerService) UpdateBankAccount(partnerID, accountID uint, input BankAccountInput) (*models.BankAccount, error) {
	account, err := s.partnerRepo.GetBankAccountByID(partnerID, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrBankAccountNotFound
	}
	if holder := strings.TrimSpace(input.HolderName); holder != "" {
		account.HolderName = holder
	}
	if bankName := strings.TrimSpace(input.BankName); bankName != "" {
		account.BankName = bankName
	}
	if accountNo := strings.TrimSpace(input.AccountNumber); accountNo != "" {
		account.AccountNumber = accountNo
	}
	if ifsc := strings.TrimSpace(input.IFSC); ifsc != "" {
		account.IFSC = ifsc
	}
	if err := s.partnerRepo.UpdateBankAccount(account); err != nil {
		return nil, err
	}
	return account, nil
}

// DeleteBankAccount 删除银行账户
func (s *PartnerService) DeleteBankAccount(partnerID, accountID uint) error {
	account, err := s.partnerRepo.GetBankAccountByID(partnerID, accountID)
	if err != nil {
		return err
	}
	if account == nil {
		return ErrBankAccountNotFound
	}
	return s.partnerRepo.DeleteBankAccount(partnerID, accountID)
}

// ListBankAccounts 查询银行账户列表
func (s *PartnerService) ListBankAccounts(partnerID uint) ([]models.BankAccount, error) {
	return s.partnerRepo.ListBankAccounts(partnerID)
}

func generateReferralCode() (string, error) {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	var builder strings.Builder
	builder.Grow(referralCodeLength)
	max := big.NewInt(int64(len(alphabet)))
	for i := 0; i < referralCodeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		builder.WriteByte(alphabet[n.Int64()])
	}
	return builder.String(), nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
