package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/yash9025/WriteOffGenie-sub000/internal/config"
	"github.com/yash9025/WriteOffGenie-sub000/internal/constants"
	"github.com/yash9025/WriteOffGenie-sub000/internal/models"
	"github.com/yash9025/WriteOffGenie-sub000/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupPartnerServiceTest(t *testing.T) (*PartnerService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:partner_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Partner{},
		&models.BankAccount{},
		&models.Client{},
		&models.LedgerTransaction{},
		&models.Payout{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	cfg := &config.Config{
		Commission: config.CommissionConfig{
			DefaultCPARate:           "10",
			CPARateMin:               "10",
			CPARateMax:               "50",
			DefaultAgentRate:         "15",
			PlatformInvitedAgentRate: "10",
			MaintenanceCostPerUser:   "6.00",
		},
	}
	svc := NewPartnerService(
		repository.NewPartnerRepository(db),
		repository.NewLedgerRepository(db),
		repository.NewPayoutRepository(db),
		repository.NewClientRepository(db),
		cfg,
	)
	return svc, db
}

func TestCreateAgentDefaults(t *testing.T) {
	svc, _ := setupPartnerServiceTest(t)

	agent, err := svc.CreateAgent(CreateAgentInput{
		Email:    "Agent@Example.com",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("create agent failed: %v", err)
	}
	if agent.Email != "agent@example.com" {
		t.Fatalf("email = %s, want lowercased", agent.Email)
	}
	if agent.Role != constants.PartnerRoleAgent {
		t.Fatalf("role = %s, want agent", agent.Role)
	}
	if got := agent.CommissionRate.String(); got != "15.00" {
		t.Fatalf("commission rate = %s, want 15.00", got)
	}
	if got := agent.MaintenanceCost.String(); got != "6.00" {
		t.Fatalf("maintenance cost = %s, want 6.00", got)
	}
	if len(agent.ReferralCode) != referralCodeLength {
		t.Fatalf("referral code %q length = %d, want %d", agent.ReferralCode, len(agent.ReferralCode), referralCodeLength)
	}
}

func TestCreateAgentPlatformInvitedRate(t *testing.T) {
	svc, _ := setupPartnerServiceTest(t)

	agent, err := svc.CreateAgent(CreateAgentInput{
		Email:           "platform-agent@example.com",
		Password:        "secret123",
		CommissionRate:  "40",
		PlatformInvited: true,
	})
	if err != nil {
		t.Fatalf("create agent failed: %v", err)
	}
	if !agent.PlatformInvited {
		t.Fatal("platform_invited should be true")
	}
	// 平台直邀固定比例，忽略自定义值
	if got := agent.CommissionRate.String(); got != "10.00" {
		t.Fatalf("commission rate = %s, want 10.00", got)
	}
}

func TestInviteCPARateBounds(t *testing.T) {
	svc, _ := setupPartnerServiceTest(t)
	agent, err := svc.CreateAgent(CreateAgentInput{Email: "bounds-agent@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("create agent failed: %v", err)
	}

	if _, err := svc.InviteCPA(agent.ID, InviteCPAInput{
		Email:          "low@example.com",
		Password:       "secret123",
		CommissionRate: "5",
	}); !errors.Is(err, ErrPartnerRateOutOfBounds) {
		t.Fatalf("err = %v, want ErrPartnerRateOutOfBounds", err)
	}
	if _, err := svc.InviteCPA(agent.ID, InviteCPAInput{
		Email:          "high@example.com",
		Password:       "secret123",
		CommissionRate: "60",
	}); !errors.Is(err, ErrPartnerRateOutOfBounds) {
		t.Fatalf("err = %v, want ErrPartnerRateOutOfBounds", err)
	}

	cpa, err := svc.InviteCPA(agent.ID, InviteCPAInput{
		Email:    "ok@example.com",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("invite cpa failed: %v", err)
	}
	if cpa.Role != constants.PartnerRoleCPA {
		t.Fatalf("role = %s, want cpa", cpa.Role)
	}
	if cpa.ReferrerID == nil || *cpa.ReferrerID != agent.ID {
		t.Fatalf("referrer id = %v, want %d", cpa.ReferrerID, agent.ID)
	}
	if got := cpa.CommissionRate.String(); got != "10.00" {
		t.Fatalf("commission rate = %s, want default 10.00", got)
	}

	reloaded, err := svc.GetPartner(agent.ID)
	if err != nil {
		t.Fatalf("reload agent failed: %v", err)
	}
	if reloaded.ReferralCount != 1 {
		t.Fatalf("referral count = %d, want 1", reloaded.ReferralCount)
	}
}

func TestInviteCPADuplicateEmail(t *testing.T) {
	svc, _ := setupPartnerServiceTest(t)
	agent, err := svc.CreateAgent(CreateAgentInput{Email: "dup-agent@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("create agent failed: %v", err)
	}
	if _, err := svc.InviteCPA(agent.ID, InviteCPAInput{Email: "dup@example.com", Password: "secret123"}); err != nil {
		t.Fatalf("first invite failed: %v", err)
	}
	if _, err := svc.InviteCPA(agent.ID, InviteCPAInput{Email: "DUP@example.com", Password: "secret123"}); !errors.Is(err, ErrPartnerEmailTaken) {
		t.Fatalf("err = %v, want ErrPartnerEmailTaken", err)
	}
}

func TestInviteCPARequiresActiveAgent(t *testing.T) {
	svc, _ := setupPartnerServiceTest(t)
	agent, err := svc.CreateAgent(CreateAgentInput{Email: "inactive-agent@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("create agent failed: %v", err)
	}
	if _, err := svc.UpdateStatus(agent.ID, constants.PartnerStatusInactive); err != nil {
		t.Fatalf("update status failed: %v", err)
	}
	if _, err := svc.InviteCPA(agent.ID, InviteCPAInput{Email: "x@example.com", Password: "secret123"}); !errors.Is(err, ErrPartnerDisabled) {
		t.Fatalf("err = %v, want ErrPartnerDisabled", err)
	}
}

func TestGetDashboardAggregates(t *testing.T) {
	svc, db := setupPartnerServiceTest(t)
	agent, err := svc.CreateAgent(CreateAgentInput{Email: "dash-agent@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("create agent failed: %v", err)
	}
	cpa, err := svc.InviteCPA(agent.ID, InviteCPAInput{Email: "dash-cpa@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("invite cpa failed: %v", err)
	}

	agentID := agent.ID
	rows := []models.LedgerTransaction{
		{
			EventID:       "dash-evt-1",
			Type:          constants.LedgerTxnTypeCommission,
			PlanID:        "pro-month",
			PlanAmount:    models.NewMoneyFromString("25.00"),
			CPAID:         cpa.ID,
			CPAEarnings:   models.NewMoneyFromString("2.50"),
			AgentID:       &agentID,
			AgentEarnings: models.NewMoneyFromString("2.48"),
			ClientID:      1,
			Status:        constants.LedgerTxnStatusCompleted,
		},
		{
			EventID:       "dash-evt-2",
			Type:          constants.LedgerTxnTypeCommission,
			PlanID:        "basic-month",
			PlanAmount:    models.NewMoneyFromString("10.00"),
			CPAID:         cpa.ID,
			CPAEarnings:   models.NewMoneyFromString("1.00"),
			AgentID:       &agentID,
			AgentEarnings: models.NewMoneyFromString("0.45"),
			ClientID:      2,
			Status:        constants.LedgerTxnStatusCompleted,
		},
	}
	for i := range rows {
		if err := db.Create(&rows[i]).Error; err != nil {
			t.Fatalf("seed ledger txn failed: %v", err)
		}
	}

	cpaDash, err := svc.GetDashboard(cpa.ID)
	if err != nil {
		t.Fatalf("cpa dashboard failed: %v", err)
	}
	if got := cpaDash.TotalEarnings.String(); got != "3.50" {
		t.Fatalf("cpa total earnings = %s, want 3.50", got)
	}
	if got := cpaDash.TotalRevenue.String(); got != "35.00" {
		t.Fatalf("cpa total revenue = %s, want 35.00", got)
	}
	if cpaDash.TxnCount != 2 {
		t.Fatalf("cpa txn count = %d, want 2", cpaDash.TxnCount)
	}

	agentDash, err := svc.GetDashboard(agent.ID)
	if err != nil {
		t.Fatalf("agent dashboard failed: %v", err)
	}
	if got := agentDash.TotalEarnings.String(); got != "2.93" {
		t.Fatalf("agent total earnings = %s, want 2.93", got)
	}
	if agentDash.ReferralCount != 1 {
		t.Fatalf("agent referral count = %d, want 1", agentDash.ReferralCount)
	}
}

func TestBankAccountLifecycle(t *testing.T) {
	svc, _ := setupPartnerServiceTest(t)
	agent, err := svc.CreateAgent(CreateAgentInput{Email: "bank-agent@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("create agent failed: %v", err)
	}

	account, err := svc.CreateBankAccount(agent.ID, BankAccountInput{
		HolderName:    "Holder",
		BankName:      "Bank",
		AccountNumber: "000111222",
		IFSC:          "IFSC0001",
	})
	if err != nil {
		t.Fatalf("create bank account failed: %v", err)
	}

	updated, err := svc.UpdateBankAccount(agent.ID, account.ID, BankAccountInput{BankName: "New Bank"})
	if err != nil {
		t.Fatalf("update bank account failed: %v", err)
	}
	if updated.BankName != "New Bank" {
		t.Fatalf("bank name = %s, want New Bank", updated.BankName)
	}
	if updated.AccountNumber != "000111222" {
		t.Fatalf("account number changed unexpectedly: %s", updated.AccountNumber)
	}

	if err := svc.DeleteBankAccount(agent.ID, account.ID); err != nil {
		t.Fatalf("delete bank account failed: %v", err)
	}
	accounts, err := svc.ListBankAccounts(agent.ID)
	if err != nil {
		t.Fatalf("list bank accounts failed: %v", err)
	}
	if len(accounts) != 0 {
		t.Fatalf("account count = %d, want 0", len(accounts))
	}

	if err := svc.DeleteBankAccount(agent.ID, account.ID); !errors.Is(err, ErrBankAccountNotFound) {
		t.Fatalf("err = %v, want ErrBankAccountNotFound", err)
	}
}
