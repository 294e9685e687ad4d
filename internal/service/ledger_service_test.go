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

func setupLedgerServiceTest(t *testing.T) (*LedgerService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:ledger_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Partner{},
		&models.Client{},
		&models.LedgerTransaction{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	planCatalog := NewPlanCatalog(config.CommissionConfig{
		Plans: map[string]string{
			"basic-month": "10.00",
			"pro-month":   "25.00",
			"pro-year":    "250.00",
		},
	})
	svc := NewLedgerService(
		repository.NewLedgerRepository(db),
		repository.NewPartnerRepository(db),
		repository.NewClientRepository(db),
		NewCommissionCalculator(),
		planCatalog,
	)
	return svc, db
}

func createTestAgent(t *testing.T, db *gorm.DB, code string) *models.Partner {
	t.Helper()
	agent := &models.Partner{
		Email:           fmt.Sprintf("agent_%s@example.com", code),
		PasswordHash:    "hash",
		Role:            constants.PartnerRoleAgent,
		ReferralCode:    code,
		CommissionRate:  models.NewMoneyFromString("15"),
		MaintenanceCost: models.NewMoneyFromString("6.00"),
		Status:          constants.PartnerStatusActive,
	}
	if err := db.Create(agent).Error; err != nil {
		t.Fatalf("create agent failed: %v", err)
	}
	return agent
}

func createTestCPA(t *testing.T, db *gorm.DB, code string, referrerID *uint) *models.Partner {
	t.Helper()
	cpa := &models.Partner{
		Email:          fmt.Sprintf("cpa_%s@example.com", code),
		PasswordHash:   "hash",
		Role:           constants.PartnerRoleCPA,
		ReferralCode:   code,
		ReferrerID:     referrerID,
		CommissionRate: models.NewMoneyFromString("10"),
		Status:         constants.PartnerStatusActive,
	}
	if err := db.Create(cpa).Error; err != nil {
		t.Fatalf("create cpa failed: %v", err)
	}
	return cpa
}

func createTestClient(t *testing.T, db *gorm.DB, externalID, code string) *models.Client {
	t.Helper()
	client := &models.Client{
		ExternalID:   externalID,
		Email:        externalID + "@example.com",
		ReferralCode: code,
	}
	if err := db.Create(client).Error; err != nil {
		t.Fatalf("create client failed: %v", err)
	}
	return client
}

func TestCreditRevenueEventStandardSplit(t *testing.T) {
	svc, db := setupLedgerServiceTest(t)
	agent := createTestAgent(t, db, "AGENT001")
	agentID := agent.ID
	cpa := createTestCPA(t, db, "CPA00001", &agentID)
	createTestClient(t, db, "client-1", "CPA00001")

	txn, credited, err := svc.CreditRevenueEvent(RevenueEventInput{
		EventID:          "evt-100",
		ClientExternalID: "client-1",
		PlanID:           "pro-month",
		Status:           constants.RevenueEventStatusActive,
	})
	if err != nil {
		t.Fatalf("credit revenue event failed: %v", err)
	}
	if txn == nil || !credited {
		t.Fatalf("expected fresh credit, txn=%v credited=%v", txn, credited)
	}
	if got := txn.CPAEarnings.String(); got != "2.50" {
		t.Fatalf("cpa earnings = %s, want 2.50", got)
	}
	if got := txn.AgentEarnings.String(); got != "2.48" {
		t.Fatalf("agent earnings = %s, want 2.48", got)
	}
	if txn.AgentID == nil || *txn.AgentID != agent.ID {
		t.Fatalf("agent id = %v, want %d", txn.AgentID, agent.ID)
	}
	if txn.Status != constants.LedgerTxnStatusCompleted {
		t.Fatalf("status = %s, want completed", txn.Status)
	}

	var reloadedCPA models.Partner
	if err := db.First(&reloadedCPA, cpa.ID).Error; err != nil {
		t.Fatalf("reload cpa failed: %v", err)
	}
	if got := reloadedCPA.Balance.String(); got != "2.50" {
		t.Fatalf("cpa balance = %s, want 2.50", got)
	}
	if got := reloadedCPA.TotalRevenue.String(); got != "25.00" {
		t.Fatalf("cpa total revenue = %s, want 25.00", got)
	}

	var reloadedAgent models.Partner
	if err := db.First(&reloadedAgent, agent.ID).Error; err != nil {
		t.Fatalf("reload agent failed: %v", err)
	}
	if got := reloadedAgent.Balance.String(); got != "2.48" {
		t.Fatalf("agent balance = %s, want 2.48", got)
	}

	var reloadedClient models.Client
	if err := db.Where("external_id = ?", "client-1").First(&reloadedClient).Error; err != nil {
		t.Fatalf("reload client failed: %v", err)
	}
	if !reloadedClient.Subscribed {
		t.Fatal("client should be marked subscribed")
	}
}

func TestCreditRevenueEventIdempotent(t *testing.T) {
	svc, db := setupLedgerServiceTest(t)
	agent := createTestAgent(t, db, "AGENT002")
	agentID := agent.ID
	cpa := createTestCPA(t, db, "CPA00002", &agentID)
	createTestClient(t, db, "client-2", "CPA00002")

	input := RevenueEventInput{
		EventID:          "evt-200",
		ClientExternalID: "client-2",
		PlanID:           "pro-month",
		Status:           constants.RevenueEventStatusActive,
	}
	first, credited, err := svc.CreditRevenueEvent(input)
	if err != nil {
		t.Fatalf("first credit failed: %v", err)
	}
	if !credited {
		t.Fatal("first delivery should report credited=true")
	}
	second, credited, err := svc.CreditRevenueEvent(input)
	if err != nil {
		t.Fatalf("second credit failed: %v", err)
	}
	if second == nil || second.ID != first.ID {
		t.Fatalf("duplicate event should return existing transaction, got %+v", second)
	}
	if credited {
		t.Fatal("duplicate delivery should report credited=false")
	}

	var count int64
	if err := db.Model(&models.LedgerTransaction{}).Where("event_id = ?", "evt-200").Count(&count).Error; err != nil {
		t.Fatalf("count transactions failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("transaction count = %d, want 1", count)
	}

	var reloadedCPA models.Partner
	if err := db.First(&reloadedCPA, cpa.ID).Error; err != nil {
		t.Fatalf("reload cpa failed: %v", err)
	}
	if got := reloadedCPA.Balance.String(); got != "2.50" {
		t.Fatalf("cpa balance after duplicate = %s, want 2.50", got)
	}
}

func TestCreditRevenueEventSkipsNonActiveStatus(t *testing.T) {
	svc, db := setupLedgerServiceTest(t)
	agent := createTestAgent(t, db, "AGENT003")
	agentID := agent.ID
	createTestCPA(t, db, "CPA00003", &agentID)
	createTestClient(t, db, "client-3", "CPA00003")

	txn, _, err := svc.CreditRevenueEvent(RevenueEventInput{
		EventID:          "evt-300",
		ClientExternalID: "client-3",
		PlanID:           "pro-month",
		Status:           "canceled",
	})
	if err != nil {
		t.Fatalf("credit should not fail on non-active status: %v", err)
	}
	if txn != nil {
		t.Fatalf("non-active event should be skipped, got txn %d", txn.ID)
	}

	var count int64
	if err := db.Model(&models.LedgerTransaction{}).Count(&count).Error; err != nil {
		t.Fatalf("count transactions failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("transaction count = %d, want 0", count)
	}
}

func TestCreditRevenueEventSkipsUnknownPlan(t *testing.T) {
	svc, db := setupLedgerServiceTest(t)
	agent := createTestAgent(t, db, "AGENT004")
	agentID := agent.ID
	createTestCPA(t, db, "CPA00004", &agentID)
	createTestClient(t, db, "client-4", "CPA00004")

	txn, _, err := svc.CreditRevenueEvent(RevenueEventInput{
		EventID:          "evt-400",
		ClientExternalID: "client-4",
		PlanID:           "enterprise-unknown",
		Status:           constants.RevenueEventStatusActive,
	})
	if err != nil {
		t.Fatalf("credit should not fail on unknown plan: %v", err)
	}
	if txn != nil {
		t.Fatalf("unknown plan should be skipped, got txn %d", txn.ID)
	}
}

func TestCreditRevenueEventWithoutAgent(t *testing.T) {
	svc, db := setupLedgerServiceTest(t)
	createTestCPA(t, db, "CPA00005", nil)
	createTestClient(t, db, "client-5", "CPA00005")

	txn, credited, err := svc.CreditRevenueEvent(RevenueEventInput{
		EventID:          "evt-500",
		ClientExternalID: "client-5",
		PlanID:           "pro-month",
		Status:           constants.RevenueEventStatusActive,
	})
	if err != nil {
		t.Fatalf("credit revenue event failed: %v", err)
	}
	if txn == nil || !credited {
		t.Fatalf("expected fresh credit, txn=%v credited=%v", txn, credited)
	}
	if txn.AgentID != nil {
		t.Fatalf("agent id should be nil, got %d", *txn.AgentID)
	}
	if got := txn.AgentEarnings.String(); got != "0.00" {
		t.Fatalf("agent earnings = %s, want 0.00", got)
	}
	if got := txn.CPAEarnings.String(); got != "2.50" {
		t.Fatalf("cpa earnings = %s, want 2.50", got)
	}
}

func TestCreditRevenueEventEmptyEventID(t *testing.T) {
	svc, _ := setupLedgerServiceTest(t)
	_, _, err := svc.CreditRevenueEvent(RevenueEventInput{
		EventID:          "   ",
		ClientExternalID: "client-x",
		PlanID:           "pro-month",
		Status:           constants.RevenueEventStatusActive,
	})
	if !errors.Is(err, ErrEventInvalid) {
		t.Fatalf("err = %v, want ErrEventInvalid", err)
	}
}

func TestCreditRevenueEventUnattributedClient(t *testing.T) {
	svc, db := setupLedgerServiceTest(t)
	createTestClient(t, db, "client-6", "")

	txn, _, err := svc.CreditRevenueEvent(RevenueEventInput{
		EventID:          "evt-600",
		ClientExternalID: "client-6",
		PlanID:           "pro-month",
		Status:           constants.RevenueEventStatusActive,
	})
	if err != nil {
		t.Fatalf("credit should not fail on unattributed client: %v", err)
	}
	if txn != nil {
		t.Fatalf("unattributed client should be skipped, got txn %d", txn.ID)
	}
}
