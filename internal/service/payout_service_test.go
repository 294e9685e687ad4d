package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/yash9025/WriteOffGenie-sub000/internal/constants"
	"github.com/yash9025/WriteOffGenie-sub000/internal/models"
	"github.com/yash9025/WriteOffGenie-sub000/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupPayoutServiceTest(t *testing.T) (*PayoutService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:payout_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Partner{},
		&models.BankAccount{},
		&models.Payout{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	policy := PayoutPolicy{
		MinWithdrawAgent: mustDecimal(t, "500"),
		MinWithdrawCPA:   mustDecimal(t, "100"),
	}
	svc := NewPayoutService(
		repository.NewPayoutRepository(db),
		repository.NewPartnerRepository(db),
		policy,
		nil,
	)
	return svc, db
}

func createPayoutTestPartner(t *testing.T, db *gorm.DB, role, balance string) *models.Partner {
	t.Helper()
	partner := &models.Partner{
		Email:          fmt.Sprintf("payout_%s_%d@example.com", role, time.Now().UnixNano()),
		PasswordHash:   "hash",
		Role:           role,
		ReferralCode:   fmt.Sprintf("RC%d", time.Now().UnixNano()%100000000),
		CommissionRate: models.NewMoneyFromString("10"),
		Balance:        models.NewMoneyFromString(balance),
		Status:         constants.PartnerStatusActive,
	}
	if err := db.Create(partner).Error; err != nil {
		t.Fatalf("create partner failed: %v", err)
	}
	return partner
}

func createPayoutTestBankAccount(t *testing.T, db *gorm.DB, partnerID uint) *models.BankAccount {
	t.Helper()
	account := &models.BankAccount{
		PartnerID:     partnerID,
		HolderName:    "Test Holder",
		BankName:      "Test Bank",
		AccountNumber: "1234567890",
		IFSC:          "TEST0000123",
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("create bank account failed: %v", err)
	}
	return account
}

func TestRequestWithdrawReservesBalance(t *testing.T) {
	svc, db := setupPayoutServiceTest(t)
	partner := createPayoutTestPartner(t, db, constants.PartnerRoleCPA, "300.00")
	account := createPayoutTestBankAccount(t, db, partner.ID)

	payout, err := svc.RequestWithdraw(partner.ID, PayoutRequestInput{
		Amount:        mustDecimal(t, "150.00"),
		BankAccountID: account.ID,
	})
	if err != nil {
		t.Fatalf("request withdraw failed: %v", err)
	}
	if payout.Status != constants.PayoutStatusPending {
		t.Fatalf("status = %s, want pending", payout.Status)
	}
	if payout.ReferenceID != fmt.Sprintf("PO%08d", payout.ID) {
		t.Fatalf("reference id = %s, want PO%08d", payout.ReferenceID, payout.ID)
	}
	if payout.BankAccountNo != "1234567890" {
		t.Fatalf("bank account snapshot = %s, want 1234567890", payout.BankAccountNo)
	}

	var reloaded models.Partner
	if err := db.First(&reloaded, partner.ID).Error; err != nil {
		t.Fatalf("reload partner failed: %v", err)
	}
	if got := reloaded.Balance.String(); got != "150.00" {
		t.Fatalf("balance after reserve = %s, want 150.00", got)
	}
}

func TestRequestWithdrawInsufficientBalance(t *testing.T) {
	svc, db := setupPayoutServiceTest(t)
	partner := createPayoutTestPartner(t, db, constants.PartnerRoleCPA, "120.00")
	account := createPayoutTestBankAccount(t, db, partner.ID)

	_, err := svc.RequestWithdraw(partner.ID, PayoutRequestInput{
		Amount:        mustDecimal(t, "150.00"),
		BankAccountID: account.ID,
	})
	if !errors.Is(err, ErrPayoutInsufficientBalance) {
		t.Fatalf("err = %v, want ErrPayoutInsufficientBalance", err)
	}

	var reloaded models.Partner
	if err := db.First(&reloaded, partner.ID).Error; err != nil {
		t.Fatalf("reload partner failed: %v", err)
	}
	if got := reloaded.Balance.String(); got != "120.00" {
		t.Fatalf("balance should be untouched, got %s", got)
	}
	var count int64
	if err := db.Model(&models.Payout{}).Count(&count).Error; err != nil {
		t.Fatalf("count payouts failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("payout count = %d, want 0", count)
	}
}

func TestRequestWithdrawBelowMinimum(t *testing.T) {
	svc, db := setupPayoutServiceTest(t)
	agent := createPayoutTestPartner(t, db, constants.PartnerRoleAgent, "1000.00")
	account := createPayoutTestBankAccount(t, db, agent.ID)

	_, err := svc.RequestWithdraw(agent.ID, PayoutRequestInput{
		Amount:        mustDecimal(t, "300.00"),
		BankAccountID: account.ID,
	})
	if !errors.Is(err, ErrPayoutBelowMinimum) {
		t.Fatalf("err = %v, want ErrPayoutBelowMinimum", err)
	}
}

func TestRequestWithdrawBankAccountMissing(t *testing.T) {
	svc, db := setupPayoutServiceTest(t)
	partner := createPayoutTestPartner(t, db, constants.PartnerRoleCPA, "300.00")

	_, err := svc.RequestWithdraw(partner.ID, PayoutRequestInput{
		Amount:        mustDecimal(t, "150.00"),
		BankAccountID: 999,
	})
	if !errors.Is(err, ErrBankAccountNotFound) {
		t.Fatalf("err = %v, want ErrBankAccountNotFound", err)
	}
}

func TestReviewRejectRestoresBalance(t *testing.T) {
	svc, db := setupPayoutServiceTest(t)
	partner := createPayoutTestPartner(t, db, constants.PartnerRoleCPA, "300.00")
	account := createPayoutTestBankAccount(t, db, partner.ID)

	payout, err := svc.RequestWithdraw(partner.ID, PayoutRequestInput{
		Amount:        mustDecimal(t, "200.00"),
		BankAccountID: account.ID,
	})
	if err != nil {
		t.Fatalf("request withdraw failed: %v", err)
	}

	reviewed, err := svc.Review(1, payout.ID, PayoutReviewInput{
		Decision:     constants.PayoutDecisionReject,
		RejectReason: "bank detail mismatch",
	})
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if reviewed.Status != constants.PayoutStatusRejected {
		t.Fatalf("status = %s, want rejected", reviewed.Status)
	}
	if reviewed.RejectReason != "bank detail mismatch" {
		t.Fatalf("reject reason = %s", reviewed.RejectReason)
	}
	if reviewed.ProcessedBy == nil || *reviewed.ProcessedBy != 1 {
		t.Fatalf("processed_by = %v, want 1", reviewed.ProcessedBy)
	}

	var reloaded models.Partner
	if err := db.First(&reloaded, partner.ID).Error; err != nil {
		t.Fatalf("reload partner failed: %v", err)
	}
	if got := reloaded.Balance.String(); got != "300.00" {
		t.Fatalf("balance after reject = %s, want 300.00", got)
	}
}

func TestReviewApproveThenMarkPaid(t *testing.T) {
	svc, db := setupPayoutServiceTest(t)
	partner := createPayoutTestPartner(t, db, constants.PartnerRoleCPA, "300.00")
	account := createPayoutTestBankAccount(t, db, partner.ID)

	payout, err := svc.RequestWithdraw(partner.ID, PayoutRequestInput{
		Amount:        mustDecimal(t, "200.00"),
		BankAccountID: account.ID,
	})
	if err != nil {
		t.Fatalf("request withdraw failed: %v", err)
	}

	approved, err := svc.Review(1, payout.ID, PayoutReviewInput{
		Decision: constants.PayoutDecisionApprove,
	})
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if approved.Status != constants.PayoutStatusApproved {
		t.Fatalf("status = %s, want approved", approved.Status)
	}

	// approved 之后不再允许拒绝
	if _, err := svc.Review(1, payout.ID, PayoutReviewInput{
		Decision:     constants.PayoutDecisionReject,
		RejectReason: "too late",
	}); !errors.Is(err, ErrPayoutStatusInvalid) {
		t.Fatalf("reject after approve err = %v, want ErrPayoutStatusInvalid", err)
	}

	paid, err := svc.Review(2, payout.ID, PayoutReviewInput{
		Decision:       constants.PayoutDecisionMarkPaid,
		TransactionRef: "UTR123456",
	})
	if err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}
	if paid.Status != constants.PayoutStatusPaid {
		t.Fatalf("status = %s, want paid", paid.Status)
	}
	if paid.TransactionRef != "UTR123456" {
		t.Fatalf("transaction ref = %s", paid.TransactionRef)
	}

	var reloaded models.Partner
	if err := db.First(&reloaded, partner.ID).Error; err != nil {
		t.Fatalf("reload partner failed: %v", err)
	}
	if got := reloaded.TotalWithdrawn.String(); got != "200.00" {
		t.Fatalf("total withdrawn = %s, want 200.00", got)
	}
	if got := reloaded.Balance.String(); got != "100.00" {
		t.Fatalf("balance = %s, want 100.00", got)
	}
}

func TestReviewApproveWithRefSettlesDirectly(t *testing.T) {
	svc, db := setupPayoutServiceTest(t)
	partner := createPayoutTestPartner(t, db, constants.PartnerRoleCPA, "300.00")
	account := createPayoutTestBankAccount(t, db, partner.ID)

	payout, err := svc.RequestWithdraw(partner.ID, PayoutRequestInput{
		Amount:        mustDecimal(t, "120.00"),
		BankAccountID: account.ID,
	})
	if err != nil {
		t.Fatalf("request withdraw failed: %v", err)
	}

	paid, err := svc.Review(1, payout.ID, PayoutReviewInput{
		Decision:       constants.PayoutDecisionApprove,
		TransactionRef: "UTR777",
	})
	if err != nil {
		t.Fatalf("approve with ref failed: %v", err)
	}
	if paid.Status != constants.PayoutStatusPaid {
		t.Fatalf("status = %s, want paid", paid.Status)
	}
	if paid.TransactionRef != "UTR777" {
		t.Fatalf("transaction ref = %s, want UTR777", paid.TransactionRef)
	}
}

func TestReviewDoubleApproveFailsClosed(t *testing.T) {
	svc, db := setupPayoutServiceTest(t)
	partner := createPayoutTestPartner(t, db, constants.PartnerRoleCPA, "300.00")
	account := createPayoutTestBankAccount(t, db, partner.ID)

	payout, err := svc.RequestWithdraw(partner.ID, PayoutRequestInput{
		Amount:        mustDecimal(t, "120.00"),
		BankAccountID: account.ID,
	})
	if err != nil {
		t.Fatalf("request withdraw failed: %v", err)
	}
	if _, err := svc.Review(1, payout.ID, PayoutReviewInput{
		Decision:       constants.PayoutDecisionApprove,
		TransactionRef: "UTR888",
	}); err != nil {
		t.Fatalf("approve with ref failed: %v", err)
	}

	// 已结算的申请再次 approve：前置状态不满足，任何字段都不得被改写
	if _, err := svc.Review(2, payout.ID, PayoutReviewInput{
		Decision:       constants.PayoutDecisionApprove,
		TransactionRef: "UTR999",
	}); !errors.Is(err, ErrPayoutStatusInvalid) {
		t.Fatalf("double approve err = %v, want ErrPayoutStatusInvalid", err)
	}

	var reloaded models.Payout
	if err := db.First(&reloaded, payout.ID).Error; err != nil {
		t.Fatalf("reload payout failed: %v", err)
	}
	if reloaded.Status != constants.PayoutStatusPaid {
		t.Fatalf("status = %s, want paid", reloaded.Status)
	}
	if reloaded.TransactionRef != "UTR888" {
		t.Fatalf("transaction ref = %s, want UTR888 untouched", reloaded.TransactionRef)
	}
	if reloaded.ProcessedBy == nil || *reloaded.ProcessedBy != 1 {
		t.Fatalf("processed_by = %v, want 1 untouched", reloaded.ProcessedBy)
	}

	var reloadedPartner models.Partner
	if err := db.First(&reloadedPartner, partner.ID).Error; err != nil {
		t.Fatalf("reload partner failed: %v", err)
	}
	if got := reloadedPartner.TotalWithdrawn.String(); got != "120.00" {
		t.Fatalf("total withdrawn = %s, want 120.00 (booked once)", got)
	}
	if got := reloadedPartner.Balance.String(); got != "180.00" {
		t.Fatalf("balance = %s, want 180.00", got)
	}
}

func TestReviewInputValidation(t *testing.T) {
	svc, db := setupPayoutServiceTest(t)
	partner := createPayoutTestPartner(t, db, constants.PartnerRoleCPA, "300.00")
	account := createPayoutTestBankAccount(t, db, partner.ID)

	payout, err := svc.RequestWithdraw(partner.ID, PayoutRequestInput{
		Amount:        mustDecimal(t, "150.00"),
		BankAccountID: account.ID,
	})
	if err != nil {
		t.Fatalf("request withdraw failed: %v", err)
	}

	if _, err := svc.Review(1, payout.ID, PayoutReviewInput{Decision: "void"}); !errors.Is(err, ErrPayoutDecisionInvalid) {
		t.Fatalf("err = %v, want ErrPayoutDecisionInvalid", err)
	}
	if _, err := svc.Review(1, payout.ID, PayoutReviewInput{Decision: constants.PayoutDecisionMarkPaid}); !errors.Is(err, ErrPayoutTransactionRefRequired) {
		t.Fatalf("err = %v, want ErrPayoutTransactionRefRequired", err)
	}
	if _, err := svc.Review(1, payout.ID, PayoutReviewInput{Decision: constants.PayoutDecisionReject}); !errors.Is(err, ErrPayoutRejectReasonRequired) {
		t.Fatalf("err = %v, want ErrPayoutRejectReasonRequired", err)
	}
}
