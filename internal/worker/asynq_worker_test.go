package worker

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/yash9025/WriteOffGenie-sub000/internal/config"
	"github.com/yash9025/WriteOffGenie-sub000/internal/constants"
	"github.com/yash9025/WriteOffGenie-sub000/internal/models"
	"github.com/yash9025/WriteOffGenie-sub000/internal/provider"
	"github.com/yash9025/WriteOffGenie-sub000/internal/queue"
	"github.com/yash9025/WriteOffGenie-sub000/internal/repository"
	"github.com/yash9025/WriteOffGenie-sub000/internal/service"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

func setupConsumerTest(t *testing.T) (*Consumer, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:worker_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Partner{},
		&models.Client{},
		&models.LedgerTransaction{},
		&models.Payout{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	ledgerService := service.NewLedgerService(
		repository.NewLedgerRepository(db),
		repository.NewPartnerRepository(db),
		repository.NewClientRepository(db),
		service.NewCommissionCalculator(),
		service.NewPlanCatalog(config.CommissionConfig{
			Plans: map[string]string{"pro-month": "25.00"},
		}),
	)
	container := &provider.Container{
		LedgerService: ledgerService,
		PartnerRepo:   repository.NewPartnerRepository(db),
		PayoutRepo:    repository.NewPayoutRepository(db),
	}
	return NewConsumer(container), db
}

func newRevenueEventTask(t *testing.T, payload queue.RevenueEventCreditPayload) *asynq.Task {
	t.Helper()
	task, err := queue.NewRevenueEventCreditTask(payload)
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	return task
}

func TestHandleRevenueEventCreditCreatesTransaction(t *testing.T) {
	consumer, db := setupConsumerTest(t)
	cpa := &models.Partner{
		Email:          "cpa@example.com",
		PasswordHash:   "hash",
		Role:           constants.PartnerRoleCPA,
		ReferralCode:   "CPA001",
		CommissionRate: models.NewMoneyFromString("10"),
		Status:         constants.PartnerStatusActive,
	}
	if err := db.Create(cpa).Error; err != nil {
		t.Fatalf("create cpa failed: %v", err)
	}
	client := &models.Client{ExternalID: "client-1", Email: "c1@example.com", ReferralCode: "CPA001"}
	if err := db.Create(client).Error; err != nil {
		t.Fatalf("create client failed: %v", err)
	}

	task := newRevenueEventTask(t, queue.RevenueEventCreditPayload{
		EventID:          "evt-worker-1",
		ClientExternalID: "client-1",
		PlanID:           "pro-month",
		Status:           constants.RevenueEventStatusActive,
	})
	if err := consumer.handleRevenueEventCredit(context.Background(), task); err != nil {
		t.Fatalf("handle failed: %v", err)
	}

	var count int64
	if err := db.Model(&models.LedgerTransaction{}).Where("event_id = ?", "evt-worker-1").Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("transaction count = %d, want 1", count)
	}

	// 重复投递不应产生第二条流水
	if err := consumer.handleRevenueEventCredit(context.Background(), task); err != nil {
		t.Fatalf("redelivery failed: %v", err)
	}
	if err := db.Model(&models.LedgerTransaction{}).Where("event_id = ?", "evt-worker-1").Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("transaction count after redelivery = %d, want 1", count)
	}
}

func TestHandleRevenueEventCreditSwallowsInvalidPayload(t *testing.T) {
	consumer, _ := setupConsumerTest(t)
	task := newRevenueEventTask(t, queue.RevenueEventCreditPayload{
		EventID:          "   ",
		ClientExternalID: "client-1",
		PlanID:           "pro-month",
		Status:           constants.RevenueEventStatusActive,
	})
	if err := consumer.handleRevenueEventCredit(context.Background(), task); err != nil {
		t.Fatalf("invalid payload should be swallowed, got %v", err)
	}
}

func TestHandleRevenueEventCreditMalformedPayload(t *testing.T) {
	consumer, _ := setupConsumerTest(t)
	task := asynq.NewTask(queue.TaskRevenueEventCredit, []byte("{not-json"))
	if err := consumer.handleRevenueEventCredit(context.Background(), task); err == nil {
		t.Fatalf("expected unmarshal error for malformed payload")
	}
}

func TestHandlePayoutNotifySkipsMissingPayout(t *testing.T) {
	consumer, _ := setupConsumerTest(t)

	task, err := queue.NewPayoutNotifyTask(queue.PayoutNotifyPayload{PayoutID: 0})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handlePayoutNotify(context.Background(), task); err != nil {
		t.Fatalf("zero payout id should be skipped, got %v", err)
	}

	task, err = queue.NewPayoutNotifyTask(queue.PayoutNotifyPayload{PayoutID: 9999})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handlePayoutNotify(context.Background(), task); err != nil {
		t.Fatalf("missing payout should be skipped, got %v", err)
	}
}
