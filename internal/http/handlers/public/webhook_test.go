package public

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/yash9025/WriteOffGenie-sub000/internal/config"
	"github.com/yash9025/WriteOffGenie-sub000/internal/constants"
	"github.com/yash9025/WriteOffGenie-sub000/internal/models"
	"github.com/yash9025/WriteOffGenie-sub000/internal/provider"
	"github.com/yash9025/WriteOffGenie-sub000/internal/repository"
	"github.com/yash9025/WriteOffGenie-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

const testWebhookSecret = "webhook-test-secret"

func setupWebhookHandlerTest(t *testing.T) (*Handler, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:webhook_handler_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
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

	cpa := &models.Partner{
		Email:          "webhook-cpa@example.com",
		PasswordHash:   "hash",
		Role:           constants.PartnerRoleCPA,
		ReferralCode:   "WHCPA001",
		CommissionRate: models.NewMoneyFromString("10"),
		Status:         constants.PartnerStatusActive,
	}
	if err := db.Create(cpa).Error; err != nil {
		t.Fatalf("create cpa failed: %v", err)
	}
	client := &models.Client{ExternalID: "wh-client-1", Email: "wh1@example.com", ReferralCode: "WHCPA001"}
	if err := db.Create(client).Error; err != nil {
		t.Fatalf("create client failed: %v", err)
	}

	ledgerService := service.NewLedgerService(
		repository.NewLedgerRepository(db),
		repository.NewPartnerRepository(db),
		repository.NewClientRepository(db),
		service.NewCommissionCalculator(),
		service.NewPlanCatalog(config.CommissionConfig{
			Plans: map[string]string{"pro-month": "25.00"},
		}),
	)
	h := &Handler{Container: &provider.Container{
		Config: &config.Config{
			Security: config.SecurityConfig{WebhookSecret: testWebhookSecret},
		},
		LedgerService: ledgerService,
	}}
	return h, db
}

func signWebhookBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func postWebhook(h *Handler, body []byte, signature string) *httptest.ResponseRecorder {
	r := gin.New()
	r.POST("/webhooks/subscription", h.SubscriptionWebhook)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/subscription", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set(webhookSignatureHeader, signature)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeWebhookResponse(t *testing.T, w *httptest.ResponseRecorder) (int, map[string]interface{}) {
	t.Helper()
	var envelope struct {
		StatusCode int                    `json:"status_code"`
		Data       map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response failed: %v (body %s)", err, w.Body.String())
	}
	return envelope.StatusCode, envelope.Data
}

func webhookEventBody(eventID string) []byte {
	return []byte(fmt.Sprintf(`{"event_id":%q,"client_id":"wh-client-1","plan_id":"pro-month","status":"active"}`, eventID))
}

func TestSubscriptionWebhookRejectsMissingSignature(t *testing.T) {
	h, db := setupWebhookHandlerTest(t)
	body := webhookEventBody("wh-evt-1")

	w := postWebhook(h, body, "")
	code, _ := decodeWebhookResponse(t, w)
	if code != 401 {
		t.Fatalf("status_code = %d, want 401", code)
	}

	var count int64
	if err := db.Model(&models.LedgerTransaction{}).Count(&count).Error; err != nil {
		t.Fatalf("count transactions failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("unsigned webhook must not credit, got %d transactions", count)
	}
}

func TestSubscriptionWebhookRejectsForgedSignature(t *testing.T) {
	h, db := setupWebhookHandlerTest(t)
	body := webhookEventBody("wh-evt-2")

	w := postWebhook(h, body, signWebhookBody("wrong-secret", body))
	code, _ := decodeWebhookResponse(t, w)
	if code != 401 {
		t.Fatalf("status_code = %d, want 401", code)
	}

	var count int64
	if err := db.Model(&models.LedgerTransaction{}).Count(&count).Error; err != nil {
		t.Fatalf("count transactions failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("forged webhook must not credit, got %d transactions", count)
	}
}

func TestSubscriptionWebhookRejectsWhenSecretUnset(t *testing.T) {
	h, _ := setupWebhookHandlerTest(t)
	h.Config.Security.WebhookSecret = ""
	body := webhookEventBody("wh-evt-3")

	w := postWebhook(h, body, signWebhookBody(testWebhookSecret, body))
	code, _ := decodeWebhookResponse(t, w)
	if code != 401 {
		t.Fatalf("status_code = %d, want 401", code)
	}
}

func TestSubscriptionWebhookCreditsOnceAndReportsDuplicate(t *testing.T) {
	h, db := setupWebhookHandlerTest(t)
	body := webhookEventBody("wh-evt-4")
	signature := signWebhookBody(testWebhookSecret, body)

	w := postWebhook(h, body, signature)
	code, data := decodeWebhookResponse(t, w)
	if code != 0 {
		t.Fatalf("status_code = %d, want 0 (body %s)", code, w.Body.String())
	}
	if credited, _ := data["credited"].(bool); !credited {
		t.Fatalf("first delivery should report credited=true, data %v", data)
	}

	// 同一事件再次投递：不再入账，credited 必须为 false
	w = postWebhook(h, body, signature)
	code, data = decodeWebhookResponse(t, w)
	if code != 0 {
		t.Fatalf("duplicate status_code = %d, want 0", code)
	}
	if credited, _ := data["credited"].(bool); credited {
		t.Fatalf("duplicate delivery should report credited=false, data %v", data)
	}

	var count int64
	if err := db.Model(&models.LedgerTransaction{}).Where("event_id = ?", "wh-evt-4").Count(&count).Error; err != nil {
		t.Fatalf("count transactions failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("transaction count = %d, want 1", count)
	}
}

func TestVerifyWebhookSignature(t *testing.T) {
	body := []byte(`{"event_id":"sig-evt"}`)
	valid := signWebhookBody(testWebhookSecret, body)

	if err := verifyWebhookSignature(testWebhookSecret, body, valid); err != nil {
		t.Fatalf("valid signature rejected: %v", err)
	}
	// 十六进制摘要大小写不敏感
	if err := verifyWebhookSignature(testWebhookSecret, body, strings.ToUpper(valid)); err != nil {
		t.Fatalf("uppercase signature rejected: %v", err)
	}
	if err := verifyWebhookSignature(testWebhookSecret, body, ""); err == nil {
		t.Fatal("missing signature should be rejected")
	}
	if err := verifyWebhookSignature(testWebhookSecret, body, signWebhookBody("other", body)); err == nil {
		t.Fatal("mismatched signature should be rejected")
	}
}
