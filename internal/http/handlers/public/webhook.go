package public

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"strings"

	"github.com/yash9025/WriteOffGenie-sub000/internal/http/response"
	"github.com/yash9025/WriteOffGenie-sub000/internal/models"
	"github.com/yash9025/WriteOffGenie-sub000/internal/queue"
	"github.com/yash9025/WriteOffGenie-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

// 上游回调签名头：原始请求体的 HMAC-SHA256 十六进制摘要
const webhookSignatureHeader = "X-Webhook-Signature"

var (
	errWebhookSignatureMissing = errors.New("webhook signature missing")
	errWebhookSignatureInvalid = errors.New("webhook signature mismatch")
)

// SubscriptionWebhookRequest 上游订阅事件回调请求
type SubscriptionWebhookRequest struct {
	EventID  string `json:"event_id" binding:"required"`
	ClientID string `json:"client_id" binding:"required"`
	PlanID   string `json:"plan_id" binding:"required"`
	Status   string `json:"status" binding:"required"`
}

// SubscriptionWebhook 接收订阅营收事件
// 共享密钥签名校验通过后，队列可用时入队交给 worker 至少一次投递，否则退化为同步入账。
func (h *Handler) SubscriptionWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	// 恢复请求体供绑定使用
	c.Request.Body = io.NopCloser(bytes.NewBuffer(body))

	secret := ""
	if h.Config != nil {
		secret = strings.TrimSpace(h.Config.Security.WebhookSecret)
	}
	if secret == "" {
		requestLog(c).Warnw("webhook_secret_not_configured")
		respondError(c, response.CodeUnauthorized, "error.webhook_secret_missing", nil)
		return
	}
	if err := verifyWebhookSignature(secret, body, c.GetHeader(webhookSignatureHeader)); err != nil {
		requestLog(c).Warnw("webhook_signature_invalid", "error", err)
		respondError(c, response.CodeUnauthorized, "error.webhook_signature_invalid", nil)
		return
	}

	var req SubscriptionWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	if h.QueueClient != nil && h.QueueClient.Enabled() {
		if err := h.QueueClient.EnqueueRevenueEventCredit(queue.RevenueEventCreditPayload{
			EventID:          req.EventID,
			ClientExternalID: req.ClientID,
			PlanID:           req.PlanID,
			Status:           req.Status,
		}); err != nil {
			respondError(c, response.CodeInternal, "error.internal", err)
			return
		}
		requestLog(c).Infow("revenue_event_enqueued", "event_id", req.EventID, "plan_id", req.PlanID)
		response.Success(c, gin.H{"queued": true})
		return
	}

	txn, credited, err := h.LedgerService.CreditRevenueEvent(service.RevenueEventInput{
		EventID:          req.EventID,
		ClientExternalID: req.ClientID,
		PlanID:           req.PlanID,
		Status:           req.Status,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEventInvalid):
			respondError(c, response.CodeBadRequest, "error.event_invalid", nil)
		default:
			respondError(c, response.CodeInternal, "error.internal", err)
		}
		return
	}
	response.Success(c, buildRevenueEventPayload(txn, credited))
}

// verifyWebhookSignature 校验原始请求体的 HMAC-SHA256 签名
func verifyWebhookSignature(secret string, body []byte, signature string) error {
	signature = strings.TrimSpace(signature)
	if signature == "" {
		return errWebhookSignatureMissing
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(signature))) {
		return errWebhookSignatureInvalid
	}
	return nil
}

// buildRevenueEventPayload 构造入账结果响应
// 重复投递返回既有流水但 credited=false，跳过的事件只返回标志位。
func buildRevenueEventPayload(txn *models.LedgerTransaction, credited bool) gin.H {
	if txn == nil {
		return gin.H{"credited": false}
	}
	return gin.H{
		"credited":         credited,
		"event_id":         txn.EventID,
		"cpa_commission":   txn.CPAEarnings,
		"agent_commission": txn.AgentEarnings,
	}
}
