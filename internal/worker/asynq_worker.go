package worker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/yash9025/WriteOffGenie-sub000/internal/logger"
	"github.com/yash9025/WriteOffGenie-sub000/internal/provider"
	"github.com/yash9025/WriteOffGenie-sub000/internal/queue"
	"github.com/yash9025/WriteOffGenie-sub000/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskRevenueEventCredit, c.handleRevenueEventCredit)
	mux.HandleFunc(queue.TaskPayoutNotify, c.handlePayoutNotify)
}

func (c *Consumer) handleRevenueEventCredit(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_revenue_event_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.RevenueEventCreditPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_revenue_event_unmarshal_failed", "error", err)
		return err
	}
	if c.LedgerService == nil {
		logger.Warnw("worker_revenue_event_skip_ledger_service_nil", "event_id", payload.EventID)
		return nil
	}
	_, _, err := c.LedgerService.CreditRevenueEvent(service.RevenueEventInput{
		EventID:          payload.EventID,
		ClientExternalID: payload.ClientExternalID,
		PlanID:           payload.PlanID,
		Status:           payload.Status,
	})
	if err != nil {
		// 载荷本身非法时重试无意义，吞掉避免死信堆积
		if errors.Is(err, service.ErrEventInvalid) {
			logger.Debugw("worker_revenue_event_skip_invalid_payload", "event_id", payload.EventID)
			return nil
		}
		logger.Warnw("worker_revenue_event_credit_failed", "event_id", payload.EventID, "error", err)
		return err
	}
	return nil
}

func (c *Consumer) handlePayoutNotify(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_payout_notify_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.PayoutNotifyPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_payout_notify_unmarshal_failed", "error", err)
		return err
	}
	if payload.PayoutID == 0 {
		logger.Debugw("worker_payout_notify_skip_invalid_payload", "payout_id", payload.PayoutID)
		return nil
	}
	payout, err := c.PayoutRepo.GetByID(payload.PayoutID)
	if err != nil {
		logger.Warnw("worker_payout_notify_fetch_failed", "payout_id", payload.PayoutID, "error", err)
		return err
	}
	if payout == nil {
		logger.Debugw("worker_payout_notify_skip_not_found", "payout_id", payload.PayoutID)
		return nil
	}
	partner, err := c.PartnerRepo.GetByID(payout.PartnerID)
	if err != nil {
		logger.Warnw("worker_payout_notify_fetch_partner_failed", "payout_id", payout.ID, "partner_id", payout.PartnerID, "error", err)
		return err
	}
	if partner == nil {
		logger.Debugw("worker_payout_notify_skip_partner_not_found", "payout_id", payout.ID, "partner_id", payout.PartnerID)
		return nil
	}

	// 暂无外发通道，结构化日志即通知出口，后续接入邮件网关时替换此处
	logger.Infow("payout_status_notification",
		"payout_id", payout.ID,
		"reference_id", payout.ReferenceID,
		"partner_id", partner.ID,
		"partner_email", partner.Email,
		"status", payout.Status,
		"amount", payout.Amount.String(),
	)
	return nil
}
