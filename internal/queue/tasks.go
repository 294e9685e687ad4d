package queue

import (
	"encoding/json"

	"github.com/yash9025/WriteOffGenie-sub000/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskRevenueEventCredit 订阅事件入账任务
	TaskRevenueEventCredit = constants.TaskRevenueEventCredit
	// TaskPayoutNotify 提现状态通知任务
	TaskPayoutNotify = constants.TaskPayoutNotify
)

// RevenueEventCreditPayload 订阅事件入账任务载荷
type RevenueEventCreditPayload struct {
	EventID          string `json:"event_id"`
	ClientExternalID string `json:"client_external_id"`
	PlanID           string `json:"plan_id"`
	Status           string `json:"status"`
}

// PayoutNotifyPayload 提现状态通知任务载荷
type PayoutNotifyPayload struct {
	PayoutID uint `json:"payout_id"`
}

// NewRevenueEventCreditTask 创建订阅事件入账任务
func NewRevenueEventCreditTask(payload RevenueEventCreditPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRevenueEventCredit, body), nil
}

// NewPayoutNotifyTask 创建提现状态通知任务
func NewPayoutNotifyTask(payload PayoutNotifyPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPayoutNotify, body), nil
}
