package service

import (
	"strings"

	"github.com/yash9025/WriteOffGenie-sub000/internal/config"

	"github.com/shopspring/decimal"
)

// PlanCatalog 套餐价格表（来自配置，键为上游套餐标识）
type PlanCatalog struct {
	prices map[string]decimal.Decimal
}

// NewPlanCatalog 从佣金配置构建套餐价格表，非法价格条目被忽略
func NewPlanCatalog(cfg config.CommissionConfig) *PlanCatalog {
	prices := make(map[string]decimal.Decimal, len(cfg.Plans))
	for planID, raw := range cfg.Plans {
		planID = strings.TrimSpace(planID)
		if planID == "" {
			continue
		}
		price, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil || price.LessThanOrEqual(decimal.Zero) {
			continue
		}
		prices[planID] = price.Round(2)
	}
	return &PlanCatalog{prices: prices}
}

// PriceFor 查询套餐价格，未知套餐返回 0
func (c *PlanCatalog) PriceFor(planID string) decimal.Decimal {
	if c == nil {
		return decimal.Zero
	}
	price, ok := c.prices[strings.TrimSpace(planID)]
	if !ok {
		return decimal.Zero
	}
	return price
}

// Known 判断套餐是否在价格表中
func (c *PlanCatalog) Known(planID string) bool {
	if c == nil {
		return false
	}
	_, ok := c.prices[strings.TrimSpace(planID)]
	return ok
}
