package service

import (
	"github.com/shopspring/decimal"
)

var commissionHundred = decimal.NewFromInt(100)

// CommissionSplit 单笔订阅事件的分成结果
// 三方份额之和恒等于套餐金额：PlatformShare 取减法余项而非独立计算。
type CommissionSplit struct {
	PlanAmount      decimal.Decimal // 套餐支付金额
	CPAShare        decimal.Decimal // CPA 佣金（按套餐金额比例）
	NetRevenue      decimal.Decimal // 扣除 CPA 佣金后的净营收
	MaintenanceCost decimal.Decimal // 每活跃用户维护成本
	NetProfit       decimal.Decimal // 净营收扣除维护成本后的净利
	AgentShare      decimal.Decimal // Agent 佣金（按净利比例）
	PlatformShare   decimal.Decimal // 平台留存
}

// CommissionCalculator 佣金拆分计算器（纯计算，不触达存储）
type CommissionCalculator struct{}

// NewCommissionCalculator 创建佣金计算器
func NewCommissionCalculator() *CommissionCalculator {
	return &CommissionCalculator{}
}

// Split 按两级分成规则拆分套餐金额
// 比例参数为百分比值（如 10 表示 10%）。每一步都按四舍五入保留 2 位，
// 净利为负时 Agent 份额记 0，亏损由平台承担。
func (c *CommissionCalculator) Split(planAmount, cpaRatePercent, agentRatePercent, maintenanceCost decimal.Decimal) CommissionSplit {
	amount := planAmount.Round(2)
	if amount.LessThan(decimal.Zero) {
		amount = decimal.Zero
	}
	cost := maintenanceCost.Round(2)
	if cost.LessThan(decimal.Zero) {
		cost = decimal.Zero
	}

	cpaShare := amount.Mul(normalizeRate(cpaRatePercent)).Div(commissionHundred).Round(2)
	if cpaShare.GreaterThan(amount) {
		cpaShare = amount
	}
	netRevenue := amount.Sub(cpaShare).Round(2)
	netProfit := netRevenue.Sub(cost).Round(2)

	agentShare := decimal.Zero
	if netProfit.GreaterThan(decimal.Zero) {
		agentShare = netProfit.Mul(normalizeRate(agentRatePercent)).Div(commissionHundred).Round(2)
	}

	platformShare := amount.Sub(cpaShare).Sub(agentShare).Round(2)

	return CommissionSplit{
		PlanAmount:      amount,
		CPAShare:        cpaShare,
		NetRevenue:      netRevenue,
		MaintenanceCost: cost,
		NetProfit:       netProfit,
		AgentShare:      agentShare,
		PlatformShare:   platformShare,
	}
}

func normalizeRate(rate decimal.Decimal) decimal.Decimal {
	if rate.LessThan(decimal.Zero) {
		return decimal.Zero
	}
	if rate.GreaterThan(commissionHundred) {
		return commissionHundred
	}
	return rate
}
