package service

import (
	"testing"

	"github.com/shopspring/decimal"
)

func mustDecimal(t *testing.T, raw string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(raw)
	if err != nil {
		t.Fatalf("parse decimal %q failed: %v", raw, err)
	}
	return d
}

func TestCommissionSplitStandard(t *testing.T) {
	calc := NewCommissionCalculator()
	split := calc.Split(
		mustDecimal(t, "25.00"),
		mustDecimal(t, "10"),
		mustDecimal(t, "15"),
		mustDecimal(t, "6.00"),
	)

	if got := split.CPAShare.StringFixed(2); got != "2.50" {
		t.Fatalf("cpa share = %s, want 2.50", got)
	}
	if got := split.NetRevenue.StringFixed(2); got != "22.50" {
		t.Fatalf("net revenue = %s, want 22.50", got)
	}
	if got := split.NetProfit.StringFixed(2); got != "16.50" {
		t.Fatalf("net profit = %s, want 16.50", got)
	}
	// 16.50 * 15% = 2.475，四舍五入到 2.48
	if got := split.AgentShare.StringFixed(2); got != "2.48" {
		t.Fatalf("agent share = %s, want 2.48", got)
	}
	if got := split.PlatformShare.StringFixed(2); got != "20.02" {
		t.Fatalf("platform share = %s, want 20.02", got)
	}
}

func TestCommissionSplitConservation(t *testing.T) {
	calc := NewCommissionCalculator()
	cases := []struct {
		plan  string
		cpa   string
		agent string
		cost  string
	}{
		{"10.00", "10", "15", "6.00"},
		{"25.00", "50", "15", "6.00"},
		{"250.00", "37", "15", "6.00"},
		{"9.99", "33", "21", "1.37"},
		{"0.01", "10", "15", "6.00"},
	}
	for _, tc := range cases {
		split := calc.Split(
			mustDecimal(t, tc.plan),
			mustDecimal(t, tc.cpa),
			mustDecimal(t, tc.agent),
			mustDecimal(t, tc.cost),
		)
		sum := split.CPAShare.Add(split.AgentShare).Add(split.PlatformShare)
		if !sum.Equal(split.PlanAmount) {
			t.Fatalf("plan %s: shares sum %s != plan amount %s", tc.plan, sum, split.PlanAmount)
		}
	}
}

func TestCommissionSplitNegativeNetProfit(t *testing.T) {
	calc := NewCommissionCalculator()
	// 低价套餐扣除维护成本后净利为负，Agent 份额应为 0，亏损由平台承担。
	split := calc.Split(
		mustDecimal(t, "5.00"),
		mustDecimal(t, "10"),
		mustDecimal(t, "15"),
		mustDecimal(t, "6.00"),
	)
	if !split.AgentShare.IsZero() {
		t.Fatalf("agent share = %s, want 0", split.AgentShare)
	}
	if got := split.NetProfit.StringFixed(2); got != "-1.50" {
		t.Fatalf("net profit = %s, want -1.50", got)
	}
	if got := split.PlatformShare.StringFixed(2); got != "4.50" {
		t.Fatalf("platform share = %s, want 4.50", got)
	}
}

func TestCommissionSplitRateClamp(t *testing.T) {
	calc := NewCommissionCalculator()
	split := calc.Split(
		mustDecimal(t, "25.00"),
		mustDecimal(t, "-5"),
		mustDecimal(t, "150"),
		mustDecimal(t, "0"),
	)
	if !split.CPAShare.IsZero() {
		t.Fatalf("cpa share = %s, want 0 for negative rate", split.CPAShare)
	}
	// Agent 比例钳制到 100%，全部净利归 Agent
	if got := split.AgentShare.StringFixed(2); got != "25.00" {
		t.Fatalf("agent share = %s, want 25.00", got)
	}
	if !split.PlatformShare.IsZero() {
		t.Fatalf("platform share = %s, want 0", split.PlatformShare)
	}
}
