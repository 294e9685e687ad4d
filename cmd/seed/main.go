package main

import (
	"github.com/yash9025/WriteOffGenie-sub000/internal/config"
	"github.com/yash9025/WriteOffGenie-sub000/internal/logger"
	"github.com/yash9025/WriteOffGenie-sub000/internal/models"
	"github.com/yash9025/WriteOffGenie-sub000/internal/provider"
	"github.com/yash9025/WriteOffGenie-sub000/internal/service"
)

// 演示数据：一个 Agent、两个 CPA、若干客户与订阅事件，事件走真实入账路径。
func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 默认管理员
	if err := models.InitDefaultAdmin("", ""); err != nil {
		stdLog.Printf("Failed to init default admin: %v", err)
	}

	c := provider.NewContainer(cfg)

	// 创建演示 Agent
	agent := ensurePartner(c, stdLog, "demo-agent@writeoffgenie.io", func() (*models.Partner, error) {
		return c.PartnerService.CreateAgent(service.CreateAgentInput{
			Email:       "demo-agent@writeoffgenie.io",
			Password:    "demo-agent-password",
			DisplayName: "Demo Agency",
		})
	})
	if agent == nil {
		stdLog.Fatalf("Failed to seed demo agent")
	}

	// Agent 名下 CPA
	cpaA := ensurePartner(c, stdLog, "demo-cpa-a@writeoffgenie.io", func() (*models.Partner, error) {
		return c.PartnerService.InviteCPA(agent.ID, service.InviteCPAInput{
			Email:       "demo-cpa-a@writeoffgenie.io",
			Password:    "demo-cpa-password",
			DisplayName: "Demo CPA Alpha",
		})
	})
	cpaB := ensurePartner(c, stdLog, "demo-cpa-b@writeoffgenie.io", func() (*models.Partner, error) {
		return c.PartnerService.InviteCPA(agent.ID, service.InviteCPAInput{
			Email:          "demo-cpa-b@writeoffgenie.io",
			Password:       "demo-cpa-password",
			DisplayName:    "Demo CPA Beta",
			CommissionRate: "20",
		})
	})
	if cpaA == nil || cpaB == nil {
		stdLog.Fatalf("Failed to seed demo CPAs")
	}

	// 客户：绑定推荐码
	clients := []models.Client{
		{ExternalID: "client-1001", Email: "alice@example.com", ReferralCode: cpaA.ReferralCode},
		{ExternalID: "client-1002", Email: "bob@example.com", ReferralCode: cpaA.ReferralCode},
		{ExternalID: "client-1003", Email: "carol@example.com", ReferralCode: cpaB.ReferralCode},
	}
	for i := range clients {
		ensureClient(c, stdLog, &clients[i])
	}

	// 订阅事件：走真实入账路径，重复执行保持幂等
	events := []service.RevenueEventInput{
		{EventID: "seed-evt-0001", ClientExternalID: "client-1001", PlanID: "pro-month", Status: "active"},
		{EventID: "seed-evt-0002", ClientExternalID: "client-1002", PlanID: "basic-month", Status: "active"},
		{EventID: "seed-evt-0003", ClientExternalID: "client-1003", PlanID: "pro-year", Status: "active"},
		{EventID: "seed-evt-0004", ClientExternalID: "client-1003", PlanID: "pro-month", Status: "cancelled"},
	}
	for _, event := range events {
		txn, credited, err := c.LedgerService.CreditRevenueEvent(event)
		if err != nil {
			stdLog.Printf("Failed to credit event %s: %v", event.EventID, err)
			continue
		}
		if txn == nil {
			stdLog.Printf("Skipped event: %s", event.EventID)
			continue
		}
		if !credited {
			stdLog.Printf("Event already credited: %s", event.EventID)
			continue
		}
		stdLog.Printf("Credited event %s: cpa=%s agent=%s", event.EventID, txn.CPAEarnings.String(), txn.AgentEarnings.String())
	}

	stdLog.Printf("Seed finished")
}

func ensurePartner(c *provider.Container, stdLog interface{ Printf(string, ...interface{}) }, email string, create func() (*models.Partner, error)) *models.Partner {
	existing, err := c.PartnerRepo.GetByEmail(email)
	if err != nil {
		stdLog.Printf("Failed to look up partner %s: %v", email, err)
		return nil
	}
	if existing != nil {
		stdLog.Printf("Partner already exists: %s", email)
		return existing
	}
	created, err := create()
	if err != nil {
		stdLog.Printf("Failed to create partner %s: %v", email, err)
		return nil
	}
	stdLog.Printf("Created partner: %s (code %s)", email, created.ReferralCode)
	return created
}

func ensureClient(c *provider.Container, stdLog interface{ Printf(string, ...interface{}) }, client *models.Client) {
	existing, err := c.ClientRepo.GetByExternalID(client.ExternalID)
	if err != nil {
		stdLog.Printf("Failed to look up client %s: %v", client.ExternalID, err)
		return
	}
	if existing != nil {
		stdLog.Printf("Client already exists: %s", client.ExternalID)
		return
	}
	if err := c.ClientRepo.Create(client); err != nil {
		stdLog.Printf("Failed to create client %s: %v", client.ExternalID, err)
		return
	}
	stdLog.Printf("Created client: %s", client.ExternalID)
}
