package provider

import (
	"github.com/yash9025/WriteOffGenie-sub000/internal/authz"
	"github.com/yash9025/WriteOffGenie-sub000/internal/cache"
	"github.com/yash9025/WriteOffGenie-sub000/internal/config"
	"github.com/yash9025/WriteOffGenie-sub000/internal/logger"
	"github.com/yash9025/WriteOffGenie-sub000/internal/models"
	"github.com/yash9025/WriteOffGenie-sub000/internal/queue"
	"github.com/yash9025/WriteOffGenie-sub000/internal/repository"
	"github.com/yash9025/WriteOffGenie-sub000/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo   repository.AdminRepository
	PartnerRepo repository.PartnerRepository
	LedgerRepo  repository.LedgerRepository
	PayoutRepo  repository.PayoutRepository
	ClientRepo  repository.ClientRepository

	// Services
	AuthzService       *authz.Service
	AuthService        *service.AuthService
	PartnerAuthService *service.PartnerAuthService
	PartnerService     *service.PartnerService
	LedgerService      *service.LedgerService
	PayoutService      *service.PayoutService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.PartnerRepo = repository.NewPartnerRepository(db)
	c.LedgerRepo = repository.NewLedgerRepository(db)
	c.PayoutRepo = repository.NewPayoutRepository(db)
	c.ClientRepo = repository.NewClientRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.PartnerAuthService = service.NewPartnerAuthService(c.Config, c.PartnerRepo)
	c.PartnerService = service.NewPartnerService(c.PartnerRepo, c.LedgerRepo, c.PayoutRepo, c.ClientRepo, c.Config)
	c.LedgerService = service.NewLedgerService(
		c.LedgerRepo,
		c.PartnerRepo,
		c.ClientRepo,
		service.NewCommissionCalculator(),
		service.NewPlanCatalog(c.Config.Commission),
	)

	var notifier service.PayoutNotifier
	if c.QueueClient != nil && c.QueueClient.Enabled() {
		notifier = c.QueueClient
	}
	c.PayoutService = service.NewPayoutService(
		c.PayoutRepo,
		c.PartnerRepo,
		service.NewPayoutPolicy(c.Config.Payout),
		notifier,
	)
}
