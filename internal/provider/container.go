package provider

import (
	"github.com/firewood-bank/backend/internal/authz"
	"github.com/firewood-bank/backend/internal/config"
	"github.com/firewood-bank/backend/internal/logger"
	"github.com/firewood-bank/backend/internal/models"
	"github.com/firewood-bank/backend/internal/repository"
	"github.com/firewood-bank/backend/internal/service"
)

// Container 依赖注入容器
// 桌面端壳层持有一个 Container，直接调用各 Service 方法。
type Container struct {
	Config *config.Config

	// Repositories
	UserRepo          repository.UserRepository
	ClientRepo        repository.ClientRepository
	WorkOrderRepo     repository.WorkOrderRepository
	InventoryItemRepo repository.InventoryItemRepository
	DeliveryEventRepo repository.DeliveryEventRepository
	AuditLogRepo      repository.AuditLogRepository
	InvoiceRepo       repository.InvoiceRepository
	MotdRepo          repository.MotdRepository
	ChangeRequestRepo repository.ChangeRequestRepository

	// Services
	AuthzService         *authz.Service
	AuditService         *service.AuditService
	InventoryLedger      *service.InventoryLedger
	UserAuthService      *service.UserAuthService
	ClientService        *service.ClientService
	WorkOrderService     *service.WorkOrderService
	InventoryService     *service.InventoryService
	DeliveryEventService *service.DeliveryEventService
	InvoiceService       *service.InvoiceService
	MotdService          *service.MotdService
	ChangeRequestService *service.ChangeRequestService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	c := &Container{Config: cfg}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.UserRepo = repository.NewUserRepository(db)
	c.ClientRepo = repository.NewClientRepository(db)
	c.WorkOrderRepo = repository.NewWorkOrderRepository(db)
	c.InventoryItemRepo = repository.NewInventoryItemRepository(db)
	c.DeliveryEventRepo = repository.NewDeliveryEventRepository(db)
	c.AuditLogRepo = repository.NewAuditLogRepository(db)
	c.InvoiceRepo = repository.NewInvoiceRepository(db)
	c.MotdRepo = repository.NewMotdRepository(db)
	c.ChangeRequestRepo = repository.NewChangeRequestRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService

	c.AuditService = service.NewAuditService(c.AuditLogRepo, c.AuthzService)
	c.InventoryLedger = service.NewInventoryLedger(c.InventoryItemRepo,
		c.Config.Inventory.StockNamePatterns, c.Config.Inventory.StockUnitPatterns)
	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo, c.AuditService)
	c.ClientService = service.NewClientService(c.ClientRepo, c.AuditService, c.AuthzService)
	c.WorkOrderService = service.NewWorkOrderService(c.WorkOrderRepo, c.DeliveryEventRepo,
		c.ClientRepo, c.InventoryLedger, c.AuditService, c.AuthzService)
	c.InventoryService = service.NewInventoryService(c.InventoryItemRepo, c.AuditService, c.AuthzService)
	c.DeliveryEventService = service.NewDeliveryEventService(c.DeliveryEventRepo, c.AuthzService)
	c.InvoiceService = service.NewInvoiceService(c.Config, c.InvoiceRepo, c.WorkOrderRepo, c.AuditService, c.AuthzService)
	c.MotdService = service.NewMotdService(c.MotdRepo, c.AuditService, c.AuthzService)
	c.ChangeRequestService = service.NewChangeRequestService(c.ChangeRequestRepo, c.AuditService, c.AuthzService)
}
