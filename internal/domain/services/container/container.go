package container

import (
	"sync"

	"gorm.io/gorm"

	"github.com/axxaxinx/user-management-final-123/internal/domain/policy"
	"github.com/axxaxinx/user-management-final-123/internal/domain/services"
	"github.com/axxaxinx/user-management-final-123/internal/infrastructure/config"
	"github.com/axxaxinx/user-management-final-123/internal/infrastructure/database"
)

// Dependencies are the external adapters. Nil fields get a default built from config.
type Dependencies struct {
	Mailer   services.InterfaceMailService
	Notifier services.InterfaceNotifierService
	Redis    services.InterfaceRedisService
	Policy   *policy.Policy
}

// ServiceContainer 管理所有服务的依赖注入
type ServiceContainer struct {
	pool   *database.ConnectionPool
	db     *gorm.DB
	config *config.Config
	policy *policy.Policy

	// 外部适配器
	mailService     services.InterfaceMailService
	notifierService services.InterfaceNotifierService
	redisService    services.InterfaceRedisService

	// 业务服务
	jwtService        services.InterfaceJWTService
	accountService    services.InterfaceAccountService
	employeeService   services.InterfaceEmployeeService
	departmentService services.InterfaceDepartmentService
	requestService    services.InterfaceRequestService
	workflowService   services.InterfaceWorkflowService

	mu sync.RWMutex
}

// NewServiceContainer 创建新的服务容器
func NewServiceContainer(pool *database.ConnectionPool, cfg *config.Config, deps Dependencies) *ServiceContainer {
	if pool == nil || pool.DB == nil {
		panic("数据库连接为空")
	}
	if cfg == nil {
		panic("配置为空")
	}

	c := &ServiceContainer{
		pool:            pool,
		db:              pool.DB,
		config:          cfg,
		policy:          deps.Policy,
		mailService:     deps.Mailer,
		notifierService: deps.Notifier,
		redisService:    deps.Redis,
	}
	c.initializeServices()
	return c
}

// initializeServices 初始化所有服务
func (c *ServiceContainer) initializeServices() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.policy == nil {
		c.policy = policy.Default()
	}
	if c.mailService == nil {
		c.mailService = services.NewMailService(c.config)
	}
	if c.notifierService == nil {
		c.notifierService = services.NewNotifierService(c.config)
	}

	c.jwtService = services.NewJWTService(c.config)
	c.accountService = services.NewAccountService(c.db, c.config, c.jwtService, c.mailService)
	c.employeeService = services.NewEmployeeService(c.db, c.notifierService)
	c.departmentService = services.NewDepartmentService(c.db, c.notifierService)
	c.requestService = services.NewRequestService(c.db, c.notifierService)
	c.workflowService = services.NewWorkflowService(c.db, c.notifierService)
}

// GetService 获取指定名称的服务
func (c *ServiceContainer) GetService(name string) interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch name {
	case "config":
		return c.config
	case "db":
		return c.db
	case "pool":
		return c.pool
	case "policy":
		return c.policy
	case "jwt":
		return c.jwtService
	case "account":
		return c.accountService
	case "employee":
		return c.employeeService
	case "department":
		return c.departmentService
	case "request":
		return c.requestService
	case "workflow":
		return c.workflowService
	case "mail":
		return c.mailService
	case "notifier":
		return c.notifierService
	case "redis":
		return c.redisService
	default:
		return nil
	}
}

// GetDB 获取数据库连接
func (c *ServiceContainer) GetDB() *gorm.DB {
	return c.db
}

// GetPool 获取连接池
func (c *ServiceContainer) GetPool() *database.ConnectionPool {
	return c.pool
}

// GetConfig 获取配置
func (c *ServiceContainer) GetConfig() *config.Config {
	return c.config
}

// Close 释放外部连接
func (c *ServiceContainer) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.notifierService != nil {
		c.notifierService.Close()
	}
	if c.redisService != nil {
		_ = c.redisService.Close()
	}
}
