package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/axxaxinx/user-management-final-123/docs"
	"github.com/axxaxinx/user-management-final-123/internal/app/controllers"
	"github.com/axxaxinx/user-management-final-123/internal/app/middleware"
	"github.com/axxaxinx/user-management-final-123/internal/domain/policy"
	"github.com/axxaxinx/user-management-final-123/internal/domain/services"
	"github.com/axxaxinx/user-management-final-123/internal/domain/services/container"
)

// SetupRouter 初始化并返回配置好的路由
func SetupRouter(sc *container.ServiceContainer) *gin.Engine {
	cfg := sc.GetConfig()

	r := gin.New()
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// 添加 Swagger 文档路由
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/health", controllers.HandleHealthFunc(sc, "health"))

	// Redis 可用时部门列表缓存放在 Redis, 否则放在内存中
	var store middleware.CacheStore = middleware.NewMemoryStore()
	if redis, ok := sc.GetService("redis").(services.InterfaceRedisService); ok && redis != nil {
		store = middleware.NewRedisStore(redis)
	}
	cache := middleware.NewResponseCache(store, cfg.CacheTTL)

	auth := middleware.Authenticate(sc)

	registerAccountRoutes(r, sc, auth)
	registerEmployeeRoutes(r, sc, auth, cache)
	registerDepartmentRoutes(r, sc, auth, cache)
	registerWorkflowRoutes(r, sc, auth)
	registerRequestRoutes(r, sc, auth)

	return r
}

// registerAccountRoutes 账户路由, 登录注册等公共接口按IP和路径限流
func registerAccountRoutes(r *gin.Engine, sc *container.ServiceContainer, auth gin.HandlerFunc) {
	limiter := middleware.CombinedRateLimiter(2, 10)
	permit := func(action policy.Action) gin.HandlerFunc { return middleware.Permit(sc, action) }

	accounts := r.Group("/accounts")
	accounts.POST("/authenticate", limiter, controllers.HandleAccountFunc(sc, "authenticate"))
	accounts.POST("/refresh-token", controllers.HandleAccountFunc(sc, "refreshToken"))
	accounts.POST("/register", limiter, controllers.HandleAccountFunc(sc, "register"))
	accounts.POST("/verify-email", controllers.HandleAccountFunc(sc, "verifyEmail"))
	accounts.POST("/forgot-password", limiter, controllers.HandleAccountFunc(sc, "forgotPassword"))
	accounts.POST("/validate-reset-token", controllers.HandleAccountFunc(sc, "validateResetToken"))
	accounts.POST("/reset-password", controllers.HandleAccountFunc(sc, "resetPassword"))

	accounts.POST("/revoke-token", auth, controllers.HandleAccountFunc(sc, "revokeToken"))
	accounts.GET("", auth, permit(policy.AccountList), controllers.HandleAccountFunc(sc, "getAll"))
	accounts.GET("/all", auth, controllers.HandleAccountFunc(sc, "directory"))
	accounts.GET("/:id", auth, controllers.HandleAccountFunc(sc, "getByID"))
	accounts.POST("", auth, permit(policy.AccountCreate), controllers.HandleAccountFunc(sc, "create"))
	accounts.PUT("/:id", auth, controllers.HandleAccountFunc(sc, "update"))
	accounts.DELETE("/:id", auth, controllers.HandleAccountFunc(sc, "delete"))
}

// registerEmployeeRoutes 员工路由, 写操作会改变部门人数, 需要清除部门缓存
func registerEmployeeRoutes(r *gin.Engine, sc *container.ServiceContainer, auth gin.HandlerFunc, cache *middleware.ResponseCache) {
	manage := middleware.Permit(sc, policy.EmployeeManage)
	purge := cache.PurgeOnSuccess("/departments")

	employees := r.Group("/employees", auth)
	employees.GET("", middleware.Permit(sc, policy.EmployeeList), controllers.HandleEmployeeFunc(sc, "getAll"))
	employees.GET("/me", controllers.HandleEmployeeFunc(sc, "me"))
	employees.GET("/:id", controllers.HandleEmployeeFunc(sc, "getByID"))
	employees.GET("/:id/subordinates", controllers.HandleEmployeeFunc(sc, "subordinates"))
	employees.POST("", manage, purge, controllers.HandleEmployeeFunc(sc, "create"))
	employees.PUT("/:id", manage, purge, controllers.HandleEmployeeFunc(sc, "update"))
	employees.POST("/:id/transfer", manage, purge, controllers.HandleEmployeeFunc(sc, "transfer"))
	employees.DELETE("/:id", manage, purge, controllers.HandleEmployeeFunc(sc, "delete"))
}

// registerDepartmentRoutes 部门路由
func registerDepartmentRoutes(r *gin.Engine, sc *container.ServiceContainer, auth gin.HandlerFunc, cache *middleware.ResponseCache) {
	manage := middleware.Permit(sc, policy.DepartmentManage)
	purge := cache.PurgeOnSuccess("/departments")

	departments := r.Group("/departments", auth)
	departments.GET("", cache.Middleware(), controllers.HandleDepartmentFunc(sc, "getAll"))
	departments.GET("/:id", cache.Middleware(), controllers.HandleDepartmentFunc(sc, "getByID"))
	departments.POST("", manage, purge, controllers.HandleDepartmentFunc(sc, "create"))
	departments.PUT("/:id", manage, purge, controllers.HandleDepartmentFunc(sc, "update"))
	departments.DELETE("/:id", manage, purge, controllers.HandleDepartmentFunc(sc, "delete"))
}

// registerWorkflowRoutes 工作流路由
func registerWorkflowRoutes(r *gin.Engine, sc *container.ServiceContainer, auth gin.HandlerFunc) {
	manage := middleware.Permit(sc, policy.WorkflowManage)

	workflows := r.Group("/workflows", auth)
	workflows.GET("", middleware.Permit(sc, policy.WorkflowList), controllers.HandleWorkflowFunc(sc, "getAll"))
	workflows.GET("/employee/:employeeId", controllers.HandleWorkflowFunc(sc, "getByEmployee"))
	workflows.GET("/:id", controllers.HandleWorkflowFunc(sc, "getByID"))
	workflows.POST("", manage, controllers.HandleWorkflowFunc(sc, "create"))
	workflows.PUT("/:id/status", manage, controllers.HandleWorkflowFunc(sc, "updateStatus"))
}

// registerRequestRoutes 员工申请路由, 资源级权限在控制器中检查
func registerRequestRoutes(r *gin.Engine, sc *container.ServiceContainer, auth gin.HandlerFunc) {
	requests := r.Group("/requests", auth)
	requests.POST("", controllers.HandleRequestFunc(sc, "create"))
	requests.GET("", middleware.Permit(sc, policy.RequestList), controllers.HandleRequestFunc(sc, "getAll"))
	requests.GET("/my-requests", controllers.HandleRequestFunc(sc, "mine"))
	requests.GET("/employee/:employeeId", controllers.HandleRequestFunc(sc, "getByEmployee"))
	requests.GET("/:id", controllers.HandleRequestFunc(sc, "getByID"))
	requests.GET("/:id/workflows", controllers.HandleRequestFunc(sc, "workflows"))
	requests.PUT("/:id", controllers.HandleRequestFunc(sc, "update"))
	requests.PUT("/:id/status", controllers.HandleRequestFunc(sc, "setStatus"))
	requests.DELETE("/:id", controllers.HandleRequestFunc(sc, "delete"))
	requests.POST("/:id/items", controllers.HandleRequestFunc(sc, "addItem"))
	requests.DELETE("/:id/items/:itemId", controllers.HandleRequestFunc(sc, "deleteItem"))
}
