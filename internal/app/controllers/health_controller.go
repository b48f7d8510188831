package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/axxaxinx/user-management-final-123/internal/domain/services/container"
	"github.com/axxaxinx/user-management-final-123/internal/error/code"
	"github.com/axxaxinx/user-management-final-123/internal/error/response"
)

// HealthController 健康检查控制器
type HealthController struct {
	baseController
}

// NewHealthController 创建健康检查控制器实例
func NewHealthController(ctx *gin.Context, container *container.ServiceContainer) *HealthController {
	return &HealthController{baseController{Ctx: ctx, Container: container}}
}

// Health 健康检查端点
// @Summary      Health check
// @Description  Reports service liveness and database connection pool statistics
// @Tags         Health
// @Produce      json
// @Success      200  {object}  SuccessResponse
// @Failure      503  {object}  ErrorResponse
// @Router       /health [get]
func (h *HealthController) Health() {
	pool := h.Container.GetPool()
	if err := pool.HealthCheck(h.Ctx.Request.Context()); err != nil {
		h.Ctx.JSON(http.StatusServiceUnavailable, response.Response{
			Code:    code.ErrDatabase,
			Message: code.GetMessage(code.ErrDatabase),
			Data:    gin.H{"status": "unhealthy"},
		})
		return
	}

	stats, err := pool.Stats()
	if err != nil {
		response.Error(h.Ctx, err)
		return
	}
	response.Success(h.Ctx, gin.H{
		"status":   "healthy",
		"database": stats,
	})
}

// HandleHealthFunc 返回一个处理健康检查请求的Gin处理函数
func HandleHealthFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewHealthController(ctx, container)

		switch method {
		case "health":
			controller.Health()
		default:
			invalidMethod(ctx)
		}
	}
}
