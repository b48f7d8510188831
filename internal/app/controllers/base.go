package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/axxaxinx/user-management-final-123/internal/app/middleware"
	"github.com/axxaxinx/user-management-final-123/internal/domain/policy"
	"github.com/axxaxinx/user-management-final-123/internal/domain/services/container"
	"github.com/axxaxinx/user-management-final-123/internal/error/apperror"
	"github.com/axxaxinx/user-management-final-123/internal/error/code"
	"github.com/axxaxinx/user-management-final-123/internal/error/response"
)

// ErrorResponse 表示错误响应
type ErrorResponse struct {
	Code    int         `json:"code" example:"100003"`
	Message string      `json:"message" example:"Validation error"`
	Data    interface{} `json:"data"`
}

// SuccessResponse 表示成功响应
type SuccessResponse struct {
	Code    int         `json:"code" example:"100000"`
	Message string      `json:"message" example:"Success"`
	Data    interface{} `json:"data"`
}

// MessageResponse 只有消息的成功响应
type MessageResponse struct {
	Code    int    `json:"code" example:"100000"`
	Message string `json:"message" example:"Registration successful"`
}

// baseController 所有控制器共用的上下文和依赖
type baseController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// parseID 解析路径中的数字ID
func (b *baseController) parseID(name string) (uint, bool) {
	id, err := strconv.ParseUint(b.Ctx.Param(name), 10, 32)
	if err != nil || id == 0 {
		response.ParamError(b.Ctx, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// subject 当前调用者, 由 Authenticate 中间件设置
func (b *baseController) subject() policy.Subject {
	s, _ := middleware.GetSubject(b.Ctx)
	return s
}

func (b *baseController) policy() *policy.Policy {
	return b.Container.GetService("policy").(*policy.Policy)
}

// authorize 检查权限, 不通过时写入错误响应
func (b *baseController) authorize(action policy.Action, res policy.Resource) bool {
	if err := b.policy().Check(b.subject(), action, res); err != nil {
		response.Error(b.Ctx, err)
		return false
	}
	return true
}

// bind 绑定并校验请求体
func (b *baseController) bind(obj interface{}) bool {
	if err := b.Ctx.ShouldBindJSON(obj); err != nil {
		response.BindError(b.Ctx, err)
		return false
	}
	return true
}

// parseDate 支持 YYYY-MM-DD 和 RFC3339
func parseDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, apperror.Validation("Invalid date: " + value).WithCode(code.ErrValidation)
	}
	return &t, nil
}

// invalidMethod 未知的控制器方法
func invalidMethod(ctx *gin.Context) {
	ctx.JSON(http.StatusBadRequest, ErrorResponse{
		Code:    code.ErrBind,
		Message: "Invalid method",
	})
}
