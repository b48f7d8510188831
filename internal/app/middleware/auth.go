package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/axxaxinx/user-management-final-123/internal/domain/models"
	"github.com/axxaxinx/user-management-final-123/internal/domain/policy"
	"github.com/axxaxinx/user-management-final-123/internal/domain/services"
	"github.com/axxaxinx/user-management-final-123/internal/domain/services/container"
	"github.com/axxaxinx/user-management-final-123/internal/error/response"
	applog "github.com/axxaxinx/user-management-final-123/pkg/logger"
)

// 上下文键
const (
	ContextAccountID  = "accountID"
	ContextRole       = "role"
	ContextEmployeeID = "employeeID"
	ContextSubject    = "subject"
)

// extractToken 从授权头中提取token
func extractToken(authHeader string) string {
	// 检查并移除 "Bearer " 前缀
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}

// Authenticate 验证访问令牌, 并从数据库重新加载账户角色和员工档案
func Authenticate(sc *container.ServiceContainer) gin.HandlerFunc {
	jwtService := sc.GetService("jwt").(services.InterfaceJWTService)
	db := sc.GetDB()

	return func(c *gin.Context) {
		tokenString := extractToken(c.GetHeader("Authorization"))
		if tokenString == "" {
			response.Unauthorized(c, "Unauthorized")
			c.Abort()
			return
		}

		claims, err := jwtService.ValidateToken(tokenString)
		if err != nil {
			response.Unauthorized(c, "Unauthorized")
			c.Abort()
			return
		}

		// 账户被删除或角色变化立即生效
		var account models.Account
		err = db.WithContext(c.Request.Context()).Select("id", "role").First(&account, claims.AccountID).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				applog.Error("load account %d: %v", claims.AccountID, err)
			}
			response.Unauthorized(c, "Unauthorized")
			c.Abort()
			return
		}

		var employeeIDs []uint
		if err := db.WithContext(c.Request.Context()).Model(&models.Employee{}).
			Where("account_id = ?", account.ID).
			Limit(1).
			Pluck("id", &employeeIDs).Error; err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		subject := policy.Subject{AccountID: account.ID, Role: account.Role}
		if len(employeeIDs) > 0 {
			subject.EmployeeID = &employeeIDs[0]
		}

		c.Set(ContextAccountID, subject.AccountID)
		c.Set(ContextRole, subject.Role)
		c.Set(ContextEmployeeID, subject.EmployeeID)
		c.Set(ContextSubject, subject)
		c.Next()
	}
}

// GetSubject 获取当前请求的调用者
func GetSubject(c *gin.Context) (policy.Subject, bool) {
	v, ok := c.Get(ContextSubject)
	if !ok {
		return policy.Subject{}, false
	}
	subject, ok := v.(policy.Subject)
	return subject, ok
}

// Permit 检查不针对具体资源的权限, 如列表接口
func Permit(sc *container.ServiceContainer, action policy.Action) gin.HandlerFunc {
	p := sc.GetService("policy").(*policy.Policy)

	return func(c *gin.Context) {
		subject, ok := GetSubject(c)
		if !ok {
			response.Unauthorized(c, "Unauthorized")
			c.Abort()
			return
		}
		if err := p.Check(subject, action, policy.Resource{}); err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}
