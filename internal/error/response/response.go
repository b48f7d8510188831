package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/axxaxinx/user-management-final-123/internal/error/apperror"
	"github.com/axxaxinx/user-management-final-123/internal/error/code"
	"github.com/axxaxinx/user-management-final-123/pkg/logger"
)

// Response 定义统一的响应格式
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// kindCodes 错误类型对应的默认错误码
var kindCodes = map[apperror.Kind]int{
	apperror.KindValidation:   code.ErrValidation,
	apperror.KindUnauthorized: code.ErrTokenInvalid,
	apperror.KindForbidden:    code.ErrUnauthorized,
	apperror.KindNotFound:     code.ErrNotFound,
	apperror.KindInvalidState: code.ErrInvalidState,
	apperror.KindConflict:     code.ErrConflict,
	apperror.KindInternal:     code.ErrUnknown,
}

// kindStatus 错误类型对应的HTTP状态码, Forbidden 与原接口保持一致返回 401
var kindStatus = map[apperror.Kind]int{
	apperror.KindValidation:   http.StatusBadRequest,
	apperror.KindUnauthorized: http.StatusUnauthorized,
	apperror.KindForbidden:    http.StatusUnauthorized,
	apperror.KindNotFound:     http.StatusNotFound,
	apperror.KindInvalidState: http.StatusBadRequest,
	apperror.KindConflict:     http.StatusConflict,
	apperror.KindInternal:     http.StatusInternalServerError,
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    code.ErrSuccess,
		Message: code.GetMessage(code.ErrSuccess),
		Data:    data,
	})
}

// Created 创建成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    code.ErrSuccess,
		Message: code.GetMessage(code.ErrSuccess),
		Data:    data,
	})
}

// Message 成功响应（自定义消息）
func Message(c *gin.Context, message string) {
	c.JSON(http.StatusOK, Response{
		Code:    code.ErrSuccess,
		Message: message,
	})
}

// Fail 失败响应
func Fail(c *gin.Context, errorCode int, data interface{}) {
	c.JSON(code.GetStatus(errorCode), Response{
		Code:    errorCode,
		Message: code.GetMessage(errorCode),
		Data:    data,
	})
}

// FailWithMessage 失败响应（自定义消息）
func FailWithMessage(c *gin.Context, errorCode int, message string, data interface{}) {
	c.JSON(code.GetStatus(errorCode), Response{
		Code:    errorCode,
		Message: message,
		Data:    data,
	})
}

// ParamError 参数错误响应
func ParamError(c *gin.Context, message string) {
	FailWithMessage(c, code.ErrValidation, message, nil)
}

// BindError 请求体绑定或校验失败
func BindError(c *gin.Context, err error) {
	FailWithMessage(c, code.ErrBind, "Validation error: "+err.Error(), nil)
}

// NotFound 资源不存在响应
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = code.GetMessage(code.ErrNotFound)
	}
	FailWithMessage(c, code.ErrNotFound, message, nil)
}

// Unauthorized 未授权响应
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = code.GetMessage(code.ErrTokenInvalid)
	}
	FailWithMessage(c, code.ErrTokenInvalid, message, nil)
}

// Error 将业务错误转换为响应, 非业务错误按 500 处理
func Error(c *gin.Context, err error) {
	var appErr *apperror.Error
	if errors.As(err, &appErr) && appErr.Kind != apperror.KindInternal {
		errorCode := appErr.Code
		if errorCode == 0 {
			errorCode = kindCodes[appErr.Kind]
		}
		c.JSON(kindStatus[appErr.Kind], Response{
			Code:    errorCode,
			Message: appErr.Message,
		})
		return
	}

	logger.L().Error().Err(err).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Msg("request failed")

	// release 模式下不向客户端暴露内部错误
	var data interface{}
	if gin.Mode() != gin.ReleaseMode {
		data = gin.H{"error": err.Error()}
	}
	c.JSON(http.StatusInternalServerError, Response{
		Code:    code.ErrUnknown,
		Message: code.GetMessage(code.ErrUnknown),
		Data:    data,
	})
}
