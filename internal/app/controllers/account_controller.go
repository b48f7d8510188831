package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/axxaxinx/user-management-final-123/internal/domain/models"
	"github.com/axxaxinx/user-management-final-123/internal/domain/policy"
	"github.com/axxaxinx/user-management-final-123/internal/domain/services"
	"github.com/axxaxinx/user-management-final-123/internal/domain/services/container"
	"github.com/axxaxinx/user-management-final-123/internal/error/response"
)

// RefreshTokenCookie 刷新令牌cookie名称
const RefreshTokenCookie = "refreshToken"

// AccountController 处理账户相关的请求
type AccountController struct {
	baseController
}

// NewAccountController 创建一个新的账户控制器
func NewAccountController(ctx *gin.Context, container *container.ServiceContainer) *AccountController {
	return &AccountController{baseController{Ctx: ctx, Container: container}}
}

// AuthenticateRequest 登录请求
type AuthenticateRequest struct {
	Email    string `json:"email" binding:"required,email" example:"admin@example.com"`
	Password string `json:"password" binding:"required" example:"admin123"`
}

// AuthResponse 登录成功后返回账户信息和访问令牌
type AuthResponse struct {
	*models.Account
	IsVerified bool      `json:"isVerified"`
	JWTToken   string    `json:"jwtToken" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// TokenRequest 携带令牌的请求
type TokenRequest struct {
	Token string `json:"token"`
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Title           string `json:"title" example:"Mr"`
	FirstName       string `json:"firstName" binding:"required" example:"Jane"`
	LastName        string `json:"lastName" binding:"required" example:"Doe"`
	Email           string `json:"email" binding:"required,email" example:"jane@example.com"`
	Password        string `json:"password" binding:"required,min=6" example:"secret123"`
	ConfirmPassword string `json:"confirmPassword" binding:"required,eqfield=Password" example:"secret123"`
	AcceptTerms     bool   `json:"acceptTerms" binding:"required" example:"true"`
}

// VerifyEmailRequest 邮箱验证请求
type VerifyEmailRequest struct {
	Token string `json:"token" binding:"required"`
}

// ForgotPasswordRequest 忘记密码请求
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email" example:"jane@example.com"`
}

// ResetPasswordRequest 重置密码请求
type ResetPasswordRequest struct {
	Token           string `json:"token" binding:"required"`
	Password        string `json:"password" binding:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" binding:"required,eqfield=Password"`
}

// CreateAccountRequest 管理员创建账户请求
type CreateAccountRequest struct {
	Title           string      `json:"title" example:"Ms"`
	FirstName       string      `json:"firstName" binding:"required" example:"Ann"`
	LastName        string      `json:"lastName" binding:"required" example:"Lee"`
	Email           string      `json:"email" binding:"required,email" example:"ann@example.com"`
	Password        string      `json:"password" binding:"required,min=6" example:"secret123"`
	ConfirmPassword string      `json:"confirmPassword" binding:"required,eqfield=Password" example:"secret123"`
	Role            models.Role `json:"role" binding:"required,oneof=Admin User" example:"User"`
}

// UpdateAccountRequest 更新账户请求, 未提供的字段保持不变
type UpdateAccountRequest struct {
	Title           *string      `json:"title"`
	FirstName       *string      `json:"firstName" binding:"omitempty,min=1"`
	LastName        *string      `json:"lastName" binding:"omitempty,min=1"`
	Email           *string      `json:"email" binding:"omitempty,email"`
	Password        *string      `json:"password" binding:"omitempty,min=6"`
	ConfirmPassword *string      `json:"confirmPassword"`
	Role            *models.Role `json:"role" binding:"omitempty,oneof=Admin User"`
}

func (a *AccountController) service() services.InterfaceAccountService {
	return a.Container.GetService("account").(services.InterfaceAccountService)
}

func (a *AccountController) setTokenCookie(token string, expires time.Time) {
	secure := a.Container.GetConfig().IsProduction()
	a.Ctx.SetSameSite(http.SameSiteLaxMode)
	a.Ctx.SetCookie(RefreshTokenCookie, token, int(time.Until(expires).Seconds()), "/", "", secure, true)
}

func (a *AccountController) respondAuth(res *services.AuthResult) {
	a.setTokenCookie(res.RefreshToken, res.RefreshExpires)
	response.Success(a.Ctx, AuthResponse{
		Account:    res.Account,
		IsVerified: res.Account.IsVerified(),
		JWTToken:   res.JWTToken,
		ExpiresAt:  res.ExpiresAt,
	})
}

// requestToken 优先读取请求体, 其次读取cookie
func (a *AccountController) requestToken() string {
	var req TokenRequest
	_ = a.Ctx.ShouldBindJSON(&req)
	if req.Token != "" {
		return req.Token
	}
	token, _ := a.Ctx.Cookie(RefreshTokenCookie)
	return token
}

// Authenticate 登录
// @Summary      Authenticate
// @Description  Exchanges email and password for a JWT and sets the refresh token cookie
// @Tags         Accounts
// @Accept       json
// @Produce      json
// @Param        request body AuthenticateRequest true "Credentials"
// @Success      200  {object}  SuccessResponse{data=AuthResponse}
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /accounts/authenticate [post]
func (a *AccountController) Authenticate() {
	var req AuthenticateRequest
	if !a.bind(&req) {
		return
	}
	res, err := a.service().Authenticate(a.Ctx.Request.Context(), req.Email, req.Password, a.Ctx.ClientIP())
	if err != nil {
		response.Error(a.Ctx, err)
		return
	}
	a.respondAuth(res)
}

// RefreshToken 刷新访问令牌
// @Summary      Refresh token
// @Description  Rotates the refresh token (cookie or body) and returns a new JWT
// @Tags         Accounts
// @Accept       json
// @Produce      json
// @Param        request body TokenRequest false "Refresh token when no cookie is sent"
// @Success      200  {object}  SuccessResponse{data=AuthResponse}
// @Failure      401  {object}  ErrorResponse
// @Router       /accounts/refresh-token [post]
func (a *AccountController) RefreshToken() {
	res, err := a.service().RefreshToken(a.Ctx.Request.Context(), a.requestToken(), a.Ctx.ClientIP())
	if err != nil {
		response.Error(a.Ctx, err)
		return
	}
	a.respondAuth(res)
}

// RevokeToken 撤销刷新令牌
// @Summary      Revoke token
// @Description  Revokes a refresh token. Users may only revoke their own tokens
// @Tags         Accounts
// @Accept       json
// @Produce      json
// @Param        request body TokenRequest false "Refresh token when no cookie is sent"
// @Success      200  {object}  MessageResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /accounts/revoke-token [post]
// @Security     BearerAuth
func (a *AccountController) RevokeToken() {
	token := a.requestToken()
	if token == "" {
		response.ParamError(a.Ctx, "Token is required")
		return
	}

	ctx := a.Ctx.Request.Context()
	rt, err := a.service().FindRefreshToken(ctx, token)
	if err != nil {
		response.Error(a.Ctx, err)
		return
	}
	if !a.authorize(policy.AccountRevoke, policy.Resource{OwnerAccountID: &rt.AccountID}) {
		return
	}
	if err := a.service().RevokeToken(ctx, token, a.Ctx.ClientIP()); err != nil {
		response.Error(a.Ctx, err)
		return
	}
	response.Message(a.Ctx, "Token revoked")
}

// Register 注册
// @Summary      Register
// @Description  Creates an account and sends a verification email. The first account becomes Admin
// @Tags         Accounts
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration"
// @Success      200  {object}  MessageResponse
// @Failure      400  {object}  ErrorResponse
// @Router       /accounts/register [post]
func (a *AccountController) Register() {
	var req RegisterRequest
	if !a.bind(&req) {
		return
	}
	err := a.service().Register(a.Ctx.Request.Context(), services.RegisterParams{
		Title:       req.Title,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Password:    req.Password,
		AcceptTerms: req.AcceptTerms,
	})
	if err != nil {
		response.Error(a.Ctx, err)
		return
	}
	response.Message(a.Ctx, "Registration successful, please check your email for verification instructions")
}

// VerifyEmail 验证邮箱
// @Summary      Verify email
// @Tags         Accounts
// @Accept       json
// @Produce      json
// @Param        request body VerifyEmailRequest true "Verification token"
// @Success      200  {object}  MessageResponse
// @Failure      400  {object}  ErrorResponse
// @Router       /accounts/verify-email [post]
func (a *AccountController) VerifyEmail() {
	var req VerifyEmailRequest
	if !a.bind(&req) {
		return
	}
	if err := a.service().VerifyEmail(a.Ctx.Request.Context(), req.Token); err != nil {
		response.Error(a.Ctx, err)
		return
	}
	response.Message(a.Ctx, "Verification successful, you can now login")
}

// ForgotPassword 忘记密码
// @Summary      Forgot password
// @Description  Sends a password reset email when the address is registered
// @Tags         Accounts
// @Accept       json
// @Produce      json
// @Param        request body ForgotPasswordRequest true "Email"
// @Success      200  {object}  MessageResponse
// @Failure      400  {object}  ErrorResponse
// @Router       /accounts/forgot-password [post]
func (a *AccountController) ForgotPassword() {
	var req ForgotPasswordRequest
	if !a.bind(&req) {
		return
	}
	if err := a.service().ForgotPassword(a.Ctx.Request.Context(), req.Email); err != nil {
		response.Error(a.Ctx, err)
		return
	}
	response.Message(a.Ctx, "Please check your email for password reset instructions")
}

// ValidateResetToken 校验重置令牌
// @Summary      Validate reset token
// @Tags         Accounts
// @Accept       json
// @Produce      json
// @Param        request body VerifyEmailRequest true "Reset token"
// @Success      200  {object}  MessageResponse
// @Failure      400  {object}  ErrorResponse
// @Router       /accounts/validate-reset-token [post]
func (a *AccountController) ValidateResetToken() {
	var req VerifyEmailRequest
	if !a.bind(&req) {
		return
	}
	if err := a.service().ValidateResetToken(a.Ctx.Request.Context(), req.Token); err != nil {
		response.Error(a.Ctx, err)
		return
	}
	response.Message(a.Ctx, "Token is valid")
}

// ResetPassword 重置密码
// @Summary      Reset password
// @Tags         Accounts
// @Accept       json
// @Produce      json
// @Param        request body ResetPasswordRequest true "Reset"
// @Success      200  {object}  MessageResponse
// @Failure      400  {object}  ErrorResponse
// @Router       /accounts/reset-password [post]
func (a *AccountController) ResetPassword() {
	var req ResetPasswordRequest
	if !a.bind(&req) {
		return
	}
	if err := a.service().ResetPassword(a.Ctx.Request.Context(), req.Token, req.Password); err != nil {
		response.Error(a.Ctx, err)
		return
	}
	response.Message(a.Ctx, "Password reset successful, you can now login")
}

// GetAll 获取所有账户
// @Summary      List accounts
// @Tags         Accounts
// @Produce      json
// @Success      200  {object}  SuccessResponse{data=[]models.Account}
// @Failure      401  {object}  ErrorResponse
// @Router       /accounts [get]
// @Security     BearerAuth
func (a *AccountController) GetAll() {
	accounts, err := a.service().GetAll(a.Ctx.Request.Context())
	if err != nil {
		response.Error(a.Ctx, err)
		return
	}
	response.Success(a.Ctx, accounts)
}

// Directory 账户名录
// @Summary      Account directory
// @Description  Names and emails of every account, visible to any signed-in user
// @Tags         Accounts
// @Produce      json
// @Success      200  {object}  SuccessResponse{data=[]services.AccountSummary}
// @Failure      401  {object}  ErrorResponse
// @Router       /accounts/all [get]
// @Security     BearerAuth
func (a *AccountController) Directory() {
	summaries, err := a.service().Directory(a.Ctx.Request.Context())
	if err != nil {
		response.Error(a.Ctx, err)
		return
	}
	response.Success(a.Ctx, summaries)
}

// GetByID 获取账户
// @Summary      Get account
// @Tags         Accounts
// @Produce      json
// @Param        id path int true "Account ID"
// @Success      200  {object}  SuccessResponse{data=models.Account}
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /accounts/{id} [get]
// @Security     BearerAuth
func (a *AccountController) GetByID() {
	id, ok := a.parseID("id")
	if !ok {
		return
	}
	if !a.authorize(policy.AccountView, policy.Resource{OwnerAccountID: &id}) {
		return
	}
	account, err := a.service().GetByID(a.Ctx.Request.Context(), id)
	if err != nil {
		response.Error(a.Ctx, err)
		return
	}
	response.Success(a.Ctx, account)
}

// Create 管理员创建账户
// @Summary      Create account
// @Tags         Accounts
// @Accept       json
// @Produce      json
// @Param        request body CreateAccountRequest true "Account"
// @Success      201  {object}  SuccessResponse{data=models.Account}
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /accounts [post]
// @Security     BearerAuth
func (a *AccountController) Create() {
	var req CreateAccountRequest
	if !a.bind(&req) {
		return
	}
	account, err := a.service().Create(a.Ctx.Request.Context(), services.CreateAccountParams{
		Title:     req.Title,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Role:      req.Role,
	})
	if err != nil {
		response.Error(a.Ctx, err)
		return
	}
	response.Created(a.Ctx, account)
}

// Update 更新账户
// @Summary      Update account
// @Description  Users may update their own account. Changing the role requires Admin
// @Tags         Accounts
// @Accept       json
// @Produce      json
// @Param        id path int true "Account ID"
// @Param        request body UpdateAccountRequest true "Fields to change"
// @Success      200  {object}  SuccessResponse{data=models.Account}
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /accounts/{id} [put]
// @Security     BearerAuth
func (a *AccountController) Update() {
	id, ok := a.parseID("id")
	if !ok {
		return
	}
	owner := policy.Resource{OwnerAccountID: &id}
	if !a.authorize(policy.AccountUpdate, owner) {
		return
	}

	var req UpdateAccountRequest
	if !a.bind(&req) {
		return
	}
	if req.Role != nil && !a.authorize(policy.AccountSetRole, owner) {
		return
	}
	if req.Password != nil && (req.ConfirmPassword == nil || *req.ConfirmPassword != *req.Password) {
		response.ParamError(a.Ctx, "Passwords must match")
		return
	}

	account, err := a.service().Update(a.Ctx.Request.Context(), id, services.UpdateAccountParams{
		Title:     req.Title,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Role:      req.Role,
	})
	if err != nil {
		response.Error(a.Ctx, err)
		return
	}
	response.Success(a.Ctx, account)
}

// Delete 删除账户
// @Summary      Delete account
// @Tags         Accounts
// @Produce      json
// @Param        id path int true "Account ID"
// @Success      200  {object}  MessageResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /accounts/{id} [delete]
// @Security     BearerAuth
func (a *AccountController) Delete() {
	id, ok := a.parseID("id")
	if !ok {
		return
	}
	if !a.authorize(policy.AccountDelete, policy.Resource{OwnerAccountID: &id}) {
		return
	}
	if err := a.service().Delete(a.Ctx.Request.Context(), id); err != nil {
		response.Error(a.Ctx, err)
		return
	}
	response.Message(a.Ctx, "Account deleted successfully")
}

// HandleAccountFunc 返回一个处理账户请求的Gin处理函数
func HandleAccountFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewAccountController(ctx, container)

		switch method {
		case "authenticate":
			controller.Authenticate()
		case "refreshToken":
			controller.RefreshToken()
		case "revokeToken":
			controller.RevokeToken()
		case "register":
			controller.Register()
		case "verifyEmail":
			controller.VerifyEmail()
		case "forgotPassword":
			controller.ForgotPassword()
		case "validateResetToken":
			controller.ValidateResetToken()
		case "resetPassword":
			controller.ResetPassword()
		case "getAll":
			controller.GetAll()
		case "directory":
			controller.Directory()
		case "getByID":
			controller.GetByID()
		case "create":
			controller.Create()
		case "update":
			controller.Update()
		case "delete":
			controller.Delete()
		default:
			invalidMethod(ctx)
		}
	}
}
