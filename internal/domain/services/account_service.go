package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/axxaxinx/user-management-final-123/internal/domain/models"
	"github.com/axxaxinx/user-management-final-123/internal/error/apperror"
	"github.com/axxaxinx/user-management-final-123/internal/error/code"
	"github.com/axxaxinx/user-management-final-123/internal/infrastructure/config"
	"github.com/axxaxinx/user-management-final-123/internal/infrastructure/database"
	applog "github.com/axxaxinx/user-management-final-123/pkg/logger"
	"github.com/axxaxinx/user-management-final-123/pkg/utils"
)

const resetTokenTTL = 24 * time.Hour

// InterfaceAccountService defines the account service interface
type InterfaceAccountService interface {
	Authenticate(ctx context.Context, email, password, ip string) (*AuthResult, error)
	RefreshToken(ctx context.Context, token, ip string) (*AuthResult, error)
	FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error)
	RevokeToken(ctx context.Context, token, ip string) error
	Register(ctx context.Context, params RegisterParams) error
	VerifyEmail(ctx context.Context, token string) error
	ForgotPassword(ctx context.Context, email string) error
	ValidateResetToken(ctx context.Context, token string) error
	ResetPassword(ctx context.Context, token, password string) error
	GetAll(ctx context.Context) ([]models.Account, error)
	Directory(ctx context.Context) ([]AccountSummary, error)
	GetByID(ctx context.Context, id uint) (*models.Account, error)
	Create(ctx context.Context, params CreateAccountParams) (*models.Account, error)
	Update(ctx context.Context, id uint, params UpdateAccountParams) (*models.Account, error)
	Delete(ctx context.Context, id uint) error
	EnsureAdmin(ctx context.Context, email, password string) (bool, error)
}

// AuthResult is returned by a successful login or refresh.
type AuthResult struct {
	Account        *models.Account `json:"account"`
	JWTToken       string          `json:"jwtToken"`
	ExpiresAt      time.Time       `json:"expiresAt"`
	RefreshToken   string          `json:"-"`
	RefreshExpires time.Time       `json:"-"`
}

// AccountSummary is the directory entry visible to every signed-in account.
type AccountSummary struct {
	ID        uint        `json:"id"`
	Title     string      `json:"title"`
	FirstName string      `json:"firstName"`
	LastName  string      `json:"lastName"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
}

type RegisterParams struct {
	Title       string
	FirstName   string
	LastName    string
	Email       string
	Password    string
	AcceptTerms bool
}

type CreateAccountParams struct {
	Title     string
	FirstName string
	LastName  string
	Email     string
	Password  string
	Role      models.Role
}

// UpdateAccountParams holds a partial update. Nil fields are left unchanged.
type UpdateAccountParams struct {
	Title     *string
	FirstName *string
	LastName  *string
	Email     *string
	Password  *string
	Role      *models.Role
}

// AccountService 提供账户相关的服务
type AccountService struct {
	DB     *gorm.DB
	Config *config.Config
	JWT    InterfaceJWTService
	Mailer InterfaceMailService
	now    func() time.Time
}

// NewAccountService 创建一个新的账户服务
func NewAccountService(db *gorm.DB, cfg *config.Config, jwtService InterfaceJWTService, mailer InterfaceMailService) InterfaceAccountService {
	return &AccountService{
		DB:     db,
		Config: cfg,
		JWT:    jwtService,
		Mailer: mailer,
		now:    time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func credentialsIncorrect() error {
	return apperror.Unauthorized("Email or password is incorrect").WithCode(code.ErrCredentialsIncorrect)
}

func invalidRefreshToken() error {
	return apperror.Unauthorized("Invalid token").WithCode(code.ErrRefreshTokenInvalid)
}

// 1 Authenticate 校验邮箱密码, 签发访问令牌和刷新令牌
func (s *AccountService) Authenticate(ctx context.Context, email, password, ip string) (*AuthResult, error) {
	var account models.Account
	err := s.DB.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, credentialsIncorrect()
	}
	if err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}
	if !account.IsVerified() || !utils.CheckPasswordHash(password, account.PasswordHash) {
		return nil, credentialsIncorrect()
	}

	refresh, err := s.newRefreshToken(account.ID, ip)
	if err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Create(refresh).Error; err != nil {
		return nil, fmt.Errorf("save refresh token: %w", err)
	}

	// 清理已过期的刷新令牌
	if err := s.DB.WithContext(ctx).
		Where("account_id = ? AND expires < ?", account.ID, s.now()).
		Delete(&models.RefreshToken{}).Error; err != nil {
		applog.Warning("remove expired refresh tokens of account %d: %v", account.ID, err)
	}

	return s.authResult(&account, refresh)
}

// 2 RefreshToken 轮换刷新令牌, 旧令牌被撤销并记录替换它的新令牌
func (s *AccountService) RefreshToken(ctx context.Context, token, ip string) (*AuthResult, error) {
	current, err := s.activeRefreshToken(ctx, token)
	if err != nil {
		return nil, err
	}

	var account models.Account
	if err := s.DB.WithContext(ctx).First(&account, current.AccountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalidRefreshToken()
		}
		return nil, fmt.Errorf("find account: %w", err)
	}

	next, err := s.newRefreshToken(account.ID, ip)
	if err != nil {
		return nil, err
	}

	now := s.now()
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 只有仍未撤销的令牌可以轮换, 并发刷新时只有一个成功
		result := tx.Model(&models.RefreshToken{}).
			Where("id = ? AND revoked IS NULL", current.ID).
			Updates(map[string]interface{}{
				"revoked":           now,
				"revoked_by_ip":     ip,
				"replaced_by_token": next.Token,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return invalidRefreshToken()
		}
		return tx.Create(next).Error
	})
	if apperror.Is(err, apperror.KindUnauthorized) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("rotate refresh token: %w", err)
	}

	return s.authResult(&account, next)
}

// 3 FindRefreshToken 查找一个仍然有效的刷新令牌
func (s *AccountService) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	return s.activeRefreshToken(ctx, token)
}

// 4 RevokeToken 撤销刷新令牌
func (s *AccountService) RevokeToken(ctx context.Context, token, ip string) error {
	current, err := s.activeRefreshToken(ctx, token)
	if err != nil {
		return err
	}
	if err := s.DB.WithContext(ctx).Model(current).Updates(map[string]interface{}{
		"revoked":       s.now(),
		"revoked_by_ip": ip,
	}).Error; err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

// 5 Register 注册新账户. 邮箱已存在时只发送提醒邮件, 不暴露账户是否存在
func (s *AccountService) Register(ctx context.Context, params RegisterParams) error {
	email := normalizeEmail(params.Email)

	var existing models.Account
	err := s.DB.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		s.sendAlreadyRegisteredEmail(email)
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("find account: %w", err)
	}

	hash, err := utils.HashPassword(params.Password)
	if err != nil {
		return apperror.Internal("hash password", err)
	}

	// 第一个注册的账户为管理员
	var total int64
	if err := s.DB.WithContext(ctx).Model(&models.Account{}).Count(&total).Error; err != nil {
		return fmt.Errorf("count accounts: %w", err)
	}
	role := models.RoleUser
	if total == 0 {
		role = models.RoleAdmin
	}

	token := uuid.NewString()
	account := models.Account{
		Title:             params.Title,
		FirstName:         params.FirstName,
		LastName:          params.LastName,
		Email:             email,
		PasswordHash:      hash,
		Role:              role,
		AcceptTerms:       params.AcceptTerms,
		VerificationToken: &token,
	}
	if err := s.DB.WithContext(ctx).Create(&account).Error; err != nil {
		if database.IsDuplicateKey(err) {
			s.sendAlreadyRegisteredEmail(email)
			return nil
		}
		return fmt.Errorf("create account: %w", err)
	}

	s.sendVerificationEmail(&account, token)
	return nil
}

// 6 VerifyEmail 使用验证令牌完成邮箱验证
func (s *AccountService) VerifyEmail(ctx context.Context, token string) error {
	var account models.Account
	if token == "" {
		return apperror.Validation("Verification failed").WithCode(code.ErrVerificationFailed)
	}
	err := s.DB.WithContext(ctx).Where("verification_token = ?", token).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.Validation("Verification failed").WithCode(code.ErrVerificationFailed)
	}
	if err != nil {
		return fmt.Errorf("find account: %w", err)
	}

	if err := s.DB.WithContext(ctx).Model(&account).Updates(map[string]interface{}{
		"verified":           s.now(),
		"verification_token": nil,
	}).Error; err != nil {
		return fmt.Errorf("verify account: %w", err)
	}
	return nil
}

// 7 ForgotPassword 生成24小时有效的重置令牌并发送邮件. 邮箱不存在时静默返回
func (s *AccountService) ForgotPassword(ctx context.Context, email string) error {
	var account models.Account
	err := s.DB.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("find account: %w", err)
	}

	token := uuid.NewString()
	expires := s.now().Add(resetTokenTTL)
	if err := s.DB.WithContext(ctx).Model(&account).Updates(map[string]interface{}{
		"reset_token":         token,
		"reset_token_expires": expires,
	}).Error; err != nil {
		return fmt.Errorf("save reset token: %w", err)
	}

	s.sendPasswordResetEmail(&account, token)
	return nil
}

// 8 ValidateResetToken 检查重置令牌是否存在且未过期
func (s *AccountService) ValidateResetToken(ctx context.Context, token string) error {
	_, err := s.accountByResetToken(ctx, token)
	return err
}

// 9 ResetPassword 重置密码, 同时视为完成邮箱验证
func (s *AccountService) ResetPassword(ctx context.Context, token, password string) error {
	account, err := s.accountByResetToken(ctx, token)
	if err != nil {
		return err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return apperror.Internal("hash password", err)
	}

	if err := s.DB.WithContext(ctx).Model(account).Updates(map[string]interface{}{
		"password_hash":       hash,
		"password_reset":      s.now(),
		"reset_token":         nil,
		"reset_token_expires": nil,
	}).Error; err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	return nil
}

// 10 GetAll 获取所有账户
func (s *AccountService) GetAll(ctx context.Context) ([]models.Account, error) {
	var accounts []models.Account
	if err := s.DB.WithContext(ctx).Order("id").Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

// 11 Directory 获取账户名录
func (s *AccountService) Directory(ctx context.Context) ([]AccountSummary, error) {
	summaries := []AccountSummary{}
	if err := s.DB.WithContext(ctx).Model(&models.Account{}).
		Select("id", "title", "first_name", "last_name", "email", "role").
		Order("last_name, first_name").
		Scan(&summaries).Error; err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return summaries, nil
}

// 12 GetByID 根据ID获取账户
func (s *AccountService) GetByID(ctx context.Context, id uint) (*models.Account, error) {
	var account models.Account
	if err := s.DB.WithContext(ctx).First(&account, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Account not found").WithCode(code.ErrAccountNotFound)
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return &account, nil
}

// 13 Create 管理员创建账户, 创建后直接视为已验证
func (s *AccountService) Create(ctx context.Context, params CreateAccountParams) (*models.Account, error) {
	email := normalizeEmail(params.Email)
	if err := s.ensureEmailFree(ctx, email, 0); err != nil {
		return nil, err
	}
	role := params.Role
	if role == "" {
		role = models.RoleUser
	}
	if !role.Valid() {
		return nil, apperror.Validation("Invalid role")
	}

	hash, err := utils.HashPassword(params.Password)
	if err != nil {
		return nil, apperror.Internal("hash password", err)
	}

	now := s.now()
	account := models.Account{
		Title:        params.Title,
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		AcceptTerms:  true,
		Verified:     &now,
	}
	if err := s.DB.WithContext(ctx).Create(&account).Error; err != nil {
		if database.IsDuplicateKey(err) {
			return nil, emailTaken(email)
		}
		return nil, fmt.Errorf("create account: %w", err)
	}
	return &account, nil
}

// 14 Update 更新账户信息
func (s *AccountService) Update(ctx context.Context, id uint, params UpdateAccountParams) (*models.Account, error) {
	account, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if params.Title != nil {
		updates["title"] = *params.Title
	}
	if params.FirstName != nil {
		updates["first_name"] = *params.FirstName
	}
	if params.LastName != nil {
		updates["last_name"] = *params.LastName
	}
	if params.Email != nil {
		email := normalizeEmail(*params.Email)
		if email != account.Email {
			if err := s.ensureEmailFree(ctx, email, id); err != nil {
				return nil, err
			}
			updates["email"] = email
		}
	}
	if params.Password != nil && *params.Password != "" {
		hash, err := utils.HashPassword(*params.Password)
		if err != nil {
			return nil, apperror.Internal("hash password", err)
		}
		updates["password_hash"] = hash
	}
	if params.Role != nil {
		if !params.Role.Valid() {
			return nil, apperror.Validation("Invalid role")
		}
		updates["role"] = *params.Role
	}

	if len(updates) > 0 {
		if err := s.DB.WithContext(ctx).Model(account).Updates(updates).Error; err != nil {
			if database.IsDuplicateKey(err) {
				return nil, emailTaken(*params.Email)
			}
			return nil, fmt.Errorf("update account: %w", err)
		}
	}
	return s.GetByID(ctx, id)
}

// 15 Delete 删除账户, 刷新令牌级联删除, 关联员工解除绑定
func (s *AccountService) Delete(ctx context.Context, id uint) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Employee{}).Where("account_id = ?", id).
			Update("account_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("account_id = ?", id).Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Account{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperror.NotFound("Account not found").WithCode(code.ErrAccountNotFound)
		}
		return nil
	})
	if err != nil && apperror.KindOf(err) == apperror.KindInternal {
		return fmt.Errorf("delete account: %w", err)
	}
	return err
}

// 16 EnsureAdmin 数据库中没有任何账户时创建默认管理员
func (s *AccountService) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	if email == "" || password == "" {
		return false, nil
	}

	var total int64
	if err := s.DB.WithContext(ctx).Model(&models.Account{}).Count(&total).Error; err != nil {
		return false, fmt.Errorf("count accounts: %w", err)
	}
	if total > 0 {
		return false, nil
	}

	if _, err := s.Create(ctx, CreateAccountParams{
		FirstName: "System",
		LastName:  "Administrator",
		Email:     email,
		Password:  password,
		Role:      models.RoleAdmin,
	}); err != nil {
		return false, err
	}
	applog.Info("default admin account created: %s", normalizeEmail(email))
	return true, nil
}

func (s *AccountService) newRefreshToken(accountID uint, ip string) (*models.RefreshToken, error) {
	token, err := utils.RandomToken(40)
	if err != nil {
		return nil, apperror.Internal("generate refresh token", err)
	}
	ttl := s.Config.RefreshTokenTTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	now := s.now()
	return &models.RefreshToken{
		AccountID:   accountID,
		Token:       token,
		Expires:     now.Add(ttl),
		CreatedAt:   now,
		CreatedByIP: ip,
	}, nil
}

func (s *AccountService) activeRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	if token == "" {
		return nil, invalidRefreshToken()
	}
	var rt models.RefreshToken
	err := s.DB.WithContext(ctx).Where("token = ?", token).First(&rt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, invalidRefreshToken()
	}
	if err != nil {
		return nil, fmt.Errorf("find refresh token: %w", err)
	}
	if !rt.IsActive(s.now()) {
		return nil, invalidRefreshToken()
	}
	return &rt, nil
}

func (s *AccountService) authResult(account *models.Account, refresh *models.RefreshToken) (*AuthResult, error) {
	jwtToken, expiresAt, err := s.JWT.GenerateToken(account)
	if err != nil {
		return nil, apperror.Internal("generate jwt", err)
	}
	return &AuthResult{
		Account:        account,
		JWTToken:       jwtToken,
		ExpiresAt:      expiresAt,
		RefreshToken:   refresh.Token,
		RefreshExpires: refresh.Expires,
	}, nil
}

func (s *AccountService) accountByResetToken(ctx context.Context, token string) (*models.Account, error) {
	invalid := apperror.Validation("Invalid token").WithCode(code.ErrResetTokenInvalid)
	if token == "" {
		return nil, invalid
	}
	var account models.Account
	err := s.DB.WithContext(ctx).
		Where("reset_token = ? AND reset_token_expires > ?", token, s.now()).
		First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, invalid
	}
	if err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}
	return &account, nil
}

func (s *AccountService) ensureEmailFree(ctx context.Context, email string, exceptID uint) error {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Account{}).
		Where("email = ? AND id <> ?", email, exceptID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if count > 0 {
		return emailTaken(email)
	}
	return nil
}

func emailTaken(email string) error {
	return apperror.Conflict(fmt.Sprintf("Email %q is already registered", email)).WithCode(code.ErrEmailAlreadyRegistered)
}

func (s *AccountService) sendVerificationEmail(account *models.Account, token string) {
	link := fmt.Sprintf("%s/account/verify-email?token=%s", strings.TrimRight(s.Config.AppBaseURL, "/"), token)
	body := fmt.Sprintf(`<h4>Verify Email</h4>
<p>Thanks for registering!</p>
<p>Please click the below link to verify your email address:</p>
<p><a href="%s">%s</a></p>`, link, link)
	s.send(account.Email, "Sign-up Verification - Verify Email", body)
}

func (s *AccountService) sendAlreadyRegisteredEmail(email string) {
	link := fmt.Sprintf("%s/account/forgot-password", strings.TrimRight(s.Config.AppBaseURL, "/"))
	body := fmt.Sprintf(`<h4>Email Already Registered</h4>
<p>Your email <strong>%s</strong> is already registered.</p>
<p>If you don't know your password please visit the <a href="%s">forgot password</a> page.</p>`, email, link)
	s.send(email, "Sign-up Verification - Email Already Registered", body)
}

func (s *AccountService) sendPasswordResetEmail(account *models.Account, token string) {
	link := fmt.Sprintf("%s/account/reset-password?token=%s", strings.TrimRight(s.Config.AppBaseURL, "/"), token)
	body := fmt.Sprintf(`<h4>Reset Password Email</h4>
<p>Please click the below link to reset your password, the link will be valid for 1 day:</p>
<p><a href="%s">%s</a></p>`, link, link)
	s.send(account.Email, "Sign-up Verification - Reset Password", body)
}

// 邮件发送失败不影响主流程
func (s *AccountService) send(to, subject, body string) {
	if s.Mailer == nil {
		return
	}
	if err := s.Mailer.Send(to, subject, body); err != nil {
		applog.Error("send %q to %s: %v", subject, to, err)
	}
}
