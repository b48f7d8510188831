package models

import "time"

type Role string

const (
	RoleAdmin Role = "Admin"
	RoleUser  Role = "User"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// Account is a login identity. Deleting it removes its refresh tokens and
// detaches any linked employee.
type Account struct {
	BaseModel
	Title             string     `gorm:"type:varchar(20)" json:"title"`
	FirstName         string     `gorm:"type:varchar(100);not null" json:"firstName"`
	LastName          string     `gorm:"type:varchar(100);not null" json:"lastName"`
	Email             string     `gorm:"type:varchar(191);uniqueIndex;not null" json:"email"`
	PasswordHash      string     `gorm:"type:varchar(255);not null" json:"-"`
	Role              Role       `gorm:"type:varchar(20);not null;default:'User'" json:"role"`
	AcceptTerms       bool       `json:"acceptTerms"`
	VerificationToken *string    `gorm:"type:varchar(191);index" json:"-"`
	Verified          *time.Time `json:"verified,omitempty"`
	ResetToken        *string    `gorm:"type:varchar(191);index" json:"-"`
	ResetTokenExpires *time.Time `json:"-"`
	PasswordReset     *time.Time `json:"-"`

	RefreshTokens []RefreshToken `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE" json:"-"`
}

// IsVerified 邮箱验证或通过重置密码完成验证
func (a *Account) IsVerified() bool {
	return a.Verified != nil || a.PasswordReset != nil
}

func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}
