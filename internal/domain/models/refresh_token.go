package models

import "time"

type RefreshToken struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	AccountID       uint       `gorm:"not null;index" json:"accountId"`
	Token           string     `gorm:"type:varchar(191);uniqueIndex;not null" json:"-"`
	Expires         time.Time  `json:"expires"`
	CreatedAt       time.Time  `json:"createdAt"`
	CreatedByIP     string     `gorm:"type:varchar(45)" json:"createdByIp"`
	Revoked         *time.Time `json:"revoked,omitempty"`
	RevokedByIP     string     `gorm:"type:varchar(45)" json:"revokedByIp,omitempty"`
	ReplacedByToken string     `gorm:"type:varchar(191)" json:"-"`
}

func (t *RefreshToken) IsExpired(now time.Time) bool {
	return !now.Before(t.Expires)
}

// IsActive 未撤销且未过期
func (t *RefreshToken) IsActive(now time.Time) bool {
	return t.Revoked == nil && !t.IsExpired(now)
}
