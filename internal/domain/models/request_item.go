package models

type RequestItem struct {
	BaseModel
	RequestID uint   `gorm:"not null;index" json:"requestId"`
	Name      string `gorm:"type:varchar(255);not null" json:"name"`
	Quantity  int    `gorm:"not null;default:1" json:"quantity"`
	Details   string `gorm:"type:text" json:"details"`
}
