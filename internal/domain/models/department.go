package models

type Department struct {
	BaseModel
	Name        string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`

	// 统计字段, 不入库
	EmployeeCount int64 `gorm:"-" json:"employeeCount"`
}
