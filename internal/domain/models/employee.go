package models

import "time"

type EmployeeStatus string

const (
	EmployeeActive     EmployeeStatus = "Active"
	EmployeeInactive   EmployeeStatus = "Inactive"
	EmployeeOnLeave    EmployeeStatus = "OnLeave"
	EmployeeTerminated EmployeeStatus = "Terminated"
)

func (s EmployeeStatus) Valid() bool {
	switch s {
	case EmployeeActive, EmployeeInactive, EmployeeOnLeave, EmployeeTerminated:
		return true
	}
	return false
}

// Employee links an account to a department and a reporting line.
type Employee struct {
	BaseModel
	EmployeeCode string         `gorm:"column:employee_code;type:varchar(50);uniqueIndex;not null" json:"employeeId"`
	AccountID    *uint          `gorm:"uniqueIndex" json:"accountId"`
	DepartmentID *uint          `gorm:"index" json:"departmentId"`
	Position     string         `gorm:"type:varchar(100);not null" json:"position"`
	JobTitle     string         `gorm:"type:varchar(100)" json:"jobTitle"`
	HireDate     *time.Time     `json:"hireDate"`
	Status       EmployeeStatus `gorm:"type:varchar(20);not null;default:'Active'" json:"status"`
	ReportingTo  *uint          `gorm:"index" json:"reportingTo"`

	Account    *Account    `gorm:"foreignKey:AccountID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"account,omitempty"`
	Department *Department `gorm:"foreignKey:DepartmentID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"department,omitempty"`
	Manager    *Employee   `gorm:"foreignKey:ReportingTo;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"manager,omitempty"`
}
