package models

type WorkflowType string

const (
	WorkflowOnboarding       WorkflowType = "Onboarding"
	WorkflowDepartmentChange WorkflowType = "DepartmentChange"
	WorkflowTermination      WorkflowType = "Termination"
	WorkflowEquipmentRequest WorkflowType = "EquipmentRequest"
	WorkflowLeaveRequest     WorkflowType = "LeaveRequest"
	WorkflowResourceRequest  WorkflowType = "ResourceRequest"
)

func (t WorkflowType) Valid() bool {
	switch t {
	case WorkflowOnboarding, WorkflowDepartmentChange, WorkflowTermination,
		WorkflowEquipmentRequest, WorkflowLeaveRequest, WorkflowResourceRequest:
		return true
	}
	return false
}

// Workflow is an append-only audit row. Request status changes add rows and
// never edit earlier ones.
type Workflow struct {
	BaseModel
	Type       WorkflowType `gorm:"type:varchar(30);not null;index" json:"type"`
	Status     Status       `gorm:"type:varchar(20);not null;default:'Pending'" json:"status"`
	Details    string       `gorm:"type:text" json:"details"`
	EmployeeID *uint        `gorm:"index" json:"employeeId"`
	RequestID  *uint        `gorm:"index" json:"requestId"`

	Employee *Employee `gorm:"foreignKey:EmployeeID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"employee,omitempty"`
	Request  *Request  `gorm:"foreignKey:RequestID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
