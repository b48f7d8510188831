package models

type RequestType string

const (
	RequestEquipment RequestType = "Equipment"
	RequestLeave     RequestType = "Leave"
	RequestResources RequestType = "Resources"
)

func (t RequestType) Valid() bool {
	switch t {
	case RequestEquipment, RequestLeave, RequestResources:
		return true
	}
	return false
}

// WorkflowType maps a request type to the workflow type recorded for it.
func (t RequestType) WorkflowType() WorkflowType {
	switch t {
	case RequestEquipment:
		return WorkflowEquipmentRequest
	case RequestLeave:
		return WorkflowLeaveRequest
	default:
		return WorkflowResourceRequest
	}
}

// Status is shared by requests and workflows.
type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

type Request struct {
	BaseModel
	Type        RequestType `gorm:"type:varchar(20);not null" json:"type"`
	Status      Status      `gorm:"type:varchar(20);not null;default:'Pending'" json:"status"`
	Description string      `gorm:"type:text" json:"description"`
	EmployeeID  *uint       `gorm:"index" json:"employeeId"`

	Employee *Employee    `gorm:"foreignKey:EmployeeID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"employee,omitempty"`
	Items    []RequestItem `gorm:"foreignKey:RequestID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"items"`
}

func (r *Request) IsPending() bool {
	return r.Status == StatusPending
}
