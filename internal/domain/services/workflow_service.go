package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/axxaxinx/user-management-final-123/internal/domain/models"
	"github.com/axxaxinx/user-management-final-123/internal/error/apperror"
	"github.com/axxaxinx/user-management-final-123/internal/error/code"
)

// InterfaceWorkflowService defines the workflow service interface
type InterfaceWorkflowService interface {
	Create(ctx context.Context, params CreateWorkflowParams) (*models.Workflow, error)
	GetAll(ctx context.Context, filter WorkflowFilter) ([]models.Workflow, error)
	GetByID(ctx context.Context, id uint) (*models.Workflow, error)
	GetByEmployeeID(ctx context.Context, employeeID uint) ([]models.Workflow, error)
	GetByRequestID(ctx context.Context, requestID uint) ([]models.Workflow, error)
	UpdateStatus(ctx context.Context, id uint, status models.Status) (*models.Workflow, error)
}

type CreateWorkflowParams struct {
	Type       models.WorkflowType
	Status     models.Status
	Details    string
	EmployeeID *uint
}

type WorkflowFilter struct {
	Type       models.WorkflowType
	Status     models.Status
	EmployeeID *uint
}

// WorkflowService 提供工作流相关的服务
type WorkflowService struct {
	DB       *gorm.DB
	Notifier InterfaceNotifierService
}

// NewWorkflowService 创建一个新的工作流服务
func NewWorkflowService(db *gorm.DB, notifier InterfaceNotifierService) InterfaceWorkflowService {
	return &WorkflowService{DB: db, Notifier: notifier}
}

func workflowNotFound() error {
	return apperror.NotFound("Workflow not found").WithCode(code.ErrWorkflowNotFound)
}

// 1 Create 创建一条人事工作流(入职, 调岗, 离职等)
func (s *WorkflowService) Create(ctx context.Context, params CreateWorkflowParams) (*models.Workflow, error) {
	if !params.Type.Valid() {
		return nil, apperror.Validation("Invalid workflow type")
	}
	status := params.Status
	if status == "" {
		status = models.StatusPending
	}
	if !status.Valid() {
		return nil, apperror.Validation("Invalid workflow status")
	}
	if params.EmployeeID != nil {
		if err := employeeExists(s.DB.WithContext(ctx), *params.EmployeeID); err != nil {
			return nil, err
		}
	}

	wf := models.Workflow{
		Type:       params.Type,
		Status:     status,
		Details:    params.Details,
		EmployeeID: params.EmployeeID,
	}
	if err := s.DB.WithContext(ctx).Create(&wf).Error; err != nil {
		return nil, fmt.Errorf("create workflow: %w", err)
	}
	publishAll(ctx, s.Notifier, &wf)
	return &wf, nil
}

// 2 GetAll 获取工作流列表, 支持按类型, 状态和员工筛选
func (s *WorkflowService) GetAll(ctx context.Context, filter WorkflowFilter) ([]models.Workflow, error) {
	query := s.DB.WithContext(ctx).Model(&models.Workflow{})
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.EmployeeID != nil {
		query = query.Where("employee_id = ?", *filter.EmployeeID)
	}

	workflows := []models.Workflow{}
	if err := query.Order("created_at DESC, id DESC").Find(&workflows).Error; err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}
	return workflows, nil
}

// 3 GetByID 根据ID获取工作流
func (s *WorkflowService) GetByID(ctx context.Context, id uint) (*models.Workflow, error) {
	var wf models.Workflow
	if err := s.DB.WithContext(ctx).First(&wf, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, workflowNotFound()
		}
		return nil, fmt.Errorf("find workflow: %w", err)
	}
	return &wf, nil
}

// 4 GetByEmployeeID 获取某员工的全部工作流
func (s *WorkflowService) GetByEmployeeID(ctx context.Context, employeeID uint) ([]models.Workflow, error) {
	return s.GetAll(ctx, WorkflowFilter{EmployeeID: &employeeID})
}

// 5 GetByRequestID 获取某申请的审批历史, 按时间正序
func (s *WorkflowService) GetByRequestID(ctx context.Context, requestID uint) ([]models.Workflow, error) {
	workflows := []models.Workflow{}
	if err := s.DB.WithContext(ctx).Where("request_id = ?", requestID).
		Order("created_at, id").Find(&workflows).Error; err != nil {
		return nil, fmt.Errorf("list request workflows: %w", err)
	}
	return workflows, nil
}

// 6 UpdateStatus 更新人事工作流状态. 申请产生的记录只能追加, 不能修改
func (s *WorkflowService) UpdateStatus(ctx context.Context, id uint, status models.Status) (*models.Workflow, error) {
	if !status.Valid() {
		return nil, apperror.Validation("Invalid workflow status")
	}
	wf, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if wf.RequestID != nil {
		return nil, apperror.InvalidState("Request workflows are updated through their request")
	}
	if err := s.DB.WithContext(ctx).Model(wf).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("update workflow: %w", err)
	}
	wf.Status = status
	return wf, nil
}

func employeeExists(db *gorm.DB, id uint) error {
	var count int64
	if err := db.Model(&models.Employee{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("check employee: %w", err)
	}
	if count == 0 {
		return apperror.NotFound("Employee not found").WithCode(code.ErrEmployeeNotFound)
	}
	return nil
}
