package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/axxaxinx/user-management-final-123/internal/domain/models"
	"github.com/axxaxinx/user-management-final-123/internal/error/apperror"
	"github.com/axxaxinx/user-management-final-123/internal/error/code"
)

// InterfaceRequestService defines the request service interface
type InterfaceRequestService interface {
	Create(ctx context.Context, employeeID uint, params CreateRequestParams) (*models.Request, error)
	GetAll(ctx context.Context) ([]models.Request, error)
	GetByID(ctx context.Context, id uint) (*models.Request, error)
	GetByEmployeeID(ctx context.Context, employeeID uint) ([]models.Request, error)
	Update(ctx context.Context, id uint, params UpdateRequestParams) (*models.Request, error)
	Delete(ctx context.Context, id uint) error
	AddItem(ctx context.Context, requestID uint, params RequestItemParams) (*models.RequestItem, error)
	DeleteItem(ctx context.Context, requestID, itemID uint) error
	Workflows(ctx context.Context, requestID uint) ([]models.Workflow, error)
}

type RequestItemParams struct {
	Name     string
	Quantity int
	Details  string
}

type CreateRequestParams struct {
	Type        models.RequestType
	Description string
	Items       []RequestItemParams
}

// UpdateRequestParams holds a partial update. Nil fields are left unchanged.
type UpdateRequestParams struct {
	Status      *models.Status
	Description *string
}

// RequestService 提供员工申请相关的服务
type RequestService struct {
	DB       *gorm.DB
	Notifier InterfaceNotifierService
}

// NewRequestService 创建一个新的申请服务
func NewRequestService(db *gorm.DB, notifier InterfaceNotifierService) InterfaceRequestService {
	return &RequestService{DB: db, Notifier: notifier}
}

func requestNotFound() error {
	return apperror.NotFound("Request not found").WithCode(code.ErrRequestNotFound)
}

func newRequestItem(requestID uint, params RequestItemParams) (models.RequestItem, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return models.RequestItem{}, apperror.Validation("Item name is required")
	}
	if params.Quantity < 1 {
		return models.RequestItem{}, apperror.Validation("Item quantity must be at least 1")
	}
	return models.RequestItem{
		RequestID: requestID,
		Name:      name,
		Quantity:  params.Quantity,
		Details:   params.Details,
	}, nil
}

// 1 Create 在一个事务中创建申请, 申请条目和一条待审批工作流
func (s *RequestService) Create(ctx context.Context, employeeID uint, params CreateRequestParams) (*models.Request, error) {
	if !params.Type.Valid() {
		return nil, apperror.Validation("Invalid request type")
	}
	items := make([]models.RequestItem, 0, len(params.Items))
	for _, p := range params.Items {
		item, err := newRequestItem(0, p)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := employeeExists(s.DB.WithContext(ctx), employeeID); err != nil {
		return nil, err
	}

	request := models.Request{
		Type:        params.Type,
		Status:      models.StatusPending,
		Description: params.Description,
		EmployeeID:  &employeeID,
	}
	var wf models.Workflow
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Create(&request).Error; err != nil {
			return err
		}
		if len(items) > 0 {
			for i := range items {
				items[i].RequestID = request.ID
			}
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		wf = models.Workflow{
			Type:       params.Type.WorkflowType(),
			Status:     models.StatusPending,
			Details:    fmt.Sprintf("New %s request created", params.Type),
			EmployeeID: &employeeID,
			RequestID:  &request.ID,
		}
		return tx.Create(&wf).Error
	})
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	publishAll(ctx, s.Notifier, &wf)

	return s.GetByID(ctx, request.ID)
}

// 2 GetAll 获取全部申请
func (s *RequestService) GetAll(ctx context.Context) ([]models.Request, error) {
	requests := []models.Request{}
	if err := s.DB.WithContext(ctx).
		Preload("Items").Preload("Employee").Preload("Employee.Account").
		Order("created_at DESC, id DESC").
		Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return requests, nil
}

// 3 GetByID 根据ID获取申请, 附带条目和申请人
func (s *RequestService) GetByID(ctx context.Context, id uint) (*models.Request, error) {
	var request models.Request
	err := s.DB.WithContext(ctx).
		Preload("Items").Preload("Employee").Preload("Employee.Account").
		First(&request, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, requestNotFound()
		}
		return nil, fmt.Errorf("find request: %w", err)
	}
	return &request, nil
}

// 4 GetByEmployeeID 获取某员工的全部申请
func (s *RequestService) GetByEmployeeID(ctx context.Context, employeeID uint) ([]models.Request, error) {
	requests := []models.Request{}
	if err := s.DB.WithContext(ctx).
		Preload("Items").
		Where("employee_id = ?", employeeID).
		Order("created_at DESC, id DESC").
		Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return requests, nil
}

// 5 Update 更新申请. 状态变化时追加一条工作流, 历史记录不修改
func (s *RequestService) Update(ctx context.Context, id uint, params UpdateRequestParams) (*models.Request, error) {
	request, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if params.Description != nil {
		updates["description"] = *params.Description
	}
	var wf *models.Workflow
	if params.Status != nil {
		if !params.Status.Valid() {
			return nil, apperror.Validation("Invalid request status")
		}
		updates["status"] = *params.Status
		wf = &models.Workflow{
			Type:       request.Type.WorkflowType(),
			Status:     *params.Status,
			Details:    fmt.Sprintf("Request %s", strings.ToLower(string(*params.Status))),
			EmployeeID: request.EmployeeID,
			RequestID:  &request.ID,
		}
	}
	if len(updates) == 0 {
		return request, nil
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Request{BaseModel: models.BaseModel{ID: id}}).Updates(updates).Error; err != nil {
			return err
		}
		if wf != nil {
			return tx.Create(wf).Error
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update request: %w", err)
	}
	if wf != nil {
		publishAll(ctx, s.Notifier, wf)
	}

	return s.GetByID(ctx, id)
}

// 6 Delete 在一个事务中删除申请的工作流, 条目和申请本身
func (s *RequestService) Delete(ctx context.Context, id uint) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("request_id = ?", id).Delete(&models.Workflow{}).Error; err != nil {
			return err
		}
		if err := tx.Where("request_id = ?", id).Delete(&models.RequestItem{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Request{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return requestNotFound()
		}
		return nil
	})
	if err != nil && apperror.KindOf(err) == apperror.KindInternal {
		return fmt.Errorf("delete request: %w", err)
	}
	return err
}

// 7 AddItem 为申请添加条目
func (s *RequestService) AddItem(ctx context.Context, requestID uint, params RequestItemParams) (*models.RequestItem, error) {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Request{}).Where("id = ?", requestID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check request: %w", err)
	}
	if count == 0 {
		return nil, requestNotFound()
	}

	item, err := newRequestItem(requestID, params)
	if err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, fmt.Errorf("create request item: %w", err)
	}
	return &item, nil
}

// 8 DeleteItem 删除申请条目, 条目必须属于该申请
func (s *RequestService) DeleteItem(ctx context.Context, requestID, itemID uint) error {
	result := s.DB.WithContext(ctx).
		Where("id = ? AND request_id = ?", itemID, requestID).
		Delete(&models.RequestItem{})
	if result.Error != nil {
		return fmt.Errorf("delete request item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("Request item not found").WithCode(code.ErrRequestItemNotFound)
	}
	return nil
}

// 9 Workflows 获取申请的审批历史
func (s *RequestService) Workflows(ctx context.Context, requestID uint) ([]models.Workflow, error) {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Request{}).Where("id = ?", requestID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check request: %w", err)
	}
	if count == 0 {
		return nil, requestNotFound()
	}

	workflows := []models.Workflow{}
	if err := s.DB.WithContext(ctx).Where("request_id = ?", requestID).
		Order("created_at, id").Find(&workflows).Error; err != nil {
		return nil, fmt.Errorf("list request workflows: %w", err)
	}
	return workflows, nil
}
