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
	"github.com/axxaxinx/user-management-final-123/internal/infrastructure/database"
)

// InterfaceDepartmentService defines the department service interface
type InterfaceDepartmentService interface {
	Create(ctx context.Context, params DepartmentParams) (*models.Department, error)
	GetAll(ctx context.Context) ([]models.Department, error)
	GetByID(ctx context.Context, id uint) (*models.Department, error)
	Update(ctx context.Context, id uint, params UpdateDepartmentParams) (*models.Department, error)
	Delete(ctx context.Context, id uint) error
	AssignDepartment(ctx context.Context, employeeID, departmentID uint) (*models.Employee, error)
}

type DepartmentParams struct {
	Name        string
	Description string
}

type UpdateDepartmentParams struct {
	Name        *string
	Description *string
}

// DepartmentService 提供部门相关的服务
type DepartmentService struct {
	DB       *gorm.DB
	Notifier InterfaceNotifierService
}

// NewDepartmentService 创建一个新的部门服务
func NewDepartmentService(db *gorm.DB, notifier InterfaceNotifierService) InterfaceDepartmentService {
	return &DepartmentService{DB: db, Notifier: notifier}
}

type departmentCount struct {
	DepartmentID uint
	Total        int64
}

func departmentNotFound() error {
	return apperror.NotFound("Department not found").WithCode(code.ErrDepartmentNotFound)
}

func departmentExists(name string) error {
	return apperror.Conflict(fmt.Sprintf("Department %q already exists", name)).WithCode(code.ErrDepartmentExists)
}

// 1 Create 创建部门, 名称唯一
func (s *DepartmentService) Create(ctx context.Context, params DepartmentParams) (*models.Department, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, apperror.Validation("Department name is required")
	}
	if err := s.ensureNameFree(ctx, name, 0); err != nil {
		return nil, err
	}

	dept := models.Department{Name: name, Description: params.Description}
	if err := s.DB.WithContext(ctx).Create(&dept).Error; err != nil {
		if database.IsDuplicateKey(err) {
			return nil, departmentExists(name)
		}
		return nil, fmt.Errorf("create department: %w", err)
	}
	return &dept, nil
}

// 2 GetAll 获取全部部门并附带员工人数
func (s *DepartmentService) GetAll(ctx context.Context) ([]models.Department, error) {
	departments := []models.Department{}
	if err := s.DB.WithContext(ctx).Order("name").Find(&departments).Error; err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}

	counts, err := s.employeeCounts(ctx)
	if err != nil {
		return nil, err
	}
	for i := range departments {
		departments[i].EmployeeCount = counts[departments[i].ID]
	}
	return departments, nil
}

// 3 GetByID 根据ID获取部门并附带员工人数
func (s *DepartmentService) GetByID(ctx context.Context, id uint) (*models.Department, error) {
	var dept models.Department
	if err := s.DB.WithContext(ctx).First(&dept, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, departmentNotFound()
		}
		return nil, fmt.Errorf("find department: %w", err)
	}

	if err := s.DB.WithContext(ctx).Model(&models.Employee{}).
		Where("department_id = ?", id).
		Count(&dept.EmployeeCount).Error; err != nil {
		return nil, fmt.Errorf("count employees: %w", err)
	}
	return &dept, nil
}

// 4 Update 更新部门, 改名时检查唯一性
func (s *DepartmentService) Update(ctx context.Context, id uint, params UpdateDepartmentParams) (*models.Department, error) {
	dept, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if params.Name != nil {
		name := strings.TrimSpace(*params.Name)
		if name == "" {
			return nil, apperror.Validation("Department name is required")
		}
		if name != dept.Name {
			if err := s.ensureNameFree(ctx, name, id); err != nil {
				return nil, err
			}
			updates["name"] = name
		}
	}
	if params.Description != nil {
		updates["description"] = *params.Description
	}

	if len(updates) > 0 {
		if err := s.DB.WithContext(ctx).Model(dept).Updates(updates).Error; err != nil {
			if database.IsDuplicateKey(err) {
				return nil, departmentExists(strings.TrimSpace(*params.Name))
			}
			return nil, fmt.Errorf("update department: %w", err)
		}
	}
	return s.GetByID(ctx, id)
}

// 5 Delete 删除部门, 所属员工的部门被置空
func (s *DepartmentService) Delete(ctx context.Context, id uint) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Employee{}).Where("department_id = ?", id).
			Update("department_id", nil).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Department{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return departmentNotFound()
		}
		return nil
	})
	if err != nil && apperror.KindOf(err) == apperror.KindInternal {
		return fmt.Errorf("delete department: %w", err)
	}
	return err
}

// 6 AssignDepartment 调整员工部门并记录调岗工作流
func (s *DepartmentService) AssignDepartment(ctx context.Context, employeeID, departmentID uint) (*models.Employee, error) {
	var employee models.Employee
	if err := s.DB.WithContext(ctx).First(&employee, employeeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Employee not found").WithCode(code.ErrEmployeeNotFound)
		}
		return nil, fmt.Errorf("find employee: %w", err)
	}
	dept, err := s.GetByID(ctx, departmentID)
	if err != nil {
		return nil, err
	}

	wf := models.Workflow{
		Type:       models.WorkflowDepartmentChange,
		Status:     models.StatusPending,
		Details:    fmt.Sprintf("Employee %s transferred to %s", employee.EmployeeCode, dept.Name),
		EmployeeID: &employee.ID,
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&employee).Update("department_id", departmentID).Error; err != nil {
			return err
		}
		return tx.Create(&wf).Error
	})
	if err != nil {
		return nil, fmt.Errorf("assign department: %w", err)
	}
	publishAll(ctx, s.Notifier, &wf)

	employee.DepartmentID = &departmentID
	employee.Department = dept
	return &employee, nil
}

func (s *DepartmentService) ensureNameFree(ctx context.Context, name string, exceptID uint) error {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Department{}).
		Where("name = ? AND id <> ?", name, exceptID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("check department name: %w", err)
	}
	if count > 0 {
		return departmentExists(name)
	}
	return nil
}

func (s *DepartmentService) employeeCounts(ctx context.Context) (map[uint]int64, error) {
	var rows []departmentCount
	if err := s.DB.WithContext(ctx).Model(&models.Employee{}).
		Select("department_id, COUNT(*) AS total").
		Where("department_id IS NOT NULL").
		Group("department_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("count employees: %w", err)
	}

	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.DepartmentID] = row.Total
	}
	return counts, nil
}
