package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/axxaxinx/user-management-final-123/internal/domain/models"
	"github.com/axxaxinx/user-management-final-123/internal/error/apperror"
	"github.com/axxaxinx/user-management-final-123/internal/error/code"
	"github.com/axxaxinx/user-management-final-123/internal/infrastructure/database"
)

// InterfaceEmployeeService defines the employee service interface
type InterfaceEmployeeService interface {
	Create(ctx context.Context, params CreateEmployeeParams) (*models.Employee, error)
	GetAll(ctx context.Context, filter EmployeeFilter) (models.Page[models.Employee], error)
	GetByID(ctx context.Context, id uint) (*models.Employee, error)
	GetByAccountID(ctx context.Context, accountID uint) (*models.Employee, error)
	Subordinates(ctx context.Context, id uint) ([]models.Employee, error)
	Update(ctx context.Context, id uint, params UpdateEmployeeParams) (*models.Employee, error)
	Delete(ctx context.Context, id uint) error
}

type CreateEmployeeParams struct {
	EmployeeCode string
	AccountID    *uint
	DepartmentID *uint
	Position     string
	JobTitle     string
	HireDate     *time.Time
	Status       models.EmployeeStatus
	ReportingTo  *uint
}

// UpdateEmployeeParams holds a partial update. Nil fields are left unchanged,
// a zero id clears the reference.
type UpdateEmployeeParams struct {
	EmployeeCode *string
	AccountID    *uint
	DepartmentID *uint
	Position     *string
	JobTitle     *string
	HireDate     *time.Time
	Status       *models.EmployeeStatus
	ReportingTo  *uint
}

type EmployeeFilter struct {
	DepartmentID *uint
	Status       models.EmployeeStatus
	Search       string
	models.Pagination
}

// EmployeeService 提供员工相关的服务
type EmployeeService struct {
	DB       *gorm.DB
	Notifier InterfaceNotifierService
}

// NewEmployeeService 创建一个新的员工服务
func NewEmployeeService(db *gorm.DB, notifier InterfaceNotifierService) InterfaceEmployeeService {
	return &EmployeeService{DB: db, Notifier: notifier}
}

func employeeNotFound() error {
	return apperror.NotFound("Employee not found").WithCode(code.ErrEmployeeNotFound)
}

func employeeCodeTaken(employeeCode string) error {
	return apperror.Conflict(fmt.Sprintf("Employee ID %q is already taken", employeeCode)).WithCode(code.ErrEmployeeIDTaken)
}

// 1 Create 创建员工档案并记录入职工作流
func (s *EmployeeService) Create(ctx context.Context, params CreateEmployeeParams) (*models.Employee, error) {
	employeeCode := strings.TrimSpace(params.EmployeeCode)
	if employeeCode == "" {
		return nil, apperror.Validation("Employee ID is required")
	}
	status := params.Status
	if status == "" {
		status = models.EmployeeActive
	}
	if !status.Valid() {
		return nil, apperror.Validation("Invalid employee status")
	}

	db := s.DB.WithContext(ctx)
	if err := s.ensureCodeFree(db, employeeCode, 0); err != nil {
		return nil, err
	}
	if params.AccountID != nil {
		if err := s.checkAccountLink(db, *params.AccountID, 0); err != nil {
			return nil, err
		}
	}
	if params.DepartmentID != nil {
		if err := checkDepartment(db, *params.DepartmentID); err != nil {
			return nil, err
		}
	}
	if params.ReportingTo != nil {
		if err := s.checkManager(db, 0, *params.ReportingTo); err != nil {
			return nil, err
		}
	}

	employee := models.Employee{
		EmployeeCode: employeeCode,
		AccountID:    params.AccountID,
		DepartmentID: params.DepartmentID,
		Position:     params.Position,
		JobTitle:     params.JobTitle,
		HireDate:     params.HireDate,
		Status:       status,
		ReportingTo:  params.ReportingTo,
	}
	var wf models.Workflow
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&employee).Error; err != nil {
			return err
		}
		wf = models.Workflow{
			Type:       models.WorkflowOnboarding,
			Status:     models.StatusPending,
			Details:    fmt.Sprintf("Onboarding for employee %s", employee.EmployeeCode),
			EmployeeID: &employee.ID,
		}
		return tx.Create(&wf).Error
	})
	if err != nil {
		if database.IsDuplicateKey(err) {
			return nil, employeeCodeTaken(employeeCode)
		}
		return nil, fmt.Errorf("create employee: %w", err)
	}
	publishAll(ctx, s.Notifier, &wf)

	return s.GetByID(ctx, employee.ID)
}

// 2 GetAll 获取员工列表, 支持部门, 状态, 关键字筛选和分页
func (s *EmployeeService) GetAll(ctx context.Context, filter EmployeeFilter) (models.Page[models.Employee], error) {
	filter.Pagination.Normalize()

	query := s.DB.WithContext(ctx).Model(&models.Employee{})
	if filter.DepartmentID != nil {
		query = query.Where("department_id = ?", *filter.DepartmentID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		query = query.Where("employee_code LIKE ? OR position LIKE ? OR job_title LIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return models.Page[models.Employee]{}, fmt.Errorf("count employees: %w", err)
	}

	var employees []models.Employee
	if err := query.Preload("Account").Preload("Department").
		Order("id").
		Limit(filter.PageSize).Offset(filter.Offset()).
		Find(&employees).Error; err != nil {
		return models.Page[models.Employee]{}, fmt.Errorf("list employees: %w", err)
	}
	return models.NewPage(employees, total, filter.Pagination), nil
}

// 3 GetByID 根据ID获取员工, 附带账户, 部门和上级
func (s *EmployeeService) GetByID(ctx context.Context, id uint) (*models.Employee, error) {
	var employee models.Employee
	err := s.DB.WithContext(ctx).
		Preload("Account").Preload("Department").Preload("Manager").
		First(&employee, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, employeeNotFound()
		}
		return nil, fmt.Errorf("find employee: %w", err)
	}
	return &employee, nil
}

// 4 GetByAccountID 获取账户关联的员工档案
func (s *EmployeeService) GetByAccountID(ctx context.Context, accountID uint) (*models.Employee, error) {
	var employee models.Employee
	err := s.DB.WithContext(ctx).
		Preload("Account").Preload("Department").Preload("Manager").
		Where("account_id = ?", accountID).
		First(&employee).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, employeeNotFound()
		}
		return nil, fmt.Errorf("find employee: %w", err)
	}
	return &employee, nil
}

// 5 Subordinates 获取直接下属
func (s *EmployeeService) Subordinates(ctx context.Context, id uint) ([]models.Employee, error) {
	if err := employeeExists(s.DB.WithContext(ctx), id); err != nil {
		return nil, err
	}
	employees := []models.Employee{}
	if err := s.DB.WithContext(ctx).Preload("Department").
		Where("reporting_to = ?", id).Order("id").
		Find(&employees).Error; err != nil {
		return nil, fmt.Errorf("list subordinates: %w", err)
	}
	return employees, nil
}

// 6 Update 更新员工信息. 部门变化记录调岗工作流, 离职记录离职工作流
func (s *EmployeeService) Update(ctx context.Context, id uint, params UpdateEmployeeParams) (*models.Employee, error) {
	employee, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	db := s.DB.WithContext(ctx)

	updates := map[string]interface{}{}
	if params.EmployeeCode != nil {
		employeeCode := strings.TrimSpace(*params.EmployeeCode)
		if employeeCode == "" {
			return nil, apperror.Validation("Employee ID is required")
		}
		if employeeCode != employee.EmployeeCode {
			if err := s.ensureCodeFree(db, employeeCode, id); err != nil {
				return nil, err
			}
			updates["employee_code"] = employeeCode
		}
	}
	if params.AccountID != nil {
		if *params.AccountID == 0 {
			updates["account_id"] = nil
		} else {
			if err := s.checkAccountLink(db, *params.AccountID, id); err != nil {
				return nil, err
			}
			updates["account_id"] = *params.AccountID
		}
	}

	departmentChanged := false
	if params.DepartmentID != nil {
		if *params.DepartmentID == 0 {
			updates["department_id"] = nil
			departmentChanged = employee.DepartmentID != nil
		} else {
			if err := checkDepartment(db, *params.DepartmentID); err != nil {
				return nil, err
			}
			updates["department_id"] = *params.DepartmentID
			departmentChanged = employee.DepartmentID == nil || *employee.DepartmentID != *params.DepartmentID
		}
	}
	if params.Position != nil {
		updates["position"] = *params.Position
	}
	if params.JobTitle != nil {
		updates["job_title"] = *params.JobTitle
	}
	if params.HireDate != nil {
		updates["hire_date"] = *params.HireDate
	}

	terminated := false
	if params.Status != nil {
		if !params.Status.Valid() {
			return nil, apperror.Validation("Invalid employee status")
		}
		updates["status"] = *params.Status
		terminated = *params.Status == models.EmployeeTerminated && employee.Status != models.EmployeeTerminated
	}
	if params.ReportingTo != nil {
		if *params.ReportingTo == 0 {
			updates["reporting_to"] = nil
		} else {
			if err := s.checkManager(db, id, *params.ReportingTo); err != nil {
				return nil, err
			}
			updates["reporting_to"] = *params.ReportingTo
		}
	}

	var workflows []*models.Workflow
	if departmentChanged {
		workflows = append(workflows, &models.Workflow{
			Type:       models.WorkflowDepartmentChange,
			Status:     models.StatusPending,
			Details:    fmt.Sprintf("Department change for employee %s", employee.EmployeeCode),
			EmployeeID: &employee.ID,
		})
	}
	if terminated {
		workflows = append(workflows, &models.Workflow{
			Type:       models.WorkflowTermination,
			Status:     models.StatusPending,
			Details:    fmt.Sprintf("Termination of employee %s", employee.EmployeeCode),
			EmployeeID: &employee.ID,
		})
	}

	if len(updates) > 0 {
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&models.Employee{BaseModel: models.BaseModel{ID: id}}).Updates(updates).Error; err != nil {
				return err
			}
			for _, wf := range workflows {
				if err := tx.Create(wf).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			if database.IsDuplicateKey(err) {
				return nil, apperror.Conflict("Employee ID or account is already in use").WithCode(code.ErrConflict)
			}
			return nil, fmt.Errorf("update employee: %w", err)
		}
		publishAll(ctx, s.Notifier, workflows...)
	}

	return s.GetByID(ctx, id)
}

// 7 Delete 删除员工: 解除下属汇报关系, 申请和工作流的员工引用置空
func (s *EmployeeService) Delete(ctx context.Context, id uint) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Employee{}).Where("reporting_to = ?", id).
			Update("reporting_to", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Request{}).Where("employee_id = ?", id).
			Update("employee_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Workflow{}).Where("employee_id = ?", id).
			Update("employee_id", nil).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Employee{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return employeeNotFound()
		}
		return nil
	})
	if err != nil && apperror.KindOf(err) == apperror.KindInternal {
		return fmt.Errorf("delete employee: %w", err)
	}
	return err
}

func (s *EmployeeService) ensureCodeFree(db *gorm.DB, employeeCode string, exceptID uint) error {
	var count int64
	if err := db.Model(&models.Employee{}).
		Where("employee_code = ? AND id <> ?", employeeCode, exceptID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("check employee id: %w", err)
	}
	if count > 0 {
		return employeeCodeTaken(employeeCode)
	}
	return nil
}

// checkAccountLink 账户必须存在且未关联其他员工
func (s *EmployeeService) checkAccountLink(db *gorm.DB, accountID, employeeID uint) error {
	var count int64
	if err := db.Model(&models.Account{}).Where("id = ?", accountID).Count(&count).Error; err != nil {
		return fmt.Errorf("check account: %w", err)
	}
	if count == 0 {
		return apperror.NotFound("Account not found").WithCode(code.ErrAccountNotFound)
	}
	if err := db.Model(&models.Employee{}).
		Where("account_id = ? AND id <> ?", accountID, employeeID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("check account link: %w", err)
	}
	if count > 0 {
		return apperror.Conflict("Account is already linked to an employee").WithCode(code.ErrAccountAlreadyLinked)
	}
	return nil
}

// checkManager 上级必须存在, 不能是本人, 也不能是本人的下属
func (s *EmployeeService) checkManager(db *gorm.DB, employeeID, managerID uint) error {
	invalid := apperror.Validation("Invalid reporting manager").WithCode(code.ErrInvalidManager)
	if employeeID != 0 && managerID == employeeID {
		return invalid
	}

	visited := map[uint]bool{}
	current := managerID
	for {
		var manager models.Employee
		err := db.Select("id", "reporting_to").First(&manager, current).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if current == managerID {
				return invalid
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("check manager: %w", err)
		}
		if manager.ReportingTo == nil || employeeID == 0 {
			return nil
		}
		if *manager.ReportingTo == employeeID {
			return invalid
		}
		visited[current] = true
		if visited[*manager.ReportingTo] {
			return nil
		}
		current = *manager.ReportingTo
	}
}

func checkDepartment(db *gorm.DB, departmentID uint) error {
	var count int64
	if err := db.Model(&models.Department{}).Where("id = ?", departmentID).Count(&count).Error; err != nil {
		return fmt.Errorf("check department: %w", err)
	}
	if count == 0 {
		return departmentNotFound()
	}
	return nil
}
