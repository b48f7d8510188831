package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/axxaxinx/user-management-final-123/internal/domain/services"
	"github.com/axxaxinx/user-management-final-123/internal/domain/services/container"
	"github.com/axxaxinx/user-management-final-123/internal/error/response"
)

// DepartmentController 处理部门相关的请求
type DepartmentController struct {
	baseController
}

// NewDepartmentController 创建一个新的部门控制器
func NewDepartmentController(ctx *gin.Context, container *container.ServiceContainer) *DepartmentController {
	return &DepartmentController{baseController{Ctx: ctx, Container: container}}
}

// CreateDepartmentRequest 创建部门请求
type CreateDepartmentRequest struct {
	Name        string `json:"name" binding:"required,max=100" example:"Engineering"`
	Description string `json:"description" example:"Builds the product"`
}

// UpdateDepartmentRequest 更新部门请求
type UpdateDepartmentRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string `json:"description"`
}

func (d *DepartmentController) service() services.InterfaceDepartmentService {
	return d.Container.GetService("department").(services.InterfaceDepartmentService)
}

// GetAll 获取所有部门
// @Summary      List departments
// @Description  Departments with their employee counts
// @Tags         Departments
// @Produce      json
// @Success      200  {object}  SuccessResponse{data=[]models.Department}
// @Failure      401  {object}  ErrorResponse
// @Router       /departments [get]
// @Security     BearerAuth
func (d *DepartmentController) GetAll() {
	departments, err := d.service().GetAll(d.Ctx.Request.Context())
	if err != nil {
		response.Error(d.Ctx, err)
		return
	}
	response.Success(d.Ctx, departments)
}

// GetByID 获取部门
// @Summary      Get department
// @Tags         Departments
// @Produce      json
// @Param        id path int true "Department ID"
// @Success      200  {object}  SuccessResponse{data=models.Department}
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /departments/{id} [get]
// @Security     BearerAuth
func (d *DepartmentController) GetByID() {
	id, ok := d.parseID("id")
	if !ok {
		return
	}
	department, err := d.service().GetByID(d.Ctx.Request.Context(), id)
	if err != nil {
		response.Error(d.Ctx, err)
		return
	}
	response.Success(d.Ctx, department)
}

// Create 创建部门
// @Summary      Create department
// @Tags         Departments
// @Accept       json
// @Produce      json
// @Param        request body CreateDepartmentRequest true "Department"
// @Success      201  {object}  SuccessResponse{data=models.Department}
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /departments [post]
// @Security     BearerAuth
func (d *DepartmentController) Create() {
	var req CreateDepartmentRequest
	if !d.bind(&req) {
		return
	}
	department, err := d.service().Create(d.Ctx.Request.Context(), services.DepartmentParams{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		response.Error(d.Ctx, err)
		return
	}
	response.Created(d.Ctx, department)
}

// Update 更新部门
// @Summary      Update department
// @Tags         Departments
// @Accept       json
// @Produce      json
// @Param        id path int true "Department ID"
// @Param        request body UpdateDepartmentRequest true "Fields to change"
// @Success      200  {object}  SuccessResponse{data=models.Department}
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /departments/{id} [put]
// @Security     BearerAuth
func (d *DepartmentController) Update() {
	id, ok := d.parseID("id")
	if !ok {
		return
	}
	var req UpdateDepartmentRequest
	if !d.bind(&req) {
		return
	}
	department, err := d.service().Update(d.Ctx.Request.Context(), id, services.UpdateDepartmentParams{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		response.Error(d.Ctx, err)
		return
	}
	response.Success(d.Ctx, department)
}

// Delete 删除部门, 员工的部门字段被清空
// @Summary      Delete department
// @Tags         Departments
// @Produce      json
// @Param        id path int true "Department ID"
// @Success      200  {object}  MessageResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /departments/{id} [delete]
// @Security     BearerAuth
func (d *DepartmentController) Delete() {
	id, ok := d.parseID("id")
	if !ok {
		return
	}
	if err := d.service().Delete(d.Ctx.Request.Context(), id); err != nil {
		response.Error(d.Ctx, err)
		return
	}
	response.Message(d.Ctx, "Department deleted successfully")
}

// HandleDepartmentFunc 返回一个处理部门请求的Gin处理函数
func HandleDepartmentFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewDepartmentController(ctx, container)

		switch method {
		case "getAll":
			controller.GetAll()
		case "getByID":
			controller.GetByID()
		case "create":
			controller.Create()
		case "update":
			controller.Update()
		case "delete":
			controller.Delete()
		default:
			invalidMethod(ctx)
		}
	}
}
