package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/axxaxinx/user-management-final-123/internal/domain/models"
	"github.com/axxaxinx/user-management-final-123/internal/domain/policy"
	"github.com/axxaxinx/user-management-final-123/internal/domain/services"
	"github.com/axxaxinx/user-management-final-123/internal/domain/services/container"
	"github.com/axxaxinx/user-management-final-123/internal/error/response"
)

// RequestController 处理员工申请相关的请求
type RequestController struct {
	baseController
}

// NewRequestController 创建一个新的申请控制器
func NewRequestController(ctx *gin.Context, container *container.ServiceContainer) *RequestController {
	return &RequestController{baseController{Ctx: ctx, Container: container}}
}

// RequestItemRequest 申请条目, 未传数量时默认为 1
type RequestItemRequest struct {
	Name     string `json:"name" binding:"required" example:"Laptop"`
	Quantity *int   `json:"quantity" binding:"omitempty,min=1" example:"1"`
	Details  string `json:"details" example:"16GB RAM"`
}

func (i RequestItemRequest) params() services.RequestItemParams {
	quantity := 1
	if i.Quantity != nil {
		quantity = *i.Quantity
	}
	return services.RequestItemParams{Name: i.Name, Quantity: quantity, Details: i.Details}
}

// CreateRequestRequest 创建申请请求
type CreateRequestRequest struct {
	Type        models.RequestType   `json:"type" binding:"required,oneof=Equipment Leave Resources" example:"Equipment"`
	Description string               `json:"description" example:"New starter kit"`
	Items       []RequestItemRequest `json:"items" binding:"required,dive"`
}

// UpdateRequestRequest 更新申请请求, 只有管理员可以修改状态
type UpdateRequestRequest struct {
	Status      *models.Status `json:"status" binding:"omitempty,oneof=Pending Approved Rejected" example:"Approved"`
	Description *string        `json:"description"`
}

// SetStatusRequest 修改申请状态请求
type SetStatusRequest struct {
	Status models.Status `json:"status" binding:"required,oneof=Pending Approved Rejected" example:"Approved"`
}

func (r *RequestController) service() services.InterfaceRequestService {
	return r.Container.GetService("request").(services.InterfaceRequestService)
}

// load 读取申请并检查权限
func (r *RequestController) load(action policy.Action) (*models.Request, bool) {
	id, ok := r.parseID("id")
	if !ok {
		return nil, false
	}
	req, err := r.service().GetByID(r.Ctx.Request.Context(), id)
	if err != nil {
		response.Error(r.Ctx, err)
		return nil, false
	}
	if !r.authorize(action, policy.Resource{OwnerEmployeeID: req.EmployeeID, State: req.Status}) {
		return nil, false
	}
	return req, true
}

func toItemParams(items []RequestItemRequest) []services.RequestItemParams {
	params := make([]services.RequestItemParams, 0, len(items))
	for _, item := range items {
		params = append(params, item.params())
	}
	return params
}

// Create 创建申请
// @Summary      Create request
// @Description  Creates a request with its items for the caller's employee record
// @Tags         Requests
// @Accept       json
// @Produce      json
// @Param        request body CreateRequestRequest true "Request"
// @Success      201  {object}  SuccessResponse{data=models.Request}
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /requests [post]
// @Security     BearerAuth
func (r *RequestController) Create() {
	employeeID, err := requireEmployee(r.subject())
	if err != nil {
		response.Error(r.Ctx, err)
		return
	}
	var req CreateRequestRequest
	if !r.bind(&req) {
		return
	}
	created, err := r.service().Create(r.Ctx.Request.Context(), employeeID, services.CreateRequestParams{
		Type:        req.Type,
		Description: req.Description,
		Items:       toItemParams(req.Items),
	})
	if err != nil {
		response.Error(r.Ctx, err)
		return
	}
	response.Created(r.Ctx, created)
}

// GetAll 获取所有申请
// @Summary      List requests
// @Tags         Requests
// @Produce      json
// @Success      200  {object}  SuccessResponse{data=[]models.Request}
// @Failure      401  {object}  ErrorResponse
// @Router       /requests [get]
// @Security     BearerAuth
func (r *RequestController) GetAll() {
	list, err := r.service().GetAll(r.Ctx.Request.Context())
	if err != nil {
		response.Error(r.Ctx, err)
		return
	}
	response.Success(r.Ctx, list)
}

// Mine 获取当前账户的申请
// @Summary      My requests
// @Description  Requests of the caller's employee record. Empty when the account has none
// @Tags         Requests
// @Produce      json
// @Success      200  {object}  SuccessResponse{data=[]models.Request}
// @Failure      401  {object}  ErrorResponse
// @Router       /requests/my-requests [get]
// @Security     BearerAuth
func (r *RequestController) Mine() {
	s := r.subject()
	if s.EmployeeID == nil {
		response.Success(r.Ctx, []models.Request{})
		return
	}
	list, err := r.service().GetByEmployeeID(r.Ctx.Request.Context(), *s.EmployeeID)
	if err != nil {
		response.Error(r.Ctx, err)
		return
	}
	response.Success(r.Ctx, list)
}

// GetByEmployee 获取某员工的申请
// @Summary      Requests of an employee
// @Tags         Requests
// @Produce      json
// @Param        employeeId path int true "Employee ID"
// @Success      200  {object}  SuccessResponse{data=[]models.Request}
// @Failure      401  {object}  ErrorResponse
// @Router       /requests/employee/{employeeId} [get]
// @Security     BearerAuth
func (r *RequestController) GetByEmployee() {
	employeeID, ok := r.parseID("employeeId")
	if !ok {
		return
	}
	if !r.authorize(policy.RequestView, policy.Resource{OwnerEmployeeID: &employeeID}) {
		return
	}
	list, err := r.service().GetByEmployeeID(r.Ctx.Request.Context(), employeeID)
	if err != nil {
		response.Error(r.Ctx, err)
		return
	}
	response.Success(r.Ctx, list)
}

// GetByID 获取申请
// @Summary      Get request
// @Tags         Requests
// @Produce      json
// @Param        id path int true "Request ID"
// @Success      200  {object}  SuccessResponse{data=models.Request}
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /requests/{id} [get]
// @Security     BearerAuth
func (r *RequestController) GetByID() {
	req, ok := r.load(policy.RequestView)
	if !ok {
		return
	}
	response.Success(r.Ctx, req)
}

// Update 更新申请
// @Summary      Update request
// @Description  Owners may edit the description. Only admins may change the status
// @Tags         Requests
// @Accept       json
// @Produce      json
// @Param        id path int true "Request ID"
// @Param        request body UpdateRequestRequest true "Fields to change"
// @Success      200  {object}  SuccessResponse{data=models.Request}
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /requests/{id} [put]
// @Security     BearerAuth
func (r *RequestController) Update() {
	existing, ok := r.load(policy.RequestUpdate)
	if !ok {
		return
	}
	var req UpdateRequestRequest
	if !r.bind(&req) {
		return
	}
	if req.Status != nil && !r.authorize(policy.RequestSetStatus, policy.Resource{OwnerEmployeeID: existing.EmployeeID, State: existing.Status}) {
		return
	}
	updated, err := r.service().Update(r.Ctx.Request.Context(), existing.ID, services.UpdateRequestParams{
		Status:      req.Status,
		Description: req.Description,
	})
	if err != nil {
		response.Error(r.Ctx, err)
		return
	}
	response.Success(r.Ctx, updated)
}

// SetStatus 审批申请
// @Summary      Set request status
// @Tags         Requests
// @Accept       json
// @Produce      json
// @Param        id path int true "Request ID"
// @Param        request body SetStatusRequest true "Status"
// @Success      200  {object}  SuccessResponse{data=models.Request}
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /requests/{id}/status [put]
// @Security     BearerAuth
func (r *RequestController) SetStatus() {
	existing, ok := r.load(policy.RequestSetStatus)
	if !ok {
		return
	}
	var req SetStatusRequest
	if !r.bind(&req) {
		return
	}
	updated, err := r.service().Update(r.Ctx.Request.Context(), existing.ID, services.UpdateRequestParams{Status: &req.Status})
	if err != nil {
		response.Error(r.Ctx, err)
		return
	}
	response.Success(r.Ctx, updated)
}

// Delete 删除申请
// @Summary      Delete request
// @Description  Users may delete their own pending requests
// @Tags         Requests
// @Produce      json
// @Param        id path int true "Request ID"
// @Success      200  {object}  MessageResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /requests/{id} [delete]
// @Security     BearerAuth
func (r *RequestController) Delete() {
	existing, ok := r.load(policy.RequestDelete)
	if !ok {
		return
	}
	if err := r.service().Delete(r.Ctx.Request.Context(), existing.ID); err != nil {
		response.Error(r.Ctx, err)
		return
	}
	response.Message(r.Ctx, "Request deleted successfully")
}

// AddItem 添加申请条目
// @Summary      Add request item
// @Tags         Requests
// @Accept       json
// @Produce      json
// @Param        id path int true "Request ID"
// @Param        request body RequestItemRequest true "Item"
// @Success      201  {object}  SuccessResponse{data=models.RequestItem}
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /requests/{id}/items [post]
// @Security     BearerAuth
func (r *RequestController) AddItem() {
	existing, ok := r.load(policy.RequestAddItem)
	if !ok {
		return
	}
	var req RequestItemRequest
	if !r.bind(&req) {
		return
	}
	item, err := r.service().AddItem(r.Ctx.Request.Context(), existing.ID, req.params())
	if err != nil {
		response.Error(r.Ctx, err)
		return
	}
	response.Created(r.Ctx, item)
}

// DeleteItem 删除申请条目
// @Summary      Delete request item
// @Tags         Requests
// @Produce      json
// @Param        id path int true "Request ID"
// @Param        itemId path int true "Item ID"
// @Success      200  {object}  MessageResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /requests/{id}/items/{itemId} [delete]
// @Security     BearerAuth
func (r *RequestController) DeleteItem() {
	existing, ok := r.load(policy.RequestDeleteItem)
	if !ok {
		return
	}
	itemID, ok := r.parseID("itemId")
	if !ok {
		return
	}
	if err := r.service().DeleteItem(r.Ctx.Request.Context(), existing.ID, itemID); err != nil {
		response.Error(r.Ctx, err)
		return
	}
	response.Message(r.Ctx, "Item deleted successfully")
}

// Workflows 获取申请的审批历史
// @Summary      Request history
// @Tags         Requests
// @Produce      json
// @Param        id path int true "Request ID"
// @Success      200  {object}  SuccessResponse{data=[]models.Workflow}
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /requests/{id}/workflows [get]
// @Security     BearerAuth
func (r *RequestController) Workflows() {
	existing, ok := r.load(policy.RequestView)
	if !ok {
		return
	}
	list, err := r.service().Workflows(r.Ctx.Request.Context(), existing.ID)
	if err != nil {
		response.Error(r.Ctx, err)
		return
	}
	response.Success(r.Ctx, list)
}

// HandleRequestFunc 返回一个处理申请请求的Gin处理函数
func HandleRequestFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewRequestController(ctx, container)

		switch method {
		case "create":
			controller.Create()
		case "getAll":
			controller.GetAll()
		case "mine":
			controller.Mine()
		case "getByEmployee":
			controller.GetByEmployee()
		case "getByID":
			controller.GetByID()
		case "update":
			controller.Update()
		case "setStatus":
			controller.SetStatus()
		case "delete":
			controller.Delete()
		case "addItem":
			controller.AddItem()
		case "deleteItem":
			controller.DeleteItem()
		case "workflows":
			controller.Workflows()
		default:
			invalidMethod(ctx)
		}
	}
}
