package dto

// ── 联系表单 DTO ──

// ContactRequest 官网联系表单提交
type ContactRequest struct {
	Name    string `json:"name"    binding:"required,min=2,max=100"`
	Email   string `json:"email"   binding:"required,email"`
	Phone   string `json:"phone"   binding:"omitempty,max=30"`
	Company string `json:"company" binding:"omitempty,max=200"`
	Subject string `json:"subject" binding:"omitempty,max=200"`
	Message string `json:"message" binding:"required,max=5000"`
}
