package dto

// ── 需求单模块 DTO ──

// CreateRequestRequest 创建需求单请求
type CreateRequestRequest struct {
	ServiceType       string   `json:"service_type"        binding:"required,oneof=security labor technical medical"`
	Category          string   `json:"category"            binding:"required,max=100"`
	NumberOfPersonnel int      `json:"number_of_personnel" binding:"required,min=1"`
	Duration          string   `json:"duration"            binding:"required,max=100"`
	StartDate         string   `json:"start_date"          binding:"required,datetime=2006-01-02"`
	ShiftType         string   `json:"shift_type"          binding:"required,oneof=day night rotating flexible"`
	Description       string   `json:"description"         binding:"required"`
	Requirements      string   `json:"requirements"        binding:"omitempty"`
	Budget            *float64 `json:"budget"              binding:"omitempty,min=0"`
	Location          string   `json:"location"            binding:"required,max=200"`
	Priority          string   `json:"priority"            binding:"omitempty,oneof=low medium high urgent"`
}

// ClientUpdateRequest 客户更新自己需求单的请求
// 仅允许修改描述性字段，其余字段即使传入也会被忽略
type ClientUpdateRequest struct {
	Description *string  `json:"description" binding:"omitempty"`
	Category    *string  `json:"category"    binding:"omitempty,max=100"`
	Budget      *float64 `json:"budget"      binding:"omitempty,min=0"`
	StartDate   *string  `json:"start_date"  binding:"omitempty,datetime=2006-01-02"`
	Location    *string  `json:"location"    binding:"omitempty,max=200"`
}

// AdminUpdateRequest 管理员处置需求单的请求
// 三个字段均可选，任意组合；Version 用于乐观锁校验
type AdminUpdateRequest struct {
	Status     *string `json:"status"      binding:"omitempty,oneof=pending in-progress completed cancelled"`
	AssignedTo *string `json:"assigned_to" binding:"omitempty,uuid"`
	Comment    string  `json:"comment"     binding:"omitempty"`
	Version    *int    `json:"version"     binding:"omitempty,min=1"`
}

// AddCommentRequest 添加评论请求
type AddCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// RequestListRequest 需求单列表查询参数
type RequestListRequest struct {
	PaginationRequest
	Status   string `form:"status"    binding:"omitempty,oneof=pending in-progress completed cancelled"`
	Category string `form:"category"  binding:"omitempty,max=100"`
	Priority string `form:"priority"  binding:"omitempty,oneof=low medium high urgent"`
	ClientID string `form:"client_id" binding:"omitempty,uuid"`
}

// ── 需求单响应 ──

// RequestResponse 需求单完整详情（含关联与审计轨迹）
type RequestResponse struct {
	ID                string            `json:"id"`
	ServiceType       string            `json:"service_type"`
	Category          string            `json:"category"`
	NumberOfPersonnel int               `json:"number_of_personnel"`
	Duration          string            `json:"duration"`
	StartDate         string            `json:"start_date"`
	ShiftType         string            `json:"shift_type"`
	Description       string            `json:"description"`
	Requirements      string            `json:"requirements,omitempty"`
	Budget            *float64          `json:"budget,omitempty"`
	Location          string            `json:"location"`
	Priority          string            `json:"priority"`
	Status            string            `json:"status"`
	Version           int               `json:"version"`
	Client            *UserSummary      `json:"client,omitempty"`
	AssignedTo        *UserSummary      `json:"assigned_to,omitempty"`
	Attachments       []AttachmentItem  `json:"attachments,omitempty"`
	Comments          []CommentItem     `json:"comments,omitempty"`
	Timeline          []TimelineItem    `json:"timeline,omitempty"`
	CreatedAt         string            `json:"created_at"`
	UpdatedAt         string            `json:"updated_at"`
}

// RequestListItem 需求单列表项（浅层，不含评论与时间线）
type RequestListItem struct {
	ID                string       `json:"id"`
	ServiceType       string       `json:"service_type"`
	Category          string       `json:"category"`
	NumberOfPersonnel int          `json:"number_of_personnel"`
	StartDate         string       `json:"start_date"`
	Priority          string       `json:"priority"`
	Status            string       `json:"status"`
	Client            *UserSummary `json:"client,omitempty"`
	AssignedTo        *UserSummary `json:"assigned_to,omitempty"`
	CreatedAt         string       `json:"created_at"`
}

// AttachmentItem 附件项
type AttachmentItem struct {
	ID         string `json:"id"`
	Filename   string `json:"filename"`
	URL        string `json:"url"`
	UploadedAt string `json:"uploaded_at"`
}

// CommentItem 评论项
type CommentItem struct {
	ID        string       `json:"id"`
	Text      string       `json:"text"`
	User      *UserSummary `json:"user,omitempty"`
	CreatedAt string       `json:"created_at"`
}

// TimelineItem 时间线项
type TimelineItem struct {
	ID        string       `json:"id"`
	Status    string       `json:"status"`
	Comment   string       `json:"comment"`
	UpdatedBy *UserSummary `json:"updated_by,omitempty"`
	UpdatedAt string       `json:"updated_at"`
}

// StatsResponse 需求单状态统计（管理员看板）
type StatsResponse struct {
	Total      int64 `json:"total"`
	Pending    int64 `json:"pending"`
	InProgress int64 `json:"in_progress"`
	Completed  int64 `json:"completed"`
	Cancelled  int64 `json:"cancelled"`
}

// [自证通过] internal/dto/request.go
