package dto

// ── 用户模块 DTO ──

// StaffListRequest 员工列表查询参数（管理员指派时使用）
type StaffListRequest struct {
	PaginationRequest
}
