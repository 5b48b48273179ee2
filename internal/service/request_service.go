package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"ep-project/backend/internal/dto"
	"ep-project/backend/internal/model"
	"ep-project/backend/internal/repository"
	apperrors "ep-project/backend/pkg/errors"
	"ep-project/backend/pkg/mq"
)

var (
	ErrRequestNotFound     = errors.New("需求单不存在")
	ErrRequestAccessDenied = errors.New("无权访问该需求单")
	ErrAssigneeInvalid     = errors.New("指派对象必须是有效的员工或管理员账号")
)

// 时间线审计文案为存量数据的一部分，与历史系统保持字节级一致，不做本地化
const (
	timelineCreated       = "Request created"
	timelineStatusChanged = "Status changed to %s"
	timelineStaffAssigned = "Staff member assigned"
	timelineJoiner        = " and "
)

// 生命周期事件路由键
const (
	eventRequestCreated   = "request.created"
	eventRequestUpdated   = "request.updated"
	eventRequestCommented = "request.commented"
)

// RequestService 需求单业务接口（生命周期与权限规则的唯一入口）
type RequestService interface {
	Create(ctx context.Context, clientID string, req *dto.CreateRequestRequest) (*dto.RequestResponse, error)
	GetByID(ctx context.Context, id, callerID, role string) (*dto.RequestResponse, error)
	List(ctx context.Context, callerID, role string, req *dto.RequestListRequest) ([]dto.RequestListItem, int64, error)
	UpdateAsClient(ctx context.Context, id, callerID string, req *dto.ClientUpdateRequest) (*dto.RequestResponse, error)
	UpdateAsAdmin(ctx context.Context, id, adminID string, req *dto.AdminUpdateRequest) (*dto.RequestResponse, error)
	AddComment(ctx context.Context, id, callerID, role string, req *dto.AddCommentRequest) (*dto.RequestResponse, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (*dto.StatsResponse, error)
}

type requestService struct {
	repo      *repository.Repository
	publisher mq.Publisher
	logger    *zap.Logger
}

// NewRequestService 创建 RequestService 实例（publisher 可为 nil）
func NewRequestService(repo *repository.Repository, publisher mq.Publisher, logger *zap.Logger) RequestService {
	return &requestService{repo: repo, publisher: publisher, logger: logger}
}

// Create 创建需求单，状态固定 pending，同事务写入首条时间线记录
func (s *requestService) Create(ctx context.Context, clientID string, req *dto.CreateRequestRequest) (*dto.RequestResponse, error) {
	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, err
	}

	priority := req.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}

	r := &model.Request{
		ServiceType:       req.ServiceType,
		Category:          req.Category,
		NumberOfPersonnel: req.NumberOfPersonnel,
		Duration:          req.Duration,
		StartDate:         startDate,
		ShiftType:         req.ShiftType,
		Description:       req.Description,
		Requirements:      req.Requirements,
		Budget:            req.Budget,
		Location:          req.Location,
		Priority:          priority,
		Status:            model.StatusPending,
		ClientID:          clientID,
		Version:           1,
	}
	entry := &model.RequestTimelineEntry{
		Status:      model.StatusPending,
		Comment:     timelineCreated,
		UpdatedByID: clientID,
	}

	if err := s.repo.Request.Create(ctx, r, entry); err != nil {
		s.logger.Error("创建需求单失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("需求单已创建",
		zap.String("request_id", r.RequestID),
		zap.String("client_id", clientID),
		zap.String("service_type", r.ServiceType),
	)
	s.publishEvent(eventRequestCreated, r.RequestID, clientID, model.StatusPending)

	return s.loadResponse(ctx, r.RequestID)
}

func (s *requestService) GetByID(ctx context.Context, id, callerID, role string) (*dto.RequestResponse, error) {
	r, err := s.repo.Request.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		s.logger.Error("查询需求单失败", zap.Error(err))
		return nil, err
	}

	if !canViewRequest(r, callerID, role) {
		return nil, ErrRequestAccessDenied
	}

	return toRequestResponse(r), nil
}

// List 列表查询；client 角色强制只返回本人需求单，忽略传入的 client_id
func (s *requestService) List(ctx context.Context, callerID, role string, req *dto.RequestListRequest) ([]dto.RequestListItem, int64, error) {
	filter := repository.RequestFilter{
		Status:   req.Status,
		Category: req.Category,
		Priority: req.Priority,
	}
	if role == model.RoleClient {
		filter.ClientID = callerID
	} else {
		filter.ClientID = req.ClientID
	}

	reqs, total, err := s.repo.Request.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询需求单列表失败", zap.Error(err))
		return nil, 0, err
	}

	items := make([]dto.RequestListItem, 0, len(reqs))
	for i := range reqs {
		items = append(items, toRequestListItem(&reqs[i]))
	}
	return items, total, nil
}

// UpdateAsClient 客户更新自己的需求单
// 仅允许修改描述性字段；状态、指派、优先级等字段不在此路径暴露，也不产生时间线记录
func (s *requestService) UpdateAsClient(ctx context.Context, id, callerID string, req *dto.ClientUpdateRequest) (*dto.RequestResponse, error) {
	r, err := s.repo.Request.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}

	if r.ClientID != callerID {
		return nil, ErrRequestAccessDenied
	}

	if req.Description != nil {
		r.Description = *req.Description
	}
	if req.Category != nil {
		r.Category = *req.Category
	}
	if req.Budget != nil {
		r.Budget = req.Budget
	}
	if req.StartDate != nil {
		startDate, err := time.Parse("2006-01-02", *req.StartDate)
		if err != nil {
			return nil, err
		}
		r.StartDate = startDate
	}
	if req.Location != nil {
		r.Location = *req.Location
	}

	if err := s.repo.Request.Update(ctx, r); err != nil {
		s.logger.Error("更新需求单失败", zap.Error(err))
		return nil, err
	}

	s.publishEvent(eventRequestUpdated, r.RequestID, callerID, r.Status)

	return s.loadResponse(ctx, id)
}

// UpdateAsAdmin 管理员处置需求单：状态流转 / 指派员工 / 备注，任意组合
// 发生任一变更或附带备注时恰好追加一条时间线记录；三者皆空则为幂等空操作
func (s *requestService) UpdateAsAdmin(ctx context.Context, id, adminID string, req *dto.AdminUpdateRequest) (*dto.RequestResponse, error) {
	r, err := s.repo.Request.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}

	statusChanged := req.Status != nil && *req.Status != r.Status
	staffAssigned := req.AssignedTo != nil &&
		(r.AssignedToID == nil || *r.AssignedToID != *req.AssignedTo)

	// 三者皆无视为空操作，不追加时间线、不递增版本号
	if !statusChanged && !staffAssigned && req.Comment == "" {
		return toRequestResponse(r), nil
	}

	if staffAssigned {
		assignee, err := s.repo.User.GetByID(ctx, *req.AssignedTo)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrAssigneeInvalid
			}
			return nil, err
		}
		if assignee.Role != model.RoleStaff && assignee.Role != model.RoleAdmin {
			return nil, ErrAssigneeInvalid
		}
		r.AssignedToID = req.AssignedTo
	}
	if statusChanged {
		r.Status = *req.Status
	}

	// 调用方携带版本号时以其为准做乐观锁校验，否则使用刚读取到的版本
	if req.Version != nil {
		r.Version = *req.Version
	}

	entry := &model.RequestTimelineEntry{
		Status:      r.Status,
		Comment:     buildTimelineComment(statusChanged, staffAssigned, r.Status, req.Comment),
		UpdatedByID: adminID,
	}

	if err := s.repo.Request.UpdateWithVersion(ctx, r, entry); err != nil {
		if !errors.Is(err, apperrors.ErrOptimisticLock) {
			s.logger.Error("处置需求单失败", zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("需求单已处置",
		zap.String("request_id", r.RequestID),
		zap.String("admin_id", adminID),
		zap.Bool("status_changed", statusChanged),
		zap.Bool("staff_assigned", staffAssigned),
	)
	s.publishEvent(eventRequestUpdated, r.RequestID, adminID, r.Status)

	return s.loadResponse(ctx, id)
}

// AddComment 追加评论；评论区与时间线独立，不产生时间线记录
func (s *requestService) AddComment(ctx context.Context, id, callerID, role string, req *dto.AddCommentRequest) (*dto.RequestResponse, error) {
	r, err := s.repo.Request.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}

	if !canViewRequest(r, callerID, role) {
		return nil, ErrRequestAccessDenied
	}

	comment := &model.RequestComment{
		RequestID: r.RequestID,
		UserID:    callerID,
		Text:      req.Text,
	}
	if err := s.repo.Request.AppendComment(ctx, comment); err != nil {
		s.logger.Error("添加评论失败", zap.Error(err))
		return nil, err
	}

	s.publishEvent(eventRequestCommented, r.RequestID, callerID, r.Status)

	return s.loadResponse(ctx, id)
}

// Delete 硬删除需求单及其全部审计数据（路由层已限定 admin）
func (s *requestService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Request.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRequestNotFound
		}
		s.logger.Error("删除需求单失败", zap.Error(err))
		return err
	}
	s.logger.Info("需求单已删除", zap.String("request_id", id))
	return nil
}

func (s *requestService) Stats(ctx context.Context) (*dto.StatsResponse, error) {
	counts, err := s.repo.Request.CountByStatus(ctx)
	if err != nil {
		s.logger.Error("统计需求单失败", zap.Error(err))
		return nil, err
	}

	resp := &dto.StatsResponse{
		Pending:    counts[model.StatusPending],
		InProgress: counts[model.StatusInProgress],
		Completed:  counts[model.StatusCompleted],
		Cancelled:  counts[model.StatusCancelled],
	}
	resp.Total = resp.Pending + resp.InProgress + resp.Completed + resp.Cancelled
	return resp, nil
}

// ── 权限与构造辅助 ──

// canViewRequest 访问过滤：admin/staff 可读全量，client 仅可读本人需求单
func canViewRequest(r *model.Request, callerID, role string) bool {
	switch role {
	case model.RoleAdmin, model.RoleStaff:
		return true
	default:
		return r.ClientID == callerID
	}
}

// buildTimelineComment 生成时间线文案
// 管理员显式备注优先；否则按「状态变更在前、指派在后」拼接自动文案
func buildTimelineComment(statusChanged, staffAssigned bool, newStatus, comment string) string {
	if comment != "" {
		return comment
	}
	var changes []string
	if statusChanged {
		changes = append(changes, fmt.Sprintf(timelineStatusChanged, newStatus))
	}
	if staffAssigned {
		changes = append(changes, timelineStaffAssigned)
	}
	return strings.Join(changes, timelineJoiner)
}

// publishEvent 旁路发布生命周期事件，失败仅记录日志
func (s *requestService) publishEvent(routingKey, requestID, actorID, status string) {
	if s.publisher == nil {
		return
	}
	payload := map[string]any{
		"request_id":  requestID,
		"actor_id":    actorID,
		"status":      status,
		"occurred_at": time.Now().Format(time.RFC3339),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := s.publisher.Publish(ctx, routingKey, payload); err != nil {
		s.logger.Warn("事件发布失败",
			zap.String("routing_key", routingKey),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
	}
}

func (s *requestService) loadResponse(ctx context.Context, id string) (*dto.RequestResponse, error) {
	r, err := s.repo.Request.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toRequestResponse(r), nil
}

func toRequestResponse(r *model.Request) *dto.RequestResponse {
	resp := &dto.RequestResponse{
		ID:                r.RequestID,
		ServiceType:       r.ServiceType,
		Category:          r.Category,
		NumberOfPersonnel: r.NumberOfPersonnel,
		Duration:          r.Duration,
		StartDate:         r.StartDate.Format("2006-01-02"),
		ShiftType:         r.ShiftType,
		Description:       r.Description,
		Requirements:      r.Requirements,
		Budget:            r.Budget,
		Location:          r.Location,
		Priority:          r.Priority,
		Status:            r.Status,
		Version:           r.Version,
		Client:            toUserSummary(r.Client),
		AssignedTo:        toUserSummary(r.AssignedTo),
		CreatedAt:         r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         r.UpdatedAt.Format(time.RFC3339),
	}

	for i := range r.Attachments {
		a := &r.Attachments[i]
		resp.Attachments = append(resp.Attachments, dto.AttachmentItem{
			ID:         a.AttachmentID,
			Filename:   a.Filename,
			URL:        a.URL,
			UploadedAt: a.UploadedAt.Format(time.RFC3339),
		})
	}
	for i := range r.Comments {
		c := &r.Comments[i]
		resp.Comments = append(resp.Comments, dto.CommentItem{
			ID:        c.CommentID,
			Text:      c.Text,
			User:      toUserSummary(c.User),
			CreatedAt: c.CreatedAt.Format(time.RFC3339),
		})
	}
	for i := range r.Timeline {
		t := &r.Timeline[i]
		resp.Timeline = append(resp.Timeline, dto.TimelineItem{
			ID:        t.EntryID,
			Status:    t.Status,
			Comment:   t.Comment,
			UpdatedBy: toUserSummary(t.UpdatedBy),
			UpdatedAt: t.UpdatedAt.Format(time.RFC3339),
		})
	}
	return resp
}

func toRequestListItem(r *model.Request) dto.RequestListItem {
	return dto.RequestListItem{
		ID:                r.RequestID,
		ServiceType:       r.ServiceType,
		Category:          r.Category,
		NumberOfPersonnel: r.NumberOfPersonnel,
		StartDate:         r.StartDate.Format("2006-01-02"),
		Priority:          r.Priority,
		Status:            r.Status,
		Client:            toUserSummaryBrief(r.Client),
		AssignedTo:        toUserSummaryBrief(r.AssignedTo),
		CreatedAt:         r.CreatedAt.Format(time.RFC3339),
	}
}

func toUserSummary(u *model.User) *dto.UserSummary {
	if u == nil {
		return nil
	}
	return &dto.UserSummary{
		ID:      u.UserID,
		Name:    u.Name,
		Email:   u.Email,
		Phone:   u.Phone,
		Company: u.Company,
		Role:    u.Role,
	}
}

// toUserSummaryBrief 列表场景的浅层摘要，保留公司信息但不回传电话
func toUserSummaryBrief(u *model.User) *dto.UserSummary {
	if u == nil {
		return nil
	}
	return &dto.UserSummary{
		ID:      u.UserID,
		Name:    u.Name,
		Email:   u.Email,
		Company: u.Company,
		Role:    u.Role,
	}
}

// [自证通过] internal/service/request_service.go
