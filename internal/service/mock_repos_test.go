package service

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"ep-project/backend/internal/model"
	"ep-project/backend/internal/repository"
	apperrors "ep-project/backend/pkg/errors"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = fmt.Sprintf("uid-%d", len(m.users)+1)
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) ListByRole(_ context.Context, role string, offset, limit int) ([]model.User, int64, error) {
	var filtered []model.User
	for _, u := range m.users {
		if u.Role == role {
			filtered = append(filtered, *u)
		}
	}
	total := int64(len(filtered))
	if offset >= len(filtered) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[offset:end], total, nil
}

// ── Mock RequestRepository ──

type mockRequestRepo struct {
	users     *mockUserRepo // 用于填充关联，模拟 Preload
	requests  map[string]*model.Request
	comments  []model.RequestComment
	timeline  []model.RequestTimelineEntry
	idCounter int
}

func newMockRequestRepo(users *mockUserRepo) *mockRequestRepo {
	return &mockRequestRepo{
		users:    users,
		requests: make(map[string]*model.Request),
	}
}

func (m *mockRequestRepo) Create(_ context.Context, req *model.Request, entry *model.RequestTimelineEntry) error {
	m.idCounter++
	if req.RequestID == "" {
		req.RequestID = fmt.Sprintf("req-%d", m.idCounter)
	}
	if req.Version == 0 {
		req.Version = 1
	}
	req.CreatedAt = time.Now()
	req.UpdatedAt = time.Now()
	cp := *req
	m.requests[cp.RequestID] = &cp

	entry.RequestID = req.RequestID
	m.appendTimeline(entry)
	return nil
}

func (m *mockRequestRepo) GetByID(_ context.Context, id string) (*model.Request, error) {
	r, ok := m.requests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}

	cp := *r
	cp.Client = m.users.users[cp.ClientID]
	if cp.AssignedToID != nil {
		cp.AssignedTo = m.users.users[*cp.AssignedToID]
	}
	cp.Comments = nil
	for _, c := range m.comments {
		if c.RequestID == id {
			c.User = m.users.users[c.UserID]
			cp.Comments = append(cp.Comments, c)
		}
	}
	cp.Timeline = nil
	for _, t := range m.timeline {
		if t.RequestID == id {
			t.UpdatedBy = m.users.users[t.UpdatedByID]
			cp.Timeline = append(cp.Timeline, t)
		}
	}
	return &cp, nil
}

func (m *mockRequestRepo) List(_ context.Context, filter repository.RequestFilter, offset, limit int) ([]model.Request, int64, error) {
	var filtered []model.Request
	for _, r := range m.requests {
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		if filter.Category != "" && r.Category != filter.Category {
			continue
		}
		if filter.Priority != "" && r.Priority != filter.Priority {
			continue
		}
		if filter.ClientID != "" && r.ClientID != filter.ClientID {
			continue
		}
		cp := *r
		cp.Client = m.users.users[cp.ClientID]
		if cp.AssignedToID != nil {
			cp.AssignedTo = m.users.users[*cp.AssignedToID]
		}
		filtered = append(filtered, cp)
	}
	total := int64(len(filtered))
	if offset >= len(filtered) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[offset:end], total, nil
}

func (m *mockRequestRepo) Update(_ context.Context, req *model.Request) error {
	if _, ok := m.requests[req.RequestID]; !ok {
		return gorm.ErrRecordNotFound
	}
	req.UpdatedAt = time.Now()
	cp := *req
	m.requests[cp.RequestID] = &cp
	return nil
}

func (m *mockRequestRepo) UpdateWithVersion(_ context.Context, req *model.Request, entry *model.RequestTimelineEntry) error {
	stored, ok := m.requests[req.RequestID]
	if !ok || stored.Version != req.Version {
		return apperrors.ErrOptimisticLock
	}
	stored.Status = req.Status
	stored.AssignedToID = req.AssignedToID
	stored.Version++
	stored.UpdatedAt = time.Now()

	entry.RequestID = req.RequestID
	m.appendTimeline(entry)
	return nil
}

func (m *mockRequestRepo) AppendComment(_ context.Context, comment *model.RequestComment) error {
	m.idCounter++
	if comment.CommentID == "" {
		comment.CommentID = fmt.Sprintf("cmt-%d", m.idCounter)
	}
	comment.CreatedAt = time.Now()
	m.comments = append(m.comments, *comment)
	return nil
}

func (m *mockRequestRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.requests[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.requests, id)
	return nil
}

func (m *mockRequestRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, r := range m.requests {
		counts[r.Status]++
	}
	return counts, nil
}

func (m *mockRequestRepo) appendTimeline(entry *model.RequestTimelineEntry) {
	m.idCounter++
	if entry.EntryID == "" {
		entry.EntryID = fmt.Sprintf("tl-%d", m.idCounter)
	}
	entry.UpdatedAt = time.Now()
	m.timeline = append(m.timeline, *entry)
}

// ── Mock Publisher ──

type publishedEvent struct {
	RoutingKey string
	Payload    any
}

type mockPublisher struct {
	events []publishedEvent
}

func (m *mockPublisher) Publish(_ context.Context, routingKey string, payload any) error {
	m.events = append(m.events, publishedEvent{RoutingKey: routingKey, Payload: payload})
	return nil
}

func (m *mockPublisher) Close() error { return nil }
