package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"ep-project/backend/internal/dto"
	"ep-project/backend/internal/repository"
	"ep-project/backend/internal/service"
	apperrors "ep-project/backend/pkg/errors"
	"ep-project/backend/pkg/jwt"
	"ep-project/backend/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	registerResult   *dto.RegisterResponse
	registerErr      error
	loginResult      *dto.TokenResponse
	loginErr         error
	logoutErr        error
	refreshResult    *dto.TokenResponse
	refreshErr       error
	getCurrentResult *dto.UserDetailResponse
	getCurrentErr    error
}

func (m *mockAuthService) Register(_ context.Context, _ *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	return m.registerResult, m.registerErr
}
func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) Logout(_ context.Context, _ *jwt.Claims) error {
	return m.logoutErr
}
func (m *mockAuthService) RefreshToken(_ context.Context, _ string) (*dto.TokenResponse, error) {
	return m.refreshResult, m.refreshErr
}
func (m *mockAuthService) GetCurrentUser(_ context.Context, _ string) (*dto.UserDetailResponse, error) {
	return m.getCurrentResult, m.getCurrentErr
}

// ── Mock RequestService ──

type mockRequestService struct {
	createResult      *dto.RequestResponse
	createErr         error
	getResult         *dto.RequestResponse
	getErr            error
	listResult        []dto.RequestListItem
	listTotal         int64
	listErr           error
	clientUpdateCalls int
	adminUpdateCalls  int
	updateResult      *dto.RequestResponse
	updateErr         error
	commentResult     *dto.RequestResponse
	commentErr        error
	deleteErr         error
	statsResult       *dto.StatsResponse
	statsErr          error
}

func (m *mockRequestService) Create(_ context.Context, _ string, _ *dto.CreateRequestRequest) (*dto.RequestResponse, error) {
	return m.createResult, m.createErr
}
func (m *mockRequestService) GetByID(_ context.Context, _, _, _ string) (*dto.RequestResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockRequestService) List(_ context.Context, _, _ string, _ *dto.RequestListRequest) ([]dto.RequestListItem, int64, error) {
	return m.listResult, m.listTotal, m.listErr
}
func (m *mockRequestService) UpdateAsClient(_ context.Context, _, _ string, _ *dto.ClientUpdateRequest) (*dto.RequestResponse, error) {
	m.clientUpdateCalls++
	return m.updateResult, m.updateErr
}
func (m *mockRequestService) UpdateAsAdmin(_ context.Context, _, _ string, _ *dto.AdminUpdateRequest) (*dto.RequestResponse, error) {
	m.adminUpdateCalls++
	return m.updateResult, m.updateErr
}
func (m *mockRequestService) AddComment(_ context.Context, _, _, _ string, _ *dto.AddCommentRequest) (*dto.RequestResponse, error) {
	return m.commentResult, m.commentErr
}
func (m *mockRequestService) Delete(_ context.Context, _ string) error {
	return m.deleteErr
}
func (m *mockRequestService) Stats(_ context.Context) (*dto.StatsResponse, error) {
	return m.statsResult, m.statsErr
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportRequests(_ context.Context, _ string, _ repository.RequestFilter) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ── Mock ContactService ──

type mockContactService struct {
	err error
}

func (m *mockContactService) Submit(_ context.Context, _ *dto.ContactRequest) error {
	return m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func setupRecorder() *httptest.ResponseRecorder {
	return httptest.NewRecorder()
}

func setAuthAs(c *gin.Context, userID, role string) {
	c.Set("user_id", userID)
	c.Set("role", role)
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func validCreateBody() dto.CreateRequestRequest {
	return dto.CreateRequestRequest{
		ServiceType:       "security",
		Category:          "活动安保",
		NumberOfPersonnel: 5,
		Duration:          "3 个月",
		StartDate:         "2026-10-01",
		ShiftType:         "night",
		Description:       "厂区夜间巡逻",
		Location:          "上海",
	}
}

// ═══════════════════════════════════════════════════════════
// AuthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_Register_Success(t *testing.T) {
	mock := &mockAuthService{
		registerResult: &dto.RegisterResponse{ID: "uid-1", Name: "新客户", Email: "new@test.com"},
	}
	h := NewAuthHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("POST", "/auth/register", jsonBody(dto.RegisterRequest{
		Name:     "新客户",
		Email:    "new@test.com",
		Password: "password123",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
}

func TestAuthHandler_Register_DuplicateEmail(t *testing.T) {
	mock := &mockAuthService{registerErr: service.ErrEmailExists}
	h := NewAuthHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("POST", "/auth/register", jsonBody(dto.RegisterRequest{
		Name:     "撞邮箱",
		Email:    "taken@test.com",
		Password: "password123",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 11002 {
		t.Errorf("expected code 11002, got %d", resp.Code)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	mock := &mockAuthService{
		loginResult: &dto.TokenResponse{
			AccessToken:  "test-access-token",
			RefreshToken: "test-refresh-token",
			ExpiresIn:    900,
		},
	}
	h := NewAuthHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{
		Email:    "client@test.com",
		Password: "password123",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestAuthHandler_Login_BadJSON(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	w := setupRecorder()
	req := httptest.NewRequest("POST", "/auth/login", bytes.NewReader([]byte("invalid json")))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	mock := &mockAuthService{loginErr: service.ErrInvalidCredentials}
	h := NewAuthHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{
		Email:    "client@test.com",
		Password: "wrong",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 11001 {
		t.Errorf("expected code 11001, got %d", resp.Code)
	}
}

func TestAuthHandler_GetCurrentUser_Unauthenticated(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	w := setupRecorder()
	req := httptest.NewRequest("GET", "/auth/me", nil)

	r := gin.New()
	r.GET("/auth/me", h.GetCurrentUser)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// RequestHandler Tests
// ═══════════════════════════════════════════════════════════

func TestRequestHandler_Create_Success(t *testing.T) {
	mock := &mockRequestService{
		createResult: &dto.RequestResponse{ID: "req-1", Status: "pending"},
	}
	h := NewRequestHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("POST", "/requests", jsonBody(validCreateBody()))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/requests", func(c *gin.Context) {
		setAuthAs(c, "client-1", "client")
		h.Create(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
}

func TestRequestHandler_Create_InvalidServiceType(t *testing.T) {
	h := NewRequestHandler(&mockRequestService{})

	body := validCreateBody()
	body.ServiceType = "catering" // 不在枚举内

	w := setupRecorder()
	req := httptest.NewRequest("POST", "/requests", jsonBody(body))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/requests", func(c *gin.Context) {
		setAuthAs(c, "client-1", "client")
		h.Create(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestRequestHandler_Update_DispatchByRole(t *testing.T) {
	mock := &mockRequestService{
		updateResult: &dto.RequestResponse{ID: "req-1"},
	}
	h := NewRequestHandler(mock)

	r := gin.New()
	r.PUT("/client/:id", func(c *gin.Context) {
		setAuthAs(c, "client-1", "client")
		h.Update(c)
	})
	r.PUT("/admin/:id", func(c *gin.Context) {
		setAuthAs(c, "admin-1", "admin")
		h.Update(c)
	})
	r.PUT("/staff/:id", func(c *gin.Context) {
		setAuthAs(c, "staff-1", "staff")
		h.Update(c)
	})

	// client 分流到 UpdateAsClient
	w := setupRecorder()
	req := httptest.NewRequest("PUT", "/client/req-1", jsonBody(dto.ClientUpdateRequest{}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("client update expected 200, got %d", w.Code)
	}
	if mock.clientUpdateCalls != 1 {
		t.Errorf("expected 1 client update call, got %d", mock.clientUpdateCalls)
	}

	// admin 分流到 UpdateAsAdmin
	w = setupRecorder()
	req = httptest.NewRequest("PUT", "/admin/req-1", jsonBody(dto.AdminUpdateRequest{}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("admin update expected 200, got %d", w.Code)
	}
	if mock.adminUpdateCalls != 1 {
		t.Errorf("expected 1 admin update call, got %d", mock.adminUpdateCalls)
	}

	// staff 无更新权限
	w = setupRecorder()
	req = httptest.NewRequest("PUT", "/staff/req-1", jsonBody(dto.ClientUpdateRequest{}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("staff update expected 403, got %d", w.Code)
	}
}

func TestRequestHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"NotFound", service.ErrRequestNotFound, 404, 30001},
		{"AccessDenied", service.ErrRequestAccessDenied, 403, 30002},
		{"AssigneeInvalid", service.ErrAssigneeInvalid, 400, 30003},
		{"OptimisticLock", apperrors.ErrOptimisticLock, 409, 30004},
		{"InternalError", errors.New("unknown"), 500, 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockRequestService{getErr: tt.err}
			h := NewRequestHandler(mock)

			w := setupRecorder()
			req := httptest.NewRequest("GET", "/requests/req-1", nil)

			r := gin.New()
			r.GET("/requests/:id", func(c *gin.Context) {
				setAuthAs(c, "client-1", "client")
				h.Get(c)
			})
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			resp := parseResponse(w)
			if resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestRequestHandler_AddComment_MissingText(t *testing.T) {
	h := NewRequestHandler(&mockRequestService{})

	w := setupRecorder()
	req := httptest.NewRequest("POST", "/requests/req-1/comments", jsonBody(map[string]string{}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/requests/:id/comments", func(c *gin.Context) {
		setAuthAs(c, "client-1", "client")
		h.AddComment(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestRequestHandler_Delete_NotFound(t *testing.T) {
	mock := &mockRequestService{deleteErr: service.ErrRequestNotFound}
	h := NewRequestHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("DELETE", "/requests/nonexistent", nil)

	r := gin.New()
	r.DELETE("/requests/:id", func(c *gin.Context) {
		setAuthAs(c, "admin-1", "admin")
		h.Delete(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestRequestHandler_Stats_Success(t *testing.T) {
	mock := &mockRequestService{
		statsResult: &dto.StatsResponse{Total: 3, Pending: 2, InProgress: 1},
	}
	h := NewRequestHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("GET", "/requests/stats", nil)

	r := gin.New()
	r.GET("/requests/stats", func(c *gin.Context) {
		setAuthAs(c, "admin-1", "admin")
		h.Stats(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ContactHandler Tests
// ═══════════════════════════════════════════════════════════

func TestContactHandler_Submit_Success(t *testing.T) {
	h := NewContactHandler(&mockContactService{})

	w := setupRecorder()
	req := httptest.NewRequest("POST", "/contact", jsonBody(dto.ContactRequest{
		Name:    "访客",
		Email:   "visitor@test.com",
		Message: "想咨询安保服务报价",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/contact", h.Submit)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestContactHandler_Submit_MissingMessage(t *testing.T) {
	h := NewContactHandler(&mockContactService{})

	w := setupRecorder()
	req := httptest.NewRequest("POST", "/contact", jsonBody(dto.ContactRequest{
		Name:  "访客",
		Email: "visitor@test.com",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/contact", h.Submit)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_XLSX(t *testing.T) {
	mock := &mockExportService{
		buf:      bytes.NewBufferString("excel content"),
		filename: "requests_20260829_120000.xlsx",
	}
	h := NewExportHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("GET", "/export/requests", nil)

	r := gin.New()
	r.GET("/export/requests", h.ExportRequests)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != contentTypeXLSX {
		t.Errorf("unexpected content type: %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); cd == "" {
		t.Error("expected Content-Disposition header")
	}
}

func TestExportHandler_InvalidFormat(t *testing.T) {
	mock := &mockExportService{err: service.ErrExportFormatInvalid}
	h := NewExportHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("GET", "/export/requests?format=pdf", nil)

	r := gin.New()
	r.GET("/export/requests", h.ExportRequests)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}
