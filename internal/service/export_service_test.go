package service

import (
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"ep-project/backend/internal/model"
	"ep-project/backend/internal/repository"
)

func setupTestExportService() (ExportService, *mockUserRepo, *mockRequestRepo) {
	userRepo := newMockUserRepo()
	requestRepo := newMockRequestRepo(userRepo)
	repo := &repository.Repository{
		User:    userRepo,
		Request: requestRepo,
	}
	svc := NewExportService(repo, zap.NewNop())
	return svc, userRepo, requestRepo
}

func TestExportService_ExportRequests_CSV(t *testing.T) {
	svc, userRepo, requestRepo := setupTestExportService()
	seedUser(userRepo, "client-1", "客户甲", model.RoleClient)
	requestSvc := NewRequestService(&repository.Repository{
		User:    userRepo,
		Request: requestRepo,
	}, nil, zap.NewNop())
	_, _ = requestSvc.Create(context.Background(), "client-1", validCreateRequest())
	_, _ = requestSvc.Create(context.Background(), "client-1", validCreateRequest())

	buf, filename, err := svc.ExportRequests(context.Background(), "csv", repository.RequestFilter{})
	if err != nil {
		t.Fatalf("ExportRequests 应成功: %v", err)
	}
	if !strings.HasSuffix(filename, ".csv") {
		t.Errorf("期望.csv文件名，实际=%s", filename)
	}

	records, err := csv.NewReader(buf).ReadAll()
	if err != nil {
		t.Fatalf("CSV 应可解析: %v", err)
	}
	// 表头 + 2 条数据
	if len(records) != 3 {
		t.Errorf("期望3行，实际=%d", len(records))
	}
	if len(records[0]) != len(exportHeaders) {
		t.Errorf("期望%d列，实际=%d", len(exportHeaders), len(records[0]))
	}
}

func TestExportService_ExportRequests_XLSX(t *testing.T) {
	svc, userRepo, requestRepo := setupTestExportService()
	seedUser(userRepo, "client-1", "客户甲", model.RoleClient)
	requestSvc := NewRequestService(&repository.Repository{
		User:    userRepo,
		Request: requestRepo,
	}, nil, zap.NewNop())
	_, _ = requestSvc.Create(context.Background(), "client-1", validCreateRequest())

	buf, filename, err := svc.ExportRequests(context.Background(), "xlsx", repository.RequestFilter{})
	if err != nil {
		t.Fatalf("ExportRequests 应成功: %v", err)
	}
	if !strings.HasSuffix(filename, ".xlsx") {
		t.Errorf("期望.xlsx文件名，实际=%s", filename)
	}
	if buf.Len() == 0 {
		t.Error("导出内容不应为空")
	}
}

func TestExportService_ExportRequests_InvalidFormat(t *testing.T) {
	svc, _, _ := setupTestExportService()

	_, _, err := svc.ExportRequests(context.Background(), "pdf", repository.RequestFilter{})
	if !errors.Is(err, ErrExportFormatInvalid) {
		t.Errorf("期望 ErrExportFormatInvalid，实际: %v", err)
	}
}
