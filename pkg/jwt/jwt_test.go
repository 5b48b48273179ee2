package jwt

import (
	"errors"
	"testing"
	"time"

	"ep-project/backend/config"
)

func newTestManager(accessTTL time.Duration) *Manager {
	return NewManager(&config.AuthConfig{
		JWTSecret:       "test-secret-key-for-unit-tests",
		AccessTokenTTL:  accessTTL,
		RefreshTokenTTL: 168 * time.Hour,
	})
}

func TestManager_GenerateAndParse(t *testing.T) {
	mgr := newTestManager(15 * time.Minute)

	token, err := mgr.GenerateAccessToken("uid-1", "client")
	if err != nil {
		t.Fatalf("GenerateAccessToken 应成功: %v", err)
	}

	claims, err := mgr.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken 应成功: %v", err)
	}
	if claims.UserID != "uid-1" {
		t.Errorf("期望user_id=uid-1，实际=%s", claims.UserID)
	}
	if claims.Role != "client" {
		t.Errorf("期望role=client，实际=%s", claims.Role)
	}
	if claims.TokenType != "access" {
		t.Errorf("期望token_type=access，实际=%s", claims.TokenType)
	}
	if claims.ID == "" {
		t.Error("期望生成 JWT ID (jti)")
	}
}

func TestManager_RefreshTokenType(t *testing.T) {
	mgr := newTestManager(15 * time.Minute)

	token, err := mgr.GenerateRefreshToken("uid-1", "admin")
	if err != nil {
		t.Fatalf("GenerateRefreshToken 应成功: %v", err)
	}

	claims, err := mgr.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken 应成功: %v", err)
	}
	if claims.TokenType != "refresh" {
		t.Errorf("期望token_type=refresh，实际=%s", claims.TokenType)
	}
}

func TestManager_ParseExpiredToken(t *testing.T) {
	mgr := newTestManager(-time.Minute) // 立即过期

	token, err := mgr.GenerateAccessToken("uid-1", "client")
	if err != nil {
		t.Fatalf("GenerateAccessToken 应成功: %v", err)
	}

	_, err = mgr.ParseToken(token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Errorf("期望 ErrTokenExpired，实际: %v", err)
	}
}

func TestManager_ParseTamperedToken(t *testing.T) {
	mgr := newTestManager(15 * time.Minute)
	other := NewManager(&config.AuthConfig{
		JWTSecret:       "another-secret-key-entirely",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 168 * time.Hour,
	})

	token, _ := other.GenerateAccessToken("uid-1", "client")

	_, err := mgr.ParseToken(token)
	if !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("期望 ErrTokenInvalid（密钥不匹配），实际: %v", err)
	}
}

func TestManager_ParseGarbage(t *testing.T) {
	mgr := newTestManager(15 * time.Minute)

	_, err := mgr.ParseToken("not-a-jwt")
	if !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("期望 ErrTokenInvalid，实际: %v", err)
	}
}
