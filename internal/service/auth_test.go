package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/boddenberg/citizen-ai-portal/internal/domain"
	"github.com/boddenberg/citizen-ai-portal/internal/service"

	"go.uber.org/zap"
)

func newAuthService() *service.AuthService {
	return service.NewAuthService("citizen1:password123,citizen2:hunter2", "test-secret", 15*time.Minute, zap.NewNop())
}

func TestLogin_Success(t *testing.T) {
	svc := newAuthService()

	resp, err := svc.Login(context.Background(), &domain.LoginRequest{
		Username: "citizen1",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if resp.AccessToken == "" {
		t.Fatal("expected a signed access token")
	}
	if resp.Identity != "citizen1" {
		t.Errorf("expected identity 'citizen1', got %q", resp.Identity)
	}
	if resp.ExpiresIn != int((15 * time.Minute).Seconds()) {
		t.Errorf("unexpected expires_in: %d", resp.ExpiresIn)
	}

	claims, err := svc.ValidateAccessToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("token failed validation: %v", err)
	}
	if claims.Sub != "citizen1" {
		t.Errorf("expected sub 'citizen1', got %q", claims.Sub)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc := newAuthService()

	_, err := svc.Login(context.Background(), &domain.LoginRequest{
		Username: "citizen1",
		Password: "wrong",
	})

	var unauthorized *domain.ErrUnauthorized
	if !errors.As(err, &unauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestLogin_UnknownUser(t *testing.T) {
	svc := newAuthService()

	_, err := svc.Login(context.Background(), &domain.LoginRequest{
		Username: "nobody",
		Password: "password123",
	})

	var unauthorized *domain.ErrUnauthorized
	if !errors.As(err, &unauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestLogin_MissingFields(t *testing.T) {
	svc := newAuthService()

	_, err := svc.Login(context.Background(), &domain.LoginRequest{Username: "citizen1"})

	var validation *domain.ErrValidation
	if !errors.As(err, &validation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestValidateAccessToken_Garbage(t *testing.T) {
	svc := newAuthService()

	if _, err := svc.ValidateAccessToken("not-a-jwt"); err == nil {
		t.Fatal("expected error for malformed token")
	}
}

func TestValidateAccessToken_WrongSecret(t *testing.T) {
	issuer := service.NewAuthService("citizen1:password123", "secret-a", 15*time.Minute, zap.NewNop())
	verifier := service.NewAuthService("citizen1:password123", "secret-b", 15*time.Minute, zap.NewNop())

	resp, err := issuer.Login(context.Background(), &domain.LoginRequest{
		Username: "citizen1",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if _, err := verifier.ValidateAccessToken(resp.AccessToken); err == nil {
		t.Fatal("expected validation failure with a different secret")
	}
}
