package service_test

import (
	"context"
	"testing"
	"time"

	"alcyxob/gym-portal/internal/domain"
	"alcyxob/gym-portal/internal/policy"
	"alcyxob/gym-portal/internal/service"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "test-secret"

func parseToken(t *testing.T, token string) jwt.MapClaims {
	t.Helper()
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	return claims
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	svc := service.NewAuthService(store.Users, testSecret, time.Hour)

	user, err := svc.Register(ctx, " Ana ", "Ana@Example.com", "password123")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.Role != domain.RoleMember || user.Email != "ana@example.com" || user.Name != "Ana" {
		t.Errorf("unexpected user %+v", user)
	}
	if user.Member == nil || user.PTBalance() != 0 || user.PasswordHash != "" {
		t.Errorf("member profile not initialized or hash leaked: %+v", user)
	}

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.Register(ctx, "Other", "ANA@example.com", "password123")
		assertErrorIs(t, err, service.ErrUserAlreadyExists)
	})

	t.Run("short password", func(t *testing.T) {
		_, err := svc.Register(ctx, "Bo", "bo@example.com", "short")
		assertErrorIs(t, err, service.ErrValidation)
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := svc.Register(ctx, "", "bo@example.com", "password123")
		assertErrorIs(t, err, service.ErrValidation)
	})

	t.Run("login issues role claims", func(t *testing.T) {
		token, u, err := svc.Login(ctx, "ana@example.com", "password123")
		if err != nil {
			t.Fatalf("Login() error = %v", err)
		}
		claims := parseToken(t, token)
		if claims["uid"] != u.ID.Hex() || claims["role"] != string(domain.RoleMember) {
			t.Errorf("unexpected claims %v", claims)
		}
		if claims["iss"] != "gym-portal" {
			t.Errorf("issuer = %v", claims["iss"])
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "ana@example.com", "password124")
		assertErrorIs(t, err, service.ErrAuthenticationFailed)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "nobody@example.com", "password123")
		assertErrorIs(t, err, service.ErrAuthenticationFailed)
	})
}

func TestRefreshAndChangePassword(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	svc := service.NewAuthService(store.Users, testSecret, 0)

	user, err := svc.Register(ctx, "Ana", "ana@example.com", "password123")
	if err != nil {
		t.Fatal(err)
	}
	p := principal(user)

	token, _, err := svc.Refresh(ctx, p)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	claims := parseToken(t, token)
	exp, _ := claims["exp"].(float64)
	if lifetime := time.Until(time.Unix(int64(exp), 0)); lifetime < 29*24*time.Hour {
		t.Errorf("default lifetime too short: %v", lifetime)
	}

	_, _, err = svc.Refresh(ctx, policy.Principal{ID: primitive.NewObjectID(), Role: domain.RoleMember})
	assertErrorIs(t, err, policy.ErrUnauthenticated)

	err = svc.ChangePassword(ctx, p, "wrong-password", "new-password-1")
	assertErrorIs(t, err, service.ErrAuthenticationFailed)

	err = svc.ChangePassword(ctx, p, "password123", "short")
	assertErrorIs(t, err, service.ErrValidation)

	if err := svc.ChangePassword(ctx, p, "password123", "new-password-1"); err != nil {
		t.Fatalf("ChangePassword() error = %v", err)
	}
	if _, _, err := svc.Login(ctx, "ana@example.com", "new-password-1"); err != nil {
		t.Errorf("login with new password: %v", err)
	}
	if _, _, err := svc.Login(ctx, "ana@example.com", "password123"); err == nil {
		t.Error("old password still accepted")
	}
}
