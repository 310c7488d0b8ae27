package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgAuth "stocktally-backend/pkg/auth"
	"stocktally-backend/pkg/auth/session"
	"stocktally-backend/pkg/config"
	"stocktally-backend/pkg/db/models"
	pkgerrors "stocktally-backend/pkg/errors"
	"stocktally-backend/pkg/security"
)

type stubUserRepo struct {
	users     map[uuid.UUID]*models.User
	lastLogin map[uuid.UUID]time.Time
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		users:     map[uuid.UUID]*models.User{},
		lastLogin: map[uuid.UUID]time.Time{},
	}
}

func (s *stubUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *stubUserRepo) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	s.lastLogin[id] = at
	return nil
}

type stubSessionManager struct {
	refreshByAccessID map[string]string
	revoked           []string
}

func newStubSessionManager() *stubSessionManager {
	return &stubSessionManager{refreshByAccessID: map[string]string{}}
}

func (s *stubSessionManager) Generate(_ context.Context, accessID string) (string, error) {
	token := "refresh-" + uuid.NewString()
	s.refreshByAccessID[accessID] = token
	return token, nil
}

func (s *stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	current, ok := s.refreshByAccessID[oldAccessID]
	if !ok || current != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(s.refreshByAccessID, oldAccessID)
	newAccessID := session.NewAccessID()
	token, err := s.Generate(ctx, newAccessID)
	if err != nil {
		return "", "", err
	}
	return newAccessID, token, nil
}

func (s *stubSessionManager) Revoke(_ context.Context, accessID string) error {
	delete(s.refreshByAccessID, accessID)
	s.revoked = append(s.revoked, accessID)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "stocktally-test",
		ExpirationMinutes: 15,
	}
}

func newLoginTestService(t *testing.T) (Service, *stubUserRepo, *stubSessionManager) {
	t.Helper()
	repo := newStubUserRepo()
	sessions := newStubSessionManager()
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: sessions,
		JWTConfig:      testJWTConfig(),
	})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	return svc, repo, sessions
}

func seedUser(t *testing.T, repo *stubUserRepo, email, username, password string) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, testPasswordConfig())
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		Username:     username,
		PasswordHash: hash,
	}
	repo.users[user.ID] = user
	return user
}

func TestLoginMintsTokenPair(t *testing.T) {
	svc, repo, _ := newLoginTestService(t)
	user := seedUser(t, repo, "nino@example.com", "nino", "correct horse battery")

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "  Nino@Example.com ",
		Password: "correct horse battery",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.RefreshToken == "" {
		t.Fatal("expected refresh token")
	}
	if resp.User == nil || resp.User.ID != user.ID {
		t.Fatalf("unexpected user in response: %+v", resp.User)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("expected user id %s in claims, got %s", user.ID, claims.UserID)
	}
	if claims.Username != "nino" {
		t.Fatalf("expected username in claims, got %q", claims.Username)
	}
	if _, ok := repo.lastLogin[user.ID]; !ok {
		t.Fatal("expected last login timestamp to be recorded")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, repo, _ := newLoginTestService(t)
	seedUser(t, repo, "nino@example.com", "nino", "correct horse battery")

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "nino@example.com",
		Password: "wrong",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
	if typed.Message() != invalidCredentialsMessage {
		t.Fatalf("unexpected message %q", typed.Message())
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _, _ := newLoginTestService(t)

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "ghost@example.com",
		Password: "whatever",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	svc, repo, _ := newLoginTestService(t)
	seedUser(t, repo, "nino@example.com", "nino", "correct horse battery")
	ctx := context.Background()

	login, err := svc.Login(ctx, LoginRequest{Email: "nino@example.com", Password: "correct horse battery"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	refreshed, err := svc.Refresh(ctx, RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.AccessToken == login.AccessToken {
		t.Fatal("expected a freshly minted access token")
	}
	if refreshed.RefreshToken == login.RefreshToken {
		t.Fatal("expected a rotated refresh token")
	}

	// The original pair is single use.
	_, err = svc.Refresh(ctx, RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED on replay, got %v", err)
	}
}

func TestRefreshRejectsWrongRefreshToken(t *testing.T) {
	svc, repo, _ := newLoginTestService(t)
	seedUser(t, repo, "nino@example.com", "nino", "correct horse battery")
	ctx := context.Background()

	login, err := svc.Login(ctx, LoginRequest{Email: "nino@example.com", Password: "correct horse battery"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	_, err = svc.Refresh(ctx, RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: "refresh-forged",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, repo, sessions := newLoginTestService(t)
	seedUser(t, repo, "nino@example.com", "nino", "correct horse battery")
	ctx := context.Background()

	login, err := svc.Login(ctx, LoginRequest{Email: "nino@example.com", Password: "correct horse battery"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.Logout(ctx, LogoutRequest{AccessToken: login.AccessToken}); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(sessions.revoked) != 1 {
		t.Fatalf("expected one revoked session, got %d", len(sessions.revoked))
	}

	// Refresh after logout must fail.
	_, err = svc.Refresh(ctx, RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED after logout, got %v", err)
	}
}

func TestMeUnknownUser(t *testing.T) {
	svc, _, _ := newLoginTestService(t)

	_, err := svc.Me(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}
