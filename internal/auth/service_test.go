package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgAuth "github.com/mahafpc/agrichain-backend/pkg/auth"
	"github.com/mahafpc/agrichain-backend/pkg/auth/session"
	"github.com/mahafpc/agrichain-backend/pkg/config"
	"github.com/mahafpc/agrichain-backend/pkg/db/models"
	"github.com/mahafpc/agrichain-backend/pkg/enums"
	pkgerrors "github.com/mahafpc/agrichain-backend/pkg/errors"
	"github.com/mahafpc/agrichain-backend/pkg/security"
)

type fakeUserRepo struct {
	byEmail   map[string]*models.User
	lastLogin map[uuid.UUID]time.Time
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	if f.lastLogin == nil {
		f.lastLogin = map[uuid.UUID]time.Time{}
	}
	f.lastLogin[id] = at
	return nil
}

type fakeSessions struct {
	tokens  map[string]string
	revoked []string
}

func (f *fakeSessions) Generate(_ context.Context, accessID string) (string, error) {
	token := "refresh-" + accessID
	f.tokens[accessID] = token
	return token, nil
}

func (f *fakeSessions) Rotate(_ context.Context, oldAccessID, provided string) (string, string, error) {
	stored, ok := f.tokens[oldAccessID]
	if !ok || stored != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(f.tokens, oldAccessID)
	newAccessID := session.NewAccessID()
	token := "refresh-" + newAccessID
	f.tokens[newAccessID] = token
	return newAccessID, token, nil
}

func (f *fakeSessions) Revoke(_ context.Context, accessID string) error {
	delete(f.tokens, accessID)
	f.revoked = append(f.revoked, accessID)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "agrichain-test",
		ExpirationMinutes: 15,
	}
}

func newTestService(t *testing.T) (Service, *fakeUserRepo, *fakeSessions, uuid.UUID) {
	t.Helper()
	hash, err := security.HashPassword("correct-horse", config.PasswordConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	coopID := uuid.New()
	user := &models.User{
		ID:            uuid.New(),
		Email:         "clerk@rahurifpc.in",
		PasswordHash:  hash,
		FullName:      "Sunita Jadhav",
		Role:          enums.RoleCooperative,
		CooperativeID: &coopID,
		IsActive:      true,
	}

	repo := &fakeUserRepo{byEmail: map[string]*models.User{user.Email: user}}
	sessions := &fakeSessions{tokens: map[string]string{}}
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: sessions,
		JWTConfig:      testJWTConfig(),
	})
	if err != nil {
		t.Fatalf("auth service: %v", err)
	}
	return svc, repo, sessions, user.ID
}

func TestLoginIssuesTokenPair(t *testing.T) {
	svc, repo, _, userID := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Login(ctx, LoginRequest{Email: " Clerk@RahuriFPC.in ", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("expected token pair")
	}
	if resp.User == nil || resp.User.ID != userID {
		t.Fatalf("unexpected user payload: %+v", resp.User)
	}
	if _, ok := repo.lastLogin[userID]; !ok {
		t.Fatal("expected last login to be recorded")
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.Role != enums.RoleCooperative || claims.CooperativeID == nil {
		t.Fatalf("claims missing scope: %+v", claims)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	ctx := context.Background()

	cases := []LoginRequest{
		{Email: "clerk@rahurifpc.in", Password: "wrong"},
		{Email: "nobody@rahurifpc.in", Password: "correct-horse"},
		{Email: "", Password: "correct-horse"},
	}
	for _, req := range cases {
		_, err := svc.Login(ctx, req)
		if err == nil {
			t.Fatalf("expected login to fail for %q", req.Email)
		}
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
			t.Fatalf("expected unauthorized, got %v", err)
		}
	}

	// deactivated accounts get the same answer as bad passwords
	repo.byEmail["clerk@rahurifpc.in"].IsActive = false
	_, err := svc.Login(ctx, LoginRequest{Email: "clerk@rahurifpc.in", Password: "correct-horse"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for inactive user, got %v", err)
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	svc, _, sessions, _ := newTestService(t)
	ctx := context.Background()

	login, err := svc.Login(ctx, LoginRequest{Email: "clerk@rahurifpc.in", Password: "correct-horse"})
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
	if refreshed.AccessToken == "" || refreshed.RefreshToken == "" {
		t.Fatal("expected replacement token pair")
	}
	if refreshed.RefreshToken == login.RefreshToken {
		t.Fatal("refresh token must rotate")
	}

	// the old pair is now dead
	_, err = svc.Refresh(ctx, RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized on replayed pair, got %v", err)
	}

	if len(sessions.tokens) != 1 {
		t.Fatalf("expected exactly one live session, got %d", len(sessions.tokens))
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, _, sessions, _ := newTestService(t)
	ctx := context.Background()

	login, err := svc.Login(ctx, LoginRequest{Email: "clerk@rahurifpc.in", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := svc.Logout(ctx, LogoutRequest{AccessToken: login.AccessToken}); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(sessions.tokens) != 0 {
		t.Fatal("expected session to be revoked")
	}
	if len(sessions.revoked) != 1 {
		t.Fatalf("expected one revocation, got %d", len(sessions.revoked))
	}

	if err := svc.Logout(ctx, LogoutRequest{AccessToken: "garbage"}); err == nil {
		t.Fatal("expected logout to reject a malformed token")
	}
}
