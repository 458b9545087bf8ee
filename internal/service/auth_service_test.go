package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"bca-portal/internal/dto"
	"bca-portal/internal/model"
	"bca-portal/pkg/jwt"
)

// fakeBlacklist 内存版 Token 黑名单
type fakeBlacklist struct {
	revoked map[string]time.Duration
}

func newFakeBlacklist() *fakeBlacklist {
	return &fakeBlacklist{revoked: make(map[string]time.Duration)}
}

func (f *fakeBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	f.revoked[jti] = ttl
	return nil
}

func (f *fakeBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	_, ok := f.revoked[jti]
	return ok, nil
}

type authFixture struct {
	env       *testEnv
	jwtMgr    *jwt.Manager
	blacklist *fakeBlacklist
	auth      AuthService
}

func setupAuth(t *testing.T) *authFixture {
	t.Helper()
	env := newTestEnv()
	mgr := jwt.NewManager(&env.cfg.Auth)
	bl := newFakeBlacklist()

	hash, err := bcrypt.GenerateFromPassword([]byte("Passw0rd!"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("生成密码哈希失败: %v", err)
	}
	env.addStudent("s1", 2)
	env.mocks.user.users["u-student"] = &model.User{
		UserID: "u-student", Name: "Stu s1", Email: "s1@test.com",
		PasswordHash: string(hash), Role: model.RoleStudent, ProfileID: model.StrPtr("s1"), IsActive: true,
	}
	env.mocks.user.users["u-disabled"] = &model.User{
		UserID: "u-disabled", Name: "Old", Email: "old@test.com",
		PasswordHash: string(hash), Role: model.RoleTeacher, IsActive: false,
	}

	return &authFixture{
		env:       env,
		jwtMgr:    mgr,
		blacklist: bl,
		auth:      NewAuthService(env.repo, mgr, bl, env.clock, zap.NewNop()),
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	f := setupAuth(t)

	resp, err := f.auth.Login(context.Background(), &dto.LoginRequest{Email: "s1@test.com", Password: "Passw0rd!"})
	if err != nil {
		t.Fatalf("Login 应成功: %v", err)
	}
	if resp.User.ProfileID != "s1" || resp.User.Role != model.RoleStudent {
		t.Errorf("用户信息不符，实际 %+v", resp.User)
	}
	if resp.ExpiresIn != int((15 * time.Minute).Seconds()) {
		t.Errorf("期望 ExpiresIn=900，实际 %d", resp.ExpiresIn)
	}

	claims, err := f.jwtMgr.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("AccessToken 应可解析: %v", err)
	}
	if claims.ProfileID != "s1" || claims.TokenType != "access" {
		t.Errorf("claims 不符，实际 %+v", claims)
	}
	if f.env.mocks.user.users["u-student"].LastLoginAt == nil {
		t.Error("登录后应记录最后登录时间")
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	f := setupAuth(t)

	_, err := f.auth.Login(context.Background(), &dto.LoginRequest{Email: "s1@test.com", Password: "wrong"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}
	_, err = f.auth.Login(context.Background(), &dto.LoginRequest{Email: "nobody@test.com", Password: "Passw0rd!"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("未知邮箱期望 ErrInvalidCredentials，实际: %v", err)
	}
}

func TestAuthService_Login_Disabled(t *testing.T) {
	f := setupAuth(t)

	_, err := f.auth.Login(context.Background(), &dto.LoginRequest{Email: "old@test.com", Password: "Passw0rd!"})
	if !errors.Is(err, ErrAccessDenied) {
		t.Errorf("停用账号期望 ErrAccessDenied，实际: %v", err)
	}
}

func TestAuthService_Refresh_Rotation(t *testing.T) {
	f := setupAuth(t)
	ctx := context.Background()

	login, _ := f.auth.Login(ctx, &dto.LoginRequest{Email: "s1@test.com", Password: "Passw0rd!", RememberMe: true})

	refreshed, err := f.auth.RefreshToken(ctx, login.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshToken 应成功: %v", err)
	}
	claims, _ := f.jwtMgr.ParseToken(refreshed.RefreshToken)
	if claims == nil || !claims.RememberMe {
		t.Error("轮换后应保留 remember_me")
	}

	if _, err := f.auth.RefreshToken(ctx, login.RefreshToken); !errors.Is(err, ErrInvalidRefresh) {
		t.Errorf("旧 refresh token 复用期望 ErrInvalidRefresh，实际: %v", err)
	}
}

func TestAuthService_Refresh_RejectsAccessToken(t *testing.T) {
	f := setupAuth(t)
	ctx := context.Background()

	login, _ := f.auth.Login(ctx, &dto.LoginRequest{Email: "s1@test.com", Password: "Passw0rd!"})
	if _, err := f.auth.RefreshToken(ctx, login.AccessToken); !errors.Is(err, ErrInvalidRefresh) {
		t.Errorf("用 access token 刷新期望 ErrInvalidRefresh，实际: %v", err)
	}
	if _, err := f.auth.RefreshToken(ctx, "garbage"); !errors.Is(err, ErrInvalidRefresh) {
		t.Errorf("非法 token 期望 ErrInvalidRefresh，实际: %v", err)
	}
}

func TestAuthService_Logout(t *testing.T) {
	f := setupAuth(t)

	if err := f.auth.Logout(context.Background(), "jti-1", testNow.Add(10*time.Minute)); err != nil {
		t.Fatalf("Logout 应成功: %v", err)
	}
	ttl, ok := f.blacklist.revoked["jti-1"]
	if !ok || ttl != 10*time.Minute {
		t.Errorf("期望 jti-1 拉黑 10 分钟，实际 %v / %v", ok, ttl)
	}
}

func TestAuthService_Me(t *testing.T) {
	f := setupAuth(t)

	me, err := f.auth.Me(context.Background(), Actor{UserID: "u-student", Role: model.RoleStudent, ProfileID: "s1"})
	if err != nil {
		t.Fatalf("Me 应成功: %v", err)
	}
	if me.Email != "s1@test.com" {
		t.Errorf("期望 s1@test.com，实际 %s", me.Email)
	}
	if _, err := f.auth.Me(context.Background(), Actor{UserID: "ghost"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("期望 ErrNotFound，实际: %v", err)
	}
}
