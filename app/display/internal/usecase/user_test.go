package usecase

import (
	"context"
	"testing"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/iWorld-y/stock_radar/app/display/internal/conf"
)

// mockUserRepo 模拟用户仓库
type mockUserRepo struct {
	users map[string]*User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: map[string]*User{}}
}

func (m *mockUserRepo) CreateUser(ctx context.Context, u *User) error {
	u.ID = len(m.users) + 1
	m.users[u.Username] = u
	return nil
}

func (m *mockUserRepo) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	u, ok := m.users[username]
	if !ok {
		return nil, errNotFound
	}
	return u, nil
}

func (m *mockUserRepo) UpdateUserProfile(ctx context.Context, id int, persona string, watchlist []string) error {
	for _, u := range m.users {
		if u.ID == id {
			u.Persona = persona
			u.Watchlist = watchlist
			return nil
		}
	}
	return errNotFound
}

var errNotFound = errors.NotFound("USER_NOT_FOUND", "user not found")

func newTestUserUseCase() (*UserUseCase, *mockUserRepo) {
	repo := newMockUserRepo()
	uc := NewUserUseCase(repo, &conf.Auth{JwtKey: "test-key"}, log.DefaultLogger)
	return uc, repo
}

func TestUserUseCase_RegisterHashesPassword(t *testing.T) {
	uc, repo := newTestUserUseCase()

	if err := uc.Register(context.Background(), "alice", "s3cret"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	u := repo.users["alice"]
	if u == nil {
		t.Fatal("user not stored")
	}
	if u.PasswordHash == "s3cret" {
		t.Error("password stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret")); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}
}

func TestUserUseCase_LoginAndVerify(t *testing.T) {
	uc, _ := newTestUserUseCase()

	if err := uc.Register(context.Background(), "alice", "s3cret"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	token, err := uc.Login(context.Background(), "alice", "s3cret")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if token == "" {
		t.Fatal("Login() returned empty token")
	}

	username, err := uc.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken() error = %v", err)
	}
	if username != "alice" {
		t.Errorf("VerifyToken() username = %v, want alice", username)
	}
}

func TestUserUseCase_LoginWrongPassword(t *testing.T) {
	uc, _ := newTestUserUseCase()
	_ = uc.Register(context.Background(), "alice", "s3cret")

	if _, err := uc.Login(context.Background(), "alice", "wrong"); err == nil {
		t.Error("Login() with wrong password should fail")
	}
}

func TestUserUseCase_VerifyTokenInvalid(t *testing.T) {
	uc, _ := newTestUserUseCase()

	if _, err := uc.VerifyToken("not-a-token"); err == nil {
		t.Error("VerifyToken() with garbage should fail")
	}

	// 用另一把密钥签出的令牌必须被拒绝
	other := NewUserUseCase(newMockUserRepo(), &conf.Auth{JwtKey: "other-key"}, log.DefaultLogger)
	_ = other.Register(context.Background(), "bob", "pw")
	token, err := other.Login(context.Background(), "bob", "pw")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if _, err := uc.VerifyToken(token); err == nil {
		t.Error("VerifyToken() with foreign key should fail")
	}
}

func TestUserUseCase_UpdateProfile(t *testing.T) {
	uc, repo := newTestUserUseCase()
	_ = uc.Register(context.Background(), "alice", "s3cret")

	err := uc.UpdateProfile(context.Background(), "alice", "稳健型", []string{"600519", "000858"})
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	u := repo.users["alice"]
	if u.Persona != "稳健型" || len(u.Watchlist) != 2 {
		t.Errorf("profile not updated: %+v", u)
	}
}
