package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mwangikb/jikoni-backend/internal/modules/user"
)

var testSecret = []byte("test-secret")

type fakeUserRepo struct {
	users map[string]*user.User
}

func (r *fakeUserRepo) CreateUser(ctx context.Context, u *user.User) error {
	r.users[u.Email] = u
	return nil
}

func (r *fakeUserRepo) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	u, ok := r.users[email]
	if !ok {
		return nil, errors.New("not found")
	}
	return u, nil
}

func (r *fakeUserRepo) GetUserByID(ctx context.Context, id string) (*user.User, error) {
	for _, u := range r.users {
		if u.ID.String() == id {
			return u, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *fakeUserRepo) ListUsers(ctx context.Context) ([]*user.User, error) { return nil, nil }

func (r *fakeUserRepo) UpdateRole(ctx context.Context, id string, role user.Role) error { return nil }

func repoWithUser(t *testing.T, email, password string, role user.Role) *fakeUserRepo {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	return &fakeUserRepo{users: map[string]*user.User{
		email: {ID: uuid.New(), Email: email, PasswordHash: string(hash), Role: role},
	}}
}

func TestLoginIssuesRoleToken(t *testing.T) {
	repo := repoWithUser(t, "staff@jikoni.test", "hunter2", user.RoleStaff)
	svc := NewService(repo, testSecret)

	token, err := svc.Login(context.Background(), "staff@jikoni.test", "hunter2")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token == "" {
		t.Fatal("empty token")
	}

	// The issued token must pass the matching role gate.
	guard := RequireRole(testSecret, user.RoleStaff)
	called := false
	h := guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if !called || rec.Code != http.StatusOK {
		t.Errorf("staff token rejected: code=%d called=%v", rec.Code, called)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	repo := repoWithUser(t, "staff@jikoni.test", "hunter2", user.RoleStaff)
	svc := NewService(repo, testSecret)

	if _, err := svc.Login(context.Background(), "staff@jikoni.test", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: err = %v", err)
	}
	if _, err := svc.Login(context.Background(), "nobody@jikoni.test", "hunter2"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: err = %v", err)
	}
}

func TestRequireRole(t *testing.T) {
	repo := repoWithUser(t, "c@jikoni.test", "pw", user.RoleCustomer)
	svc := NewService(repo, testSecret)
	customerToken, err := svc.Login(context.Background(), "c@jikoni.test", "pw")
	if err != nil {
		t.Fatal(err)
	}

	adminOnly := RequireRole(testSecret, user.RoleAdmin)
	h := adminOnly(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"no token", "", http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.jwt", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"insufficient role", "Bearer " + customerToken, http.StatusForbidden},
	}
	for _, c := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
		if c.header != "" {
			req.Header.Set("Authorization", c.header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != c.want {
			t.Errorf("%s: code = %d, want %d", c.name, rec.Code, c.want)
		}
	}

	// Tampering with the signed role must invalidate the token.
	forged := customerToken + "xx"
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("forged token: code = %d, want 401", rec.Code)
	}
}
