package service

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"orgadmin_go/internal/model"
	"orgadmin_go/pkg/hash"
	applog "orgadmin_go/pkg/log"
	"orgadmin_go/pkg/token"

	"gorm.io/gorm"
)

type fakeUserRepo struct {
	findByUsernameFn     func(username string) (*model.User, error)
	createFn             func(user *model.User) error
	updateFn             func(user *model.User) error
	updatePasswordFn     func(userID uint64, hashed string) error
	findWithPaginationFn func(offset, limit int) ([]model.User, int64, error)
	findByIDFn           func(userID uint64) (*model.User, error)
}

func (f *fakeUserRepo) Create(user *model.User) error {
	if f.createFn != nil {
		return f.createFn(user)
	}
	return nil
}
func (f *fakeUserRepo) FindByUsername(username string) (*model.User, error) {
	if f.findByUsernameFn != nil {
		return f.findByUsernameFn(username)
	}
	return nil, nil
}
func (f *fakeUserRepo) Update(user *model.User) error {
	if f.updateFn != nil {
		return f.updateFn(user)
	}
	return nil
}
func (f *fakeUserRepo) UpdatePassword(userID uint64, hashed string) error {
	if f.updatePasswordFn != nil {
		return f.updatePasswordFn(userID, hashed)
	}
	return nil
}
func (f *fakeUserRepo) FindWithPagination(offset, limit int) ([]model.User, int64, error) {
	if f.findWithPaginationFn != nil {
		return f.findWithPaginationFn(offset, limit)
	}
	return []model.User{}, 0, nil
}
func (f *fakeUserRepo) FindByID(userID uint64) (*model.User, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(userID)
	}
	return nil, nil
}

func TestMain(m *testing.M) {
	// service 里有 log.Errorf，初始化一下避免 nil panic
	applog.Init("error", "console", "")
	code := m.Run()
	os.Exit(code)
}

func newJWT() *token.JWTManager {
	return token.NewJWTManager("test-secret", 15*time.Minute, 24*time.Hour)
}

func newUserSvc(repo *fakeUserRepo, jm *token.JWTManager) UserService {
	return NewUserService(repo, &fakeDeptRepo{}, jm, nil, "orgadmin")
}

func TestUserService_Register_Success(t *testing.T) {
	repo := &fakeUserRepo{
		findByUsernameFn: func(username string) (*model.User, error) {
			return nil, gorm.ErrRecordNotFound
		},
		createFn: func(user *model.User) error {
			user.ID = 1
			return nil
		},
	}
	svc := newUserSvc(repo, newJWT())

	u, err := svc.Register("alice", "123456")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if u.ID != 1 || u.Username != "alice" || u.Role != model.RoleUser {
		t.Fatalf("unexpected user: %+v", u)
	}
	if u.Password == "123456" || !hash.CheckPasswordHash("123456", u.Password) {
		t.Fatalf("password is not hashed correctly")
	}
}

func TestUserService_Register_UserAlreadyExists(t *testing.T) {
	repo := &fakeUserRepo{
		findByUsernameFn: func(username string) (*model.User, error) {
			return &model.User{ID: 1, Username: "alice"}, nil
		},
	}
	svc := newUserSvc(repo, newJWT())

	_, err := svc.Register("alice", "123456")
	if !errors.Is(err, ErrUserAlreadyExists) {
		t.Fatalf("expect ErrUserAlreadyExists, got %v", err)
	}
}

func TestUserService_Login_Success(t *testing.T) {
	pwd, _ := hash.HashPassword("123456")
	jm := newJWT()
	deptID := uint64(3)
	repo := &fakeUserRepo{
		findByUsernameFn: func(username string) (*model.User, error) {
			return &model.User{
				ID:       1,
				Username: "alice",
				Password: pwd,
				Role:     model.RoleUser,
				DeptID:   &deptID,
				Status:   1,
			}, nil
		},
	}
	svc := newUserSvc(repo, jm)

	access, refresh, err := svc.Login(context.Background(), "alice", "123456")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if access == "" || refresh == "" {
		t.Fatalf("tokens should not be empty")
	}
	claims, err := jm.VerifyToken(access)
	if err != nil {
		t.Fatalf("VerifyToken(access) error = %v", err)
	}
	if claims.Username != "alice" {
		t.Fatalf("unexpected claims username: %s", claims.Username)
	}
	if claims.DeptID == nil || *claims.DeptID != 3 {
		t.Fatalf("claims should carry dept id, got %v", claims.DeptID)
	}
}

func TestUserService_Login_UserNotFound(t *testing.T) {
	repo := &fakeUserRepo{
		findByUsernameFn: func(username string) (*model.User, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc := newUserSvc(repo, newJWT())

	_, _, err := svc.Login(context.Background(), "no-user", "123456")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expect ErrInvalidCredentials, got %v", err)
	}
}

func TestUserService_Login_WrongPassword(t *testing.T) {
	pwd, _ := hash.HashPassword("correct-password")
	repo := &fakeUserRepo{
		findByUsernameFn: func(username string) (*model.User, error) {
			return &model.User{
				ID:       1,
				Username: "alice",
				Password: pwd,
				Role:     model.RoleUser,
				Status:   1,
			}, nil
		},
	}
	svc := newUserSvc(repo, newJWT())

	_, _, err := svc.Login(context.Background(), "alice", "wrong-password")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expect ErrInvalidCredentials for wrong password, got %v", err)
	}
}

func TestUserService_Login_DisabledUser(t *testing.T) {
	pwd, _ := hash.HashPassword("123456")
	repo := &fakeUserRepo{
		findByUsernameFn: func(username string) (*model.User, error) {
			return &model.User{
				ID:       1,
				Username: "alice",
				Password: pwd,
				Role:     model.RoleUser,
				Status:   0,
			}, nil
		},
	}
	svc := newUserSvc(repo, newJWT())

	_, _, err := svc.Login(context.Background(), "alice", "123456")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expect ErrInvalidCredentials for disabled user, got %v", err)
	}
}

func TestUserService_Login_DBError(t *testing.T) {
	repo := &fakeUserRepo{
		findByUsernameFn: func(username string) (*model.User, error) {
			return nil, errors.New("connection refused")
		},
	}
	svc := newUserSvc(repo, newJWT())

	_, _, err := svc.Login(context.Background(), "alice", "123456")
	if !errors.Is(err, ErrInternal) {
		t.Fatalf("expect ErrInternal for DB error, got %v", err)
	}
}

func TestUserService_Login_NilJWTManager(t *testing.T) {
	svc := newUserSvc(&fakeUserRepo{}, nil)

	_, _, err := svc.Login(context.Background(), "alice", "123456")
	if !errors.Is(err, ErrInternal) {
		t.Fatalf("expect ErrInternal for nil JWTManager, got %v", err)
	}
}

func TestUserService_GetProfile_Success(t *testing.T) {
	repo := &fakeUserRepo{
		findByUsernameFn: func(username string) (*model.User, error) {
			return &model.User{
				ID:       1,
				Username: "alice",
				Role:     model.RoleUser,
			}, nil
		},
	}
	svc := newUserSvc(repo, newJWT())

	u, err := svc.GetProfile("alice")
	if err != nil {
		t.Fatalf("GetProfile() error = %v", err)
	}
	if u.ID != 1 || u.Username != "alice" {
		t.Fatalf("unexpected user: %+v", u)
	}
}

func TestUserService_GetProfile_NotFound(t *testing.T) {
	repo := &fakeUserRepo{
		findByUsernameFn: func(username string) (*model.User, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc := newUserSvc(repo, newJWT())

	_, err := svc.GetProfile("no-user")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expect ErrUserNotFound, got %v", err)
	}
}

func TestUserService_UpdateUser_InvalidRole(t *testing.T) {
	svc := newUserSvc(&fakeUserRepo{}, newJWT())

	_, err := svc.UpdateUser(1, "alice", "SUPERUSER", nil, 1)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expect ErrInvalidInput for unknown role, got %v", err)
	}
}

// 部门引用校验：悬空的 deptId 必须被拒绝，不能写进用户表。
func TestUserService_UpdateUser_DanglingDept(t *testing.T) {
	repo := &fakeUserRepo{
		findByIDFn: func(userID uint64) (*model.User, error) {
			return &model.User{ID: userID, Username: "alice", Role: model.RoleUser}, nil
		},
	}
	// fakeDeptRepo 默认对任何 ID 返回 ErrNodeNotFound
	svc := NewUserService(repo, &fakeDeptRepo{}, newJWT(), nil, "orgadmin")

	deptID := uint64(42)
	_, err := svc.UpdateUser(1, "alice", model.RoleUser, &deptID, 1)
	if !errors.Is(err, ErrNodeNotFound) {
		t.Fatalf("expect ErrNodeNotFound for dangling dept, got %v", err)
	}
}

func TestUserService_UpdateUser_AssignsExistingDept(t *testing.T) {
	var updated *model.User
	repo := &fakeUserRepo{
		findByIDFn: func(userID uint64) (*model.User, error) {
			return &model.User{ID: userID, Username: "alice", Role: model.RoleUser}, nil
		},
		updateFn: func(user *model.User) error {
			updated = user
			return nil
		},
	}
	deptRepo := &fakeDeptRepo{
		findByIDFn: func(id uint64) (*model.Dept, error) {
			dept := &model.Dept{Name: "技术部", Code: "TECH"}
			dept.ID = id
			return dept, nil
		},
	}
	svc := NewUserService(repo, deptRepo, newJWT(), nil, "orgadmin")

	deptID := uint64(3)
	user, err := svc.UpdateUser(1, "alice", model.RoleAdmin, &deptID, 1)
	if err != nil {
		t.Fatalf("UpdateUser() error = %v", err)
	}
	if user.DeptID == nil || *user.DeptID != 3 {
		t.Fatalf("expect deptId=3, got %v", user.DeptID)
	}
	if updated == nil || updated.Role != model.RoleAdmin {
		t.Fatalf("expect updated role ADMIN, got %+v", updated)
	}
}

func TestUserService_ChangePassword_WrongOldPassword(t *testing.T) {
	pwd, _ := hash.HashPassword("old-password")
	repo := &fakeUserRepo{
		findByIDFn: func(userID uint64) (*model.User, error) {
			return &model.User{ID: userID, Username: "alice", Password: pwd}, nil
		},
	}
	svc := newUserSvc(repo, newJWT())

	err := svc.ChangePassword(1, "not-the-old-one", "new-password")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expect ErrInvalidCredentials, got %v", err)
	}
}

func TestUserService_ChangePassword_Success(t *testing.T) {
	pwd, _ := hash.HashPassword("old-password")
	var savedHash string
	repo := &fakeUserRepo{
		findByIDFn: func(userID uint64) (*model.User, error) {
			return &model.User{ID: userID, Username: "alice", Password: pwd}, nil
		},
		updatePasswordFn: func(userID uint64, hashed string) error {
			savedHash = hashed
			return nil
		},
	}
	svc := newUserSvc(repo, newJWT())

	if err := svc.ChangePassword(1, "old-password", "new-password"); err != nil {
		t.Fatalf("ChangePassword() error = %v", err)
	}
	if !hash.CheckPasswordHash("new-password", savedHash) {
		t.Fatalf("stored hash does not match new password")
	}
}
