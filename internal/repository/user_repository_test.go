package repository

import (
	"errors"
	"testing"
	"time"

	"orgadmin_go/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func newMockUserRepo(t *testing.T) (UserRepository, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New() error: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	gdb, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	if err != nil {
		t.Fatalf("gorm.Open() error: %v", err)
	}

	return NewUserRepository(gdb), mock
}

func userRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "username", "password", "role", "dept_id", "status", "created_at", "updated_at",
	}).AddRow(1, "alice", "hashed", "USER", nil, 1, now, now)
}

func TestUserRepository_Create(t *testing.T) {
	repo, mock := newMockUserRepo(t)

	u := &model.User{Username: "alice", Password: "hashed", Role: "USER"}
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `sys_users`").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	if err := repo.Create(u); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_Create_Nil(t *testing.T) {
	repo, _ := newMockUserRepo(t)

	if err := repo.Create(nil); err == nil {
		t.Fatal("expected error for nil user, got nil")
	}
}

func TestUserRepository_FindByUsername(t *testing.T) {
	repo, mock := newMockUserRepo(t)

	mock.ExpectQuery("SELECT .* FROM `sys_users` WHERE username = \\? ORDER BY .* LIMIT \\?").
		WithArgs("alice", 1).
		WillReturnRows(userRows())

	u, err := repo.FindByUsername("alice")
	if err != nil {
		t.Fatalf("FindByUsername() error: %v", err)
	}
	if u == nil || u.Username != "alice" {
		t.Fatalf("unexpected user: %+v", u)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_FindByUsername_NotFound(t *testing.T) {
	repo, mock := newMockUserRepo(t)

	mock.ExpectQuery("SELECT .* FROM `sys_users` WHERE username = \\? ORDER BY .* LIMIT \\?").
		WithArgs("missing", 1).
		WillReturnError(gorm.ErrRecordNotFound)

	u, err := repo.FindByUsername("missing")
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got: %v", err)
	}
	if u != nil {
		t.Fatalf("expected nil user, got: %+v", u)
	}
}

func TestUserRepository_Update_Success(t *testing.T) {
	repo, mock := newMockUserRepo(t)

	deptID := uint64(3)
	u := &model.User{ID: 1, Username: "alice", Role: "ADMIN", DeptID: &deptID, Status: 1}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `sys_users` SET .* WHERE id = \\?").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.Update(u); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_Update_RowsAffectedZero(t *testing.T) {
	repo, mock := newMockUserRepo(t)

	u := &model.User{ID: 99, Username: "alice", Role: "ADMIN"}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `sys_users` SET .* WHERE id = \\?").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.Update(u)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got: %v", err)
	}
}

func TestUserRepository_Update_ZeroID(t *testing.T) {
	repo, _ := newMockUserRepo(t)

	u := &model.User{Username: "alice", Role: "ADMIN"}
	if err := repo.Update(u); err == nil {
		t.Fatal("expected error for zero ID, got nil")
	}
}

func TestUserRepository_UpdatePassword_Success(t *testing.T) {
	repo, mock := newMockUserRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `sys_users` SET .*password.* WHERE id = \\?").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.UpdatePassword(1, "new-hash"); err != nil {
		t.Fatalf("UpdatePassword() error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_UpdatePassword_NotFound(t *testing.T) {
	repo, mock := newMockUserRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `sys_users` SET .*password.* WHERE id = \\?").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.UpdatePassword(99, "new-hash")
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got: %v", err)
	}
}

func TestUserRepository_FindWithPagination(t *testing.T) {
	repo, mock := newMockUserRepo(t)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `sys_users`").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(1))

	mock.ExpectQuery("SELECT .* FROM `sys_users` ORDER BY id ASC LIMIT \\?").
		WithArgs(10).
		WillReturnRows(userRows())

	users, total, err := repo.FindWithPagination(0, 10)
	if err != nil {
		t.Fatalf("FindWithPagination() error: %v", err)
	}
	if total != 1 || len(users) != 1 {
		t.Fatalf("unexpected result: total=%d len=%d", total, len(users))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_FindWithPagination_Empty(t *testing.T) {
	repo, mock := newMockUserRepo(t)

	// total=0 时应提前返回，不执行第二条 SELECT 查询
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `sys_users`").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(0))

	users, total, err := repo.FindWithPagination(0, 10)
	if err != nil {
		t.Fatalf("FindWithPagination() error: %v", err)
	}
	if total != 0 || len(users) != 0 {
		t.Fatalf("unexpected result: total=%d len=%d", total, len(users))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_FindByID(t *testing.T) {
	repo, mock := newMockUserRepo(t)

	mock.ExpectQuery("SELECT .* FROM `sys_users` WHERE .*id.* = \\? ORDER BY .* LIMIT \\?").
		WithArgs(uint64(1), 1).
		WillReturnRows(userRows())

	u, err := repo.FindByID(1)
	if err != nil {
		t.Fatalf("FindByID() error: %v", err)
	}
	if u == nil || u.ID != 1 {
		t.Fatalf("unexpected user: %+v", u)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
