package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"orgadmin_go/internal/model"
	"orgadmin_go/internal/repository"
	"orgadmin_go/pkg/hash"
	"orgadmin_go/pkg/log"
	"orgadmin_go/pkg/token"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// 哨兵错误：对外统一语义，隐藏底层实现细节
var (
	// ErrInvalidCredentials 用户名或密码错误（登录时统一返回，防止用户枚举）
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUserNotFound 用户不存在（仅用于非登录场景，如 GetProfile）
	ErrUserNotFound = errors.New("user not found")
	// ErrUserAlreadyExists 用户已存在（注册时）
	ErrUserAlreadyExists = errors.New("user already exists")
)

type UserService interface {
	Register(username, password string) (*model.User, error)
	Login(ctx context.Context, username, password string) (accessToken, refreshToken string, err error)
	// Logout 把令牌加入黑名单直到其自然过期。
	Logout(ctx context.Context, tokenString string) error
	// IsTokenRevoked 鉴权中间件的热路径：令牌是否已被登出。
	IsTokenRevoked(ctx context.Context, tokenString string) bool
	GetProfile(username string) (*model.User, error)
	List(offset, limit int) ([]model.User, int64, error)
	// UpdateUser 管理端更新用户的角色/部门/状态。
	UpdateUser(userID uint64, username, role string, deptID *uint64, status int8) (*model.User, error)
	ChangePassword(userID uint64, oldPassword, newPassword string) error
}

type userService struct {
	userRepo   repository.UserRepository
	deptRepo   repository.DeptRepository
	JWTManager *token.JWTManager
	rdb        *redis.Client
	keyPrefix  string
}

func NewUserService(userRepo repository.UserRepository, deptRepo repository.DeptRepository, jwtManager *token.JWTManager, rdb *redis.Client, keyPrefix string) UserService {
	return &userService{
		userRepo:   userRepo,
		deptRepo:   deptRepo,
		JWTManager: jwtManager,
		rdb:        rdb,
		keyPrefix:  keyPrefix,
	}
}

func (s *userService) blacklistKey(tokenString string) string {
	return fmt.Sprintf("%s:auth:blacklist:%s", s.keyPrefix, tokenString)
}

func (s *userService) Register(username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidInput
	}

	// 1. 检查用户是否存在
	existingUser, err := s.userRepo.FindByUsername(username)
	if err != nil {
		// 查无记录是正常分支，继续注册
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	} else if existingUser != nil {
		return nil, ErrUserAlreadyExists
	}

	// 2. 密码进行哈希
	hashedPassword, err := hash.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// 3. 创建新用户
	newUser := &model.User{
		Username: username,
		Password: hashedPassword,
		Role:     model.RoleUser,
		Status:   1,
	}

	if err := s.userRepo.Create(newUser); err != nil {
		return nil, err
	}
	return newUser, nil
}

func (s *userService) Login(ctx context.Context, username, password string) (accessToken, refreshToken string, err error) {
	if s.JWTManager == nil {
		return "", "", ErrInternal
	}
	// 1. 检查用户是否存在
	existingUser, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 用户不存在，返回统一的凭证错误，防止用户枚举
			return "", "", ErrInvalidCredentials
		}
		log.Errorf("Login: failed to query user %q: %v", username, err)
		return "", "", ErrInternal
	}
	if existingUser == nil {
		return "", "", ErrInvalidCredentials
	}

	// 2. 检查密码是否正确（密码错误与用户不存在返回同一错误，防止用户枚举）
	if !hash.CheckPasswordHash(password, existingUser.Password) {
		return "", "", ErrInvalidCredentials
	}

	// 3. 停用账号不允许登录
	if existingUser.Status != 1 {
		return "", "", ErrInvalidCredentials
	}

	// 4. 生成JWT令牌（使用数据库中的 Username，避免大小写/规范化不一致）
	accessToken, refreshToken, err = s.JWTManager.GenerateToken(
		existingUser.ID, existingUser.Username, existingUser.Role, existingUser.DeptID)
	if err != nil {
		log.Errorf("Login: failed to generate token for user %q: %v", existingUser.Username, err)
		return "", "", ErrInternal
	}
	return accessToken, refreshToken, nil
}

// Logout 校验令牌后写入黑名单，TTL 取令牌的剩余有效期。
// Redis 不可用时登出失败，宁可让用户重试也不留下永不失效的令牌。
func (s *userService) Logout(ctx context.Context, tokenString string) error {
	if s.rdb == nil {
		return ErrInternal
	}

	claims, err := s.JWTManager.VerifyToken(tokenString)
	if err != nil {
		// 无效或已过期的令牌无需拉黑
		return nil
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	if err := s.rdb.Set(ctx, s.blacklistKey(tokenString), 1, ttl).Err(); err != nil {
		log.Errorf("Logout: failed to blacklist token for user %q: %v", claims.Username, err)
		return ErrInternal
	}
	return nil
}

// IsTokenRevoked 查询失败时按未拉黑处理：令牌本身仍要过签名校验，
// 这里只是尽早拒绝已登出的令牌。
func (s *userService) IsTokenRevoked(ctx context.Context, tokenString string) bool {
	if s.rdb == nil {
		return false
	}
	n, err := s.rdb.Exists(ctx, s.blacklistKey(tokenString)).Result()
	if err != nil {
		log.Warnf("IsTokenRevoked: redis query failed: %v", err)
		return false
	}
	return n > 0
}

func (s *userService) GetProfile(username string) (*model.User, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		log.Errorf("GetProfile: failed to query user %q: %v", username, err)
		return nil, ErrInternal
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *userService) List(offset, limit int) ([]model.User, int64, error) {
	users, total, err := s.userRepo.FindWithPagination(offset, limit)
	if err != nil {
		log.Errorf("List: failed to query users: %v", err)
		return nil, 0, ErrInternal
	}
	return users, total, nil
}

func (s *userService) UpdateUser(userID uint64, username, role string, deptID *uint64, status int8) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrInvalidInput
	}
	if role != model.RoleAdmin && role != model.RoleUser {
		return nil, ErrInvalidInput
	}

	// 部门引用必须指向部门树中的真实节点，拒绝悬空 ID
	if deptID != nil {
		if _, err := s.deptRepo.FindByID(*deptID); err != nil {
			if errors.Is(err, repository.ErrNodeNotFound) {
				return nil, ErrNodeNotFound
			}
			log.Errorf("UpdateUser: failed to query dept %d: %v", *deptID, err)
			return nil, ErrInternal
		}
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		log.Errorf("UpdateUser: failed to query user %d: %v", userID, err)
		return nil, ErrInternal
	}

	user.Username = username
	user.Role = role
	user.DeptID = deptID
	user.Status = status

	if err := s.userRepo.Update(user); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		log.Errorf("UpdateUser: failed to update user %d: %v", userID, err)
		return nil, ErrInternal
	}
	return user, nil
}

func (s *userService) ChangePassword(userID uint64, oldPassword, newPassword string) error {
	if newPassword == "" {
		return ErrInvalidInput
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		log.Errorf("ChangePassword: failed to query user %d: %v", userID, err)
		return ErrInternal
	}

	if !hash.CheckPasswordHash(oldPassword, user.Password) {
		return ErrInvalidCredentials
	}

	hashed, err := hash.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(userID, hashed); err != nil {
		log.Errorf("ChangePassword: failed to update user %d: %v", userID, err)
		return ErrInternal
	}
	return nil
}
