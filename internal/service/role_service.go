package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"orgadmin_go/internal/model"
	"orgadmin_go/internal/repository"
	"orgadmin_go/pkg/database"
	"orgadmin_go/pkg/log"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

var (
	// ErrRoleNotFound 角色不存在
	ErrRoleNotFound = errors.New("role not found")
)

// rbacCacheTTL 权限集合缓存的兜底过期时间。
// 授权变更会主动失效，TTL 只兜底异常路径。
const rbacCacheTTL = 10 * time.Minute

// RoleService 封装角色与授权的领域逻辑。
// ResolvePermissionCodes 是鉴权中间件的热路径，结果走 Redis 缓存。
type RoleService interface {
	Create(code, name, notes string) (*model.Role, error)
	List() ([]model.Role, error)
	Delete(roleID uint64) error

	// Grant 把角色的授权整体替换为给定权限集合。
	Grant(roleID uint64, permissionIDs []uint64) error
	// ResolvePermissionCodes 返回角色持有的权限编码集合。
	ResolvePermissionCodes(ctx context.Context, roleCode string) ([]string, error)
}

type roleService struct {
	roleRepo  repository.RoleRepository
	rdb       *redis.Client
	keyPrefix string
}

func NewRoleService(roleRepo repository.RoleRepository, rdb *redis.Client, keyPrefix string) RoleService {
	return &roleService{roleRepo: roleRepo, rdb: rdb, keyPrefix: keyPrefix}
}

func (s *roleService) permsKey(roleCode string) string {
	return fmt.Sprintf("%s:rbac:role:%s:perms", s.keyPrefix, roleCode)
}

func (s *roleService) Create(code, name, notes string) (*model.Role, error) {
	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)
	if code == "" || name == "" {
		return nil, ErrInvalidInput
	}

	if _, err := s.roleRepo.FindByCode(code); err == nil {
		return nil, ErrCodeAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Errorf("Create: failed to query role %q: %v", code, err)
		return nil, ErrInternal
	}

	role := &model.Role{Code: code, Name: name, Notes: notes}
	if err := s.roleRepo.Create(role); err != nil {
		log.Errorf("Create: failed to create role %q: %v", code, err)
		return nil, ErrInternal
	}
	return role, nil
}

func (s *roleService) List() ([]model.Role, error) {
	roles, err := s.roleRepo.FindAll()
	if err != nil {
		log.Errorf("List: failed to query roles: %v", err)
		return nil, ErrInternal
	}
	return roles, nil
}

func (s *roleService) Delete(roleID uint64) error {
	if err := s.roleRepo.Delete(roleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRoleNotFound
		}
		log.Errorf("Delete: failed to delete role %d: %v", roleID, err)
		return ErrInternal
	}
	// 角色编码未知，保守地清掉整个 rbac 命名空间
	s.invalidateAllPerms()
	return nil
}

func (s *roleService) Grant(roleID uint64, permissionIDs []uint64) error {
	if err := s.roleRepo.GrantPermissions(roleID, permissionIDs); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRoleNotFound
		}
		log.Errorf("Grant: failed to grant role %d: %v", roleID, err)
		return ErrInternal
	}
	s.invalidateAllPerms()
	return nil
}

// ResolvePermissionCodes 先查缓存，未命中回源数据库并回填。
// 缓存故障按未命中处理，不影响鉴权结果的正确性。
func (s *roleService) ResolvePermissionCodes(ctx context.Context, roleCode string) ([]string, error) {
	key := s.permsKey(roleCode)

	if s.rdb != nil {
		payload, err := s.rdb.Get(ctx, key).Bytes()
		if err == nil {
			var codes []string
			if jsonErr := json.Unmarshal(payload, &codes); jsonErr == nil {
				return codes, nil
			}
		} else if err != redis.Nil {
			log.Warnf("ResolvePermissionCodes: cache get %q failed: %v", key, err)
		}
	}

	codes, err := s.roleRepo.ListPermissionCodes(roleCode)
	if err != nil {
		log.Errorf("ResolvePermissionCodes: failed to query role %q: %v", roleCode, err)
		return nil, ErrInternal
	}

	if s.rdb != nil {
		if payload, err := json.Marshal(codes); err == nil {
			if err := s.rdb.Set(ctx, key, payload, rbacCacheTTL).Err(); err != nil {
				log.Warnf("ResolvePermissionCodes: cache set %q failed: %v", key, err)
			}
		}
	}
	return codes, nil
}

func (s *roleService) invalidateAllPerms() {
	if s.rdb == nil {
		return
	}
	prefix := fmt.Sprintf("%s:rbac:role:", s.keyPrefix)
	if err := database.DeleteByPrefix(context.Background(), s.rdb, prefix); err != nil {
		log.Warnf("invalidateAllPerms: %v", err)
	}
}
