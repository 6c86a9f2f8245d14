package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenType 常量，用于区分访问令牌和刷新令牌
// 防止攻击者拿 refresh token 冒充 access token 来访问 API
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// issuer 是本服务签发的所有 token 的 iss 字段。
const issuer = "orgadmin"

// JWTManager 是 JWT 管理器，负责生成和验证 JWT
type JWTManager struct {
	secretKey            []byte        // 密钥
	accessTokenDuration  time.Duration // 访问令牌过期时间
	refreshTokenDuration time.Duration // 刷新令牌过期时间
}

// CustomClaims 是自定义的 Claims，包含用户信息和 JWT 标准 Claims
// 嵌入了 jwt.RegisteredClaims，所以 CustomClaims 也包含了 JWT 标准 Claims
type CustomClaims struct {
	UserID   uint64  `json:"user_id"`
	Username string  `json:"username"`
	Role     string  `json:"role"`
	DeptID   *uint64 `json:"dept_id,omitempty"`
	// TokenType 用于区分 access 和 refresh token，防止 token 类型混用攻击
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// NewJWTManager 创建一个新的 JWTManager
// secretKey 是 JWT 的密钥
// accessTokenDuration 是访问令牌的过期时间
// refreshTokenDuration 是刷新令牌的过期时间
func NewJWTManager(secretKey string, accessTokenDuration, refreshTokenDuration time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:            []byte(secretKey),
		accessTokenDuration:  accessTokenDuration,
		refreshTokenDuration: refreshTokenDuration,
	}
}

// GenerateToken 生成访问令牌和刷新令牌。
// deptID 是用户所属部门，允许为 nil（未分配部门的用户）。
func (manager *JWTManager) GenerateToken(userID uint64, username, role string, deptID *uint64) (string, string, error) {
	now := time.Now()

	newClaims := func(tokenType string, expiresAt time.Time) *CustomClaims {
		return &CustomClaims{
			UserID:    userID,
			Username:  username,
			Role:      role,
			DeptID:    deptID,
			TokenType: tokenType,
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    issuer,
				ExpiresAt: jwt.NewNumericDate(expiresAt),
				IssuedAt:  jwt.NewNumericDate(now),
				NotBefore: jwt.NewNumericDate(now),
			},
		}
	}

	accessClaims := newClaims(TokenTypeAccess, now.Add(manager.accessTokenDuration))
	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims)
	accessTokenString, err := accessToken.SignedString(manager.secretKey)
	if err != nil {
		return "", "", err
	}

	refreshClaims := newClaims(TokenTypeRefresh, now.Add(manager.refreshTokenDuration))
	refreshToken := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims)
	refreshTokenString, err := refreshToken.SignedString(manager.secretKey)
	if err != nil {
		return "", "", err
	}
	return accessTokenString, refreshTokenString, nil
}

// VerifyToken 验证令牌
// tokenString 是 JWT 字符串
// 返回 CustomClaims 和 error
func (manager *JWTManager) VerifyToken(tokenString string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return manager.secretKey, nil
	},
		// 使用 WithValidMethods 精确限制只允许 HS256 算法
		// 替代手动类型断言，防止算法篡改攻击（如 alg=none 或 alg=RS256）
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
	)
	if err != nil {
		return nil, err
	}
	return token.Claims.(*CustomClaims), nil
}

// GenerateRandomString 生成随机字符串
// length 是字符串长度
// 返回随机字符串
func GenerateRandomString(length int) string {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		// 如果生成随机字符串失败，返回一个默认字符串
		return fmt.Sprintf("fallback%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(bytes)
}
