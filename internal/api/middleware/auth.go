package middleware

import (
	"strings"

	"github.com/baldhadhaval08/pantry-wizard/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const userIDKey = "user_id"

// TokenVerifier 驗證 bearer token 並回傳使用者 ID
type TokenVerifier interface {
	Verify(token string) (uint, error)
}

// Auth 要求有效的 bearer token
func Auth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			common.WriteError(c, common.ErrUnauthorized)
			return
		}

		userID, err := verifier.Verify(strings.TrimSpace(token))
		if err != nil {
			common.LogDebug("Token rejected", zap.Error(err))
			common.WriteError(c, common.ErrUnauthorized)
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// UserID 取得已驗證的使用者 ID
func UserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}
