package common

import (
	"math"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GenerateUUID 生成 UUID
func GenerateUUID() string {
	return uuid.New().String()
}

// WriteError 將錯誤轉為統一 JSON 響應，不外洩原始錯誤內容
func WriteError(c *gin.Context, err error) {
	ce := AsCustomError(err)
	c.AbortWithStatusJSON(ce.Status, ErrorResponse{
		Code:    ce.Code,
		Message: ce.Message,
	})
}

// WriteErrorResponse 寫入錯誤響應
func WriteErrorResponse(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// Round1 四捨五入到小數點後一位
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
