package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/baldhadhaval08/pantry-wizard/internal/core/recipe"
	"github.com/baldhadhaval08/pantry-wizard/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RespondError 將服務層錯誤轉為使用者可處理的響應，不回傳模型原文
func RespondError(c *gin.Context, err error) {
	var exhausted *recipe.RetryBudgetExhaustedError

	switch {
	case errors.Is(err, recipe.ErrPantryEmpty):
		common.WriteError(c, common.ErrPantryEmpty)
	case errors.As(err, &exhausted):
		common.LogWarn("Recipe generation failed",
			zap.Int("attempts", exhausted.Attempts),
			zap.Error(exhausted.Last),
			zap.String("request_id", requestid.Get(c)),
		)
		common.WriteError(c, common.ErrGenerationFailed)
	case common.IsValidationError(err):
		common.WriteErrorResponse(c, http.StatusBadRequest, common.ErrCodeInvalidRequest, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		common.WriteError(c, common.ErrGatewayTimeout)
	case errors.Is(err, context.Canceled):
		common.WriteError(c, common.ErrRequestTimeout)
	default:
		ce := common.AsCustomError(err)
		if ce.Status >= http.StatusInternalServerError {
			common.LogError("Request failed",
				zap.Error(err),
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", requestid.Get(c)),
			)
		}
		common.WriteError(c, ce)
	}
}

// BindError 請求格式錯誤
func BindError(c *gin.Context, err error) {
	common.LogDebug("Invalid request body",
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
	)
	common.WriteError(c, common.ErrInvalidRequest)
}
