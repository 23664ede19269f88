package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"prompt-deck-api/internal/application/export"
	"prompt-deck-api/internal/domain/entity"
	"prompt-deck-api/internal/interfaces/http/dto"
	apperrors "prompt-deck-api/pkg/errors"
	"prompt-deck-api/pkg/logger"
)

// toAppError 将领域错误映射为 AppError
func toAppError(err error) *apperrors.AppError {
	if apperrors.IsAppError(err) {
		return apperrors.AsAppError(err)
	}

	switch {
	case errors.Is(err, entity.ErrInvalidRequest):
		return apperrors.ErrInvalidParam.WithDetail(err.Error())
	case errors.Is(err, entity.ErrUnlockRequired):
		return apperrors.ErrSlideCountLocked.WithDetail(err.Error())
	case errors.Is(err, entity.ErrGenerationInFlight):
		return apperrors.ErrGenerationInFlight
	case errors.Is(err, entity.ErrInvalidTransition):
		return apperrors.ErrInvalidTransition.WithDetail(err.Error())
	case errors.Is(err, entity.ErrDuplicateUsername):
		return apperrors.ErrDuplicateUsername
	case errors.Is(err, entity.ErrInvalidCredentials):
		return apperrors.ErrInvalidCredentials
	case errors.Is(err, entity.ErrIdentityRequired), errors.Is(err, export.ErrNoIdentity):
		return apperrors.ErrIdentityRequired
	case errors.Is(err, entity.ErrWorkspaceNotFound):
		return apperrors.ErrWorkspaceNotFound
	case errors.Is(err, entity.ErrWorkspaceLimit):
		return apperrors.ErrServiceUnavailable.WithDetail(err.Error())
	case errors.Is(err, export.ErrNoDeck):
		return apperrors.ErrDeckNotAvailable
	case errors.Is(err, entity.ErrContentGeneration):
		return apperrors.ErrContentGeneration
	default:
		return apperrors.ErrInternalError.WithError(err)
	}
}

// respondError 统一错误响应，5xx 记录日志
func respondError(c *gin.Context, err error) {
	appErr := toAppError(err)
	if appErr.HTTPStatus >= 500 {
		logger.Error(c.Request.Context(), "request failed", err, "path", c.FullPath())
	}
	dto.AppError(c, appErr)
}
