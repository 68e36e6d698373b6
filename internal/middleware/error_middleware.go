package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/lecturealert/internal/app/models/dto"
	"github.com/yigit/lecturealert/internal/app/session"
	"github.com/yigit/lecturealert/internal/pkg/apperrors"
	"github.com/yigit/lecturealert/internal/pkg/logger"
)

// HandleAPIError maps an error onto its status code and error envelope
func HandleAPIError(c *gin.Context, err error) {
	var authErr *session.AuthError
	if errors.As(err, &authErr) {
		handleAuthError(c, authErr)
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrValidationFailed):
		respond(c, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed")
	case errors.Is(err, apperrors.ErrNoIdentity):
		respond(c, http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "Authentication required")
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		respond(c, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid login credentials")
	case errors.Is(err, apperrors.ErrEmailNotVerified):
		respond(c, http.StatusUnauthorized, dto.ErrorCodeEmailNotVerified, "Email not confirmed")
	case errors.Is(err, apperrors.ErrTokenExpired):
		respond(c, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired")
	case errors.Is(err, apperrors.ErrTokenInvalid), errors.Is(err, apperrors.ErrTokenRevoked):
		respond(c, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token")
	case errors.Is(err, apperrors.ErrInvalidEmailToken):
		respond(c, http.StatusBadRequest, dto.ErrorCodeInvalidToken, "Invalid or expired verification link")
	case errors.Is(err, apperrors.ErrUserNotFound):
		respond(c, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found")
	case errors.Is(err, apperrors.ErrEmailAlreadyExists):
		respond(c, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "User already registered")
	case errors.Is(err, apperrors.ErrBackendUnavailable):
		respond(c, http.StatusServiceUnavailable, dto.ErrorCodeBackendUnavailable, "Service temporarily unavailable")
	default:
		logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Unhandled API error")
		respond(c, http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error")
	}
}

func handleAuthError(c *gin.Context, err *session.AuthError) {
	if err.IsValidation() {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, err.Message).
			WithDetails(dto.FromFieldErrors(err.Fields).Errors)
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	status, code := http.StatusServiceUnavailable, dto.ErrorCodeBackendUnavailable
	switch {
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		status, code = http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials
	case errors.Is(err, apperrors.ErrEmailNotVerified):
		status, code = http.StatusUnauthorized, dto.ErrorCodeEmailNotVerified
	case errors.Is(err, apperrors.ErrEmailAlreadyExists):
		status, code = http.StatusConflict, dto.ErrorCodeResourceAlreadyExists
	case errors.Is(err, apperrors.ErrInvalidRole):
		status, code = http.StatusBadRequest, dto.ErrorCodeValidationFailed
	case err.Message == session.MsgSignOutFailed:
		code = dto.ErrorCodeSignOutFailed
	}
	respond(c, status, code, err.Message)
}

func respond(c *gin.Context, status int, code dto.ErrorCode, message string) {
	c.JSON(status, dto.NewErrorResponse(dto.NewErrorDetail(code, message)))
}
