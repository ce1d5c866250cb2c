package v1

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/vibe-gaming/passwordless/internal/service"
	"github.com/vibe-gaming/passwordless/pkg/logger"
)

func errorResponse(c *gin.Context, status int, code ErrorCode) {
	c.AbortWithStatusJSON(status, getErrorStruct(code))
}

// bindingErrorResponse answers a request that gin could not bind.
func bindingErrorResponse(c *gin.Context, err error) {
	var verr validator.ValidationErrors
	if !errors.As(err, &verr) {
		errorResponse(c, http.StatusBadRequest, InvalidRequestBodyCode)
		return
	}

	out := make([]ValidationError, len(verr))
	for i, ferr := range verr {
		out[i] = ValidationError{ferr.Field(), msgForTag(ferr.Tag(), ferr.Param())}
	}
	validationErrorResponse(c, out)
}

func validationErrorResponse(c *gin.Context, errs []ValidationError) {
	response := ValidationErrorStruct{
		ErrorCode:    ValidationErrorCode,
		ErrorMessage: ValidationErrorMessage,
	}
	response.Errors = errs
	c.AbortWithStatusJSON(http.StatusBadRequest, response)
}

// serviceErrorResponse maps service errors to HTTP. Credential failures get
// one generic answer whatever the cause.
func serviceErrorResponse(c *gin.Context, err error) {
	var (
		vErr       *service.ValidationError
		limitedErr *service.RateLimitedError
	)

	switch {
	case errors.As(err, &vErr):
		validationErrorResponse(c, []ValidationError{{vErr.Field, vErr.Message}})
	case errors.As(err, &limitedErr):
		code := ErrorCode(RateLimitedCode)
		if limitedErr.Reason == service.LimitReasonLocked {
			code = AccountLockedCode
		}
		response := getErrorStruct(code)
		response.CooldownMinutes = limitedErr.CooldownMinutes
		c.AbortWithStatusJSON(http.StatusTooManyRequests, response)
	case errors.Is(err, service.ErrInvalidOrExpired):
		errorResponse(c, http.StatusUnauthorized, InvalidOrExpiredCode)
	case errors.Is(err, service.ErrDeliveryFailure):
		errorResponse(c, http.StatusServiceUnavailable, DeliveryFailureCode)
	case errors.Is(err, service.ErrIdentityNotFound):
		errorResponse(c, http.StatusNotFound, IdentityNotFoundCode)
	case errors.Is(err, service.ErrIdentityAlreadyExists):
		errorResponse(c, http.StatusConflict, IdentityAlreadyExistsCode)
	case errors.Is(err, service.ErrSessionExpired):
		errorResponse(c, http.StatusUnauthorized, SessionExpiredCode)
	case errors.Is(err, service.ErrSessionInvalid):
		errorResponse(c, http.StatusUnauthorized, SessionInvalidCode)
	default:
		logger.Error("request failed", zap.Error(err), zap.String("path", c.FullPath()))
		errorResponse(c, http.StatusInternalServerError, UnknownErrorCode)
	}
}

func msgForTag(tag string, value string) string {
	switch tag {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		return fmt.Sprintf("Must be at least %v characters", value)
	case "max":
		return fmt.Sprintf("Must be at most %v characters", value)
	case "oneof":
		return fmt.Sprintf("Must be one of: %v", value)
	case "otpcode":
		return "Must be a numeric code"
	}
	return tag
}
