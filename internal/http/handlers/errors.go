package handlers

import (
	"errors"
	"net/http"

	"pickupcore/internal/domain"
	"pickupcore/internal/http/middleware"
	"pickupcore/internal/services"
	"pickupcore/internal/utils"

	"github.com/gin-gonic/gin"
)

// ErrorResponse standardizes error payloads.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string, details any) {
	if code == "" {
		code = http.StatusText(status)
	}
	resp := ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	}
	reqID := middleware.GetRequestID(c)
	if reqID != "" {
		c.JSON(status, gin.H{
			"error":      resp.Error,
			"code":       resp.Code,
			"details":    resp.Details,
			"request_id": reqID,
			"message":    message,
		})
		return
	}
	c.JSON(status, resp)
}

var kindStatus = map[domain.Kind]int{
	domain.KindValidation: http.StatusBadRequest,
	domain.KindNotFound:   http.StatusNotFound,
	domain.KindConflict:   http.StatusConflict,
	domain.KindLocked:     http.StatusLocked,
}

// RespondDomainError maps service errors to HTTP responses. Internal errors
// are logged and replaced by a generic message.
func RespondDomainError(c *gin.Context, err error) {
	if errors.Is(err, services.ErrInvalidCredentials) {
		respondError(c, http.StatusUnauthorized, "unauthorized", err.Error(), nil)
		return
	}
	kind := domain.KindOf(err)
	status, ok := kindStatus[kind]
	if !ok {
		utils.LogEvent(middleware.GetRequestID(c), "http", "internal_error", err.Error())
		respondError(c, http.StatusInternalServerError, string(domain.KindInternal), "terjadi kesalahan", nil)
		return
	}
	var details any
	var ve domain.ValidationError
	if errors.As(err, &ve) && ve.Field != "" {
		details = gin.H{"field": ve.Field}
	}
	respondError(c, status, string(kind), err.Error(), details)
}
