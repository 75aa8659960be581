package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"pickupcore/internal/domain"
	"pickupcore/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// RespondError sends standard error payload with request_id included.
// Keeps backward compatibility by always providing "message".
func RespondError(c *gin.Context, status int, message string, err error) {
	reqID := middleware.GetRequestID(c)
	payload := gin.H{
		"message":    message,
		"request_id": reqID,
	}
	if err != nil {
		payload["error"] = err.Error()
	}
	c.JSON(status, payload)
}

// BindJSONOrError ensures body is present and parsable.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		RespondError(c, http.StatusBadRequest, "body kosong", nil)
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		RespondError(c, http.StatusBadRequest, "payload tidak valid", err)
		return false
	}
	return true
}

func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		RespondDomainError(c, domain.ValidationError{Field: "id", Msg: "id tidak valid"})
		return 0, false
	}
	return id, true
}

// scopeDriver decides which driver's stops a request sees. Drivers always
// see their own; admins may pick one via requested or see all.
func scopeDriver(c *gin.Context, requested string) (*int64, bool) {
	rc, _ := middleware.GetRequestContext(c)
	if !rc.IsAdmin() {
		if rc.DriverID <= 0 {
			respondError(c, http.StatusForbidden, "forbidden", "akun tidak terhubung ke driver", nil)
			return nil, false
		}
		id := rc.DriverID
		return &id, true
	}
	requested = strings.TrimSpace(requested)
	if requested == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(requested, 10, 64)
	if err != nil || id <= 0 {
		RespondDomainError(c, domain.ValidationError{Field: "driver_id", Msg: "id tidak valid"})
		return nil, false
	}
	return &id, true
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
