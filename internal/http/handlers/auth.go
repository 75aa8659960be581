package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// POST /api/auth/login
func (h Handlers) Login(c *gin.Context) {
	var req loginRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	auth := h.Auth
	if auth.DB == nil {
		auth.DB = h.DB
	}
	token, acct, err := auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":       acct.ID,
			"username": acct.Username,
			"role":     acct.Role,
			"driverId": acct.DriverID,
		},
	})
}
