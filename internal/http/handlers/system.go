package handlers

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
)

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "pickup core berjalan"})
}

func (h Handlers) DBCheck(c *gin.Context) {
	if h.DB == nil {
		respondError(c, http.StatusInternalServerError, "db_unavailable", "database belum terhubung", nil)
		return
	}
	var sessions int
	if err := h.DB.QueryRowContext(c.Request.Context(), "SELECT COUNT(*) FROM class_sessions").Scan(&sessions); err != nil {
		respondError(c, http.StatusInternalServerError, "db_error", "gagal query ke database: "+err.Error(), nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "koneksi database OK", "sessions": sessions})
}

var (
	routerMu sync.RWMutex
	router   *gin.Engine
)

// SetRouter stores the active gin engine for /api/routes.
func SetRouter(r *gin.Engine) {
	routerMu.Lock()
	defer routerMu.Unlock()
	router = r
}

func Routes(c *gin.Context) {
	routerMu.RLock()
	r := router
	routerMu.RUnlock()
	if r == nil {
		respondError(c, http.StatusServiceUnavailable, "not_ready", "router belum siap", nil)
		return
	}

	routes := r.Routes()
	out := make([]gin.H, 0, len(routes))
	for _, rt := range routes {
		out = append(out, gin.H{"method": rt.Method, "path": rt.Path})
	}
	c.JSON(http.StatusOK, gin.H{"routes": out})
}
