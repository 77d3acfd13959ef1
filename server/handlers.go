package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/greenloophq/greenloop/server/response"
)

// decode binds the request body into v.
func decode(c *gin.Context, v interface{}) error {
	return c.ShouldBindJSON(v)
}

func (s *Server) handleHealthCheck() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.DB != nil {
			if err := s.DB.Ping(); err != nil {
				response.JSON(c, "database unreachable", http.StatusServiceUnavailable, nil, err)
				return
			}
		}
		response.JSON(c, "ok", http.StatusOK, gin.H{"status": "healthy"}, nil)
	}
}
