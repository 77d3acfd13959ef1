package server

import (
	"fmt"
	"os"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/greenloophq/greenloop/models"
)

func (s *Server) setupRouter() *gin.Engine {
	ginMode := os.Getenv("GIN_MODE")
	if ginMode == "test" {
		r := gin.New()
		s.defineRoutes(r)
		return r
	}

	r := gin.New()
	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
			param.ClientIP,
			param.TimeStamp.Format(time.RFC1123),
			param.Method,
			param.Path,
			param.Request.Proto,
			param.StatusCode,
			param.Latency,
			param.Request.UserAgent(),
			param.ErrorMessage,
		)
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.MaxMultipartMemory = 32 << 20
	s.defineRoutes(r)

	return r
}

func (s *Server) defineRoutes(router *gin.Engine) {
	// Report submission is limited per user to curb spam reports.
	store := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  time.Minute,
		Limit: 10,
	})
	reportLimiter := limitReportSubmissions(store)

	apirouter := router.Group("/api/v1")
	apirouter.GET("/health", s.handleHealthCheck())
	apirouter.POST("/auth/signup", s.handleSignup())
	apirouter.POST("/auth/login", s.handleLogin())
	apirouter.POST("/password/forgot", s.HandleForgotPassword())
	apirouter.POST("/password/reset/:token", s.ResetPassword())
	apirouter.GET("/rewards/leaderboard", s.handleGetLeaderboard())

	authorized := apirouter.Group("/")
	authorized.Use(s.Authorize())
	authorized.GET("/logout", s.handleLogout())
	authorized.GET("/me", s.handleShowProfile())

	authorized.POST("/user/report", reportLimiter, s.handleCreateReport())
	authorized.GET("/user/reports", s.handleGetMyReports())
	authorized.GET("/reports", s.handleGetPaginatedReports())
	authorized.PUT("/report/:reportID/verify", s.requireRole(models.RoleCollector, models.RoleAdmin), s.handleVerifyReport())
	authorized.PUT("/report/:reportID/collect", s.requireRole(models.RoleCollector, models.RoleAdmin), s.handleCollectReport())
	authorized.DELETE("/report/:reportID", s.handleDeleteReport())

	authorized.GET("/rewards/balance", s.handleGetRewardBalance())
	authorized.GET("/rewards", s.handleGetMyReward())
	authorized.POST("/rewards/redeem", s.handleRedeemPoints())
	authorized.GET("/rewards/transactions", s.handleGetTransactions())
	authorized.GET("/rewards/reconcile", s.handleReconcileReward())

	authorized.GET("/notifications", s.handleGetUnreadNotifications())
	authorized.PUT("/notifications/:id/read", s.handleMarkNotificationRead())
	authorized.GET("/ws/notifications", s.handleNotificationStream())

	admin := authorized.Group("/admin")
	admin.Use(s.requireRole(models.RoleAdmin))
	admin.GET("/users", s.handleGetAllUsers())
	admin.PUT("/users/role", s.handleAssignRole())
	admin.DELETE("/users/:userID", s.handleDeleteUser())
	admin.PUT("/rewards/:userID/level", s.handleSetRewardLevel())
	admin.GET("/reports/today/count", s.handleGetTodayReportCount())
}
