package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ecolearn/ecolearn-api/internal/middleware"
	"github.com/ecolearn/ecolearn-api/internal/models"
	"github.com/ecolearn/ecolearn-api/internal/service"
)

// Handlers bundles every HTTP handler for route registration.
type Handlers struct {
	Auth         *AuthHandler
	User         *UserHandler
	Course       *CourseHandler
	Quiz         *QuizHandler
	Assignment   *AssignmentHandler
	Progress     *ProgressHandler
	Gamification *GamificationHandler
	Moderation   *ModerationHandler
	Notification *NotificationHandler
	Community    *CommunityHandler
	Competition  *CompetitionHandler
	Report       *ReportHandler
	File         *FileHandler
	Realtime     *RealtimeHandler
}

// RegisterRoutes mounts every endpoint under the API prefix. Authentication
// and download-token routes stay public; everything else sits behind JWT
// with role checks where a single role owns the operation.
func RegisterRoutes(r *gin.Engine, prefix string, authSvc *service.AuthService, h Handlers) {
	api := r.Group(prefix)

	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/refresh", h.Auth.Refresh)
	api.GET("/files/:token", h.File.Download)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))

	authed.POST("/auth/logout", h.Auth.Logout)
	authed.PUT("/auth/password", h.Auth.ChangePassword)

	authed.GET("/users/me", h.User.Me)
	authed.GET("/users", middleware.RequireRoles(models.RoleAdmin), h.User.List)
	authed.PUT("/users/me/teachers", middleware.RequireRoles(models.RoleStudent), h.User.SelectTeachers)
	authed.GET("/teachers", h.User.ListTeachers)
	authed.PUT("/teachers/me", middleware.RequireRoles(models.RoleTeacher), h.User.UpdateTeacherProfile)
	authed.POST("/teachers/me/resume", middleware.RequireRoles(models.RoleTeacher), h.User.UploadResume)

	authed.POST("/courses", middleware.RequireRoles(models.RoleTeacher), h.Course.Create)
	authed.GET("/courses", h.Course.List)
	authed.GET("/courses/:id", h.Course.Get)
	authed.POST("/courses/:id/enroll", middleware.RequireRoles(models.RoleStudent), h.Course.Enroll)
	authed.POST("/courses/:id/materials", middleware.RequireRoles(models.RoleTeacher), h.Course.AddMaterial)
	authed.GET("/courses/:id/materials", h.Course.ListMaterials)
	authed.GET("/courses/:id/materials/:materialId/link", h.Course.MaterialLink)
	authed.POST("/courses/:id/quizzes", middleware.RequireRoles(models.RoleTeacher), h.Quiz.Create)
	authed.GET("/courses/:id/quizzes", h.Quiz.ListByCourse)
	authed.POST("/courses/:id/assignments", middleware.RequireRoles(models.RoleTeacher), h.Assignment.Create)
	authed.GET("/courses/:id/assignments", h.Assignment.ListByCourse)

	authed.GET("/quizzes/:id", h.Quiz.Get)
	authed.POST("/quizzes/:id/submit", middleware.RequireRoles(models.RoleStudent), h.Quiz.Submit)

	authed.POST("/assignments/:id/submit", middleware.RequireRoles(models.RoleStudent), h.Assignment.Submit)
	authed.GET("/assignments/:id/submissions", middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher), h.Assignment.ListSubmissions)
	authed.PUT("/submissions/:id/grade", middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher), h.Assignment.Grade)

	authed.POST("/progress/activities", middleware.RequireRoles(models.RoleStudent), h.Progress.RecordActivity)
	authed.POST("/progress/games", middleware.RequireRoles(models.RoleStudent), h.Progress.CompleteGame)
	authed.GET("/progress", middleware.RequireRoles(models.RoleStudent), h.Progress.ListMine)
	authed.GET("/progress/courses/:id", middleware.RequireRoles(models.RoleStudent), h.Progress.CourseProgress)

	authed.GET("/leaderboard", h.Gamification.Leaderboard)
	authed.GET("/badges", h.Gamification.ListBadges)
	authed.GET("/badges/mine", middleware.RequireRoles(models.RoleStudent), h.Gamification.MyBadges)
	authed.GET("/winners/latest", h.Gamification.LatestWinners)

	authed.GET("/notifications", h.Notification.List)
	authed.PUT("/notifications/:id/read", h.Notification.MarkRead)
	authed.GET("/notifications/stream", h.Realtime.Stream)

	authed.GET("/community", h.Community.Get)
	authed.GET("/community/messages", h.Community.ListMessages)
	authed.POST("/community/messages", h.Community.PostMessage)

	authed.GET("/competitions", h.Competition.List)
	authed.GET("/competitions/:id", h.Competition.Get)
	authed.POST("/competitions/:id/join", middleware.RequireRoles(models.RoleStudent), h.Competition.Join)

	authed.GET("/reports/leaderboard", middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher), h.Report.Leaderboard)
	authed.GET("/reports/progress", middleware.RequireRoles(models.RoleStudent), h.Report.MyProgress)

	admin := authed.Group("/admin")
	admin.Use(middleware.RequireRoles(models.RoleAdmin))
	admin.POST("/badges", h.Gamification.CreateBadge)
	admin.POST("/winners", h.Gamification.ConfigureWinners)
	admin.GET("/courses/summary", h.Course.Summaries)
	admin.PUT("/teachers/:id/approval", h.Moderation.SetTeacherApproval)
	admin.PUT("/courses/:id/approval", h.Moderation.SetCourseApproval)
	admin.POST("/notifications/broadcast", h.Notification.Broadcast)
	admin.POST("/competitions", h.Competition.Create)
}
