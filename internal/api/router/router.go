package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bca-portal/config"
	"bca-portal/internal/api/handler"
	"bca-portal/internal/api/middleware"
	"bca-portal/internal/model"
	"bca-portal/internal/service"
	"bca-portal/pkg/jwt"
	"bca-portal/pkg/metrics"
	"bca-portal/pkg/redis"
)

const (
	admin   = model.RoleAdmin
	teacher = model.RoleTeacher
	student = model.RoleStudent
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时 Token 黑名单与限流均降级关闭
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, m *metrics.Metrics, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// nil *redis.Client 不能直接装入接口
	var blacklist service.TokenBlacklist
	var limiter middleware.RateLimiter
	if rdb != nil {
		blacklist = rdb
		limiter = rdb
	}

	// ── 全局中间件 ──
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimitBytes))
	r.Use(m.Middleware())

	// ── 健康检查 / 指标 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(m.Handler()))

	loginLimit := middleware.RateLimit(limiter, cfg.RateLimit.LoginPerMinute, time.Minute)
	paymentLimit := middleware.RateLimit(limiter, cfg.RateLimit.PaymentPerMinute, time.Minute)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", loginLimit, h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, blacklist, logger))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			// 学生档案
			students := authorized.Group("/students")
			{
				students.GET("", middleware.RoleAuth(admin, teacher), h.Roster.ListStudents)
				students.POST("", middleware.RoleAuth(admin), h.Roster.CreateStudent)
				students.GET("/:id", h.Roster.GetStudent) // 学生仅本人（Service 层鉴权）
				students.PUT("/:id/semester", middleware.RoleAuth(admin), h.Roster.UpdateStudentSemester)
				students.PUT("/:id/active", middleware.RoleAuth(admin), h.Roster.SetStudentActive)
			}

			// 教师档案
			teachers := authorized.Group("/teachers")
			teachers.Use(middleware.RoleAuth(admin))
			{
				teachers.GET("", h.Roster.ListTeachers)
				teachers.POST("", h.Roster.CreateTeacher)
				teachers.PUT("/:id/salary", h.Roster.SetTeacherSalary)
				teachers.PUT("/:id/active", h.Roster.SetTeacherActive)
			}

			// 课程
			subjects := authorized.Group("/subjects")
			{
				subjects.GET("", h.Course.ListSubjects)
				subjects.POST("", middleware.RoleAuth(admin), h.Course.CreateSubject)
				subjects.PUT("/:id/teacher", middleware.RoleAuth(admin), h.Course.AssignTeacher)
			}

			// 作业与提交
			assignments := authorized.Group("/assignments")
			{
				assignments.POST("", middleware.RoleAuth(admin, teacher), h.Course.CreateAssignment)
				assignments.GET("", h.Course.ListAssignments)
				assignments.GET("/:id", h.Course.GetAssignment)
				assignments.POST("/:id/submissions", middleware.RoleAuth(student), h.Submission.Submit)
				assignments.GET("/:id/submissions", middleware.RoleAuth(admin, teacher), h.Submission.ListForAssignment)
				assignments.GET("/:id/submissions/mine", middleware.RoleAuth(student), h.Submission.GetMine)
			}

			submissions := authorized.Group("/submissions")
			{
				submissions.GET("/:id", h.Submission.Get)
				reviewers := submissions.Group("", middleware.RoleAuth(admin, teacher))
				reviewers.POST("/:id/approve", h.Submission.Approve)
				reviewers.POST("/:id/reject", h.Submission.Reject)
				reviewers.POST("/:id/grade", h.Submission.Grade)
				reviewers.POST("/:id/return", h.Submission.Return)
			}

			// 考勤
			attendance := authorized.Group("/attendance")
			{
				attendance.POST("/mark", middleware.RoleAuth(admin, teacher), h.Attendance.Mark)
				attendance.POST("/mark/students", middleware.RoleAuth(admin, teacher), h.Attendance.MarkStudents)
				attendance.POST("/self", middleware.RoleAuth(teacher), h.Attendance.SelfMark)
				attendance.GET("/review", middleware.RoleAuth(admin), h.Attendance.ListForReview)
				attendance.POST("/:id/approve", middleware.RoleAuth(admin), h.Attendance.Approve)
				attendance.POST("/:id/reject", middleware.RoleAuth(admin), h.Attendance.Reject)
				attendance.GET("/stats", h.Attendance.Stats)
				attendance.GET("/mine", middleware.RoleAuth(teacher, student), h.Attendance.Mine)
				attendance.GET("/summary", middleware.RoleAuth(admin), h.Attendance.DailySummary)
				attendance.GET("/report", middleware.RoleAuth(admin), h.Attendance.Report)
				attendance.GET("/report/export", middleware.RoleAuth(admin), h.Attendance.ExportReport)
				attendance.GET("/calendar", h.Attendance.Calendar)
			}

			// 学费
			fees := authorized.Group("/fees")
			{
				fees.GET("/overview", middleware.RoleAuth(admin), h.Fee.Overview)
				fees.GET("/overview/export", middleware.RoleAuth(admin), h.Fee.ExportOverview)
				fees.POST("/payments", middleware.RoleAuth(admin), paymentLimit, h.Fee.ApplyPayment)
				fees.GET("/students/:id/status", h.Fee.Status)
				fees.GET("/students/:id/history", h.Fee.History)
				fees.GET("/students/:id/semesters/:semester", h.Fee.GetRecord)
			}

			// 工资
			salaries := authorized.Group("/salaries")
			{
				salaries.GET("", middleware.RoleAuth(admin), h.Salary.MonthlyOverview)
				salaries.GET("/export", middleware.RoleAuth(admin), h.Salary.ExportMonth)
				salaries.POST("/generate", middleware.RoleAuth(admin), h.Salary.Generate)
				salaries.POST("/:id/pay", middleware.RoleAuth(admin), h.Salary.MarkPaid)
				salaries.GET("/teachers/:id/history", middleware.RoleAuth(admin, teacher), h.Salary.History)
				salaries.GET("/teachers/:id/record", middleware.RoleAuth(admin), h.Salary.GetRecord)
			}

			// 仪表盘
			dashboard := authorized.Group("/dashboard")
			{
				dashboard.GET("/admin", middleware.RoleAuth(admin), h.Dashboard.Admin)
				dashboard.GET("/teacher", middleware.RoleAuth(teacher), h.Dashboard.Teacher)
				dashboard.GET("/student", middleware.RoleAuth(student), h.Dashboard.Student)
			}
		}
	}

	return r
}
