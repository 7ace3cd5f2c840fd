package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"examdesk/internal/config"
	"examdesk/internal/middleware"
	"examdesk/internal/models"
	"examdesk/internal/repository"
	"examdesk/internal/service"
	"examdesk/internal/storage"
)

type HandlerSet struct {
	log             zerolog.Logger
	cfg             *config.AppConfig
	authService     *service.AuthService
	gradeService    *service.GradeService
	resitService    *service.ResitService
	scheduleService *service.ScheduleService
	db              *pgxpool.Pool
	cache           *redis.Client
	users           *repository.UserRepository
	sessions        *repository.SessionRepository
}

func NewHandlerSet(log zerolog.Logger, db *pgxpool.Pool, cache *redis.Client, store *storage.ObjectStore, cfg *config.AppConfig) HandlerSet {
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	resitRepo := repository.NewResitRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)

	auth := service.NewAuthService(userRepo, sessionRepo, cfg, log)
	grades := service.NewGradeService(gradeRepo, cfg, log)
	resits := service.NewResitService(resitRepo, gradeRepo, cache, cfg, log)
	schedules := service.NewScheduleService(scheduleRepo, store, cfg, log)

	return HandlerSet{
		log:             log,
		cfg:             cfg,
		authService:     auth,
		gradeService:    grades,
		resitService:    resits,
		scheduleService: schedules,
		db:              db,
		cache:           cache,
		users:           userRepo,
		sessions:        sessionRepo,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	router.POST("/login", h.Login)

	authed := router.Group("")
	authed.Use(middleware.Auth(h.cfg, h.users, h.sessions))

	authed.POST("/logout", h.Logout)
	authed.GET("/me", h.Me)

	student := authed.Group("")
	student.Use(middleware.RequireRoles(models.RoleStudent))
	student.GET("/my-grades", h.MyGrades)
	student.GET("/my-resit-exams", h.MyResitExams)
	student.GET("/eligible-resits", h.EligibleResits)
	student.POST("/declare-resit", h.DeclareResit)
	student.GET("/schedule/:filename", h.DownloadSchedule)

	instructor := authed.Group("")
	instructor.Use(middleware.RequireRoles(models.RoleInstructor))
	instructor.GET("/resit-stats", h.ResitStats)
	instructor.POST("/submit-grade", h.SubmitGrade)
	instructor.POST("/resit-details", h.ResitDetails)
	instructor.GET("/resit-registrations/:courseId", h.ResitRegistrations)

	secretary := authed.Group("")
	secretary.Use(middleware.RequireRoles(models.RoleSecretary))
	secretary.POST("/upload-schedule", h.UploadSchedule)
	secretary.GET("/schedules", h.ListSchedules)
}
