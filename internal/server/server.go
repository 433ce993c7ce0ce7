package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"anoa.com/careerhub/internal/config"
	"anoa.com/careerhub/internal/middleware"
	"anoa.com/careerhub/internal/scheduler"
	"anoa.com/careerhub/internal/scoring"
	"anoa.com/careerhub/pkg/logger"
	"anoa.com/careerhub/pkg/storage"

	answerHttp "anoa.com/careerhub/internal/modules/answer/delivery/http"
	answerRepo "anoa.com/careerhub/internal/modules/answer/repository"
	answerService "anoa.com/careerhub/internal/modules/answer/service"

	auditHttp "anoa.com/careerhub/internal/modules/audit/delivery/http"
	auditService "anoa.com/careerhub/internal/modules/audit/service"

	badgeHttp "anoa.com/careerhub/internal/modules/badge/delivery/http"
	badgeRepo "anoa.com/careerhub/internal/modules/badge/repository"
	badgeService "anoa.com/careerhub/internal/modules/badge/service"

	notiHttp "anoa.com/careerhub/internal/modules/notification/delivery/http"
	notifRepo "anoa.com/careerhub/internal/modules/notification/repository"
	notifService "anoa.com/careerhub/internal/modules/notification/service"

	pointsHttp "anoa.com/careerhub/internal/modules/points/delivery/http"
	pointsRepo "anoa.com/careerhub/internal/modules/points/repository"
	pointsService "anoa.com/careerhub/internal/modules/points/service"

	progressHttp "anoa.com/careerhub/internal/modules/progress/delivery/http"
	progressRepo "anoa.com/careerhub/internal/modules/progress/repository"
	progressService "anoa.com/careerhub/internal/modules/progress/service"

	questionHttp "anoa.com/careerhub/internal/modules/question/delivery/http"
	questionRepo "anoa.com/careerhub/internal/modules/question/repository"
	questionService "anoa.com/careerhub/internal/modules/question/service"

	skillHttp "anoa.com/careerhub/internal/modules/skill/delivery/http"
	skillRepo "anoa.com/careerhub/internal/modules/skill/repository"
	skillService "anoa.com/careerhub/internal/modules/skill/service"

	roleHttp "anoa.com/careerhub/internal/modules/targetrole/delivery/http"
	roleRepo "anoa.com/careerhub/internal/modules/targetrole/repository"
	roleService "anoa.com/careerhub/internal/modules/targetrole/service"

	userHttp "anoa.com/careerhub/internal/modules/user/delivery/http"
	userRepo "anoa.com/careerhub/internal/modules/user/repository"
	userService "anoa.com/careerhub/internal/modules/user/service"

	voteHttp "anoa.com/careerhub/internal/modules/vote/delivery/http"
	voteRepo "anoa.com/careerhub/internal/modules/vote/repository"
	voteService "anoa.com/careerhub/internal/modules/vote/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	shutdownTimeout = 10 * time.Second
	auditThrottle   = time.Minute
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
	scheduler   *scheduler.Scheduler
}

// NewServer wires every module onto one router. redisClient may be nil.
func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, imageStorage storage.ImageStorage, rules scoring.Rules) (*Server, error) {
	userRepository := userRepo.NewUserRepository(db)
	userSvc := userService.NewUserService(userRepository)
	userHandler := userHttp.NewUserHandler(userSvc)

	// Notification Module
	notificationRepository := notifRepo.NewNotificationRepository(db)
	notificationSvc := notifService.NewNotificationService(notificationRepository, redisClient)
	origins := allowedOrigins(cfg.AllowedOrigins)
	notificationHandler := notiHttp.NewNotificationHandler(notificationSvc, redisClient, checkOrigin(origins))

	badgeRepository := badgeRepo.NewBadgeRepository(db)
	badgeSvc := badgeService.NewBadgeService(db, badgeRepository, userRepository, notificationSvc, imageStorage, rules)
	badgeHandler := badgeHttp.NewBadgeHandler(badgeSvc)

	pointsRepository := pointsRepo.NewPointsRepository(db)
	pointsSvc := pointsService.NewPointsService(pointsRepository, badgeSvc, rules)
	pointsHandler := pointsHttp.NewPointsHandler(pointsSvc)

	roleRepository := roleRepo.NewTargetRoleRepository(db)
	roleSvc := roleService.NewTargetRoleService(roleRepository, userRepository)
	roleHandler := roleHttp.NewTargetRoleHandler(roleSvc)

	skillRepository := skillRepo.NewSkillRepository(db)
	skillSvc := skillService.NewSkillService(skillRepository, userRepository, roleRepository)
	skillHandler := skillHttp.NewSkillHandler(skillSvc)

	questionRepository := questionRepo.NewQuestionRepository(db)
	questionSvc := questionService.NewQuestionService(questionRepository, userRepository, pointsSvc, rules)
	questionHandler := questionHttp.NewQuestionHandler(questionSvc)

	answerRepository := answerRepo.NewAnswerRepository(db)
	answerSvc := answerService.NewAnswerService(db, answerRepository, questionRepository, userRepository, roleSvc, pointsSvc, skillSvc)
	answerHandler := answerHttp.NewAnswerHandler(answerSvc)

	voteRepository := voteRepo.NewVoteRepository(db)
	voteSvc := voteService.NewVoteService(voteRepository, answerRepository, userRepository, pointsSvc, skillSvc, redisClient, cfg.VoteCountTTL)
	voteHandler := voteHttp.NewVoteHandler(voteSvc)

	progressRepository := progressRepo.NewProgressRepository(db)
	progressSvc := progressService.NewProgressService(progressRepository, userRepository, roleRepository, skillSvc, badgeSvc, rules)
	progressHandler := progressHttp.NewProgressHandler(progressSvc)

	auditSvc := auditService.NewAuditService(voteSvc, pointsSvc, cfg.AuditAutoFix)
	auditHandler := auditHttp.NewAuditHandler(auditSvc)

	jobs := scheduler.New()
	if cfg.AuditSchedule != "" {
		if err := jobs.Register(auditService.NewJob(auditSvc, cfg.AuditSchedule)); err != nil {
			return nil, fmt.Errorf("register audit job: %w", err)
		}
	}

	router := gin.New()

	setupCORS(router, origins)

	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())

	api := router.Group("/api")
	{
		// User routes
		api.POST("/users", userHandler.CreateUser)
		api.GET("/users/:userId", userHandler.GetUser)
		api.PUT("/users/:userId", userHandler.UpdateUser)
		api.GET("/users/:userId/questions", questionHandler.ListByAuthor)
		api.GET("/users/:userId/dashboard", progressHandler.GetDashboard)
		api.GET("/users/:userId/target-roles/:roleId/progress", progressHandler.GetRoleProgress)
		api.GET("/users/:userId/points/history", pointsHandler.GetHistory)

		// Notification routes
		api.GET("/users/:userId/notifications", notificationHandler.GetNotifications)
		api.GET("/users/:userId/notifications/unread-count", notificationHandler.UnreadCount)
		api.PUT("/users/:userId/notifications/read-all", notificationHandler.MarkAllAsRead)
		api.GET("/users/:userId/notifications/ws", notificationHandler.HandleWebSocket)
		api.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)

		// Target role routes
		api.POST("/target-roles", roleHandler.AddRole)
		api.GET("/target-roles/:userId", roleHandler.ListRoles)
		api.GET("/target-roles/:userId/skills", roleHandler.ListRolesWithSkills)
		api.DELETE("/target-roles/:id", roleHandler.DeleteRole)

		// Skill routes
		api.GET("/skills/:userId", skillHandler.ListSkills)
		api.POST("/skills", skillHandler.AddSkills)
		api.PUT("/skills/:skillId", skillHandler.UpdateSkill)
		api.DELETE("/skills/:skillId", skillHandler.DeleteSkill)

		// Question routes
		api.POST("/questions", questionHandler.CreateQuestion)
		api.GET("/questions/:id", questionHandler.GetQuestion)
		api.PUT("/questions/:id", questionHandler.UpdateQuestion)
		api.DELETE("/questions/:id", questionHandler.DeleteQuestion)
		api.POST("/questions/:id/publish", questionHandler.PublishQuestion)

		// Answer routes
		api.POST("/answers", answerHandler.CreateAnswer)
		api.GET("/answers/question/:questionId", answerHandler.ListByQuestion)
		api.POST("/answers/:answerId/accept", answerHandler.AcceptAnswer)
		api.PUT("/answers/:answerId", answerHandler.UpdateAnswer)

		// Vote routes
		api.POST("/votes", voteHandler.CastVote)
		api.GET("/votes/count", voteHandler.GetVoteCount)
		api.GET("/votes/me", voteHandler.GetVoterVote)

		api.GET("/leaderboard", pointsHandler.GetLeaderboard)
		api.GET("/badges", badgeHandler.GetCatalog)
		api.GET("/badges/user/:userId", badgeHandler.GetUserBadges)

		adminGroup := api.Group("/admin")
		{
			adminGroup.POST("/badges/:badgeId/image", badgeHandler.UploadImage)
			adminGroup.PUT("/users/:userId/points", pointsHandler.SetPoints)
			adminGroup.POST("/votes/reconcile", middleware.Throttle(redisClient, "reconcile", time.Second), voteHandler.Reconcile)
			adminGroup.GET("/audit", middleware.Throttle(redisClient, "audit", auditThrottle), auditHandler.RunAudit)
		}
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
		scheduler:   jobs,
	}, nil
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then drains requests and stops
// background jobs.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	s.scheduler.Start()

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		s.scheduler.Stop(context.Background())
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	s.scheduler.Stop(shutdownCtx)
	if err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

func allowedOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	return origins
}

// checkOrigin lets WebSocket upgrades through for the CORS origins and for
// clients that send no Origin header.
func checkOrigin(origins []string) func(r *http.Request) bool {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || allowed[origin]
	}
}

func setupCORS(router *gin.Engine, origins []string) {
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
