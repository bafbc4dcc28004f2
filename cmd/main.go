package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/traitview/traitview/config"
	"github.com/traitview/traitview/database"
	_ "github.com/traitview/traitview/docs"
	"github.com/traitview/traitview/internal/auth"
	"github.com/traitview/traitview/internal/controller"
	adminctrl "github.com/traitview/traitview/internal/controller/admin"
	userctrl "github.com/traitview/traitview/internal/controller/user"
	"github.com/traitview/traitview/internal/logger"
	"github.com/traitview/traitview/internal/model"
	"github.com/traitview/traitview/internal/pdf"
	"github.com/traitview/traitview/internal/repository"
	"github.com/traitview/traitview/internal/service"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title Traitview API
// @version 1.0
// @description Behavioural test delivery for recruiters: test authoring, candidate links, timed test sessions and reports.
// @contact.name API Support
// @contact.email support@traitview.example
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger.Init()

	app := fx.New(
		fx.Provide(
			config.NewConfig,
			database.NewDatabase,
			NewGinEngine,
			clockwork.NewRealClock,
			auth.NewIssuer,
		),

		fx.Provide(
			repository.NewTestRepository,
			repository.NewQuestionRepository,
			repository.NewApplicationRepository,
			repository.NewCandidateRepository,
			repository.NewBatchRepository,
			repository.NewNotificationRepository,
		),

		fx.Provide(
			service.NewLinkGenerator,
			service.NewTelegramMessenger,
			service.NewNotificationService,
			service.NewTestSessionService,
			service.NewAdminTestService,
			service.NewCandidateService,
			service.NewApplicationService,
			service.NewBatchService,
			service.NewGeminiGenerator,
			service.NewReviewService,
			func() service.PDFRenderer { return pdf.NewRenderer() },
			service.NewReportService,
		),

		fx.Provide(
			controller.NewAuthController,
			userctrl.NewTestSessionController,
			adminctrl.NewAdminTestController,
			adminctrl.NewCandidateController,
			adminctrl.NewApplicationController,
			adminctrl.NewBatchController,
			adminctrl.NewReportController,
		),

		fx.Invoke(AutoMigrateDB),
		fx.Invoke(RegisterRoutesAndStartServer),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")

	stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := app.Stop(stopCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}

func NewGinEngine(cfg *config.Config) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("user_agent", param.Request.UserAgent()).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.PublicBaseURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// URL: http://localhost:PORT/swagger/index.html
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// RegisterRoutesAndStartServer configures API routes and manages server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	issuer *auth.Issuer,
	sessionSvc service.TestSessionService,
	authCtrl *controller.AuthController,
	sessionCtrl *userctrl.TestSessionController,
	adminTestCtrl *adminctrl.AdminTestController,
	candidateCtrl *adminctrl.CandidateController,
	applicationCtrl *adminctrl.ApplicationController,
	batchCtrl *adminctrl.BatchController,
	reportCtrl *adminctrl.ReportController,
) {
	api := router.Group("/api/v1")

	// Candidate routes: the link token is the only credential.
	sessionCtrl.RegisterRoutes(api)

	if !cfg.IsProduction() {
		api.POST("/auth/token", authCtrl.IssueToken)
	}

	admin := api.Group("/admin", auth.Middleware(issuer), auth.RequireRole(auth.RoleCompanyUser))
	write := auth.RequireRole(auth.RoleCompanyAdmin)
	adminTestCtrl.RegisterRoutes(admin, write)
	candidateCtrl.RegisterRoutes(admin, write)
	applicationCtrl.RegisterRoutes(admin, write)
	batchCtrl.RegisterRoutes(admin, write)
	reportCtrl.RegisterRoutes(admin)

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Traitview API server starting on port %s", cfg.Server.Port)
			log.Info().Msgf("Swagger UI available at http://localhost:%s/swagger/index.html", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			err := server.Shutdown(shutdownCtx)
			sessionSvc.Shutdown()
			log.Info().Msg("Live test sessions stopped")
			return err
		},
	})
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	if err := db.AutoMigrate(model.All()...); err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}
