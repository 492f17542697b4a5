package httpapi

import (
	"log/slog"

	"reviewhub/internal/config"
	"reviewhub/internal/http-api/handler"
	"reviewhub/internal/http-api/middleware"
	"reviewhub/internal/http-api/repository"
	"reviewhub/internal/http-api/service"
	"reviewhub/internal/mailer"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// SetupRouter wires repositories, services and handlers into a Gin engine.
func SetupRouter(cfg *config.Config, db *gorm.DB, rdb *redis.Client, logger *slog.Logger) *gin.Engine {
	// Repositories
	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	confirmationRepo := repository.NewConfirmationRepository(rdb)
	categoryRepo := repository.NewCategoryRepo(db)
	genreRepo := repository.NewGenreRepo(db)
	titleRepo := repository.NewTitleRepo(db)
	reviewRepo := repository.NewReviewRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	// Services
	mail := mailer.New(cfg, logger)
	authService := service.NewAuthService(userRepo, confirmationRepo, refreshTokenRepo, mail, logger, cfg)
	userService := service.NewUserService(userRepo, cfg.SelfAlias)
	categoryService := service.NewCategoryService(categoryRepo)
	genreService := service.NewGenreService(genreRepo)
	titleService := service.NewTitleService(titleRepo, categoryRepo, genreRepo, reviewRepo)
	reviewService := service.NewReviewService(reviewRepo, titleRepo, cfg.MinReviewScore, cfg.MaxReviewScore)
	commentService := service.NewCommentService(commentRepo, reviewRepo)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService, cfg.SelfAlias, cfg.PageSize)
	categoryHandler := handler.NewCategoryHandler(categoryService, cfg.PageSize)
	genreHandler := handler.NewGenreHandler(genreService, cfg.PageSize)
	titleHandler := handler.NewTitleHandler(titleService, cfg.PageSize)
	reviewHandler := handler.NewReviewHandler(reviewService, cfg.PageSize)
	commentHandler := handler.NewCommentHandler(commentService, cfg.PageSize)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Unrouted verbs on a known path (PUT /users/me and friends) must come
	// back as 405, not 404
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	auth := middleware.AuthMiddleware(authService)

	v1 := r.Group("/api/v1")

	// Signup / token exchange. Rate limited because the code check is the
	// only thing standing between a guess and a session.
	authGroup := v1.Group("/auth", middleware.RateLimit(5, 10))
	authHandler.RegisterRoutes(authGroup)

	categoryHandler.RegisterRoutes(v1.Group("/categories"), auth)
	genreHandler.RegisterRoutes(v1.Group("/genres"), auth)
	titleHandler.RegisterRoutes(v1.Group("/titles"), auth)
	reviewHandler.RegisterRoutes(v1.Group("/titles/:title_id/reviews"), auth)
	commentHandler.RegisterRoutes(v1.Group("/titles/:title_id/reviews/:review_id/comments"), auth)

	userHandler.RegisterRoutes(v1.Group("/users", auth))

	return r
}
