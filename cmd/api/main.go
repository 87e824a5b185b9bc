package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"filmverse/internal/config"
	"filmverse/internal/database"
	"filmverse/internal/middleware"
	"filmverse/internal/modules/auth"
	"filmverse/internal/modules/favorite"
	"filmverse/internal/modules/feed"
	"filmverse/internal/modules/filmnote"
	jwtsvc "filmverse/internal/pkg/jwt"
	"filmverse/internal/repository"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal(err)
	}

	userRepo := repository.NewUserRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)
	filmNoteRepo := repository.NewFilmNoteRepository(db)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	authService := auth.NewService(userRepo, j)
	authHandler := auth.NewHandler(authService, cfg.CookieSecure, int(cfg.JWTTTL.Seconds()))

	favoriteService := favorite.NewService(favoriteRepo)
	favoriteHandler := favorite.NewHandler(favoriteService)

	noteService := filmnote.NewService(filmNoteRepo)
	noteHandler := filmnote.NewHandler(noteService)

	feedClient := feed.NewClient(cfg.FeedURL, cfg.FeedTimeout, cfg.FeedRetries, cfg.FeedCacheTTL)
	feedHandler := feed.NewHandler(feedClient)

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(middleware.ErrorLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.CSRF(cfg.CookieSecure))

	v1 := r.Group("/api/v1")
	{
		// public
		authHandler.RegisterPublicRoutes(v1)
		feedHandler.RegisterPublicRoutes(v1)

		// protected
		protected := v1.Group("/")
		protected.Use(middleware.JWTAuth(j))
		{
			authHandler.RegisterProtectedRoutes(protected)
			favoriteHandler.RegisterRoutes(protected)
			noteHandler.RegisterRoutes(protected)
			feedHandler.RegisterProtectedRoutes(protected)
		}
	}

	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatal(err)
	}
}
