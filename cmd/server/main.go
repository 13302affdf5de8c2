package main

import (
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/FloraSpot/FloraSpot-Back/internal/comment"
	"github.com/FloraSpot/FloraSpot-Back/internal/config"
	"github.com/FloraSpot/FloraSpot-Back/internal/feed"
	"github.com/FloraSpot/FloraSpot-Back/internal/identity"
	"github.com/FloraSpot/FloraSpot-Back/internal/logs"
	"github.com/FloraSpot/FloraSpot-Back/internal/middleware"
	"github.com/FloraSpot/FloraSpot-Back/internal/notification"
	"github.com/FloraSpot/FloraSpot-Back/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg := config.LoadConfig()

	docStore, err := openStore(cfg)
	if err != nil {
		logs.LogJSON("FATAL", "Store initialization failed", map[string]interface{}{
			"error": err.Error(),
		})
		panic(err)
	}

	resolver := identity.NewTokenResolver(docStore, cfg.JWTSecret, cfg.SupabaseURL, cfg.SupabaseKey)

	feedHandler := feed.NewHandler(docStore)
	commentHandler := comment.NewHandler(docStore)
	notificationHandler := notification.NewHandler(docStore)

	r := gin.Default()
	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	// Lecture publique (identité optionnelle pour is_liked)
	public := api.Group("")
	public.Use(middleware.OptionalAuthMiddleware(resolver))
	public.GET("/posts", feedHandler.GetFeed)
	public.GET("/posts/:id/likes", feedHandler.GetLikeStatus)
	public.GET("/posts/:id/comments", commentHandler.GetComments)
	public.GET("/posts/:id/comments/count", commentHandler.GetCommentCount)
	public.GET("/search", feedHandler.Search)

	// Opérations authentifiées
	authed := api.Group("")
	authed.Use(middleware.AuthMiddleware(resolver))
	authed.POST("/posts/:id/like", feedHandler.ToggleLike)
	authed.POST("/posts/:id/comments", commentHandler.AddComment)
	authed.GET("/notifications", notificationHandler.GetNotifications)

	if err := r.Run(":" + cfg.Port); err != nil {
		logs.LogJSON("FATAL", "Server stopped", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// openStore choisit le backend : Redis si REDIS_URL est présent,
// sinon Postgres (Supabase), sinon mémoire pour le développement local
func openStore(cfg *config.Config) (store.Store, error) {
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return store.NewRedis(redis.NewClient(opts)), nil
	}
	if cfg.DBUrl != "" {
		return store.ConnectPostgres(cfg.DBUrl)
	}
	logs.LogJSON("WARN", "No store backend configured, using in-memory store", nil)
	return store.NewMemory(), nil
}
