package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/shioribako/shiori/pkg/shiori/auth"
	"github.com/shioribako/shiori/pkg/shiori/bookmarks"
	"github.com/shioribako/shiori/pkg/shiori/categories"
	"github.com/shioribako/shiori/pkg/shiori/config"
	"github.com/shioribako/shiori/pkg/shiori/database"
	"github.com/shioribako/shiori/pkg/shiori/importexport"
	"github.com/shioribako/shiori/pkg/shiori/models"
	"github.com/shioribako/shiori/pkg/shiori/tags"
	"github.com/shioribako/shiori/pkg/shiori/users"
)

func main() {
	cfg := config.Load()

	// Connect to database
	if err := database.Connect(cfg.DatabaseDSN); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run auto-migrations
	if err := models.AutoMigrate(database.GetDB()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	// Set up Gin router
	r := gin.Default()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// API routes. Identity tokens are optional: every endpoint also
	// accepts an explicit ownerId, and reads are public.
	api := r.Group("/api", auth.OptionalAuthMiddleware())
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "ok",
				"service": "shiori",
			})
		})

		db := database.GetDB()

		usersHandler := users.NewHandler(db)
		usersHandler.RegisterRoutes(api)

		bookmarksHandler := bookmarks.NewHandler(db)
		bookmarksHandler.RegisterRoutes(api)

		categoriesHandler := categories.NewHandler(db)
		categoriesHandler.RegisterRoutes(api)

		tagsHandler := tags.NewHandler(db)
		tagsHandler.RegisterRoutes(api)

		importExportHandler := importexport.NewHandler(db)
		importExportHandler.RegisterRoutes(api)
	}

	log.Printf("Starting shiori server on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
