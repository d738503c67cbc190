package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/viper"

	_ "github.com/jackc/pgx/v5/stdlib"

	"memorial-platform/internal/handlers"
	"memorial-platform/internal/middleware"
	"memorial-platform/internal/notify"
	"memorial-platform/internal/repository"
	"memorial-platform/internal/service"
	"memorial-platform/internal/storage"
)

// This struct will hold our loaded configuration
type Config struct {
	DSN              string `mapstructure:"DSN"`
	JwtSecret        string `mapstructure:"JWT_SECRET"`
	Port             string `mapstructure:"PORT"`
	PublicBaseURL    string `mapstructure:"PUBLIC_BASE_URL"`
	ResendAPIKey     string `mapstructure:"RESEND_API_KEY"`
	NotifyFrom       string `mapstructure:"NOTIFY_FROM_EMAIL"`
	AdminNotifyEmail string `mapstructure:"ADMIN_NOTIFY_EMAIL"`
	SupabaseURL      string `mapstructure:"SUPABASE_URL"`
	SupabaseKey      string `mapstructure:"SUPABASE_SERVICE_KEY"`
	MediaBucket      string `mapstructure:"MEDIA_BUCKET"`
}

// Function loads the config.env file from the root folder
func loadConfig() (config Config, err error) {
	viper.AddConfigPath(".")
	viper.SetConfigName("config")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("PUBLIC_BASE_URL", "https://memorials.fcpus.com")
	viper.SetDefault("MEDIA_BUCKET", "memorial-media")

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}

func main() {
	log.Println("Starting memorial platform server...")

	// Load Configuration
	config, err := loadConfig()
	if err != nil {
		log.Fatal("cannot load config:", err)
	}

	// Connect to the Database
	db, err := sqlx.Connect("pgx", config.DSN)
	if err != nil {
		log.Fatal("cannot connect to database:", err)
	}
	defer db.Close()
	log.Println("Successfully connected to PostgreSQL!")

	// Set up our Gin router
	r := gin.Default()

	// Simple test route
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Repositories
	requestRepo := repository.NewRequestRepo(db)
	memorialRepo := repository.NewMemorialRepo(db)
	adminRepo := repository.NewAdminRepo(db)

	// Collaborators
	notifier := notify.NewEmailNotifier(config.ResendAPIKey, config.NotifyFrom, config.AdminNotifyEmail)
	mediaStore := storage.NewMediaStore(config.SupabaseURL, config.SupabaseKey, config.MediaBucket)

	// Services
	requestService := service.NewRequestService(requestRepo, notifier)
	memorialService := service.NewMemorialService(db, memorialRepo, requestRepo, config.PublicBaseURL)

	// Handlers
	authHandler := handlers.NewAuthHandler(adminRepo, config.JwtSecret)
	requestHandler := handlers.NewRequestHandler(requestService)
	memorialHandler := handlers.NewMemorialHandler(memorialService)
	uploadHandler := handlers.NewUploadHandler(mediaStore)

	// All API routes under /api
	api := r.Group("/api")
	{
		// Auth Endpoint
		api.POST("/auth/login", authHandler.Login)

		// Public request endpoints
		api.POST("/memorial-requests", requestHandler.Create)
		api.POST("/memorial-requests/:id/payment", requestHandler.RecordPayment)

		// Public memorial endpoints
		api.GET("/memorials/map", memorialHandler.MapList)
		api.GET("/memorials/resolve/:slug", memorialHandler.Resolve)
		api.GET("/memorials/by-url/:publicUrl", memorialHandler.GetBySlug)
		api.GET("/memorials/:id", memorialHandler.GetByID)

		// Media upload
		api.POST("/upload/media", uploadHandler.Media)

		// Admin Endpoints
		admin := api.Group("/admin")
		admin.Use(middleware.RequireAdmin(config.JwtSecret))
		{
			admin.GET("/memorial-requests", requestHandler.List)
			admin.PUT("/memorial-requests/:id/status", requestHandler.UpdateStatus)
			admin.POST("/memorials", memorialHandler.Publish)
			admin.PUT("/memorials/:id", memorialHandler.Update)
			admin.DELETE("/memorials/:id", memorialHandler.Delete)
		}
	}

	// Start the server
	log.Println("Server starting on http://localhost:" + config.Port)
	if err := r.Run(":" + config.Port); err != nil {
		log.Fatal("could not start server:", err)
	}
}
