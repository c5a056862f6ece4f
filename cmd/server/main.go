package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"educrm-api/pkg/api"
	"educrm-api/pkg/cache"
	"educrm-api/pkg/email"
	"educrm-api/pkg/orm"
	"educrm-api/pkg/recurring"
	"educrm-api/pkg/task"
	"educrm-api/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	loadEnvVars()
	go continuouslyReadEnv()

	port := utils.GetEnv("SERVER_PORT", "8080")
	db := orm.GetConnHandler().DB()

	generator := recurring.NewGenerator(db)
	if err := generator.Start(sweepInterval()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start recurring task generator")
	}

	router := gin.Default()
	// read allowedOrigins from environment variable which is a comma separated string
	allowedOrigins := strings.Split(utils.GetEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"), ",")
	allowedOrigins = append(allowedOrigins, "http://localhost*")

	log.Info().Msgf("Allowed origins: %v", allowedOrigins)
	config := cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
		AllowWildcard:    true,
	}
	router.Use(cors.New(config))
	var notifier task.Notifier
	if n := email.NewNotifierFromEnv(); n != nil {
		notifier = n
	}
	api.RegisterRoutes(router, db, notifier)

	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "Hello, this is educrm-api",
		})
	})

	server := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info().Msgf("Received signal: %s. Shutting down...", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server Shutdown:")
	}
	onShutdown(generator)
	log.Info().Msg("Server exiting")
}

func onShutdown(generator *recurring.Generator) {
	generator.Stop()
	orm.GetConnHandler().OnShutdown()
	cache.GetCacheInstance().Shutdown()
}

func sweepInterval() time.Duration {
	minutes, err := strconv.Atoi(utils.GetEnv("RECURRING_SWEEP_MINUTES", "15"))
	if err != nil || minutes <= 0 {
		minutes = 15
	}
	return time.Duration(minutes) * time.Minute
}

func loadEnvVars() {
	// we need this to grab latest env vars from .env
	err := godotenv.Overload()
	if err != nil {
		log.Warn().Err(err).Msg("Error loading .env file")
	}
}

func continuouslyReadEnv() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		log.Debug().Msg("Reloading & overloading .env file")
		loadEnvVars()
	}
}
