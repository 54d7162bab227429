// Command hearts-server runs the realtime core of the Hearts card-game
// service: the HTTP/web-socket front door onto the room registry.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	"go.uber.org/zap"

	"hearts/internal/config"
	"hearts/internal/directory"
	"hearts/internal/logging"
	"hearts/internal/room"
	"hearts/internal/session"
	"hearts/internal/wsbridge"
)

func main() {
	cmd := config.NewCommand(run)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	if err := logging.Init(cfg.Development); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	log := logging.L()
	defer log.Sync()

	dir := directory.New()
	registry := room.NewRegistry(dir)
	resolver := session.NewJWTResolver([]byte(cfg.JWTSecret), cfg.SessionCookieName)

	wsUserRate, err := limiter.NewRateFromFormatted("60-M")
	if err != nil {
		return fmt.Errorf("build rate limit: %w", err)
	}
	rateLimiter := limiter.New(memory.NewStore(), wsUserRate)

	if cfg.Development {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware(cfg.CORSOrigin))
	router.MaxMultipartMemory = cfg.MaxBodyBytes
	router.Use(func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, cfg.MaxBodyBytes)
		c.Next()
	})

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "app": cfg.AppName, "rooms": registry.Count()})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/rooms", func(c *gin.Context) {
		id, _, err := registry.Create(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"roomId": id, "wsUrl": cfg.ExternalWSURL + "/ws/" + id.String()})
	})

	router.GET("/ws/:roomId", func(c *gin.Context) {
		roomID, err := uuid.Parse(c.Param("roomId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
			return
		}
		if err := wsbridge.Serve(c.Writer, c.Request, roomID, registry, resolver, rateLimiter); err != nil {
			logging.Warn(c.Request.Context(), "websocket session ended with error", zap.Error(err))
		}
	})

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", cfg.Addr()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server: %w", err)
	case <-stop:
		log.Info("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

// corsMiddleware mirrors the teacher's hand-rolled header-based CORS
// handling rather than pulling in gin-contrib/cors for a single origin.
func corsMiddleware(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
