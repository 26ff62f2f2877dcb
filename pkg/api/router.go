package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/urmzd/lightd/pkg/api/handlers"
	"github.com/urmzd/lightd/pkg/devicecfg"
	"github.com/urmzd/lightd/pkg/effect"
	"github.com/urmzd/lightd/pkg/viewer"
)

// System is the part of the running system the API reports on and resets
type System interface {
	handlers.HealthSource
	handlers.StatisticsSource
	handlers.Resetter
}

// Services are the components exposed over HTTP
type Services struct {
	Effects *effect.Manager
	Device  *devicecfg.Config
	System  System
	// Viewer is optional; without it the websocket routes are not mounted.
	Viewer *viewer.Hub
}

// Router holds the Gin engine and dependencies
type Router struct {
	engine   *gin.Engine
	services Services
	events   *effect.EventBroker
}

// NewRouter creates a new API router
func NewRouter(services Services) *Router {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	SetupMiddleware(engine)

	router := &Router{
		engine:   engine,
		services: services,
		events:   effect.NewEventBroker(),
	}
	services.Effects.AddListener(router.events)

	router.setupRoutes()

	return router
}

// setupRoutes configures all API routes
func (r *Router) setupRoutes() {
	// Swagger UI
	r.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.engine.GET("/docs", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})

	// Health check at root
	healthHandler := handlers.NewHealthHandler(r.services.System)
	r.engine.GET("/health", healthHandler.Health)

	// Live viewer streams
	if r.services.Viewer != nil {
		r.engine.GET("/ws/frames", gin.WrapF(r.services.Viewer.HandleFrames))
		r.engine.GET("/ws/effects", gin.WrapF(r.services.Viewer.HandleEffects))
	}

	// API v1 routes
	v1 := r.engine.Group("/api/v1")
	{
		// Health
		v1.GET("/health", healthHandler.Health)
		v1.GET("/statistics", handlers.NewStatisticsHandler(r.services.System).Statistics)

		// Effects
		effectsHandler := handlers.NewEffectsHandler(r.services.Effects)
		effects := v1.Group("/effects")
		{
			effects.GET("", effectsHandler.List)
			effects.POST("/next", effectsHandler.Next)
			effects.POST("/previous", effectsHandler.Previous)
			effects.POST("/current", effectsHandler.SetCurrent)

			effects.POST("/:index/enable", effectsHandler.Enable)
			effects.POST("/:index/disable", effectsHandler.Disable)
			effects.POST("/:index/move", effectsHandler.Move)
			effects.POST("/:index/copy", effectsHandler.Copy)
			effects.DELETE("/:index", effectsHandler.Delete)

			// Effect settings
			effects.GET("/:index/settings", effectsHandler.GetSettings)
			effects.GET("/:index/settings/specs", effectsHandler.GetSettingSpecs)
			effects.POST("/:index/settings", effectsHandler.SetSettings)
		}
		v1.GET("/events", handlers.NewEventsHandler(r.events).Events)

		// Device settings
		settingsHandler := handlers.NewSettingsHandler(r.services.Device, r.services.Effects)
		settings := v1.Group("/settings")
		{
			settings.GET("", settingsHandler.Get)
			settings.GET("/specs", settingsHandler.GetSpecs)
			settings.POST("", settingsHandler.Set)
			settings.POST("/validated", settingsHandler.SetValidated)
		}
		v1.POST("/interval", settingsHandler.SetInterval)
		v1.POST("/color", settingsHandler.SetColor)
		v1.DELETE("/color", settingsHandler.ClearColor)

		v1.POST("/reset", handlers.NewResetHandler(r.services.System).Reset)
	}
}

// Handler returns the engine as an http.Handler
func (r *Router) Handler() http.Handler {
	return r.engine
}

// Serve runs the HTTP server until ctx is done, then shuts it down
func (r *Router) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           r.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("address", addr).Msg("Starting API server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
