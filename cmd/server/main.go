package main

import (
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/synapse-hq/synapse-hazard-api/internal/analysis"
	"github.com/synapse-hq/synapse-hazard-api/internal/cache"
	"github.com/synapse-hq/synapse-hazard-api/internal/config"
	"github.com/synapse-hq/synapse-hazard-api/internal/database"
	"github.com/synapse-hq/synapse-hazard-api/internal/errors"
	"github.com/synapse-hq/synapse-hazard-api/internal/intake"
	"github.com/synapse-hq/synapse-hazard-api/internal/monitoring"
	"github.com/synapse-hq/synapse-hazard-api/internal/notifier"
	"github.com/synapse-hq/synapse-hazard-api/internal/ratelimit"
)

// maxImageBytes caps a single uploaded attachment. Phone photos compress well
// under this; anything larger is rejected before it reaches the analyzer.
const maxImageBytes = 10 << 20

const defaultNearbyRadiusMeters = 5000.0

// serverDeps bundles everything the router needs so tests can wire the same
// routes against in-memory components.
type serverDeps struct {
	cfg     *config.Config
	db      *database.DB
	repo    *database.Repository
	service *intake.Service
	hub     *notifier.Hub
	cache   *cache.Cache
	limiter *ratelimit.RateLimiter
	metrics *monitoring.Metrics
	logger  *monitoring.Logger
}

// @title Synapse Hazard API
// @version 1.0
// @description Citizen hazard report ingestion with trust scoring and a live dashboard feed
// @host localhost:8000
// @BasePath /
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.Load()

	db, err := database.NewDB(cfg.DataDir)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	repo := database.NewRepository(db)
	if cfg.SeedSampleData {
		if err := repo.SeedSampleData(context.Background()); err != nil {
			slog.Error("Failed to seed sample data", "error", err)
		}
	}

	appMetrics := monitoring.NewMetrics()
	appLogger := monitoring.NewLogger()

	redisClient, err := ratelimit.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		slog.Warn("Redis unavailable at startup", "error", err)
	}
	defer redisClient.Close()

	limiter := ratelimit.NewRateLimiter(redisClient, ratelimit.DefaultConfig(), appMetrics)

	hub := notifier.NewHub(appLogger, appMetrics)
	analyzer := analysis.NewAnalyzer(analysis.NewLexiconClassifier())
	service := intake.NewService(analyzer, repo, hub, appLogger, appMetrics)

	deps := &serverDeps{
		cfg:     cfg,
		db:      db,
		repo:    repo,
		service: service,
		hub:     hub,
		cache:   cache.NewCache(cfg.CacheTTL),
		limiter: limiter,
		metrics: appMetrics,
		logger:  appLogger,
	}

	r := setupRouter(deps)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		slog.Info("Starting server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited")
}

func setupRouter(deps *serverDeps) *gin.Engine {
	r := gin.New()

	r.Use(monitoring.MonitoringMiddleware(deps.metrics, deps.logger))
	r.Use(errors.ErrorHandler())
	r.Use(errors.RecoveryHandler())

	corsConfig := cors.DefaultConfig()
	if len(deps.cfg.AllowedOrigins) == 1 && deps.cfg.AllowedOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = deps.cfg.AllowedOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	r.Use(cors.New(corsConfig))

	r.Use(deps.cache.Middleware(deps.metrics, deps.logger))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Synapse Hazard Reporting API",
			"status":  "operational",
		})
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   "1.0.0",
			"viewers":   deps.hub.ViewerCount(),
		})
	})

	r.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, deps.metrics.GetStats())
	})

	r.GET("/cache/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, deps.cache.Stats())
	})

	r.GET("/ratelimit/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, deps.limiter.GetStats())
	})

	r.GET("/pools/database", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"pool":  "database",
			"stats": deps.db.GetPoolStats(),
		})
	})

	api := r.Group("/api/hazards")
	{
		api.POST("/report",
			deps.limiter.SubmissionRateLimitMiddleware(),
			deps.limiter.ReporterRateLimitMiddleware(),
			deps.createReportHandler)
		api.GET("/nearby", deps.nearbyHandler)
		api.GET("/analytics/dashboard", deps.analyticsHandler)
		api.GET("/:id", deps.getReportHandler)
	}

	r.GET("/ws/dashboard", func(c *gin.Context) {
		deps.hub.ServeWS(c.Writer, c.Request, deps.logger)
	})

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// @Summary Submit a hazard report
// @Description Accepts a multipart form submission with up to three image attachments, scores it and broadcasts it to dashboard viewers
// @Tags hazards
// @Accept multipart/form-data
// @Produce json
// @Param title formData string true "Short title of the hazard"
// @Param description formData string true "Free-text description used for trust scoring"
// @Param hazard_type formData string true "Hazard category (flood, infrastructure, weather, other, social_media_alert)"
// @Param latitude formData number true "Latitude in decimal degrees"
// @Param longitude formData number true "Longitude in decimal degrees"
// @Param address formData string false "Human-readable address"
// @Param reporter_id formData string false "Stable reporter identifier, subject to the daily cap"
// @Param report_source formData string false "Origin of the report (citizen_app, twitter, twitter_simulation)"
// @Param images formData file false "Up to three image attachments, 10MB each"
// @Success 201 {object} intake.ReportResult
// @Failure 400 {object} map[string]interface{} "category: validation"
// @Failure 429 {object} map[string]interface{} "category: rate_limit"
// @Router /api/hazards/report [post]
func (deps *serverDeps) createReportHandler(c *gin.Context) {
	input, err := parseReportForm(c)
	if err != nil {
		appErr := errors.ToAppError(err)
		errors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	result, err := deps.service.CreateReport(c.Request.Context(), input)
	if err != nil {
		appErr := errors.ToAppError(err)
		errors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	c.JSON(http.StatusCreated, result)
}

func parseReportForm(c *gin.Context) (intake.ReportInput, error) {
	input := intake.ReportInput{
		Title:        c.PostForm("title"),
		Description:  c.PostForm("description"),
		HazardType:   c.PostForm("hazard_type"),
		Address:      c.PostForm("address"),
		ReporterID:   c.PostForm("reporter_id"),
		ReportSource: c.PostForm("report_source"),
	}

	lat, err := strconv.ParseFloat(c.PostForm("latitude"), 64)
	if err != nil {
		return input, errors.NewValidationError("latitude must be a number")
	}
	lon, err := strconv.ParseFloat(c.PostForm("longitude"), 64)
	if err != nil {
		return input, errors.NewValidationError("longitude must be a number")
	}
	input.Latitude = lat
	input.Longitude = lon

	form, err := c.MultipartForm()
	if err != nil {
		// No multipart body at all means no attachments.
		return input, nil
	}

	files := form.File["images"]
	if len(files) > intake.MaxImages {
		// Reject before reading any payload; the service re-checks the cap.
		return input, errors.NewValidationError(
			"at most 3 images allowed")
	}

	for _, header := range files {
		data, err := readUpload(header)
		if err != nil {
			return input, errors.NewValidationError("failed to read uploaded image", err.Error())
		}
		input.Images = append(input.Images, data)
	}

	return input, nil
}

func readUpload(header *multipart.FileHeader) ([]byte, error) {
	if header.Size > maxImageBytes {
		return nil, errors.NewValidationError("image exceeds the 10MB size limit")
	}

	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return io.ReadAll(io.LimitReader(file, maxImageBytes))
}

// @Summary List hazards near a point
// @Description Returns reports within a radius of a coordinate, nearest first
// @Tags hazards
// @Produce json
// @Param lat query number true "Latitude in decimal degrees"
// @Param lon query number true "Longitude in decimal degrees"
// @Param radius query number false "Search radius in meters (default 5000)"
// @Success 200 {object} map[string]interface{} "total, radius_meters, hazards"
// @Failure 400 {object} map[string]interface{} "category: validation"
// @Router /api/hazards/nearby [get]
func (deps *serverDeps) nearbyHandler(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		appErr := errors.NewValidationError("lat query parameter must be a number")
		errors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}
	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil {
		appErr := errors.NewValidationError("lon query parameter must be a number")
		errors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	radius := defaultNearbyRadiusMeters
	if radiusParam := c.Query("radius"); radiusParam != "" {
		r, err := strconv.ParseFloat(radiusParam, 64)
		if err != nil || r <= 0 {
			appErr := errors.NewValidationError("radius must be a positive number of meters")
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}
		radius = r
	}

	reports, err := deps.repo.FindNearby(c.Request.Context(), lat, lon, radius)
	if err != nil {
		appErr := errors.ToAppError(err)
		errors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":         len(reports),
		"radius_meters": radius,
		"hazards":       reports,
	})
}

// @Summary Dashboard analytics
// @Description Returns aggregate report counts and the average trust score. Responses are cached by the TTL middleware upstream
// @Tags analytics
// @Produce json
// @Success 200 {object} database.DashboardAnalytics
// @Router /api/hazards/analytics/dashboard [get]
func (deps *serverDeps) analyticsHandler(c *gin.Context) {
	analytics, err := deps.repo.GetDashboardAnalytics(c.Request.Context())
	if err != nil {
		appErr := errors.ToAppError(err)
		errors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	c.JSON(http.StatusOK, analytics)
}

// @Summary Fetch a single hazard report
// @Description Returns one report by its numeric id
// @Tags hazards
// @Produce json
// @Param id path int true "Report ID"
// @Success 200 {object} database.HazardReport
// @Failure 400 {object} map[string]interface{} "category: validation"
// @Failure 404 {object} map[string]interface{} "error: report not found"
// @Router /api/hazards/{id} [get]
func (deps *serverDeps) getReportHandler(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		appErr := errors.NewValidationError("report id must be an integer")
		errors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	report, err := deps.repo.GetReport(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found", "id": id})
		return
	}

	c.JSON(http.StatusOK, report)
}
