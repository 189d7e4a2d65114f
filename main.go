package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DeanThompson/ginpprof"
	"github.com/Kellerman81/go_portfolio_admin/api"
	"github.com/Kellerman81/go_portfolio_admin/apiexternal"
	"github.com/Kellerman81/go_portfolio_admin/apperrors"
	"github.com/Kellerman81/go_portfolio_admin/config"
	"github.com/Kellerman81/go_portfolio_admin/logger"
	"github.com/Kellerman81/go_portfolio_admin/metrics"
	"github.com/Kellerman81/go_portfolio_admin/resources"
	"github.com/Kellerman81/go_portfolio_admin/worker"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

// statsJob keeps the statistics cron entry in line with general.stats_cron.
type statsJob struct {
	id   cron.EntryID
	spec string
	run  func()
}

func (j *statsJob) schedule(spec string) {
	if spec == j.spec {
		return
	}
	if j.id != 0 {
		worker.RemoveCron(j.id)
		j.id = 0
	}
	j.spec = spec
	if spec == "" {
		return
	}
	id, err := worker.DispatchCron(spec, "backend stats", j.run)
	if err != nil {
		logger.Logtype(logger.StatusError, 0).Str("cron", spec).Err(err).Msg("Stats job not scheduled")
		return
	}
	j.id = id
}

// applyReload takes over the settings that can change at runtime. Console
// settings are read per request and need nothing here.
func applyReload(s *config.ConfigSnapshot, stats *statsJob) {
	logger.SetLevel(s.General.LogLevel)
	stats.schedule(s.General.StatsCron)
	logger.LogDynamicany("info", "Settings reloaded, listener, backend and session changes apply after restart",
		"validated", s.ValidatedAt)
}

func main() {
	if err := config.Load(); err != nil {
		fmt.Println("Error loading config. ", apperrors.Wrap(apperrors.ErrClassConfig, "load", err))
		os.Exit(1)
	}
	general := config.GetSettingsGeneral()
	backend := config.GetSettingsBackend()
	console := config.GetSettingsConsole()

	logger.InitLogger(logger.Config{
		LogLevel:      general.LogLevel,
		LogFile:       general.LogFile,
		LogFileSize:   general.LogFileSize,
		LogFileCount:  general.LogFileCount,
		LogCompress:   general.LogCompress,
		LogColorize:   general.LogColorize,
		TimeFormat:    general.TimeFormat,
		TimeZone:      general.TimeZone,
		LogToFileOnly: general.LogToFileOnly,
	})
	logger.LogDynamicany("info", "Starting portfolio admin", "version", version, "build", buildTime)

	worker.InitWorkerPools(general.WorkerLookups)
	worker.CreateCronWorker()

	client := apiexternal.NewClient(apiexternal.ClientConfig{
		Name:                    "backend",
		BaseURL:                 backend.BaseURL,
		Timeout:                 time.Duration(backend.TimeoutSeconds) * time.Second,
		RateLimit:               backend.RateLimit,
		RateLimitBurst:          backend.RateLimitBurst,
		CircuitBreakerThreshold: backend.CircuitBreakerFailures,
		CircuitBreakerTimeout:   time.Duration(backend.CircuitBreakerTimeoutSeconds) * time.Second,
		UserAgent:               backend.UserAgent,
		DisableTLSVerify:        backend.DisableTLSVerify,
		ForwardCookies:          backend.ForwardCookies,
	})

	stats := &statsJob{run: func() {
		client.LogStats()
		worker.LogPoolStats()
	}}
	stats.schedule(general.StatsCron)
	worker.StartCronWorker()

	reg, err := resources.New()
	if err != nil {
		logger.Logtype(logger.StatusFatal, 0).Err(err).Msg("Invalid resource definitions")
		return
	}
	sessions := api.NewSessionStore(
		console.MaxSessions,
		time.Duration(console.SessionTTLMinutes)*time.Minute,
		console.CookieName,
		console.CookieSecure,
	)
	cs := api.NewConsole(reg, client, sessions, worker.GetLookupPool())

	if !general.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(logger.GinLogger(), logger.ErrorLogger(), gin.Recovery())

	api.AddConsoleRoutes(router, cs)
	if general.EnableMetrics {
		router.GET("/metrics", metrics.Handler())
	}
	if general.Debug {
		ginpprof.Wrap(router)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	err = config.Watch(ctx, func(s *config.ConfigSnapshot) { applyReload(s, stats) })
	if err != nil {
		logger.Logtype(logger.StatusWarning, 0).Err(err).Msg("Config watcher not started")
	}

	logger.LogDynamicany("info", "Starting API Webserver on port", "port", general.WebPort)
	server := &http.Server{
		Addr:              ":" + general.WebPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Logtype(logger.StatusError, 0).Err(err).Msg("Server Error")
		}
	}()
	logger.LogDynamicany("info", "Started API Webserver on port", "port", general.WebPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.LogDynamicany("info", "Server shutting down")
	cancel()
	worker.StopCronWorker()
	worker.CloseWorkerPools()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Logtype(logger.StatusError, 0).Err(err).Msg("Server Shutdown")
	}
	logger.LogDynamicany("info", "Server exiting")
}
