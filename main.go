package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"opsdash/backend"
	"opsdash/config"
	"opsdash/cron"
	"opsdash/database"
	notificationRepo "opsdash/database/repository/notification"
	"opsdash/handlers"
	"opsdash/middleware"
	"opsdash/routes"
	"opsdash/services/availability"
	"opsdash/services/board"
	"opsdash/services/meeting"
	"opsdash/services/notification"
	"opsdash/services/summary"
	"opsdash/services/tasks"
	"opsdash/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	utils.InitializeLogger()
	logger := utils.GetLogger()
	defer logger.Sync()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	database.InitDB()
	utils.InitSessionCache()
	utils.FirebaseInit()

	// repositories.
	inboxRepo := notificationRepo.NewMongoNotificationRepo()
	if err := notificationRepo.EnsureIndexes(inboxRepo); err != nil {
		logger.Warn("main: failed to ensure notification indexes", zap.Error(err))
	}

	// backend.
	client := backend.NewHTTPClient(backend.Options{
		BaseURL:        config.AppConfig.BackendBaseURL,
		APIToken:       config.AppConfig.BackendAPIToken,
		Timeout:        config.BackendTimeout(),
		RequestsPerSec: config.AppConfig.BackendRequestsPerSec,
		Logger:         logger.Named("backend"),
	})

	// services.
	notificationService := &notification.DefaultNotificationService{
		Inbox:     inboxRepo,
		PushTopic: config.AppConfig.ReminderFCMTopic,
		Logger:    logger.Named("notification"),
	}
	if utils.FCMClient != nil {
		notificationService.Pusher = &notification.FCMPusher{Client: utils.FCMClient}
	}

	queue := asynq.NewClient(cron.RedisOpt())
	defer queue.Close()
	reminders := &tasks.ReminderScheduler{
		Queue:    queue,
		Lead:     time.Duration(config.AppConfig.ReminderLeadMinutes) * time.Minute,
		Location: config.Location(),
		Logger:   logger.Named("reminders"),
	}

	availabilityService := availability.NewService(client, logger.Named("availability"))
	meetingManager := &meeting.DefaultLifecycleManager{
		Backend:   client,
		Slots:     availabilityService,
		Reminders: reminders,
		Logger:    logger.Named("meeting"),
	}
	boardService := &board.Service{
		Store:        board.NewRedisStore(utils.GetSessionCacheClient(), config.SessionTTL()),
		Meetings:     meetingManager,
		Availability: availabilityService,
		Summaries:    summary.NewService(meetingManager, logger.Named("summary")),
		Logger:       logger.Named("board"),
	}

	worker := cron.InitReminderWorker(notificationService, logger.Named("worker"))

	monitorCtx, stopMonitor := context.WithCancel(context.Background())
	defer stopMonitor()
	utils.StartHealthMonitor(monitorCtx, 30*time.Second, []*redis.Client{utils.GetSessionCacheClient()}, database.MongoClient)

	// Warm the slot index; handlers load it lazily if this fails.
	warmCtx, cancelWarm := context.WithTimeout(context.Background(), config.BackendTimeout())
	if _, err := availabilityService.Refresh(warmCtx); err != nil {
		logger.Warn("main: initial availability load failed", zap.Error(err))
	}
	cancelWarm()

	handlerBundle := handlers.NewHandlerBundle(
		handlers.NewBoardHandler(boardService, notificationService),
		handlers.NewSchedulingHandler(meetingManager, availabilityService, notificationService),
	)

	// Create the Gin router.
	router := gin.New()
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger(logger))
	routes.RegisterRoutes(router, handlerBundle, config.AppConfig.MaxRequestsPerMin)

	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	worker.Shutdown()
	stopMonitor()
	if err := database.CloseDB(ctx); err != nil {
		logger.Warn("main: failed to close MongoDB", zap.Error(err))
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
