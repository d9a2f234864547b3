package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tendays_plan_bot/internal/app"
	"tendays_plan_bot/internal/domain/plan"
	"tendays_plan_bot/internal/infra/config"
	idb "tendays_plan_bot/internal/infra/database"
	"tendays_plan_bot/internal/infra/filesink"
	"tendays_plan_bot/internal/infra/logger"
	"tendays_plan_bot/internal/infra/scheduler"
	"tendays_plan_bot/internal/infra/telegram"

	"gopkg.in/telebot.v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Get().Fatalf("Could not load application configuration: %v", err)
	}

	logger.Init(cfg)
	log := logger.Get().WithField("component", "main")
	log.WithFields(map[string]interface{}{
		"log_level":   cfg.LogLevel,
		"environment": cfg.Environment,
		"owner_id":    cfg.AdminTelegramID,
	}).Info("Configuration loaded.")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}
	defer db.Close()
	log.Info("Database connection established successfully.")

	// Change notification fan-out. The repositories publish after every
	// mutation; consumers poll via the services, so only a debug observer
	// subscribes here.
	notifier := plan.NewChangeNotifier()
	changeLog := logger.Get().WithField("component", "change_notifier")
	notifier.Subscribe(plan.TopicCycles, func() {
		changeLog.Debug("Cycles changed.")
	})
	notifier.Subscribe(plan.TopicDayRecords, func() {
		changeLog.Debug("Day records changed.")
	})

	// Repositories
	cycleRepo := idb.NewPostgresCycleRepository(db, notifier)
	dayRecordRepo := idb.NewPostgresDayRecordRepository(db, notifier)
	log.Info("Repositories initialized.")

	// Services
	navigator := app.NewNavigatorService(cycleRepo, dayRecordRepo, cfg.MinSupportedYear,
		logger.Get().WithField("component", "navigator_service"))
	statsService := app.NewStatisticsService(dayRecordRepo,
		logger.Get().WithField("component", "statistics_service"))
	interchange := app.NewInterchangeService(cycleRepo, dayRecordRepo, filesink.NewLocalSink(cfg.BackupDir),
		logger.Get().WithField("component", "interchange_service"))
	adminService := app.NewAdminService(cycleRepo, dayRecordRepo, cfg.AdminTelegramID,
		logger.Get().WithField("component", "admin_service"))
	log.Info("Application services initialized.")

	// Telegram bot
	pref := telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) {
			entry := logger.Get().WithField("component", "telebot")
			if c != nil && c.Sender() != nil {
				entry = entry.WithField("sender_id", c.Sender().ID)
			}
			entry.WithError(err).Error("Unhandled bot error")
		},
	}
	bot, err := telebot.NewBot(pref)
	if err != nil {
		log.Fatalf("Could not create Telegram bot: %v", err)
	}

	handlerLogger := logger.Get().WithField("component", "telegram_handlers")
	telegram.RegisterPlanHandlers(ctx, bot, navigator, statsService, cfg.AdminTelegramID, handlerLogger)
	telegram.RegisterAdminHandlers(ctx, bot, adminService, interchange, cfg.AdminTelegramID, handlerLogger)
	log.Info("Command handlers registered.")

	// Scheduler
	planScheduler := scheduler.NewPlanScheduler(
		navigator,
		interchange,
		telegram.NewTelebotAdapter(bot),
		cfg.AdminTelegramID,
		logger.Get().WithField("component", "scheduler"),
		cfg.CronSpecMorningPlan,
		cfg.CronSpecBackup,
	)
	if err := planScheduler.Start(); err != nil {
		log.Fatalf("Could not start scheduler: %v", err)
	}

	log.Info("Application setup complete. Bot and scheduler are starting...")

	// Start bot in a goroutine so it doesn't block graceful shutdown handling
	go bot.Start()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down application...")
	cancel()
	planScheduler.Stop()
	bot.Stop()
	log.Info("Application shut down gracefully.")
}
