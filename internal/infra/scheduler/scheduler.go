package scheduler

import (
	"context"
	"time"

	"tendays_plan_bot/internal/app"
	"tendays_plan_bot/internal/domain/plan"
	"tendays_plan_bot/internal/domain/telegram"
	tgfmt "tendays_plan_bot/internal/infra/telegram"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// PlanScheduler runs the two recurring jobs: the morning push of today's plan
// to the owner, and the nightly backup export.
type PlanScheduler struct {
	cronEngine          *cron.Cron
	navigator           *app.NavigatorService
	interchange         *app.InterchangeService
	telegramClient      telegram.Client
	ownerTelegramID     int64
	logger              *logrus.Entry
	cronSpecMorningPlan string
	cronSpecBackup      string
}

func NewPlanScheduler(
	navigator *app.NavigatorService,
	interchange *app.InterchangeService,
	telegramClient telegram.Client,
	ownerTelegramID int64,
	logger *logrus.Entry,
	cronSpecMorningPlan string, // e.g., "0 8 * * *" (8:00 AM daily)
	cronSpecBackup string, // e.g., "0 3 * * *" (3:00 AM daily)
) *PlanScheduler {
	return &PlanScheduler{
		cronEngine:          cron.New(cron.WithLocation(time.Local)), // Use server's local time for cron
		navigator:           navigator,
		interchange:         interchange,
		telegramClient:      telegramClient,
		ownerTelegramID:     ownerTelegramID,
		logger:              logger,
		cronSpecMorningPlan: cronSpecMorningPlan,
		cronSpecBackup:      cronSpecBackup,
	}
}

func (s *PlanScheduler) Start() error {
	s.logger.Info("Starting plan scheduler...")

	if _, err := s.cronEngine.AddFunc(s.cronSpecMorningPlan, s.pushMorningPlan); err != nil {
		return err
	}
	if _, err := s.cronEngine.AddFunc(s.cronSpecBackup, s.runBackup); err != nil {
		return err
	}

	s.cronEngine.Start()
	s.logger.Info("Plan scheduler started with jobs.")
	return nil
}

// pushMorningPlan selects today's cycle and sends the day's plan to the
// owner. Days past day 360 of the year belong to no cycle and are skipped.
func (s *PlanScheduler) pushMorningPlan() {
	s.logger.Info("Cron job triggered for morning plan push.")
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
	defer cancel()

	if err := s.navigator.SelectDate(ctx, time.Now()); err != nil {
		if s.navigator.State() == app.StateEmpty {
			s.logger.WithError(err).Info("Today belongs to no cycle. Skipping morning push.")
			return
		}
		s.logger.WithError(err).Error("Failed to select today's cycle for morning push")
		return
	}

	cycle := s.navigator.CurrentCycle()
	record := s.navigator.SelectedRecord()
	if cycle == nil || record == nil {
		s.logger.Warn("No day record available for the morning push.")
		return
	}

	text := "Good morning! Here is today's plan:\n\n" + tgfmt.FormatDayPlan(cycle, record)
	if err := s.telegramClient.SendMessage(s.ownerTelegramID, text, nil); err != nil {
		s.logger.WithError(err).Error("Failed to send morning plan message")
		return
	}
	s.logger.WithField("date", plan.FormatDate(record.Date)).Info("Morning plan pushed.")
}

func (s *PlanScheduler) runBackup() {
	s.logger.Info("Cron job triggered for nightly backup.")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	summary, err := s.interchange.Export(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Nightly backup failed")
		return
	}
	s.logger.WithFields(logrus.Fields{
		"location": summary.Location,
		"cycles":   summary.CycleCount,
		"records":  summary.RecordCount,
	}).Info("Nightly backup written.")
}

func (s *PlanScheduler) Stop() {
	s.logger.Info("Stopping plan scheduler...")
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()               // Wait for graceful shutdown
	s.logger.Info("Plan scheduler gracefully stopped.")
}
