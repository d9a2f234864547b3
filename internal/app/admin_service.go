package app

import (
	"context"
	"fmt"

	"tendays_plan_bot/internal/domain/plan"

	"github.com/sirupsen/logrus"
)

// Custom application-level errors for admin operations
var ErrNotAuthorized = fmt.Errorf("performing user is not authorized as the bot owner")

// AdminService guards the destructive owner-only operations.
type AdminService struct {
	cycleRepo       plan.CycleRepository
	dayRecordRepo   plan.DayRecordRepository
	ownerTelegramID int64
	logger          *logrus.Entry
}

func NewAdminService(cr plan.CycleRepository, dr plan.DayRecordRepository, ownerID int64, logger *logrus.Entry) *AdminService {
	return &AdminService{
		cycleRepo:       cr,
		dayRecordRepo:   dr,
		ownerTelegramID: ownerID,
		logger:          logger,
	}
}

// Authorize checks that the acting user is the configured bot owner.
func (s *AdminService) Authorize(performingID int64) error {
	if performingID != s.ownerTelegramID {
		return ErrNotAuthorized
	}
	return nil
}

// ClearAllData removes every cycle and day record. This is the only way
// cycles are ever deleted outside of an import.
func (s *AdminService) ClearAllData(ctx context.Context, performingID int64) error {
	if err := s.Authorize(performingID); err != nil {
		return err
	}

	if err := s.dayRecordRepo.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to delete day records: %w", err)
	}
	if err := s.cycleRepo.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to delete cycles: %w", err)
	}

	s.logger.WithField("performing_id", performingID).Warn("All plan data cleared")
	return nil
}
