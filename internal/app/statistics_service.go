// internal/app/statistics_service.go
package app

import (
	"context"
	"fmt"

	"tendays_plan_bot/internal/domain/plan"
	"tendays_plan_bot/internal/domain/stats"

	"github.com/sirupsen/logrus"
)

// StatisticsService aggregates recurring task names over the stored day
// records, either for one year or across all years. The analysis itself is
// pure; this service only scopes the record set.
type StatisticsService struct {
	dayRecordRepo plan.DayRecordRepository
	logger        *logrus.Entry
}

func NewStatisticsService(dr plan.DayRecordRepository, logger *logrus.Entry) *StatisticsService {
	return &StatisticsService{dayRecordRepo: dr, logger: logger}
}

// AnalyzeYear ranks recurring tasks within one calendar year.
func (s *StatisticsService) AnalyzeYear(ctx context.Context, year int) ([]stats.Result, error) {
	records, err := s.dayRecordRepo.ListByYear(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list day records for year %d: %w", year, err)
	}
	results := stats.Analyze(records)
	s.logger.WithFields(logrus.Fields{
		"year":    year,
		"records": len(records),
		"groups":  len(results),
	}).Debug("Statistics analyzed for year")
	return results, nil
}

// AnalyzeAll ranks recurring tasks across every stored record.
func (s *StatisticsService) AnalyzeAll(ctx context.Context) ([]stats.Result, error) {
	records, err := s.dayRecordRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list all day records: %w", err)
	}
	results := stats.Analyze(records)
	s.logger.WithFields(logrus.Fields{
		"records": len(records),
		"groups":  len(results),
	}).Debug("Statistics analyzed for all years")
	return results, nil
}
