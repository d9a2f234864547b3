// internal/app/interchange_service.go
package app

import (
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"tendays_plan_bot/internal/domain/backup"
	"tendays_plan_bot/internal/domain/plan"

	"github.com/sirupsen/logrus"
)

// ExportVersion is the envelope version this build writes and accepts.
const ExportVersion = 1

// Import format errors. Either one means no mutation happened.
var ErrInvalidPayload = fmt.Errorf("import payload is not a valid backup")
var ErrUnsupportedVersion = fmt.Errorf("unsupported backup version")

// exportEnvelope is the versioned interchange format. The schema is a strict
// subset of the stored fields: task name/detail/time sub-fields and
// completion flags intentionally do not round-trip (lightweight backup).
type exportEnvelope struct {
	Version    int               `json:"version"`
	ExportDate string            `json:"exportDate"`
	Cycles     []cycleExport     `json:"cycles"`
	DayRecords []dayRecordExport `json:"dayRecords"`
}

type cycleExport struct {
	CycleID     int64   `json:"cycleId"`
	Year        int     `json:"year"`
	CycleNumber int     `json:"cycleNumber"`
	StartDate   string  `json:"startDate"`
	EndDate     string  `json:"endDate"`
	Goal1       *string `json:"goal1,omitempty"`
	Goal2       *string `json:"goal2,omitempty"`
	Goal3       *string `json:"goal3,omitempty"`
}

type dayRecordExport struct {
	Date       string  `json:"date"`
	CycleID    int64   `json:"cycleId"`
	DayInCycle int     `json:"dayInCycle"`
	Task1      *string `json:"task1,omitempty"`
	Task2      *string `json:"task2,omitempty"`
	Task3      *string `json:"task3,omitempty"`
	Task4      *string `json:"task4,omitempty"`
	Task5      *string `json:"task5,omitempty"`
	Task6      *string `json:"task6,omitempty"`
}

// ExportSummary reports where an export landed and what it contained.
type ExportSummary struct {
	Location    string
	CycleCount  int
	RecordCount int
}

// ImportSummary reports how many rows an import inserted.
type ImportSummary struct {
	CycleCount  int
	RecordCount int
}

// InterchangeService serializes the full dataset to a base64-wrapped JSON
// blob and restores it. Import replaces the entire dataset; it is destructive
// and non-mergeable by design, and only mutates after the whole payload has
// been decoded and validated.
type InterchangeService struct {
	cycleRepo     plan.CycleRepository
	dayRecordRepo plan.DayRecordRepository
	sink          backup.Sink
	logger        *logrus.Entry
}

func NewInterchangeService(cr plan.CycleRepository, dr plan.DayRecordRepository, sink backup.Sink, logger *logrus.Entry) *InterchangeService {
	return &InterchangeService{
		cycleRepo:     cr,
		dayRecordRepo: dr,
		sink:          sink,
		logger:        logger,
	}
}

// Export writes the encoded dataset to the file sink and returns its location.
func (s *InterchangeService) Export(ctx context.Context) (*ExportSummary, error) {
	encoded, cycleCount, recordCount, err := s.encodeDataset(ctx)
	if err != nil {
		return nil, err
	}

	name := fmt.Sprintf("tendays_backup_%d.txt", time.Now().UnixMilli())
	location, err := s.sink.Write(name, encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to store export: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"location": location,
		"cycles":   cycleCount,
		"records":  recordCount,
	}).Info("Dataset exported")
	return &ExportSummary{Location: location, CycleCount: cycleCount, RecordCount: recordCount}, nil
}

func (s *InterchangeService) encodeDataset(ctx context.Context) (string, int, int, error) {
	cycles, err := s.cycleRepo.ListAll(ctx)
	if err != nil {
		return "", 0, 0, fmt.Errorf("failed to list cycles for export: %w", err)
	}
	records, err := s.dayRecordRepo.ListAll(ctx)
	if err != nil {
		return "", 0, 0, fmt.Errorf("failed to list day records for export: %w", err)
	}

	envelope := exportEnvelope{
		Version:    ExportVersion,
		ExportDate: plan.FormatDate(time.Now()),
		Cycles:     make([]cycleExport, 0, len(cycles)),
		DayRecords: make([]dayRecordExport, 0, len(records)),
	}
	for _, c := range cycles {
		envelope.Cycles = append(envelope.Cycles, cycleExport{
			CycleID:     c.ID,
			Year:        c.Year,
			CycleNumber: c.Number,
			StartDate:   plan.FormatDate(c.StartDate),
			EndDate:     plan.FormatDate(c.EndDate),
			Goal1:       nullToPtr(c.Goal1),
			Goal2:       nullToPtr(c.Goal2),
			Goal3:       nullToPtr(c.Goal3),
		})
	}
	for _, r := range records {
		envelope.DayRecords = append(envelope.DayRecords, dayRecordExport{
			Date:       r.DateString(),
			CycleID:    r.CycleID,
			DayInCycle: r.DayInCycle,
			Task1:      nullToPtr(r.Tasks[0].Text),
			Task2:      nullToPtr(r.Tasks[1].Text),
			Task3:      nullToPtr(r.Tasks[2].Text),
			Task4:      nullToPtr(r.Tasks[3].Text),
			Task5:      nullToPtr(r.Tasks[4].Text),
			Task6:      nullToPtr(r.Tasks[5].Text),
		})
	}

	payload, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return "", 0, 0, fmt.Errorf("failed to serialize export envelope: %w", err)
	}
	return base64.StdEncoding.EncodeToString(payload), len(cycles), len(records), nil
}

// Import replaces the entire dataset with the contents of an encoded blob.
func (s *InterchangeService) Import(ctx context.Context, encoded string) (*ImportSummary, error) {
	cycles, records, err := s.decodeDataset(encoded)
	if err != nil {
		return nil, err
	}

	// The payload is fully parsed and validated; only now is the existing
	// dataset touched.
	if err := s.dayRecordRepo.DeleteAll(ctx); err != nil {
		return nil, fmt.Errorf("failed to clear day records before import: %w", err)
	}
	if err := s.cycleRepo.DeleteAll(ctx); err != nil {
		return nil, fmt.Errorf("failed to clear cycles before import: %w", err)
	}
	if err := s.cycleRepo.BulkUpsert(ctx, cycles); err != nil {
		return nil, fmt.Errorf("failed to insert imported cycles: %w", err)
	}
	if err := s.dayRecordRepo.BulkUpsert(ctx, records); err != nil {
		return nil, fmt.Errorf("failed to insert imported day records: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"cycles":  len(cycles),
		"records": len(records),
	}).Info("Dataset imported")
	return &ImportSummary{CycleCount: len(cycles), RecordCount: len(records)}, nil
}

// ImportFromLocation reads an export blob back from the file sink and imports it.
func (s *InterchangeService) ImportFromLocation(ctx context.Context, location string) (*ImportSummary, error) {
	encoded, err := s.sink.Read(location)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup: %w", err)
	}
	return s.Import(ctx, encoded)
}

func (s *InterchangeService) decodeDataset(encoded string) ([]*plan.Cycle, []*plan.DayRecord, error) {
	// Tolerate line-wrapped base64 from other encoders.
	compact := strings.Join(strings.Fields(encoded), "")
	payload, err := base64.StdEncoding.DecodeString(compact)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: transport decoding failed: %v", ErrInvalidPayload, err)
	}

	var envelope exportEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if envelope.Version != ExportVersion {
		return nil, nil, fmt.Errorf("%w: got %d, supported %d", ErrUnsupportedVersion, envelope.Version, ExportVersion)
	}

	cycles := make([]*plan.Cycle, 0, len(envelope.Cycles))
	for _, ce := range envelope.Cycles {
		startDate, err := plan.ParseDate(ce.StartDate)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: cycle %d has invalid startDate %q", ErrInvalidPayload, ce.CycleID, ce.StartDate)
		}
		endDate, err := plan.ParseDate(ce.EndDate)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: cycle %d has invalid endDate %q", ErrInvalidPayload, ce.CycleID, ce.EndDate)
		}
		cycles = append(cycles, &plan.Cycle{
			ID:        ce.CycleID,
			Year:      ce.Year,
			Number:    ce.CycleNumber,
			StartDate: startDate,
			EndDate:   endDate,
			Goal1:     ptrToNull(ce.Goal1),
			Goal2:     ptrToNull(ce.Goal2),
			Goal3:     ptrToNull(ce.Goal3),
		})
	}

	records := make([]*plan.DayRecord, 0, len(envelope.DayRecords))
	for _, re := range envelope.DayRecords {
		date, err := plan.ParseDate(re.Date)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: day record has invalid date %q", ErrInvalidPayload, re.Date)
		}
		record := plan.NewDayRecord(date, re.CycleID, re.DayInCycle)
		for i, text := range []*string{re.Task1, re.Task2, re.Task3, re.Task4, re.Task5, re.Task6} {
			record.Tasks[i].Text = ptrToNull(text)
		}
		records = append(records, record)
	}

	return cycles, records, nil
}

func nullToPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func ptrToNull(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}
