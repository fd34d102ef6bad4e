package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-coverage-api/internal/coverage"
	"github.com/noah-isme/sma-coverage-api/internal/models"
	"github.com/noah-isme/sma-coverage-api/internal/repository"
	appErrors "github.com/noah-isme/sma-coverage-api/pkg/errors"
)

type absenceReader interface {
	ListByDate(ctx context.Context, date time.Time) ([]models.Absence, error)
}

type staffReader interface {
	ListActive(ctx context.Context) ([]models.Staff, error)
}

type substituteReader interface {
	ListActive(ctx context.Context) ([]models.Substitute, error)
}

type staffScheduleReader interface {
	ListByDay(ctx context.Context, dayOfWeek string) ([]models.StaffSchedule, error)
}

type coverageBookingReader interface {
	ListBooked(ctx context.Context, date time.Time, excludeAbsenceIDs []string) ([]repository.ExistingRow, error)
	CountByCandidate(ctx context.Context, from, to time.Time, excludeAbsenceIDs []string) (map[string]int, error)
}

var weekdayNames = map[coverage.Weekday]string{
	coverage.Monday:    "MONDAY",
	coverage.Tuesday:   "TUESDAY",
	coverage.Wednesday: "WEDNESDAY",
	coverage.Thursday:  "THURSDAY",
	coverage.Friday:    "FRIDAY",
	coverage.Saturday:  "SATURDAY",
	coverage.Sunday:    "SUNDAY",
}

var weekdayByName = map[string]coverage.Weekday{
	"MONDAY":    coverage.Monday,
	"TUESDAY":   coverage.Tuesday,
	"WEDNESDAY": coverage.Wednesday,
	"THURSDAY":  coverage.Thursday,
	"FRIDAY":    coverage.Friday,
	"SATURDAY":  coverage.Saturday,
	"SUNDAY":    coverage.Sunday,
}

func parseWeekday(name string) (coverage.Weekday, bool) {
	day, ok := weekdayByName[strings.ToUpper(strings.TrimSpace(name))]
	return day, ok
}

// CoverageSnapshotLoader assembles the engine input for a date from the roster, the timetable and
// the persisted assignments. Malformed rows fail the whole load.
type CoverageSnapshotLoader struct {
	absences    absenceReader
	staff       staffReader
	substitutes substituteReader
	schedules   staffScheduleReader
	bookings    coverageBookingReader
	metrics     *MetricsService
	logger      *zap.Logger
}

// NewCoverageSnapshotLoader constructs the loader.
func NewCoverageSnapshotLoader(absences absenceReader, staff staffReader, substitutes substituteReader, schedules staffScheduleReader, bookings coverageBookingReader, metrics *MetricsService, logger *zap.Logger) *CoverageSnapshotLoader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CoverageSnapshotLoader{
		absences:    absences,
		staff:       staff,
		substitutes: substitutes,
		schedules:   schedules,
		bookings:    bookings,
		metrics:     metrics,
		logger:      logger,
	}
}

// Load reads everything the engine needs for the date.
func (l *CoverageSnapshotLoader) Load(ctx context.Context, date time.Time) (coverage.Snapshot, error) {
	start := time.Now()
	defer func() { l.metrics.ObserveDBQuery("coverage_snapshot", time.Since(start)) }()

	weekday := coverage.WeekdayOf(date)
	snapshot := coverage.Snapshot{Date: date}

	scheduleRows, err := l.schedules.ListByDay(ctx, weekdayNames[weekday])
	if err != nil {
		return snapshot, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load staff schedules")
	}
	if snapshot.Schedule, err = toScheduleEntries(scheduleRows); err != nil {
		return snapshot, err
	}
	index := coverage.NewScheduleIndex(snapshot.Schedule)

	staffRows, err := l.staff.ListActive(ctx)
	if err != nil {
		return snapshot, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load staff")
	}
	staffByID := make(map[string]models.Staff, len(staffRows))
	for _, row := range staffRows {
		cand, err := staffCandidate(row)
		if err != nil {
			return snapshot, err
		}
		staffByID[row.ID] = row
		snapshot.Candidates = append(snapshot.Candidates, cand)
	}

	substituteRows, err := l.substitutes.ListActive(ctx)
	if err != nil {
		return snapshot, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load substitutes")
	}
	for _, row := range substituteRows {
		cand, err := substituteCandidate(row)
		if err != nil {
			return snapshot, err
		}
		snapshot.Candidates = append(snapshot.Candidates, cand)
	}

	absenceRows, err := l.absences.ListByDate(ctx, date)
	if err != nil {
		return snapshot, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load absences")
	}
	absenceIDs := make([]string, 0, len(absenceRows))
	for _, row := range absenceRows {
		staff, ok := staffByID[row.StaffID]
		if !ok {
			return snapshot, invalidSnapshot("absence %s references unknown or inactive staff %s", row.ID, row.StaffID)
		}
		absence, err := toAbsence(row, staff, index, weekday)
		if err != nil {
			return snapshot, err
		}
		absenceIDs = append(absenceIDs, row.ID)
		snapshot.Absences = append(snapshot.Absences, absence)
	}

	booked, err := l.bookings.ListBooked(ctx, date, absenceIDs)
	if err != nil {
		return snapshot, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load existing coverage")
	}
	for _, row := range booked {
		snapshot.Existing = append(snapshot.Existing, coverage.ExistingAssignment{CandidateID: row.CandidateID, Period: coverage.Period(row.Period)})
	}

	weekStart := date.AddDate(0, 0, -int(weekday-coverage.Monday))
	snapshot.WeeklyLoad, err = l.bookings.CountByCandidate(ctx, weekStart, date, absenceIDs)
	if err != nil {
		return snapshot, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load weekly coverage load")
	}

	l.logger.Debug("coverage snapshot loaded",
		zap.String("date", date.Format("2006-01-02")),
		zap.Int("absences", len(snapshot.Absences)),
		zap.Int("candidates", len(snapshot.Candidates)),
		zap.Int("schedule_entries", len(snapshot.Schedule)),
		zap.Int("existing", len(snapshot.Existing)),
	)
	return snapshot, nil
}

func invalidSnapshot(format string, args ...interface{}) error {
	return appErrors.Clone(appErrors.ErrSnapshotInvalid, fmt.Sprintf(format, args...))
}

func toScheduleEntries(rows []models.StaffSchedule) ([]coverage.ScheduleEntry, error) {
	entries := make([]coverage.ScheduleEntry, 0, len(rows))
	for _, row := range rows {
		day, ok := parseWeekday(row.DayOfWeek)
		if !ok {
			return nil, invalidSnapshot("schedule %s has unknown weekday %q", row.ID, row.DayOfWeek)
		}
		slot, err := strconv.Atoi(strings.TrimSpace(row.TimeSlot))
		if err != nil || slot <= 0 {
			return nil, invalidSnapshot("schedule %s has invalid time slot %q", row.ID, row.TimeSlot)
		}
		entries = append(entries, coverage.ScheduleEntry{
			StaffID:    row.StaffID,
			DayOfWeek:  day,
			Period:     coverage.Period(slot),
			IsTeaching: row.IsTeaching,
		})
	}
	return entries, nil
}

func staffCandidate(row models.Staff) (coverage.Candidate, error) {
	if row.MaxDailyLoad < 0 || row.MaxWeeklyLoad < 0 {
		return coverage.Candidate{}, invalidSnapshot("staff %s has a negative load limit", row.ID)
	}
	var cand coverage.Candidate
	switch row.Role {
	case models.StaffRoleTeacher:
		cand = coverage.NewTeacherCandidate(row.ID, row.FullName, row.MaxDailyLoad, row.MaxWeeklyLoad, coverage.InternalTeacher{
			Department: models.StringValue(row.Department),
			Subject:    models.StringValue(row.Subject),
		})
	case models.StaffRoleParaprofessional:
		cand = coverage.NewParaCandidate(row.ID, row.FullName, row.MaxDailyLoad, row.MaxWeeklyLoad, coverage.Paraprofessional{
			Department: models.StringValue(row.Department),
		})
	default:
		return coverage.Candidate{}, invalidSnapshot("staff %s has unknown role %q", row.ID, row.Role)
	}
	cand.PreferredForTeacherID = models.StringValue(row.PreferredForTeacherID)
	return cand, nil
}

func substituteCandidate(row models.Substitute) (coverage.Candidate, error) {
	if row.MaxDailyLoad < 0 || row.MaxWeeklyLoad < 0 {
		return coverage.Candidate{}, invalidSnapshot("substitute %s has a negative load limit", row.ID)
	}
	var subjects []string
	if len(row.Subjects) > 0 {
		if err := json.Unmarshal(row.Subjects, &subjects); err != nil {
			return coverage.Candidate{}, invalidSnapshot("substitute %s has malformed subjects: %v", row.ID, err)
		}
	}
	var slots []models.SubstituteAvailability
	if len(row.Availability) > 0 {
		if err := json.Unmarshal(row.Availability, &slots); err != nil {
			return coverage.Candidate{}, invalidSnapshot("substitute %s has malformed availability: %v", row.ID, err)
		}
	}
	availability := make(map[coverage.Weekday][]coverage.Period, len(slots))
	for _, slot := range slots {
		day, ok := parseWeekday(slot.DayOfWeek)
		if !ok {
			return coverage.Candidate{}, invalidSnapshot("substitute %s availability has unknown weekday %q", row.ID, slot.DayOfWeek)
		}
		for _, p := range slot.Periods {
			if p <= 0 {
				return coverage.Candidate{}, invalidSnapshot("substitute %s availability has invalid period %d", row.ID, p)
			}
			availability[day] = append(availability[day], coverage.Period(p))
		}
	}

	cand := coverage.NewSubstituteCandidate(row.ID, row.FullName, row.MaxDailyLoad, row.MaxWeeklyLoad, coverage.ExternalSubstitute{
		Availability: availability,
		Subjects:     subjects,
	})
	cand.PreferredForTeacherID = models.StringValue(row.PreferredForTeacherID)
	return cand, nil
}

func toAbsence(row models.Absence, staff models.Staff, index *coverage.ScheduleIndex, day coverage.Weekday) (coverage.Absence, error) {
	var recorded []int
	if len(row.Periods) > 0 {
		if err := json.Unmarshal(row.Periods, &recorded); err != nil {
			return coverage.Absence{}, invalidSnapshot("absence %s has malformed periods: %v", row.ID, err)
		}
	}
	periods := make([]coverage.Period, 0, len(recorded))
	for _, p := range recorded {
		periods = append(periods, coverage.Period(p))
	}

	overrides, err := decodeOverrides(row.ManualOverrides)
	if err != nil {
		return coverage.Absence{}, invalidSnapshot("absence %s has malformed manual overrides: %v", row.ID, err)
	}
	pinned := make(map[coverage.Period]string, len(overrides))
	for key, candidateID := range overrides {
		p, err := strconv.Atoi(key)
		if err != nil || p <= 0 {
			return coverage.Absence{}, invalidSnapshot("absence %s has manual override for invalid period %q", row.ID, key)
		}
		if candidateID != "" {
			pinned[coverage.Period(p)] = candidateID
		}
	}

	return coverage.Absence{
		ID:              row.ID,
		StaffID:         staff.ID,
		StaffName:       staff.FullName,
		StaffRole:       coverage.StaffRole(staff.Role),
		Department:      models.StringValue(staff.Department),
		Subject:         models.StringValue(staff.Subject),
		Periods:         index.NeededPeriods(staff.ID, day, periods),
		ManualOverrides: pinned,
		Status:          coverage.AbsenceStatusPending,
	}, nil
}

func decodeOverrides(raw []byte) (map[string]string, error) {
	overrides := make(map[string]string)
	if len(raw) == 0 || string(raw) == "null" {
		return overrides, nil
	}
	if err := json.Unmarshal(raw, &overrides); err != nil {
		return nil, err
	}
	return overrides, nil
}
