package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-coverage-api/internal/coverage"
	"github.com/noah-isme/sma-coverage-api/internal/dto"
	"github.com/noah-isme/sma-coverage-api/internal/models"
	appErrors "github.com/noah-isme/sma-coverage-api/pkg/errors"
)

const dateLayout = "2006-01-02"

type snapshotLoader interface {
	Load(ctx context.Context, date time.Time) (coverage.Snapshot, error)
}

type coverageRunStore interface {
	Create(ctx context.Context, exec sqlx.ExtContext, run *models.CoverageRun) error
	LatestByDate(ctx context.Context, date time.Time) (*models.CoverageRun, error)
	List(ctx context.Context, filter models.CoverageRunFilter) ([]models.CoverageRun, int, error)
}

type coverageAssignmentStore interface {
	UpsertBatch(ctx context.Context, exec sqlx.ExtContext, rows []models.CoverageAssignment) error
	DeleteSuperseded(ctx context.Context, exec sqlx.ExtContext, runID string, absenceIDs []string) error
	ListByDate(ctx context.Context, date time.Time) ([]models.CoverageAssignmentView, error)
}

type absenceStore interface {
	FindByID(ctx context.Context, id string) (*models.Absence, error)
	UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.AbsenceStatus) error
	UpdateManualOverrides(ctx context.Context, id string, overrides types.JSONText) error
}

type staffFinder interface {
	FindByID(ctx context.Context, id string) (*models.Staff, error)
}

type substituteFinder interface {
	FindByID(ctx context.Context, id string) (*models.Substitute, error)
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type coverageNotifier interface {
	Notify(ctx context.Context, response *dto.CoverageRunResponse)
}

type sheetRenderer interface {
	Render(sheet *dto.CoverageSheet, format string) (*dto.ExportFile, error)
}

// CoverageDependencies groups the collaborators of CoverageService.
type CoverageDependencies struct {
	Loader      snapshotLoader
	Engine      *coverage.Engine
	Runs        coverageRunStore
	Assignments coverageAssignmentStore
	Absences    absenceStore
	Staff       staffFinder
	Substitutes substituteFinder
	Tx          txProvider
	Cache       *CacheService
	Notifier    coverageNotifier
	Exporter    sheetRenderer
	Metrics     *MetricsService
	Validator   *validator.Validate
	Logger      *zap.Logger
	// ExportsEnabled gates Export.
	ExportsEnabled bool
}

// CoverageService loads a day, runs the engine, persists the outcome and serves the result.
type CoverageService struct {
	loader      snapshotLoader
	engine      *coverage.Engine
	runs        coverageRunStore
	assignments coverageAssignmentStore
	absences    absenceStore
	staff       staffFinder
	substitutes substituteFinder
	tx          txProvider
	cache       *CacheService
	notifier    coverageNotifier
	exporter    sheetRenderer
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	exports     bool
	now         func() time.Time
}

// NewCoverageService constructs the service.
func NewCoverageService(deps CoverageDependencies) *CoverageService {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Validator == nil {
		deps.Validator = validator.New()
	}
	if deps.Engine == nil {
		deps.Engine = coverage.NewEngine(coverage.DefaultConfig(), deps.Logger)
	}
	return &CoverageService{
		loader:      deps.Loader,
		engine:      deps.Engine,
		runs:        deps.Runs,
		assignments: deps.Assignments,
		absences:    deps.Absences,
		staff:       deps.Staff,
		substitutes: deps.Substitutes,
		tx:          deps.Tx,
		cache:       deps.Cache,
		notifier:    deps.Notifier,
		exporter:    deps.Exporter,
		metrics:     deps.Metrics,
		validator:   deps.Validator,
		logger:      deps.Logger,
		exports:     deps.ExportsEnabled,
		now:         time.Now,
	}
}

// Run computes coverage for the requested date. Unless DryRun is set, the run summary, every
// assignment and every absence status are written in one transaction.
func (s *CoverageService) Run(ctx context.Context, req dto.RunCoverageRequest) (*dto.CoverageRunResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid coverage run payload")
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	started := s.now()

	snapshot, err := s.loader.Load(ctx, date)
	if err != nil {
		return nil, err
	}
	result := s.engine.Run(snapshot)
	response := buildRunResponse(req, result)

	if req.DryRun {
		s.metrics.ObserveCoverageRun(result, true, s.now().Sub(started))
		return response, nil
	}

	response.RunID = uuid.NewString()
	if err := s.persist(ctx, date, response.RunID, result); err != nil {
		return nil, err
	}

	if err := s.cache.InvalidateDate(ctx, req.Date); err != nil {
		s.logger.Warn("coverage cache not invalidated", zap.String("date", req.Date), zap.Error(err))
	}
	if s.notifier != nil {
		s.notifier.Notify(ctx, response)
	}
	s.metrics.ObserveCoverageRun(result, false, s.now().Sub(started))

	s.logger.Info("coverage run persisted",
		zap.String("run_id", response.RunID),
		zap.String("date", req.Date),
		zap.Int("absences", result.Meta.AbsencesProcessed),
		zap.Int("covered", result.Meta.CoveredPeriods),
		zap.Int("uncovered", result.Meta.UncoveredPeriods),
	)
	return response, nil
}

func (s *CoverageService) persist(ctx context.Context, date time.Time, runID string, result *coverage.RunResult) error {
	if s.tx == nil {
		return appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}

	meta, marshalErr := json.Marshal(map[string]any{
		"config":       s.engine.Config(),
		"weekday":      result.Meta.Weekday,
		"load_mean":    result.Meta.LoadMean,
		"load_std_dev": result.Meta.LoadStdDev,
		"loads":        result.Loads,
	})
	if marshalErr != nil {
		return appErrors.Wrap(marshalErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode run metadata")
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	run := &models.CoverageRun{
		ID:                       runID,
		RunDate:                  date,
		AbsencesProcessed:        result.Meta.AbsencesProcessed,
		CoveredPeriods:           result.Meta.CoveredPeriods,
		UncoveredPeriods:         result.Meta.UncoveredPeriods,
		TotalCandidatesEvaluated: result.Meta.TotalCandidatesEvaluated,
		ProcessingTimeMs:         result.Meta.ProcessingTimeMs,
		Meta:                     types.JSONText(meta),
	}
	if err = s.runs.Create(ctx, tx, run); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record coverage run")
	}

	rows := make([]models.CoverageAssignment, 0, len(result.Assignments))
	for _, a := range result.Assignments {
		rows = append(rows, toAssignmentRow(runID, date, a))
	}
	if err = s.assignments.UpsertBatch(ctx, tx, rows); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist coverage assignments")
	}

	absenceIDs := make([]string, 0, len(result.Absences))
	for _, absence := range result.Absences {
		absenceIDs = append(absenceIDs, absence.ID)
	}
	if err = s.assignments.DeleteSuperseded(ctx, tx, runID, absenceIDs); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear superseded coverage assignments")
	}

	for _, absence := range result.Absences {
		if err = s.absences.UpdateStatus(ctx, tx, absence.ID, models.AbsenceStatus(absence.Status)); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update absence status")
		}
	}

	if err = tx.Commit(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit coverage run")
	}
	return nil
}

// Get returns the persisted coverage sheet for a date, from cache when fresh. The boolean reports
// a cache hit.
func (s *CoverageService) Get(ctx context.Context, date string) (*dto.CoverageSheet, bool, error) {
	day, err := parseDate(date)
	if err != nil {
		return nil, false, err
	}

	key := CoverageKey(date)
	var cached dto.CoverageSheet
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, true, nil
	}

	latest, err := s.runs.LatestByDate(ctx, day)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("no coverage run for %s", date))
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load coverage run")
	}
	views, err := s.assignments.ListByDate(ctx, day)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load coverage sheet")
	}

	sheet := &dto.CoverageSheet{Date: date, Rows: make([]dto.CoverageSheetRow, 0, len(views)), LatestRun: latest}
	for _, view := range views {
		row := toSheetRow(view)
		if row.CandidateID != nil {
			sheet.Covered++
		} else {
			sheet.Uncovered++
		}
		sheet.Rows = append(sheet.Rows, row)
	}

	_ = s.cache.Set(ctx, key, sheet, 0)
	return sheet, false, nil
}

// Export renders the coverage sheet for a date as CSV or PDF.
func (s *CoverageService) Export(ctx context.Context, date, format string) (*dto.ExportFile, error) {
	if !s.exports || s.exporter == nil {
		return nil, appErrors.Clone(appErrors.ErrUnavailable, "coverage exports are disabled")
	}
	sheet, _, err := s.Get(ctx, date)
	if err != nil {
		return nil, err
	}
	return s.exporter.Render(sheet, format)
}

// SetOverride pins or clears a candidate for an absence period. The next run honours it.
func (s *CoverageService) SetOverride(ctx context.Context, req dto.OverrideRequest) (*dto.OverrideResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid override payload")
	}

	absence, err := s.absences.FindByID(ctx, req.AbsenceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "absence not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load absence")
	}

	if err := checkOverridePeriod(absence, req.Period); err != nil {
		return nil, err
	}
	if req.CandidateID != "" {
		if req.CandidateID == absence.StaffID {
			return nil, appErrors.Clone(appErrors.ErrValidation, "absent staff cannot cover their own absence")
		}
		if err := s.ensureCandidate(ctx, req.CandidateID); err != nil {
			return nil, err
		}
	}

	overrides, err := decodeOverrides(absence.ManualOverrides)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrSnapshotInvalid.Code, appErrors.ErrSnapshotInvalid.Status, "stored manual overrides are malformed")
	}
	key := strconv.Itoa(req.Period)
	if req.CandidateID == "" {
		delete(overrides, key)
	} else {
		overrides[key] = req.CandidateID
	}
	payload, err := json.Marshal(overrides)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode manual overrides")
	}
	if err := s.absences.UpdateManualOverrides(ctx, absence.ID, types.JSONText(payload)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "absence not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store manual override")
	}

	_ = s.cache.InvalidateDate(ctx, absence.AbsenceDate.Format(dateLayout))
	s.logger.Info("manual override updated",
		zap.String("absence_id", absence.ID),
		zap.Int("period", req.Period),
		zap.String("candidate_id", req.CandidateID),
	)
	return &dto.OverrideResponse{AbsenceID: absence.ID, ManualOverrides: overrides}, nil
}

// ListRuns returns run history.
func (s *CoverageService) ListRuns(ctx context.Context, query dto.ListCoverageRunsQuery) ([]models.CoverageRun, *models.Pagination, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid run filter")
	}
	filter := models.CoverageRunFilter{Page: query.Page, PageSize: query.PageSize}
	if query.From != "" {
		from, _ := time.Parse(dateLayout, query.From)
		filter.From = &from
	}
	if query.To != "" {
		to, _ := time.Parse(dateLayout, query.To)
		filter.To = &to
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	runs, total, err := s.runs.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list coverage runs")
	}
	return runs, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

func (s *CoverageService) ensureCandidate(ctx context.Context, id string) error {
	if s.substitutes != nil {
		_, err := s.substitutes.FindByID(ctx, id)
		if err == nil {
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load substitute")
		}
	}
	if s.staff != nil {
		_, err := s.staff.FindByID(ctx, id)
		if err == nil {
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load staff")
		}
	}
	return appErrors.Clone(appErrors.ErrNotFound, "candidate not found")
}

func checkOverridePeriod(absence *models.Absence, period int) error {
	if len(absence.Periods) == 0 {
		return nil
	}
	var recorded []int
	if err := json.Unmarshal(absence.Periods, &recorded); err != nil {
		return appErrors.Wrap(err, appErrors.ErrSnapshotInvalid.Code, appErrors.ErrSnapshotInvalid.Status, "stored absence periods are malformed")
	}
	if len(recorded) == 0 {
		return nil
	}
	for _, p := range recorded {
		if p == period {
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("period %d is not part of the absence", period))
}

func parseDate(raw string) (time.Time, error) {
	date, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "date must be formatted as YYYY-MM-DD")
	}
	return date, nil
}

func buildRunResponse(req dto.RunCoverageRequest, result *coverage.RunResult) *dto.CoverageRunResponse {
	response := &dto.CoverageRunResponse{
		Date:     req.Date,
		DryRun:   req.DryRun,
		Results:  result.Results,
		Absences: make([]dto.AbsenceOutcome, 0, len(result.Absences)),
		Loads:    result.Loads,
		Meta:     result.Meta,
	}
	for _, a := range result.Absences {
		response.Absences = append(response.Absences, dto.AbsenceOutcome{
			AbsenceID: a.ID,
			StaffID:   a.StaffID,
			StaffName: a.StaffName,
			Periods:   a.Periods,
			Status:    a.Status,
		})
	}
	return response
}

func toAssignmentRow(runID string, date time.Time, a coverage.Assignment) models.CoverageAssignment {
	row := models.CoverageAssignment{
		RunID:          runID,
		AbsenceID:      a.AbsenceID,
		AbsenceDate:    date,
		Period:         int(a.Period),
		AssignmentType: string(a.Type),
		Reason:         a.Reason,
		Status:         string(a.Status),
	}
	if a.Covered() {
		id := *a.CandidateID
		name := a.CandidateName
		role := string(a.Role)
		row.CandidateID = &id
		row.CandidateName = &name
		if role != "" {
			row.CandidateRole = &role
		}
	}
	return row
}

func toSheetRow(view models.CoverageAssignmentView) dto.CoverageSheetRow {
	return dto.CoverageSheetRow{
		AbsenceID:      view.AbsenceID,
		StaffID:        view.StaffID,
		StaffName:      view.StaffName,
		Period:         view.Period,
		PeriodLabel:    coverage.Period(view.Period).Label(),
		CandidateID:    view.CandidateID,
		CandidateName:  models.StringValue(view.CandidateName),
		CandidateRole:  models.StringValue(view.CandidateRole),
		AssignmentType: view.AssignmentType,
		Status:         view.Status,
		Reason:         view.Reason,
	}
}
