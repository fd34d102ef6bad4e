package coverage

import (
	"sort"
	"time"

	"go.uber.org/zap"
)

// Engine runs the coverage cascade over one day's snapshot. An Engine holds no run state, so the
// same value may serve concurrent runs for different dates.
type Engine struct {
	cfg    Config
	logger *zap.Logger
	now    func() time.Time
}

// NewEngine constructs an engine.
func NewEngine(cfg Config, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{cfg: cfg.normalized(), logger: logger, now: time.Now}
}

// Config returns the normalized configuration in effect.
func (e *Engine) Config() Config {
	return e.cfg
}

// Run computes assignments for every absence in the snapshot. It performs no I/O and never fails:
// an absence nobody can cover yields uncovered assignments, not an error.
func (e *Engine) Run(snapshot Snapshot) *RunResult {
	started := e.now()

	schedule := NewScheduleIndex(snapshot.Schedule)
	pool := NewPool(snapshot.Candidates)
	ledger := NewLedger()
	checker := NewChecker(e.cfg, snapshot, schedule, ledger)

	absences := make([]Absence, len(snapshot.Absences))
	for i, a := range snapshot.Absences {
		a.Periods = normalizePeriods(a.Periods)
		absences[i] = a
	}
	ordered := Prioritize(absences, e.cfg.FullDayThreshold)

	result := &RunResult{
		Assignments: make([]Assignment, 0),
		Results:     make([]CoverageResult, 0),
		Absences:    make([]Absence, 0, len(ordered)),
	}

	totalEvaluated := 0
	for _, absence := range ordered {
		decisions, evaluated := e.resolveAbsence(absence, pool, checker, ledger)
		totalEvaluated += evaluated

		covered := 0
		for _, a := range decisions {
			if a.Covered() {
				covered++
			}
			result.Assignments = append(result.Assignments, a)
			result.Results = append(result.Results, toResult(absence, a, evaluated))
		}
		absence.Status = DetermineStatus(covered, len(absence.Periods))
		result.Absences = append(result.Absences, absence)

		e.logger.Debug("absence resolved",
			zap.String("absence_id", absence.ID),
			zap.String("staff_id", absence.StaffID),
			zap.Int("periods", len(absence.Periods)),
			zap.Int("covered", covered),
			zap.Int("candidates_evaluated", evaluated),
			zap.String("status", string(absence.Status)),
		)
	}

	result.Loads = ledger.Loads()
	mean, stddev := loadStats(pool, ledger)
	covered, uncovered := 0, 0
	for _, a := range result.Assignments {
		if a.Covered() {
			covered++
		} else {
			uncovered++
		}
	}
	result.Meta = RunMeta{
		Date:                     snapshot.Date.Format("2006-01-02"),
		Weekday:                  WeekdayOf(snapshot.Date),
		AbsencesProcessed:        len(ordered),
		CoveredPeriods:           covered,
		UncoveredPeriods:         uncovered,
		TotalCandidatesEvaluated: totalEvaluated,
		ProcessingTimeMs:         e.now().Sub(started).Milliseconds(),
		LoadMean:                 mean,
		LoadStdDev:               stddev,
	}

	e.logger.Info("coverage run completed",
		zap.String("date", result.Meta.Date),
		zap.Int("absences", result.Meta.AbsencesProcessed),
		zap.Int("covered", covered),
		zap.Int("uncovered", uncovered),
		zap.Int("candidates_evaluated", totalEvaluated),
		zap.Int64("processing_time_ms", result.Meta.ProcessingTimeMs),
	)
	return result
}

// resolveAbsence tries the full-day resolver first, then falls back to per-period resolution.
// Absences with manual overrides always go through the per-period cascade so pins are honoured.
func (e *Engine) resolveAbsence(absence Absence, pool *Pool, checker *Checker, ledger *Ledger) ([]Assignment, int) {
	evaluated := 0
	if e.cfg.IsFullDay(absence) && len(absence.ManualOverrides) == 0 {
		outcome := ResolveFullDay(absence, pool, checker)
		evaluated += outcome.Evaluated
		if outcome.Matched {
			ledger.AppendBatch(outcome.Assignments)
			e.logger.Debug("full-day substitute matched",
				zap.String("absence_id", absence.ID),
				zap.String("candidate_id", outcome.Candidate.ID),
			)
			return outcome.Assignments, evaluated
		}
	}

	decisions := make([]Assignment, 0, len(absence.Periods))
	for _, period := range absence.Periods {
		outcome := ResolvePeriod(absence, period, pool, checker)
		evaluated += outcome.Evaluated
		ledger.Append(outcome.Assignment)
		decisions = append(decisions, outcome.Assignment)
	}
	return decisions, evaluated
}

func toResult(absence Absence, a Assignment, evaluated int) CoverageResult {
	return CoverageResult{
		AbsenceID:           absence.ID,
		AbsentStaffID:       absence.StaffID,
		AbsentStaffName:     absence.StaffName,
		Period:              a.Period,
		PeriodLabel:         a.Period.Label(),
		CandidateID:         a.CandidateID,
		CandidateName:       a.CandidateName,
		Role:                a.Role,
		Type:                a.Type,
		Status:              a.Status,
		Reason:              a.Reason,
		CandidatesEvaluated: evaluated,
	}
}

func normalizePeriods(periods []Period) []Period {
	seen := make(map[Period]bool, len(periods))
	out := make([]Period, 0, len(periods))
	for _, p := range periods {
		if p <= 0 || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
