package coverage

// Checker holds the pure predicates that guard every candidate selection. It reads the snapshot
// and the ledger but never mutates either.
type Checker struct {
	cfg      Config
	day      Weekday
	schedule *ScheduleIndex
	ledger   *Ledger
	existing map[string]map[Period]bool
	daily    map[string]int
	weekly   map[string]int
	absent   map[string]bool
	pinned   map[string]map[Period]bool
}

// NewChecker prepares the lookups for one run.
func NewChecker(cfg Config, snapshot Snapshot, schedule *ScheduleIndex, ledger *Ledger) *Checker {
	c := &Checker{
		cfg:      cfg.normalized(),
		day:      WeekdayOf(snapshot.Date),
		schedule: schedule,
		ledger:   ledger,
		existing: make(map[string]map[Period]bool),
		daily:    make(map[string]int),
		weekly:   make(map[string]int, len(snapshot.WeeklyLoad)),
		absent:   make(map[string]bool, len(snapshot.Absences)),
		pinned:   make(map[string]map[Period]bool),
	}
	for _, item := range snapshot.Existing {
		if item.CandidateID == "" {
			continue
		}
		periods := c.existing[item.CandidateID]
		if periods == nil {
			periods = make(map[Period]bool)
			c.existing[item.CandidateID] = periods
		}
		if !periods[item.Period] {
			periods[item.Period] = true
			c.daily[item.CandidateID]++
		}
	}
	for id, n := range snapshot.WeeklyLoad {
		c.weekly[id] = n
	}
	for _, a := range snapshot.Absences {
		c.absent[a.StaffID] = true
		c.reservePins(a)
	}
	return c
}

// reservePins holds every manually pinned (candidate, period) pair of the absence so the search
// for other absences steers around it, whatever order the absences are processed in.
func (c *Checker) reservePins(a Absence) {
	for _, p := range a.Periods {
		id := a.ManualOverrides[p]
		if id == "" {
			continue
		}
		periods := c.pinned[id]
		if periods == nil {
			periods = make(map[Period]bool)
			c.pinned[id] = periods
		}
		periods[p] = true
	}
}

// Available reports whether the candidate can be in a classroom during the period.
func (c *Checker) Available(cand Candidate, period Period) bool {
	switch cand.Kind {
	case KindExternalSubstitute:
		if cand.Substitute == nil {
			return false
		}
		for _, p := range cand.Substitute.Availability[c.day] {
			if p == period {
				return true
			}
		}
		return false
	case KindParaprofessional:
		return cand.Para != nil && !c.schedule.IsTeaching(cand.ID, c.day, period)
	case KindInternalTeacher:
		return cand.Teacher != nil && c.schedule.IsFree(cand.ID, c.day, period)
	}
	return false
}

// Conflicted reports double-booking against persisted assignments (when conflict detection is
// on), and always against manual pins and decisions already made in this run.
func (c *Checker) Conflicted(cand Candidate, period Period) bool {
	if c.cfg.ConflictDetectionEnabled && c.existing[cand.ID][period] {
		return true
	}
	if c.pinned[cand.ID][period] {
		return true
	}
	return c.ledger.Booked(cand.ID, period)
}

// CurrentLoad is the candidate's same-day coverage count: persisted plus in-run.
func (c *Checker) CurrentLoad(cand Candidate) int {
	return c.daily[cand.ID] + c.ledger.Load(cand.ID)
}

// WithinCeiling reports whether n more periods keep the candidate at or under the ceiling.
func (c *Checker) WithinCeiling(cand Candidate, ceiling, n int) bool {
	if ceiling <= 0 {
		return false
	}
	if c.CurrentLoad(cand)+n > ceiling {
		return false
	}
	if cand.Kind != KindExternalSubstitute && c.cfg.MaxPeriodsPerPerson > 0 {
		teaching := len(c.schedule.TeachingPeriods(cand.ID, c.day))
		if teaching+c.CurrentLoad(cand)+n > c.cfg.MaxPeriodsPerPerson {
			return false
		}
	}
	return true
}

// WithinWeekly checks the candidate's weekly ceiling, when one is set.
func (c *Checker) WithinWeekly(cand Candidate, n int) bool {
	if cand.MaxWeeklyLoad <= 0 {
		return true
	}
	return c.weekly[cand.ID]+c.ledger.Load(cand.ID)+n <= cand.MaxWeeklyLoad
}

// WithinConsecutive checks that taking the period does not create a run of back-to-back busy
// periods longer than the configured limit. Teaching periods count as busy.
func (c *Checker) WithinConsecutive(cand Candidate, period Period) bool {
	limit := c.cfg.MaxConsecutivePeriodsPerPerson
	if limit <= 0 {
		return true
	}
	busy := func(p Period) bool {
		return p == period ||
			c.ledger.Booked(cand.ID, p) ||
			c.existing[cand.ID][p] ||
			c.schedule.IsTeaching(cand.ID, c.day, p)
	}
	run := 1
	for p := period - 1; p > 0 && busy(p); p-- {
		run++
	}
	for p := period + 1; busy(p); p++ {
		run++
		if run > limit {
			break
		}
	}
	return run <= limit
}

// Absent reports whether the candidate is absent today.
func (c *Checker) Absent(cand Candidate) bool {
	return c.absent[cand.ID]
}

// Eligible runs the shared per-period filter pipeline for the given ceiling.
func (c *Checker) Eligible(cand Candidate, absence Absence, period Period, ceiling int) bool {
	switch {
	case cand.ID == absence.StaffID:
		return false
	case c.Absent(cand):
		return false
	case !c.Available(cand, period):
		return false
	case c.Conflicted(cand, period):
		return false
	case !c.WithinCeiling(cand, ceiling, 1):
		return false
	case !c.WithinWeekly(cand, 1):
		return false
	case !c.WithinConsecutive(cand, period):
		return false
	}
	return true
}

// EligibleFullDay runs the full-day pipeline: every period available and conflict-free, and the
// whole batch under the hard daily ceiling. Consecutive limits do not apply.
func (c *Checker) EligibleFullDay(cand Candidate, absence Absence) bool {
	if cand.Kind != KindExternalSubstitute || cand.ID == absence.StaffID || c.Absent(cand) {
		return false
	}
	for _, p := range absence.Periods {
		if !c.Available(cand, p) || c.Conflicted(cand, p) {
			return false
		}
	}
	if !c.WithinWeekly(cand, len(absence.Periods)) {
		return false
	}
	return c.CurrentLoad(cand)+len(absence.Periods) <= FullDayHardCeiling
}
