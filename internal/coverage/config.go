package coverage

const (
	// FullDayHardCeiling caps a full-day match regardless of the candidate's own daily load.
	FullDayHardCeiling = 8

	// NoCoverageReason is reported when every phase came back empty.
	NoCoverageReason = "No available staff after exhausting all role priorities"

	defaultFullDayThreshold             = 5
	defaultMaxInternalCoverageNormal    = 2
	defaultMaxInternalCoverageEmergency = 4
	defaultMaxPeriodsPerPerson          = 8
)

// Config holds the tunables consumed by the engine as plain values.
type Config struct {
	FullDayThreshold               int
	MaxInternalCoverageNormal      int
	MaxInternalCoverageEmergency   int
	MaxPeriodsPerPerson            int
	MaxConsecutivePeriodsPerPerson int
	ConflictDetectionEnabled       bool
	DepartmentMatchingEnabled      bool
}

// DefaultConfig returns the school-wide defaults.
func DefaultConfig() Config {
	return Config{
		FullDayThreshold:             defaultFullDayThreshold,
		MaxInternalCoverageNormal:    defaultMaxInternalCoverageNormal,
		MaxInternalCoverageEmergency: defaultMaxInternalCoverageEmergency,
		MaxPeriodsPerPerson:          defaultMaxPeriodsPerPerson,
		ConflictDetectionEnabled:     true,
		DepartmentMatchingEnabled:    true,
	}
}

func (c Config) normalized() Config {
	if c.FullDayThreshold <= 0 {
		c.FullDayThreshold = defaultFullDayThreshold
	}
	// A zero internal ceiling switches that phase off.
	if c.MaxInternalCoverageNormal < 0 {
		c.MaxInternalCoverageNormal = defaultMaxInternalCoverageNormal
	}
	if c.MaxInternalCoverageEmergency < 0 {
		c.MaxInternalCoverageEmergency = defaultMaxInternalCoverageEmergency
	}
	if c.MaxInternalCoverageEmergency < c.MaxInternalCoverageNormal {
		c.MaxInternalCoverageEmergency = c.MaxInternalCoverageNormal
	}
	if c.MaxPeriodsPerPerson < 0 {
		c.MaxPeriodsPerPerson = 0
	}
	if c.MaxConsecutivePeriodsPerPerson < 0 {
		c.MaxConsecutivePeriodsPerPerson = 0
	}
	return c
}

// IsFullDay reports whether an absence qualifies for the full-day resolver.
func (c Config) IsFullDay(a Absence) bool {
	return len(a.Periods) > 0 && len(a.Periods) >= c.normalized().FullDayThreshold
}

// dailyCeiling is the per-period ceiling for external substitutes and paraprofessionals.
func (c Config) dailyCeiling(cand Candidate) int {
	ceiling := cand.MaxDailyLoad
	if c.MaxPeriodsPerPerson > 0 && (ceiling <= 0 || ceiling > c.MaxPeriodsPerPerson) {
		ceiling = c.MaxPeriodsPerPerson
	}
	return ceiling
}
