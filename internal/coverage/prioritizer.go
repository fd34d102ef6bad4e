package coverage

import "sort"

const (
	tierParaprofessional = 1
	tierFullDay          = 2
	tierRegular          = 3
)

// PriorityTier ranks an absence for processing; lower is more urgent.
func PriorityTier(a Absence, fullDayThreshold int) int {
	if a.StaffRole == StaffRoleParaprofessional {
		return tierParaprofessional
	}
	if len(a.Periods) > 0 && len(a.Periods) >= fullDayThreshold {
		return tierFullDay
	}
	return tierRegular
}

// Prioritize returns the absences in processing order: tier ascending, period count descending,
// staff name ascending, absence id ascending. The input slice is left untouched.
func Prioritize(absences []Absence, fullDayThreshold int) []Absence {
	if fullDayThreshold <= 0 {
		fullDayThreshold = defaultFullDayThreshold
	}
	ordered := make([]Absence, len(absences))
	copy(ordered, absences)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		ta, tb := PriorityTier(a, fullDayThreshold), PriorityTier(b, fullDayThreshold)
		if ta != tb {
			return ta < tb
		}
		if len(a.Periods) != len(b.Periods) {
			return len(a.Periods) > len(b.Periods)
		}
		if a.StaffName != b.StaffName {
			return a.StaffName < b.StaffName
		}
		return a.ID < b.ID
	})
	return ordered
}

// DetermineStatus maps covered/total period counts to an absence status. An absence with no
// periods to cover (total == 0) has nothing outstanding and is ASSIGNED, not NO_COVERAGE.
func DetermineStatus(covered, total int) AbsenceStatus {
	switch {
	case total == 0 || covered == total:
		return AbsenceStatusAssigned
	case covered == 0:
		return AbsenceStatusNoCoverage
	default:
		return AbsenceStatusPartiallyAssigned
	}
}
