package coverage

import "sort"

// ScheduleEntry is one cell of the normal weekly timetable.
type ScheduleEntry struct {
	StaffID    string
	DayOfWeek  Weekday
	Period     Period
	IsTeaching bool
}

type slot struct {
	day    Weekday
	period Period
}

// ScheduleIndex answers who teaches what and when. It is read-only once built.
type ScheduleIndex struct {
	entries map[string]map[slot]bool
}

// NewScheduleIndex builds the index. A teaching entry wins over a free entry for the same slot.
func NewScheduleIndex(entries []ScheduleEntry) *ScheduleIndex {
	idx := &ScheduleIndex{entries: make(map[string]map[slot]bool)}
	for _, entry := range entries {
		staff := idx.entries[entry.StaffID]
		if staff == nil {
			staff = make(map[slot]bool)
			idx.entries[entry.StaffID] = staff
		}
		key := slot{day: entry.DayOfWeek, period: entry.Period}
		staff[key] = staff[key] || entry.IsTeaching
	}
	return idx
}

// IsTeaching reports whether the staff member has a class in the slot.
func (s *ScheduleIndex) IsTeaching(staffID string, day Weekday, period Period) bool {
	return s.entries[staffID][slot{day: day, period: period}]
}

// IsFree reports whether the timetable explicitly lists the slot as a non-teaching period.
func (s *ScheduleIndex) IsFree(staffID string, day Weekday, period Period) bool {
	teaching, ok := s.entries[staffID][slot{day: day, period: period}]
	return ok && !teaching
}

// TeachingPeriods lists the staff member's teaching periods on a day, ascending.
func (s *ScheduleIndex) TeachingPeriods(staffID string, day Weekday) []Period {
	var periods []Period
	for key, teaching := range s.entries[staffID] {
		if teaching && key.day == day {
			periods = append(periods, key.period)
		}
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i] < periods[j] })
	return periods
}

// NeededPeriods intersects the recorded absence periods with the staff member's actual teaching
// periods. An empty recorded list means the whole day.
func (s *ScheduleIndex) NeededPeriods(staffID string, day Weekday, recorded []Period) []Period {
	teaching := s.TeachingPeriods(staffID, day)
	if len(recorded) == 0 {
		return teaching
	}
	wanted := make(map[Period]bool, len(recorded))
	for _, p := range recorded {
		wanted[p] = true
	}
	needed := make([]Period, 0, len(teaching))
	for _, p := range teaching {
		if wanted[p] {
			needed = append(needed, p)
		}
	}
	return needed
}
