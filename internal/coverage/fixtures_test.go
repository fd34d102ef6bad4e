package coverage

import "time"

// 2 September 2024 is a Monday.
var monday = time.Date(2024, time.September, 2, 0, 0, 0, 0, time.UTC)

func periodRange(from, to Period) []Period {
	out := make([]Period, 0, int(to-from)+1)
	for p := from; p <= to; p++ {
		out = append(out, p)
	}
	return out
}

func teaching(staffID string, periods ...Period) []ScheduleEntry {
	return scheduleEntries(staffID, true, periods)
}

func free(staffID string, periods ...Period) []ScheduleEntry {
	return scheduleEntries(staffID, false, periods)
}

func scheduleEntries(staffID string, isTeaching bool, periods []Period) []ScheduleEntry {
	entries := make([]ScheduleEntry, 0, len(periods))
	for _, p := range periods {
		entries = append(entries, ScheduleEntry{StaffID: staffID, DayOfWeek: Monday, Period: p, IsTeaching: isTeaching})
	}
	return entries
}

func substitute(id, name string, maxDaily int, subjects []string, available ...Period) Candidate {
	return NewSubstituteCandidate(id, name, maxDaily, 0, ExternalSubstitute{
		Availability: map[Weekday][]Period{Monday: available},
		Subjects:     subjects,
	})
}

func teacherAbsence(id, staffID, name string, periods ...Period) Absence {
	return Absence{
		ID:         id,
		StaffID:    staffID,
		StaffName:  name,
		StaffRole:  StaffRoleTeacher,
		Department: "Science",
		Subject:    "Math",
		Periods:    periods,
		Status:     AbsenceStatusPending,
	}
}

func newTestChecker(cfg Config, snapshot Snapshot) (*Checker, *Ledger) {
	ledger := NewLedger()
	return NewChecker(cfg, snapshot, NewScheduleIndex(snapshot.Schedule), ledger), ledger
}

func assignmentsFor(result *RunResult, absenceID string) []Assignment {
	var out []Assignment
	for _, a := range result.Assignments {
		if a.AbsenceID == absenceID {
			out = append(out, a)
		}
	}
	return out
}

func absenceByID(result *RunResult, id string) Absence {
	for _, a := range result.Absences {
		if a.ID == id {
			return a
		}
	}
	return Absence{}
}
