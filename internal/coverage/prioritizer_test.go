package coverage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrioritizeOrdersByTierThenPeriodsThenName(t *testing.T) {
	para := Absence{ID: "a-para", StaffName: "Zed", StaffRole: StaffRoleParaprofessional, Periods: []Period{1}}
	fullDay := Absence{ID: "a-full", StaffName: "Yara", StaffRole: StaffRoleTeacher, Periods: periodRange(1, 6)}
	twoPeriodsB := Absence{ID: "a-b", StaffName: "Bima", StaffRole: StaffRoleTeacher, Periods: []Period{1, 2}}
	twoPeriodsA := Absence{ID: "a-a", StaffName: "Ani", StaffRole: StaffRoleTeacher, Periods: []Period{3, 4}}
	three := Absence{ID: "a-c", StaffName: "Citra", StaffRole: StaffRoleTeacher, Periods: []Period{1, 2, 3}}

	input := []Absence{twoPeriodsB, fullDay, three, para, twoPeriodsA}
	ordered := Prioritize(input, 5)

	ids := make([]string, 0, len(ordered))
	for _, a := range ordered {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []string{"a-para", "a-full", "a-c", "a-a", "a-b"}, ids)
	assert.Equal(t, "a-b", input[0].ID, "input must not be reordered")
}

func TestPrioritizeIsIdempotent(t *testing.T) {
	input := []Absence{
		{ID: "2", StaffName: "Same", Periods: []Period{1}},
		{ID: "1", StaffName: "Same", Periods: []Period{2}},
		{ID: "3", StaffName: "Other", Periods: periodRange(1, 5)},
	}
	once := Prioritize(input, 5)
	twice := Prioritize(once, 5)
	assert.Equal(t, once, twice)
	assert.Equal(t, "3", once[0].ID)
	assert.Equal(t, "1", once[1].ID, "absence id breaks name ties")
}

func TestPriorityTier(t *testing.T) {
	assert.Equal(t, 1, PriorityTier(Absence{StaffRole: StaffRoleParaprofessional, Periods: periodRange(1, 8)}, 5))
	assert.Equal(t, 2, PriorityTier(Absence{StaffRole: StaffRoleTeacher, Periods: periodRange(1, 5)}, 5))
	assert.Equal(t, 3, PriorityTier(Absence{StaffRole: StaffRoleTeacher, Periods: periodRange(1, 4)}, 5))
	assert.Equal(t, 3, PriorityTier(Absence{StaffRole: StaffRoleTeacher}, 5))
}

func TestDetermineStatus(t *testing.T) {
	assert.Equal(t, AbsenceStatusAssigned, DetermineStatus(3, 3))
	assert.Equal(t, AbsenceStatusNoCoverage, DetermineStatus(0, 3))
	assert.Equal(t, AbsenceStatusPartiallyAssigned, DetermineStatus(1, 3))
	assert.Equal(t, AbsenceStatusAssigned, DetermineStatus(0, 0))
}
