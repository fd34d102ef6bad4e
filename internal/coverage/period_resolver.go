package coverage

import "fmt"

// PeriodOutcome is the decision for one (absence, period) pair.
type PeriodOutcome struct {
	Assignment Assignment
	Phase      AssignmentType
	Evaluated  int
}

type phase struct {
	kind    CandidateKind
	typ     AssignmentType
	tiered  bool
	ceiling func(cfg Config, cand Candidate) int
}

// phases lists the searched tiers after manual override, in strict order.
var phases = []phase{
	{
		kind:    KindExternalSubstitute,
		typ:     AssignmentTypeExternal,
		tiered:  true,
		ceiling: func(cfg Config, cand Candidate) int { return cfg.dailyCeiling(cand) },
	},
	{
		kind:    KindParaprofessional,
		typ:     AssignmentTypeParaprofessional,
		tiered:  true,
		ceiling: func(cfg Config, cand Candidate) int { return cfg.dailyCeiling(cand) },
	},
	{
		kind:    KindInternalTeacher,
		typ:     AssignmentTypeInternal,
		ceiling: func(cfg Config, _ Candidate) int { return cfg.MaxInternalCoverageNormal },
	},
	{
		kind:    KindInternalTeacher,
		typ:     AssignmentTypeEmergency,
		ceiling: func(cfg Config, _ Candidate) int { return cfg.MaxInternalCoverageEmergency },
	},
}

// ResolvePeriod runs the phase cascade for one period. It reads the ledger through the checker
// but does not append; the caller records the returned assignment.
func ResolvePeriod(absence Absence, period Period, pool *Pool, checker *Checker) PeriodOutcome {
	base := Assignment{
		AbsenceID: absence.ID,
		StaffID:   absence.StaffID,
		Period:    period,
	}

	if pinned, ok := absence.ManualOverrides[period]; ok && pinned != "" {
		id := pinned
		base.CandidateID = &id
		base.CandidateName = pinned
		if cand, found := pool.Get(pinned); found {
			base.CandidateName = cand.Name
			base.Role = cand.Kind
		}
		base.Type = AssignmentTypeManual
		base.Status = AssignmentStatusAssigned
		base.Reason = "Manual override by administrator"
		return PeriodOutcome{Assignment: base, Phase: AssignmentTypeManual}
	}

	evaluated := 0
	for _, ph := range phases {
		candidates := pool.ByKind(ph.kind)
		evaluated += len(candidates)

		survivors := make([]Candidate, 0, len(candidates))
		for _, cand := range candidates {
			if checker.Eligible(cand, absence, period, ph.ceiling(checker.cfg, cand)) {
				survivors = append(survivors, cand)
			}
		}

		var (
			chosen Candidate
			tier   = tierAny
			ok     bool
		)
		if ph.tiered {
			chosen, tier, ok = selectTiered(survivors, absence, checker)
		} else {
			chosen, ok = selectLowestLoad(survivors, checker)
		}
		if !ok {
			continue
		}

		id := chosen.ID
		base.CandidateID = &id
		base.CandidateName = chosen.Name
		base.Role = chosen.Kind
		base.Type = ph.typ
		base.Status = AssignmentStatusAssigned
		base.Reason = selectionReason(ph.typ, tier, absence, checker.CurrentLoad(chosen))
		return PeriodOutcome{Assignment: base, Phase: ph.typ, Evaluated: evaluated}
	}

	base.Type = AssignmentTypeNone
	base.Status = AssignmentStatusUncovered
	base.Reason = NoCoverageReason
	return PeriodOutcome{Assignment: base, Phase: AssignmentTypeNone, Evaluated: evaluated}
}

func selectionReason(typ AssignmentType, tier selectionTier, absence Absence, load int) string {
	switch typ {
	case AssignmentTypeInternal:
		return fmt.Sprintf("Internal teacher free period, lowest load (%d)", load)
	case AssignmentTypeEmergency:
		return fmt.Sprintf("Emergency coverage: internal teacher free period, lowest load (%d)", load)
	}
	switch tier {
	case tierPreferred:
		return fmt.Sprintf("Preferred substitute for %s", absence.StaffName)
	case tierQualified:
		return fmt.Sprintf("Qualified for %s", qualificationLabel(absence))
	}
	if typ == AssignmentTypeParaprofessional {
		return fmt.Sprintf("Available paraprofessional, lowest load (%d)", load)
	}
	return fmt.Sprintf("Available substitute, lowest load (%d)", load)
}
