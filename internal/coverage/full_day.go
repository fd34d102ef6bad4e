package coverage

import "fmt"

// FullDayOutcome is the result of trying to cover a whole absence with one substitute.
type FullDayOutcome struct {
	Matched     bool
	Candidate   Candidate
	Reason      string
	Evaluated   int
	Assignments []Assignment
}

// ResolveFullDay looks for one external substitute able to take every needed period. It never
// touches the ledger; the caller commits the batch on a match or falls back to per-period
// resolution.
func ResolveFullDay(absence Absence, pool *Pool, checker *Checker) FullDayOutcome {
	substitutes := pool.ByKind(KindExternalSubstitute)
	outcome := FullDayOutcome{Evaluated: len(substitutes)}

	survivors := make([]Candidate, 0, len(substitutes))
	for _, cand := range substitutes {
		if checker.EligibleFullDay(cand, absence) {
			survivors = append(survivors, cand)
		}
	}
	chosen, tier, ok := selectTiered(survivors, absence, checker)
	if !ok {
		return outcome
	}

	reason := fmt.Sprintf("Full-day substitute available for all %d periods", len(absence.Periods))
	switch tier {
	case tierPreferred:
		reason = fmt.Sprintf("Preferred substitute for %s, available for all %d periods", absence.StaffName, len(absence.Periods))
	case tierQualified:
		reason = fmt.Sprintf("Qualified for %s, available for all %d periods", qualificationLabel(absence), len(absence.Periods))
	}

	id := chosen.ID
	batch := make([]Assignment, 0, len(absence.Periods))
	for _, period := range absence.Periods {
		batch = append(batch, Assignment{
			AbsenceID:     absence.ID,
			StaffID:       absence.StaffID,
			Period:        period,
			CandidateID:   &id,
			CandidateName: chosen.Name,
			Role:          chosen.Kind,
			Type:          AssignmentTypeFullDay,
			Status:        AssignmentStatusAssigned,
			Reason:        reason,
		})
	}

	outcome.Matched = true
	outcome.Candidate = chosen
	outcome.Reason = reason
	outcome.Assignments = batch
	return outcome
}

func qualificationLabel(a Absence) string {
	if a.Subject != "" {
		return a.Subject
	}
	if a.Department != "" {
		return a.Department
	}
	return "subject"
}
