package coverage

import "sort"

type selectionTier int

const (
	tierPreferred selectionTier = iota + 1
	tierQualified
	tierAny
)

// rankByLoad orders survivors by current load, then name, then id.
func rankByLoad(survivors []Candidate, checker *Checker) []Candidate {
	ranked := make([]Candidate, len(survivors))
	copy(ranked, survivors)
	sort.SliceStable(ranked, func(i, j int) bool {
		li, lj := checker.CurrentLoad(ranked[i]), checker.CurrentLoad(ranked[j])
		if li != lj {
			return li < lj
		}
		if ranked[i].Name != ranked[j].Name {
			return ranked[i].Name < ranked[j].Name
		}
		return ranked[i].ID < ranked[j].ID
	})
	return ranked
}

// selectTiered picks preferred, then qualified, then any survivor; each tier breaks ties on load.
// The qualified tier is skipped when department matching is disabled.
func selectTiered(survivors []Candidate, absence Absence, checker *Checker) (Candidate, selectionTier, bool) {
	if len(survivors) == 0 {
		return Candidate{}, 0, false
	}
	ranked := rankByLoad(survivors, checker)
	for _, cand := range ranked {
		if cand.PreferredFor(absence) {
			return cand, tierPreferred, true
		}
	}
	if checker.cfg.DepartmentMatchingEnabled {
		for _, cand := range ranked {
			if cand.QualifiedFor(absence) {
				return cand, tierQualified, true
			}
		}
	}
	return ranked[0], tierAny, true
}

// selectLowestLoad picks the least loaded survivor.
func selectLowestLoad(survivors []Candidate, checker *Checker) (Candidate, bool) {
	if len(survivors) == 0 {
		return Candidate{}, false
	}
	return rankByLoad(survivors, checker)[0], true
}
