package coverage

import (
	"sort"
	"strings"
)

// CandidateKind is the role tier a covering staff member belongs to.
type CandidateKind string

const (
	KindExternalSubstitute CandidateKind = "EXTERNAL_SUBSTITUTE"
	KindParaprofessional   CandidateKind = "PARAPROFESSIONAL"
	KindInternalTeacher    CandidateKind = "INTERNAL_TEACHER"
)

// ExternalSubstitute carries the fields only substitutes use.
type ExternalSubstitute struct {
	Availability map[Weekday][]Period
	Subjects     []string
}

// Paraprofessional carries the fields only paraprofessionals use.
type Paraprofessional struct {
	Department string
}

// InternalTeacher carries the fields only internal teachers use.
type InternalTeacher struct {
	Department string
	Subject    string
}

// Candidate is a potential covering staff member. Exactly one variant pointer is set, matching Kind.
type Candidate struct {
	ID                    string
	Name                  string
	Kind                  CandidateKind
	MaxDailyLoad          int
	MaxWeeklyLoad         int
	PreferredForTeacherID string

	Substitute *ExternalSubstitute
	Para       *Paraprofessional
	Teacher    *InternalTeacher
}

// NewSubstituteCandidate builds an external substitute candidate.
func NewSubstituteCandidate(id, name string, maxDaily, maxWeekly int, sub ExternalSubstitute) Candidate {
	return Candidate{ID: id, Name: name, Kind: KindExternalSubstitute, MaxDailyLoad: maxDaily, MaxWeeklyLoad: maxWeekly, Substitute: &sub}
}

// NewParaCandidate builds a paraprofessional candidate.
func NewParaCandidate(id, name string, maxDaily, maxWeekly int, para Paraprofessional) Candidate {
	return Candidate{ID: id, Name: name, Kind: KindParaprofessional, MaxDailyLoad: maxDaily, MaxWeeklyLoad: maxWeekly, Para: &para}
}

// NewTeacherCandidate builds an internal teacher candidate.
func NewTeacherCandidate(id, name string, maxDaily, maxWeekly int, teacher InternalTeacher) Candidate {
	return Candidate{ID: id, Name: name, Kind: KindInternalTeacher, MaxDailyLoad: maxDaily, MaxWeeklyLoad: maxWeekly, Teacher: &teacher}
}

// Valid reports whether the variant pointer matches Kind.
func (c Candidate) Valid() bool {
	switch c.Kind {
	case KindExternalSubstitute:
		return c.Substitute != nil && c.Para == nil && c.Teacher == nil
	case KindParaprofessional:
		return c.Para != nil && c.Substitute == nil && c.Teacher == nil
	case KindInternalTeacher:
		return c.Teacher != nil && c.Substitute == nil && c.Para == nil
	}
	return false
}

// Department returns the candidate's department, empty for substitutes.
func (c Candidate) Department() string {
	switch {
	case c.Para != nil:
		return c.Para.Department
	case c.Teacher != nil:
		return c.Teacher.Department
	}
	return ""
}

// PreferredFor reports whether the candidate is the designated cover for the absent staff member.
func (c Candidate) PreferredFor(a Absence) bool {
	return c.PreferredForTeacherID != "" && c.PreferredForTeacherID == a.StaffID
}

// QualifiedFor reports a subject or department overlap with the absent staff member.
func (c Candidate) QualifiedFor(a Absence) bool {
	switch c.Kind {
	case KindExternalSubstitute:
		if c.Substitute == nil {
			return false
		}
		for _, subject := range c.Substitute.Subjects {
			if sameLabel(subject, a.Subject) || sameLabel(subject, a.Department) {
				return true
			}
		}
		return false
	case KindInternalTeacher:
		if c.Teacher != nil && sameLabel(c.Teacher.Subject, a.Subject) {
			return true
		}
	}
	return sameLabel(c.Department(), a.Department)
}

func sameLabel(a, b string) bool {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	return a != "" && strings.EqualFold(a, b)
}

// Pool partitions candidates by role. Partitions are ordered by id so runs are reproducible.
type Pool struct {
	byKind map[CandidateKind][]Candidate
	byID   map[string]Candidate
}

// NewPool indexes the candidate list. Later duplicates of an id are ignored.
func NewPool(candidates []Candidate) *Pool {
	pool := &Pool{
		byKind: make(map[CandidateKind][]Candidate),
		byID:   make(map[string]Candidate, len(candidates)),
	}
	for _, cand := range candidates {
		if _, exists := pool.byID[cand.ID]; exists {
			continue
		}
		pool.byID[cand.ID] = cand
		pool.byKind[cand.Kind] = append(pool.byKind[cand.Kind], cand)
	}
	for kind := range pool.byKind {
		list := pool.byKind[kind]
		sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	}
	return pool
}

// ByKind returns the candidates of one role tier.
func (p *Pool) ByKind(kind CandidateKind) []Candidate {
	return p.byKind[kind]
}

// Get looks a candidate up by id.
func (p *Pool) Get(id string) (Candidate, bool) {
	cand, ok := p.byID[id]
	return cand, ok
}

// Size returns the number of distinct candidates.
func (p *Pool) Size() int {
	return len(p.byID)
}
