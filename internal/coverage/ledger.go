package coverage

// Ledger accumulates the decisions of the current run. It is append-only and owned by one run.
type Ledger struct {
	assignments []Assignment
	booked      map[string]map[Period]bool
	load        map[string]int
}

// NewLedger returns an empty ledger; every run starts with zero in-run load for every candidate.
func NewLedger() *Ledger {
	return &Ledger{
		booked: make(map[string]map[Period]bool),
		load:   make(map[string]int),
	}
}

// Append records one decision and bumps the assignee's load by one.
func (l *Ledger) Append(a Assignment) {
	l.assignments = append(l.assignments, a)
	if !a.Covered() {
		return
	}
	l.book(*a.CandidateID, a.Period)
	l.load[*a.CandidateID]++
}

// AppendBatch records a full-day batch. The load of each assignee grows by its batch size at once.
func (l *Ledger) AppendBatch(batch []Assignment) {
	counts := make(map[string]int)
	for _, a := range batch {
		l.assignments = append(l.assignments, a)
		if !a.Covered() {
			continue
		}
		l.book(*a.CandidateID, a.Period)
		counts[*a.CandidateID]++
	}
	for id, n := range counts {
		l.load[id] += n
	}
}

func (l *Ledger) book(candidateID string, period Period) {
	periods := l.booked[candidateID]
	if periods == nil {
		periods = make(map[Period]bool)
		l.booked[candidateID] = periods
	}
	periods[period] = true
}

// Booked reports whether the candidate already covers the period in this run.
func (l *Ledger) Booked(candidateID string, period Period) bool {
	return l.booked[candidateID][period]
}

// BookedPeriods returns the periods the candidate covers in this run.
func (l *Ledger) BookedPeriods(candidateID string) map[Period]bool {
	return l.booked[candidateID]
}

// Load returns the in-run coverage count of a candidate.
func (l *Ledger) Load(candidateID string) int {
	return l.load[candidateID]
}

// Loads returns a copy of every non-zero in-run load.
func (l *Ledger) Loads() map[string]int {
	out := make(map[string]int, len(l.load))
	for id, n := range l.load {
		out[id] = n
	}
	return out
}

// Assignments returns a copy of the decisions in the order they were made.
func (l *Ledger) Assignments() []Assignment {
	out := make([]Assignment, len(l.assignments))
	copy(out, l.assignments)
	return out
}

// Len returns the number of decisions recorded.
func (l *Ledger) Len() int {
	return len(l.assignments)
}
