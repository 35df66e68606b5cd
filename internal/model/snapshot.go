package model

// Snapshot holds the four collections as fetched at one point in time.
// Aggregations read it and never mutate it.
type Snapshot struct {
	Projects []Project
	Quotes   []Quote
	Payments []Payment
	Expenses []Expense
}

// Project looks up a project by identifier.
func (s Snapshot) Project(id string) (Project, bool) {
	for _, p := range s.Projects {
		if p.ID == id {
			return p, true
		}
	}
	return Project{}, false
}

// Quote looks up a quote by identifier.
func (s Snapshot) Quote(id string) (Quote, bool) {
	for _, q := range s.Quotes {
		if q.ID == id {
			return q, true
		}
	}
	return Quote{}, false
}

// ProjectName returns the name of the referenced project, or "-" when the
// reference does not resolve to a known project.
func (s Snapshot) ProjectName(ref ProjectRef) string {
	if p, ok := s.Project(ref.ID()); ok {
		return p.Name
	}
	if e, ok := ref.Embedded(); ok && e.Project.Name != "" {
		return e.Project.Name
	}
	return "-"
}
