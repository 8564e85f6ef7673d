// Package scenario holds the ordered catalogue of benchmark scenarios
// and the measurement produced by running one of them.
package scenario

import "fmt"

// Func is one unit of timed work. It operates against files on disk;
// only its side effects and its error matter to the harness.
type Func func() error

// Entry is one named scenario: a report section title, a row label,
// and the callable to time. Setup, when present, runs in the worker
// process before the probe starts, so fixture loading stays outside
// the timed span. Entries are immutable once registered.
type Entry struct {
	Section string
	Label   string
	Setup   Func
	Run     Func

	sectionIdx int
	entryIdx   int
}

// ID returns the ordinal identity of the entry within its registry,
// of the form "<section>/<entry>". Parent and worker processes build
// the same registry from the same configuration, so ordinals address
// the same entry on both sides of the process boundary.
func (e *Entry) ID() string {
	return fmt.Sprintf("%d/%d", e.sectionIdx, e.entryIdx)
}

// Section is a titled group of entries in registration order.
type Section struct {
	Title   string
	Entries []*Entry
}

// Registry is an append-only ordered catalogue of scenarios. It is
// built once before a run and never mutated during one.
type Registry struct {
	sections []*Section
	byTitle  map[string]*Section
	byID     map[string]*Entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byTitle: make(map[string]*Section),
		byID:    make(map[string]*Entry),
	}
}

// Add appends a scenario under the given section title. Sections keep
// first-appearance order; entries keep insertion order within their
// section.
func (r *Registry) Add(section, label string, fn Func) {
	r.AddWithSetup(section, label, nil, fn)
}

// AddWithSetup appends a scenario whose setup runs untimed in the
// worker before the measured callable.
func (r *Registry) AddWithSetup(section, label string, setup, fn Func) {
	sec, ok := r.byTitle[section]
	if !ok {
		sec = &Section{Title: section}
		r.byTitle[section] = sec
		r.sections = append(r.sections, sec)
	}

	entry := &Entry{
		Section:    section,
		Label:      label,
		Setup:      setup,
		Run:        fn,
		sectionIdx: indexOf(r.sections, sec),
		entryIdx:   len(sec.Entries),
	}

	sec.Entries = append(sec.Entries, entry)
	r.byID[entry.ID()] = entry
}

// Sections returns the sections in registration order.
func (r *Registry) Sections() []*Section {
	return r.sections
}

// Lookup resolves an ordinal ID produced by Entry.ID.
func (r *Registry) Lookup(id string) (*Entry, bool) {
	entry, ok := r.byID[id]
	return entry, ok
}

// Len returns the total number of registered entries.
func (r *Registry) Len() int {
	return len(r.byID)
}

func indexOf(sections []*Section, sec *Section) int {
	for i, s := range sections {
		if s == sec {
			return i
		}
	}

	return -1
}
