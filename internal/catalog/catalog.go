// Package catalog defines the fixed list of discovery sections every project
// tracks. Section ids are persisted inside project snapshots, so they must
// never be renumbered.
package catalog

// SectionID identifies one catalog entry.
type SectionID int

const (
	ProductDiscovery   SectionID = 1
	CustomerDiscovery  SectionID = 2
	UserJourneyMapping SectionID = 3
	TechStackCanvas    SectionID = 4
	DevSchedule        SectionID = 5
)

// Entry describes one discovery section.
type Entry struct {
	ID      SectionID
	Title   string
	Summary string
	Glyph   string
}

var entries = []Entry{
	{ID: ProductDiscovery, Title: "Product Discovery", Summary: "Problem, market and value proposition", Glyph: "◎"},
	{ID: CustomerDiscovery, Title: "Customer Discovery", Summary: "Personas, interviews and insights", Glyph: "☺"},
	{ID: UserJourneyMapping, Title: "User Journey Mapping", Summary: "Stages, touchpoints and pain points", Glyph: "➜"},
	{ID: TechStackCanvas, Title: "Tech Stack Canvas", Summary: "Frontend, backend, data and infrastructure", Glyph: "≡"},
	{ID: DevSchedule, Title: "Dev Schedule", Summary: "Milestones and due dates", Glyph: "◷"},
}

// All returns the catalog in display order. Callers receive a copy.
func All() []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}

// IDs returns the section ids in catalog order.
func IDs() []SectionID {
	ids := make([]SectionID, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	return ids
}

// Count is the number of sections per project.
func Count() int {
	return len(entries)
}

// Lookup finds the entry for id.
func Lookup(id SectionID) (Entry, bool) {
	for _, e := range entries {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// Valid reports whether id names a catalog section.
func Valid(id SectionID) bool {
	_, ok := Lookup(id)
	return ok
}

// Index returns the zero-based catalog position of id, or -1.
func Index(id SectionID) int {
	for i, e := range entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// Title returns the display title for id, or an empty string.
func Title(id SectionID) string {
	e, _ := Lookup(id)
	return e.Title
}
