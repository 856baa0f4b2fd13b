// Package project holds the project/section data model shared by the store,
// the navigation router and the terminal UI.
package project

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/kingrea/pm-portal/internal/catalog"
)

// ErrInvalidProject is returned when a name or description is blank.
var ErrInvalidProject = errors.New("project: name and description are required")

// Project is one tracked product effort.
type Project struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Sections    []Section `json:"sections"`
}

// Section records completion state for one catalog entry.
type Section struct {
	ID        catalog.SectionID `json:"id"`
	Completed bool              `json:"completed"`
	Data      SectionData       `json:"data,omitempty"`
}

// Validate checks the name/description requirement.
func Validate(name, description string) error {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(description) == "" {
		return ErrInvalidProject
	}
	return nil
}

// New builds a project with every catalog section present and incomplete.
func New(id int, name, description string) (Project, error) {
	if err := Validate(name, description); err != nil {
		return Project{}, err
	}
	if id <= 0 {
		return Project{}, fmt.Errorf("project: id must be positive, got %d", id)
	}
	return Project{
		ID:          id,
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		Sections:    freshSections(),
	}, nil
}

func freshSections() []Section {
	ids := catalog.IDs()
	sections := make([]Section, len(ids))
	for i, id := range ids {
		sections[i] = Section{ID: id}
	}
	return sections
}

// Section returns the section for id.
func (p Project) Section(id catalog.SectionID) (Section, bool) {
	for _, s := range p.Sections {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}

// CompletedCount counts finished sections.
func (p Project) CompletedCount() int {
	done := 0
	for _, s := range p.Sections {
		if s.Completed {
			done++
		}
	}
	return done
}

// Ratio is CompletedCount divided by the catalog size.
func (p Project) Ratio() float64 {
	return float64(p.CompletedCount()) / float64(catalog.Count())
}

// Progress renders "done/total sections".
func (p Project) Progress() string {
	return fmt.Sprintf("%d/%d sections", p.CompletedCount(), catalog.Count())
}

// Clone returns a deep copy.
func (p Project) Clone() Project {
	out := p
	if p.Sections != nil {
		out.Sections = make([]Section, len(p.Sections))
		for i, s := range p.Sections {
			out.Sections[i] = s
			if s.Data != nil {
				out.Sections[i].Data = s.Data.clone()
			}
		}
	}
	return out
}

// CloneAll deep-copies a collection.
func CloneAll(projects []Project) []Project {
	out := make([]Project, len(projects))
	for i, p := range projects {
		out[i] = p.Clone()
	}
	return out
}

// Normalize enforces the one-section-per-catalog-entry invariant: unknown and
// duplicate section ids are dropped, missing sections are added incomplete,
// and sections are ordered by catalog position. It reports whether anything
// had to change.
func (p *Project) Normalize() bool {
	changed := false
	seen := make(map[catalog.SectionID]bool, catalog.Count())
	kept := make([]Section, 0, catalog.Count())
	for _, s := range p.Sections {
		if !catalog.Valid(s.ID) || seen[s.ID] {
			changed = true
			continue
		}
		if s.Data != nil && s.Data.Kind() != s.ID {
			s.Data = nil
			changed = true
		}
		seen[s.ID] = true
		kept = append(kept, s)
	}
	for _, id := range catalog.IDs() {
		if !seen[id] {
			kept = append(kept, Section{ID: id})
			changed = true
		}
	}
	sorted := sort.SliceIsSorted(kept, func(i, j int) bool {
		return catalog.Index(kept[i].ID) < catalog.Index(kept[j].ID)
	})
	if !sorted {
		sort.SliceStable(kept, func(i, j int) bool {
			return catalog.Index(kept[i].ID) < catalog.Index(kept[j].ID)
		})
		changed = true
	}
	p.Sections = kept
	return changed
}

// Find returns the index of the project with id, or -1.
func Find(projects []Project, id int) int {
	for i, p := range projects {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// MaxID returns the highest id in the collection, or 0.
func MaxID(projects []Project) int {
	highest := 0
	for _, p := range projects {
		if p.ID > highest {
			highest = p.ID
		}
	}
	return highest
}
