package nav

import (
	"github.com/kingrea/pm-portal/internal/catalog"
	"github.com/kingrea/pm-portal/internal/project"
)

// AllProjectsLabel is the switcher caption when no project is open.
const AllProjectsLabel = "All Projects"

// NavItem is one sidebar button.
type NavItem struct {
	Label  string
	View   View
	Active bool
}

// SectionItem is a sidebar or carousel entry for a catalog section.
type SectionItem struct {
	ID        catalog.SectionID
	Title     string
	Glyph     string
	Summary   string
	Completed bool
	Selected  bool
}

// ProjectRow is one line of the projects table.
type ProjectRow struct {
	ID          int
	Name        string
	Description string
	Done        int
	Total       int
	Ratio       float64
	Current     bool
}

// SectionDetail is the open section of the open project.
type SectionDetail struct {
	SectionItem
	Data project.SectionData
}

// Screen is everything the UI needs to draw one frame.
type Screen struct {
	View     View
	Switcher string
	Nav      []NavItem
	// Sections is the sidebar section list; empty unless the dashboard is
	// showing and expanded.
	Sections []SectionItem
	Projects []ProjectRow
	Current  *ProjectRow
	Carousel []SectionItem
	Detail   *SectionDetail
}

// Render is a pure function of navigation state and a project snapshot. An
// open project that no longer exists renders as the projects view.
func Render(s State, projects []project.Project) Screen {
	var current *project.Project
	if s.HasProject() {
		if idx := project.Find(projects, s.CurrentProject); idx >= 0 {
			current = &projects[idx]
		}
	}
	if s.HasProject() && current == nil {
		s = State{View: ViewProjects, SectionsExpanded: s.SectionsExpanded}
	}

	scr := Screen{View: s.View, Switcher: AllProjectsLabel}
	for _, p := range projects {
		row := rowFor(p)
		row.Current = current != nil && p.ID == current.ID
		scr.Projects = append(scr.Projects, row)
	}

	if current != nil {
		row := rowFor(*current)
		row.Current = true
		scr.Current = &row
		scr.Switcher = current.Name
		scr.Nav = append(scr.Nav,
			NavItem{Label: "Project Dashboard", View: ViewDashboard, Active: s.View == ViewDashboard},
			NavItem{Label: "Project Tasks", View: ViewTasks, Active: s.View == ViewTasks},
			NavItem{Label: "Project Team", View: ViewTeam, Active: s.View == ViewTeam},
		)
	}
	scr.Nav = append(scr.Nav, NavItem{Label: "Settings", View: ViewSettings, Active: s.View == ViewSettings})

	if current == nil || s.View != ViewDashboard {
		return scr
	}
	items := sectionItems(*current, s.SelectedSection)
	if s.SectionsExpanded {
		scr.Sections = items
	}
	if s.SelectedSection == 0 {
		scr.Carousel = items
		return scr
	}
	for _, item := range items {
		if item.ID == s.SelectedSection {
			sec, _ := current.Section(item.ID)
			scr.Detail = &SectionDetail{SectionItem: item, Data: sec.Data}
		}
	}
	return scr
}

func rowFor(p project.Project) ProjectRow {
	return ProjectRow{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Done:        p.CompletedCount(),
		Total:       catalog.Count(),
		Ratio:       p.Ratio(),
	}
}

func sectionItems(p project.Project, selected catalog.SectionID) []SectionItem {
	entries := catalog.All()
	items := make([]SectionItem, len(entries))
	for i, e := range entries {
		sec, _ := p.Section(e.ID)
		items[i] = SectionItem{
			ID:        e.ID,
			Title:     e.Title,
			Glyph:     e.Glyph,
			Summary:   e.Summary,
			Completed: sec.Completed,
			Selected:  e.ID == selected,
		}
	}
	return items
}
