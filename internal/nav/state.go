// Package nav is the dashboard's view router: an explicit navigation state
// machine, a Router that pairs its transitions with store mutations, and a
// pure Screen function the terminal UI renders from.
package nav

import (
	"github.com/kingrea/pm-portal/internal/catalog"
)

// View names the screen shown in the main pane.
type View int

const (
	ViewProjects View = iota
	ViewDashboard
	ViewTasks
	ViewTeam
	ViewSettings
)

func (v View) String() string {
	switch v {
	case ViewProjects:
		return "projects"
	case ViewDashboard:
		return "dashboard"
	case ViewTasks:
		return "tasks"
	case ViewTeam:
		return "team"
	case ViewSettings:
		return "settings"
	default:
		return "unknown"
	}
}

// State is the complete navigation state. Zero ids mean "none".
type State struct {
	View             View
	CurrentProject   int
	SelectedSection  catalog.SectionID
	SectionsExpanded bool
}

// Initial is the state the dashboard starts in.
func Initial() State {
	return State{View: ViewProjects, SectionsExpanded: true}
}

// HasProject reports whether a project is open.
func (s State) HasProject() bool {
	return s.CurrentProject != 0
}

// Event is a navigation input.
type Event interface {
	event()
}

// SelectProject opens a project from the list or the switcher.
type SelectProject struct{ ID int }

// OpenDashboard is the "Project Dashboard" sidebar entry.
type OpenDashboard struct{}

// SelectSection picks a catalog section of the open project.
type SelectSection struct{ ID catalog.SectionID }

// Navigate switches to the tasks, team or settings view.
type Navigate struct{ To View }

// ShowAllProjects is the "All Projects" switcher entry.
type ShowAllProjects struct{}

// ProjectDeleted tells the machine a project is gone.
type ProjectDeleted struct{ ID int }

func (SelectProject) event()   {}
func (OpenDashboard) event()   {}
func (SelectSection) event()   {}
func (Navigate) event()        {}
func (ShowAllProjects) event() {}
func (ProjectDeleted) event()  {}

// Transition applies ev to s. The boolean is false when a precondition
// failed, in which case s is returned unchanged.
func Transition(s State, ev Event) (State, bool) {
	switch e := ev.(type) {
	case SelectProject:
		if e.ID <= 0 {
			return s, false
		}
		s.CurrentProject = e.ID
		s.View = ViewDashboard
		s.SelectedSection = 0
		return s, true
	case OpenDashboard:
		if !s.HasProject() {
			return s, false
		}
		s.View = ViewDashboard
		s.SelectedSection = 0
		s.SectionsExpanded = !s.SectionsExpanded
		return s, true
	case SelectSection:
		if !s.HasProject() || !catalog.Valid(e.ID) {
			return s, false
		}
		s.SelectedSection = e.ID
		s.View = ViewDashboard
		return s, true
	case Navigate:
		switch e.To {
		case ViewTasks, ViewTeam, ViewSettings:
			s.View = e.To
			return s, true
		}
		return s, false
	case ShowAllProjects:
		s.CurrentProject = 0
		s.SelectedSection = 0
		s.View = ViewProjects
		return s, true
	case ProjectDeleted:
		if s.CurrentProject != e.ID {
			return s, true
		}
		s.CurrentProject = 0
		s.SelectedSection = 0
		s.View = ViewProjects
		return s, true
	}
	return s, false
}
