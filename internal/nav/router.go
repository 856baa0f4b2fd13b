package nav

import (
	"context"

	"github.com/kingrea/pm-portal/internal/catalog"
	"github.com/kingrea/pm-portal/internal/project"
)

// ProjectStore is the slice of the state store the router drives.
type ProjectStore interface {
	Snapshot() []project.Project
	Create(ctx context.Context, name, description string) (project.Project, error)
	Delete(ctx context.Context, id int) (bool, error)
	SetSectionCompletion(ctx context.Context, projectID int, sectionID catalog.SectionID, completed bool) (bool, error)
}

// Router owns navigation state and forwards user actions to the store.
type Router struct {
	store ProjectStore
	state State
}

// NewRouter starts in the initial state.
func NewRouter(store ProjectStore) *Router {
	return &Router{store: store, state: Initial()}
}

// State returns the current navigation state.
func (r *Router) State() State {
	return r.state
}

// Dispatch applies a navigation event. Selecting a project that is not in
// the collection is rejected.
func (r *Router) Dispatch(ev Event) bool {
	if sel, ok := ev.(SelectProject); ok && !r.exists(sel.ID) {
		return false
	}
	next, ok := Transition(r.state, ev)
	if ok {
		r.state = next
	}
	return ok
}

// CreateProject validates the dialog input and creates the project. Blank
// input never reaches the store.
func (r *Router) CreateProject(ctx context.Context, name, description string) (project.Project, error) {
	if err := project.Validate(name, description); err != nil {
		return project.Project{}, err
	}
	return r.store.Create(ctx, name, description)
}

// DeleteProject removes a project and closes it if it was open. A removal
// that could not be persisted still updates navigation, since the project
// is gone from memory.
func (r *Router) DeleteProject(ctx context.Context, id int) (bool, error) {
	removed, err := r.store.Delete(ctx, id)
	if removed {
		r.state, _ = Transition(r.state, ProjectDeleted{ID: id})
	}
	return removed, err
}

// ToggleSection flips completion of a section in the open project.
func (r *Router) ToggleSection(ctx context.Context, id catalog.SectionID) (bool, error) {
	if !r.state.HasProject() {
		return false, nil
	}
	current, ok := r.currentProject()
	if !ok {
		return false, nil
	}
	sec, ok := current.Section(id)
	if !ok {
		return false, nil
	}
	return r.store.SetSectionCompletion(ctx, current.ID, id, !sec.Completed)
}

// Screen renders the current state against a fresh snapshot.
func (r *Router) Screen() Screen {
	return Render(r.state, r.store.Snapshot())
}

func (r *Router) exists(id int) bool {
	return project.Find(r.store.Snapshot(), id) >= 0
}

func (r *Router) currentProject() (project.Project, bool) {
	snap := r.store.Snapshot()
	idx := project.Find(snap, r.state.CurrentProject)
	if idx < 0 {
		return project.Project{}, false
	}
	return snap[idx], true
}
