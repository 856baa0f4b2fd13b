// Package store is the single source of truth for the project collection. It
// loads the persisted snapshot on startup (seeding demo data when there is
// none) and writes the whole collection through to storage after every
// committed mutation.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/kingrea/pm-portal/internal/catalog"
	"github.com/kingrea/pm-portal/internal/logbook"
	"github.com/kingrea/pm-portal/internal/project"
	"github.com/kingrea/pm-portal/internal/storage"
)

// Persisted entry names.
const (
	ProjectsKey = "projects"
	NextIDKey   = "projects.next_id"
)

// ErrNotPersisted wraps a failed write. The in-memory mutation that preceded
// it still stands.
var ErrNotPersisted = errors.New("store: change kept in memory only")

// ErrInvalidProject is returned by Create for blank input.
var ErrInvalidProject = project.ErrInvalidProject

// LoadResult describes how the collection was obtained.
type LoadResult struct {
	Projects []project.Project
	// Seeded is true when the demo dataset was used instead of persisted data.
	Seeded bool
	// Recovered is true when persisted data existed but could not be used.
	Recovered bool
	// Repaired counts projects whose sections had to be normalized or whose
	// id had to be reissued.
	Repaired int
}

// Store mediates every read and write of the project collection.
type Store struct {
	mu       sync.Mutex
	backend  storage.Storage
	projects []project.Project
	nextID   int
	logger   *zap.Logger
	journal  *logbook.Logbook
}

// Option customizes a Store.
type Option func(*Store)

// WithLogger sets the structured logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithJournal sets the activity journal.
func WithJournal(journal *logbook.Logbook) Option {
	return func(s *Store) {
		s.journal = journal
	}
}

// New builds a store over backend. Call Load before using it; until then it
// holds the seed dataset.
func New(backend storage.Storage, opts ...Option) *Store {
	seed := project.Seed()
	s := &Store{
		backend:  backend,
		projects: seed,
		nextID:   project.MaxID(seed) + 1,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the persisted snapshot. Missing or unreadable data falls back to
// the seed dataset without writing anything; Load never fails because of the
// persisted content.
func (s *Store) Load(ctx context.Context) (LoadResult, error) {
	if err := ctx.Err(); err != nil {
		return LoadResult{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	result := LoadResult{}
	projects, repaired, err := s.readProjects(ctx)
	switch {
	case err == nil:
		result.Repaired = repaired
	case errors.Is(err, storage.ErrNotFound):
		projects = project.Seed()
		result.Seeded = true
	default:
		s.logger.Warn("persisted projects unusable, falling back to seed data", zap.Error(err))
		s.journal.Warn("Saved projects could not be read; showing demo projects")
		projects = project.Seed()
		result.Seeded = true
		result.Recovered = true
	}
	if repaired > 0 {
		s.logger.Warn("normalized persisted projects", zap.Int("repaired", repaired))
	}

	next := project.MaxID(projects) + 1
	if !result.Seeded {
		if stored, err := s.readNextID(ctx); err == nil && stored > next {
			next = stored
		} else if err != nil && !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("project id counter unusable", zap.Error(err))
		}
	}

	for i := range projects {
		if projects[i].ID > 0 {
			continue
		}
		projects[i].ID = next
		next++
		s.logger.Warn("reassigned persisted project id",
			zap.Int("project_id", projects[i].ID),
			zap.String("name", projects[i].Name),
		)
	}

	s.projects = projects
	s.nextID = next
	s.logger.Info("projects loaded",
		zap.Int("count", len(projects)),
		zap.Bool("seeded", result.Seeded),
		zap.Int("next_id", next),
	)
	result.Projects = project.CloneAll(projects)
	return result, nil
}

func (s *Store) readProjects(ctx context.Context) ([]project.Project, int, error) {
	raw, err := s.backend.Get(ctx, ProjectsKey)
	if err != nil {
		return nil, 0, err
	}
	var decoded []project.Project
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, 0, fmt.Errorf("store: decode %s: %w", ProjectsKey, err)
	}
	if decoded == nil {
		return nil, 0, fmt.Errorf("store: %s is not an array", ProjectsKey)
	}
	// Projects are kept verbatim. A missing or repeated id is cleared here and
	// reissued from the counter by Load.
	seen := make(map[int]bool, len(decoded))
	repaired := 0
	for i := range decoded {
		p := &decoded[i]
		changed := p.Normalize()
		if p.ID <= 0 || seen[p.ID] {
			p.ID = 0
			changed = true
		} else {
			seen[p.ID] = true
		}
		if changed {
			repaired++
		}
	}
	return decoded, repaired, nil
}

func (s *Store) readNextID(ctx context.Context) (int, error) {
	raw, err := s.backend.Get(ctx, NextIDKey)
	if err != nil {
		return 0, err
	}
	next, err := strconv.Atoi(string(raw))
	if err != nil {
		return 0, fmt.Errorf("store: decode %s: %w", NextIDKey, err)
	}
	return next, nil
}

// Snapshot returns a deep copy of the collection.
func (s *Store) Snapshot() []project.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return project.CloneAll(s.projects)
}

// Project returns a copy of the project with id.
func (s *Store) Project(id int) (project.Project, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := project.Find(s.projects, id)
	if idx < 0 {
		return project.Project{}, false
	}
	return s.projects[idx].Clone(), true
}

// NextID returns the id the next Create will assign.
func (s *Store) NextID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextID
}

// Create appends a new project with every section incomplete. Blank name or
// description leaves the collection untouched and returns ErrInvalidProject.
func (s *Store) Create(ctx context.Context, name, description string) (project.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := project.New(s.nextID, name, description)
	if err != nil {
		return project.Project{}, err
	}
	s.projects = append(s.projects, p)
	s.nextID++
	s.logger.Info("project created", zap.Int("project_id", p.ID), zap.String("name", p.Name))
	s.journal.Info("Created project #%d %s", p.ID, p.Name)
	return p.Clone(), s.persist(ctx)
}

// Delete removes the project with id. It reports whether anything was removed;
// deleting an unknown id is a no-op.
func (s *Store) Delete(ctx context.Context, id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := project.Find(s.projects, id)
	if idx < 0 {
		return false, nil
	}
	name := s.projects[idx].Name
	s.projects = append(s.projects[:idx:idx], s.projects[idx+1:]...)
	s.logger.Info("project deleted", zap.Int("project_id", id))
	s.journal.Info("Deleted project #%d %s", id, name)
	return true, s.persist(ctx)
}

// SetSectionCompletion marks a section done or not done. It reports false when
// the project or section does not exist. Setting the current value again
// does not write.
func (s *Store) SetSectionCompletion(ctx context.Context, projectID int, sectionID catalog.SectionID, completed bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sec := s.section(projectID, sectionID)
	if sec == nil {
		return false, nil
	}
	if sec.Completed == completed {
		return true, nil
	}
	sec.Completed = completed
	s.logger.Info("section completion changed",
		zap.Int("project_id", projectID),
		zap.Int("section_id", int(sectionID)),
		zap.Bool("completed", completed),
	)
	state := "reopened"
	if completed {
		state = "completed"
	}
	s.journal.Info("Project #%d · %s %s", projectID, catalog.Title(sectionID), state)
	return true, s.persist(ctx)
}

// SetSectionData stores a payload on the section matching data.Kind().
func (s *Store) SetSectionData(ctx context.Context, projectID int, data project.SectionData) (bool, error) {
	if data == nil {
		return false, fmt.Errorf("store: section data is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sec := s.section(projectID, data.Kind())
	if sec == nil {
		return false, nil
	}
	sec.Data = data
	s.logger.Info("section data updated", zap.Int("project_id", projectID), zap.Int("section_id", int(data.Kind())))
	return true, s.persist(ctx)
}

func (s *Store) section(projectID int, sectionID catalog.SectionID) *project.Section {
	idx := project.Find(s.projects, projectID)
	if idx < 0 {
		return nil
	}
	sections := s.projects[idx].Sections
	for i := range sections {
		if sections[i].ID == sectionID {
			return &sections[i]
		}
	}
	return nil
}

// persist writes the counter and then the whole collection. The counter goes
// first so a failure between the two writes can only leave it ahead of the
// stored ids, never behind. Caller holds s.mu.
func (s *Store) persist(ctx context.Context) error {
	encoded, err := json.Marshal(s.projects)
	if err != nil {
		return s.persistFailed(fmt.Errorf("store: encode projects: %w", err))
	}
	if err := s.backend.Set(ctx, NextIDKey, []byte(strconv.Itoa(s.nextID))); err != nil {
		return s.persistFailed(err)
	}
	if err := s.backend.Set(ctx, ProjectsKey, encoded); err != nil {
		return s.persistFailed(err)
	}
	return nil
}

func (s *Store) persistFailed(err error) error {
	s.logger.Error("persist projects failed", zap.Error(err))
	s.journal.Error("Could not save projects; changes kept in memory only")
	return fmt.Errorf("%w: %w", ErrNotPersisted, err)
}
