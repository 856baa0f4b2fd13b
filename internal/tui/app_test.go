package tui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/pm-portal/internal/catalog"
	"github.com/kingrea/pm-portal/internal/logbook"
	"github.com/kingrea/pm-portal/internal/nav"
	"github.com/kingrea/pm-portal/internal/storage"
	"github.com/kingrea/pm-portal/internal/store"
)

type fixture struct {
	app     *App
	store   *store.Store
	backend *storage.Memory
	journal *logbook.Logbook
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	backend := storage.NewMemory()
	journal, err := logbook.New(filepath.Join(t.TempDir(), "journal.log"))
	if err != nil {
		t.Fatalf("journal: %v", err)
	}
	s := store.New(backend, store.WithJournal(journal))
	if _, err := s.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	app := NewApp(nav.NewRouter(s), WithJournal(journal))
	return fixture{app: app, store: s, backend: backend, journal: journal}
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// press feeds keys through Update. Returned commands are dropped; the text
// inputs return cursor blink timers that tests have no use for.
func press(t *testing.T, app *App, keys ...string) *App {
	t.Helper()
	for _, k := range keys {
		model, _ := app.Update(keyMsg(k))
		next, ok := model.(*App)
		if !ok {
			t.Fatalf("unexpected model type: %T", model)
		}
		app = next
	}
	return app
}

func TestInitialFrameListsSeedProjects(t *testing.T) {
	f := newFixture(t)
	view := f.app.View()
	for _, want := range []string{"PM Portal", "All Projects", "E-commerce Platform", "Mobile App"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
	if f.app.Screen().View != nav.ViewProjects {
		t.Fatalf("expected projects view, got %s", f.app.Screen().View)
	}
}

func TestNewProjectDialogCreatesProject(t *testing.T) {
	f := newFixture(t)
	app := press(t, f.app, "n")
	if !app.dialog.open {
		t.Fatalf("dialog should be open")
	}
	app = press(t, app, "Roadmap", "tab", "Quarterly planning", "enter")
	if app.dialog.open {
		t.Fatalf("dialog should close after create")
	}
	snap := f.store.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("expected 3 projects, got %d", len(snap))
	}
	created := snap[2]
	if created.ID != 3 || created.Name != "Roadmap" || created.Description != "Quarterly planning" {
		t.Fatalf("unexpected project %+v", created)
	}
	if name, desc := app.dialog.Values(); name != "" || desc != "" {
		t.Fatalf("form not cleared: %q %q", name, desc)
	}
	lines, total := f.journal.Tail(10)
	if total != 1 || !strings.Contains(lines[0], "Created project #3 Roadmap") {
		t.Fatalf("expected one create entry, got %d: %v", total, lines)
	}

	app = press(t, app, "G", "d")
	lines, total = f.journal.Tail(10)
	if total != 2 || !strings.Contains(lines[1], "Deleted project #3 Roadmap") {
		t.Fatalf("expected one delete entry, got %d: %v", total, lines)
	}
}

func TestToggleWritesOneJournalEntry(t *testing.T) {
	f := newFixture(t)
	press(t, f.app, "enter", "space")
	lines, _ := f.journal.Tail(10)
	count := 0
	for _, line := range lines {
		if strings.Contains(line, catalog.Title(catalog.ProductDiscovery)) {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected one completion entry, got %d: %v", count, lines)
	}
}

func TestCreateDisabledUntilBothFieldsFilled(t *testing.T) {
	f := newFixture(t)
	app := press(t, f.app, "n", "Roadmap", "enter", "enter")
	if !app.dialog.open {
		t.Fatalf("dialog closed with blank description")
	}
	if app.dialog.Ready() {
		t.Fatalf("create should be disabled")
	}
	app = press(t, app, "   ", "enter")
	if !app.dialog.open {
		t.Fatalf("dialog closed with whitespace description")
	}
	if got := len(f.store.Snapshot()); got != 2 {
		t.Fatalf("expected no new project, got %d projects", got)
	}
}

func TestEscClosesDialogAndClearsForm(t *testing.T) {
	f := newFixture(t)
	app := press(t, f.app, "n", "Draft", "esc")
	if app.dialog.open {
		t.Fatalf("dialog should be closed")
	}
	app = press(t, app, "n")
	if name, _ := app.dialog.Values(); name != "" {
		t.Fatalf("form kept stale value %q", name)
	}
}

func TestGlobalKeysIgnoredWhileDialogOpen(t *testing.T) {
	f := newFixture(t)
	app := press(t, f.app, "n", "q", "d", "s")
	if !app.dialog.open {
		t.Fatalf("dialog should stay open")
	}
	if name, _ := app.dialog.Values(); name != "qds" {
		t.Fatalf("expected typed text, got %q", name)
	}
	if got := len(f.store.Snapshot()); got != 2 {
		t.Fatalf("delete leaked through dialog")
	}
}

func TestOpenProjectAndToggleSection(t *testing.T) {
	f := newFixture(t)
	app := press(t, f.app, "enter")
	st := app.router.State()
	if st.View != nav.ViewDashboard || st.CurrentProject != 1 {
		t.Fatalf("unexpected state %+v", st)
	}
	if len(app.Screen().Carousel) != catalog.Count() {
		t.Fatalf("carousel should list every section")
	}

	app = press(t, app, "right", "space")
	p, _ := f.store.Project(1)
	sec, _ := p.Section(catalog.CustomerDiscovery)
	if !sec.Completed {
		t.Fatalf("customer discovery should be complete")
	}
	if p.CompletedCount() != 1 {
		t.Fatalf("expected one completed section, got %d", p.CompletedCount())
	}
	if !strings.Contains(app.View(), "1/5 sections") {
		t.Fatalf("progress header not updated:\n%s", app.View())
	}

	app = press(t, app, "space")
	p, _ = f.store.Project(1)
	if p.CompletedCount() != 0 {
		t.Fatalf("toggle should reopen the section")
	}
}

func TestSectionDetailNavigation(t *testing.T) {
	f := newFixture(t)
	app := press(t, f.app, "enter", "3")
	st := app.router.State()
	if st.SelectedSection != catalog.UserJourneyMapping {
		t.Fatalf("expected section 3, got %+v", st)
	}
	detail := app.Screen().Detail
	if detail == nil || detail.Title != catalog.Title(catalog.UserJourneyMapping) {
		t.Fatalf("unexpected detail %+v", detail)
	}

	app = press(t, app, "right", "right", "right")
	if got := app.router.State().SelectedSection; got != catalog.ProductDiscovery {
		t.Fatalf("expected wrap to section 1, got %d", got)
	}

	app = press(t, app, "space")
	p, _ := f.store.Project(1)
	if sec, _ := p.Section(catalog.ProductDiscovery); !sec.Completed {
		t.Fatalf("space in detail should toggle the open section")
	}

	app = press(t, app, "esc")
	st = app.router.State()
	if st.View != nav.ViewDashboard || st.SelectedSection != 0 {
		t.Fatalf("esc should return to the carousel, got %+v", st)
	}
	app = press(t, app, "esc")
	if st := app.router.State(); st.View != nav.ViewProjects || st.HasProject() {
		t.Fatalf("second esc should show all projects, got %+v", st)
	}
}

func TestSectionKeysNeedAProject(t *testing.T) {
	f := newFixture(t)
	app := press(t, f.app, "2", "D")
	if st := app.router.State(); st != nav.Initial() {
		t.Fatalf("state changed without a project: %+v", st)
	}
	if app.statusMsg == "" {
		t.Fatalf("expected a hint in the status line")
	}
}

func TestDeleteOpenProjectReturnsToList(t *testing.T) {
	f := newFixture(t)
	app := press(t, f.app, "enter", "d")
	st := app.router.State()
	if st.View != nav.ViewProjects || st.HasProject() {
		t.Fatalf("expected projects view after delete, got %+v", st)
	}
	snap := f.store.Snapshot()
	if len(snap) != 1 || snap[0].ID != 2 {
		t.Fatalf("unexpected projects after delete: %+v", snap)
	}
}

func TestDeleteFromTableUsesCursor(t *testing.T) {
	f := newFixture(t)
	app := press(t, f.app, "down", "d")
	snap := f.store.Snapshot()
	if len(snap) != 1 || snap[0].ID != 1 {
		t.Fatalf("expected Mobile App deleted, got %+v", snap)
	}
	if st := app.router.State(); st.View != nav.ViewProjects {
		t.Fatalf("view changed: %+v", st)
	}
}

func TestPlaceholderViews(t *testing.T) {
	f := newFixture(t)
	app := press(t, f.app, "enter", "t")
	if app.router.State().View != nav.ViewTasks {
		t.Fatalf("expected tasks view")
	}
	if !strings.Contains(app.View(), "not implemented yet") {
		t.Fatalf("tasks placeholder missing")
	}
	app = press(t, app, "m")
	if app.router.State().View != nav.ViewTeam {
		t.Fatalf("expected team view")
	}
	app = press(t, app, "esc")
	if st := app.router.State(); st.View != nav.ViewDashboard || st.CurrentProject != 1 {
		t.Fatalf("esc from team should reopen the dashboard, got %+v", st)
	}
	app = press(t, app, "a", "s")
	if !strings.Contains(app.View(), "built-in defaults") {
		t.Fatalf("settings view missing defaults note")
	}
}

func TestSwitcherCyclesProjects(t *testing.T) {
	f := newFixture(t)
	app := press(t, f.app, "]")
	if got := app.router.State().CurrentProject; got != 1 {
		t.Fatalf("expected project 1, got %d", got)
	}
	app = press(t, app, "]")
	if got := app.router.State().CurrentProject; got != 2 {
		t.Fatalf("expected project 2, got %d", got)
	}
	if app.Screen().Switcher != "Mobile App" {
		t.Fatalf("switcher label %q", app.Screen().Switcher)
	}
	app = press(t, app, "[")
	if got := app.router.State().CurrentProject; got != 1 {
		t.Fatalf("expected project 1, got %d", got)
	}
}

func TestWriteFailureKeepsChangeAndWarns(t *testing.T) {
	f := newFixture(t)
	f.backend.FailWrites(true)
	app := press(t, f.app, "enter", "space")
	if !errors.Is(app.err, store.ErrNotPersisted) {
		t.Fatalf("expected not-persisted error, got %v", app.err)
	}
	p, _ := f.store.Project(1)
	if p.CompletedCount() != 1 {
		t.Fatalf("change should stay in memory")
	}
	if !strings.Contains(app.View(), "Warning") {
		t.Fatalf("warning not rendered")
	}
}

func TestQuitKeys(t *testing.T) {
	for _, k := range []string{"q", "ctrl+c"} {
		f := newFixture(t)
		_, cmd := f.app.Update(keyMsg(k))
		if cmd == nil {
			t.Fatalf("%s: expected quit command", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Fatalf("%s: expected tea.QuitMsg", k)
		}
	}
}

func TestLogPanelShowsJournal(t *testing.T) {
	f := newFixture(t)
	f.journal.Info("Session opened")
	if !strings.Contains(f.app.View(), "Session opened") {
		t.Fatalf("log panel missing journal entry")
	}
}
