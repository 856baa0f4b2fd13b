// Package tui is the terminal front end of the portal. It follows the
// bubbletea model: key presses become router events or store mutations, and
// every frame is drawn from the router's current Screen.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/kingrea/pm-portal/internal/catalog"
	"github.com/kingrea/pm-portal/internal/config"
	"github.com/kingrea/pm-portal/internal/logbook"
	"github.com/kingrea/pm-portal/internal/nav"
	"github.com/kingrea/pm-portal/internal/project"
	"github.com/kingrea/pm-portal/internal/store"
)

const (
	defaultWidth    = 120
	sidebarWidth    = 28
	carouselVisible = 3
	defaultLogLines = 5
)

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithConfig supplies the loaded workspace configuration.
func WithConfig(cfg *config.Config) AppOption {
	return func(a *App) {
		a.config = cfg
	}
}

// WithJournal attaches the activity journal shown in the log panel.
func WithJournal(journal *logbook.Logbook) AppOption {
	return func(a *App) {
		a.journal = journal
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *zap.Logger) AppOption {
	return func(a *App) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithContext sets the context store writes run under.
func WithContext(ctx context.Context) AppOption {
	return func(a *App) {
		if ctx != nil {
			a.ctx = ctx
		}
	}
}

// App is the main application model.
type App struct {
	ctx     context.Context
	router  *nav.Router
	config  *config.Config
	journal *logbook.Logbook
	logger  *zap.Logger

	keys   keyMap
	help   help.Model
	table  table.Model
	bar    progress.Model
	dialog newProjectDialog

	screen        nav.Screen
	carouselFocus int

	statusMsg string
	err       error

	width  int
	height int
}

// NewApp builds the model around a router whose store is already loaded.
func NewApp(router *nav.Router, opts ...AppOption) *App {
	km := table.DefaultKeyMap()
	km.PageDown = key.NewBinding(key.WithKeys("pgdown"))
	km.PageUp = key.NewBinding(key.WithKeys("pgup"))
	km.HalfPageDown = key.NewBinding(key.WithKeys("ctrl+d"))
	km.HalfPageUp = key.NewBinding(key.WithKeys("ctrl+u"))

	tbl := table.New(
		table.WithColumns(projectColumns(defaultWidth)),
		table.WithFocused(true),
		table.WithHeight(8),
		table.WithKeyMap(km),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#5B8DEF"))
	tbl.SetStyles(styles)

	app := &App{
		ctx:    context.Background(),
		router: router,
		logger: zap.NewNop(),
		keys:   defaultKeyMap(),
		help:   help.New(),
		table:  tbl,
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(30), progress.WithoutPercentage()),
		dialog: newDialog(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}
	app.refresh()
	return app
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return nil
}

// Screen exposes the frame currently drawn.
func (a *App) Screen() nav.Screen {
	return a.screen
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		a.table.SetColumns(projectColumns(a.mainWidth()))
		a.table.SetHeight(max(4, msg.Height-16))
		return a, nil
	case tea.KeyMsg:
		if a.dialog.open {
			return a.updateDialog(msg)
		}
		return a.handleKey(msg)
	}
	return a, nil
}

func (a *App) updateDialog(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}
	result, cmd := a.dialog.Update(msg)
	switch result {
	case dialogCancel:
		a.dialog.Close()
		a.statusMsg = ""
	case dialogSubmit:
		name, desc := a.dialog.Values()
		p, err := a.router.CreateProject(a.ctx, name, desc)
		switch {
		case errors.Is(err, project.ErrInvalidProject):
			return a, cmd
		case err != nil && !errors.Is(err, store.ErrNotPersisted):
			a.setError(err)
			return a, cmd
		}
		a.dialog.Close()
		a.statusMsg = fmt.Sprintf("Created %s", p.Name)
		a.setError(err)
		a.refresh()
		a.selectRow(p.ID)
	}
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	state := a.router.State()
	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, a.keys.Help):
		a.help.ShowAll = !a.help.ShowAll
		return a, nil
	case key.Matches(msg, a.keys.New):
		a.err = nil
		return a, a.dialog.Open()
	case key.Matches(msg, a.keys.Back):
		a.back(state)
		return a, nil
	case key.Matches(msg, a.keys.All):
		a.dispatch(nav.ShowAllProjects{})
		return a, nil
	case key.Matches(msg, a.keys.PrevProj):
		a.cycleProject(-1)
		return a, nil
	case key.Matches(msg, a.keys.NextProj):
		a.cycleProject(1)
		return a, nil
	case key.Matches(msg, a.keys.Dashboard):
		if !a.dispatch(nav.OpenDashboard{}) {
			a.statusMsg = "Open a project first"
		}
		return a, nil
	case key.Matches(msg, a.keys.Tasks):
		a.dispatch(nav.Navigate{To: nav.ViewTasks})
		return a, nil
	case key.Matches(msg, a.keys.Team):
		a.dispatch(nav.Navigate{To: nav.ViewTeam})
		return a, nil
	case key.Matches(msg, a.keys.Settings):
		a.dispatch(nav.Navigate{To: nav.ViewSettings})
		return a, nil
	case key.Matches(msg, a.keys.Section):
		id := catalog.SectionID(msg.Runes[0] - '0')
		if !a.dispatch(nav.SelectSection{ID: id}) {
			a.statusMsg = "Open a project first"
		} else {
			a.carouselFocus = catalog.Index(id)
		}
		return a, nil
	case key.Matches(msg, a.keys.Delete):
		a.deleteProject(state)
		return a, nil
	case key.Matches(msg, a.keys.Toggle):
		a.toggleSection(state)
		return a, nil
	case key.Matches(msg, a.keys.Left):
		a.moveSection(state, -1)
		return a, nil
	case key.Matches(msg, a.keys.Right):
		a.moveSection(state, 1)
		return a, nil
	case key.Matches(msg, a.keys.Open):
		a.open(state)
		return a, nil
	}

	if state.View == nav.ViewProjects {
		var cmd tea.Cmd
		a.table, cmd = a.table.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a *App) dispatch(ev nav.Event) bool {
	ok := a.router.Dispatch(ev)
	if ok {
		a.statusMsg = ""
		a.logger.Debug("navigate", zap.String("event", fmt.Sprintf("%T", ev)), zap.Stringer("view", a.router.State().View))
	}
	a.refresh()
	return ok
}

func (a *App) back(state nav.State) {
	switch {
	case state.View == nav.ViewDashboard && state.SelectedSection != 0:
		a.dispatch(nav.SelectProject{ID: state.CurrentProject})
	case state.View == nav.ViewDashboard:
		a.dispatch(nav.ShowAllProjects{})
	case state.View != nav.ViewProjects && state.HasProject():
		a.dispatch(nav.SelectProject{ID: state.CurrentProject})
	case state.View != nav.ViewProjects:
		a.dispatch(nav.ShowAllProjects{})
	default:
		a.statusMsg = ""
		a.err = nil
	}
}

func (a *App) open(state nav.State) {
	switch state.View {
	case nav.ViewProjects:
		row, ok := a.selectedRow()
		if !ok {
			return
		}
		if a.dispatch(nav.SelectProject{ID: row.ID}) {
			a.carouselFocus = 0
			a.journal.Info("Opened %s", row.Name)
		}
	case nav.ViewDashboard:
		if state.SelectedSection != 0 || len(a.screen.Carousel) == 0 {
			return
		}
		a.dispatch(nav.SelectSection{ID: a.screen.Carousel[a.carouselFocus].ID})
	}
}

func (a *App) cycleProject(delta int) {
	rows := a.screen.Projects
	if len(rows) == 0 {
		return
	}
	idx := -1
	for i, row := range rows {
		if row.Current {
			idx = i
		}
	}
	if idx < 0 {
		if delta > 0 {
			idx = len(rows) - 1
		} else {
			idx = 0
		}
	}
	next := rows[(idx+delta+len(rows))%len(rows)]
	if a.dispatch(nav.SelectProject{ID: next.ID}) {
		a.carouselFocus = 0
		a.selectRow(next.ID)
	}
}

func (a *App) deleteProject(state nav.State) {
	var row nav.ProjectRow
	switch {
	case state.View == nav.ViewProjects:
		r, ok := a.selectedRow()
		if !ok {
			return
		}
		row = r
	case a.screen.Current != nil:
		row = *a.screen.Current
	default:
		return
	}
	removed, err := a.router.DeleteProject(a.ctx, row.ID)
	if removed {
		a.statusMsg = fmt.Sprintf("Deleted %s", row.Name)
	}
	a.setError(err)
	a.refresh()
}

func (a *App) toggleSection(state nav.State) {
	if state.View != nav.ViewDashboard || !state.HasProject() {
		return
	}
	id := state.SelectedSection
	if id == 0 {
		if len(a.screen.Carousel) == 0 {
			return
		}
		id = a.screen.Carousel[a.carouselFocus].ID
	}
	changed, err := a.router.ToggleSection(a.ctx, id)
	a.setError(err)
	a.refresh()
	if !changed || a.screen.Current == nil {
		return
	}
	verb := "reopened"
	if a.sectionCompleted(id) {
		verb = "completed"
	}
	a.statusMsg = fmt.Sprintf("%s %s", catalog.Title(id), verb)
}

func (a *App) sectionCompleted(id catalog.SectionID) bool {
	for _, item := range a.screen.Carousel {
		if item.ID == id {
			return item.Completed
		}
	}
	if a.screen.Detail != nil && a.screen.Detail.ID == id {
		return a.screen.Detail.Completed
	}
	return false
}

func (a *App) moveSection(state nav.State, delta int) {
	if state.View != nav.ViewDashboard || !state.HasProject() {
		return
	}
	n := catalog.Count()
	if state.SelectedSection == 0 {
		a.carouselFocus = min(max(a.carouselFocus+delta, 0), n-1)
		return
	}
	ids := catalog.IDs()
	idx := (catalog.Index(state.SelectedSection) + delta + n) % n
	if a.dispatch(nav.SelectSection{ID: ids[idx]}) {
		a.carouselFocus = idx
	}
}

func (a *App) setError(err error) {
	a.err = err
	if err != nil {
		a.logger.Warn("store operation failed", zap.Error(err))
	}
}

// refresh redraws the screen model and syncs the table rows.
func (a *App) refresh() {
	a.screen = a.router.Screen()
	rows := make([]table.Row, len(a.screen.Projects))
	for i, p := range a.screen.Projects {
		rows[i] = table.Row{
			fmt.Sprintf("%d", p.ID),
			p.Name,
			p.Description,
			progressCell(p),
		}
	}
	a.table.SetRows(rows)
	if c := a.table.Cursor(); c >= len(rows) && len(rows) > 0 {
		a.table.SetCursor(len(rows) - 1)
	}
	if a.carouselFocus >= catalog.Count() {
		a.carouselFocus = 0
	}
}

func (a *App) selectedRow() (nav.ProjectRow, bool) {
	c := a.table.Cursor()
	if c < 0 || c >= len(a.screen.Projects) {
		return nav.ProjectRow{}, false
	}
	return a.screen.Projects[c], true
}

func (a *App) selectRow(id int) {
	for i, row := range a.screen.Projects {
		if row.ID == id {
			a.table.SetCursor(i)
			return
		}
	}
}

func (a *App) mainWidth() int {
	w := a.width
	if w <= 0 {
		w = defaultWidth
	}
	return max(40, w-sidebarWidth-6)
}

// View implements tea.Model.
func (a *App) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("PM Portal"))
	b.WriteString("\n")

	main := a.renderMain()
	if a.dialog.open {
		main = a.dialog.View()
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		boxStyle.Width(sidebarWidth).Render(a.renderSidebar()),
		boxStyle.Width(a.mainWidth()).Render(main),
	)
	b.WriteString(body)
	b.WriteString("\n")
	if panel := a.renderLogPanel(); panel != "" {
		b.WriteString(panel)
		b.WriteString("\n")
	}
	b.WriteString(a.renderStatus())
	b.WriteString("\n")
	b.WriteString(a.help.View(a.keys))
	return b.String()
}

func (a *App) renderSidebar() string {
	var lines []string
	lines = append(lines, titleStyle.Render("▾ "+a.screen.Switcher))
	lines = append(lines, "")
	for _, item := range a.screen.Nav {
		style := navStyle
		if item.Active {
			style = navActiveStyle
		}
		lines = append(lines, style.Render(item.Label))
		if item.View != nav.ViewDashboard {
			continue
		}
		for _, sec := range a.screen.Sections {
			lines = append(lines, sectionLine(sec))
		}
	}
	return strings.Join(lines, "\n")
}

func sectionLine(sec nav.SectionItem) string {
	mark := "○"
	style := sectionStyle
	if sec.Completed {
		mark = "●"
		style = sectionDoneStyle
	}
	if sec.Selected {
		style = sectionSelectedStyle
	}
	return style.Render(fmt.Sprintf("%s %d %s", mark, sec.ID, sec.Title))
}

func (a *App) renderMain() string {
	switch a.screen.View {
	case nav.ViewProjects:
		return a.renderProjects()
	case nav.ViewDashboard:
		if a.screen.Detail != nil {
			return a.renderDetail(*a.screen.Detail)
		}
		return a.renderDashboard()
	case nav.ViewTasks:
		return a.renderPlaceholder("Project Tasks")
	case nav.ViewTeam:
		return a.renderPlaceholder("Project Team")
	case nav.ViewSettings:
		return a.renderSettings()
	}
	return ""
}

func (a *App) renderProjects() string {
	title := titleStyle.Render("All Projects")
	if len(a.screen.Projects) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title, "",
			mutedStyle.Render("No projects yet. Press n to create one."))
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, "", a.table.View())
}

func (a *App) renderProgressHeader() string {
	cur := a.screen.Current
	if cur == nil {
		return ""
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(cur.Name),
		mutedStyle.Render(cur.Description),
		"",
		fmt.Sprintf("%s  %d/%d sections", a.bar.ViewAs(cur.Ratio), cur.Done, cur.Total),
	)
}

func (a *App) renderDashboard() string {
	items := a.screen.Carousel
	if len(items) == 0 {
		return a.renderProgressHeader()
	}
	start := min(max(a.carouselFocus-1, 0), max(len(items)-carouselVisible, 0))
	end := min(start+carouselVisible, len(items))
	cards := make([]string, 0, carouselVisible+2)
	arrow := " "
	if start > 0 {
		arrow = "‹"
	}
	cards = append(cards, arrow)
	for i := start; i < end; i++ {
		cards = append(cards, renderCard(items[i], i == a.carouselFocus))
	}
	arrow = " "
	if end < len(items) {
		arrow = "›"
	}
	cards = append(cards, arrow)
	return lipgloss.JoinVertical(lipgloss.Left,
		a.renderProgressHeader(),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center, cards...),
		hintStyle.Render("←/→ browse • enter open • space toggle complete"),
	)
}

func renderCard(item nav.SectionItem, focused bool) string {
	style := cardStyle
	switch {
	case focused:
		style = cardFocusStyle
	case item.Completed:
		style = cardDoneStyle
	}
	status := mutedStyle.Render("in progress")
	if item.Completed {
		status = doneStyle.Render("✓ complete")
	}
	return style.Render(fmt.Sprintf("%s\n%s\n\n%s", item.Glyph, item.Title, status))
}

func (a *App) renderDetail(d nav.SectionDetail) string {
	status := mutedStyle.Render("Not complete")
	if d.Completed {
		status = doneStyle.Render("✓ Complete")
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		a.renderProgressHeader(),
		"",
		titleStyle.Render(fmt.Sprintf("%s %s", d.Glyph, d.Title)),
		mutedStyle.Render(d.Summary),
		status,
		"",
		renderSectionData(d.Data),
		hintStyle.Render("space toggle complete • ←/→ next section • esc back"),
	)
}

func renderSectionData(data project.SectionData) string {
	var lines []string
	switch d := data.(type) {
	case project.ProductDiscoveryData:
		lines = append(lines,
			field("Problem", d.Problem),
			field("Target market", d.TargetMarket),
			field("Value proposition", d.ValueProposition))
		lines = append(lines, list("Competitors", d.Competitors)...)
	case project.CustomerDiscoveryData:
		lines = append(lines, list("Personas", d.Personas)...)
		lines = append(lines, field("Interviews", fmt.Sprintf("%d", d.Interviews)))
		lines = append(lines, list("Insights", d.Insights)...)
	case project.UserJourneyData:
		lines = append(lines, "Stages:")
		for _, st := range d.Stages {
			lines = append(lines, fmt.Sprintf("  • %s: %s", st.Name, strings.Join(st.Touchpoints, ", ")))
			for _, pain := range st.PainPoints {
				lines = append(lines, "      ! "+pain)
			}
		}
	case project.TechStackData:
		lines = append(lines, list("Frontend", d.Frontend)...)
		lines = append(lines, list("Backend", d.Backend)...)
		lines = append(lines, list("Data", d.Data)...)
		lines = append(lines, list("Infrastructure", d.Infrastructure)...)
	case project.DevScheduleData:
		lines = append(lines, "Milestones:")
		for _, m := range d.Milestones {
			mark := "○"
			if m.Done {
				mark = "●"
			}
			due := m.Due
			if due == "" {
				due = "no date"
			}
			lines = append(lines, fmt.Sprintf("  %s %s (%s)", mark, m.Name, due))
		}
	default:
		return mutedStyle.Render("No details recorded yet.")
	}
	return strings.Join(lines, "\n")
}

func field(label, value string) string {
	if value == "" {
		value = "-"
	}
	return fmt.Sprintf("%s: %s", label, value)
}

func list(label string, values []string) []string {
	if len(values) == 0 {
		return []string{field(label, "")}
	}
	out := []string{label + ":"}
	for _, v := range values {
		out = append(out, "  • "+v)
	}
	return out
}

func (a *App) renderPlaceholder(title string) string {
	subject := "this workspace"
	if a.screen.Current != nil {
		subject = a.screen.Current.Name
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(title),
		"",
		mutedStyle.Render(fmt.Sprintf("%s for %s is not implemented yet.", title, subject)),
	)
}

func (a *App) renderSettings() string {
	lines := []string{titleStyle.Render("Settings"), ""}
	if a.config == nil {
		lines = append(lines, mutedStyle.Render("Running with built-in defaults."))
		return strings.Join(lines, "\n")
	}
	pc := a.config.Portal
	lines = append(lines,
		field("Workspace", a.config.WorkspaceDir),
		field("Config file", a.config.ConfigFile),
		field("Storage", pc.Storage.Driver),
	)
	switch pc.Storage.Driver {
	case "redis":
		lines = append(lines, field("Redis", fmt.Sprintf("%s db %d", pc.Storage.Redis.Addr, pc.Storage.Redis.DB)))
	default:
		lines = append(lines, field("Storage path", pc.Storage.Path))
	}
	lines = append(lines,
		field("Log file", a.config.LogPath()),
		field("Log level", pc.Log.Level),
		field("Journal", a.config.JournalPath()),
	)
	return strings.Join(lines, "\n")
}

func (a *App) renderLogPanel() string {
	if a.journal == nil {
		return ""
	}
	n := defaultLogLines
	if a.config != nil && a.config.Portal.UI.LogLines > 0 {
		n = a.config.Portal.UI.LogLines
	}
	lines, total := a.journal.Tail(n)
	if total == 0 {
		return ""
	}
	title := mutedStyle.Render(fmt.Sprintf("Activity (%d entries)", total))
	return boxStyle.Width(sidebarWidth + a.mainWidth() + 4).
		Render(title + "\n" + strings.Join(lines, "\n"))
}

func (a *App) renderStatus() string {
	if a.err != nil {
		if errors.Is(a.err, store.ErrNotPersisted) {
			return errorStyle.Render("Warning: " + a.err.Error())
		}
		return errorStyle.Render("Error: " + a.err.Error())
	}
	if a.statusMsg != "" {
		return mutedStyle.Render(a.statusMsg)
	}
	return mutedStyle.Render(fmt.Sprintf("%d projects", len(a.screen.Projects)))
}

func projectColumns(width int) []table.Column {
	// each cell carries one column of padding on either side
	fixed := 4 + 16 + 4*2
	name := max(20, (width-fixed)/2)
	desc := max(12, width-fixed-name)
	return []table.Column{
		{Title: "#", Width: 4},
		{Title: "Project", Width: name},
		{Title: "Description", Width: desc},
		{Title: "Progress", Width: 16},
	}
}

// progressCell is a plain text bar; styled output would break the table's
// width calculations.
func progressCell(row nav.ProjectRow) string {
	filled := row.Done
	if row.Total <= 0 {
		return "-"
	}
	return fmt.Sprintf("%s%s %d/%d",
		strings.Repeat("█", filled),
		strings.Repeat("░", row.Total-filled),
		row.Done, row.Total)
}
