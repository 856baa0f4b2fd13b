package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	fieldName = iota
	fieldDescription
	fieldCount
)

// newProjectDialog collects the name and description for a new project.
type newProjectDialog struct {
	open   bool
	focus  int
	inputs [fieldCount]textinput.Model
}

// dialogResult is what a key press did to the dialog.
type dialogResult int

const (
	dialogPending dialogResult = iota
	dialogSubmit
	dialogCancel
)

func newDialog() newProjectDialog {
	name := textinput.New()
	name.Prompt = "Name: "
	name.Placeholder = "Project name"
	name.CharLimit = 80
	name.Width = 40

	desc := textinput.New()
	desc.Prompt = "Description: "
	desc.Placeholder = "What is this project about?"
	desc.CharLimit = 200
	desc.Width = 40

	return newProjectDialog{inputs: [fieldCount]textinput.Model{name, desc}}
}

func (d *newProjectDialog) Open() tea.Cmd {
	d.open = true
	d.Reset()
	return d.focusField(fieldName)
}

func (d *newProjectDialog) Close() {
	d.open = false
	d.Reset()
}

// Reset clears both fields.
func (d *newProjectDialog) Reset() {
	for i := range d.inputs {
		d.inputs[i].Reset()
		d.inputs[i].Blur()
	}
	d.focus = fieldName
}

func (d *newProjectDialog) Values() (string, string) {
	return d.inputs[fieldName].Value(), d.inputs[fieldDescription].Value()
}

// Ready reports whether the create action is enabled.
func (d *newProjectDialog) Ready() bool {
	name, desc := d.Values()
	return strings.TrimSpace(name) != "" && strings.TrimSpace(desc) != ""
}

func (d *newProjectDialog) focusField(idx int) tea.Cmd {
	d.focus = idx
	for i := range d.inputs {
		if i != idx {
			d.inputs[i].Blur()
		}
	}
	return d.inputs[idx].Focus()
}

func (d *newProjectDialog) Update(msg tea.KeyMsg) (dialogResult, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return dialogCancel, nil
	case "tab", "down":
		return dialogPending, d.focusField((d.focus + 1) % fieldCount)
	case "shift+tab", "up":
		return dialogPending, d.focusField((d.focus + fieldCount - 1) % fieldCount)
	case "enter":
		if d.focus == fieldName {
			return dialogPending, d.focusField(fieldDescription)
		}
		if d.Ready() {
			return dialogSubmit, nil
		}
		return dialogPending, nil
	}
	var cmd tea.Cmd
	d.inputs[d.focus], cmd = d.inputs[d.focus].Update(msg)
	return dialogPending, cmd
}

func (d *newProjectDialog) View() string {
	button := buttonDisabledStyle.Render("Create")
	if d.Ready() {
		button = buttonStyle.Render("Create")
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("New Project"),
		"",
		d.inputs[fieldName].View(),
		d.inputs[fieldDescription].View(),
		"",
		button,
		hintStyle.Render("tab switch field • enter create • esc cancel"),
	)
	return dialogStyle.Render(body)
}
