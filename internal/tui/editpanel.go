package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fentz26/laneplan/internal/models"
	"github.com/fentz26/laneplan/internal/timeline"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color("240"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(10)

	focusedLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("205")).
				Bold(true).
				Width(10)
)

const (
	fieldName = iota
	fieldLane
	fieldStart
	fieldEnd
	fieldAssignee
	fieldDeps
	fieldCount
)

var fieldLabels = [fieldCount]string{"Name", "Lane", "Start", "End", "Assignee", "Deps"}

// EditPanel edits one task: an existing one, or a draft that is inserted on save.
type EditPanel struct {
	store  *timeline.Store
	draft  models.Task
	isNew  bool
	inputs [fieldCount]textinput.Model
	focus  int
	err    string
	width  int
}

// NewEditPanel opens the panel on task. isNew marks an unsaved draft.
func NewEditPanel(store *timeline.Store, task models.Task, isNew bool) *EditPanel {
	p := &EditPanel{store: store, draft: task, isNew: isNew, width: 60}
	values := [fieldCount]string{
		task.Name,
		task.LaneID,
		task.Start.String(),
		task.End.String(),
		task.Assignee,
		strings.Join(task.Deps, ", "),
	}
	for i := range p.inputs {
		ti := textinput.New()
		ti.CharLimit = 256
		ti.Width = 40
		ti.SetValue(values[i])
		p.inputs[i] = ti
	}
	p.inputs[fieldStart].Placeholder = models.DateLayout
	p.inputs[fieldEnd].Placeholder = models.DateLayout
	p.inputs[fieldDeps].Placeholder = "comma separated task ids"
	p.inputs[fieldName].Focus()
	return p
}

// TaskID is the id of the task being edited.
func (p *EditPanel) TaskID() string { return p.draft.ID }

// SetSize sets the panel width.
func (p *EditPanel) SetSize(w int) {
	p.width = w
	for i := range p.inputs {
		p.inputs[i].Width = max(10, w-16)
	}
}

func (p *EditPanel) setFocus(i int) {
	p.inputs[p.focus].Blur()
	p.focus = (i + fieldCount) % fieldCount
	p.inputs[p.focus].Focus()
}

// Patch builds the change set from the form. Human-facing checks live here:
// a non-empty name and a start no later than the end.
func (p *EditPanel) Patch() (timeline.TaskPatch, error) {
	name := strings.TrimSpace(p.inputs[fieldName].Value())
	if name == "" {
		return timeline.TaskPatch{}, errors.New("name is required")
	}
	start, err := models.ParseDate(strings.TrimSpace(p.inputs[fieldStart].Value()))
	if err != nil {
		return timeline.TaskPatch{}, fmt.Errorf("start: %w", err)
	}
	end, err := models.ParseDate(strings.TrimSpace(p.inputs[fieldEnd].Value()))
	if err != nil {
		return timeline.TaskPatch{}, fmt.Errorf("end: %w", err)
	}
	if end.Before(start) {
		return timeline.TaskPatch{}, errors.New("start must not be after end")
	}
	lane := strings.TrimSpace(p.inputs[fieldLane].Value())
	assignee := strings.TrimSpace(p.inputs[fieldAssignee].Value())
	deps := []string{}
	for _, d := range strings.Split(p.inputs[fieldDeps].Value(), ",") {
		if d = strings.TrimSpace(d); d != "" {
			deps = append(deps, d)
		}
	}
	return timeline.TaskPatch{
		Name:     &name,
		LaneID:   &lane,
		Start:    &start,
		End:      &end,
		Assignee: &assignee,
		Deps:     &deps,
	}, nil
}

// Save writes the form into the store.
func (p *EditPanel) Save() (models.Task, error) {
	patch, err := p.Patch()
	if err != nil {
		return models.Task{}, err
	}
	task, _, err := p.store.SaveTask(p.draft, patch)
	if err != nil {
		return models.Task{}, err
	}
	p.draft = task
	p.isNew = false
	return task, nil
}

// Update handles keys; the returned command reports the panel outcome.
func (p *EditPanel) Update(msg tea.Msg) (*EditPanel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			return p, func() tea.Msg { return panelClosedMsg{} }
		case "tab", "down":
			p.setFocus(p.focus + 1)
			return p, nil
		case "shift+tab", "up":
			p.setFocus(p.focus - 1)
			return p, nil
		case "enter":
			task, err := p.Save()
			if err != nil {
				p.err = err.Error()
				return p, nil
			}
			return p, func() tea.Msg { return panelSavedMsg{task: task} }
		case "ctrl+d":
			if p.isNew {
				return p, func() tea.Msg { return panelClosedMsg{} }
			}
			id := p.draft.ID
			if err := p.store.DeleteTask(id); err != nil {
				p.err = err.Error()
				return p, nil
			}
			return p, func() tea.Msg { return panelDeletedMsg{id: id} }
		}
	}

	var cmd tea.Cmd
	p.inputs[p.focus], cmd = p.inputs[p.focus].Update(msg)
	return p, cmd
}

// View renders the panel.
func (p *EditPanel) View() string {
	var b strings.Builder
	title := "Edit task"
	if p.isNew {
		title = "New task"
	}
	b.WriteString(headerStyle.Render(title + "  " + p.draft.ID))
	b.WriteString("\n\n")
	for i := range p.inputs {
		style := labelStyle
		if i == p.focus {
			style = focusedLabelStyle
		}
		b.WriteString(style.Render(fieldLabels[i]+":") + " " + p.inputs[i].View() + "\n")
	}
	if lanes := p.store.Lanes(); len(lanes) > 0 {
		names := make([]string, 0, len(lanes))
		for _, l := range lanes {
			names = append(names, l.ID+"="+l.Name)
		}
		b.WriteString("\n" + helpStyle.Render("lanes: "+strings.Join(names, "  ")) + "\n")
	}
	if p.err != "" {
		b.WriteString("\n" + errorStyle.Render("Error: "+p.err) + "\n")
	}
	b.WriteString("\n" + helpStyle.Render("enter save • tab next field • ctrl+d delete • esc close"))
	return panelStyle.Width(p.width - 2).Render(b.String())
}

type panelSavedMsg struct {
	task models.Task
}

type panelDeletedMsg struct {
	id string
}

type panelClosedMsg struct{}
