package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fentz26/laneplan/internal/models"
	"github.com/fentz26/laneplan/internal/overlap"
)

var (
	listTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	conflictTag = lipgloss.NewStyle().Foreground(lipgloss.Color("1")) // Red
	laneTag     = lipgloss.NewStyle().Foreground(lipgloss.Color("6")) // Cyan
)

// TaskItem implements list.Item for the task list
type TaskItem struct {
	Task     models.Task
	LaneName string
	Conflict bool
}

func (i TaskItem) FilterValue() string { return i.Task.Name + " " + i.Task.Assignee + " " + i.LaneName }
func (i TaskItem) Title() string       { return i.Task.Name }
func (i TaskItem) Description() string {
	desc := fmt.Sprintf("%s • %s → %s", laneTag.Render(i.LaneName), i.Task.Start, i.Task.End)
	if i.Task.Assignee != "" {
		desc += " • " + i.Task.Assignee
	}
	if i.Conflict {
		desc += " " + conflictTag.Render("● overlaps")
	}
	return desc
}

// TaskListModel is the filterable list of every task.
type TaskListModel struct {
	list list.Model
}

// NewTaskListModel creates a new task list model
func NewTaskListModel() *TaskListModel {
	delegate := list.NewDefaultDelegate()
	l := list.New([]list.Item{}, delegate, 80, 20)
	l.Title = "Tasks"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = listTitleStyle
	return &TaskListModel{list: l}
}

// SetSize sets the list dimensions
func (m *TaskListModel) SetSize(w, h int) {
	m.list.SetSize(w, h)
}

// Load replaces the items with the tasks of doc.
func (m *TaskListModel) Load(doc models.Document) {
	conflicts := overlap.Conflicts(doc.Tasks)
	items := make([]list.Item, 0, len(doc.Tasks))
	for _, t := range doc.Tasks {
		laneName := "(no lane)"
		if lane, ok := doc.Lane(t.LaneID); ok {
			laneName = lane.Name
		}
		items = append(items, TaskItem{Task: t, LaneName: laneName, Conflict: conflicts[t.ID]})
	}
	m.list.SetItems(items)
}

// SelectedTask returns the currently selected task
func (m *TaskListModel) SelectedTask() *TaskItem {
	if item := m.list.SelectedItem(); item != nil {
		task := item.(TaskItem)
		return &task
	}
	return nil
}

// Filtering reports whether the filter input has the keyboard.
func (m *TaskListModel) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// Update handles messages
func (m *TaskListModel) Update(msg tea.Msg) (*TaskListModel, tea.Cmd) {
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the task list
func (m *TaskListModel) View() string {
	return m.list.View()
}
