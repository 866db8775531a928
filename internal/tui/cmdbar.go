package tui

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fentz26/laneplan/internal/app"
	"github.com/fentz26/laneplan/internal/models"
	"github.com/fentz26/laneplan/internal/persist"
)

var (
	cmdBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255")).
			Padding(0, 1)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)
)

// CmdBarModel manages the command input bar
type CmdBarModel struct {
	input       textinput.Model
	focused     bool
	suggestions *Suggestions
}

// NewCmdBarModel creates a new command bar
func NewCmdBarModel() *CmdBarModel {
	ti := textinput.New()
	ti.Placeholder = "lane <name> | zoom | export [path] | import <path> | reset"
	ti.CharLimit = 256
	return &CmdBarModel{input: ti, suggestions: NewSuggestions()}
}

// Focused reports whether the bar has the keyboard.
func (m *CmdBarModel) Focused() bool { return m.focused }

// Focus focuses the command bar
func (m *CmdBarModel) Focus() tea.Cmd {
	m.focused = true
	return m.input.Focus()
}

// Blur unfocuses the command bar
func (m *CmdBarModel) Blur() {
	m.focused = false
	m.input.Blur()
	m.input.SetValue("")
	m.suggestions.Update("")
}

// Submit returns the current input and blurs
func (m *CmdBarModel) Submit() string {
	val := strings.TrimSpace(m.input.Value())
	m.Blur()
	return val
}

// Update handles keys while the bar is focused. The returned string is a
// submitted command line, empty otherwise.
func (m *CmdBarModel) Update(msg tea.Msg) (string, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			m.Blur()
			return "", nil
		case "enter":
			return m.Submit(), nil
		case "tab":
			if sel := m.suggestions.Selected(); sel != nil {
				m.input.SetValue(sel.Text + " ")
				m.input.CursorEnd()
				m.suggestions.Update(m.input.Value())
			}
			return "", nil
		case "up":
			m.suggestions.Prev()
			return "", nil
		case "down":
			m.suggestions.Next()
			return "", nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.suggestions.Update(m.input.Value())
	return "", cmd
}

// View renders the command bar
func (m *CmdBarModel) View(width int) string {
	if !m.focused {
		return ""
	}
	line := cmdBarStyle.Width(width).Render(promptStyle.Render(": ") + m.input.View())
	if m.suggestions.IsVisible() {
		line += "\n" + m.suggestions.Render(width)
	}
	return line
}

// runCommand executes one command line against the plan. Commands that only
// change view state come back through the result message.
func runCommand(plan *app.App, input string) tea.Cmd {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return nil
	}
	name, args := parts[0], parts[1:]

	return func() tea.Msg {
		switch name {
		case "new":
			return cmdResultMsg{newDraft: true}

		case "lane":
			if len(args) < 1 {
				return cmdResultMsg{err: errors.New("usage: lane <name>")}
			}
			lane, err := plan.Timeline.AddLane(strings.Join(args, " "))
			if err != nil {
				return cmdResultMsg{err: err}
			}
			return cmdResultMsg{message: fmt.Sprintf("Added lane %s (%s)", lane.Name, lane.ID)}

		case "rename-lane":
			if len(args) < 2 {
				return cmdResultMsg{err: errors.New("usage: rename-lane <id> <name>")}
			}
			if err := plan.Timeline.RenameLane(args[0], strings.Join(args[1:], " ")); err != nil {
				return cmdResultMsg{err: err}
			}
			return cmdResultMsg{message: "Lane renamed"}

		case "delete-lane":
			if len(args) != 1 {
				return cmdResultMsg{err: errors.New("usage: delete-lane <id>")}
			}
			if err := plan.Timeline.DeleteLane(args[0]); err != nil {
				return cmdResultMsg{err: err}
			}
			return cmdResultMsg{message: "Lane deleted"}

		case "zoom":
			if len(args) == 0 {
				return cmdResultMsg{toggleZoom: true}
			}
			z, err := models.ParseZoom(args[0])
			if err != nil {
				return cmdResultMsg{err: err}
			}
			return cmdResultMsg{zoom: z}

		case "export":
			path := persist.ExportFileName
			if len(args) > 0 {
				path = args[0]
			}
			data, err := plan.Export()
			if err != nil {
				return cmdResultMsg{err: err}
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return cmdResultMsg{err: fmt.Errorf("write %s: %w", path, err)}
			}
			return cmdResultMsg{message: "Exported to " + path}

		case "import":
			if len(args) != 1 {
				return cmdResultMsg{err: errors.New("usage: import <path>")}
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return cmdResultMsg{err: fmt.Errorf("read %s: %w", args[0], err)}
			}
			doc, err := plan.Import(data)
			if err != nil {
				return cmdResultMsg{err: err}
			}
			return cmdResultMsg{message: fmt.Sprintf("Imported %d lanes, %d tasks", len(doc.Lanes), len(doc.Tasks))}

		case "reset":
			if err := plan.Reset(); err != nil {
				return cmdResultMsg{err: err}
			}
			return cmdResultMsg{message: "Timeline reset to sample data"}

		case "help":
			return cmdResultMsg{showHelp: true}

		default:
			return cmdResultMsg{err: fmt.Errorf("unknown command: %s", name)}
		}
	}
}

type cmdResultMsg struct {
	message    string
	err        error
	zoom       models.Zoom
	toggleZoom bool
	newDraft   bool
	showHelp   bool
}
