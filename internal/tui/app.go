// Package tui is the interactive terminal Gantt chart.
package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fentz26/laneplan/internal/app"
	"github.com/fentz26/laneplan/internal/interaction"
	"github.com/fentz26/laneplan/internal/layout"
	"github.com/fentz26/laneplan/internal/models"
	"github.com/fentz26/laneplan/internal/timeline"
)

type viewMode int

const (
	modeGantt viewMode = iota
	modeDetail
	modeList
	modeHelp
)

const scrollStep = 8

const helpText = `Mouse
  drag a bar          move it; dates snap to whole days
  drag the last cell  change the end date
  alt+drag a bar      change the start date
  drag the ⋮ handle   move the task to another lane
  click a bar         open the edit panel

Keys
  tab / shift+tab     focus the next / previous bar
  ← →                 shift the focused bar by one day
  shift+← shift+→     shift it by a week
  enter               edit the focused task
  n                   new task
  d                   delete the focused task
  l                   task list
  z                   toggle week / month zoom
  [ ]                 scroll the chart
  t                   scroll to today
  y                   copy the focused task, or the whole timeline as JSON
  :                   command bar
  esc                 cancel a drag, or clear focus
  ?                   this help
  q / ctrl+c          quit`

// App is the main TUI application model.
type App struct {
	plan      *app.App
	zoom      models.Zoom
	pxPerCell int
	scroll    int
	width     int
	height    int
	mode      viewMode
	focusID   string
	message   string
	isError   bool

	panel  *EditPanel
	list   *TaskListModel
	cmdbar *CmdBarModel
	help   viewport.Model

	// press is where the current lane-handle press started.
	press struct{ x, y int }

	// copy writes to the system clipboard. Replaced in tests.
	copy func(string) error
}

// New creates the TUI over an open timeline.
func New(plan *app.App) *App {
	px := plan.Config.TUI.PxPerCell
	if px <= 0 {
		px = 10
	}
	vp := viewport.New(80, 20)
	vp.SetContent(helpText)
	return &App{
		plan:      plan,
		zoom:      plan.Config.ZoomLevel(),
		pxPerCell: px,
		width:     120,
		height:    30,
		list:      NewTaskListModel(),
		cmdbar:    NewCmdBarModel(),
		help:      vp,
		copy:      clipboard.WriteAll,
	}
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return nil
}

func (a *App) grid() grid {
	return newGrid(a.plan.Layout(a.zoom), a.pxPerCell, a.scroll, a.width)
}

func (a *App) setMessage(msg string) {
	a.message, a.isError = msg, false
}

func (a *App) setError(err error) {
	a.message, a.isError = "Error: "+err.Error(), true
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.list.SetSize(msg.Width, max(5, msg.Height-2))
		a.help.Width, a.help.Height = msg.Width, max(5, msg.Height-2)
		if a.panel != nil {
			a.panel.SetSize(msg.Width)
		}
		return a, nil

	case cmdResultMsg:
		return a, a.applyResult(msg)

	case panelSavedMsg:
		a.closePanel()
		a.focusID = msg.task.ID
		a.setMessage(fmt.Sprintf("Saved %s", msg.task.Name))
		return a, nil

	case panelDeletedMsg:
		a.closePanel()
		if a.focusID == msg.id {
			a.focusID = ""
		}
		a.setMessage("Task deleted")
		return a, nil

	case panelClosedMsg:
		a.closePanel()
		return a, nil

	case tea.MouseMsg:
		if a.mode == modeGantt && !a.cmdbar.Focused() {
			a.handleMouse(msg)
		}
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.cmdbar.Focused() {
			line, cmd := a.cmdbar.Update(msg)
			if line != "" {
				return a, runCommand(a.plan, line)
			}
			return a, cmd
		}
		switch a.mode {
		case modeDetail:
			var cmd tea.Cmd
			a.panel, cmd = a.panel.Update(msg)
			return a, cmd
		case modeList:
			return a, a.updateList(msg)
		case modeHelp:
			switch msg.String() {
			case "esc", "q", "?":
				a.mode = modeGantt
				return a, nil
			}
			var cmd tea.Cmd
			a.help, cmd = a.help.Update(msg)
			return a, cmd
		}
		return a, a.handleKey(msg)
	}

	if a.mode == modeDetail && a.panel != nil {
		var cmd tea.Cmd
		a.panel, cmd = a.panel.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch key := msg.String(); key {
	case "q":
		return tea.Quit

	case "tab", "shift+tab":
		a.cycleFocus(key == "tab")

	case "left", "right", "shift+left", "shift+right":
		if a.focusID == "" {
			return nil
		}
		days := interaction.NudgeDays(strings.HasSuffix(key, "right"), strings.HasPrefix(key, "shift+"))
		task, err := a.plan.Controller.Nudge(a.focusID, days)
		if err != nil {
			a.setError(err)
			return nil
		}
		a.setMessage(fmt.Sprintf("%s: %s → %s", task.Name, task.Start, task.End))

	case "enter":
		if task, ok := a.plan.Timeline.Task(a.focusID); ok {
			a.openPanel(task, false)
		}

	case "esc":
		switch {
		case a.plan.Controller.Cancel():
			a.setMessage("Drag cancelled")
		case a.plan.Controller.CancelLaneDrag():
			a.setMessage("Lane move cancelled")
		default:
			a.focusID = ""
			a.message = ""
		}

	case "n":
		a.openDraft()

	case "d":
		if a.focusID == "" {
			return nil
		}
		if err := a.plan.Timeline.DeleteTask(a.focusID); err != nil {
			a.setError(err)
			return nil
		}
		a.focusID = ""
		a.setMessage("Task deleted")

	case "l":
		a.list.Load(a.plan.Timeline.Snapshot())
		a.mode = modeList

	case "z":
		a.zoom = a.zoom.Toggle()
		a.scroll = 0

	case "[":
		a.scrollBy(-scrollStep)
	case "]":
		a.scrollBy(scrollStep)
	case "t":
		a.scrollToToday()

	case "y":
		a.yank()

	case ":":
		return a.cmdbar.Focus()

	case "?":
		a.mode = modeHelp
	}
	return nil
}

func (a *App) handleMouse(msg tea.MouseMsg) {
	if msg.Button != tea.MouseButtonLeft && msg.Action != tea.MouseActionMotion && msg.Action != tea.MouseActionRelease {
		return
	}
	ctrl := a.plan.Controller
	g := a.grid()

	switch msg.Action {
	case tea.MouseActionPress:
		line, part := g.hit(msg.X, msg.Y)
		if part == partNone {
			return
		}
		id := line.bar.Task.ID
		a.focusID = id
		if part == partHandle && !msg.Alt {
			if err := ctrl.StartLaneDrag(id); err != nil {
				a.setError(err)
				return
			}
			ctrl.LaneDragOver(line.laneID)
			a.press.x, a.press.y = msg.X, msg.Y
			return
		}
		mode := interaction.DragMove
		switch {
		case msg.Alt:
			mode = interaction.DragResizeStart
		case part == partResizeEnd:
			mode = interaction.DragResizeEnd
		}
		if err := ctrl.PointerDown(id, mode, g.pointerPx(msg.X), float64(msg.Y), g.layout.Scale.DayWidthPx); err != nil {
			a.setError(err)
		}

	case tea.MouseActionMotion:
		if _, ok := ctrl.Active(); ok {
			if _, err := ctrl.PointerMove(g.pointerPx(msg.X), float64(msg.Y)); err != nil {
				a.setError(err)
			}
			return
		}
		if d, ok := ctrl.ActiveLaneDrag(); ok {
			if line, ok := g.lineAt(msg.Y); ok {
				ctrl.LaneDragOver(line.laneID)
			} else {
				ctrl.LaneDragLeave(d.OverLane)
			}
		}

	case tea.MouseActionRelease:
		if _, ok := ctrl.Active(); ok {
			a.finishDrag(ctrl, g.pointerPx(msg.X), float64(msg.Y))
			return
		}
		if d, ok := ctrl.ActiveLaneDrag(); ok {
			a.finishLaneDrag(ctrl, d, msg.X, msg.Y, g)
		}
	}
}

func (a *App) finishDrag(ctrl *interaction.Controller, x, y float64) {
	out, err := ctrl.PointerUp(x, y)
	if err != nil {
		a.setError(err)
		return
	}
	switch out.Result {
	case interaction.ResultClick:
		a.openPanel(out.Task, false)
	case interaction.ResultCommitted:
		a.setMessage(fmt.Sprintf("%s: %s → %s", out.Task.Name, out.Task.Start, out.Task.End))
	default:
		a.message = ""
	}
}

func (a *App) finishLaneDrag(ctrl *interaction.Controller, d interaction.LaneDrag, x, y int, g grid) {
	if x == a.press.x && y == a.press.y {
		ctrl.CancelLaneDrag()
		if task, ok := a.plan.Timeline.Task(d.TaskID); ok {
			a.openPanel(task, false)
		}
		return
	}
	line, ok := g.lineAt(y)
	if !ok {
		ctrl.CancelLaneDrag()
		a.message = ""
		return
	}
	moved, err := ctrl.DropOnLane(line.laneID)
	if err != nil {
		a.setError(err)
		return
	}
	if moved {
		a.setMessage("Moved to " + line.laneName)
	}
}

func (a *App) updateList(msg tea.KeyMsg) tea.Cmd {
	if !a.list.Filtering() {
		switch msg.String() {
		case "esc", "q":
			a.mode = modeGantt
			return nil
		case "enter":
			if item := a.list.SelectedTask(); item != nil {
				a.focusID = item.Task.ID
				a.openPanel(item.Task, false)
			}
			return nil
		}
	}
	var cmd tea.Cmd
	a.list, cmd = a.list.Update(msg)
	return cmd
}

func (a *App) applyResult(msg cmdResultMsg) tea.Cmd {
	switch {
	case msg.err != nil:
		a.setError(msg.err)
	case msg.newDraft:
		a.openDraft()
	case msg.showHelp:
		a.mode = modeHelp
	case msg.toggleZoom:
		a.zoom = a.zoom.Toggle()
		a.scroll = 0
		a.setMessage("Zoom: " + string(a.zoom))
	case msg.zoom != "":
		a.zoom = msg.zoom
		a.scroll = 0
		a.setMessage("Zoom: " + string(a.zoom))
	default:
		if _, ok := a.plan.Timeline.Task(a.focusID); !ok {
			a.focusID = ""
		}
		a.setMessage(msg.message)
	}
	return nil
}

func (a *App) openDraft() {
	draft, err := a.plan.Timeline.NewDraft(a.plan.Today())
	if err != nil {
		if errors.Is(err, timeline.ErrNoLanes) {
			a.setError(errors.New("add a lane first (:lane <name>)"))
			return
		}
		a.setError(err)
		return
	}
	a.openPanel(draft, true)
}

func (a *App) openPanel(task models.Task, isNew bool) {
	a.panel = NewEditPanel(a.plan.Timeline, task, isNew)
	a.panel.SetSize(a.width)
	a.mode = modeDetail
}

func (a *App) closePanel() {
	a.panel = nil
	a.mode = modeGantt
}

// cycleFocus moves focus through the bars in lane order.
func (a *App) cycleFocus(forward bool) {
	var ids []string
	for _, row := range a.plan.Layout(a.zoom).Rows {
		for _, b := range row.Bars {
			ids = append(ids, b.Task.ID)
		}
	}
	if len(ids) == 0 {
		return
	}
	cur := -1
	for i, id := range ids {
		if id == a.focusID {
			cur = i
		}
	}
	switch {
	case cur < 0 && forward:
		cur = 0
	case cur < 0:
		cur = len(ids) - 1
	case forward:
		cur = (cur + 1) % len(ids)
	default:
		cur = (cur - 1 + len(ids)) % len(ids)
	}
	a.focusID = ids[cur]
}

func (a *App) maxScroll(l layout.Layout) int {
	total := l.Scale.TotalWidthPx / a.pxPerCell
	return max(0, total-(a.width-gutterCells))
}

func (a *App) scrollBy(cells int) {
	a.scroll = clamp(a.scroll+cells, 0, a.maxScroll(a.plan.Layout(a.zoom)))
}

func (a *App) scrollToToday() {
	l := a.plan.Layout(a.zoom)
	if !l.Today.Visible {
		a.setMessage("Today is outside the timeline")
		return
	}
	target := l.Today.OffsetPx/a.pxPerCell - (a.width-gutterCells)/3
	a.scroll = clamp(target, 0, a.maxScroll(l))
}

func (a *App) yank() {
	var text string
	if task, ok := a.plan.Timeline.Task(a.focusID); ok {
		text = fmt.Sprintf("%s (%s): %s → %s", task.Name, task.ID, task.Start, task.End)
	} else {
		data, err := a.plan.Export()
		if err != nil {
			a.setError(err)
			return
		}
		text = string(data)
	}
	if err := a.copy(text); err != nil {
		a.setError(fmt.Errorf("copy to clipboard: %w", err))
		return
	}
	a.setMessage("Copied to clipboard")
}

// View implements tea.Model
func (a *App) View() string {
	switch a.mode {
	case modeList:
		return a.list.View() + "\n" + a.statusBar()
	case modeHelp:
		return titleStyle.Render("Help") + "\n" + a.help.View()
	}

	l := a.plan.Layout(a.zoom)
	g := newGrid(l, a.pxPerCell, a.scroll, a.width)

	var b strings.Builder
	b.WriteString(a.header(l) + "\n")
	for _, line := range g.renderAxis() {
		b.WriteString(line + "\n")
	}
	st := renderState{focusID: a.focusID}
	if s, ok := a.plan.Controller.Active(); ok {
		st.dragID = s.TaskID
	}
	if d, ok := a.plan.Controller.ActiveLaneDrag(); ok {
		st.dragID = d.TaskID
		st.dropLane = d.OverLane
	}
	for _, line := range g.renderLines(st) {
		b.WriteString(line + "\n")
	}
	if n := len(l.Dangling); n > 0 {
		b.WriteString(helpStyle.Render(fmt.Sprintf("%d task(s) reference a missing lane", n)) + "\n")
	}

	if a.mode == modeDetail && a.panel != nil {
		b.WriteString("\n" + a.panel.View() + "\n")
	}

	if a.message != "" {
		style := messageStyle
		if a.isError {
			style = errorStyle
		}
		b.WriteString(style.Render(a.message))
	}
	b.WriteString("\n")
	if a.cmdbar.Focused() {
		b.WriteString(a.cmdbar.View(a.width) + "\n")
	}
	b.WriteString(a.statusBar())
	return b.String()
}

func (a *App) header(l layout.Layout) string {
	title := titleStyle.Render("laneplan")
	info := lipgloss.NewStyle().Foreground(cyanColor).Render(
		fmt.Sprintf("%s → %s", l.Scale.WindowStart, l.Scale.WindowEnd))
	zoom := lipgloss.NewStyle().Foreground(mutedColor).Render("[" + string(l.Zoom) + "]")
	return lipgloss.NewStyle().MaxWidth(a.width).Render(title + " " + info + " " + zoom)
}

func (a *App) statusBar() string {
	var status string
	switch a.mode {
	case modeList:
		status = " ↑↓:nav | /:filter | Enter:edit | Esc:back"
	case modeDetail:
		status = " Tab:field | Enter:save | Ctrl+D:delete | Esc:close"
	default:
		status = fmt.Sprintf(" Tasks: %d | drag:move | alt+drag:start | Tab:focus | ←→:nudge | n:new | ::cmd | ?:help | q:quit",
			len(a.plan.Timeline.Snapshot().Tasks))
	}
	return statusBarStyle.Width(a.width).Render(status)
}
