package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Suggestions completes command names in the command bar.
type Suggestions struct {
	items       []SuggestionItem
	filtered    []SuggestionItem
	selectedIdx int
	visible     bool
}

// SuggestionItem is one completion candidate.
type SuggestionItem struct {
	Text        string
	Usage       string
	Description string
}

var commandSuggestions = []SuggestionItem{
	{Text: "new", Description: "Open a draft task in the edit panel"},
	{Text: "lane", Usage: "<name>", Description: "Add a lane"},
	{Text: "rename-lane", Usage: "<id> <name>", Description: "Rename a lane"},
	{Text: "delete-lane", Usage: "<id>", Description: "Delete an empty lane"},
	{Text: "zoom", Usage: "[week|month]", Description: "Switch the zoom level"},
	{Text: "export", Usage: "[path]", Description: "Write the timeline as JSON"},
	{Text: "import", Usage: "<path>", Description: "Replace the timeline from a JSON file"},
	{Text: "reset", Description: "Discard the saved timeline and reseed"},
	{Text: "help", Description: "Show key bindings"},
}

// NewSuggestions creates a new suggestions handler
func NewSuggestions() *Suggestions {
	return &Suggestions{items: commandSuggestions}
}

// Update filters on the command word. Completion stops once arguments start.
func (s *Suggestions) Update(input string) {
	if input == "" || strings.Contains(input, " ") {
		s.visible = false
		s.filtered = nil
		return
	}
	s.visible = true
	s.filter(strings.ToLower(input))
}

func (s *Suggestions) filter(query string) {
	s.filtered = []SuggestionItem{}
	for _, item := range s.items {
		if strings.HasPrefix(item.Text, query) {
			s.filtered = append(s.filtered, item)
		}
	}
	s.selectedIdx = 0
}

// Next moves to the next suggestion
func (s *Suggestions) Next() {
	if len(s.filtered) == 0 {
		return
	}
	s.selectedIdx = (s.selectedIdx + 1) % len(s.filtered)
}

// Prev moves to the previous suggestion
func (s *Suggestions) Prev() {
	if len(s.filtered) == 0 {
		return
	}
	s.selectedIdx--
	if s.selectedIdx < 0 {
		s.selectedIdx = len(s.filtered) - 1
	}
}

// Selected returns the currently selected suggestion
func (s *Suggestions) Selected() *SuggestionItem {
	if !s.visible || len(s.filtered) == 0 || s.selectedIdx >= len(s.filtered) {
		return nil
	}
	return &s.filtered[s.selectedIdx]
}

// IsVisible returns whether suggestions are currently visible
func (s *Suggestions) IsVisible() bool {
	return s.visible && len(s.filtered) > 0
}

// Render renders the suggestions dropdown
func (s *Suggestions) Render(width int) string {
	if !s.IsVisible() {
		return ""
	}

	var b strings.Builder

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(secondaryColor).
		Padding(0, 1).
		Width(max(20, width-4))

	selectedStyle := lipgloss.NewStyle().
		Background(primaryColor).
		Foreground(fgColor).
		Bold(true)

	itemStyle := lipgloss.NewStyle().Foreground(fgColor)

	descStyle := lipgloss.NewStyle().
		Foreground(mutedColor).
		Italic(true)

	maxVisible := 5
	for i, item := range s.filtered {
		if i >= maxVisible {
			b.WriteString(descStyle.Render(fmt.Sprintf("  ... and %d more", len(s.filtered)-maxVisible)))
			break
		}
		text := item.Text
		if item.Usage != "" {
			text += " " + item.Usage
		}
		var line string
		if i == s.selectedIdx {
			line = selectedStyle.Render("▶ "+text) + " " + selectedStyle.Render(item.Description)
		} else {
			line = itemStyle.Render("  "+text) + " " + descStyle.Render(item.Description)
		}
		b.WriteString(line + "\n")
	}

	return boxStyle.Render(strings.TrimSuffix(b.String(), "\n"))
}
