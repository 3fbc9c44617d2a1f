package tui

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	helpStyle     = lipgloss.NewStyle().Faint(true)
	cursorStyle   = lipgloss.NewStyle().Reverse(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
)

// interesting bumps tables that usually hold the data people came
// for to the top of the list.
var interesting = []string{"account", "member", "user", "admin", "client", "customer", "skype"}

// PrioritySort orders tables with likely-interesting names first,
// each group alphabetical.
func PrioritySort(tables []string) []string {
	sorted := make([]string, len(tables))
	copy(sorted, tables)
	sort.Strings(sorted)
	var first, rest []string
	for _, t := range sorted {
		lower := strings.ToLower(t)
		hit := false
		for _, w := range interesting {
			if strings.Contains(lower, w) {
				hit = true
				break
			}
		}
		if hit {
			first = append(first, t)
		} else {
			rest = append(rest, t)
		}
	}
	return append(first, rest...)
}

type model struct {
	choices   []string
	selected  map[string]bool
	filename  string
	cursor    int
	offset    int
	height    int
	filter    string
	filtering bool
	aborted   bool
}

func newModel(tables []string, filename string) model {
	return model{
		choices:  PrioritySort(tables),
		selected: map[string]bool{},
		filename: filepath.Base(filename),
		height:   24,
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) visible() []string {
	if m.filter == "" {
		return m.choices
	}
	var out []string
	for _, t := range m.choices {
		if strings.Contains(strings.ToLower(t), strings.ToLower(m.filter)) {
			out = append(out, t)
		}
	}
	return out
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		if m.filtering {
			return m.updateFilter(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter, tea.KeyEsc:
		m.filtering = false
		if msg.Type == tea.KeyEsc {
			m.filter = ""
		}
		m.cursor = 0
		m.offset = 0
	case tea.KeyBackspace:
		if len(m.filter) > 0 {
			m.filter = m.filter[:len(m.filter)-1]
		}
	case tea.KeyRunes:
		m.filter += string(msg.Runes)
		m.cursor = 0
		m.offset = 0
	}
	return m, nil
}

func (m model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	visible := m.visible()
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		if m.cursor < m.offset {
			m.offset = m.cursor
		}
	case "down", "j":
		if m.cursor < len(visible)-1 {
			m.cursor++
		}
		if m.cursor >= m.offset+m.window() {
			m.offset = m.cursor - m.window() + 1
		}
	case " ":
		if m.cursor < len(visible) {
			t := visible[m.cursor]
			m.selected[t] = !m.selected[t]
		}
	case "a":
		for _, t := range visible {
			m.selected[t] = true
		}
	case "n":
		m.selected = map[string]bool{}
	case "/":
		m.filtering = true
	case "enter":
		return m, tea.Quit
	case "esc", "q", "ctrl+c":
		m.aborted = true
		return m, tea.Quit
	}
	return m, nil
}

func (m model) window() int {
	w := m.height - 5
	if w < 1 {
		w = 1
	}
	return w
}

func (m model) View() string {
	var b strings.Builder
	visible := m.visible()
	b.WriteString(titleStyle.Render(fmt.Sprintf("Found %d tables in %s", len(m.choices), m.filename)))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("up/down: navigate | space: toggle | a: all | n: none | /: filter | enter: confirm | esc: quit"))
	b.WriteString("\n")
	if m.filtering || m.filter != "" {
		b.WriteString(fmt.Sprintf("filter: %s\n", m.filter))
	} else {
		b.WriteString("\n")
	}
	for i := m.offset; i < len(visible) && i < m.offset+m.window(); i++ {
		t := visible[i]
		prefix := "[ ]"
		line := fmt.Sprintf("%s %s", prefix, t)
		if m.selected[t] {
			line = selectedStyle.Render(fmt.Sprintf("[x] %s", t))
		}
		if i == m.cursor {
			line = cursorStyle.Render(fmt.Sprintf("[%s] %s", mark(m.selected[t]), t))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func mark(selected bool) string {
	if selected {
		return "x"
	}
	return " "
}

// Selection returns the chosen tables in display order.
func (m model) Selection() []string {
	var out []string
	for _, t := range m.choices {
		if m.selected[t] {
			out = append(out, t)
		}
	}
	return out
}

// Select runs the interactive picker and returns the chosen tables.
// An aborted session returns an empty selection.
func Select(tables []string, filename string) ([]string, error) {
	p := tea.NewProgram(newModel(tables, filename))
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("table selector: %w", err)
	}
	m, ok := final.(model)
	if !ok || m.aborted {
		return nil, nil
	}
	return m.Selection(), nil
}
