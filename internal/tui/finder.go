package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
	"github.com/snakemake/plugin-catalog/internal/catalog"
	"github.com/snakemake/plugin-catalog/internal/i18n"
	"github.com/snakemake/plugin-catalog/internal/search"
)

// EntryItem wraps a catalog entry with its selection state
type EntryItem struct {
	Entry    catalog.Entry
	Selected bool // user toggled selection
}

// ID returns the unique identifier of this entry
func (e EntryItem) ID() string {
	return fmt.Sprintf("%s/%s", e.Entry.Category, e.Entry.Name)
}

// FinderResult holds the result of TUI selection
type FinderResult struct {
	Selected  []catalog.Entry
	Cancelled bool
}

// Model is the bubbletea model for the catalog browser
type Model struct {
	items         []EntryItem
	filteredItems []EntryItem
	cursor        int
	width         int
	height        int
	searchInput   textinput.Model
	quitting      bool
	confirmed     bool
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("34"))

	markedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	failedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	previewStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// NewModel creates a new finder model
func NewModel(entries []catalog.Entry) Model {
	ti := textinput.New()
	ti.Placeholder = "Type to filter..."
	ti.CharLimit = 50
	ti.Width = 30

	items := make([]EntryItem, len(entries))
	for i, e := range entries {
		items[i] = EntryItem{Entry: e}
	}

	return Model{
		items:         items,
		filteredItems: items,
		searchInput:   ti,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}

	return m, nil
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "esc":
		// If search has text, clear it; otherwise quit
		if m.searchInput.Value() != "" {
			m.searchInput.SetValue("")
			m.applyFilter()
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit

	case "up":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down":
		if m.cursor < len(m.filteredItems)-1 {
			m.cursor++
		}

	case "tab":
		if idx := m.findOriginalIndex(m.cursor); idx >= 0 {
			m.items[idx].Selected = !m.items[idx].Selected
			m.applyFilter()
		}

	case "enter":
		if len(m.selected()) == 0 {
			// enter alone picks the entry under the cursor
			if idx := m.findOriginalIndex(m.cursor); idx >= 0 {
				m.items[idx].Selected = true
			}
		}
		if len(m.selected()) > 0 {
			m.confirmed = true
			m.quitting = true
			return m, tea.Quit
		}

	case "backspace":
		val := []rune(m.searchInput.Value())
		if len(val) > 0 {
			m.searchInput.SetValue(string(val[:len(val)-1]))
			m.applyFilter()
		}

	default:
		// Any other printable character goes to search
		if len(msg.String()) == 1 && msg.String()[0] >= 32 && msg.String()[0] < 127 {
			m.searchInput.SetValue(m.searchInput.Value() + msg.String())
			m.applyFilter()
		}
	}

	return m, nil
}

func (m *Model) applyFilter() {
	query := m.searchInput.Value()
	if query == "" {
		m.filteredItems = m.items
		if m.cursor >= len(m.filteredItems) {
			m.cursor = max(0, len(m.filteredItems)-1)
		}
		return
	}

	searchables := make([]string, len(m.items))
	for i, item := range m.items {
		searchables[i] = search.Text(item.Entry)
	}

	matches := fuzzy.Find(strings.ToLower(query), searchables)
	m.filteredItems = make([]EntryItem, len(matches))
	for i, match := range matches {
		m.filteredItems[i] = m.items[match.Index]
	}

	if m.cursor >= len(m.filteredItems) {
		m.cursor = max(0, len(m.filteredItems)-1)
	}
}

func (m Model) findOriginalIndex(filteredIdx int) int {
	if filteredIdx < 0 || filteredIdx >= len(m.filteredItems) {
		return -1
	}
	target := m.filteredItems[filteredIdx]
	for i, item := range m.items {
		if item.ID() == target.ID() {
			return i
		}
	}
	return -1
}

func (m Model) selected() []catalog.Entry {
	var entries []catalog.Entry
	for _, item := range m.items {
		if item.Selected {
			entries = append(entries, item.Entry)
		}
	}
	return entries
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.renderListView()
}

func (m Model) renderListView() string {
	var b strings.Builder

	header := titleStyle.Render(i18n.T("TUIHeader", map[string]any{"Count": len(m.items)}))
	b.WriteString(header)
	b.WriteString("\n\n")

	// Calculate layout
	listWidth := 44
	previewWidth := max(30, m.width-listWidth-6)
	listHeight := max(5, m.height-8)

	var listLines []string
	for i, item := range m.filteredItems {
		listLines = append(listLines, m.renderItem(i, item))
	}

	// Paginate if needed
	start := 0
	if m.cursor >= listHeight {
		start = m.cursor - listHeight + 1
	}
	end := min(start+listHeight, len(listLines))

	visibleList := strings.Join(listLines[start:end], "\n")
	preview := m.renderPreview()

	listBox := lipgloss.NewStyle().Width(listWidth).Render(visibleList)
	previewBox := previewStyle.Width(previewWidth).Height(listHeight).Render(preview)

	content := lipgloss.JoinHorizontal(lipgloss.Top, listBox, "  ", previewBox)
	b.WriteString(content)
	b.WriteString("\n\n")

	// Search bar (always visible)
	searchQuery := m.searchInput.Value()
	if searchQuery != "" {
		b.WriteString("> " + searchQuery + "_")
	} else {
		b.WriteString(helpStyle.Render("> type to filter..."))
	}
	b.WriteString("\n")

	b.WriteString(helpStyle.Render(i18n.T("TUIHelp", nil)))

	return b.String()
}

func (m Model) renderItem(idx int, item EntryItem) string {
	cursor := "  "
	if idx == m.cursor {
		cursor = "> "
	}

	checkbox := "[ ]"
	style := normalStyle
	switch {
	case item.Selected:
		checkbox = "[+]"
		style = markedStyle
	case item.Entry.Status != catalog.StatusOK:
		checkbox = "[!]"
		style = failedStyle
	}

	text := fmt.Sprintf("%s%s %s/%s (v%s)",
		cursor, checkbox, item.Entry.Category, item.Entry.Name, item.Entry.Version)

	if idx == m.cursor {
		return selectedStyle.Render(text)
	}
	return style.Render(text)
}

func (m Model) renderPreview() string {
	if len(m.filteredItems) == 0 || m.cursor >= len(m.filteredItems) {
		return i18n.T("TUIPreviewEmpty", nil)
	}

	e := m.filteredItems[m.cursor].Entry

	var b strings.Builder

	b.WriteString(fmt.Sprintf("Name: %s\n", e.Name))
	b.WriteString(fmt.Sprintf("Package: %s\n", e.Package))
	b.WriteString(fmt.Sprintf("Version: %s\n", e.Version))

	if e.Status == catalog.StatusOK {
		b.WriteString(okStyle.Render("Status: "+string(e.Status)) + "\n")
	} else {
		b.WriteString(failedStyle.Render("Status: "+string(e.Status)) + "\n")
	}

	b.WriteString("\n")

	if e.Summary != "" {
		b.WriteString(fmt.Sprintf("Summary:\n  %s\n\n", e.Summary))
	}

	if len(e.Authors) > 0 {
		b.WriteString(fmt.Sprintf("Authors: %s\n", strings.Join(e.Authors, ", ")))
	}

	if e.Repository != "" {
		b.WriteString(fmt.Sprintf("Repository: %s\n", e.Repository))
	}

	if len(e.Settings) > 0 {
		b.WriteString(fmt.Sprintf("Settings: %s\n", strings.Join(e.Settings, ", ")))
	}

	if e.DocsWarning != "" {
		b.WriteString("\n" + helpStyle.Render(e.DocsWarning) + "\n")
	}

	b.WriteString(fmt.Sprintf("\nPage: %s\n", e.Page))

	return b.String()
}

// RunCatalogFinder launches the interactive fuzzy finder over catalog entries
func RunCatalogFinder(c *catalog.Catalog) (*FinderResult, error) {
	if c == nil || len(c.Plugins) == 0 {
		return nil, fmt.Errorf("%s", i18n.T("NoPluginsAvailable", nil))
	}

	model := NewModel(c.Plugins)
	p := tea.NewProgram(model, tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}

	m := finalModel.(Model)
	if !m.confirmed {
		return &FinderResult{Cancelled: true}, nil
	}
	return &FinderResult{Selected: m.selected()}, nil
}
