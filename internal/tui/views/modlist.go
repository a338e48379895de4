package views

import (
	"fmt"
	"strings"

	"github.com/DonovanMods/modlist-installer/internal/domain"
	"github.com/DonovanMods/modlist-installer/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
)

// Modlist shows the mods of a modlist grouped by category
type Modlist struct {
	list       domain.Modlist
	order      []int // Indexes into list.Mods in display order
	categories []string
	marked     map[string]bool
	statuses   map[string]domain.InstallStatus
	selected   int
	theme      theme.Theme
	width      int
	height     int
}

// NewModlist creates a new modlist view.
// Mods are shown in category order; unknown categories go last.
func NewModlist(list domain.Modlist, categories []string, th theme.Theme) Modlist {
	return Modlist{
		list:       list,
		order:      displayOrder(list.Mods, categories),
		categories: categories,
		marked:     make(map[string]bool),
		statuses:   make(map[string]domain.InstallStatus),
		theme:      th,
		width:      80,
		height:     24,
	}
}

func displayOrder(mods []domain.ModDescriptor, categories []string) []int {
	rank := make(map[string]int, len(categories))
	for i, c := range categories {
		rank[c] = i
	}
	rankOf := func(m domain.ModDescriptor) int {
		if r, ok := rank[m.Category]; ok {
			return r
		}
		return len(categories)
	}

	order := make([]int, 0, len(mods))
	for r := 0; r <= len(categories); r++ {
		for i, m := range mods {
			if rankOf(m) == r {
				order = append(order, i)
			}
		}
	}
	return order
}

// Selected returns the cursor position
func (m Modlist) Selected() int {
	return m.selected
}

// ModCount returns the number of mods in the list
func (m Modlist) ModCount() int {
	return len(m.order)
}

// SelectedMod returns the mod under the cursor
func (m Modlist) SelectedMod() *domain.ModDescriptor {
	if len(m.order) == 0 || m.selected >= len(m.order) {
		return nil
	}
	mod := m.list.Mods[m.order[m.selected]]
	return &mod
}

// Marked returns the names of mods marked for install, in display order
func (m Modlist) Marked() []string {
	var names []string
	for _, idx := range m.order {
		mod := m.list.Mods[idx]
		if m.marked[mod.Key()] {
			names = append(names, mod.Name)
		}
	}
	return names
}

// Init implements tea.Model
func (m Modlist) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
// Navigation arrives as arrow keys; the app translates vim keys first.
func (m Modlist) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case OutcomeMsg:
		o := msg.Outcome
		m.statuses[o.Mod.Key()] = o.Status
		if o.Succeeded() && o.Mod.Version != "" {
			m.list.SetVersion(o.Mod.Key(), o.Mod.Version)
		}
		return m, nil
	}

	return m, nil
}

func (m Modlist) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if len(m.order) == 0 {
		return m, nil
	}

	switch msg.String() {
	case "up":
		m.selected--
		if m.selected < 0 {
			m.selected = len(m.order) - 1
		}
		return m, nil

	case "down":
		m.selected++
		if m.selected >= len(m.order) {
			m.selected = 0
		}
		return m, nil

	case " ": // Mark for install
		if mod := m.SelectedMod(); mod != nil {
			m.marked[mod.Key()] = !m.marked[mod.Key()]
		}
		return m, nil

	case "i", "enter": // Install marked, or everything
		names := m.Marked()
		return m, func() tea.Msg {
			return StartInstallMsg{Names: names}
		}

	case "home":
		m.selected = 0
		return m, nil

	case "end":
		m.selected = len(m.order) - 1
		return m, nil
	}

	return m, nil
}

// View implements tea.Model
func (m Modlist) View() string {
	th := m.theme
	itemStyle := th.Plain.PaddingLeft(2)
	selectedStyle := th.Accent.PaddingLeft(2)
	detailStyle := th.Muted.PaddingLeft(6)

	var b strings.Builder
	b.WriteString(th.Title.MarginBottom(1).Render(m.list.Name) + "\n")
	b.WriteString(th.Muted.Render(fmt.Sprintf("Modlist v%s  Starsector %s", m.list.Version, m.list.GameVersion)) + "\n\n")

	if len(m.order) == 0 {
		b.WriteString(itemStyle.Render("The modlist is empty.") + "\n")
		return b.String()
	}

	category := "\x00"
	for i, idx := range m.order {
		mod := m.list.Mods[idx]

		if mod.Category != category {
			category = mod.Category
			heading := category
			if heading == "" {
				heading = "Uncategorized"
			}
			b.WriteString(th.Muted.Render(heading) + "\n")
		}

		cursor := "  "
		style := itemStyle
		if i == m.selected {
			cursor = "▸ "
			style = selectedStyle
		}

		mark := "[ ]"
		if m.marked[mod.Key()] {
			mark = "[x]"
		}

		line := fmt.Sprintf("%s%s %s", cursor, mark, mod.Name)
		if mod.Version != "" {
			line += " v" + mod.Version
		}
		b.WriteString(style.Render(line))

		if status, ok := m.statuses[mod.Key()]; ok {
			b.WriteString("  " + th.Status(status).Render(status.String()))
		}
		b.WriteString("\n")

		if i == m.selected {
			url := mod.DownloadURL
			if url == "" {
				url = "(no download URL)"
			}
			b.WriteString(detailStyle.Render(url) + "\n")
		}
	}

	b.WriteString("\n" + th.Muted.Render("↑/↓: navigate  space: mark  i: install marked (or all)"))
	return b.String()
}
