package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/cluso-netcanvas/pkg/topology"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF")).
			MarginLeft(2).
			MarginTop(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF")).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FFFF")).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#FF00FF")).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#666666")).
				Padding(0, 2)

	contentStyle = lipgloss.NewStyle().
			MarginLeft(2).
			MarginTop(1)

	statsBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FF00")).
			Padding(1, 2).
			MarginRight(2)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1).
			MarginLeft(2)
)

type view int

const (
	overviewView view = iota
	sitesView
	devicesView
	connectionsView
	viewCount
)

var tabNames = []string{"Overview", "Sites", "Devices", "Connections"}

type keyMap struct {
	Tab      key.Binding
	ShiftTab key.Binding
	Jump     key.Binding
	Refresh  key.Binding
	Quit     key.Binding
	Up       key.Binding
	Down     key.Binding
}

var keys = keyMap{
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next view"),
	),
	ShiftTab: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "prev view"),
	),
	Jump: key.NewBinding(
		key.WithKeys("1", "2", "3", "4"),
		key.WithHelp("1-4", "jump to view"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Refresh, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.ShiftTab, k.Jump},
		{k.Up, k.Down},
		{k.Refresh, k.Quit},
	}
}

// loadFunc runs one extraction
type loadFunc func(ctx context.Context) (*topology.Result, error)

type loadedMsg struct {
	result *topology.Result
	err    error
	at     time.Time
	took   time.Duration
}

type model struct {
	load        loadFunc
	timeout     time.Duration
	source      string
	preset      string
	currentView view
	sites       table.Model
	devices     table.Model
	connections table.Model
	help        help.Model
	keys        keyMap
	width       int
	height      int
	loading     bool
	result      *topology.Result
	loadedAt    time.Time
	loadTook    time.Duration
	message     string
	messageErr  bool
}

func newTable(columns []table.Column) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#00FFFF")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#FF00FF")).
		Bold(false)
	t.SetStyles(s)
	return t
}

func initialModel(load loadFunc, source, preset string, timeout time.Duration) model {
	return model{
		load:    load,
		timeout: timeout,
		source:  source,
		preset:  preset,
		sites: newTable([]table.Column{
			{Title: "ID", Width: 6},
			{Title: "Site", Width: 28},
			{Title: "Devices", Width: 8},
			{Title: "Categories", Width: 40},
		}),
		devices: newTable([]table.Column{
			{Title: "ID", Width: 6},
			{Title: "", Width: 2},
			{Title: "Name", Width: 24},
			{Title: "Role", Width: 16},
			{Title: "Model", Width: 18},
			{Title: "Site", Width: 18},
			{Title: "Status", Width: 10},
			{Title: "Primary IP", Width: 18},
		}),
		connections: newTable([]table.Column{
			{Title: "Cable", Width: 8},
			{Title: "A device", Width: 20},
			{Title: "A port", Width: 22},
			{Title: "B device", Width: 20},
			{Title: "B port", Width: 22},
			{Title: "Kind", Width: 12},
		}),
		help:    help.New(),
		keys:    keys,
		loading: true,
	}
}

func (m model) loadCmd() tea.Cmd {
	load, timeout := m.load, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		start := time.Now()
		res, err := load(ctx)
		return loadedMsg{result: res, err: err, at: time.Now(), took: time.Since(start)}
	}
}

func (m model) Init() tea.Cmd {
	return m.loadCmd()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case loadedMsg:
		m.loading = false
		if msg.err != nil {
			m.message = fmt.Sprintf("Extraction failed: %v", msg.err)
			m.messageErr = true
			return m, nil
		}
		m.setResult(msg.result)
		m.loadedAt = msg.at
		m.loadTook = msg.took
		if msg.result.Error != "" {
			m.message = "Degraded: " + msg.result.Error
			m.messageErr = true
		} else {
			m.message = fmt.Sprintf("Loaded %d devices and %d connections in %s",
				msg.result.Stats.TotalDevices, msg.result.Stats.TotalConnections, msg.took.Round(time.Millisecond))
			m.messageErr = false
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Tab):
			m.currentView = (m.currentView + 1) % viewCount
			return m, nil

		case key.Matches(msg, m.keys.ShiftTab):
			m.currentView = (m.currentView + viewCount - 1) % viewCount
			return m, nil

		case key.Matches(msg, m.keys.Jump):
			n, _ := strconv.Atoi(msg.String())
			m.currentView = view(n - 1)
			return m, nil

		case key.Matches(msg, m.keys.Refresh):
			if m.loading {
				return m, nil
			}
			m.loading = true
			m.message = "Refreshing..."
			m.messageErr = false
			return m, m.loadCmd()
		}
	}

	// Update focused component
	switch m.currentView {
	case sitesView:
		m.sites, cmd = m.sites.Update(msg)
	case devicesView:
		m.devices, cmd = m.devices.Update(msg)
	case connectionsView:
		m.connections, cmd = m.connections.Update(msg)
	}
	return m, cmd
}

func (m *model) setResult(res *topology.Result) {
	m.result = res

	siteRows := make([]table.Row, 0, len(res.Sites))
	for _, s := range res.Sites {
		id := "-"
		if s.ID != nil {
			id = strconv.FormatInt(*s.ID, 10)
		}
		siteRows = append(siteRows, table.Row{id, s.Name, strconv.Itoa(s.DeviceCount), categoryMix(s.Devices)})
	}
	m.sites.SetRows(siteRows)

	deviceRows := make([]table.Row, 0, len(res.Devices))
	for _, d := range res.Devices {
		deviceRows = append(deviceRows, table.Row{
			strconv.FormatInt(d.ID, 10),
			d.Icon,
			d.DisplayName,
			d.Role,
			d.DeviceType.Model,
			d.Site.Name,
			d.Status,
			d.PrimaryIP,
		})
	}
	m.devices.SetRows(deviceRows)

	names := make(map[int64]string, len(res.Devices))
	for _, d := range res.Devices {
		names[d.ID] = d.DisplayName
	}
	connRows := make([]table.Row, 0, len(res.Connections))
	for _, c := range res.Connections {
		cable := "-"
		if c.CableID != 0 {
			cable = strconv.FormatInt(c.CableID, 10)
		}
		connRows = append(connRows, table.Row{
			cable,
			deviceName(names, c.Source),
			c.AInterface,
			deviceName(names, c.Target),
			c.BInterface,
			connectionKind(c),
		})
	}
	m.connections.SetRows(connRows)
}

func deviceName(names map[int64]string, id int64) string {
	if n, ok := names[id]; ok {
		return n
	}
	return fmt.Sprintf("#%d", id)
}

func connectionKind(c topology.Connection) string {
	switch {
	case c.Logical:
		return "logical"
	case c.InterSite:
		return "inter-site"
	case c.Type != "":
		return c.Type
	}
	return "cable"
}

// categoryMix renders "3 switch, 1 router" ordered by count
func categoryMix(devices []topology.DeviceNode) string {
	counts := make(map[topology.Category]int)
	for _, d := range devices {
		counts[d.Type]++
	}
	cats := make([]topology.Category, 0, len(counts))
	for c := range counts {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool {
		if counts[cats[i]] != counts[cats[j]] {
			return counts[cats[i]] > counts[cats[j]]
		}
		return cats[i] < cats[j]
	})
	parts := make([]string, len(cats))
	for i, c := range cats {
		parts[i] = fmt.Sprintf("%d %s", counts[c], c)
	}
	return strings.Join(parts, ", ")
}

func (m model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var s strings.Builder

	s.WriteString(titleStyle.Render("NetCanvas - " + m.source))
	s.WriteString("\n\n")

	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	switch {
	case m.result == nil && m.loading:
		s.WriteString(contentStyle.Render("Loading topology..."))
	case m.result == nil:
		s.WriteString(contentStyle.Render("No topology loaded. Press r to retry."))
	default:
		switch m.currentView {
		case overviewView:
			s.WriteString(m.renderOverview())
		case sitesView:
			s.WriteString(m.renderTable("Sites", m.sites))
		case devicesView:
			s.WriteString(m.renderTable("Devices", m.devices))
		case connectionsView:
			s.WriteString(m.renderTable("Connections", m.connections))
		}
	}

	if m.message != "" {
		s.WriteString("\n\n")
		if m.messageErr {
			s.WriteString(errorStyle.Render("✗ " + m.message))
		} else {
			s.WriteString(successStyle.Render("✓ " + m.message))
		}
	}

	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp())))

	return s.String()
}

func (m model) renderTabs() string {
	rendered := make([]string, 0, len(tabNames))
	for i, tab := range tabNames {
		if view(i) == m.currentView {
			rendered = append(rendered, activeTabStyle.Render(tab))
		} else {
			rendered = append(rendered, inactiveTabStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m model) renderOverview() string {
	res := m.result
	var logical, interSite int
	for _, c := range res.Connections {
		if c.Logical {
			logical++
		}
		if c.InterSite {
			interSite++
		}
	}

	stats := fmt.Sprintf(`Topology
───────────────
Devices:      %d
Sites:        %d
Connections:  %d
  logical:    %d
  inter-site: %d

Extraction
───────────────
Preset:   %s
Loaded:   %s
Took:     %s`,
		res.Stats.TotalDevices,
		res.Stats.TotalSites,
		res.Stats.TotalConnections,
		logical,
		interSite,
		m.preset,
		m.loadedAt.Format("15:04:05"),
		m.loadTook.Round(time.Millisecond),
	)

	counts := make(map[topology.Category]int)
	for _, d := range res.Devices {
		counts[d.Type]++
	}
	var mix strings.Builder
	mix.WriteString("Device categories\n───────────────")
	for _, c := range topology.Categories {
		if n := counts[c]; n > 0 {
			fmt.Fprintf(&mix, "\n%s %-9s %d", topology.Icon(c), c, n)
		}
	}

	return contentStyle.Render(lipgloss.JoinHorizontal(lipgloss.Top,
		statsBoxStyle.Render(stats),
		statsBoxStyle.Render(mix.String()),
	))
}

func (m model) renderTable(title string, t table.Model) string {
	var s strings.Builder
	s.WriteString(headerStyle.Render(fmt.Sprintf("%s (%d)", title, len(t.Rows()))))
	s.WriteString("\n\n")
	s.WriteString(t.View())
	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("Navigate with ↑/↓ • Press 'r' to refresh"))
	return contentStyle.Render(s.String())
}
