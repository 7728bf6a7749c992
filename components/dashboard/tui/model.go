// Package tui is a terminal front end for the dashboard session state
// machine. Every key press that changes state is dispatched through the
// service, so terminal edits show up on web clients subscribed to refresh
// events.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/goliatone/go-cnapp-dashboard/components/dashboard"
)

type inputMode int

const (
	modeBrowse inputMode = iota
	modeSearch
	modeName
	modeDescription
)

var (
	accent        = lipgloss.Color("62")
	muted         = lipgloss.Color("241")
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	tabStyle      = lipgloss.NewStyle().Padding(0, 1).Foreground(muted)
	activeTab     = lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(lipgloss.Color("230")).Background(accent)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	kindStyle     = lipgloss.NewStyle().Foreground(muted)
	drawerStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accent).Padding(0, 1)
	errorStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))
	helpStyle     = lipgloss.NewStyle().Foreground(muted)
)

// Model is the bubbletea model for one dashboard session.
type Model struct {
	ctx     context.Context
	service *dashboard.Service

	session dashboard.Session
	state   dashboard.DashboardState
	active  int
	cursor  int
	mode    inputMode
	input   textinput.Model
	status  string
	err     error
}

// New opens a session on service and returns the initial model.
func New(ctx context.Context, service *dashboard.Service) (Model, error) {
	if service == nil {
		return Model{}, errors.New("tui: service is required")
	}
	session, err := service.NewSession(ctx)
	if err != nil {
		return Model{}, err
	}
	state, err := service.Snapshot(ctx)
	if err != nil {
		return Model{}, err
	}
	input := textinput.New()
	input.CharLimit = 64
	return Model{
		ctx:     ctx,
		service: service,
		session: session,
		state:   state,
		input:   input,
	}, nil
}

// Session returns the current session value.
func (m Model) Session() dashboard.Session { return m.session }

// State returns the last observed dashboard snapshot.
func (m Model) State() dashboard.DashboardState { return m.state }

// ActiveCategory returns the category whose tab is selected.
func (m Model) ActiveCategory() dashboard.CategoryKey {
	keys := m.state.Categories()
	if len(keys) == 0 {
		return ""
	}
	return keys[m.active%len(keys)]
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if key.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	switch m.mode {
	case modeSearch:
		return m.updateSearch(key)
	case modeName, modeDescription:
		return m.updateDrawer(key)
	}
	return m.updateBrowse(key)
}

func (m Model) updateBrowse(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil
	switch key.String() {
	case "q":
		return m, tea.Quit
	case "right", "l", "tab":
		m.selectTab(m.active + 1)
	case "left", "h", "shift+tab":
		m.selectTab(m.active - 1 + len(m.state.Categories()))
	case "down", "j":
		if m.cursor < len(m.visible())-1 {
			m.cursor++
		}
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "/":
		m.mode = modeSearch
		m.input.Placeholder = "Search widgets"
		m.input.SetValue(m.session.SearchTerm)
		m.input.Focus()
	case "a":
		m.dispatch(dashboard.Event{Type: dashboard.EventOpenAddWidget})
		m.dispatch(dashboard.Event{Type: dashboard.EventSelectTarget, Category: m.ActiveCategory()})
		if m.err != nil {
			err := m.err
			m.dispatch(dashboard.Event{Type: dashboard.EventCloseAddWidget})
			m.err = err
			break
		}
		m.openInput(modeName, "Widget name", "")
	case "d", "x":
		items := m.visible()
		if len(items) == 0 {
			break
		}
		name := items[m.cursor].Name
		m.dispatch(dashboard.Event{Type: dashboard.EventRemoveWidget, Category: m.ActiveCategory(), Name: name})
		if m.err == nil {
			m.status = fmt.Sprintf("removed %q", name)
		}
	case "r":
		m.refresh()
	default:
		if len(key.Runes) == 1 && key.Runes[0] >= '1' && key.Runes[0] <= '9' {
			if idx := int(key.Runes[0] - '1'); idx < len(m.state.Categories()) {
				m.selectTab(idx)
			}
		}
	}
	return m, nil
}

func (m Model) updateSearch(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.Type {
	case tea.KeyEsc, tea.KeyEnter:
		m.mode = modeBrowse
		m.input.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(key)
	if value := m.input.Value(); value != m.session.SearchTerm {
		m.dispatch(dashboard.Event{Type: dashboard.EventSetSearchTerm, Text: value})
		m.cursor = 0
	}
	return m, cmd
}

func (m Model) updateDrawer(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.Type {
	case tea.KeyEsc:
		m.dispatch(dashboard.Event{Type: dashboard.EventCloseAddWidget})
		m.closeInput()
		return m, nil
	case tea.KeyTab:
		keys := m.state.Categories()
		if len(keys) > 0 {
			idx := indexOf(keys, m.session.TargetCategory)
			m.dispatch(dashboard.Event{Type: dashboard.EventSelectTarget, Category: keys[(idx+1)%len(keys)]})
		}
		return m, nil
	case tea.KeyEnter:
		if m.mode == modeName {
			m.dispatch(dashboard.Event{Type: dashboard.EventSetWidgetName, Text: m.input.Value()})
			m.openInput(modeDescription, "Description (optional)", m.session.DraftDescription)
			return m, nil
		}
		m.dispatch(dashboard.Event{Type: dashboard.EventSetWidgetDescription, Text: m.input.Value()})
		name, target := m.session.DraftName, m.session.TargetCategory
		m.dispatch(dashboard.Event{Type: dashboard.EventConfirmAddWidget})
		if m.err != nil {
			m.openInput(modeName, "Widget name", m.session.DraftName)
			return m, nil
		}
		m.status = fmt.Sprintf("added %q to %s", name, target)
		m.closeInput()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(key)
	return m, cmd
}

func (m *Model) dispatch(event dashboard.Event) {
	session, err := m.service.Dispatch(m.ctx, m.session.ID, event)
	m.session = session
	m.err = err
	m.refresh()
}

func (m *Model) refresh() {
	state, err := m.service.Snapshot(m.ctx)
	if err != nil {
		m.err = err
		return
	}
	m.state = state
	if n := len(m.visible()); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
}

func (m *Model) selectTab(idx int) {
	if n := len(m.state.Categories()); n > 0 {
		m.active = idx % n
		m.cursor = 0
	}
}

func (m *Model) openInput(mode inputMode, placeholder, value string) {
	m.mode = mode
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.Focus()
}

func (m *Model) closeInput() {
	m.mode = modeBrowse
	m.input.SetValue("")
	m.input.Blur()
}

func (m Model) visible() []dashboard.WidgetItem {
	items, err := m.state.FilteredWidgets(m.ActiveCategory(), m.session.SearchTerm)
	if err != nil {
		return nil
	}
	return items
}

func (m Model) label(key dashboard.CategoryKey) string {
	if def, ok := m.service.Registry().Category(key); ok {
		return def.Label
	}
	return string(key)
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("CNAPP Dashboard"))
	b.WriteString(helpStyle.Render(fmt.Sprintf("  rev %d", m.state.Revision())))
	b.WriteString("\n\n")

	tabs := make([]string, 0, len(m.state.Categories()))
	for i, key := range m.state.Categories() {
		style := tabStyle
		if i == m.active {
			style = activeTab
		}
		tabs = append(tabs, style.Render(fmt.Sprintf("%d %s", i+1, m.label(key))))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n")
	if m.session.SearchTerm != "" || m.mode == modeSearch {
		b.WriteString(helpStyle.Render("search: "))
		if m.mode == modeSearch {
			b.WriteString(m.input.View())
		} else {
			b.WriteString(m.session.SearchTerm)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	category := m.ActiveCategory()
	items := m.visible()
	if len(items) == 0 {
		b.WriteString(helpStyle.Render("  no widgets"))
		b.WriteString("\n")
	}
	for i, item := range items {
		line := fmt.Sprintf("  %s", item.Name)
		if i == m.cursor {
			line = selectedStyle.Render("> " + item.Name)
		}
		kind := dashboard.DecodePayload(category, item.Entry).Kind()
		b.WriteString(line + " " + kindStyle.Render(string(kind)) + "\n")
	}

	if m.session.IsComposing() {
		drawer := fmt.Sprintf("Add widget to %s\n%s", m.label(m.session.TargetCategory), m.input.View())
		b.WriteString("\n" + drawerStyle.Render(drawer) + "\n")
	}

	b.WriteString("\n")
	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render(m.err.Error()))
	case m.status != "":
		b.WriteString(helpStyle.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.help()))
	return b.String()
}

func (m Model) help() string {
	switch m.mode {
	case modeSearch:
		return "type to filter · enter/esc done"
	case modeName, modeDescription:
		return "enter next · tab target · esc cancel"
	}
	return "←/→ tabs · ↑/↓ select · / search · a add · d remove · r reload · q quit"
}

func indexOf(keys []dashboard.CategoryKey, key dashboard.CategoryKey) int {
	for i, k := range keys {
		if k == key {
			return i
		}
	}
	return 0
}

// Run starts the program on the terminal and blocks until it exits.
func Run(ctx context.Context, service *dashboard.Service, opts ...tea.ProgramOption) (dashboard.DashboardState, error) {
	model, err := New(ctx, service)
	if err != nil {
		return dashboard.DashboardState{}, err
	}
	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	final, err := tea.NewProgram(model, opts...).Run()
	if err != nil {
		return dashboard.DashboardState{}, err
	}
	return final.(Model).State(), nil
}
