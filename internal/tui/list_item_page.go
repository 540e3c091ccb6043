package tui

import (
	"github.com/brizzai/auth-profile/internal/profile"
	"github.com/brizzai/auth-profile/internal/tui/models"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// listKeyMap holds key bindings for the list actions.
type listKeyMap struct {
	details key.Binding
	back    key.Binding
	finish  key.Binding
	quit    key.Binding
}

// DoneMsg carries the items chosen for export.
type DoneMsg struct {
	Profiles []*models.ProfileItem
}

func newListKeyMap() *listKeyMap {
	return &listKeyMap{
		details: key.NewBinding(
			key.WithKeys("enter", "d"),
			key.WithHelp("enter", "Details"),
		),
		back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Back"),
		),
		finish: key.NewBinding(
			key.WithKeys("F", "f"),
			key.WithHelp("F", "Export"),
		),
		quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "Quit"),
		),
	}
}

// ListItemModel lists profiles and shows the detail pane of the selected one.
type ListItemModel struct {
	list    list.Model
	keys    *listKeyMap
	viewing bool
}

func (m ListItemModel) Init() tea.Cmd {
	return nil
}

// Busy reports whether esc belongs to this page rather than the app.
func (m ListItemModel) Busy() bool {
	return m.viewing || m.list.FilterState() != list.Unfiltered
}

func (m ListItemModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.viewing {
		return m.handleDetailUpdate(msg)
	}
	return m.handleListModeUpdate(msg)
}

func (m ListItemModel) handleDetailUpdate(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.back):
			m.viewing = false
		}
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v)
	}
	return m, nil
}

func (m ListItemModel) handleListModeUpdate(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.details):
			if _, ok := m.list.SelectedItem().(models.ProfileItem); ok {
				m.viewing = true
				return m, nil
			}
		case key.Matches(msg, m.keys.finish):
			return m, func() tea.Msg {
				return DoneMsg{Profiles: m.Profiles()}
			}
		}
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m ListItemModel) View() string {
	if m.viewing {
		if item, ok := m.list.SelectedItem().(models.ProfileItem); ok {
			return docStyle.Render(renderDetail(item.Record))
		}
	}
	return docStyle.Render(m.list.View())
}

// NewListItemModel creates the users list for records
func NewListItemModel(records []profile.Record) ListItemModel {
	listKeys := newListKeyMap()

	items := make([]list.Item, len(records))
	for i, rec := range records {
		items[i] = models.ProfileItem{Record: rec}
	}
	delegate := newItemDelegate(newDelegateKeyMap())

	l := list.New(items, delegate, 0, 0)
	l.Title = titleStyle.Render("Users")
	l.SetShowFilter(true)

	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{
			listKeys.details,
			listKeys.finish,
			listKeys.quit,
		}
	}
	return ListItemModel{list: l, keys: listKeys}
}

// Profiles returns the currently visible (filtered) items with their export flags
func (m ListItemModel) Profiles() []*models.ProfileItem {
	visible := m.list.VisibleItems()
	result := make([]*models.ProfileItem, len(visible))
	for i, item := range visible {
		p := item.(models.ProfileItem)
		result[i] = &p
	}
	return result
}
