package tui

import (
	"github.com/brizzai/auth-profile/internal/identity"
	"github.com/brizzai/auth-profile/internal/profile"
	"github.com/brizzai/auth-profile/internal/tui/models"
	tea "github.com/charmbracelet/bubbletea"
)

// AppModel is the main application model that manages page switching
type AppModel struct {
	mainPage   MainPageModel
	listView   ListItemModel
	exportView ExportView
	page       string // "main" or "list" or "export"
}

// NewAppModel creates a new AppModel for the given profile records.
// current may be nil when nobody is signed in.
func NewAppModel(records []profile.Record, current *identity.Identity) AppModel {
	return AppModel{
		mainPage:   NewMainPageModel(records, current),
		listView:   NewListItemModel(records),
		exportView: ExportView{}, // set on DoneMsg
		page:       "main",
	}
}

// Init initializes the AppModel
func (m AppModel) Init() tea.Cmd {
	return tea.Batch(
		m.mainPage.Init(),
		m.listView.Init(),
	)
}

// Update handles app-level messages and delegates to the appropriate page model
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case OpenListItemMsg:
		m.page = "list"
		return m, m.listView.Init()

	case DoneMsg:
		m.page = "export"
		m.exportView = NewExportView(msg.Profiles)
		return m, m.exportView.Init()

	case BackToMainMsg:
		m.page = "list"
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "esc" && m.page == "list" && !m.listView.Busy() {
			m.page = "main"
			return m, nil
		}

	case tea.WindowSizeMsg:
		var cmd tea.Cmd
		var tempModel tea.Model

		tempModel, cmd = m.mainPage.Update(msg)
		m.mainPage = tempModel.(MainPageModel)
		cmds = append(cmds, cmd)

		tempModel, cmd = m.listView.Update(msg)
		m.listView = tempModel.(ListItemModel)
		cmds = append(cmds, cmd)

		tempModel, cmd = m.exportView.Update(msg)
		m.exportView = tempModel.(ExportView)
		cmds = append(cmds, cmd)

		return m, tea.Batch(cmds...)
	}

	var cmd tea.Cmd
	var tempModel tea.Model
	switch m.page {
	case "main":
		tempModel, cmd = m.mainPage.Update(msg)
		m.mainPage = tempModel.(MainPageModel)
	case "list":
		tempModel, cmd = m.listView.Update(msg)
		m.listView = tempModel.(ListItemModel)
	case "export":
		tempModel, cmd = m.exportView.Update(msg)
		m.exportView = tempModel.(ExportView)
	}
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// View renders the active page
func (m AppModel) View() string {
	switch m.page {
	case "main":
		return m.mainPage.View()
	case "export":
		return m.exportView.View()
	default: // list
		return m.listView.View()
	}
}

// Profiles delegates to the list view
func (m AppModel) Profiles() []*models.ProfileItem {
	return m.listView.Profiles()
}

// IsFinished reports whether the user completed an export.
func (m AppModel) IsFinished() bool {
	return m.exportView.Success
}

// ExportedFile returns the path written by the export page, if any.
func (m AppModel) ExportedFile() string {
	return m.exportView.Filename
}
